package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/livraria-escolar/catalog/app/routes"
	"github.com/livraria-escolar/catalog/config"
	"github.com/livraria-escolar/catalog/internal/kernel"
	"github.com/livraria-escolar/catalog/internal/server"
	"github.com/livraria-escolar/catalog/pkg/storage"
)

// catalog serve
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := boot(ctx)
		if err != nil {
			return err
		}
		defer rt.close()

		disk, err := storage.New(ctx, rt.cfg)
		if err != nil {
			return err
		}
		local, _ := disk.(*storage.Local)

		k := kernel.NewHTTPKernel(rt.cfg, routes.Deps{
			Catalog: rt.catalog,
			Images:  storage.NewUploader(disk),
		}, local)

		return server.Run(ctx, rt.cfg, k.Handler())
	},
}

// catalog route:list
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		k := kernel.NewHTTPKernel(&config.Config{}, routes.Deps{}, storage.NewLocal("", ""))

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range k.Router().Routes() {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}
