package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/livraria-escolar/catalog/database/migrations"
	"github.com/livraria-escolar/catalog/database/seeders"
	"github.com/livraria-escolar/catalog/pkg/logger"
)

// catalog migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the document store indexes",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		fmt.Println("Running migrations…")
		if err := migrations.Run(cmd.Context(), rt.mongo, os.Stdout); err != nil {
			return err
		}
		if rt.cfg.LogMongoCollection != "" {
			if err := logger.EnsureLogIndex(cmd.Context(), rt.mongo.Collection(rt.cfg.LogMongoCollection)); err != nil {
				return fmt.Errorf("log index: %w", err)
			}
		}
		return nil
	},
}

// catalog seed [file.json]
var seedCmd = &cobra.Command{
	Use:   "seed [file.json]",
	Short: "Load schools, categories and publishers",
	Long:  "Upserts reference data from file.json, or the built-in set when no file is given.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}

		rt, err := boot(cmd.Context())
		if err != nil {
			return err
		}
		defer rt.close()

		fmt.Println("Seeding reference data…")
		return seeders.Run(cmd.Context(), rt.catalog, path, os.Stdout)
	},
}
