package logger

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type recordingInserter struct {
	mu   sync.Mutex
	docs []LogDocument
}

func (r *recordingInserter) InsertMany(_ context.Context, documents []interface{}, _ ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range documents {
		r.docs = append(r.docs, d.(LogDocument))
	}
	return &mongo.InsertManyResult{}, nil
}

func TestWithCtxFallsBackToBaseLogger(t *testing.T) {
	assert.Same(t, L, WithCtx(context.Background()))

	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := InjectLogger(context.Background(), custom)
	assert.Same(t, custom, WithCtx(ctx))
}

func TestMongoHandlerFlushesOnClose(t *testing.T) {
	sink := &recordingInserter{}
	h := NewMongoHandler(sink, slog.LevelInfo)

	var console bytes.Buffer
	log := Setup(&console, "local", h)
	defer Setup(&bytes.Buffer{}, "local")

	log.With("request_id", "req-1").Info("product created", "product_id", "p-1")
	log.Debug("below the sink level")
	h.Close()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.docs, 1)
	assert.Equal(t, "product created", sink.docs[0].Msg)
	assert.Equal(t, "req-1", sink.docs[0].RequestID)
	assert.Equal(t, "p-1", sink.docs[0].Attrs["product_id"])
	assert.Contains(t, console.String(), "below the sink level")
}

func TestMongoHandlerQualifiesGroupedAttrs(t *testing.T) {
	sink := &recordingInserter{}
	h := NewMongoHandler(sink, slog.LevelDebug)

	slog.New(h).WithGroup("batch").Info("committed", "ops", 3)
	h.Close()
	h.Close()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.docs, 1)
	assert.EqualValues(t, 3, sink.docs[0].Attrs["batch.ops"])
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, slog.LevelError, LevelFor(503))
	assert.Equal(t, slog.LevelWarn, LevelFor(404))
	assert.Equal(t, slog.LevelInfo, LevelFor(201))
}

func TestMongoHandlerStoresErrorMessages(t *testing.T) {
	sink := &recordingInserter{}
	h := NewMongoHandler(sink, slog.LevelInfo)

	cause := fmt.Errorf("save product p-1: %w", errors.New("deadline exceeded"))
	slog.New(h).Error("product save failed",
		"error", cause,
		"handler", func() {},
		"elapsed", 1500*time.Millisecond,
	)
	h.Close()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.docs, 1)
	attrs := sink.docs[0].Attrs
	assert.Equal(t, "save product p-1: deadline exceeded", attrs["error"])
	assert.IsType(t, "", attrs["handler"])
	assert.Equal(t, "1.5s", attrs["elapsed"])

	_, err := bson.Marshal(sink.docs[0])
	assert.NoError(t, err)
}

type failingInserter struct{}

func (failingInserter) InsertMany(context.Context, []interface{}, ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	return nil, errors.New("not primary")
}

func TestMongoHandlerReportsFailedInserts(t *testing.T) {
	var errOut bytes.Buffer
	h := NewMongoHandler(failingInserter{}, slog.LevelInfo)
	h.sink.errOut = &errOut

	slog.New(h).Info("product created")
	h.Close()

	assert.Contains(t, errOut.String(), "mongo sink dropped 1 records: not primary")
}
