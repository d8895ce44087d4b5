package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"call-audit-go/internal/aggregator"
	"call-audit-go/internal/blobstore"
	"call-audit-go/internal/config"
	"call-audit-go/internal/embedding"
	"call-audit-go/internal/extractor"
	"call-audit-go/internal/llm"
	"call-audit-go/internal/logger"
	"call-audit-go/internal/pipeline"
	"call-audit-go/internal/retrieval"
	"call-audit-go/internal/server"
	"call-audit-go/internal/store"
	"call-audit-go/internal/transcription"
	"call-audit-go/internal/validator"
)

func main() {
	_ = godotenv.Load() // loads .env

	log := logger.New()
	log.WithField("service", "call-audit-go").Info("starting service")

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.WithError(err).Fatal("failed to connect to mongodb")
	}
	if err := mongoClient.Ping(ctx, nil); err != nil {
		log.WithError(err).Fatal("mongodb unreachable")
	}
	log.WithField("database", cfg.MongoDatabase).Info("mongodb connected")
	records := store.NewMongo(mongoClient, cfg.MongoDatabase)

	blobs := blobstore.NewClient(cfg.BlobBaseURL, cfg.BlobBucket)
	transcriber := transcription.NewClient(cfg.TranscribeURL, cfg.TranscribePollMax)
	gen := llm.NewClient(cfg.LLMGatewayURL, cfg.LLMAPIKey, cfg.LLMModel)
	embedder := embedding.NewClient(cfg.EmbeddingURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModel)

	loader := retrieval.NewWorkbookLoader(knowledgeFetcher(cfg, blobs))
	index := retrieval.NewIndex(loader, embedder)

	ext := extractor.New(gen)
	val := validator.New(gen, index)
	pipe := pipeline.New(blobs, transcriber, ext, val, records)
	agg := aggregator.New(records)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      server.New(pipe, agg, records).Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.WithField("addr", srv.Addr).Info("listening")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server terminated")
	}
}

// knowledgeFetcher reads the pre-embedded knowledge workbook, from a local
// path when configured, otherwise from object storage. The workbook is
// buffered fully since excelize needs a seekable reader anyway.
func knowledgeFetcher(cfg *config.Config, blobs *blobstore.Client) func(ctx context.Context) (io.Reader, error) {
	return func(ctx context.Context) (io.Reader, error) {
		if cfg.KnowledgeTablePath != "" {
			b, err := os.ReadFile(cfg.KnowledgeTablePath)
			if err != nil {
				return nil, fmt.Errorf("read knowledge table: %w", err)
			}
			return bytes.NewReader(b), nil
		}
		body, err := blobs.Get(ctx, cfg.KnowledgeTableKey)
		if err != nil {
			return nil, err
		}
		defer body.Close()
		b, err := io.ReadAll(body)
		if err != nil {
			return nil, fmt.Errorf("download knowledge table: %w", err)
		}
		return bytes.NewReader(b), nil
	}
}
