package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/0xcro3dile/autorag-go/internal/adapters/chunkstore"
	"github.com/0xcro3dile/autorag-go/internal/adapters/embedding"
	"github.com/0xcro3dile/autorag-go/internal/adapters/filewatcher"
	"github.com/0xcro3dile/autorag-go/internal/adapters/llm"
	"github.com/0xcro3dile/autorag-go/internal/adapters/loader"
	"github.com/0xcro3dile/autorag-go/internal/config"
	"github.com/0xcro3dile/autorag-go/internal/domain/ports"
	"github.com/0xcro3dile/autorag-go/internal/domain/usecases"
	httpserver "github.com/0xcro3dile/autorag-go/internal/infrastructure/http"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "config.yaml", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[ERROR] Failed to load config: %v", err)
	}

	embedder := embedding.NewOpenAIAdapter(embedding.Config{
		APIKey:  cfg.EmbeddingAPIKey(),
		BaseURL: cfg.Embedding.BaseURL,
		Model:   cfg.Embedding.Model,
		Dim:     cfg.Embedding.Dimension,
		Timeout: time.Duration(cfg.Embedding.TimeoutSecs) * time.Second,
	})

	completer := llm.NewOpenAIAdapter(llm.Config{
		APIKey:       cfg.LLMAPIKey(),
		BaseURL:      cfg.LLM.BaseURL,
		DefaultModel: cfg.LLM.Model,
		Timeout:      time.Duration(cfg.LLM.TimeoutSecs) * time.Second,
	})

	store, err := chunkstore.NewSQLiteStore(cfg.Storage.DataDir)
	if err != nil {
		log.Fatalf("[ERROR] Failed to open chunk store: %v", err)
	}
	defer store.Close()

	pipeline := usecases.NewQueryPipeline(embedder, completer, cfg.Pipeline.BatchSize, cfg.Pipeline.MaxParallel)
	ingest := usecases.NewIngestPipeline(embedder, store, cfg.Chunker.MaxLength, cfg.Chunker.Overlap)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := startAutoIngest(ctx, ingest, cfg.Storage.DocumentsDir); err != nil {
		log.Printf("[WARN] Auto-ingest disabled: %v", err)
	}

	server := httpserver.NewServer(pipeline, ingest, store, httpserver.Defaults{
		TopK:        cfg.Pipeline.TopK,
		Temperature: cfg.Pipeline.Temperature,
		Threshold:   cfg.Pipeline.Threshold,
		Model:       cfg.LLM.Model,
	}, cfg.Server.Addr,
		time.Duration(cfg.Server.ReadTimeout)*time.Second,
		time.Duration(cfg.Server.WriteTimeout)*time.Second,
	)

	if err := server.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("[ERROR] Server failed: %v", err)
	}
	log.Printf("[INFO] Server stopped")
}

// startAutoIngest watches the documents directory and re-ingests files as they
// appear or change. Removed files have their chunks deleted.
func startAutoIngest(ctx context.Context, ingest *usecases.IngestPipeline, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	docLoader := loader.NewMultiLoader()
	watcher, err := filewatcher.NewFSNotifyWatcher(docLoader.SupportedExtensions())
	if err != nil {
		return err
	}

	events, err := watcher.Watch(ctx, dir)
	if err != nil {
		watcher.Stop()
		return err
	}

	log.Printf("[INFO] Watching %s for documents", dir)

	go func() {
		defer watcher.Stop()
		for event := range events {
			switch event.Operation {
			case ports.FileCreated, ports.FileModified:
				doc, err := docLoader.Load(ctx, event.Path)
				if err != nil {
					log.Printf("[ERROR] Failed to load %s: %v", event.Path, err)
					continue
				}
				chunks, err := ingest.Ingest(ctx, doc, loader.SplitMethodFor(doc))
				if err != nil {
					log.Printf("[ERROR] Failed to ingest %s: %v", event.Path, err)
					continue
				}
				log.Printf("[INFO] Ingested %s as document %s (%d chunks)", event.Path, doc.ID, len(chunks))
			case ports.FileDeleted:
				docID := loader.DocumentIDForPath(event.Path)
				if err := ingest.Delete(ctx, docID); err != nil {
					log.Printf("[ERROR] Failed to delete document %s: %v", docID, err)
					continue
				}
				log.Printf("[INFO] Removed document %s for %s", docID, event.Path)
			}
		}
	}()

	return nil
}
