// Memoria Daemon - HTTP service for transcript analysis and persona storage
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/memoria-app/memoria/internal/api"
	"github.com/memoria-app/memoria/internal/config"
	"github.com/memoria-app/memoria/internal/embeddings"
	"github.com/memoria-app/memoria/internal/llm"
	"github.com/memoria-app/memoria/internal/logging"
	"github.com/memoria-app/memoria/internal/pipeline"
	"github.com/memoria-app/memoria/internal/storage"
	"github.com/memoria-app/memoria/internal/vectors"
)

var (
	configPath string
	port       int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "memoria",
		Short: "Memoria Daemon - preserve how the people you love communicate",
		RunE:  runDaemon,
	}

	rootCmd.Flags().StringVar(&configPath, "config", "", "Config file path (default ~/.memoria/config.json)")
	rootCmd.Flags().IntVar(&port, "port", 0, "HTTP server port (overrides config)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	logging.SetLevel(logging.ParseLevel(cfg.LogLevel))

	fmt.Println("🚀 Starting Memoria Daemon...")

	// Open database
	db, err := storage.Open(storage.Config{Path: cfg.DatabasePath()})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Optional semantic search: Qdrant + Ollama, both best-effort
	var vectorStore *vectors.Store
	var embedder *embeddings.Service
	if cfg.Qdrant.Enabled {
		vectorStore, err = vectors.NewStore(vectors.Config{
			Host: cfg.Qdrant.Host,
			Port: cfg.Qdrant.Port,
		})
		if err != nil {
			fmt.Printf("⚠️  Qdrant not available: %v\n", err)
			fmt.Println("   Memory search falls back to substring matching")
			vectorStore = nil
		} else {
			defer vectorStore.Close()
			fmt.Println("✅ Qdrant connected")
		}

		embedder = embeddings.NewService(embeddings.Config{
			BaseURL: cfg.Ollama.URL,
			Model:   cfg.Ollama.Model,
		})
		if err := embedder.Health(context.Background()); err != nil {
			fmt.Printf("⚠️  Ollama not available: %v\n", err)
			embedder = nil
		} else {
			fmt.Printf("✅ Ollama connected (%s)\n", embedder.ModelName())
			if vectorStore != nil {
				if err := vectorStore.EnsureCollection(context.Background(), embedder.Dimension()); err != nil {
					fmt.Printf("⚠️  Vector collection setup failed: %v\n", err)
				}
			}
		}
	}

	// LLM client for optional deep analysis
	llmClient := llm.NewClient(llm.Config{
		APIKey: cfg.Claude.APIKey,
		Model:  cfg.Claude.Model,
	})
	if !llmClient.IsConfigured() {
		fmt.Println("⚠️  ANTHROPIC_API_KEY not set - deep analysis disabled")
	} else {
		fmt.Println("✅ Claude API configured")
	}

	server := api.New(api.Config{
		Port:     cfg.Server.Port,
		DB:       db,
		Pipeline: pipeline.New(llmClient),
		Embedder: embedder,
		Vectors:  vectorStore,
	})

	// Handle shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh

		fmt.Println("\n🛑 Shutting down...")
		server.Stop(context.Background())
	}()

	fmt.Printf("🌐 API listening on http://localhost:%d\n", cfg.Server.Port)
	return server.Start()
}
