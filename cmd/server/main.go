package main

import (
	"fmt"
	"log"

	"invoicereader/internal/config"
	openaiembed "invoicereader/internal/embedder/openai"
	"invoicereader/internal/extractor"
	"invoicereader/internal/handler"
	"invoicereader/internal/port"
	"invoicereader/internal/repository/postgres"
	"invoicereader/internal/router"
	"invoicereader/internal/service"
	s3storage "invoicereader/internal/storage/s3"
	"invoicereader/internal/structurer"
	"invoicereader/internal/structurer/gemini"
	"invoicereader/internal/structurer/openai"
)

func init() {
	structurer.RegisterProvider("gemini", func(cfg *config.LLMProviderConfig) (port.Structurer, error) {
		return gemini.New(cfg), nil
	})
	structurer.RegisterProvider("openai", func(cfg *config.LLMProviderConfig) (port.Structurer, error) {
		return openai.New(cfg), nil
	})
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	invoiceRepo := postgres.NewInvoiceRepo(db)

	// Initialize pipeline stages
	textExtractor := extractor.New(&cfg.OCR)

	llm, err := buildStructurer(&cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to initialize structurer: %w", err)
	}

	embedder := openaiembed.New(&cfg.Embedding)

	// Raw upload archival is optional; the pipeline runs without it.
	var archive port.ObjectStorage
	if cfg.Archive.Enabled() {
		archive, err = s3storage.NewS3Client(&cfg.Archive)
		if err != nil {
			return fmt.Errorf("failed to initialize archive storage: %w", err)
		}
	}

	// Initialize services
	invoiceSvc := service.NewInvoiceService(invoiceRepo, textExtractor, llm, embedder, archive, &cfg.Upload, &cfg.Archive)

	// Initialize handlers
	invoiceH := handler.NewInvoiceHandler(invoiceSvc, &cfg.Upload)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, invoiceH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// buildStructurer wires the primary provider, wrapped in a fallback chain
// when a secondary provider is configured.
func buildStructurer(cfg *config.LLMConfig) (port.Structurer, error) {
	primary, err := structurer.NewStructurer(&cfg.Primary)
	if err != nil {
		return nil, err
	}

	secondaryCfg := cfg.SecondaryConfig()
	if secondaryCfg == nil {
		return primary, nil
	}

	secondary, err := structurer.NewStructurer(secondaryCfg)
	if err != nil {
		return nil, err
	}

	return structurer.NewFallbackStructurer(
		[]port.Structurer{primary, secondary},
		[]string{cfg.Primary.Provider, secondaryCfg.Provider},
	), nil
}
