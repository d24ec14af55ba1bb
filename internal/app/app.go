package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/docvault-backend/internal/data/aggregates"
	"github.com/yungbote/docvault-backend/internal/data/db"
	"github.com/yungbote/docvault-backend/internal/modules/documents"
	"github.com/yungbote/docvault-backend/internal/modules/extraction"
	"github.com/yungbote/docvault-backend/internal/modules/indexing"
	"github.com/yungbote/docvault-backend/internal/observability"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
)

type App struct {
	Log       *logger.Logger
	DB        *gorm.DB
	Cfg       Config
	Repos     Repos
	Clients   Clients
	Extractor *extraction.Extractor
	Documents documents.Usecases

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
}

// New loads configuration and wires the store, tools and use cases. The caller owns
// the returned App and must Close it.
func New(ctx context.Context) (*App, error) {
	LoadDotEnv(nil)
	cfg := LoadConfig(nil)

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	log.Info("Loading environment variables...")
	cfg = LoadConfig(log)

	shutdown := observability.InitOTel(ctx, log, cfg.Otel)

	pg, err := db.NewPostgresService(cfg.Postgres, log)
	if err != nil {
		_ = shutdown(ctx)
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		_ = pg.Close()
		_ = shutdown(ctx)
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	reposet := wireRepos(theDB, log)

	extractor, clients, err := NewExtractor(ctx, log, cfg)
	if err != nil {
		_ = pg.Close()
		_ = shutdown(ctx)
		log.Sync()
		return nil, err
	}

	adapter := indexing.NewAdapter(log, indexing.NewSentenceChunker(cfg.Chunking), clients.Embedder)

	uc := documents.New(documents.UsecasesDeps{
		DB:        theDB,
		Log:       log,
		Runner:    aggregates.NewGormTxRunner(theDB),
		Hooks:     aggregates.NewLogHooks(log),
		Documents: reposet.Documents,
		Versions:  reposet.Versions,
		Chunks:    reposet.Chunks,
		Extractor: extractor,
		Adapter:   adapter,
	})

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Repos:        reposet,
		Clients:      clients,
		Extractor:    extractor,
		Documents:    uc,
		pg:           pg,
		otelShutdown: shutdown,
	}, nil
}

// NewExtractor wires the extraction engine alone, for callers that do not need the
// store. The returned Clients must be closed.
func NewExtractor(ctx context.Context, log *logger.Logger, cfg Config) (*extraction.Extractor, Clients, error) {
	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		return nil, Clients{}, err
	}
	extractor := extraction.New(extraction.Deps{
		Log:        log,
		Recognizer: clients.recognizer(),
		Rasterizer: clients.Media,
		PageText:   clients.Media,
	}, extraction.Config{
		Languages: cfg.OCR.Languages,
		PDFDPI:    cfg.OCR.PDFDPI,
		Engine:    cfg.OCR.Engine,
		TempDir:   cfg.OCR.TempDir,
	})
	return extractor, clients, nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
		a.otelShutdown = nil
	}
	if a.pg != nil {
		if err := a.pg.Close(); err != nil && a.Log != nil {
			a.Log.Warn("postgres close failed", "error", err)
		}
		a.pg = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
