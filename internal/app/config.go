package app

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/docvault-backend/internal/data/db"
	"github.com/yungbote/docvault-backend/internal/modules/extraction"
	"github.com/yungbote/docvault-backend/internal/modules/indexing"
	"github.com/yungbote/docvault-backend/internal/observability"
	"github.com/yungbote/docvault-backend/internal/platform/envutil"
	"github.com/yungbote/docvault-backend/internal/platform/gcp"
	"github.com/yungbote/docvault-backend/internal/platform/logger"
	"github.com/yungbote/docvault-backend/internal/platform/openai"
)

type OCRConfig struct {
	// Engine is "tesseract" (local binaries), "gcp_vision" or "gcp_documentai".
	Engine          string
	DocumentAI      gcp.DocumentAIConfig
	Languages       extraction.LanguageConfig
	TesseractConfig string
	PDFDPI          int
	TempDir         string
	Timeout         time.Duration
}

type Config struct {
	LogMode    string
	Postgres   db.PostgresConfig
	OCR        OCRConfig
	Chunking   indexing.SentenceChunkerConfig
	Embeddings openai.Config
	Otel       observability.OtelConfig

	// ReindexConcurrency bounds cmd/reindex_all; documents are never split across workers.
	ReindexConcurrency int
}

// LoadDotEnv loads the given env files (".env" when none) without overriding variables
// that are already set. Missing files are ignored.
func LoadDotEnv(log *logger.Logger, paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if log != nil {
				log.Warn("failed to load env file", "path", p, "error", err)
			}
		}
	}
}

func LoadConfig(log *logger.Logger) Config {
	defLangs := extraction.DefaultLanguageConfig()
	cfg := Config{
		LogMode: envutil.String("LOG_MODE", "development"),
		Postgres: db.PostgresConfig{
			Host:     envutil.String("POSTGRES_HOST", "localhost"),
			Port:     envutil.String("POSTGRES_PORT", "5432"),
			User:     envutil.String("POSTGRES_USER", "postgres"),
			Password: envutil.String("POSTGRES_PASSWORD", ""),
			Name:     envutil.String("POSTGRES_NAME", "docvault"),
			SSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
		},
		OCR: OCRConfig{
			Engine: strings.ToLower(envutil.String("OCR_ENGINE", extraction.EngineTesseract)),
			Languages: extraction.LanguageConfig{
				Default:   envutil.String("OCR_LANGUAGES", defLangs.Default),
				Fallbacks: envutil.String("OCR_FALLBACK_LANGUAGES", defLangs.Fallbacks),
			},
			TesseractConfig: envutil.String("OCR_TESSERACT_CONFIG", ""),
			PDFDPI:          envutil.Int("OCR_PDF_DPI", 300),
			TempDir:         envutil.String("OCR_TEMP_DIR", ""),
			Timeout:         time.Duration(envutil.Int("OCR_TIMEOUT_SECONDS", 600)) * time.Second,
			DocumentAI: gcp.DocumentAIConfig{
				ProjectID:        envutil.String("DOCUMENTAI_PROJECT_ID", ""),
				Location:         envutil.String("DOCUMENTAI_LOCATION", "us"),
				ProcessorID:      envutil.String("DOCUMENTAI_PROCESSOR_ID", ""),
				ProcessorVersion: envutil.String("DOCUMENTAI_PROCESSOR_VERSION", ""),
			},
		},
		Chunking: indexing.SentenceChunkerConfig{
			SentencesPerChunk: envutil.Int("CHUNK_SENTENCES", 5),
			OverlapSentences:  envutil.Int("CHUNK_OVERLAP_SENTENCES", 1),
			MaxChars:          envutil.Int("CHUNK_MAX_CHARS", 2000),
		},
		Embeddings: openai.Config{
			APIKey:     envutil.String("OPENAI_API_KEY", ""),
			BaseURL:    envutil.String("OPENAI_BASE_URL", ""),
			EmbedModel: envutil.String("OPENAI_EMBED_MODEL", "text-embedding-3-small"),
			Dimensions: envutil.Int("EMBEDDING_DIMENSIONS", 0),
			Timeout:    time.Duration(envutil.Int("OPENAI_TIMEOUT_SECONDS", 180)) * time.Second,
			MaxRetries: envutil.Int("OPENAI_MAX_RETRIES", 3),
		},
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "docvault"),
			Environment: envutil.String("APP_ENV", "development"),
			Version:     envutil.String("APP_VERSION", ""),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 1),
		},
		ReindexConcurrency: envutil.Int("REINDEX_CONCURRENCY", 4),
	}

	switch cfg.OCR.Engine {
	case extraction.EngineTesseract, extraction.EngineGCPVision, extraction.EngineGCPDocAI:
	default:
		if log != nil {
			log.Warn("unknown OCR_ENGINE, using tesseract", "engine", cfg.OCR.Engine)
		}
		cfg.OCR.Engine = extraction.EngineTesseract
	}
	if cfg.ReindexConcurrency <= 0 {
		cfg.ReindexConcurrency = 1
	}
	if log != nil {
		log.Debug("config loaded",
			"postgres_host", cfg.Postgres.Host,
			"ocr_engine", cfg.OCR.Engine,
			"ocr_languages", cfg.OCR.Languages.Default,
			"ocr_fallback_languages", cfg.OCR.Languages.Fallbacks,
			"embeddings_enabled", cfg.EmbeddingsEnabled(),
			"otel_enabled", cfg.Otel.Enabled,
		)
	}
	return cfg
}

// EmbeddingsEnabled reports whether chunks get vectors. Without an API key chunks are
// stored with NULL embeddings.
func (c Config) EmbeddingsEnabled() bool {
	return strings.TrimSpace(c.Embeddings.APIKey) != ""
}
