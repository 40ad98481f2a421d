package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string `validate:"oneof=prod dev demo"`
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int `validate:"gte=0,lte=65535"`
	// Data is the data directory
	Data string
	// DSN points to where sixdegrees stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string `validate:"oneof=sqlite postgres"`
	// Version is the current version of server
	Version string

	// Graph configuration
	MaxEdgesPerNode int           `validate:"gte=1"`               // SIXDEGREES_MAX_EDGES_PER_NODE (default: 5)
	MinScore        float64       `validate:"gte=0"`               // SIXDEGREES_MIN_SCORE (default: 0)
	CacheTTL        time.Duration `validate:"gt=0"`                // SIXDEGREES_CACHE_TTL (default: 6h)
	CacheBackend    string        `validate:"oneof=memory badger"` // SIXDEGREES_CACHE_BACKEND (default: memory)
	ExportPath      string        // SIXDEGREES_EXPORT_PATH (default: "")
	WarmInterval    time.Duration `validate:"gte=0"` // SIXDEGREES_WARM_INTERVAL (default: 0, startup only)
	ImportDir       string        // SIXDEGREES_IMPORT_DIR, object records served by POST /api/v1/import (default: "", disabled)

	// Artifact inclusion and scoring policy
	ArtifactFilter     string // SIXDEGREES_ARTIFACT_FILTER, CEL expression (default: "")
	AllowAnonymous     bool   // SIXDEGREES_ALLOW_ANONYMOUS, keep artifacts without a maker (default: false)
	ArtistMatch        string `validate:"oneof=name id"`            // SIXDEGREES_ARTIST_MATCH (default: name)
	SecondaryAttribute string `validate:"oneof=department culture"` // SIXDEGREES_SECONDARY_ATTRIBUTE (default: department)

	// Embedding configuration
	EmbeddingProvider   string `validate:"oneof=seeded openai"` // SIXDEGREES_EMBEDDING_PROVIDER (default: seeded)
	EmbeddingDimensions int    `validate:"gte=1"`               // SIXDEGREES_EMBEDDING_DIMENSIONS (default: 5)
	EmbeddingModel      string // SIXDEGREES_EMBEDDING_MODEL (default: text-embedding-3-small)
	OpenAIAPIKey        string // SIXDEGREES_OPENAI_API_KEY
	OpenAIBaseURL       string // SIXDEGREES_OPENAI_BASE_URL (default: https://api.openai.com/v1)

	// RateLimit is the per-client request rate for the HTTP API (requests per second, 0 disables).
	RateLimit float64 `validate:"gte=0"` // SIXDEGREES_RATE_LIMIT (default: 20)
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsOpenAIEmbeddingEnabled returns true if the OpenAI embedder is selected and has credentials.
func (p *Profile) IsOpenAIEmbeddingEnabled() bool {
	return p.EmbeddingProvider == "openai" && p.OpenAIAPIKey != ""
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from SIXDEGREES_* environment variables.
// Values already set on the profile (e.g. from flags) are kept when the variable is unset.
func (p *Profile) FromEnv() {
	getString := func(key string, current, defaultValue string) string {
		if current != "" {
			defaultValue = current
		}
		return getEnvOrDefault(key, defaultValue)
	}
	getInt := func(key string, current, defaultValue int) int {
		if current != 0 {
			defaultValue = current
		}
		if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
			return v
		}
		return defaultValue
	}
	getFloat := func(key string, current, defaultValue float64) float64 {
		if current != 0 {
			defaultValue = current
		}
		if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
			return v
		}
		return defaultValue
	}
	getDuration := func(key string, current, defaultValue time.Duration) time.Duration {
		if current != 0 {
			defaultValue = current
		}
		if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
			return v
		}
		return defaultValue
	}

	p.MaxEdgesPerNode = getInt("SIXDEGREES_MAX_EDGES_PER_NODE", p.MaxEdgesPerNode, 5)
	p.MinScore = getFloat("SIXDEGREES_MIN_SCORE", p.MinScore, 0)
	p.CacheTTL = getDuration("SIXDEGREES_CACHE_TTL", p.CacheTTL, 6*time.Hour)
	p.CacheBackend = getString("SIXDEGREES_CACHE_BACKEND", p.CacheBackend, "memory")
	p.ExportPath = getString("SIXDEGREES_EXPORT_PATH", p.ExportPath, "")
	p.WarmInterval = getDuration("SIXDEGREES_WARM_INTERVAL", p.WarmInterval, 0)
	p.ImportDir = getString("SIXDEGREES_IMPORT_DIR", p.ImportDir, "")

	p.ArtifactFilter = getString("SIXDEGREES_ARTIFACT_FILTER", p.ArtifactFilter, "")
	if v, err := strconv.ParseBool(os.Getenv("SIXDEGREES_ALLOW_ANONYMOUS")); err == nil {
		p.AllowAnonymous = v
	}
	p.ArtistMatch = getString("SIXDEGREES_ARTIST_MATCH", p.ArtistMatch, "name")
	p.SecondaryAttribute = getString("SIXDEGREES_SECONDARY_ATTRIBUTE", p.SecondaryAttribute, "department")

	p.EmbeddingProvider = getString("SIXDEGREES_EMBEDDING_PROVIDER", p.EmbeddingProvider, "seeded")
	p.EmbeddingDimensions = getInt("SIXDEGREES_EMBEDDING_DIMENSIONS", p.EmbeddingDimensions, 5)
	p.EmbeddingModel = getString("SIXDEGREES_EMBEDDING_MODEL", p.EmbeddingModel, "text-embedding-3-small")
	p.OpenAIAPIKey = getString("SIXDEGREES_OPENAI_API_KEY", p.OpenAIAPIKey, "")
	p.OpenAIBaseURL = getString("SIXDEGREES_OPENAI_BASE_URL", p.OpenAIBaseURL, "https://api.openai.com/v1")

	p.RateLimit = getFloat("SIXDEGREES_RATE_LIMIT", p.RateLimit, 20)
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

var validate = validator.New()

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}
	if p.Driver == "" {
		p.Driver = "sqlite"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "sixdegrees")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/sixdegrees"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check dsn", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("sixdegrees_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	if err := validate.Struct(p); err != nil {
		return errors.Wrap(err, "invalid profile")
	}
	return nil
}
