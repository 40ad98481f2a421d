package profile

import (
	"os"
	"testing"
	"time"
)

var graphEnvVars = []string{
	"SIXDEGREES_MAX_EDGES_PER_NODE",
	"SIXDEGREES_MIN_SCORE",
	"SIXDEGREES_CACHE_TTL",
	"SIXDEGREES_CACHE_BACKEND",
	"SIXDEGREES_EXPORT_PATH",
	"SIXDEGREES_WARM_INTERVAL",
	"SIXDEGREES_IMPORT_DIR",
	"SIXDEGREES_ARTIFACT_FILTER",
	"SIXDEGREES_ALLOW_ANONYMOUS",
	"SIXDEGREES_ARTIST_MATCH",
	"SIXDEGREES_SECONDARY_ATTRIBUTE",
	"SIXDEGREES_EMBEDDING_PROVIDER",
	"SIXDEGREES_EMBEDDING_DIMENSIONS",
	"SIXDEGREES_EMBEDDING_MODEL",
	"SIXDEGREES_OPENAI_API_KEY",
	"SIXDEGREES_OPENAI_BASE_URL",
	"SIXDEGREES_RATE_LIMIT",
}

// clearGraphEnvVars unsets every variable for the duration of the test.
func clearGraphEnvVars(t *testing.T) {
	t.Helper()
	for _, key := range graphEnvVars {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestProfileDefaults(t *testing.T) {
	clearGraphEnvVars(t)

	profile := &Profile{}
	profile.FromEnv()

	if profile.MaxEdgesPerNode != 5 {
		t.Errorf("MaxEdgesPerNode: expected 5, got %d", profile.MaxEdgesPerNode)
	}
	if profile.CacheTTL != 6*time.Hour {
		t.Errorf("CacheTTL: expected 6h, got %s", profile.CacheTTL)
	}
	if profile.AllowAnonymous {
		t.Error("AllowAnonymous should be false by default")
	}

	tests := []struct {
		name     string
		expected string
		actual   string
	}{
		{"CacheBackend default", "memory", profile.CacheBackend},
		{"ArtistMatch default", "name", profile.ArtistMatch},
		{"SecondaryAttribute default", "department", profile.SecondaryAttribute},
		{"EmbeddingProvider default", "seeded", profile.EmbeddingProvider},
		{"EmbeddingModel default", "text-embedding-3-small", profile.EmbeddingModel},
		{"OpenAIBaseURL default", "https://api.openai.com/v1", profile.OpenAIBaseURL},
		{"ArtifactFilter default", "", profile.ArtifactFilter},
		{"ImportDir default", "", profile.ImportDir},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.actual != tt.expected {
				t.Errorf("%s: expected %q, got %q", tt.name, tt.expected, tt.actual)
			}
		})
	}
}

func TestProfileFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envVar   string
		envValue string
		check    func(*Profile) bool
	}{
		{
			name:     "max edges",
			envVar:   "SIXDEGREES_MAX_EDGES_PER_NODE",
			envValue: "8",
			check:    func(p *Profile) bool { return p.MaxEdgesPerNode == 8 },
		},
		{
			name:     "cache ttl",
			envVar:   "SIXDEGREES_CACHE_TTL",
			envValue: "30m",
			check:    func(p *Profile) bool { return p.CacheTTL == 30*time.Minute },
		},
		{
			name:     "allow anonymous",
			envVar:   "SIXDEGREES_ALLOW_ANONYMOUS",
			envValue: "true",
			check:    func(p *Profile) bool { return p.AllowAnonymous },
		},
		{
			name:     "culture as secondary attribute",
			envVar:   "SIXDEGREES_SECONDARY_ATTRIBUTE",
			envValue: "culture",
			check:    func(p *Profile) bool { return p.SecondaryAttribute == "culture" },
		},
		{
			name:     "min score",
			envVar:   "SIXDEGREES_MIN_SCORE",
			envValue: "0.6",
			check:    func(p *Profile) bool { return p.MinScore == 0.6 },
		},
		{
			name:     "import dir",
			envVar:   "SIXDEGREES_IMPORT_DIR",
			envValue: "/srv/objects",
			check:    func(p *Profile) bool { return p.ImportDir == "/srv/objects" },
		},
		{
			name:     "malformed number falls back to default",
			envVar:   "SIXDEGREES_MAX_EDGES_PER_NODE",
			envValue: "five",
			check:    func(p *Profile) bool { return p.MaxEdgesPerNode == 5 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearGraphEnvVars(t)
			t.Setenv(tt.envVar, tt.envValue)

			profile := &Profile{}
			profile.FromEnv()
			if !tt.check(profile) {
				t.Errorf("%s=%s was not applied: %+v", tt.envVar, tt.envValue, profile)
			}
		})
	}
}

func TestProfileFromEnvKeepsExplicitValues(t *testing.T) {
	clearGraphEnvVars(t)

	profile := &Profile{MaxEdgesPerNode: 3, CacheBackend: "badger"}
	profile.FromEnv()
	if profile.MaxEdgesPerNode != 3 {
		t.Errorf("expected explicit MaxEdgesPerNode 3, got %d", profile.MaxEdgesPerNode)
	}
	if profile.CacheBackend != "badger" {
		t.Errorf("expected explicit CacheBackend badger, got %s", profile.CacheBackend)
	}
}

func TestValidate(t *testing.T) {
	clearGraphEnvVars(t)

	t.Run("sqlite dsn derived from data dir", func(t *testing.T) {
		profile := &Profile{Mode: "dev", Data: t.TempDir()}
		profile.FromEnv()
		if err := profile.Validate(); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if profile.Driver != "sqlite" {
			t.Errorf("expected default driver sqlite, got %s", profile.Driver)
		}
		if profile.DSN == "" {
			t.Error("expected DSN to be derived")
		}
	})

	t.Run("unknown mode becomes demo", func(t *testing.T) {
		profile := &Profile{Mode: "staging", Data: t.TempDir()}
		profile.FromEnv()
		if err := profile.Validate(); err != nil {
			t.Fatalf("Validate() error = %v", err)
		}
		if profile.Mode != "demo" {
			t.Errorf("expected mode demo, got %s", profile.Mode)
		}
	})

	t.Run("missing data dir", func(t *testing.T) {
		profile := &Profile{Mode: "dev", Data: "/nonexistent/sixdegrees"}
		profile.FromEnv()
		if err := profile.Validate(); err == nil {
			t.Error("expected error for missing data dir")
		}
	})

	t.Run("invalid cache backend", func(t *testing.T) {
		profile := &Profile{Mode: "dev", Data: t.TempDir(), CacheBackend: "redis"}
		profile.FromEnv()
		if err := profile.Validate(); err == nil {
			t.Error("expected validation error for cache backend")
		}
	})
}

func TestIsOpenAIEmbeddingEnabled(t *testing.T) {
	tests := []struct {
		name     string
		profile  Profile
		expected bool
	}{
		{"seeded provider", Profile{EmbeddingProvider: "seeded", OpenAIAPIKey: "k"}, false},
		{"openai without key", Profile{EmbeddingProvider: "openai"}, false},
		{"openai with key", Profile{EmbeddingProvider: "openai", OpenAIAPIKey: "k"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.profile.IsOpenAIEmbeddingEnabled(); got != tt.expected {
				t.Errorf("IsOpenAIEmbeddingEnabled() = %v, want %v", got, tt.expected)
			}
		})
	}
}
