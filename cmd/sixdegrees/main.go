package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/sixdegrees/internal/profile"
)

const envPrefix = "SIXDEGREES"

// version is the application version.
var version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "sixdegrees",
	Short: "Degrees of separation between artworks.",
	Long: `sixdegrees builds a similarity graph over a catalogue of artworks and
answers shortest-path and target-at-distance queries over it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		setupLogger()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	viper.SetDefault("mode", "dev")
	viper.SetDefault("driver", "sqlite")
	viper.SetDefault("port", 8081)
	viper.SetDefault("max-edges-per-node", 5)
	viper.SetDefault("cache-ttl", "6h")
	viper.SetDefault("cache-backend", "memory")
	viper.SetDefault("rate-limit", 20.0)

	flags := rootCmd.PersistentFlags()
	flags.String("mode", "dev", `mode of server, can be "prod" or "dev" or "demo"`)
	flags.String("data", "", "data directory")
	flags.String("driver", "sqlite", "database driver, sqlite or postgres")
	flags.String("dsn", "", "database source name (aka. DSN)")
	flags.Int("max-edges-per-node", 5, "maximum number of similarity edges kept per artwork")
	flags.Float64("min-score", 0, "pairs scoring at or below this are never linked")
	flags.Duration("cache-ttl", 0, "how long a built graph is served from cache (default 6h)")
	flags.String("cache-backend", "memory", "graph cache backend, memory or badger")
	flags.String("export-path", "", "write a JSON copy of every fresh graph build to this file")
	flags.String("artifact-filter", "", "CEL expression selecting which artworks join the graph")
	flags.Bool("allow-anonymous", false, "include artworks without a maker")
	flags.String("embedding-provider", "seeded", "text embedding provider, seeded or openai")

	for _, name := range []string{
		"mode", "data", "driver", "dsn", "max-edges-per-node", "min-score", "cache-ttl",
		"cache-backend", "export-path", "artifact-filter", "allow-anonymous", "embedding-provider",
	} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	rootCmd.AddCommand(serveCmd, exportCmd, importCmd, distanceCmd, targetCmd)
}

func initConfig() {
	// A missing .env file is fine.
	_ = godotenv.Load()
}

func setupLogger() {
	level := slog.LevelInfo
	var handler slog.Handler
	if viper.GetString("mode") == "prod" {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	} else {
		level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(handler))
}

// loadProfile builds the profile from flags and SIXDEGREES_* variables.
func loadProfile() (*profile.Profile, error) {
	p := &profile.Profile{
		Mode:              viper.GetString("mode"),
		Addr:              viper.GetString("addr"),
		Port:              viper.GetInt("port"),
		Data:              viper.GetString("data"),
		Driver:            viper.GetString("driver"),
		DSN:               viper.GetString("dsn"),
		Version:           version,
		MaxEdgesPerNode:   viper.GetInt("max-edges-per-node"),
		MinScore:          viper.GetFloat64("min-score"),
		CacheTTL:          viper.GetDuration("cache-ttl"),
		CacheBackend:      viper.GetString("cache-backend"),
		ExportPath:        viper.GetString("export-path"),
		ArtifactFilter:    viper.GetString("artifact-filter"),
		AllowAnonymous:    viper.GetBool("allow-anonymous"),
		EmbeddingProvider: viper.GetString("embedding-provider"),
		WarmInterval:      viper.GetDuration("warm-interval"),
		ImportDir:         viper.GetString("import-dir"),
	}
	p.FromEnv()
	// FromEnv treats zero as unset; viper already holds the resolved value, so an explicit 0 disables limiting.
	p.RateLimit = viper.GetFloat64("rate-limit")
	if p.Data == "" && p.Mode != "prod" {
		p.Data = "."
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
