package main

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hrygo/sixdegrees/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := loadProfile()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx, p)
		if err != nil {
			return err
		}
		s, err := server.NewServer(ctx, p, st)
		if err != nil {
			_ = st.Close()
			return err
		}
		// Start shuts the server down, store included, before returning.
		if err := s.Start(ctx); err != nil && ctx.Err() == nil {
			return err
		}
		slog.Info("bye")
		return nil
	},
}

func init() {
	flags := serveCmd.Flags()
	flags.String("addr", "", "address of server")
	flags.Int("port", 8081, "port of server")
	flags.Float64("rate-limit", 20, "per-client requests per second, 0 disables")
	flags.Duration("warm-interval", 0, "rebuild the graph on this interval, 0 builds once at startup")
	flags.String("import-dir", "", "directory of *.json object records imported by POST /api/v1/import")
	for _, name := range []string{"addr", "port", "rate-limit", "warm-interval", "import-dir"} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}
}

