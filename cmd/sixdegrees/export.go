package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hrygo/sixdegrees/plugin/graph"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the artwork graph as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p, err := loadProfile()
		if err != nil {
			return err
		}
		env, err := openGraphEnv(cmd.Context(), p)
		if err != nil {
			return err
		}
		defer env.Close()

		g, err := env.builder.GetGraph(cmd.Context())
		if err != nil {
			return err
		}
		if exportOutput == "-" {
			return graph.WriteJSON(cmd.OutOrStdout(), g)
		}
		if err := graph.ExportFile(exportOutput, g); err != nil {
			return err
		}
		slog.Info("graph exported", "path", exportOutput, "nodes", g.Stats.NodeCount, "edges", g.Stats.EdgeCount)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "graph.json", `output file, "-" for stdout`)
}
