package main

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hrygo/sixdegrees/plugin/graph"
	"github.com/hrygo/sixdegrees/server/service/artgraph"
)

var distancePath bool

var distanceCmd = &cobra.Command{
	Use:   "distance <from-id> <to-id>",
	Short: "Print the degrees of separation between two artworks",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		p, err := loadProfile()
		if err != nil {
			return err
		}
		env, err := openGraphEnv(cmd.Context(), p)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := artgraph.NewService(env.builder, nil).GetDistance(cmd.Context(), ids[0], ids[1], distancePath)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), result)
	},
}

var targetOpts struct {
	steps    int
	minSteps int
	maxSteps int
}

var targetCmd = &cobra.Command{
	Use:   "target <start-id>",
	Short: "Pick an artwork about --steps hops away from the start",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		q := graph.NewTargetQuery(targetOpts.steps)
		if cmd.Flags().Changed("min-steps") {
			q.Min = targetOpts.minSteps
		}
		if cmd.Flags().Changed("max-steps") {
			q.Max = targetOpts.maxSteps
		}

		p, err := loadProfile()
		if err != nil {
			return err
		}
		env, err := openGraphEnv(cmd.Context(), p)
		if err != nil {
			return err
		}
		defer env.Close()

		node, err := artgraph.NewService(env.builder, nil).GetTargetArtwork(cmd.Context(), ids[0], q)
		if err != nil {
			return errors.Wrapf(err, "no target for artwork %d within %d..%d steps", ids[0], q.Min, q.Max)
		}
		return printJSON(cmd.OutOrStdout(), node)
	},
}

func init() {
	distanceCmd.Flags().BoolVar(&distancePath, "path", false, "include one shortest path")

	flags := targetCmd.Flags()
	flags.IntVar(&targetOpts.steps, "steps", graph.DefaultPreferredDistance, "preferred number of hops")
	flags.IntVar(&targetOpts.minSteps, "min-steps", 0, "minimum hops (default steps-1)")
	flags.IntVar(&targetOpts.maxSteps, "max-steps", 0, "maximum hops (default steps+1)")
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, len(args))
	for i, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid artwork id %q", arg)
		}
		ids[i] = id
	}
	return ids, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
