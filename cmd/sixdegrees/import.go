package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hrygo/sixdegrees/plugin/ingest"
	apiv1 "github.com/hrygo/sixdegrees/server/router/api/v1"
)

var importOpts struct {
	dir     string
	limit   int
	replace bool
	seed    uint64
	server  string
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import artwork object records from a directory of JSON files",
	Long: `Import artwork object records from a directory of JSON files.

With --server the import runs inside that serving process, reading its
--import-dir, so the graph it serves is rebuilt from the new artworks.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if importOpts.server != "" {
			result, err := importViaServer(cmd.Context(), importOpts.server, apiv1.ImportRequest{
				Limit:   importOpts.limit,
				Replace: importOpts.replace,
			})
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), result)
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

		var rng *rand.Rand
		if importOpts.seed != 0 {
			rng = rand.New(rand.NewPCG(importOpts.seed, 0))
		}
		result, err := ingest.NewImporter(env.store, env.builder, rng).Import(cmd.Context(), ingest.Options{
			Dir:     importOpts.dir,
			Limit:   importOpts.limit,
			Replace: importOpts.replace,
		})
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), result)
	},
}

func init() {
	flags := importCmd.Flags()
	flags.StringVar(&importOpts.dir, "dir", "objects", "directory of *.json object records")
	flags.IntVar(&importOpts.limit, "limit", ingest.DefaultLimit, "maximum number of files sampled")
	flags.BoolVar(&importOpts.replace, "replace", false, "delete every stored artwork before importing")
	flags.Uint64Var(&importOpts.seed, "seed", 0, "sampling seed, 0 picks one at random")
	flags.StringVar(&importOpts.server, "server", "", "base URL of a running server to import through, e.g. http://localhost:8081")
}

// importViaServer asks a running server to import from its own import directory.
func importViaServer(ctx context.Context, baseURL string, req apiv1.ImportRequest) (*ingest.Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	url := strings.TrimRight(baseURL, "/") + "/api/v1/import"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build import request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to reach %s", url)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read import response")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("server import failed: %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}
	var result ingest.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, errors.Wrap(err, "failed to decode import response")
	}
	return &result, nil
}

func printResult(w io.Writer, result *ingest.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
