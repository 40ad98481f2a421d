package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/sixdegrees/plugin/ingest"
	apiv1 "github.com/hrygo/sixdegrees/server/router/api/v1"
)

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs([]string{"12", "304"})
	require.NoError(t, err)
	assert.Equal(t, []int64{12, 304}, ids)

	_, err = parseIDs([]string{"12", "abc"})
	assert.ErrorContains(t, err, `invalid artwork id "abc"`)
}

func TestRootCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"serve", "export", "import", "distance", "target"} {
		assert.True(t, names[want], "missing %s command", want)
	}
}

func TestTargetCmdArgs(t *testing.T) {
	assert.Error(t, targetCmd.Args(targetCmd, nil))
	assert.NoError(t, targetCmd.Args(targetCmd, []string{"1"}))
	assert.Error(t, distanceCmd.Args(distanceCmd, []string{"1"}))
}

func TestImportViaServer(t *testing.T) {
	var got apiv1.ImportRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/import", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(ingest.Result{Files: 3, Imported: 2, Skipped: 1})
	}))
	defer srv.Close()

	result, err := importViaServer(context.Background(), srv.URL+"/", apiv1.ImportRequest{Limit: 3, Replace: true})
	require.NoError(t, err)
	assert.Equal(t, &ingest.Result{Files: 3, Imported: 2, Skipped: 1}, result)
	assert.Equal(t, apiv1.ImportRequest{Limit: 3, Replace: true}, got)
}

func TestImportViaServer_Error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"code":"SERVICE_UNAVAILABLE","message":"import directory is not configured"}`))
	}))
	defer srv.Close()

	_, err := importViaServer(context.Background(), srv.URL, apiv1.ImportRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import directory is not configured")
}
