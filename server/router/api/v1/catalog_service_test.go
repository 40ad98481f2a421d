package v1

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/sixdegrees/internal/profile"
	"github.com/hrygo/sixdegrees/plugin/ingest"
	"github.com/hrygo/sixdegrees/server/service/artgraph"
	"github.com/hrygo/sixdegrees/store"
)

// memCatalog keeps artifacts in memory and honours the paging fields of FindArtifact.
type memCatalog struct {
	mu        sync.Mutex
	artifacts map[int64]*store.Artifact
	err       error
}

func newMemCatalog(artifacts ...*store.Artifact) *memCatalog {
	c := &memCatalog{artifacts: map[int64]*store.Artifact{}}
	for _, a := range artifacts {
		c.artifacts[a.ID] = a
	}
	return c
}

func (c *memCatalog) ListArtifacts(_ context.Context, find *store.FindArtifact) ([]*store.Artifact, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	list := make([]*store.Artifact, 0, len(c.artifacts))
	for _, a := range c.artifacts {
		if len(find.IDs) > 0 && !slices.Contains(find.IDs, a.ID) {
			continue
		}
		list = append(list, a)
	}
	slices.SortFunc(list, func(a, b *store.Artifact) int { return int(a.ID - b.ID) })
	if find.Offset != nil {
		list = list[min(*find.Offset, len(list)):]
	}
	if find.Limit != nil {
		list = list[:min(*find.Limit, len(list))]
	}
	return list, nil
}

func (c *memCatalog) CountArtifacts(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int64(len(c.artifacts)), c.err
}

func (c *memCatalog) UpsertArtifact(_ context.Context, a *store.Artifact) (*store.Artifact, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.artifacts[a.ID] = a
	return a, nil
}

func (c *memCatalog) DeleteArtifacts(context.Context, *store.DeleteArtifact) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := int64(len(c.artifacts))
	c.artifacts = map[int64]*store.Artifact{}
	return n, nil
}

func newCatalogServer(p *profile.Profile, provider *stubProvider, catalog ArtifactCatalog, importer ArtifactImporter) *echo.Echo {
	e := echo.New()
	NewAPIV1Service(p, artgraph.NewService(provider, nil), catalog, importer).RegisterRoutes(e)
	return e
}

func TestListArtworks(t *testing.T) {
	catalog := newMemCatalog(
		&store.Artifact{ID: 3, Title: "Water Lilies", Maker: "Claude Monet"},
		&store.Artifact{ID: 1, Title: "Irises", Maker: "Vincent van Gogh", ImageURL: "https://ids.lib.harvard.edu/ids/iiif/18737898"},
		&store.Artifact{ID: 2, Title: "Sunflowers", Maker: "Vincent van Gogh"},
	)
	e := newCatalogServer(&profile.Profile{Mode: "dev"}, &stubProvider{graph: testGraph()}, catalog, nil)

	tests := []struct {
		name   string
		target string
		ids    []int64
	}{
		{name: "default page", target: "/api/v1/artworks", ids: []int64{1, 2, 3}},
		{name: "limit", target: "/api/v1/artworks?limit=2", ids: []int64{1, 2}},
		{name: "offset", target: "/api/v1/artworks?limit=2&offset=2", ids: []int64{3}},
		{name: "past the end", target: "/api/v1/artworks?offset=10", ids: []int64{}},
		{name: "by ids", target: "/api/v1/artworks?ids=3,1", ids: []int64{1, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(e, http.MethodGet, tt.target)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			body := decode[ListArtworksResponse](t, rec)
			assert.Equal(t, int64(3), body.Total)
			ids := make([]int64, 0, len(body.Artworks))
			for _, a := range body.Artworks {
				ids = append(ids, a.ID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}

	rec := doRequest(e, http.MethodGet, "/api/v1/artworks?ids=1")
	body := decode[ListArtworksResponse](t, rec)
	require.Len(t, body.Artworks, 1)
	assert.Equal(t, "https://ids.lib.harvard.edu/ids/iiif/18737898/full/800,/0/default.jpg", body.Artworks[0].ImageURL)
}

func TestListArtworks_Errors(t *testing.T) {
	tests := []struct {
		name    string
		catalog ArtifactCatalog
		target  string
		status  int
		code    string
	}{
		{name: "zero limit", catalog: newMemCatalog(), target: "/api/v1/artworks?limit=0", status: http.StatusBadRequest, code: "INVALID_ARGUMENT"},
		{name: "limit too large", catalog: newMemCatalog(), target: "/api/v1/artworks?limit=501", status: http.StatusBadRequest, code: "INVALID_ARGUMENT"},
		{name: "negative offset", catalog: newMemCatalog(), target: "/api/v1/artworks?offset=-1", status: http.StatusBadRequest, code: "INVALID_ARGUMENT"},
		{name: "bad ids", catalog: newMemCatalog(), target: "/api/v1/artworks?ids=1,x", status: http.StatusBadRequest, code: "INVALID_ARGUMENT"},
		{name: "store failure", catalog: &memCatalog{err: errors.New("disk full")}, target: "/api/v1/artworks", status: http.StatusInternalServerError, code: "INTERNAL"},
		{name: "no catalog", catalog: nil, target: "/api/v1/artworks", status: http.StatusServiceUnavailable, code: "SERVICE_UNAVAILABLE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newCatalogServer(&profile.Profile{Mode: "dev"}, &stubProvider{graph: testGraph()}, tt.catalog, nil)
			rec := doRequest(e, http.MethodGet, tt.target)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.code, decode[map[string]any](t, rec)["code"])
		})
	}
}

func postJSON(e *echo.Echo, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestImportArtworks_InvalidatesServedGraph(t *testing.T) {
	dir := t.TempDir()
	for name, record := range map[string]string{
		"1.json": `{"objectid": 1, "displaytitle": "Irises", "makers": [{"displayname": "Vincent van Gogh"}]}`,
		"2.json": `{"objectid": 2, "displaytitle": "Sunflowers", "makers": [{"displayname": "Vincent van Gogh"}]}`,
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(record), 0o600))
	}

	catalog := newMemCatalog(&store.Artifact{ID: 99, Title: "Old"})
	provider := &stubProvider{graph: testGraph()}
	importer := ingest.NewImporter(catalog, provider, rand.New(rand.NewPCG(1, 1)))
	e := newCatalogServer(&profile.Profile{Mode: "dev", ImportDir: dir}, provider, catalog, importer)

	rec := postJSON(e, "/api/v1/import", `{"replace": true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	result := decode[ingest.Result](t, rec)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, int64(1), result.Deleted)
	assert.Equal(t, 1, provider.invalidated, "served graph invalidated")

	total, err := catalog.CountArtifacts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

type recordingImporter struct {
	opts ingest.Options
	err  error
}

func (r *recordingImporter) Import(_ context.Context, opts ingest.Options) (*ingest.Result, error) {
	r.opts = opts
	if r.err != nil {
		return nil, r.err
	}
	return &ingest.Result{Files: 1, Imported: 1}, nil
}

func TestImportArtworks_Requests(t *testing.T) {
	tests := []struct {
		name      string
		importDir string
		importer  *recordingImporter
		body      string
		status    int
		want      ingest.Options
	}{
		{name: "empty body", importDir: "/srv/objects", importer: &recordingImporter{}, body: "", status: http.StatusOK, want: ingest.Options{Dir: "/srv/objects"}},
		{name: "limit", importDir: "/srv/objects", importer: &recordingImporter{}, body: `{"limit": 25}`, status: http.StatusOK, want: ingest.Options{Dir: "/srv/objects", Limit: 25}},
		{name: "negative limit", importDir: "/srv/objects", importer: &recordingImporter{}, body: `{"limit": -1}`, status: http.StatusBadRequest},
		{name: "malformed body", importDir: "/srv/objects", importer: &recordingImporter{}, body: `{"limit":`, status: http.StatusBadRequest},
		{name: "no import dir", importDir: "", importer: &recordingImporter{}, body: `{}`, status: http.StatusServiceUnavailable},
		{name: "import fails", importDir: "/srv/objects", importer: &recordingImporter{err: errors.New("no object JSON files")}, body: `{}`, status: http.StatusInternalServerError, want: ingest.Options{Dir: "/srv/objects"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newCatalogServer(&profile.Profile{Mode: "dev", ImportDir: tt.importDir}, &stubProvider{graph: testGraph()}, nil, tt.importer)
			rec := postJSON(e, "/api/v1/import", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Equal(t, tt.want, tt.importer.opts)
		})
	}
}
