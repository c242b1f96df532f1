package web

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JonMunkholm/procspec/internal/config"
	"github.com/JonMunkholm/procspec/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCatalog(t *testing.T, store core.Store) {
	t.Helper()
	str := func(s string) *string { return &s }
	i32 := func(n int32) *int32 { return &n }
	f64 := func(f float64) *float64 { return &f }

	_, err := store.BulkCreate(context.Background(), []core.ProcessorRecord{
		{Product: "Intel Xeon E5-2690", Status: str("Launched"), ReleaseDate: str("Q1'12"), CodeName: str("Sandy Bridge EP"), Cores: i32(8), Threads: i32(16), Lithography: f64(32), TDP: i32(135)},
		{Product: "Intel Core i7-8700K", Status: str("Launched"), ReleaseDate: str("Q4'17"), CodeName: str("Coffee Lake"), Cores: i32(6), Threads: i32(12), Lithography: f64(14), TDP: i32(95)},
		{Product: "Intel Core i5-8400", Status: str("Discontinued"), ReleaseDate: str("Q4'17"), CodeName: str("Coffee Lake"), Cores: i32(6), Threads: i32(6), Lithography: f64(14)},
	})
	require.NoError(t, err)
}

func pageConfig() *config.Config {
	cfg := testConfig()
	cfg.List.MaxLimit = 100
	return cfg
}

func TestProcessorPage(t *testing.T) {
	s, store := newTestServer(t, pageConfig())
	seedCatalog(t, store)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")

	body := rec.Body.String()
	assert.Contains(t, body, "<title>Intel Processors</title>")
	assert.Contains(t, body, "Intel Xeon E5-2690")
	assert.Contains(t, body, "Intel Core i5-8400")
	assert.Contains(t, body, "135W")
	assert.Contains(t, body, "32nm")
	assert.Contains(t, body, `<option value="2017">2017</option>`)
	assert.Contains(t, body, `<option value="14">14nm</option>`)
	assert.Contains(t, body, `<span class="status other">Discontinued</span>`)
	assert.Contains(t, body, "Showing 3 of 3 processors")
}

func TestProcessorPage_Filters(t *testing.T) {
	s, store := newTestServer(t, pageConfig())
	seedCatalog(t, store)

	tests := []struct {
		name    string
		query   string
		want    []string
		notWant []string
	}{
		{"year", "?year=2012", []string{"Intel Xeon E5-2690"}, []string{"Intel Core i7-8700K"}},
		{"status", "?status=Discontinued", []string{"Intel Core i5-8400"}, []string{"Intel Xeon E5-2690"}},
		{"code name and threads", "?code_name=Coffee+Lake&threads=12", []string{"Intel Core i7-8700K"}, []string{"Intel Core i5-8400"}},
		{"lithography", "?lithography=14&cores=6", []string{"Intel Core i7-8700K", "Intel Core i5-8400"}, []string{"Intel Xeon E5-2690"}},
		{"no match", "?cores=64", []string{"No processors match"}, []string{"Intel Xeon E5-2690"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))
			require.Equal(t, http.StatusOK, rec.Code)
			body := rec.Body.String()
			for _, w := range tt.want {
				assert.Contains(t, body, w)
			}
			for _, w := range tt.notWant {
				assert.NotContains(t, body, "<td>"+w+"</td>")
			}
		})
	}
}

func TestProcessorPage_RowLimit(t *testing.T) {
	cfg := pageConfig()
	cfg.List.MaxLimit = 2
	s, store := newTestServer(t, cfg)
	seedCatalog(t, store)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Showing the first 2 matching processors of 3")
	assert.NotContains(t, rec.Body.String(), "<td>Intel Core i5-8400</td>")
}

func TestProcessorPage_KeepsSelection(t *testing.T) {
	s, store := newTestServer(t, pageConfig())
	seedCatalog(t, store)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/?status=Launched", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `<option value="Launched" selected>Launched</option>`)
}

func TestProcessorPage_BadNumber(t *testing.T) {
	s, _ := newTestServer(t, testConfig())

	for _, q := range []string{"?cores=many", "?threads=1.5", "?lithography=small"} {
		rec := do(t, s, httptest.NewRequest(http.MethodGet, "/"+q, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
		assert.Equal(t, "REQ003", decodeError(t, rec).Code, q)
	}
}

func TestProcessorPage_EscapesValues(t *testing.T) {
	s, store := newTestServer(t, pageConfig())
	_, err := store.Create(context.Background(), core.ProcessorRecord{Product: `<script>alert("x")</script>`})
	require.NoError(t, err)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "<script>")
	assert.Contains(t, rec.Body.String(), "&lt;script&gt;")
}

func TestAPIProcessorAliases(t *testing.T) {
	s, store := newTestServer(t, pageConfig())
	seedCatalog(t, store)

	rec := do(t, s, httptest.NewRequest(http.MethodGet, "/api/processors", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list []core.ProcessorRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 3)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/processors/2/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got core.ProcessorRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Intel Core i7-8700K", got.Product)

	rec = do(t, s, httptest.NewRequest(http.MethodGet, "/api/processors/99", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
