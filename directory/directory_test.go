package directory

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aluiziolira/go-stock-locator/config"
	"github.com/aluiziolira/go-stock-locator/models"
	"github.com/aluiziolira/go-stock-locator/scraper"
)

const directoryURL = "http://directory.example.test/api/stores"

const directoryBody = `{
  "response": {
    "results": [
      {"id": 1001, "address": "Hauptstraße 1", "zip": "1010", "city": "Wien",
       "lat": 48.2082, "lng": 16.3738, "icon1": "parking", "icon2": "", "icon7": "xmas_tree"},
      {"id": "1002", "address": "Ringweg 5", "zip": "8020", "city": "Graz",
       "lat": null, "lng": null},
      {"id": "1003", "address": "Bahnhofplatz 3", "zip": "A-1020", "city": "Wien",
       "lat": "48.21", "lng": "16.39", "icon41": "atm"},
      {"address": "no id"},
      {"id": "1002", "address": "duplicate"}
    ]
  }
}`

func newTestDirectory(t *testing.T, cfg config.DirectoryConfig) (*Directory, *httpmock.MockTransport, string) {
	t.Helper()
	fetcher := scraper.NewFetcher(config.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test"}, nil)
	transport := httpmock.NewMockTransport()
	fetcher.WithTransport(transport)
	path := filepath.Join(t.TempDir(), "cache", "stores.json")
	return New(cfg, fetcher, path, scraper.NewMetrics()), transport, path
}

func testDirectoryConfig() config.DirectoryConfig {
	return config.DirectoryConfig{
		BaseURL:     directoryURL,
		APIKey:      "secret",
		AddressType: "address",
		MaxResults:  5000,
	}
}

func ptr(f float64) *float64 { return &f }

func TestRefreshMapsRecordsAndPersists(t *testing.T) {
	d, transport, path := newTestDirectory(t, testDirectoryConfig())
	transport.RegisterResponder(http.MethodGet, directoryURL, func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		assert.Equal(t, "secret", q.Get("key"))
		assert.Equal(t, "address", q.Get("type"))
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "5000", q.Get("limit"))
		return httpmock.NewStringResponse(http.StatusOK, directoryBody), nil
	})

	stores, err := d.Refresh(context.Background())
	require.NoError(t, err)
	require.Len(t, stores, 3)

	assert.Equal(t, models.Store{
		ID:         "1001",
		Address:    "Hauptstraße 1, 1010 Wien",
		PostalCode: "1010",
		City:       "Wien",
		Latitude:   ptr(48.2082),
		Longitude:  ptr(16.3738),
		Amenities:  []string{"Parking", "xmas_tree"},
	}, stores[0])

	assert.Equal(t, "1002", stores[1].ID)
	assert.Nil(t, stores[1].Latitude)
	assert.False(t, stores[1].HasCoordinates())
	assert.Empty(t, stores[1].Amenities)

	assert.Equal(t, ptr(48.21), stores[2].Latitude)
	assert.Equal(t, []string{"ATM"}, stores[2].Amenities)

	_, err = os.Stat(path)
	require.NoError(t, err)

	loaded, ok, err := d.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, stores, loaded)
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestRefreshOverwritesPreviousSnapshot(t *testing.T) {
	d, transport, _ := newTestDirectory(t, testDirectoryConfig())
	transport.RegisterResponder(http.MethodGet, directoryURL,
		httpmock.NewStringResponder(http.StatusOK, directoryBody))

	_, err := d.Refresh(context.Background())
	require.NoError(t, err)

	transport.RegisterResponder(http.MethodGet, directoryURL,
		httpmock.NewStringResponder(http.StatusOK, `{"response":{"results":[{"id":"9","zip":"6020","city":"Innsbruck"}]}}`))
	stores, err := d.Refresh(context.Background())
	require.NoError(t, err)

	loaded, ok, err := d.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, stores, loaded)
	require.Len(t, loaded, 1)
	assert.Equal(t, "9", loaded[0].ID)
	assert.Equal(t, "6020 Innsbruck", loaded[0].Address)
}

func TestRefreshMissingConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.DirectoryConfig)
	}{
		{name: "no url", mutate: func(c *config.DirectoryConfig) { c.BaseURL = "" }},
		{name: "no key", mutate: func(c *config.DirectoryConfig) { c.APIKey = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testDirectoryConfig()
			tt.mutate(&cfg)
			d, transport, _ := newTestDirectory(t, cfg)

			_, err := d.Refresh(context.Background())
			assert.ErrorIs(t, err, ErrMissingConfig)
			assert.Equal(t, 0, transport.GetTotalCallCount())
		})
	}
}

func TestRefreshFailureKeepsSnapshot(t *testing.T) {
	d, transport, _ := newTestDirectory(t, testDirectoryConfig())
	transport.RegisterResponder(http.MethodGet, directoryURL,
		httpmock.NewStringResponder(http.StatusOK, directoryBody))
	before, err := d.Refresh(context.Background())
	require.NoError(t, err)

	transport.RegisterResponder(http.MethodGet, directoryURL,
		httpmock.NewStringResponder(http.StatusInternalServerError, "boom"))
	_, err = d.Refresh(context.Background())
	require.Error(t, err)

	transport.RegisterResponder(http.MethodGet, directoryURL,
		httpmock.NewStringResponder(http.StatusOK, `{"unexpected": true}`))
	_, err = d.Refresh(context.Background())
	require.Error(t, err)

	after, ok, err := d.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, before, after)
}

func TestLoadAbsentSnapshot(t *testing.T) {
	d, transport, _ := newTestDirectory(t, testDirectoryConfig())

	stores, ok, err := d.Load()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, stores)
	assert.Equal(t, 0, transport.GetTotalCallCount())
}

func TestLoadCorruptSnapshot(t *testing.T) {
	d, _, path := newTestDirectory(t, testDirectoryConfig())
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, _, err := d.Load()
	assert.Error(t, err)
}

func TestLoadOrRefresh(t *testing.T) {
	d, transport, _ := newTestDirectory(t, testDirectoryConfig())
	transport.RegisterResponder(http.MethodGet, directoryURL,
		httpmock.NewStringResponder(http.StatusOK, directoryBody))

	first, err := d.LoadOrRefresh(context.Background())
	require.NoError(t, err)
	second, err := d.LoadOrRefresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, transport.GetTotalCallCount(), "second call must be served from the snapshot")
}

func TestFilterByPostalCode(t *testing.T) {
	stores := []models.Store{
		{ID: "a", PostalCode: "1010"},
		{ID: "b", PostalCode: "1020"},
		{ID: "c", PostalCode: "2010"},
	}

	tests := []struct {
		name string
		code string
		want []string
	}{
		{name: "substring keeps order", code: "10", want: []string{"a", "b", "c"}},
		{name: "prefix", code: "102", want: []string{"b"}},
		{name: "exact", code: "2010", want: []string{"c"}},
		{name: "no match", code: "9999", want: []string{}},
		{name: "empty is no filter", code: "", want: []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByPostalCode(stores, tt.code)
			assert.Equal(t, tt.want, models.StoreIDs(got))
		})
	}
	assert.Len(t, stores, 3, "input must not be modified")
}

func TestFilterByPostalCodeIsSubstringNotPrefix(t *testing.T) {
	stores := []models.Store{{PostalCode: "1010"}, {PostalCode: "1020"}, {PostalCode: "2010"}}
	got := FilterByPostalCode(stores, "10")
	require.Len(t, got, 3)
	assert.Equal(t, "1010", got[0].PostalCode)
	assert.Equal(t, "1020", got[1].PostalCode)
	assert.Equal(t, "2010", got[2].PostalCode)
}
