package stock

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aluiziolira/go-stock-locator/config"
	"github.com/aluiziolira/go-stock-locator/models"
	"github.com/aluiziolira/go-stock-locator/scraper"
)

const stockBase = "http://stock.example.test/availability/"

func newTestClient(t *testing.T) (*Client, *httpmock.MockTransport) {
	t.Helper()
	metrics := scraper.NewMetrics()
	fetcher := scraper.NewFetcher(config.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test"}, metrics)
	transport := httpmock.NewMockTransport()
	fetcher.WithTransport(transport)
	c := NewClient(stockBase, fetcher, metrics)
	c.now = func() time.Time { return time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC) }
	return c, transport
}

func TestClassify(t *testing.T) {
	tests := []struct {
		input    string
		expected models.StockStatus
		inStock  bool
	}{
		{input: "AVAILABLE", expected: models.StatusAvailable, inStock: true},
		{input: "LOW_STOCK", expected: models.StatusLowStock, inStock: true},
		{input: "UNKNOWN", expected: models.StatusUnknown, inStock: false},
		{input: "FOOBAR", expected: models.StatusNotAvailable, inStock: false},
		{input: "NOT_AVAILABLE", expected: models.StatusNotAvailable, inStock: false},
		{input: "available", expected: models.StatusNotAvailable, inStock: false},
		{input: "", expected: models.StatusNotAvailable, inStock: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Classify(tt.input)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.inStock, got.InStock())
		})
	}
}

func TestQuerySendsOneRequestWithAllStores(t *testing.T) {
	c, transport := newTestClient(t)
	transport.RegisterResponder(http.MethodGet, stockBase+"100201", func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "A,B,C", req.URL.Query().Get("storeids"))
		return httpmock.NewStringResponse(http.StatusOK,
			`[{"storeId":"A","status":"AVAILABLE"},{"storeId":2,"status":"LOW_STOCK"},{"status":"AVAILABLE"}]`), nil
	})

	obs, err := c.Query(context.Background(), "100201", []string{"A", "B", "C"})
	require.NoError(t, err)
	assert.Equal(t, []models.StockObservation{
		{StoreID: "A", RawStatus: "AVAILABLE", Status: models.StatusAvailable},
		{StoreID: "2", RawStatus: "LOW_STOCK", Status: models.StatusLowStock},
	}, obs)
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestQueryNoData(t *testing.T) {
	bodies := map[string]string{
		"empty body":   ``,
		"empty list":   `[]`,
		"object":       `{"storeId":"A","status":"AVAILABLE"}`,
		"invalid json": `[{"storeId":`,
		"null":         `null`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c, transport := newTestClient(t)
			transport.RegisterResponder(http.MethodGet, stockBase+"1", httpmock.NewStringResponder(http.StatusOK, body))

			_, err := c.Query(context.Background(), "1", []string{"A"})
			assert.ErrorIs(t, err, ErrNoData)
		})
	}
}

func TestQueryNoContentIsNoData(t *testing.T) {
	c, transport := newTestClient(t)
	transport.RegisterResponder(http.MethodGet, stockBase+"1", httpmock.NewStringResponder(http.StatusNoContent, ""))

	_, err := c.Query(context.Background(), "1", []string{"A"})
	assert.ErrorIs(t, err, ErrNoData)
}

func TestQueryHTTPFailureIsHardError(t *testing.T) {
	c, transport := newTestClient(t)
	transport.RegisterResponder(http.MethodGet, stockBase+"1", httpmock.NewStringResponder(http.StatusServiceUnavailable, "down"))

	_, err := c.Query(context.Background(), "1", []string{"A"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoData)
	assert.Equal(t, "status", scraper.ErrorTypeLabel(err))
	assert.Equal(t, 1, transport.GetTotalCallCount(), "no retries")
}

func TestQueryEmptyStoreSet(t *testing.T) {
	c, transport := newTestClient(t)
	_, err := c.Query(context.Background(), "1", nil)
	assert.ErrorIs(t, err, ErrNoStores)
	assert.Equal(t, 0, transport.GetTotalCallCount())
}

func TestReconcileDropsUnknownStores(t *testing.T) {
	active := []models.Store{{ID: "A"}, {ID: "B"}, {ID: "C"}}
	obs := []models.StockObservation{
		{StoreID: "A", Status: models.StatusAvailable},
		{StoreID: "B", Status: models.StatusLowStock},
		{StoreID: "Z", Status: models.StatusAvailable},
	}

	report := Reconcile(obs, active)
	require.Len(t, report.Entries, 2)
	assert.Equal(t, "A", report.Entries[0].Store.ID)
	assert.Equal(t, "B", report.Entries[1].Store.ID)
	assert.Equal(t, 2, report.InStock)
	assert.Equal(t, 1, report.Dropped)
	for _, e := range report.Entries {
		assert.NotEqual(t, "C", e.Store.ID, "stores absent from the response get no entry")
	}
}

func TestReconcileKeepsFirstObservationPerStore(t *testing.T) {
	active := []models.Store{{ID: "A"}, {ID: "B"}}
	tests := []struct {
		name    string
		obs     []models.StockObservation
		ids     []string
		inStock int
		status  models.StockStatus
	}{
		{
			name: "repeated available",
			obs: []models.StockObservation{
				{StoreID: "A", Status: models.StatusAvailable},
				{StoreID: "A", Status: models.StatusAvailable},
			},
			ids:     []string{"A"},
			inStock: 1,
			status:  models.StatusAvailable,
		},
		{
			name: "conflicting repeat",
			obs: []models.StockObservation{
				{StoreID: "A", Status: models.StatusNotAvailable},
				{StoreID: "B", Status: models.StatusLowStock},
				{StoreID: "A", Status: models.StatusAvailable},
			},
			ids:     []string{"A", "B"},
			inStock: 1,
			status:  models.StatusNotAvailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Reconcile(tt.obs, active)
			ids := make([]string, 0, len(report.Entries))
			for _, e := range report.Entries {
				ids = append(ids, e.Store.ID)
			}
			assert.Equal(t, tt.ids, ids)
			assert.Equal(t, tt.inStock, report.InStock)
			assert.Equal(t, tt.status, report.Entries[0].Status)
			assert.Equal(t, 0, report.Dropped)
			assert.Equal(t, 2, report.Queried)
		})
	}
}

func TestReconcileCountsUnknownSeparately(t *testing.T) {
	active := []models.Store{{ID: "A"}, {ID: "B"}, {ID: "C"}}
	obs := []models.StockObservation{
		{StoreID: "A", Status: models.StatusUnknown},
		{StoreID: "B", Status: models.StatusNotAvailable},
		{StoreID: "C", Status: models.StatusAvailable},
	}

	report := Reconcile(obs, active)
	assert.Len(t, report.Entries, 3)
	assert.Equal(t, 1, report.InStock)
	assert.Equal(t, 1, report.Unknown)
	assert.Equal(t, []models.ReportEntry{{Store: models.Store{ID: "C"}, Status: models.StatusAvailable}}, report.InStockEntries())
}

func TestCheckEndToEnd(t *testing.T) {
	c, transport := newTestClient(t)
	transport.RegisterResponder(http.MethodGet, stockBase+"100201", httpmock.NewStringResponder(http.StatusOK,
		`[{"storeId":"A","status":"AVAILABLE"},{"storeId":"B","status":"LOW_STOCK"},{"storeId":"Z","status":"AVAILABLE"}]`))

	active := []models.Store{
		{ID: "A", Address: "Street 1"},
		{ID: "B", Address: "Street 2"},
		{ID: "C", Address: "Street 3"},
	}
	p := models.Product{ID: "100200", Title: "Espresso Machine X"}
	v := models.Variant{ID: "100201", Title: "black"}

	report, err := c.Check(context.Background(), p, v, active)
	require.NoError(t, err)
	assert.Equal(t, p, report.Product)
	assert.Equal(t, v, report.Variant)
	assert.Equal(t, 2, report.InStock)
	assert.Equal(t, 3, report.Queried)
	assert.Equal(t, []string{"A", "B"}, []string{report.Entries[0].Store.ID, report.Entries[1].Store.ID})
	assert.Equal(t, models.StatusLowStock, report.Entries[1].Status)
	assert.Equal(t, time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC), report.CheckedAt)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.metrics.ObservationsTotal.WithLabelValues("available")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.metrics.ObservationsTotal.WithLabelValues("low_stock")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.metrics.DroppedTotal))
}
