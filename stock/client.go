// Package stock queries the stock-availability endpoint and classifies the
// per-store results.
package stock

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/aluiziolira/go-stock-locator/models"
	"github.com/aluiziolira/go-stock-locator/scraper"
)

var (
	// ErrNoData means the endpoint answered successfully but returned no list
	// of observations.
	ErrNoData = eris.New("no stock data returned")
	// ErrNoStores means the query was attempted with an empty store set.
	ErrNoStores = eris.New("no stores to query")
)

// JSONGetter performs one blocking GET and returns the response body.
type JSONGetter interface {
	GetJSON(ctx context.Context, phase, rawURL string) ([]byte, error)
}

// Client talks to the stock-availability endpoint.
type Client struct {
	baseURL string
	getter  JSONGetter
	metrics *scraper.Metrics
	now     func() time.Time
}

// NewClient builds a client for baseURL; product ids are appended verbatim.
func NewClient(baseURL string, getter JSONGetter, metrics *scraper.Metrics) *Client {
	return &Client{
		baseURL: baseURL,
		getter:  getter,
		metrics: metrics,
		now:     time.Now,
	}
}

// Query fetches observations for productID across storeIDs in one request.
// HTTP failures are returned as errors; an empty or non-list body yields
// ErrNoData.
func (c *Client) Query(ctx context.Context, productID string, storeIDs []string) ([]models.StockObservation, error) {
	if len(storeIDs) == 0 {
		return nil, ErrNoStores
	}

	body, err := c.getter.GetJSON(ctx, scraper.PhaseStock, c.queryURL(productID, storeIDs))
	if err != nil {
		return nil, eris.Wrapf(err, "query stock for %s", productID)
	}
	return parseObservations(body)
}

// Check queries stock for the selected variant and reconciles the result with
// the active store set.
func (c *Client) Check(ctx context.Context, p models.Product, v models.Variant, active []models.Store) (*models.Report, error) {
	obs, err := c.Query(ctx, v.ID, models.StoreIDs(active))
	if err != nil {
		return nil, err
	}

	report := Reconcile(obs, active)
	report.Product = p
	report.Variant = v
	report.CheckedAt = c.now()

	for _, e := range report.Entries {
		c.metrics.IncObservation(e.Status.String())
	}
	c.metrics.AddDropped(report.Dropped)
	zap.L().Info("stock checked",
		zap.String("product_id", p.ID),
		zap.String("variant_id", v.ID),
		zap.Int("stores", len(active)),
		zap.Int("observations", len(obs)),
		zap.Int("in_stock", report.InStock),
		zap.Int("dropped", report.Dropped),
	)
	return report, nil
}

func (c *Client) queryURL(productID string, storeIDs []string) string {
	escaped := make([]string, len(storeIDs))
	for i, id := range storeIDs {
		escaped[i] = url.QueryEscape(id)
	}
	return c.baseURL + url.PathEscape(productID) + "?storeids=" + strings.Join(escaped, ",")
}

func parseObservations(body []byte) ([]models.StockObservation, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrNoData
	}
	list := gjson.ParseBytes(body)
	if !list.IsArray() {
		return nil, ErrNoData
	}

	raw := list.Array()
	if len(raw) == 0 {
		return nil, ErrNoData
	}

	out := make([]models.StockObservation, 0, len(raw))
	for _, rec := range raw {
		storeID := strings.TrimSpace(rec.Get("storeId").String())
		if storeID == "" {
			continue
		}
		status := rec.Get("status").String()
		out = append(out, models.StockObservation{
			StoreID:   storeID,
			RawStatus: status,
			Status:    Classify(status),
		})
	}
	return out, nil
}
