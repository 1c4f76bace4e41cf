// Package directory maintains the local snapshot of the store directory.
package directory

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/aluiziolira/go-stock-locator/config"
	"github.com/aluiziolira/go-stock-locator/models"
	"github.com/aluiziolira/go-stock-locator/scraper"
)

// ErrMissingConfig is returned by Refresh when the endpoint or key is unset.
var ErrMissingConfig = eris.New("store directory endpoint or API key not configured")

// JSONGetter performs one blocking GET and returns the response body.
type JSONGetter interface {
	GetJSON(ctx context.Context, phase, rawURL string) ([]byte, error)
}

// Directory fetches the store directory and serves the persisted snapshot.
type Directory struct {
	cfg     config.DirectoryConfig
	getter  JSONGetter
	cache   *FileCache
	metrics *scraper.Metrics
}

// New builds a Directory backed by the snapshot file at cachePath.
func New(cfg config.DirectoryConfig, getter JSONGetter, cachePath string, metrics *scraper.Metrics) *Directory {
	return &Directory{
		cfg:     cfg,
		getter:  getter,
		cache:   NewFileCache(cachePath),
		metrics: metrics,
	}
}

// Refresh downloads the full directory, replaces the snapshot and returns the
// stores in response order. The snapshot is untouched unless the fetch and
// parse both succeed.
func (d *Directory) Refresh(ctx context.Context) ([]models.Store, error) {
	if strings.TrimSpace(d.cfg.BaseURL) == "" || strings.TrimSpace(d.cfg.APIKey) == "" {
		return nil, ErrMissingConfig
	}

	queryURL, err := d.queryURL()
	if err != nil {
		return nil, err
	}

	body, err := d.getter.GetJSON(ctx, scraper.PhaseStoreDirectory, queryURL)
	if err != nil {
		return nil, eris.Wrap(err, "fetch store directory")
	}

	stores, err := Parse(body)
	if err != nil {
		return nil, eris.Wrap(err, "parse store directory")
	}

	if err := d.cache.Save(stores); err != nil {
		return nil, err
	}
	d.metrics.SetCachedStores(len(stores))
	zap.L().Info("store directory refreshed",
		zap.Int("stores", len(stores)),
		zap.String("cache", d.cache.Path()),
	)
	return stores, nil
}

// Load returns the persisted snapshot. ok is false when none exists yet.
func (d *Directory) Load() (stores []models.Store, ok bool, err error) {
	stores, ok, err = d.cache.Load()
	if err != nil || !ok {
		return nil, ok, err
	}
	d.metrics.SetCachedStores(len(stores))
	return stores, true, nil
}

// LoadOrRefresh returns the snapshot, refreshing from the network when absent.
func (d *Directory) LoadOrRefresh(ctx context.Context) ([]models.Store, error) {
	stores, ok, err := d.Load()
	if err != nil {
		return nil, err
	}
	if ok {
		return stores, nil
	}
	zap.L().Info("no store snapshot yet, refreshing", zap.String("cache", d.cache.Path()))
	return d.Refresh(ctx)
}

func (d *Directory) queryURL() (string, error) {
	u, err := url.Parse(d.cfg.BaseURL)
	if err != nil {
		return "", eris.Wrap(err, "parse store directory URL")
	}
	q := u.Query()
	q.Set("key", d.cfg.APIKey)
	q.Set("type", d.cfg.AddressType)
	q.Set("format", "json")
	q.Set("limit", strconv.Itoa(d.cfg.MaxResults))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FilterByPostalCode returns, in input order, the stores whose postal code
// contains code. An empty code returns every store.
func FilterByPostalCode(stores []models.Store, code string) []models.Store {
	out := make([]models.Store, 0, len(stores))
	for _, s := range stores {
		if code == "" || strings.Contains(s.PostalCode, code) {
			out = append(out, s)
		}
	}
	return out
}
