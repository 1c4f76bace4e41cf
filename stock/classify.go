package stock

import (
	"go.uber.org/zap"

	"github.com/aluiziolira/go-stock-locator/models"
)

// Classify maps a raw availability string to a status. Anything outside the
// known values counts as not available.
func Classify(raw string) models.StockStatus {
	switch raw {
	case "AVAILABLE":
		return models.StatusAvailable
	case "LOW_STOCK":
		return models.StatusLowStock
	case "UNKNOWN":
		return models.StatusUnknown
	default:
		return models.StatusNotAvailable
	}
}

// Reconcile pairs observations with the active stores in response order.
// Observations for stores outside the active set are dropped and a repeated
// store keeps its first observation. Active stores missing from the response
// get no entry at all.
func Reconcile(obs []models.StockObservation, active []models.Store) *models.Report {
	byID := make(map[string]models.Store, len(active))
	for _, s := range active {
		byID[s.ID] = s
	}

	report := &models.Report{
		Entries: make([]models.ReportEntry, 0, len(obs)),
		Queried: len(active),
	}
	seen := make(map[string]struct{}, len(obs))
	for _, o := range obs {
		store, ok := byID[o.StoreID]
		if !ok {
			report.Dropped++
			zap.L().Debug("dropping observation for inactive store", zap.String("store_id", o.StoreID))
			continue
		}
		if _, dup := seen[o.StoreID]; dup {
			zap.L().Warn("duplicate store in stock response", zap.String("store_id", o.StoreID))
			continue
		}
		seen[o.StoreID] = struct{}{}
		report.Entries = append(report.Entries, models.ReportEntry{Store: store, Status: o.Status})
		switch {
		case o.Status.InStock():
			report.InStock++
		case o.Status == models.StatusUnknown:
			report.Unknown++
		}
	}
	return report
}
