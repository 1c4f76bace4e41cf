package models

import "time"

// StockStatus is the classified availability of a product in one store.
type StockStatus int

const (
	StatusNotAvailable StockStatus = iota
	StatusAvailable
	StatusLowStock
	StatusUnknown
)

// String returns the lowercase label used in logs and exports.
func (s StockStatus) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusLowStock:
		return "low_stock"
	case StatusUnknown:
		return "unknown"
	default:
		return "not_available"
	}
}

// InStock reports whether the status counts towards the in-stock total.
func (s StockStatus) InStock() bool {
	return s == StatusAvailable || s == StatusLowStock
}

// StockObservation is one raw entry of a stock-availability response.
type StockObservation struct {
	StoreID   string
	RawStatus string
	Status    StockStatus
}

// ReportEntry pairs an observation with the store it refers to.
type ReportEntry struct {
	Store  Store
	Status StockStatus
}

// Report holds the outcome of one stock check.
type Report struct {
	Product   Product
	Variant   Variant
	Entries   []ReportEntry
	Queried   int // active stores sent to the stock endpoint
	InStock   int
	Unknown   int
	Dropped   int
	CheckedAt time.Time
}

// InStockEntries returns the entries that count as in stock, in report order.
func (r *Report) InStockEntries() []ReportEntry {
	out := make([]ReportEntry, 0, r.InStock)
	for _, e := range r.Entries {
		if e.Status.InStock() {
			out = append(out, e)
		}
	}
	return out
}
