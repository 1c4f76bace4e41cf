// Package models defines data structures shared by the stock locator.
package models

// Store is one physical location from the store directory.
type Store struct {
	ID         string   `json:"id" yaml:"id"`
	Address    string   `json:"address" yaml:"address"`
	PostalCode string   `json:"postalCode" yaml:"postalCode"`
	City       string   `json:"city,omitempty" yaml:"city,omitempty"`
	Latitude   *float64 `json:"latitude" yaml:"latitude"`
	Longitude  *float64 `json:"longitude" yaml:"longitude"`
	Amenities  []string `json:"amenities" yaml:"amenities"`
}

// HasCoordinates reports whether both coordinates are known.
func (s Store) HasCoordinates() bool {
	return s.Latitude != nil && s.Longitude != nil
}

// StoreIDs returns the identifiers of stores in order.
func StoreIDs(stores []Store) []string {
	ids := make([]string, 0, len(stores))
	for _, s := range stores {
		ids = append(ids, s.ID)
	}
	return ids
}
