package directory

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/aluiziolira/go-stock-locator/models"
	"github.com/aluiziolira/go-stock-locator/parser"
)

const (
	resultsPath  = "response.results"
	amenitySlots = 41
)

// Parse maps a store-directory response into stores. Records without an
// identifier are skipped; repeated identifiers keep their first occurrence.
func Parse(body []byte) ([]models.Store, error) {
	if !gjson.ValidBytes(body) {
		return nil, eris.New("store directory response is not valid JSON")
	}
	results := gjson.GetBytes(body, resultsPath)
	if !results.IsArray() {
		return nil, eris.Errorf("store directory response has no %s list", resultsPath)
	}

	raw := results.Array()
	stores := make([]models.Store, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, rec := range raw {
		store := storeFromRecord(rec)
		if store.ID == "" {
			zap.L().Debug("skipping store record without id")
			continue
		}
		if _, dup := seen[store.ID]; dup {
			zap.L().Warn("duplicate store id in directory", zap.String("store_id", store.ID))
			continue
		}
		seen[store.ID] = struct{}{}
		stores = append(stores, store)
	}
	return stores, nil
}

func storeFromRecord(rec gjson.Result) models.Store {
	postal := strings.TrimSpace(rec.Get("zip").String())
	city := strings.TrimSpace(rec.Get("city").String())

	return models.Store{
		ID:         strings.TrimSpace(rec.Get("id").String()),
		Address:    formatAddress(rec.Get("address").String(), postal, city),
		PostalCode: postal,
		City:       city,
		Latitude:   coordinate(rec.Get("lat")),
		Longitude:  coordinate(rec.Get("lng")),
		Amenities:  amenities(rec),
	}
}

func formatAddress(line, postal, city string) string {
	line = strings.TrimSpace(line)
	locality := strings.TrimSpace(postal + " " + city)
	switch {
	case line == "":
		return locality
	case locality == "":
		return line
	default:
		return line + ", " + locality
	}
}

func coordinate(v gjson.Result) *float64 {
	switch v.Type {
	case gjson.Number:
		f := v.Float()
		return &f
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.Str), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

// amenities reads icon1..icon41 in slot order. Codes missing from the label
// table are kept verbatim.
func amenities(rec gjson.Result) []string {
	out := make([]string, 0)
	for i := 1; i <= amenitySlots; i++ {
		code := strings.TrimSpace(rec.Get(fmt.Sprintf("icon%d", i)).String())
		if code == "" {
			continue
		}
		out = append(out, parser.AmenityLabel(code))
	}
	return out
}
