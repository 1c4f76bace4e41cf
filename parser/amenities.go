package parser

// amenityLabels maps store-directory icon codes to display labels.
var amenityLabels = map[string]string{
	"parking":       "Parking",
	"parking_free":  "Free parking",
	"ev_charging":   "EV charging",
	"bakery":        "Bakery",
	"butcher":       "Butcher counter",
	"deli":          "Deli counter",
	"fish":          "Fish counter",
	"cafe":          "Café",
	"atm":           "ATM",
	"post":          "Post office",
	"pharmacy":      "Pharmacy",
	"drinks":        "Drinks market",
	"bottle_return": "Bottle return",
	"self_checkout": "Self checkout",
	"click_collect": "Click & collect",
	"wheelchair":    "Wheelchair access",
	"toilet":        "Customer toilets",
	"baby_changing": "Baby changing room",
	"wifi":          "Free Wi-Fi",
	"sunday_open":   "Open on Sundays",
	"late_opening":  "Late opening",
	"lottery":       "Lottery",
	"tobacco":       "Tobacco",
	"flowers":       "Flowers",
	"dry_cleaning":  "Dry cleaning",
	"key_service":   "Key service",
	"photo":         "Photo service",
	"bike_parking":  "Bike parking",
}

// AmenityLabel returns the display label for an icon code, or the code itself
// when the table has no entry for it.
func AmenityLabel(code string) string {
	if label, ok := amenityLabels[code]; ok {
		return label
	}
	return code
}
