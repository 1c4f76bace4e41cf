package orchestrator

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"

	"github.com/aluiziolira/go-stock-locator/models"
)

const placeholder = "—"

// PrintStores renders stores as an aligned table.
func PrintStores(w io.Writer, stores []models.Store) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tAddress\tStore ID\tCoordinates\tAmenities")
	for i, s := range stores {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i+1, s.Address, s.ID, coordinates(s), amenities(s))
	}
	if err := tw.Flush(); err != nil {
		return eris.Wrap(err, "flush store table")
	}
	fmt.Fprintf(w, "%d stores\n", len(stores))
	return nil
}

// PrintReport lists the stores that have the variant in stock.
func PrintReport(w io.Writer, report *models.Report) {
	fmt.Fprintf(w, "\n%s (%s)\n", report.Product.Title, report.Variant.Title)

	inStock := report.InStockEntries()
	if len(inStock) == 0 {
		fmt.Fprintf(w, "Not in stock at any of the %d stores checked.\n", report.Queried)
	} else {
		fmt.Fprintf(w, "In stock at %d store(s):\n", report.InStock)
		for _, e := range inStock {
			low := ""
			if e.Status == models.StatusLowStock {
				low = " (low stock)"
			}
			fmt.Fprintf(w, "  - %s [%s]%s\n", e.Store.Address, e.Store.ID, low)
		}
	}
	if report.Unknown > 0 {
		fmt.Fprintf(w, "%d store(s) reported unknown availability.\n", report.Unknown)
	}
}

func coordinates(s models.Store) string {
	if !s.HasCoordinates() {
		return placeholder
	}
	return fmt.Sprintf("%.5f, %.5f", *s.Latitude, *s.Longitude)
}

func amenities(s models.Store) string {
	if len(s.Amenities) == 0 {
		return placeholder
	}
	return strings.Join(s.Amenities, ", ")
}
