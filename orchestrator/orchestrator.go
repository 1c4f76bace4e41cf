// Package orchestrator sequences product resolution, store selection and the
// stock query, and owns the interactive menu around them.
package orchestrator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/aluiziolira/go-stock-locator/directory"
	"github.com/aluiziolira/go-stock-locator/models"
	"github.com/aluiziolira/go-stock-locator/parser"
)

var (
	// ErrInvalidVariant is returned when the variant choice is not a listed number.
	ErrInvalidVariant = eris.New("invalid variant selection")
	// ErrInvalidPostalCode is returned for a non-empty code that is not 4 digits.
	ErrInvalidPostalCode = eris.New("postal code must be 4 digits")
	// ErrNoStoresForPostalCode is returned when the filter leaves no store to query.
	ErrNoStoresForPostalCode = eris.New("no stores for postcode")
)

// ProductResolver turns a product URL into a product with its variants.
type ProductResolver interface {
	Resolve(ctx context.Context, productURL string) (*models.Product, error)
}

// StoreDirectory serves the store snapshot. Errors from it are fatal.
type StoreDirectory interface {
	LoadOrRefresh(ctx context.Context) ([]models.Store, error)
	Refresh(ctx context.Context) ([]models.Store, error)
}

// StockChecker queries stock for one variant across the active stores.
type StockChecker interface {
	Check(ctx context.Context, p models.Product, v models.Variant, active []models.Store) (*models.Report, error)
}

// Request describes a non-interactive check.
type Request struct {
	URL string
	// Variant is the 1-based position in the variant list. Zero selects the
	// only variant and fails when there are several.
	Variant    int
	PostalCode string
}

// Orchestrator runs checks against its collaborators, prompting on in and
// printing to out.
type Orchestrator struct {
	products ProductResolver
	stores   StoreDirectory
	stock    StockChecker
	in       *bufio.Reader
	out      io.Writer
}

// New wires an orchestrator.
func New(products ProductResolver, stores StoreDirectory, stock StockChecker, in io.Reader, out io.Writer) *Orchestrator {
	return &Orchestrator{
		products: products,
		stores:   stores,
		stock:    stock,
		in:       bufio.NewReader(in),
		out:      out,
	}
}

// Check runs one resolution without prompting. Directory failures and stock
// failures are both returned.
func (o *Orchestrator) Check(ctx context.Context, req Request) (*models.Report, error) {
	logger := zap.L().With(zap.String("run_id", uuid.NewString()))

	code, ok := parser.NormalizePostalCode(req.PostalCode)
	if !ok {
		return nil, eris.Wrapf(ErrInvalidPostalCode, "%q", req.PostalCode)
	}

	p, err := o.products.Resolve(ctx, req.URL)
	if err != nil {
		return nil, err
	}

	v, err := pickVariant(p.SelectableVariants(), req.Variant)
	if err != nil {
		return nil, err
	}

	active, err := o.activeStores(ctx, code)
	if err != nil {
		return nil, err
	}

	logger.Info("checking stock",
		zap.String("product_id", p.ID),
		zap.String("variant_id", v.ID),
		zap.String("postal_code", code),
		zap.Int("stores", len(active)),
	)
	return o.stock.Check(ctx, *p, v, active)
}

// ListStores prints the store table, refreshing the snapshot first when
// refresh is set or no snapshot exists.
func (o *Orchestrator) ListStores(ctx context.Context, refresh bool) error {
	var (
		stores []models.Store
		err    error
	)
	if refresh {
		stores, err = o.stores.Refresh(ctx)
	} else {
		stores, err = o.stores.LoadOrRefresh(ctx)
	}
	if err != nil {
		return err
	}
	return PrintStores(o.out, stores)
}

// activeStores returns the snapshot narrowed by code.
func (o *Orchestrator) activeStores(ctx context.Context, code string) ([]models.Store, error) {
	stores, err := o.stores.LoadOrRefresh(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "load store directory")
	}
	active := directory.FilterByPostalCode(stores, code)
	if len(active) == 0 {
		return nil, ErrNoStoresForPostalCode
	}
	return active, nil
}

// pickVariant selects the 1-based choice from variants. A zero choice is only
// valid when exactly one variant exists.
func pickVariant(variants []models.Variant, choice int) (models.Variant, error) {
	if choice == 0 && len(variants) == 1 {
		return variants[0], nil
	}
	if choice < 1 || choice > len(variants) {
		return models.Variant{}, eris.Wrapf(ErrInvalidVariant, "choice %d of %d", choice, len(variants))
	}
	return variants[choice-1], nil
}

// parseChoice reads a 1-based menu number from user input.
func parseChoice(input string, n int) (int, bool) {
	choice, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil || choice < 1 || choice > n {
		return 0, false
	}
	return choice, true
}

func (o *Orchestrator) printf(format string, args ...any) {
	fmt.Fprintf(o.out, format, args...)
}
