package orchestrator

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/aluiziolira/go-stock-locator/models"
	"github.com/aluiziolira/go-stock-locator/parser"
	"github.com/aluiziolira/go-stock-locator/product"
	"github.com/aluiziolira/go-stock-locator/stock"
)

const menu = `
1) Check product availability
2) Refresh and list stores
3) Exit
> `

// Run shows the menu until the user exits or input ends. Only store directory
// failures end the loop with an error.
func (o *Orchestrator) Run(ctx context.Context) error {
	for {
		o.printf("%s", menu)
		line, err := o.readLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		switch strings.TrimSpace(line) {
		case "1":
			err = o.checkInteractive(ctx)
		case "2":
			err = o.ListStores(ctx, true)
		case "3":
			return nil
		default:
			o.printf("Unknown choice %q.\n", strings.TrimSpace(line))
			continue
		}

		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// checkInteractive walks one check through the prompts. Only errors that
// must end the session are returned; the rest are reported.
func (o *Orchestrator) checkInteractive(ctx context.Context) error {
	logger := zap.L().With(zap.String("run_id", uuid.NewString()))

	o.printf("Product URL: ")
	rawURL, err := o.readLine()
	if err != nil {
		return err
	}

	p, err := o.products.Resolve(ctx, strings.TrimSpace(rawURL))
	if err != nil {
		if errors.Is(err, product.ErrNotFound) {
			o.printf("Product not found.\n")
		} else {
			o.printf("Could not load product page: %v\n", err)
		}
		logger.Warn("product resolution failed", zap.Error(err))
		return nil
	}

	v, ok, err := o.promptVariant(p)
	if err != nil || !ok {
		return err
	}

	code, err := o.promptPostalCode()
	if err != nil {
		return err
	}

	active, err := o.activeStores(ctx, code)
	if errors.Is(err, ErrNoStoresForPostalCode) {
		o.printf("No stores for postcode %s.\n", code)
		return nil
	}
	if err != nil {
		return err
	}

	report, err := o.stock.Check(ctx, *p, v, active)
	switch {
	case errors.Is(err, stock.ErrNoData):
		o.printf("The stock service returned no data for %s.\n", v.Title)
		return nil
	case err != nil:
		o.printf("No stock data found.\n")
		logger.Error("stock check failed", zap.String("variant_id", v.ID), zap.Error(err))
		return nil
	}

	PrintReport(o.out, report)
	return nil
}

// promptVariant lists the variants and reads the choice. A single variant is
// taken without asking. ok is false when the choice was invalid.
func (o *Orchestrator) promptVariant(p *models.Product) (models.Variant, bool, error) {
	variants := p.SelectableVariants()
	o.printf("%s\n", p.Title)
	if len(variants) == 1 {
		o.printf("Using variant %s (%s).\n", variants[0].Title, variants[0].ID)
		return variants[0], true, nil
	}

	for i, v := range variants {
		o.printf("  %d) %s [%s]\n", i+1, v.Title, v.ID)
	}
	o.printf("Variant number: ")
	line, err := o.readLine()
	if err != nil {
		return models.Variant{}, false, err
	}

	choice, ok := parseChoice(line, len(variants))
	if !ok {
		o.printf("Invalid variant selection.\n")
		return models.Variant{}, false, nil
	}
	return variants[choice-1], true, nil
}

// promptPostalCode asks until the input is empty or 4 digits.
func (o *Orchestrator) promptPostalCode() (string, error) {
	for {
		o.printf("Postal code filter (4 digits, empty for all): ")
		line, err := o.readLine()
		if err != nil {
			return "", err
		}
		if code, ok := parser.NormalizePostalCode(line); ok {
			return code, nil
		}
		o.printf("Please enter a 4-digit postal code or leave it empty.\n")
	}
}

// readLine returns the next input line without its terminator. A final line
// without a newline is returned before io.EOF.
func (o *Orchestrator) readLine() (string, error) {
	line, err := o.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", eris.Wrap(err, "read input")
	}
	return strings.TrimRight(line, "\r\n"), nil
}
