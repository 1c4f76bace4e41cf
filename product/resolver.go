// Package product resolves a product page URL into its identifier, title and
// purchasable variants.
package product

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/aluiziolira/go-stock-locator/models"
	"github.com/aluiziolira/go-stock-locator/parser"
	"github.com/aluiziolira/go-stock-locator/render"
)

// ErrNotFound means the URL carries no product identifier or the rendered page
// does not describe a product with that identifier.
var ErrNotFound = eris.New("product not found")

// Resolver turns product URLs into products by rendering the page.
type Resolver struct {
	renderer render.Renderer
	memo     *lru.Cache[string, models.Product]
}

// NewResolver builds a resolver. Up to cacheSize resolved products are kept
// per process; 0 disables the memo.
func NewResolver(renderer render.Renderer, cacheSize int) (*Resolver, error) {
	r := &Resolver{renderer: renderer}
	if cacheSize > 0 {
		memo, err := lru.New[string, models.Product](cacheSize)
		if err != nil {
			return nil, eris.Wrap(err, "create product cache")
		}
		r.memo = memo
	}
	return r, nil
}

// Resolve returns the product behind productURL. The returned product always
// has at least one variant.
func (r *Resolver) Resolve(ctx context.Context, productURL string) (*models.Product, error) {
	id, ok := parser.ExtractProductID(productURL)
	if !ok {
		return nil, eris.Wrapf(ErrNotFound, "no product id in %q", productURL)
	}

	if r.memo != nil {
		if p, ok := r.memo.Get(productURL); ok {
			zap.L().Debug("product served from memo", zap.String("product_id", p.ID))
			return &p, nil
		}
	}

	state, err := r.renderer.Render(ctx, productURL)
	if err != nil {
		return nil, eris.Wrap(err, "render product page")
	}

	p, err := productFromState(state, id)
	if err != nil {
		return nil, err
	}
	p.URL = productURL
	if len(p.Variants) == 0 {
		zap.L().Info("product exposes no variants, using product id", zap.String("product_id", id))
	}
	p.Variants = p.SelectableVariants()

	if r.memo != nil {
		r.memo.Add(productURL, *p)
	}
	return p, nil
}
