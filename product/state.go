package product

import (
	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/aluiziolira/go-stock-locator/models"
	"github.com/aluiziolira/go-stock-locator/parser"
)

// Every assumption about the shape of the injected page state lives here.
const (
	productsKey   = "products"
	variantsKey   = "variants"
	fullTitlePath = "keyFacts.fullTitle"
)

// productFromState reads the product node keyed by id out of a serialised
// state snapshot. Missing or malformed variants yield an empty list; a missing
// title means the id did not resolve to a product.
func productFromState(state []byte, id string) (*models.Product, error) {
	if !gjson.ValidBytes(state) {
		return nil, eris.New("rendered page state is not valid JSON")
	}

	node := gjson.GetBytes(state, productsKey+"."+gjson.Escape(id))
	title := node.Get(fullTitlePath).String()
	if title == "" {
		return nil, eris.Wrapf(ErrNotFound, "no title for product %s", id)
	}

	return &models.Product{
		ID:       id,
		Title:    title,
		Variants: variantsFrom(node.Get(variantsKey)),
	}, nil
}

// variantsFrom lists variant records in the order the page inserted them.
func variantsFrom(v gjson.Result) []models.Variant {
	out := make([]models.Variant, 0)
	if !v.IsObject() && !v.IsArray() {
		return out
	}
	v.ForEach(func(_, rec gjson.Result) bool {
		if !rec.IsObject() {
			return true
		}
		fields := parser.VariantFields{
			VariantID: rec.Get("variantId").String(),
			ArticleID: rec.Get("articleId").String(),
			FullTitle: rec.Get("fullTitle").String(),
			Title:     rec.Get("title").String(),
			Name:      rec.Get("name").String(),
		}
		id := fields.ID()
		if id == "" {
			zap.L().Debug("skipping variant without id", zap.String("raw", rec.Raw))
			return true
		}
		out = append(out, models.Variant{ID: id, Title: fields.DisplayTitle()})
		return true
	})
	return out
}
