package products

import (
	"errors"

	"langsearch/internal/domain/catalog"
	"langsearch/internal/langfields"
)

// ---------- requests

type CreateProductRequest struct {
	SKU        string `json:"sku" binding:"required"`
	PriceCents int64  `json:"price_cents"`
	Published  bool   `json:"published"`

	// Name, Description and Notes are stored under Lang (or the request
	// language). I18n adds further languages; in an I18n entry for Lang
	// itself, the non-empty top-level fields win.
	Lang        string `json:"lang"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Notes       string `json:"notes"`

	I18n map[string]map[string]any `json:"i18n"` // { "en": {"name": ...}, "de": {...} }
}

// ---------- responses

type ProductDTO struct {
	ID         uint   `json:"id"`
	SKU        string `json:"sku"`
	PriceCents int64  `json:"price_cents"`
	Published  bool   `json:"published"`

	Lang        string `json:"lang"`
	Translated  bool   `json:"translated"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Notes       string `json:"notes"`

	Languages []string                  `json:"languages"`
	I18n      map[string]map[string]any `json:"i18n,omitempty"`
}

type ProductListDTO struct {
	Lang     string       `json:"lang"`
	Products []ProductDTO `json:"products"`
}

// toProductDTO localises p into its current language. A product without a
// translation in that language is returned with Translated false and empty
// text fields.
func toProductDTO(m *langfields.Mapping, p *catalog.Product, withI18n bool) (ProductDTO, error) {
	out := ProductDTO{
		ID:         p.ID,
		SKU:        p.SKU,
		PriceCents: p.PriceCents,
		Published:  p.Published,
		Lang:       m.LanguageOf(p),
		Languages:  p.Languages(),
	}

	err := m.Localize(p)
	switch {
	case err == nil:
		out.Translated = true
		out.Name, out.Description, out.Notes = p.Name, p.Description, p.Notes
	case errors.Is(err, langfields.ErrNoTranslation):
	default:
		return ProductDTO{}, err
	}

	if withI18n {
		out.I18n = make(map[string]map[string]any, len(p.Translations))
		for _, tr := range p.Translations {
			out.I18n[tr.Lang] = tr.Values
		}
	}
	return out, nil
}
