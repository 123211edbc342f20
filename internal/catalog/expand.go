package catalog

import (
	"strings"

	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
)

// variantAdapter serves categories whose records carry a metal option set.
// Each option passing the metal, price and availability filters becomes one
// row.
type variantAdapter struct {
	*profile
}

// Expand implements Adapter.
func (a variantAdapter) Expand(rec domain.ProductRecord, fs domain.FilterState) []domain.SearchResultRow {
	if fs.AvailableOnly && !rec.Available(a.category) {
		return nil
	}

	if len(rec.MetalOptions) == 0 {
		price := rec.ResolvedPrice()
		if !metalSelected(fs.Metals, rec.Metal) || !fs.InPriceRange(price) {
			return nil
		}
		row := a.baseRow(&rec)
		row.ID = rec.ID
		row.Price = price
		row.Metal = rec.Metal
		row.Karat = rec.Karat
		row.Image = rec.FirstImage()
		return []domain.SearchResultRow{row}
	}

	rows := make([]domain.SearchResultRow, 0, len(rec.MetalOptions))
	seen := make(map[string]struct{}, len(rec.MetalOptions))
	for _, opt := range rec.MetalOptions {
		if !metalSelected(fs.Metals, opt.Color) || !fs.InPriceRange(opt.Price) {
			continue
		}

		id := rec.ID + "-" + opt.Karat + "-" + opt.Color
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		row := a.baseRow(&rec)
		row.ID = id
		row.Price = opt.Price
		row.Metal = opt.Color
		row.Karat = opt.Karat
		row.Image = optionImage(&rec, opt.Color)
		rows = append(rows, row)
	}
	return rows
}

// itemAdapter serves categories where each record is a single sellable item.
type itemAdapter struct {
	*profile

	// title synthesizes a title for records stored without one.
	title func(rec *domain.ProductRecord) string
}

// Expand implements Adapter.
func (a itemAdapter) Expand(rec domain.ProductRecord, fs domain.FilterState) []domain.SearchResultRow {
	if fs.AvailableOnly && !rec.Available(a.category) {
		return nil
	}

	row := a.baseRow(&rec)
	if row.Title == "" && a.title != nil {
		row.Title = a.title(&rec)
	}
	row.ID = rec.ID
	row.Price = rec.ResolvedPrice()
	if row.Price < rec.Price {
		row.OriginalPrice = rec.Price
	}
	row.Metal = rec.Metal
	row.Karat = rec.Karat
	row.Carat = rec.Carat
	row.Image = rec.FirstImage()
	if a.gemstoneTypeField != "" {
		row.GemstoneType = rec.Type
	}
	return []domain.SearchResultRow{row}
}

func (p *profile) baseRow(rec *domain.ProductRecord) domain.SearchResultRow {
	return domain.SearchResultRow{
		ProductID:   rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Video:       rec.Video,
		Category:    p.category.Label(),
		ProductType: p.category.ProductType(),
		Style:       rec.Style,
		Type:        rec.Type,
		Shape:       rec.Shape,
	}
}

// metalSelected reports whether color passes the metal filter. An empty
// filter admits every color; matching ignores case.
func metalSelected(metals []string, color string) bool {
	if len(metals) == 0 {
		return true
	}
	for _, m := range metals {
		if strings.EqualFold(m, color) {
			return true
		}
	}
	return false
}

// optionImage prefers the first image registered for the option's color and
// falls back to the record's first generic image.
func optionImage(rec *domain.ProductRecord, color string) string {
	if imgs := rec.ColorImages[color]; len(imgs) > 0 && imgs[0] != "" {
		return imgs[0]
	}
	return rec.FirstImage()
}
