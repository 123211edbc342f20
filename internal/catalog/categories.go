package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AsimRauf/jewellery-store-sub002/internal/domain"
)

// NewSettingsAdapter returns the adapter for ring settings.
func NewSettingsAdapter() Adapter {
	return variantAdapter{&profile{
		category:   domain.CategorySettings,
		aliases:    newAliases("setting", "settings", "ring setting", "ring settings", "engagement setting"),
		textFields: []string{domain.FieldTitle, domain.FieldDescription, domain.FieldStyle, domain.FieldType},
		styleField: domain.FieldStyle,
		typeField:  domain.FieldType,
		shapeField: domain.FieldShape,
	}}
}

// NewWeddingRingsAdapter returns the adapter for wedding rings and bands.
func NewWeddingRingsAdapter() Adapter {
	return variantAdapter{&profile{
		category:   domain.CategoryWeddingRings,
		aliases:    newAliases("ring", "rings", "wedding band", "wedding bands", "wedding ring", "wedding rings", "band", "bands"),
		textFields: []string{domain.FieldTitle, domain.FieldDescription, domain.FieldStyle, domain.FieldType, domain.FieldShape},
		styleField: domain.FieldStyle,
		typeField:  domain.FieldType,
	}}
}

// NewEngagementRingsAdapter returns the adapter for complete engagement rings.
func NewEngagementRingsAdapter() Adapter {
	return variantAdapter{&profile{
		category:   domain.CategoryEngagementRings,
		aliases:    newAliases("engagement ring", "engagement rings", "engagement"),
		textFields: []string{domain.FieldTitle, domain.FieldDescription, domain.FieldStyle, domain.FieldType, domain.FieldShape},
		styleField: domain.FieldStyle,
		typeField:  domain.FieldType,
		shapeField: domain.FieldShape,
	}}
}

// NewDiamondsAdapter returns the adapter for loose diamonds. Diamonds are
// usually stored without a title and are named from their grading.
func NewDiamondsAdapter() Adapter {
	return itemAdapter{
		profile: &profile{
			category:   domain.CategoryDiamonds,
			aliases:    newAliases("diamond", "diamonds", "loose diamond", "loose diamonds"),
			textFields: []string{domain.FieldShape, domain.FieldColor, domain.FieldClarity, domain.FieldCut, domain.FieldType},
			typeField:  domain.FieldType,
			shapeField: domain.FieldShape,
		},
		title: DiamondTitle,
	}
}

// NewGemstonesAdapter returns the adapter for loose gemstones. The gemstone
// type facet is stored in the type field.
func NewGemstonesAdapter() Adapter {
	return itemAdapter{
		profile: &profile{
			category:          domain.CategoryGemstones,
			aliases:           newAliases("gemstone", "gemstones", "gem", "gems"),
			textFields:        []string{domain.FieldTitle, domain.FieldDescription, domain.FieldType, domain.FieldShape, domain.FieldColor},
			typeField:         domain.FieldType,
			shapeField:        domain.FieldShape,
			gemstoneTypeField: domain.FieldType,
		},
		title: gemstoneTitle,
	}
}

// NewBraceletsAdapter returns the adapter for bracelets.
func NewBraceletsAdapter() Adapter {
	return jewelryAdapter(domain.CategoryBracelets, "bracelet", "bracelets", "bangle", "bangles")
}

// NewEarringsAdapter returns the adapter for earrings.
func NewEarringsAdapter() Adapter {
	return jewelryAdapter(domain.CategoryEarrings, "earring", "earrings")
}

// NewNecklacesAdapter returns the adapter for necklaces and pendants.
func NewNecklacesAdapter() Adapter {
	return jewelryAdapter(domain.CategoryNecklaces, "necklace", "necklaces", "pendant", "pendants")
}

// NewMensJewelryAdapter returns the adapter for men's jewelry.
func NewMensJewelryAdapter() Adapter {
	return jewelryAdapter(domain.CategoryMensJewelry, "men", "mens", "men's", "men's jewelry", "mens jewelry")
}

// jewelryAdapter builds the adapter shared by finished jewelry categories,
// which carry a single metal and price per record.
func jewelryAdapter(c domain.Category, aliases ...string) Adapter {
	return itemAdapter{profile: &profile{
		category:   c,
		aliases:    newAliases(aliases...),
		textFields: []string{domain.FieldTitle, domain.FieldDescription, domain.FieldStyle, domain.FieldType, domain.FieldMetal},
		styleField: domain.FieldStyle,
		typeField:  domain.FieldType,
		metalField: domain.FieldMetal,
	}}
}

// DiamondTitle names a diamond from its grading, e.g. "Round 1.5ct G VS1 Diamond".
func DiamondTitle(rec *domain.ProductRecord) string {
	return fmt.Sprintf("%s %sct %s %s Diamond",
		rec.Shape, strconv.FormatFloat(rec.Carat, 'f', -1, 64), rec.Color, rec.Clarity)
}

func gemstoneTitle(rec *domain.ProductRecord) string {
	parts := make([]string, 0, 3)
	if rec.Carat > 0 {
		parts = append(parts, strconv.FormatFloat(rec.Carat, 'f', -1, 64)+"ct")
	}
	for _, s := range []string{rec.Shape, rec.Type} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "Gemstone"
	}
	return strings.Join(parts, " ")
}
