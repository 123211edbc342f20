package domain

import "time"

// Document field names shared by every store backend.
const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldIsActive    = "isActive"
	FieldIsAvailable = "isAvailable"
	FieldPrice       = "price"
	FieldSalePrice   = "salePrice"
	FieldStyle       = "style"
	FieldType        = "type"
	FieldShape       = "shape"
	FieldMetal       = "metal"
	FieldKarat       = "karat"
	FieldCarat       = "carat"
	FieldColor       = "color"
	FieldClarity     = "clarity"
	FieldCut         = "cut"
	FieldCreatedAt   = "createdAt"
)

// MetalOption is one sellable metal choice of a variant product.
type MetalOption struct {
	Karat     string  `json:"karat" bson:"karat"`
	Color     string  `json:"color" bson:"color"`
	Price     float64 `json:"price" bson:"price"`
	IsDefault bool    `json:"isDefault" bson:"isDefault"`
}

// ProductRecord is a persisted catalog entry. The struct is the union of the
// attributes used by all categories; a category only populates its own.
type ProductRecord struct {
	ID          string   `json:"id" bson:"_id" validate:"required"`
	Title       string   `json:"title,omitempty" bson:"title,omitempty"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
	IsActive    bool     `json:"isActive" bson:"isActive"`
	IsAvailable bool     `json:"isAvailable" bson:"isAvailable"`
	Price       float64  `json:"price" bson:"price" validate:"gte=0"`
	SalePrice   *float64 `json:"salePrice,omitempty" bson:"salePrice,omitempty"`

	Style   string  `json:"style,omitempty" bson:"style,omitempty"`
	Type    string  `json:"type,omitempty" bson:"type,omitempty"`
	Shape   string  `json:"shape,omitempty" bson:"shape,omitempty"`
	Metal   string  `json:"metal,omitempty" bson:"metal,omitempty"`
	Karat   string  `json:"karat,omitempty" bson:"karat,omitempty"`
	Carat   float64 `json:"carat,omitempty" bson:"carat,omitempty"`
	Color   string  `json:"color,omitempty" bson:"color,omitempty"`
	Clarity string  `json:"clarity,omitempty" bson:"clarity,omitempty"`
	Cut     string  `json:"cut,omitempty" bson:"cut,omitempty"`

	Images []string `json:"images,omitempty" bson:"images,omitempty"`
	Video  string   `json:"video,omitempty" bson:"video,omitempty"`

	MetalOptions []MetalOption       `json:"metalOptions,omitempty" bson:"metalOptions,omitempty" validate:"omitempty,dive"`
	ColorImages  map[string][]string `json:"colorImages,omitempty" bson:"colorImages,omitempty"`

	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`
}

// Available reports the record's availability flag for the given category.
func (p *ProductRecord) Available(c Category) bool {
	if c.AvailabilityField() == FieldIsActive {
		return p.IsActive
	}
	return p.IsAvailable
}

// ResolvedPrice returns the sale price when present, positive and lower than
// the base price, otherwise the base price.
func (p *ProductRecord) ResolvedPrice() float64 {
	if p.SalePrice != nil && *p.SalePrice > 0 && *p.SalePrice < p.Price {
		return *p.SalePrice
	}
	return p.Price
}

// FirstImage returns the first generic image or an empty string.
func (p *ProductRecord) FirstImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// FieldValue returns the value of a document field by name. Strings, float64
// and bool are returned as such; unknown fields return nil.
func (p *ProductRecord) FieldValue(field string) any {
	switch field {
	case FieldID:
		return p.ID
	case FieldTitle:
		return p.Title
	case FieldDescription:
		return p.Description
	case FieldIsActive:
		return p.IsActive
	case FieldIsAvailable:
		return p.IsAvailable
	case FieldPrice:
		return p.Price
	case FieldSalePrice:
		if p.SalePrice == nil {
			return nil
		}
		return *p.SalePrice
	case FieldStyle:
		return p.Style
	case FieldType:
		return p.Type
	case FieldShape:
		return p.Shape
	case FieldMetal:
		return p.Metal
	case FieldKarat:
		return p.Karat
	case FieldCarat:
		return p.Carat
	case FieldColor:
		return p.Color
	case FieldClarity:
		return p.Clarity
	case FieldCut:
		return p.Cut
	default:
		return nil
	}
}
