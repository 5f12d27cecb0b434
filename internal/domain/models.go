package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryDresses     Category = "Dresses"
	CategoryTops        Category = "Tops"
	CategoryBottoms     Category = "Bottoms"
	CategoryAccessories Category = "Accessories"
	CategorySets        Category = "Sets"
)

var Categories = []Category{CategoryDresses, CategoryTops, CategoryBottoms, CategoryAccessories, CategorySets}

func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ColorVariant is one selectable color of a product. ImageIndex points into Product.Images.
type ColorVariant struct {
	Name       string `json:"name"`
	Value      string `json:"value"`
	ImageIndex *int   `json:"image_index,omitempty"`
}

const (
	SizeChartRows = 5
	SizeChartCols = 5
)

// SizeChart is a fixed 5x5 grid of cells. Row 0 holds the column headings.
// Shorter JSON input is padded with empty cells and extra cells are dropped.
type SizeChart [SizeChartRows][SizeChartCols]string

func (s SizeChart) IsEmpty() bool {
	for _, row := range s {
		for _, cell := range row {
			if cell != "" {
				return false
			}
		}
	}
	return true
}

type Product struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	ProductDetails string          `json:"product_details"`
	Price          decimal.Decimal `json:"price"`
	Images         []string        `json:"images"`
	Colors         []ColorVariant  `json:"colors"`
	Sizes          []string        `json:"sizes"`
	SizeChart      SizeChart       `json:"size_chart"`
	Category       Category        `json:"category"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at"`
}

// PrimaryImage returns the first image reference or "".
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

// ImageForColor resolves the image a color variant points at, falling back to the primary image.
func (p Product) ImageForColor(colorName string) string {
	for _, c := range p.Colors {
		if c.Name == colorName && c.ImageIndex != nil && *c.ImageIndex >= 0 && *c.ImageIndex < len(p.Images) {
			return p.Images[*c.ImageIndex]
		}
	}
	return p.PrimaryImage()
}

// CheckColorImages verifies every color image_index is a valid index into Images.
func (p Product) CheckColorImages() error {
	for _, c := range p.Colors {
		if c.ImageIndex == nil {
			continue
		}
		if *c.ImageIndex < 0 || *c.ImageIndex >= len(p.Images) {
			return fmt.Errorf("color %q: image_index %d out of range (have %d images)", c.Name, *c.ImageIndex, len(p.Images))
		}
	}
	return nil
}

func (p Product) HasColor(name string) bool {
	for _, c := range p.Colors {
		if c.Name == name {
			return true
		}
	}
	return false
}

func (p Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}
