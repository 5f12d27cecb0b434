package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"seenstudio/internal/apperr"
	"seenstudio/internal/domain"
	"seenstudio/internal/repos"
	"seenstudio/internal/validate"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 48
)

type CatalogService struct {
	Cats  *repos.CategoryRepo
	Prods *repos.ProductRepo
}

func NewCatalogService(cats *repos.CategoryRepo, prods *repos.ProductRepo) *CatalogService {
	return &CatalogService{Cats: cats, Prods: prods}
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]repos.CategoryCount, error) {
	return s.Cats.List(ctx)
}

// ProductQuery is the parsed query string of GET /products.
type ProductQuery struct {
	Category domain.Category
	Colors   []string
	Sizes    []string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
	Page     int
	PageSize int
}

type ProductPage struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

func (s *CatalogService) ListProducts(ctx context.Context, q ProductQuery) (ProductPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if q.Category != "" && !q.Category.IsValid() {
		return ProductPage{}, apperr.New(apperr.CodeValidation, "unknown category").
			WithDetails(map[string]string{"category": "is not a known category"})
	}
	if !repos.IsProductSort(q.Sort) {
		return ProductPage{}, apperr.New(apperr.CodeValidation, "unknown sort").
			WithDetails(map[string]string{"sort": "is not supported"})
	}
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return ProductPage{}, apperr.New(apperr.CodeValidation, "min_price is above max_price").
			WithDetails(map[string]string{"min_price": "must not exceed max_price"})
	}
	products, total, err := s.Prods.List(ctx, repos.ProductFilter{
		Category: q.Category,
		Colors:   q.Colors,
		Sizes:    q.Sizes,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		Sort:     q.Sort,
		Limit:    q.PageSize,
		Offset:   (q.Page - 1) * q.PageSize,
	})
	if err != nil {
		return ProductPage{}, err
	}
	return ProductPage{Products: products, Total: total, Page: q.Page, PageSize: q.PageSize}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	return s.Prods.Get(ctx, id)
}

func (s *CatalogService) Search(ctx context.Context, term string) ([]domain.Product, error) {
	return s.Prods.Search(ctx, term, MaxPageSize)
}

func (s *CatalogService) ByCategory(ctx context.Context, c domain.Category) ([]domain.Product, error) {
	if !c.IsValid() {
		return nil, apperr.New(apperr.CodeNotFound, "category not found")
	}
	out, _, err := s.Prods.List(ctx, repos.ProductFilter{Category: c})
	return out, err
}

type ColorInput struct {
	Name       string `json:"name" validate:"required"`
	Value      string `json:"value" validate:"required,hexcolor6"`
	ImageIndex *int   `json:"image_index" validate:"omitempty,min=0"`
}

// ProductInput is the admin create/update body.
type ProductInput struct {
	Name           string       `json:"name" validate:"required,max=255"`
	Description    string       `json:"description"`
	ProductDetails string       `json:"product_details"`
	Price          string       `json:"price" validate:"required"`
	Images         []string     `json:"images"`
	Colors         []ColorInput `json:"colors" validate:"dive"`
	Sizes          []string     `json:"sizes"`
	SizeChart      [][]string   `json:"size_chart"`
	Category       string       `json:"category" validate:"required"`
	IsActive       *bool        `json:"is_active"`
}

func (in ProductInput) toDomain() (domain.Product, error) {
	in.Name = strings.TrimSpace(in.Name)
	fe := validate.Struct(in)
	if fe == nil {
		fe = validate.FieldErrors{}
	}
	price, err := decimal.NewFromString(strings.TrimSpace(in.Price))
	if _, done := fe["price"]; !done && (err != nil || price.IsNegative()) {
		fe["price"] = "Price must be a non-negative amount"
	}
	cat := domain.Category(strings.TrimSpace(in.Category))
	if _, done := fe["category"]; !done && !cat.IsValid() {
		fe["category"] = "Category must be one of Dresses, Tops, Bottoms, Accessories, Sets"
	}
	p := domain.Product{
		Name:           in.Name,
		Description:    in.Description,
		ProductDetails: in.ProductDetails,
		Price:          price.Round(2),
		Images:         in.Images,
		Sizes:          in.Sizes,
		SizeChart:      repos.ChartFromGrid(in.SizeChart),
		Category:       cat,
		IsActive:       in.IsActive == nil || *in.IsActive,
	}
	for _, c := range in.Colors {
		p.Colors = append(p.Colors, domain.ColorVariant{Name: strings.TrimSpace(c.Name), Value: c.Value, ImageIndex: c.ImageIndex})
	}
	if err := p.CheckColorImages(); err != nil {
		fe["colors"] = err.Error()
	}
	if len(fe) > 0 {
		return domain.Product{}, apperr.New(apperr.CodeValidation, "validation failed").WithDetails(fe)
	}
	return p, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (domain.Product, error) {
	p, err := in.toDomain()
	if err != nil {
		return domain.Product{}, err
	}
	return s.Prods.Create(ctx, p)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id string, in ProductInput) (domain.Product, error) {
	p, err := in.toDomain()
	if err != nil {
		return domain.Product{}, err
	}
	p.ID = id
	return s.Prods.Update(ctx, p)
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id string) error {
	return s.Prods.Deactivate(ctx, id)
}
