package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-catalog-api/internal/model"
	"go-catalog-api/pkg/apierror"
)

const (
	defaultProductPage  = 1
	defaultProductLimit = 10
	defaultProductSort  = "price"
)

type ProductStore interface {
	List(ctx context.Context, opts model.ListProductsOptions) ([]model.Product, error)
	FindByID(ctx context.Context, id string) (model.Product, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, p model.Product) error
	Update(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id string) error
}

type ProductService struct {
	products ProductStore
}

func NewProductService(products ProductStore) *ProductService {
	return &ProductService{products: products}
}

func (s *ProductService) List(ctx context.Context, opts model.ListProductsOptions) ([]model.Product, error) {
	if opts.Page < 1 {
		opts.Page = defaultProductPage
	}
	if opts.Limit < 1 {
		opts.Limit = defaultProductLimit
	}
	if strings.TrimSpace(opts.Sort) == "" {
		opts.Sort = defaultProductSort
	}
	if strings.ToLower(opts.SortOrder) == "desc" {
		opts.SortOrder = "desc"
	} else {
		opts.SortOrder = "asc"
	}

	return s.products.List(ctx, opts)
}

func (s *ProductService) Get(ctx context.Context, id string) (model.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if errors.Is(err, model.ErrProductNotFound) {
		return model.Product{}, apierror.NotFound("product not found", id)
	}
	return product, err
}

func (s *ProductService) Create(ctx context.Context, req model.CreateProductRequest) (model.Product, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Product{}, apierror.BadRequest("product name is required", "")
	}
	if req.Price < 0 {
		return model.Product{}, apierror.BadRequest("price cannot be negative", "")
	}

	exists, err := s.products.ExistsByName(ctx, name)
	if err != nil {
		return model.Product{}, err
	}
	if exists {
		return model.Product{}, apierror.Conflict("product already exists", name)
	}

	now := time.Now().UTC()
	product := model.Product{
		ID:          uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Quantity:    req.Quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.products.Create(ctx, product); err != nil {
		return model.Product{}, err
	}

	return product, nil
}

func (s *ProductService) Update(ctx context.Context, id string, req model.UpdateProductRequest) (model.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			return model.Product{}, apierror.NotFound("product not found", id)
		}
		return model.Product{}, err
	}

	if req.Name != nil {
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		product.Description = strings.TrimSpace(*req.Description)
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return model.Product{}, apierror.BadRequest("price cannot be negative", "")
		}
		product.Price = *req.Price
	}
	if req.Quantity != nil {
		product.Quantity = *req.Quantity
	}
	product.UpdatedAt = time.Now().UTC()

	if err := s.products.Update(ctx, product); err != nil {
		if errors.Is(err, model.ErrProductNotFound) {
			return model.Product{}, apierror.NotFound("product not found", id)
		}
		return model.Product{}, err
	}

	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	err := s.products.Delete(ctx, id)
	if errors.Is(err, model.ErrProductNotFound) {
		return apierror.NotFound("product not found", id)
	}
	return err
}
