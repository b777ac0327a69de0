package catalog

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vrapolinario/AIforITOps/pkg/config"
	"github.com/vrapolinario/AIforITOps/pkg/db/models"
	pkgerrors "github.com/vrapolinario/AIforITOps/pkg/errors"
)

// Service exposes the admin catalog operations.
type Service interface {
	Create(ctx context.Context, input ProductInput) (*models.Product, error)
	Update(ctx context.Context, productID uuid.UUID, input ProductInput) (*models.Product, error)
	Get(ctx context.Context, productID uuid.UUID) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Delete(ctx context.Context, productID uuid.UUID) error
}

// ProductInput is the validated payload for create/update.
type ProductInput struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	Price       decimal.Decimal `json:"price"`
	ImageData   []byte          `json:"imageData"`
	Quantity    int             `json:"quantity"`
}

type repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	Upsert(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo   repository
	limits config.CatalogConfig
}

// NewService builds the catalog service.
func NewService(repo repository, limits config.CatalogConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo, limits: limits}, nil
}

func (s *service) Create(ctx context.Context, input ProductInput) (*models.Product, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}
	product := &models.Product{
		ID:          uuid.New(),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		ImageData:   input.ImageData,
		Quantity:    input.Quantity,
	}
	if err := s.repo.Upsert(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting product")
	}
	return product, nil
}

func (s *service) Update(ctx context.Context, productID uuid.UUID, input ProductInput) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if err := s.validate(input); err != nil {
		return nil, err
	}

	existing, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}

	existing.Name = input.Name
	existing.Description = input.Description
	existing.Price = input.Price
	existing.Quantity = input.Quantity
	if len(input.ImageData) > 0 {
		existing.ImageData = input.ImageData
	}

	if err := s.repo.Upsert(ctx, existing); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persisting product")
	}
	return existing, nil
}

func (s *service) Get(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	product, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
	}
	return product, nil
}

func (s *service) List(ctx context.Context) ([]models.Product, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing products")
	}
	return rows, nil
}

func (s *service) Delete(ctx context.Context, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if err := s.repo.Delete(ctx, productID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deleting product")
	}
	return nil
}

// validate rejects oversized payloads before anything touches the store so
// the caller keeps their input for correction.
func (s *service) validate(input ProductInput) error {
	details := map[string]string{}
	if input.Price.IsNegative() {
		details["price"] = "must not be negative"
	}
	if input.Quantity < 0 {
		details["quantity"] = "must not be negative"
	}
	if input.Description != nil && utf8.RuneCountInString(*input.Description) > s.limits.MaxDescriptionChars {
		details["description"] = fmt.Sprintf("must be at most %d characters", s.limits.MaxDescriptionChars)
	}
	if len(input.ImageData) > s.limits.MaxImageBytes {
		details["imageData"] = fmt.Sprintf("must be at most %d bytes", s.limits.MaxImageBytes)
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product").WithDetails(details)
	}
	return nil
}
