package catalog

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/vrapolinario/AIforITOps/pkg/config"
	"github.com/vrapolinario/AIforITOps/pkg/db/models"
	pkgerrors "github.com/vrapolinario/AIforITOps/pkg/errors"
)

type stubRepo struct {
	products map[uuid.UUID]*models.Product
	upserted []*models.Product
	deleted  []uuid.UUID
}

func newStubRepo() *stubRepo {
	return &stubRepo{products: map[uuid.UUID]*models.Product{}}
}

func (s *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := s.products[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) List(_ context.Context) ([]models.Product, error) {
	rows := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		rows = append(rows, *p)
	}
	return rows, nil
}

func (s *stubRepo) Upsert(_ context.Context, product *models.Product) error {
	copied := *product
	s.products[product.ID] = &copied
	s.upserted = append(s.upserted, &copied)
	return nil
}

func (s *stubRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.products, id)
	s.deleted = append(s.deleted, id)
	return nil
}

func testLimits() config.CatalogConfig {
	return config.CatalogConfig{MaxImageBytes: 1 << 20, MaxDescriptionChars: 4000}
}

func ptrString(v string) *string { return &v }

func TestCreateAssignsIDAndPersists(t *testing.T) {
	repo := newStubRepo()
	svc, err := NewService(repo, testLimits())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	product, err := svc.Create(context.Background(), ProductInput{
		Name:     ptrString("Oak Table"),
		Price:    decimal.RequireFromString("129.99"),
		Quantity: 5,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if product.ID == uuid.Nil {
		t.Fatal("expected a generated id")
	}
	if len(repo.upserted) != 1 {
		t.Fatalf("expected one upsert, got %d", len(repo.upserted))
	}
}

func TestCreateRejectsOversizedDescription(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo, testLimits())

	_, err := svc.Create(context.Background(), ProductInput{
		Description: ptrString(strings.Repeat("x", 4001)),
		Price:       decimal.Zero,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(repo.upserted) != 0 {
		t.Fatal("oversized input must be rejected before persistence")
	}
}

func TestCreateRejectsOversizedImage(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo, testLimits())

	_, err := svc.Create(context.Background(), ProductInput{
		Price:     decimal.Zero,
		ImageData: bytes.Repeat([]byte{0xFF}, (1<<20)+1),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateRejectsNegativePriceAndQuantity(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo, testLimits())

	_, err := svc.Create(context.Background(), ProductInput{
		Price:    decimal.RequireFromString("-1"),
		Quantity: -2,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %T", typed.Details())
	}
	if _, ok := details["price"]; !ok {
		t.Fatal("expected price detail")
	}
	if _, ok := details["quantity"]; !ok {
		t.Fatal("expected quantity detail")
	}
}

func TestUpdateKeepsExistingImageWhenNoneUploaded(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo, testLimits())

	id := uuid.New()
	repo.products[id] = &models.Product{
		ID:        id,
		Name:      ptrString("Chair"),
		Price:     decimal.RequireFromString("10.00"),
		ImageData: []byte{0x01, 0x02},
		Quantity:  3,
	}

	updated, err := svc.Update(context.Background(), id, ProductInput{
		Name:     ptrString("Recliner"),
		Price:    decimal.RequireFromString("25.00"),
		Quantity: 2,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(updated.ImageData) != 2 {
		t.Fatal("expected existing image to be retained")
	}
	if *updated.Name != "Recliner" {
		t.Fatalf("unexpected name %q", *updated.Name)
	}
}

func TestUpdateMissingProductReturnsNotFound(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo, testLimits())

	_, err := svc.Update(context.Background(), uuid.New(), ProductInput{Price: decimal.Zero})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetMissingProductReturnsNotFound(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo, testLimits())

	_, err := svc.Get(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteAbsentProductIsNoOp(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo, testLimits())

	if err := svc.Delete(context.Background(), uuid.New()); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Fatal("expected delete call to pass through")
	}
}
