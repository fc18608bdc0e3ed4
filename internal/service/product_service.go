package service

import (
	"context"

	"repairpos/internal/dto"
	"repairpos/internal/model"
	"repairpos/internal/repository"

	"github.com/google/uuid"
)

// ProductService is the read side of the catalogue: search, detail and the
// stock movement audit trail.
type ProductService interface {
	List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	Movements(ctx context.Context, id uuid.UUID, filter dto.MovementFilter) (*dto.StockMovementListResponse, error)
}

type productService struct {
	repo      repository.ProductRepository
	movements repository.StockMovementRepository
}

func NewProductService(repo repository.ProductRepository, movements repository.StockMovementRepository) ProductService {
	return &productService{repo: repo, movements: movements}
}

func (s *productService) List(ctx context.Context, filter dto.ProductFilter) (*dto.ProductListResponse, error) {
	filter.Page, filter.Limit = pageDefaults(filter.Page, filter.Limit, 200)
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.ProductListResponse{
		Data:  make([]dto.ProductResponse, 0, len(products)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range products {
		resp.Data = append(resp.Data, productToResponse(&products[i]))
	}
	return resp, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, KindProduct, id)
	}
	resp := productToResponse(p)
	return &resp, nil
}

func (s *productService) Movements(ctx context.Context, id uuid.UUID, filter dto.MovementFilter) (*dto.StockMovementListResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, notFound(err, KindProduct, id)
	}
	page, limit := pageDefaults(filter.Page, filter.Limit, 500)
	movements, total, err := s.movements.List(ctx, repository.StockMovementFilter{
		ProductID: &id,
		Kind:      filter.Kind,
		Page:      page,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.StockMovementListResponse{
		Data:  make([]dto.StockMovementResponse, 0, len(movements)),
		Total: total,
		Page:  page,
		Limit: limit,
	}
	for _, m := range movements {
		resp.Data = append(resp.Data, dto.StockMovementResponse{
			ID:          m.ID,
			ProductID:   m.ProductID,
			Kind:        string(m.Kind),
			Quantity:    m.Quantity,
			StockBefore: m.StockBefore,
			StockAfter:  m.StockAfter,
			Reference:   m.Reference,
			ReferenceID: m.ReferenceID,
			CreatedAt:   formatTime(m.CreatedAt),
		})
	}
	return resp, nil
}

func productToResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		SKU:           p.SKU,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
	}
}
