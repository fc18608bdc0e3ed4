package service

import (
	"context"
	"strings"

	"repairpos/internal/dto"
	"repairpos/internal/model"
	"repairpos/internal/repository"

	"github.com/google/uuid"
)

// CustomerService keeps the customer directory that sales and service jobs
// point at. Phone numbers are not unique: households share one.
type CustomerService interface {
	Create(ctx context.Context, req dto.CustomerRequest) (*dto.CustomerResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.CustomerRequest) (*dto.CustomerResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error)
	List(ctx context.Context, filter dto.CustomerFilter) (*dto.CustomerListResponse, error)
}

type customerService struct {
	repo repository.CustomerRepository
	now  Clock
}

func NewCustomerService(repo repository.CustomerRepository, clock Clock) CustomerService {
	if clock == nil {
		clock = systemClock
	}
	return &customerService{repo: repo, now: clock}
}

func (s *customerService) Create(ctx context.Context, req dto.CustomerRequest) (*dto.CustomerResponse, error) {
	c := &model.Customer{}
	if err := applyCustomer(c, req); err != nil {
		return nil, err
	}
	c.CreatedAt = s.now()
	c.UpdatedAt = c.CreatedAt
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	resp := customerToResponse(c)
	return &resp, nil
}

// Update replaces every editable field; omitted optional fields are cleared.
func (s *customerService) Update(ctx context.Context, id uuid.UUID, req dto.CustomerRequest) (*dto.CustomerResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, KindCustomer, id)
	}
	if err := applyCustomer(c, req); err != nil {
		return nil, err
	}
	c.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, notFound(err, KindCustomer, id)
	}
	resp := customerToResponse(c)
	return &resp, nil
}

func (s *customerService) Get(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, KindCustomer, id)
	}
	resp := customerToResponse(c)
	return &resp, nil
}

func (s *customerService) List(ctx context.Context, filter dto.CustomerFilter) (*dto.CustomerListResponse, error) {
	filter.Page, filter.Limit = pageDefaults(filter.Page, filter.Limit, 200)
	customers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	resp := &dto.CustomerListResponse{
		Data:  make([]dto.CustomerResponse, 0, len(customers)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range customers {
		resp.Data = append(resp.Data, customerToResponse(&customers[i]))
	}
	return resp, nil
}

func applyCustomer(c *model.Customer, req dto.CustomerRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return ErrEmptyName
	}
	c.Name = name
	c.Phone = optionalString(req.Phone)
	c.Email = optionalString(req.Email)
	c.Address = optionalString(req.Address)
	return nil
}

// optionalString maps blank input to NULL.
func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

func customerToResponse(c *model.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
		CreatedAt: formatTime(c.CreatedAt),
	}
}
