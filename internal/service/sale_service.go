package service

import (
	"context"
	"time"

	"repairpos/internal/dto"
	"repairpos/internal/model"
	"repairpos/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SaleService interface {
	CommitSale(ctx context.Context, req dto.CommitSaleRequest) (*dto.SaleResponse, error)
	GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error)
}

type saleService struct {
	repo      repository.SaleRepository
	products  repository.ProductRepository
	users     repository.UserRepository
	customers repository.CustomerRepository
	ledger    StockLedger
	ids       *IdentifierGenerator
	events    EventPublisher
	loc       *time.Location
	now       Clock
}

func NewSaleService(
	repo repository.SaleRepository,
	products repository.ProductRepository,
	users repository.UserRepository,
	customers repository.CustomerRepository,
	ledger StockLedger,
	ids *IdentifierGenerator,
	events EventPublisher,
	loc *time.Location,
	now Clock,
) SaleService {
	if now == nil {
		now = systemClock
	}
	if loc == nil {
		loc = time.UTC
	}
	return &saleService{
		repo:      repo,
		products:  products,
		users:     users,
		customers: customers,
		ledger:    ledger,
		ids:       ids,
		events:    publisherOrNoop(events),
		loc:       loc,
		now:       now,
	}
}

// ── CommitSale ───────────────────────────────────────────────────────────────
// Two phases inside one transaction:
//   1. lock every product in the cart (id order) and check the cumulative
//      demand of each line against the locked stock, in cart order
//   2. only when every line fits: create the sale with its items and reserve
//      each line through the ledger
// Any error rolls the whole unit back; stock is never partially decremented.

func (s *saleService) CommitSale(ctx context.Context, req dto.CommitSaleRequest) (*dto.SaleResponse, error) {
	if len(req.Lines) == 0 {
		return nil, ErrEmptyCart
	}

	total := decimal.Zero
	for _, line := range req.Lines {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		if line.UnitPrice.IsNegative() {
			return nil, ErrInvalidPrice
		}
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	total = total.Round(2)

	var (
		sale     model.Sale
		products map[uuid.UUID]model.Product
	)
	err := withIdentifierRetry(ctx, func() error {
		return runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
			var err error
			products, err = s.lockCart(tx, req.Lines)
			if err != nil {
				return err
			}
			if err := checkAvailability(req.Lines, products); err != nil {
				return err
			}

			if _, err := s.users.FindByIDTx(tx, req.SalespersonID); err != nil {
				return notFound(err, KindUser, req.SalespersonID)
			}
			if req.CustomerID != nil {
				if _, err := s.customers.FindByIDTx(tx, *req.CustomerID); err != nil {
					return notFound(err, KindCustomer, *req.CustomerID)
				}
			}

			number, err := s.ids.SaleNumber(ctx, func(_ context.Context, candidate string) (bool, error) {
				return s.repo.ExistsNumberTx(tx, candidate)
			})
			if err != nil {
				return err
			}

			sale = model.Sale{
				SaleNumber:    number,
				CustomerID:    req.CustomerID,
				SalespersonID: req.SalespersonID,
				TotalAmount:   total,
				PaymentStatus: model.PaymentPaid,
				CreatedAt:     s.now(),
			}
			for _, line := range req.Lines {
				sale.Items = append(sale.Items, model.SaleItem{
					ProductID:    line.ProductID,
					Quantity:     line.Quantity,
					PricePerUnit: line.UnitPrice,
				})
			}
			if err := s.repo.CreateTx(tx, &sale); err != nil {
				return err
			}

			saleID := sale.ID
			ref := MovementRef{Kind: model.MovementSale, Reference: number, ReferenceID: &saleID}
			for _, line := range req.Lines {
				if _, err := s.ledger.ReserveTx(tx, line.ProductID, line.Quantity, ref); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("sale_number", sale.SaleNumber).Str("total", total.StringFixed(2)).
		Int("lines", len(sale.Items)).Msg("sale committed")

	publish(ctx, s.events, dto.EventSaleCommitted, dto.SaleCommittedEvent{
		SaleID:      sale.ID,
		SaleNumber:  sale.SaleNumber,
		TotalAmount: sale.TotalAmount,
		ItemCount:   len(sale.Items),
	})

	for i := range sale.Items {
		p := products[sale.Items[i].ProductID]
		sale.Items[i].Product = &p
	}
	return saleToResponse(&sale), nil
}

// lockCart locks every distinct product in the cart. A product missing from
// the catalogue is reported for the first line that references it.
func (s *saleService) lockCart(tx *gorm.DB, lines []dto.SaleLineRequest) (map[uuid.UUID]model.Product, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, line := range lines {
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			ids = append(ids, line.ProductID)
		}
	}

	locked, err := s.products.FindByIDsForUpdateTx(tx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]model.Product, len(locked))
	for _, p := range locked {
		byID[p.ID] = p
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, &NotFoundError{Kind: KindProduct, ID: id}
		}
	}
	return byID, nil
}

// checkAvailability walks the cart in order and fails on the first line whose
// running demand for its product exceeds the stock on hand.
func checkAvailability(lines []dto.SaleLineRequest, products map[uuid.UUID]model.Product) error {
	demand := make(map[uuid.UUID]int, len(products))
	for _, line := range lines {
		p := products[line.ProductID]
		demand[p.ID] += line.Quantity
		if demand[p.ID] > p.StockQuantity {
			return &InsufficientStockError{
				ProductID:   p.ID,
				ProductName: p.Name,
				Requested:   demand[p.ID],
				Available:   p.StockQuantity,
			}
		}
	}
	return nil
}

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	sale, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, KindSale, id)
	}
	return saleToResponse(sale), nil
}

func (s *saleService) ListSales(ctx context.Context, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	page, limit := pageDefaults(filter.Page, filter.Limit, 200)
	q := repository.SaleFilter{Page: page, Limit: limit}
	if filter.Date != "" {
		day, err := time.ParseInLocation("2006-01-02", filter.Date, s.loc)
		if err != nil {
			return nil, ErrInvalidDate
		}
		q.From = day.UTC()
		q.To = day.AddDate(0, 0, 1).UTC()
	}

	sales, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}
	resp := &dto.SaleListResponse{
		Data:  make([]dto.SaleResponse, 0, len(sales)),
		Total: total,
		Page:  page,
		Limit: limit,
	}
	for i := range sales {
		resp.Data = append(resp.Data, *saleToResponse(&sales[i]))
	}
	return resp, nil
}

func saleToResponse(s *model.Sale) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:            s.ID,
		SaleNumber:    s.SaleNumber,
		CustomerID:    s.CustomerID,
		SalespersonID: s.SalespersonID,
		TotalAmount:   s.TotalAmount,
		PaymentStatus: s.PaymentStatus,
		Items:         make([]dto.SaleItemResponse, 0, len(s.Items)),
		CreatedAt:     formatTime(s.CreatedAt),
	}
	for _, item := range s.Items {
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		resp.Items = append(resp.Items, dto.SaleItemResponse{
			ProductID:    item.ProductID,
			ProductName:  name,
			Quantity:     item.Quantity,
			PricePerUnit: item.PricePerUnit,
			LineTotal:    item.LineTotal(),
		})
	}
	return resp
}
