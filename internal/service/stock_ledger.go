package service

import (
	"context"

	"repairpos/internal/model"
	"repairpos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementRef tags the stock_movements row written for a reserve or release.
type MovementRef struct {
	Kind        model.MovementKind
	Reference   string
	ReferenceID *uuid.UUID
}

// StockLedger is the only writer of products.stock_quantity. Every call
// either changes the quantity and appends one movement row, or changes
// nothing.
type StockLedger interface {
	// ReserveTx decrements stock inside the caller's transaction, failing with
	// *InsufficientStockError when fewer than qty units are on hand.
	ReserveTx(tx *gorm.DB, productID uuid.UUID, qty int, ref MovementRef) (*model.Product, error)
	// ReleaseTx returns qty units to stock inside the caller's transaction.
	ReleaseTx(tx *gorm.DB, productID uuid.UUID, qty int, ref MovementRef) (*model.Product, error)

	Reserve(ctx context.Context, productID uuid.UUID, qty int, ref MovementRef) (*model.Product, error)
	Release(ctx context.Context, productID uuid.UUID, qty int, ref MovementRef) (*model.Product, error)
	Available(ctx context.Context, productID uuid.UUID) (int, error)
}

type stockLedger struct {
	products  repository.ProductRepository
	movements repository.StockMovementRepository
}

func NewStockLedger(products repository.ProductRepository, movements repository.StockMovementRepository) StockLedger {
	return &stockLedger{products: products, movements: movements}
}

func (l *stockLedger) ReserveTx(tx *gorm.DB, productID uuid.UUID, qty int, ref MovementRef) (*model.Product, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	p, err := l.products.FindByIDForUpdateTx(tx, productID)
	if err != nil {
		return nil, notFound(err, KindProduct, productID)
	}
	insufficient := &InsufficientStockError{
		ProductID:   p.ID,
		ProductName: p.Name,
		Requested:   qty,
		Available:   p.StockQuantity,
	}
	if p.StockQuantity < qty {
		return nil, insufficient
	}

	// The guarded UPDATE covers databases where the row lock above is a no-op.
	ok, err := l.products.DecrementStockTx(tx, productID, qty)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, insufficient
	}

	before := p.StockQuantity
	p.StockQuantity -= qty
	if err := l.record(tx, p.ID, -qty, before, p.StockQuantity, ref); err != nil {
		return nil, err
	}
	return p, nil
}

func (l *stockLedger) ReleaseTx(tx *gorm.DB, productID uuid.UUID, qty int, ref MovementRef) (*model.Product, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	p, err := l.products.FindByIDForUpdateTx(tx, productID)
	if err != nil {
		return nil, notFound(err, KindProduct, productID)
	}
	if err := l.products.IncrementStockTx(tx, productID, qty); err != nil {
		return nil, notFound(err, KindProduct, productID)
	}

	before := p.StockQuantity
	p.StockQuantity += qty
	if err := l.record(tx, p.ID, qty, before, p.StockQuantity, ref); err != nil {
		return nil, err
	}
	return p, nil
}

func (l *stockLedger) Reserve(ctx context.Context, productID uuid.UUID, qty int, ref MovementRef) (*model.Product, error) {
	var p *model.Product
	err := runTx(ctx, l.products.DB(), func(tx *gorm.DB) error {
		var err error
		p, err = l.ReserveTx(tx, productID, qty, ref)
		return err
	})
	return p, err
}

func (l *stockLedger) Release(ctx context.Context, productID uuid.UUID, qty int, ref MovementRef) (*model.Product, error) {
	var p *model.Product
	err := runTx(ctx, l.products.DB(), func(tx *gorm.DB) error {
		var err error
		p, err = l.ReleaseTx(tx, productID, qty, ref)
		return err
	})
	return p, err
}

func (l *stockLedger) Available(ctx context.Context, productID uuid.UUID) (int, error) {
	p, err := l.products.FindByID(ctx, productID)
	if err != nil {
		return 0, notFound(err, KindProduct, productID)
	}
	return p.StockQuantity, nil
}

func (l *stockLedger) record(tx *gorm.DB, productID uuid.UUID, delta, before, after int, ref MovementRef) error {
	return l.movements.CreateTx(tx, &model.StockMovement{
		ProductID:   productID,
		Kind:        ref.Kind,
		Quantity:    delta,
		StockBefore: before,
		StockAfter:  after,
		Reference:   ref.Reference,
		ReferenceID: ref.ReferenceID,
	})
}
