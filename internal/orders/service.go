package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"fitmyear-backend/internal/models"
)

const deliveryLeadTime = 14 * 24 * time.Hour

var (
	ErrValidation   = errors.New("invalid order input")
	ErrInvalidState = errors.New("order state does not allow this operation")
)

// Store is the slice of the database the order workflow needs.
type Store interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]models.Order, error)
	ListAllOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrder(ctx context.Context, order *models.Order) error
}

// Service owns the order lifecycle: create pending, confirm with address,
// cancel from an early state. Fulfillment advances orders past confirmed;
// the service only validates those transitions.
type Service struct {
	store Store
	log   *logrus.Logger
}

func NewService(store Store, log *logrus.Logger) *Service {
	return &Service{store: store, log: log}
}

// Create places a new pending order. Price is unit price times quantity,
// fixed here and never recomputed.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, jobID string, variant models.EarPieceVariant, quantity int) (*models.Order, error) {
	if quantity < 1 {
		return nil, fmt.Errorf("%w: quantity must be at least 1", ErrValidation)
	}
	if jobID == "" {
		return nil, fmt.Errorf("%w: reconstruction job id is required", ErrValidation)
	}
	unit, ok := variant.UnitPrice()
	if !ok {
		return nil, fmt.Errorf("%w: unknown variant %q", ErrValidation, variant)
	}

	order := &models.Order{
		ID:                uuid.New(),
		UserID:            userID,
		ReconstructionJob: jobID,
		Variant:           variant,
		Quantity:          quantity,
		Price:             unit.Mul(decimal.NewFromInt(int64(quantity))),
		Status:            models.OrderPending,
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"order":   order.ID,
		"user":    userID,
		"variant": variant,
		"price":   order.Price.String(),
	}).Info("order created")

	return order, nil
}

// Confirm attaches the shipping address, moves the order to confirmed, and
// sets the delivery estimate to 14 days out. Every address field is
// required.
func (s *Service) Confirm(ctx context.Context, orderID uuid.UUID, address models.ShippingAddress) (*models.Order, error) {
	if err := validateAddress(address); err != nil {
		return nil, err
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderPending {
		return nil, fmt.Errorf("%w: cannot confirm order in status %q", ErrInvalidState, order.Status)
	}

	order.Status = models.OrderConfirmed
	order.ShippingAddress = &address
	order.EstimatedDelivery = sql.NullTime{Time: time.Now().Add(deliveryLeadTime), Valid: true}

	if err := s.store.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Cancel moves the order to the terminal cancelled state. Only pending and
// confirmed orders may be cancelled.
func (s *Service) Cancel(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !order.Status.Cancellable() {
		return nil, fmt.Errorf("%w: cannot cancel order in status %q", ErrInvalidState, order.Status)
	}

	order.Status = models.OrderCancelled
	if err := s.store.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.log.WithField("order", order.ID).Info("order cancelled")
	return order, nil
}

// Ship records a tracking number and moves a confirmed or manufacturing
// order to shipped. Called on behalf of fulfillment.
func (s *Service) Ship(ctx context.Context, orderID uuid.UUID, trackingNumber string) (*models.Order, error) {
	if strings.TrimSpace(trackingNumber) == "" {
		return nil, fmt.Errorf("%w: tracking number is required", ErrValidation)
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderConfirmed && order.Status != models.OrderManufacturing {
		return nil, fmt.Errorf("%w: cannot ship order in status %q", ErrInvalidState, order.Status)
	}

	order.Status = models.OrderShipped
	order.TrackingNumber = sql.NullString{String: trackingNumber, Valid: true}

	if err := s.store.UpdateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Get returns one order. Pure read.
func (s *Service) Get(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	return s.store.GetOrder(ctx, orderID)
}

// ListForUser returns the user's orders, newest first. Pure read.
func (s *Service) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Order, error) {
	return s.store.ListUserOrders(ctx, userID)
}

// ListAll returns every order. Pure read, admin only.
func (s *Service) ListAll(ctx context.Context) ([]models.Order, error) {
	return s.store.ListAllOrders(ctx)
}

func validateAddress(a models.ShippingAddress) error {
	fields := map[string]string{
		"name":     a.Name,
		"street":   a.Street,
		"city":     a.City,
		"state":    a.State,
		"zip_code": a.ZipCode,
		"country":  a.Country,
	}
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s is required", ErrValidation, name)
		}
	}
	return nil
}
