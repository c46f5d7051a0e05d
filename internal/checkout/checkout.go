package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"shophub-api/internal/cart"
	"shophub-api/internal/models"
	"shophub-api/pkg/pricing"
	"shophub-api/pkg/utils"
)

// DefaultProcessingDelay simulates the payment round trip before an order is
// confirmed.
const DefaultProcessingDelay = 2500 * time.Millisecond

// ErrEmptyCart declines checkout when there is nothing to order.
var ErrEmptyCart = errors.New("checkout: cart is empty")

// Address is the shipping form. Validation failures are local and
// per-field, never fatal.
type Address struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Street   string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	PINCode  string `json:"pinCode"`
}

// Validate returns a field -> message map; an empty map means the address
// passed.
func (a Address) Validate() map[string]string {
	errs := make(map[string]string)

	if len(strings.TrimSpace(a.FullName)) < 2 {
		errs["fullName"] = "Full name must be at least 2 characters"
	}
	if !utils.ValidateEmail(a.Email) {
		errs["email"] = "Please enter a valid email address"
	}
	if !utils.ValidatePhone(a.Phone) {
		errs["phone"] = "Please enter a valid 10-digit mobile number"
	}
	if len(strings.TrimSpace(a.Street)) < 10 {
		errs["address"] = "Address must be at least 10 characters"
	}
	if strings.TrimSpace(a.City) == "" {
		errs["city"] = "City is required"
	}
	if strings.TrimSpace(a.State) == "" {
		errs["state"] = "State is required"
	}
	if !utils.ValidatePINCode(a.PINCode) {
		errs["pinCode"] = "PIN code must be 6 digits (first digit cannot be 0)"
	}
	return errs
}

// ValidationError carries the per-field messages back to the caller.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("checkout: %d invalid fields", len(e.Fields))
}

// Order is the confirmation receipt returned once an order is placed.
type Order struct {
	ID       string            `json:"id"`
	Number   string            `json:"orderNumber"`
	Address  Address           `json:"address"`
	Lines    []models.CartLine `json:"items"`
	Totals   pricing.Totals    `json:"totals"`
	PlacedAt time.Time         `json:"placedAt"`
}

// Service walks a cart through checkout: address validation, totals, the
// simulated processing delay, then clearing the cart.
type Service struct {
	cart   *cart.Store
	engine pricing.Engine
	delay  time.Duration
	now    func() time.Time
}

func NewService(cartStore *cart.Store, engine pricing.Engine, delay time.Duration) *Service {
	if delay < 0 {
		delay = DefaultProcessingDelay
	}
	return &Service{cart: cartStore, engine: engine, delay: delay, now: time.Now}
}

// PlaceOrder validates the address, derives totals from the cart as it
// stands, waits out the processing delay, then clears the cart and returns
// the receipt. The totals are computed before the clear.
func (s *Service) PlaceOrder(ctx context.Context, addr Address) (*Order, error) {
	if fieldErrs := addr.Validate(); len(fieldErrs) > 0 {
		return nil, &ValidationError{Fields: fieldErrs}
	}

	lines := s.cart.Lines()
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	totals := s.engine.CartTotals(lines).Rounded()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	placedAt := s.now()
	order := &Order{
		ID:       uuid.NewString(),
		Number:   utils.OrderNumber(placedAt),
		Address:  addr,
		Lines:    lines,
		Totals:   totals,
		PlacedAt: placedAt,
	}

	s.cart.Clear()
	return order, nil
}
