package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"streetbite/internal/model"
	"streetbite/internal/repository"
)

// TokenLookup resolves the push tokens registered for a user.
type TokenLookup interface {
	TokensFor(ctx context.Context, userID int64) ([]string, error)
}

// Notifier delivers one push message to one device token.
type Notifier interface {
	SendToOne(ctx context.Context, token, title, body string, data map[string]string) error
}

// OrderService owns the order lifecycle.
//
// Every mutation is written to the order store first. Notifications follow
// and are best-effort: a push outage never fails or rolls back the order.
type OrderService struct {
	orderRepo  repository.OrderRepository
	userRepo   repository.UserRepository
	vendorRepo repository.VendorRepository
	tokens     TokenLookup
	notifier   Notifier
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	vendorRepo repository.VendorRepository,
	tokens TokenLookup,
	notifier Notifier,
) *OrderService {
	return &OrderService{
		orderRepo:  orderRepo,
		userRepo:   userRepo,
		vendorRepo: vendorRepo,
		tokens:     tokens,
		notifier:   notifier,
	}
}

// CreateOrder persists a new PENDING order and notifies the vendor's owner.
// The persisted order is returned even if the notification fails.
func (s *OrderService) CreateOrder(ctx context.Context, order *model.Order) (*model.Order, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	customer, err := s.userRepo.GetByID(ctx, order.UserID)
	if err != nil {
		return nil, err
	}
	vendor, err := s.vendorRepo.GetByID(ctx, order.VendorID)
	if err != nil {
		return nil, err
	}

	order.Status = model.OrderStatusPending
	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}

	log.Printf("[OrderService] Order %d created: user=%d vendor=%d total=%d",
		order.ID, order.UserID, order.VendorID, order.TotalAmount)

	title, body := NewOrderMessage(customer.DisplayName)
	s.notifyUser(ctx, vendor.OwnerID, title, body, map[string]string{
		"type":    model.NotificationTypeNewOrder,
		"orderId": strconv.FormatInt(order.ID, 10),
	})

	return order, nil
}

// UpdateStatus sets the order's status and notifies the customer.
// Any status may follow any other; the order store is the only gate.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, status string) (*model.Order, error) {
	newStatus, err := model.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.UpdateStatus(ctx, orderID, newStatus)
	if err != nil {
		return nil, err
	}

	if order.Status.IsTerminal() {
		log.Printf("[OrderService] Order %d closed as %s", order.ID, order.Status)
	} else {
		log.Printf("[OrderService] Order %d status -> %s", order.ID, order.Status)
	}

	title, body := OrderUpdateMessage(order.Status)
	s.notifyUser(ctx, order.UserID, title, body, map[string]string{
		"type":    model.NotificationTypeOrderUpdate,
		"orderId": strconv.FormatInt(order.ID, 10),
		"status":  string(order.Status),
	})

	return order, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	return s.orderRepo.GetByID(ctx, orderID)
}

func (s *OrderService) ListByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

func (s *OrderService) ListByVendor(ctx context.Context, vendorID int64) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

// notifyUser sends one message to each of the user's devices and waits for
// all of them. Failures are logged here and go no further.
func (s *OrderService) notifyUser(ctx context.Context, userID int64, title, body string, data map[string]string) {
	// Sends outlive a disconnected client
	ctx = context.WithoutCancel(ctx)

	tokens, err := s.tokens.TokensFor(ctx, userID)
	if err != nil {
		log.Printf("[OrderService] Failed to get device tokens for user %d: %v", userID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	data["notification_id"] = uuid.NewString()

	var wg sync.WaitGroup
	for _, token := range tokens {
		wg.Add(1)
		go func(token string) {
			defer wg.Done()
			if err := s.sendSafely(ctx, token, title, body, data); err != nil {
				log.Printf("[OrderService] Notify user %d token %s: %v", userID, model.ShortToken(token), err)
			}
		}(token)
	}
	wg.Wait()
}

// sendSafely turns a panicking notifier into an error so sibling tokens
// still get their message.
func (s *OrderService) sendSafely(ctx context.Context, token, title, body string, data map[string]string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notifier panic: %v", r)
		}
	}()
	return s.notifier.SendToOne(ctx, token, title, body, data)
}
