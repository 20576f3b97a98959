package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopctl/app/models"
	"github.com/shashiranjanraj/shopctl/app/repositories"
	"github.com/shashiranjanraj/shopctl/config"
	"github.com/shashiranjanraj/shopctl/pkg/apperr"
	"github.com/shashiranjanraj/shopctl/pkg/event"
	"github.com/shashiranjanraj/shopctl/pkg/http"
	"github.com/shashiranjanraj/shopctl/pkg/logger"
	"github.com/shashiranjanraj/shopctl/pkg/orm"
)

// Events fired by the order engine. Listeners are registered at boot.
const (
	EventOrderCreated = "order.created"
	EventOrderPaid    = "order.paid"
)

// PaymentIssue is one offending item in an aggregated payment conflict.
type PaymentIssue struct {
	ProductID uint   `json:"product_id"`
	Reason    string `json:"reason"` // not_found | unavailable | insufficient_stock
	Available int    `json:"available,omitempty"`
	Requested int    `json:"requested,omitempty"`
}

// PaymentResult is the outcome of a simulated gateway call.
type PaymentResult struct {
	OrderID       uint   `json:"order_id"`
	TransactionID string `json:"transaction_id"`
	Approved      bool   `json:"approved"`
}

// OrdersService converts carts into orders and owns the two-phase stock
// protocol: an optimistic full-cart check at creation, and the authoritative
// locked decrement at payment completion.
type OrdersService struct {
	db       *gorm.DB
	orders   *repositories.OrderRepository
	products *repositories.ProductRepository
	clients  *repositories.ClientRepository
	carts    *repositories.CartRepository
}

func NewOrdersService(db *gorm.DB) *OrdersService {
	return &OrdersService{
		db:       db,
		orders:   repositories.NewOrderRepository(db),
		products: repositories.NewProductRepository(db),
		clients:  repositories.NewClientRepository(db),
		carts:    repositories.NewCartRepository(db),
	}
}

// Create converts the caller's cart into an order.
//
// The cart lines are read under row locks inside the same transaction that
// validates the products, snapshots the items and clears the cart, so two
// concurrent checkouts of the same cart serialise: the second one finds the
// cart already cleared and fails NotFound instead of duplicating the order.
// Stock is NOT decremented here: an unpaid order consumes no inventory.
func (s *OrdersService) Create(ctx context.Context, ident Identity) (*models.Order, error) {
	client, err := s.clients.FindByUserID(ident.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Client not found")
		}
		return nil, err
	}

	var order *models.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lines, err := s.carts.WithTx(tx).ListLinesForUpdate(client.ID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return apperr.NotFound("Shopping cart is empty")
		}

		products := s.products.WithTx(tx)
		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(lines))

		// Full-cart validation: the first violation found is the one
		// reported, and nothing is persisted. Prices are snapshotted from
		// the locked product rows.
		for _, line := range lines {
			if line.Quantity <= 0 {
				return apperr.NotFound("Shopping cart is empty")
			}

			product, err := products.FindByIDForUpdate(line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperr.Conflict(fmt.Sprintf("Product #%d is unavailable", line.ProductID))
				}
				return err
			}
			if !product.Status {
				return apperr.Conflict(fmt.Sprintf("Product %q is unavailable", product.Name))
			}
			if product.Stock < line.Quantity {
				return apperr.Conflict(fmt.Sprintf(
					"Product %q has insufficient stock: %d available, %d requested",
					product.Name, product.Stock, line.Quantity))
			}

			subtotal := product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			items = append(items, models.OrderItem{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     product.Price,
				Subtotal:  subtotal,
			})
			total = total.Add(subtotal)
		}

		o := &models.Order{
			ClientID: client.ID,
			Total:    total,
			Status:   models.OrderStatusReceived,
			Items:    items,
		}
		if err := s.orders.WithTx(tx).Create(o); err != nil {
			return err
		}
		if err := s.carts.WithTx(tx).ClearCart(client.ID); err != nil {
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	event.FireAsync(EventOrderCreated, order)
	return order, nil
}

// SimulatePayment stands in for an external payment gateway. When a gateway
// URL is configured the charge is posted there; otherwise the outcome is a
// probability-weighted coin flip. A successful charge completes the payment
// via PaymentDone in the same call.
func (s *OrdersService) SimulatePayment(ctx context.Context, orderID uint) (*PaymentResult, error) {
	order, err := s.orders.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Order not found")
		}
		return nil, err
	}
	if order.Status != models.OrderStatusReceived {
		return nil, apperr.BadRequest("Order has already been paid or advanced")
	}

	result := &PaymentResult{OrderID: order.ID, TransactionID: uuid.NewString()}

	if url := config.PaymentGatewayURL(); url != "" {
		resp, err := http.Post(url).
			WithContext(ctx).
			Body(map[string]interface{}{
				"order_id":       order.ID,
				"transaction_id": result.TransactionID,
				"amount":         order.Total,
			}).
			Timeout(10 * time.Second).
			Send()
		if err != nil {
			return nil, fmt.Errorf("payment gateway: %w", err)
		}
		var body struct {
			Approved bool `json:"approved"`
		}
		if err := resp.JSON(&body); err != nil {
			return nil, fmt.Errorf("payment gateway: decode response: %w", err)
		}
		result.Approved = body.Approved
	} else {
		result.Approved = rand.Float64() < config.PaymentApprovalRate()
	}

	if !result.Approved {
		logger.WithCtx(ctx).Info("payment declined", "order_id", order.ID, "transaction_id", result.TransactionID)
		return result, nil
	}

	if _, err := s.PaymentDone(ctx, orderID); err != nil {
		return nil, err
	}
	return result, nil
}

// PaymentDone finalises a paid order: every item is re-validated under a
// product row lock, stock is decremented by conditional update, and the
// status moves to IN_PREPARATION — all in one transaction, so a failed
// decrement rolls back every other decrement and the transition.
//
// Unlike order creation, validation here aggregates ALL offending items into
// one Conflict payload instead of failing on the first.
func (s *OrdersService) PaymentDone(ctx context.Context, orderID uint) (*models.Order, error) {
	var updated *models.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)
		order, err := orders.FindByIDForUpdate(orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Order not found")
			}
			return err
		}
		if order.Status != models.OrderStatusReceived {
			return apperr.BadRequest("Order has already been paid or advanced")
		}

		products := s.products.WithTx(tx)

		var issues []PaymentIssue
		for _, item := range order.Items {
			product, err := products.FindByIDForUpdate(item.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					issues = append(issues, PaymentIssue{ProductID: item.ProductID, Reason: "not_found"})
					continue
				}
				return err
			}
			if !product.Status {
				issues = append(issues, PaymentIssue{ProductID: item.ProductID, Reason: "unavailable"})
				continue
			}
			if product.Stock < item.Quantity {
				issues = append(issues, PaymentIssue{
					ProductID: item.ProductID,
					Reason:    "insufficient_stock",
					Available: product.Stock,
					Requested: item.Quantity,
				})
			}
		}
		if len(issues) > 0 {
			return apperr.ConflictWith("Order cannot be paid", issues)
		}

		for _, item := range order.Items {
			affected, err := products.DecrementStock(item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				// The locks above make this unreachable, but the conditional
				// update is the invariant of last resort: never go negative.
				return apperr.ConflictWith("Order cannot be paid", []PaymentIssue{{
					ProductID: item.ProductID,
					Reason:    "insufficient_stock",
					Requested: item.Quantity,
				}})
			}
		}

		if err := orders.UpdateStatus(order.ID, models.OrderStatusInPreparation); err != nil {
			return err
		}
		order.Status = models.OrderStatusInPreparation
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	event.FireAsync(EventOrderPaid, updated)
	return updated, nil
}

// UpdateStatus is the admin-only direct transition, bypassing the payment
// flow. The read-compare-update runs under the order's row lock so two
// concurrent transitions serialise; setting the status an order already has
// is rejected.
func (s *OrdersService) UpdateStatus(ctx context.Context, orderID uint, status models.OrderStatus) (*models.Order, error) {
	if !status.Valid() {
		return nil, apperr.BadRequest("Invalid order status")
	}

	var updated *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)
		order, err := orders.FindByIDForUpdate(orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Order not found")
			}
			return err
		}
		if order.Status == status {
			return apperr.BadRequest("Order already has this status")
		}

		if err := orders.UpdateStatus(order.ID, status); err != nil {
			return err
		}
		order.Status = status
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Exclude deletes an order and its items. Stock consumed by a paid order is
// NOT returned: deletion is an administrative removal, not a cancellation.
func (s *OrdersService) Exclude(ctx context.Context, orderID uint) error {
	if _, err := s.orders.FindByID(orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Order not found")
		}
		return err
	}
	return s.orders.DeleteByID(orderID)
}

// GetByID returns one order. Non-admin callers may only read their own.
func (s *OrdersService) GetByID(ctx context.Context, id uint, ident Identity) (*models.Order, error) {
	order, err := s.orders.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Order not found")
		}
		return nil, err
	}
	if !ident.IsAdmin() && (order.Client == nil || order.Client.UserID != ident.UserID) {
		return nil, apperr.Unauthorized("You are not allowed to access orders from other users")
	}
	order.Client = nil
	return order, nil
}

// GetByClientID returns every order owned by a client, newest first.
func (s *OrdersService) GetByClientID(ctx context.Context, clientID uint) ([]models.Order, error) {
	return s.orders.FindByClientID(clientID)
}

// GetAll is the admin listing with typed filters.
func (s *OrdersService) GetAll(ctx context.Context, filter repositories.OrderFilter) ([]models.Order, orm.Pagination, error) {
	return s.orders.WithTx(s.db.WithContext(ctx)).FindMany(filter)
}
