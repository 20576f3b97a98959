package controllers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopctl/app/models"
	"github.com/shashiranjanraj/shopctl/app/repositories"
	"github.com/shashiranjanraj/shopctl/app/services"
	"github.com/shashiranjanraj/shopctl/pkg/ctx"
)

type OrdersController struct {
	orders  *services.OrdersService
	clients *services.ClientsService
}

func NewOrdersController(db *gorm.DB) *OrdersController {
	return &OrdersController{
		orders:  services.NewOrdersService(db),
		clients: services.NewClientsService(db),
	}
}

// Create converts the caller's cart into an order.
func (oc *OrdersController) Create(c *ctx.Context) {
	order, err := oc.orders.Create(c.Context(), identity(c))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusCreated, "Order created", order)
}

// Index lists the caller's own orders.
func (oc *OrdersController) Index(c *ctx.Context) {
	client, err := oc.clients.Resolve(c.Context(), identity(c).UserID)
	if err != nil {
		c.Fail(err)
		return
	}

	orders, err := oc.orders.GetByClientID(c.Context(), client.ID)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(orders)
}

func (oc *OrdersController) Show(c *ctx.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		c.NotFound("Order not found")
		return
	}

	order, err := oc.orders.GetByID(c.Context(), id, identity(c))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(order)
}

// Pay runs the simulated payment for one of the caller's orders.
func (oc *OrdersController) Pay(c *ctx.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		c.NotFound("Order not found")
		return
	}

	// Ownership check before touching the payment path.
	if _, err := oc.orders.GetByID(c.Context(), id, identity(c)); err != nil {
		c.Fail(err)
		return
	}

	result, err := oc.orders.SimulatePayment(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}

	if !result.Approved {
		c.Message(http.StatusOK, "Payment declined", result)
		return
	}
	c.Message(http.StatusOK, "Payment approved", result)
}

// ConfirmPayment is the admin/gateway-callback path that finalises a payment
// without the simulation step.
func (oc *OrdersController) ConfirmPayment(c *ctx.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		c.NotFound("Order not found")
		return
	}

	order, err := oc.orders.PaymentDone(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusOK, "Payment confirmed", order)
}

// AdminIndex is the back-office order listing with typed filters.
func (oc *OrdersController) AdminIndex(c *ctx.Context) {
	page, limit := pageParams(c)
	filter := repositories.OrderFilter{
		Status:   models.OrderStatus(c.Query("status")),
		MinTotal: queryFloat(c, "min_total"),
		MaxTotal: queryFloat(c, "max_total"),
		MinDate:  queryTime(c, "min_date"),
		MaxDate:  queryTime(c, "max_date"),
		Page:     page,
		Limit:    limit,
	}

	orders, pagination, err := oc.orders.GetAll(c.Context(), filter)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"items": orders, "pagination": pagination})
}

// UpdateStatus is the admin transition between fulfilment states.
func (oc *OrdersController) UpdateStatus(c *ctx.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		c.NotFound("Order not found")
		return
	}

	var in struct {
		Status models.OrderStatus `json:"status" validate:"required"`
	}
	if !c.BindJSON(&in) {
		return
	}

	order, err := oc.orders.UpdateStatus(c.Context(), id, in.Status)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusOK, "Order status updated", order)
}

// Delete removes an order outright.
func (oc *OrdersController) Delete(c *ctx.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		c.NotFound("Order not found")
		return
	}

	if err := oc.orders.Exclude(c.Context(), id); err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusOK, "Order deleted", nil)
}
