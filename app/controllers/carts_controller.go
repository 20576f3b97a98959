package controllers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopctl/app/repositories"
	"github.com/shashiranjanraj/shopctl/app/services"
	"github.com/shashiranjanraj/shopctl/pkg/ctx"
)

type CartsController struct {
	carts   *services.CartsService
	clients *services.ClientsService
}

func NewCartsController(db *gorm.DB) *CartsController {
	return &CartsController{
		carts:   services.NewCartsService(db),
		clients: services.NewClientsService(db),
	}
}

// ChangeProduct applies a signed quantity delta to the caller's own cart.
// The client id always comes from the authenticated user, never the body.
func (cc *CartsController) ChangeProduct(c *ctx.Context) {
	var in services.ChangeProductInput
	if !c.BindJSON(&in) {
		return
	}

	client, err := cc.clients.Resolve(c.Context(), identity(c).UserID)
	if err != nil {
		c.Fail(err)
		return
	}
	in.ClientID = client.ID

	change, err := cc.carts.ChangeProduct(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusOK, change.Message, change.Item)
}

func (cc *CartsController) Show(c *ctx.Context) {
	client, err := cc.clients.Resolve(c.Context(), identity(c).UserID)
	if err != nil {
		c.Fail(err)
		return
	}

	cart, err := cc.carts.GetCart(c.Context(), client.ID)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(cart)
}

// ShowByClient reads another client's cart by id. Ownership is enforced the
// same way as client profiles: admins see any cart, everyone else only
// their own.
func (cc *CartsController) ShowByClient(c *ctx.Context) {
	id, ok := paramUint(c, "clientId")
	if !ok {
		return
	}

	client, err := cc.clients.GetByID(c.Context(), id, identity(c))
	if err != nil {
		c.Fail(err)
		return
	}

	cart, err := cc.carts.GetCart(c.Context(), client.ID)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(cart)
}

func (cc *CartsController) Index(c *ctx.Context) {
	page, limit := pageParams(c)
	filter := repositories.CartFilter{
		MinDate:     queryTime(c, "min_date"),
		MaxDate:     queryTime(c, "max_date"),
		MinPrice:    queryFloat(c, "min_price"),
		MaxPrice:    queryFloat(c, "max_price"),
		ProductName: c.Query("product_name"),
		Page:        page,
		Limit:       limit,
	}

	items, pagination, err := cc.carts.GetAll(c.Context(), filter)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"items": items, "pagination": pagination})
}
