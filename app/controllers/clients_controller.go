package controllers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopctl/app/services"
	"github.com/shashiranjanraj/shopctl/pkg/ctx"
)

type ClientsController struct {
	clients *services.ClientsService
}

func NewClientsController(db *gorm.DB) *ClientsController {
	return &ClientsController{clients: services.NewClientsService(db)}
}

func (cc *ClientsController) Create(c *ctx.Context) {
	var in services.CreateClientInput
	if !c.BindJSON(&in) {
		return
	}

	client, err := cc.clients.Create(c.Context(), identity(c).UserID, in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusCreated, "Client created", client)
}

func (cc *ClientsController) Me(c *ctx.Context) {
	client, err := cc.clients.Resolve(c.Context(), identity(c).UserID)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(client)
}

func (cc *ClientsController) Show(c *ctx.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		c.NotFound("Client not found")
		return
	}

	client, err := cc.clients.GetByID(c.Context(), id, identity(c))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(client)
}

func (cc *ClientsController) Update(c *ctx.Context) {
	var in services.UpdateClientInput
	if !c.BindJSON(&in) {
		return
	}

	client, err := cc.clients.Update(c.Context(), identity(c).UserID, in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusOK, "Client updated", client)
}

func (cc *ClientsController) Index(c *ctx.Context) {
	page, limit := pageParams(c)
	clients, pagination, err := cc.clients.GetAll(c.Context(), page, limit)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"items": clients, "pagination": pagination})
}
