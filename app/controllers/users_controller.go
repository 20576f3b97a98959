package controllers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopctl/app/services"
	"github.com/shashiranjanraj/shopctl/pkg/ctx"
)

type UsersController struct {
	users *services.UsersService
}

func NewUsersController(db *gorm.DB) *UsersController {
	return &UsersController{users: services.NewUsersService(db)}
}

func (u *UsersController) Register(c *ctx.Context) {
	var in services.RegisterInput
	if !c.BindJSON(&in) {
		return
	}

	user, err := u.users.Register(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusCreated, "User registered. Check your inbox to confirm the account.", user)
}

func (u *UsersController) ConfirmEmail(c *ctx.Context) {
	token := c.Query("token")
	if token == "" {
		c.Error(http.StatusBadRequest, "Missing confirmation token")
		return
	}

	if err := u.users.ConfirmEmail(c.Context(), token); err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusOK, "Email confirmed", nil)
}

func (u *UsersController) Login(c *ctx.Context) {
	var in services.LoginInput
	if !c.BindJSON(&in) {
		return
	}

	tokens, err := u.users.Login(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(tokens)
}

func (u *UsersController) Show(c *ctx.Context) {
	id, ok := paramUint(c, "id")
	if !ok {
		c.NotFound("User not found")
		return
	}

	user, err := u.users.GetByID(c.Context(), id, identity(c))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(user)
}

func (u *UsersController) Me(c *ctx.Context) {
	ident := identity(c)
	user, err := u.users.GetByID(c.Context(), ident.UserID, ident)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(user)
}

func (u *UsersController) Update(c *ctx.Context) {
	var in services.UpdateUserInput
	if !c.BindJSON(&in) {
		return
	}

	user, err := u.users.Update(c.Context(), identity(c), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Message(http.StatusOK, "User updated", user)
}

func (u *UsersController) Index(c *ctx.Context) {
	page, limit := pageParams(c)
	users, pagination, err := u.users.GetAll(c.Context(), page, limit)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"items": users, "pagination": pagination})
}
