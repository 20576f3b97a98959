// Package controllers holds the HTTP handlers. Controllers stay thin: bind,
// call the service, map the result. Business rules live in app/services.
package controllers

import (
	"strconv"

	"github.com/shashiranjanraj/shopctl/app/services"
	"github.com/shashiranjanraj/shopctl/pkg/ctx"
	"github.com/shashiranjanraj/shopctl/pkg/middleware"
)

// identity resolves the authenticated caller injected by the auth middleware.
func identity(c *ctx.Context) services.Identity {
	id, _ := middleware.UserIDFromCtx(c.R)
	role, _ := middleware.RoleFromCtx(c.R)
	return services.Identity{UserID: id, Type: role}
}

// paramUint parses a numeric path parameter, returning ok=false on junk.
func paramUint(c *ctx.Context, key string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(key), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(n), true
}

// pageParams reads ?page= and ?limit= with the listing defaults.
func pageParams(c *ctx.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	return page, limit
}
