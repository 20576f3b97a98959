package routes

import (
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopctl/app/controllers"
	"github.com/shashiranjanraj/shopctl/app/models"
	"github.com/shashiranjanraj/shopctl/pkg/ctx"
	"github.com/shashiranjanraj/shopctl/pkg/metrics"
	"github.com/shashiranjanraj/shopctl/pkg/middleware"
	"github.com/shashiranjanraj/shopctl/pkg/rbac"
	"github.com/shashiranjanraj/shopctl/pkg/reqid"
	"github.com/shashiranjanraj/shopctl/pkg/router"
)

// RegisterAPI mounts the whole HTTP surface.
func RegisterAPI(r *router.Router, db *gorm.DB) {
	users := controllers.NewUsersController(db)
	clients := controllers.NewClientsController(db)
	products := controllers.NewProductsController(db)
	carts := controllers.NewCartsController(db)
	orders := controllers.NewOrdersController(db)
	reports := controllers.NewReportsController(db)

	r.Use(middleware.Recovery, reqid.Middleware(), middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions()), metrics.Middleware())

	r.Get("/healthz", "healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok")) //nolint:errcheck
	})
	r.Get("/metrics", "metrics", metrics.Handler())

	api := r.Group("/api")

	// Public surface. Login is rate limited per IP.
	api.Post("/users", "users.register", ctx.Wrap(users.Register))
	api.Get("/users/confirm", "users.confirm", ctx.Wrap(users.ConfirmEmail))
	api.Post("/login", "auth.login", ctx.Wrap(users.Login), middleware.RateLimit(10, time.Minute))

	api.Get("/products", "products.index", ctx.Wrap(products.Index))
	api.Get("/products/{id}", "products.show", ctx.Wrap(products.Show))

	// Authenticated surface.
	protected := api.Group("", middleware.AuthMiddleware)

	protected.Get("/users/me", "users.me", ctx.Wrap(users.Me))
	protected.Get("/users/{id}", "users.show", ctx.Wrap(users.Show))
	protected.Put("/users", "users.update", ctx.Wrap(users.Update))

	protected.Post("/clients", "clients.create", ctx.Wrap(clients.Create))
	protected.Get("/clients/me", "clients.me", ctx.Wrap(clients.Me))
	protected.Get("/clients/{id}", "clients.show", ctx.Wrap(clients.Show))
	protected.Put("/clients", "clients.update", ctx.Wrap(clients.Update))

	protected.Post("/carts", "carts.change", ctx.Wrap(carts.ChangeProduct))
	protected.Get("/carts", "carts.show", ctx.Wrap(carts.Show))
	protected.Get("/carts/{clientId}", "carts.show_client", ctx.Wrap(carts.ShowByClient))

	protected.Post("/orders", "orders.create", ctx.Wrap(orders.Create))
	protected.Get("/orders", "orders.index", ctx.Wrap(orders.Index))
	protected.Get("/orders/{id}", "orders.show", ctx.Wrap(orders.Show))
	protected.Post("/orders/{id}/payment", "orders.pay", ctx.Wrap(orders.Pay))

	// Back office.
	admin := protected.Group("/admin", rbac.HasRole(models.UserTypeAdmin))

	admin.Get("/users", "admin.users.index", ctx.Wrap(users.Index))
	admin.Get("/clients", "admin.clients.index", ctx.Wrap(clients.Index))

	admin.Post("/products", "admin.products.create", ctx.Wrap(products.Create))
	admin.Put("/products/{id}", "admin.products.update", ctx.Wrap(products.Update))
	admin.Delete("/products/{id}", "admin.products.delete", ctx.Wrap(products.Delete))
	admin.Post("/products/{id}/images", "admin.products.images.create", ctx.Wrap(products.UploadImage))
	admin.Delete("/products/{id}/images/{imageId}", "admin.products.images.delete", ctx.Wrap(products.DeleteImage))

	admin.Get("/carts", "admin.carts.index", ctx.Wrap(carts.Index))

	admin.Get("/orders", "admin.orders.index", ctx.Wrap(orders.AdminIndex))
	admin.Post("/orders/{id}/payment/confirm", "admin.orders.confirm", ctx.Wrap(orders.ConfirmPayment))
	admin.Patch("/orders/{id}/status", "admin.orders.status", ctx.Wrap(orders.UpdateStatus))
	admin.Delete("/orders/{id}", "admin.orders.delete", ctx.Wrap(orders.Delete))

	admin.Post("/reports", "admin.reports.generate", ctx.Wrap(reports.Generate))
	admin.Get("/reports", "admin.reports.index", ctx.Wrap(reports.Index))
	admin.Get("/reports/{id}/download", "admin.reports.download", ctx.Wrap(reports.Download))
}
