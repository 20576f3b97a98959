package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopctl/app/models"
	"github.com/shashiranjanraj/shopctl/app/repositories"
	"github.com/shashiranjanraj/shopctl/pkg/apperr"
	"github.com/shashiranjanraj/shopctl/pkg/collection"
	"github.com/shashiranjanraj/shopctl/pkg/orm"
)

// ChangeProductInput is a signed quantity delta for a (client, product)
// pair. A positive quantity adds to the cart, a negative one removes from
// it. ClientID is resolved from the caller, never bound from the body.
type ChangeProductInput struct {
	ClientID  uint `json:"-"`
	ProductID uint `json:"productId" validate:"required"`
	Quantity  int  `json:"quantity"  validate:"required"`
}

// CartChange is the outcome of one reconciliation: created, updated or
// removed, with the surviving line attached when there is one.
type CartChange struct {
	Message string           `json:"message"`
	Item    *models.CartItem `json:"data,omitempty"`
}

// CartLine is one materialised cart line with its price snapshot.
type CartLine struct {
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// Cart is a client's materialised shopping cart.
type Cart struct {
	ClientID uint            `json:"client_id"`
	Items    []CartLine      `json:"cart"`
	Total    decimal.Decimal `json:"total"`
}

// CartsService is the cart reconciliation engine: it merges signed quantity
// deltas into cart lines under stock constraints. It never mutates product
// stock — stock is only read here, and consumed later by the payment path.
type CartsService struct {
	db       *gorm.DB
	carts    *repositories.CartRepository
	products *repositories.ProductRepository
}

func NewCartsService(db *gorm.DB) *CartsService {
	return &CartsService{
		db:       db,
		carts:    repositories.NewCartRepository(db),
		products: repositories.NewProductRepository(db),
	}
}

// ChangeProduct applies a quantity delta to the (client, product) cart line.
//
// The whole read-merge-write runs in one transaction with the product and
// cart-line rows locked, so two concurrent calls for the same pair serialise
// instead of both reading the same prior quantity. A concurrent create for a
// pair with no existing line is caught by the composite unique index.
func (s *CartsService) ChangeProduct(ctx context.Context, in ChangeProductInput) (*CartChange, error) {
	var out CartChange

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product, err := s.products.WithTx(tx).FindByIDForUpdate(in.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("Product not found")
			}
			return err
		}
		if !product.Status {
			return apperr.NotFound("Product is not available")
		}
		// Pre-check against the raw delta, independent of the existing line.
		if product.Stock < in.Quantity {
			return apperr.BadRequest("Product has insufficient stock")
		}

		carts := s.carts.WithTx(tx)
		line, err := carts.FindLineForUpdate(in.ClientID, in.ProductID)
		switch {
		case err == nil:
			newQty := line.Quantity + in.Quantity
			if product.Stock < newQty {
				return apperr.BadRequest("Product has insufficient stock")
			}
			if newQty <= 0 {
				if err := carts.DeleteLine(line.ID); err != nil {
					return err
				}
				out = CartChange{Message: "Product removed from cart"}
				return nil
			}
			if err := carts.UpdateLineQuantity(line.ID, newQty); err != nil {
				return err
			}
			line.Quantity = newQty
			out = CartChange{Message: "Product quantity updated in cart", Item: line}
			return nil

		case errors.Is(err, gorm.ErrRecordNotFound):
			if in.Quantity <= 0 {
				return apperr.BadRequest("Quantity must be greater than zero to add product to cart")
			}
			item := &models.CartItem{
				ClientID:  in.ClientID,
				ProductID: in.ProductID,
				Quantity:  in.Quantity,
			}
			if err := carts.CreateLine(item); err != nil {
				return err
			}
			out = CartChange{Message: "Product added to cart successfully!", Item: item}
			return nil

		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCart materialises a client's cart: current product prices joined in,
// one subtotal per line and the grand total. An empty cart — or a cart
// holding any non-positive line, which should be impossible — reads as
// not found.
func (s *CartsService) GetCart(ctx context.Context, clientID uint) (*Cart, error) {
	rows, err := s.carts.WithTx(s.db.WithContext(ctx)).ListLines(clientID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("Shopping cart is empty")
	}

	for _, row := range rows {
		if row.Quantity <= 0 {
			return nil, apperr.NotFound("Shopping cart is empty")
		}
	}

	cart := &Cart{ClientID: clientID, Total: decimal.Zero}
	cart.Items = collection.Map(rows, func(row repositories.CartLineRow) CartLine {
		return CartLine{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			Price:       row.Price,
			Quantity:    row.Quantity,
			Subtotal:    row.Price.Mul(decimal.NewFromInt(int64(row.Quantity))),
		}
	})
	for _, line := range cart.Items {
		cart.Total = cart.Total.Add(line.Subtotal)
	}
	return cart, nil
}

// GetAll is the admin listing of cart lines across all clients.
func (s *CartsService) GetAll(ctx context.Context, filter repositories.CartFilter) ([]models.CartItem, orm.Pagination, error) {
	return s.carts.WithTx(s.db.WithContext(ctx)).FindMany(filter)
}
