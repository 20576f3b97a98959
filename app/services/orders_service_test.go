package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/shopctl/app/models"
	"github.com/shashiranjanraj/shopctl/app/services"
	"github.com/shashiranjanraj/shopctl/pkg/apperr"
)

func fillCart(t *testing.T, db *gorm.DB, client *models.Client, product *models.Product, qty int) {
	t.Helper()

	_, err := services.NewCartsService(db).ChangeProduct(context.Background(), services.ChangeProductInput{
		ClientID: client.ID, ProductID: product.ID, Quantity: qty,
	})
	require.NoError(t, err)
}

func TestCreateOrderSnapshotsCartAndClearsIt(t *testing.T) {
	db := setupDB(t)
	client := seedClient(t, db)
	mug := seedProduct(t, db, "Mug", 12.50, 10, true)
	kettle := seedProduct(t, db, "Kettle", 54.00, 5, true)
	fillCart(t, db, client, mug, 2)
	fillCart(t, db, client, kettle, 1)

	svc := services.NewOrdersService(db)
	order, err := svc.Create(context.Background(), services.Identity{UserID: client.UserID})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusReceived, order.Status)
	require.Len(t, order.Items, 2)
	assert.True(t, order.Total.Equal(decimal.NewFromFloat(79.00)), "total was %s", order.Total)

	// Cart is cleared in the same transaction.
	var lines int64
	db.Model(&models.CartItem{}).Where("client_id = ?", client.ID).Count(&lines)
	assert.Zero(t, lines)

	// No stock is consumed by an unpaid order.
	var fresh models.Product
	require.NoError(t, db.First(&fresh, mug.ID).Error)
	assert.Equal(t, 10, fresh.Stock)
}

func TestCreateOrderSecondCheckoutFindsClearedCart(t *testing.T) {
	db := setupDB(t)
	client := seedClient(t, db)
	mug := seedProduct(t, db, "Mug", 12.50, 10, true)
	fillCart(t, db, client, mug, 2)

	svc := services.NewOrdersService(db)
	_, err := svc.Create(context.Background(), services.Identity{UserID: client.UserID})
	require.NoError(t, err)

	// The cart lines are read and cleared inside the creation transaction, so
	// a checkout racing the first one lands on the cleared cart instead of
	// turning the same lines into a second order.
	_, err = svc.Create(context.Background(), services.Identity{UserID: client.UserID})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.EqualError(t, err, "Shopping cart is empty")

	var orders int64
	db.Model(&models.Order{}).Count(&orders)
	assert.EqualValues(t, 1, orders)
}

func TestCreateOrderWithoutClientProfile(t *testing.T) {
	db := setupDB(t)

	_, err := services.NewOrdersService(db).Create(context.Background(), services.Identity{UserID: 42})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.EqualError(t, err, "Client not found")
}

func TestCreateOrderConflictsWhenStockDroppedBelowCart(t *testing.T) {
	db := setupDB(t)
	client := seedClient(t, db)
	mug := seedProduct(t, db, "Mug", 12.50, 10, true)
	fillCart(t, db, client, mug, 4)

	// Stock drops after the cart was built.
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", mug.ID).Update("stock", 1).Error)

	_, err := services.NewOrdersService(db).Create(context.Background(), services.Identity{UserID: client.UserID})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))

	// Nothing was persisted and the cart survives.
	var orders, lines int64
	db.Model(&models.Order{}).Count(&orders)
	db.Model(&models.CartItem{}).Where("client_id = ?", client.ID).Count(&lines)
	assert.Zero(t, orders)
	assert.EqualValues(t, 1, lines)
}

func TestPaymentDoneCommitsStockAndAdvancesStatus(t *testing.T) {
	db := setupDB(t)
	client := seedClient(t, db)
	mug := seedProduct(t, db, "Mug", 12.50, 10, true)
	fillCart(t, db, client, mug, 3)

	svc := services.NewOrdersService(db)
	order, err := svc.Create(context.Background(), services.Identity{UserID: client.UserID})
	require.NoError(t, err)

	paid, err := svc.PaymentDone(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusInPreparation, paid.Status)

	var fresh models.Product
	require.NoError(t, db.First(&fresh, mug.ID).Error)
	assert.Equal(t, 7, fresh.Stock)
}

func TestPaymentDoneAggregatesAllItemIssues(t *testing.T) {
	db := setupDB(t)
	client := seedClient(t, db)
	mug := seedProduct(t, db, "Mug", 12.50, 10, true)
	kettle := seedProduct(t, db, "Kettle", 54.00, 5, true)
	grinder := seedProduct(t, db, "Grinder", 89.90, 5, true)
	fillCart(t, db, client, mug, 2)
	fillCart(t, db, client, kettle, 2)
	fillCart(t, db, client, grinder, 2)

	svc := services.NewOrdersService(db)
	order, err := svc.Create(context.Background(), services.Identity{UserID: client.UserID})
	require.NoError(t, err)

	// Two of the three items go bad between creation and payment.
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", kettle.ID).Update("status", false).Error)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", grinder.ID).Update("stock", 1).Error)

	_, err = svc.PaymentDone(context.Background(), order.ID)
	require.Error(t, err)

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperr.KindConflict, appErr.Kind)

	issues, ok := appErr.Details.([]services.PaymentIssue)
	require.True(t, ok)
	require.Len(t, issues, 2)

	byProduct := map[uint]services.PaymentIssue{}
	for _, issue := range issues {
		byProduct[issue.ProductID] = issue
	}
	assert.Equal(t, "unavailable", byProduct[kettle.ID].Reason)
	assert.Equal(t, "insufficient_stock", byProduct[grinder.ID].Reason)
	assert.Equal(t, 1, byProduct[grinder.ID].Available)
	assert.Equal(t, 2, byProduct[grinder.ID].Requested)

	// No partial decrement: the valid item keeps its stock and the order
	// stays unpaid.
	var freshMug models.Product
	require.NoError(t, db.First(&freshMug, mug.ID).Error)
	assert.Equal(t, 10, freshMug.Stock)

	var freshOrder models.Order
	require.NoError(t, db.First(&freshOrder, order.ID).Error)
	assert.Equal(t, models.OrderStatusReceived, freshOrder.Status)
}

func TestPaymentDoneRejectsAlreadyPaidOrder(t *testing.T) {
	db := setupDB(t)
	client := seedClient(t, db)
	mug := seedProduct(t, db, "Mug", 12.50, 10, true)
	fillCart(t, db, client, mug, 1)

	svc := services.NewOrdersService(db)
	order, err := svc.Create(context.Background(), services.Identity{UserID: client.UserID})
	require.NoError(t, err)

	_, err = svc.PaymentDone(context.Background(), order.ID)
	require.NoError(t, err)

	_, err = svc.PaymentDone(context.Background(), order.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
}

func TestUpdateStatusRejectsSameStatus(t *testing.T) {
	db := setupDB(t)
	client := seedClient(t, db)
	mug := seedProduct(t, db, "Mug", 12.50, 10, true)
	fillCart(t, db, client, mug, 1)

	svc := services.NewOrdersService(db)
	order, err := svc.Create(context.Background(), services.Identity{UserID: client.UserID})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), order.ID, models.OrderStatusReceived)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
	assert.EqualError(t, err, "Order already has this status")

	updated, err := svc.UpdateStatus(context.Background(), order.ID, models.OrderStatusDispatched)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDispatched, updated.Status)
}

func TestExcludeDeletesWithoutRestock(t *testing.T) {
	db := setupDB(t)
	client := seedClient(t, db)
	mug := seedProduct(t, db, "Mug", 12.50, 10, true)
	fillCart(t, db, client, mug, 3)

	svc := services.NewOrdersService(db)
	order, err := svc.Create(context.Background(), services.Identity{UserID: client.UserID})
	require.NoError(t, err)
	_, err = svc.PaymentDone(context.Background(), order.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Exclude(context.Background(), order.ID))

	var orders, items int64
	db.Model(&models.Order{}).Count(&orders)
	db.Model(&models.OrderItem{}).Count(&items)
	assert.Zero(t, orders)
	assert.Zero(t, items)

	// Consumed stock stays consumed.
	var fresh models.Product
	require.NoError(t, db.First(&fresh, mug.ID).Error)
	assert.Equal(t, 7, fresh.Stock)
}

func TestGetByIDEnforcesOwnership(t *testing.T) {
	db := setupDB(t)
	client := seedClient(t, db)
	mug := seedProduct(t, db, "Mug", 12.50, 10, true)
	fillCart(t, db, client, mug, 1)

	svc := services.NewOrdersService(db)
	order, err := svc.Create(context.Background(), services.Identity{UserID: client.UserID})
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), order.ID, services.Identity{UserID: client.UserID + 100})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthorized))
	assert.EqualError(t, err, "You are not allowed to access orders from other users")

	got, err := svc.GetByID(context.Background(), order.ID, services.Identity{UserID: client.UserID + 100, Type: models.UserTypeAdmin})
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
}
