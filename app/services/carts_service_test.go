package services_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/shashiranjanraj/shopctl/app/models"
	"github.com/shashiranjanraj/shopctl/app/services"
	"github.com/shashiranjanraj/shopctl/pkg/apperr"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// An in-memory sqlite database is per-connection, so pin the pool to a
	// single connection: every goroutine sees the same database and
	// transactions serialise on it.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Client{}, &models.Address{},
		&models.Product{}, &models.ProductImage{},
		&models.CartItem{},
		&models.Order{}, &models.OrderItem{},
		&models.Report{},
	))
	return db
}

func seedClient(t *testing.T, db *gorm.DB) *models.Client {
	t.Helper()

	user := &models.User{Username: "maria", Email: "maria@example.com", Password: "x", Type: models.UserTypeUser}
	require.NoError(t, db.Create(user).Error)

	client := &models.Client{UserID: user.ID, Name: "Maria", Phone: "555-0100", CPF: "111.222.333-44"}
	require.NoError(t, db.Create(client).Error)
	return client
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price float64, stock int, status bool) *models.Product {
	t.Helper()

	p := &models.Product{Name: name, Price: decimal.NewFromFloat(price), Stock: stock, Status: status}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestChangeProductAddsNewLine(t *testing.T) {
	db := setupDB(t)
	client := seedClient(t, db)
	product := seedProduct(t, db, "Mug", 12.50, 10, true)
	svc := services.NewCartsService(db)

	change, err := svc.ChangeProduct(context.Background(), services.ChangeProductInput{
		ClientID: client.ID, ProductID: product.ID, Quantity: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, "Product added to cart successfully!", change.Message)
	require.NotNil(t, change.Item)
	assert.Equal(t, 3, change.Item.Quantity)
}

func TestChangeProductMergesDeltaIntoExistingLine(t *testing.T) {
	db := setupDB(t)
	client := seedClient(t, db)
	product := seedProduct(t, db, "Mug", 12.50, 10, true)
	svc := services.NewCartsService(db)

	_, err := svc.ChangeProduct(context.Background(), services.ChangeProductInput{
		ClientID: client.ID, ProductID: product.ID, Quantity: 3,
	})
	require.NoError(t, err)

	change, err := svc.ChangeProduct(context.Background(), services.ChangeProductInput{
		ClientID: client.ID, ProductID: product.ID, Quantity: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "Product quantity updated in cart", change.Message)
	assert.Equal(t, 7, change.Item.Quantity)
}

func TestChangeProductNegativeDeltaRemovesLine(t *testing.T) {
	db := setupDB(t)
	client := seedClient(t, db)
	product := seedProduct(t, db, "Mug", 12.50, 10, true)
	svc := services.NewCartsService(db)

	_, err := svc.ChangeProduct(context.Background(), services.ChangeProductInput{
		ClientID: client.ID, ProductID: product.ID, Quantity: 2,
	})
	require.NoError(t, err)

	change, err := svc.ChangeProduct(context.Background(), services.ChangeProductInput{
		ClientID: client.ID, ProductID: product.ID, Quantity: -2,
	})
	require.NoError(t, err)
	assert.Equal(t, "Product removed from cart", change.Message)
	assert.Nil(t, change.Item)

	var count int64
	db.Model(&models.CartItem{}).Where("client_id = ?", client.ID).Count(&count)
	assert.Zero(t, count)
}

func TestChangeProductRejectsNonPositiveCreate(t *testing.T) {
	db := setupDB(t)
	client := seedClient(t, db)
	product := seedProduct(t, db, "Mug", 12.50, 10, true)
	svc := services.NewCartsService(db)

	_, err := svc.ChangeProduct(context.Background(), services.ChangeProductInput{
		ClientID: client.ID, ProductID: product.ID, Quantity: -1,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
	assert.EqualError(t, err, "Quantity must be greater than zero to add product to cart")
}

func TestChangeProductValidationOrder(t *testing.T) {
	db := setupDB(t)
	client := seedClient(t, db)
	svc := services.NewCartsService(db)

	t.Run("unknown product", func(t *testing.T) {
		_, err := svc.ChangeProduct(context.Background(), services.ChangeProductInput{
			ClientID: client.ID, ProductID: 9999, Quantity: 1,
		})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
		assert.EqualError(t, err, "Product not found")
	})

	t.Run("unavailable product", func(t *testing.T) {
		off := seedProduct(t, db, "Retired", 5, 50, false)
		_, err := svc.ChangeProduct(context.Background(), services.ChangeProductInput{
			ClientID: client.ID, ProductID: off.ID, Quantity: 1,
		})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
		assert.EqualError(t, err, "Product is not available")
	})

	t.Run("raw delta exceeds stock", func(t *testing.T) {
		small := seedProduct(t, db, "Scarce", 5, 2, true)
		_, err := svc.ChangeProduct(context.Background(), services.ChangeProductInput{
			ClientID: client.ID, ProductID: small.ID, Quantity: 3,
		})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
		assert.EqualError(t, err, "Product has insufficient stock")
	})
}

func TestChangeProductMergedQuantityExceedsStock(t *testing.T) {
	db := setupDB(t)
	client := seedClient(t, db)
	product := seedProduct(t, db, "Mug", 12.50, 5, true)
	svc := services.NewCartsService(db)

	_, err := svc.ChangeProduct(context.Background(), services.ChangeProductInput{
		ClientID: client.ID, ProductID: product.ID, Quantity: 3,
	})
	require.NoError(t, err)

	// Delta alone fits the stock, the merged quantity does not.
	_, err = svc.ChangeProduct(context.Background(), services.ChangeProductInput{
		ClientID: client.ID, ProductID: product.ID, Quantity: 3,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindBadRequest))
	assert.EqualError(t, err, "Product has insufficient stock")

	// The line keeps its prior quantity.
	var line models.CartItem
	require.NoError(t, db.Where("client_id = ? AND product_id = ?", client.ID, product.ID).First(&line).Error)
	assert.Equal(t, 3, line.Quantity)
}

func TestChangeProductConcurrentMergesRespectStockCeiling(t *testing.T) {
	db := setupDB(t)
	client := seedClient(t, db)
	product := seedProduct(t, db, "Last one", 99.90, 1, true)
	svc := services.NewCartsService(db)

	// Two merges race toward a stock of one. Whatever the interleaving, the
	// loser must observe the winner's committed line and fail the ceiling
	// check instead of both reading quantity zero.
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.ChangeProduct(context.Background(), services.ChangeProductInput{
				ClientID: client.ID, ProductID: product.ID, Quantity: 1,
			})
			errs <- err
		}()
	}

	var failures []error
	for i := 0; i < 2; i++ {
		if err := <-errs; err != nil {
			failures = append(failures, err)
		}
	}
	require.Len(t, failures, 1)
	assert.True(t, apperr.IsKind(failures[0], apperr.KindBadRequest))
	assert.EqualError(t, failures[0], "Product has insufficient stock")

	var line models.CartItem
	require.NoError(t, db.Where("client_id = ? AND product_id = ?", client.ID, product.ID).First(&line).Error)
	assert.Equal(t, 1, line.Quantity)

	var fresh models.Product
	require.NoError(t, db.First(&fresh, product.ID).Error)
	assert.Equal(t, 1, fresh.Stock)
}

func TestGetCartEmptyReadsAsNotFound(t *testing.T) {
	db := setupDB(t)
	client := seedClient(t, db)
	svc := services.NewCartsService(db)

	_, err := svc.GetCart(context.Background(), client.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.EqualError(t, err, "Shopping cart is empty")
}

func TestGetCartMaterialisesLinesAndTotal(t *testing.T) {
	db := setupDB(t)
	client := seedClient(t, db)
	mug := seedProduct(t, db, "Mug", 12.50, 10, true)
	kettle := seedProduct(t, db, "Kettle", 54.00, 5, true)
	svc := services.NewCartsService(db)

	for _, in := range []services.ChangeProductInput{
		{ClientID: client.ID, ProductID: mug.ID, Quantity: 2},
		{ClientID: client.ID, ProductID: kettle.ID, Quantity: 1},
	} {
		_, err := svc.ChangeProduct(context.Background(), in)
		require.NoError(t, err)
	}

	cart, err := svc.GetCart(context.Background(), client.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.True(t, cart.Total.Equal(decimal.NewFromFloat(79.00)), "total was %s", cart.Total)

	for _, line := range cart.Items {
		assert.True(t, line.Subtotal.Equal(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))))
	}
}

func TestChangeProductStockIsNeverMutated(t *testing.T) {
	db := setupDB(t)
	client := seedClient(t, db)
	product := seedProduct(t, db, "Mug", 12.50, 10, true)
	svc := services.NewCartsService(db)

	_, err := svc.ChangeProduct(context.Background(), services.ChangeProductInput{
		ClientID: client.ID, ProductID: product.ID, Quantity: 4,
	})
	require.NoError(t, err)

	var fresh models.Product
	require.NoError(t, db.First(&fresh, product.ID).Error)
	assert.Equal(t, 10, fresh.Stock)
}
