package storage_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/hapibara/hapibara-api/internal/domain/models"
	"github.com/hapibara/hapibara-api/internal/storage"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGetUserByEmail_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "email", "name", "pass_hash", "kindness_score"}).
		AddRow(1, "test@example.com", "test", []byte("hashed-password"), 42)

	mock.ExpectQuery("SELECT id, email, name, pass_hash, kindness_score FROM users WHERE email = \\$1").
		WithArgs("test@example.com").WillReturnRows(rows)

	user, err := repo.GetUserByEmail(ctx, "test@example.com")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.Equal(t, "test@example.com", user.Email)
	assert.Equal(t, 42, user.KindnessScore)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByEmail_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewUserRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "email", "name", "pass_hash", "kindness_score"})
	mock.ExpectQuery("SELECT id, email, name, pass_hash, kindness_score FROM users WHERE email = \\$1").
		WithArgs("nobody@example.com").WillReturnRows(rows)

	user, err := repo.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
	assert.Nil(t, user)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetProductBySlug_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"id", "name", "slug", "description", "category", "brand", "image", "price", "inventory", "created_at"})
	mock.ExpectQuery("SELECT .+ FROM products WHERE slug = \\$1").
		WithArgs("no-such-slug").WillReturnRows(rows)

	product, err := repo.GetProductBySlug(ctx, "no-such-slug")
	assert.ErrorIs(t, err, storage.ErrProductNotFound)
	assert.Nil(t, product)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListProducts_CategoryAndPriceFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()

	minPrice := decimal.NewFromInt(5)
	rows := sqlmock.NewRows([]string{"id", "name", "slug", "description", "category", "brand", "image", "price", "inventory", "created_at"}).
		AddRow(3, "Hemp Seed Granola", "hemp-seed-granola", "granola", "food", "Morning Fields", "/img.jpg", "9.25", 150, time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("FROM products WHERE category = $1 AND price >= $2 ORDER BY price ASC LIMIT $3 OFFSET $4")).
		WithArgs("food", minPrice, 12, 0).
		WillReturnRows(rows)

	products, err := repo.ListProducts(ctx, storage.ProductFilter{
		Category: "food",
		MinPrice: &minPrice,
		SortBy:   "price_asc",
		Limit:    12,
		Offset:   0,
	})
	assert.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Equal(t, "hemp-seed-granola", products[0].Slug)
	assert.True(t, products[0].Price.Equal(decimal.RequireFromString("9.25")))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementInventory_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET inventory = inventory - $2 WHERE id = $1 AND inventory >= $2")).
		WithArgs(int64(7), 3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := db.Begin()
	assert.NoError(t, err)

	err = repo.DecrementInventory(ctx, tx, 7, 3)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecrementInventory_InsufficientStock(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewProductRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	// zero rows matched: remaining stock is below the requested quantity
	mock.ExpectExec(regexp.QuoteMeta("UPDATE products SET inventory = inventory - $2 WHERE id = $1 AND inventory >= $2")).
		WithArgs(int64(7), 100).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := db.Begin()
	assert.NoError(t, err)

	err = repo.DecrementInventory(ctx, tx, 7, 100)
	assert.ErrorIs(t, err, storage.ErrInsufficientStock)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCartItem_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	ctx := context.Background()

	now := time.Now()
	price := decimal.RequireFromString("4.50")
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO cart_items (user_id, product_id, quantity, price, created_at)")).
		WithArgs(int64(1), int64(2), 3, price).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(11, now))

	item, err := repo.CreateItem(ctx, &models.CartItem{UserID: 1, ProductID: 2, Quantity: 3, Price: price})
	assert.NoError(t, err)
	assert.Equal(t, int64(11), item.ID)
	assert.Equal(t, now, item.CreatedAt)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateItemQuantity_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE cart_items SET quantity = $3 WHERE id = $1 AND user_id = $2")).
		WithArgs(int64(99), int64(1), 5).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = repo.UpdateItemQuantity(ctx, 1, 99, 5)
	assert.ErrorIs(t, err, storage.ErrCartItemNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetCartLines_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewCartRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{
		"id", "user_id", "product_id", "quantity", "price", "created_at",
		"name", "slug", "image", "p_price", "inventory",
	}).AddRow(11, 1, 2, 3, "4.50", time.Now(), "Oat Milk Chocolate Bar", "oat-milk-chocolate-bar", "/img.jpg", "5.00", 500)

	mock.ExpectQuery("SELECT ci.id, ci.user_id, ci.product_id").
		WithArgs(int64(1)).WillReturnRows(rows)

	lines, err := repo.GetCartLines(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, lines, 1)
	// snapshot price and live product price are different columns
	assert.True(t, lines[0].Price.Equal(decimal.RequireFromString("4.50")))
	assert.True(t, lines[0].ProductPrice.Equal(decimal.RequireFromString("5.00")))
	assert.Equal(t, 500, lines[0].ProductInventory)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddKindnessScore_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewKindnessRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET kindness_score = kindness_score + $2 WHERE id = $1")).
		WithArgs(int64(1), 10).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tx, err := db.Begin()
	assert.NoError(t, err)

	err = repo.AddKindnessScore(ctx, tx, 1, 10)
	assert.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddKindnessScore_UserNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewKindnessRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET kindness_score = kindness_score + $2 WHERE id = $1")).
		WithArgs(int64(404), 10).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := db.Begin()
	assert.NoError(t, err)

	err = repo.AddKindnessScore(ctx, tx, 404, 10)
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetImpactStats_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewKindnessRepository(db)
	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"count", "points", "water", "co2", "animals"}).
		AddRow(3, 30, 240.5, 4.8, 1.2)
	mock.ExpectQuery("SELECT COUNT\\(id\\), COALESCE\\(SUM\\(points\\), 0\\)").
		WithArgs(int64(1)).WillReturnRows(rows)

	stats, err := repo.GetImpactStats(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, 3, stats.TotalActivities)
	assert.Equal(t, 30, stats.TotalPoints)
	assert.InDelta(t, 240.5, stats.WaterSaved, 0.001)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddAttendee_DuplicateConflict(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewEventRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO event_attendees (event_id, user_id, created_at)")).
		WithArgs(int64(5), int64(1)).
		WillReturnError(&pq.Error{Code: "23505"})

	tx, err := db.Begin()
	assert.NoError(t, err)

	err = repo.AddAttendee(ctx, tx, 5, 1)
	assert.ErrorIs(t, err, storage.ErrAlreadyAttending)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementAttendeeCount_EventFull(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewEventRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE community_events SET attendee_count = attendee_count \\+ 1").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	tx, err := db.Begin()
	assert.NoError(t, err)

	err = repo.IncrementAttendeeCount(ctx, tx, 5)
	assert.ErrorIs(t, err, storage.ErrEventFull)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrder_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO orders")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))

	tx, err := db.Begin()
	assert.NoError(t, err)

	order := &models.Order{
		UserID:      1,
		OrderNumber: "HB-test",
		Status:      models.OrderStatusPending,
		Subtotal:    decimal.RequireFromString("100.00"),
		Shipping:    decimal.RequireFromString("9.99"),
		Tax:         decimal.RequireFromString("8.00"),
		Total:       decimal.RequireFromString("117.99"),
		ShippingAddress: models.ShippingAddress{
			Name: "Test", Email: "t@example.com", Phone: "555", Address: "1 St",
			City: "Portland", State: "OR", ZipCode: "97201", Country: "US",
		},
	}
	id, err := repo.CreateOrder(ctx, tx, order)
	assert.NoError(t, err)
	assert.Equal(t, int64(21), id)
	assert.Equal(t, int64(21), order.ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrdersByUserID_StatusFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()

	address := []byte(`{"name":"Test","email":"t@example.com","phone":"555","address":"1 St","city":"Portland","state":"OR","zipCode":"97201","country":"US"}`)
	rows := sqlmock.NewRows([]string{
		"id", "user_id", "order_number", "status", "payment_status",
		"subtotal", "shipping", "tax", "total", "shipping_address", "created_at",
	}).AddRow(21, 1, "HB-test", "pending", "pending", "100.00", "9.99", "8.00", "117.99", address, time.Now())

	mock.ExpectQuery("FROM orders").
		WithArgs(int64(1), "pending", 10, 0).
		WillReturnRows(rows)

	orders, err := repo.GetOrdersByUserID(ctx, 1, "pending", 10, 0)
	assert.NoError(t, err)
	assert.Len(t, orders, 1)
	assert.Equal(t, "HB-test", orders[0].OrderNumber)
	assert.Equal(t, "Portland", orders[0].ShippingAddress.City)
	assert.True(t, orders[0].Total.Equal(decimal.RequireFromString("117.99")))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrdersByUserID_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	repo := storage.NewOrderRepository(db)
	ctx := context.Background()

	mock.ExpectQuery("FROM orders").
		WithArgs(int64(1), 10, 0).
		WillReturnError(errors.New("db error"))

	orders, err := repo.GetOrdersByUserID(ctx, 1, "", 10, 0)
	assert.Error(t, err)
	assert.Nil(t, orders)

	assert.NoError(t, mock.ExpectationsWereMet())
}
