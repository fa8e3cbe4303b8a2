package service_test

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"github.com/hapibara/hapibara-api/internal/domain/models"
	"github.com/hapibara/hapibara-api/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

type fakeUserRepo struct {
	users map[string]*models.User // keyed by email
}

var _ storage.UserStorage = (*fakeUserRepo)(nil)

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = int64(len(f.users) + 1)
	f.users[user.Email] = user
	return user, nil
}

type fakeProductRepo struct {
	products      map[int64]*models.Product
	decremented   map[int64]int
	decrementErrs map[int64]error
}

var _ storage.ProductStorage = (*fakeProductRepo)(nil)

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{
		products:      make(map[int64]*models.Product),
		decremented:   make(map[int64]int),
		decrementErrs: make(map[int64]error),
	}
}

func (f *fakeProductRepo) GetProductByID(ctx context.Context, id int64) (*models.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return nil, storage.ErrProductNotFound
	}
	return p, nil
}

func (f *fakeProductRepo) GetProductBySlug(ctx context.Context, slug string) (*models.Product, error) {
	for _, p := range f.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, storage.ErrProductNotFound
}

func (f *fakeProductRepo) ListProducts(ctx context.Context, filter storage.ProductFilter) ([]*models.Product, error) {
	var out []*models.Product
	for _, p := range f.products {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeProductRepo) DecrementInventory(ctx context.Context, tx *sql.Tx, productID int64, quantity int) error {
	if err, ok := f.decrementErrs[productID]; ok {
		return err
	}
	p, ok := f.products[productID]
	if !ok {
		return storage.ErrProductNotFound
	}
	if p.Inventory < quantity {
		return storage.ErrInsufficientStock
	}
	p.Inventory -= quantity
	f.decremented[productID] += quantity
	return nil
}

type fakeCartRepo struct {
	items   map[int64]*models.CartItem // keyed by cart item id
	lines   []*models.CartLine         // returned by GetCartLines(Tx)
	nextID  int64
	cleared bool
}

var _ storage.CartStorage = (*fakeCartRepo)(nil)

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{items: make(map[int64]*models.CartItem), nextID: 1}
}

func (f *fakeCartRepo) GetCartLines(ctx context.Context, userID int64) ([]*models.CartLine, error) {
	return f.lines, nil
}

func (f *fakeCartRepo) GetCartLinesTx(ctx context.Context, tx *sql.Tx, userID int64) ([]*models.CartLine, error) {
	return f.lines, nil
}

func (f *fakeCartRepo) GetItemByUserAndProduct(ctx context.Context, userID, productID int64) (*models.CartItem, error) {
	for _, item := range f.items {
		if item.UserID == userID && item.ProductID == productID {
			return item, nil
		}
	}
	return nil, storage.ErrCartItemNotFound
}

func (f *fakeCartRepo) GetItemByID(ctx context.Context, userID, cartItemID int64) (*models.CartItem, error) {
	item, ok := f.items[cartItemID]
	if !ok || item.UserID != userID {
		return nil, storage.ErrCartItemNotFound
	}
	return item, nil
}

func (f *fakeCartRepo) CreateItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	item.ID = f.nextID
	item.CreatedAt = time.Now()
	f.nextID++
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeCartRepo) UpdateItemQuantity(ctx context.Context, userID, cartItemID int64, quantity int) error {
	item, ok := f.items[cartItemID]
	if !ok || item.UserID != userID {
		return storage.ErrCartItemNotFound
	}
	item.Quantity = quantity
	return nil
}

func (f *fakeCartRepo) DeleteItem(ctx context.Context, userID, cartItemID int64) error {
	item, ok := f.items[cartItemID]
	if !ok || item.UserID != userID {
		return storage.ErrCartItemNotFound
	}
	delete(f.items, cartItemID)
	return nil
}

func (f *fakeCartRepo) ClearCart(ctx context.Context, userID int64) error {
	f.items = make(map[int64]*models.CartItem)
	f.cleared = true
	return nil
}

func (f *fakeCartRepo) ClearCartTx(ctx context.Context, tx *sql.Tx, userID int64) error {
	return f.ClearCart(ctx, userID)
}

type fakeOrderRepo struct {
	orders    []*models.Order
	items     []*models.OrderItem
	createErr error
}

var _ storage.OrderStorage = (*fakeOrderRepo)(nil)

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{}
}

func (f *fakeOrderRepo) CreateOrder(ctx context.Context, tx *sql.Tx, order *models.Order) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	order.ID = int64(len(f.orders) + 1)
	f.orders = append(f.orders, order)
	return order.ID, nil
}

func (f *fakeOrderRepo) CreateOrderItem(ctx context.Context, tx *sql.Tx, item *models.OrderItem) error {
	item.ID = int64(len(f.items) + 1)
	f.items = append(f.items, item)
	return nil
}

func (f *fakeOrderRepo) GetOrdersByUserID(ctx context.Context, userID int64, status string, limit, offset int) ([]*models.Order, error) {
	var out []*models.Order
	for _, o := range f.orders {
		if o.UserID == userID && (status == "" || o.Status == status) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) GetOrderItems(ctx context.Context, orderID int64) ([]*models.OrderItem, error) {
	var out []*models.OrderItem
	for _, item := range f.items {
		if item.OrderID == orderID {
			out = append(out, item)
		}
	}
	return out, nil
}

type fakeKindnessRepo struct {
	activities []*models.KindnessActivity
	scores     map[int64]int
	stats      *storage.ImpactStats
	createErr  error
	scoreErr   error
}

var _ storage.KindnessStorage = (*fakeKindnessRepo)(nil)

func newFakeKindnessRepo() *fakeKindnessRepo {
	return &fakeKindnessRepo{scores: make(map[int64]int), stats: &storage.ImpactStats{}}
}

func (f *fakeKindnessRepo) CreateActivity(ctx context.Context, tx *sql.Tx, activity *models.KindnessActivity) (*models.KindnessActivity, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	activity.ID = int64(len(f.activities) + 1)
	activity.CreatedAt = time.Now()
	f.activities = append(f.activities, activity)
	return activity, nil
}

func (f *fakeKindnessRepo) AddKindnessScore(ctx context.Context, tx *sql.Tx, userID int64, points int) error {
	if f.scoreErr != nil {
		return f.scoreErr
	}
	f.scores[userID] += points
	return nil
}

func (f *fakeKindnessRepo) GetActivitiesByUserID(ctx context.Context, userID int64, since *time.Time, limit, offset int) ([]*models.KindnessActivity, error) {
	var out []*models.KindnessActivity
	for _, a := range f.activities {
		if a.UserID != userID {
			continue
		}
		if since != nil && a.CreatedAt.Before(*since) {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeKindnessRepo) GetImpactStats(ctx context.Context, userID int64) (*storage.ImpactStats, error) {
	return f.stats, nil
}

type fakeEventRepo struct {
	events       map[int64]*models.CommunityEvent
	attendErr    error
	incrementErr error
	attendees    map[int64][]int64
}

var _ storage.EventStorage = (*fakeEventRepo)(nil)

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{
		events:    make(map[int64]*models.CommunityEvent),
		attendees: make(map[int64][]int64),
	}
}

func (f *fakeEventRepo) ListEvents(ctx context.Context, city string, upcomingOnly bool, limit, offset int) ([]*models.CommunityEvent, error) {
	var out []*models.CommunityEvent
	for _, e := range f.events {
		if city == "" || e.City == city {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) GetEventByID(ctx context.Context, id int64) (*models.CommunityEvent, error) {
	e, ok := f.events[id]
	if !ok {
		return nil, storage.ErrEventNotFound
	}
	return e, nil
}

func (f *fakeEventRepo) AddAttendee(ctx context.Context, tx *sql.Tx, eventID, userID int64) error {
	if f.attendErr != nil {
		return f.attendErr
	}
	for _, id := range f.attendees[eventID] {
		if id == userID {
			return storage.ErrAlreadyAttending
		}
	}
	f.attendees[eventID] = append(f.attendees[eventID], userID)
	return nil
}

func (f *fakeEventRepo) IncrementAttendeeCount(ctx context.Context, tx *sql.Tx, eventID int64) error {
	if f.incrementErr != nil {
		return f.incrementErr
	}
	e, ok := f.events[eventID]
	if !ok {
		return storage.ErrEventNotFound
	}
	if e.MaxAttendees != nil && e.AttendeeCount >= *e.MaxAttendees {
		return storage.ErrEventFull
	}
	e.AttendeeCount++
	return nil
}
