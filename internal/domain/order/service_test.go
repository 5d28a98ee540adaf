package order

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/velikanov/storefront/internal/domain/product"
	"github.com/velikanov/storefront/internal/domain/promotion"
	"github.com/velikanov/storefront/internal/domain/user"
)

// --- Mock implementations ---

type mockProductRepo struct {
	byID   map[int64]*product.Product
	getErr error
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) {
	return nil, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) Create(_ context.Context, _ *product.Product) error { return nil }

func (m *mockProductRepo) CreateImage(_ context.Context, _ *product.Image) error { return nil }

func (m *mockProductRepo) CreateWithImages(_ context.Context, _ *product.Product, _ []product.Image) error {
	return nil
}

type mockPromotionRepo struct {
	byCode map[string]*promotion.Promotion
	err    error
}

func (m *mockPromotionRepo) FindByCode(_ context.Context, code string) (*promotion.Promotion, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.byCode[code]
	if !ok {
		return nil, promotion.ErrNotFound
	}
	return p, nil
}

func (m *mockPromotionRepo) Create(_ context.Context, _ *promotion.Promotion) error { return nil }

// mockStore implements Repository and Tx, recording every mutation and
// whether the transaction committed or rolled back.
type mockStore struct {
	orders []*Order
	items  []*Item
	totals []*Order

	createOrderErr  error
	createItemErr   error
	updateTotalsErr error

	committed  bool
	rolledBack bool
	nextID     int64
}

func (m *mockStore) InTx(_ context.Context, fn func(tx Tx) error) error {
	if err := fn(m); err != nil {
		m.rolledBack = true
		return err
	}
	m.committed = true
	return nil
}

func (m *mockStore) CreateOrder(_ context.Context, o *Order) error {
	if m.createOrderErr != nil {
		return m.createOrderErr
	}
	m.nextID++
	o.ID = m.nextID
	m.orders = append(m.orders, o)
	return nil
}

func (m *mockStore) CreateItem(_ context.Context, item *Item) error {
	if m.createItemErr != nil {
		return m.createItemErr
	}
	m.nextID++
	item.ID = m.nextID
	m.items = append(m.items, item)
	return nil
}

func (m *mockStore) UpdateTotals(_ context.Context, o *Order) error {
	if m.updateTotalsErr != nil {
		return m.updateTotalsErr
	}
	m.totals = append(m.totals, o)
	return nil
}

// --- Helpers ---

func newTestProduct(id int64, name string, price int64) product.Product {
	return product.Product{
		ID:            id,
		Name:          name,
		Price:         price,
		CategoryID:    1,
		InStock:       true,
		StockQuantity: 10,
	}
}

func newProductRepo(products ...product.Product) *mockProductRepo {
	byID := make(map[int64]*product.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return &mockProductRepo{byID: byID}
}

func newPromotionRepo(promotions ...promotion.Promotion) *mockPromotionRepo {
	byCode := make(map[string]*promotion.Promotion, len(promotions))
	for i := range promotions {
		byCode[promotions[i].Code] = &promotions[i]
	}
	return &mockPromotionRepo{byCode: byCode}
}

var testUser = &user.User{ID: 7, Name: "Test User"}

// --- Tests ---

func TestCreate_EmptyItems(t *testing.T) {
	store := &mockStore{}
	svc := NewService(store, newProductRepo(), newPromotionRepo())

	_, err := svc.Create(context.Background(), testUser, CreateRequest{})

	require.ErrorIs(t, err, ErrNoItems)
	assert.True(t, store.rolledBack)
	assert.False(t, store.committed)
}

func TestCreate_ProductNotFound(t *testing.T) {
	store := &mockStore{}
	svc := NewService(store, newProductRepo(), newPromotionRepo())

	_, err := svc.Create(context.Background(), testUser, CreateRequest{
		Items: []ItemRequest{{ProductID: 42, Quantity: 1}},
	})

	var pnfErr *ProductNotFoundError
	require.ErrorAs(t, err, &pnfErr)
	assert.Equal(t, int64(42), pnfErr.ProductID)
	assert.True(t, store.rolledBack)
}

func TestCreate_InvalidQuantity(t *testing.T) {
	p1 := newTestProduct(1, "Widget", 500)
	store := &mockStore{}
	svc := NewService(store, newProductRepo(p1), newPromotionRepo())

	_, err := svc.Create(context.Background(), testUser, CreateRequest{
		Items: []ItemRequest{{ProductID: 1, Quantity: 0}},
	})

	require.ErrorIs(t, err, ErrInvalidItem)
	assert.True(t, store.rolledBack)
}

func TestCreate_TotalFromItems(t *testing.T) {
	p1 := newTestProduct(1, "Widget", 500)
	p2 := newTestProduct(2, "Gadget", 300)
	store := &mockStore{}
	svc := NewService(store, newProductRepo(p1, p2), newPromotionRepo())

	o, err := svc.Create(context.Background(), testUser, CreateRequest{
		Items: []ItemRequest{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	})

	require.NoError(t, err)
	assert.True(t, store.committed)
	assert.Equal(t, int64(1300), o.Total)
	assert.Equal(t, StateConfirmed, o.State)
	assert.Equal(t, testUser.ID, o.UserID)
	assert.Len(t, store.items, 2)
	require.Len(t, store.totals, 1)
	assert.Nil(t, o.PromotionID)
}

func TestCreate_PriceSnapshot(t *testing.T) {
	p1 := newTestProduct(1, "Widget", 500)
	repo := newProductRepo(p1)
	store := &mockStore{}
	svc := NewService(store, repo, newPromotionRepo())

	o, err := svc.Create(context.Background(), testUser, CreateRequest{
		Items: []ItemRequest{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	// A later price change must not affect the recorded item price.
	repo.byID[1].Price = 900
	assert.Equal(t, int64(500), o.Items[0].Price)
}

func TestCreate_WithPromotion(t *testing.T) {
	p1 := newTestProduct(1, "Widget", 500)
	promo := promotion.Promotion{ID: 3, Name: "Save", Code: "SAVE100", Discount: 100}
	store := &mockStore{}
	svc := NewService(store, newProductRepo(p1), newPromotionRepo(promo))

	o, err := svc.Create(context.Background(), testUser, CreateRequest{
		Items:         []ItemRequest{{ProductID: 1, Quantity: 2}},
		PromotionCode: "SAVE100",
	})

	require.NoError(t, err)
	assert.Equal(t, int64(900), o.Total)
	require.NotNil(t, o.PromotionID)
	assert.Equal(t, int64(3), *o.PromotionID)
}

func TestCreate_InvalidPromotionCode(t *testing.T) {
	p1 := newTestProduct(1, "Widget", 500)
	store := &mockStore{}
	svc := NewService(store, newProductRepo(p1), newPromotionRepo())

	_, err := svc.Create(context.Background(), testUser, CreateRequest{
		Items:         []ItemRequest{{ProductID: 1, Quantity: 1}},
		PromotionCode: "BOGUS",
	})

	require.ErrorIs(t, err, ErrInvalidPromoCode)
	assert.True(t, store.rolledBack)
	assert.False(t, store.committed)
}

func TestCreate_DiscountExceedsTotal(t *testing.T) {
	p1 := newTestProduct(1, "Widget", 100)
	promo := promotion.Promotion{ID: 1, Name: "Huge", Code: "HUGE", Discount: 999}
	store := &mockStore{}
	svc := NewService(store, newProductRepo(p1), newPromotionRepo(promo))

	o, err := svc.Create(context.Background(), testUser, CreateRequest{
		Items:         []ItemRequest{{ProductID: 1, Quantity: 1}},
		PromotionCode: "HUGE",
	})

	// The discount is not clamped: the total goes negative.
	require.NoError(t, err)
	assert.Equal(t, int64(-899), o.Total)
}

func TestCreate_EmptyPromotionCodeSkipsLookup(t *testing.T) {
	p1 := newTestProduct(1, "Widget", 500)
	promos := &mockPromotionRepo{err: errors.New("lookup must not happen")}
	store := &mockStore{}
	svc := NewService(store, newProductRepo(p1), promos)

	o, err := svc.Create(context.Background(), testUser, CreateRequest{
		Items: []ItemRequest{{ProductID: 1, Quantity: 1}},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(500), o.Total)
}

func TestCreate_OrderCreateError(t *testing.T) {
	store := &mockStore{createOrderErr: errors.New("db write failed")}
	svc := NewService(store, newProductRepo(), newPromotionRepo())

	_, err := svc.Create(context.Background(), testUser, CreateRequest{
		Items: []ItemRequest{{ProductID: 1, Quantity: 1}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create order")
	assert.True(t, store.rolledBack)
}

func TestCreate_ItemCreateError(t *testing.T) {
	p1 := newTestProduct(1, "Widget", 500)
	store := &mockStore{createItemErr: errors.Wrap(ErrInvalidItem, "insert item")}
	svc := NewService(store, newProductRepo(p1), newPromotionRepo())

	_, err := svc.Create(context.Background(), testUser, CreateRequest{
		Items: []ItemRequest{{ProductID: 1, Quantity: 1}},
	})

	require.ErrorIs(t, err, ErrInvalidItem)
	assert.True(t, store.rolledBack)
}

func TestCreate_UpdateTotalsError(t *testing.T) {
	p1 := newTestProduct(1, "Widget", 500)
	store := &mockStore{updateTotalsErr: errors.New("db write failed")}
	svc := NewService(store, newProductRepo(p1), newPromotionRepo())

	_, err := svc.Create(context.Background(), testUser, CreateRequest{
		Items: []ItemRequest{{ProductID: 1, Quantity: 1}},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "update order totals")
	assert.True(t, store.rolledBack)
	assert.False(t, store.committed)
}
