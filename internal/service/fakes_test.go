package service

import (
	"context"
	"sync"
	"time"

	"go-pharma-store/internal/model"
	"go-pharma-store/internal/notification"
	"go-pharma-store/internal/payment"
	"go-pharma-store/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore is a single in-memory backing store shared by the fake
// repositories, mirroring how the real ones share one database. The fake
// TxManager serializes transactions with the store mutex and restores a
// snapshot on error, which gives tests the same all-or-nothing semantics as
// a rolled-back database transaction.
type memStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]*model.Product
	carts    []*model.CartLine
	orders   map[uuid.UUID]*model.Order
	users    map[uuid.UUID]*model.User
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[uuid.UUID]*model.Product),
		orders:   make(map[uuid.UUID]*model.Order),
		users:    make(map[uuid.UUID]*model.User),
	}
}

type memTxKey struct{}

// lock takes the store mutex unless the context is already inside a fake
// transaction, which holds it for the whole unit of work.
func (s *memStore) lock(ctx context.Context) func() {
	if ctx.Value(memTxKey{}) != nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *memStore) addProduct(name string, price float64, stock int) *model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &model.Product{
		SKU:      "SKU-" + name,
		Name:     name,
		Category: model.CategoryVitamins,
		Price:    decimal.NewFromFloat(price),
		Stock:    stock,
	}
	p.ID = uuid.New()
	s.products[p.ID] = p
	return p
}

func (s *memStore) addUser(role, deviceToken string) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &model.User{
		Email:       uuid.New().String() + "@example.com",
		FullName:    "Test User",
		Role:        role,
		IsActive:    true,
		DeviceToken: deviceToken,
	}
	u.ID = uuid.New()
	s.users[u.ID] = u
	return u
}

func (s *memStore) snapshot() *memStore {
	snap := newMemStore()
	for id, p := range s.products {
		cp := *p
		snap.products[id] = &cp
	}
	for _, l := range s.carts {
		cp := *l
		snap.carts = append(snap.carts, &cp)
	}
	for id, o := range s.orders {
		cp := *o
		cp.Items = append([]model.OrderItem(nil), o.Items...)
		snap.orders[id] = &cp
	}
	for id, u := range s.users {
		cp := *u
		snap.users[id] = &cp
	}
	return snap
}

func (s *memStore) restore(snap *memStore) {
	s.products = snap.products
	s.carts = snap.carts
	s.orders = snap.orders
	s.users = snap.users
}

func (s *memStore) stockOf(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.products[id]; ok {
		return p.Stock
	}
	return -1
}

type memTx struct{ store *memStore }

func (m *memTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.store.mu.Lock()
	defer m.store.mu.Unlock()
	snap := m.store.snapshot()
	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		m.store.restore(snap)
		return err
	}
	return nil
}

type memProducts struct{ store *memStore }

func (r *memProducts) Create(ctx context.Context, p *model.Product) error {
	defer r.store.lock(ctx)()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.store.products[p.ID] = &cp
	return nil
}

func (r *memProducts) FindAll(ctx context.Context) ([]model.Product, error) {
	defer r.store.lock(ctx)()
	var out []model.Product
	for _, p := range r.store.products {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memProducts) FindByCategory(ctx context.Context, c model.Category) ([]model.Product, error) {
	defer r.store.lock(ctx)()
	var out []model.Product
	for _, p := range r.store.products {
		if p.Category == c {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProducts) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	defer r.store.lock(ctx)()
	p, ok := r.store.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *memProducts) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	defer r.store.lock(ctx)()
	for _, p := range r.store.products {
		if p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memProducts) Update(ctx context.Context, p *model.Product) error {
	defer r.store.lock(ctx)()
	cp := *p
	r.store.products[p.ID] = &cp
	return nil
}

func (r *memProducts) DecrementStock(ctx context.Context, id uuid.UUID, qty int, updatedBy string) error {
	defer r.store.lock(ctx)()
	p, ok := r.store.products[id]
	if !ok || p.Stock < qty {
		return repository.ErrInsufficientStock
	}
	p.Stock -= qty
	return nil
}

func (r *memProducts) AdjustStock(ctx context.Context, id uuid.UUID, delta int, updatedBy string) error {
	defer r.store.lock(ctx)()
	p, ok := r.store.products[id]
	if !ok {
		return repository.ErrNotFound
	}
	if p.Stock+delta < 0 {
		return repository.ErrInsufficientStock
	}
	p.Stock += delta
	return nil
}

func (r *memProducts) FindLowStock(ctx context.Context, threshold int) ([]model.Product, error) {
	defer r.store.lock(ctx)()
	var out []model.Product
	for _, p := range r.store.products {
		if p.Stock < threshold {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProducts) FindNearingExpiry(ctx context.Context, now time.Time, window time.Duration) ([]model.Product, error) {
	defer r.store.lock(ctx)()
	var out []model.Product
	for _, p := range r.store.products {
		if p.ExpiresWithin(now, window) {
			out = append(out, *p)
		}
	}
	return out, nil
}

type memCarts struct{ store *memStore }

func (r *memCarts) FindLines(ctx context.Context, shopperID uuid.UUID) ([]model.CartLine, error) {
	defer r.store.lock(ctx)()
	var out []model.CartLine
	for _, l := range r.store.carts {
		if l.ShopperID == shopperID {
			cp := *l
			if p, ok := r.store.products[l.ProductID]; ok {
				pc := *p
				cp.Product = &pc
			}
			out = append(out, cp)
		}
	}
	return out, nil
}

func (r *memCarts) FindLine(ctx context.Context, shopperID, productID uuid.UUID, dosage string) (*model.CartLine, error) {
	defer r.store.lock(ctx)()
	for _, l := range r.store.carts {
		if l.ShopperID == shopperID && l.ProductID == productID && l.Dosage == dosage {
			cp := *l
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memCarts) Save(ctx context.Context, line *model.CartLine) error {
	defer r.store.lock(ctx)()
	if line.ID == uuid.Nil {
		line.ID = uuid.New()
	}
	for i, l := range r.store.carts {
		if l.ID == line.ID {
			cp := *line
			r.store.carts[i] = &cp
			return nil
		}
	}
	cp := *line
	r.store.carts = append(r.store.carts, &cp)
	return nil
}

func (r *memCarts) DeleteLine(ctx context.Context, shopperID, productID uuid.UUID) error {
	defer r.store.lock(ctx)()
	var kept []*model.CartLine
	for _, l := range r.store.carts {
		if !(l.ShopperID == shopperID && l.ProductID == productID) {
			kept = append(kept, l)
		}
	}
	r.store.carts = kept
	return nil
}

func (r *memCarts) Clear(ctx context.Context, shopperID uuid.UUID) error {
	defer r.store.lock(ctx)()
	var kept []*model.CartLine
	for _, l := range r.store.carts {
		if l.ShopperID != shopperID {
			kept = append(kept, l)
		}
	}
	r.store.carts = kept
	return nil
}

type memOrders struct{ store *memStore }

func (r *memOrders) Create(ctx context.Context, o *model.Order) error {
	defer r.store.lock(ctx)()
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	r.store.orders[o.ID] = &cp
	return nil
}

func (r *memOrders) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	defer r.store.lock(ctx)()
	o, ok := r.store.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	return &cp, nil
}

func (r *memOrders) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *memOrders) FindByShopper(ctx context.Context, shopperID uuid.UUID) ([]model.Order, error) {
	defer r.store.lock(ctx)()
	var out []model.Order
	for _, o := range r.store.orders {
		if o.ShopperID == shopperID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *memOrders) FindByStatus(ctx context.Context, status model.CheckoutStatus) ([]model.Order, error) {
	defer r.store.lock(ctx)()
	var out []model.Order
	for _, o := range r.store.orders {
		if o.CheckoutStatus == status {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (r *memOrders) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.CheckoutStatus) error {
	defer r.store.lock(ctx)()
	if !from.CanTransition(to) {
		return repository.ErrStatusConflict
	}
	o, ok := r.store.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	if o.CheckoutStatus != from {
		return repository.ErrStatusConflict
	}
	o.CheckoutStatus = to
	return nil
}

type memUsers struct{ store *memStore }

func (r *memUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	defer r.store.lock(ctx)()
	for _, u := range r.store.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUsers) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	defer r.store.lock(ctx)()
	u, ok := r.store.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUsers) FindAll(ctx context.Context) ([]model.User, error) {
	defer r.store.lock(ctx)()
	var out []model.User
	for _, u := range r.store.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *memUsers) Create(ctx context.Context, u *model.User) error {
	defer r.store.lock(ctx)()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	r.store.users[u.ID] = &cp
	return nil
}

func (r *memUsers) Update(ctx context.Context, u *model.User) error {
	defer r.store.lock(ctx)()
	cp := *u
	r.store.users[u.ID] = &cp
	return nil
}

func (r *memUsers) UpdateDeviceToken(ctx context.Context, id uuid.UUID, token string) error {
	defer r.store.lock(ctx)()
	u, ok := r.store.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.DeviceToken = token
	return nil
}

func (r *memUsers) UpdateTokenVersion(ctx context.Context, id uuid.UUID, version string) error {
	defer r.store.lock(ctx)()
	u, ok := r.store.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.TokenVersion = version
	return nil
}

func (r *memUsers) AdminDeviceTokens(ctx context.Context) ([]string, error) {
	defer r.store.lock(ctx)()
	var tokens []string
	for _, u := range r.store.users {
		if u.Role == model.RoleAdmin && u.IsActive && u.DeviceToken != "" {
			tokens = append(tokens, u.DeviceToken)
		}
	}
	return tokens, nil
}

// fakeDispatcher records delivered tokens; fail makes every delivery error.
type fakeDispatcher struct {
	mu   sync.Mutex
	sent []string
	fail error
}

func (d *fakeDispatcher) Notify(token string, msg notification.Message) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail != nil {
		return d.fail
	}
	d.sent = append(d.sent, token)
	return nil
}

// fakeGateway hands back a deterministic session.
type fakeGateway struct {
	mu       sync.Mutex
	sessions int
	fail     error
}

func (g *fakeGateway) CreateSession(ctx context.Context, order *model.Order) (*payment.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fail != nil {
		return nil, g.fail
	}
	g.sessions++
	return &payment.Session{
		SessionID:   uuid.New(),
		OrderID:     order.ID,
		RedirectURL: "https://pay.example.com/checkout?order=" + order.ID.String(),
	}, nil
}
