package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"jannypos/internal/dto"
	"jannypos/internal/model"
	"jannypos/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// memStore is an in-memory stand-in for Postgres. WithTx snapshots the whole
// store and restores it when fn fails, which is enough to observe rollbacks.

type stockKey struct {
	product string
	site    uuid.UUID
}

type memStore struct {
	mu        sync.Mutex
	clock     time.Time
	products  map[string]model.Product
	sites     map[string]model.Site // by name
	stock     map[stockKey]int
	sales     map[uuid.UUID]model.Sale
	movements []model.StockMovement

	// failCancel makes MarkCancelledTx report that another request won.
	failCancel bool
	// locked records the product ids whose stock rows were touched, in order.
	locked []string
}

func newMemStore() *memStore {
	return &memStore{
		clock:    time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		products: map[string]model.Product{},
		sites:    map[string]model.Site{},
		stock:    map[stockKey]int{},
		sales:    map[uuid.UUID]model.Sale{},
	}
}

func (m *memStore) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

type memSnapshot struct {
	products  map[string]model.Product
	sites     map[string]model.Site
	stock     map[stockKey]int
	sales     map[uuid.UUID]model.Sale
	movements []model.StockMovement
}

func (m *memStore) snapshot() memSnapshot {
	s := memSnapshot{
		products:  make(map[string]model.Product, len(m.products)),
		sites:     make(map[string]model.Site, len(m.sites)),
		stock:     make(map[stockKey]int, len(m.stock)),
		sales:     make(map[uuid.UUID]model.Sale, len(m.sales)),
		movements: append([]model.StockMovement(nil), m.movements...),
	}
	for k, v := range m.products {
		s.products[k] = v
	}
	for k, v := range m.sites {
		s.sites[k] = v
	}
	for k, v := range m.stock {
		s.stock[k] = v
	}
	for k, v := range m.sales {
		v.Items = append([]model.SaleItem(nil), v.Items...)
		s.sales[k] = v
	}
	return s
}

func (m *memStore) restore(s memSnapshot) {
	m.products, m.sites, m.stock, m.sales, m.movements = s.products, s.sites, s.stock, s.sales, s.movements
}

func (m *memStore) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := m.snapshot()
	if err := fn(nil); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

func (m *memStore) siteByID(id uuid.UUID) *model.Site {
	for _, s := range m.sites {
		if s.ID == id {
			site := s
			return &site
		}
	}
	return nil
}

// ── seeding helpers ───────────────────────────────────────────────────────────

func (m *memStore) addProduct(id, name, barcode, price string) {
	p := model.Product{ID: id, Name: name, Category: "General", Price: decimal.RequireFromString(price), CreatedAt: m.tick()}
	if barcode != "" {
		p.Barcode = &barcode
	}
	m.products[id] = p
}

func (m *memStore) addSite(name string) model.Site {
	s := model.Site{ID: uuid.New(), Name: name, CreatedAt: m.tick()}
	m.sites[name] = s
	return s
}

func (m *memStore) setStock(product string, site model.Site, qty int) {
	m.stock[stockKey{product, site.ID}] = qty
}

func (m *memStore) qty(product, siteName string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stock[stockKey{product, m.sites[siteName].ID}]
}

// ── products ──────────────────────────────────────────────────────────────────

type memProducts struct{ *memStore }

func (r memProducts) CreateTx(_ *gorm.DB, p *model.Product) error {
	if _, ok := r.products[p.ID]; ok {
		return repository.ErrDuplicate
	}
	if p.Barcode != nil {
		for _, other := range r.products {
			if other.Barcode != nil && *other.Barcode == *p.Barcode {
				return repository.ErrDuplicate
			}
		}
	}
	p.CreatedAt = r.tick()
	r.products[p.ID] = *p
	return nil
}

func (r memProducts) FindByIDTx(_ *gorm.DB, id string) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r memProducts) FindByBarcode(_ context.Context, barcode string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Barcode != nil && *p.Barcode == barcode {
			return &p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r memProducts) Search(_ context.Context, query string) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q := strings.ToLower(strings.TrimSpace(query))
	var out []model.Product
	for _, p := range r.products {
		barcode := ""
		if p.Barcode != nil {
			barcode = *p.Barcode
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(p.ID), q) &&
			!strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(barcode), q) {
			continue
		}
		p.Stock = nil
		for k, qty := range r.stock {
			if k.product == p.ID {
				p.Stock = append(p.Stock, model.Stock{ProductID: p.ID, SiteID: k.site, Qty: qty, Site: r.siteByID(k.site)})
			}
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// ── sites ─────────────────────────────────────────────────────────────────────

type memSites struct{ *memStore }

func (r memSites) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.sites)), nil
}

func (r memSites) Create(_ context.Context, s *model.Site) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sites[s.Name]; ok {
		return repository.ErrDuplicate
	}
	s.ID = uuid.New()
	s.CreatedAt = r.tick()
	r.sites[s.Name] = *s
	return nil
}

func (r memSites) FindOrCreateTx(_ *gorm.DB, name string) (*model.Site, error) {
	if s, ok := r.sites[name]; ok {
		return &s, nil
	}
	s := r.addSite(name)
	return &s, nil
}

// ── stock ─────────────────────────────────────────────────────────────────────

type memStock struct{ *memStore }

func (r memStock) ReserveTx(_ *gorm.DB, productID string, siteID uuid.UUID, qty int) (int, error) {
	r.locked = append(r.locked, productID)
	k := stockKey{productID, siteID}
	onHand := r.stock[k]
	if onHand < qty {
		return onHand, repository.ErrInsufficientStock
	}
	r.stock[k] = onHand - qty
	return onHand - qty, nil
}

func (r memStock) AddTx(_ *gorm.DB, productID string, siteID uuid.UUID, qty int) error {
	r.locked = append(r.locked, productID)
	r.stock[stockKey{productID, siteID}] += qty
	return nil
}

// ── sales ─────────────────────────────────────────────────────────────────────

type memSales struct{ *memStore }

func (r memSales) CreateTx(_ *gorm.DB, s *model.Sale) error {
	for _, other := range r.sales {
		if other.Folio == s.Folio {
			return repository.ErrDuplicate
		}
	}
	s.CreatedAt = r.tick()
	stored := *s
	stored.Items = append([]model.SaleItem(nil), s.Items...)
	stored.Site = nil
	r.sales[s.ID] = stored
	return nil
}

func (r memSales) load(s model.Sale) *model.Sale {
	s.Items = append([]model.SaleItem(nil), s.Items...)
	sort.Slice(s.Items, func(i, j int) bool { return s.Items[i].Position < s.Items[j].Position })
	if s.SiteID != nil {
		s.Site = r.siteByID(*s.SiteID)
	}
	return &s
}

func (r memSales) FindByID(_ context.Context, id uuid.UUID) (*model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sales[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.load(s), nil
}

func (r memSales) MarkCancelledTx(_ *gorm.DB, id uuid.UUID) (bool, error) {
	s, ok := r.sales[id]
	if !ok {
		return false, repository.ErrNotFound
	}
	if r.failCancel || s.Status != model.StatusCompletada {
		return false, nil
	}
	s.Status = model.StatusCancelada
	r.sales[id] = s
	return true, nil
}

func (r memSales) List(_ context.Context, f dto.SaleFilter) ([]model.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Sale
	for _, s := range r.sales {
		loaded := r.load(s)
		if f.Status != "" && loaded.Status != f.Status {
			continue
		}
		if f.Site != "" && (loaded.Site == nil || loaded.Site.Name != f.Site) {
			continue
		}
		loaded.Items = nil
		out = append(out, *loaded)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// ── movements ─────────────────────────────────────────────────────────────────

type memMovements struct{ *memStore }

func (r memMovements) CreateTx(_ *gorm.DB, m *model.StockMovement) error {
	m.CreatedAt = r.tick()
	r.movements = append(r.movements, *m)
	return nil
}

func (r memMovements) List(_ context.Context, f repository.StockMovementFilter) ([]model.StockMovement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockMovement
	for i := len(r.movements) - 1; i >= 0; i-- {
		m := r.movements[i]
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.Kind != "" && m.Kind != f.Kind {
			continue
		}
		m.Site = r.siteByID(m.SiteID)
		out = append(out, m)
	}
	return out, nil
}

// ── wiring ────────────────────────────────────────────────────────────────────

const testPIN = "1111"

func newTestPINGuard() *PINGuard {
	hash, err := bcrypt.GenerateFromPassword([]byte(testPIN), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return NewPINGuard(hash)
}

func newSaleServiceFor(m *memStore) SaleService {
	return NewSaleService(m, memSales{m}, memProducts{m}, memSites{m}, memStock{m}, memMovements{m},
		newTestPINGuard(), SaleOptions{
			DefaultSite: "Principal",
			Tolerance:   decimal.RequireFromString("0.01"),
			Now:         func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) },
		})
}
