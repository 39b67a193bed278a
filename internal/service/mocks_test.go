package service

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/fjod/artverse/internal/cache"
	"github.com/fjod/artverse/internal/domain"
	"github.com/fjod/artverse/internal/events"
	"github.com/fjod/artverse/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	nopLog  = zap.NewNop()
	pageOne = repository.Page{Page: 1}
)

type mockUsers struct {
	m     sync.Mutex
	users map[primitive.ObjectID]*domain.User
	err   error
}

func newMockUsers(users ...*domain.User) *mockUsers {
	r := &mockUsers{users: map[primitive.ObjectID]*domain.User{}}
	for _, u := range users {
		if u.ID.IsZero() {
			u.ID = primitive.NewObjectID()
		}
		r.users[u.ID] = u
	}
	return r
}

func (m *mockUsers) Create(_ context.Context, u *domain.User) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	u.ID = primitive.NewObjectID()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUsers) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.m.Lock()
	defer m.m.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockUsers) Update(_ context.Context, u *domain.User) error {
	m.m.Lock()
	defer m.m.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockUsers) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	m.m.Lock()
	defer m.m.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *mockUsers) List(_ context.Context, f repository.UserFilter) ([]domain.User, int64, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var out []domain.User
	for _, u := range m.users {
		if f.Role == "" || u.Role == f.Role {
			out = append(out, *u)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockUsers) SetRole(_ context.Context, id primitive.ObjectID, role domain.Role) error {
	m.m.Lock()
	defer m.m.Unlock()
	u, ok := m.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.Role = role
	return nil
}

func (m *mockUsers) Delete(_ context.Context, id primitive.ObjectID) error {
	m.m.Lock()
	defer m.m.Unlock()
	if _, ok := m.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *mockUsers) CountByRole(context.Context) (map[domain.Role]int64, error) {
	m.m.Lock()
	defer m.m.Unlock()
	out := map[domain.Role]int64{}
	for _, u := range m.users {
		out[u.Role]++
	}
	return out, nil
}

type mockArtworks struct {
	m        sync.Mutex
	artworks map[primitive.ObjectID]*domain.Artwork
	views    int
	err      error
	// beforeUpdate runs at the start of Update, standing in for a write
	// that lands between the service's read and its update.
	beforeUpdate func()
}

func newMockArtworks(artworks ...*domain.Artwork) *mockArtworks {
	r := &mockArtworks{artworks: map[primitive.ObjectID]*domain.Artwork{}}
	for _, a := range artworks {
		if a.ID.IsZero() {
			a.ID = primitive.NewObjectID()
		}
		cp := *a
		r.artworks[a.ID] = &cp
	}
	return r
}

func (m *mockArtworks) get(id primitive.ObjectID) *domain.Artwork {
	m.m.Lock()
	defer m.m.Unlock()
	return m.artworks[id]
}

func (m *mockArtworks) Create(_ context.Context, a *domain.Artwork) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	a.ID = primitive.NewObjectID()
	a.CreatedAt = time.Now().UTC()
	cp := *a
	m.artworks[a.ID] = &cp
	return nil
}

func (m *mockArtworks) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Artwork, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	a, ok := m.artworks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockArtworks) List(_ context.Context, f repository.ArtworkFilter) ([]domain.Artwork, int64, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var out []domain.Artwork
	for _, a := range m.artworks {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.ArtistID != nil && a.ArtistID != *f.ArtistID {
			continue
		}
		out = append(out, *a)
	}
	return out, int64(len(out)), nil
}

func (m *mockArtworks) Update(_ context.Context, id primitive.ObjectID, expect domain.ArtworkStatus, p repository.ArtworkPatch) (*domain.Artwork, error) {
	if m.beforeUpdate != nil {
		m.beforeUpdate()
	}
	m.m.Lock()
	defer m.m.Unlock()
	a, ok := m.artworks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if a.Status != expect {
		return nil, repository.ErrStaleStatus
	}
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Category != nil {
		a.Category = *p.Category
	}
	if p.Medium != nil {
		a.Medium = *p.Medium
	}
	if p.Dimensions != nil {
		a.Dimensions = p.Dimensions
	}
	if p.Price != nil {
		a.Price = *p.Price
	}
	if p.Stock != nil {
		a.Stock = *p.Stock
	}
	if p.Images != nil {
		a.Images = p.Images
	}
	if p.Tags != nil {
		a.Tags = p.Tags
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.ClearReviewNote {
		a.ReviewNote = ""
	}
	cp := *a
	return &cp, nil
}

func (m *mockArtworks) SetStatus(_ context.Context, id primitive.ObjectID, status domain.ArtworkStatus, note string) error {
	m.m.Lock()
	defer m.m.Unlock()
	a, ok := m.artworks[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Status = status
	a.ReviewNote = note
	return nil
}

func (m *mockArtworks) Delete(_ context.Context, id primitive.ObjectID) error {
	m.m.Lock()
	defer m.m.Unlock()
	if _, ok := m.artworks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.artworks, id)
	return nil
}

func (m *mockArtworks) IncrementViews(_ context.Context, id primitive.ObjectID) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.views++
	if a, ok := m.artworks[id]; ok {
		a.Views++
	}
	return nil
}

func (m *mockArtworks) DecrementStock(_ context.Context, id primitive.ObjectID, qty int) error {
	m.m.Lock()
	defer m.m.Unlock()
	a, ok := m.artworks[id]
	if !ok || a.Status != domain.ArtworkStatusApproved || a.Stock < qty {
		return repository.ErrInsufficientStock
	}
	a.Stock -= qty
	if a.Stock == 0 {
		a.Status = domain.ArtworkStatusSold
	}
	return nil
}

func (m *mockArtworks) RestoreStock(_ context.Context, id primitive.ObjectID, qty int) error {
	m.m.Lock()
	defer m.m.Unlock()
	a, ok := m.artworks[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.Stock += qty
	if a.Status == domain.ArtworkStatusSold {
		a.Status = domain.ArtworkStatusApproved
	}
	return nil
}

func (m *mockArtworks) CountByStatus(_ context.Context, artistID *primitive.ObjectID) (map[domain.ArtworkStatus]int64, error) {
	m.m.Lock()
	defer m.m.Unlock()
	out := map[domain.ArtworkStatus]int64{}
	for _, a := range m.artworks {
		if artistID == nil || a.ArtistID == *artistID {
			out[a.Status]++
		}
	}
	return out, nil
}

type mockCourses struct {
	m       sync.Mutex
	courses map[primitive.ObjectID]*domain.Course
}

func newMockCourses(courses ...*domain.Course) *mockCourses {
	r := &mockCourses{courses: map[primitive.ObjectID]*domain.Course{}}
	for _, c := range courses {
		if c.ID.IsZero() {
			c.ID = primitive.NewObjectID()
		}
		cp := *c
		r.courses[c.ID] = &cp
	}
	return r
}

func (m *mockCourses) get(id primitive.ObjectID) *domain.Course {
	m.m.Lock()
	defer m.m.Unlock()
	return m.courses[id]
}

func (m *mockCourses) Create(_ context.Context, c *domain.Course) error {
	m.m.Lock()
	defer m.m.Unlock()
	c.ID = primitive.NewObjectID()
	cp := *c
	m.courses[c.ID] = &cp
	return nil
}

func (m *mockCourses) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Course, error) {
	m.m.Lock()
	defer m.m.Unlock()
	c, ok := m.courses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	cp.Students = slices.Clone(c.Students)
	cp.Lessons = slices.Clone(c.Lessons)
	cp.StudentCount = len(c.Students)
	return &cp, nil
}

func (m *mockCourses) List(_ context.Context, f repository.CourseFilter) ([]domain.Course, int64, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var out []domain.Course
	for _, c := range m.courses {
		if f.InstructorID != nil && c.InstructorID != *f.InstructorID {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		cp := *c
		cp.StudentCount = len(c.Students)
		cp.Lessons = slices.Clone(c.Lessons)
		out = append(out, cp)
	}
	return out, int64(len(out)), nil
}

func (m *mockCourses) Update(_ context.Context, c *domain.Course) error {
	m.m.Lock()
	defer m.m.Unlock()
	if _, ok := m.courses[c.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *c
	m.courses[c.ID] = &cp
	return nil
}

func (m *mockCourses) SetStatus(_ context.Context, id primitive.ObjectID, status domain.CourseStatus, note string) error {
	m.m.Lock()
	defer m.m.Unlock()
	c, ok := m.courses[id]
	if !ok {
		return repository.ErrNotFound
	}
	c.Status = status
	c.ReviewNote = note
	return nil
}

func (m *mockCourses) Delete(_ context.Context, id primitive.ObjectID) error {
	m.m.Lock()
	defer m.m.Unlock()
	if _, ok := m.courses[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.courses, id)
	return nil
}

func (m *mockCourses) Enroll(_ context.Context, courseID, userID primitive.ObjectID) error {
	m.m.Lock()
	defer m.m.Unlock()
	c, ok := m.courses[courseID]
	if !ok {
		return repository.ErrNotFound
	}
	if !slices.Contains(c.Students, userID) {
		c.Students = append(c.Students, userID)
	}
	return nil
}

func (m *mockCourses) CountByStatus(_ context.Context, instructorID *primitive.ObjectID) (map[domain.CourseStatus]int64, error) {
	m.m.Lock()
	defer m.m.Unlock()
	out := map[domain.CourseStatus]int64{}
	for _, c := range m.courses {
		if instructorID == nil || c.InstructorID == *instructorID {
			out[c.Status]++
		}
	}
	return out, nil
}

type mockCommissions struct {
	m           sync.Mutex
	commissions map[primitive.ObjectID]*domain.Commission
}

func newMockCommissions(cs ...*domain.Commission) *mockCommissions {
	r := &mockCommissions{commissions: map[primitive.ObjectID]*domain.Commission{}}
	for _, c := range cs {
		if c.ID.IsZero() {
			c.ID = primitive.NewObjectID()
		}
		cp := *c
		r.commissions[c.ID] = &cp
	}
	return r
}

func (m *mockCommissions) Create(_ context.Context, c *domain.Commission) error {
	m.m.Lock()
	defer m.m.Unlock()
	c.ID = primitive.NewObjectID()
	cp := *c
	m.commissions[c.ID] = &cp
	return nil
}

func (m *mockCommissions) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Commission, error) {
	m.m.Lock()
	defer m.m.Unlock()
	c, ok := m.commissions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockCommissions) List(_ context.Context, f repository.CommissionFilter) ([]domain.Commission, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var out []domain.Commission
	for _, c := range m.commissions {
		switch {
		case f.BuyerID != nil && f.ArtistID != nil:
			if c.BuyerID != *f.BuyerID && c.ArtistID != *f.ArtistID {
				continue
			}
		case f.BuyerID != nil:
			if c.BuyerID != *f.BuyerID {
				continue
			}
		case f.ArtistID != nil:
			if c.ArtistID != *f.ArtistID {
				continue
			}
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (m *mockCommissions) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to domain.CommissionStatus, note string) error {
	m.m.Lock()
	defer m.m.Unlock()
	c, ok := m.commissions[id]
	if !ok {
		return repository.ErrNotFound
	}
	if c.Status != from {
		return repository.ErrStaleStatus
	}
	c.Status = to
	c.ArtistNote = note
	return nil
}

type mockOrders struct {
	m      sync.Mutex
	orders []*domain.Order
	err    error
}

func (m *mockOrders) Create(_ context.Context, o *domain.Order) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	o.ID = primitive.NewObjectID()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	cp := *o
	m.orders = append(m.orders, &cp)
	return nil
}

func (m *mockOrders) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	for _, o := range m.orders {
		if o.ID == id {
			cp := *o
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

// List returns matching orders newest first, like the Mongo repository.
func (m *mockOrders) List(_ context.Context, f repository.OrderFilter) ([]domain.Order, int64, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var out []domain.Order
	for i := len(m.orders) - 1; i >= 0; i-- {
		o := m.orders[i]
		if f.BuyerID != nil && o.BuyerID != *f.BuyerID {
			continue
		}
		if f.ArtistID != nil && !o.InvolvesArtist(*f.ArtistID) {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, int64(len(out)), nil
}

func (m *mockOrders) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to domain.OrderStatus, payment domain.PaymentStatus) error {
	m.m.Lock()
	defer m.m.Unlock()
	for _, o := range m.orders {
		if o.ID != id {
			continue
		}
		if o.Status != from {
			return repository.ErrStaleStatus
		}
		o.Status = to
		if payment != "" {
			o.PaymentStatus = payment
		}
		return nil
	}
	return repository.ErrNotFound
}

func (m *mockOrders) Stats(context.Context) (repository.OrderStats, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var s repository.OrderStats
	for _, o := range m.orders {
		if o.Status == domain.OrderStatusCancelled {
			continue
		}
		s.Orders++
		s.Revenue += o.TotalAmount
	}
	return s, nil
}

type mockCarts struct {
	m     sync.Mutex
	carts map[primitive.ObjectID]*domain.Cart
	gets  int
	err   error
}

func newMockCarts() *mockCarts {
	return &mockCarts{carts: map[primitive.ObjectID]*domain.Cart{}}
}

func (m *mockCarts) getCalls() int {
	m.m.Lock()
	defer m.m.Unlock()
	return m.gets
}

func (m *mockCarts) GetCart(_ context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.gets++
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	cp := *c
	cp.Items = slices.Clone(c.Items)
	return &cp, nil
}

func (m *mockCarts) AddItem(_ context.Context, userID primitive.ObjectID, item domain.CartItem) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	c, ok := m.carts[userID]
	if !ok {
		c = &domain.Cart{UserID: userID}
		m.carts[userID] = c
	}
	for i := range c.Items {
		if c.Items[i].ItemID == item.ItemID {
			c.Items[i].Quantity += item.Quantity
			c.Items[i].Price = item.Price
			return nil
		}
	}
	c.Items = append(c.Items, item)
	return nil
}

func (m *mockCarts) UpdateItemQuantity(_ context.Context, userID, itemID primitive.ObjectID, quantity int) error {
	m.m.Lock()
	defer m.m.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return repository.ErrItemNotFound
	}
	for i := range c.Items {
		if c.Items[i].ItemID == itemID {
			c.Items[i].Quantity = quantity
			return nil
		}
	}
	return repository.ErrItemNotFound
}

func (m *mockCarts) RemoveItem(_ context.Context, userID, itemID primitive.ObjectID) error {
	m.m.Lock()
	defer m.m.Unlock()
	c, ok := m.carts[userID]
	if !ok {
		return repository.ErrItemNotFound
	}
	for i, it := range c.Items {
		if it.ItemID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
	}
	return repository.ErrItemNotFound
}

func (m *mockCarts) DeleteCart(_ context.Context, userID primitive.ObjectID) error {
	m.m.Lock()
	defer m.m.Unlock()
	if _, ok := m.carts[userID]; !ok {
		return repository.ErrCartNotFound
	}
	delete(m.carts, userID)
	return nil
}

type mockWishlists struct {
	m     sync.Mutex
	lists map[primitive.ObjectID]*domain.Wishlist
}

func newMockWishlists() *mockWishlists {
	return &mockWishlists{lists: map[primitive.ObjectID]*domain.Wishlist{}}
}

func (m *mockWishlists) GetWishlist(_ context.Context, userID primitive.ObjectID) (*domain.Wishlist, error) {
	m.m.Lock()
	defer m.m.Unlock()
	w, ok := m.lists[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *w
	cp.Items = slices.Clone(w.Items)
	return &cp, nil
}

func (m *mockWishlists) AddItem(_ context.Context, userID primitive.ObjectID, item domain.WishlistItem) error {
	m.m.Lock()
	defer m.m.Unlock()
	w, ok := m.lists[userID]
	if !ok {
		w = &domain.Wishlist{UserID: userID}
		m.lists[userID] = w
	}
	if w.Contains(item.ItemID) {
		return repository.ErrDuplicate
	}
	w.Items = append(w.Items, item)
	return nil
}

func (m *mockWishlists) RemoveItem(_ context.Context, userID, itemID primitive.ObjectID) error {
	m.m.Lock()
	defer m.m.Unlock()
	w, ok := m.lists[userID]
	if !ok {
		return repository.ErrItemNotFound
	}
	for i, it := range w.Items {
		if it.ItemID == itemID {
			w.Items = append(w.Items[:i], w.Items[i+1:]...)
			return nil
		}
	}
	return repository.ErrItemNotFound
}

type mockNotifications struct {
	m     sync.Mutex
	items []*domain.Notification
}

func (m *mockNotifications) Create(_ context.Context, n *domain.Notification) error {
	m.m.Lock()
	defer m.m.Unlock()
	n.ID = primitive.NewObjectID()
	cp := *n
	m.items = append(m.items, &cp)
	return nil
}

func (m *mockNotifications) List(_ context.Context, userID primitive.ObjectID, unreadOnly bool, _ repository.Page) ([]domain.Notification, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var out []domain.Notification
	for _, n := range m.items {
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (m *mockNotifications) MarkRead(_ context.Context, id, userID primitive.ObjectID) error {
	m.m.Lock()
	defer m.m.Unlock()
	for _, n := range m.items {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *mockNotifications) MarkAllRead(_ context.Context, userID primitive.ObjectID) (int64, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var n int64
	for _, it := range m.items {
		if it.UserID == userID && !it.Read {
			it.Read = true
			n++
		}
	}
	return n, nil
}

func (m *mockNotifications) Delete(_ context.Context, id, userID primitive.ObjectID) error {
	m.m.Lock()
	defer m.m.Unlock()
	for i, n := range m.items {
		if n.ID == id && n.UserID == userID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (m *mockNotifications) CountUnread(_ context.Context, userID primitive.ObjectID) (int64, error) {
	m.m.Lock()
	defer m.m.Unlock()
	var n int64
	for _, it := range m.items {
		if it.UserID == userID && !it.Read {
			n++
		}
	}
	return n, nil
}

type mockCache struct {
	m     sync.RWMutex
	carts map[primitive.ObjectID]*domain.Cart
	err   error
}

func newMockCache() *mockCache {
	return &mockCache{carts: map[primitive.ObjectID]*domain.Cart{}}
}

func (m *mockCache) Get(_ context.Context, userID primitive.ObjectID) (*domain.Cart, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.carts[userID]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return c, nil
}

func (m *mockCache) Set(_ context.Context, userID primitive.ObjectID, cart *domain.Cart) error {
	m.m.Lock()
	defer m.m.Unlock()
	m.carts[userID] = cart
	return m.err
}

func (m *mockCache) Delete(_ context.Context, userID primitive.ObjectID) error {
	m.m.Lock()
	defer m.m.Unlock()
	delete(m.carts, userID)
	return nil
}

func (m *mockCache) getCart(userID primitive.ObjectID) *domain.Cart {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.carts[userID]
}

type recordingPublisher struct {
	m      sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evts ...events.Event) error {
	p.m.Lock()
	defer p.m.Unlock()
	p.events = append(p.events, evts...)
	return nil
}

func (p *recordingPublisher) recipients(t events.Type) []primitive.ObjectID {
	p.m.Lock()
	defer p.m.Unlock()
	var out []primitive.ObjectID
	for _, e := range p.events {
		if e.Type == t {
			out = append(out, e.RecipientID)
		}
	}
	return out
}

func principal(role domain.Role) Principal {
	return Principal{UserID: primitive.NewObjectID(), Role: role}
}

func approvedArtwork(artist primitive.ObjectID, price float64, stock int) *domain.Artwork {
	return &domain.Artwork{
		ID:       primitive.NewObjectID(),
		ArtistID: artist,
		Title:    "Harbor at Dusk",
		Category: "painting",
		Price:    price,
		Stock:    stock,
		Status:   domain.ArtworkStatusApproved,
	}
}

func approvedCourse(instructor primitive.ObjectID, price float64) *domain.Course {
	return &domain.Course{
		ID:           primitive.NewObjectID(),
		InstructorID: instructor,
		Title:        "Watercolor Basics",
		Category:     "painting",
		Level:        domain.CourseLevelBeginner,
		Price:        price,
		Status:       domain.CourseStatusApproved,
		Lessons: []domain.CourseLesson{
			{Title: "Intro", VideoURL: "https://videos.example.com/1", Preview: true},
			{Title: "Washes", VideoURL: "https://videos.example.com/2"},
		},
	}
}
