package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fjod/artverse/internal/auth"
	"github.com/fjod/artverse/internal/cache"
	"github.com/fjod/artverse/internal/domain"
	"github.com/fjod/artverse/internal/repository"
	"github.com/fjod/artverse/internal/service"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	testCookie  = "token"
	testMaxBody = 1 << 20
)

var (
	nopLog     = zap.NewNop()
	testTokens = auth.NewTokenManager("handler-test-secret-0123456789", time.Hour)
)

type testEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
}

// principal returns a new signed-up user of the given role.
func principal(role domain.Role) service.Principal {
	p := service.Principal{UserID: primitive.NewObjectID(), Role: role}
	testUsers.add(p)
	return p
}

var testUsers = &userDirectory{users: map[primitive.ObjectID]domain.User{}}

// userDirectory is the account store the test router checks tokens
// against.
type userDirectory struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]domain.User
}

func (d *userDirectory) add(p service.Principal) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[p.UserID] = domain.User{ID: p.UserID, Name: "Test User", Role: p.Role}
}

func (d *userDirectory) setRole(id primitive.ObjectID, role domain.Role) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u := d.users[id]
	u.Role = role
	d.users[id] = u
}

func (d *userDirectory) remove(id primitive.ObjectID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.users, id)
}

func (d *userDirectory) GetByID(_ context.Context, id primitive.ObjectID) (*domain.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

type failingLookup struct{ err error }

func (f failingLookup) GetByID(context.Context, primitive.ObjectID) (*domain.User, error) {
	return nil, f.err
}

// testHandlers wires every handler to a fake. Tests replace the ones they
// exercise.
func testHandlers() Handlers {
	return Handlers{
		Auth:          NewAuthHandler(&fakeAuth{}, CookieConfig{Name: testCookie}, testMaxBody, nopLog),
		Users:         NewUserHandler(&fakeUsers{}, testMaxBody, nopLog),
		Artworks:      NewArtworkHandler(&fakeArtworks{}, testMaxBody, nopLog),
		Courses:       NewCourseHandler(&fakeCourses{}, testMaxBody, nopLog),
		Commissions:   NewCommissionHandler(&fakeCommissions{}, testMaxBody, nopLog),
		Orders:        NewOrderHandler(&fakeOrders{}, testMaxBody, nopLog),
		Cart:          NewCartHandler(&fakeCart{}, testMaxBody, nopLog),
		Wishlist:      NewWishlistHandler(&fakeWishlist{}, testMaxBody, nopLog),
		Notifications: NewNotificationHandler(&fakeNotifications{}, nopLog),
		Dashboard:     NewDashboardHandler(&fakeDashboard{}, nopLog),
		Uploads:       NewUploadHandler(&fakeUploads{}, testMaxBody, nopLog),
	}
}

func newTestRouter(h Handlers) http.Handler {
	return NewRouter(RouterConfig{
		Tokens:         testTokens,
		Users:          testUsers,
		CookieName:     testCookie,
		CORSOrigins:    []string{"http://localhost:5173"},
		RequestTimeout: 5 * time.Second,
		Log:            nopLog,
	}, h)
}

// do sends a request through h. A non-nil p is signed in with the auth
// cookie.
func do(t *testing.T, h http.Handler, method, target string, body any, p *service.Principal) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if p != nil {
		token, _, err := testTokens.Issue(p.UserID, p.Role)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: testCookie, Value: token})
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newJSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env), "body: %s", rec.Body.String())
	return env
}

// Repository stubs behind the real services. Methods not overridden panic
// through the embedded nil interface.

type artworkRepoStub struct {
	repository.ArtworkRepository
	mu      sync.Mutex
	byID    map[primitive.ObjectID]*domain.Artwork
	created []*domain.Artwork
	list    []domain.Artwork
	total   int64
	filter  repository.ArtworkFilter
}

func newArtworkRepoStub(artworks ...*domain.Artwork) *artworkRepoStub {
	s := &artworkRepoStub{byID: make(map[primitive.ObjectID]*domain.Artwork)}
	for _, a := range artworks {
		s.byID[a.ID] = a
	}
	return s
}

func (s *artworkRepoStub) Create(_ context.Context, a *domain.Artwork) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = primitive.NewObjectID()
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	s.created = append(s.created, a)
	s.byID[a.ID] = a
	return nil
}

func (s *artworkRepoStub) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Artwork, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (s *artworkRepoStub) List(_ context.Context, f repository.ArtworkFilter) ([]domain.Artwork, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
	return s.list, s.total, nil
}

type courseRepoStub struct {
	repository.CourseRepository
}

func (courseRepoStub) GetByID(context.Context, primitive.ObjectID) (*domain.Course, error) {
	return nil, repository.ErrNotFound
}

type wishlistRepoStub struct {
	mu    sync.Mutex
	lists map[primitive.ObjectID]*domain.Wishlist
}

func newWishlistRepoStub() *wishlistRepoStub {
	return &wishlistRepoStub{lists: make(map[primitive.ObjectID]*domain.Wishlist)}
}

func (s *wishlistRepoStub) GetWishlist(_ context.Context, userID primitive.ObjectID) (*domain.Wishlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.lists[userID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *w
	cp.Items = append([]domain.WishlistItem(nil), w.Items...)
	return &cp, nil
}

func (s *wishlistRepoStub) AddItem(_ context.Context, userID primitive.ObjectID, item domain.WishlistItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.lists[userID]
	if !ok {
		w = &domain.Wishlist{ID: primitive.NewObjectID(), UserID: userID}
		s.lists[userID] = w
	}
	if w.Contains(item.ItemID) {
		return repository.ErrDuplicate
	}
	item.AddedAt = time.Now().UTC()
	w.Items = append(w.Items, item)
	return nil
}

func (s *wishlistRepoStub) RemoveItem(_ context.Context, userID, itemID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.lists[userID]
	if !ok || !w.Contains(itemID) {
		return repository.ErrItemNotFound
	}
	for i, it := range w.Items {
		if it.ItemID == itemID {
			w.Items = append(w.Items[:i], w.Items[i+1:]...)
			break
		}
	}
	return nil
}

func newWishlistService(artworks *artworkRepoStub, repo *wishlistRepoStub) *service.WishlistService {
	carts := service.NewCartService(nil, cache.NoopCache{}, artworks, courseRepoStub{}, nopLog)
	return service.NewWishlistService(repo, carts, nopLog)
}

// Service fakes for handlers whose tests only care about the HTTP mapping.

type fakeAuth struct {
	AuthService
	session *service.Session
	me      *domain.User
	err     error
}

func (f *fakeAuth) Register(context.Context, service.RegisterInput) (*service.Session, error) {
	return f.session, f.err
}

func (f *fakeAuth) Login(context.Context, service.LoginInput) (*service.Session, error) {
	return f.session, f.err
}

func (f *fakeAuth) Me(_ context.Context, p service.Principal) (*domain.User, error) {
	if f.me == nil || f.me.ID != p.UserID {
		return nil, service.ErrUnauthorized
	}
	return f.me, nil
}

type fakeUsers struct{ UserService }

type fakeArtworks struct{ ArtworkService }

type fakeCourses struct {
	CourseService
	archived bool
}

func (f *fakeCourses) Delete(context.Context, service.Principal, string) (bool, error) {
	return f.archived, nil
}

type fakeCommissions struct {
	CommissionService
	byID map[string]*domain.Commission
}

func (f *fakeCommissions) Get(_ context.Context, p service.Principal, id string) (*domain.Commission, error) {
	c, ok := f.byID[id]
	if !ok || !p.Owns(c.BuyerID) && !p.Owns(c.ArtistID) {
		return nil, &service.Error{Kind: service.KindNotFound, Message: "commission not found"}
	}
	return c, nil
}

type fakeOrders struct {
	OrderService
	err error
}

func (f *fakeOrders) PlaceOrder(context.Context, service.Principal, service.PlaceOrderInput) (*domain.Order, error) {
	return nil, f.err
}

type fakeCart struct {
	CartService
	cleared []primitive.ObjectID
}

func (f *fakeCart) Clear(_ context.Context, userID primitive.ObjectID) error {
	f.cleared = append(f.cleared, userID)
	return nil
}

type fakeWishlist struct{ WishlistService }

type fakeNotifications struct {
	NotificationService
	unread int64
}

func (f *fakeNotifications) List(context.Context, service.Principal, bool, repository.Page) ([]domain.Notification, int64, error) {
	return nil, f.unread, nil
}

type fakeDashboard struct{ DashboardService }

func (fakeDashboard) AdminStats(context.Context, service.Principal) (*service.AdminStats, error) {
	return &service.AdminStats{Orders: 3, Revenue: 42.5}, nil
}

type fakeUploads struct {
	filename string
	body     []byte
}

func (f *fakeUploads) UploadImage(_ context.Context, _ service.Principal, r io.Reader, filename string) (*service.UploadedImage, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.filename = filename
	f.body = data
	return &service.UploadedImage{ID: "img-1", URL: "https://imagedelivery.net/hash/img-1/public"}, nil
}
