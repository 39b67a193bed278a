package service

import (
	"context"
	"time"

	"github.com/fjod/artverse/internal/domain"
	"github.com/fjod/artverse/internal/repository"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	dashboardMonths = 12
	recentSales     = 5
)

type MonthlyRevenue struct {
	Month   string  `json:"month"` // YYYY-MM
	Revenue float64 `json:"revenue"`
	Orders  int     `json:"orders"`
}

type Sale struct {
	OrderID   primitive.ObjectID `json:"order_id"`
	BuyerID   primitive.ObjectID `json:"buyer_id"`
	Items     []domain.OrderItem `json:"items"`
	Amount    float64            `json:"amount"`
	Status    domain.OrderStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
}

type ArtistStats struct {
	Artworks       map[domain.ArtworkStatus]int64    `json:"artworks"`
	Courses        map[domain.CourseStatus]int64     `json:"courses"`
	Students       int                               `json:"students"`
	Commissions    map[domain.CommissionStatus]int64 `json:"commissions"`
	ItemsSold      int                               `json:"items_sold"`
	Orders         int                               `json:"orders"`
	Revenue        float64                           `json:"revenue"`
	MonthlyRevenue []MonthlyRevenue                  `json:"monthly_revenue"`
	RecentSales    []Sale                            `json:"recent_sales"`
}

type AdminStats struct {
	Users    map[domain.Role]int64          `json:"users"`
	Artworks map[domain.ArtworkStatus]int64 `json:"artworks"`
	Courses  map[domain.CourseStatus]int64  `json:"courses"`
	Orders   int64                          `json:"orders"`
	Revenue  float64                        `json:"revenue"`
}

type DashboardService struct {
	users       repository.UserRepository
	artworks    repository.ArtworkRepository
	courses     repository.CourseRepository
	commissions repository.CommissionRepository
	orders      repository.OrderRepository
	log         *zap.Logger
	now         func() time.Time
}

func NewDashboardService(store *repository.Store, log *zap.Logger) *DashboardService {
	return &DashboardService{
		users:       store.Users,
		artworks:    store.Artworks,
		courses:     store.Courses,
		commissions: store.Commissions,
		orders:      store.Orders,
		log:         log,
		now:         time.Now,
	}
}

// ArtistStats summarises the caller's catalogue and sales. Cancelled orders
// do not count towards revenue.
func (s *DashboardService) ArtistStats(ctx context.Context, p Principal) (*ArtistStats, error) {
	if err := requireRole(p, domain.RoleArtist, domain.RoleAdmin); err != nil {
		return nil, err
	}
	artistID := p.UserID
	stats := &ArtistStats{Commissions: map[domain.CommissionStatus]int64{}}

	var err error
	if stats.Artworks, err = s.artworks.CountByStatus(ctx, &artistID); err != nil {
		s.log.Error("repo count artworks error", zap.Error(err))
		return nil, err
	}
	if stats.Courses, err = s.courses.CountByStatus(ctx, &artistID); err != nil {
		s.log.Error("repo count courses error", zap.Error(err))
		return nil, err
	}
	if stats.Students, err = s.countStudents(ctx, artistID); err != nil {
		return nil, err
	}

	commissions, err := s.commissions.List(ctx, repository.CommissionFilter{ArtistID: &artistID})
	if err != nil {
		s.log.Error("repo list commissions error", zap.Error(err))
		return nil, err
	}
	for _, c := range commissions {
		stats.Commissions[c.Status]++
	}

	orders, _, err := s.orders.List(ctx, repository.OrderFilter{ArtistID: &artistID})
	if err != nil {
		s.log.Error("repo list orders error", zap.Error(err))
		return nil, err
	}
	s.fillSales(stats, orders, artistID)
	return stats, nil
}

func (s *DashboardService) countStudents(ctx context.Context, instructorID primitive.ObjectID) (int, error) {
	students := 0
	page := repository.Page{Page: 1, Limit: 100}
	for {
		list, total, err := s.courses.List(ctx, repository.CourseFilter{InstructorID: &instructorID, Page: page})
		if err != nil {
			s.log.Error("repo list courses error", zap.Error(err))
			return 0, err
		}
		for _, c := range list {
			students += c.StudentCount
		}
		if len(list) == 0 || int64(page.Page*page.Limit) >= total {
			return students, nil
		}
		page.Page++
	}
}

// fillSales expects orders newest first.
func (s *DashboardService) fillSales(stats *ArtistStats, orders []domain.Order, artistID primitive.ObjectID) {
	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(dashboardMonths - 1), 0)

	months := make([]MonthlyRevenue, dashboardMonths)
	monthRevenue := make([]decimal.Decimal, dashboardMonths)
	index := make(map[string]int, dashboardMonths)
	for i := range months {
		key := start.AddDate(0, i, 0).Format("2006-01")
		months[i].Month = key
		monthRevenue[i] = decimal.Zero
		index[key] = i
	}

	revenue := decimal.Zero
	stats.RecentSales = make([]Sale, 0, recentSales)
	for _, o := range orders {
		if o.Status == domain.OrderStatusCancelled {
			continue
		}
		share := o.ArtistTotal(artistID)
		revenue = revenue.Add(share)
		stats.Orders++

		var mine []domain.OrderItem
		for _, it := range o.Items {
			if it.ArtistID == artistID {
				stats.ItemsSold += it.Quantity
				mine = append(mine, it)
			}
		}

		if i, ok := index[o.CreatedAt.UTC().Format("2006-01")]; ok {
			monthRevenue[i] = monthRevenue[i].Add(share)
			months[i].Orders++
		}
		if len(stats.RecentSales) < recentSales {
			stats.RecentSales = append(stats.RecentSales, Sale{
				OrderID:   o.ID,
				BuyerID:   o.BuyerID,
				Items:     mine,
				Amount:    share.Round(2).InexactFloat64(),
				Status:    o.Status,
				CreatedAt: o.CreatedAt,
			})
		}
	}
	for i := range months {
		months[i].Revenue = monthRevenue[i].Round(2).InexactFloat64()
	}
	stats.MonthlyRevenue = months
	stats.Revenue = revenue.Round(2).InexactFloat64()
}

func (s *DashboardService) AdminStats(ctx context.Context, p Principal) (*AdminStats, error) {
	if err := requireRole(p, domain.RoleAdmin); err != nil {
		return nil, err
	}
	stats := &AdminStats{}
	var err error
	if stats.Users, err = s.users.CountByRole(ctx); err != nil {
		s.log.Error("repo count users error", zap.Error(err))
		return nil, err
	}
	if stats.Artworks, err = s.artworks.CountByStatus(ctx, nil); err != nil {
		s.log.Error("repo count artworks error", zap.Error(err))
		return nil, err
	}
	if stats.Courses, err = s.courses.CountByStatus(ctx, nil); err != nil {
		s.log.Error("repo count courses error", zap.Error(err))
		return nil, err
	}
	orders, err := s.orders.Stats(ctx)
	if err != nil {
		s.log.Error("repo order stats error", zap.Error(err))
		return nil, err
	}
	stats.Orders = orders.Orders
	stats.Revenue = decimal.NewFromFloat(orders.Revenue).Round(2).InexactFloat64()
	return stats, nil
}
