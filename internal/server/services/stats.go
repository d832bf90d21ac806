package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sayedsafi2000/pixelsbee/internal/server/models"
	"github.com/sayedsafi2000/pixelsbee/internal/server/repositories/repomanager"
	"github.com/shopspring/decimal"
)

// StatsService computes dashboard figures. It only reads.
//
// Platform and vendor revenue are derived from download counts at a fixed
// unit price, while OrderAnalytics is derived from the order ledger. The
// two are separate reads and are never merged.
type StatsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewStatsService(db *sql.DB, m repomanager.RepositoryManager) *StatsService {
	return &StatsService{db: db, repomanager: m}
}

func downloadRevenue(downloads int64) decimal.Decimal {
	return models.DownloadUnitPrice.Mul(decimal.NewFromInt(downloads))
}

func (s *StatsService) Platform(ctx context.Context) (*models.PlatformStats, error) {
	c, err := s.repomanager.Stats(s.db).Platform(ctx)
	if err != nil {
		return nil, fmt.Errorf("error reading platform stats: %w", err)
	}
	return &models.PlatformStats{
		TotalUsers:    c.Users,
		TotalVendors:  c.Vendors,
		TotalProducts: c.Products,
		TotalRevenue:  downloadRevenue(c.Downloads),
	}, nil
}

func (s *StatsService) Vendor(ctx context.Context, vendorID string) (*models.VendorStats, error) {
	c, err := s.repomanager.Stats(s.db).Vendor(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("error reading vendor stats: %w", err)
	}
	return &models.VendorStats{
		Products:    c.Products,
		Sales:       c.Downloads,
		Rating:      models.FixedVendorRating,
		Earnings:    downloadRevenue(c.Downloads),
		MemberSince: models.MemberSince(c.MemberSince),
	}, nil
}

func (s *StatsService) User(ctx context.Context, userID string) (*models.UserStats, error) {
	c, err := s.repomanager.Stats(s.db).User(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error reading user stats: %w", err)
	}
	return &models.UserStats{
		Downloads:   c.Downloads,
		Favorites:   c.Favorites,
		MemberSince: models.MemberSince(c.MemberSince),
	}, nil
}

// OrderAnalytics reports totals, the 12-month trend and the top 5 products
// from the order ledger.
func (s *StatsService) OrderAnalytics(ctx context.Context) (*models.OrderAnalytics, error) {
	a, err := s.repomanager.Orders(s.db).Analytics(ctx)
	if err != nil {
		return nil, fmt.Errorf("error reading order analytics: %w", err)
	}
	return a, nil
}
