package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Aggregation constants. There is no rating system and no payment
// integration yet, so ratings and download revenue use fixed values.
var (
	DownloadUnitPrice = decimal.RequireFromString("2.99")
	FixedVendorRating = 4.5
)

// UnknownDate is reported when a member-since date is not available.
const UnknownDate = "Unknown"

// MemberSince formats t as "January 2006", or UnknownDate for nil.
func MemberSince(t *time.Time) string {
	if t == nil || t.IsZero() {
		return UnknownDate
	}
	return t.Format("January 2006")
}

type PlatformStats struct {
	TotalUsers    int64           `json:"totalUsers"`
	TotalVendors  int64           `json:"totalVendors"`
	TotalProducts int64           `json:"totalProducts"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
}

type VendorStats struct {
	Products    int64           `json:"products"`
	Sales       int64           `json:"sales"`
	Rating      float64         `json:"rating"`
	Earnings    decimal.Decimal `json:"earnings"`
	MemberSince string          `json:"memberSince"`
}

type UserStats struct {
	Downloads   int64  `json:"downloads"`
	Favorites   int64  `json:"favorites"`
	MemberSince string `json:"memberSince"`
}

type MonthlySales struct {
	Month   string          `json:"month"`
	Sales   int64           `json:"sales"`
	Revenue decimal.Decimal `json:"revenue"`
}

type ProductSales struct {
	Title   string          `json:"title"`
	Sales   int64           `json:"sales"`
	Revenue decimal.Decimal `json:"revenue"`
}

// OrderAnalytics is derived strictly from the order ledger.
type OrderAnalytics struct {
	TotalSales   int64           `json:"totalSales"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	SalesByMonth []MonthlySales  `json:"salesByMonth"`
	TopProducts  []ProductSales  `json:"topProducts"`
}
