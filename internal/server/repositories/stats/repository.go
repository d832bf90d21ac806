package stats

import (
	"context"
	"time"
)

// PlatformCounts are the raw counters behind the admin dashboard.
type PlatformCounts struct {
	Users     int64
	Vendors   int64
	Products  int64
	Downloads int64
}

// VendorCounts are the raw counters behind a vendor dashboard.
type VendorCounts struct {
	Products    int64
	Downloads   int64
	MemberSince *time.Time
}

// UserCounts are the raw counters behind a user dashboard.
type UserCounts struct {
	Downloads   int64
	Favorites   int64
	MemberSince *time.Time
}

type Repository interface {
	Platform(ctx context.Context) (*PlatformCounts, error)
	Vendor(ctx context.Context, vendorID string) (*VendorCounts, error)
	User(ctx context.Context, userID string) (*UserCounts, error)
}
