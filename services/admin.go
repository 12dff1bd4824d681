package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/lborres/wanderlust/core"
	"github.com/lborres/wanderlust/pkg/logger"
)

// AdminService backs the admin dashboard.
type AdminService struct {
	dir      *Directory
	sessions *SessionManager
	ledger   *Ledger
	log      logger.Logger
}

func NewAdminService(dir *Directory, sessions *SessionManager, ledger *Ledger, log logger.Logger) *AdminService {
	if log == nil {
		log = logger.Discard()
	}
	return &AdminService{dir: dir, sessions: sessions, ledger: ledger, log: log.With("component", "admin")}
}

func (a *AdminService) ListProfiles(ctx context.Context) ([]*core.Profile, error) {
	return a.dir.Profiles(ctx)
}

func (a *AdminService) Role(ctx context.Context, userID string) (core.Role, error) {
	profile, err := a.dir.Profile(ctx, userID)
	if err != nil {
		return "", err
	}
	return profile.Role, nil
}

func (a *AdminService) UpdateRole(ctx context.Context, userID string, role core.Role) (*core.Profile, error) {
	profile, err := a.dir.SetRole(ctx, userID, role)
	if err != nil {
		return nil, err
	}
	a.log.Info("role changed", "user_id", userID, "role", role)
	return profile, nil
}

// DeleteUser removes the user together with their bookings, credentials
// and open sessions.
func (a *AdminService) DeleteUser(ctx context.Context, userID string) error {
	if a.sessions != nil {
		if _, err := a.sessions.DestroyAllUserSessions(ctx, userID); err != nil {
			return err
		}
	}
	if a.ledger == nil {
		return a.dir.Remove(ctx, userID)
	}
	return a.ledger.RemoveUser(ctx, userID, a.dir.Remove)
}

// Stats summarises users and the ledger. Revenue counts confirmed bookings.
func (a *AdminService) Stats(ctx context.Context) (*core.DashboardStats, error) {
	profiles, err := a.dir.Profiles(ctx)
	if err != nil {
		return nil, err
	}
	destinations, err := a.ledger.ListDestinations(ctx, DestinationFilter{})
	if err != nil {
		return nil, err
	}
	bookings, err := a.ledger.ListBookings(ctx)
	if err != nil {
		return nil, err
	}

	stats := &core.DashboardStats{
		Destinations: len(destinations),
		Bookings:     len(bookings),
		Users:        len(profiles),
	}
	revenue := decimal.Zero
	for _, b := range bookings {
		if b.Status == core.BookingConfirmed {
			stats.ConfirmedBookings++
			revenue = revenue.Add(b.TotalPrice)
		}
	}
	stats.TotalRevenue = revenue.StringFixed(2)
	return stats, nil
}
