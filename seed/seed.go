// Package seed loads the demo directory and catalog.
package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/lborres/wanderlust/core"
	"github.com/lborres/wanderlust/pkg/logger"
	"github.com/lborres/wanderlust/services"
)

type Account struct {
	ID       string
	Email    string
	Password string
	FullName string
	Role     core.Role
}

var Accounts = []Account{
	{ID: "1", Email: "admin@wanderlust.com", Password: "admin123", FullName: "Admin User", Role: core.RoleAdmin},
	{ID: "2", Email: "user@wanderlust.com", Password: "user123", FullName: "Travel User", Role: core.RoleUser},
}

func image(photo string) string {
	return "https://images.pexels.com/photos/" + photo + "?auto=compress&cs=tinysrgb&w=800"
}

var Destinations = []core.Destination{
	{
		Name:        "Santorini",
		Country:     "Greece",
		Description: "Experience the breathtaking sunsets and white-washed buildings of this iconic Greek island.",
		Price:       decimal.NewFromInt(1299),
		Duration:    "7 days",
		Image:       image("161815/santorini-travel-greece-island-161815.jpeg"),
		Rating:      4.9,
		Category:    core.CategoryBeach,
		Featured:    true,
	},
	{
		Name:        "Swiss Alps",
		Country:     "Switzerland",
		Description: "Adventure through pristine mountain landscapes and charming alpine villages.",
		Price:       decimal.NewFromInt(1899),
		Duration:    "10 days",
		Image:       image("417074/pexels-photo-417074.jpeg"),
		Rating:      4.8,
		Category:    core.CategoryMountain,
		Featured:    true,
	},
	{
		Name:        "Tokyo",
		Country:     "Japan",
		Description: "Immerse yourself in the perfect blend of traditional culture and modern innovation.",
		Price:       decimal.NewFromInt(1599),
		Duration:    "8 days",
		Image:       image("2506923/pexels-photo-2506923.jpeg"),
		Rating:      4.7,
		Category:    core.CategoryCity,
		Featured:    true,
	},
	{
		Name:        "Bali",
		Country:     "Indonesia",
		Description: "Relax on pristine beaches and explore ancient temples in this tropical paradise.",
		Price:       decimal.NewFromInt(999),
		Duration:    "6 days",
		Image:       image("2474690/pexels-photo-2474690.jpeg"),
		Rating:      4.6,
		Category:    core.CategoryBeach,
	},
	{
		Name:        "Machu Picchu",
		Country:     "Peru",
		Description: "Trek to the ancient Incan citadel and discover one of the world's greatest archaeological sites.",
		Price:       decimal.NewFromInt(1799),
		Duration:    "9 days",
		Image:       image("259967/pexels-photo-259967.jpeg"),
		Rating:      4.9,
		Category:    core.CategoryAdventure,
	},
	{
		Name:        "Rome",
		Country:     "Italy",
		Description: "Walk through history in the Eternal City, from the Colosseum to Vatican City.",
		Price:       decimal.NewFromInt(1199),
		Duration:    "5 days",
		Image:       image("2064827/pexels-photo-2064827.jpeg"),
		Rating:      4.5,
		Category:    core.CategoryCultural,
	},
}

// Demo inserts the demo accounts and catalog. Accounts that already exist
// are skipped, and the catalog is only loaded into an empty ledger, so Demo
// can run on every start.
func Demo(ctx context.Context, dir *services.Directory, ledger *services.Ledger, log logger.Logger) error {
	if log == nil {
		log = logger.Discard()
	}

	for _, a := range Accounts {
		_, err := dir.Lookup(ctx, a.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, core.ErrUserNotFound) {
			return fmt.Errorf("seed %s: %w", a.Email, err)
		}
		if _, err := dir.Seed(ctx, a.ID, a.Email, a.Password, a.FullName, a.Role); err != nil {
			return fmt.Errorf("seed %s: %w", a.Email, err)
		}
		log.Debug("seeded account", "email", a.Email, "role", a.Role)
	}

	existing, err := ledger.ListDestinations(ctx, services.DestinationFilter{})
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}
	for _, d := range Destinations {
		if _, err := ledger.AddDestination(ctx, d); err != nil {
			return fmt.Errorf("seed %s: %w", d.Name, err)
		}
	}
	log.Info("demo data loaded", "accounts", len(Accounts), "destinations", len(Destinations))
	return nil
}
