package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/insurance-catalog/internal/auth"
	"github.com/iliyamo/insurance-catalog/internal/logging"
	"github.com/iliyamo/insurance-catalog/internal/model"
	"github.com/iliyamo/insurance-catalog/internal/repository"
)

type seedUser struct {
	Name, Email, Password string
}

// SeedUsers are the demo accounts.  The first one matches the login the
// bundled client pre-fills.
var SeedUsers = []seedUser{
	{Name: "Test User", Email: "user1", Password: "pass1"},
	{Name: "Admin User", Email: "admin@example.com", Password: "admin123"},
}

func desc(s string) *string { return &s }

// SeedProducts is the demo catalog.
var SeedProducts = []model.Product{
	{ProductID: "prod_001", Name: "Premium Health Plan", Type: "HEALTH", Coverage: "Full medical + dental", Price: 200.00,
		Description: desc("Comprehensive health insurance covering medical, dental, and vision care with low deductibles."), IsActive: true},
	{ProductID: "prod_002", Name: "Basic Health Plan", Type: "HEALTH", Coverage: "Essential medical coverage", Price: 100.00,
		Description: desc("Affordable health insurance for essential medical needs."), IsActive: true},
	{ProductID: "prod_003", Name: "Family Life Insurance", Type: "LIFE", Coverage: "Life coverage up to $500,000", Price: 150.00,
		Description: desc("Protect your family financial future with comprehensive life insurance."), IsActive: true},
	{ProductID: "prod_004", Name: "Term Life Insurance", Type: "LIFE", Coverage: "Life coverage up to $250,000 for 20 years", Price: 75.00,
		Description: desc("Affordable term life insurance with fixed premiums."), IsActive: true},
	{ProductID: "prod_005", Name: "Auto Insurance Premium", Type: "AUTO", Coverage: "Full coverage including collision and comprehensive", Price: 180.00,
		Description: desc("Complete auto insurance protection for your vehicle."), IsActive: true},
	{ProductID: "prod_006", Name: "Auto Insurance Basic", Type: "AUTO", Coverage: "Liability only coverage", Price: 80.00,
		Description: desc("Basic auto liability insurance meeting state requirements."), IsActive: true},
	{ProductID: "prod_007", Name: "Homeowners Insurance", Type: "HOME", Coverage: "Dwelling, personal property, and liability", Price: 220.00,
		Description: desc("Protect your home and belongings with comprehensive homeowners insurance."), IsActive: true},
	{ProductID: "prod_008", Name: "Renters Insurance", Type: "HOME", Coverage: "Personal property and liability for renters", Price: 45.00,
		Description: desc("Affordable protection for your belongings when renting."), IsActive: true},
	{ProductID: "prod_009", Name: "Travel Insurance", Type: "TRAVEL", Coverage: "Trip cancellation, medical, and baggage", Price: 35.00,
		Description: desc("Comprehensive travel protection for your trips."), IsActive: true},
	{ProductID: "prod_010", Name: "Pet Insurance", Type: "PET", Coverage: "Accidents, illnesses, and wellness", Price: 55.00,
		Description: desc("Keep your furry friends protected with pet insurance."), IsActive: true},
}

// Seed inserts the demo users and products.  Rows that already exist are
// left alone, so Seed can run on every start.
func Seed(ctx context.Context, db *sql.DB, bcryptCost int, log logging.Logger) error {
	users := repository.NewUserRepo(db)
	for _, u := range SeedUsers {
		hash, err := auth.HashPassword(u.Password, bcryptCost)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		if _, err := users.Create(ctx, u.Name, u.Email, hash); err != nil {
			if errors.Is(err, repository.ErrEmailExists) {
				continue
			}
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		log.Info(ctx, "seeded user", "email", u.Email)
	}

	products := repository.NewProductRepo(db)
	inserted := 0
	for _, p := range SeedProducts {
		if err := products.Insert(ctx, p); err != nil {
			if errors.Is(err, repository.ErrProductExists) {
				continue
			}
			return fmt.Errorf("seed product %s: %w", p.ProductID, err)
		}
		inserted++
	}
	if inserted > 0 {
		log.Info(ctx, "seeded products", "count", inserted)
	}
	return nil
}
