package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"buslane/internal/shared/config"
	"buslane/internal/shared/database"
	"buslane/internal/trips"
	"buslane/internal/users"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Buslane Database Seeder...")

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in reverse dependency order.
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"reservation_transitions",
		"reservation_seats",
		"reservations",
		"trip_segments",
		"trips",
		"admin_notifications",
		"admin_logs",
		"users",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to defer constraints: %w", err)
	}

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	if err := tx.Exec("SET CONSTRAINTS ALL IMMEDIATE").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to restore constraints: %w", err)
	}

	return tx.Commit().Error
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	userIDs, err := s.SeedUsers()
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	if err := s.SeedTrips(userIDs["admin"]); err != nil {
		return fmt.Errorf("failed to seed trips: %w", err)
	}

	// Clear Redis so seat state starts from the fresh ledger.
	if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
		log.Printf("Warning: Failed to clear Redis: %v", err)
	}

	return nil
}

// SeedUsers creates 1 admin and 2 regular users
func (s *Seeder) SeedUsers() (map[string]uuid.UUID, error) {
	fmt.Println("  👤 Seeding users...")

	userIDs := make(map[string]uuid.UUID)

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("qwerty"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	usersData := []struct {
		key       string
		firstName string
		lastName  string
		email     string
		role      users.Role
	}{
		{"admin", "Admin", "User", "admin@buslane.dev", users.RoleAdmin},
		{"user1", "Awa", "Diop", "awa.diop@example.com", users.RoleUser},
		{"user2", "Moussa", "Ndiaye", "moussa.ndiaye@example.com", users.RoleUser},
	}

	for _, userData := range usersData {
		user := users.User{
			ID:        uuid.New(),
			FirstName: userData.firstName,
			LastName:  userData.lastName,
			Email:     userData.email,
			Password:  string(hashedPassword),
			Role:      userData.role,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", userData.email, err)
		}

		userIDs[userData.key] = user.ID
		fmt.Printf("    ✅ Created user: %s (%s)\n", user.Email, user.Role)
	}

	return userIDs, nil
}

// SeedTrips creates sample trips with segments
func (s *Seeder) SeedTrips(adminID uuid.UUID) error {
	fmt.Println("  🚌 Seeding trips...")

	tripsData := []struct {
		company       string
		origin        string
		destination   string
		capacity      int
		daysFromNow   int
		departureTime string
		arrivalTime   string
		price         float64
		segments      []trips.Segment
	}{
		{
			company:       "Dem Dikk Express",
			origin:        "Dakar",
			destination:   "Saint-Louis",
			capacity:      40,
			daysFromNow:   3,
			departureTime: "08:00",
			arrivalTime:   "12:30",
			price:         6500,
			segments: []trips.Segment{
				{Origin: "Dakar", Destination: "Thiès", Price: 2000, Duration: "1h15"},
				{Origin: "Thiès", Destination: "Saint-Louis", Price: 5000, Duration: "3h00"},
			},
		},
		{
			company:       "Sénégal Voyages",
			origin:        "Dakar",
			destination:   "Ziguinchor",
			capacity:      50,
			daysFromNow:   5,
			departureTime: "06:30",
			arrivalTime:   "16:00",
			price:         12000,
			segments: []trips.Segment{
				{Origin: "Dakar", Destination: "Kaolack", Price: 4500, Duration: "2h45"},
				{Origin: "Kaolack", Destination: "Ziguinchor", Price: 8500, Duration: "6h30"},
			},
		},
		{
			company:       "Horizon Transport",
			origin:        "Thiès",
			destination:   "Touba",
			capacity:      30,
			daysFromNow:   2,
			departureTime: "09:15",
			arrivalTime:   "11:45",
			price:         3500,
		},
		{
			company:       "Dem Dikk Express",
			origin:        "Dakar",
			destination:   "Tambacounda",
			capacity:      45,
			daysFromNow:   7,
			departureTime: "05:00",
			arrivalTime:   "14:30",
			price:         15000,
			segments: []trips.Segment{
				{Origin: "Dakar", Destination: "Kaolack", Price: 4500, Duration: "2h45"},
				{Origin: "Kaolack", Destination: "Tambacounda", Price: 11000, Duration: "6h45"},
			},
		},
	}

	for _, tripData := range tripsData {
		trip := trips.Trip{
			ID:            uuid.New(),
			Company:       tripData.company,
			Origin:        tripData.origin,
			Destination:   tripData.destination,
			Capacity:      tripData.capacity,
			Date:          time.Now().AddDate(0, 0, tripData.daysFromNow).Truncate(24 * time.Hour),
			DepartureTime: tripData.departureTime,
			ArrivalTime:   tripData.arrivalTime,
			Price:         tripData.price,
			Segments:      tripData.segments,
			CreatedBy:     adminID,
			CreatedAt:     time.Now(),
			UpdatedAt:     time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&trip).Error; err != nil {
			return fmt.Errorf("failed to create trip %s → %s: %w", trip.Origin, trip.Destination, err)
		}

		fmt.Printf("    ✅ Created trip: %s → %s (%s, %d seats)\n",
			trip.Origin, trip.Destination, trip.Company, trip.Capacity)
	}

	return nil
}
