// Command seed fills a development database with providers, services and a
// customer, spread around a fixed point so geo filters have something to find.
package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"taskhive/config"
	"taskhive/database"
	serviceRepo "taskhive/database/repository/service"
	userRepoPkg "taskhive/database/repository/user"
	"taskhive/models"
	"taskhive/services/catalog"
	"taskhive/services/storage"
	"taskhive/services/user"
	"taskhive/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

const seedPassword = "$Password1234"

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	if config.IsProduction() {
		logger.Fatal("seed: refusing to run against production")
	}

	database.InitDB()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	defer func() { _ = database.CloseDB(context.Background()) }()

	// Clear existing data.
	for _, name := range []string{database.UsersCollection, database.ServicesCollection, database.BookingsCollection, database.ReviewsCollection} {
		if _, err := database.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			logger.Fatal("seed: failed to clear collection", zap.String("collection", name), zap.Error(err))
		}
	}

	users := &user.DefaultUserService{
		Repo:     userRepoPkg.NewMongoUserRepo(logger),
		Denylist: user.NewTokenDenylist(nil),
		TokenTTL: time.Hour,
		Logger:   logger,
	}
	catalogSvc := &catalog.DefaultCatalogService{
		Repo:   serviceRepo.NewMongoServiceRepo(logger),
		Images: storage.NewDisabledStore(),
		Logger: logger,
	}

	// Fixed point for simulation (Nairobi CBD).
	originLng, originLat := 36.8219, -1.2921
	categories := []string{"cleaning", "plumbing", "tutoring"}
	providersPerCategory := 5
	total := len(categories) * providersPerCategory

	// Distances run linearly from 5 km down to ~0.1 km.
	maxDistance, minDistance := 5.0, 0.1
	spacing := (maxDistance - minDistance) / float64(total-1)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	n := 0
	for _, category := range categories {
		for i := 1; i <= providersPerCategory; i++ {
			distanceKm := maxDistance - spacing*float64(n)
			angle := rng.Float64() * 2 * math.Pi
			// Roughly 0.009 degrees per km near the equator.
			lng := originLng + distanceKm*0.009*math.Cos(angle)
			lat := originLat + distanceKm*0.009*math.Sin(angle)
			n++

			reg, err := users.Register(ctx, models.RegisterRequest{
				Name:     fmt.Sprintf("%s Provider %d", category, n),
				Email:    fmt.Sprintf("%s_provider_%d@example.com", category, n),
				Password: seedPassword,
				Role:     models.RoleProvider,
			})
			if err != nil {
				logger.Fatal("seed: failed to register provider", zap.Error(err))
			}
			provider := models.Actor{ID: reg.User.ID, Role: models.RoleProvider}

			_, err = catalogSvc.Create(ctx, provider, models.ServiceInput{
				Name:        fmt.Sprintf("%s service %d", category, n),
				Description: fmt.Sprintf("Professional %s within %.1f km of the city centre", category, distanceKm),
				Category:    category,
				Price:       float64(20 + rng.Intn(80)),
				Duration:    60,
				Location: models.GeoLocation{
					Type:        "Point",
					Coordinates: []float64{lng, lat},
					Address:     "123 Sample Street, Nairobi",
				},
				Availability: []models.DayAvailability{
					{Day: "Monday", Slots: []models.TimeSlot{{Start: "08:00", End: "17:00"}}},
					{Day: "Saturday", Slots: []models.TimeSlot{{Start: "09:00", End: "13:00"}}},
				},
				Tags:   []string{category, "verified"},
				Status: models.ServiceActive,
			}, nil)
			if err != nil {
				logger.Fatal("seed: failed to create service", zap.Error(err))
			}
		}
	}

	if _, err := users.Register(ctx, models.RegisterRequest{
		Name:     "Demo Customer",
		Email:    "customer@example.com",
		Password: seedPassword,
		Role:     models.RoleCustomer,
	}); err != nil {
		logger.Fatal("seed: failed to register customer", zap.Error(err))
	}

	logger.Info("seed complete", zap.Int("providers", total), zap.Int("services", total))
}
