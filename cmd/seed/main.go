package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/salon-connect/config"
	"github.com/oksasatya/salon-connect/internal/application"
	"github.com/oksasatya/salon-connect/internal/container"
	"github.com/oksasatya/salon-connect/internal/domain/entity"
	"github.com/oksasatya/salon-connect/pkg/geo"
	"github.com/oksasatya/salon-connect/pkg/helpers"
)

const password = "password123"

var demoUsers = []application.RegisterInput{
	{Email: "jane@salonconnect.dev", Name: "Jane Doe", Username: "jane"},
	{Email: "janet@salonconnect.dev", Name: "Janet Park", Username: "janet.p"},
	{Email: "bob@salonconnect.dev", Name: "Bob Stone", Username: "bob_s"},
}

func strPtr(s string) *string { return &s }

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	closeStore, err := container.OpenStore(ctx, cfg, logger, true)
	if err != nil {
		log.Fatalf("store init failed: %v", err)
	}
	defer closeStore()

	users := container.GetUserRepo()
	follow := application.NewFollowService(users, nil, logger)
	svc := application.NewService(users, follow, nil, nil, nil, logger, nil)

	ids := make([]string, 0, len(demoUsers))
	for _, in := range demoUsers {
		in.Password = password
		u, err := svc.Register(ctx, in)
		if errors.Is(err, application.ErrConflict) {
			u, err = users.GetByEmail(ctx, in.Email)
		}
		if err != nil {
			log.Fatalf("failed to seed user %s: %v", in.Email, err)
		}
		ids = append(ids, u.ID)
		fmt.Printf("seeded user: id=%s email=%s username=%s password=%s\n", u.ID, u.Email, u.Username, password)
	}

	// jane follows janet and bob, bob follows jane
	for _, e := range [][2]int{{0, 1}, {0, 2}, {2, 0}} {
		if err := users.AddFollow(ctx, ids[e[0]], ids[e[1]]); err != nil {
			log.Fatalf("failed to seed follow: %v", err)
		}
	}
	fmt.Println("follow edges ensured")

	salons := application.NewSalonService(container.GetSalonRepo(), nil, logger)
	existing, err := salons.List(ctx)
	if err != nil {
		log.Fatalf("failed to list salons: %v", err)
	}
	if len(existing) > 0 {
		fmt.Printf("%d active salons present; skipping salon seed\n", len(existing))
		return
	}
	for _, in := range demoSalons() {
		s, err := salons.Create(ctx, in)
		if err != nil {
			log.Fatalf("failed to seed salon: %v", err)
		}
		fmt.Printf("seeded salon: id=%s name=%s rating=%.1f avg=%s\n", s.ID, s.Name, s.Rating, s.AveragePrice)
	}
}

func demoSalons() []application.SalonInput {
	mk := func(name, area string, lat, lng float64, reviews ...application.ReviewInput) application.SalonInput {
		return application.SalonInput{
			Name:         strPtr(name),
			Images:       []string{"https://images.salonconnect.dev/" + area + ".jpg"},
			LocationName: strPtr(area),
			Description:  strPtr(name + " in " + area),
			Location:     &geo.Point{Latitude: lat, Longitude: lng},
			ServiceCategories: []application.CategoryInput{{
				Name: "Hair",
				Services: []application.ServiceInput{
					{Title: "Haircut", Price: "₹300"},
					{Title: "Hair spa", Price: "₹850"},
				},
			}},
			Stylists: []application.StylistInput{{
				Name:           "Asha",
				ProfilePhoto:   "https://images.salonconnect.dev/asha.jpg",
				Rating:         4.6,
				Specialization: []string{"coloring"},
				Experience:     "6 years",
			}},
			Contact:   &entity.Contact{Phone: "+91 80 4000 0000"},
			Amenities: []string{"wifi", "parking"},
			Reviews:   reviews,
		}
	}
	return []application.SalonInput{
		mk("Studio Shear", "Indiranagar", 12.9719, 77.6412,
			application.ReviewInput{ReviewMessage: "Great cut", Rating: 5, CustomerName: "Priya"},
			application.ReviewInput{ReviewMessage: "Good service", Rating: 4, CustomerName: "Rahul"}),
		mk("Mane Street", "Koramangala", 12.9352, 77.6245),
		mk("Blue Comb", "Whitefield", 12.9698, 77.7500,
			application.ReviewInput{ReviewMessage: "Friendly staff", Rating: 4, CustomerName: "Meera"}),
	}
}
