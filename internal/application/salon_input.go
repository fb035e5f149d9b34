package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/salon-connect/internal/domain/entity"
	"github.com/oksasatya/salon-connect/pkg/geo"
)

type ServiceInput struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Price       string `json:"price"`
	Duration    *int   `json:"duration"`
	Description string `json:"description"`
}

type CategoryInput struct {
	Name     string         `json:"name"`
	Services []ServiceInput `json:"services"`
	Icon     string         `json:"icon"`
	IsActive *bool          `json:"isActive"`
}

type StylistInput struct {
	ProfilePhoto   string   `json:"profilePhoto"`
	Name           string   `json:"name"`
	Rating         float64  `json:"rating"`
	Specialization []string `json:"specialization"`
	Experience     string   `json:"experience"`
	IsActive       *bool    `json:"isActive"`
}

type ReviewInput struct {
	ReviewMessage string  `json:"review_message"`
	Rating        float64 `json:"rating"`
	CustomerName  string  `json:"customerName"`
}

// SalonInput is used for create and for partial update; nil fields are absent.
type SalonInput struct {
	Name              *string                `json:"name"`
	Images            []string               `json:"images"`
	LocationName      *string                `json:"locationName"`
	ServiceCategories []CategoryInput        `json:"serviceCategories"`
	Description       *string                `json:"description"`
	Stylists          []StylistInput         `json:"stylists"`
	Location          *geo.Point             `json:"location"`
	Contact           *entity.Contact        `json:"contact"`
	OperatingHours    *entity.OperatingHours `json:"operatingHours"`
	Amenities         []string               `json:"amenities"`
	Reviews           []ReviewInput          `json:"reviews"`
}

func blank(s *string) bool { return s == nil || strings.TrimSpace(*s) == "" }

func (in SalonInput) validateCreate() error {
	if blank(in.Name) || len(in.Images) == 0 || blank(in.LocationName) ||
		in.ServiceCategories == nil || blank(in.Description) || in.Stylists == nil || in.Location == nil {
		return badRequest("please provide all required fields")
	}
	if !geo.ValidPoint(*in.Location) {
		return badRequest("location out of range")
	}
	return in.validateUpdate()
}

func (in SalonInput) validateUpdate() error {
	if in.Name != nil && blank(in.Name) {
		return badRequest("name cannot be empty")
	}
	if in.ServiceCategories != nil {
		if len(in.ServiceCategories) == 0 {
			return badRequest("please add at least one service category")
		}
		for _, c := range in.ServiceCategories {
			if strings.TrimSpace(c.Name) == "" || len(c.Services) == 0 {
				return badRequest(fmt.Sprintf("category %q must have at least one service", c.Name))
			}
			for _, svc := range c.Services {
				if strings.TrimSpace(svc.Title) == "" || strings.TrimSpace(svc.Price) == "" {
					return badRequest(fmt.Sprintf("services in category %q need a title and a price", c.Name))
				}
			}
		}
	}
	for _, st := range in.Stylists {
		if strings.TrimSpace(st.Name) == "" || st.ProfilePhoto == "" || st.Rating < 0 || st.Rating > 5 {
			return badRequest("stylists need a name, profile photo and a rating between 0 and 5")
		}
	}
	for _, r := range in.Reviews {
		if err := r.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (r ReviewInput) validate() error {
	if strings.TrimSpace(r.ReviewMessage) == "" || strings.TrimSpace(r.CustomerName) == "" {
		return badRequest("review message and customer name are required")
	}
	if r.Rating < 0 || r.Rating > 5 {
		return badRequest("rating must be between 0 and 5")
	}
	return nil
}

func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func buildCategories(in []CategoryInput) []entity.ServiceCategory {
	out := make([]entity.ServiceCategory, 0, len(in))
	for _, c := range in {
		cat := entity.ServiceCategory{
			Name:     strings.TrimSpace(c.Name),
			Icon:     c.Icon,
			IsActive: boolOr(c.IsActive, true),
			Services: make([]entity.Service, 0, len(c.Services)),
		}
		if cat.Icon == "" {
			cat.Icon = entity.DefaultCategoryIcon
		}
		for _, svc := range c.Services {
			item := entity.Service{
				ID:          svc.ID,
				Title:       strings.TrimSpace(svc.Title),
				Price:       svc.Price,
				Duration:    entity.DefaultServiceDuration,
				Description: strings.TrimSpace(svc.Description),
			}
			if item.ID == "" {
				item.ID = uuid.NewString()
			}
			if svc.Duration != nil {
				item.Duration = *svc.Duration
			}
			cat.Services = append(cat.Services, item)
		}
		out = append(out, cat)
	}
	return out
}

func buildStylists(in []StylistInput) []entity.Stylist {
	out := make([]entity.Stylist, 0, len(in))
	for _, st := range in {
		out = append(out, entity.Stylist{
			ProfilePhoto:   st.ProfilePhoto,
			Name:           strings.TrimSpace(st.Name),
			Rating:         st.Rating,
			Specialization: nonNil(st.Specialization),
			Experience:     st.Experience,
			IsActive:       boolOr(st.IsActive, true),
		})
	}
	return out
}

func buildReviews(in []ReviewInput) []entity.Review {
	now := time.Now().UTC()
	out := make([]entity.Review, 0, len(in))
	for _, r := range in {
		out = append(out, entity.Review{
			ReviewMessage: r.ReviewMessage,
			Rating:        r.Rating,
			CustomerName:  r.CustomerName,
			CreatedAt:     now,
		})
	}
	return out
}
