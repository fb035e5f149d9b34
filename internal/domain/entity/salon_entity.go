package entity

import (
	"time"

	"github.com/oksasatya/salon-connect/pkg/geo"
)

const (
	DefaultServiceDuration = 30
	DefaultCategoryIcon    = "cut"
	DefaultAveragePrice    = "₹0"
)

type Service struct {
	ID          string `json:"id" bson:"id"`
	Title       string `json:"title" bson:"title"`
	Price       string `json:"price" bson:"price"`
	Duration    int    `json:"duration" bson:"duration"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

type ServiceCategory struct {
	Name     string    `json:"name" bson:"name"`
	Services []Service `json:"services,omitempty" bson:"services"`
	Icon     string    `json:"icon" bson:"icon"`
	IsActive bool      `json:"isActive" bson:"isActive"`
}

type Stylist struct {
	ProfilePhoto   string   `json:"profilePhoto" bson:"profilePhoto"`
	Name           string   `json:"name" bson:"name"`
	Rating         float64  `json:"rating" bson:"rating"`
	Specialization []string `json:"specialization" bson:"specialization"`
	Experience     string   `json:"experience" bson:"experience"`
	IsActive       bool     `json:"isActive" bson:"isActive"`
}

type Review struct {
	ReviewMessage string    `json:"review_message" bson:"review_message"`
	Rating        float64   `json:"rating" bson:"rating"`
	CustomerName  string    `json:"customerName" bson:"customerName"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}

type Contact struct {
	Phone   string `json:"phone,omitempty" bson:"phone,omitempty"`
	Email   string `json:"email,omitempty" bson:"email,omitempty"`
	Website string `json:"website,omitempty" bson:"website,omitempty"`
}

type OpeningSlot struct {
	Open  string `json:"open,omitempty" bson:"open,omitempty"`
	Close string `json:"close,omitempty" bson:"close,omitempty"`
}

type OperatingHours struct {
	Monday    OpeningSlot `json:"monday" bson:"monday"`
	Tuesday   OpeningSlot `json:"tuesday" bson:"tuesday"`
	Wednesday OpeningSlot `json:"wednesday" bson:"wednesday"`
	Thursday  OpeningSlot `json:"thursday" bson:"thursday"`
	Friday    OpeningSlot `json:"friday" bson:"friday"`
	Saturday  OpeningSlot `json:"saturday" bson:"saturday"`
	Sunday    OpeningSlot `json:"sunday" bson:"sunday"`
}

// Salon is a business listing. Rating, NumberOfReviews and AveragePrice are
// derived; see RecomputeDerived.
type Salon struct {
	ID                string            `json:"id" bson:"_id"`
	Name              string            `json:"name" bson:"name"`
	Images            []string          `json:"images" bson:"images"`
	LocationName      string            `json:"locationName" bson:"locationName"`
	Rating            float64           `json:"rating" bson:"rating"`
	NumberOfReviews   int               `json:"numberOfReviews" bson:"numberOfReviews"`
	AveragePrice      string            `json:"averagePrice" bson:"averagePrice"`
	ServiceCategories []ServiceCategory `json:"serviceCategories" bson:"serviceCategories"`
	Description       string            `json:"description" bson:"description"`
	Stylists          []Stylist         `json:"stylists" bson:"stylists"`
	Location          geo.Point         `json:"location" bson:"location"`
	Contact           Contact           `json:"contact" bson:"contact"`
	OperatingHours    OperatingHours    `json:"operatingHours" bson:"operatingHours"`
	Amenities         []string          `json:"amenities" bson:"amenities"`
	Reviews           []Review          `json:"reviews,omitempty" bson:"reviews"`
	IsActive          bool              `json:"isActive" bson:"isActive"`
	CreatedAt         time.Time         `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt" bson:"updatedAt"`
}

// Summary projects out reviews and service line items, as used by listings.
func (s Salon) Summary() Salon {
	out := s
	out.Reviews = nil
	out.ServiceCategories = make([]ServiceCategory, len(s.ServiceCategories))
	for i, c := range s.ServiceCategories {
		c.Services = nil
		out.ServiceCategories[i] = c
	}
	return out
}
