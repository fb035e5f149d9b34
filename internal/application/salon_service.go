package application

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/salon-connect/internal/domain/entity"
	repo "github.com/oksasatya/salon-connect/internal/domain/repository"
	"github.com/oksasatya/salon-connect/pkg/geo"
	"github.com/oksasatya/salon-connect/pkg/helpers"
)

const salonCacheTTL = 10 * time.Minute

func salonCacheKey(id string) string { return "salon:" + id }

type SalonService struct {
	Salons repo.SalonRepository
	Redis  *redis.Client
	Logger *logrus.Logger
}

func NewSalonService(salons repo.SalonRepository, rdb *redis.Client, logger *logrus.Logger) *SalonService {
	return &SalonService{Salons: salons, Redis: rdb, Logger: logger}
}

// NearbyQuery carries raw nearby-search input; nil means the parameter was absent.
type NearbyQuery struct {
	Latitude  *float64
	Longitude *float64
	RadiusKm  *float64
}

type NearbySalon struct {
	entity.Salon
	Distance float64 `json:"distance"`
}

type NearbyResult struct {
	Count  int           `json:"count"`
	Radius float64       `json:"radius"`
	Center geo.Point     `json:"center"`
	Data   []NearbySalon `json:"data"`
}

// FindNearby returns active salons within RadiusKm (default 5) of the query
// point, nearest first. The store is queried with a bounding box and every
// candidate is then checked with the Haversine distance.
func (s *SalonService) FindNearby(ctx context.Context, q NearbyQuery) (*NearbyResult, error) {
	if q.Latitude == nil || q.Longitude == nil {
		return nil, badRequest("latitude and longitude are required")
	}
	center := geo.Point{Latitude: *q.Latitude, Longitude: *q.Longitude}
	if !geo.ValidPoint(center) {
		return nil, badRequest("latitude or longitude out of range")
	}
	radius := DefaultRadiusKm
	if q.RadiusKm != nil {
		radius = *q.RadiusKm
	}
	if math.IsNaN(radius) || math.IsInf(radius, 0) || radius < 0 {
		return nil, badRequest("radius must be a finite, non-negative number")
	}

	candidates, err := s.Salons.FindActiveInBox(ctx, geo.BoundingBox(center, radius))
	if err != nil {
		return nil, storeErr(err, ErrSalonNotFound)
	}

	type hit struct {
		salon *entity.Salon
		dist  float64
	}
	hits := make([]hit, 0, len(candidates))
	for _, c := range candidates {
		d := geo.Haversine(center, c.Location)
		if d <= radius {
			hits = append(hits, hit{salon: c, dist: d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })

	out := &NearbyResult{Count: len(hits), Radius: radius, Center: center, Data: make([]NearbySalon, 0, len(hits))}
	for _, h := range hits {
		out.Data = append(out.Data, NearbySalon{Salon: h.salon.Summary(), Distance: geo.Round2(h.dist)})
	}
	return out, nil
}

// List returns every active salon in summary projection.
func (s *SalonService) List(ctx context.Context) ([]entity.Salon, error) {
	salons, err := s.Salons.ListActive(ctx)
	if err != nil {
		return nil, storeErr(err, ErrSalonNotFound)
	}
	out := make([]entity.Salon, 0, len(salons))
	for _, sl := range salons {
		out = append(out, sl.Summary())
	}
	return out, nil
}

// Get returns the full salon. Inactive salons are reported as not found.
func (s *SalonService) Get(ctx context.Context, id string) (*entity.Salon, error) {
	if s.Redis != nil {
		var cached entity.Salon
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, salonCacheKey(id), &cached); err == nil && ok {
			return &cached, nil
		}
	}
	sl, err := s.Salons.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrSalonNotFound)
	}
	if !sl.IsActive {
		return nil, fmt.Errorf("%w: salon is not active", ErrNotFound)
	}
	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, salonCacheKey(id), sl, salonCacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("salon_id", id).Warn("salon cache set failed")
		}
	}
	return sl, nil
}

// Create validates input, fills defaults, recomputes derived fields and persists.
func (s *SalonService) Create(ctx context.Context, in SalonInput) (*entity.Salon, error) {
	if err := in.validateCreate(); err != nil {
		return nil, err
	}
	sl := entity.Salon{
		ID:                uuid.NewString(),
		Name:              strings.TrimSpace(*in.Name),
		Images:            in.Images,
		LocationName:      strings.TrimSpace(*in.LocationName),
		Description:       *in.Description,
		ServiceCategories: buildCategories(in.ServiceCategories),
		Stylists:          buildStylists(in.Stylists),
		Location:          *in.Location,
		Amenities:         nonNil(in.Amenities),
		Reviews:           buildReviews(in.Reviews),
		AveragePrice:      entity.DefaultAveragePrice,
		IsActive:          true,
	}
	if in.Contact != nil {
		sl.Contact = *in.Contact
	}
	if in.OperatingHours != nil {
		sl.OperatingHours = *in.OperatingHours
	}
	sl = entity.RecomputeDerived(sl)

	if err := s.Salons.Create(ctx, &sl); err != nil {
		return nil, storeErr(err, ErrSalonNotFound)
	}
	return &sl, nil
}

// Update replaces the provided fields. Location cannot change.
func (s *SalonService) Update(ctx context.Context, id string, in SalonInput) (*entity.Salon, error) {
	cur, err := s.Salons.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrSalonNotFound)
	}
	if in.Location != nil && *in.Location != cur.Location {
		return nil, badRequest("location cannot be changed")
	}
	if err := in.validateUpdate(); err != nil {
		return nil, err
	}
	next := *cur
	if in.Name != nil {
		next.Name = strings.TrimSpace(*in.Name)
	}
	if in.Images != nil {
		next.Images = in.Images
	}
	if in.LocationName != nil {
		next.LocationName = strings.TrimSpace(*in.LocationName)
	}
	if in.Description != nil {
		next.Description = *in.Description
	}
	if in.ServiceCategories != nil {
		next.ServiceCategories = buildCategories(in.ServiceCategories)
	}
	if in.Stylists != nil {
		next.Stylists = buildStylists(in.Stylists)
	}
	if in.Contact != nil {
		next.Contact = *in.Contact
	}
	if in.OperatingHours != nil {
		next.OperatingHours = *in.OperatingHours
	}
	if in.Amenities != nil {
		next.Amenities = in.Amenities
	}
	if in.Reviews != nil {
		next.Reviews = buildReviews(in.Reviews)
	}
	next = entity.RecomputeDerived(next)

	if err := s.Salons.Update(ctx, &next); err != nil {
		return nil, storeErr(err, ErrSalonNotFound)
	}
	s.evict(ctx, id)
	return &next, nil
}

// AddReview appends a review to an active salon and refreshes its rating.
func (s *SalonService) AddReview(ctx context.Context, id string, in ReviewInput) (*entity.Salon, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	cur, err := s.Salons.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, ErrSalonNotFound)
	}
	if !cur.IsActive {
		return nil, fmt.Errorf("%w: salon is not active", ErrNotFound)
	}
	next := *cur
	next.Reviews = append(append([]entity.Review{}, cur.Reviews...), buildReviews([]ReviewInput{in})...)
	next = entity.RecomputeDerived(next)
	if err := s.Salons.Update(ctx, &next); err != nil {
		return nil, storeErr(err, ErrSalonNotFound)
	}
	s.evict(ctx, id)
	return &next, nil
}

// Delete deactivates the salon; it stays in storage.
func (s *SalonService) Delete(ctx context.Context, id string) error {
	if err := s.Salons.SetActive(ctx, id, false); err != nil {
		return storeErr(err, ErrSalonNotFound)
	}
	s.evict(ctx, id)
	return nil
}

func (s *SalonService) evict(ctx context.Context, id string) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, salonCacheKey(id)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("salon_id", id).Warn("salon cache evict failed")
	}
}
