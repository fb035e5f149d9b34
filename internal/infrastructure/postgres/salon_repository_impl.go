package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/salon-connect/internal/domain/entity"
	"github.com/oksasatya/salon-connect/internal/domain/repository"
	"github.com/oksasatya/salon-connect/pkg/geo"
)

// SalonRepository keeps nested salon data in JSONB columns and the location
// as plain latitude/longitude columns for the bounding-box prefilter.
type SalonRepository struct {
	pool *pgxpool.Pool
}

func NewSalonRepository(pool *pgxpool.Pool) *SalonRepository {
	return &SalonRepository{pool: pool}
}

const salonColumns = `
	id, name, images, location_name, rating, number_of_reviews, average_price, service_categories,
	description, stylists, latitude, longitude, contact, operating_hours, amenities, reviews,
	is_active, created_at, updated_at`

func scanSalon(row pgx.Row) (*entity.Salon, error) {
	s := &entity.Salon{}
	err := row.Scan(&s.ID, &s.Name, &s.Images, &s.LocationName, &s.Rating, &s.NumberOfReviews,
		&s.AveragePrice, &s.ServiceCategories, &s.Description, &s.Stylists,
		&s.Location.Latitude, &s.Location.Longitude, &s.Contact, &s.OperatingHours,
		&s.Amenities, &s.Reviews, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	return s, nil
}

// fillEmpty replaces nil slices so JSONB columns never receive NULL.
func fillEmpty(s *entity.Salon) {
	if s.Images == nil {
		s.Images = []string{}
	}
	if s.ServiceCategories == nil {
		s.ServiceCategories = []entity.ServiceCategory{}
	}
	if s.Stylists == nil {
		s.Stylists = []entity.Stylist{}
	}
	if s.Amenities == nil {
		s.Amenities = []string{}
	}
	if s.Reviews == nil {
		s.Reviews = []entity.Review{}
	}
}

func (r *SalonRepository) Create(ctx context.Context, s *entity.Salon) error {
	fillEmpty(s)
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	_, err := r.pool.Exec(ctx, `
		INSERT INTO salons (`+salonColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`, s.ID, s.Name, s.Images, s.LocationName, s.Rating, s.NumberOfReviews, s.AveragePrice,
		s.ServiceCategories, s.Description, s.Stylists, s.Location.Latitude, s.Location.Longitude,
		s.Contact, s.OperatingHours, s.Amenities, s.Reviews, s.IsActive, s.CreatedAt, s.UpdatedAt)
	return mapErr(err)
}

func (r *SalonRepository) GetByID(ctx context.Context, id string) (*entity.Salon, error) {
	return scanSalon(r.pool.QueryRow(ctx, `SELECT `+salonColumns+` FROM salons WHERE id = $1`, id))
}

func (r *SalonRepository) ListActive(ctx context.Context) ([]*entity.Salon, error) {
	return r.query(ctx, `
		SELECT `+salonColumns+` FROM salons
		WHERE is_active
		ORDER BY rating DESC, created_at DESC, id
	`)
}

func (r *SalonRepository) FindActiveInBox(ctx context.Context, box geo.Box) ([]*entity.Salon, error) {
	return r.query(ctx, `
		SELECT `+salonColumns+` FROM salons
		WHERE is_active
		  AND latitude BETWEEN $1 AND $2
		  AND longitude BETWEEN $3 AND $4
		ORDER BY rating DESC, created_at DESC, id
	`, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng)
}

func (r *SalonRepository) query(ctx context.Context, sql string, args ...any) ([]*entity.Salon, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*entity.Salon, 0)
	for rows.Next() {
		s, err := scanSalon(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SalonRepository) Update(ctx context.Context, s *entity.Salon) error {
	fillEmpty(s)
	s.UpdatedAt = time.Now()
	res, err := r.pool.Exec(ctx, `
		UPDATE salons
		SET name = $1, images = $2, location_name = $3, rating = $4, number_of_reviews = $5,
			average_price = $6, service_categories = $7, description = $8, stylists = $9,
			latitude = $10, longitude = $11, contact = $12, operating_hours = $13, amenities = $14,
			reviews = $15, is_active = $16, updated_at = $17
		WHERE id = $18
	`, s.Name, s.Images, s.LocationName, s.Rating, s.NumberOfReviews, s.AveragePrice,
		s.ServiceCategories, s.Description, s.Stylists, s.Location.Latitude, s.Location.Longitude,
		s.Contact, s.OperatingHours, s.Amenities, s.Reviews, s.IsActive, s.UpdatedAt, s.ID)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *SalonRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.pool.Exec(ctx, `UPDATE salons SET is_active = $1, updated_at = now() WHERE id = $2`, active, id)
	if err != nil {
		return mapErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.SalonRepository = (*SalonRepository)(nil)
