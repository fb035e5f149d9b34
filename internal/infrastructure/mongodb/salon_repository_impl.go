package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/salon-connect/internal/domain/entity"
	"github.com/oksasatya/salon-connect/internal/domain/repository"
	"github.com/oksasatya/salon-connect/pkg/geo"
)

type SalonRepository struct {
	coll *mongo.Collection
}

func NewSalonRepository(db *mongo.Database) *SalonRepository {
	return &SalonRepository{coll: db.Collection(SalonsCollection)}
}

var activeSort = bson.D{{Key: "rating", Value: -1}, {Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}}

// boxFilter matches active salons inside box.
func boxFilter(box geo.Box) bson.M {
	return bson.M{
		"isActive":           true,
		"location.latitude":  bson.M{"$gte": box.MinLat, "$lte": box.MaxLat},
		"location.longitude": bson.M{"$gte": box.MinLng, "$lte": box.MaxLng},
	}
}

func (r *SalonRepository) Create(ctx context.Context, s *entity.Salon) error {
	now := time.Now().UTC()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, s)
	return mapErr(err)
}

func (r *SalonRepository) GetByID(ctx context.Context, id string) (*entity.Salon, error) {
	var s entity.Salon
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&s); err != nil {
		return nil, mapErr(err)
	}
	return &s, nil
}

func (r *SalonRepository) ListActive(ctx context.Context) ([]*entity.Salon, error) {
	return r.find(ctx, bson.M{"isActive": true})
}

func (r *SalonRepository) FindActiveInBox(ctx context.Context, box geo.Box) ([]*entity.Salon, error) {
	return r.find(ctx, boxFilter(box))
}

func (r *SalonRepository) find(ctx context.Context, filter bson.M) ([]*entity.Salon, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(activeSort))
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()
	out := make([]*entity.Salon, 0)
	for cur.Next(ctx) {
		var s entity.Salon
		if err := cur.Decode(&s); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, cur.Err()
}

// Update replaces the document, keeping the stored createdAt.
func (r *SalonRepository) Update(ctx context.Context, s *entity.Salon) error {
	cur, err := r.GetByID(ctx, s.ID)
	if err != nil {
		return err
	}
	s.CreatedAt = cur.CreatedAt
	s.UpdatedAt = time.Now().UTC()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": s.ID}, s)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *SalonRepository) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{"isActive": active, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.SalonRepository = (*SalonRepository)(nil)
