package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/salon-connect/internal/domain/entity"
	"github.com/oksasatya/salon-connect/internal/domain/repository"
)

// userDoc embeds both sides of the follow graph in the user document.
type userDoc struct {
	ID           string     `bson:"_id"`
	Email        string     `bson:"email"`
	PhoneNumber  string     `bson:"phoneNumber,omitempty"`
	PasswordHash string     `bson:"passwordHash"`
	Name         string     `bson:"name"`
	Username     string     `bson:"username,omitempty"`
	UserImage    string     `bson:"userImage"`
	Bio          string     `bson:"bio"`
	AddressLine1 string     `bson:"addressLine1"`
	AddressLine2 string     `bson:"addressLine2"`
	AddressType  string     `bson:"addressType"`
	DateOfBirth  *time.Time `bson:"dateOfBirth,omitempty"`
	Followers    []string   `bson:"followers"`
	Following    []string   `bson:"following"`
	CreatedAt    time.Time  `bson:"createdAt"`
	UpdatedAt    time.Time  `bson:"updatedAt"`
}

func toDoc(u *entity.User) userDoc {
	return userDoc{
		ID:           u.ID,
		Email:        u.Email,
		PhoneNumber:  u.PhoneNumber,
		PasswordHash: u.PasswordHash,
		Name:         u.Name,
		Username:     u.Username,
		UserImage:    u.UserImage,
		Bio:          u.Bio,
		AddressLine1: u.AddressLine1,
		AddressLine2: u.AddressLine2,
		AddressType:  string(u.AddressType),
		DateOfBirth:  u.DateOfBirth,
		Followers:    u.Followers.Slice(),
		Following:    u.Following.Slice(),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (d userDoc) toEntity() *entity.User {
	return &entity.User{
		ID:           d.ID,
		Email:        d.Email,
		PhoneNumber:  d.PhoneNumber,
		PasswordHash: d.PasswordHash,
		Name:         d.Name,
		Username:     d.Username,
		UserImage:    d.UserImage,
		Bio:          d.Bio,
		AddressLine1: d.AddressLine1,
		AddressLine2: d.AddressLine2,
		AddressType:  entity.AddressType(d.AddressType),
		DateOfBirth:  d.DateOfBirth,
		Followers:    entity.NewIDSet(d.Followers...),
		Following:    entity.NewIDSet(d.Following...),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// UserRepository writes follow edges with $addToSet/$pull on both documents.
// With Transactions set both writes share one session transaction (replica
// set required); otherwise they run in sequence and a failed second write is
// reported as repository.ErrPartialWrite.
type UserRepository struct {
	client       *mongo.Client
	coll         *mongo.Collection
	Transactions bool
}

func NewUserRepository(client *mongo.Client, db *mongo.Database, transactions bool) *UserRepository {
	return &UserRepository{client: client, coll: db.Collection(UsersCollection), Transactions: transactions}
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repository.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return repository.ErrDuplicate
	}
	return err
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	_, err := r.coll.InsertOne(ctx, toDoc(u))
	return mapErr(err)
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var d userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	return d.toEntity(), nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(email)})
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	if username == "" {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, bson.M{"username": username})
}

// buildFilter translates f into a query document.
func buildFilter(f repository.UserFilter) bson.M {
	filter := bson.M{}
	idCond := bson.M{}
	if f.IDs != nil {
		idCond["$in"] = f.IDs
	}
	if f.ExcludeID != "" {
		idCond["$ne"] = f.ExcludeID
	}
	if len(idCond) > 0 {
		filter["_id"] = idCond
	}
	if f.Text != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(f.Text), Options: "i"}
		filter["$or"] = bson.A{bson.M{"name": rx}, bson.M{"username": rx}}
	}
	return filter
}

func (r *UserRepository) Find(ctx context.Context, f repository.UserFilter) ([]*entity.User, error) {
	if f.IDs != nil && len(f.IDs) == 0 {
		return []*entity.User{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, buildFilter(f), opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()

	var docs []userDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*entity.User, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toEntity())
	}
	if f.IDs != nil {
		out = orderByIDs(out, f.IDs)
	}
	return out, nil
}

func orderByIDs(users []*entity.User, ids []string) []*entity.User {
	byID := make(map[string]*entity.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	out := make([]*entity.User, 0, len(users))
	for _, id := range ids {
		if u, ok := byID[id]; ok {
			out = append(out, u)
			delete(byID, id)
		}
	}
	return out
}

// Update sets profile fields only; follower arrays are left untouched.
func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"email":        u.Email,
		"passwordHash": u.PasswordHash,
		"name":         u.Name,
		"userImage":    u.UserImage,
		"bio":          u.Bio,
		"addressLine1": u.AddressLine1,
		"addressLine2": u.AddressLine2,
		"addressType":  string(u.AddressType),
		"updatedAt":    u.UpdatedAt,
	}
	unset := bson.M{}
	optional := map[string]string{"username": u.Username, "phoneNumber": u.PhoneNumber}
	for k, v := range optional {
		if v == "" {
			unset[k] = ""
		} else {
			set[k] = v
		}
	}
	if u.DateOfBirth != nil {
		set["dateOfBirth"] = *u.DateOfBirth
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": u.ID}, update)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) CountFollowers(ctx context.Context, id string) (int, error) {
	return r.arraySize(ctx, id, "followers")
}

func (r *UserRepository) CountFollowing(ctx context.Context, id string) (int, error) {
	return r.arraySize(ctx, id, "following")
}

func (r *UserRepository) arraySize(ctx context.Context, id, field string) (int, error) {
	cur, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
		{{Key: "$project", Value: bson.M{"n": bson.M{"$size": bson.M{"$ifNull": bson.A{"$" + field, bson.A{}}}}}}},
	})
	if err != nil {
		return 0, err
	}
	defer func() { _ = cur.Close(ctx) }()
	var rows []struct {
		N int `bson:"n"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, repository.ErrNotFound
	}
	return rows[0].N, nil
}

func (r *UserRepository) AddFollow(ctx context.Context, actorID, targetID string) error {
	_, err := r.SetFollow(ctx, actorID, targetID, true)
	return err
}

func (r *UserRepository) RemoveFollow(ctx context.Context, actorID, targetID string) error {
	_, err := r.SetFollow(ctx, actorID, targetID, false)
	return err
}

func edgeOp(follow bool) string {
	if follow {
		return "$addToSet"
	}
	return "$pull"
}

// actorEdgeFilter only matches the actor while the edge is not yet in the
// requested state, so MatchedCount doubles as the changed flag.
func actorEdgeFilter(actorID, targetID string, follow bool) bson.M {
	if follow {
		return bson.M{"_id": actorID, "following": bson.M{"$ne": targetID}}
	}
	return bson.M{"_id": actorID, "following": targetID}
}

// SetFollow applies the edge to actor.following and target.followers. The
// target side is always written so a half-applied earlier edge heals.
func (r *UserRepository) SetFollow(ctx context.Context, actorID, targetID string, follow bool) (bool, error) {
	if r.Transactions && r.client != nil {
		sess, err := r.client.StartSession()
		if err != nil {
			return false, err
		}
		defer sess.EndSession(ctx)
		changed, err := sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
			changed, err := r.updateActor(sc, actorID, targetID, follow)
			if err != nil {
				return false, err
			}
			return changed, r.updateSide(sc, edgeOp(follow), targetID, "followers", actorID)
		})
		if err != nil {
			return false, err
		}
		return changed.(bool), nil
	}

	changed, err := r.updateActor(ctx, actorID, targetID, follow)
	if err != nil {
		return false, err
	}
	if err := r.updateSide(ctx, edgeOp(follow), targetID, "followers", actorID); err != nil {
		return false, fmt.Errorf("%w: %s followers of %s: %v", repository.ErrPartialWrite, edgeOp(follow), targetID, err)
	}
	return changed, nil
}

func (r *UserRepository) updateActor(ctx context.Context, actorID, targetID string, follow bool) (bool, error) {
	res, err := r.coll.UpdateOne(ctx, actorEdgeFilter(actorID, targetID, follow), bson.M{
		edgeOp(follow): bson.M{"following": targetID},
		"$currentDate": bson.M{"updatedAt": true},
	})
	if err != nil {
		return false, mapErr(err)
	}
	if res.MatchedCount > 0 {
		return true, nil
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": actorID})
	if err != nil {
		return false, mapErr(err)
	}
	if n == 0 {
		return false, repository.ErrNotFound
	}
	return false, nil
}

func (r *UserRepository) updateSide(ctx context.Context, op, docID, arrayField, value string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": docID}, bson.M{
		op:             bson.M{arrayField: value},
		"$currentDate": bson.M{"updatedAt": true},
	})
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
