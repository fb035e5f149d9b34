package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/salon-connect/internal/domain/entity"
	"github.com/oksasatya/salon-connect/internal/domain/repository"
)

// UserRepository stores profiles in users and the follow graph as one row per
// edge in follows, so both derived sets always agree.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `
	u.id, u.email, COALESCE(u.phone_number, ''), u.password_hash, u.name, COALESCE(u.username, ''),
	u.user_image, u.bio, u.address_line1, u.address_line2, u.address_type, u.date_of_birth,
	COALESCE((SELECT array_agg(f.follower_id ORDER BY f.seq) FROM follows f WHERE f.followee_id = u.id), '{}'),
	COALESCE((SELECT array_agg(f.followee_id ORDER BY f.seq) FROM follows f WHERE f.follower_id = u.id), '{}'),
	u.created_at, u.updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var addressType string
	var followers, following []string
	err := row.Scan(&u.ID, &u.Email, &u.PhoneNumber, &u.PasswordHash, &u.Name, &u.Username,
		&u.UserImage, &u.Bio, &u.AddressLine1, &u.AddressLine2, &addressType, &u.DateOfBirth,
		&followers, &following, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, mapErr(err)
	}
	u.AddressType = entity.AddressType(addressType)
	u.Followers = entity.NewIDSet(followers...)
	u.Following = entity.NewIDSet(following...)
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (id, email, phone_number, password_hash, name, username, user_image, bio,
			address_line1, address_line2, address_type, date_of_birth)
		VALUES ($1, $2, NULLIF($3::text, ''), $4, $5, NULLIF($6::text, ''), $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at
	`, u.ID, u.Email, u.PhoneNumber, u.PasswordHash, u.Name, u.Username, u.UserImage, u.Bio,
		u.AddressLine1, u.AddressLine2, string(u.AddressType), u.DateOfBirth)

	return mapErr(row.Scan(&u.CreatedAt, &u.UpdatedAt))
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.id = $1`, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE lower(u.email) = lower($1)`, email))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users u WHERE u.username = $1`, username))
}

func (r *UserRepository) Find(ctx context.Context, f repository.UserFilter) ([]*entity.User, error) {
	var ids []string
	if f.IDs != nil {
		if len(f.IDs) == 0 {
			return []*entity.User{}, nil
		}
		ids = f.IDs
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM users u
		WHERE ($1::text[] IS NULL OR u.id = ANY($1))
		  AND ($2::text = '' OR u.id <> $2)
		  AND ($3::text = '' OR position(lower($3) in lower(u.name)) > 0
		       OR position(lower($3) in lower(COALESCE(u.username, ''))) > 0)
		ORDER BY u.created_at DESC, u.id
	`, ids, f.ExcludeID, f.Text)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*entity.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if ids != nil {
		out = orderByIDs(out, ids)
	}
	return out, nil
}

// orderByIDs arranges users in the order of ids, dropping ids with no row.
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

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, phone_number = NULLIF($2::text, ''), password_hash = $3, name = $4, username = NULLIF($5::text, ''),
			user_image = $6, bio = $7, address_line1 = $8, address_line2 = $9, address_type = $10,
			date_of_birth = $11, updated_at = $12
		WHERE id = $13
	`, u.Email, u.PhoneNumber, u.PasswordHash, u.Name, u.Username, u.UserImage, u.Bio,
		u.AddressLine1, u.AddressLine2, string(u.AddressType), u.DateOfBirth, u.UpdatedAt, u.ID)
	if err != nil {
		return mapErr(err)
	}

	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *UserRepository) CountFollowers(ctx context.Context, id string) (int, error) {
	return r.count(ctx, `SELECT (SELECT count(*) FROM follows WHERE followee_id = u.id) FROM users u WHERE u.id = $1`, id)
}

func (r *UserRepository) CountFollowing(ctx context.Context, id string) (int, error) {
	return r.count(ctx, `SELECT (SELECT count(*) FROM follows WHERE follower_id = u.id) FROM users u WHERE u.id = $1`, id)
}

func (r *UserRepository) count(ctx context.Context, query, id string) (int, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, query, id).Scan(&n); err != nil {
		return 0, mapErr(err)
	}
	return int(n), nil
}

const (
	insertFollowSQL = `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`
	deleteFollowSQL = `DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`
)

// SetFollow writes the single edge row; the affected row count tells whether
// this call changed the graph.
func (r *UserRepository) SetFollow(ctx context.Context, actorID, targetID string, follow bool) (bool, error) {
	query := deleteFollowSQL
	if follow {
		query = insertFollowSQL
	}
	tag, err := r.pool.Exec(ctx, query, actorID, targetID)
	if err != nil {
		return false, mapErr(err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *UserRepository) AddFollow(ctx context.Context, actorID, targetID string) error {
	_, err := r.SetFollow(ctx, actorID, targetID, true)
	return err
}

func (r *UserRepository) RemoveFollow(ctx context.Context, actorID, targetID string) error {
	_, err := r.SetFollow(ctx, actorID, targetID, false)
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
