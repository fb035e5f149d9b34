package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/salon-connect/internal/domain/entity"
	repo "github.com/oksasatya/salon-connect/internal/domain/repository"
	"github.com/oksasatya/salon-connect/pkg/helpers"
)

const sessionTTL = 24 * time.Hour

// ImageStore uploads an object and returns its public URL.
type ImageStore interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

type Service struct {
	Repo   repo.UserRepository
	Follow *FollowService
	JWT    *helpers.JWTManager
	Images ImageStore
	Redis  *redis.Client
	Logger *logrus.Logger
	Index  UserIndex
}

type TokenPair struct {
	AccessToken        string    `json:"access_token"`
	AccessTokenExpiry  time.Time `json:"access_expires_at"`
	RefreshToken       string    `json:"refresh_token"`
	RefreshTokenExpiry time.Time `json:"refresh_expires_at"`
}

func SessionKey(userID string) string {
	return "user:session:" + userID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func NewService(repo repo.UserRepository, follow *FollowService, jwt *helpers.JWTManager, images ImageStore, rdb *redis.Client, logger *logrus.Logger, index UserIndex) *Service {
	return &Service{
		Repo:   repo,
		Follow: follow,
		JWT:    jwt,
		Images: images,
		Redis:  rdb,
		Logger: logger,
		Index:  index,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Username string
}

// Register creates a user with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || in.Password == "" {
		return nil, badRequest("email and password are required")
	}
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(in.Name),
		Username:     strings.TrimSpace(in.Username),
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email or username already taken", ErrConflict)
		}
		return nil, storeErr(err, ErrUserNotFound)
	}
	_ = s.indexUser(ctx, u)
	return u, nil
}

// Authenticate validates email/password and returns the user without issuing tokens.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*entity.User, error) {
	u, err := s.Repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// IssueTokens generates access/refresh tokens and records a session in Redis.
func (s *Service) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, sid)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		}
		return TokenPair{}, err
	}

	if s.Redis != nil {
		fields := map[string]any{
			"user_id":    u.ID,
			"email":      u.Email,
			"name":       u.Name,
			"user_image": u.UserImage,
			"sid":        sid,
			"created_at": nowRFC3339(),
		}
		key := SessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, sessionTTL)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

type LoginResponse struct {
	UserID   string `json:"user_id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResponse, TokenPair, error) {
	u, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return &LoginResponse{UserID: u.ID, Email: u.Email, Name: u.Name, Username: u.Username}, pair, nil
}

// Refresh validates the refresh token against the current session and rotates both tokens.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	u, err := s.Repo.GetByID(ctx, claims.UserID)
	if err != nil || u == nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	if s.Redis != nil {
		data, rErr := s.Redis.HGetAll(ctx, SessionKey(u.ID)).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, "", ErrInvalidCredentials
		}
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return TokenPair{}, "", err
	}
	return pair, u.ID, nil
}

// Logout drops the Redis session so outstanding access tokens stop working.
func (s *Service) Logout(ctx context.Context, userID string) error {
	if s.Redis == nil || userID == "" {
		return nil
	}
	return helpers.RedisDel(ctx, s.Redis, SessionKey(userID))
}

type Profile struct {
	User           *entity.User
	FollowersCount int
	FollowingCount int
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, ErrUserNotFound)
	}
	return s.withCounts(ctx, u)
}

type PublicProfile struct {
	Profile
	IsFollowing bool
}

// ViewByUsername returns the public profile of username as seen by viewerID.
func (s *Service) ViewByUsername(ctx context.Context, viewerID, username string) (*PublicProfile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, badRequest("missing username")
	}
	u, err := s.Repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, storeErr(err, ErrUserNotFound)
	}
	p, err := s.withCounts(ctx, u)
	if err != nil {
		return nil, err
	}
	return &PublicProfile{Profile: *p, IsFollowing: u.IsFollowedBy(viewerID)}, nil
}

// UsernameAvailable reports whether no user holds username yet.
func (s *Service) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	if strings.TrimSpace(username) == "" {
		return false, badRequest("missing username")
	}
	_, err := s.Repo.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repo.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, storeErr(err, ErrUserNotFound)
	}
	return false, nil
}

func (s *Service) withCounts(ctx context.Context, u *entity.User) (*Profile, error) {
	followers, following, err := s.Follow.Counts(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &Profile{User: u, FollowersCount: followers, FollowingCount: following}, nil
}

// UpdateProfileInput holds optional profile fields; nil means unchanged.
type UpdateProfileInput struct {
	Name         *string
	Username     *string
	Email        *string
	UserImage    *string
	Bio          *string
	AddressLine1 *string
	AddressLine2 *string
	AddressType  *string
	DateOfBirth  *time.Time
}

func (in UpdateProfileInput) empty() bool {
	return in.Name == nil && in.Username == nil && in.Email == nil && in.UserImage == nil &&
		in.Bio == nil && in.AddressLine1 == nil && in.AddressLine2 == nil &&
		in.AddressType == nil && in.DateOfBirth == nil
}

// UpdateProfile changes only the provided fields and refreshes the session hash and search index.
func (s *Service) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	if in.empty() {
		return nil, badRequest("no update fields provided")
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, ErrUserNotFound)
	}
	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Username != nil {
		u.Username = strings.TrimSpace(*in.Username)
	}
	if in.Email != nil {
		u.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.UserImage != nil {
		u.UserImage = *in.UserImage
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	if in.AddressLine1 != nil {
		u.AddressLine1 = *in.AddressLine1
	}
	if in.AddressLine2 != nil {
		u.AddressLine2 = *in.AddressLine2
	}
	if in.AddressType != nil {
		u.AddressType = entity.AddressType(*in.AddressType)
	}
	if in.DateOfBirth != nil {
		dob := *in.DateOfBirth
		u.DateOfBirth = &dob
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, fmt.Errorf("%w: email or username already taken", ErrConflict)
		}
		return nil, storeErr(err, ErrUserNotFound)
	}

	if s.Redis != nil {
		key := SessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"name":       u.Name,
			"email":      u.Email,
			"user_image": u.UserImage,
			"updated_at": nowRFC3339(),
		})
		if ttl, tErr := s.Redis.TTL(ctx, key).Result(); tErr == nil && ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		if _, pErr := pipe.Exec(ctx); pErr != nil && s.Logger != nil {
			s.Logger.WithError(pErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	_ = s.indexUser(ctx, u)
	return u, nil
}

// UploadAvatar stores the image in the object store and saves its URL as the user image.
func (s *Service) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	if s.Images == nil {
		return "", fmt.Errorf("%w: image storage not configured", ErrStore)
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", badRequest("file must be an image")
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return "", storeErr(err, ErrUserNotFound)
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
	url, err := s.Images.Upload(ctx, objectPath, contentType, r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStore, err)
	}
	u.UserImage = url
	if err := s.Repo.Update(ctx, u); err != nil {
		return "", storeErr(err, ErrUserNotFound)
	}
	if s.Redis != nil {
		s.Redis.HSet(ctx, SessionKey(u.ID), map[string]any{
			"user_image": u.UserImage,
			"updated_at": nowRFC3339(),
		})
	}
	_ = s.indexUser(ctx, u)
	return url, nil
}

func (s *Service) indexUser(ctx context.Context, u *entity.User) error {
	if s.Index == nil {
		return nil
	}
	err := s.Index.IndexUser(ctx, u)
	if err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("user index failed")
	}
	return err
}
