package application

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/salon-connect/internal/infrastructure/memory"
	"github.com/oksasatya/salon-connect/pkg/helpers"
)

type fakeImages struct {
	path, contentType, body string
}

func (f *fakeImages) Upload(_ context.Context, objectPath, contentType string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.path, f.contentType, f.body = objectPath, contentType, string(b)
	return "https://cdn.example.test/" + objectPath, nil
}

type userFixture struct {
	repo   *memory.UserRepository
	svc    *Service
	jwt    *helpers.JWTManager
	images *fakeImages
	index  *fakeIndex
}

func newUserFixture(t *testing.T) userFixture {
	t.Helper()
	repo := memory.NewUserRepository()
	logger := helpers.NewDiscardLogger()
	jwt := helpers.NewJWTManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	images := &fakeImages{}
	index := &fakeIndex{}
	follow := NewFollowService(repo, nil, logger)
	return userFixture{
		repo:   repo,
		svc:    NewService(repo, follow, jwt, images, nil, logger, index),
		jwt:    jwt,
		images: images,
		index:  index,
	}
}

func (f userFixture) register(t *testing.T, email, username string) string {
	t.Helper()
	u, err := f.svc.Register(context.Background(), RegisterInput{Email: email, Password: "secret123", Name: "N " + username, Username: username})
	require.NoError(t, err)
	return u.ID
}

func TestRegisterAndLogin(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	id := f.register(t, "  Jane@Example.test ", "jane")
	assert.Equal(t, []string{id}, f.index.indexed)

	resp, pair, err := f.svc.Login(ctx, "jane@example.test", "secret123")
	require.NoError(t, err)
	assert.Equal(t, id, resp.UserID)
	assert.Equal(t, "jane@example.test", resp.Email)

	claims, err := f.jwt.ParseAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, id, claims.UserID)
	assert.NotEmpty(t, claims.SessionID)
	assert.True(t, pair.RefreshTokenExpiry.After(pair.AccessTokenExpiry))

	_, _, err = f.svc.Login(ctx, "jane@example.test", "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)
	_, _, err = f.svc.Login(ctx, "nobody@example.test", "secret123")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestRegisterRejectsDuplicatesAndBlanks(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	f.register(t, "jane@example.test", "jane")

	_, err := f.svc.Register(ctx, RegisterInput{Email: "JANE@example.test", Password: "x"})
	require.ErrorIs(t, err, ErrConflict)
	_, err = f.svc.Register(ctx, RegisterInput{Email: "other@example.test", Password: "x", Username: "jane"})
	require.ErrorIs(t, err, ErrConflict)
	_, err = f.svc.Register(ctx, RegisterInput{Email: "a@example.test"})
	require.ErrorIs(t, err, ErrBadRequest)
}

func TestRefresh(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	id := f.register(t, "jane@example.test", "jane")
	_, pair, err := f.svc.Login(ctx, "jane@example.test", "secret123")
	require.NoError(t, err)

	next, uid, err := f.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, id, uid)
	assert.NotEmpty(t, next.AccessToken)

	_, _, err = f.svc.Refresh(ctx, pair.AccessToken)
	require.ErrorIs(t, err, ErrUnauthorized)
	_, _, err = f.svc.Refresh(ctx, "garbage")
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestUpdateProfile(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	id := f.register(t, "jane@example.test", "jane")
	f.register(t, "bob@example.test", "bob")

	_, err := f.svc.UpdateProfile(ctx, id, UpdateProfileInput{})
	require.ErrorIs(t, err, ErrBadRequest)

	dob := time.Date(1990, 5, 17, 0, 0, 0, 0, time.UTC)
	u, err := f.svc.UpdateProfile(ctx, id, UpdateProfileInput{Name: ptr(" Jane D "), Bio: ptr("hi"), DateOfBirth: &dob})
	require.NoError(t, err)
	assert.Equal(t, "Jane D", u.Name)
	assert.Equal(t, "hi", u.Bio)
	require.NotNil(t, u.DateOfBirth)
	assert.True(t, dob.Equal(*u.DateOfBirth))

	_, err = f.svc.UpdateProfile(ctx, id, UpdateProfileInput{Username: ptr("bob")})
	require.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.UpdateProfile(ctx, "ghost", UpdateProfileInput{Bio: ptr("x")})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUploadAvatar(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	id := f.register(t, "jane@example.test", "jane")

	_, err := f.svc.UploadAvatar(ctx, id, strings.NewReader("%PDF"), "cv.pdf", "application/pdf")
	require.ErrorIs(t, err, ErrBadRequest)

	url, err := f.svc.UploadAvatar(ctx, id, strings.NewReader("png-bytes"), "Me.PNG", "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(f.images.path, "avatars/"+id+"/"))
	assert.True(t, strings.HasSuffix(f.images.path, ".png"))
	assert.Equal(t, "png-bytes", f.images.body)
	assert.Equal(t, "https://cdn.example.test/"+f.images.path, url)

	p, err := f.svc.GetProfile(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, url, p.User.UserImage)

	f.svc.Images = nil
	_, err = f.svc.UploadAvatar(ctx, id, strings.NewReader("x"), "a.png", "image/png")
	require.ErrorIs(t, err, ErrStore)
}

func TestViewByUsernameAndAvailability(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()
	jane := f.register(t, "jane@example.test", "jane")
	bob := f.register(t, "bob@example.test", "bob")

	p, err := f.svc.ViewByUsername(ctx, bob, "jane")
	require.NoError(t, err)
	assert.False(t, p.IsFollowing)

	_, err = f.svc.Follow.ToggleFollow(ctx, bob, jane)
	require.NoError(t, err)

	p, err = f.svc.ViewByUsername(ctx, bob, "jane")
	require.NoError(t, err)
	assert.True(t, p.IsFollowing)
	assert.Equal(t, 1, p.FollowersCount)
	assert.Equal(t, 0, p.FollowingCount)

	_, err = f.svc.ViewByUsername(ctx, bob, "nobody")
	require.ErrorIs(t, err, ErrNotFound)

	free, err := f.svc.UsernameAvailable(ctx, "jane")
	require.NoError(t, err)
	assert.False(t, free)
	free, err = f.svc.UsernameAvailable(ctx, "janet")
	require.NoError(t, err)
	assert.True(t, free)
	_, err = f.svc.UsernameAvailable(ctx, " ")
	require.ErrorIs(t, err, ErrBadRequest)
}

func TestLogoutWithoutRedis(t *testing.T) {
	f := newUserFixture(t)
	require.NoError(t, f.svc.Logout(context.Background(), "anyone"))
}
