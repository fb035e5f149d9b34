package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/salon-connect/internal/application"
	"github.com/oksasatya/salon-connect/internal/domain/entity"
	"github.com/oksasatya/salon-connect/internal/infrastructure/memory"
	"github.com/oksasatya/salon-connect/pkg/geo"
	"github.com/oksasatya/salon-connect/pkg/helpers"
	"github.com/oksasatya/salon-connect/pkg/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.Init()
	os.Exit(m.Run())
}

type envelope struct {
	Status  int             `json:"status"`
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Meta    map[string]any  `json:"meta"`
	Error   map[string]any  `json:"error"`
}

type testServer struct {
	engine *gin.Engine
	users  *memory.UserRepository
	salons *memory.SalonRepository
}

// asUser stands in for the auth middleware.
func asUser(c *gin.Context) {
	if id := c.GetHeader("X-Test-User"); id != "" {
		c.Set(CtxUserIDKey, id)
	}
	c.Next()
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	logger := helpers.NewDiscardLogger()
	users := memory.NewUserRepository()
	salons := memory.NewSalonRepository()

	follow := application.NewFollowService(users, nil, logger)
	search := application.NewSearchService(users, nil, logger)
	jwt := helpers.NewJWTManager("a", "r", time.Minute, time.Hour)
	userSvc := application.NewService(users, follow, jwt, nil, nil, logger, nil)

	uh := NewUserHandler(userSvc, logger, "localhost", false)
	fh := NewFollowHandler(follow, search, logger)
	sh := NewSalonHandler(application.NewSalonService(salons, nil, logger), logger)

	r := gin.New()
	api := r.Group("/api", asUser)
	api.POST("/register", uh.Register)
	api.POST("/login", uh.Login)
	api.GET("/profile", uh.GetProfile)
	api.PUT("/profile", uh.UpdateProfile)
	api.GET("/users/by-username/:username", uh.ViewByUsername)
	api.GET("/users/username-available", uh.UsernameAvailable)
	api.POST("/users/follow/:userId", fh.ToggleFollow)
	api.GET("/users/:userId/followers", fh.Followers)
	api.GET("/users/:userId/following", fh.Following)
	api.GET("/users/search", fh.SearchUsers)
	api.GET("/salons", sh.List)
	api.GET("/salons/nearby", sh.Nearby)
	api.GET("/salons/:id", sh.Get)
	api.POST("/salons", sh.Create)
	api.DELETE("/salons/:id", sh.Delete)
	api.POST("/salons/:id/reviews", sh.AddReview)

	return testServer{engine: r, users: users, salons: salons}
}

func (s testServer) do(t *testing.T, method, path, user string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func (s testServer) addUser(t *testing.T, id, name, username string) {
	t.Helper()
	require.NoError(t, s.users.Create(context.Background(), &entity.User{
		ID: id, Email: id + "@example.test", Name: name, Username: username,
	}))
}

func TestToggleFollowTwice(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "a", "Alice", "alice")
	s.addUser(t, "b", "Bob", "bob")

	w, env := s.do(t, http.MethodPost, "/api/users/follow/b", "a", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"followed"}`, string(env.Data))

	w, env = s.do(t, http.MethodPost, "/api/users/follow/b", "a", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"unfollowed"}`, string(env.Data))
}

func TestToggleFollowErrors(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "a", "Alice", "alice")

	w, env := s.do(t, http.MethodPost, "/api/users/follow/ghost", "a", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "not_found", env.Error["kind"])

	w, env = s.do(t, http.MethodPost, "/api/users/follow/a", "a", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "bad_request", env.Error["kind"])
}

func TestFollowersListing(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	s.addUser(t, "t", "Target", "target")
	s.addUser(t, "a", "Alice", "alice")
	s.addUser(t, "b", "Bob", "bob")
	require.NoError(t, s.users.AddFollow(ctx, "a", "t"))
	require.NoError(t, s.users.AddFollow(ctx, "b", "t"))
	require.NoError(t, s.users.AddFollow(ctx, "b", "a"))

	w, env := s.do(t, http.MethodGet, "/api/users/t/followers?limit=abc&offset=0", "a", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries []application.FollowEntry
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].ID)
	assert.True(t, entries[0].IsFollowing)
	assert.EqualValues(t, 10, env.Meta["limit"])

	w, env = s.do(t, http.MethodGet, "/api/users/t/followers?searchText=ali", "a", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].ID)

	w, _ = s.do(t, http.MethodGet, "/api/users/ghost/following", "a", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSearchUsersExcludesCaller(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "a", "Jan A", "jan_a")
	s.addUser(t, "b", "Jane", "jane")

	w, env := s.do(t, http.MethodGet, "/api/users/search?text=jan", "a", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rows []application.UserSummary
	require.NoError(t, json.Unmarshal(env.Data, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "b", rows[0].ID)
}

func TestNearby(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	require.NoError(t, s.salons.Create(ctx, &entity.Salon{
		ID: "s1", Name: "Here", IsActive: true, Location: geo.Point{Latitude: 12, Longitude: 77},
	}))

	w, env := s.do(t, http.MethodGet, "/api/salons/nearby?longitude=77", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)

	w, env = s.do(t, http.MethodGet, "/api/salons/nearby?latitude=abc&longitude=77", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "must be a number", env.Error["latitude"])

	for _, radius := range []string{"NaN", "Inf", "+Inf", "-Inf", "1e400"} {
		w, env = s.do(t, http.MethodGet, "/api/salons/nearby?latitude=12&longitude=77&radius="+radius, "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, radius)
		assert.False(t, env.Success, radius)
		assert.Equal(t, "must be a number", env.Error["radius"], radius)
	}

	w, env = s.do(t, http.MethodGet, "/api/salons/nearby?latitude=12&longitude=77&radius=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res application.NearbyResult
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.Equal(t, 1, res.Count)
	assert.Equal(t, "s1", res.Data[0].ID)
	assert.Equal(t, 0.0, res.Data[0].Distance)
}

func TestSalonLifecycle(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodPost, "/api/salons", "a", map[string]any{"name": "No categories"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	payload := map[string]any{
		"name":         "Studio",
		"images":       []string{"https://img.example.test/1.jpg"},
		"locationName": "Center",
		"description":  "Hair",
		"location":     map[string]float64{"latitude": 1, "longitude": 2},
		"stylists":     []any{},
		"serviceCategories": []any{map[string]any{
			"name":     "Hair",
			"services": []any{map[string]any{"title": "Cut", "price": "₹400"}},
		}},
	}
	w, env := s.do(t, http.MethodPost, "/api/salons", "a", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created entity.Salon
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "₹400", created.AveragePrice)

	w, _ = s.do(t, http.MethodPost, fmt.Sprintf("/api/salons/%s/reviews", created.ID), "a",
		map[string]any{"review_message": "nice", "rating": 4, "customerName": "Ann"})
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = s.do(t, http.MethodGet, "/api/salons/"+created.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = s.do(t, http.MethodDelete, "/api/salons/"+created.ID, "a", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(t, http.MethodGet, "/api/salons/"+created.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "not_found", env.Error["kind"])
}

func TestRegisterLoginProfile(t *testing.T) {
	s := newTestServer(t)

	w, env := s.do(t, http.MethodPost, "/api/register", "", map[string]any{"email": "bad", "password": "short"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, env.Error, "email")
	assert.Contains(t, env.Error, "password")

	w, env = s.do(t, http.MethodPost, "/api/register", "", map[string]any{
		"email": "jane@example.test", "password": "password123", "name": "Jane", "username": "jane",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var reg profileView
	require.NoError(t, json.Unmarshal(env.Data, &reg))

	w, _ = s.do(t, http.MethodPost, "/api/register", "", map[string]any{
		"email": "jane@example.test", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = s.do(t, http.MethodPost, "/api/login", "", map[string]any{"email": "jane@example.test", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Result().Cookies())

	w, _ = s.do(t, http.MethodPost, "/api/login", "", map[string]any{"email": "jane@example.test", "password": "nope-nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = s.do(t, http.MethodPut, "/api/profile", reg.ID, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, env = s.do(t, http.MethodPut, "/api/profile", reg.ID, map[string]any{"bio": "hello", "dateOfBirth": "1990-05-17"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, env = s.do(t, http.MethodGet, "/api/profile", reg.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p profileView
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "hello", p.Bio)
	assert.Nil(t, p.IsFollowing)

	w, env = s.do(t, http.MethodGet, "/api/users/username-available?username=jane", reg.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"jane","available":false}`, string(env.Data))
}

func TestViewByUsername(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "a", "Alice", "alice")
	s.addUser(t, "b", "Bob", "bob")
	require.NoError(t, s.users.AddFollow(context.Background(), "b", "a"))

	w, env := s.do(t, http.MethodGet, "/api/users/by-username/alice", "b", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p profileView
	require.NoError(t, json.Unmarshal(env.Data, &p))
	require.NotNil(t, p.IsFollowing)
	assert.True(t, *p.IsFollowing)
	assert.Equal(t, 1, p.FollowersCount)
	assert.Empty(t, p.Email)

	w, _ = s.do(t, http.MethodGet, "/api/users/by-username/nobody", "b", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
		kind   string
	}{
		{application.ErrSelfFollow, http.StatusBadRequest, "bad_request"},
		{application.ErrInvalidCredentials, http.StatusUnauthorized, "unauthorized"},
		{application.ErrSalonNotFound, http.StatusNotFound, "not_found"},
		{fmt.Errorf("%w: taken", application.ErrConflict), http.StatusConflict, "conflict"},
		{fmt.Errorf("%w: half", application.ErrInconsistent), http.StatusInternalServerError, "inconsistent"},
		{fmt.Errorf("%w: down", application.ErrStore), http.StatusInternalServerError, "store"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tc := range cases {
		status, kind := statusFor(tc.err)
		assert.Equal(t, tc.status, status, tc.err.Error())
		assert.Equal(t, tc.kind, kind, tc.err.Error())
	}
}

func TestWriteErrorHidesServerDetail(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	writeError(c, helpers.NewDiscardLogger(), fmt.Errorf("%w: half", application.ErrInconsistent))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "inconsistent", env.Error["kind"])
	assert.NotContains(t, env.Error, "detail")
	assert.Equal(t, "operation partially applied", env.Message)
}
