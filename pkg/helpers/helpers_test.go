package helpers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/salon-connect/config"
)

func TestJWTRoundTrip(t *testing.T) {
	m := NewJWTManager("access", "refresh", time.Minute, time.Hour)

	access, aexp, err := m.GenerateAccessToken("u1", "s1")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), aexp, 5*time.Second)

	claims, err := m.ParseAccessToken(access)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "s1", claims.SessionID)
	assert.Equal(t, "salon-connect", claims.Issuer)

	// access tokens are not refresh tokens
	_, err = m.ParseRefreshToken(access)
	require.Error(t, err)

	refresh, _, err := m.GenerateRefreshToken("u1", "s1")
	require.NoError(t, err)
	claims, err = m.ParseRefreshToken(refresh)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}

func TestJWTRejectsExpiredAndAnonymous(t *testing.T) {
	m := NewJWTManager("access", "refresh", -time.Minute, time.Hour)
	expired, _, err := m.GenerateAccessToken("u1", "s1")
	require.NoError(t, err)
	_, err = m.ParseAccessToken(expired)
	require.Error(t, err)

	m.AccessTTL = time.Minute
	anon, _, err := m.GenerateAccessToken("", "s1")
	require.NoError(t, err)
	_, err = m.ParseAccessToken(anon)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	prev := PasswordCost
	PasswordCost = bcrypt.MinCost
	t.Cleanup(func() { PasswordCost = prev })

	hash, err := HashPassword("password123")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", hash)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
	assert.True(t, CompareHashAndPassword(hash, "password123"))
	assert.False(t, CompareHashAndPassword(hash, "password124"))
	assert.False(t, CompareHashAndPassword("", ""))
}

func TestNewESClientFromConfig(t *testing.T) {
	es, err := NewESClient(&config.Config{ElasticsearchAddrs: "http://es-1:9200, http://es-2:9200"})
	require.NoError(t, err)
	assert.NotNil(t, es)
}

func TestObjectURLs(t *testing.T) {
	s := &S3Store{Bucket: "avatars", Region: "eu-west-1"}
	assert.Equal(t, "https://avatars.s3.eu-west-1.amazonaws.com/a/b.png", s.URL("a/b.png"))
	s.PublicURL = "https://cdn.example.test/"
	assert.Equal(t, "https://cdn.example.test/a/b.png", s.URL("a/b.png"))
	assert.Equal(t, "https://storage.googleapis.com/bkt/a/b.png", GCSPublicURL("bkt", "a/b.png"))
}

func TestS3UploadAgainstCompatibleEndpoint(t *testing.T) {
	var method, path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store, err := NewS3Store(context.Background(), S3Options{
		Region:    "us-east-1",
		Bucket:    "avatars",
		AccessKey: "key",
		SecretKey: "secret",
		Endpoint:  srv.URL,
		PublicURL: "https://cdn.example.test",
	})
	require.NoError(t, err)

	url, err := store.Upload(context.Background(), "avatars/u1/x.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/avatars/avatars/u1/x.png", path)
	assert.Equal(t, "https://cdn.example.test/avatars/u1/x.png", url)
}

func TestCookiePairAndClear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	m := NewCookie("example.test", true)
	m.SetPair(c, "acc", time.Now().Add(time.Hour), "ref", time.Now().Add(-time.Hour))

	cookies := map[string]*http.Cookie{}
	for _, ck := range w.Result().Cookies() {
		cookies[ck.Name] = ck
	}
	require.Contains(t, cookies, AccessCookie)
	require.Contains(t, cookies, RefreshCookie)
	assert.Equal(t, "acc", cookies[AccessCookie].Value)
	assert.True(t, cookies[AccessCookie].HttpOnly)
	assert.True(t, cookies[AccessCookie].Secure)
	assert.Greater(t, cookies[AccessCookie].MaxAge, 3500)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	m.Clear(c)
	for _, ck := range w.Result().Cookies() {
		assert.Empty(t, ck.Value)
		assert.Negative(t, ck.MaxAge)
	}
}

func TestNilPublisher(t *testing.T) {
	var p *RabbitPublisher
	require.ErrorIs(t, p.PublishJSON(context.Background(), map[string]string{"a": "b"}), ErrPublisherClosed)
	p.Close()
}
