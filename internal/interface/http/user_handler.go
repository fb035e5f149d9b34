package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/salon-connect/internal/application"
	"github.com/oksasatya/salon-connect/internal/domain/entity"
	"github.com/oksasatya/salon-connect/pkg/helpers"
	"github.com/oksasatya/salon-connect/pkg/response"
	"github.com/oksasatya/salon-connect/pkg/validation"
)

const maxAvatarBytes = 5 << 20

type UserHandler struct {
	Svc     *application.Service
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewUserHandler(svc *application.Service, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Name     string `json:"name" binding:"omitempty,max=50"`
	Username string `json:"username" binding:"omitempty,username"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type updateProfileRequest struct {
	Name         *string `json:"name" binding:"omitempty,max=50"`
	Username     *string `json:"username" binding:"omitempty,username"`
	Email        *string `json:"email" binding:"omitempty,email"`
	UserImage    *string `json:"userImage" binding:"omitempty,url"`
	Bio          *string `json:"bio" binding:"omitempty,max=500"`
	AddressLine1 *string `json:"addressLine1"`
	AddressLine2 *string `json:"addressLine2"`
	AddressType  *string `json:"addressType" binding:"omitempty,addresstype"`
	// DateOfBirth is YYYY-MM-DD.
	DateOfBirth *string `json:"dateOfBirth" binding:"omitempty,datetime=2006-01-02"`
}

type profileView struct {
	ID             string     `json:"id"`
	Email          string     `json:"email,omitempty"`
	PhoneNumber    string     `json:"phoneNumber,omitempty"`
	Name           string     `json:"name"`
	Username       string     `json:"username"`
	UserImage      string     `json:"userImage"`
	Bio            string     `json:"bio"`
	AddressLine1   string     `json:"addressLine1,omitempty"`
	AddressLine2   string     `json:"addressLine2,omitempty"`
	AddressType    string     `json:"addressType,omitempty"`
	DateOfBirth    *time.Time `json:"dateOfBirth,omitempty"`
	FollowersCount int        `json:"followersCount"`
	FollowingCount int        `json:"followingCount"`
	IsFollowing    *bool      `json:"isFollowing,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func ownProfile(u *entity.User, followers, following int) profileView {
	return profileView{
		ID:             u.ID,
		Email:          u.Email,
		PhoneNumber:    u.PhoneNumber,
		Name:           u.Name,
		Username:       u.Username,
		UserImage:      u.UserImage,
		Bio:            u.Bio,
		AddressLine1:   u.AddressLine1,
		AddressLine2:   u.AddressLine2,
		AddressType:    string(u.AddressType),
		DateOfBirth:    u.DateOfBirth,
		FollowersCount: followers,
		FollowingCount: following,
		CreatedAt:      u.CreatedAt,
	}
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	u, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Username: req.Username,
	})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, ownProfile(u, 0, 0), "registered", nil)
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	res, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, gin.H{"user": res, "tokens": pair}, "login successful", nil)
}

func (h *UserHandler) Refresh(c *gin.Context) {
	refresh, _ := c.Cookie(helpers.RefreshCookie)
	if refresh == "" {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err == nil {
			refresh = req.RefreshToken
		}
	}
	if refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	pair, _, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	response.Success(c, http.StatusOK, pair, "token refreshed", nil)
}

func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.Svc.Logout(c.Request.Context(), currentUserID(c)); err != nil && h.Logger != nil {
		h.Logger.WithError(err).Warn("logout: session delete failed")
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, map[string]any{"logged_out": true}, "logged out", nil)
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	p, err := h.Svc.GetProfile(c.Request.Context(), currentUserID(c))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, ownProfile(p.User, p.FollowersCount, p.FollowingCount), "profile", nil)
}

// ViewByUsername returns another user's public profile.
func (h *UserHandler) ViewByUsername(c *gin.Context) {
	p, err := h.Svc.ViewByUsername(c.Request.Context(), currentUserID(c), c.Param("username"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	u := p.User
	isFollowing := p.IsFollowing
	response.Success(c, http.StatusOK, profileView{
		ID:             u.ID,
		Name:           u.Name,
		Username:       u.Username,
		UserImage:      u.UserImage,
		Bio:            u.Bio,
		FollowersCount: p.FollowersCount,
		FollowingCount: p.FollowingCount,
		IsFollowing:    &isFollowing,
		CreatedAt:      u.CreatedAt,
	}, "user", nil)
}

func (h *UserHandler) UsernameAvailable(c *gin.Context) {
	username := strings.TrimSpace(c.Query("username"))
	ok, err := h.Svc.UsernameAvailable(c.Request.Context(), username)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"username": username, "available": ok}, "username availability", nil)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	in := application.UpdateProfileInput{
		Name:         req.Name,
		Username:     req.Username,
		Email:        req.Email,
		UserImage:    req.UserImage,
		Bio:          req.Bio,
		AddressLine1: req.AddressLine1,
		AddressLine2: req.AddressLine2,
		AddressType:  req.AddressType,
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse(time.DateOnly, *req.DateOfBirth)
		if err != nil {
			response.Error[any](c, http.StatusBadRequest, "invalid payload", map[string]string{"dateOfBirth": "must be YYYY-MM-DD"})
			return
		}
		in.DateOfBirth = &dob
	}

	ctx := c.Request.Context()
	u, err := h.Svc.UpdateProfile(ctx, currentUserID(c), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	followers, following, err := h.Svc.Follow.Counts(ctx, u.ID)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, ownProfile(u, followers, following), "profile updated", nil)
}

func (h *UserHandler) UploadAvatar(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "file is required", map[string]string{"file": "is required"})
		return
	}
	if fh.Size > maxAvatarBytes {
		response.Error[any](c, http.StatusBadRequest, "file too large", map[string]string{"file": "max 5MB"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "cannot read file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	contentType := fh.Header.Get("Content-Type")
	url, err := h.Svc.UploadAvatar(c.Request.Context(), currentUserID(c), f, fh.Filename, contentType)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"userImage": url}, "avatar uploaded", nil)
}
