package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/salon-connect/internal/application"
	"github.com/oksasatya/salon-connect/pkg/response"
	"github.com/oksasatya/salon-connect/pkg/validation"
)

type SalonHandler struct {
	Svc    *application.SalonService
	Logger *logrus.Logger
}

func NewSalonHandler(svc *application.SalonService, logger *logrus.Logger) *SalonHandler {
	return &SalonHandler{Svc: svc, Logger: logger}
}

func (h *SalonHandler) List(c *gin.Context) {
	salons, err := h.Svc.List(c.Request.Context())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, salons, "salons", gin.H{"count": len(salons)})
}

// queryFloat returns nil when key is absent; ok is false when it is present
// but not a finite number (ParseFloat accepts NaN and Inf).
func queryFloat(c *gin.Context, key string) (v *float64, ok bool) {
	raw, present := c.GetQuery(key)
	if !present || raw == "" {
		return nil, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, false
	}
	return &f, true
}

// Nearby lists active salons within radius km (default 5) of latitude/longitude.
func (h *SalonHandler) Nearby(c *gin.Context) {
	lat, okLat := queryFloat(c, "latitude")
	lng, okLng := queryFloat(c, "longitude")
	radius, okRadius := queryFloat(c, "radius")
	if !okLat || !okLng || !okRadius {
		details := map[string]string{}
		if !okLat {
			details["latitude"] = "must be a number"
		}
		if !okLng {
			details["longitude"] = "must be a number"
		}
		if !okRadius {
			details["radius"] = "must be a number"
		}
		response.Error[any](c, http.StatusBadRequest, "invalid query", details)
		return
	}

	res, err := h.Svc.FindNearby(c.Request.Context(), application.NearbyQuery{Latitude: lat, Longitude: lng, RadiusKm: radius})
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, res, "nearby salons", nil)
}

func (h *SalonHandler) Get(c *gin.Context) {
	s, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, s, "salon", nil)
}

func (h *SalonHandler) Create(c *gin.Context) {
	var in application.SalonInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	s, err := h.Svc.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, s, "salon created", nil)
}

func (h *SalonHandler) Update(c *gin.Context) {
	var in application.SalonInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	s, err := h.Svc.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, s, "salon updated", nil)
}

func (h *SalonHandler) Delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": c.Param("id"), "isActive": false}, "salon deleted", nil)
}

func (h *SalonHandler) AddReview(c *gin.Context) {
	var in application.ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	s, err := h.Svc.AddReview(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, s, "review added", nil)
}
