package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-lms-api/internal/dto"
	"github.com/noah-isme/campus-lms-api/internal/middleware"
	"github.com/noah-isme/campus-lms-api/internal/models"
	appErrors "github.com/noah-isme/campus-lms-api/pkg/errors"
	"github.com/noah-isme/campus-lms-api/pkg/response"
)

type mentorCapacityService interface {
	LoadMore(ctx context.Context, filter models.MentorCapacityFilter, loaded int) (*dto.MentorCapacityPage, error)
}

// MentorCapacityHandler lists mentors with free slots.
type MentorCapacityHandler struct {
	service mentorCapacityService
}

// NewMentorCapacityHandler constructs the handler.
func NewMentorCapacityHandler(svc mentorCapacityService) *MentorCapacityHandler {
	return &MentorCapacityHandler{service: svc}
}

// List godoc
// @Summary Mentors with capacity
// @Description Returns the next window of mentors after the first `loaded` entries
// @Tags Mentors
// @Produce json
// @Param campus query string false "Campus"
// @Param house query string false "House"
// @Param phase query string false "Phase"
// @Param loaded query int false "Entries already shown"
// @Success 200 {object} response.Envelope
// @Router /mentors/capacity [get]
func (h *MentorCapacityHandler) List(c *gin.Context) {
	filter := models.MentorCapacityFilter{
		Campus: strings.TrimSpace(c.Query("campus")),
		House:  strings.TrimSpace(c.Query("house")),
		Phase:  strings.TrimSpace(c.Query("phase")),
	}
	loaded, err := strconv.Atoi(c.DefaultQuery("loaded", "0"))
	if err != nil || loaded < 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "loaded must be a non-negative integer"))
		return
	}

	start := time.Now()
	page, err := h.service.LoadMore(c.Request.Context(), filter, loaded)
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{"processing_time_ms": time.Since(start).Milliseconds()}
	}
	response.JSON(c, http.StatusOK, page, nil, meta)
}
