package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/campus-lms-api/internal/notice"
	"github.com/noah-isme/campus-lms-api/pkg/response"
)

// NoticeHandler exposes the caller's review banner.
type NoticeHandler struct {
	notices *notice.Registry
}

// NewNoticeHandler constructs the handler.
func NewNoticeHandler(notices *notice.Registry) *NoticeHandler {
	return &NoticeHandler{notices: notices}
}

// Current godoc
// @Summary Current review notice
// @Tags Notices
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notices [get]
func (h *NoticeHandler) Current(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, h.notices.State(claims.UserID), nil)
}

// Dismiss godoc
// @Summary Dismiss the current review notice
// @Tags Notices
// @Success 204
// @Router /notices [delete]
func (h *NoticeHandler) Dismiss(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	h.notices.Dismiss(claims.UserID)
	response.NoContent(c)
}
