// Package meetings exposes the meeting record over HTTP: join, rate update,
// and the read endpoint the polling clients hit.
package meetings

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/meetingmeter/backend/internal/meeting"
	"github.com/meetingmeter/backend/pkg/response"
)

// JoinRequest is the body for POST /meeting/join.
type JoinRequest struct {
	MeetingID string `json:"meetingId" binding:"required"`
	UserID    string `json:"userId" binding:"required"`
	UserName  string `json:"userName"`
}

// UpdateRateRequest is the body for POST /meeting/update-rate.
type UpdateRateRequest struct {
	MeetingID  string   `json:"meetingId" binding:"required"`
	UserID     string   `json:"userId" binding:"required"`
	UserName   string   `json:"userName"`
	HourlyRate *float64 `json:"hourlyRate" binding:"required"`
}

// MeetingPayload is the data half of every successful response.
type MeetingPayload struct {
	MeetingData *meeting.Record `json:"meetingData"`
	UserIsHost  *bool           `json:"userIsHost,omitempty"`
}

// Handler handles meeting HTTP endpoints.
type Handler struct {
	store *meeting.Store
}

// NewHandler creates a meeting handler over the injected store.
func NewHandler(store *meeting.Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the meeting endpoints on a router group.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/meeting/join", h.Join)
	r.POST("/meeting/update-rate", h.UpdateRate)
	r.GET("/meeting/:meetingId", h.Get)
}

// Join handles POST /meeting/join: upsert the participant, return the full
// record and whether the caller is host.
func (h *Handler) Join(c *gin.Context) {
	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	rec, isHost, err := h.store.Join(req.MeetingID, req.UserID, req.UserName)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	response.OK(c, MeetingPayload{MeetingData: rec, UserIsHost: &isHost})
}

// UpdateRate handles POST /meeting/update-rate: replace the participant's
// hourly rate and return the full record.
func (h *Handler) UpdateRate(c *gin.Context) {
	var req UpdateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	rec, err := h.store.SetRate(req.MeetingID, req.UserID, req.UserName, *req.HourlyRate)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	response.OK(c, MeetingPayload{MeetingData: rec})
}

// Get handles GET /meeting/:meetingId, the pull-propagation read. It never
// creates a record.
func (h *Handler) Get(c *gin.Context) {
	rec, err := h.store.Get(c.Param("meetingId"))
	if err != nil {
		if errors.Is(err, meeting.ErrNotFound) {
			response.NotFound(c, "meeting not found")
			return
		}
		writeStoreError(c, err)
		return
	}
	response.OK(c, MeetingPayload{MeetingData: rec})
}

func writeStoreError(c *gin.Context, err error) {
	if errors.Is(err, meeting.ErrInvalidInput) {
		response.BadRequest(c, err.Error())
		return
	}
	response.Internal(c, "meeting store error")
}
