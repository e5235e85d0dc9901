package profile

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/meetingmeter/backend/pkg/response"
)

// Profiles is the profile KV surface the handler needs.
type Profiles interface {
	Get(ctx context.Context, userID string) (*UserProfile, error)
	Save(ctx context.Context, p *UserProfile) error
	List(ctx context.Context) (map[string]*UserProfile, error)
	Delete(ctx context.Context, userID string) error
}

// History is the session history surface the handler needs.
type History interface {
	Log(ctx context.Context, s *MeetingSession) error
	ListByUser(ctx context.Context, userID string) ([]MeetingSession, error)
	DeleteByUser(ctx context.Context, userID string) error
}

// SaveProfileRequest is the body for PUT /profile/:userId.
type SaveProfileRequest struct {
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	HourlyRate    float64 `json:"hourlyRate"`
	TotalMeetings int     `json:"totalMeetings"`
	TotalCost     float64 `json:"totalCost"`
}

// LogSessionRequest is the body for POST /profile/:userId/sessions.
type LogSessionRequest struct {
	UserName        string  `json:"userName"`
	MeetingID       string  `json:"meetingId" binding:"required"`
	DurationMinutes int     `json:"duration" binding:"required"`
	HourlyRate      float64 `json:"hourlyRate"`
	Cost            float64 `json:"cost"`
	Participants    int     `json:"participants"`
}

// Handler handles profile and session history endpoints.
type Handler struct {
	profiles Profiles
	history  History
}

// NewHandler creates a profile handler.
func NewHandler(profiles Profiles, history History) *Handler {
	return &Handler{profiles: profiles, history: history}
}

// RegisterRoutes mounts the profile endpoints on a router group.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/profile/:userId", h.Get)
	r.PUT("/profile/:userId", h.Save)
	r.DELETE("/profile/:userId", h.Delete)
	r.GET("/profile/:userId/sessions", h.ListSessions)
	r.POST("/profile/:userId/sessions", h.LogSession)
	r.GET("/profile/:userId/export", h.Export)
}

// Get handles GET /profile/:userId.
func (h *Handler) Get(c *gin.Context) {
	p, err := h.profiles.Get(c.Request.Context(), c.Param("userId"))
	if err != nil {
		response.Internal(c, "failed to load profile")
		return
	}
	if p == nil {
		response.NotFound(c, "profile not found")
		return
	}
	response.OK(c, p)
}

// Save handles PUT /profile/:userId.
func (h *Handler) Save(c *gin.Context) {
	var req SaveProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if req.HourlyRate < 0 {
		response.BadRequest(c, "hourly rate must be non-negative")
		return
	}
	p := &UserProfile{
		ID:            c.Param("userId"),
		Name:          req.Name,
		Email:         req.Email,
		HourlyRate:    req.HourlyRate,
		TotalMeetings: req.TotalMeetings,
		TotalCost:     req.TotalCost,
	}
	if err := h.profiles.Save(c.Request.Context(), p); err != nil {
		response.Internal(c, "failed to save profile")
		return
	}
	response.OK(c, p)
}

// Delete handles DELETE /profile/:userId: profile and session history go
// together.
func (h *Handler) Delete(c *gin.Context) {
	userID := c.Param("userId")
	if err := h.profiles.Delete(c.Request.Context(), userID); err != nil {
		response.Internal(c, "failed to delete profile")
		return
	}
	if err := h.history.DeleteByUser(c.Request.Context(), userID); err != nil {
		response.Internal(c, "failed to delete session history")
		return
	}
	response.NoContent(c)
}

// ListSessions handles GET /profile/:userId/sessions.
func (h *Handler) ListSessions(c *gin.Context) {
	list, err := h.history.ListByUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		response.Internal(c, "failed to list sessions")
		return
	}
	response.OK(c, gin.H{"sessions": list})
}

// LogSession handles POST /profile/:userId/sessions.
func (h *Handler) LogSession(c *gin.Context) {
	var req LogSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	s := &MeetingSession{
		UserID:          c.Param("userId"),
		UserName:        req.UserName,
		MeetingID:       req.MeetingID,
		Date:            time.Now(),
		DurationMinutes: req.DurationMinutes,
		HourlyRate:      req.HourlyRate,
		Cost:            req.Cost,
		Participants:    req.Participants,
	}
	if err := h.history.Log(c.Request.Context(), s); err != nil {
		response.Internal(c, "failed to log session")
		return
	}
	response.Created(c, s)
}

// Export handles GET /profile/:userId/export: the full aggregate as a JSON
// document.
func (h *Handler) Export(c *gin.Context) {
	userID := c.Param("userId")
	p, err := h.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to load profile")
		return
	}
	sessions, err := h.history.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.Internal(c, "failed to list sessions")
		return
	}
	response.OK(c, BuildExport(p, sessions, time.Now()))
}
