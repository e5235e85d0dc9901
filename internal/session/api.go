package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/meetingmeter/backend/internal/meeting"
)

// API is the server surface the session controller needs: the three logical
// meeting operations.
type API interface {
	Join(ctx context.Context, meetingID, userID, userName string) (*meeting.Record, bool, error)
	UpdateRate(ctx context.Context, meetingID, userID, userName string, rate float64) (*meeting.Record, error)
	GetMeeting(ctx context.Context, meetingID string) (*meeting.Record, error)
}

// Client is the HTTP implementation of API against the meter server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates an API client for the given server base URL
// (e.g. http://localhost:8080).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type envelope struct {
	Success bool `json:"success"`
	Data    struct {
		MeetingData *meeting.Record `json:"meetingData"`
		UserIsHost  *bool           `json:"userIsHost"`
	} `json:"data"`
	Error string `json:"error"`
}

// Join calls POST /meeting/join.
func (c *Client) Join(ctx context.Context, meetingID, userID, userName string) (*meeting.Record, bool, error) {
	env, err := c.post(ctx, "/meeting/join", map[string]interface{}{
		"meetingId": meetingID,
		"userId":    userID,
		"userName":  userName,
	})
	if err != nil {
		return nil, false, err
	}
	isHost := env.Data.UserIsHost != nil && *env.Data.UserIsHost
	return env.Data.MeetingData, isHost, nil
}

// UpdateRate calls POST /meeting/update-rate.
func (c *Client) UpdateRate(ctx context.Context, meetingID, userID, userName string, rate float64) (*meeting.Record, error) {
	env, err := c.post(ctx, "/meeting/update-rate", map[string]interface{}{
		"meetingId":  meetingID,
		"userId":     userID,
		"userName":   userName,
		"hourlyRate": rate,
	})
	if err != nil {
		return nil, err
	}
	return env.Data.MeetingData, nil
}

// GetMeeting calls GET /meeting/:id. Unknown meetings map to
// meeting.ErrNotFound.
func (c *Client) GetMeeting(ctx context.Context, meetingID string) (*meeting.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/meeting/"+meetingID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, meeting.ErrNotFound
	}
	env, err := decode(resp)
	if err != nil {
		return nil, err
	}
	return env.Data.MeetingData, nil
}

func (c *Client) post(ctx context.Context, path string, body map[string]interface{}) (*envelope, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return decode(resp)
}

func decode(resp *http.Response) (*envelope, error) {
	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || !env.Success {
		msg := env.Error
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("server rejected request: %s", msg)
	}
	return &env, nil
}
