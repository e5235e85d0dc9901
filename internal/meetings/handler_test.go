package meetings

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/meetingmeter/backend/internal/meeting"
)

type envelope struct {
	Success bool `json:"success"`
	Data    struct {
		MeetingData *meeting.Record `json:"meetingData"`
		UserIsHost  *bool           `json:"userIsHost"`
	} `json:"data"`
	Error string `json:"error"`
}

func newTestRouter(t *testing.T) (*gin.Engine, *meeting.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := meeting.NewStore(nil)
	router := gin.New()
	NewHandler(store).RegisterRoutes(router)
	return router, store
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w, env
}

func TestJoinCreatesAndReturnsRecord(t *testing.T) {
	router, _ := newTestRouter(t)

	w, env := doJSON(t, router, http.MethodPost, "/meeting/join", gin.H{
		"meetingId": "m1", "userId": "u1", "userName": "Alice",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !env.Success {
		t.Fatalf("expected success, got %q", env.Error)
	}
	rec := env.Data.MeetingData
	if rec == nil || len(rec.Participants) != 1 || rec.Participants[0].ID != "u1" {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Participants[0].HourlyRate != 0 {
		t.Fatalf("new participant should start with rate 0, got %v", rec.Participants[0].HourlyRate)
	}
	if env.Data.UserIsHost == nil || !*env.Data.UserIsHost {
		t.Fatal("first joiner should be flagged as host")
	}
}

func TestSecondJoinerIsNotHost(t *testing.T) {
	router, _ := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/meeting/join", gin.H{"meetingId": "m1", "userId": "u1", "userName": "Alice"})
	_, env := doJSON(t, router, http.MethodPost, "/meeting/join", gin.H{"meetingId": "m1", "userId": "u2", "userName": "Bob"})
	if env.Data.UserIsHost == nil || *env.Data.UserIsHost {
		t.Fatal("second joiner must not be host")
	}
	if got := len(env.Data.MeetingData.Participants); got != 2 {
		t.Fatalf("expected 2 participants, got %d", got)
	}
}

func TestUpdateRateRoundTrip(t *testing.T) {
	router, _ := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/meeting/join", gin.H{"meetingId": "m1", "userId": "u1", "userName": "Alice"})

	w, env := doJSON(t, router, http.MethodPost, "/meeting/update-rate", gin.H{
		"meetingId": "m1", "userId": "u1", "userName": "Alice", "hourlyRate": 50,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	p := env.Data.MeetingData.Find("u1")
	if p == nil || p.HourlyRate != 50 {
		t.Fatalf("expected rate 50, got %+v", p)
	}
	if got := meeting.TotalCost(env.Data.MeetingData, 30); got != 25 {
		t.Fatalf("expected cost 25 at 30 minutes, got %v", got)
	}
}

func TestUpdateRateZeroIsValid(t *testing.T) {
	router, _ := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/meeting/join", gin.H{"meetingId": "m1", "userId": "u1", "userName": "Alice"})
	doJSON(t, router, http.MethodPost, "/meeting/update-rate", gin.H{"meetingId": "m1", "userId": "u1", "userName": "Alice", "hourlyRate": 50})

	w, env := doJSON(t, router, http.MethodPost, "/meeting/update-rate", gin.H{
		"meetingId": "m1", "userId": "u1", "userName": "Alice", "hourlyRate": 0,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for explicit zero rate, got %d: %s", w.Code, w.Body.String())
	}
	if got := env.Data.MeetingData.Find("u1").HourlyRate; got != 0 {
		t.Fatalf("expected rate reset to 0, got %v", got)
	}
}

func TestNegativeRateRejectedWithoutMutation(t *testing.T) {
	router, store := newTestRouter(t)
	doJSON(t, router, http.MethodPost, "/meeting/join", gin.H{"meetingId": "m1", "userId": "u1", "userName": "Alice"})

	w, _ := doJSON(t, router, http.MethodPost, "/meeting/update-rate", gin.H{
		"meetingId": "m1", "userId": "u1", "userName": "Alice", "hourlyRate": -10,
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	rec, err := store.Get("m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got := rec.Find("u1").HourlyRate; got != 0 {
		t.Fatalf("rejected update mutated state: rate %v", got)
	}
}

func TestGetUnknownMeetingIs404(t *testing.T) {
	router, _ := newTestRouter(t)
	w, env := doJSON(t, router, http.MethodGet, "/meeting/nope", nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if env.Success {
		t.Fatal("expected failure envelope")
	}
}

func TestGetDoesNotCreate(t *testing.T) {
	router, store := newTestRouter(t)
	doJSON(t, router, http.MethodGet, "/meeting/ghost", nil)
	if store.Len() != 0 {
		t.Fatal("read endpoint created a record")
	}
}

func TestMissingFieldsRejected(t *testing.T) {
	router, _ := newTestRouter(t)
	tests := []struct {
		name string
		path string
		body gin.H
	}{
		{"join without meeting id", "/meeting/join", gin.H{"userId": "u1"}},
		{"join without user id", "/meeting/join", gin.H{"meetingId": "m1"}},
		{"rate without rate", "/meeting/update-rate", gin.H{"meetingId": "m1", "userId": "u1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := doJSON(t, router, http.MethodPost, tt.path, tt.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
		})
	}
}
