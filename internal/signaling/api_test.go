package signaling

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Acon1tum/qhealth-backend-v2-sub002/internal/platform/auth"
)

func newAPIServer(t *testing.T) (*echo.Echo, *Coordinator, string) {
	t.Helper()

	verifier := auth.NewVerifier("api-test-secret")
	coord := NewCoordinator(zerolog.Nop(), nil)

	e := echo.New()
	g := e.Group("/api/v1")
	g.Use(auth.Middleware(verifier))
	NewAPI(coord).RegisterRoutes(g)

	token, err := verifier.Mint(1, "ADMIN", time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return e, coord, token
}

func TestAPI_GetRoom(t *testing.T) {
	e, coord, token := newAPIServer(t)

	doctor := newTestSocket("sock-a", 1, "DOCTOR")
	coord.Register(doctor)
	joinRoom(t, coord, doctor, "room-42")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/webrtc/rooms/room-42", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var status RoomStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if status.RoomID != "room-42" || status.Participants != 1 {
		t.Fatalf("unexpected status %+v", status)
	}
	if !status.Doctor || status.Patient {
		t.Fatalf("expected doctor-only occupancy, got %+v", status)
	}
}

func TestAPI_GetRoomNotFound(t *testing.T) {
	e, _, token := newAPIServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/webrtc/rooms/ghost", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAPI_GetRoomRequiresAuth(t *testing.T) {
	e, _, _ := newAPIServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/webrtc/rooms/room-42", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without credential, got %d", rec.Code)
	}
}
