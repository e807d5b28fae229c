package signaling

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RoomStatus is the operator-facing view of a room returned by the REST
// query. Slot presence is reported as booleans; connection ids stay
// internal.
type RoomStatus struct {
	RoomID       string `json:"roomId"`
	Participants int    `json:"participants"`
	Doctor       bool   `json:"doctor"`
	Patient      bool   `json:"patient"`
}

// API exposes read-only room bookkeeping over HTTP.
type API struct {
	coord *Coordinator
}

// NewAPI creates the REST query surface for the coordinator.
func NewAPI(coord *Coordinator) *API {
	return &API{coord: coord}
}

// RegisterRoutes registers the room query endpoint on an authenticated
// group.
func (a *API) RegisterRoutes(g *echo.Group) {
	g.GET("/webrtc/rooms/:id", a.GetRoom)
}

// GetRoom returns the occupancy of a room, or 404 when no such room is
// currently occupied.
func (a *API) GetRoom(c echo.Context) error {
	roomID := c.Param("id")
	room, ok := a.coord.RoomSnapshot(roomID)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "room not found")
	}

	return c.JSON(http.StatusOK, RoomStatus{
		RoomID:       roomID,
		Participants: room.Occupancy(),
		Doctor:       room.DoctorSlot != "",
		Patient:      room.PatientSlot != "",
	})
}
