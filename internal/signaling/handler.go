package signaling

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	gorillawebsocket "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/Acon1tum/qhealth-backend-v2-sub002/internal/platform/auth"
)

const (
	defaultReadLimit  = 64 * 1024
	pingInterval      = 40 * time.Second
	writeTimeout      = 10 * time.Second
	pongWait          = 60 * time.Second
	upgradeBufferSize = 1024
)

// TokenVerifier is the credential-verification capability the handshake
// gate consumes. Satisfied by *auth.Verifier.
type TokenVerifier interface {
	Verify(credential string) (auth.Identity, error)
}

// Options configures a Handler.
type Options struct {
	// AllowedOrigins restricts the Origin header of upgrade requests; the
	// same allow-list the REST API uses for CORS. Empty permits any origin.
	AllowedOrigins []string
	// ReadLimit caps the size of an inbound frame in bytes.
	ReadLimit int64
	// SendBuffer is the per-socket outbound queue depth.
	SendBuffer int
}

// Handler authenticates websocket upgrade requests and pumps envelopes
// between each connection and the Coordinator.
type Handler struct {
	coord    *Coordinator
	verifier TokenVerifier
	upgrader gorillawebsocket.Upgrader
	log      zerolog.Logger
	opts     Options
}

// NewHandler builds a Handler bound to the given coordinator and verifier.
func NewHandler(coord *Coordinator, verifier TokenVerifier, logger zerolog.Logger, opts Options) *Handler {
	if opts.ReadLimit <= 0 {
		opts.ReadLimit = defaultReadLimit
	}

	h := &Handler{
		coord:    coord,
		verifier: verifier,
		log:      logger,
		opts:     opts,
	}
	h.upgrader = gorillawebsocket.Upgrader{
		ReadBufferSize:  upgradeBufferSize,
		WriteBufferSize: upgradeBufferSize,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

// RegisterRoutes registers the signaling endpoint on the provided Echo
// instance.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/webrtc", h.HandleConnect)
}

// HandleConnect is the authentication gate plus upgrade. The credential
// travels in the "token" query parameter of the handshake (raw or
// "Bearer "-prefixed); a missing or invalid credential refuses the upgrade
// with 401 so the client never reaches an established session.
func (h *Handler) HandleConnect(c echo.Context) error {
	identity, err := h.verifier.Verify(c.QueryParam("token"))
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "UNAUTHORIZED")
	}

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	socket := NewSocket(uuid.NewString(), identity.UserID, identity.Role, &gorillaConnAdapter{ws}, h.opts.SendBuffer)
	h.coord.Register(socket)

	go h.writePump(socket, ws)
	go h.readPump(socket, ws)

	return nil
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	if len(h.opts.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Non-browser clients send no Origin; the token gate still applies.
		return true
	}
	for _, allowed := range h.opts.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// readPump delivers inbound envelopes to the coordinator in arrival order.
// Envelopes that do not parse are ignored. On read error the disconnect
// cleanup runs exactly once.
func (h *Handler) readPump(socket *Socket, ws *gorillawebsocket.Conn) {
	defer func() {
		h.coord.HandleDisconnect(socket)
		socket.CloseSend()
		socket.Close()
	}()

	ws.SetReadLimit(h.opts.ReadLimit)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := ws.ReadMessage()
		if err != nil {
			break
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			continue
		}
		h.coord.Dispatch(socket, env)
	}
}

// writePump drains the socket's outbox to the wire and keeps the connection
// alive with periodic pings.
func (h *Handler) writePump(socket *Socket, ws *gorillawebsocket.Conn) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		ws.Close()
	}()

	for {
		select {
		case message, ok := <-socket.Outbox():
			_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				_ = ws.WriteMessage(gorillawebsocket.CloseMessage, []byte{})
				return
			}
			if err := ws.WriteMessage(gorillawebsocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = ws.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := ws.WriteMessage(gorillawebsocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// gorillaConnAdapter wraps a gorilla/websocket.Conn to satisfy the Conn
// interface.
type gorillaConnAdapter struct {
	conn *gorillawebsocket.Conn
}

func (a *gorillaConnAdapter) ReadMessage() (int, []byte, error) {
	return a.conn.ReadMessage()
}

func (a *gorillaConnAdapter) WriteMessage(messageType int, data []byte) error {
	return a.conn.WriteMessage(messageType, data)
}

func (a *gorillaConnAdapter) Close() error {
	return a.conn.Close()
}
