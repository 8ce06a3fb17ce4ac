package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/Josepmarimon/bau-assist-sub002/internal/middleware"
	"github.com/Josepmarimon/bau-assist-sub002/internal/model"
	"github.com/Josepmarimon/bau-assist-sub002/internal/response"
	"github.com/Josepmarimon/bau-assist-sub002/internal/service"
	ws "github.com/Josepmarimon/bau-assist-sub002/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams timetable changes to connected clients.
type WSHandler struct {
	activity *service.ActivityService
	clients  prometheus.Gauge
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(activity *service.ActivityService, clients prometheus.Gauge, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		activity: activity,
		clients:  clients,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// semesterFilter is the semester a connection follows; nil follows all of them.
type semesterFilter struct {
	mu sync.RWMutex
	id *uuid.UUID
}

func (f *semesterFilter) set(id *uuid.UUID) {
	f.mu.Lock()
	f.id = id
	f.mu.Unlock()
}

func (f *semesterFilter) match(evt model.ScheduleEvent) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.id == nil || *f.id == evt.SemesterID
}

// ScheduleStream godoc
// WS /ws/v1/schedule?semester_id=
// Pushes assignment and profile booking changes. Clients may send
// {"action":"subscribe","semester_id":...} to switch semester and {"action":"ping"}.
func (h *WSHandler) ScheduleStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}
	semesterID, ok := queryID(c, "semester_id")
	if !ok {
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	conn := ws.Wrap(raw)
	defer conn.Close()

	wsLog := h.log.With().Str("subject", claims.Subject).Logger()
	wsLog.Info().Msg("Schedule stream connected")
	h.clients.Inc()
	defer h.clients.Dec()

	ctx := c.Request.Context()
	sub := h.activity.Subscribe(ctx)
	defer sub.Close()

	filter := &semesterFilter{id: semesterID}
	conn.WriteTyped(ws.SubscribedResponse{Event: ws.EventSubscribed, SemesterID: semesterID})

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.readLoop(conn, wsLog, filter)
	}()

	messages := sub.Channel()
	for {
		select {
		case <-done:
			wsLog.Info().Msg("Schedule stream disconnected")
			return
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var evt model.ScheduleEvent
			if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
				wsLog.Warn().Err(err).Msg("Malformed schedule event")
				continue
			}
			if !filter.match(evt) {
				continue
			}
			if err := conn.WriteTyped(ws.ScheduleResponse{Event: ws.EventSchedule, Change: evt}); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed")
				return
			}
		}
	}
}

// readLoop handles client actions until the connection closes.
func (h *WSHandler) readLoop(conn *ws.Conn, wsLog zerolog.Logger, filter *semesterFilter) {
	for {
		var msg ws.SubscribeRequest
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionPing:
			conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		case ws.ActionSubscribe:
			filter.set(msg.SemesterID)
			conn.WriteTyped(ws.SubscribedResponse{Event: ws.EventSubscribed, SemesterID: msg.SemesterID})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			conn.WriteError("unknown action: " + string(msg.Action))
		}
	}
}
