package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/mock-exam/internal/middleware"
	"github.com/stemsi/mock-exam/internal/model"
	"github.com/stemsi/mock-exam/internal/response"
	"github.com/stemsi/mock-exam/internal/service"
	"github.com/stemsi/mock-exam/internal/validator"
	ws "github.com/stemsi/mock-exam/internal/websocket"
)

const outboxSize = 16

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

// WSHandler streams the exam session over a WebSocket and accepts intents.
type WSHandler struct {
	sessionService *service.ExamSessionService
	limiter        *middleware.RateLimiter
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler. limiter may be nil.
func NewWSHandler(sessionService *service.ExamSessionService, limiter *middleware.RateLimiter, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessionService: sessionService,
		limiter:        limiter,
		log:            log.With().Str("component", "ws_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// ExamStream godoc
// WS /ws/v1/exam/stream
// Pushes a state event after every change, including each countdown tick,
// and a result event once the session is submitted.
func (h *WSHandler) ExamStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	connID := uuid.NewString()
	wsLog := h.log.With().Str("conn_id", connID).Logger()
	wsLog.Info().Msg("Client connected")

	snapshots, unsubscribe := h.sessionService.Subscribe()
	defer unsubscribe()
	if h.limiter != nil {
		defer h.limiter.Forget(connID)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	outbox := make(chan interface{}, outboxSize)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		defer conn.Close() // unblocks the reader
		defer cancel()
		h.writeLoop(ctx, conn, wsLog, snapshots, outbox)
	}()

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		if h.limiter != nil && !h.limiter.Allow(connID) {
			h.send(ctx, outbox, ws.NewError(string(response.ErrRateLimitExceeded), response.GetMessage(response.ErrRateLimitExceeded)))
			continue
		}

		if reply := h.dispatch(wsLog, &msg); reply != nil {
			h.send(ctx, outbox, reply)
		}
		if ctx.Err() != nil {
			break
		}
	}

	cancel()
	<-writerDone
}

// dispatch runs one intent. State changes reach the client through the
// subscription, so only errors and pongs produce a direct reply.
func (h *WSHandler) dispatch(wsLog zerolog.Logger, msg *ws.RequestPayload) interface{} {
	var err error

	switch msg.Action {
	case ws.ActionPing:
		return ws.PongResponse{Event: ws.EventPong}

	case ws.ActionSelect:
		req := model.SelectOptionRequest{OptionIndex: msg.OptionIndex}
		if fields := validator.Validate(&req); fields != nil {
			return ws.NewError(string(response.ErrValidation), fields["option_index"])
		}
		_, err = h.sessionService.SelectOption(*req.OptionIndex)

	case ws.ActionNavigate:
		req := model.NavigateRequest{Position: msg.Position}
		if fields := validator.Validate(&req); fields != nil {
			return ws.NewError(string(response.ErrValidation), fields["position"])
		}
		_, err = h.sessionService.NavigateTo(*req.Position)

	case ws.ActionSaveNext:
		_, err = h.sessionService.SaveAndNext()
	case ws.ActionSaveMarkReview:
		_, err = h.sessionService.SaveAndMarkForReview()
	case ws.ActionMarkReviewNext:
		_, err = h.sessionService.MarkForReviewAndNext()
	case ws.ActionClear:
		_, err = h.sessionService.ClearResponse()
	case ws.ActionSubmit:
		_, err = h.sessionService.Submit()

	default:
		wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
		return ws.NewError(string(response.ErrUnknownAction), "unknown action: "+string(msg.Action))
	}

	if err != nil {
		_, code := sessionError(err)
		wsLog.Debug().Err(err).Str("action", string(msg.Action)).Msg("Intent rejected")
		return ws.NewError(string(code), response.GetMessage(code))
	}
	return nil
}

// writeLoop is the only goroutine writing to conn.
func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, wsLog zerolog.Logger, snapshots <-chan model.SessionSnapshot, outbox <-chan interface{}) {
	resultSent := ""

	for {
		select {
		case <-ctx.Done():
			return

		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			if err := ws.WriteTyped(conn, ws.StateResponse{Event: ws.EventState, State: snap}); err != nil {
				wsLog.Debug().Err(err).Msg("Write state failed")
				return
			}
			if !snap.Submitted || snap.SessionID == resultSent {
				continue
			}
			res, err := h.sessionService.Result()
			if err != nil {
				continue
			}
			if err := ws.WriteTyped(conn, ws.ResultResponse{Event: ws.EventResult, Result: res}); err != nil {
				wsLog.Debug().Err(err).Msg("Write result failed")
				return
			}
			resultSent = snap.SessionID

		case msg := <-outbox:
			if err := ws.WriteTyped(conn, msg); err != nil {
				wsLog.Debug().Err(err).Msg("Write reply failed")
				return
			}
		}
	}
}

func (h *WSHandler) send(ctx context.Context, outbox chan<- interface{}, msg interface{}) {
	select {
	case outbox <- msg:
	case <-ctx.Done():
	}
}
