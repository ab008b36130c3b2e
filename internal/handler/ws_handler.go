/*
Package handler provides the HTTP handlers and routing for the cardparty server.

This file implements event delivery over WebSocket as an alternative to long
polling. The socket-backed sender satisfies game.EventSender for as long as the
connection lives; unlike a poll sender it flushes continuously instead of once.
Application-level PING messages still flow through it, while any inbound frame
counts as client activity.
*/
package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"cardparty/internal/app/game"
	"cardparty/internal/pkg/auth/jwt"
	"cardparty/internal/pkg/errs"
	"cardparty/internal/pkg/limiter"
	"cardparty/internal/pkg/logx"
	"cardparty/internal/pkg/resp"
)

const (
	// writeWait bounds a single WebSocket write.
	writeWait = 10 * time.Second

	// pongWait bounds the silence tolerated at the socket level before the read
	// loop gives up. The presence supervisor enforces its own, longer thresholds.
	pongWait = 60 * time.Second

	// pingPeriod is the socket-level ping frequency; must be below pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxInboundSize caps inbound frames; clients only send tiny keepalives here.
	maxInboundSize = 1024

	// sendChannelBuffer is the per-socket outbound queue length.
	sendChannelBuffer = 256
)

// wsSender delivers enqueued messages over one WebSocket connection.
type wsSender struct {
	send   chan game.QueuedMessage
	logger zerolog.Logger
}

// Enqueue queues the message for the write loop, dropping it when the socket
// cannot keep up; a slow consumer must not block producers.
func (s *wsSender) Enqueue(msg game.QueuedMessage) {
	select {
	case s.send <- msg:
	default:
		s.logger.Warn().Str("msg_type", string(msg.Type)).Msg("WebSocket send queue full, dropping message")
	}
}

// HandleWebSocketEvents upgrades the connection and runs the delivery loops. The
// session token travels in the "token" query parameter because browsers cannot set
// headers on WebSocket handshakes.
func HandleWebSocketEvents(deps *AppDeps, upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rateLimiter.GetLimiter(limiter.ClientIP(r)).Allow() {
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		payload, err := jwt.ParseToken(r.URL.Query().Get("token"), deps.Config.JWTSecret)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		u := deps.Users.GetBySession(payload.SessionID)
		if u == nil || !u.IsValid() {
			resp.RespondError(w, r, errs.NewError(errs.ErrSessionNotFound))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		u.UserDidSomething()

		sender := &wsSender{
			send: make(chan game.QueuedMessage, sendChannelBuffer),
			logger: logx.Logger().With().
				Str("nickname", u.Nickname()).
				Str("component", "ws").
				Logger(),
		}
		u.EstablishedEventsConnection(sender)

		go writePump(conn, sender, u)
		readPump(conn, u)
	}
}

// writePump writes queued messages to the socket and keeps the socket-level
// heartbeat going. Every successful write counts as delivery for liveness.
func writePump(conn *websocket.Conn, sender *wsSender, u *game.User) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg := <-sender.send:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(msg); err != nil {
				sender.logger.Info().Err(err).Msg("WebSocket write failed, closing")
				return
			}
			// A written PING is not proof of life; only the client's answer is.
			if msg.Type != game.TypePing {
				u.UserReceivedEvents()
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump consumes inbound frames purely as proof of life until the connection
// drops.
func readPump(conn *websocket.Conn, u *game.User) {
	defer conn.Close()

	conn.SetReadLimit(maxInboundSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		u.UserReceivedEvents()
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logx.Warn("WebSocket closed unexpectedly", "nickname", u.Nickname(), "error", err)
			}
			return
		}

		u.UserDidSomething()
		conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}
