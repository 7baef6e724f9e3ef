/*
Package handler provides the HTTP bootstrap surface of the relay.

This file contains HandleWebSocket, which rate limits and upgrades the
connection, attaches a fresh session to the hub, and runs the pumps for the
lifetime of the connection.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"gorelay/internal/app/relay"
	"gorelay/internal/pkg/errs"
	"gorelay/internal/pkg/limiter"
	"gorelay/internal/pkg/logx"
	"gorelay/internal/pkg/resp"
)

// HandleWebSocket returns the HandlerFunc that turns an HTTP request into a
// relay session.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		session := relay.NewSession(deps.Hub, deps.Lifecycle, conn)

		deps.Hub.Attach(session)

		logx.Info("WebSocket connection established", "session_id", session.ID())

		go session.WritePump()

		session.ReadPump()
	}
}
