package transport

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"kanbanApi/internal/modules/realtime/domain"
	"kanbanApi/internal/modules/realtime/infrastructure"
	"kanbanApi/internal/shared/auth"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// NewWebsocketHandler upgrades the request into a socket registered with hub.
// The login cookie, when valid, is only used for logging: a socket is bound
// to a user explicitly through the set-user-socket event.
func NewWebsocketHandler(hub *infrastructure.Hub, commands *infrastructure.CommandProcessor, validator auth.TokenValidator, sendBuffer int) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Response().Header().Get(echo.HeaderXRequestID)
		peerIP := c.RealIP()

		userID := ""
		if validator != nil {
			if token := auth.ExtractToken(c.Request()); token != "" {
				if claims, err := validator.Validate(token); err == nil {
					userID = claims.Subject
				} else {
					slog.Debug("socket handshake token rejected", slog.String("ip", peerIP), slog.Any("error", err))
				}
			}
		}

		conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			slog.Error("socket upgrade failed", slog.String("ip", peerIP), slog.String("reqID", requestID), slog.Any("error", err))
			return err
		}

		client := infrastructure.NewConnection(hub, conn, sendBuffer, commands)
		hub.Register(client)

		go client.WritePump()
		go client.ReadPump()

		client.Send(domain.EventConnected, map[string]string{"id": client.ID()})
		slog.Info("socket handshake complete", slog.String("connId", client.ID()), slog.String("userId", userID), slog.String("ip", peerIP), slog.String("reqID", requestID))
		return nil
	}
}
