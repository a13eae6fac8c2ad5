package api

import (
	"net/http"

	xhttp "MarketHub/pkg/http"
	xlogger "MarketHub/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Stream bridges a pub/sub topic onto a websocket. Each published payload
// becomes one text frame. Messages published before the upgrade completes
// are not replayed.
func (h *HubEchoHandler) Stream(c echo.Context) error {
	topic := c.QueryParam("topic")

	sub, err := h.hub.Subscribe(c.Request().Context(), topic)
	if err != nil {
		return h.hubErrorResponse(c, "subscribe", err)
	}

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		sub.Close()
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError("websocket upgrade failed").WithError(err))
	}
	defer conn.Close()
	defer sub.Close()

	h.logger.Info("stream opened",
		xlogger.String("topic", sub.Topic()),
		xlogger.String("remote", conn.RemoteAddr().String()))

	// Drain client frames so close/ping control messages are processed.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-clientGone:
			return nil
		case payload, ok := <-sub.Channel():
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.logger.Debug("stream write failed", xlogger.Error(err))
				return nil
			}
		}
	}
}
