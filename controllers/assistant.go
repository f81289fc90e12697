package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/zasai/zas-translate/assistant"
	"github.com/zasai/zas-translate/log"
)

// editor source plus its translations, per POST body or websocket frame
const maxAssistantBody = 8 << 20

// AssistantPreflight godoc
// @Summary  CORS preflight for the assistant
// @Tags     Assistant
// @Success  200
// @Router   /assistant [options]
func (h *Handler) AssistantPreflight(c *gin.Context) {
	c.Status(http.StatusOK)
}

// AssistantChat godoc
// @Summary     Chat with the assistant
// @Description Relays the conversation, with the editor content as context, to the chat model and streams its server-sent events back unchanged.
// @Tags        Assistant
// @Accept      json
// @Produce     text/event-stream
// @Param       request  body      assistant.Request  true  "conversation and editor content"
// @Success     200      {string}  string             "event stream"
// @Failure     400      {object}  map[string]string
// @Failure     429      {object}  map[string]string
// @Failure     500      {object}  map[string]string  "missing credential or upstream error"
// @Router      /assistant [post]
func (h *Handler) AssistantChat(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxAssistantBody)
	var req assistant.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	body, err := h.Proxy.Open(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer body.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()
	c.Writer.Flush()

	n, err := assistant.Relay(c.Writer, body)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.L().Warn("assistant stream interrupted", zap.Error(err), zap.Int64("bytes", n))
		return
	}
	log.L().Debug("assistant stream finished", zap.Int64("bytes", n))
}

type assistantFrame struct {
	Type      string    `json:"type"` // ready | chunk | done | error
	Data      string    `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

var assistantUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || strings.Contains(origin, r.Host)
	},
}

// AssistantWS godoc
// @Summary     Chat with the assistant over WebSocket
// @Description Every JSON request frame is answered with chunk frames followed by a done or error frame.
// @Tags        Assistant
// @Success     101  {string}  string  "switching protocols"
// @Failure     400  {object}  map[string]string
// @Router      /assistant/ws [get]
func (h *Handler) AssistantWS(c *gin.Context) {
	conn, err := assistantUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.L().Error("failed to upgrade websocket",
			zap.Error(err),
			zap.String("remote_addr", c.Request.RemoteAddr),
			zap.String("user_agent", c.Request.UserAgent()),
		)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxAssistantBody)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	var writeMu sync.Mutex
	send := func(f assistantFrame) {
		writeMu.Lock()
		defer writeMu.Unlock()
		f.Timestamp = time.Now()
		if err := conn.WriteJSON(f); err != nil {
			cancel()
			log.L().Warn("failed to write websocket message", zap.Error(err))
		}
	}
	send(assistantFrame{Type: "ready"})

	requests := make(chan assistant.Request, 4)
	go func() {
		defer close(requests)
		for {
			var req assistant.Request
			if err := conn.ReadJSON(&req); err != nil {
				if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.L().Info("websocket connection closed by client")
				} else {
					log.L().Warn("error reading websocket message", zap.Error(err))
				}
				cancel()
				return
			}
			if len(req.Messages) == 0 {
				send(assistantFrame{Type: "error", Data: "messages is empty"})
				continue
			}
			select {
			case requests <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case req, ok := <-requests:
			if !ok {
				return
			}
			h.streamFrames(ctx, req, send)
		}
	}
}

func (h *Handler) streamFrames(ctx context.Context, req assistant.Request, send func(assistantFrame)) {
	body, err := h.Proxy.Open(ctx, req)
	if err != nil {
		send(assistantFrame{Type: "error", Data: err.Error()})
		return
	}
	defer body.Close()

	err = assistant.ReadDeltas(body, func(delta string) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		send(assistantFrame{Type: "chunk", Data: delta})
		return nil
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			send(assistantFrame{Type: "error", Data: err.Error()})
		}
		return
	}
	send(assistantFrame{Type: "done"})
}
