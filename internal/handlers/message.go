package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/blinder/internal/app"
	"github.com/oggyb/blinder/internal/middleware"
	"github.com/oggyb/blinder/internal/realtime"
	"github.com/oggyb/blinder/internal/service"
	"github.com/oggyb/blinder/internal/service/match"
	"github.com/oggyb/blinder/internal/service/message"
)

const msgSent = "Mesaj gönderildi!"

// MessageHandler serves the /message routes.
type MessageHandler struct {
	log      *slog.Logger
	messages *message.Service
	engine   *match.Engine
	hub      *realtime.Hub
}

func NewMessageHandler(appCtx *app.AppContext, messages *message.Service, engine *match.Engine) *MessageHandler {
	return &MessageHandler{
		log:      appCtx.Logger.With("handler", "message"),
		messages: messages,
		engine:   engine,
		hub:      appCtx.Hub,
	}
}

// Conversation handles GET /message/conversation?match_id=.
func (h *MessageHandler) Conversation(c *gin.Context) {
	user := middleware.CurrentUser(c)
	thread, err := h.messages.GetConversation(c.Request.Context(), user.ID, c.Query("match_id"))
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"messages": thread})
}

type sendRequest struct {
	MatchID     string `json:"match_id"`
	MessageText string `json:"message_text"`
}

// Send handles POST /message/send.
func (h *MessageHandler) Send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}

	user := middleware.CurrentUser(c)
	view, err := h.messages.SendMessage(c.Request.Context(), user.ID, req.MatchID, req.MessageText)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{
		"message":    msgSent,
		"message_id": view.MessageID,
		"timestamp":  view.Timestamp,
	})
}

// Stream handles GET /message/ws?match_id= and blocks until the socket closes.
func (h *MessageHandler) Stream(c *gin.Context) {
	user := middleware.CurrentUser(c)
	matchID := c.Query("match_id")
	if _, err := h.engine.Authorize(c.Request.Context(), user.ID, matchID); err != nil {
		RespondError(c, h.log, err)
		return
	}

	conn, err := realtime.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.log.Warn("websocket upgrade failed", "match_id", matchID, "err", err)
		return
	}
	ctx := c.Request.Context()
	h.hub.Serve(conn, matchID, service.FormatID(user.ID), func() error {
		_, err := h.engine.Authorize(ctx, user.ID, matchID)
		return err
	})
}
