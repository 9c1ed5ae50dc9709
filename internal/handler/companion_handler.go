package handler

import (
	"context"
	"errors"
	"time"

	"companion-bot-be/internal/dto"
	"companion-bot-be/internal/pkg/logger"
	"companion-bot-be/internal/pkg/serverutils"
	"companion-bot-be/internal/service"
	internalWS "companion-bot-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// CompanionHandler serves the live chat widget over websockets.
type CompanionHandler struct {
	service       service.ICompanionService
	hub           *internalWS.Hub
	auth          fiber.Handler
	thinkingDelay time.Duration
	logger        logger.ILogger
}

func NewCompanionHandler(
	service service.ICompanionService,
	hub *internalWS.Hub,
	auth fiber.Handler,
	thinkingDelay time.Duration,
	log logger.ILogger,
) *CompanionHandler {
	return &CompanionHandler{
		service:       service,
		hub:           hub,
		auth:          auth,
		thinkingDelay: thinkingDelay,
		logger:        log,
	}
}

func (h *CompanionHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws/companion/:id", h.auth, h.ServeWs)
}

// ServeWs checks ownership before upgrading so a stranger never gets a socket.
func (h *CompanionHandler) ServeWs(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	userID := serverutils.UserId(c)
	sessionID := c.Params("id")
	if _, err := h.service.GetSession(c.UserContext(), userID, sessionID); err != nil {
		return err
	}

	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("CompanionHandler", "Starting WebSocket session", map[string]interface{}{
			"session_id": sessionID,
			"user_id":    userID,
		})
		internalWS.ServeWs(h.hub, conn, sessionID, userID, h.handleUtterance)
		h.logger.Info("CompanionHandler", "WebSocket session ended", map[string]interface{}{"session_id": sessionID})
	})(c)
}

func (h *CompanionHandler) handleUtterance(client *internalWS.Client, text string) {
	req := &dto.SendMessageRequest{SessionId: client.SessionID, Message: text}
	if err := serverutils.ValidateRequest(req); err != nil {
		client.Push(internalWS.EncodeFrame(internalWS.Frame{Type: internalWS.FrameError, Error: err.Error()}))
		return
	}

	if h.thinkingDelay > 0 {
		h.hub.Deliver(client.SessionID, internalWS.EncodeFrame(internalWS.Frame{Type: internalWS.FrameTyping}))
		time.Sleep(h.thinkingDelay)
	}

	res, err := h.service.SendMessage(context.Background(), client.UserID, req)
	if err != nil {
		message := "Something went wrong, please try again."
		if errors.Is(err, service.ErrSessionNotFound) {
			message = service.ErrSessionNotFound.Error()
		}
		h.logger.Warn("CompanionHandler", "Failed to handle utterance", map[string]interface{}{
			"session_id": client.SessionID,
			"error":      err.Error(),
		})
		client.Push(internalWS.EncodeFrame(internalWS.Frame{Type: internalWS.FrameError, Error: message}))
		return
	}

	h.logger.Info("CompanionHandler", "Turn completed", map[string]interface{}{
		"session_id": res.SessionId,
		"stage":      res.Stage,
	})
	h.hub.Deliver(client.SessionID, internalWS.EncodeFrame(internalWS.Frame{
		Type: internalWS.FrameMessage,
		Data: chatFrame{User: text, SendMessageResponse: res},
	}))
}

// chatFrame echoes the utterance so other tabs of the session can render it.
type chatFrame struct {
	User string `json:"user"`
	*dto.SendMessageResponse
}
