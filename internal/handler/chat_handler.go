package handler

import (
	"chatlink-be/internal/pkg/logger"
	"chatlink-be/internal/pkg/serverutils"
	internalWS "chatlink-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

type ChatHandler struct {
	hub       *internalWS.Hub
	verifier  serverutils.TokenVerifier
	observers []serverutils.ClaimsObserver
	logger    logger.ILogger
}

func NewChatHandler(hub *internalWS.Hub, verifier serverutils.TokenVerifier, log logger.ILogger, observers ...serverutils.ClaimsObserver) *ChatHandler {
	return &ChatHandler{
		hub:       hub,
		verifier:  verifier,
		observers: observers,
		logger:    log,
	}
}

// ServeWs authenticates the peer and upgrades the connection. Auth runs
// BEFORE the upgrade: a bad token gets a plain 401, never a socket.
func (h *ChatHandler) ServeWs(c *fiber.Ctx) error {
	// 1. Get Token source
	// Priority 1: Query Param (Browser standard)
	tokenStr := c.Query("token")

	// Priority 2: Authorization Header (Tooling/Non-browser standard)
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}

	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	claims, err := h.verifier.Verify(tokenStr)
	if err != nil {
		h.logger.Warn("ChatHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	for _, o := range h.observers {
		o.Observe(claims)
	}
	userID := claims.UserID

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("ChatHandler", "Starting WebSocket session", map[string]interface{}{"user_id": userID})
			client := internalWS.NewClient(h.hub, conn, userID)
			h.hub.Register(client)
			h.logger.Info("ChatHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the websocket endpoint.
func (h *ChatHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
