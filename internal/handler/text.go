package handler

import (
	"feedbackbot/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// textRoutes maps every conversation state to the handler for free text
func (h *Handler) textRoutes() map[domain.ConversationState]tele.HandlerFunc {
	return map[domain.ConversationState]tele.HandlerFunc{
		domain.StateIdle:                   h.handleIdleText,
		domain.StateAwaitingUserMessage:    h.processUserMessage,
		domain.StateAwaitingAdminReply:     h.processAdminReply,
		domain.StateAwaitingNewAdminID:     h.processAddAdmin,
		domain.StateAwaitingAdminRemovalID: h.processRemoveAdmin,
	}
}

// handleText dispatches free text by the sender's state
func (h *Handler) handleText(c tele.Context) error {
	userID := c.Sender().ID
	current := h.states.Get(userID)

	route, ok := h.routes[current.State]
	if !ok {
		h.logger.Warn("No text route for state, resetting",
			zap.Int64("user_id", userID),
			zap.String("state", string(current.State)),
		)
		h.states.Reset(userID)
		route = h.handleIdleText
	}
	return route(c)
}

// handleIdleText answers text that arrives outside any flow
func (h *Handler) handleIdleText(c tele.Context) error {
	return c.Send("Выберите действие в меню ниже:", mainMenuMarkup(h.isAdmin(c.Sender().ID)))
}
