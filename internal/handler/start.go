package handler

import (
	"feedbackbot/internal/domain"
	"feedbackbot/internal/state"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// handleStart handles /start command
func (h *Handler) handleStart(c tele.Context) error {
	userID := c.Sender().ID

	h.logger.Info("User started bot",
		zap.Int64("user_id", userID),
		zap.String("username", c.Sender().Username),
	)

	h.fire(userID, state.EventStart, nil)
	return c.Send(textWelcome, mainMenuMarkup(h.isAdmin(userID)))
}

// handleMainMenu abandons any flow and shows the menu
func (h *Handler) handleMainMenu(c tele.Context) error {
	userID := c.Sender().ID
	h.fire(userID, state.EventMainMenu, nil)
	return h.render(c, textMainMenu, mainMenuMarkup(h.isAdmin(userID)), "")
}

// fire applies an event that every state accepts
func (h *Handler) fire(userID int64, event state.Event, setup func(*domain.StateData)) {
	if _, err := h.states.Fire(userID, event, setup); err != nil {
		h.logger.Warn("State transition rejected",
			zap.Int64("user_id", userID),
			zap.String("event", string(event)),
			zap.Error(err),
		)
	}
}
