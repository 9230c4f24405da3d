package handler

import (
	"errors"
	"strconv"
	"strings"

	"feedbackbot/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

var errNoPrompt = errors.New("no prompt message to edit")

// isUnreachable reports whether Telegram refused delivery to the recipient
func isUnreachable(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, tele.ErrBlockedByUser),
		errors.Is(err, tele.ErrUserIsDeactivated),
		errors.Is(err, tele.ErrNotStartedByUser),
		errors.Is(err, tele.ErrChatNotFound):
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Forbidden") || strings.Contains(msg, "chat not found")
}

// notify makes one delivery attempt. Failures are logged and swallowed:
// whatever triggered the notification is already stored.
func (h *Handler) notify(to int64, text string, markup *tele.ReplyMarkup) bool {
	opts := []interface{}{}
	if markup != nil {
		opts = append(opts, markup)
	}

	if _, err := h.out.Send(tele.ChatID(to), limitText(text), opts...); err != nil {
		if isUnreachable(err) {
			h.logger.Warn("Recipient unreachable", zap.Int64("recipient_id", to), zap.Error(err))
		} else {
			h.logger.Error("Failed to deliver notification", zap.Int64("recipient_id", to), zap.Error(err))
		}
		return false
	}
	return true
}

// confirm tells the sender their action was stored. A failed send is only
// logged so the notifications that follow still go out.
func (h *Handler) confirm(c tele.Context, text string, markup *tele.ReplyMarkup) {
	opts := []interface{}{}
	if markup != nil {
		opts = append(opts, markup)
	}
	if err := c.Send(text, opts...); err != nil {
		h.logger.Warn("Failed to send confirmation", zap.Int64("user_id", c.Sender().ID), zap.Error(err))
	}
}

// editPrompt rewrites a previously sent prompt message
func (h *Handler) editPrompt(ref *domain.MessageRef, text string, markup *tele.ReplyMarkup) error {
	if ref == nil {
		return errNoPrompt
	}
	msg := &tele.StoredMessage{MessageID: strconv.Itoa(ref.MessageID), ChatID: ref.ChatID}
	_, err := h.out.Edit(msg, text, markup)
	return err
}

// returnToMenu puts the main menu back where the flow started,
// or sends it anew when that message can no longer be edited
func (h *Handler) returnToMenu(c tele.Context, ref *domain.MessageRef) error {
	markup := mainMenuMarkup(h.isAdmin(c.Sender().ID))
	if err := h.editPrompt(ref, textMainMenu, markup); err != nil {
		h.logger.Debug("Prompt not editable, sending menu", zap.Int64("user_id", c.Sender().ID), zap.Error(err))
		return c.Send(textMainMenu, markup)
	}
	return nil
}

// isAdmin treats lookup failures as "not an admin" for menu rendering only
func (h *Handler) isAdmin(userID int64) bool {
	ctx, cancel := opContext()
	defer cancel()

	admin, err := h.access.IsAdmin(ctx, userID)
	if err != nil {
		h.logger.Error("Failed to check admin status", zap.Int64("user_id", userID), zap.Error(err))
		return false
	}
	return admin
}
