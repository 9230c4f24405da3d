package handler

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"feedbackbot/internal/domain"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// opTimeout bounds the storage work done for a single update
const opTimeout = 5 * time.Second

func opContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), opTimeout)
}

// cleanCallbackData removes all non-printable characters from callback data
func cleanCallbackData(data string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(data))
}

// callbackArgs splits the payload of a data button
func callbackArgs(c tele.Context) []string {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	data := cleanCallbackData(cb.Data)
	if data == "" {
		return nil
	}
	return strings.Split(data, "|")
}

func idData(id int64) string {
	return strconv.FormatInt(id, 10)
}

// parseID reads a positive Telegram id from user input or callback data
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse id %q: %w", s, err)
	}
	if id <= 0 {
		return 0, fmt.Errorf("parse id %q: must be positive", s)
	}
	return id, nil
}

// argID returns the id at position i of the callback payload
func argID(c tele.Context, i int) (int64, bool) {
	args := callbackArgs(c)
	if i >= len(args) {
		return 0, false
	}
	id, err := parseID(args[i])
	return id, err == nil
}

// argPage returns the page number at position i, 1 when missing
func argPage(c tele.Context, i int) int {
	args := callbackArgs(c)
	if i >= len(args) {
		return 1
	}
	page, err := strconv.Atoi(args[i])
	if err != nil {
		return 1
	}
	return page
}

// promptRef remembers the message a flow was started from
func promptRef(c tele.Context) *domain.MessageRef {
	msg := c.Message()
	if msg == nil || msg.Chat == nil {
		return nil
	}
	return &domain.MessageRef{MessageID: msg.ID, ChatID: msg.Chat.ID}
}

// errorText maps domain errors to user-facing texts.
// The second result is false for errors that are not part of the domain.
func errorText(err error) (string, bool) {
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return textForbidden, true
	case errors.Is(err, domain.ErrBlocked):
		return "Вы заблокированы в системе", true
	case errors.Is(err, domain.ErrNoAdmins):
		return "Нет доступных администраторов.", true
	case errors.Is(err, domain.ErrUserNotFound):
		return "Пользователь не найден.", true
	case errors.Is(err, domain.ErrNotAdmin):
		return "Этот пользователь не является администратором.", true
	case errors.Is(err, domain.ErrBootstrapAdmin):
		return "Этого администратора нельзя удалить: он задан в конфигурации.", true
	case errors.Is(err, domain.ErrSelfDemotion):
		return "Вы не можете удалить себя из администраторов.", true
	case errors.Is(err, domain.ErrLastAdmin):
		return "Нельзя удалить последнего администратора.", true
	case errors.Is(err, domain.ErrEmptyMessage):
		return "Сообщение не может быть пустым. Попробуйте ещё раз.", true
	}
	return textError, false
}

// fail reports err to the sender. Unexpected errors are logged with op.
func (h *Handler) fail(c tele.Context, op string, err error) error {
	text, known := errorText(err)
	if !known {
		h.logger.Error("Operation failed",
			zap.String("op", op),
			zap.Int64("user_id", c.Sender().ID),
			zap.Error(err),
		)
	}
	if c.Callback() != nil {
		return c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: true})
	}
	return c.Send(text)
}

// handleEditError handles errors from c.Edit() - if message is not modified, just acknowledge callback
// Otherwise, acknowledge callback and return error so caller can send new message
// resp, if given, is used for the acknowledgement.
func (h *Handler) handleEditError(err error, c tele.Context, userID int64, resp ...*tele.CallbackResponse) error {
	if err == nil {
		return nil
	}

	// Another callback already rendered the same content
	if strings.Contains(err.Error(), "message is not modified") {
		h.logger.Debug("Message already modified by another callback, acknowledging",
			zap.Int64("user_id", userID),
			zap.String("callback_id", c.Callback().ID),
		)
		c.Respond(resp...)
		return nil
	}

	h.logger.Warn("Failed to edit message, sending new",
		zap.Error(err),
		zap.Int64("user_id", userID),
		zap.String("callback_id", c.Callback().ID),
	)
	// Always acknowledge callback before sending new message
	if ackErr := c.Respond(resp...); ackErr != nil {
		h.logger.Warn("Failed to acknowledge callback", zap.Error(ackErr))
	}
	return err
}

// render edits the message a callback came from, or sends a new one.
// notice, if set, is shown to the user as an alert.
func (h *Handler) render(c tele.Context, text string, markup *tele.ReplyMarkup, notice string) error {
	text = limitText(text)
	if c.Callback() == nil {
		return c.Send(text, markup)
	}

	var ack []*tele.CallbackResponse
	if notice != "" {
		ack = append(ack, &tele.CallbackResponse{Text: notice, ShowAlert: true})
	}

	if err := c.Edit(text, markup); err != nil {
		if handleErr := h.handleEditError(err, c, c.Sender().ID, ack...); handleErr == nil {
			return nil // Message was already modified, just acknowledged
		}
		return c.Send(text, markup)
	}
	return c.Respond(ack...)
}

// handleCallback acknowledges callbacks no endpoint claimed
func (h *Handler) handleCallback(c tele.Context) error {
	callback := c.Callback()
	if callback == nil {
		return nil
	}

	h.logger.Warn("Unhandled callback",
		zap.String("data", cleanCallbackData(callback.Data)),
		zap.String("unique", callback.Unique),
		zap.Int64("user_id", c.Sender().ID),
	)
	return c.Respond(&tele.CallbackResponse{Text: "Кнопка устарела, откройте меню заново"})
}

// handleIgnore acknowledges decorative buttons such as the page counter
func (h *Handler) handleIgnore(c tele.Context) error {
	return c.Respond()
}
