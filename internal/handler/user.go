package handler

import (
	"errors"

	"feedbackbot/internal/domain"
	"feedbackbot/internal/state"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const textFinishFlow = "Сначала завершите текущее действие или вернитесь в главное меню"

// handleProfile shows the sender's stored profile
func (h *Handler) handleProfile(c tele.Context) error {
	userID := c.Sender().ID
	ctx, cancel := opContext()
	defer cancel()

	user, err := h.access.GetUser(ctx, userID)
	if err != nil {
		return h.fail(c, "get_user", err)
	}
	if user == nil {
		return h.fail(c, "get_user", domain.ErrUserNotFound)
	}

	return h.render(c, formatProfile(*user, h.isAdmin(userID)), backMarkup(), "")
}

// handleHistory shows the sender's thread with the primary admin
func (h *Handler) handleHistory(c tele.Context) error {
	userID := c.Sender().ID
	ctx, cancel := opContext()
	defer cancel()

	page, err := h.dialogs.UserHistory(ctx, userID, 1)
	if err != nil {
		return h.fail(c, "user_history", err)
	}

	markup := mainMenuMarkup(h.isAdmin(userID))
	if page.Total == 0 {
		return h.render(c, "История диалогов пуста", markup, "")
	}
	return h.render(c, formatHistory(userID, page), markup, "")
}

// handleWriteMessage starts the user → support flow
func (h *Handler) handleWriteMessage(c tele.Context) error {
	userID := c.Sender().ID
	ctx, cancel := opContext()
	defer cancel()

	blocked, err := h.access.IsBlocked(ctx, userID)
	if err != nil {
		return h.fail(c, "is_blocked", err)
	}
	if blocked {
		return h.fail(c, "write_message", domain.ErrBlocked)
	}

	ref := promptRef(c)
	if _, err := h.states.Fire(userID, state.EventWriteMessage, func(d *domain.StateData) {
		d.PromptMessage = ref
	}); err != nil {
		return h.rejectFlow(c, err)
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnCancelMessage))
	return h.render(c, "📝 Введите ваше сообщение:", markup, "")
}

// rejectFlow answers a flow-starting button the current state does not accept
func (h *Handler) rejectFlow(c tele.Context, err error) error {
	h.logger.Debug("Flow start rejected",
		zap.Int64("user_id", c.Sender().ID),
		zap.Any("allowed", h.states.Allowed(c.Sender().ID)),
		zap.Error(err),
	)
	return c.Respond(&tele.CallbackResponse{Text: textFinishFlow, ShowAlert: true})
}

// handleCancel abandons the current flow
func (h *Handler) handleCancel(c tele.Context) error {
	userID := c.Sender().ID
	h.fire(userID, state.EventCancel, nil)
	return h.render(c, "Отправка сообщения отменена.", mainMenuMarkup(h.isAdmin(userID)), "")
}

// processUserMessage stores a user's message and notifies the admins
func (h *Handler) processUserMessage(c tele.Context) error {
	sender := c.Sender()
	ctx, cancel := opContext()
	defer cancel()

	sub, err := h.relay.Submit(ctx, sender.ID, c.Text())
	if err != nil {
		if !errors.Is(err, domain.ErrEmptyMessage) {
			h.fire(sender.ID, state.EventCancel, nil)
		}
		return h.fail(c, "submit", err)
	}
	h.fire(sender.ID, state.EventSubmit, nil)

	h.confirm(c, "✅ Сообщение отправлено администратору", mainMenuMarkup(h.isAdmin(sender.ID)))

	notice := newMessageNotice(domain.User{UserID: sender.ID, Username: sender.Username}, c.Text())
	for _, adminID := range sub.Recipients {
		h.notify(adminID, notice, adminMessageMarkup(sender.ID))
	}
	return nil
}
