package handler

import (
	"fmt"

	"feedbackbot/internal/domain"
	"feedbackbot/internal/state"

	tele "gopkg.in/telebot.v3"
)

const textInvalidID = "Пожалуйста, введите корректный ID (число)."

func (h *Handler) handleManageAdmins(c tele.Context) error {
	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(btnAddAdmin, btnRemoveAdmin),
		markup.Row(btnListAdmins, btnMainMenu),
	)
	return h.render(c, "👑 Управление администраторами:", markup, "")
}

func (h *Handler) handleAddAdmin(c tele.Context) error {
	return h.promptAdminID(c, state.EventAddAdmin, "Введите ID пользователя для назначения администратором:")
}

func (h *Handler) handleRemoveAdmin(c tele.Context) error {
	return h.promptAdminID(c, state.EventRemoveAdmin, "Введите ID администратора для удаления:")
}

// promptAdminID arms an id-input flow and remembers the prompt for later editing
func (h *Handler) promptAdminID(c tele.Context, event state.Event, text string) error {
	ref := promptRef(c)
	if _, err := h.states.Fire(c.Sender().ID, event, func(d *domain.StateData) {
		d.PromptMessage = ref
	}); err != nil {
		return h.rejectFlow(c, err)
	}
	return h.render(c, text, backMarkup(), "")
}

// processAddAdmin promotes the id the admin typed
func (h *Handler) processAddAdmin(c tele.Context) error {
	requester := c.Sender().ID
	target, err := parseID(c.Text())
	if err != nil {
		return c.Send(textInvalidID)
	}

	prompt := h.states.Get(requester).PromptMessage
	ctx, cancel := opContext()
	defer cancel()

	created, err := h.admins.Promote(ctx, requester, target)
	if err != nil {
		h.fire(requester, state.EventCancel, nil)
		return h.fail(c, "promote", err)
	}
	h.fire(requester, state.EventSubmit, nil)

	text := fmt.Sprintf("Пользователь %d назначен администратором.", target)
	if created {
		text = fmt.Sprintf("Пользователь %d добавлен и назначен администратором.", target)
	}
	h.confirm(c, text, nil)

	h.notify(target, "🎉 Вы были назначены администратором!\nВыберите действие в меню ниже:", mainMenuMarkup(true))
	return h.returnToMenu(c, prompt)
}

// processRemoveAdmin demotes the id the admin typed
func (h *Handler) processRemoveAdmin(c tele.Context) error {
	requester := c.Sender().ID
	target, err := parseID(c.Text())
	if err != nil {
		return c.Send(textInvalidID)
	}

	prompt := h.states.Get(requester).PromptMessage
	ctx, cancel := opContext()
	defer cancel()

	if err := h.admins.Demote(ctx, requester, target); err != nil {
		h.fire(requester, state.EventCancel, nil)
		if failErr := h.fail(c, "demote", err); failErr != nil {
			return failErr
		}
		return h.returnToMenu(c, prompt)
	}
	h.fire(requester, state.EventSubmit, nil)

	h.confirm(c, fmt.Sprintf("Пользователь %d удален из администраторов.", target), nil)

	h.notify(target, "ℹ️ Вы были удалены из администраторов.\nВыберите действие в меню ниже:", mainMenuMarkup(false))
	return h.returnToMenu(c, prompt)
}

// handleListAdmins shows stored admins with their profiles
func (h *Handler) handleListAdmins(c tele.Context) error {
	ctx, cancel := opContext()
	defer cancel()

	admins, err := h.admins.ListAdmins(ctx, c.Sender().ID)
	if err != nil {
		return h.fail(c, "list_admins", err)
	}
	if len(admins) == 0 {
		return h.render(c, "Список администраторов пуст", mainMenuMarkup(true), "")
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(
		markup.Row(markup.Data("🔙 Управление админами", btnManageAdmins.Unique)),
		markup.Row(btnMainMenu),
	)
	return h.render(c, formatAdmins(admins), markup, "")
}
