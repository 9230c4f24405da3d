package handler

import (
	"errors"
	"fmt"
	"strconv"

	"feedbackbot/internal/domain"
	"feedbackbot/internal/state"

	tele "gopkg.in/telebot.v3"
)

// handleDialogs opens the counterparties list at the remembered page
func (h *Handler) handleDialogs(c tele.Context) error {
	page := h.states.Get(c.Sender().ID).CurrentPage
	return h.showDialogs(c, page, "")
}

// handlePage moves the counterparties list cursor
func (h *Handler) handlePage(c tele.Context) error {
	return h.showDialogs(c, argPage(c, 0), "")
}

func (h *Handler) showDialogs(c tele.Context, page int, notice string) error {
	adminID := c.Sender().ID
	ctx, cancel := opContext()
	defer cancel()

	result, err := h.dialogs.Counterparties(ctx, adminID, page)
	if err != nil {
		return h.fail(c, "list_counterparties", err)
	}
	h.states.Update(adminID, func(d *domain.StateData) {
		d.CurrentPage = result.Number
	})

	markup := &tele.ReplyMarkup{}
	rows := []tele.Row{}
	for _, cp := range result.Items {
		rows = append(rows, markup.Row(markup.Data(counterpartyLabel(cp), btnDialog.Unique, idData(cp.UserID))))
	}
	if nav := pageRow(markup, result, btnPage.Unique); nav != nil {
		rows = append(rows, nav)
	}
	rows = append(rows, markup.Row(btnMainMenu))
	markup.Inline(rows...)

	text := "📋 Список диалогов:"
	if result.Total == 0 {
		text = "📋 Список диалогов пуст"
	}
	return h.render(c, text, markup, notice)
}

// pageRow builds ⬅️ n/t ➡️ navigation; prefix is prepended to the page in
// button data. Returns nil when there is a single page.
func pageRow[T any](markup *tele.ReplyMarkup, page domain.Page[T], unique string, prefix ...string) tele.Row {
	if !page.HasPrev() && !page.HasNext() {
		return nil
	}
	data := func(p int) []string {
		return append(append([]string{}, prefix...), strconv.Itoa(p))
	}

	row := tele.Row{}
	if page.HasPrev() {
		row = append(row, markup.Data("⬅️", unique, data(page.Number-1)...))
	}
	row = append(row, markup.Data(fmt.Sprintf("%d/%d", page.Number, page.TotalPages), btnIgnore.Unique))
	if page.HasNext() {
		row = append(row, markup.Data("➡️", unique, data(page.Number+1)...))
	}
	return row
}

// handleShowDialog opens a thread on its newest page
func (h *Handler) handleShowDialog(c tele.Context) error {
	userID, ok := argID(c, 0)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Неверный пользователь"})
	}
	return h.showThread(c, userID, 1, "")
}

// handleThreadPage pages through a thread
func (h *Handler) handleThreadPage(c tele.Context) error {
	userID, ok := argID(c, 0)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Неверный пользователь"})
	}
	return h.showThread(c, userID, argPage(c, 1), "")
}

func (h *Handler) showThread(c tele.Context, userID int64, page int, notice string) error {
	adminID := c.Sender().ID
	ctx, cancel := opContext()
	defer cancel()

	thread, err := h.dialogs.Thread(ctx, adminID, userID, page)
	if err != nil {
		return h.fail(c, "list_thread", err)
	}
	if thread.Total == 0 {
		return c.Respond(&tele.CallbackResponse{Text: "Диалог пуст", ShowAlert: true})
	}

	blocked, err := h.access.IsBlocked(ctx, userID)
	if err != nil {
		return h.fail(c, "is_blocked", err)
	}

	id := idData(userID)
	markup := &tele.ReplyMarkup{}
	toggle := markup.Data("🔒 Заблокировать", btnBlock.Unique, id)
	if blocked {
		toggle = markup.Data("🔓 Разблокировать", btnUnblock.Unique, id)
	}

	rows := []tele.Row{markup.Row(toggle, markup.Data("✍️ Ответить", btnReply.Unique, id))}
	if nav := pageRow(markup, thread, btnThreadPage.Unique, id); nav != nil {
		rows = append(rows, nav)
	}
	rows = append(rows, markup.Row(
		markup.Data("🗑️ Удалить диалог", btnDeleteDialog.Unique, id),
		btnMainMenu,
	))
	markup.Inline(rows...)

	return h.render(c, formatThread(userID, adminID, thread), markup, notice)
}

func (h *Handler) handleBlock(c tele.Context) error {
	return h.setBlocked(c, true)
}

func (h *Handler) handleUnblock(c tele.Context) error {
	return h.setBlocked(c, false)
}

func (h *Handler) setBlocked(c tele.Context, blocked bool) error {
	userID, ok := argID(c, 0)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Неверный пользователь"})
	}

	ctx, cancel := opContext()
	defer cancel()

	if err := h.dialogs.SetBlocked(ctx, c.Sender().ID, userID, blocked); err != nil {
		return h.fail(c, "set_blocked", err)
	}

	notice := "Пользователь разблокирован"
	if blocked {
		notice = "Пользователь заблокирован"
	}
	return h.showThread(c, userID, 1, notice)
}

// handleReply starts the admin → user reply flow
func (h *Handler) handleReply(c tele.Context) error {
	userID, ok := argID(c, 0)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Неверный пользователь"})
	}

	ref := promptRef(c)
	if _, err := h.states.Fire(c.Sender().ID, state.EventReply, func(d *domain.StateData) {
		d.ReplyTargetID = userID
		d.PromptMessage = ref
	}); err != nil {
		return h.rejectFlow(c, err)
	}

	markup := &tele.ReplyMarkup{}
	markup.Inline(markup.Row(btnCancelMessage))
	text := fmt.Sprintf("✍️ Введите ваш ответ пользователю %d:", userID)
	return h.render(c, text, markup, "")
}

// processAdminReply stores the admin's reply and forwards it to the user
func (h *Handler) processAdminReply(c tele.Context) error {
	adminID := c.Sender().ID
	data := h.states.Get(adminID)
	ctx, cancel := opContext()
	defer cancel()

	if _, err := h.relay.Reply(ctx, adminID, data.ReplyTargetID, c.Text()); err != nil {
		// Empty input re-prompts, anything else ends the flow
		if !errors.Is(err, domain.ErrEmptyMessage) {
			h.fire(adminID, state.EventCancel, nil)
		}
		return h.fail(c, "reply", err)
	}
	h.fire(adminID, state.EventSubmit, nil)

	h.confirm(c, "✅ Ответ отправлен", mainMenuMarkup(true))
	h.notify(data.ReplyTargetID, replyNotice(c.Text()), mainMenuMarkup(h.isAdmin(data.ReplyTargetID)))
	return nil
}

// handleDeleteDialog erases the thread with a user
func (h *Handler) handleDeleteDialog(c tele.Context) error {
	userID, ok := argID(c, 0)
	if !ok {
		return c.Respond(&tele.CallbackResponse{Text: "Неверный пользователь"})
	}

	adminID := c.Sender().ID
	ctx, cancel := opContext()
	defer cancel()

	if _, err := h.dialogs.EraseThread(ctx, adminID, userID); err != nil {
		return h.fail(c, "erase_thread", err)
	}
	return h.showDialogs(c, h.states.Get(adminID).CurrentPage, "Диалог удален")
}
