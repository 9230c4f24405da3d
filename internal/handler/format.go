package handler

import (
	"fmt"
	"strings"
	"time"

	"feedbackbot/internal/domain"
)

const (
	// maxMessageLen is Telegram's limit for a text message
	maxMessageLen = 4096
	separator     = "➖➖➖➖➖➖➖➖"
	dateLayout    = "02.01.2006 15:04"
)

// limitText cuts text to what Telegram accepts, counting runes
func limitText(text string) string {
	runes := []rune(text)
	if len(runes) <= maxMessageLen {
		return text
	}
	return string(runes[:maxMessageLen-1]) + "…"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Local().Format(dateLayout)
}

func yesNo(v bool) string {
	if v {
		return "Да"
	}
	return "Нет"
}

func formatProfile(u domain.User, admin bool) string {
	return fmt.Sprintf(
		"👤 Ваш профиль:\n\n📌 ID: %d\n👤 Имя: %s\n🔗 Юзернейм: %s\n📅 Дата регистрации: %s\n👑 Админ: %s",
		u.UserID, u.FullName, u.Handle(), formatDate(u.RegistrationDate), yesNo(admin),
	)
}

// formatThread renders a page of a thread as seen by an admin.
// A line is marked as the admin's when viewerID wrote it.
func formatThread(userID, viewerID int64, page domain.Page[domain.ThreadMessage]) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📋 Диалог с пользователем %d", userID)
	if page.TotalPages > 1 {
		fmt.Fprintf(&b, " (стр. %d/%d)", page.Number, page.TotalPages)
	}
	b.WriteString(":\n\n")

	for _, msg := range page.Items {
		if msg.SentBy(viewerID) {
			fmt.Fprintf(&b, "👑 Админ (%s): %s\n", msg.SenderHandle(), msg.Body)
		} else {
			fmt.Fprintf(&b, "👤 Пользователь (%s): %s\n", msg.SenderHandle(), msg.Body)
		}
		fmt.Fprintf(&b, "Дата: %s\n%s\n", formatDate(msg.SentAt), separator)
	}
	return b.String()
}

// formatHistory renders a user's own thread with outgoing/incoming marks
func formatHistory(viewerID int64, page domain.Page[domain.ThreadMessage]) string {
	var b strings.Builder
	b.WriteString("📋 История диалога:\n\n")
	for _, msg := range page.Items {
		direction := "📥"
		if msg.SentBy(viewerID) {
			direction = "📤"
		}
		fmt.Fprintf(&b, "%s %s\nДата: %s\n%s\n", direction, msg.Body, formatDate(msg.SentAt), separator)
	}
	return b.String()
}

func formatAdmins(admins []domain.User) string {
	var b strings.Builder
	b.WriteString("📋 Список администраторов:\n\n")
	for _, u := range admins {
		fmt.Fprintf(&b, "ID: %d\nИмя: %s\nЮзернейм: %s\n%s\n", u.UserID, u.FullName, u.Handle(), separator)
	}
	return b.String()
}

// counterpartyLabel is the button text for one dialog in the list
func counterpartyLabel(cp domain.Counterparty) string {
	label := fmt.Sprintf("%s (%s)", cp.FullName, cp.Handle())
	if cp.Unread > 0 {
		label = fmt.Sprintf("🔴 %s • %d", label, cp.Unread)
	}
	return label
}

func newMessageNotice(sender domain.User, body string) string {
	return fmt.Sprintf("📨 Новое сообщение от %s (ID: %d):\n\n%s", sender.Handle(), sender.UserID, body)
}

func replyNotice(body string) string {
	return "📨 Ответ от администратора:\n\n" + body
}
