package handler

import (
	"feedbackbot/internal/domain"
	"feedbackbot/internal/service"
	"feedbackbot/internal/state"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	textError     = "Произошла ошибка. Попробуйте позже."
	textForbidden = "Недостаточно прав"
	textMainMenu  = "Вы вернулись в главное меню."
	textWelcome   = "👋 Добро пожаловать в систему обратной связи!\nВыберите действие в меню ниже:"
)

// messenger is the outbound part of the bot used by handlers
type messenger interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
	Edit(msg tele.Editable, what interface{}, opts ...interface{}) (*tele.Message, error)
}

// Handler manages all bot interactions
type Handler struct {
	bot     *tele.Bot
	out     messenger
	access  *service.AccessService
	admins  *service.AdminService
	relay   *service.RelayService
	dialogs *service.DialogService
	states  *state.Tracker
	logger  *zap.Logger

	routes map[domain.ConversationState]tele.HandlerFunc
}

// NewHandler creates a new handler instance
func NewHandler(
	bot *tele.Bot,
	access *service.AccessService,
	admins *service.AdminService,
	relay *service.RelayService,
	dialogs *service.DialogService,
	states *state.Tracker,
	logger *zap.Logger,
) *Handler {
	h := &Handler{
		bot:     bot,
		access:  access,
		admins:  admins,
		relay:   relay,
		dialogs: dialogs,
		states:  states,
		logger:  logger,
	}
	if bot != nil {
		h.out = bot
	}
	h.routes = h.textRoutes()
	return h
}

// RegisterHandlers registers all bot handlers. Admin-only endpoints are
// mounted on a group guarded by adminOnly.
func (h *Handler) RegisterHandlers(register, adminOnly tele.MiddlewareFunc) {
	h.bot.Use(register)

	// Commands
	h.bot.Handle("/start", h.handleStart)

	// Text messages
	h.bot.Handle(tele.OnText, h.handleText)

	// User callbacks
	h.bot.Handle(&btnMainMenu, h.handleMainMenu)
	h.bot.Handle(&btnProfile, h.handleProfile)
	h.bot.Handle(&btnHistory, h.handleHistory)
	h.bot.Handle(&btnWriteMessage, h.handleWriteMessage)
	h.bot.Handle(&btnCancelMessage, h.handleCancel)
	h.bot.Handle(&btnIgnore, h.handleIgnore)

	admin := h.bot.Group()
	admin.Use(adminOnly)

	admin.Handle(&btnAllDialogs, h.handleDialogs)
	admin.Handle(&btnPage, h.handlePage)
	admin.Handle(&btnDialog, h.handleShowDialog)
	admin.Handle(&btnThreadPage, h.handleThreadPage)
	admin.Handle(&btnBlock, h.handleBlock)
	admin.Handle(&btnUnblock, h.handleUnblock)
	admin.Handle(&btnReply, h.handleReply)
	admin.Handle(&btnDeleteDialog, h.handleDeleteDialog)
	admin.Handle(&btnManageAdmins, h.handleManageAdmins)
	admin.Handle(&btnAddAdmin, h.handleAddAdmin)
	admin.Handle(&btnRemoveAdmin, h.handleRemoveAdmin)
	admin.Handle(&btnListAdmins, h.handleListAdmins)

	// Anything left over, e.g. buttons from an older keyboard
	h.bot.Handle(tele.OnCallback, h.handleCallback)
}

// Inline keyboard buttons
var (
	btnWriteMessage = tele.Btn{
		Unique: "write_message",
		Text:   "✉️ Написать сообщение",
	}
	btnProfile = tele.Btn{
		Unique: "profile",
		Text:   "👤 Мой профиль",
	}
	btnHistory = tele.Btn{
		Unique: "dialog_history",
		Text:   "📋 История диалога",
	}
	btnAllDialogs = tele.Btn{
		Unique: "all_dialogs",
		Text:   "📋 Все диалоги",
	}
	btnManageAdmins = tele.Btn{
		Unique: "manage_admins",
		Text:   "👑 Управление админами",
	}
	btnAddAdmin = tele.Btn{
		Unique: "add_admin",
		Text:   "➕ Добавить админа",
	}
	btnRemoveAdmin = tele.Btn{
		Unique: "remove_admin",
		Text:   "➖ Удалить админа",
	}
	btnListAdmins = tele.Btn{
		Unique: "list_admins",
		Text:   "📋 Список админов",
	}
	btnCancelMessage = tele.Btn{
		Unique: "cancel_message",
		Text:   "❌ Отмена",
	}
	btnMainMenu = tele.Btn{
		Unique: "main_menu",
		Text:   "🔙 Главное меню",
	}

	// Templates for buttons carrying data
	btnIgnore       = tele.Btn{Unique: "ignore"}
	btnPage         = tele.Btn{Unique: "page"}
	btnDialog       = tele.Btn{Unique: "dialog"}
	btnThreadPage   = tele.Btn{Unique: "thread_page"}
	btnBlock        = tele.Btn{Unique: "block"}
	btnUnblock      = tele.Btn{Unique: "unblock"}
	btnReply        = tele.Btn{Unique: "reply"}
	btnDeleteDialog = tele.Btn{Unique: "delete_dialog"}
)

// mainMenuMarkup returns the main menu keyboard
func mainMenuMarkup(admin bool) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	rows := []tele.Row{
		menu.Row(btnWriteMessage),
		menu.Row(btnProfile, btnHistory),
	}
	if admin {
		rows = append(rows,
			menu.Row(btnAllDialogs),
			menu.Row(btnManageAdmins),
		)
	}
	menu.Inline(rows...)
	return menu
}

// backMarkup holds a single return-to-menu button
func backMarkup() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(btnMainMenu))
	return menu
}

// adminMessageMarkup is attached to new-message notifications
func adminMessageMarkup(userID int64) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	menu.Inline(menu.Row(menu.Data("✍️ Ответить", btnReply.Unique, idData(userID))))
	return menu
}
