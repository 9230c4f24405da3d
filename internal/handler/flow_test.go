package handler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"feedbackbot/internal/domain"
	"feedbackbot/internal/repository/sqlite"
	"feedbackbot/internal/service"
	"feedbackbot/internal/state"
	"feedbackbot/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v3"
)

// fakeContext stands in for a telebot update; methods not overridden
// panic through the nil embedded interface
type fakeContext struct {
	tele.Context
	sender   *tele.User
	text     string
	callback *tele.Callback
	message  *tele.Message

	sendErr error
	editErr error

	sent      []interface{}
	edits     []interface{}
	responses []*tele.CallbackResponse
}

func (f *fakeContext) Sender() *tele.User       { return f.sender }
func (f *fakeContext) Text() string             { return f.text }
func (f *fakeContext) Callback() *tele.Callback { return f.callback }
func (f *fakeContext) Message() *tele.Message   { return f.message }

func (f *fakeContext) Send(what interface{}, opts ...interface{}) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, what)
	return nil
}

func (f *fakeContext) Edit(what interface{}, opts ...interface{}) error {
	if f.editErr != nil {
		return f.editErr
	}
	f.edits = append(f.edits, what)
	return nil
}

func (f *fakeContext) Respond(resp ...*tele.CallbackResponse) error {
	f.responses = append(f.responses, resp...)
	return nil
}

func textFrom(userID int64, text string) *fakeContext {
	return &fakeContext{sender: &tele.User{ID: userID}, text: text}
}

type flowFixture struct {
	h      *Handler
	out    *fakeMessenger
	access *service.AccessService
	dialog *service.DialogService
	admins *service.AdminService
}

// newFlowFixture wires a handler over a fresh SQLite store with bootstrap
// admin 1, store admin 42 and user 100
func newFlowFixture(t *testing.T) flowFixture {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "feedback.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	users := sqlite.NewUserRepo(db)
	messages := sqlite.NewMessageRepo(db)
	logger := testutil.NewTestLogger()

	access := service.NewAccessService(users, domain.NewAdminSet([]int64{1}), logger)
	admins := service.NewAdminService(access, users, logger)
	relay := service.NewRelayService(access, users, messages, logger)
	dialog := service.NewDialogService(access, users, messages, logger)

	require.NoError(t, access.Register(ctx, domain.User{UserID: 1, Username: "boss", FullName: "Boss"}))
	require.NoError(t, access.Register(ctx, domain.User{UserID: 100, Username: "alice", FullName: "Alice"}))
	_, err = admins.Promote(ctx, 1, 42)
	require.NoError(t, err)

	out := &fakeMessenger{}
	h := NewHandler(nil, access, admins, relay, dialog, state.NewTracker(nil), logger)
	h.out = out

	return flowFixture{h: h, out: out, access: access, dialog: dialog, admins: admins}
}

func (f flowFixture) arm(t *testing.T, userID int64, event state.Event, setup func(*domain.StateData)) {
	t.Helper()
	_, err := f.h.states.Fire(userID, event, setup)
	require.NoError(t, err)
}

func (f flowFixture) stateOf(userID int64) domain.ConversationState {
	return f.h.states.Get(userID).State
}

func (f flowFixture) recipients() []string {
	var to []string
	for _, m := range f.out.sent {
		to = append(to, m.to)
	}
	return to
}

func (f flowFixture) history(t *testing.T, userID int64) []domain.ThreadMessage {
	t.Helper()
	page, err := f.dialog.UserHistory(context.Background(), userID, 1)
	require.NoError(t, err)
	return page.Items
}

func TestUserMessage_StoresNotifiesAndResets(t *testing.T) {
	f := newFlowFixture(t)
	f.arm(t, 100, state.EventWriteMessage, nil)

	require.NoError(t, f.h.handleText(textFrom(100, "hello")))

	assert.Equal(t, domain.StateIdle, f.stateOf(100))
	assert.ElementsMatch(t, []string{"1", "42"}, f.recipients())
	assert.Equal(t, newMessageNotice(domain.User{UserID: 100, Username: ""}, "hello"), f.out.sent[0].what)

	items := f.history(t, 100)
	require.Len(t, items, 1)
	assert.Equal(t, "hello", items[0].Body)
}

func TestUserMessage_NotifiesWhenConfirmationFails(t *testing.T) {
	f := newFlowFixture(t)
	f.arm(t, 100, state.EventWriteMessage, nil)

	c := textFrom(100, "hello")
	c.sendErr = errors.New("telegram: Bad Gateway")

	require.NoError(t, f.h.processUserMessage(c))

	assert.Len(t, f.history(t, 100), 1)
	assert.ElementsMatch(t, []string{"1", "42"}, f.recipients())
	assert.Equal(t, domain.StateIdle, f.stateOf(100))
}

func TestUserMessage_EmptyKeepsState(t *testing.T) {
	f := newFlowFixture(t)
	f.arm(t, 100, state.EventWriteMessage, nil)

	c := textFrom(100, "   ")
	require.NoError(t, f.h.handleText(c))

	assert.Equal(t, domain.StateAwaitingUserMessage, f.stateOf(100))
	text, _ := errorText(domain.ErrEmptyMessage)
	assert.Equal(t, []interface{}{text}, c.sent)
	assert.Empty(t, f.history(t, 100))
	assert.Empty(t, f.out.sent)
}

func TestUserMessage_BlockedEndsFlow(t *testing.T) {
	f := newFlowFixture(t)
	require.NoError(t, f.dialog.SetBlocked(context.Background(), 1, 100, true))
	f.arm(t, 100, state.EventWriteMessage, nil)

	c := textFrom(100, "hello")
	require.NoError(t, f.h.handleText(c))

	assert.Equal(t, domain.StateIdle, f.stateOf(100))
	assert.Equal(t, []interface{}{"Вы заблокированы в системе"}, c.sent)
	assert.Empty(t, f.out.sent)
}

func TestAdminReply_StoresForwardsAndResets(t *testing.T) {
	f := newFlowFixture(t)
	f.arm(t, 1, state.EventReply, func(d *domain.StateData) { d.ReplyTargetID = 100 })

	require.NoError(t, f.h.handleText(textFrom(1, "hi")))

	assert.Equal(t, domain.StateIdle, f.stateOf(1))
	require.Len(t, f.out.sent, 1)
	assert.Equal(t, "100", f.out.sent[0].to)
	assert.Equal(t, replyNotice("hi"), f.out.sent[0].what)

	items := f.history(t, 100)
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].FromID)
}

func TestAdminReply_ForwardsWhenConfirmationFails(t *testing.T) {
	f := newFlowFixture(t)
	f.arm(t, 1, state.EventReply, func(d *domain.StateData) { d.ReplyTargetID = 100 })

	c := textFrom(1, "hi")
	c.sendErr = errors.New("telegram: Bad Gateway")

	require.NoError(t, f.h.processAdminReply(c))
	assert.Equal(t, []string{"100"}, f.recipients())
}

func TestAdminReply_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		target    int64
		text      string
		wantState domain.ConversationState
		wantErr   error
	}{
		{name: "empty reply re-prompts", target: 100, text: "", wantState: domain.StateAwaitingAdminReply, wantErr: domain.ErrEmptyMessage},
		{name: "unknown target ends flow", target: 777, text: "hi", wantState: domain.StateIdle, wantErr: domain.ErrUserNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFlowFixture(t)
			f.arm(t, 1, state.EventReply, func(d *domain.StateData) { d.ReplyTargetID = tt.target })

			c := textFrom(1, tt.text)
			require.NoError(t, f.h.handleText(c))

			assert.Equal(t, tt.wantState, f.stateOf(1))
			text, _ := errorText(tt.wantErr)
			assert.Equal(t, []interface{}{text}, c.sent)
			assert.Empty(t, f.out.sent)
		})
	}
}

func TestAddAdmin_MalformedIDKeepsState(t *testing.T) {
	f := newFlowFixture(t)
	f.arm(t, 1, state.EventAddAdmin, nil)

	c := textFrom(1, "abc")
	require.NoError(t, f.h.handleText(c))

	assert.Equal(t, domain.StateAwaitingNewAdminID, f.stateOf(1))
	assert.Equal(t, []interface{}{textInvalidID}, c.sent)
}

func TestAddAdmin_PromotesNotifiesAndRestoresMenu(t *testing.T) {
	f := newFlowFixture(t)
	prompt := &domain.MessageRef{MessageID: 9, ChatID: 1}
	f.arm(t, 1, state.EventAddAdmin, func(d *domain.StateData) { d.PromptMessage = prompt })

	c := textFrom(1, "555")
	require.NoError(t, f.h.handleText(c))

	assert.Equal(t, domain.StateIdle, f.stateOf(1))
	assert.Equal(t, []string{"555"}, f.recipients())
	assert.Len(t, f.out.edited, 1)

	admin, err := f.access.IsAdmin(context.Background(), 555)
	require.NoError(t, err)
	assert.True(t, admin)
}

func TestAddAdmin_NotifiesWhenConfirmationFails(t *testing.T) {
	f := newFlowFixture(t)
	prompt := &domain.MessageRef{MessageID: 9, ChatID: 1}
	f.arm(t, 1, state.EventAddAdmin, func(d *domain.StateData) { d.PromptMessage = prompt })

	c := textFrom(1, "555")
	c.sendErr = errors.New("telegram: Bad Gateway")

	require.NoError(t, f.h.processAddAdmin(c))
	assert.Equal(t, []string{"555"}, f.recipients())
	assert.Len(t, f.out.edited, 1)
}

func TestRemoveAdmin_MalformedIDKeepsState(t *testing.T) {
	f := newFlowFixture(t)
	f.arm(t, 1, state.EventRemoveAdmin, nil)

	c := textFrom(1, "-3")
	require.NoError(t, f.h.handleText(c))

	assert.Equal(t, domain.StateAwaitingAdminRemovalID, f.stateOf(1))
	assert.Equal(t, []interface{}{textInvalidID}, c.sent)
}

func TestRemoveAdmin_DemotesAndNotifies(t *testing.T) {
	f := newFlowFixture(t)
	f.arm(t, 1, state.EventRemoveAdmin, nil)

	c := textFrom(1, "42")
	require.NoError(t, f.h.handleText(c))

	assert.Equal(t, domain.StateIdle, f.stateOf(1))
	assert.Equal(t, []string{"42"}, f.recipients())

	admin, err := f.access.IsAdmin(context.Background(), 42)
	require.NoError(t, err)
	assert.False(t, admin)
}

func TestRemoveAdmin_RejectionResetsToIdle(t *testing.T) {
	tests := []struct {
		name      string
		requester int64
		target    string
		wantErr   error
	}{
		{name: "self", requester: 42, target: "42", wantErr: domain.ErrSelfDemotion},
		{name: "bootstrap", requester: 42, target: "1", wantErr: domain.ErrBootstrapAdmin},
		{name: "not an admin", requester: 1, target: "100", wantErr: domain.ErrNotAdmin},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFlowFixture(t)
			f.arm(t, tt.requester, state.EventRemoveAdmin, nil)

			c := textFrom(tt.requester, tt.target)
			require.NoError(t, f.h.handleText(c))

			assert.Equal(t, domain.StateIdle, f.stateOf(tt.requester))
			text, _ := errorText(tt.wantErr)
			require.Len(t, c.sent, 2)
			assert.Equal(t, text, c.sent[0])
			assert.Equal(t, textMainMenu, c.sent[1])
			assert.Empty(t, f.out.sent)
		})
	}
}

func TestIdleText_ShowsMenu(t *testing.T) {
	f := newFlowFixture(t)

	c := textFrom(100, "anyone there?")
	require.NoError(t, f.h.handleText(c))

	assert.Equal(t, []interface{}{"Выберите действие в меню ниже:"}, c.sent)
	assert.Empty(t, f.history(t, 100))
}

func TestRender_NoticeSurvivesEditFallback(t *testing.T) {
	f := newFlowFixture(t)

	c := &fakeContext{
		sender:   &tele.User{ID: 1},
		callback: &tele.Callback{ID: "cb"},
		editErr:  errors.New("telegram: Bad Request: message to edit not found"),
	}

	require.NoError(t, f.h.render(c, "📋 Список диалогов:", backMarkup(), "Диалог удален"))

	assert.Equal(t, []interface{}{"📋 Список диалогов:"}, c.sent)
	require.Len(t, c.responses, 1)
	assert.Equal(t, "Диалог удален", c.responses[0].Text)
	assert.True(t, c.responses[0].ShowAlert)
}

func TestRender_NoticeOnEdit(t *testing.T) {
	f := newFlowFixture(t)

	c := &fakeContext{sender: &tele.User{ID: 1}, callback: &tele.Callback{ID: "cb"}}
	require.NoError(t, f.h.render(c, "text", backMarkup(), "Пользователь заблокирован"))

	assert.Equal(t, []interface{}{"text"}, c.edits)
	require.Len(t, c.responses, 1)
	assert.Equal(t, "Пользователь заблокирован", c.responses[0].Text)
}

func TestCallbackArgs(t *testing.T) {
	c := &fakeContext{callback: &tele.Callback{Data: " 100|2\n"}}
	assert.Equal(t, []string{"100", "2"}, callbackArgs(c))

	id, ok := argID(c, 0)
	assert.True(t, ok)
	assert.Equal(t, int64(100), id)
	assert.Equal(t, 2, argPage(c, 1))
	assert.Equal(t, 1, argPage(c, 5))

	_, ok = argID(&fakeContext{callback: &tele.Callback{}}, 0)
	assert.False(t, ok)
	assert.Nil(t, callbackArgs(&fakeContext{}))
}
