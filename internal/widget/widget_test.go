package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diogo/ayurchat/internal/api"
	apierrors "github.com/diogo/ayurchat/internal/errors"
	"github.com/diogo/ayurchat/internal/models"
	"github.com/diogo/ayurchat/internal/session"
)

// recordingView logs every call as a short string
type recordingView struct {
	mu          sync.Mutex
	calls       []string
	nodes       []Node
	alerts      []string
	sendEnabled bool
	screen      string
	thinking    bool
}

func newRecordingView() *recordingView {
	return &recordingView{sendEnabled: true}
}

func (v *recordingView) record(call string) {
	v.calls = append(v.calls, call)
}

func (v *recordingView) ShowLoginScreen() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.screen = "login"
	v.record("login-screen")
}

func (v *recordingView) ShowChatScreen() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.screen = "chat"
	v.record("chat-screen")
}

func (v *recordingView) AppendNode(node Node) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nodes = append(v.nodes, node)
	v.record("append:" + node.Class)
}

func (v *recordingView) ShowThinking(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.thinking = true
	v.record("thinking")
}

func (v *recordingView) RemoveThinking() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.thinking = false
	v.record("remove-thinking")
}

func (v *recordingView) ClearInput() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("clear-input")
}

func (v *recordingView) SetSendEnabled(enabled bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sendEnabled = enabled
	v.record(fmt.Sprintf("send:%t", enabled))
}

func (v *recordingView) ScrollToBottom() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.record("scroll")
}

func (v *recordingView) Alert(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.alerts = append(v.alerts, text)
	v.record("alert")
}

func (v *recordingView) Calls() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.calls...)
}

func (v *recordingView) Alerts() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.alerts...)
}

func newTestWidget(t *testing.T, backend *api.MockClient, store session.Store) (*Widget, *recordingView) {
	t.Helper()
	view := newRecordingView()
	if store == nil {
		store = session.NewMemoryStore()
	}
	return New(view, backend, backend, store, WithLogger(zerolog.Nop())), view
}

func TestCheckInitialState(t *testing.T) {
	tests := []struct {
		name  string
		flag  *string
		want  ViewState
		shown string
	}{
		{name: "absent", want: LoginScreen, shown: "login"},
		{name: "true", flag: ptr("true"), want: ChatScreen, shown: "chat"},
		{name: "false", flag: ptr("false"), want: LoginScreen, shown: "login"},
		{name: "mixed case", flag: ptr("True"), want: LoginScreen, shown: "login"},
		{name: "garbage", flag: ptr("1"), want: LoginScreen, shown: "login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := session.NewMemoryStore()
			if tt.flag != nil {
				require.NoError(t, store.Set(session.FlagKey, *tt.flag))
			}
			backend := &api.MockClient{}
			w, view := newTestWidget(t, backend, store)

			assert.Equal(t, tt.want, w.CheckInitialState())
			assert.Equal(t, tt.want, w.CheckInitialState(), "idempotent")
			assert.Equal(t, tt.shown, view.screen)

			ask, login, logout := backend.Calls()
			assert.Zero(t, ask+login+logout, "no network on load")
		})
	}
}

func TestSubmitMessage_Success(t *testing.T) {
	backend := &api.MockClient{AskVal: &models.ChatResponse{Question: "What is Pitta?", Answer: "Pitta is fire and water."}}
	w, view := newTestWidget(t, backend, nil)

	w.SubmitMessage(context.Background(), "  What is Pitta?  ")

	assert.Equal(t, []string{"What is Pitta?"}, backend.AskCalls)
	assert.Equal(t, []models.Message{
		models.UserMessage("What is Pitta?"),
		models.AssistantMessage("Pitta is fire and water."),
	}, w.Transcript())

	assert.Equal(t, []string{
		"append:user-message", "scroll",
		"clear-input",
		"thinking", "scroll",
		"send:false",
		"remove-thinking",
		"append:bot-message", "scroll",
		"send:true",
	}, view.Calls())
	assert.False(t, w.Pending())
	assert.True(t, view.sendEnabled)
	assert.False(t, view.thinking)
}

func TestSubmitMessage_BlankIsNoop(t *testing.T) {
	for _, input := range []string{"", "   ", "\n\t"} {
		backend := &api.MockClient{}
		w, view := newTestWidget(t, backend, nil)

		w.SubmitMessage(context.Background(), input)

		assert.Empty(t, backend.AskCalls)
		assert.Empty(t, view.Calls())
		assert.Empty(t, w.Transcript())
	}
}

func TestSubmitMessage_FailuresShowApology(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "server error", err: apierrors.NewAPIError(500, models.DefaultChatPath, "model unavailable")},
		{name: "csrf rejected", err: apierrors.NewAPIError(403, models.DefaultChatPath, "forbidden")},
		{name: "transport", err: apierrors.NewNetworkError("ask", models.DefaultChatPath, errors.New("connection refused"))},
		{name: "malformed body", err: apierrors.NewParseError("missing answer field", "answer")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &api.MockClient{AskErr: tt.err}
			w, view := newTestWidget(t, backend, nil)

			w.SubmitMessage(context.Background(), "hello")

			transcript := w.Transcript()
			require.Len(t, transcript, 2)
			assert.Equal(t, models.AssistantMessage(models.FallbackAnswer), transcript[1])
			for _, msg := range transcript {
				assert.NotContains(t, msg.Content, tt.err.Error())
			}

			calls := view.Calls()
			assert.Equal(t, "send:true", calls[len(calls)-1])
			assert.Contains(t, calls, "remove-thinking")
			assert.False(t, w.Pending())
		})
	}
}

func TestSubmitMessage_NilResponseIsFailure(t *testing.T) {
	backend := &api.MockClient{}
	w, _ := newTestWidget(t, backend, nil)

	w.SubmitMessage(context.Background(), "hello")

	assert.Equal(t, models.FallbackAnswer, w.Transcript()[1].Content)
}

func TestSubmitMessage_PendingWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	backend := &api.MockClient{
		AskFunc: func(ctx context.Context, question string) (*models.ChatResponse, error) {
			close(entered)
			<-release
			return &models.ChatResponse{Answer: "ok"}, nil
		},
	}
	w, view := newTestWidget(t, backend, nil)

	done := make(chan struct{})
	go func() {
		w.SubmitMessage(context.Background(), "slow question")
		close(done)
	}()

	<-entered
	assert.True(t, w.Pending())
	view.mu.Lock()
	assert.False(t, view.sendEnabled)
	assert.True(t, view.thinking)
	view.mu.Unlock()

	close(release)
	<-done

	assert.False(t, w.Pending())
	assert.True(t, view.sendEnabled)
}

func TestSubmitMessage_ContentCarriedRaw(t *testing.T) {
	raw := "<script>alert(1)</script> **bold**"
	backend := &api.MockClient{AskVal: &models.ChatResponse{Answer: raw}}
	w, view := newTestWidget(t, backend, nil)

	w.SubmitMessage(context.Background(), "<b>hi</b>")

	require.Len(t, view.nodes, 2)
	assert.Equal(t, "<b>hi</b>", view.nodes[0].Content)
	assert.Equal(t, raw, view.nodes[1].Content)
}

func TestLogin_Success(t *testing.T) {
	store := session.NewMemoryStore()
	backend := &api.MockClient{}
	w, view := newTestWidget(t, backend, store)
	w.CheckInitialState()

	err := w.Login(context.Background(), " asha@example.com ", " Asha ")
	require.NoError(t, err)

	assert.Equal(t, [][2]string{{"asha@example.com", "Asha"}}, backend.LoginCalls)
	assert.True(t, session.LoggedIn(store))
	assert.Equal(t, []string{"Welcome, Asha!"}, view.Alerts())
	assert.Equal(t, ChatScreen, w.State())
	assert.Equal(t, "chat", view.screen)
}

func TestLogin_Validation(t *testing.T) {
	tests := []struct {
		name, email, userName, field string
	}{
		{name: "both empty", field: "email"},
		{name: "email missing", userName: "Asha", field: "email"},
		{name: "name missing", email: "a@b.c", field: "name"},
		{name: "whitespace name", email: "a@b.c", userName: "   ", field: "name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := session.NewMemoryStore()
			backend := &api.MockClient{}
			w, view := newTestWidget(t, backend, store)
			w.CheckInitialState()

			err := w.Login(context.Background(), tt.email, tt.userName)

			var vErr *apierrors.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Empty(t, backend.LoginCalls)
			assert.Equal(t, []string{models.LoginValidationText}, view.Alerts())
			assert.Equal(t, LoginScreen, w.State())
			_, ok := store.Get(session.FlagKey)
			assert.False(t, ok)
		})
	}
}

func TestLogin_Failures(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		alert string
	}{
		{name: "rejected", err: apierrors.NewAuthError(401, models.DefaultLoginPath, "bad"), alert: models.LoginFailedText},
		{name: "server error", err: apierrors.NewAuthError(500, models.DefaultLoginPath, ""), alert: models.LoginFailedText},
		{name: "transport", err: apierrors.NewNetworkError("login", models.DefaultLoginPath, errors.New("refused")), alert: models.LoginErrorText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := session.NewMemoryStore()
			backend := &api.MockClient{LoginErr: tt.err}
			w, view := newTestWidget(t, backend, store)
			w.CheckInitialState()
			before := len(view.Calls())

			err := w.Login(context.Background(), "a@b.c", "Asha")

			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, []string{tt.alert}, view.Alerts())
			assert.Equal(t, []string{"alert"}, view.Calls()[before:], "view unchanged apart from the alert")
			assert.False(t, session.LoggedIn(store))
			assert.Equal(t, LoginScreen, w.State())
		})
	}
}

func TestLogin_FailureLogOmitsAddress(t *testing.T) {
	var buf strings.Builder
	backend := &api.MockClient{LoginErr: apierrors.NewAuthError(401, models.DefaultLoginPath, "bad")}
	w := New(newRecordingView(), backend, backend, session.NewMemoryStore(), WithLogger(zerolog.New(&buf)))

	err := w.Login(context.Background(), "asha.rao@clinic.example", "Asha")
	require.Error(t, err)

	out := buf.String()
	assert.Contains(t, out, "login failed")
	assert.Contains(t, out, `"email_domain":"clinic.example"`)
	assert.NotContains(t, out, "asha.rao")
}

func TestEmailDomain(t *testing.T) {
	assert.Equal(t, "b.c", emailDomain("a@b.c"))
	assert.Equal(t, "host", emailDomain(`"a@x"@host`))
	assert.Equal(t, "", emailDomain("no-at-sign"))
}

func TestLogout_Detached(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, session.SetLoggedIn(store, true))

	release := make(chan struct{})
	backend := &blockingLogout{MockClient: &api.MockClient{}, release: release}
	view := newRecordingView()
	w := New(view, backend, backend, store, WithLogger(zerolog.Nop()))
	require.Equal(t, ChatScreen, w.CheckInitialState())

	ctx, cancel := context.WithCancel(context.Background())
	w.Logout(ctx)
	cancel()

	// the UI switched before the backend answered
	assert.Equal(t, LoginScreen, w.State())
	assert.Equal(t, []string{models.LogoutText}, view.Alerts())
	v, _ := store.Get(session.FlagKey)
	assert.Equal(t, "false", v)

	waited := make(chan struct{})
	go func() {
		w.Wait()
		close(waited)
	}()

	select {
	case <-waited:
		t.Fatal("Wait returned before the logout request finished")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return")
	}

	assert.NoError(t, backend.ctxErr, "logout request must outlive the caller's context")
}

func TestLogout_ErrorOnlyLogged(t *testing.T) {
	backend := &api.MockClient{LogoutErr: errors.New("boom")}
	w, view := newTestWidget(t, backend, nil)

	w.Logout(context.Background())
	w.Wait()

	assert.Equal(t, []string{models.LogoutText}, view.Alerts())
	assert.Equal(t, LoginScreen, w.State())
	_, _, logout := backend.Calls()
	assert.Equal(t, 1, logout)
}

func TestLoginLogoutCycle(t *testing.T) {
	store := session.NewMemoryStore()
	backend := &api.MockClient{AskVal: &models.ChatResponse{Answer: "namaste"}}
	w, view := newTestWidget(t, backend, store)

	assert.Equal(t, LoginScreen, w.CheckInitialState())
	require.NoError(t, w.Login(context.Background(), "a@b.c", "Asha"))
	w.SubmitMessage(context.Background(), "hi")
	w.Logout(context.Background())
	w.Wait()

	// a fresh widget over the same store starts at login again
	w2, _ := newTestWidget(t, backend, store)
	assert.Equal(t, LoginScreen, w2.CheckInitialState())

	screens := []string{}
	for _, c := range view.Calls() {
		if strings.HasSuffix(c, "-screen") {
			screens = append(screens, c)
		}
	}
	assert.Equal(t, []string{"login-screen", "chat-screen", "login-screen"}, screens)
	assert.Len(t, w.Transcript(), 2)
}

func TestRenderMessage(t *testing.T) {
	user := RenderMessage(models.UserMessage("hi"))
	assert.Equal(t, Node{Class: ClassUser, Header: "You", Content: "hi", Role: models.RoleUser}, user)

	bot := RenderMessage(models.AssistantMessage("hello"))
	assert.Equal(t, Node{Class: ClassAssistant, Header: "AyurVeda Assistant", Content: "hello", Role: models.RoleAssistant}, bot)
}

func TestViewStateString(t *testing.T) {
	assert.Equal(t, "login", LoginScreen.String())
	assert.Equal(t, "chat", ChatScreen.String())
	assert.Equal(t, "unknown", ViewState(9).String())
}

// blockingLogout holds Logout until release is closed
type blockingLogout struct {
	*api.MockClient
	release chan struct{}
	ctxErr  error
}

func (b *blockingLogout) Logout(ctx context.Context) error {
	<-b.release
	b.ctxErr = ctx.Err()
	return nil
}

func ptr(s string) *string {
	return &s
}
