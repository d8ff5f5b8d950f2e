// Package widget implements the chat controller: it toggles between the login
// and chat screens, relays questions to the backend and keeps the visible
// transcript. It owns no rendering; every visual effect goes through a View.
package widget

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	apierrors "github.com/diogo/ayurchat/internal/errors"
	"github.com/diogo/ayurchat/internal/models"
	"github.com/diogo/ayurchat/internal/session"
)

// ChatBackend answers questions.
type ChatBackend interface {
	Ask(ctx context.Context, question string) (*models.ChatResponse, error)
}

// AuthBackend opens and closes a backend session.
type AuthBackend interface {
	Login(ctx context.Context, email, name string) (*models.LoginResponse, error)
	Logout(ctx context.Context) error
}

// Option configures a Widget
type Option func(*Widget)

// WithLogger sets the logger for backend failures
func WithLogger(logger zerolog.Logger) Option {
	return func(w *Widget) {
		w.logger = logger
	}
}

// Widget is the chat controller. It is meant to be driven from a single
// control flow; overlapping SubmitMessage calls are not serialized.
type Widget struct {
	view   View
	chat   ChatBackend
	auth   AuthBackend
	store  session.Store
	logger zerolog.Logger

	mu         sync.Mutex
	state      ViewState
	pending    bool
	transcript []models.Message

	tasks sync.WaitGroup
}

// New creates a Widget. It shows nothing until CheckInitialState is called.
func New(view View, chat ChatBackend, auth AuthBackend, store session.Store, opts ...Option) *Widget {
	w := &Widget{
		view:   view,
		chat:   chat,
		auth:   auth,
		store:  store,
		logger: log.Logger.With().Str("component", "widget").Logger(),
		state:  LoginScreen,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// CheckInitialState shows the chat screen when the session flag says the user
// is logged in and the login screen otherwise. The flag is not verified
// against the backend.
func (w *Widget) CheckInitialState() ViewState {
	if session.LoggedIn(w.store) {
		w.showChat()
	} else {
		w.showLogin()
	}
	return w.State()
}

// SubmitMessage sends text to the backend and appends the exchange to the
// transcript. Blank input is ignored. Backend failures are logged and shown
// as a fixed apology; their detail never reaches the transcript.
func (w *Widget) SubmitMessage(ctx context.Context, text string) {
	question := strings.TrimSpace(text)
	if question == "" {
		return
	}

	w.appendMessage(models.UserMessage(question))
	w.view.ClearInput()
	w.view.ShowThinking(models.ThinkingText)
	w.view.ScrollToBottom()
	w.setPending(true)

	defer w.setPending(false)

	resp, err := w.chat.Ask(ctx, question)
	if err == nil && resp == nil {
		err = apierrors.ErrInvalidResponse
	}
	w.view.RemoveThinking()
	if err != nil {
		w.logger.Error().
			Err(err).
			Int("status", apierrors.GetHTTPStatus(err)).
			Str("endpoint", apierrors.GetEndpoint(err)).
			Msg("chat request failed")
		w.appendMessage(models.AssistantMessage(models.FallbackAnswer))
		return
	}

	w.appendMessage(models.AssistantMessage(resp.Answer))
}

// Login validates the form, opens a backend session and switches to the chat
// screen. Every outcome is reported to the user through an alert; the returned
// error is for callers that need to set an exit status.
func (w *Widget) Login(ctx context.Context, email, name string) error {
	email = strings.TrimSpace(email)
	name = strings.TrimSpace(name)
	if email == "" || name == "" {
		w.view.Alert(models.LoginValidationText)
		field := "email"
		if email != "" {
			field = "name"
		}
		return apierrors.NewValidationError(field, "required")
	}

	if _, err := w.auth.Login(ctx, email, name); err != nil {
		w.logger.Error().Err(err).Str("email_domain", emailDomain(email)).Msg("login failed")
		if apierrors.IsAuthError(err) {
			w.view.Alert(models.LoginFailedText)
		} else {
			w.view.Alert(models.LoginErrorText)
		}
		return err
	}

	if err := session.SetLoggedIn(w.store, true); err != nil {
		w.logger.Warn().Err(err).Msg("failed to persist login flag")
	}
	w.view.Alert(models.WelcomeText(name))
	w.showChat()
	return nil
}

// Logout tells the backend to end the session without waiting for the
// answer, then clears the flag and returns to the login screen. Use Wait to
// join the backend request before exiting.
func (w *Widget) Logout(ctx context.Context) {
	detached := context.WithoutCancel(ctx)
	w.tasks.Add(1)
	go func() {
		defer w.tasks.Done()
		if err := w.auth.Logout(detached); err != nil {
			w.logger.Warn().Err(err).Msg("logout request failed")
		}
	}()

	if err := session.SetLoggedIn(w.store, false); err != nil {
		w.logger.Warn().Err(err).Msg("failed to persist logout flag")
	}
	w.view.Alert(models.LogoutText)
	w.showLogin()
}

// Wait blocks until detached backend requests have finished.
func (w *Widget) Wait() {
	w.tasks.Wait()
}

// Transcript returns a copy of the messages shown so far
func (w *Widget) Transcript() []models.Message {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]models.Message, len(w.transcript))
	copy(out, w.transcript)
	return out
}

// State returns the visible screen
func (w *Widget) State() ViewState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Pending reports whether a chat request is in flight
func (w *Widget) Pending() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pending
}

func (w *Widget) appendMessage(msg models.Message) {
	w.mu.Lock()
	w.transcript = append(w.transcript, msg)
	w.mu.Unlock()

	w.view.AppendNode(RenderMessage(msg))
	w.view.ScrollToBottom()
}

func (w *Widget) setPending(pending bool) {
	w.mu.Lock()
	w.pending = pending
	w.mu.Unlock()
	w.view.SetSendEnabled(!pending)
}

func (w *Widget) showChat() {
	w.mu.Lock()
	w.state = ChatScreen
	w.mu.Unlock()
	w.view.ShowChatScreen()
}

func (w *Widget) showLogin() {
	w.mu.Lock()
	w.state = LoginScreen
	w.mu.Unlock()
	w.view.ShowLoginScreen()
}

// emailDomain keeps only the part after the last @, so logs never hold the address
func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return email[at+1:]
}
