package chat_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/counsel0/counsel/internal/chat"
	"github.com/counsel0/counsel/internal/config"
	"github.com/counsel0/counsel/internal/gateway"
	"github.com/counsel0/counsel/internal/i18n"
	"github.com/counsel0/counsel/internal/log"
	"github.com/counsel0/counsel/internal/session"
	"github.com/counsel0/counsel/internal/speech"
	"github.com/counsel0/counsel/internal/testutil"
)

// newTestClient wires a full client stack against the fake chat API.
// The creation throttle is disabled so tests can create sessions freely;
// throttle behavior itself is covered by the lifecycle manager tests.
func newTestClient(t *testing.T, srv *testutil.Server) (*chat.Client, *session.Store) {
	t.Helper()

	cfg := config.Default()
	cfg.SessionThrottle = 0
	cfg.RetryBaseInterval = time.Millisecond
	cfg.RetryMaxInterval = 4 * time.Millisecond

	gw := gateway.New(srv.URL, gateway.StaticToken("test-token"), log.NewNop())
	pointer := session.NewMemoryStore()

	client, err := chat.NewClient(chat.Options{
		Gateway:     gw,
		Identity:    session.StaticIdentity("user-1"),
		Pointer:     pointer,
		Transcriber: speech.New(gw, log.NewNop()),
		Config:      cfg,
	}, log.NewNop())
	require.NoError(t, err)

	return client, pointer
}

func TestNewClientRequiresCapabilities(t *testing.T) {
	_, err := chat.NewClient(chat.Options{}, log.NewNop())
	assert.Error(t, err)
}

func TestInitAutoCreatesWhenSessionless(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()
	client, pointer := newTestClient(t, srv)

	require.NoError(t, client.Init(context.Background()))

	assert.Equal(t, 1, srv.CreateCalls)
	assert.Equal(t, session.StateActive, client.SessionState())
	assert.NotEmpty(t, client.CurrentSessionID())

	stored, ok := pointer.Get()
	assert.True(t, ok)
	assert.Equal(t, client.CurrentSessionID(), stored)

	// Repeated Init is a no-op; it never creates a second session.
	require.NoError(t, client.Init(context.Background()))
	assert.Equal(t, 1, srv.CreateCalls)
}

func TestInitConcurrentCallsCreateOnce(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()
	client, _ := newTestClient(t, srv)

	// The throttle is disabled here, so only Init's own serialization
	// keeps concurrent callers from creating duplicate sessions.
	var wg sync.WaitGroup
	errs := make([]error, 4)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = client.Init(context.Background())
		}()
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "Init() call %d", i)
	}
	assert.Equal(t, 1, srv.CreateCalls, "concurrent Init must create exactly one session")
}

func TestInitRestoresStoredSession(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()
	client, pointer := newTestClient(t, srv)

	id := srv.Seed("Tenancy", session.Context{LegalTopic: "tenancy"},
		session.Message{Role: session.RoleUser, Content: "hello"})
	pointer.Set(id)

	require.NoError(t, client.Init(context.Background()))

	assert.Equal(t, id, client.CurrentSessionID())
	assert.Zero(t, srv.CreateCalls, "restore must not create a session")
}

func TestInitDiscardsStalePointerAndCreates(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()
	client, pointer := newTestClient(t, srv)

	pointer.Set("deleted-long-ago")

	require.NoError(t, client.Init(context.Background()))

	assert.Equal(t, 1, srv.CreateCalls)
	assert.NotEqual(t, "deleted-long-ago", client.CurrentSessionID())
}

func TestInitRequiresIdentity(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()

	gw := gateway.New(srv.URL, nil, log.NewNop())
	client, err := chat.NewClient(chat.Options{
		Gateway:  gw,
		Identity: session.StaticIdentity(""),
		Pointer:  session.NewMemoryStore(),
		Config:   config.Default(),
	}, log.NewNop())
	require.NoError(t, err)

	assert.ErrorIs(t, client.Init(context.Background()), session.ErrNotAuthenticated)
}

func TestRetryCreateSessionAfterFailure(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()
	client, _ := newTestClient(t, srv)

	srv.FailCreate = true
	err := client.Init(context.Background())
	assert.ErrorIs(t, err, session.ErrCreationFailed)
	assert.ErrorIs(t, client.Err(), session.ErrCreationFailed)

	srv.FailCreate = false
	require.NoError(t, client.RetryCreateSession(context.Background()))
	assert.NoError(t, client.Err(), "successful creation clears the action error")
	assert.NotEmpty(t, client.CurrentSessionID())
}

func TestCreateRateLimitedByServer(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()
	client, _ := newTestClient(t, srv)

	srv.RateLimit = true
	_, err := client.NewSession(context.Background(), session.Context{})
	assert.ErrorIs(t, err, session.ErrRateLimited)
}

func TestSessionContextRoundTrip(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()
	client, _ := newTestClient(t, srv)

	want := session.Context{LegalTopic: "land dispute", UserLocation: "Accra", Resolved: false}
	id, err := client.NewSession(context.Background(), want)
	require.NoError(t, err)

	summary, ok := srv.Session(id)
	require.True(t, ok)
	assert.Equal(t, want, summary.Context)

	// The context comes back verbatim through a history read.
	_, got := client.Messages(context.Background())
	assert.Equal(t, want, got)

	// And through an update.
	want.Resolved = true
	require.NoError(t, client.UpdateSessionContext(context.Background(), want, true))
	_, got = client.Messages(context.Background())
	assert.Equal(t, want, got)
}

func TestSendMessageAndReadBack(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()
	client, _ := newTestClient(t, srv)
	require.NoError(t, client.Init(context.Background()))

	require.NoError(t, client.SendMessage(context.Background(), "What are my tenancy rights?", session.Context{}))
	assert.NoError(t, client.Err())

	messages, _ := client.Messages(context.Background())
	require.Len(t, messages, 2)
	assert.Equal(t, session.RoleUser, messages[0].Role)
	assert.Equal(t, "What are my tenancy rights?", messages[0].Content)
	assert.Equal(t, session.RoleAssistant, messages[1].Role)
}

func TestSendEmptyMessageRecordsActionError(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()
	client, _ := newTestClient(t, srv)
	require.NoError(t, client.Init(context.Background()))

	queriesBefore := srv.QueryCalls
	err := client.SendMessage(context.Background(), "   ", session.Context{})
	assert.ErrorIs(t, err, session.ErrValidation)
	assert.ErrorIs(t, client.Err(), session.ErrValidation)
	assert.Equal(t, queriesBefore, srv.QueryCalls, "empty content must not reach the network")
}

func TestSendVoiceMessage(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()
	client, _ := newTestClient(t, srv)
	require.NoError(t, client.Init(context.Background()))

	srv.Transcript = "I need help with a land dispute"
	require.NoError(t, client.SendVoiceMessage(context.Background(), []byte("fake-audio"), session.Context{}))

	messages, _ := client.Messages(context.Background())
	require.NotEmpty(t, messages)
	assert.Equal(t, "I need help with a land dispute", messages[0].Content)
}

func TestSendVoiceMessageNothingRecognized(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()
	client, _ := newTestClient(t, srv)
	require.NoError(t, client.Init(context.Background()))

	srv.Transcript = ""
	err := client.SendVoiceMessage(context.Background(), []byte("fake-audio"), session.Context{})
	assert.ErrorIs(t, err, session.ErrTranscriptionFailed)
	assert.Zero(t, srv.QueryCalls)
}

func TestGreetingFallbackKeepsErrorChannelsSeparate(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()
	client, pointer := newTestClient(t, srv)

	id := srv.Seed("Tenancy", session.Context{})
	pointer.Set(id)
	require.NoError(t, client.Init(context.Background()))

	srv.FailHistory = true
	messages, _ := client.Messages(context.Background())

	require.Len(t, messages, 1)
	assert.Equal(t, session.RoleAssistant, messages[0].Role)
	assert.Equal(t, i18n.Greeting(i18n.LangEN), messages[0].Content)

	// The read failure is visible on its own channel, the action channel
	// stays clean.
	assert.ErrorIs(t, client.HistoryErr(), session.ErrTransport)
	assert.NoError(t, client.Err())
}

func TestSwitchSessionClearsActionError(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()
	client, _ := newTestClient(t, srv)
	require.NoError(t, client.Init(context.Background()))

	require.Error(t, client.SendMessage(context.Background(), "", session.Context{}))
	require.Error(t, client.Err())

	other := srv.Seed("Other", session.Context{})
	client.SwitchSession(other)

	assert.Equal(t, other, client.CurrentSessionID())
	assert.NoError(t, client.Err())
}

func TestRenameSession(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()
	client, _ := newTestClient(t, srv)
	require.NoError(t, client.Init(context.Background()))

	require.NoError(t, client.RenameSession(context.Background(), "My tenancy case"))

	summary, ok := srv.Session(client.CurrentSessionID())
	require.True(t, ok)
	assert.Equal(t, "My tenancy case", summary.Name)
}

func TestRenameRefreshesSessionDirectory(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()
	client, _ := newTestClient(t, srv)
	require.NoError(t, client.Init(context.Background()))

	// Warm the directory cache before renaming.
	_, err := client.Sessions(context.Background())
	require.NoError(t, err)

	require.NoError(t, client.RenameSession(context.Background(), "Land dispute"))

	// Well inside the freshness window: the new name can only show up
	// because the rename marked the directory stale.
	sessions, err := client.Sessions(context.Background())
	require.NoError(t, err)

	var found bool
	for _, s := range sessions {
		if s.ID == client.CurrentSessionID() {
			found = true
			assert.Equal(t, "Land dispute", s.Name)
		}
	}
	assert.True(t, found, "current session missing from directory")
}

func TestDeleteSessionThenInitStartsFresh(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()
	client, pointer := newTestClient(t, srv)
	require.NoError(t, client.Init(context.Background()))

	deleted := client.CurrentSessionID()
	require.NoError(t, client.DeleteSession(context.Background()))

	assert.Empty(t, client.CurrentSessionID())
	assert.Equal(t, session.StateSessionless, client.SessionState())
	_, ok := pointer.Get()
	assert.False(t, ok, "pointer must not survive deletion")
	_, ok = srv.Session(deleted)
	assert.False(t, ok, "session must be gone server-side")

	// A later Init starts a fresh session rather than resurrecting state.
	require.NoError(t, client.Init(context.Background()))
	assert.NotEmpty(t, client.CurrentSessionID())
	assert.NotEqual(t, deleted, client.CurrentSessionID())
}

func TestSessionsDirectoryRefresh(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()
	client, _ := newTestClient(t, srv)

	srv.Seed("One", session.Context{})
	srv.Seed("Two", session.Context{})

	sessions, err := client.Sessions(context.Background())
	require.NoError(t, err)
	assert.Len(t, sessions, 2)

	// Creating a session marks the directory stale; the next read refetches
	// and sees the new session without waiting out the freshness window.
	_, err = client.NewSession(context.Background(), session.Context{})
	require.NoError(t, err)

	sessions, err = client.Sessions(context.Background())
	require.NoError(t, err)
	assert.Len(t, sessions, 3)
}

func TestSubmitFeedback(t *testing.T) {
	srv := testutil.NewServer()
	defer srv.Close()
	client, _ := newTestClient(t, srv)
	require.NoError(t, client.Init(context.Background()))

	require.NoError(t, client.SubmitFeedback(context.Background(), 1, 5, "very helpful", true))
	assert.NoError(t, client.Err())
}
