package socket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumebuilder/pkg/identity"
	"resumebuilder/store"
)

// Helper function to read messages from a WebSocket connection with a timeout.
func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	var msg WSMessage
	// Set a deadline to avoid tests hanging forever.
	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, p, err := conn.ReadMessage()
	require.NoError(t, err, "Failed to read message from WebSocket")
	err = json.Unmarshal(p, &msg)
	require.NoError(t, err, "Failed to unmarshal WSMessage JSON")
	return msg
}

func readState(t *testing.T, conn *websocket.Conn) store.State {
	msg := readMessage(t, conn)
	require.Equal(t, StateType, msg.Type)
	var st store.State
	require.NoError(t, json.Unmarshal(msg.Payload, &st))
	return st
}

func seededStore() *store.Store {
	return store.New(store.State{
		Documents: []store.Document{{
			ID:       "r1",
			Title:    "Software Developer Resume",
			Sections: []store.Section{{ID: "s1", Type: store.KindHeader, Title: "John Doe", Order: 0}},
		}},
	}, store.WithIdentity(identity.NewSequence("t")))
}

func startHub(t *testing.T, sink *recordingSink) (*Hub, context.CancelFunc) {
	t.Helper()
	var hub *Hub
	if sink != nil {
		hub = NewHub(seededStore(), sink)
	} else {
		hub = NewHub(seededStore(), nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)
	return hub, cancel
}

func TestHubIntegration(t *testing.T) {
	hub, _ := startHub(t, nil)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// For simplicity, we'll hardcode the user ID for tests.
		ServeWs(hub, w, r, r.URL.Query().Get("user_id"))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	conn1, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?user_id=user1", nil)
	require.NoError(t, err, "Client 1 failed to connect")
	defer conn1.Close()

	// Client 1 should immediately receive the full state.
	initial := readState(t, conn1)
	require.Len(t, initial.Documents, 1)
	assert.Equal(t, "r1", initial.Documents[0].ID)

	conn2, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?user_id=user2", nil)
	require.NoError(t, err, "Client 2 failed to connect")
	defer conn2.Close()
	_ = readState(t, conn2)

	// Client 2 creates a resume; both clients see the new snapshot.
	msgBytes, _ := json.Marshal(store.Action{Type: store.AddResumeType, Payload: json.RawMessage(`{"title":"Second"}`)})
	require.NoError(t, conn2.WriteMessage(websocket.TextMessage, msgBytes))

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		st := readState(t, conn)
		require.Len(t, st.Documents, 2)
		assert.Equal(t, "Second", st.Documents[1].Title)
	}

	// Client 1 adds a section with nothing open and gets an error frame.
	msgBytes, _ = json.Marshal(store.Action{Type: store.AddSectionType, Payload: json.RawMessage(`{"type":"skills"}`)})
	require.NoError(t, conn1.WriteMessage(websocket.TextMessage, msgBytes))

	errMsg := readMessage(t, conn1)
	assert.Equal(t, ErrorType, errMsg.Type)
	var payload ErrorPayload
	require.NoError(t, json.Unmarshal(errMsg.Payload, &payload))
	assert.Equal(t, "NO_CURRENT_DOCUMENT", payload.Code)
	assert.Equal(t, string(store.AddSectionType), payload.Command)
}

func TestSubmitSerializesCommands(t *testing.T) {
	hub, _ := startHub(t, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := hub.Submit(ctx, store.Action{Type: store.AddResumeType, Payload: json.RawMessage(`{"title":"x"}`)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	st := hub.Snapshot()
	assert.Len(t, st.Documents, 21)
	seen := map[string]bool{}
	for _, d := range st.Documents {
		assert.False(t, seen[d.ID], "duplicate id %s", d.ID)
		seen[d.ID] = true
	}
}

func TestSubmitReturnsStoreErrors(t *testing.T) {
	hub, _ := startHub(t, nil)
	ctx := context.Background()

	_, err := hub.Submit(ctx, store.Action{Type: store.SetCurrentResumeType, Payload: json.RawMessage(`"r1"`)})
	require.NoError(t, err)

	_, err = hub.Submit(ctx, store.Action{Type: store.ReorderSectionsType, Payload: json.RawMessage(`["s1","s1"]`)})
	assert.ErrorIs(t, err, store.ErrInvalidReorder)
}

func TestSubmitAfterStop(t *testing.T) {
	hub, cancel := startHub(t, nil)
	cancel()
	<-hub.done

	_, err := hub.Submit(context.Background(), store.Action{Type: store.LogoutType})
	assert.ErrorIs(t, err, ErrHubStopped)
}

type recordingSink struct {
	mu    sync.Mutex
	saves []store.State
	fail  bool
}

func (s *recordingSink) Save(_ context.Context, st store.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("sink down")
	}
	s.saves = append(s.saves, st)
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.saves)
}

func TestFlushOnlyWhenDirty(t *testing.T) {
	sink := &recordingSink{}
	hub, _ := startHub(t, sink)
	ctx := context.Background()

	hub.flush(ctx)
	assert.Equal(t, 0, sink.count())

	_, err := hub.Submit(ctx, store.Action{Type: store.AddResumeType, Payload: json.RawMessage(`{"title":"x"}`)})
	require.NoError(t, err)

	sink.fail = true
	hub.flush(ctx)
	assert.Equal(t, 0, sink.count())

	sink.fail = false
	hub.flush(ctx)
	require.Equal(t, 1, sink.count())
	assert.Len(t, sink.saves[0].Documents, 2)

	hub.flush(ctx)
	assert.Equal(t, 1, sink.count())
}

func TestSaveWorkerFlushesOnShutdown(t *testing.T) {
	sink := &recordingSink{}
	hub, _ := startHub(t, sink)

	_, err := hub.Submit(context.Background(), store.Action{Type: store.TogglePreviewModeType})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.SaveWorker(ctx, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("SaveWorker did not stop")
	}
	require.Equal(t, 1, sink.count())
	assert.True(t, sink.saves[0].IsPreviewMode)
}

func TestNoopCommandsDoNotExport(t *testing.T) {
	sink := &recordingSink{}
	hub, _ := startHub(t, sink)
	ctx := context.Background()

	_, err := hub.Submit(ctx, store.Action{Type: "SOMETHING_ELSE"})
	require.NoError(t, err)
	_, err = hub.Submit(ctx, store.Action{Type: store.DeleteResumeType, Payload: json.RawMessage(`"missing"`)})
	require.NoError(t, err)
	_, err = hub.Submit(ctx, store.Action{Type: store.LogoutType})
	require.NoError(t, err)

	hub.flush(ctx)
	assert.Equal(t, 0, sink.count())
}

func TestNoopCommandAnswersOnlyTheSender(t *testing.T) {
	hub, _ := startHub(t, nil)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ServeWs(hub, w, r, r.URL.Query().Get("user_id"))
	}))
	defer server.Close()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	sender, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?user_id=sender", nil)
	require.NoError(t, err)
	defer sender.Close()
	_ = readState(t, sender)

	other, _, err := websocket.DefaultDialer.Dial(wsURL+"/ws?user_id=other", nil)
	require.NoError(t, err)
	defer other.Close()
	_ = readState(t, other)

	msgBytes, _ := json.Marshal(store.Action{Type: store.DeleteResumeType, Payload: json.RawMessage(`"missing"`)})
	require.NoError(t, sender.WriteMessage(websocket.TextMessage, msgBytes))
	st := readState(t, sender)
	assert.Len(t, st.Documents, 1)

	other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	_, _, err = other.ReadMessage()
	assert.Error(t, err, "a no-op must not be broadcast")
}

// closingSink fails every save made after Close, like a closed *sql.DB.
type closingSink struct {
	recordingSink
	closed bool
}

func (s *closingSink) Save(ctx context.Context, st store.State) error {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return errors.New("sql: database is closed")
	}
	return s.recordingSink.Save(ctx, st)
}

func (s *closingSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func TestStartExportsBeforeStopped(t *testing.T) {
	sink := &closingSink{}
	hub := NewHub(seededStore(), sink)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := hub.Start(ctx, time.Hour)

	_, err := hub.Submit(context.Background(), store.Action{Type: store.AddResumeType, Payload: json.RawMessage(`{"title":"Last"}`)})
	require.NoError(t, err)
	cancel()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	sink.Close()

	require.Equal(t, 1, sink.count())
	assert.Len(t, sink.saves[0].Documents, 2)
	select {
	case <-hub.done:
	default:
		t.Fatal("event loop still running after stopped was closed")
	}
}
