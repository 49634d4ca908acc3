package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumebuilder/internal/resume/model"
	"resumebuilder/internal/resume/seed"
	"resumebuilder/internal/resume/service"
	"resumebuilder/pkg/identity"
	"resumebuilder/socket"
	"resumebuilder/store"
)

const secret = "router-test-secret"

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	gen := identity.NewSequence("id")
	initial, err := seed.Sample().Build(gen, time.Now())
	require.NoError(t, err)

	hub := socket.NewHub(store.New(initial, store.WithIdentity(gen)), nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	svc := service.NewResumeService(hub, secret, time.Hour)
	srv := httptest.NewServer(Setup(hub, svc, Options{JWTSecret: secret, CORSOrigin: "*"}))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func login(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp := do(t, http.MethodPost, srv.URL+"/api/session/login", "", model.LoginRequest{ID: "u1", Name: "Ada"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[model.LoginResponse](t, resp)
	require.NotEmpty(t, out.Token)
	assert.Equal(t, "Ada", out.User.Name)
	return out.Token
}

func TestLoginMarksSessionAuthenticated(t *testing.T) {
	srv := newServer(t)
	login(t, srv)

	st := decode[store.State](t, do(t, http.MethodGet, srv.URL+"/api/state", "", nil))
	assert.True(t, st.IsAuthenticated)
	require.NotNil(t, st.User)
	assert.Equal(t, "u1", st.User.ID)

	resp := do(t, http.MethodPost, srv.URL+"/api/session/login", "", model.LoginRequest{Name: "no id"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	srv := newServer(t)
	resp := do(t, http.MethodPost, srv.URL+"/api/commands", "", store.Action{Type: store.LogoutType})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/resumes/create", "", model.CreateResumeRequest{Title: "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateResumeRejectsBlankTitle(t *testing.T) {
	srv := newServer(t)
	token := login(t, srv)

	resp := do(t, http.MethodPost, srv.URL+"/api/resumes/create", token, model.CreateResumeRequest{Title: "   "})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/resumes/create", token, model.CreateResumeRequest{Title: "  Go Engineer "})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	st := decode[store.State](t, resp)
	require.Len(t, st.Documents, 2)
	assert.Equal(t, "Go Engineer", st.Documents[1].Title)

	list := decode[[]model.ResumeSummary](t, do(t, http.MethodGet, srv.URL+"/api/resumes?q=engineer", "", nil))
	require.Len(t, list, 1)
	assert.Equal(t, "Go Engineer", list[0].Title)
	assert.Equal(t, 1, list[0].SectionCount)
}

func TestCommandStatusCodes(t *testing.T) {
	srv := newServer(t)
	token := login(t, srv)
	url := srv.URL + "/api/commands"

	resp := do(t, http.MethodPost, url, token, store.Action{Type: store.AddSectionType, Payload: json.RawMessage(`{"type":"skills"}`)})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "NO_CURRENT_DOCUMENT", decode[model.ErrorResponse](t, resp).Code)

	st := decode[store.State](t, do(t, http.MethodGet, srv.URL+"/api/state", "", nil))
	docID := st.Documents[0].ID
	resp = do(t, http.MethodPost, url, token, store.Action{Type: store.SetCurrentResumeType, Payload: json.RawMessage(`"` + docID + `"`)})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodPost, url, token, store.Action{Type: store.ReorderSectionsType, Payload: json.RawMessage(`["nope"]`)})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "INVALID_REORDER", decode[model.ErrorResponse](t, resp).Code)

	resp = do(t, http.MethodPost, url, token, store.Action{Type: store.AddSectionType, Payload: json.RawMessage(`{"type":"projects"}`)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	st = decode[store.State](t, resp)
	cur, ok := st.Current()
	require.True(t, ok)
	require.Len(t, cur.Sections, 5)
	assert.Equal(t, 4, cur.Sections[4].Order)
	assert.Equal(t, "Project Name", cur.Sections[4].Title)

	resp = do(t, http.MethodPost, url, token, store.Action{Type: "NOT_A_COMMAND"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, url, token, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestWebSocketRequiresToken(t *testing.T) {
	srv := newServer(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token := login(t, srv)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var msg socket.WSMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, socket.StateType, msg.Type)
}
