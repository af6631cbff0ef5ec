package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"prismtech.dev/internal/config"
	"prismtech.dev/internal/services"
	"prismtech.dev/internal/store"
)

type testServer struct {
	t       *testing.T
	handler http.Handler
	svc     *services.Registry
	token   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.Driver = "memory"
	cfg.Uploads.Dir = t.TempDir()
	cfg.Uploads.MaxBytes = 64
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.Server.RateLimit.Requests = 0

	backend, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	svc, err := services.NewRegistry(backend, cfg, zap.NewNop())
	require.NoError(t, err)

	return &testServer{t: t, handler: SetupRoutes(cfg, svc, zap.NewNop()), svc: svc}
}

// login bootstraps an admin and keeps its token for authed requests
func (s *testServer) login() {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/bootstrap-admin", map[string]string{
		"email": "admin@example.com", "password": "correct horse",
	}, false)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())

	var res services.LoginResult
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &res))
	s.token = res.Token
}

func (s *testServer) do(method, path string, body any, authed bool) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type item struct {
	ID       string `json:"id"`
	Order    int    `json:"order"`
	Title    string `json:"title"`
	Name     string `json:"name"`
	Status   string `json:"status"`
	Featured bool   `json:"featured"`
}

func ids(items []item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func (s *testServer) createService(title string) item {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/services", map[string]any{"title": title, "description": title + " desc"}, true)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[item](s.t, rec)
}

func TestRootAndHealth(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"Prism Tech API v1"}`, rec.Body.String())

	for _, path := range []string{"/health", "/api/health"} {
		rec = s.do(http.MethodGet, path, nil, false)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
	}
}

func TestWritesRequireAuth(t *testing.T) {
	s := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/services"},
		{http.MethodPut, "/api/projects/reorder/bulk"},
		{http.MethodPut, "/api/pricing/featured/bulk"},
		{http.MethodDelete, "/api/team/abc"},
		{http.MethodGet, "/api/messages"},
		{http.MethodPut, "/api/settings"},
		{http.MethodGet, "/api/admin/stats"},
		{http.MethodPost, "/api/uploads"},
	} {
		rec := s.do(tc.method, tc.path, map[string]any{}, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.method+" "+tc.path)
	}

	rec := s.do(http.MethodGet, "/api/services", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestReorderScenario(t *testing.T) {
	s := newTestServer(t)
	s.login()

	a := s.createService("A")
	b := s.createService("B")
	c := s.createService("C")

	rec := s.do(http.MethodPut, "/api/services/reorder/bulk", []map[string]any{
		{"id": b.ID, "order": 0}, {"id": c.ID, "order": 1}, {"id": a.ID, "order": 2},
	}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"success":true,"updated":3}`, rec.Body.String())

	list := decode[[]item](t, s.do(http.MethodGet, "/api/services", nil, false))
	assert.Equal(t, []string{b.ID, c.ID, a.ID}, ids(list))

	// moving the first item up changes nothing
	rec = s.do(http.MethodPut, "/api/services/"+b.ID+"/move", map[string]int{"direction": -1}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{b.ID, c.ID, a.ID}, ids(decode[[]item](t, rec)))

	rec = s.do(http.MethodPut, "/api/services/"+a.ID+"/move", map[string]int{"direction": -1}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	moved := decode[[]item](t, rec)
	assert.Equal(t, []string{b.ID, a.ID, c.ID}, ids(moved))
	assert.Equal(t, []int{0, 1, 2}, []int{moved[0].Order, moved[1].Order, moved[2].Order})

	rec = s.do(http.MethodPut, "/api/services/"+a.ID+"/move", map[string]int{"direction": 2}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, "/api/services/reorder/bulk", []map[string]any{{"id": a.ID, "order": -1}}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	list = decode[[]item](t, s.do(http.MethodGet, "/api/services", nil, false))
	assert.Equal(t, []string{b.ID, a.ID, c.ID}, ids(list), "rejected reorder writes nothing")
}

func TestCRUDAndErrors(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rec := s.do(http.MethodPost, "/api/team", map[string]any{"name": "Ada"}, true)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	var verr struct {
		Error  string `json:"error"`
		Errors []struct {
			Field   string `json:"field"`
			Message string `json:"message"`
		} `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &verr))
	assert.Equal(t, "Validation failed", verr.Error)
	require.Len(t, verr.Errors, 1)
	assert.Equal(t, "role", verr.Errors[0].Field)

	rec = s.do(http.MethodPost, "/api/team", map[string]any{"name": "Ada", "role": "CTO"}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	member := decode[item](t, rec)

	rec = s.do(http.MethodPut, "/api/team/"+member.ID, map[string]any{"name": "Ada L."}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ada L.", decode[item](t, rec).Name)

	rec = s.do(http.MethodPut, "/api/team/"+member.ID, map[string]any{"order": -3}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/team/"+member.ID, nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodDelete, "/api/team/"+member.ID, nil, true)
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/team/" + member.ID},
		{http.MethodPut, "/api/team/" + member.ID},
		{http.MethodDelete, "/api/team/" + member.ID},
	} {
		rec = s.do(tc.method, tc.path, map[string]any{}, true)
		assert.Equal(t, http.StatusNotFound, rec.Code, tc.method)
		assert.JSONEq(t, `{"error":"Not found"}`, rec.Body.String())
	}

	req := httptest.NewRequest(http.MethodPost, "/api/team", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+s.token)
	raw := httptest.NewRecorder()
	s.handler.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestBulkFieldUpdates(t *testing.T) {
	s := newTestServer(t)
	s.login()

	var created []item
	for _, title := range []string{"One", "Two", "Three"} {
		rec := s.do(http.MethodPost, "/api/projects", map[string]any{
			"title": title, "description": "d", "category": "Cloud",
		}, true)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		p := decode[item](t, rec)
		assert.Equal(t, "Draft", p.Status)
		created = append(created, p)
	}

	rec := s.do(http.MethodPut, "/api/projects/featured/bulk", map[string]any{
		"ids": []string{created[0].ID, created[2].ID, "missing"}, "featured": true,
	}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"success":true,"modified":2}`, rec.Body.String())

	featured := decode[[]item](t, s.do(http.MethodGet, "/api/projects/featured", nil, false))
	assert.ElementsMatch(t, []string{created[0].ID, created[2].ID}, ids(featured))

	rec = s.do(http.MethodPut, "/api/projects/status/bulk", map[string]any{
		"ids": []string{created[1].ID}, "status": "In Progress",
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPut, "/api/projects/status/bulk", map[string]any{
		"ids": []string{created[1].ID}, "status": "Shipped",
	}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, "/api/projects/featured/bulk", map[string]any{"ids": []string{}, "featured": false}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"modified":0}`, rec.Body.String())

	rec = s.do(http.MethodPut, "/api/projects/featured/bulk", map[string]any{"ids": []string{created[0].ID}}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPut, "/api/team/featured/bulk", map[string]any{"ids": []string{}, "featured": true}, true)
	assert.NotEqual(t, http.StatusOK, rec.Code, "team has no featured flag")

	page := decode[struct {
		Items    []item `json:"items"`
		Total    int    `json:"total"`
		PageSize int    `json:"pageSize"`
	}](t, s.do(http.MethodGet, "/api/projects/search?status=In+Progress", nil, false))
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, 6, page.PageSize)
	assert.Equal(t, created[1].ID, page.Items[0].ID)

	rec = s.do(http.MethodGet, "/api/projects/options", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Cybersecurity")
}

func TestAuthEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rec := s.do(http.MethodPost, "/api/auth/bootstrap-admin", map[string]string{
		"email": "second@example.com", "password": "correct horse",
	}, false)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "admin@example.com", "password": "wrong password",
	}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "admin@example.com", "password": "correct horse",
	}, false)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decode[services.LoginResult](t, rec)
	assert.NotEmpty(t, res.Token)
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	rec = s.do(http.MethodGet, "/api/auth/me", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin@example.com")

	s.token = res.Token + "x"
	rec = s.do(http.MethodGet, "/api/auth/me", nil, true)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMessagesEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.login()

	var msgIDs []string
	for _, name := range []string{"Ada", "Bob", "Cy"} {
		rec := s.do(http.MethodPost, "/api/messages", map[string]string{
			"name": name, "email": "x@example.com", "message": "Hello\nthere",
		}, false)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		msgIDs = append(msgIDs, decode[item](t, rec).ID)
	}

	rec := s.do(http.MethodPost, "/api/messages", map[string]string{"name": "Eve", "email": "bad"}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/messages?pageSize=2", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[struct {
		Items    []item `json:"items"`
		Total    int    `json:"total"`
		Page     int    `json:"page"`
		PageSize int    `json:"pageSize"`
	}](t, rec)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.PageSize)
	assert.Len(t, page.Items, 2)

	rec = s.do(http.MethodPut, "/api/messages/"+msgIDs[0]+"/read", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "read", decode[item](t, rec).Status)

	rec = s.do(http.MethodPut, "/api/messages/bulk/status", map[string]any{"ids": msgIDs, "status": "read"}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"modified":3}`, rec.Body.String())

	rec = s.do(http.MethodPut, "/api/messages/bulk/status", map[string]any{"ids": []string{}, "status": "read"}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/messages/export?status=read", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Body.String(), "Name,Email,Status,Created At,Message")
	assert.Contains(t, rec.Body.String(), "Hello there")

	rec = s.do(http.MethodGet, "/api/messages?start=garbage", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodDelete, "/api/messages/bulk", map[string]any{"ids": msgIDs[:2]}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"deleted":2}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/api/admin/stats", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[services.Stats](t, rec)
	assert.Equal(t, 1, stats.Counts.Messages)
}

func TestSettingsEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.login()

	rec := s.do(http.MethodGet, "/api/settings", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "prism-dark", decode[map[string]any](t, rec)["theme"])

	rec = s.do(http.MethodPut, "/api/settings", map[string]any{
		"theme": "prism-light",
		"seo":   map[string]any{"title": "Prism"},
	}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[map[string]any](t, s.do(http.MethodGet, "/api/settings", nil, false))
	assert.Equal(t, "prism-light", got["theme"])
	assert.Equal(t, "Prism", got["seo"].(map[string]any)["title"])
}

func TestUploadEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.login()

	upload := func(content string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", "logo.svg")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/uploads", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+s.token)
		rec := httptest.NewRecorder()
		s.handler.ServeHTTP(rec, req)
		return rec
	}

	rec := upload("<svg/>")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	up := decode[services.Upload](t, rec)
	assert.Regexp(t, `^/uploads/\d+-[0-9a-f]{8}\.svg$`, up.URL)

	rec = s.do(http.MethodGet, up.URL, nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<svg/>", rec.Body.String())

	rec = upload(string(bytes.Repeat([]byte("x"), 100)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/uploads", bytes.NewBufferString("nope"))
	req.Header.Set("Authorization", "Bearer "+s.token)
	raw := httptest.NewRecorder()
	s.handler.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestSubscribeWithoutMail(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodPost, "/api/subscribe", map[string]string{"email": "fan@example.com"}, false)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Email not configured"}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/subscribe", map[string]string{"email": "nope"}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
