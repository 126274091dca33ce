package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"noticias/config"
	"noticias/internal/auth"
	"noticias/internal/model"
	"noticias/internal/repository"
	"noticias/internal/service"
	"noticias/pkg/logger"
)

const testSecret = "router-test-secret"

type memoryUsers struct {
	users map[string]*model.User
	err   error
	calls int
}

func (m *memoryUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *memoryUsers) ListAll(context.Context) ([]model.User, error) { return nil, nil }

func (m *memoryUsers) UpdateCredential(context.Context, int64, string, string) error { return nil }

// memoryAnnouncements 按与 SQL 相同的条件过滤和排序
type memoryAnnouncements struct {
	mu       sync.Mutex
	active   []model.Announcement
	archived []model.ArchivedAnnouncement
	nextID   int64
	err      error
	creates  int
}

func (m *memoryAnnouncements) ListActive(_ context.Context, now time.Time) ([]model.Announcement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []model.Announcement{}
	for _, a := range m.active {
		if a.ExpiresAt.After(now) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	return out, nil
}

func (m *memoryAnnouncements) ListArchived(context.Context) ([]model.ArchivedAnnouncement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := append([]model.ArchivedAnnouncement{}, m.archived...)
	sort.Slice(out, func(i, j int) bool { return out[i].PublishedAt.After(out[j].PublishedAt) })
	return out, nil
}

func (m *memoryAnnouncements) Create(_ context.Context, a *model.Announcement) (*model.Announcement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creates++
	if m.err != nil {
		return nil, m.err
	}
	m.nextID++
	saved := *a
	saved.ID = m.nextID
	m.active = append(m.active, saved)
	return &saved, nil
}

type testEnv struct {
	router        *gin.Engine
	users         *memoryUsers
	announcements *memoryAnnouncements
	tokens        *auth.TokenManager
}

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithLogger(t, logger.NewNop())
}

func newTestEnvWithLogger(t *testing.T, log *logger.Logger) *testEnv {
	t.Helper()

	editorHash, err := auth.HashPassword("editor-pass")
	require.NoError(t, err)

	users := &memoryUsers{users: map[string]*model.User{
		"admin":  {ID: 1, Username: "admin", Credential: "Admin123", IsAdmin: true},
		"editor": {ID: 2, Username: "editor", Credential: editorHash, IsAdmin: false},
	}}
	announcements := &memoryAnnouncements{nextID: 100}

	tokens := auth.NewTokenManager([]byte(testSecret), auth.DefaultTokenTTL)

	router := NewRouter(Dependencies{
		Logger:        log,
		Tokens:        tokens,
		Auth:          service.NewAuthService(users, tokens, log),
		Announcements: service.NewAnnouncementService(announcements, log),
	})

	return &testEnv{router: router, users: users, announcements: announcements, tokens: tokens}
}

func (e *testEnv) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			_ = json.NewEncoder(&buf).Encode(b)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	w := e.do(http.MethodPost, "/auth/login", map[string]string{"username": username, "password": password}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func TestPing(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/ping", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

func TestLogin_SeededPlaintextAdmin(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/auth/login", map[string]string{"username": "admin", "password": "Admin123"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Token   string `json:"token"`
		IsAdmin bool   `json:"is_admin"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.IsAdmin)

	claims, err := env.tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(1), claims.ID)
	assert.Equal(t, "admin", claims.Username)
	assert.True(t, claims.IsAdmin)
}

func TestLogin_HashedUser(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/auth/login", map[string]string{"username": "editor", "password": "editor-pass"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"is_admin":false`)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	env := newTestEnv(t)

	wrong := env.do(http.MethodPost, "/auth/login", map[string]string{"username": "admin", "password": "nope"}, "")
	unknown := env.do(http.MethodPost, "/auth/login", map[string]string{"username": "ghost", "password": "Admin123"}, "")

	for _, w := range []*httptest.ResponseRecorder{wrong, unknown} {
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"invalid_credentials"}`, w.Body.String())
	}
}

func TestLogin_MissingCredentials(t *testing.T) {
	env := newTestEnv(t)

	bodies := []interface{}{
		map[string]string{"username": "admin"},
		map[string]string{"password": "Admin123"},
		map[string]string{"username": "", "password": ""},
		"{not json",
		nil,
	}
	for _, body := range bodies {
		w := env.do(http.MethodPost, "/auth/login", body, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"missing_credentials"}`, w.Body.String())
	}
	assert.Zero(t, env.users.calls, "validation must happen before any store access")
}

func TestLogin_StoreFault(t *testing.T) {
	env := newTestEnv(t)
	env.users.err = &repository.StoreError{Op: "find user", Err: errors.New("dial tcp: connection refused")}

	w := env.do(http.MethodPost, "/auth/login", map[string]string{"username": "admin", "password": "Admin123"}, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"db_error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestPublish_AdminCreatesAnnouncement(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "admin", "Admin123")

	expiration := time.Now().Add(72 * time.Hour).UTC().Truncate(time.Second)
	start := time.Now()
	w := env.do(http.MethodPost, "/noticias", map[string]string{
		"contenido":        "Suspensión de clases el viernes",
		"fecha_expiracion": expiration.Format(time.RFC3339),
	}, token)
	end := time.Now()

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data model.Announcement `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Suspensión de clases el viernes", resp.Data.Content)
	assert.True(t, expiration.Equal(resp.Data.ExpiresAt))
	assert.Equal(t, int64(1), resp.Data.AuthorID)
	assert.NotZero(t, resp.Data.ID)
	assert.False(t, resp.Data.PublishedAt.Before(start.Truncate(time.Second)))
	assert.False(t, resp.Data.PublishedAt.After(end))

	list := env.do(http.MethodGet, "/noticias", nil, "")
	require.Equal(t, http.StatusOK, list.Code)
	assert.Contains(t, list.Body.String(), "Suspensión de clases el viernes")
}

func TestPublish_NonAdminForbiddenRegardlessOfBody(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "editor", "editor-pass")

	bodies := []interface{}{
		map[string]string{"contenido": "hola", "fecha_expiracion": "2099-01-01 00:00:00"},
		map[string]string{},
		"{garbage",
	}
	for _, body := range bodies {
		w := env.do(http.MethodPost, "/noticias", body, token)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"error":"forbidden"}`, w.Body.String())
	}
	assert.Zero(t, env.announcements.creates)
}

func TestPublish_NoToken(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodPost, "/noticias", map[string]string{"contenido": "x", "fecha_expiracion": "2099-01-01"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"no_token"}`, w.Body.String())
}

func TestPublish_InvalidTokensShareOneResponse(t *testing.T) {
	env := newTestEnv(t)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		ID:      1,
		IsAdmin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-9 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	expiredToken, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)

	foreign, _, err := auth.NewTokenManager([]byte("another-secret"), time.Hour).
		Issue(&model.User{ID: 1, Username: "admin", IsAdmin: true})
	require.NoError(t, err)

	var bodies []string
	for _, token := range []string{expiredToken, foreign, "garbage.token.value"} {
		w := env.do(http.MethodPost, "/noticias", `{"contenido":"x","fecha_expiracion":"2099-01-01"}`, token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		bodies = append(bodies, w.Body.String())
	}
	for _, body := range bodies {
		assert.JSONEq(t, `{"error":"invalid_token"}`, body)
	}
	assert.Zero(t, env.announcements.creates)
}

func TestPublish_MissingFields(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "admin", "Admin123")

	bodies := []interface{}{
		map[string]string{"contenido": "solo contenido"},
		map[string]string{"fecha_expiracion": "2099-01-01"},
		map[string]string{"contenido": "   ", "fecha_expiracion": "2099-01-01"},
		"{bad json",
	}
	for _, body := range bodies {
		w := env.do(http.MethodPost, "/noticias", body, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"missing_fields"}`, w.Body.String())
	}
	assert.Zero(t, env.announcements.creates)
}

func TestPublish_InvalidExpiration(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "admin", "Admin123")

	w := env.do(http.MethodPost, "/noticias", map[string]string{"contenido": "x", "fecha_expiracion": "el lunes"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid_expiration"}`, w.Body.String())
}

func TestPublish_BlankContentCheckedBeforeExpiration(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "admin", "Admin123")

	w := env.do(http.MethodPost, "/noticias", map[string]string{"contenido": "   ", "fecha_expiracion": "nope"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"missing_fields"}`, w.Body.String())
	assert.Zero(t, env.announcements.creates)
}

func TestBadRequests_LogCause(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	env := newTestEnvWithLogger(t, &logger.Logger{Logger: zap.New(core)})
	token := env.login(t, "admin", "Admin123")

	cases := []struct {
		method, path string
		body         interface{}
		token        string
		code         string
	}{
		{http.MethodPost, "/auth/login", "{bad json", "", "missing_credentials"},
		{http.MethodPost, "/noticias", "{bad json", token, "missing_fields"},
		{http.MethodPost, "/noticias", map[string]string{"contenido": "x", "fecha_expiracion": "el lunes"}, token, "invalid_expiration"},
	}
	for _, tc := range cases {
		before := logs.Len()
		w := env.do(tc.method, tc.path, tc.body, tc.token)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"`+tc.code+`"}`, w.Body.String())

		var withCause, accessWithErrors int
		for _, entry := range logs.All()[before:] {
			fields := entry.ContextMap()
			if _, ok := fields["error"]; ok {
				withCause++
			}
			if _, ok := fields["errors"]; ok && entry.Message == "access" {
				accessWithErrors++
			}
		}
		assert.Equal(t, 1, withCause, "%s %s", tc.path, tc.code)
		assert.Equal(t, 1, accessWithErrors, "%s %s", tc.path, tc.code)
	}
}

func TestSetupRouter_TokenLifetimeIsEightHours(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`FROM usuarios WHERE username = \?`).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"id_usuario", "username", "contrasenia_hash", "is_admin"}).
			AddRow(int64(1), "admin", "Admin123", true))

	cfg := &config.Config{LogLevel: "debug"}
	cfg.Auth.JWTSecret = testSecret
	cfg.Database.QueryTimeout = time.Second
	router := SetupRouter(cfg, logger.NewNop(), sqlx.NewDb(db, "sqlmock"))

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"username":"admin","password":"Admin123"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	claims := &auth.Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(resp.Token, claims)
	require.NoError(t, err)
	assert.Equal(t, 8*time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPublish_StoreFault(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, "admin", "Admin123")
	env.announcements.err = &repository.StoreError{Op: "insert announcement", Err: errors.New("Error 1452: foreign key")}

	w := env.do(http.MethodPost, "/noticias", map[string]string{"contenido": "x", "fecha_expiracion": "2099-01-01"}, token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"db_error"}`, w.Body.String())
}

func TestListActive_ExcludesExpired(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now()
	env.announcements.active = []model.Announcement{
		{ID: 1, Content: "vencida", PublishedAt: now.Add(-72 * time.Hour), ExpiresAt: now.Add(-time.Minute), AuthorID: 1},
		{ID: 2, Content: "antigua", PublishedAt: now.Add(-48 * time.Hour), ExpiresAt: now.Add(time.Hour), AuthorID: 1},
		{ID: 3, Content: "nueva", PublishedAt: now.Add(-time.Hour), ExpiresAt: now.Add(24 * time.Hour), AuthorID: 1},
	}

	w := env.do(http.MethodGet, "/noticias", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []model.Announcement `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, int64(3), resp.Data[0].ID)
	assert.Equal(t, int64(2), resp.Data[1].ID)
	for _, a := range resp.Data {
		assert.True(t, a.ExpiresAt.After(now))
	}
}

func TestListActive_EmptyIsArray(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/noticias", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestListArchived_OrderedNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	base := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
	env.announcements.archived = []model.ArchivedAnnouncement{
		{ID: 10, Content: "junio", PublishedAt: base, ExpiresAt: base.Add(24 * time.Hour)},
		{ID: 11, Content: "agosto", PublishedAt: base.AddDate(0, 2, 0), ExpiresAt: base.AddDate(0, 2, 1)},
		{ID: 12, Content: "julio", PublishedAt: base.AddDate(0, 1, 0), ExpiresAt: base.AddDate(0, 1, 1)},
	}

	w := env.do(http.MethodGet, "/noticias/pasadas", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "id_autor")

	var resp struct {
		Data []model.ArchivedAnnouncement `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 3)
	assert.Equal(t, []int64{11, 12, 10}, []int64{resp.Data[0].ID, resp.Data[1].ID, resp.Data[2].ID})
}

func TestList_StoreFault(t *testing.T) {
	env := newTestEnv(t)
	env.announcements.err = &repository.StoreError{Op: "list", Err: errors.New("too many connections")}

	for _, path := range []string{"/noticias", "/noticias/pasadas"} {
		w := env.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusInternalServerError, w.Code, path)
		assert.JSONEq(t, `{"error":"db_error"}`, w.Body.String(), path)
	}
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(http.MethodGet, "/usuarios", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not_found"}`, w.Body.String())
}
