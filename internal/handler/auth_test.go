package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/hotel-management/internal/config"
	"github.com/iliyamo/hotel-management/internal/middleware"
	"github.com/iliyamo/hotel-management/internal/model"
	"github.com/iliyamo/hotel-management/internal/repository"
	"github.com/iliyamo/hotel-management/internal/utils"
)

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rootHash, err := utils.HashPassword("root-pass", bcrypt.MinCost)
	require.NoError(t, err)
	cfg := config.Config{
		AgentJWTSecret:   "agent-secret",
		RootJWTSecret:    "root-secret",
		RootUsername:     "root",
		RootPasswordHash: rootHash,
		SessionTTLMin:    30,
	}
	return NewAuthHandler(cfg, repository.NewAgentRepo(db), repository.NewSessionRepo(db)), mock
}

func sessionCookie(rec interface{ Result() *http.Response }, name string) *http.Cookie {
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}

func TestAgentLogin(t *testing.T) {
	h, mock := newAuthHandler(t)
	hash, err := utils.HashPassword("s3cret-pass", bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery(`SELECT .* FROM agents WHERE username=\?`).WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "full_name", "date_creation"}).
			AddRow(7, "alice", hash, "Alice A.", time.Now()))

	rec := call(h.AgentLogin, http.MethodPost, "/v1/agent/login", `{"username":" Alice ","password":"s3cret-pass"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	ck := sessionCookie(rec, middleware.AgentCookie)
	require.NotNil(t, ck)
	assert.True(t, ck.HttpOnly)
	claims, err := utils.ParseSessionToken("agent-secret", ck.Value)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claims.Subject)
	assert.Equal(t, model.RoleAgent, claims.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAgentLoginWrongPassword(t *testing.T) {
	h, mock := newAuthHandler(t)
	hash, err := utils.HashPassword("s3cret-pass", bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery(`SELECT .* FROM agents`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "full_name", "date_creation"}).
			AddRow(7, "alice", hash, "", time.Now()))

	rec := call(h.AgentLogin, http.MethodPost, "/v1/agent/login", `{"username":"alice","password":"guess"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, sessionCookie(rec, middleware.AgentCookie))
}

func TestRootLogin(t *testing.T) {
	h, _ := newAuthHandler(t)

	rec := call(h.RootLogin, http.MethodPost, "/v1/root/login", `{"username":"root","password":"root-pass"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	ck := sessionCookie(rec, middleware.RootCookie)
	require.NotNil(t, ck)
	claims, err := utils.ParseSessionToken("root-secret", ck.Value)
	require.NoError(t, err)
	assert.Equal(t, model.RoleRoot, claims.Role)

	rec = call(h.RootLogin, http.MethodPost, "/v1/root/login", `{"username":"root","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = call(h.RootLogin, http.MethodPost, "/v1/root/login", `{"username":"admin","password":"root-pass"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAgentLogoutRevokesToken(t *testing.T) {
	h, mock := newAuthHandler(t)
	tok, err := utils.NewSessionToken("agent-secret", 7, "alice", model.RoleAgent, 30)
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT 1 FROM revoked_sessions`).WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectExec(`INSERT INTO revoked_sessions`).WithArgs(utils.HashToken(tok.Token), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	e := echo.New()
	auth := middleware.CookieAuth(middleware.AgentScheme("agent-secret"), h.Sessions)
	req := newCookieRequest(http.MethodPost, "/v1/agent/logout", &http.Cookie{Name: middleware.AgentCookie, Value: tok.Token})
	rec := serve(e, auth(h.AgentLogout), req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	ck := sessionCookie(rec, middleware.AgentCookie)
	require.NotNil(t, ck)
	assert.Empty(t, ck.Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}
