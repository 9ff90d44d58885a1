package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func errorBody(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var out map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out["error"]
}

func newAuthHandler(db *sqlx.DB) *AuthHandler {
	return NewAuthHandler(db, zap.NewNop(), "test-secret", time.Hour)
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	db, _ := newMockDB(t)
	h := newAuthHandler(db)

	rec := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"email": "knight@ucf.edu",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorBody(t, rec), "required")
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	db, _ := newMockDB(t)
	h := newAuthHandler(db)

	rec := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"email":       "knight@ucf.edu",
		"password":    "short",
		"displayName": "knight_1",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorBody(t, rec), "at least 8 characters")
}

func TestRegisterRejectsInvalidEmail(t *testing.T) {
	db, _ := newMockDB(t)
	h := newAuthHandler(db)

	rec := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"email":       "not-an-email",
		"password":    "Knights2024",
		"displayName": "knight_1",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorBody(t, rec), "email")
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

	h := newAuthHandler(db)

	rec := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"email":       "knight@ucf.edu",
		"password":    "Knights2024",
		"displayName": "knight_1",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email already registered", errorBody(t, rec))
}

func TestRegisterCreatesUserWithUcfFlag(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()
	mock.ExpectQuery("INSERT INTO users").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(1), now, now))

	h := newAuthHandler(db)

	rec := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"email":       "knight@ucf.edu",
		"password":    "Knights2024",
		"displayName": "knight_1",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out struct {
		Message string `json:"message"`
		Token   string `json:"token"`
		User    struct {
			ID            int64  `json:"id"`
			Email         string `json:"email"`
			DisplayName   string `json:"displayName"`
			IsUcfVerified bool   `json:"isUcfVerified"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	assert.NotEmpty(t, out.Token)
	assert.Equal(t, int64(1), out.User.ID)
	assert.True(t, out.User.IsUcfVerified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery("SELECT id, email, password_hash").
		WillReturnError(sql.ErrNoRows)

	h := newAuthHandler(db)

	rec := postJSON(t, h.Login, "/api/auth/login", map[string]string{
		"email":    "nobody@ucf.edu",
		"password": "Knights2024",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", errorBody(t, rec))
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()
	// hash of a different password
	mock.ExpectQuery("SELECT id, email, password_hash").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "password_hash", "display_name", "is_ucf_verified", "created_at", "updated_at",
		}).AddRow(int64(1), "knight@ucf.edu",
			"$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5B0xN1S0W1p0S3q3o7o1P1S1S1S1S", "knight_1", true, now, now))

	h := newAuthHandler(db)

	rec := postJSON(t, h.Login, "/api/auth/login", map[string]string{
		"email":    "knight@ucf.edu",
		"password": "WrongPass1",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid credentials", errorBody(t, rec))
}
