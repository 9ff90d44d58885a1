package handlers

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCreateUserRequiresFields(t *testing.T) {
	db, _ := newMockDB(t)
	h := NewUserHandler(db, zap.NewNop())

	rec := postJSON(t, h.CreateUser, "/api/users", map[string]string{
		"email": "knight@ucf.edu",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateUserDerivesUcfFlag(t *testing.T) {
	db, mock := newMockDB(t)
	now := time.Now()
	mock.ExpectQuery("INSERT INTO users").
		WithArgs("knight@ucf.edu", "pre-hashed", "knight_1", true).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow(int64(1), now, now))

	h := NewUserHandler(db, zap.NewNop())

	rec := postJSON(t, h.CreateUser, "/api/users", map[string]string{
		"email":        "knight@ucf.edu",
		"passwordHash": "pre-hashed",
		"displayName":  "knight_1",
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, true, out["isUcfVerified"])
	assert.Nil(t, out["passwordHash"], "hash must never serialize")
	assert.NoError(t, mock.ExpectationsWereMet())
}
