package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/knighthaven/api/internal/middleware"
)

// authorIDString flattens an authorId the client sent as either a JSON
// number or a string.
func authorIDString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatInt(int64(t), 10)
	case json.Number:
		return t.String()
	default:
		return ""
	}
}

// resolveAuthor decides who owns a created row: the authenticated user when
// the request carried a valid token, otherwise the authorId the body named.
func resolveAuthor(r *http.Request, rawAuthorID string) (int64, error) {
	if user := middleware.UserFrom(r.Context()); user != nil {
		return user.ID, nil
	}

	if rawAuthorID == "" {
		return 0, errors.New("authorId is required")
	}

	id, err := strconv.ParseInt(rawAuthorID, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("authorId must be a positive integer")
	}
	return id, nil
}
