package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadingStates_Create(t *testing.T) {
	env, cleanup := setupTestRouter(t)
	defer cleanup()

	_, token := env.registerAndLogin(t, "Reader", "reader@example.com")
	book := env.createBook(t, token, map[string]string{"title": "Dune"})
	bookID := uint(book["id"].(float64))

	t.Run("creates a state", func(t *testing.T) {
		w := env.doJSON(t, "POST", "/api/reading-states", gin.H{
			"book_id":     bookID,
			"is_favorite": true,
			"rating":      5,
		}, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var state ReadingStateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
		assert.Equal(t, bookID, state.BookID)
		assert.Equal(t, "Dune", state.BookTitle)
		assert.True(t, state.IsFavorite)
		assert.Equal(t, 5, state.Rating)
	})

	t.Run("second state for the same book conflicts", func(t *testing.T) {
		w := env.doJSON(t, "POST", "/api/reading-states", gin.H{"book_id": bookID}, token)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("missing book is 404", func(t *testing.T) {
		w := env.doJSON(t, "POST", "/api/reading-states", gin.H{"book_id": 9999}, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("rating above 5 is rejected", func(t *testing.T) {
		other := env.createBook(t, token, map[string]string{"title": "Other"})
		w := env.doJSON(t, "POST", "/api/reading-states", gin.H{
			"book_id": uint(other["id"].(float64)),
			"rating":  6,
		}, token)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReadingStates_GetAndUpdateByBook(t *testing.T) {
	env, cleanup := setupTestRouter(t)
	defer cleanup()

	_, token := env.registerAndLogin(t, "Reader", "reader@example.com")
	book := env.createBook(t, token, map[string]string{"title": "Dune"})
	bookID := uint(book["id"].(float64))
	path := fmt.Sprintf("/api/reading-states/book/%d", bookID)

	t.Run("no state yet is 404", func(t *testing.T) {
		w := env.doJSON(t, "GET", path, nil, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	w := env.doJSON(t, "POST", "/api/reading-states", gin.H{"book_id": bookID, "rating": 3}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	t.Run("partial update keeps other fields", func(t *testing.T) {
		w := env.doJSON(t, "PUT", path, gin.H{"is_pending": true}, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var state ReadingStateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
		assert.True(t, state.IsPending)
		assert.Equal(t, 3, state.Rating)
	})

	t.Run("other users have their own state", func(t *testing.T) {
		_, otherToken := env.registerAndLogin(t, "Other", "other@example.com")
		w := env.doJSON(t, "GET", path, nil, otherToken)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReadingStates_Delete(t *testing.T) {
	env, cleanup := setupTestRouter(t)
	defer cleanup()

	_, token := env.registerAndLogin(t, "Reader", "reader@example.com")
	_, otherToken := env.registerAndLogin(t, "Other", "other@example.com")

	book := env.createBook(t, token, map[string]string{"title": "Dune"})
	bookID := uint(book["id"].(float64))

	w := env.doJSON(t, "POST", "/api/reading-states", gin.H{"book_id": bookID}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var state ReadingStateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
	path := fmt.Sprintf("/api/reading-states/%d", state.ID)

	t.Run("only the record's owner may delete it", func(t *testing.T) {
		w := env.doJSON(t, "DELETE", path, nil, otherToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("owner deletes", func(t *testing.T) {
		w := env.doJSON(t, "DELETE", path, nil, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = env.doJSON(t, "DELETE", path, nil, token)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestReadingStates_List(t *testing.T) {
	env, cleanup := setupTestRouter(t)
	defer cleanup()

	_, token := env.registerAndLogin(t, "Reader", "reader@example.com")

	w := env.doJSON(t, "GET", "/api/reading-states", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())

	for _, title := range []string{"One", "Two"} {
		book := env.createBook(t, token, map[string]string{"title": title})
		w := env.doJSON(t, "POST", "/api/reading-states", gin.H{
			"book_id": uint(book["id"].(float64)),
		}, token)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w = env.doJSON(t, "GET", "/api/reading-states", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var states []ReadingStateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &states))
	assert.Len(t, states, 2)
}
