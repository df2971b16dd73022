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

func TestPages_Create(t *testing.T) {
	env, cleanup := setupTestRouter(t)
	defer cleanup()

	_, ownerToken := env.registerAndLogin(t, "Owner", "owner@example.com")
	_, strangerToken := env.registerAndLogin(t, "Stranger", "stranger@example.com")

	book := env.createBook(t, ownerToken, map[string]string{"title": "Dune"})
	bookID := uint(book["id"].(float64))

	t.Run("requires authentication", func(t *testing.T) {
		w := env.doJSON(t, "POST", "/api/pages", gin.H{
			"content": "text", "type": "text", "book_id": bookID,
		}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("only the book owner may add pages", func(t *testing.T) {
		w := env.doJSON(t, "POST", "/api/pages", gin.H{
			"content": "text", "type": "text", "book_id": bookID,
		}, strangerToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("missing book is 404", func(t *testing.T) {
		w := env.doJSON(t, "POST", "/api/pages", gin.H{
			"content": "text", "type": "text", "book_id": 9999,
		}, ownerToken)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("owner creates a page", func(t *testing.T) {
		w := env.doJSON(t, "POST", "/api/pages", gin.H{
			"content": "It begins.",
			"type":    "text",
			"title":   "Chapter 1",
			"book_id": bookID,
		}, ownerToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var page PageResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Equal(t, "It begins.", page.Content)
		require.NotNil(t, page.Title)
		assert.Equal(t, "Chapter 1", *page.Title)
		assert.Equal(t, "Dune", page.BookTitle)
	})

	t.Run("content and type are required", func(t *testing.T) {
		w := env.doJSON(t, "POST", "/api/pages", gin.H{"book_id": bookID}, ownerToken)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPages_UpdateAndDelete(t *testing.T) {
	env, cleanup := setupTestRouter(t)
	defer cleanup()

	_, ownerToken := env.registerAndLogin(t, "Owner", "owner@example.com")
	_, strangerToken := env.registerAndLogin(t, "Stranger", "stranger@example.com")

	book := env.createBook(t, ownerToken, map[string]string{"title": "Dune"})
	bookID := uint(book["id"].(float64))
	pageID := env.createPage(t, ownerToken, bookID, "original")
	path := fmt.Sprintf("/api/pages/%d", pageID)

	t.Run("stranger may not update", func(t *testing.T) {
		w := env.doJSON(t, "PUT", path, gin.H{
			"content": "hijacked", "type": "text", "book_id": bookID,
		}, strangerToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("moving to an unowned book is forbidden", func(t *testing.T) {
		strangerBook := env.createBook(t, strangerToken, map[string]string{"title": "Theirs"})

		w := env.doJSON(t, "PUT", path, gin.H{
			"content": "moved", "type": "text", "book_id": uint(strangerBook["id"].(float64)),
		}, ownerToken)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("owner replaces the page", func(t *testing.T) {
		w := env.doJSON(t, "PUT", path, gin.H{
			"content": "rewritten", "type": "markdown", "book_id": bookID,
		}, ownerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var page PageResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
		assert.Equal(t, "rewritten", page.Content)
		assert.Equal(t, "markdown", page.Type)
		assert.Nil(t, page.Title)
	})

	t.Run("delete clears last-read references", func(t *testing.T) {
		w := env.doJSON(t, "POST", "/api/reading-states", gin.H{
			"book_id":           bookID,
			"last_read_page_id": pageID,
		}, strangerToken)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		w = env.doJSON(t, "DELETE", path, nil, ownerToken)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		w = env.doJSON(t, "GET", fmt.Sprintf("/api/reading-states/book/%d", bookID), nil, strangerToken)
		require.Equal(t, http.StatusOK, w.Code)
		var state ReadingStateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
		assert.Nil(t, state.LastReadPageID)
	})
}
