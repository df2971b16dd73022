package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultExportPageSize = 10
	maxExportPageSize     = 100
)

// ExportedPage is one content page inside an export document, annotated
// with its 1-indexed position.
type ExportedPage struct {
	Number  int     `json:"number"`
	ID      uint    `json:"id"`
	Title   *string `json:"title"`
	Type    string  `json:"type"`
	Content string  `json:"content"`
}

// ExportDocument is a chunk of a book rendered as a paginated document.
type ExportDocument struct {
	BookID uint              `json:"book_id"`
	Title  string            `json:"title"`
	Pages  PaginatedResponse `json:"pages"`
}

// Export returns the book's pages as a paginated document, chunked by
// page_size with standard pagination metadata. Same visibility rule as the
// book itself.
// GET /api/books/:id/export
func (bc *BooksController) Export(c *gin.Context) {
	book, ok := bc.loadVisibleBook(c)
	if !ok {
		return
	}

	pageSize := defaultExportPageSize
	if raw := c.Query("page_size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > maxExportPageSize {
			respondBadRequest(c, "invalid page_size")
			return
		}
		pageSize = size
	}
	chunk := 1
	if raw := c.Query("page"); raw != "" {
		number, err := strconv.Atoi(raw)
		if err != nil || number < 1 {
			respondBadRequest(c, "invalid page")
			return
		}
		chunk = number
	}

	pages, err := bc.pages.GetByBook(book.ID)
	if err != nil {
		respondInternalError(c, err, "export book pages")
		return
	}

	total := len(pages)
	offset := (chunk - 1) * pageSize
	end := offset + pageSize
	if offset > total {
		offset = total
	}
	if end > total {
		end = total
	}

	exported := make([]ExportedPage, 0, end-offset)
	for i := offset; i < end; i++ {
		exported = append(exported, ExportedPage{
			Number:  i + 1,
			ID:      pages[i].ID,
			Title:   pages[i].Title,
			Type:    pages[i].Type,
			Content: pages[i].Content,
		})
	}

	totalChunks := 0
	if total > 0 {
		totalChunks = (total + pageSize - 1) / pageSize
	}

	c.JSON(http.StatusOK, ExportDocument{
		BookID: book.ID,
		Title:  book.Title,
		Pages: PaginatedResponse{
			Data:       exported,
			Total:      int64(total),
			Limit:      pageSize,
			Offset:     offset,
			HasMore:    end < total,
			TotalPages: totalChunks,
		},
	})
}
