package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/inkwell-hq/inkwell/internal/entities"
)

// PageStore defines database operations for pages.
type PageStore interface {
	Create(page *entities.Page) error
	GetByID(id uint) (*entities.Page, error)
	GetAll() ([]entities.Page, error)
	Update(page *entities.Page) error
	Delete(id uint) error
}

// PageBookStore resolves the book a page mutation targets, for the
// ownership guard.
type PageBookStore interface {
	GetByID(id uint) (*entities.Book, error)
}

type PagesController struct {
	store PageStore
	books PageBookStore
}

func NewPagesController(store PageStore, books PageBookStore) *PagesController {
	return &PagesController{store: store, books: books}
}

type PageRequest struct {
	Content string  `json:"content" binding:"required"`
	Type    string  `json:"type" binding:"required"`
	Title   *string `json:"title"`
	BookID  uint    `json:"book_id" binding:"required"`
}

// PageResponse is the public representation of a page.
type PageResponse struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`
	Title     *string   `json:"title"`
	BookID    uint      `json:"book_id"`
	BookTitle string    `json:"book_title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toPageResponse(page *entities.Page) PageResponse {
	return PageResponse{
		ID:        page.ID,
		Content:   page.Content,
		Type:      page.Type,
		Title:     page.Title,
		BookID:    page.BookID,
		BookTitle: page.Book.Title,
		CreatedAt: page.CreatedAt,
		UpdatedAt: page.UpdatedAt,
	}
}

// List returns every page ordered by id.
// GET /api/pages
func (pc *PagesController) List(c *gin.Context) {
	pages, err := pc.store.GetAll()
	if err != nil {
		respondInternalError(c, err, "list pages")
		return
	}

	responses := make([]PageResponse, 0, len(pages))
	for i := range pages {
		responses = append(responses, toPageResponse(&pages[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// Get returns a page by id.
// GET /api/pages/:id
func (pc *PagesController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	page, err := pc.store.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "page")
			return
		}
		respondInternalError(c, err, "get page")
		return
	}
	c.JSON(http.StatusOK, toPageResponse(page))
}

// Create adds a page to a book the caller owns.
// POST /api/pages
func (pc *PagesController) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if !pc.guardBookOwnership(c, req.BookID, userID) {
		return
	}

	page := &entities.Page{
		Content: req.Content,
		Type:    req.Type,
		Title:   req.Title,
		BookID:  req.BookID,
	}
	if err := pc.store.Create(page); err != nil {
		respondInternalError(c, err, "create page")
		return
	}

	created, err := pc.store.GetByID(page.ID)
	if err != nil {
		respondInternalError(c, err, "reload created page")
		return
	}
	respondCreated(c, toPageResponse(created))
}

// Update replaces a page's content. Only the owning book's owner may call
// this; moving the page to another book requires owning that book too.
// PUT /api/pages/:id
func (pc *PagesController) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	page, ok := pc.loadOwnedPage(c, userID)
	if !ok {
		return
	}

	var req PageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if req.BookID != page.BookID && !pc.guardBookOwnership(c, req.BookID, userID) {
		return
	}

	page.Content = req.Content
	page.Type = req.Type
	page.Title = req.Title
	page.BookID = req.BookID

	if err := pc.store.Update(page); err != nil {
		respondInternalError(c, err, "update page")
		return
	}

	updated, err := pc.store.GetByID(page.ID)
	if err != nil {
		respondInternalError(c, err, "reload updated page")
		return
	}
	c.JSON(http.StatusOK, toPageResponse(updated))
}

// Delete removes a page.
// DELETE /api/pages/:id
func (pc *PagesController) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	page, ok := pc.loadOwnedPage(c, userID)
	if !ok {
		return
	}

	if err := pc.store.Delete(page.ID); err != nil {
		respondInternalError(c, err, "delete page")
		return
	}
	respondSuccess(c, "page deleted")
}

// loadOwnedPage fetches a page and enforces book ownership through it.
func (pc *PagesController) loadOwnedPage(c *gin.Context, userID uint) (*entities.Page, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}

	page, err := pc.store.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "page")
			return nil, false
		}
		respondInternalError(c, err, "load page")
		return nil, false
	}

	if page.Book.UserID != userID {
		respondForbidden(c, "you do not own this book's pages")
		return nil, false
	}
	return page, true
}

// guardBookOwnership verifies the caller owns the target book, responding
// 404/403 otherwise.
func (pc *PagesController) guardBookOwnership(c *gin.Context, bookID, userID uint) bool {
	book, err := pc.books.GetByID(bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return false
		}
		respondInternalError(c, err, "load book for page")
		return false
	}
	if book.UserID != userID {
		respondForbidden(c, "you do not own this book")
		return false
	}
	return true
}
