package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/inkwell-hq/inkwell/internal/database/readingstate"
	"github.com/inkwell-hq/inkwell/internal/entities"
)

// ReadingStateStore defines database operations for reading states.
type ReadingStateStore interface {
	Create(state *entities.ReadingState) error
	GetByID(id uint) (*entities.ReadingState, error)
	GetByUserAndBook(userID, bookID uint) (*entities.ReadingState, error)
	ListByUser(userID uint) ([]entities.ReadingState, error)
	Update(state *entities.ReadingState) error
	Delete(id uint) error
}

// StateBookStore checks the referenced book exists.
type StateBookStore interface {
	GetByID(id uint) (*entities.Book, error)
}

type ReadingStatesController struct {
	store ReadingStateStore
	books StateBookStore
}

func NewReadingStatesController(store ReadingStateStore, books StateBookStore) *ReadingStatesController {
	return &ReadingStatesController{store: store, books: books}
}

type CreateReadingStateRequest struct {
	BookID         uint  `json:"book_id" binding:"required"`
	IsFavorite     bool  `json:"is_favorite"`
	IsPending      bool  `json:"is_pending"`
	LastReadPageID *uint `json:"last_read_page_id"`
	Rating         int   `json:"rating" binding:"min=0,max=5"`
}

type UpdateReadingStateRequest struct {
	IsFavorite     *bool `json:"is_favorite"`
	IsPending      *bool `json:"is_pending"`
	LastReadPageID *uint `json:"last_read_page_id"`
	Rating         *int  `json:"rating" binding:"omitempty,min=0,max=5"`
}

// ReadingStateResponse is the public representation of a reading state.
type ReadingStateResponse struct {
	ID             uint      `json:"id"`
	UserID         uint      `json:"user_id"`
	BookID         uint      `json:"book_id"`
	BookTitle      string    `json:"book_title"`
	IsFavorite     bool      `json:"is_favorite"`
	IsPending      bool      `json:"is_pending"`
	LastReadPageID *uint     `json:"last_read_page_id"`
	Rating         int       `json:"rating"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toReadingStateResponse(state *entities.ReadingState) ReadingStateResponse {
	return ReadingStateResponse{
		ID:             state.ID,
		UserID:         state.UserID,
		BookID:         state.BookID,
		BookTitle:      state.Book.Title,
		IsFavorite:     state.IsFavorite,
		IsPending:      state.IsPending,
		LastReadPageID: state.LastReadPageID,
		Rating:         state.Rating,
		CreatedAt:      state.CreatedAt,
		UpdatedAt:      state.UpdatedAt,
	}
}

// List returns all of the caller's reading states, most recently touched
// first.
// GET /api/reading-states
func (rc *ReadingStatesController) List(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	states, err := rc.store.ListByUser(userID)
	if err != nil {
		respondInternalError(c, err, "list reading states")
		return
	}

	responses := make([]ReadingStateResponse, 0, len(states))
	for i := range states {
		responses = append(responses, toReadingStateResponse(&states[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// GetByBook returns the caller's state for one book.
// GET /api/reading-states/book/:bookId
func (rc *ReadingStatesController) GetByBook(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	if !rc.guardBookExists(c, bookID) {
		return
	}

	state, err := rc.store.GetByUserAndBook(userID, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "reading state")
			return
		}
		respondInternalError(c, err, "get reading state")
		return
	}
	c.JSON(http.StatusOK, toReadingStateResponse(state))
}

// Create starts tracking a book for the caller. At most one state per
// (user, book) pair; the database constraint turns a duplicate into 409.
// POST /api/reading-states
func (rc *ReadingStatesController) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req CreateReadingStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if !rc.guardBookExists(c, req.BookID) {
		return
	}

	state := &entities.ReadingState{
		UserID:         userID,
		BookID:         req.BookID,
		IsFavorite:     req.IsFavorite,
		IsPending:      req.IsPending,
		LastReadPageID: req.LastReadPageID,
		Rating:         req.Rating,
	}
	if err := rc.store.Create(state); err != nil {
		if errors.Is(err, readingstate.ErrDuplicate) {
			respondConflict(c, err.Error())
			return
		}
		respondInternalError(c, err, "create reading state")
		return
	}

	created, err := rc.store.GetByID(state.ID)
	if err != nil {
		respondInternalError(c, err, "reload created reading state")
		return
	}
	respondCreated(c, toReadingStateResponse(created))
}

// UpdateByBook updates the caller's state for one book. Only provided
// fields change.
// PUT /api/reading-states/book/:bookId
func (rc *ReadingStatesController) UpdateByBook(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	var req UpdateReadingStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	if !rc.guardBookExists(c, bookID) {
		return
	}

	state, err := rc.store.GetByUserAndBook(userID, bookID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "reading state")
			return
		}
		respondInternalError(c, err, "load reading state")
		return
	}

	if req.IsFavorite != nil {
		state.IsFavorite = *req.IsFavorite
	}
	if req.IsPending != nil {
		state.IsPending = *req.IsPending
	}
	if req.LastReadPageID != nil {
		state.LastReadPageID = req.LastReadPageID
	}
	if req.Rating != nil {
		state.Rating = *req.Rating
	}

	if err := rc.store.Update(state); err != nil {
		respondInternalError(c, err, "update reading state")
		return
	}
	c.JSON(http.StatusOK, toReadingStateResponse(state))
}

// Delete removes one of the caller's reading states. The record's owner is
// the only one allowed to delete it.
// DELETE /api/reading-states/:id
func (rc *ReadingStatesController) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	state, err := rc.store.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "reading state")
			return
		}
		respondInternalError(c, err, "load reading state")
		return
	}

	if state.UserID != userID {
		respondForbidden(c, "you do not own this reading state")
		return
	}

	if err := rc.store.Delete(id); err != nil {
		respondInternalError(c, err, "delete reading state")
		return
	}
	respondSuccess(c, "reading state deleted")
}

func (rc *ReadingStatesController) guardBookExists(c *gin.Context, bookID uint) bool {
	if _, err := rc.books.GetByID(bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return false
		}
		respondInternalError(c, err, "load book for reading state")
		return false
	}
	return true
}
