// Package readview assembles the read-side view of a book: ownership and
// visibility filtering, the viewer's reading state, the resolved last-read
// page number, the finished flag and the aggregate rating.
package readview

import (
	"errors"
	"math"
	"time"

	"github.com/inkwell-hq/inkwell/internal/entities"
)

// ErrForbidden is returned when a private book is composed for anyone but
// its owner.
var ErrForbidden = errors.New("this book is private")

// PageIndex supplies the ordered page sequence of a book.
type PageIndex interface {
	IDsByBook(bookID uint) ([]uint, error)
	CountByBook(bookID uint) (int64, error)
}

// StateSource supplies reading-state data for composition.
type StateSource interface {
	FindByUserAndBook(userID, bookID uint) (*entities.ReadingState, error)
	AverageRating(bookID uint) (*float64, error)
}

// BookView is the composed API representation of a book. Derived fields are
// nil when there is no viewer or the viewer has no reading state.
type BookView struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Version        int       `json:"version"`
	GenreID        *uint     `json:"genre_id"`
	Genre          *string   `json:"genre"`
	CoverColor     string    `json:"cover_color"`
	CoverURL       *string   `json:"cover_url"`
	IsPublic       bool      `json:"is_public"`
	UserID         uint      `json:"user_id"`
	Author         string    `json:"author"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	LastReadPage   *int      `json:"last_read_page"`
	LastReadPageID *uint     `json:"last_read_page_id"`
	IsFinished     *bool     `json:"is_finished"`
	TotalPages     *int      `json:"total_pages"`
	IsFavorite     *bool     `json:"is_favorite"`
	IsPending      *bool     `json:"is_pending"`
	Rating         *int      `json:"rating"`
	AverageRating  *float64  `json:"average_rating"`
}

// CoverResolver maps a stored cover object name to a client-facing URL.
type CoverResolver func(path string) string

// Composer derives the read-model fields of a book view.
type Composer struct {
	pages    PageIndex
	states   StateSource
	coverURL CoverResolver
}

// NewComposer creates a composer. coverURL may be nil when covers are not
// served (tests).
func NewComposer(pages PageIndex, states StateSource, coverURL CoverResolver) *Composer {
	return &Composer{pages: pages, states: states, coverURL: coverURL}
}

// PagePosition resolves a page id to its 1-indexed position within the
// book's page sequence. A nil page id, or a page id that does not belong to
// the book, yields nil rather than an error.
func (c *Composer) PagePosition(bookID uint, pageID *uint) (*int, error) {
	if pageID == nil {
		return nil, nil
	}
	ids, err := c.pages.IDsByBook(bookID)
	if err != nil {
		return nil, err
	}
	for i, id := range ids {
		if id == *pageID {
			pos := i + 1
			return &pos, nil
		}
	}
	return nil, nil
}

// AverageRating returns the book's mean rating over all ratings greater
// than zero, rounded to 2 decimals. Nil when nobody has rated the book.
func (c *Composer) AverageRating(bookID uint) (*float64, error) {
	avg, err := c.states.AverageRating(bookID)
	if err != nil {
		return nil, err
	}
	if avg == nil {
		return nil, nil
	}
	rounded := math.Round(*avg*100) / 100
	return &rounded, nil
}

// Compose builds the view of a book for an optional viewer. A private book
// is only composed for its owner; everyone else gets ErrForbidden. Reading
// state fields are filled only when the viewer has a state for the book.
func (c *Composer) Compose(book *entities.Book, viewerID *uint) (*BookView, error) {
	if !book.IsPublic {
		if viewerID == nil || book.UserID != *viewerID {
			return nil, ErrForbidden
		}
	}

	view := &BookView{
		ID:         book.ID,
		Title:      book.Title,
		Version:    book.Version,
		GenreID:    book.GenreID,
		CoverColor: book.CoverColor,
		IsPublic:   book.IsPublic,
		UserID:     book.UserID,
		Author:     book.User.FullName,
		CreatedAt:  book.CreatedAt,
		UpdatedAt:  book.UpdatedAt,
	}
	if book.Genre != nil {
		view.Genre = &book.Genre.Name
	}
	if book.CoverPath != "" && c.coverURL != nil {
		url := c.coverURL(book.CoverPath)
		view.CoverURL = &url
	}

	if viewerID != nil {
		state, err := c.states.FindByUserAndBook(*viewerID, book.ID)
		if err != nil {
			return nil, err
		}
		if state != nil {
			if err := c.applyState(view, state); err != nil {
				return nil, err
			}
		}
	}

	avg, err := c.AverageRating(book.ID)
	if err != nil {
		return nil, err
	}
	view.AverageRating = avg

	return view, nil
}

func (c *Composer) applyState(view *BookView, state *entities.ReadingState) error {
	view.IsFavorite = &state.IsFavorite
	view.IsPending = &state.IsPending
	view.Rating = &state.Rating
	view.LastReadPageID = state.LastReadPageID

	position, err := c.PagePosition(state.BookID, state.LastReadPageID)
	if err != nil {
		return err
	}
	view.LastReadPage = position

	count, err := c.pages.CountByBook(state.BookID)
	if err != nil {
		return err
	}
	total := int(count)
	view.TotalPages = &total

	// Finished only when the last-read position is known and has reached
	// the end; a zero-page book is never finished.
	finished := position != nil && total > 0 && *position >= total
	view.IsFinished = &finished
	return nil
}
