// Package readingstate provides database operations for per-(user, book)
// reading state records.
//
// At most one record exists per (user, book) pair. The composite unique
// index enforces this in the database itself, so two concurrent creations
// cannot both succeed; the loser surfaces as ErrDuplicate.
package readingstate

import (
	"errors"

	"gorm.io/gorm"

	"github.com/inkwell-hq/inkwell/internal/entities"
)

// ErrDuplicate is returned when a reading state already exists for the
// (user, book) pair.
var ErrDuplicate = errors.New("reading state already exists for this book")

// Repository handles all reading state database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new reading state repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new reading state, translating the unique-constraint
// violation into ErrDuplicate.
func (r *Repository) Create(state *entities.ReadingState) error {
	if err := r.db.Create(state).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetByID retrieves a reading state with its book preloaded.
func (r *Repository) GetByID(id uint) (*entities.ReadingState, error) {
	var state entities.ReadingState
	err := r.db.Preload("Book").First(&state, id).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// GetByUserAndBook retrieves the user's state for a book.
func (r *Repository) GetByUserAndBook(userID, bookID uint) (*entities.ReadingState, error) {
	var state entities.ReadingState
	err := r.db.Preload("Book").
		Where("user_id = ? AND book_id = ?", userID, bookID).
		First(&state).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// FindByUserAndBook is GetByUserAndBook with "no record" flattened to
// (nil, nil); composition treats a missing state as absent fields, not as
// an error.
func (r *Repository) FindByUserAndBook(userID, bookID uint) (*entities.ReadingState, error) {
	state, err := r.GetByUserAndBook(userID, bookID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}

// ListByUser returns the user's states, most recently touched first.
func (r *Repository) ListByUser(userID uint) ([]entities.ReadingState, error) {
	var states []entities.ReadingState
	err := r.db.Preload("Book").
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&states).Error
	return states, err
}

// ListFavorites returns the user's favorite-flagged states with books and
// their relations preloaded, most recently touched first.
func (r *Repository) ListFavorites(userID uint) ([]entities.ReadingState, error) {
	return r.listFlagged(userID, "is_favorite")
}

// ListPending returns the user's pending-to-read states, most recently
// touched first.
func (r *Repository) ListPending(userID uint) ([]entities.ReadingState, error) {
	return r.listFlagged(userID, "is_pending")
}

func (r *Repository) listFlagged(userID uint, column string) ([]entities.ReadingState, error) {
	var states []entities.ReadingState
	err := r.db.Preload("Book").Preload("Book.Genre").Preload("Book.User").
		Where("user_id = ? AND "+column+" = ?", userID, true).
		Order("updated_at DESC").
		Find(&states).Error
	return states, err
}

// Update persists changes to an existing reading state.
func (r *Repository) Update(state *entities.ReadingState) error {
	return r.db.Save(state).Error
}

// Delete removes a reading state by id.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.ReadingState{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AverageRating computes the mean of all ratings strictly greater than zero
// for a book. A zero rating means "not yet rated" and never counts; a book
// with no qualifying ratings yields nil, not zero.
func (r *Repository) AverageRating(bookID uint) (*float64, error) {
	var avg *float64
	err := r.db.Model(&entities.ReadingState{}).
		Where("book_id = ? AND rating > 0", bookID).
		Select("AVG(rating)").
		Scan(&avg).Error
	if err != nil {
		return nil, err
	}
	return avg, nil
}
