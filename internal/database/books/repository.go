// Package books provides database operations for the book catalog.
//
// This package implements the BookStore interface defined in
// internal/http/books.go.
package books

import (
	"gorm.io/gorm"

	"github.com/inkwell-hq/inkwell/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new book.
func (r *Repository) Create(book *entities.Book) error {
	return r.db.Create(book).Error
}

// GetByID retrieves a book with its genre and owner preloaded.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Genre").Preload("User").First(&book, id).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetAll returns every book ordered by id, genre and owner preloaded.
// Visibility filtering happens at composition time, not here.
func (r *Repository) GetAll() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Genre").Preload("User").Order("id ASC").Find(&books).Error
	return books, err
}

// GetPublic returns all public books ordered by id.
func (r *Repository) GetPublic() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Genre").Preload("User").
		Where("is_public = ?", true).
		Order("id ASC").
		Find(&books).Error
	return books, err
}

// GetByOwner returns a user's books, newest first.
func (r *Repository) GetByOwner(userID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Preload("Genre").Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&books).Error
	return books, err
}

// Update persists changes to an existing book.
func (r *Repository) Update(book *entities.Book) error {
	return r.db.Save(book).Error
}

// Delete removes a book together with its pages and reading states.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", id).Delete(&entities.ReadingState{}).Error; err != nil {
			return err
		}
		if err := tx.Where("book_id = ?", id).Delete(&entities.Page{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&entities.Book{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// CoverPaths returns every stored cover object name still referenced by a
// book. The maintenance sweep diffs this against the storage listing.
func (r *Repository) CoverPaths() ([]string, error) {
	var paths []string
	err := r.db.Model(&entities.Book{}).
		Where("cover_path <> ''").
		Pluck("cover_path", &paths).Error
	return paths, err
}
