// Package pages provides database operations for book pages.
//
// A page's position in its book is its 1-indexed rank in the list of the
// book's page ids sorted ascending; there is no stored position column.
package pages

import (
	"gorm.io/gorm"

	"github.com/inkwell-hq/inkwell/internal/entities"
)

// Repository handles all page database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new pages repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new page.
func (r *Repository) Create(page *entities.Page) error {
	return r.db.Create(page).Error
}

// GetByID retrieves a page with its book preloaded.
func (r *Repository) GetByID(id uint) (*entities.Page, error) {
	var page entities.Page
	err := r.db.Preload("Book").First(&page, id).Error
	if err != nil {
		return nil, err
	}
	return &page, nil
}

// GetAll returns every page ordered by id.
func (r *Repository) GetAll() ([]entities.Page, error) {
	var pages []entities.Page
	err := r.db.Preload("Book").Order("id ASC").Find(&pages).Error
	return pages, err
}

// GetByBook returns a book's pages in reading order.
func (r *Repository) GetByBook(bookID uint) ([]entities.Page, error) {
	var pages []entities.Page
	err := r.db.Where("book_id = ?", bookID).Order("id ASC").Find(&pages).Error
	return pages, err
}

// IDsByBook returns the book's page ids in reading order.
func (r *Repository) IDsByBook(bookID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&entities.Page{}).
		Where("book_id = ?", bookID).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// CountByBook returns the book's total page count.
func (r *Repository) CountByBook(bookID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Page{}).Where("book_id = ?", bookID).Count(&count).Error
	return count, err
}

// Update persists changes to an existing page.
func (r *Repository) Update(page *entities.Page) error {
	return r.db.Save(page).Error
}

// Delete removes a page. Reading states pointing at it fall back to
// "no last read page" rather than blocking the delete.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&entities.ReadingState{}).
			Where("last_read_page_id = ?", id).
			Update("last_read_page_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&entities.Page{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
