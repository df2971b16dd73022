// Package genres provides database operations for the genre lookup table.
package genres

import (
	"gorm.io/gorm"

	"github.com/inkwell-hq/inkwell/internal/entities"
)

// Repository handles all genre database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new genres repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetAll returns all genres ordered by id.
func (r *Repository) GetAll() ([]entities.Genre, error) {
	var genres []entities.Genre
	err := r.db.Order("id ASC").Find(&genres).Error
	return genres, err
}

// GetByID retrieves a genre by primary key.
func (r *Repository) GetByID(id uint) (*entities.Genre, error) {
	var genre entities.Genre
	if err := r.db.First(&genre, id).Error; err != nil {
		return nil, err
	}
	return &genre, nil
}

// GetOrCreate returns the genre with the given name, creating it if absent.
// Used by the bootstrap seed, which must stay idempotent.
func (r *Repository) GetOrCreate(name string) (*entities.Genre, error) {
	var genre entities.Genre
	err := r.db.Where(entities.Genre{Name: name}).FirstOrCreate(&genre).Error
	if err != nil {
		return nil, err
	}
	return &genre, nil
}
