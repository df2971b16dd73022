// Package users provides database operations for user accounts.
//
// This package implements the UserStore interface defined in
// internal/http/users.go.
package users

import (
	"errors"

	"gorm.io/gorm"

	"github.com/inkwell-hq/inkwell/internal/entities"
)

// ErrEmailTaken is returned when creating or updating a user with an email
// that already belongs to another account.
var ErrEmailTaken = errors.New("email already registered")

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user. The email unique index maps violations to
// ErrEmailTaken.
func (r *Repository) Create(user *entities.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// GetByID retrieves a user by primary key.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email address.
func (r *Repository) GetByEmail(email string) (*entities.User, error) {
	var user entities.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Update persists changes to an existing user.
func (r *Repository) Update(user *entities.User) error {
	if err := r.db.Save(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// Delete removes a user and everything hanging off the account: reading
// states, pages of owned books and the books themselves. Runs in a single
// transaction so a failure leaves the account intact.
func (r *Repository) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&entities.ReadingState{}).Error; err != nil {
			return err
		}

		var bookIDs []uint
		if err := tx.Model(&entities.Book{}).Where("user_id = ?", id).Pluck("id", &bookIDs).Error; err != nil {
			return err
		}
		if len(bookIDs) > 0 {
			if err := tx.Where("last_read_page_id IN (SELECT id FROM pages WHERE book_id IN ?)", bookIDs).
				Model(&entities.ReadingState{}).Update("last_read_page_id", nil).Error; err != nil {
				return err
			}
			if err := tx.Where("book_id IN ?", bookIDs).Delete(&entities.ReadingState{}).Error; err != nil {
				return err
			}
			if err := tx.Where("book_id IN ?", bookIDs).Delete(&entities.Page{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&entities.Book{}, bookIDs).Error; err != nil {
				return err
			}
		}

		result := tx.Delete(&entities.User{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// HasUsers reports whether any account exists. Used by the bootstrap seed.
func (r *Repository) HasUsers() (bool, error) {
	var count int64
	if err := r.db.Model(&entities.User{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
