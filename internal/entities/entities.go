package entities

import (
	"time"
)

// User is a registered reader. Passwords are stored as bcrypt hashes and
// never leave the server.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FullName     string    `gorm:"size:300" json:"full_name"`
	Email        string    `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string    `gorm:"size:100" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Genre is a flat lookup table. Created by the bootstrap seed, read-only
// over HTTP.
type Genre struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:100" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Book is a catalog entry owned by a user. A private book is visible only
// to its owner. IsPublic deliberately has no column default: gorm skips
// zero-value fields on insert when one is set, and a private book must
// never be stored public.
type Book struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Title      string    `gorm:"index;size:100" json:"title"`
	Version    int       `json:"version"`
	GenreID    *uint     `gorm:"index" json:"genre_id,omitempty"`
	Genre      *Genre    `gorm:"foreignKey:GenreID" json:"genre,omitempty"`
	CoverColor string    `gorm:"size:20;default:'none'" json:"cover_color"`
	CoverPath  string    `gorm:"size:512" json:"-"`
	UserID     uint      `gorm:"index" json:"user_id"`
	User       User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	IsPublic   bool      `json:"is_public"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Page is an ordered content unit of a book. Position is its 1-indexed rank
// by ascending ID, which tracks creation order.
type Page struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text" json:"content"`
	Type      string    `gorm:"size:100" json:"type"`
	Title     *string   `gorm:"size:200" json:"title"`
	BookID    uint      `gorm:"index" json:"book_id"`
	Book      Book      `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReadingState is the single per-(user, book) record of favorite/pending
// flags, last-read page and rating. Uniqueness is enforced by the composite
// index rather than an existence pre-check so concurrent creations cannot
// both succeed. A rating of 0 means "not yet rated".
type ReadingState struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	UserID         uint      `gorm:"uniqueIndex:idx_reading_states_user_book" json:"user_id"`
	User           User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	BookID         uint      `gorm:"uniqueIndex:idx_reading_states_user_book" json:"book_id"`
	Book           Book      `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE" json:"-"`
	IsFavorite     bool      `gorm:"default:false" json:"is_favorite"`
	IsPending      bool      `gorm:"default:false" json:"is_pending"`
	LastReadPageID *uint     `json:"last_read_page_id"`
	LastReadPage   *Page     `gorm:"foreignKey:LastReadPageID;constraint:OnDelete:SET NULL" json:"-"`
	Rating         int       `gorm:"default:0" json:"rating"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

func (Genre) TableName() string {
	return "genres"
}

func (Book) TableName() string {
	return "books"
}

func (Page) TableName() string {
	return "pages"
}

func (ReadingState) TableName() string {
	return "reading_states"
}
