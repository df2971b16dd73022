package readview

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/inkwell-hq/inkwell/internal/config"
	"github.com/inkwell-hq/inkwell/internal/database"
	"github.com/inkwell-hq/inkwell/internal/database/pages"
	"github.com/inkwell-hq/inkwell/internal/database/readingstate"
	"github.com/inkwell-hq/inkwell/internal/entities"
)

func setupComposer(t *testing.T) (*gorm.DB, *Composer, func()) {
	t.Helper()

	dbPath := "./test_readview_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(config.Database{Driver: "sqlite", Path: dbPath})
	require.NoError(t, err)
	require.NoError(t, db.Migrate())

	composer := NewComposer(
		pages.NewRepository(db.DB),
		readingstate.NewRepository(db.DB),
		func(path string) string { return "/covers/" + path },
	)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return db.DB, composer, cleanup
}

func createUser(t *testing.T, db *gorm.DB, email string) *entities.User {
	t.Helper()
	user := &entities.User{FullName: "Reader " + email, Email: email, PasswordHash: "x"}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createBook(t *testing.T, db *gorm.DB, ownerID uint, title string, public bool) *entities.Book {
	t.Helper()
	book := &entities.Book{Title: title, Version: 1, UserID: ownerID, IsPublic: public}
	require.NoError(t, db.Create(book).Error)
	return book
}

func createPages(t *testing.T, db *gorm.DB, bookID uint, n int) []entities.Page {
	t.Helper()
	created := make([]entities.Page, 0, n)
	for i := 0; i < n; i++ {
		page := entities.Page{Content: "page content", Type: "text", BookID: bookID}
		require.NoError(t, db.Create(&page).Error)
		created = append(created, page)
	}
	return created
}

func loadBook(t *testing.T, db *gorm.DB, id uint) *entities.Book {
	t.Helper()
	var book entities.Book
	require.NoError(t, db.Preload("Genre").Preload("User").First(&book, id).Error)
	return &book
}

func TestComposer_PagePosition(t *testing.T) {
	db, composer, cleanup := setupComposer(t)
	defer cleanup()

	owner := createUser(t, db, "owner@example.com")
	book := createBook(t, db, owner.ID, "Dune", true)
	bookPages := createPages(t, db, book.ID, 3)

	t.Run("1-indexed by creation order", func(t *testing.T) {
		for i, page := range bookPages {
			pos, err := composer.PagePosition(book.ID, &page.ID)
			require.NoError(t, err)
			require.NotNil(t, pos)
			assert.Equal(t, i+1, *pos)
		}
	})

	t.Run("nil page id yields nil", func(t *testing.T) {
		pos, err := composer.PagePosition(book.ID, nil)
		require.NoError(t, err)
		assert.Nil(t, pos)
	})

	t.Run("page of another book yields nil", func(t *testing.T) {
		other := createBook(t, db, owner.ID, "Other", true)
		foreign := createPages(t, db, other.ID, 1)

		pos, err := composer.PagePosition(book.ID, &foreign[0].ID)
		require.NoError(t, err)
		assert.Nil(t, pos)
	})
}

func TestComposer_AverageRating_Rounding(t *testing.T) {
	db, composer, cleanup := setupComposer(t)
	defer cleanup()

	owner := createUser(t, db, "owner@example.com")
	book := createBook(t, db, owner.ID, "Dune", true)

	for i, rating := range []int{5, 4, 4} {
		rater := createUser(t, db, []string{"a", "b", "c"}[i]+"@example.com")
		require.NoError(t, db.Create(&entities.ReadingState{
			UserID: rater.ID, BookID: book.ID, Rating: rating,
		}).Error)
	}

	avg, err := composer.AverageRating(book.ID)
	require.NoError(t, err)
	require.NotNil(t, avg)
	// 13/3 = 4.333... rounds to two decimals.
	assert.Equal(t, 4.33, *avg)
}

func TestComposer_Compose_Visibility(t *testing.T) {
	db, composer, cleanup := setupComposer(t)
	defer cleanup()

	owner := createUser(t, db, "owner@example.com")
	stranger := createUser(t, db, "stranger@example.com")
	private := createBook(t, db, owner.ID, "Secret", false)
	book := loadBook(t, db, private.ID)

	t.Run("owner sees a private book", func(t *testing.T) {
		view, err := composer.Compose(book, &owner.ID)
		require.NoError(t, err)
		assert.Equal(t, "Secret", view.Title)
		assert.Equal(t, book.User.FullName, view.Author)
	})

	t.Run("other users are refused", func(t *testing.T) {
		_, err := composer.Compose(book, &stranger.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("anonymous viewers are refused", func(t *testing.T) {
		_, err := composer.Compose(book, nil)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestComposer_Compose_NoState(t *testing.T) {
	db, composer, cleanup := setupComposer(t)
	defer cleanup()

	owner := createUser(t, db, "owner@example.com")
	viewer := createUser(t, db, "viewer@example.com")
	book := loadBook(t, db, createBook(t, db, owner.ID, "Dune", true).ID)

	view, err := composer.Compose(book, &viewer.ID)
	require.NoError(t, err)

	// Without a reading state every derived field stays absent.
	assert.Nil(t, view.LastReadPage)
	assert.Nil(t, view.LastReadPageID)
	assert.Nil(t, view.IsFinished)
	assert.Nil(t, view.TotalPages)
	assert.Nil(t, view.IsFavorite)
	assert.Nil(t, view.IsPending)
	assert.Nil(t, view.Rating)
	assert.Nil(t, view.AverageRating)
}

func TestComposer_Compose_WithState(t *testing.T) {
	db, composer, cleanup := setupComposer(t)
	defer cleanup()

	owner := createUser(t, db, "owner@example.com")
	book := loadBook(t, db, createBook(t, db, owner.ID, "Dune", true).ID)
	bookPages := createPages(t, db, book.ID, 3)

	state := &entities.ReadingState{
		UserID:         owner.ID,
		BookID:         book.ID,
		IsFavorite:     true,
		LastReadPageID: &bookPages[1].ID,
		Rating:         4,
	}
	require.NoError(t, db.Create(state).Error)

	view, err := composer.Compose(book, &owner.ID)
	require.NoError(t, err)

	require.NotNil(t, view.LastReadPage)
	assert.Equal(t, 2, *view.LastReadPage)
	require.NotNil(t, view.TotalPages)
	assert.Equal(t, 3, *view.TotalPages)
	require.NotNil(t, view.IsFinished)
	assert.False(t, *view.IsFinished)
	require.NotNil(t, view.IsFavorite)
	assert.True(t, *view.IsFavorite)
	require.NotNil(t, view.Rating)
	assert.Equal(t, 4, *view.Rating)
	require.NotNil(t, view.AverageRating)
	assert.Equal(t, 4.0, *view.AverageRating)

	// Advancing to the final page flips the finished flag.
	state.LastReadPageID = &bookPages[2].ID
	require.NoError(t, db.Save(state).Error)

	view, err = composer.Compose(book, &owner.ID)
	require.NoError(t, err)
	require.NotNil(t, view.IsFinished)
	assert.True(t, *view.IsFinished)
}

func TestComposer_Compose_ZeroPageBookNeverFinished(t *testing.T) {
	db, composer, cleanup := setupComposer(t)
	defer cleanup()

	owner := createUser(t, db, "owner@example.com")
	book := loadBook(t, db, createBook(t, db, owner.ID, "Empty", true).ID)

	require.NoError(t, db.Create(&entities.ReadingState{UserID: owner.ID, BookID: book.ID}).Error)

	view, err := composer.Compose(book, &owner.ID)
	require.NoError(t, err)
	require.NotNil(t, view.IsFinished)
	assert.False(t, *view.IsFinished)
	require.NotNil(t, view.TotalPages)
	assert.Equal(t, 0, *view.TotalPages)
	assert.Nil(t, view.LastReadPage)
}

func TestComposer_Compose_CoverURL(t *testing.T) {
	db, composer, cleanup := setupComposer(t)
	defer cleanup()

	owner := createUser(t, db, "owner@example.com")
	book := createBook(t, db, owner.ID, "Covered", true)
	book.CoverPath = "abc123.png"
	require.NoError(t, db.Save(book).Error)

	view, err := composer.Compose(loadBook(t, db, book.ID), nil)
	require.NoError(t, err)
	require.NotNil(t, view.CoverURL)
	assert.Equal(t, "/covers/abc123.png", *view.CoverURL)
}
