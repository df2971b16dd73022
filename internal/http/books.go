package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/inkwell-hq/inkwell/internal/auth"
	"github.com/inkwell-hq/inkwell/internal/covers"
	"github.com/inkwell-hq/inkwell/internal/entities"
	"github.com/inkwell-hq/inkwell/internal/readview"
)

// BookStore defines database operations for the book catalog.
type BookStore interface {
	Create(book *entities.Book) error
	GetByID(id uint) (*entities.Book, error)
	GetAll() ([]entities.Book, error)
	GetPublic() ([]entities.Book, error)
	GetByOwner(userID uint) ([]entities.Book, error)
	Update(book *entities.Book) error
	Delete(id uint) error
}

// BookPageStore lists a book's pages in reading order.
type BookPageStore interface {
	GetByBook(bookID uint) ([]entities.Page, error)
}

// BookStateStore lists the caller's flagged reading states with books
// preloaded.
type BookStateStore interface {
	ListFavorites(userID uint) ([]entities.ReadingState, error)
	ListPending(userID uint) ([]entities.ReadingState, error)
}

type BooksController struct {
	books  BookStore
	pages  BookPageStore
	states BookStateStore
	view   *readview.Composer
	covers covers.Storage
}

func NewBooksController(books BookStore, pages BookPageStore, states BookStateStore, view *readview.Composer, coverStorage covers.Storage) *BooksController {
	return &BooksController{
		books:  books,
		pages:  pages,
		states: states,
		view:   view,
		covers: coverStorage,
	}
}

// visibleTo mirrors the catalog visibility rule: public, or owned by the
// viewer.
func visibleTo(book *entities.Book, viewerID *uint) bool {
	return book.IsPublic || (viewerID != nil && book.UserID == *viewerID)
}

// composeAll filters a book list down to what the viewer may see and
// composes each survivor.
func (bc *BooksController) composeAll(books []entities.Book, viewerID *uint) ([]readview.BookView, error) {
	views := make([]readview.BookView, 0, len(books))
	for i := range books {
		if !visibleTo(&books[i], viewerID) {
			continue
		}
		view, err := bc.view.Compose(&books[i], viewerID)
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// List returns every book the caller may see, anonymous callers included.
// GET /api/books
func (bc *BooksController) List(c *gin.Context) {
	books, err := bc.books.GetAll()
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}

	views, err := bc.composeAll(books, auth.OptionalUserID(c))
	if err != nil {
		respondInternalError(c, err, "compose books")
		return
	}
	c.JSON(http.StatusOK, views)
}

// ListPublic returns all public books with the caller's reading data.
// GET /api/books/public
func (bc *BooksController) ListPublic(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	books, err := bc.books.GetPublic()
	if err != nil {
		respondInternalError(c, err, "list public books")
		return
	}

	views, err := bc.composeAll(books, &userID)
	if err != nil {
		respondInternalError(c, err, "compose public books")
		return
	}
	c.JSON(http.StatusOK, views)
}

// ListMine returns the caller's own books, private ones included, newest
// first.
// GET /api/books/mine
func (bc *BooksController) ListMine(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	books, err := bc.books.GetByOwner(userID)
	if err != nil {
		respondInternalError(c, err, "list own books")
		return
	}

	views, err := bc.composeAll(books, &userID)
	if err != nil {
		respondInternalError(c, err, "compose own books")
		return
	}
	c.JSON(http.StatusOK, views)
}

// ListFavorites returns the caller's favorite books.
// GET /api/books/favorites
func (bc *BooksController) ListFavorites(c *gin.Context) {
	bc.listFlagged(c, bc.states.ListFavorites)
}

// ListPending returns the caller's pending-to-read books.
// GET /api/books/pending
func (bc *BooksController) ListPending(c *gin.Context) {
	bc.listFlagged(c, bc.states.ListPending)
}

func (bc *BooksController) listFlagged(c *gin.Context, fetch func(uint) ([]entities.ReadingState, error)) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	states, err := fetch(userID)
	if err != nil {
		respondInternalError(c, err, "list flagged books")
		return
	}

	views := make([]readview.BookView, 0, len(states))
	for i := range states {
		book := states[i].Book
		if !visibleTo(&book, &userID) {
			continue
		}
		view, err := bc.view.Compose(&book, &userID)
		if err != nil {
			respondInternalError(c, err, "compose flagged book")
			return
		}
		views = append(views, *view)
	}
	c.JSON(http.StatusOK, views)
}

// Get returns the composed view of one book. Private books yield 403 for
// anyone but the owner.
// GET /api/books/:id
func (bc *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := bc.books.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return
		}
		respondInternalError(c, err, "get book")
		return
	}

	view, err := bc.view.Compose(book, auth.OptionalUserID(c))
	if err != nil {
		if errors.Is(err, readview.ErrForbidden) {
			respondForbidden(c, err.Error())
			return
		}
		respondInternalError(c, err, "compose book")
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListPages returns the book's pages in reading order, subject to the same
// visibility rule as the book itself.
// GET /api/books/:id/pages
func (bc *BooksController) ListPages(c *gin.Context) {
	book, ok := bc.loadVisibleBook(c)
	if !ok {
		return
	}

	pages, err := bc.pages.GetByBook(book.ID)
	if err != nil {
		respondInternalError(c, err, "list book pages")
		return
	}
	c.JSON(http.StatusOK, pages)
}

// Create adds a book owned by the caller. Multipart form so the cover
// image can ride along.
// POST /api/books
func (bc *BooksController) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	title := c.PostForm("title")
	if title == "" {
		respondBadRequest(c, "title is required")
		return
	}
	version, err := strconv.Atoi(c.DefaultPostForm("version", "1"))
	if err != nil {
		respondBadRequest(c, "invalid version")
		return
	}

	book := &entities.Book{
		Title:      title,
		Version:    version,
		CoverColor: c.DefaultPostForm("cover_color", "none"),
		UserID:     userID,
		IsPublic:   true,
	}

	if raw, present := c.GetPostForm("genre_id"); present && raw != "" {
		genreID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondBadRequest(c, "invalid genre_id")
			return
		}
		id := uint(genreID)
		book.GenreID = &id
	}
	if raw, present := c.GetPostForm("is_public"); present {
		isPublic, err := strconv.ParseBool(raw)
		if err != nil {
			respondBadRequest(c, "invalid is_public")
			return
		}
		book.IsPublic = isPublic
	}

	if file, err := c.FormFile("cover_image"); err == nil {
		name, err := bc.covers.Save(file)
		if err != nil {
			respondInternalError(c, err, "store cover image")
			return
		}
		book.CoverPath = name
	}

	if err := bc.books.Create(book); err != nil {
		respondInternalError(c, err, "create book")
		return
	}

	created, err := bc.books.GetByID(book.ID)
	if err != nil {
		respondInternalError(c, err, "reload created book")
		return
	}
	view, err := bc.view.Compose(created, &userID)
	if err != nil {
		respondInternalError(c, err, "compose created book")
		return
	}
	respondCreated(c, view)
}

// Update modifies a book. Only provided form fields change; only the owner
// may call this.
// PUT /api/books/:id
func (bc *BooksController) Update(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	book, ok := bc.loadOwnedBook(c, userID)
	if !ok {
		return
	}

	if title, present := c.GetPostForm("title"); present {
		book.Title = title
	}
	if raw, present := c.GetPostForm("version"); present {
		version, err := strconv.Atoi(raw)
		if err != nil {
			respondBadRequest(c, "invalid version")
			return
		}
		book.Version = version
	}
	if color, present := c.GetPostForm("cover_color"); present {
		book.CoverColor = color
	}
	if raw, present := c.GetPostForm("genre_id"); present && raw != "" {
		genreID, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondBadRequest(c, "invalid genre_id")
			return
		}
		id := uint(genreID)
		book.GenreID = &id
	}
	if raw, present := c.GetPostForm("is_public"); present {
		isPublic, err := strconv.ParseBool(raw)
		if err != nil {
			respondBadRequest(c, "invalid is_public")
			return
		}
		book.IsPublic = isPublic
	}

	if file, err := c.FormFile("cover_image"); err == nil {
		name, err := bc.covers.Save(file)
		if err != nil {
			respondInternalError(c, err, "store cover image")
			return
		}
		if book.CoverPath != "" {
			if err := bc.covers.Delete(book.CoverPath); err != nil {
				respondInternalError(c, err, "replace cover image")
				return
			}
		}
		book.CoverPath = name
	}

	if err := bc.books.Update(book); err != nil {
		respondInternalError(c, err, "update book")
		return
	}

	updated, err := bc.books.GetByID(book.ID)
	if err != nil {
		respondInternalError(c, err, "reload updated book")
		return
	}
	view, err := bc.view.Compose(updated, &userID)
	if err != nil {
		respondInternalError(c, err, "compose updated book")
		return
	}
	c.JSON(http.StatusOK, view)
}

// Delete removes a book, its pages, reading states and stored cover.
// DELETE /api/books/:id
func (bc *BooksController) Delete(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	book, ok := bc.loadOwnedBook(c, userID)
	if !ok {
		return
	}

	if err := bc.books.Delete(book.ID); err != nil {
		respondInternalError(c, err, "delete book")
		return
	}
	if book.CoverPath != "" {
		// The orphan sweep catches this if it fails.
		if err := bc.covers.Delete(book.CoverPath); err != nil {
			respondInternalError(c, err, "delete cover image")
			return
		}
	}

	respondSuccess(c, "book deleted")
}

// loadOwnedBook fetches the book and enforces the ownership guard,
// responding 404/403 as appropriate.
func (bc *BooksController) loadOwnedBook(c *gin.Context, userID uint) (*entities.Book, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}

	book, err := bc.books.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return nil, false
		}
		respondInternalError(c, err, "load book")
		return nil, false
	}

	if book.UserID != userID {
		respondForbidden(c, "you do not own this book")
		return nil, false
	}
	return book, true
}

// loadVisibleBook fetches the book and enforces the visibility rule for the
// (possibly anonymous) caller.
func (bc *BooksController) loadVisibleBook(c *gin.Context) (*entities.Book, bool) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return nil, false
	}

	book, err := bc.books.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "book")
			return nil, false
		}
		respondInternalError(c, err, "load book")
		return nil, false
	}

	if !visibleTo(book, auth.OptionalUserID(c)) {
		respondForbidden(c, readview.ErrForbidden.Error())
		return nil, false
	}
	return book, true
}
