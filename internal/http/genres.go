package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/inkwell-hq/inkwell/internal/entities"
)

// GenreStore defines read operations for the genre lookup table. Genres are
// created by the bootstrap seed, not over HTTP.
type GenreStore interface {
	GetAll() ([]entities.Genre, error)
	GetByID(id uint) (*entities.Genre, error)
}

type GenresController struct {
	store GenreStore
}

func NewGenresController(store GenreStore) *GenresController {
	return &GenresController{store: store}
}

// List returns all genres.
// GET /api/genres
func (gc *GenresController) List(c *gin.Context) {
	genres, err := gc.store.GetAll()
	if err != nil {
		respondInternalError(c, err, "list genres")
		return
	}
	c.JSON(http.StatusOK, genres)
}

// Get returns a genre by id.
// GET /api/genres/:id
func (gc *GenresController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	genre, err := gc.store.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "genre")
			return
		}
		respondInternalError(c, err, "get genre")
		return
	}
	c.JSON(http.StatusOK, genre)
}
