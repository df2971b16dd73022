package http

import (
	"github.com/gin-gonic/gin"

	"github.com/inkwell-hq/inkwell/internal/auth"
	"github.com/inkwell-hq/inkwell/internal/covers"
	"github.com/inkwell-hq/inkwell/internal/database"
	"github.com/inkwell-hq/inkwell/internal/database/books"
	"github.com/inkwell-hq/inkwell/internal/database/genres"
	"github.com/inkwell-hq/inkwell/internal/database/pages"
	"github.com/inkwell-hq/inkwell/internal/database/readingstate"
	"github.com/inkwell-hq/inkwell/internal/database/users"
	"github.com/inkwell-hq/inkwell/internal/readview"
)

// RouterConfig carries every dependency the router needs, keeping the
// constructor signature stable as wiring grows.
type RouterConfig struct {
	Database   *database.Database
	Tokens     *auth.TokenService
	Covers     covers.Storage
	CoversDir  string // non-empty when the local backend should be served
	BcryptCost int
	Version    string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	db := cfg.Database.DB
	userRepo := users.NewRepository(db)
	genreRepo := genres.NewRepository(db)
	bookRepo := books.NewRepository(db)
	pageRepo := pages.NewRepository(db)
	stateRepo := readingstate.NewRepository(db)

	composer := readview.NewComposer(pageRepo, stateRepo, cfg.Covers.URL)
	middleware := auth.NewMiddleware(cfg.Tokens)

	usersController := NewUsersController(userRepo, cfg.Tokens, cfg.BcryptCost)
	genresController := NewGenresController(genreRepo)
	booksController := NewBooksController(bookRepo, pageRepo, stateRepo, composer, cfg.Covers)
	pagesController := NewPagesController(pageRepo, bookRepo)
	statesController := NewReadingStatesController(stateRepo, bookRepo)
	healthController := NewHealthController(cfg.Database, cfg.Version)

	router.GET("/health", healthController.Health)

	if cfg.CoversDir != "" {
		router.Static("/covers", cfg.CoversDir)
	}

	api := router.Group("/api")

	userRoutes := api.Group("/users")
	{
		userRoutes.POST("", usersController.Register)
		userRoutes.POST("/login", usersController.Login)
		userRoutes.POST("/logout", middleware.Required(), usersController.Logout)
		userRoutes.GET("/me", middleware.Required(), usersController.Me)
		userRoutes.PUT("/me", middleware.Required(), usersController.UpdateMe)
		userRoutes.DELETE("/me", middleware.Required(), usersController.DeleteMe)
	}

	genreRoutes := api.Group("/genres")
	{
		genreRoutes.GET("", genresController.List)
		genreRoutes.GET("/:id", genresController.Get)
	}

	bookRoutes := api.Group("/books")
	{
		bookRoutes.GET("", middleware.Optional(), booksController.List)
		bookRoutes.GET("/public", middleware.Required(), booksController.ListPublic)
		bookRoutes.GET("/mine", middleware.Required(), booksController.ListMine)
		bookRoutes.GET("/favorites", middleware.Required(), booksController.ListFavorites)
		bookRoutes.GET("/pending", middleware.Required(), booksController.ListPending)
		bookRoutes.GET("/:id", middleware.Optional(), booksController.Get)
		bookRoutes.GET("/:id/pages", middleware.Optional(), booksController.ListPages)
		bookRoutes.GET("/:id/export", middleware.Optional(), booksController.Export)
		bookRoutes.POST("", middleware.Required(), booksController.Create)
		bookRoutes.PUT("/:id", middleware.Required(), booksController.Update)
		bookRoutes.DELETE("/:id", middleware.Required(), booksController.Delete)
	}

	pageRoutes := api.Group("/pages")
	{
		pageRoutes.GET("", pagesController.List)
		pageRoutes.GET("/:id", pagesController.Get)
		pageRoutes.POST("", middleware.Required(), pagesController.Create)
		pageRoutes.PUT("/:id", middleware.Required(), pagesController.Update)
		pageRoutes.DELETE("/:id", middleware.Required(), pagesController.Delete)
	}

	stateRoutes := api.Group("/reading-states", middleware.Required())
	{
		stateRoutes.GET("", statesController.List)
		stateRoutes.GET("/book/:bookId", statesController.GetByBook)
		stateRoutes.POST("", statesController.Create)
		stateRoutes.PUT("/book/:bookId", statesController.UpdateByBook)
		stateRoutes.DELETE("/:id", statesController.Delete)
	}

	return router
}
