package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/inkwell-hq/inkwell/internal/auth"
	"github.com/inkwell-hq/inkwell/internal/database/users"
	"github.com/inkwell-hq/inkwell/internal/entities"
)

// UserStore defines database operations for user accounts.
type UserStore interface {
	Create(user *entities.User) error
	GetByID(id uint) (*entities.User, error)
	GetByEmail(email string) (*entities.User, error)
	Update(user *entities.User) error
	Delete(id uint) error
}

type UsersController struct {
	store      UserStore
	tokens     *auth.TokenService
	bcryptCost int
}

func NewUsersController(store UserStore, tokens *auth.TokenService, bcryptCost int) *UsersController {
	return &UsersController{store: store, tokens: tokens, bcryptCost: bcryptCost}
}

type RegisterRequest struct {
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateUserRequest struct {
	FullName *string `json:"full_name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Password *string `json:"password" binding:"omitempty,min=8"`
}

// UserResponse is the public representation of an account.
type UserResponse struct {
	ID        uint      `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type LoginResponse struct {
	Success   bool         `json:"success"`
	User      UserResponse `json:"user"`
	Message   string       `json:"message"`
	Token     string       `json:"token"`
	ExpiresIn int64        `json:"expires_in"` // token lifetime in seconds
}

func toUserResponse(user *entities.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		FullName:  user.FullName,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// Register creates a new account.
// POST /api/users
func (uc *UsersController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	hash, err := auth.HashPassword(req.Password, uc.bcryptCost)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	user := &entities.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := uc.store.Create(user); err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			respondConflict(c, err.Error())
			return
		}
		respondInternalError(c, err, "create user")
		return
	}

	respondCreated(c, toUserResponse(user))
}

// Login verifies credentials and issues a bearer token.
// POST /api/users/login
func (uc *UsersController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	user, err := uc.store.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
			return
		}
		respondInternalError(c, err, "login lookup")
		return
	}

	if err := auth.CheckPassword(req.Password, user.PasswordHash); err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "invalid credentials"})
		return
	}

	token, err := uc.tokens.Issue(user.ID, user.Email)
	if err != nil {
		respondInternalError(c, err, "issue token")
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Success:   true,
		User:      toUserResponse(user),
		Message:   "login successful",
		Token:     token,
		ExpiresIn: int64(uc.tokens.Expiry().Seconds()),
	})
}

// Logout confirms the token is valid. Tokens are stateless, so discarding
// them is the client's job.
// POST /api/users/logout
func (uc *UsersController) Logout(c *gin.Context) {
	respondSuccess(c, "logout successful")
}

// Me returns the authenticated user's profile.
// GET /api/users/me
func (uc *UsersController) Me(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	user, err := uc.store.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "get current user")
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateMe updates the authenticated user's profile. Only provided fields
// change.
// PUT /api/users/me
func (uc *UsersController) UpdateMe(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	user, err := uc.store.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "load user for update")
		return
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password, uc.bcryptCost)
		if err != nil {
			respondBadRequest(c, err.Error())
			return
		}
		user.PasswordHash = hash
	}

	if err := uc.store.Update(user); err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			respondConflict(c, err.Error())
			return
		}
		respondInternalError(c, err, "update user")
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// DeleteMe removes the authenticated user's account and everything it owns.
// DELETE /api/users/me
func (uc *UsersController) DeleteMe(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := uc.store.Delete(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "delete user")
		return
	}

	respondSuccess(c, "account deleted")
}
