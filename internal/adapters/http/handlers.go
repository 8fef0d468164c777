package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/lawline/consult/internal/app"
	"github.com/lawline/consult/internal/auth"
	"github.com/lawline/consult/internal/config"
	"github.com/lawline/consult/internal/domain"
)

type API struct {
	Hub    *app.Hub
	Tokens *auth.Tokens
	Cfg    *config.Config
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

type userResponse struct {
	Username string      `json:"username"`
	Role     domain.Role `json:"role"`
}

func (a *API) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username, password and role are required"})
		return
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role must be CLIENT or LAWYER"})
		return
	}

	hash, err := auth.HashPassword(req.Password, a.Cfg.BcryptCost)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("hash password")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	user, err := a.Hub.CreateUser(req.Username, role, hash)
	if err != nil {
		if errors.Is(err, app.ErrUserExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username already exists"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	token, err := a.Tokens.Issue(user.Username, user.Role)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"token":   token,
		"user":    userResponse{Username: user.Username, Role: user.Role},
	})
}

func (a *API) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	// Unknown user and wrong password are indistinguishable on purpose.
	user, ok := a.Hub.GetUser(req.Username)
	if !ok || !auth.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := a.Tokens.Issue(user.Username, user.Role)
	if err != nil {
		log.Error().Err(err).Str("module", "adapters.http").Msg("issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    userResponse{Username: user.Username, Role: user.Role},
	})
}

// UpdateStatus is the out-of-call availability flip for lawyers. The hub
// folds it into the next presence broadcast atomically.
func (a *API) UpdateStatus(c *gin.Context) {
	ident := identityFrom(c)
	if ident.Role != domain.RoleLawyer {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only lawyers can update status"})
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status must be ONLINE or BUSY"})
		return
	}

	if err := a.Hub.SetStatus(ident.Username, status); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Status updated successfully", "status": status})
}

func (a *API) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK", "message": "Server is running"})
}

const identityKey = "identity"

func (a *API) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			return
		}
		ident, err := a.Tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(identityKey, ident)
		c.Next()
	}
}

func identityFrom(c *gin.Context) auth.Identity {
	ident, _ := c.MustGet(identityKey).(auth.Identity)
	return ident
}
