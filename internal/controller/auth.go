package controller

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/hqanh/scoresheet/internal/dto"
	"github.com/rs/zerolog/log"
)

// adminKey is the ephemeral session flag. It lives only in the cookie
// session for the current operator and is dropped on logout.
const adminKey = "is_admin"

func isAdmin(c *gin.Context) bool {
	session := sessions.Default(c)
	flag := session.Get(adminKey)
	if flag == nil {
		return false
	}
	v, ok := flag.(bool)
	return ok && v
}

// AuthAdmin aborts any request whose session is not marked as admin.
func AuthAdmin(c *gin.Context) {
	if !isAdmin(c) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Not logged in"})
	}
}

// LoginHandler godoc
// @Summary Log in as the operator
// @Description Checks the fixed operator credentials and marks the session as admin
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Operator credentials"
// @Success 200 {object} dto.MessageResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid request body"
// @Failure 401 {object} dto.ErrorResponse "Wrong credentials"
// @Router /login [post]
func (ctrl *Controller) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
		return
	}

	if req.Username != ctrl.cfg.Admin.Username || req.Password != ctrl.cfg.Admin.Password {
		log.Warn().Str("username", req.Username).Msg("Rejected login attempt")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Invalid credentials"})
		return
	}

	session := sessions.Default(c)
	session.Set(adminKey, true)
	if err := session.Save(); err != nil {
		log.Error().Err(err).Msg("Failed to save session")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to start session"})
		return
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged in"})
}

// LogoutHandler godoc
// @Summary Log out
// @Description Clears the admin flag from the current session
// @Tags auth
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router /logout [post]
func (ctrl *Controller) LogoutHandler(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete(adminKey)
	if err := session.Save(); err != nil {
		log.Error().Err(err).Msg("Failed to clear session")
	}
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out"})
}
