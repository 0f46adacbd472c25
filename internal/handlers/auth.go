package handlers

import (
	"errors"
	"net/http"
	"strings"

	"oms-customers/internal/database"
	"oms-customers/internal/httputil"
	"oms-customers/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const msgBadCredentials = "Invalid username or password."

type AuthHandler struct {
	users UserFinder
	log   *logrus.Logger
}

func NewAuthHandler(users UserFinder, log *logrus.Logger) *AuthHandler {
	return &AuthHandler{users: users, log: log}
}

type loginForm struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Login checks credentials and starts a session with a fresh CSRF token.
func (h *AuthHandler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBind(&form); err != nil {
		httputil.Fail(c, http.StatusBadRequest, "Invalid request.")
		return
	}

	form.Username = strings.TrimSpace(form.Username)
	if form.Username == "" || form.Password == "" {
		httputil.Fail(c, http.StatusBadRequest, msgBadCredentials)
		return
	}

	user, err := h.users.UserByUsername(c.Request.Context(), form.Username)
	if errors.Is(err, database.ErrNotFound) {
		httputil.Fail(c, http.StatusBadRequest, msgBadCredentials)
		return
	}
	if err != nil {
		h.log.WithError(err).Error("failed to load user for login")
		httputil.Fail(c, http.StatusInternalServerError, msgUnexpected)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.Password)); err != nil {
		httputil.Fail(c, http.StatusBadRequest, msgBadCredentials)
		return
	}

	token := uuid.NewString()

	sess := sessions.Default(c)
	sess.Clear()
	sess.Set(middleware.SessionUserID, user.ID)
	sess.Set(middleware.SessionRole, string(user.Role))
	sess.Set(middleware.SessionCSRF, token)
	if err := sess.Save(); err != nil {
		h.log.WithError(err).Error("failed to save session")
		httputil.Fail(c, http.StatusInternalServerError, msgUnexpected)
		return
	}

	h.log.WithField("user_id", user.ID).Info("user logged in")
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Logged in.",
		"csrf_token": token,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	_ = sess.Save()

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out."})
}

// Session returns the current user and the CSRF token forms must echo back.
func (h *AuthHandler) Session(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"user_id":    middleware.CurrentUserID(c),
		"role":       middleware.CurrentRole(c),
		"csrf_token": middleware.CSRFToken(c),
	})
}
