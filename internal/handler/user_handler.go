package handler

import (
	"net/http"
	"strings"

	"miniblog/internal/middleware"
	"miniblog/internal/pkg"
	"miniblog/internal/service"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(emailCfg pkg.SMTPConfig) *UserHandler {
	return &UserHandler{
		svc: service.NewUserService(emailCfg),
	}
}

func (h *UserHandler) SignupForm(c *gin.Context) {
	c.HTML(http.StatusOK, "signup.html", gin.H{})
}

func (h *UserHandler) Signup(c *gin.Context) {
	username := c.PostForm("username")
	email := c.PostForm("email")

	fieldErrs, err := h.svc.Register(username, c.PostForm("password"), email)
	if err != nil {
		serverError(c, err)
		return
	}
	if fieldErrs != nil {
		c.HTML(http.StatusOK, "signup.html", gin.H{
			"Errors":   fieldErrs,
			"Username": username,
			"Email":    email,
		})
		return
	}

	c.Redirect(http.StatusFound, middleware.LoginPath)
}

func (h *UserHandler) LoginForm(c *gin.Context) {
	c.HTML(http.StatusOK, "login.html", gin.H{"Next": c.Query("next")})
}

// Login sets the session cookie and returns the user to the page they
// originally asked for.
func (h *UserHandler) Login(c *gin.Context) {
	username := c.PostForm("username")
	next := c.PostForm("next")

	token, err := h.svc.Login(username, c.PostForm("password"))
	if err != nil {
		c.HTML(http.StatusOK, "login.html", gin.H{
			"Error":    err.Error(),
			"Username": username,
			"Next":     next,
		})
		return
	}

	c.SetCookie(middleware.SessionCookieName, token,
		int(pkg.SessionTokenTTL.Seconds()), "/", "", false, true)

	// Only follow local paths; anything else goes home.
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		next = "/"
	}
	c.Redirect(http.StatusFound, next)
}

func (h *UserHandler) Logout(c *gin.Context) {
	userID := c.GetUint64(middleware.ContextUserIDKey)
	if err := h.svc.Logout(userID); err != nil {
		serverError(c, err)
		return
	}
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/")
}

func (h *UserHandler) PasswordChangeForm(c *gin.Context) {
	c.HTML(http.StatusOK, "password_change.html", gin.H{
		"Errors":   service.FieldErrors(nil),
		"Username": c.GetString(middleware.ContextUsernameKey),
	})
}

// PasswordChange swaps the password for the logged-in user. The session
// is invalidated on success, so the cookie is cleared too.
func (h *UserHandler) PasswordChange(c *gin.Context) {
	userID := c.GetUint64(middleware.ContextUserIDKey)

	fieldErrs, err := h.svc.ChangePassword(userID,
		c.PostForm("old_password"), c.PostForm("new_password"))
	if err != nil {
		serverError(c, err)
		return
	}
	if fieldErrs != nil {
		c.HTML(http.StatusOK, "password_change.html", gin.H{
			"Errors":   fieldErrs,
			"Username": c.GetString(middleware.ContextUsernameKey),
		})
		return
	}

	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	c.Redirect(http.StatusFound, "/auth/password_change/done/")
}

func (h *UserHandler) PasswordChangeDoneForm(c *gin.Context) {
	c.HTML(http.StatusOK, "password_change_done.html", gin.H{})
}

func (h *UserHandler) PasswordResetForm(c *gin.Context) {
	c.HTML(http.StatusOK, "password_reset.html", gin.H{})
}

// PasswordReset emails a one-time code and moves on to the confirm page.
func (h *UserHandler) PasswordReset(c *gin.Context) {
	email := c.PostForm("email")
	if err := h.svc.SendResetCode(email); err != nil {
		c.HTML(http.StatusOK, "password_reset.html", gin.H{"Error": err.Error(), "Email": email})
		return
	}
	c.Redirect(http.StatusFound, "/auth/password_reset/done/")
}

func (h *UserHandler) PasswordResetDoneForm(c *gin.Context) {
	c.HTML(http.StatusOK, "password_reset_done.html", gin.H{})
}

// PasswordResetDone verifies the code and replaces the password.
func (h *UserHandler) PasswordResetDone(c *gin.Context) {
	email := c.PostForm("email")
	if err := h.svc.ResetPassword(email, c.PostForm("code"), c.PostForm("new_password")); err != nil {
		c.HTML(http.StatusOK, "password_reset_done.html", gin.H{"Error": err.Error(), "Email": email})
		return
	}
	c.Redirect(http.StatusFound, middleware.LoginPath)
}
