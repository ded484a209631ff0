// File: /controllers/auth_controller.go
package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"eventhub-api/middleware"
	"eventhub-api/models"
	"eventhub-api/services"
	"eventhub-api/utils"
)

type AuthController struct {
	auth         *services.AuthService
	activation   *services.ActivationService
	emailService *services.EmailService
	secureCookie bool
	log          *logrus.Entry
}

func NewAuthController(auth *services.AuthService, activation *services.ActivationService, emailService *services.EmailService, secureCookie bool, l *logrus.Logger) *AuthController {
	return &AuthController{
		auth:         auth,
		activation:   activation,
		emailService: emailService,
		secureCookie: secureCookie,
		log:          l.WithField("from", "auth-controller"),
	}
}

type SignupRequest struct {
	Username        string `form:"username" json:"username" binding:"required,max=150"`
	Email           string `form:"email" json:"email" binding:"required"`
	Password        string `form:"password" json:"password" binding:"required"`
	PasswordConfirm string `form:"password_confirm" json:"password_confirm" binding:"required"`
	Role            string `form:"role" json:"role"`
}

type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"`
	Password string `form:"password" json:"password" binding:"required"`
}

func roleChoices() []string {
	choices := make([]string, len(models.RolesByPriority))
	for i, role := range models.RolesByPriority {
		choices[i] = role.String()
	}
	return choices
}

func (ac *AuthController) SignupPage(c *gin.Context) {
	utils.SendPage(c, "accounts/signup", gin.H{
		"roles":        roleChoices(),
		"default_role": models.RoleParticipant.String(),
	})
}

func (ac *AuthController) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.RedirectWithFlash(c, utils.FlashError, "Please fill in all required fields.", "/signup")
		return
	}
	if req.Password != req.PasswordConfirm {
		utils.RedirectWithFlash(c, utils.FlashError, "The two password fields didn't match.", "/signup")
		return
	}

	role := models.RoleParticipant
	if req.Role != "" {
		parsed, err := models.ParseRole(req.Role)
		if err != nil {
			utils.RedirectWithFlash(c, utils.FlashError, "Select a valid role.", "/signup")
			return
		}
		role = parsed
	}

	user, profile, err := ac.auth.SignUp(c.Request.Context(), services.SignUpRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	})
	if err != nil {
		redirectWithError(c, ac.log, err, "/signup")
		return
	}

	if err := ac.emailService.SendActivationEmail(c.Request.Context(), user, profile.ActivationToken); err != nil {
		utils.AddFlash(c, utils.FlashWarning, "Your account was created but the activation email could not be sent.")
	}
	utils.RedirectWithFlash(c, utils.FlashSuccess, "Registration successful! Please check your email to activate your account.", middleware.LoginPath)
}

func (ac *AuthController) Activate(c *gin.Context) {
	alreadyActive, err := ac.activation.Activate(c.Request.Context(), c.Param("token"))
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			utils.RedirectWithFlash(c, utils.FlashError, "Invalid activation link.", "/signup")
			return
		}
		redirectWithError(c, ac.log, err, "/signup")
		return
	}
	if alreadyActive {
		utils.RedirectWithFlash(c, utils.FlashInfo, "Your account is already activated. You can log in.", middleware.LoginPath)
		return
	}
	utils.RedirectWithFlash(c, utils.FlashSuccess, "Your account has been activated successfully! You can now log in.", middleware.LoginPath)
}

func (ac *AuthController) LoginPage(c *gin.Context) {
	utils.SendPage(c, "accounts/login", gin.H{
		"next": utils.SafeRedirect(c.Query("next"), ""),
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	next := c.PostForm("next")
	if next == "" {
		next = c.Query("next")
	}
	next = utils.SafeRedirect(next, "/")
	loginURL := middleware.LoginPath
	if next != "/" {
		loginURL += "?next=" + url.QueryEscape(next)
	}

	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		utils.RedirectWithFlash(c, utils.FlashError, "Invalid username or password.", loginURL)
		return
	}

	user, err := ac.auth.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		redirectWithError(c, ac.log, err, loginURL)
		return
	}

	token, expiresAt, err := ac.auth.IssueToken(user)
	if err != nil {
		redirectWithError(c, ac.log, err, loginURL)
		return
	}
	middleware.SetSession(c, token, int(time.Until(expiresAt).Seconds()), ac.secureCookie)

	ac.log.WithField("user_id", user.ID).Info("user logged in")
	c.Redirect(http.StatusSeeOther, next)
}

func (ac *AuthController) Logout(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookie); err == nil {
		if err := ac.auth.Logout(c.Request.Context(), token); err != nil {
			ac.log.WithError(err).Warn("failed to revoke session token")
		}
	}
	middleware.ClearSession(c)
	utils.RedirectWithFlash(c, utils.FlashSuccess, "You have been logged out successfully.", middleware.LoginPath)
}

func (ac *AuthController) Profile(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)

	profile, err := ac.auth.Profile(c.Request.Context(), user)
	if err != nil {
		renderError(c, ac.log, err)
		return
	}

	utils.SendPage(c, "accounts/profile", gin.H{
		"user":        user,
		"profile":     profile,
		"user_groups": user.Groups,
	})
}
