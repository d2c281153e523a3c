package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/avelichko/inkwell/internal/auth"
	"github.com/avelichko/inkwell/internal/tasks"
)

// AccountsController handles registration, sign-in, and API tokens.
// Signing in schedules a reconciliation pass against the mirror so the
// local store converges with whatever the account already has remotely.
type AccountsController struct {
	service    *auth.Service
	sessions   *auth.SessionManager
	taskClient TaskEnqueuer
}

func NewAccountsController(service *auth.Service, sessions *auth.SessionManager, taskClient TaskEnqueuer) *AccountsController {
	return &AccountsController{
		service:    service,
		sessions:   sessions,
		taskClient: taskClient,
	}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// Register creates an account and starts a session for it.
// POST /api/auth/register
func (controller *AccountsController) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := controller.service.CreateUser(req.Username, req.Password)
	switch {
	case errors.Is(err, auth.ErrUserExists):
		respondError(c, http.StatusConflict, err.Error())
		return
	case err != nil:
		respondBadRequest(c, err.Error())
		return
	}

	if err := controller.sessions.CreateSession(c.Request, user); err != nil {
		respondInternalError(c, err, "create session")
		return
	}
	respondCreated(c, gin.H{"username": user.Username, "uid": user.UID})
}

// Login verifies credentials, starts a session, and schedules
// reconciliation for the account's mirror data.
// POST /api/auth/login
func (controller *AccountsController) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	user, err := controller.service.Authenticate(req.Username, req.Password)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if err := controller.sessions.CreateSession(c.Request, user); err != nil {
		respondInternalError(c, err, "create session")
		return
	}

	enqueue(c, controller.taskClient, tasks.ReconcileTask{UID: user.UID})
	c.IndentedJSON(http.StatusOK, gin.H{"username": user.Username, "uid": user.UID})
}

// Logout destroys the current session. Local data stays on device.
// POST /api/auth/logout
func (controller *AccountsController) Logout(c *gin.Context) {
	if err := controller.sessions.DestroySession(c.Request); err != nil {
		respondInternalError(c, err, "destroy session")
		return
	}
	respondSuccess(c, "signed out")
}

// Me returns the authenticated user.
// GET /api/auth/me
func (controller *AccountsController) Me(c *gin.Context) {
	userID := auth.CurrentUserID(c)
	if userID == 0 {
		respondError(c, http.StatusUnauthorized, "not signed in")
		return
	}
	user, err := controller.service.GetUserByID(userID)
	if err != nil {
		respondInternalError(c, err, "load user")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"username": user.Username, "uid": user.UID})
}

// GenerateToken issues a fresh API token, shown once.
// POST /api/auth/token
func (controller *AccountsController) GenerateToken(c *gin.Context) {
	userID := auth.CurrentUserID(c)
	if userID == 0 {
		respondError(c, http.StatusUnauthorized, "not signed in")
		return
	}
	token, err := controller.service.GenerateToken(userID)
	if err != nil {
		respondInternalError(c, err, "generate token")
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"token": token})
}

// RevokeToken invalidates the user's API token.
// DELETE /api/auth/token
func (controller *AccountsController) RevokeToken(c *gin.Context) {
	userID := auth.CurrentUserID(c)
	if userID == 0 {
		respondError(c, http.StatusUnauthorized, "not signed in")
		return
	}
	if err := controller.service.RevokeToken(userID); err != nil {
		respondInternalError(c, err, "revoke token")
		return
	}
	respondSuccess(c, "token revoked")
}

// ChangePassword updates the user's password.
// POST /api/auth/password
func (controller *AccountsController) ChangePassword(c *gin.Context) {
	userID := auth.CurrentUserID(c)
	if userID == 0 {
		respondError(c, http.StatusUnauthorized, "not signed in")
		return
	}

	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	err := controller.service.ChangePassword(userID, req.OldPassword, req.NewPassword)
	switch {
	case errors.Is(err, auth.ErrInvalidPassword):
		respondError(c, http.StatusUnauthorized, "invalid password")
		return
	case errors.Is(err, auth.ErrPasswordTooShort), errors.Is(err, auth.ErrPasswordTooLong):
		respondBadRequest(c, err.Error())
		return
	case err != nil:
		respondInternalError(c, err, "change password")
		return
	}
	respondSuccess(c, "password changed")
}
