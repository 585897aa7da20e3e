package handlers

import (
	"net/http"

	"taskhive/models"
	"taskhive/services/user"
	"taskhive/utils"

	"github.com/gin-gonic/gin"
)

// UserHandler serves account endpoints.
type UserHandler struct {
	Svc user.UserService
}

func NewUserHandler(svc user.UserService) *UserHandler {
	return &UserHandler{Svc: svc}
}

func (h *UserHandler) RegisterUserHandler(c *gin.Context) {
	var req models.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.Svc.Register(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *UserHandler) AuthenticateUserHandler(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	resp, err := h.Svc.Login(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) LogoutHandler(c *gin.Context) {
	if err := h.Svc.Logout(c.Request.Context(), c.GetString("token")); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (h *UserHandler) MeHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	u, err := h.Svc.Me(c.Request.Context(), actor.ID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *UserHandler) UpdateFCMTokenHandler(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var body struct {
		FCMToken string `json:"fcmToken"`
	}
	if !bindJSON(c, &body) {
		return
	}
	if err := h.Svc.UpdateFCMToken(c.Request.Context(), actor.ID, body.FCMToken); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "FCM token updated"})
}
