package auth

import (
	"net/http"

	"buslane/internal/shared/utils/response"
	"buslane/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	Register(c *gin.Context)
	Login(c *gin.Context)
	RefreshToken(c *gin.Context)
	ChangePassword(c *gin.Context)
	GetMe(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Message(c, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := ctrl.service.Register(c.Request.Context(), &req)
	if err != nil {
		response.Error(c, err)
		return
	}

	logger.GetDefault().LogAuthSuccess(c.Request.Context(), resp.User.ID, "register")
	response.JSON(c, http.StatusCreated, resp)
}

func (ctrl *controller) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Message(c, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := ctrl.service.Login(c.Request.Context(), &req)
	if err != nil {
		logger.GetDefault().LogAuthFailure(c.Request.Context(), "login rejected", c.ClientIP())
		response.Error(c, err)
		return
	}

	logger.GetDefault().LogAuthSuccess(c.Request.Context(), resp.User.ID, "login")
	response.JSON(c, http.StatusOK, resp)
}

func (ctrl *controller) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Message(c, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := ctrl.service.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, pair)
}

func (ctrl *controller) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Message(c, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		response.Message(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := ctrl.service.ChangePassword(c.Request.Context(), userID.(string), &req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"changed": true})
}

func (ctrl *controller) GetMe(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.Message(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	profile, err := ctrl.service.GetProfile(c.Request.Context(), userID.(string))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile)
}
