package activity

import (
	"net/http"

	"buslane/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	ListNotifications(c *gin.Context)
	ListLogs(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) ListNotifications(c *gin.Context) {
	var query FeedQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Message(c, http.StatusBadRequest, "invalid query parameters")
		return
	}

	feed, err := ctrl.service.ListNotifications(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, feed)
}

func (ctrl *controller) ListLogs(c *gin.Context) {
	var query FeedQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Message(c, http.StatusBadRequest, "invalid query parameters")
		return
	}

	feed, err := ctrl.service.ListLogs(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, feed)
}
