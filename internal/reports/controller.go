package reports

import (
	"net/http"

	"buslane/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	Summary(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) Summary(c *gin.Context) {
	summary, err := ctrl.service.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary)
}
