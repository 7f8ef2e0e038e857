package trips

import (
	"net/http"
	"strconv"

	"buslane/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	CreateTrip(c *gin.Context)
	GetTrip(c *gin.Context)
	UpdateTrip(c *gin.Context)
	DeleteTrip(c *gin.Context)
	ListTrips(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) CreateTrip(c *gin.Context) {
	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Message(c, http.StatusBadRequest, "invalid request body")
		return
	}

	operatorID, exists := c.Get("user_id")
	if !exists {
		response.Message(c, http.StatusUnauthorized, "not authenticated")
		return
	}
	operatorUUID, err := uuid.Parse(operatorID.(string))
	if err != nil {
		response.Message(c, http.StatusInternalServerError, "invalid operator id")
		return
	}

	trip, err := ctrl.service.CreateTrip(c.Request.Context(), operatorUUID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, trip)
}

func (ctrl *controller) GetTrip(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Message(c, http.StatusBadRequest, "invalid trip id")
		return
	}

	trip, err := ctrl.service.GetTripResponse(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, trip)
}

func (ctrl *controller) UpdateTrip(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Message(c, http.StatusBadRequest, "invalid trip id")
		return
	}

	var req UpdateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Message(c, http.StatusBadRequest, "invalid request body")
		return
	}

	trip, err := ctrl.service.UpdateTrip(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, trip)
}

func (ctrl *controller) DeleteTrip(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Message(c, http.StatusBadRequest, "invalid trip id")
		return
	}

	force, _ := strconv.ParseBool(c.DefaultQuery("force", "false"))

	if err := ctrl.service.DeleteTrip(c.Request.Context(), id, force); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": id.String()})
}

func (ctrl *controller) ListTrips(c *gin.Context) {
	var query TripListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Message(c, http.StatusBadRequest, "invalid query parameters")
		return
	}

	result, err := ctrl.service.ListTrips(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}
