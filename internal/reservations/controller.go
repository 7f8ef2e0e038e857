package reservations

import (
	"net/http"

	"buslane/internal/shared/utils/response"
	"buslane/internal/users"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	Book(c *gin.Context)
	GetReservation(c *gin.Context)
	ListMine(c *gin.Context)
	ListTakenSeats(c *gin.Context)
	ListAll(c *gin.Context)
	Cancel(c *gin.Context)
	ValidateBoarding(c *gin.Context)
	Purge(c *gin.Context)
	SeatMap(c *gin.Context)
	RebuildSeatMap(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func requester(c *gin.Context) (uuid.UUID, bool, bool) {
	raw, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false, false
	}
	id, err := uuid.Parse(raw.(string))
	if err != nil {
		return uuid.Nil, false, false
	}
	role, _ := c.Get("user_role")
	return id, role == string(users.RoleAdmin), true
}

func (ctrl *controller) Book(c *gin.Context) {
	var req CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Message(c, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, _, ok := requester(c)
	if !ok {
		response.Message(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	reservation, err := ctrl.service.Book(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, reservation)
}

func (ctrl *controller) GetReservation(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Message(c, http.StatusBadRequest, "invalid reservation id")
		return
	}

	userID, isAdmin, ok := requester(c)
	if !ok {
		response.Message(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	reservation, err := ctrl.service.GetReservation(c.Request.Context(), id, userID, isAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reservation)
}

func (ctrl *controller) ListMine(c *gin.Context) {
	userID, _, ok := requester(c)
	if !ok {
		response.Message(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	reservations, err := ctrl.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reservations)
}

// ListTakenSeats serves the public booking page: just the occupied seat
// numbers, no reservation details.
func (ctrl *controller) ListTakenSeats(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("tripId"))
	if err != nil {
		response.Message(c, http.StatusBadRequest, "invalid trip id")
		return
	}

	seats, err := ctrl.service.TakenSeats(c.Request.Context(), tripID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, seats)
}

func (ctrl *controller) ListAll(c *gin.Context) {
	var query ReservationListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Message(c, http.StatusBadRequest, "invalid query parameters")
		return
	}

	result, err := ctrl.service.ListAll(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

func (ctrl *controller) Cancel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Message(c, http.StatusBadRequest, "invalid reservation id")
		return
	}

	userID, isAdmin, ok := requester(c)
	if !ok {
		response.Message(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	reservation, err := ctrl.service.Cancel(c.Request.Context(), id, userID, isAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reservation)
}

func (ctrl *controller) ValidateBoarding(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Message(c, http.StatusBadRequest, "invalid reservation id")
		return
	}

	userID, _, ok := requester(c)
	if !ok {
		response.Message(c, http.StatusUnauthorized, "not authenticated")
		return
	}

	reservation, err := ctrl.service.ValidateBoarding(c.Request.Context(), id, userID.String())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, reservation)
}

func (ctrl *controller) Purge(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Message(c, http.StatusBadRequest, "invalid reservation id")
		return
	}

	if err := ctrl.service.Purge(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": id.String()})
}

func (ctrl *controller) SeatMap(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Message(c, http.StatusBadRequest, "invalid trip id")
		return
	}

	seats, err := ctrl.service.SeatMap(c.Request.Context(), tripID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, seats)
}

func (ctrl *controller) RebuildSeatMap(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Message(c, http.StatusBadRequest, "invalid trip id")
		return
	}

	if err := ctrl.service.RebuildSeatMap(c.Request.Context(), tripID); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"rebuilt": tripID.String()})
}
