package response

import (
	"buslane/internal/shared/faults"

	"github.com/gin-gonic/gin"
)

// JSON writes a success payload as-is.
func JSON(c *gin.Context, code int, data interface{}) {
	c.JSON(code, data)
}

// Message writes a {"message": ...} body with the given status.
func Message(c *gin.Context, code int, message string) {
	c.JSON(code, ErrorBody{Message: message})
}

// Error maps a domain error to its HTTP status and writes the message body.
func Error(c *gin.Context, err error) {
	c.JSON(faults.HTTPStatus(err), ErrorBody{Message: faults.MessageOf(err)})
}
