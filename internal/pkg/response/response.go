package response

import "github.com/gin-gonic/gin"

// Envelope is the JSON shape every endpoint returns:
// {success, data?} on the happy path, {success, error, message} otherwise.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   int         `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, Envelope{Success: true, Data: data})
}

func Error(c *gin.Context, status, code int, message string) {
	c.JSON(status, Envelope{Success: false, Error: code, Message: message})
}
