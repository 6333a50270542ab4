package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tripora/server/internal/models"
	"github.com/tripora/server/internal/services"
)

// SubmitContactForm forwards an enquiry to the agency inbox.
func SubmitContactForm(cs *services.ContactService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req services.ContactFormInput
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		if err := cs.SubmitForm(req); err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "message sent successfully"))
	}
}

func ContactInfo(cs *services.ContactService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.SuccessResponse(cs.Info(), "contact info retrieved"))
	}
}
