package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/konasal/konasal-backend/internal/common"
)

type formRequest struct {
	UserID   string          `json:"userId"`
	FormType string          `json:"formType"`
	Data     json.RawMessage `json:"data"`
}

const msgMissingFormFields = "Missing required fields"

func (s *HTTPServer) submitForm(c *gin.Context) {
	var req formRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgMissingFormFields)
		return
	}

	form, err := s.forms.Submit(c.Request.Context(), req.UserID, req.FormType, req.Data)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrUnknownUser):
			respondError(c, http.StatusBadRequest, "User not found")
		case errors.Is(err, common.ErrorValidation):
			respondError(c, http.StatusBadRequest, msgMissingFormFields)
		default:
			s.logFailure(c, "submit form", err)
			respondError(c, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	c.JSON(http.StatusCreated, form)
}

func (s *HTTPServer) listForms(c *gin.Context) {
	forms, err := s.forms.List(c.Request.Context())
	if err != nil {
		s.logFailure(c, "list forms", err)
		respondError(c, http.StatusInternalServerError, msgInternal)
		return
	}
	c.JSON(http.StatusOK, forms)
}

func (s *HTTPServer) deleteForm(c *gin.Context) {
	if err := s.forms.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			respondError(c, http.StatusNotFound, "Form not found")
			return
		}
		s.logFailure(c, "delete form", err)
		respondError(c, http.StatusInternalServerError, msgInternal)
		return
	}
	respondMessage(c, http.StatusOK, "Form deleted successfully")
}
