package httpapi

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/konasal/konasal-backend/internal/common"
	"github.com/konasal/konasal-backend/internal/server/models"
)

type leadRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	OtherInfo string `json:"otherInfo"`
}

const msgMissingLeadFields = "Please provide all required fields."

func (s *HTTPServer) submitLead(c *gin.Context) {
	var req leadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, msgMissingLeadFields)
		return
	}

	lead, url, err := s.leads.Submit(c.Request.Context(), &models.EbookLead{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		OtherInfo: req.OtherInfo,
	})
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			respondMessage(c, http.StatusBadRequest, msgMissingLeadFields)
		case errors.Is(err, common.ErrorAlreadyExists):
			respondMessage(c, http.StatusConflict, "This email has already been submitted!")
		default:
			s.logFailure(c, "submit lead", err)
			respondMessage(c, http.StatusInternalServerError, "Something went wrong. Please try again later.")
		}
		return
	}

	body := gin.H{
		"message": "Thank you! Your information has been submitted.",
		"lead":    lead,
	}
	if url != "" {
		body["downloadUrl"] = url
	}
	c.JSON(http.StatusCreated, body)
}

func (s *HTTPServer) listLeads(c *gin.Context) {
	leads, err := s.leads.List(c.Request.Context())
	if err != nil {
		s.logFailure(c, "list leads", err)
		respondMessage(c, http.StatusInternalServerError, "Failed to fetch eBook leads.")
		return
	}
	c.JSON(http.StatusOK, leads)
}

func (s *HTTPServer) deleteLead(c *gin.Context) {
	if err := s.leads.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			respondMessage(c, http.StatusNotFound, "Lead not found")
			return
		}
		s.logFailure(c, "delete lead", err)
		respondMessage(c, http.StatusInternalServerError, "Failed to delete lead.")
		return
	}
	respondMessage(c, http.StatusOK, "Lead deleted successfully")
}

func (s *HTTPServer) exportLeads(c *gin.Context) {
	filename := "ebook_leads_" + time.Now().UTC().Format("20060102") + ".xlsx"
	err := writeXLSX(c, filename, func(w io.Writer) error {
		return s.leads.WriteExport(c.Request.Context(), w)
	})
	if err != nil {
		s.logFailure(c, "export leads", err)
		respondMessage(c, http.StatusInternalServerError, "Failed to export eBook leads.")
	}
}
