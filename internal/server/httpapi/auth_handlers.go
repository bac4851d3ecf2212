package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/konasal/konasal-backend/internal/common"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

const msgInvalidBody = "Invalid request body"

func (s *HTTPServer) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	_, err := s.users.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorAlreadyExists):
			respondMessage(c, http.StatusBadRequest, "User already exists")
		case errors.Is(err, common.ErrorValidation):
			respondMessage(c, http.StatusBadRequest, "Please provide name, email and password")
		default:
			s.logFailure(c, "register", err)
			respondMessage(c, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	respondMessage(c, http.StatusCreated, "User registered successfully")
}

func (s *HTTPServer) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	res, err := s.users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			respondMessage(c, http.StatusBadRequest, "Please provide email and password")
		case errors.Is(err, common.ErrorNotFound):
			respondMessage(c, http.StatusBadRequest, "User not found")
		case errors.Is(err, common.ErrorUnauthorized):
			respondMessage(c, http.StatusBadRequest, "Invalid credentials")
		default:
			s.logFailure(c, "login", err)
			respondMessage(c, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": res.Token, "user": res.User})
}

func (s *HTTPServer) forgotPassword(c *gin.Context) {
	var req forgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if err := s.users.ForgotPassword(c.Request.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			respondMessage(c, http.StatusBadRequest, "Please provide an email")
		case errors.Is(err, common.ErrorNotFound):
			respondMessage(c, http.StatusNotFound, "User not found")
		default:
			s.logFailure(c, "forgot password", err)
			respondMessage(c, http.StatusInternalServerError, "Failed to send password reset email")
		}
		return
	}

	respondMessage(c, http.StatusOK, "Password reset email sent successfully")
}

func (s *HTTPServer) resetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondMessage(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	if err := s.users.ResetPassword(c.Request.Context(), req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			respondMessage(c, http.StatusBadRequest, "Please provide token and newPassword")
		case errors.Is(err, common.ErrInvalidResetToken):
			respondMessage(c, http.StatusBadRequest, "Invalid or expired token")
		default:
			s.logFailure(c, "reset password", err)
			respondMessage(c, http.StatusInternalServerError, msgInternal)
		}
		return
	}

	respondMessage(c, http.StatusOK, "Password reset successful")
}

func (s *HTTPServer) me(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		respondMessage(c, http.StatusUnauthorized, "Not authorized, no token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}
