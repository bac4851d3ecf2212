// Package httpapi exposes the services over HTTP/JSON using gin.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/konasal/konasal-backend/internal/logging"
	"github.com/konasal/konasal-backend/internal/server/models"
	"github.com/konasal/konasal-backend/internal/server/services"
)

const shutdownTimeout = 10 * time.Second

// UserAPI is the part of services.UserService the handlers use.
type UserAPI interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

type LeadAPI interface {
	Submit(ctx context.Context, lead *models.EbookLead) (*models.EbookLead, string, error)
	List(ctx context.Context) ([]*models.EbookLead, error)
	Delete(ctx context.Context, id string) error
	WriteExport(ctx context.Context, w io.Writer) error
}

type FormAPI interface {
	Submit(ctx context.Context, userID, formType string, data json.RawMessage) (*models.FormSubmission, error)
	List(ctx context.Context) ([]*models.FormSubmission, error)
	Delete(ctx context.Context, id string) error
}

type HTTPServer struct {
	address        string
	users          UserAPI
	leads          LeadAPI
	forms          FormAPI
	logger         logging.Logger
	allowedOrigins map[string]struct{}
}

func NewHTTPServer(a string, l logging.Logger, us UserAPI, ls LeadAPI, fs FormAPI, allowedOrigins []string) *HTTPServer {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}
	return &HTTPServer{
		address:        a,
		logger:         l.With("module", "http_server"),
		users:          us,
		leads:          ls,
		forms:          fs,
		allowedOrigins: origins,
	}
}

// Router builds the gin engine with every route and middleware attached.
func (s *HTTPServer) Router() *gin.Engine {
	r := gin.New()
	r.Use(s.recovery(), s.requestLogger(), s.cors())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.register)
	authGroup.POST("/login", s.login)
	authGroup.POST("/forgot-password", s.forgotPassword)
	authGroup.POST("/reset-password", s.resetPassword)
	authGroup.GET("/me", s.authRequired(), s.me)

	ebook := api.Group("/ebook")
	ebook.POST("", s.submitLead)
	ebook.GET("", s.listLeads)
	ebook.GET("/export", s.authRequired(), s.adminOnly(), s.exportLeads)
	ebook.DELETE("/:id", s.deleteLead)

	forms := api.Group("/forms")
	forms.POST("", s.submitForm)
	forms.GET("", s.authRequired(), s.adminOnly(), s.listForms)
	forms.DELETE("/:id", s.authRequired(), s.adminOnly(), s.deleteForm)

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return <-stopped
}

// writeXLSX buffers the workbook so a failure can still be reported as JSON.
func writeXLSX(c *gin.Context, filename string, write func(w io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	return nil
}
