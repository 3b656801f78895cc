// Package server exposes the submission pipeline over HTTP. Routing is a
// thin wrapper: request decoding, tenant scoping and error mapping only; all
// behaviour lives in the service layer.
package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yijian0905/erp-einvoice/internal/service"
)

// Config holds server configuration.
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server is the HTTP API server.
type Server struct {
	config *Config
	router *gin.Engine
	svc    *service.Service
}

// NewServer creates the API server over an orchestrator instance.
func NewServer(config *Config, svc *service.Service) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	s := &Server{
		config: config,
		router: router,
		svc:    svc,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1", tenantRequired())
	{
		v1.POST("/einvoices", s.handleCreate)
		v1.GET("/einvoices", s.handleList)
		v1.GET("/einvoices/:id", s.handleGet)
		v1.POST("/einvoices/:id/validate", s.handleValidate)
		v1.POST("/einvoices/:id/submit", s.handleSubmit)
		v1.POST("/einvoices/:id/sync", s.handleSync)
		v1.POST("/einvoices/:id/retry", s.handleRetry)
		v1.POST("/einvoices/:id/cancel", s.handleCancel)
		v1.GET("/einvoices/:id/link", s.handleLink)
		v1.GET("/einvoices/:id/qr", s.handleQR)

		v1.GET("/documents/recent", s.handleRecent)
		v1.GET("/taxpayer/validate/:tin", s.handleValidateTIN)

		v1.PUT("/credentials", s.handlePutCredential)
		v1.GET("/credentials", s.handleGetCredential)
		v1.DELETE("/credentials", s.handleDeleteCredential)
		v1.POST("/credentials/test", s.handleTestConnection)
	}
}

// tenantRequired scopes every request to the tenant named in X-Tenant-ID.
// Authentication of the caller happens upstream.
func tenantRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant := c.GetHeader("X-Tenant-ID")
		if tenant == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
				Error: "X-Tenant-ID header is required",
			})
			return
		}
		c.Set("tenant", tenant)
		c.Next()
	}
}

func tenantOf(c *gin.Context) string {
	return c.GetString("tenant")
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers and tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
