package api

import (
	"context"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Server hosts the JSON API.
type Server struct {
	e    *echo.Echo
	addr string
}

// NewServer builds the echo server with all routes registered.
func NewServer(addr string, h *Handler) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	h.RegisterRoutes(e)

	return &Server{e: e, addr: addr}
}

// Start launches the server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[api] server listening on %s", s.addr)
		if err := s.e.Start(s.addr); err != nil && err != http.ErrServerClosed {
			log.Printf("[api] server error: %v", err)
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) {
	s.e.Shutdown(ctx)
}
