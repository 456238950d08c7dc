// Package server wires the HTTP application that serves the frontend build.
package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/f4ah6o/buildserve-go/internal/config"
	"github.com/f4ah6o/buildserve-go/internal/logger"
	"github.com/f4ah6o/buildserve-go/internal/static"
)

// Server is the static file application bound to one port.
type Server struct {
	cfg    config.Config
	log    *slog.Logger
	out    io.Writer
	engine *gin.Engine
	http   *http.Server
}

// New builds the application. The startup line is written to out.
// The caller picks the gin mode; the CLI runs in release mode so gin's
// debug output never reaches stdout.
func New(cfg config.Config, log *slog.Logger, out io.Writer) *Server {
	engine := gin.New()
	engine.Use(requestID(), recovery(log))
	if cfg.Log.Access {
		engine.Use(accessLog(log))
	}
	engine.Use(static.Serve(static.NewDir(cfg.Root), log))

	s := &Server{
		cfg:    cfg,
		log:    log,
		out:    out,
		engine: engine,
	}
	s.http = &http.Server{
		Addr:    s.Addr(),
		Handler: engine,
	}
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return ":" + strconv.Itoa(s.cfg.Port)
}

// ListenAndServe binds the configured port and serves until the listener
// fails.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.Addr(), err)
	}
	return s.Serve(ln)
}

// Serve announces the bound port and serves connections from ln.
func (s *Server) Serve(ln net.Listener) error {
	port := s.cfg.Port
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		port = addr.Port
	}

	s.log.Info("server.listening", "addr", ln.Addr().String(), "root", s.cfg.Root)
	if err := logger.Banner(s.out, port); err != nil {
		s.log.Warn("server.banner_failed", "error", err)
	}

	err := s.http.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close stops the server immediately, dropping open connections.
func (s *Server) Close() error {
	return s.http.Close()
}
