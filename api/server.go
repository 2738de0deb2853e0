package api

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stellarlinkco/qa-bench/internal/config"
	"github.com/stellarlinkco/qa-bench/internal/dataset"
	"github.com/stellarlinkco/qa-bench/internal/leaderboard"
)

type Server struct {
	router   *gin.Engine
	config   *config.Config
	datasets *dataset.Registry
	lbStore  *leaderboard.Store
}

func NewServer(cfg *config.Config, datasets *dataset.Registry, lbStore *leaderboard.Store) (*Server, error) {
	r := gin.New()
	s := &Server{
		router:   r,
		config:   cfg,
		datasets: datasets,
		lbStore:  lbStore,
	}
	s.registerMiddleware()
	if err := s.registerRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) Run(addr string) error {
	if s == nil || s.router == nil {
		return errors.New("api: nil server")
	}
	addr = strings.TrimSpace(addr)
	if addr == "" {
		addr = ":8080"
	}
	return s.router.Run(addr)
}
