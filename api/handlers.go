package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stellarlinkco/qa-bench/internal/dataset"
)

type datasetInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	HasEntries  bool   `json:"has_entries"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleListDatasets(c *gin.Context) {
	reg := s.datasets
	if reg == nil {
		reg = dataset.DefaultRegistry()
	}

	stored := make(map[string]struct{})
	if s.lbStore != nil {
		names, err := s.lbStore.Datasets(c.Request.Context())
		if err != nil {
			respondError(c, http.StatusInternalServerError, err)
			return
		}
		for _, n := range names {
			stored[n] = struct{}{}
		}
	}

	var out []datasetInfo
	for _, name := range reg.Names() {
		p, err := reg.New(name, dataset.Options{})
		if err != nil {
			respondError(c, http.StatusInternalServerError, err)
			return
		}
		_, hasEntries := stored[name]
		out = append(out, datasetInfo{
			Name:        name,
			Description: p.Description(),
			HasEntries:  hasEntries,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetLeaderboard(c *gin.Context) {
	if s.lbStore == nil {
		respondError(c, http.StatusInternalServerError, errors.New("leaderboard store not configured"))
		return
	}

	ds := strings.TrimSpace(c.Query("dataset"))
	if ds == "" {
		respondError(c, http.StatusBadRequest, errors.New("dataset is required"))
		return
	}

	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(c, http.StatusBadRequest, errors.New("invalid limit"))
			return
		}
		limit = n
	}

	entries, err := s.lbStore.GetLeaderboard(c.Request.Context(), ds, limit)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *Server) handleGetModelHistory(c *gin.Context) {
	if s.lbStore == nil {
		respondError(c, http.StatusInternalServerError, errors.New("leaderboard store not configured"))
		return
	}

	model := strings.TrimSpace(c.Param("model"))
	ds := strings.TrimSpace(c.Query("dataset"))
	if model == "" || ds == "" {
		respondError(c, http.StatusBadRequest, errors.New("model and dataset are required"))
		return
	}

	entries, err := s.lbStore.GetModelHistory(c.Request.Context(), model, ds)
	if err != nil {
		respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func respondError(c *gin.Context, status int, err error) {
	if err == nil {
		c.Status(status)
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
