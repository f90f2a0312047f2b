// Copyright 2026 The addrgrade Authors
// SPDX-License-Identifier: Apache-2.0

package grading

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smerlo/addrgrade/gazetteer"
	"github.com/smerlo/addrgrade/geocode"
	"github.com/smerlo/addrgrade/spatial"
)

// Server exposes the validation pipeline over HTTP for interactive
// inspection: validate a single address, score it, grade a submission, or
// look up the nearest gazetteer city.
type Server struct {
	index  *gazetteer.Index
	grader *Grader
}

// NewServer wires the audit server over a shared gazetteer and provider.
func NewServer(idx *gazetteer.Index, searcher geocode.Searcher) *Server {
	return &Server{
		index:  idx,
		grader: NewGrader(idx, searcher, nil),
	}
}

// Run serves until the listener fails.
func (s *Server) Run(addr string) error {
	return s.routes().Run(addr)
}

func (s *Server) routes() *gin.Engine {
	r := gin.Default()

	r.GET("/api/health", s.health)
	r.POST("/api/validate", s.validate)
	r.POST("/api/score", s.score)
	r.POST("/api/grade", s.grade)
	r.GET("/api/near", s.near)

	return r
}

func (s *Server) health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"countries": s.index.CountryCount(),
		"cities":    s.index.CityCount(),
	})
}

type validateRequest struct {
	Address string `json:"address"`
	Seed    string `json:"seed"`
}

type validateResponse struct {
	Plausible bool   `json:"plausible"`
	City      string `json:"city,omitempty"`
	Country   string `json:"country,omitempty"`
	Matched   bool   `json:"matched"`
	Basis     Basis  `json:"basis,omitempty"`
}

func (s *Server) validate(ctx *gin.Context) {
	var req validateRequest
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if req.Address == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})

		return
	}

	resp := validateResponse{Plausible: PlausibleFormat(req.Address)}

	if req.Seed != "" {
		match := MatchRegion(s.index, req.Address, req.Seed)
		resp.City = match.City
		resp.Country = match.Country
		resp.Matched = match.Matched
		resp.Basis = match.Basis
	}

	ctx.JSON(http.StatusOK, resp)
}

type scoreRequest struct {
	Address string `json:"address"`
}

func (s *Server) score(ctx *gin.Context) {
	var req scoreRequest
	if err := ctx.BindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	if req.Address == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})

		return
	}

	ctx.JSON(http.StatusOK, s.grader.Scorer.Score(ctx.Request.Context(), req.Address))
}

func (s *Server) grade(ctx *gin.Context) {
	var submission Submission
	if err := ctx.BindJSON(&submission); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

		return
	}

	result := s.grader.Grade(ctx.Request.Context(), submission, ctx.ClientIP())

	ctx.JSON(http.StatusOK, result)
}

func (s *Server) near(ctx *gin.Context) {
	var lat, lng float64

	if _, err := fmt.Sscanf(ctx.Query("lat"), "%f", &lat); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid lat parameter"})

		return
	}

	if _, err := fmt.Sscanf(ctx.Query("lng"), "%f", &lng); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid lng parameter"})

		return
	}

	city, ok := s.index.Nearest(spatial.Point{Lat: lat, Lng: lng})
	if !ok {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no city near that point"})

		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"city":       city.Name,
		"country":    city.Country,
		"population": city.Population,
		"lat":        city.Point.Lat,
		"lng":        city.Point.Lng,
	})
}
