// Copyright 2026 The addrgrade Authors
// SPDX-License-Identifier: Apache-2.0

package grading

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/smerlo/addrgrade/geocode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServerTest(t *testing.T, searcher geocode.Searcher) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	server := NewServer(testIndex(t), searcher)
	server.grader.Delay = 0
	server.grader.TimeoutDelay = 0

	return server.routes()
}

func TestHealthAPI(t *testing.T) {
	router := setupServerTest(t, &stubSearcher{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 4, body["countries"])
	assert.Equal(t, 6, body["cities"])
}

func TestValidateAPI(t *testing.T) {
	router := setupServerTest(t, &stubSearcher{})

	payload, _ := json.Marshal(validateRequest{
		Address: "12 High St, London, United Kingdom",
		Seed:    "London",
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/validate", bytes.NewReader(payload))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp validateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Matched)
	assert.Equal(t, "london", resp.City)
	assert.Equal(t, "united kingdom", resp.Country)
}

func TestValidateAPIRequiresAddress(t *testing.T) {
	router := setupServerTest(t, &stubSearcher{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/validate", bytes.NewReader([]byte(`{}`)))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestScoreAPI(t *testing.T) {
	searcher := &stubSearcher{matches: []geocode.Match{
		{PlaceRank: 30, BoundingBox: boxAt(5, 10)},
	}}
	router := setupServerTest(t, searcher)

	payload, _ := json.Marshal(scoreRequest{Address: "10 Downing Street, London, United Kingdom"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/score", bytes.NewReader(payload))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp ScoreResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, OutcomeSuccess, resp.Outcome)
	assert.Equal(t, 1.0, resp.Score)
}

func TestGradeAPI(t *testing.T) {
	searcher := &stubSearcher{matches: []geocode.Match{
		{PlaceRank: 30, BoundingBox: boxAt(5, 10)},
	}}
	router := setupServerTest(t, searcher)

	payload, _ := json.Marshal(submissionOf(5))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/grade", bytes.NewReader(payload))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp Result
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.HeuristicsPassed)
	assert.Equal(t, 1.0, resp.Score)
	assert.LessOrEqual(t, len(resp.Samples), 3)
}

func TestNearAPI(t *testing.T) {
	router := setupServerTest(t, &stubSearcher{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/near?lat=51.50&lng=-0.12", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "london", resp["city"])
}

func TestNearAPIRejectsBadCoordinates(t *testing.T) {
	router := setupServerTest(t, &stubSearcher{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/near?lat=abc&lng=-0.12", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
