package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ppiankov/xingming/internal/diagnose"
	"github.com/ppiankov/xingming/internal/logger"
	"github.com/ppiankov/xingming/internal/model"
	"github.com/ppiankov/xingming/internal/numerology"
	"github.com/ppiankov/xingming/internal/pipeline"
	"github.com/ppiankov/xingming/internal/tables"
	"github.com/ppiankov/xingming/internal/validate"
	"github.com/ppiankov/xingming/internal/wuxing"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// DiagnoseRequest carries pasted chart text. Charts are never fetched by
// URL on behalf of API clients.
type DiagnoseRequest struct {
	Chart string `json:"chart"`
}

// AnalyzeRequest is the JSON form of a full name analysis
type AnalyzeRequest struct {
	Surname         string `json:"surname"`
	GivenName       string `json:"given_name"`
	Gender          string `json:"gender,omitempty"`
	Chart           string `json:"chart,omitempty"`
	Palace          string `json:"palace,omitempty"`
	Element         string `json:"element,omitempty"`
	Strength        string `json:"strength,omitempty"`
	Recommendations int    `json:"recommendations,omitempty"`
	Commentary      bool   `json:"commentary,omitempty"`
}

// RemedyResponse names the element to strengthen for an afflicted element
type RemedyResponse struct {
	Afflicted wuxing.Element  `json:"afflicted"`
	Strength  wuxing.Strength `json:"strength"`
	Remedy    wuxing.Element  `json:"remedy"`
}

// HealthResponse reports liveness and the loaded reference tables
type HealthResponse struct {
	Status string       `json:"status"`
	Tables tables.Stats `json:"tables"`
}

func (s *Server) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	var req DiagnoseRequest
	if !s.decode(w, r, &req) {
		return
	}

	d, err := s.pipeline.DiagnoseText(req.Chart)
	switch {
	case errors.Is(err, validate.ErrChartTooShort), errors.Is(err, diagnose.ErrUnrecognizedFormat):
		writeError(w, http.StatusUnprocessableEntity, "unprocessable_chart", err.Error())
		return
	case err != nil:
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !s.decode(w, r, &req) {
		return
	}

	report, err := s.pipeline.Analyze(r.Context(), pipeline.AnalyzeRequest{
		Surname:         req.Surname,
		GivenName:       req.GivenName,
		Gender:          req.Gender,
		ChartText:       req.Chart,
		Palace:          req.Palace,
		Element:         req.Element,
		Strength:        req.Strength,
		Recommendations: req.Recommendations,
		Commentary:      req.Commentary,
	})
	switch {
	case errors.Is(err, pipeline.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	case err != nil:
		s.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleLuckyStrokes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	e, err := wuxing.Parse(q.Get("element"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var strokes []model.LuckyStroke
	if raw := q.Get("max"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > numerology.LuckyStrokeLimit {
			writeError(w, http.StatusBadRequest, "invalid_request",
				fmt.Sprintf("invalid max %q: want 1-%d", raw, numerology.LuckyStrokeLimit))
			return
		}
		strokes = s.pipeline.Calculator().LuckyStrokes(e, limit)
	} else {
		strokes = s.pipeline.LuckyStrokes(e)
	}
	if strokes == nil {
		strokes = []model.LuckyStroke{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"element": e,
		"strokes": strokes,
	})
}

func (s *Server) handleRemedy(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	e, err := wuxing.Parse(q.Get("element"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	strength, err := wuxing.ParseStrength(q.Get("strength"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	remedy, _ := pipeline.Remedy(e, strength)
	writeJSON(w, http.StatusOK, RemedyResponse{Afflicted: e, Strength: strength, Remedy: remedy})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Tables: s.pipeline.Tables().Stats()})
}

// decode reads a JSON body into v, answering 400 or 413 on failure
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large",
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	logger.Log.WithField("request_id", RequestIDFrom(r.Context())).WithError(err).Error("request failed")
	writeError(w, http.StatusInternalServerError, "internal", "internal server error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Warn("write response")
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Code: code, Message: message})
}
