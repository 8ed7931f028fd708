// Package server exposes the analysis pipeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"mindscape-go/internal/logger"
	"mindscape-go/internal/processor"
	"mindscape-go/internal/types"
)

// AudioField is the multipart field carrying the recording.
const AudioField = "audio_data"

// Banner is served on GET /.
const Banner = "Hello, MindScape! Your server is running."

// Analyzer is implemented by *processor.Processor.
type Analyzer interface {
	AnalyzeAudio(ctx context.Context, filename string, audio io.Reader) (types.AnalysisResult, error)
	AnalyzeText(ctx context.Context, text string) (types.AnalysisResult, error)
}

type Server struct {
	analyzer  Analyzer
	log       *logger.Logger
	maxUpload int64
}

// New returns a server; maxUpload caps request bodies in bytes (<= 0 disables the cap).
func New(a Analyzer, log *logger.Logger, maxUpload int64) *Server {
	return &Server{analyzer: a, log: log, maxUpload: maxUpload}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("POST /mood", s.handleMood)
	return mux
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, Banner)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.requestLog(w, r, "health").Debug("health check")
	fmt.Fprint(w, "ok")
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	reqLog := s.requestLog(w, r, "analyze")
	reqLog.Info("analyze request received")
	s.limitBody(w, r)

	file, header, err := r.FormFile(AudioField)
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			reqLog.WithField("limit", tooLarge.Limit).Warn("upload too large")
			writeJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: fmt.Sprintf("Audio file larger than %d bytes", tooLarge.Limit)}, reqLog)
			return
		}
		reqLog.WithField("error", err.Error()).Warn("missing audio_data")
		writeJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: processor.MsgNoAudio}, reqLog)
		return
	}
	defer file.Close()
	reqLog = reqLog.WithFields(logrus.Fields{"filename": header.Filename, "size": header.Size})

	start := time.Now()
	res, err := s.analyzer.AnalyzeAudio(logger.NewContext(r.Context(), reqLog), header.Filename, file)
	reqLog = reqLog.WithField("duration_ms", time.Since(start).Milliseconds())
	if err != nil {
		s.writeError(w, err, reqLog)
		return
	}
	reqLog.WithField("distress_level", res.DistressLevel).Info("analysis finished")
	writeJSON(w, http.StatusOK, res, reqLog)
}

type moodRequest struct {
	Text string `json:"text"`
}

func (s *Server) handleMood(w http.ResponseWriter, r *http.Request) {
	reqLog := s.requestLog(w, r, "mood")
	reqLog.Info("mood check received")
	s.limitBody(w, r)

	var req moodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		reqLog.WithField("error", err.Error()).Warn("invalid mood request body")
		writeJSON(w, http.StatusBadRequest, types.ErrorResponse{Error: "Request body must be JSON with a \"text\" field"}, reqLog)
		return
	}

	res, err := s.analyzer.AnalyzeText(logger.NewContext(r.Context(), reqLog), req.Text)
	if err != nil {
		s.writeError(w, err, reqLog)
		return
	}
	reqLog.WithField("distress_level", res.DistressLevel).Info("mood check finished")
	writeJSON(w, http.StatusOK, res, reqLog)
}

func (s *Server) requestLog(w http.ResponseWriter, r *http.Request, handler string) *logrus.Entry {
	reqID := logger.RequestID(r)
	w.Header().Set(logger.RequestIDHeader, reqID)
	return s.log.WithRequest(r, reqID).WithField("handler", handler)
}

func (s *Server) limitBody(w http.ResponseWriter, r *http.Request) {
	if s.maxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error, log *logrus.Entry) {
	status, msg := http.StatusInternalServerError, "Internal server error"
	var pe *processor.Error
	if errors.As(err, &pe) {
		status, msg = pe.Kind.HTTPStatus(), pe.Message
		log = log.WithField("kind", pe.Kind.String())
	}
	log.WithField("error", err.Error()).Warn("analysis returned error")
	writeJSON(w, status, types.ErrorResponse{Error: msg}, log)
}

func writeJSON(w http.ResponseWriter, status int, v any, log *logrus.Entry) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.WithField("error", err.Error()).Error("failed to write response")
	}
}
