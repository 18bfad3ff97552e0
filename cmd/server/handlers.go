package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/himanishpuri/EarMark/pkg/earmark"
	"github.com/himanishpuri/EarMark/pkg/logger"
	"github.com/himanishpuri/EarMark/pkg/utils"
	"github.com/mdobak/go-xerrors"
)

// Server encapsulates the HTTP server and its dependencies
type Server struct {
	service earmark.Service
	config  *ServerConfig
	log     earmark.Logger
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	DBPath         string
	Backend        string
	TempDir        string
	SampleRate     int
	Threshold      float64
	AllowedOrigins []string
	MaxUploadBytes int64
	LogRequests    bool
}

// NewServer creates a new server instance
func NewServer(service earmark.Service, config *ServerConfig) *Server {
	if config.MaxUploadBytes == 0 {
		config.MaxUploadBytes = 50 << 20
	}
	return &Server{
		service: service,
		config:  config,
		log:     logger.GetLogger().With("http"),
	}
}

// respondJSON writes a JSON response
func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("Failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response
func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

// respondServiceError maps a service error onto a status code
func (s *Server) respondServiceError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, earmark.ErrDecodeFailed):
		s.log.Warnf("%s: %v", action, err)
		s.respondError(w, http.StatusUnprocessableEntity, "audio decode failed")
	case errors.Is(err, earmark.ErrNotFound):
		s.respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, earmark.ErrInvalidInput), errors.Is(err, earmark.ErrClipTooShort):
		s.respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		s.log.Warnf("%s: %v", action, err)
		s.respondError(w, http.StatusGatewayTimeout, "request timed out")
	default:
		s.log.Errorf("%s: %s", action, xerrors.Sprint(xerrors.New(err)))
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("%s: %v", action, err))
	}
}

// handleRoot handles GET /
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"service": "EarMark API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":              "GET /health",
			"metrics":             "GET /api/health/metrics",
			"sounds":              "GET /api/sounds?owner_id=",
			"teachSound":          "POST /api/sounds",
			"getSound":            "GET /api/sounds/{id}",
			"deleteSound":         "DELETE /api/sounds/{id}",
			"identifyFile":        "POST /api/identify",
			"identifyFingerprint": "POST /api/identify/fingerprint",
		},
	})
}

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleMetrics handles GET /api/health/metrics
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	count, err := s.service.CountSounds()
	if err != nil {
		s.log.Errorf("Failed to get sound count: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve metrics")
		return
	}

	s.respondJSON(w, http.StatusOK, MetricsResponse{
		Status:       "healthy",
		Backend:      s.config.Backend,
		DatabasePath: s.config.DBPath,
		SoundCount:   count,
		SampleRate:   s.config.SampleRate,
		Threshold:    s.config.Threshold,
	})
}

// handleListSounds handles GET /api/sounds
func (s *Server) handleListSounds(w http.ResponseWriter, r *http.Request) {
	sounds, err := s.service.ListSounds(r.URL.Query().Get("owner_id"))
	if err != nil {
		s.log.Errorf("Failed to list sounds: %v", err)
		s.respondError(w, http.StatusInternalServerError, "Failed to retrieve sounds")
		return
	}

	dtos := make([]SoundDTO, len(sounds))
	for i, sound := range sounds {
		dtos[i] = toSoundDTO(sound)
	}

	s.respondJSON(w, http.StatusOK, ListSoundsResponse{
		Sounds: dtos,
		Count:  len(dtos),
	})
}

// handleGetSound handles GET /api/sounds/{id}
func (s *Server) handleGetSound(w http.ResponseWriter, r *http.Request, id string) {
	sound, err := s.service.GetSound(id)
	if err != nil {
		s.respondServiceError(w, "Failed to get sound", err)
		return
	}
	s.respondJSON(w, http.StatusOK, toSoundDTO(*sound))
}

// handleDeleteSound handles DELETE /api/sounds/{id}
func (s *Server) handleDeleteSound(w http.ResponseWriter, r *http.Request, id string) {
	if err := s.service.DeleteSound(id); err != nil {
		s.respondServiceError(w, "Failed to delete sound", err)
		return
	}

	s.respondJSON(w, http.StatusOK, DeleteSoundResponse{
		Message: "Sound deleted successfully",
		ID:      id,
	})
}

// saveUpload stores the multipart "audio" field in the temp dir. The caller
// removes the returned file.
func (s *Server) saveUpload(r *http.Request) (string, error) {
	file, header, err := r.FormFile("audio")
	if err != nil {
		return "", fmt.Errorf("audio file is required")
	}
	defer file.Close()

	if err := utils.MakeDir(s.config.TempDir); err != nil {
		return "", err
	}

	tempFile := utils.SaveUploadPath(s.config.TempDir, header.Filename)
	out, err := os.Create(tempFile)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, file); err != nil {
		os.Remove(tempFile)
		return "", fmt.Errorf("saving upload: %w", err)
	}
	return tempFile, nil
}

// handleTeachSound handles POST /api/sounds (multipart file upload)
func (s *Server) handleTeachSound(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.log.Warnf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	name := strings.TrimSpace(r.FormValue("name"))
	ownerID := strings.TrimSpace(r.FormValue("owner_id"))
	if name == "" || ownerID == "" {
		s.respondError(w, http.StatusBadRequest, "name and owner_id are required")
		return
	}

	tempFile, err := s.saveUpload(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer os.Remove(tempFile)

	id, err := s.service.TeachSound(ctx, tempFile, name, ownerID)
	if err != nil {
		s.respondServiceError(w, "Failed to teach sound", err)
		return
	}

	s.respondJSON(w, http.StatusCreated, TeachSoundResponse{
		Message: "Sound taught successfully",
		ID:      id,
		Name:    name,
		OwnerID: ownerID,
	})
}

// handleIdentifyFile handles POST /api/identify (multipart file upload)
func (s *Server) handleIdentifyFile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.log.Warnf("Failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "Failed to parse form data")
		return
	}

	tempFile, err := s.saveUpload(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	defer os.Remove(tempFile)

	result, err := s.service.Identify(ctx, tempFile, strings.TrimSpace(r.FormValue("owner_id")))
	if err != nil {
		s.respondServiceError(w, "Failed to identify clip", err)
		return
	}

	s.respondJSON(w, http.StatusOK, toIdentifyResponse(result))
}

// handleIdentifyFingerprint handles POST /api/identify/fingerprint (WASM clients)
func (s *Server) handleIdentifyFingerprint(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req IdentifyFingerprintRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)).Decode(&req); err != nil {
		s.log.Warnf("Failed to decode request: %v", err)
		s.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if len(req.Fingerprint) >= FrameWarningThreshold {
		s.log.Warnf("Large fingerprint received: %d frames", len(req.Fingerprint))
	}

	result, err := s.service.IdentifyFingerprint(ctx, req.Fingerprint, req.OwnerID)
	if err != nil {
		s.respondServiceError(w, "Failed to identify fingerprint", err)
		return
	}

	s.respondJSON(w, http.StatusOK, toIdentifyResponse(result))
}

// handleSounds routes requests to /api/sounds
func (s *Server) handleSounds(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListSounds(w, r)
	case http.MethodPost:
		s.handleTeachSound(w, r)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleSound routes requests to /api/sounds/{id}
func (s *Server) handleSound(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/sounds/")
	if id == "" || strings.Contains(id, "/") {
		s.respondError(w, http.StatusBadRequest, "Sound ID required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetSound(w, r, id)
	case http.MethodDelete:
		s.handleDeleteSound(w, r, id)
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleIdentify routes requests to /api/identify
func (s *Server) handleIdentify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handleIdentifyFile(w, r)
}

// handleIdentifyFingerprintRoute routes requests to /api/identify/fingerprint
func (s *Server) handleIdentifyFingerprintRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.handleIdentifyFingerprint(w, r)
}
