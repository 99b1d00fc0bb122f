package uploadapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type Server struct {
	uploader         Uploader
	maxImageBytes    int64
	maxMetadataBytes int64
	shutdownTimeout  time.Duration
	logger           zerolog.Logger
	handler          http.Handler
}

// NewServer creates a new Server.
func NewServer(config ServerConfig) (*Server, error) {
	if config.Uploader == nil {
		return nil, errors.New("uploader is required")
	}

	server := &Server{
		uploader:         config.Uploader,
		maxImageBytes:    config.MaxImageBytes,
		maxMetadataBytes: config.MaxMetadataBytes,
		shutdownTimeout:  config.ShutdownTimeout,
		logger:           zerolog.Nop(),
	}
	if server.maxImageBytes <= 0 {
		server.maxImageBytes = defaultMaxImageBytes
	}
	if server.maxMetadataBytes <= 0 {
		server.maxMetadataBytes = defaultMaxMetadataBytes
	}
	if server.shutdownTimeout <= 0 {
		server.shutdownTimeout = 10 * time.Second
	}
	if config.Logger != nil {
		server.logger = *config.Logger
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+ImagePath, server.handleUploadImage)
	mux.HandleFunc("POST "+MetadataPath, server.handleUploadMetadata)
	mux.HandleFunc("GET "+HealthPath, server.handleHealth)
	server.handler = server.withRequestLogging(server.withCompression(mux))

	return server, nil
}

// Handler returns the routed handler with logging and compression.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, listener)
}

func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	served := make(chan error, 1)
	go func() {
		served <- httpServer.Serve(listener)
	}()
	s.logger.Info().Str("addr", listener.Addr().String()).Msg("upload server listening")

	select {
	case err := <-served:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info().Msg("upload server stopped")
	return nil
}

func (s *Server) handleUploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxImageBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, messageFileTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, messageNoFile)
		return
	}
	defer file.Close()

	if !s.uploader.Configured() {
		writeError(w, http.StatusInternalServerError, messageKeysMissing)
		return
	}

	uri, err := s.uploader.UploadFile(r.Context(), header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		requestLogger(r, s.logger).Error().Err(err).Str("file", header.Filename).Msg("image upload failed")
		writeError(w, http.StatusInternalServerError, messageImageFailed)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{URI: uri})
}

func (s *Server) handleUploadMetadata(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxMetadataBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, messageInvalidMetadata)
			return
		}
		writeError(w, http.StatusBadRequest, messageInvalidMetadata)
		return
	}
	if !json.Valid(body) {
		writeError(w, http.StatusBadRequest, messageInvalidMetadata)
		return
	}

	if !s.uploader.Configured() {
		writeError(w, http.StatusInternalServerError, messageKeysMissing)
		return
	}

	uri, err := s.uploader.UploadJSON(r.Context(), json.RawMessage(body))
	if err != nil {
		requestLogger(r, s.logger).Error().Err(err).Msg("metadata upload failed")
		writeError(w, http.StatusInternalServerError, messageMetadataFailed)
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{URI: uri})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "pinata": s.uploader.Configured()})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	written, err := r.ResponseWriter.Write(p)
	r.bytes += written
	return written, err
}

type requestIDKey struct{}

// RequestID returns the id assigned to the request by the server.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func requestLogger(r *http.Request, base zerolog.Logger) *zerolog.Logger {
	logger := base.With().Str("request_id", RequestID(r.Context())).Logger()
	return &logger
}

func (s *Server) withRequestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, requestID))

		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(recorder, r)

		status := recorder.status
		if status == 0 {
			status = http.StatusOK
		}
		event := s.logger.Info()
		if status >= http.StatusInternalServerError {
			event = s.logger.Warn()
		}
		event.
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", recorder.bytes).
			Dur("duration", time.Since(started)).
			Msg("request")
	})
}

type brotliResponseWriter struct {
	http.ResponseWriter
	writer *brotli.Writer
}

func (w *brotliResponseWriter) WriteHeader(status int) {
	w.ResponseWriter.Header().Del("Content-Length")
	w.ResponseWriter.WriteHeader(status)
}

func (w *brotliResponseWriter) Write(p []byte) (int, error) {
	return w.writer.Write(p)
}

func (s *Server) withCompression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Accept-Encoding")
		if !acceptsBrotli(r.Header.Get("Accept-Encoding")) {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Content-Encoding", "br")
		compressed := brotli.NewWriterLevel(w, brotli.DefaultCompression)
		defer compressed.Close()
		next.ServeHTTP(&brotliResponseWriter{ResponseWriter: w, writer: compressed}, r)
	})
}

func acceptsBrotli(header string) bool {
	for _, part := range strings.Split(header, ",") {
		fields := strings.Split(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(fields[0]), "br") {
			continue
		}
		for _, parameter := range fields[1:] {
			if strings.ReplaceAll(strings.TrimSpace(parameter), " ", "") == "q=0" {
				return false
			}
		}
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
