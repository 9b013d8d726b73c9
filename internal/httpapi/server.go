package httpapi

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"lingoflow/internal/asr"
	"lingoflow/internal/config"
	"lingoflow/internal/lang"
	"lingoflow/internal/model"
	"lingoflow/internal/pipeline"
	"lingoflow/internal/transcription"
	"lingoflow/internal/translate"
	"lingoflow/internal/upstream/whisperapi"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type TranscriptionService interface {
	Transcribe(ctx context.Context, audioPath string, tier lang.QualityTier, forcedLanguage string) (transcription.Result, error)
}

type TranslationService interface {
	Translate(ctx context.Context, text, source, target string) translate.Outcome
}

type PipelineService interface {
	Process(ctx context.Context, in pipeline.Input) pipeline.Result
}

type UpstreamChecker interface {
	CheckModels(ctx context.Context) error
}

// DetectorFunc guesses the language of text; ok=false means unreliable.
type DetectorFunc func(text string) (code string, ok bool)

type MetricsObserver interface {
	ObserveHTTP(route, method string, status int, duration time.Duration)
	IncPipelineFailure()
}

type Dependencies struct {
	Transcription  TranscriptionService
	Translation    TranslationService
	Pipeline       PipelineService
	Upstream       UpstreamChecker
	Detect         DetectorFunc
	Metrics        MetricsObserver
	MetricsHandler http.Handler
}

type server struct {
	cfg          config.Config
	logger       *slog.Logger
	transcriber  TranscriptionService
	translator   TranslationService
	pipeline     PipelineService
	upstream     UpstreamChecker
	detect       DetectorFunc
	metrics      MetricsObserver
	metricsRoute http.Handler
}

type ctxKey string

const (
	requestIDHeader  = "X-Request-Id"
	requestIDContext = ctxKey("request_id")
	maxJSONBodyBytes = 1 << 20
)

func NewServer(cfg config.Config, logger *slog.Logger, deps Dependencies) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Transcription == nil || deps.Translation == nil || deps.Pipeline == nil || deps.Upstream == nil {
		panic("httpapi: all dependencies are required")
	}

	s := &server{
		cfg:          cfg,
		logger:       logger,
		transcriber:  deps.Transcription,
		translator:   deps.Translation,
		pipeline:     deps.Pipeline,
		upstream:     deps.Upstream,
		detect:       deps.Detect,
		metrics:      deps.Metrics,
		metricsRoute: deps.MetricsHandler,
	}

	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusNotFound, "not_found", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed", nil)
	})

	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoverMiddleware)

	r.Get("/healthz", s.handleHealthz)
	r.Get("/readyz", s.handleReadyz)
	if s.metricsRoute != nil {
		r.Handle("/metrics", s.metricsRoute)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/options", s.handleOptions)
		r.Post("/transcriptions", s.handleTranscriptions)
		r.Post("/translations", s.handleTranslations)
		r.Post("/pipeline/process", s.handlePipelineProcess)
	})

	return r
}

func (s *server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.HealthResponse{OK: true})
}

func (s *server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.upstream.CheckModels(ctx); err != nil {
		s.writeError(w, r, http.StatusServiceUnavailable, "not_ready", "speech-to-text server check failed", detailsForError(err))
		return
	}
	writeJSON(w, http.StatusOK, model.ReadyResponse{OK: true, ServiceName: "LingoFlow"})
}

func (s *server) handleOptions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.OptionsResponse{
		Qualities:       lang.QualityLabels(),
		SourceLanguages: lang.SourceLabels(),
		TargetLanguages: lang.TargetLabels(),
	})
}

func (s *server) handleTranscriptions(w http.ResponseWriter, r *http.Request) {
	audioPath, form, err := s.spoolMultipartAudio(w, r)
	if err != nil {
		s.handleMultipartReadError(w, r, err)
		return
	}
	defer cleanupMultipartForm(form)
	defer removeSpooled(audioPath)

	quality := formValueOr(r, "quality", s.cfg.DefaultQuality)
	tier, ok := lang.TierForQuality(quality)
	if !ok {
		s.writeError(w, r, http.StatusBadRequest, "invalid_request", fmt.Sprintf("unknown quality level %q", quality), nil)
		return
	}
	language := formValueOr(r, "language", "Auto Detect")
	code, ok := lang.SourceCode(language)
	if !ok {
		s.writeError(w, r, http.StatusBadRequest, "invalid_request", fmt.Sprintf("unknown language %q", language), nil)
		return
	}

	result, err := s.transcriber.Transcribe(r.Context(), audioPath, tier, code)
	if err != nil {
		s.writeMappedError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, model.TranscriptionResponse{Text: result.Text, Language: result.Language})
}

func (s *server) handleTranslations(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	defer func() { _ = r.Body.Close() }()

	var req model.TranslationRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		s.handleJSONDecodeError(w, r, err)
		return
	}
	if err := ensureBodyFullyConsumed(decoder); err != nil {
		s.handleJSONDecodeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Target) == "" {
		s.writeError(w, r, http.StatusBadRequest, "invalid_request", "target is required", nil)
		return
	}

	source := strings.TrimSpace(req.Source)
	if source == "" {
		// No language context from the caller; fall back to text detection.
		source = lang.Auto
		if s.detect != nil {
			if code, ok := s.detect(req.Text); ok {
				source = code
			}
		}
	}

	outcome := s.translator.Translate(r.Context(), req.Text, source, strings.TrimSpace(req.Target))
	resp := model.TranslationResponse{Text: outcome.Text, Source: source, Provider: outcome.Provider}
	if outcome.Err != nil {
		resp.Detail = outcome.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *server) handlePipelineProcess(w http.ResponseWriter, r *http.Request) {
	audioPath, form, err := s.spoolMultipartAudio(w, r)
	if err != nil {
		s.handleMultipartReadError(w, r, err)
		return
	}
	defer cleanupMultipartForm(form)
	defer removeSpooled(audioPath)

	doTranslate, err := parseOptionalBool(r.FormValue("translate"), true)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid_request", "translate must be a boolean", nil)
		return
	}

	result := s.pipeline.Process(r.Context(), pipeline.Input{
		AudioPath:      audioPath,
		Quality:        formValueOr(r, "quality", s.cfg.DefaultQuality),
		SourceLanguage: formValueOr(r, "source_language", "Auto Detect"),
		TargetLanguage: formValueOr(r, "target_language", s.cfg.DefaultTargetLanguage),
		Translate:      doTranslate,
	})
	if s.metrics != nil && result.Failure != "" {
		s.metrics.IncPipelineFailure()
	}

	// The pipeline boundary always yields a result; failures ride in the
	// failure field rather than an error status.
	writeJSON(w, http.StatusOK, model.PipelineProcessResponse{
		Transcript:            result.Transcript,
		DetectedLanguage:      result.DetectedLanguage,
		DetectedLanguageLabel: result.DetectedLanguageLabel,
		Translation:           result.Translation,
		TranslationProvider:   result.TranslationProvider,
		Info:                  result.Info,
		Failure:               result.Failure,
		TimingsMS: model.PipelineTimings{
			Transcription: result.Timings.Transcription.Milliseconds(),
			Translation:   result.Timings.Translation.Milliseconds(),
			Total:         result.Timings.Total.Milliseconds(),
		},
	})
}

// spoolMultipartAudio writes the uploaded file to a temp path, since the
// speech-to-text backend consumes audio by filesystem reference.
func (s *server) spoolMultipartAudio(w http.ResponseWriter, r *http.Request) (string, *multipart.Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(minInt64(s.cfg.MaxUploadBytes, 8<<20)); err != nil {
		return "", nil, err
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", r.MultipartForm, err
	}
	defer func() { _ = file.Close() }()

	ext := filepath.Ext(header.Filename)
	tmp, err := os.CreateTemp("", "lingoflow-*"+ext)
	if err != nil {
		return "", r.MultipartForm, err
	}
	if _, err := io.Copy(tmp, file); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", r.MultipartForm, err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", r.MultipartForm, err
	}
	return tmp.Name(), r.MultipartForm, nil
}

func removeSpooled(path string) {
	if path != "" {
		_ = os.Remove(path)
	}
}

func (s *server) handleMultipartReadError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		s.writeError(w, r, http.StatusRequestEntityTooLarge, "request_too_large", fmt.Sprintf("request exceeds %d bytes", s.cfg.MaxUploadBytes), nil)
		return
	}
	if strings.Contains(strings.ToLower(err.Error()), "no such file") || strings.Contains(strings.ToLower(err.Error()), "missing") {
		s.writeError(w, r, http.StatusBadRequest, "invalid_request", "multipart field 'file' is required", nil)
		return
	}
	s.writeError(w, r, http.StatusBadRequest, "invalid_request", "invalid multipart form data", nil)
}

func (s *server) handleJSONDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		s.writeError(w, r, http.StatusRequestEntityTooLarge, "request_too_large", "JSON body too large", nil)
		return
	}
	s.writeError(w, r, http.StatusBadRequest, "invalid_request", "invalid JSON body", nil)
}

func (s *server) writeMappedError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"
	message := "request failed"
	details := detailsForError(err)

	var decodeErr *asr.AudioDecodeError
	var loadErr *asr.ModelLoadError
	var upstreamErr *whisperapi.Error
	switch {
	case errors.As(err, &decodeErr):
		status = http.StatusBadRequest
		code = "audio_decode_failed"
		message = "audio could not be decoded"
	case errors.As(err, &loadErr):
		status = http.StatusBadGateway
		code = "model_load_failed"
		message = "speech-to-text model could not be loaded"
	case errors.As(err, &upstreamErr):
		status = http.StatusBadGateway
		code = "upstream_request_failed"
		message = "speech-to-text request failed"
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
		code = "timeout"
		message = "request timed out"
	case errors.Is(err, context.Canceled):
		status = 499
		code = "canceled"
		message = "request canceled"
	}

	s.writeError(w, r, status, code, message, details)
}

func (s *server) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details map[string]any) {
	if rid := requestIDFromContext(r.Context()); rid != "" {
		w.Header().Set(requestIDHeader, rid)
	}
	writeJSON(w, status, model.ErrorResponse{
		Error:     model.APIError{Code: code, Message: message, Details: details},
		RequestID: requestIDFromContext(r.Context()),
	})
}

func (s *server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = newRequestID()
		}
		w.Header().Set(requestIDHeader, requestID)
		ctx := context.WithValue(r.Context(), requestIDContext, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}

		duration := time.Since(started)
		if s.metrics != nil {
			s.metrics.ObserveHTTP(route, r.Method, status, duration)
		}

		s.logger.Info("http_request",
			"request_id", requestIDFromContext(r.Context()),
			"method", r.Method,
			"route", route,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", duration.Milliseconds(),
		)
	})
}

func (s *server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "request_id", requestIDFromContext(r.Context()), "panic", rec)
				s.writeError(w, r, http.StatusInternalServerError, "internal_error", "internal server error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func ensureBodyFullyConsumed(decoder *json.Decoder) error {
	var extra any
	if err := decoder.Decode(&extra); err != io.EOF {
		if err == nil {
			return fmt.Errorf("multiple JSON values")
		}
		return err
	}
	return nil
}

func formValueOr(r *http.Request, field, fallback string) string {
	value := strings.TrimSpace(r.FormValue(field))
	if value == "" {
		return fallback
	}
	return value
}

func parseOptionalBool(value string, fallback bool) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseBool(value)
}

func cleanupMultipartForm(form *multipart.Form) {
	if form != nil {
		_ = form.RemoveAll()
	}
}

func requestIDFromContext(ctx context.Context) string {
	value, _ := ctx.Value(requestIDContext).(string)
	return value
}

func newRequestID() string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("req-%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}

func detailsForError(err error) map[string]any {
	if err == nil {
		return nil
	}
	details := map[string]any{"error": err.Error()}
	var upstreamErr *whisperapi.Error
	if errors.As(err, &upstreamErr) {
		details["upstream_status"] = upstreamErr.StatusCode
		if upstreamErr.Body != "" {
			details["upstream_body"] = upstreamErr.Body
		}
	}
	return details
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
