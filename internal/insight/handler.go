package insight

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"aiinsight/internal/httpserver"
	"aiinsight/internal/middleware"
)

const (
	errAICallFailed   = "AI call failed"
	errInvalidRequest = "invalid request body"
)

// Generator то, что нужно хендлеру от сервиса; в тестах подменяется.
type Generator interface {
	Generate(ctx context.Context, prompt string) (Result, error)
}

type HandlerDeps struct {
	Service      Generator
	Logger       *slog.Logger
	MaxBodyBytes int64
}

type Handler struct {
	service      Generator
	logger       *slog.Logger
	maxBodyBytes int64
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		service:      deps.Service,
		logger:       deps.Logger,
		maxBodyBytes: deps.MaxBodyBytes,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body := r.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	}

	req, err := decodeRequest(body)
	if err != nil {
		h.logger.Warn("insight: bad request body",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())))
		httpserver.WriteJSONError(w, http.StatusBadRequest, errInvalidRequest)
		return
	}

	result, err := h.service.Generate(r.Context(), req.Prompt)
	if err != nil {
		h.logger.Error("insight: AI call failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())))
		httpserver.WriteJSONError(w, http.StatusInternalServerError, errAICallFailed)
		return
	}

	httpserver.WriteJSON(w, http.StatusOK, result)
}

// decodeRequest требует ровно одно JSON-значение в теле.
// Пустое тело равносильно {}: промпта нет, отказ придёт от провайдера.
func decodeRequest(body io.Reader) (Request, error) {
	var req Request
	dec := json.NewDecoder(body)
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return Request{}, nil
		}
		return Request{}, err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return Request{}, errors.New("unexpected data after JSON body")
	}
	return req, nil
}
