package post

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/a-h/chatbridge/models"
	"github.com/a-h/chatbridge/relay"
	"github.com/a-h/respond"
	"github.com/google/uuid"
)

func New(log *slog.Logger, relayer relay.Relayer) Handler {
	return Handler{
		log:     log,
		relayer: relayer,
	}
}

type Handler struct {
	log     *slog.Logger
	relayer relay.Relayer
}

func (h Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	w.Header().Set("X-Request-ID", requestID)
	log := h.log.With(slog.String("requestID", requestID))

	req, err := decodeRequest(r.Body)
	if err != nil {
		log.Error("failed to decode body", slog.Any("error", err))
		writeServerError(w)
		return
	}
	if req.Message == nil {
		log.Error("message not provided")
		writeServerError(w)
		return
	}

	log.Info("relaying message", slog.Int("length", len(*req.Message)))
	result, err := h.relayer.Relay(r.Context(), *req.Message)
	if err != nil {
		log.Error("failed to relay message", slog.Any("error", err), slog.Duration("duration", result.Duration))
		writeServerError(w)
		return
	}
	log.Info("message relayed",
		slog.Int("exitCode", result.ExitCode),
		slog.Duration("duration", result.Duration),
		slog.Int("replyLength", len(result.Reply)))

	respond.WithJSON(w, models.ChatPostResponse{Reply: result.Reply}, http.StatusOK)
}

var errTrailingData = errors.New("unexpected data after request body")

// decodeRequest reads exactly one JSON value from the body.
func decodeRequest(body io.Reader) (req models.ChatPostRequest, err error) {
	dec := json.NewDecoder(body)
	if err = dec.Decode(&req); err != nil {
		return req, err
	}
	if err = dec.Decode(&struct{}{}); err != io.EOF {
		return req, errTrailingData
	}
	return req, nil
}

// Failures are not classified for the caller.
func writeServerError(w http.ResponseWriter) {
	respond.WithJSON(w, models.ChatPostError{Error: models.ChatPostServerError}, http.StatusInternalServerError)
}
