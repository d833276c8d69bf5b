package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Krimson/eeg-explorer/viewer/internal/dataset"
	"github.com/Krimson/eeg-explorer/viewer/internal/explorer"
)

// ErrorResponse - тело ответа при ошибке
type ErrorResponse struct {
	Error  string        `json:"error"`
	Status int           `json:"status"`
	Kind   explorer.Kind `json:"kind"`
	Reason string        `json:"reason,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func respondError(w http.ResponseWriter, status int, kind explorer.Kind, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:  message,
		Status: status,
		Kind:   kind,
	})
}

// respondNotice обрабатывает err на границе конвейера. Причина логируется,
// пользователь получает только уведомление.
func respondNotice(w http.ResponseWriter, r *http.Request, err error) {
	notice := explorer.NoticeFor(err)
	status := statusFor(notice)

	event := zerolog.Ctx(r.Context()).Warn()
	if status >= http.StatusInternalServerError {
		event = zerolog.Ctx(r.Context()).Error()
	}
	event.Err(err).Str("kind", string(notice.Kind)).Int("status", status).Msg("request failed")

	respondJSON(w, status, ErrorResponse{
		Error:  notice.Message,
		Status: status,
		Kind:   notice.Kind,
		Reason: string(notice.Reason),
	})
}

func statusFor(n explorer.Notice) int {
	switch n.Kind {
	case explorer.KindNoDatasets, explorer.KindUnknownSubject:
		return http.StatusNotFound
	case explorer.KindDatasetUnavailable:
		if n.Reason == dataset.ReasonTimeout {
			return http.StatusServiceUnavailable
		}
		return http.StatusBadGateway
	case explorer.KindInvalidSelection:
		return http.StatusBadRequest
	case explorer.KindEmptySelection:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
