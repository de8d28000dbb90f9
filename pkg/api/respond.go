package api

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/lzdw/lzdraw/pkg/errors"
	"github.com/lzdw/lzdraw/pkg/pipeline"
)

type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps err to a status and a JSON error body. Internal details
// are logged, not returned.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	body := errorBody{
		Error:     errors.UserMessage(err),
		Code:      string(errors.GetCode(err)),
		RequestID: RequestID(r.Context()),
	}
	logger := loggerFromContext(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "err", err)
		if status == http.StatusInternalServerError {
			body.Error = "Internal server error"
		}
	} else {
		logger.Debug("request rejected", "status", status, "err", err)
	}
	writeJSON(w, status, body)
}

// decodeJSON reads a JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody{
			Error:     fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit),
			RequestID: RequestID(r.Context()),
		})
	case stderrors.Is(err, io.EOF):
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "Request body is required"))
	default:
		writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "Request body is not valid JSON"))
	}
	return false
}

// writeArtifact sends a rendered format. drawio and tf are attachments.
func writeArtifact(w http.ResponseWriter, format, filename string, data []byte) {
	w.Header().Set("Content-Type", pipeline.ContentType(format))
	if filename != "" {
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
