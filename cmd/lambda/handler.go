package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/charmbracelet/log"

	"github.com/lzdw/lzdraw/pkg/arch"
	"github.com/lzdw/lzdraw/pkg/errors"
	"github.com/lzdw/lzdraw/pkg/pipeline"
	"github.com/lzdw/lzdraw/pkg/render/drawio"
	"github.com/lzdw/lzdraw/pkg/render/layout"
)

type handler struct {
	runner *pipeline.Runner
	theme  string
	layout layout.Config
	logger *log.Logger
}

type errorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

// handle converts the architecture in the request body to a draw.io file.
// The body is either the architecture itself or {"architecture": ...}.
func (h *handler) handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := req.RequestContext.RequestID
	logger := h.logger.With("request_id", requestID)

	a, err := decodeBody(req)
	if err != nil {
		logger.Warn("rejected request", "err", err)
		return errorResponse(err, requestID), nil
	}

	theme := req.QueryStringParameters["theme"]
	if theme == "" {
		theme = h.theme
	}
	cfg := h.layout
	res, err := h.runner.Render(ctx, a, pipeline.Options{
		Theme:   theme,
		Formats: []string{pipeline.FormatDrawio},
		Layout:  &cfg,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("render failed", "err", err)
		return errorResponse(err, requestID), nil
	}

	filename := drawio.Filename(a.ClientName)
	logger.Info("rendered", "client", a.Client(), "accounts", res.Stats.Accounts, "file", filename)
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":        pipeline.ContentType(pipeline.FormatDrawio),
			"Content-Disposition": fmt.Sprintf("attachment; filename=%q", filename),
		},
		Body: string(res.Artifacts[pipeline.FormatDrawio]),
	}, nil
}

func decodeBody(req events.APIGatewayProxyRequest) (*arch.Architecture, error) {
	body := []byte(req.Body)
	if req.IsBase64Encoded {
		dec, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid base64 body")
		}
		body = dec
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "No architecture provided")
	}

	var envelope struct {
		Architecture json.RawMessage `json:"architecture"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "Request body is not valid JSON")
	}
	if raw := bytes.TrimSpace(envelope.Architecture); len(raw) > 0 {
		if bytes.Equal(raw, []byte("null")) {
			return nil, errors.New(errors.ErrCodeInvalidInput, "No architecture provided")
		}
		body = raw
	}
	return arch.Decode(body)
}

func errorResponse(err error, requestID string) events.APIGatewayProxyResponse {
	status := errors.HTTPStatus(err)
	msg := errors.UserMessage(err)
	if status == http.StatusInternalServerError {
		msg = "Internal server error"
	}
	data, _ := json.Marshal(errorBody{Error: msg, Code: string(errors.GetCode(err)), RequestID: requestID})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(data),
	}
}
