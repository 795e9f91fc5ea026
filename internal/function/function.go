// Package function runs one gallery function per Lambda-style invocation.
package function

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/weddinggallery/internal/config"
	"github.com/weddinggallery/internal/db"
	"github.com/weddinggallery/internal/handler"
	"github.com/weddinggallery/internal/router"
)

// Opener opens the datastore connection used by a single invocation.
type Opener func(ctx context.Context) (*gorm.DB, error)

// APIFactory builds the handler set for an invocation.
type APIFactory func(gdb *gorm.DB, cfg config.AppConfig, log zerolog.Logger) *handler.API

// Handler serves one named function.
type Handler struct {
	name   string
	cfg    config.AppConfig
	log    zerolog.Logger
	policy handler.CORSPolicy
	open   Opener
	newAPI APIFactory
}

// New creates a Handler for the function called name.
func New(name string, cfg config.AppConfig, log zerolog.Logger, open Opener) (*Handler, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	policy, ok := router.Policies()[name]
	if !ok {
		return nil, fmt.Errorf("unknown function %q", name)
	}
	if open == nil {
		open = DatabaseOpener(cfg)
	}
	return &Handler{
		name:   name,
		cfg:    cfg,
		log:    log.With().Str("function", name).Logger(),
		policy: policy,
		open:   open,
		newAPI: handler.NewAPI,
	}, nil
}

// DatabaseOpener opens cfg.DatabaseURL for every invocation.
func DatabaseOpener(cfg config.AppConfig) Opener {
	return func(ctx context.Context) (*gorm.DB, error) {
		if err := cfg.RequireDatabase(); err != nil {
			return nil, err
		}
		return db.Open(cfg.DatabaseURL, db.Options{})
	}
}

// Invoke handles one event. The datastore connection lives for this call only.
func (h *Handler) Invoke(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	requestID := event.RequestContext.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := h.log.With().Str("request_id", requestID).Logger()

	method := strings.ToUpper(strings.TrimSpace(event.HTTPMethod))
	if method == "" {
		method = http.MethodGet
	}
	if method == http.MethodOptions {
		return h.preflight(), nil
	}

	gdb, err := h.open(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to open datastore")
		return h.errorResponse(http.StatusInternalServerError, "internal server error"), nil
	}
	defer func() {
		if cerr := db.Close(gdb); cerr != nil {
			log.Warn().Err(cerr).Msg("failed to close datastore")
		}
	}()

	fn, ok := router.Lookup(h.newAPI(gdb, h.cfg, log), h.name)
	if !ok {
		return h.errorResponse(http.StatusInternalServerError, "internal server error"), nil
	}

	req, err := toHTTPRequest(ctx, method, event, requestID)
	if err != nil {
		log.Warn().Err(err).Msg("malformed event")
		return h.errorResponse(http.StatusBadRequest, "Invalid request"), nil
	}

	rec := newResponseRecorder()
	router.NewFunctionEngine(fn, log).ServeHTTP(rec, req)
	return rec.toProxyResponse(), nil
}

func (h *Handler) preflight() events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusNoContent,
		Headers:    h.policy.Headers(),
		Body:       "",
	}
}

func (h *Handler) errorResponse(status int, message string) events.APIGatewayProxyResponse {
	headers := h.policy.Headers()
	headers["Content-Type"] = "application/json; charset=utf-8"
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       fmt.Sprintf(`{"error":%q}`, message),
	}
}

// toHTTPRequest maps the event onto a request for the function engine, which serves at "/".
func toHTTPRequest(ctx context.Context, method string, event events.APIGatewayProxyRequest, requestID string) (*http.Request, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded && event.Body != "" {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, fmt.Errorf("decode body: %w", err)
		}
		body = decoded
	}

	query := url.Values{}
	for key, values := range event.MultiValueQueryStringParameters {
		for _, v := range values {
			query.Add(key, v)
		}
	}
	for key, value := range event.QueryStringParameters {
		if _, exists := query[key]; !exists {
			query.Set(key, value)
		}
	}

	target := url.URL{Path: "/", RawQuery: query.Encode()}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	for key, values := range event.MultiValueHeaders {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	for key, value := range event.Headers {
		if req.Header.Get(key) == "" {
			req.Header.Set(key, value)
		}
	}
	if req.Header.Get("Content-Type") == "" && len(body) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(handler.RequestIDHeader, requestID)
	return req, nil
}
