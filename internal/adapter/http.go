package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MKhiriev/go-offline-sync/internal/config"
	"github.com/MKhiriev/go-offline-sync/internal/logger"
	"github.com/MKhiriev/go-offline-sync/internal/utils"
	"github.com/MKhiriev/go-offline-sync/models"
	"github.com/go-resty/resty/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

type httpRemoteService struct {
	client *utils.HTTPClient

	writePath    string
	readPath     string
	writeTimeout time.Duration
	readTimeout  time.Duration

	schemas *envelopeSchemas
	logger  *logger.Logger
}

// NewHTTPRemoteService constructs an HTTP/JSON implementation of
// [RemoteService]. It normalises and validates cfg.BaseURL and compiles the
// response envelope schemas.
//
// Write and Fetch are bounded by cfg.WriteTimeout and cfg.ReadTimeout
// respectively; a zero timeout leaves only the caller's context in effect.
func NewHTTPRemoteService(cfg config.ClientRemote, log *logger.Logger) (RemoteService, error) {
	baseURL, err := normalizeBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid remote base url: %w", err)
	}

	schemas, err := compileSchemas()
	if err != nil {
		return nil, fmt.Errorf("compile response schemas: %w", err)
	}

	if log == nil {
		log = logger.Nop()
	}
	log = log.Component("remote")

	client := utils.NewHTTPClient()
	client.
		SetBaseURL(baseURL).
		SetLogger(utils.NewRestyLogger(log)).
		SetHeader("Accept", "application/json")

	return &httpRemoteService{
		client:       client,
		writePath:    cfg.WritePath,
		readPath:     cfg.ReadPath,
		writeTimeout: cfg.WriteTimeout,
		readTimeout:  cfg.ReadTimeout,
		schemas:      schemas,
		logger:       log,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Write implements [RemoteService]. It POSTs the flattened operation body
// ({action, sheet, <payload fields>}) to the write path.
func (h *httpRemoteService) Write(ctx context.Context, op models.Operation) (models.WriteResponse, error) {
	ctx, cancel := withTimeout(ctx, h.writeTimeout)
	defer cancel()

	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(op.WireBody()).
		Post(h.writePath)
	if err != nil {
		return models.WriteResponse{}, fmt.Errorf("%w: write %s/%s: %w", ErrTransport, op.Collection, op.Action, err)
	}

	doc, err := h.classify(resp)
	if err != nil {
		return models.WriteResponse{}, err
	}
	if err = h.schemas.write.Validate(doc); err != nil {
		return models.WriteResponse{}, unrecognized(err)
	}

	var out models.WriteResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return models.WriteResponse{}, fmt.Errorf("%w: %w", ErrUnrecognizedResponse, err)
	}
	if out.Status == models.StatusError {
		return out, rejected(out.Message)
	}

	return out, nil
}

// Fetch implements [RemoteService]. It GETs the read path with
// ?sheet=<collection> and returns the decoded data array. A successful
// response without data yields an empty, non-nil slice.
func (h *httpRemoteService) Fetch(ctx context.Context, collection string) ([]models.Record, error) {
	ctx, cancel := withTimeout(ctx, h.readTimeout)
	defer cancel()

	resp, err := h.client.R().
		SetContext(ctx).
		SetQueryParam("sheet", collection).
		Get(h.readPath)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %w", ErrTransport, collection, err)
	}

	doc, err := h.classify(resp)
	if err != nil {
		return nil, err
	}
	if err = h.schemas.read.Validate(doc); err != nil {
		return nil, unrecognized(err)
	}

	var out models.ReadResponse
	if err = json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnrecognizedResponse, err)
	}
	if out.Status == models.StatusError {
		return nil, rejected(out.Message)
	}
	if out.Data == nil {
		out.Data = []models.Record{}
	}

	return out.Data, nil
}

// classify parses the response body. A JSON body is returned regardless of
// the HTTP status; a non-JSON body is a transport failure for 5xx responses
// and a protocol failure otherwise.
func (h *httpRemoteService) classify(resp *resty.Response) (any, error) {
	doc, err := parseJSON(resp.Body())
	if err == nil {
		return doc, nil
	}

	status := resp.StatusCode()
	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(status)
	}
	if len(body) > 200 {
		body = body[:200]
	}

	h.logger.Debug().
		Int("status", status).
		Str("body", body).
		Msg("remote answered with a non-json body")

	if status >= http.StatusInternalServerError {
		return nil, fmt.Errorf("%w: http %d: %s", ErrTransport, status, body)
	}
	return nil, fmt.Errorf("%w: http %d: %w", ErrProtocol, status, err)
}

func unrecognized(err error) error {
	var verr *jsonschema.ValidationError
	if errors.As(err, &verr) {
		return fmt.Errorf("%w: %s", ErrUnrecognizedResponse, verr.Error())
	}
	return fmt.Errorf("%w: %w", ErrUnrecognizedResponse, err)
}

func rejected(message string) error {
	if message == "" {
		return ErrRejected
	}
	return fmt.Errorf("%w: %s", ErrRejected, message)
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
