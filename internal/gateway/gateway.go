package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"compass-field-client/internal/config"
	"compass-field-client/internal/logger"
	"compass-field-client/internal/store"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// Gateway is the single point of outbound HTTP to the backend origin. It
// attaches the bearer token read freshly from the session store on every
// request, so login and logout during the process lifetime take effect
// immediately, and it evicts the stored token when the backend answers 401.
type Gateway struct {
	client  *resty.Client
	store   store.Store
	baseURL string
}

// New builds a Gateway against the configured backend origin.
func New(cfg *config.Config, st store.Store) *Gateway {
	client := resty.New().
		SetBaseURL(cfg.API.BaseURL).
		SetTimeout(time.Duration(cfg.API.TimeoutSeconds) * time.Second).
		SetHeader("Accept", "application/json")

	g := &Gateway{
		client:  client,
		store:   st,
		baseURL: cfg.API.BaseURL,
	}

	client.OnBeforeRequest(func(c *resty.Client, req *resty.Request) error {
		req.SetHeader("X-Request-ID", uuid.NewString())

		token, err := st.Get(req.Context(), store.KeyAuthToken)
		if err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				logger.Warn("Session store read failed, sending request unauthenticated", "error", err)
			}
			return nil
		}
		req.SetHeader("Authorization", "Bearer "+token)
		return nil
	})

	client.OnAfterResponse(func(c *resty.Client, resp *resty.Response) error {
		if resp.StatusCode() == http.StatusUnauthorized {
			// Lazy invalidation: only the persisted token is evicted here.
			// The session manager reconciles its in-memory state the next
			// time it checks the store.
			if err := st.Remove(resp.Request.Context(), store.KeyAuthToken); err != nil {
				logger.Warn("Failed to evict stored token after 401", "error", err)
			} else {
				logger.Info("Stored token evicted after 401", "path", resp.Request.URL)
			}
		}
		return nil
	})

	return g
}

// BaseURL returns the backend origin, used to resolve relative photo URLs.
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// Get performs a GET request. A nil query is allowed. When out is non-nil
// the 2xx response body is decoded into it.
func (g *Gateway) Get(ctx context.Context, path string, query map[string]string, out any) error {
	req := g.client.R().SetContext(ctx)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	if out != nil {
		req.SetResult(out)
	}
	logger.BackendCall(http.MethodGet, path)
	resp, err := req.Get(path)
	return g.check(http.MethodGet, path, resp, err)
}

// Post performs a POST request with a JSON body.
func (g *Gateway) Post(ctx context.Context, path string, body, out any) error {
	req := g.client.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}
	logger.BackendCall(http.MethodPost, path)
	resp, err := req.Post(path)
	return g.check(http.MethodPost, path, resp, err)
}

// File is one named part of a multipart upload.
type File struct {
	Name   string
	Reader io.Reader
}

// Upload performs a multipart POST, attaching each file under the given
// field name. Content-Type is negotiated by the transport.
func (g *Gateway) Upload(ctx context.Context, path, field string, files []File, out any) error {
	req := g.client.R().SetContext(ctx)
	for _, f := range files {
		req.SetFileReader(field, f.Name, f.Reader)
	}
	if out != nil {
		req.SetResult(out)
	}
	logger.BackendCall(http.MethodPost, path, "multipart_parts", len(files))
	resp, err := req.Post(path)
	return g.check(http.MethodPost, path, resp, err)
}

// check classifies a finished call into the error taxonomy. Transport errors
// never carry a status; response errors always do.
func (g *Gateway) check(method, path string, resp *resty.Response, err error) error {
	if err != nil {
		ge := classifyTransport(err)
		logger.BackendResult(method, path, 0, ge)
		return ge
	}

	status := resp.StatusCode()
	if resp.IsError() {
		ge := &Error{
			Kind:    kindForStatus(status),
			Status:  status,
			Message: serverMessage(resp.Body(), status),
		}
		logger.BackendResult(method, path, status, ge)
		return ge
	}

	logger.BackendResult(method, path, status, nil)
	return nil
}

func classifyTransport(err error) *Error {
	var ne net.Error
	timedOut := errors.Is(err, context.DeadlineExceeded) ||
		(errors.As(err, &ne) && ne.Timeout())
	if timedOut {
		return &Error{Kind: KindTimeout, Message: "Request timed out"}
	}
	return &Error{Kind: KindNetwork, Message: fmt.Sprintf("Network error: %v", err)}
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status >= 500:
		return KindServer
	default:
		return KindValidation
	}
}

// serverMessage pulls the human-readable message out of an error body,
// falling back to a generic string. The backend uses a "message" field;
// ASP.NET problem responses use "title".
func serverMessage(body []byte, status int) string {
	var payload struct {
		Message string `json:"message"`
		Title   string `json:"title"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Title != "" {
			return payload.Title
		}
	}
	switch kindForStatus(status) {
	case KindUnauthorized:
		return "Session expired, please log in again"
	case KindServer:
		return "Server error, please try again later"
	default:
		return fmt.Sprintf("Request failed (%d)", status)
	}
}
