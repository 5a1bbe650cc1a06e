// Package client speaks the escform REST contract: the response store
// endpoints a fill session persists through, and the form fetch endpoints a
// rendering surface loads its question graph from.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/escform/escform/model"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// NewWithHTTPClient lets callers own transport concerns such as timeouts.
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// CreateDraft posts a new partial response and returns it with the
// store-assigned id.
func (c *Client) CreateDraft(ctx context.Context, rsp model.Response) (model.Response, error) {
	rsp.ID = ""
	return c.sendResponse(ctx, http.MethodPost, rsp)
}

// Update overwrites an existing response by id.
func (c *Client) Update(ctx context.Context, rsp model.Response) (model.Response, error) {
	if rsp.ID == "" {
		return model.Response{}, errors.New("client: response id required for update")
	}
	return c.sendResponse(ctx, http.MethodPut, rsp)
}

// Finalize marks the response COMPLETED. Without an id it creates-and-
// completes in a single POST.
func (c *Client) Finalize(ctx context.Context, rsp model.Response) (model.Response, error) {
	rsp.Status = model.StatusCompleted
	rsp.PartialSave = false
	if rsp.ID == "" {
		return c.sendResponse(ctx, http.MethodPost, rsp)
	}
	return c.sendResponse(ctx, http.MethodPut, rsp)
}

func (c *Client) sendResponse(ctx context.Context, method string, rsp model.Response) (model.Response, error) {
	body, err := json.Marshal(rsp)
	if err != nil {
		return model.Response{}, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/response", bytes.NewReader(body))
	if err != nil {
		return model.Response{}, err
	}
	req.Header.Set("content-type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return model.Response{}, err
	}
	defer res.Body.Close()

	var envelope model.ResponseEnvelope
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return model.Response{}, fmt.Errorf("client: decode response: %w", err)
	}
	if !envelope.Success || envelope.Data == nil {
		return model.Response{}, serverError(res.StatusCode, envelope.Message)
	}
	return *envelope.Data, nil
}

// Form fetches a form with its ordered questions and options.
func (c *Client) Form(ctx context.Context, id string) (*model.Form, error) {
	return c.fetchForm(ctx, "/api/forms/"+url.PathEscape(id))
}

// FormBySlug fetches a form by its unique subdomain slug.
func (c *Client) FormBySlug(ctx context.Context, slug string) (*model.Form, error) {
	return c.fetchForm(ctx, "/api/forms/slug/"+url.PathEscape(slug))
}

func (c *Client) fetchForm(ctx context.Context, path string) (*model.Form, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	var envelope model.FormEnvelope
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("client: decode form: %w", err)
	}
	if !envelope.Success || envelope.Data == nil {
		return nil, serverError(res.StatusCode, envelope.Message)
	}
	return envelope.Data, nil
}

func serverError(status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	return fmt.Errorf("client: server said %d: %s", status, message)
}
