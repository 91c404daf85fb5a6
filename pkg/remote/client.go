package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"tableflip.dev/daybook/pkg/apperr"
	"tableflip.dev/daybook/pkg/entity"
	"tableflip.dev/daybook/pkg/logging"
)

// DefaultTimeout bounds a single request.
const DefaultTimeout = 30 * time.Second

// Client is the HTTP implementation of Store.
type Client struct {
	endpoint string
	http     *http.Client
}

var _ Store = (*Client)(nil)

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the http.Client used for requests.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// NewClient returns a client for endpoint.
func NewClient(endpoint string, opts ...ClientOption) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, apperr.NewInvalidInputError("remote.endpoint", endpoint, "endpoint is required")
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, apperr.NewInvalidInputError("remote.endpoint", endpoint, "not an absolute URL")
	}
	c := &Client{endpoint: endpoint, http: &http.Client{Timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the configured endpoint.
func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) List(ctx context.Context, kind entity.Kind, month string) ([]entity.Row, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, apperr.NewRemoteError("get "+string(kind), err)
	}
	q := u.Query()
	q.Set("action", string(ActionGet))
	q.Set("sheet", string(kind))
	if month != "" {
		q.Set("month", month)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, apperr.NewRemoteError("get "+string(kind), err)
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, apperr.NewRemoteError("get "+string(kind), err)
	}
	if resp.Data == nil {
		resp.Data = []entity.Row{}
	}
	return resp.Data, nil
}

func (c *Client) Create(ctx context.Context, kind entity.Kind, row entity.Row) (entity.Row, error) {
	row = row.Clone()
	if row == nil {
		row = entity.Row{}
	}
	if row.ID() == "" {
		row["id"] = uuid.NewString()
	}
	resp, err := c.post(ctx, Request{Action: ActionCreate, Sheet: kind, ID: row.ID(), Payload: row})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) > 0 && resp.Data[0].ID() != "" {
		return resp.Data[0], nil
	}
	return row, nil
}

func (c *Client) Update(ctx context.Context, kind entity.Kind, id string, patch entity.Row) error {
	if id == "" {
		return apperr.NewInvalidInputError("id", id, "update needs an id")
	}
	_, err := c.post(ctx, Request{Action: ActionUpdate, Sheet: kind, ID: id, Payload: patch})
	return err
}

func (c *Client) Delete(ctx context.Context, kind entity.Kind, id string) error {
	if id == "" {
		return apperr.NewInvalidInputError("id", id, "delete needs an id")
	}
	_, err := c.post(ctx, Request{Action: ActionDelete, Sheet: kind, ID: id})
	return err
}

func (c *Client) post(ctx context.Context, body Request) (*Response, error) {
	op := fmt.Sprintf("%s %s", body.Action, body.Sheet)
	b, err := json.Marshal(body)
	if err != nil {
		return nil, apperr.NewRemoteError(op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, apperr.NewRemoteError(op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.do(req)
	if err != nil {
		return nil, apperr.NewRemoteError(op, err).WithContext("id", body.ID)
	}
	return resp, nil
}

func (c *Client) do(req *http.Request) (*Response, error) {
	logging.Debugf("remote: %s %s", req.Method, req.URL.Redacted())
	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 32<<20))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %s", res.Status)
	}
	var out Response
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if !out.Success {
		msg := out.Message
		if msg == "" {
			msg = "store reported failure"
		}
		return nil, errors.New(msg)
	}
	return &out, nil
}
