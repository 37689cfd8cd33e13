package catalogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/storefront-session/pkg/errors"
	"github.com/angelmondragon/storefront-session/pkg/metrics"
)

const (
	defaultTimeout            = 10 * time.Second
	responseBodyLimit   int64 = 8 << 20
	errorBodyLogLimit         = 512
	defaultAddToCartMsg       = "Failed to add item to bag."
)

const (
	opFetchProducts      = "fetch_products"
	opFetchProduct       = "fetch_product"
	opFetchFilterOptions = "fetch_filter_options"
	opFetchCart          = "fetch_cart"
	opAddToCart          = "add_to_cart"
	opUpdateQuantity     = "update_quantity"
	opRemoveLine         = "remove_line"
)

var errBaseURLRequired = errors.New("catalog api base url is required")

// Client wraps the remote catalog/cart API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *metrics.UpstreamMetrics
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithMetrics records every upstream call on the provided collector.
func WithMetrics(m *metrics.UpstreamMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient builds a catalog client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("parse catalog api base url: %w", err)
	}

	client := &Client{
		baseURL:    trimmed,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	if client.httpClient == nil {
		client.httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return client, nil
}

// ForVisitor returns a client that shares the transport but keeps its own
// cookie jar, so the backend's cart cookie stays scoped to one visitor.
func (c *Client) ForVisitor() *Client {
	jar, _ := cookiejar.New(nil)
	scoped := *c.httpClient
	scoped.Jar = jar
	return &Client{
		httpClient: &scoped,
		baseURL:    c.baseURL,
		metrics:    c.metrics,
	}
}

// FetchProducts returns the catalog matching query. The result is all or
// nothing: a failed or undecodable response yields no products.
func (c *Client) FetchProducts(ctx context.Context, query url.Values) ([]Product, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog client not configured")
	}
	resp, err := c.send(ctx, opFetchProducts, http.MethodGet, "products/", query, nil)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, resp.networkError("fetch products failed")
	}
	var products []Product
	if err := resp.decode(&products); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "decode products response")
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// FetchProduct loads a single product by id.
func (c *Client) FetchProduct(ctx context.Context, id ID) (*Product, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog client not configured")
	}
	trimmed := strings.TrimSpace(id.String())
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	resp, err := c.send(ctx, opFetchProduct, http.MethodGet, "products/"+url.PathEscape(trimmed), nil, nil)
	if err != nil {
		return nil, err
	}
	if resp.status == http.StatusNotFound {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found.").WithDetails(map[string]any{"product_id": trimmed})
	}
	if !resp.ok() {
		return nil, resp.networkError("fetch product failed")
	}
	var product Product
	if err := resp.decode(&product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "decode product response")
	}
	return &product, nil
}

// FetchFilterOptions returns the filter categories and their values.
func (c *Client) FetchFilterOptions(ctx context.Context) (FilterOptionSet, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog client not configured")
	}
	resp, err := c.send(ctx, opFetchFilterOptions, http.MethodGet, "products/filters/", nil, nil)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, resp.networkError("fetch filter options failed")
	}
	var options FilterOptionSet
	if err := resp.decode(&options); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "decode filter options response")
	}
	if options == nil {
		options = FilterOptionSet{}
	}
	return options, nil
}

// FetchCart returns the visitor's cart lines in backend order.
func (c *Client) FetchCart(ctx context.Context) ([]CartLine, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "catalog client not configured")
	}
	resp, err := c.send(ctx, opFetchCart, http.MethodGet, "cart/", nil, nil)
	if err != nil {
		return nil, err
	}
	if !resp.ok() {
		return nil, resp.networkError("fetch cart failed")
	}
	var envelope cartEnvelope
	if err := resp.decode(&envelope); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "decode cart response")
	}
	if envelope.Items == nil {
		envelope.Items = []CartLine{}
	}
	return envelope.Items, nil
}

// AddToCart posts a new line. Size selection is the caller's responsibility.
// A refusal from the backend comes back as CodeRejected carrying the
// backend's detail message verbatim.
func (c *Client) AddToCart(ctx context.Context, req AddToCartRequest) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "catalog client not configured")
	}
	resp, err := c.send(ctx, opAddToCart, http.MethodPost, "cart/", nil, req)
	if err != nil {
		return err
	}
	if resp.ok() {
		return nil
	}
	return resp.mutationError(defaultAddToCartMsg, "add to cart failed")
}

// UpdateQuantity sets the quantity of one cart line.
func (c *Client) UpdateQuantity(ctx context.Context, lineID ID, quantity int) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "catalog client not configured")
	}
	path, err := linePath(lineID)
	if err != nil {
		return err
	}
	resp, err := c.send(ctx, opUpdateQuantity, http.MethodPatch, path, nil, updateQuantityRequest{Quantity: quantity})
	if err != nil {
		return err
	}
	if resp.ok() {
		return nil
	}
	if resp.status == http.StatusNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	return resp.mutationError("Failed to update quantity.", "update quantity failed")
}

// RemoveLine deletes one cart line.
func (c *Client) RemoveLine(ctx context.Context, lineID ID) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "catalog client not configured")
	}
	path, err := linePath(lineID)
	if err != nil {
		return err
	}
	resp, err := c.send(ctx, opRemoveLine, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	if resp.ok() {
		return nil
	}
	if resp.status == http.StatusNotFound {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	return resp.mutationError("Failed to remove item.", "remove line failed")
}

func linePath(lineID ID) (string, error) {
	trimmed := strings.TrimSpace(lineID.String())
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "cart line id is required")
	}
	return "cart/" + url.PathEscape(trimmed) + "/", nil
}

type response struct {
	op     string
	status int
	body   []byte
}

func (r *response) ok() bool {
	return r.status >= 200 && r.status < 300
}

func (r *response) decode(dest any) error {
	if len(bytes.TrimSpace(r.body)) == 0 {
		return errors.New("empty response body")
	}
	return json.Unmarshal(r.body, dest)
}

func (r *response) networkError(message string) error {
	return pkgerrors.Wrap(pkgerrors.CodeNetwork, fmt.Errorf("status %d: %s", r.status, r.snippet()), message)
}

// mutationError maps a refused cart mutation. A detail message from the
// backend, or any 4xx, is a rejection the visitor can read; anything else is
// a network failure.
func (r *response) mutationError(fallback, message string) error {
	var body failureBody
	if err := json.Unmarshal(r.body, &body); err == nil && strings.TrimSpace(body.Detail) != "" {
		return pkgerrors.New(pkgerrors.CodeRejected, body.Detail).WithDetails(map[string]any{"status": r.status})
	}
	if r.status >= 400 && r.status < 500 {
		return pkgerrors.New(pkgerrors.CodeRejected, fallback).WithDetails(map[string]any{"status": r.status})
	}
	return r.networkError(message)
}

func (r *response) snippet() string {
	text := strings.TrimSpace(string(r.body))
	if len(text) > errorBodyLogLimit {
		return text[:errorBodyLogLimit]
	}
	return text
}

func (c *Client) send(ctx context.Context, op, method, path string, query url.Values, payload any) (*response, error) {
	start := time.Now()
	resp, err := c.roundTrip(ctx, op, method, path, query, payload)
	c.metrics.Observe(op, outcome(resp, err), time.Since(start))
	return resp, err
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, query url.Values, payload any) (*response, error) {
	target := c.buildURL(path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal "+op+" request")
		}
		body = bytes.NewReader(encoded)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build "+op+" request")
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "execute "+op+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, "read "+op+" response")
	}
	return &response{op: op, status: resp.StatusCode, body: raw}, nil
}

func (c *Client) buildURL(path string) string {
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", c.baseURL, path)
}

func outcome(resp *response, err error) string {
	switch {
	case err != nil:
		return "network_error"
	case resp == nil:
		return "unknown"
	case resp.ok():
		return "ok"
	case resp.status >= 500:
		return "server_error"
	default:
		return "client_error"
	}
}
