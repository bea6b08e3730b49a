package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tetsadou/pixup/internal/apperrors"
	"github.com/tetsadou/pixup/internal/httpclient"
)

// Per-endpoint deadlines. URL uploads get the longest one because the server
// fetches the remote image before storing it.
const (
	VerifyTimeout    = 10 * time.Second
	HistoryTimeout   = 15 * time.Second
	UploadTimeout    = 60 * time.Second
	URLUploadTimeout = 90 * time.Second
)

const tokenHeader = "X-Verification-Token"

// statusMessages maps HTTP codes without a usable JSON message to fixed text.
var statusMessages = map[int]string{
	http.StatusBadRequest:          "Bad request.",
	http.StatusForbidden:           "Access denied.",
	http.StatusNotFound:            "Endpoint not found. Check the server URL.",
	http.StatusTooManyRequests:     "Too many requests. Please slow down.",
	http.StatusInternalServerError: "Server error. Please try again later.",
	http.StatusBadGateway:          "Server unreachable behind its proxy.",
	http.StatusServiceUnavailable:  "Server temporarily unavailable.",
	http.StatusGatewayTimeout:      "Server timed out upstream.",
}

// Client talks to the upload service. It is safe for use from a single
// goroutine per operation; the single-flight guarantee for uploads lives in
// the upload package, not here.
type Client struct {
	baseURL string
	token   string

	// OnAuthExpired is invoked once per 401 response, before the auth error
	// is returned. Callers hook token clearing and the re-verification flow
	// here; nothing else may clear the stored token.
	OnAuthExpired func()
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
	}
}

// UploadRequest carries one file upload. Content is read exactly once.
type UploadRequest struct {
	FileName string
	Channel  string
	Content  io.Reader
	Size     int64
	// OnProgress receives sent/total byte counts while the request body is
	// transmitted. Total covers the whole multipart body, so the fraction
	// reaches 1.0 exactly when the last byte leaves.
	OnProgress func(sent, total int64)
}

// CheckVerification validates a token with the server. A status-0 response
// means the token is good. Timeouts and transport failures are surfaced as
// retryable errors, not as auth failures: an offline server must not kick the
// user back through verification.
func (c *Client) CheckVerification(ctx context.Context, tok string) error {
	payload, err := json.Marshal(map[string]string{"token": tok})
	if err != nil {
		return fmt.Errorf("failed to marshal verification request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/check_verification", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	_, err = c.do(req, httpclient.ClientFor(VerifyTimeout))
	return err
}

// History fetches the full upload history. The list replaces any client-side
// copy wholesale; there is no incremental merge.
func (c *Client) History(ctx context.Context) ([]HistoryItem, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/history", nil)
	if err != nil {
		return nil, err
	}
	env, err := c.do(req, httpclient.ClientFor(HistoryTimeout))
	if err != nil {
		return nil, err
	}
	var items []HistoryItem
	if len(env.Result) > 0 {
		if err := json.Unmarshal(env.Result, &items); err != nil {
			return nil, apperrors.Payload(fmt.Errorf("failed to decode history list: %w", err))
		}
	}
	return items, nil
}

// Upload transmits a file as multipart form data to the selected channel.
func (c *Client) Upload(ctx context.Context, up UploadRequest) (*UploadResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", up.FileName)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := io.Copy(part, up.Content); err != nil {
		return nil, fmt.Errorf("failed to read upload content: %w", err)
	}
	if err := w.WriteField("channel", up.Channel); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	total := int64(buf.Len())
	var body io.Reader = &buf
	if up.OnProgress != nil {
		body = &progressReader{r: &buf, total: total, report: up.OnProgress}
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/upload", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.ContentLength = total

	env, err := c.do(req, httpclient.ClientFor(UploadTimeout))
	if err != nil {
		return nil, err
	}
	return decodeUploadResult(env)
}

// UploadFromURL asks the server to fetch a remote image and store it.
func (c *Client) UploadFromURL(ctx context.Context, rawURL, channel string) (*UploadResult, error) {
	payload, err := json.Marshal(map[string]string{"url": rawURL, "channel": channel})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal URL upload request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/upload_from_url", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	env, err := c.do(req, httpclient.ClientFor(URLUploadTimeout))
	if err != nil {
		return nil, err
	}
	return decodeUploadResult(env)
}

// DeleteHistory removes one history item by its server-assigned ID.
func (c *Client) DeleteHistory(ctx context.Context, id string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/delete_history/"+id, nil)
	if err != nil {
		return err
	}
	_, err = c.do(req, httpclient.ClientFor(HistoryTimeout))
	return err
}

// ClearHistory removes the entire upload history.
func (c *Client) ClearHistory(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/clear_history", nil)
	if err != nil {
		return err
	}
	_, err = c.do(req, httpclient.ClientFor(HistoryTimeout))
	return err
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set(tokenHeader, c.token)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	return req, nil
}

func (c *Client) do(req *http.Request, client *http.Client) (*envelope, error) {
	body, resp, err := httpclient.DoAndRead(client, req)
	if err != nil {
		return nil, classifyTransportError(req.Context(), err)
	}

	slog.Debug("API response",
		"method", req.Method, "path", req.URL.Path,
		"code", resp.StatusCode, "request_id", req.Header.Get("X-Request-ID"))

	if resp.StatusCode == http.StatusUnauthorized {
		if c.OnAuthExpired != nil {
			c.OnAuthExpired()
		}
		return nil, apperrors.Auth(fmt.Errorf("%s %s returned 401", req.Method, req.URL.Path))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, classifyHTTPError(resp.StatusCode, resp.Status, body)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, apperrors.Payload(fmt.Errorf("failed to decode response: %w", err))
	}
	if env.Status != 0 {
		return nil, apperrors.Server(env.Message, fmt.Errorf("server status %d", env.Status))
	}
	return &env, nil
}

func decodeUploadResult(env *envelope) (*UploadResult, error) {
	var result UploadResult
	if err := json.Unmarshal(env.Result, &result); err != nil {
		return nil, apperrors.Payload(fmt.Errorf("failed to decode upload result: %w", err))
	}
	if result.FileURL == "" {
		return nil, apperrors.Payload(errors.New("upload result missing file_url"))
	}
	return &result, nil
}

// classifyHTTPError maps a non-200, non-401 response to a server error.
// The message preference order is: parsed JSON message, the fixed per-code
// table, the HTTP status text, the bare code. 413 stays distinct because it
// usually comes from a proxy in front of the application, not the app itself.
func classifyHTTPError(statusCode int, status string, body []byte) error {
	cause := fmt.Errorf("http status %s", status)

	if statusCode == http.StatusRequestEntityTooLarge {
		return apperrors.Server("File too large: the server refused the upload (413).", cause)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && strings.TrimSpace(env.Message) != "" {
		return apperrors.Server(env.Message, cause)
	}
	if msg, ok := statusMessages[statusCode]; ok {
		return apperrors.Server(msg, cause)
	}
	if text := http.StatusText(statusCode); text != "" {
		return apperrors.Server(text, cause)
	}
	return apperrors.Server(fmt.Sprintf("HTTP %d", statusCode), cause)
}

// classifyTransportError separates timeouts and cancellations from plain
// connection failures so each gets its own user-facing message.
func classifyTransportError(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return apperrors.New(apperrors.KindTimeout, "Request canceled.", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.Timeout(err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return apperrors.Timeout(err)
	}
	return apperrors.Network(err)
}

// progressReader reports transmitted bytes as the HTTP client drains the
// request body.
type progressReader struct {
	r      io.Reader
	sent   int64
	total  int64
	report func(sent, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.report(p.sent, p.total)
	}
	return n, err
}
