package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"nutrisnap-backend/internal/nutrition"
)

// ErrAnalysis is returned when the endpoint is unreachable or answers non-2xx.
var ErrAnalysis = errors.New("analysis request failed")

const (
	formField       = "file"
	maxResponseBody = 1 << 20
)

// Options configures the analysis endpoint client.
type Options struct {
	URL     string
	Timeout time.Duration

	// Static header auth, e.g. AuthHeader "Authorization", AuthToken "Bearer ...".
	AuthHeader string
	AuthToken  string

	// OAuth2 client credentials; used when ClientID and TokenURL are set.
	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string
}

// Client submits meal images to the nutrition analysis webhook.
type Client struct {
	url        string
	authHeader string
	authToken  string
	httpClient *http.Client
}

// New builds a client from opts.
func New(opts Options) (*Client, error) {
	url := strings.TrimSpace(opts.URL)
	if url == "" {
		return nil, fmt.Errorf("ANALYSIS_URL is required")
	}

	httpClient := &http.Client{}
	if strings.TrimSpace(opts.ClientID) != "" && strings.TrimSpace(opts.TokenURL) != "" {
		cc := clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     opts.TokenURL,
			Scopes:       opts.Scopes,
		}
		httpClient = cc.Client(context.Background())
	}
	if opts.Timeout > 0 {
		httpClient.Timeout = opts.Timeout
	}

	c := &Client{url: url, httpClient: httpClient}
	if header := strings.TrimSpace(opts.AuthHeader); header != "" && opts.AuthToken != "" {
		c.authHeader = header
		c.authToken = opts.AuthToken
	}
	return c, nil
}

// NewWithHTTPClient is used by tests to inject a transport.
func NewWithHTTPClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{url: url, httpClient: httpClient}
}

// Analyze posts the raw image bytes and parses the nutrition analysis.
func (c *Client) Analyze(ctx context.Context, fileName, contentType string, data []byte) (nutrition.Analysis, error) {
	body, formContentType, err := buildForm(fileName, contentType, data)
	if err != nil {
		return nutrition.Analysis{}, fmt.Errorf("%w: build form: %v", ErrAnalysis, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return nutrition.Analysis{}, fmt.Errorf("%w: %v", ErrAnalysis, err)
	}
	req.Header.Set("Content-Type", formContentType)
	req.Header.Set("Accept", "application/json")
	if c.authHeader != "" {
		req.Header.Set(c.authHeader, c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nutrition.Analysis{}, fmt.Errorf("%w: %w", ErrAnalysis, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nutrition.Analysis{}, fmt.Errorf("%w: read body: %w", ErrAnalysis, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nutrition.Analysis{}, fmt.Errorf("%w: status %d", ErrAnalysis, resp.StatusCode)
	}
	return nutrition.Parse(raw)
}

func buildForm(fileName, contentType string, data []byte) (io.Reader, string, error) {
	if strings.TrimSpace(fileName) == "" {
		fileName = "meal.jpg"
	}
	if strings.TrimSpace(contentType) == "" {
		contentType = "image/jpeg"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, formField, fileName))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

// Unavailable is used when no endpoint is configured; every call fails with ErrAnalysis.
type Unavailable struct{}

func (Unavailable) Analyze(context.Context, string, string, []byte) (nutrition.Analysis, error) {
	return nutrition.Analysis{}, fmt.Errorf("%w: ANALYSIS_URL not configured", ErrAnalysis)
}
