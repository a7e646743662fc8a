package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"reddit-source/internal/config"
)

// Installed-app credential shipped with the original plugin. Only used when
// no client_id is configured.
const (
	builtinClientID     = "hRtL0O2A3Sh35w"
	builtinClientSecret = "_0HUKc-uMKAnsL4GQrYSjMaHtjM"
)

// Client talks to the Reddit token endpoint and the OAuth API.
type Client struct {
	tokenURL     string
	apiURL       string
	grantType    string
	deviceID     string
	userAgent    string
	clientID     string
	clientSecret string
	httpClient   *http.Client
	limiter      *rate.Limiter
}

func NewClient(cfg config.RedditConfig) *Client {
	clientID, clientSecret := cfg.ClientID, cfg.ClientSecret
	if clientID == "" {
		log.Warn().Msg("No Reddit client_id configured, using the built-in installed-app credential")
		clientID, clientSecret = builtinClientID, builtinClientSecret
	}

	rpm := cfg.RequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}
	burst := rpm / 10
	if burst < 1 {
		burst = 1
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		tokenURL:     cfg.TokenURL,
		apiURL:       strings.TrimRight(cfg.APIURL, "/"),
		grantType:    cfg.GrantType,
		deviceID:     cfg.DeviceID,
		userAgent:    cfg.UserAgent,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient: &http.Client{
			Timeout: timeout,
			// Unknown subreddits redirect to search; report the redirect.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), burst),
	}
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

// summarize turns an error response body into a one-line message.
func summarize(resp *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := strings.TrimSpace(string(data))

	var payload struct {
		Message string `json:"message"`
		Reason  string `json:"reason"`
		Error   any    `json:"error"`
	}
	if err := json.Unmarshal(data, &payload); err == nil {
		switch {
		case payload.Reason != "":
			msg = payload.Reason
		case payload.Message != "":
			msg = payload.Message
		case payload.Error != nil:
			if s, ok := payload.Error.(string); ok {
				msg = s
			}
		}
	}

	if i := strings.IndexAny(msg, "\r\n"); i >= 0 {
		msg = msg[:i]
	}
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return msg
}
