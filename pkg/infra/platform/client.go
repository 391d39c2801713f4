package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scormpack/pkg/domain/interfaces"
	"github.com/m-mizutani/scormpack/pkg/domain/model"
	"github.com/m-mizutani/scormpack/pkg/domain/types"
)

const (
	readTimeout     = 30 * time.Second
	downloadTimeout = 5 * time.Minute

	// 3 total attempts: the initial call plus two retries after 2s and 4s.
	maxRetries      = 2
	initialInterval = 2 * time.Second
	maxInterval     = 8 * time.Second
)

// config holds internal client configuration
type config struct {
	baseURL     string
	storageFrom string
	storageTo   string
	userAgent   string
	httpClient  *http.Client

	initialInterval time.Duration
	maxInterval     time.Duration
}

// Option is a functional option for client configuration
type Option func(*config)

// WithBaseURL sets the content platform base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *config) {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithStorageRewrite sets the artifact URL prefix rewrite pair. Artifacts
// published under the raw storage bucket are served through the platform's
// content store instead.
func WithStorageRewrite(from, to string) Option {
	return func(c *config) {
		c.storageFrom = from
		c.storageTo = to
	}
}

// WithHTTPClient overrides the underlying HTTP client (used in tests).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) {
		c.httpClient = hc
	}
}

// WithRetryInterval overrides the base retry interval. The wait doubles per
// attempt up to four times the base.
func WithRetryInterval(d time.Duration) Option {
	return func(c *config) {
		c.initialInterval = d
		c.maxInterval = 4 * d
	}
}

type client struct {
	cfg config
}

// NewClient creates a content platform client.
func NewClient(opts ...Option) interfaces.ContentClient {
	cfg := config{
		baseURL:     "https://portal.igotkarmayogi.gov.in",
		storageFrom: "https://storage.googleapis.com/igotprod",
		storageTo:   "https://igotkarmayogi.gov.in/content-store",
		userAgent:   "scormpack/" + types.Version,
		httpClient:  &http.Client{},

		initialInterval: initialInterval,
		maxInterval:     maxInterval,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &client{cfg: cfg}
}

// readEnvelope is the platform read API response envelope.
type readEnvelope struct {
	ResponseCode string `json:"responseCode"`
	Params       struct {
		ErrMsg string `json:"errmsg"`
	} `json:"params"`
	Result struct {
		Content *model.Content `json:"content"`
	} `json:"result"`
}

// GetContent fetches content metadata for a DO ID, retrying transient
// failures.
func (c *client) GetContent(ctx context.Context, doID types.DOID) (*model.Content, error) {
	url := fmt.Sprintf("%s/api/content/v1/read/%s", c.cfg.baseURL, doID)

	var content *model.Content
	op := func() error {
		reqCtx, cancel := context.WithTimeout(ctx, readTimeout)
		defer cancel()

		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(goerr.Wrap(err, "failed to build content request", goerr.V("do_id", doID)))
		}
		req.Header.Set("User-Agent", c.cfg.userAgent)

		resp, err := c.cfg.httpClient.Do(req)
		if err != nil {
			return goerr.Wrap(err, "content request failed", goerr.V("do_id", doID))
		}
		defer resp.Body.Close()

		if err := classifyStatus(resp.StatusCode, url); err != nil {
			return err
		}

		var envelope readEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
			return goerr.Wrap(err, "failed to decode content response", goerr.V("do_id", doID))
		}

		if envelope.ResponseCode != "OK" {
			msg := envelope.Params.ErrMsg
			if msg == "" {
				msg = "unknown platform error"
			}
			return backoff.Permanent(goerr.New("platform rejected content read",
				goerr.V("do_id", doID),
				goerr.V("response_code", envelope.ResponseCode),
				goerr.V("errmsg", msg),
			))
		}
		if envelope.Result.Content == nil {
			return backoff.Permanent(goerr.New("content missing from platform response", goerr.V("do_id", doID)))
		}

		content = envelope.Result.Content
		return nil
	}

	if err := backoff.Retry(op, c.newBackOff(ctx)); err != nil {
		return nil, err
	}
	return content, nil
}

// DownloadArtifact streams the artifact at url to destPath with retry. The
// whole file is re-fetched on retry; partial files are truncated.
func (c *client) DownloadArtifact(ctx context.Context, url, destPath string) error {
	logger := ctxlog.From(ctx)
	url = c.RewriteStorageURL(url)

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return goerr.Wrap(err, "failed to create download directory", goerr.V("path", filepath.Dir(destPath)))
	}

	attempt := 0
	op := func() error {
		attempt++
		if attempt > 1 {
			logger.Info("Retrying artifact download",
				"url", url,
				"attempt", attempt,
			)
		}
		return c.fetchToFile(ctx, url, destPath)
	}

	return backoff.Retry(op, c.newBackOff(ctx))
}

func (c *client) fetchToFile(ctx context.Context, url, destPath string) error {
	reqCtx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return backoff.Permanent(goerr.Wrap(err, "failed to build download request", goerr.V("url", url)))
	}
	req.Header.Set("User-Agent", c.cfg.userAgent)

	resp, err := c.cfg.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "artifact download failed", goerr.V("url", url))
	}
	defer resp.Body.Close()

	if err := classifyStatus(resp.StatusCode, url); err != nil {
		return err
	}

	file, err := os.Create(destPath)
	if err != nil {
		// Filesystem errors are not transient network conditions.
		return backoff.Permanent(goerr.Wrap(err, "failed to create file", goerr.V("path", destPath)))
	}
	defer file.Close()

	if _, err := io.Copy(file, resp.Body); err != nil {
		return goerr.Wrap(err, "failed to write artifact", goerr.V("url", url), goerr.V("path", destPath))
	}
	if err := file.Sync(); err != nil {
		return backoff.Permanent(goerr.Wrap(err, "failed to flush artifact", goerr.V("path", destPath)))
	}
	return nil
}

// RewriteStorageURL converts raw storage bucket URLs to the platform's
// content store endpoint.
func (c *client) RewriteStorageURL(url string) string {
	if c.cfg.storageFrom != "" && strings.HasPrefix(url, c.cfg.storageFrom) {
		return c.cfg.storageTo + strings.TrimPrefix(url, c.cfg.storageFrom)
	}
	return url
}

// classifyStatus maps HTTP status codes to retryable or permanent errors.
// 5xx and 429 are transient; other non-200 codes are permanent.
func classifyStatus(status int, url string) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status >= 500 || status == http.StatusTooManyRequests:
		return goerr.New("transient platform error", goerr.V("status", status), goerr.V("url", url))
	default:
		return backoff.Permanent(goerr.New("platform request rejected", goerr.V("status", status), goerr.V("url", url)))
	}
}

// newBackOff builds the retry policy: 2s, 4s waits between the 3 total
// attempts, capped at 8s, without jitter so behavior is deterministic.
func (c *client) newBackOff(ctx context.Context) backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.initialInterval
	bo.MaxInterval = c.cfg.maxInterval
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	return backoff.WithContext(backoff.WithMaxRetries(bo, maxRetries), ctx)
}
