package ch

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Config holds a Client's immutable-after-construction transport and
// request-assembly configuration, built via functional Options the way
// kokizzu-ch/query.go's Client is assembled from an options-derived struct
// holding compression/protocol/logger/settings.
type Config struct {
	BaseURL  string
	Database string
	User     string
	Password string

	Compression    CompressionMode
	ValidationMode ValidationMode
	AppName        string
	Headers        map[string]string
	Options        map[string]string

	Logger *zap.Logger
	Tracer trace.Tracer

	HTTPClient *http.Client
}

// Option mutates a Config during New.
type Option func(*Config)

func WithDatabase(db string) Option   { return func(c *Config) { c.Database = db } }
func WithUser(user string) Option     { return func(c *Config) { c.User = user } }
func WithPassword(pw string) Option   { return func(c *Config) { c.Password = pw } }
func WithAppName(name string) Option  { return func(c *Config) { c.AppName = name } }
func WithCompression(m CompressionMode) Option {
	return func(c *Config) { c.Compression = m }
}
func WithValidationMode(v ValidationMode) Option {
	return func(c *Config) { c.ValidationMode = v }
}
func WithHeader(key, value string) Option {
	return func(c *Config) {
		if c.Headers == nil {
			c.Headers = map[string]string{}
		}
		c.Headers[key] = value
	}
}
func WithSetting(key, value string) Option {
	return func(c *Config) {
		if c.Options == nil {
			c.Options = map[string]string{}
		}
		c.Options[key] = value
	}
}
func WithLogger(lg *zap.Logger) Option   { return func(c *Config) { c.Logger = lg } }
func WithTracer(t trace.Tracer) Option   { return func(c *Config) { c.Tracer = t } }
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Config) { c.HTTPClient = hc }
}

// Client is a long-lived handle to one ClickHouse HTTP endpoint. It is
// shareable across goroutines; every Select/Insert call is a single-shot,
// caller-owned operation built from this Client's immutable configuration.
type Client struct {
	cfg *Config
	lg  *zap.Logger
	qb  *queryBuilder
	http *http.Client

	closed atomic.Bool
}

// New validates opts against defaults and returns a ready Client. The
// transport's connection pooling (keep-alives, per-host limits) is
// delegated entirely to http.Client/http.Transport.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("ch: base_url is required")
	}
	cfg := &Config{
		BaseURL:        baseURL,
		Compression:    CompressionLZ4,
		ValidationMode: DefaultValidationMode,
	}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 16,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	c := &Client{
		cfg:  cfg,
		lg:   cfg.Logger,
		qb:   newQueryBuilder(cfg),
		http: cfg.HTTPClient,
	}
	return c, nil
}

// IsClosed reports whether Close has been called.
func (c *Client) IsClosed() bool { return c.closed.Load() }

// Close marks the Client closed for new operations. In-flight cursors and
// writers are unaffected; they own their own request context. The
// underlying http.Transport's idle connections are left for Go's runtime
// to reap rather than forcibly torn down.
func (c *Client) Close() error {
	c.closed.Store(true)
	return nil
}

// Ping issues a lightweight GET {base_url}/ping health check, the HTTP
// analogue of chpool's native-protocol conn.Ping.
func (c *Client) Ping(ctx context.Context) error {
	if c.IsClosed() {
		return ErrClosed
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/ping", nil)
	if err != nil {
		return errors.Wrap(err, "ping")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkErr{Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return &BadResponseErr{Code: resp.Status, Message: "ping failed"}
	}
	return nil
}
