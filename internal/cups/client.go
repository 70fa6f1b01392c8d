package cups

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"printdoctor/internal/config"
	"printdoctor/internal/logging"
)

// DefaultServer is used when neither configuration nor CUPS_SERVER name one.
const DefaultServer = "localhost:631"

var (
	// ErrConnection reports that the scheduler could not be reached.
	ErrConnection = errors.New("cups connection failed")
	// ErrNotFound reports that the scheduler has no such queue or PPD.
	ErrNotFound = errors.New("cups resource not found")
)

// ProtocolError is returned for any non-success HTTP status.
type ProtocolError struct {
	StatusCode int
	Status     string
	Resource   string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("cups %s: %s", e.Resource, e.Status)
}

// Is matches ErrNotFound for 404 responses.
func (e *ProtocolError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Client fetches resources from one CUPS scheduler.
type Client struct {
	http    *http.Client
	baseURL *url.URL
	user    string
	workDir string
	logger  *slog.Logger
}

// New builds a client for cfg.CUPS. Downloaded PPDs are written to
// cfg.Paths.WorkDir, or the system temp dir when unset.
func New(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("cups client requires configuration")
	}
	server := resolveServer(cfg.CUPS.Server)

	transport := &http.Transport{
		TLSClientConfig:   &tls.Config{MinVersion: tls.VersionTLS12},
		DisableKeepAlives: true,
	}
	scheme := "http"
	if cfg.CUPS.TLS {
		scheme = "https"
	}
	host := server
	if strings.HasPrefix(server, "/") {
		socket := server
		dialer := &net.Dialer{}
		transport.DialContext = func(ctx context.Context, _, _ string) (net.Conn, error) {
			return dialer.DialContext(ctx, "unix", socket)
		}
		host = "localhost"
		scheme = "http"
	} else if !strings.Contains(host, ":") || strings.HasSuffix(host, "]") {
		host = net.JoinHostPort(strings.Trim(host, "[]"), "631")
	}

	timeout := time.Duration(cfg.CUPS.TimeoutSeconds) * time.Second
	return &Client{
		http:    &http.Client{Transport: transport, Timeout: timeout},
		baseURL: &url.URL{Scheme: scheme, Host: host},
		user:    strings.TrimSpace(cfg.CUPS.User),
		workDir: strings.TrimSpace(cfg.Paths.WorkDir),
		logger:  logging.NewComponentLogger(logger, "cups"),
	}, nil
}

// resolveServer applies the CUPS_SERVER fallback and drops the
// "/version=..." suffix that cupsServer() accepts.
func resolveServer(server string) string {
	server = strings.TrimSpace(server)
	if server == "" {
		server = strings.TrimSpace(os.Getenv("CUPS_SERVER"))
	}
	if server == "" {
		return DefaultServer
	}
	if !strings.HasPrefix(server, "/") {
		if idx := strings.Index(server, "/"); idx >= 0 {
			server = server[:idx]
		}
	}
	return server
}

// Server returns the scheduler address in use.
func (c *Client) Server() string {
	return c.baseURL.Host
}

// GetPPD downloads the PPD for queue into a new temporary file and returns
// its path. The caller owns the file and must remove it.
func (c *Client) GetPPD(ctx context.Context, queue string) (string, error) {
	queue = strings.TrimSpace(queue)
	if queue == "" {
		return "", errors.New("cups: queue name required")
	}
	resource := "/printers/" + queue + ".ppd"
	resp, err := c.do(ctx, http.MethodGet, resource)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if c.workDir != "" {
		if err := os.MkdirAll(c.workDir, 0o755); err != nil {
			return "", fmt.Errorf("create work dir: %w", err)
		}
	}
	file, err := os.CreateTemp(c.workDir, "printdoctor-*.ppd")
	if err != nil {
		return "", fmt.Errorf("create temp ppd: %w", err)
	}
	path := file.Name()
	written, copyErr := io.Copy(file, resp.Body)
	closeErr := file.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(path)
		if copyErr != nil {
			return "", fmt.Errorf("%w: read %s: %w", ErrConnection, resource, copyErr)
		}
		return "", fmt.Errorf("write temp ppd: %w", closeErr)
	}

	logging.WithContext(ctx, c.logger).Debug("fetched ppd",
		logging.String("resource", resource),
		logging.String("path", path),
		logging.Int("bytes", int(written)),
	)
	return path, nil
}

// QueueExists reports whether the scheduler knows queue.
func (c *Client) QueueExists(ctx context.Context, queue string) (bool, error) {
	queue = strings.TrimSpace(queue)
	if queue == "" {
		return false, nil
	}
	resp, err := c.do(ctx, http.MethodHead, "/printers/"+queue)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	resp.Body.Close()
	return true, nil
}

func (c *Client) do(ctx context.Context, method, resource string) (*http.Response, error) {
	target := *c.baseURL
	target.Path = resource
	req, err := http.NewRequestWithContext(ctx, method, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", config.AppName)
	if c.user != "" {
		req.SetBasicAuth(c.user, "")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", ErrConnection, method, c.baseURL.Host, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, &ProtocolError{StatusCode: resp.StatusCode, Status: resp.Status, Resource: resource}
	}
	return resp, nil
}

// Ping confirms the scheduler answers HTTP requests.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodHead, "/")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
