// Package splunk downloads saved-search results through the Splunk REST API
// export endpoint. One authenticated POST per download, no retries; failures
// are returned as typed FetchErrors so callers can distinguish HTTP status,
// connection, timeout and other transport problems.
package splunk

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jletteboer/P4DS/src/prompt"
)

// DefaultPort is the Splunk management port the export endpoint listens on.
const DefaultPort = 8089

// DefaultTimeout bounds the whole request including body transfer.
const DefaultTimeout = 120 * time.Second

// SearchJobReference identifies a saved search by owner, app and name.
type SearchJobReference struct {
	Owner      string
	App        string
	SearchName string
}

// LoadJobQuery returns the search string that replays the saved search's
// last completed job instead of re-running the query.
func (r SearchJobReference) LoadJobQuery() string {
	return fmt.Sprintf("loadjob savedsearch=%s:%s:%s", r.Owner, r.App, r.SearchName)
}

// Validate checks that all three parts are present.
func (r SearchJobReference) Validate() error {
	if r.Owner == "" || r.App == "" || r.SearchName == "" {
		return fmt.Errorf("incomplete saved search reference: owner=%q app=%q search=%q", r.Owner, r.App, r.SearchName)
	}
	return nil
}

// ValidFormat reports whether format is an output_mode the export endpoint accepts.
func ValidFormat(format string) bool {
	switch format {
	case "csv", "json", "raw", "xml":
		return true
	}
	return false
}

// FetchCategory classifies a failed download for error reporting.
type FetchCategory int

const (
	CategoryHTTPStatus FetchCategory = iota
	CategoryConnection
	CategoryTimeout
	CategoryOther
)

func (c FetchCategory) String() string {
	switch c {
	case CategoryHTTPStatus:
		return "http_status"
	case CategoryConnection:
		return "connection"
	case CategoryTimeout:
		return "timeout"
	}
	return "other"
}

// FetchError is the typed failure result of a download attempt.
type FetchError struct {
	Category FetchCategory
	Status   int // HTTP status code, set for CategoryHTTPStatus only
	Err      error
}

func (e *FetchError) Error() string {
	if e.Category == CategoryHTTPStatus {
		return fmt.Sprintf("fetch failed (%s): server returned status %d", e.Category, e.Status)
	}
	return fmt.Sprintf("fetch failed (%s): %v", e.Category, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Config carries the connection settings for a Client.
type Config struct {
	// Host is the Splunk server, optionally with port. Without an explicit
	// port the management port 8089 is used.
	Host string
	// Timeout bounds each request including body transfer. Zero means
	// DefaultTimeout; the export endpoint streams the whole result set, so
	// an unbounded request could hang indefinitely on a dead peer.
	Timeout time.Duration
	// InsecureTLS disables certificate verification. Splunk management
	// ports commonly serve self-signed certificates; enabling this is an
	// explicit trust decision by the operator.
	InsecureTLS bool
}

// Client issues export requests against one Splunk host.
type Client struct {
	host       string
	httpClient *http.Client
}

// NewClient builds a Client from cfg.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	transport := &http.Transport{
		TLSClientConfig:       &tls.Config{InsecureSkipVerify: cfg.InsecureTLS},
		TLSHandshakeTimeout:   20 * time.Second,
		ResponseHeaderTimeout: timeout,
		IdleConnTimeout:       30 * time.Second,
		ExpectContinueTimeout: 2 * time.Second,
	}
	return &Client{
		host:       cfg.Host,
		httpClient: &http.Client{Transport: transport, Timeout: timeout},
	}
}

// ExportURL returns the servicesNS export endpoint for the given job.
func (c *Client) ExportURL(job SearchJobReference) string {
	host := c.host
	if !strings.Contains(host, ":") {
		host = fmt.Sprintf("%s:%d", host, DefaultPort)
	}
	return fmt.Sprintf("https://%s/servicesNS/%s/%s/search/jobs/export", host, job.Owner, job.App)
}

// ExportSavedSearch performs the export POST and returns the response body
// on a 2xx status. The caller owns the returned reader.
func (c *Client) ExportSavedSearch(ctx context.Context, job SearchJobReference, creds prompt.Credentials, format string) (io.ReadCloser, error) {
	if !ValidFormat(format) {
		return nil, fmt.Errorf("invalid output format %q (want csv, json, raw or xml)", format)
	}
	if err := job.Validate(); err != nil {
		return nil, err
	}
	form := url.Values{"search": {job.LoadJobQuery()}}
	endpoint := c.ExportURL(job) + "?" + url.Values{"output_mode": {format}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(creds.Username, creds.Password)

	Infof("connecting to %s", c.host)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, categorize(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little so the connection can be reused, then drop it.
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, &FetchError{Category: CategoryHTTPStatus, Status: resp.StatusCode, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	Infof("HTTP status is OK (%s)", resp.Status)
	return resp.Body, nil
}

// DownloadResult describes a completed download.
type DownloadResult struct {
	Path    string
	Bytes   int64
	Elapsed time.Duration
}

// Download exports the saved search and writes the full response body to
// {outPathNoExt}.{format}, creating the parent directory when absent. The
// body is buffered before the file is created, so a mid-stream transport
// failure never leaves a partial file behind.
func (c *Client) Download(ctx context.Context, job SearchJobReference, creds prompt.Credentials, outPathNoExt, format string) (*DownloadResult, error) {
	start := time.Now()
	body, err := c.ExportSavedSearch(ctx, job, creds, format)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	Infof("downloading %s from %s", job.SearchName, c.host)
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, categorize(err)
	}

	outPath := outPathNoExt + "." + format
	dir := filepath.Dir(outPath)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &FetchError{Category: CategoryOther, Err: err}
		}
		Infof("directory %s did not exist, created it", dir)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return nil, &FetchError{Category: CategoryOther, Err: err}
	}
	res := &DownloadResult{Path: outPath, Bytes: int64(len(data)), Elapsed: time.Since(start)}
	Infof("saved %s (%d bytes) in %s", res.Path, res.Bytes, res.Elapsed.Truncate(time.Millisecond))
	return res, nil
}

// categorize maps a transport error onto a FetchError category. Timeout
// beats connection: a dial that times out is reported as a timeout.
func categorize(err error) *FetchError {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe
	}
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &FetchError{Category: CategoryTimeout, Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &FetchError{Category: CategoryConnection, Err: err}
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return &FetchError{Category: CategoryConnection, Err: err}
	}
	return &FetchError{Category: CategoryOther, Err: err}
}
