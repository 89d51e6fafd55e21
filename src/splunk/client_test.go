package splunk

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jletteboer/P4DS/src/prompt"
)

func testJob() SearchJobReference {
	return SearchJobReference{Owner: "user1", App: "search", SearchName: "webserver_logging_search"}
}

func testClient(ts *httptest.Server, timeout time.Duration) *Client {
	host := strings.TrimPrefix(ts.URL, "https://")
	return NewClient(Config{Host: host, Timeout: timeout, InsecureTLS: true})
}

func TestLoadJobQuery(t *testing.T) {
	got := testJob().LoadJobQuery()
	want := "loadjob savedsearch=user1:search:webserver_logging_search"
	if got != want {
		t.Fatalf("LoadJobQuery: got %q want %q", got, want)
	}
}

func TestExportURLDefaultPort(t *testing.T) {
	c := NewClient(Config{Host: "splunk.example.org"})
	got := c.ExportURL(testJob())
	want := "https://splunk.example.org:8089/servicesNS/user1/search/search/jobs/export"
	if got != want {
		t.Fatalf("ExportURL: got %q want %q", got, want)
	}
}

func TestValidFormat(t *testing.T) {
	for _, f := range []string{"csv", "json", "raw", "xml"} {
		if !ValidFormat(f) {
			t.Errorf("ValidFormat(%q) = false", f)
		}
	}
	for _, f := range []string{"", "CSV", "tsv", "yaml"} {
		if ValidFormat(f) {
			t.Errorf("ValidFormat(%q) = true", f)
		}
	}
}

func TestDownloadWritesFile(t *testing.T) {
	const payload = "clientip,status\n1.2.3.4,200\n"
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: got %s", r.Method)
		}
		if r.URL.Path != "/servicesNS/user1/search/search/jobs/export" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("output_mode"); got != "csv" {
			t.Errorf("output_mode: got %q", got)
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != "admin" || pass != "changeme" {
			t.Errorf("basic auth: ok=%v user=%q pass=%q", ok, user, pass)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostFormValue("search"); got != "loadjob savedsearch=user1:search:webserver_logging_search" {
			t.Errorf("search body: got %q", got)
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(payload))
	}))
	defer ts.Close()

	c := testClient(ts, 10*time.Second)
	outBase := filepath.Join(t.TempDir(), "data", "webserver_log")
	creds := prompt.Credentials{Username: "admin", Password: "changeme"}
	res, err := c.Download(context.Background(), testJob(), creds, outBase, "csv")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if res.Path != outBase+".csv" {
		t.Fatalf("result path: got %q", res.Path)
	}
	if res.Bytes != int64(len(payload)) {
		t.Fatalf("result bytes: got %d want %d", res.Bytes, len(payload))
	}
	b, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(b) != payload {
		t.Fatalf("output content mismatch: %q", b)
	}
}

func TestDownloadHTTPErrorStatus(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := testClient(ts, 10*time.Second)
	outBase := filepath.Join(t.TempDir(), "webserver_log")
	_, err := c.Download(context.Background(), testJob(), prompt.Credentials{}, outBase, "csv")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.Category != CategoryHTTPStatus || fe.Status != http.StatusUnauthorized {
		t.Fatalf("unexpected error: category=%s status=%d", fe.Category, fe.Status)
	}
	if _, statErr := os.Stat(outBase + ".csv"); !os.IsNotExist(statErr) {
		t.Fatalf("output file must not exist after HTTP error")
	}
}

func TestDownloadTimeout(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer ts.Close()

	c := testClient(ts, 100*time.Millisecond)
	_, err := c.Download(context.Background(), testJob(), prompt.Credentials{}, filepath.Join(t.TempDir(), "out"), "csv")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.Category != CategoryTimeout {
		t.Fatalf("category: got %s want %s", fe.Category, CategoryTimeout)
	}
}

func TestDownloadConnectionError(t *testing.T) {
	ts := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	host := strings.TrimPrefix(ts.URL, "https://")
	ts.Close() // nothing listens on the port anymore

	c := NewClient(Config{Host: host, Timeout: 5 * time.Second, InsecureTLS: true})
	_, err := c.Download(context.Background(), testJob(), prompt.Credentials{}, filepath.Join(t.TempDir(), "out"), "csv")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.Category != CategoryConnection {
		t.Fatalf("category: got %s want %s", fe.Category, CategoryConnection)
	}
}

func TestDownloadRejectsBadFormat(t *testing.T) {
	c := NewClient(Config{Host: "localhost"})
	_, err := c.Download(context.Background(), testJob(), prompt.Credentials{}, "out", "tsv")
	if err == nil || !strings.Contains(err.Error(), "invalid output format") {
		t.Fatalf("expected invalid format error, got %v", err)
	}
}

func TestValidateIncompleteReference(t *testing.T) {
	bad := SearchJobReference{Owner: "user1", App: "", SearchName: "x"}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected validation error")
	}
	if err := testJob().Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
}
