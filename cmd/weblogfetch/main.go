// weblogfetch downloads the results of a Splunk saved search to a local
// file via the REST export endpoint.
//
// Defaults come from flags, with a .env file optionally providing
// SPLUNK_HOST, SPLUNK_OWNER and SPLUNK_APP. The confirmation prompt and the
// credential prompts are interactive; -yes skips the confirmation for
// scripted use. TLS verification is disabled by default because Splunk
// management ports commonly serve self-signed certificates; pass
// -verify-tls when the host has a proper certificate.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/jletteboer/P4DS/src/prompt"
	"github.com/jletteboer/P4DS/src/splunk"
)

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// .env is optional; absence is not an error.
	godotenv.Load()

	owner := flag.String("owner", envDefault("SPLUNK_OWNER", ""), "Saved search owner")
	app := flag.String("app", envDefault("SPLUNK_APP", "search"), "Splunk app the search belongs to")
	search := flag.String("search", "", "Saved search name")
	out := flag.String("out", "data/webserver_log", "Output path without extension; the format is appended")
	format := flag.String("format", "csv", "Output format (csv|json|raw|xml)")
	host := flag.String("host", envDefault("SPLUNK_HOST", "localhost"), "Splunk server hostname")
	timeout := flag.Duration("timeout", splunk.DefaultTimeout, "Total request timeout including body transfer")
	verifyTLS := flag.Bool("verify-tls", false, "Verify the server TLS certificate")
	yes := flag.Bool("yes", false, "Skip the confirmation prompt")
	logLevel := flag.String("log-level", "info", "Log level (debug|info|warn|error)")
	flag.Parse()

	splunk.SetLogLevel(*logLevel)

	// One reader for the whole dialog so the confirm answer and the
	// credentials can be piped in together.
	stdin := prompt.NewReader(os.Stdin)

	if !*yes && !prompt.Confirm(stdin, os.Stdout, "Do you want to download new data?", true) {
		fmt.Println("[fetch] new data will not be downloaded")
		return
	}

	creds, err := prompt.ReadCredentials(stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer creds.Zero()

	job := splunk.SearchJobReference{Owner: *owner, App: *app, SearchName: *search}
	client := splunk.NewClient(splunk.Config{
		Host:        *host,
		Timeout:     *timeout,
		InsecureTLS: !*verifyTLS,
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout+10*time.Second)
	defer cancel()

	res, err := client.Download(ctx, job, creds, *out, *format)
	if err != nil {
		reportFetchError(err)
		os.Exit(1)
	}
	fmt.Printf("[fetch] saved %s (%d bytes)\n", res.Path, res.Bytes)
	fmt.Println("Happy analyzing!! (ツ)")
}

// reportFetchError prints one distinct human-readable message per failure
// category.
func reportFetchError(err error) {
	var fe *splunk.FetchError
	if !errors.As(err, &fe) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	switch fe.Category {
	case splunk.CategoryHTTPStatus:
		fmt.Fprintf(os.Stderr, "HTTP error: server returned status %d\n", fe.Status)
	case splunk.CategoryConnection:
		fmt.Fprintf(os.Stderr, "Error connecting: %v\n", fe.Err)
	case splunk.CategoryTimeout:
		fmt.Fprintf(os.Stderr, "Timeout error: %v\n", fe.Err)
	default:
		fmt.Fprintf(os.Stderr, "Oops, something else went wrong: %v\n", fe.Err)
	}
}
