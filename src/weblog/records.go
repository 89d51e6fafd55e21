// Package weblog holds the in-memory tabular model for downloaded web server
// log exports plus the small analytical primitives used on top of it: HTTP
// status classification, top-N aggregation and rolling statistics.
package weblog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"
)

// Record is one web log row. Only the columns the analysis functions consume
// are mapped; anything else in the export is ignored.
type Record struct {
	Timestamp time.Time
	ClientIP  string
	Country   string
	City      string
	Status    string
}

// Column aliases accepted in the CSV header, per field. Splunk exports use
// _time and the field names of the underlying search; enriched exports carry
// the geolocation column names.
var columnAliases = map[string][]string{
	"time":     {"_time", "time", "timestamp"},
	"clientip": {"clientip", "client_ip", "ip"},
	"country":  {"country_short", "country"},
	"city":     {"city"},
	"status":   {"status", "http_status"},
}

// Accepted timestamp layouts, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.000-07:00",
	"02/Jan/2006:15:04:05 -0700",
}

// ReadCSV parses a CSV export into records. The header row drives column
// mapping; unknown columns are skipped and missing columns leave the
// corresponding field zero. Timestamps that match none of the known layouts
// are left as the zero time rather than failing the whole load.
func ReadCSV(r io.Reader) ([]Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	idx := map[string]int{}
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(name))
		for field, aliases := range columnAliases {
			for _, a := range aliases {
				if name == a {
					if _, dup := idx[field]; !dup {
						idx[field] = i
					}
				}
			}
		}
	}
	field := func(row []string, name string) string {
		i, ok := idx[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var records []Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read CSV row %d: %w", len(records)+2, err)
		}
		rec := Record{
			ClientIP: field(row, "clientip"),
			Country:  field(row, "country"),
			City:     field(row, "city"),
			Status:   field(row, "status"),
		}
		if ts := field(row, "time"); ts != "" {
			rec.Timestamp = parseTime(ts)
		}
		records = append(records, rec)
	}
	return records, nil
}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// BucketCounts groups records into fixed intervals by timestamp and returns
// the bucket start times with the hit count per bucket. Records with a zero
// timestamp are skipped. Empty buckets between the first and last hit count
// as zero so the series stays evenly spaced.
func BucketCounts(records []Record, interval time.Duration) ([]time.Time, []float64) {
	if interval <= 0 {
		interval = time.Hour
	}
	var min, max time.Time
	for _, r := range records {
		if r.Timestamp.IsZero() {
			continue
		}
		if min.IsZero() || r.Timestamp.Before(min) {
			min = r.Timestamp
		}
		if max.IsZero() || r.Timestamp.After(max) {
			max = r.Timestamp
		}
	}
	if min.IsZero() {
		return nil, nil
	}
	start := min.Truncate(interval)
	n := int(max.Sub(start)/interval) + 1
	times := make([]time.Time, n)
	counts := make([]float64, n)
	for i := range times {
		times[i] = start.Add(time.Duration(i) * interval)
	}
	for _, r := range records {
		if r.Timestamp.IsZero() {
			continue
		}
		i := int(r.Timestamp.Sub(start) / interval)
		if i >= 0 && i < n {
			counts[i]++
		}
	}
	return times, counts
}
