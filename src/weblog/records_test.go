package weblog

import (
	"strings"
	"testing"
	"time"
)

func TestReadCSV(t *testing.T) {
	input := strings.Join([]string{
		`_time,clientip,country_short,city,status,bytes`,
		`2024-01-01T10:00:00Z,172.217.168.195,NL,Amsterdam,200,1234`,
		`2024-01-01T10:05:00Z,8.8.8.8,US,NYC,404,0`,
		`2024-01-01T11:30:00Z,172.217.168.195,NL,Amsterdam,503,0`,
	}, "\n")
	recs, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("records: got %d want 3", len(recs))
	}
	first := recs[0]
	if first.ClientIP != "172.217.168.195" || first.Country != "NL" || first.City != "Amsterdam" || first.Status != "200" {
		t.Fatalf("first record mismatch: %+v", first)
	}
	want := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	if !first.Timestamp.Equal(want) {
		t.Fatalf("timestamp: got %v want %v", first.Timestamp, want)
	}
}

func TestReadCSVMissingColumns(t *testing.T) {
	input := "status\n200\n404\n"
	recs, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if len(recs) != 2 || recs[0].Status != "200" || recs[0].Country != "" {
		t.Fatalf("unexpected records: %+v", recs)
	}
}

func TestReadCSVBadTimestampTolerated(t *testing.T) {
	input := "_time,status\nnot-a-time,200\n"
	recs, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV: %v", err)
	}
	if !recs[0].Timestamp.IsZero() {
		t.Fatalf("expected zero timestamp, got %v", recs[0].Timestamp)
	}
}

func TestBucketCounts(t *testing.T) {
	base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	recs := []Record{
		{Timestamp: base},
		{Timestamp: base.Add(10 * time.Minute)},
		{Timestamp: base.Add(2 * time.Hour)},
		{}, // zero timestamp, skipped
	}
	times, counts := BucketCounts(recs, time.Hour)
	if len(times) != 3 || len(counts) != 3 {
		t.Fatalf("buckets: got %d/%d want 3/3", len(times), len(counts))
	}
	if counts[0] != 2 || counts[1] != 0 || counts[2] != 1 {
		t.Fatalf("counts: got %v want [2 0 1]", counts)
	}
	if !times[0].Equal(base) {
		t.Fatalf("first bucket: got %v want %v", times[0], base)
	}
}

func TestBucketCountsEmpty(t *testing.T) {
	times, counts := BucketCounts([]Record{{}}, time.Hour)
	if times != nil || counts != nil {
		t.Fatalf("expected nil series for records without timestamps")
	}
}
