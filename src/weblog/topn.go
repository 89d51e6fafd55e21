package weblog

import "sort"

// GroupCount is one (key, count) pair of a top-N aggregation.
type GroupCount struct {
	Key   string
	Count int
}

// TopN counts occurrences of each value, sorts by count descending and
// returns at most n entries. Equal counts are ordered lexicographically by
// key so the result is deterministic.
func TopN(values []string, n int) []GroupCount {
	counts := make(map[string]int, len(values))
	for _, v := range values {
		counts[v]++
	}
	out := make([]GroupCount, 0, len(counts))
	for k, c := range counts {
		out = append(out, GroupCount{Key: k, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// TopNBy aggregates records by the value the selector extracts.
func TopNBy(records []Record, by func(Record) string, n int) []GroupCount {
	values := make([]string, len(records))
	for i, r := range records {
		values[i] = by(r)
	}
	return TopN(values, n)
}
