package insight

import (
	"fmt"
	"slices"
	"time"
)

// Bucket is one partition produced by the grouping helpers.
type Bucket[T any] struct {
	// Key is the weekday (0=Sunday) or the window start hour.
	Key   int
	Items []T
}

// GroupByDayOfWeek partitions items by the weekday of at(item). The result
// always has seven buckets, Sunday first; empty days have no items.
func GroupByDayOfWeek[T any](items []T, at func(T) time.Time) []Bucket[T] {
	buckets := make([]Bucket[T], 7)
	for i := range buckets {
		buckets[i].Key = i
	}
	for _, item := range items {
		d := int(at(item).Weekday())
		buckets[d].Items = append(buckets[d].Items, item)
	}
	return buckets
}

// GroupByTimeWindow partitions items by hour of day truncated to a multiple
// of windowHours. The result has 24/windowHours buckets in ascending start
// order. A windowHours outside 1..24 is treated as 24.
func GroupByTimeWindow[T any](items []T, at func(T) time.Time, windowHours int) []Bucket[T] {
	if windowHours < 1 || windowHours > 24 {
		windowHours = 24
	}
	n := (24 + windowHours - 1) / windowHours
	buckets := make([]Bucket[T], n)
	for i := range buckets {
		buckets[i].Key = i * windowHours
	}
	for _, item := range items {
		idx := at(item).Hour() / windowHours
		buckets[idx].Items = append(buckets[idx].Items, item)
	}
	return buckets
}

// Tally is a count per key plus the order keys were first seen in.
type Tally[K comparable] struct {
	Keys   []K
	Counts map[K]int
}

// CountBy folds items into a Tally keyed by key(item).
func CountBy[T any, K comparable](items []T, key func(T) K) Tally[K] {
	t := Tally[K]{Counts: make(map[K]int)}
	for _, item := range items {
		k := key(item)
		if _, seen := t.Counts[k]; !seen {
			t.Keys = append(t.Keys, k)
		}
		t.Counts[k]++
	}
	return t
}

// Mode returns the most frequent key and its count. Ties go to the key seen
// first. ok is false for an empty tally.
func (t Tally[K]) Mode() (mode K, count int, ok bool) {
	for _, k := range t.Keys {
		if c := t.Counts[k]; c > count {
			mode, count, ok = k, c, true
		}
	}
	return mode, count, ok
}

// Ranked returns keys ordered by count descending, ties in first-seen order.
func (t Tally[K]) Ranked() []K {
	ranked := slices.Clone(t.Keys)
	slices.SortStableFunc(ranked, func(a, b K) int {
		return t.Counts[b] - t.Counts[a]
	})
	return ranked
}

// Mode returns the most frequent value, ties broken by first occurrence.
func Mode[K comparable](values []K) (K, bool) {
	m, _, ok := CountBy(values, identity[K]).Mode()
	return m, ok
}

// TopN returns up to n values ranked by frequency, ties broken by first
// occurrence.
func TopN[K comparable](values []K, n int) []K {
	ranked := CountBy(values, identity[K]).Ranked()
	if n < len(ranked) {
		ranked = ranked[:n]
	}
	return ranked
}

func identity[K any](v K) K { return v }

// DayName returns the English weekday name.
func DayName(d time.Weekday) string {
	return d.String()
}

// WindowLabel renders a window start hour as "H:00".
func WindowLabel(startHour int) string {
	return fmt.Sprintf("%d:00", startHour)
}

func localize(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		return t
	}
	return t.In(loc)
}
