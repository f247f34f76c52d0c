package stats

import "slices"

// Entry is one key of a frequency table with its count.
type Entry[K comparable] struct {
	Key   K   `json:"key"`
	Count int `json:"count"`
}

// Counter is a frequency table that remembers the order keys were first seen.
type Counter[K comparable] struct {
	index   map[K]int
	entries []Entry[K]
	total   int
}

// NewCounter creates an empty counter.
func NewCounter[K comparable]() *Counter[K] {
	return &Counter[K]{index: make(map[K]int)}
}

// Add increments the count of key by one.
func (c *Counter[K]) Add(key K) {
	c.total++
	if i, ok := c.index[key]; ok {
		c.entries[i].Count++
		return
	}
	c.index[key] = len(c.entries)
	c.entries = append(c.entries, Entry[K]{Key: key, Count: 1})
}

// Count returns the count of key, zero if never seen.
func (c *Counter[K]) Count(key K) int {
	if i, ok := c.index[key]; ok {
		return c.entries[i].Count
	}
	return 0
}

// Len returns the number of distinct keys.
func (c *Counter[K]) Len() int {
	return len(c.entries)
}

// Total returns the sum of all counts.
func (c *Counter[K]) Total() int {
	return c.total
}

// Entries returns all entries in first-seen order.
func (c *Counter[K]) Entries() []Entry[K] {
	return slices.Clone(c.entries)
}

// Top returns up to n entries by descending count.
// Equal counts keep first-seen order.
func (c *Counter[K]) Top(n int) []Entry[K] {
	if n <= 0 || len(c.entries) == 0 {
		return nil
	}
	out := slices.Clone(c.entries)
	slices.SortStableFunc(out, func(a, b Entry[K]) int {
		return b.Count - a.Count
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
