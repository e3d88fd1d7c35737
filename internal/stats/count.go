package stats

import "sort"

// Count is one row of a grouped count
type Count struct {
	Key     string  `json:"key" yaml:"key"`
	Count   int     `json:"count" yaml:"count"`
	Percent float64 `json:"percent" yaml:"percent"` // Share of the grouping total, 0-100
}

// counter tallies keys and remembers the order they were first seen
type counter struct {
	keys   []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	c.addN(key, 1)
}

func (c *counter) addN(key string, n int) {
	if _, ok := c.counts[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.counts[key] += n
}

func (c *counter) total() int {
	total := 0
	for _, n := range c.counts {
		total += n
	}
	return total
}

// ranked returns counts, most frequent first. Ties keep first-seen order.
func (c *counter) ranked() []Count {
	out := c.ordered()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// ordered returns counts in first-seen order
func (c *counter) ordered() []Count {
	total := c.total()
	out := make([]Count, 0, len(c.keys))
	for _, key := range c.keys {
		out = append(out, Count{Key: key, Count: c.counts[key], Percent: percent(c.counts[key], total)})
	}
	return out
}

func percent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// Total sums a grouping
func Total(counts []Count) int {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	return total
}

// Keys returns the keys of a grouping in order
func Keys(counts []Count) []string {
	keys := make([]string, len(counts))
	for i, c := range counts {
		keys[i] = c.Key
	}
	return keys
}

// Top returns at most n leading rows; n <= 0 keeps everything
func Top(counts []Count, n int) []Count {
	if n <= 0 || n >= len(counts) {
		return counts
	}
	return counts[:n]
}
