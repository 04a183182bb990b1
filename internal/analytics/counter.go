package analytics

import (
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// frequencyCounter counts keys while remembering the order in which each
// key was first seen, so ties rank by first occurrence.
type frequencyCounter struct {
	counts *orderedmap.OrderedMap[string, int]
}

type keyCount struct {
	Key   string
	Count int
}

func newFrequencyCounter() *frequencyCounter {
	return &frequencyCounter{counts: orderedmap.New[string, int]()}
}

func (c *frequencyCounter) Add(key string) {
	n, _ := c.counts.Get(key)
	c.counts.Set(key, n+1)
}

func (c *frequencyCounter) Len() int {
	return c.counts.Len()
}

// Top returns the n most frequent keys by descending count, ties in
// first-seen order. n <= 0 returns every key.
func (c *frequencyCounter) Top(n int) []keyCount {
	out := make([]keyCount, 0, c.counts.Len())
	for pair := c.counts.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, keyCount{Key: pair.Key, Count: pair.Value})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
