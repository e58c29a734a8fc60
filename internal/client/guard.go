package client

import "sync/atomic"

// Guard tags list fetches with monotonically increasing generations so a
// slow stale response can be recognized and dropped instead of clobbering a
// newer one. One Guard serves one list surface (e.g. one tab's invoice list).
type Guard struct {
	gen atomic.Uint64
}

// Next issues a new generation. Call it when starting a fetch and keep the
// value with the in-flight request.
func (g *Guard) Next() uint64 {
	return g.gen.Add(1)
}

// Latest reports whether gen is still the most recently issued generation.
// A response whose generation is not the latest must be discarded.
func (g *Guard) Latest(gen uint64) bool {
	return g.gen.Load() == gen
}
