package conversation

import (
	"math/rand/v2"
	"sync"
	"time"
)

// RandomSource picks an index in [0, n). It stands in for an inference
// backend, so tests inject a fixed source.
type RandomSource interface {
	Pick(n int) int
}

type pcgSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomSource returns a seeded source. A zero seed derives one from the
// wall clock.
func NewRandomSource(seed uint64) RandomSource {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &pcgSource{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *pcgSource) Pick(n int) int {
	if n <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.IntN(n)
}

// FixedSource always picks index k, clamped into range.
type FixedSource int

func (k FixedSource) Pick(n int) int {
	switch {
	case n <= 0 || k < 0:
		return 0
	case int(k) >= n:
		return n - 1
	}
	return int(k)
}

// ResponsePolicy turns an utterance into an assistant reply. Implementations
// must never return empty content and must not touch the exchange log.
type ResponsePolicy interface {
	Generate(utterance string) Reply
}

// CatalogPolicy picks uniformly among a fixed set of replies.
type CatalogPolicy struct {
	replies []Reply
	rnd     RandomSource
}

// NewTextPolicy draws from the typed-reply section of c.
func NewTextPolicy(c Catalog, rnd RandomSource) *CatalogPolicy {
	replies := make([]Reply, len(c.Text))
	for i, r := range c.Text {
		replies[i] = r.clone()
	}
	return &CatalogPolicy{replies: replies, rnd: rnd}
}

// NewVoicePolicy draws from the spoken-reply section of c. Spoken replies
// carry no insights.
func NewVoicePolicy(c Catalog, rnd RandomSource) *CatalogPolicy {
	replies := make([]Reply, len(c.Voice))
	for i, v := range c.Voice {
		replies[i] = Reply{Content: v}
	}
	return &CatalogPolicy{replies: replies, rnd: rnd}
}

// Generate ignores the utterance; the selection is a catalog pick.
func (p *CatalogPolicy) Generate(string) Reply {
	if len(p.replies) == 0 {
		return Reply{}
	}
	return p.replies[p.rnd.Pick(len(p.replies))].clone()
}

// Replies returns the candidate set.
func (p *CatalogPolicy) Replies() []Reply {
	out := make([]Reply, len(p.replies))
	for i, r := range p.replies {
		out[i] = r.clone()
	}
	return out
}
