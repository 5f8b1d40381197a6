package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogShape(t *testing.T) {
	c := DefaultCatalog()
	require.NoError(t, c.Validate())
	assert.Len(t, c.Text, 3)
	assert.Len(t, c.Transcripts, 5)
	assert.Len(t, c.Voice, 5)
}

func TestTextPolicyAlwaysReturnsCatalogMember(t *testing.T) {
	c := DefaultCatalog()
	p := NewTextPolicy(c, NewRandomSource(7))

	for i := 0; i < 200; i++ {
		r := p.Generate("anything")
		require.NotEmpty(t, r.Content)
		assert.Contains(t, c.Text, r)
	}
}

func TestFixedSourcePinsReply(t *testing.T) {
	c := DefaultCatalog()
	p := NewTextPolicy(c, FixedSource(1))

	first := p.Generate("What's my net worth?")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, p.Generate("something else"))
	}
	assert.Equal(t, c.Text[1], first)
}

func TestVoicePolicyHasNoInsights(t *testing.T) {
	c := DefaultCatalog()
	p := NewVoicePolicy(c, FixedSource(4))

	r := p.Generate("What's the best SIP amount for my goals?")
	assert.Equal(t, c.Voice[4], r.Content)
	assert.Empty(t, r.Insights)
}

func TestPolicyReturnsCopies(t *testing.T) {
	p := NewTextPolicy(DefaultCatalog(), FixedSource(0))
	r := p.Generate("")
	r.Insights[0].Title = "mutated"

	assert.Equal(t, "Portfolio Performance", p.Generate("").Insights[0].Title)
}

func TestFixedSourceClamps(t *testing.T) {
	assert.Equal(t, 2, FixedSource(9).Pick(3))
	assert.Equal(t, 0, FixedSource(-1).Pick(3))
	assert.Equal(t, 0, FixedSource(1).Pick(0))
}

func TestRandomSourceStaysInRange(t *testing.T) {
	src := NewRandomSource(0)
	seen := map[int]bool{}
	for i := 0; i < 500; i++ {
		k := src.Pick(5)
		require.GreaterOrEqual(t, k, 0)
		require.Less(t, k, 5)
		seen[k] = true
	}
	assert.Len(t, seen, 5)
}
