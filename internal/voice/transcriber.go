package voice

import (
	"errors"

	"github.com/jwulff/finvoice/internal/conversation"
)

// Transcriber turns a finalized recording into text.
type Transcriber interface {
	Transcribe(rec Recording) (string, error)
}

// CatalogTranscriber picks a transcript from the catalog instead of running
// speech recognition.
type CatalogTranscriber struct {
	transcripts []string
	rnd         conversation.RandomSource
}

// NewCatalogTranscriber draws from the transcripts section of c.
func NewCatalogTranscriber(c conversation.Catalog, rnd conversation.RandomSource) *CatalogTranscriber {
	return &CatalogTranscriber{transcripts: append([]string(nil), c.Transcripts...), rnd: rnd}
}

func (t *CatalogTranscriber) Transcribe(Recording) (string, error) {
	if len(t.transcripts) == 0 {
		return "", errors.New("no transcripts available")
	}
	return t.transcripts[t.rnd.Pick(len(t.transcripts))], nil
}
