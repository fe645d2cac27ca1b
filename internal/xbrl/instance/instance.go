// Package instance implements C5: extraction of facts and contexts
// from an XBRL instance document, in either inline-XBRL (HTML host
// document) or plain XBRL-XML form (spec.md §4.5).
package instance

import (
	"bytes"

	"github.com/novis10813/mops-financial-api/internal/models"
)

// Backend is the shared contract spec.md §9's redesign note asks for:
// a single interface with two interchangeable implementations, picked
// by content inspection rather than a hand-rolled dispatch table.
type Backend interface {
	// Available reports whether this backend can handle data at all
	// (its root element is present), without fully parsing it.
	Available(data []byte) bool
	ExtractFacts(data []byte) ([]models.Fact, error)
	ExtractContexts(data []byte) ([]models.Context, error)
}

// Backends in priority order: iXBRL is tried first because MOPS's
// instance files are overwhelmingly inline-XBRL HTML documents; the
// plain-XML backend is the fallback for the rare bare xbrli:xbrl root.
func Backends() []Backend {
	return []Backend{&IXBRLBackend{}, &XMLBackend{}}
}

// Extract runs Available over backends in order and uses the first
// one that claims data, falling back to the next per spec.md §9
// ("falling back on the other per-operation if the primary signals
// unavailability").
func Extract(data []byte, backends []Backend) ([]models.Fact, []models.Context, error) {
	var chosen Backend
	for _, b := range backends {
		if b.Available(data) {
			chosen = b
			break
		}
	}
	if chosen == nil {
		chosen = backends[len(backends)-1]
	}

	facts, err := chosen.ExtractFacts(data)
	if err != nil {
		return nil, nil, err
	}
	contexts, err := chosen.ExtractContexts(data)
	if err != nil {
		return nil, nil, err
	}

	// Both backends append facts in document order as they walk the
	// tree, so no further sort is needed; ties within identical
	// (concept, context_ref) pairs keep their natural append order,
	// which is already document order.
	return facts, contexts, nil
}

func hasHTMLRoot(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	lower := bytes.ToLower(trimmed)
	limit := len(lower)
	if limit > 4096 {
		limit = 4096
	}
	return bytes.Contains(lower[:limit], []byte("<html"))
}

func hasXBRLIRoot(data []byte) bool {
	limit := len(data)
	if limit > 4096 {
		limit = 4096
	}
	return bytes.Contains(data[:limit], []byte("xbrli:xbrl")) || bytes.Contains(data[:limit], []byte("<xbrl "))
}
