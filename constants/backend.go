package constants

import (
	"strings"
)

// Backend names a document parsing implementation.
type Backend string

const (
	BackendLedongthuc Backend = "ledongthuc"
	BackendRSC        Backend = "rsc"
	BackendPdftotext  Backend = "pdftotext"
)

// DefaultBackend is used when nothing is configured.
const DefaultBackend = BackendLedongthuc

var allBackends = []Backend{
	BackendLedongthuc,
	BackendRSC,
	BackendPdftotext,
}

func BackendNames() []string {
	result := make([]string, len(allBackends))
	for i, b := range allBackends {
		result[i] = string(b)
	}
	return result
}

// CanonicalizeBackend maps user input (including a few aliases) to a Backend.
// Empty input resolves to DefaultBackend.
func CanonicalizeBackend(input string) (Backend, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return DefaultBackend, true
	}

	synonyms := map[string]Backend{
		"default":    BackendLedongthuc,
		"ledongthuc": BackendLedongthuc,
		"rsc.io":     BackendRSC,
		"rsc.io/pdf": BackendRSC,
		"poppler":    BackendPdftotext,
		"xpdf":       BackendPdftotext,
	}
	if b, ok := synonyms[normalized]; ok {
		return b, true
	}

	for _, b := range allBackends {
		if normalized == string(b) {
			return b, true
		}
	}
	return "", false
}

// Format is the report output encoding.
type Format string

const (
	FormatText  Format = "text"
	FormatJSONL Format = "jsonl"
)

func CanonicalizeFormat(input string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "", "text", "txt", "plain":
		return FormatText, true
	case "jsonl", "json", "ndjson":
		return FormatJSONL, true
	}
	return "", false
}
