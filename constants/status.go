package constants

// PageStatus is the outcome recorded for a single page.
type PageStatus string

// Stable values (these exact strings appear in jsonl output).
const (
	PageStatusText       PageStatus = "TEXT"        // text layer present
	PageStatusImageBased PageStatus = "IMAGE_BASED" // no extractable text
	PageStatusFailed     PageStatus = "FAILED"      // extraction error, continue-on-error only
)
