package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/joseph-ayodele/pagetext/constants"
	"github.com/joseph-ayodele/pagetext/internal/common"
)

// emitter renders report events. Write errors are sticky and surfaced by Err.
type emitter interface {
	Reading(path string)
	Page(p PageResult)
	Failure(err error)
	Err() error
}

func newEmitter(format constants.Format, w io.Writer, runID uuid.UUID) (emitter, error) {
	switch format {
	case constants.FormatText:
		return newTextEmitter(w), nil
	case constants.FormatJSONL:
		return newJSONLEmitter(w, runID)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", common.ErrInvalidInput, format)
	}
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

func (e *errWriter) write(s string) {
	if e.err != nil {
		return
	}
	_, e.err = io.WriteString(e.w, s)
}

// textEmitter writes the line format:
//
//	Reading {path}
//	--- PAGE {n} START ---
//	{text}
//	--- PAGE {n} END ---
//	--- PAGE {n} IS IMAGE BASED ---
//	Error: {message}
type textEmitter struct {
	out *errWriter
}

func newTextEmitter(w io.Writer) *textEmitter {
	return &textEmitter{out: &errWriter{w: w}}
}

func (e *textEmitter) Reading(path string) {
	e.out.printf("Reading %s\n", path)
}

func (e *textEmitter) Page(p PageResult) {
	switch p.Status {
	case constants.PageStatusText:
		e.out.printf("--- PAGE %d START ---\n", p.Number)
		e.out.write(p.Text)
		if !strings.HasSuffix(p.Text, "\n") {
			e.out.write("\n")
		}
		e.out.printf("--- PAGE %d END ---\n", p.Number)
	case constants.PageStatusImageBased:
		e.out.printf("--- PAGE %d IS IMAGE BASED ---\n", p.Number)
	case constants.PageStatusFailed:
		e.out.printf("--- PAGE %d ERROR: %s ---\n", p.Number, causeMessage(p.Err))
	}
}

func (e *textEmitter) Failure(err error) {
	e.out.printf("Error: %s\n", err)
}

func (e *textEmitter) Err() error { return e.out.err }

// record is one jsonl line. Path and Message are pointers so an empty
// value is still written when the event carries one.
type record struct {
	Event   string  `json:"event"`
	RunID   string  `json:"run_id"`
	Path    *string `json:"path,omitempty"`
	Page    int     `json:"page,omitempty"`
	Status  string  `json:"status,omitempty"`
	Text    string  `json:"text,omitempty"`
	Kind    string  `json:"kind,omitempty"`
	Message *string `json:"message,omitempty"`
}

type jsonlEmitter struct {
	out       *errWriter
	runID     string
	validator *recordValidator
}

func newJSONLEmitter(w io.Writer, runID uuid.UUID) (*jsonlEmitter, error) {
	v, err := newRecordValidator()
	if err != nil {
		return nil, err
	}
	return &jsonlEmitter{out: &errWriter{w: w}, runID: runID.String(), validator: v}, nil
}

func (e *jsonlEmitter) Reading(path string) {
	e.emit(record{Event: "reading", Path: &path})
}

func (e *jsonlEmitter) Page(p PageResult) {
	rec := record{Event: "page", Page: p.Number, Status: string(p.Status), Text: p.Text}
	if p.Err != nil {
		msg := causeMessage(p.Err)
		rec.Message = &msg
	}
	e.emit(rec)
}

func (e *jsonlEmitter) Failure(err error) {
	msg := err.Error()
	e.emit(record{Event: "error", Kind: common.KindOf(err).String(), Message: &msg})
}

func (e *jsonlEmitter) Err() error { return e.out.err }

func (e *jsonlEmitter) emit(rec record) {
	if e.out.err != nil {
		return
	}
	rec.RunID = e.runID
	b, err := json.Marshal(rec)
	if err != nil {
		e.out.err = fmt.Errorf("marshal %s record: %w", rec.Event, err)
		return
	}
	if err := e.validator.Validate(b); err != nil {
		e.out.err = err
		return
	}
	e.out.write(string(b) + "\n")
}

// causeMessage drops the "page N:" prefix when the page is printed anyway.
func causeMessage(err error) string {
	if err == nil {
		return ""
	}
	var pe *common.ProcessingError
	if errors.As(err, &pe) && pe.Cause != nil {
		return pe.Cause.Error()
	}
	return err.Error()
}
