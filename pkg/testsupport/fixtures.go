package testsupport

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"sync"
	"testing"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-settingspage/pkg/events"
	"github.com/goliatone/go-settingspage/pkg/model"
	"github.com/goliatone/go-settingspage/pkg/render"
)

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an io.Writer,
// returning both the string result and the writer contents. Tests can assert
// the renderer returns and writes the same payload without duplicating buffer
// setup.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}

// SaveCall records one invocation of RecordingSaver.
type SaveCall struct {
	Fields    []model.Field
	Submitted url.Values
}

// RecordingSaver captures SaveFields calls and optionally fails them.
type RecordingSaver struct {
	mu    sync.Mutex
	Calls []SaveCall
	Err   error
}

func (s *RecordingSaver) SaveFields(_ context.Context, fields []model.Field, submitted url.Values) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, SaveCall{
		Fields:    model.CloneFields(fields),
		Submitted: cloneValues(submitted),
	})
	return s.Err
}

// RecordingEmitter captures emitted events.
type RecordingEmitter struct {
	mu     sync.Mutex
	Events []events.Event
	Err    error
}

func (e *RecordingEmitter) Emit(_ context.Context, event events.Event) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Events = append(e.Events, event)
	return e.Err
}

// Names returns the emitted event names in order.
func (e *RecordingEmitter) Names() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, 0, len(e.Events))
	for _, event := range e.Events {
		names = append(names, event.Name)
	}
	return names
}

// RecordingRenderer writes one line per field ID and keeps the last call.
type RecordingRenderer struct {
	mu      sync.Mutex
	Fields  []model.Field
	Options render.RenderOptions
	Calls   int
}

func (r *RecordingRenderer) Name() string        { return "recording" }
func (r *RecordingRenderer) ContentType() string { return "text/plain" }

func (r *RecordingRenderer) RenderFields(_ context.Context, w io.Writer, fields []model.Field, opts render.RenderOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Calls++
	r.Fields = model.CloneFields(fields)
	r.Options = opts
	for _, field := range fields {
		if _, err := io.WriteString(w, string(field.Type)+":"+field.ID+"\n"); err != nil {
			return err
		}
	}
	return nil
}

func cloneValues(in url.Values) url.Values {
	if in == nil {
		return nil
	}
	out := make(url.Values, len(in))
	for key, values := range in {
		out[key] = append([]string(nil), values...)
	}
	return out
}

// LogEntry is one message captured by CaptureLogger.
type LogEntry struct {
	Level   string
	Message string
	Args    []any
}

// CaptureLogger records log calls so tests can assert on them.
type CaptureLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

var _ glog.Logger = (*CaptureLogger)(nil)

// NewCaptureLogger returns an empty capture logger.
func NewCaptureLogger() *CaptureLogger {
	return &CaptureLogger{}
}

func (l *CaptureLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Message: msg, Args: append([]any(nil), args...)})
}

func (l *CaptureLogger) Trace(msg string, args ...any) { l.record("trace", msg, args) }
func (l *CaptureLogger) Debug(msg string, args ...any) { l.record("debug", msg, args) }
func (l *CaptureLogger) Info(msg string, args ...any)  { l.record("info", msg, args) }
func (l *CaptureLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args) }
func (l *CaptureLogger) Error(msg string, args ...any) { l.record("error", msg, args) }
func (l *CaptureLogger) Fatal(msg string, args ...any) { l.record("fatal", msg, args) }

func (l *CaptureLogger) WithContext(context.Context) glog.Logger { return l }

// Messages returns "level:message" for every captured entry.
func (l *CaptureLogger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.entries))
	for _, entry := range l.entries {
		out = append(out, entry.Level+":"+entry.Message)
	}
	return out
}

// CaptureProvider hands out the same CaptureLogger for every name.
type CaptureProvider struct {
	Logger *CaptureLogger
}

func (p CaptureProvider) GetLogger(string) glog.Logger {
	return p.Logger
}
