package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

const consoleTimeLayout = "2006-01-02 15:04:05"

// shortRunID is the run ID prefix shown on console lines. JSON keeps the full ID.
const shortRunID = 8

// consoleOutput is shared by every handler derived from one logger so lines
// from concurrent goroutines never interleave.
type consoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

type consoleField struct {
	key   string
	value string
}

// consoleScope holds the attributes promoted into the line header.
type consoleScope struct {
	component string
	runID     string
	phase     string
}

func (s consoleScope) String() string {
	var parts []string
	if s.component != "" {
		parts = append(parts, s.component)
	}
	run := s.runID
	if len(run) > shortRunID {
		run = run[:shortRunID]
	}
	switch {
	case run != "" && s.phase != "":
		parts = append(parts, run+"/"+s.phase)
	case run != "":
		parts = append(parts, run)
	case s.phase != "":
		parts = append(parts, s.phase)
	}
	if len(parts) == 0 {
		return ""
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// consoleHandler renders one human-readable line per record:
//
//	2019-03-13 11:15:20 INFO [planner 01234567/plan] file planned target="/t/a b.jpg"
type consoleHandler struct {
	out       *consoleOutput
	level     slog.Leveler
	addSource bool
	prefix    string
	scope     consoleScope
	fields    []consoleField
}

func newConsoleHandler(w io.Writer, level slog.Leveler, addSource bool) slog.Handler {
	return &consoleHandler{out: &consoleOutput{w: w}, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	scope := h.scope
	fields := append([]consoleField(nil), h.fields...)
	record.Attrs(func(attr slog.Attr) bool {
		fields = collectField(fields, &scope, h.prefix, attr)
		return true
	})

	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var b strings.Builder
	b.WriteString(ts.In(time.Local).Format(consoleTimeLayout))
	b.WriteByte(' ')
	b.WriteString(levelName(record.Level))
	if header := scope.String(); header != "" {
		b.WriteByte(' ')
		b.WriteString(header)
	}
	b.WriteByte(' ')
	msg := strings.TrimSpace(record.Message)
	if msg == "" {
		msg = "-"
	}
	b.WriteString(msg)
	for _, f := range fields {
		b.WriteByte(' ')
		b.WriteString(f.key)
		b.WriteByte('=')
		b.WriteString(quoteIfNeeded(f.value))
	}
	if h.addSource {
		if src := record.Source(); src != nil && src.File != "" {
			fmt.Fprintf(&b, " (%s:%d)", filepath.Base(src.File), src.Line)
		}
	}
	b.WriteByte('\n')

	h.out.mu.Lock()
	defer h.out.mu.Unlock()
	_, err := io.WriteString(h.out.w, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.fields = append([]consoleField(nil), h.fields...)
	for _, attr := range attrs {
		next.fields = collectField(next.fields, &next.scope, h.prefix, attr)
	}
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

// collectField flattens attr into fields. Header keys at the top level move
// into scope, and a repeated key replaces its earlier value in place.
func collectField(fields []consoleField, scope *consoleScope, prefix string, attr slog.Attr) []consoleField {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return fields
	}
	if attr.Value.Kind() == slog.KindGroup {
		inner := prefix
		if attr.Key != "" {
			inner = prefix + attr.Key + "."
		}
		for _, child := range attr.Value.Group() {
			fields = collectField(fields, scope, inner, child)
		}
		return fields
	}
	if prefix == "" {
		switch attr.Key {
		case FieldComponent:
			scope.component = valueText(attr.Value)
			return fields
		case FieldRunID:
			scope.runID = valueText(attr.Value)
			return fields
		case FieldPhase:
			scope.phase = valueText(attr.Value)
			return fields
		}
	}
	key := prefix + attr.Key
	value := valueText(attr.Value)
	for i := range fields {
		if fields[i].key == key {
			fields[i].value = value
			return fields
		}
	}
	return append(fields, consoleField{key: key, value: value})
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}

func valueText(v slog.Value) string {
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().In(time.Local).Format(consoleTimeLayout)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return fmt.Sprint(v.Any())
	}
	return v.String()
}

func quoteIfNeeded(s string) string {
	if s == "" {
		return `""`
	}
	if strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '"' || r == '=' }) {
		return strconv.Quote(s)
	}
	return s
}
