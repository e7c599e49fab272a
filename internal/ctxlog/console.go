// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/TylerBrock/colorjson"
	"github.com/matt-FFFFFF/gitr/internal/color"
)

var (
	// ErrMarshalAttribute is returned when an error occurs while marshaling an attribute.
	ErrMarshalAttribute = errors.New("error when marshaling attribute")
	// ErrIoWrite is returned when an error occurs while writing to the output.
	ErrIoWrite = errors.New("error when writing to output")
)

// TimeFormat is the format used for timestamps in log messages.
const TimeFormat = "[15:04:05.000]"

var _ slog.Handler = (*ConsoleHandler)(nil)

// ConsoleHandler is a slog handler that writes compact, colorized lines for
// humans. Attributes are rendered as colorized JSON.
type ConsoleHandler struct {
	level  slog.Leveler
	writer io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string
	json   *colorjson.Formatter
}

// NewConsole creates a ConsoleHandler writing to w at the given level.
func NewConsole(w io.Writer, level slog.Leveler) *ConsoleHandler {
	return &ConsoleHandler{
		level:  level,
		writer: w,
		mu:     &sync.Mutex{},
		json:   colorjson.NewFormatter(),
	}
}

// Enabled checks if the handler is enabled for the given level.
func (h *ConsoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// WithAttrs creates a new handler with the given attributes.
func (h *ConsoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...)

	return &clone
}

// WithGroup creates a new handler with the given group name.
func (h *ConsoleHandler) WithGroup(name string) slog.Handler {
	clone := *h
	clone.groups = append(h.groups[:len(h.groups):len(h.groups)], name)

	return &clone
}

// Handle implements the slog.Handler interface for ConsoleHandler.
func (h *ConsoleHandler) Handle(_ context.Context, r slog.Record) error {
	level := r.Level.String() + ":"

	switch {
	case r.Level <= slog.LevelDebug:
		level = color.Colorize(level, color.FgWhite)
	case r.Level <= slog.LevelInfo:
		level = color.Colorize(level, color.FgCyan)
	case r.Level < slog.LevelError:
		level = color.Colorize(level, color.FgYellow)
	default:
		level = color.Colorize(level, color.FgRed)
	}

	attrs := make(map[string]any, len(h.attrs)+r.NumAttrs())
	leaf := attrs

	for _, g := range h.groups {
		next := make(map[string]any)
		leaf[g] = next
		leaf = next
	}

	for _, a := range h.attrs {
		putAttr(leaf, a)
	}

	r.Attrs(func(a slog.Attr) bool {
		putAttr(leaf, a)
		return true
	})

	var attrsAsBytes []byte

	if len(leaf) > 0 {
		normalized, err := normalize(attrs)
		if err != nil {
			return errors.Join(ErrMarshalAttribute, err)
		}

		// Color state can change after construction, e.g. when the forwarded
		// git args carry an explicit --color flag, so it is read per record.
		h.mu.Lock()
		h.json.DisabledColor = !color.Enabled()
		attrsAsBytes, err = h.json.Marshal(normalized)
		h.mu.Unlock()

		if err != nil {
			return errors.Join(ErrMarshalAttribute, err)
		}
	}

	out := strings.Builder{}

	if !r.Time.IsZero() {
		out.WriteString(color.Colorize(r.Time.Format(TimeFormat), color.FgWhite))
		out.WriteString(" ")
	}

	out.WriteString(level)
	out.WriteString(" ")
	out.WriteString(color.Colorize(r.Message, color.FgHiWhite))

	if len(attrsAsBytes) > 0 {
		out.WriteString(" ")
		out.Write(attrsAsBytes)
	}

	out.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := io.WriteString(h.writer, out.String()); err != nil {
		return errors.Join(ErrIoWrite, err)
	}

	return nil
}

func putAttr(m map[string]any, a slog.Attr) {
	v := a.Value.Resolve()

	if v.Kind() == slog.KindGroup {
		group := make(map[string]any)
		for _, ga := range v.Group() {
			putAttr(group, ga)
		}

		m[a.Key] = group

		return
	}

	if err, ok := v.Any().(error); ok {
		m[a.Key] = err.Error()
		return
	}

	m[a.Key] = v.Any()
}

// normalize round-trips the attribute map through encoding/json so that the
// colorjson formatter only ever sees the generic types it understands.
func normalize(attrs map[string]any) (map[string]any, error) {
	b, err := json.Marshal(attrs)
	if err != nil {
		return nil, err
	}

	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}

	return out, nil
}
