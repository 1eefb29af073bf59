// Package logging builds the slog.Logger shared by focustree components.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/golang-cz/devslog"
)

// New returns a logger writing to w. format is "dev" (colored, for
// terminals), "json" or "text".
func New(w io.Writer, level, format string) (*slog.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	handlerOpts := &slog.HandlerOptions{Level: lvl}

	var h slog.Handler
	switch strings.ToLower(format) {
	case "dev":
		h = devslog.NewHandler(w, &devslog.Options{
			HandlerOptions:    handlerOpts,
			MaxSlicePrintSize: 8,
			SortKeys:          true,
			TimeFormat:        "[15:04:05]",
			StringerFormatter: true,
		})
	case "json":
		h = slog.NewJSONHandler(w, handlerOpts)
	case "", "text":
		h = slog.NewTextHandler(w, handlerOpts)
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	return slog.New(h), nil
}

// ParseLevel maps debug / info / warn / error to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}
