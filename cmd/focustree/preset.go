package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/sahilm/fuzzy"
)

// PresetCmd focuses a configured preset or a recently focused folder.
type PresetCmd struct {
	Query  string `arg:"positional" help:"Fuzzy query; without one the candidates are listed"`
	Recent int    `arg:"--recent" default:"10" help:"How many recently focused folders to offer"`
}

// candidate is a folder the preset picker can focus.
type candidate struct {
	Name   string
	Path   string
	Source string // "preset" or "recent"
}

// candidates implements fuzzy.Source over name and path.
type candidates []candidate

func (c candidates) String(i int) string { return c[i].Name + " " + c[i].Path }
func (c candidates) Len() int            { return len(c) }

type PresetRunner struct {
	Args PresetCmd
	App  *App
}

func NewPresetRunner(args PresetCmd, app *App) *PresetRunner {
	return &PresetRunner{Args: args, App: app}
}

func (r *PresetRunner) Run(ctx context.Context) error {
	cands, err := r.candidates(ctx)
	if err != nil {
		return err
	}
	if len(cands) == 0 {
		fmt.Fprintln(r.App.Out, "No presets configured and no folders focused yet.")
		return nil
	}

	if r.Args.Query == "" {
		width := 0
		for _, c := range cands {
			width = max(width, len(c.Name))
		}
		for _, c := range cands {
			fmt.Fprintf(r.App.Out, "%-*s  %s  (%s)\n", width, c.Name, c.Path, c.Source)
		}
		return nil
	}

	matches := fuzzy.FindFrom(r.Args.Query, cands)
	if len(matches) == 0 {
		return fmt.Errorf("no preset matches %q", r.Args.Query)
	}
	best := cands[matches[0].Index]

	return NewFocusRunner(FocusCmd{Path: best.Path, Depth: 1}, r.App).Run(ctx)
}

// candidates lists the configured presets followed by recent foci that are
// not already presets.
func (r *PresetRunner) candidates(ctx context.Context) (candidates, error) {
	var cands candidates
	seen := make(map[string]bool)
	for _, p := range r.App.Config.Presets {
		if seen[p.Path] {
			continue
		}
		seen[p.Path] = true
		cands = append(cands, candidate{Name: p.Name, Path: p.Path, Source: "preset"})
	}

	if r.Args.Recent <= 0 {
		return cands, nil
	}
	recent, err := r.App.Store.RecentFoci(ctx, r.Args.Recent)
	if err != nil {
		return nil, err
	}
	for _, f := range recent {
		if seen[f.Path] {
			continue
		}
		seen[f.Path] = true
		cands = append(cands, candidate{Name: filepath.Base(f.Path), Path: f.Path, Source: "recent"})
	}
	return cands, nil
}
