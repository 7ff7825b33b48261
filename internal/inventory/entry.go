// Package inventory reads saved inventory pages and answers questions about
// them: per-item lookups through a cached catalog and aggregate statistics
// over the whole collection.
package inventory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/tomokisaito/roompower/internal/gamejson"
	"github.com/tomokisaito/roompower/internal/snapshot"
)

// Kind tells miners and racks apart in a mixed collection.
type Kind string

const (
	KindMiner Kind = "miner"
	KindRack  Kind = "rack"
)

// Entry is one inventory item in calculator units: power in Gh/s, bonuses
// in centi-percent.
type Entry struct {
	ID           string  `yaml:"id,omitempty" json:"id,omitempty"`
	Kind         Kind    `yaml:"kind" json:"kind"`
	Name         string  `yaml:"name" json:"name"`
	Level        int     `yaml:"level" json:"level"`
	Power        float64 `yaml:"power,omitempty" json:"power,omitempty"`
	BonusPercent int     `yaml:"bonus_percent,omitempty" json:"bonus_percent,omitempty"`
	Width        int     `yaml:"width,omitempty" json:"width,omitempty"`
	Height       int     `yaml:"height,omitempty" json:"height,omitempty"`
}

// listKeys are the wrapper keys inventory endpoints have used for the item
// array, in probe order.
var listKeys = []string{"items", "miners", "inventory", "results", "docs", "list"}

// ExtractList pulls the item array out of one saved response page. Pages
// wrap their items inconsistently: some are bare arrays, some nest the
// array under "data", some under one of several known list keys. Unknown
// wrappers fall back to the first array-valued key in sorted order. Returns
// nil when the page holds no array at all.
func ExtractList(payload []byte) []json.RawMessage {
	payload = gamejson.StripLineComments(payload)

	if items := asList(payload); items != nil {
		return items
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil {
		return nil
	}

	if data, ok := obj["data"]; ok {
		if items := asList(data); items != nil {
			return items
		}
		var inner map[string]json.RawMessage
		if err := json.Unmarshal(data, &inner); err == nil {
			if items := listFrom(inner); items != nil {
				return items
			}
		}
	}
	return listFrom(obj)
}

// asList decodes raw as a JSON array, reporting nil for anything else.
func asList(raw json.RawMessage) []json.RawMessage {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	return items
}

func listFrom(obj map[string]json.RawMessage) []json.RawMessage {
	for _, key := range listKeys {
		if raw, ok := obj[key]; ok {
			if items := asList(raw); items != nil {
				return items
			}
		}
	}

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if items := asList(obj[k]); items != nil {
			return items
		}
	}
	return nil
}

// Loader reads saved inventory pages from disk.
type Loader struct {
	logger *zap.Logger
	langs  []language.Tag
}

// NewLoader creates a loader resolving localized names in the given order.
func NewLoader(logger *zap.Logger, langs ...language.Tag) *Loader {
	return &Loader{
		logger: logger.Named("inventory"),
		langs:  langs,
	}
}

// LoadFile reads one saved page and converts its items.
func (l *Loader) LoadFile(path string, kind Kind) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory page: %w", err)
	}

	items := ExtractList(data)
	if items == nil {
		return nil, fmt.Errorf("no item list found in %s", path)
	}

	entries := make([]Entry, 0, len(items))
	for _, raw := range items {
		e, err := l.convert(raw, kind)
		if err != nil {
			l.logger.Warn("Skipping unreadable inventory item",
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		entries = append(entries, e)
	}

	l.logger.Debug("Loaded inventory page",
		zap.String("path", path),
		zap.String("kind", string(kind)),
		zap.Int("items", len(entries)),
	)
	return entries, nil
}

// LoadFiles concatenates the items of several pages in argument order.
func (l *Loader) LoadFiles(paths []string, kind Kind) ([]Entry, error) {
	var entries []Entry
	for _, path := range paths {
		page, err := l.LoadFile(path, kind)
		if err != nil {
			return nil, err
		}
		entries = append(entries, page...)
	}
	return entries, nil
}

// LoadDir reads every extracted inventory page in dir, using the file names
// the HAR extractor writes to tell miners from racks.
func (l *Loader) LoadDir(dir string) ([]Entry, error) {
	var entries []Entry
	for _, spec := range []struct {
		pattern string
		kind    Kind
	}{
		{"inventory_miners_*.json", KindMiner},
		{"inventory_rack_*.json", KindRack},
	} {
		paths, err := filepath.Glob(filepath.Join(dir, spec.pattern))
		if err != nil {
			return nil, fmt.Errorf("bad page pattern: %w", err)
		}
		page, err := l.LoadFiles(paths, spec.kind)
		if err != nil {
			return nil, err
		}
		entries = append(entries, page...)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("no inventory pages found in %s", dir)
	}
	return entries, nil
}

func (l *Loader) convert(raw json.RawMessage, kind Kind) (Entry, error) {
	if kind == KindRack {
		var rr snapshot.RawRack
		if err := json.Unmarshal(raw, &rr); err != nil {
			return Entry{}, fmt.Errorf("invalid rack item: %w", err)
		}
		return Entry{
			ID:           rr.ID,
			Kind:         KindRack,
			Name:         rr.Name.Resolve(l.langs...),
			Height:       rr.ResolvedHeight(),
			BonusPercent: rr.ResolvedPercent(),
		}, nil
	}

	var rm snapshot.RawMiner
	if err := json.Unmarshal(raw, &rm); err != nil {
		return Entry{}, fmt.Errorf("invalid miner item: %w", err)
	}
	return Entry{
		ID:           rm.ID,
		Kind:         KindMiner,
		Name:         rm.ResolvedName(l.langs...),
		Level:        int(rm.Level),
		Power:        rm.ResolvedPower(),
		BonusPercent: rm.ResolvedBonusPercent(),
		Width:        rm.ResolvedWidth(),
	}, nil
}
