package config

import (
	"fmt"
	"regexp"

	"github.com/edgecomet/htmlcut/internal/common/configtypes"
	"github.com/edgecomet/htmlcut/pkg/htmlcut"
)

// CutterConfig builds the engine configuration from the truncate section.
// Lists left empty keep the engine defaults; ExtraDenylist extends whichever
// denylist is in effect.
func CutterConfig(t configtypes.TruncateConfig) (htmlcut.Config, error) {
	cfg := htmlcut.DefaultConfig()

	if len(t.Denylist) > 0 {
		cfg.Denylist = htmlcut.NewTagSet(t.Denylist...)
	}
	for _, name := range t.ExtraDenylist {
		cfg.Denylist.Add(name)
	}
	if len(t.ParagraphTags) > 0 {
		cfg.ParagraphTags = htmlcut.NewTagSet(t.ParagraphTags...)
	}
	if len(t.TextCapableTags) > 0 {
		cfg.TextCapableTags = htmlcut.NewTagSet(t.TextCapableTags...)
	}

	if t.TrailingPunctuation != "" {
		re, err := regexp.Compile(t.TrailingPunctuation)
		if err != nil {
			return htmlcut.Config{}, fmt.Errorf("invalid trailing_punctuation: %w", err)
		}
		cfg.TrailingPunctuation = re
	}
	if t.MaxDepth > 0 {
		cfg.MaxDepth = t.MaxDepth
	}

	return cfg, cfg.Validate()
}

// NewCutter is CutterConfig followed by htmlcut.New.
func NewCutter(t configtypes.TruncateConfig) (*htmlcut.Cutter, error) {
	cfg, err := CutterConfig(t)
	if err != nil {
		return nil, err
	}
	return htmlcut.New(cfg)
}

// DefaultMarker returns the configured marker, or htmlcut.DefaultMarker.
// An explicitly empty marker is honoured.
func DefaultMarker(t configtypes.TruncateConfig) string {
	if t.DefaultMarker != nil {
		return *t.DefaultMarker
	}
	return htmlcut.DefaultMarker
}
