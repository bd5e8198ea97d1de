package aggregate

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	// ErrNoLevels is returned when a rule set defines no levels.
	ErrNoLevels = errors.New("rule set has no levels")

	// ErrEmptyLevel is returned when a level defines no categories.
	ErrEmptyLevel = errors.New("level has no categories")
)

// Category is one bucket within a level: a record whose text contains any of
// the keywords (case-insensitive substring match) falls into the category.
// Categories are tried in declaration order; the first match wins.
type Category struct {
	Name     string   `toml:"name"`
	Keywords []string `toml:"keywords"`
}

// Level is one classification dimension. Levels apply in order, so the first
// level's categories become the first ring of the sunburst, the second
// level's the second ring, and so on.
//
// A level with a Default catches records no category matched. A level
// without one is required: unmatched records are skipped entirely.
type Level struct {
	Name       string     `toml:"name"`
	Default    string     `toml:"default,omitempty"`
	Categories []Category `toml:"categories"`
}

// RuleSet is a full classification scheme plus the name of the root node the
// aggregated hierarchy is labelled with.
type RuleSet struct {
	Root   string  `toml:"root"`
	Levels []Level `toml:"levels"`
}

// LoadRules reads a TOML rule file. See [ParseRules] for the format.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %s: %w", path, err)
	}
	return ParseRules(data)
}

// ParseRules decodes and validates a TOML rule set:
//
//	root = "Travel Preferences"
//
//	[[levels]]
//	name = "season"
//	[[levels.categories]]
//	name = "Spring"
//	keywords = ["spring", "march", "april"]
//
//	[[levels]]
//	name = "activity"
//	default = "General"
//	[[levels.categories]]
//	name = "Adventure"
//	keywords = ["adventure", "trek", "hike"]
func ParseRules(data []byte) (*RuleSet, error) {
	var rs RuleSet
	if err := toml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return nil, err
	}
	return &rs, nil
}

// Validate checks structural constraints: at least one level, and at least
// one category per level. An empty root defaults to "root".
func (rs *RuleSet) Validate() error {
	if len(rs.Levels) == 0 {
		return ErrNoLevels
	}
	for _, lvl := range rs.Levels {
		if len(lvl.Categories) == 0 {
			return fmt.Errorf("%w: %q", ErrEmptyLevel, lvl.Name)
		}
	}
	if rs.Root == "" {
		rs.Root = "root"
	}
	return nil
}

// Infer returns the category the text falls into, or the level default.
// The boolean is false when nothing matched and the level has no default.
func (lvl Level) Infer(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, cat := range lvl.Categories {
		for _, kw := range cat.Keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return cat.Name, true
			}
		}
	}
	if lvl.Default != "" {
		return lvl.Default, true
	}
	return "", false
}
