package nav

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// SupportedVersion is the only configuration schema version understood by Parse.
const SupportedVersion = 1

//go:embed navigation.yaml
var defaultConfig []byte

// ErrInvalidConfig is wrapped by every validation failure returned from Parse.
var ErrInvalidConfig = errors.New("invalid navigation config")

type document struct {
	Version int     `yaml:"version"`
	Groups  []Group `yaml:"groups"`
}

var (
	defaultOnce  sync.Once
	defaultModel Model
	defaultErr   error
)

// Default returns the embedded navigation model. It is decoded once per process.
func Default() (Model, error) {
	defaultOnce.Do(func() {
		defaultModel, defaultErr = Parse(defaultConfig)
	})
	return defaultModel, defaultErr
}

// Load reads and validates a navigation config file.
func Load(path string) (Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Model{}, fmt.Errorf("read navigation config: %w", err)
	}
	return Parse(data)
}

// LoadOrDefault loads path when set, otherwise returns the embedded model.
func LoadOrDefault(path string) (Model, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}
	return Load(path)
}

// Parse decodes and validates navigation config from raw YAML bytes.
func Parse(data []byte) (Model, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Model{}, fmt.Errorf("parse navigation config: %w", err)
	}
	if err := doc.validate(); err != nil {
		return Model{}, err
	}
	m := Model{version: doc.Version, groups: make([]Group, len(doc.Groups))}
	for k, g := range doc.Groups {
		m.groups[k] = g.clone()
	}
	return m, nil
}

// Marshal encodes the model back to YAML (used by the admin CLI).
func Marshal(m Model) ([]byte, error) {
	return yaml.Marshal(document{Version: m.version, Groups: m.Groups()})
}

func (d document) validate() error {
	var errs []string

	if d.Version != SupportedVersion {
		errs = append(errs, fmt.Sprintf("unsupported version %d (want %d)", d.Version, SupportedVersion))
	}
	if len(d.Groups) == 0 {
		errs = append(errs, "at least one group is required")
	}

	names := map[string]bool{}
	pinned := 0
	for gi, g := range d.Groups {
		where := fmt.Sprintf("groups[%d]", gi)
		if strings.TrimSpace(g.Name) == "" {
			errs = append(errs, where+": name is required")
		} else if names[g.Name] {
			errs = append(errs, fmt.Sprintf("%s: duplicate group name %q", where, g.Name))
		}
		names[g.Name] = true

		if g.Pinned {
			pinned++
			if gi != len(d.Groups)-1 {
				errs = append(errs, where+": pinned group must be last")
			}
		}
		if len(g.Items) == 0 {
			errs = append(errs, where+": at least one item is required")
		}
		for ii, it := range g.Items {
			errs = append(errs, validateItem(fmt.Sprintf("%s.items[%d]", where, ii), it, 1)...)
		}
	}
	switch {
	case pinned > 1:
		errs = append(errs, "at most one group may be pinned")
	case pinned == 0 && len(d.Groups) > 0:
		errs = append(errs, "exactly one group must be pinned")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

func validateItem(where string, it Item, depth int) []string {
	var errs []string
	if depth > MaxDepth {
		return []string{fmt.Sprintf("%s: nesting deeper than %d levels", where, MaxDepth)}
	}
	if strings.TrimSpace(it.Title) == "" {
		errs = append(errs, where+": title is required")
	}
	if strings.TrimSpace(it.Target) == "" {
		errs = append(errs, where+": target is required")
	}
	for ci, c := range it.Children {
		errs = append(errs, validateItem(fmt.Sprintf("%s.children[%d]", where, ci), c, depth+1)...)
	}
	return errs
}
