// Package application runs the filter pipeline over files on disk for the
// csvfilter command.
package application

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"

	"github.com/JonMunkholm/csvfilter/internal/core"
	"gopkg.in/yaml.v3"
)

// RangeSpec is an inclusive range in a preset file. Either side may be
// omitted.
type RangeSpec struct {
	Min *float64 `yaml:"min"`
	Max *float64 `yaml:"max"`
}

// Preset is one named set of selections.
//
//	presets:
//	  - name: brazil
//	    country: Brazil
//	    sex: male
//	    byear: {min: 1980, max: 1995}
//	    followers: {min: 100}
//	    message: can
type Preset struct {
	Name      string     `yaml:"name"`
	FirstName string     `yaml:"first_name"`
	Sex       string     `yaml:"sex"`
	Country   string     `yaml:"country"`
	City      string     `yaml:"city"`
	BirthYear *RangeSpec `yaml:"byear"`
	Followers *RangeSpec `yaml:"followers"`
	Message   string     `yaml:"message"`
}

// Selections converts the preset to pipeline selections.
func (p Preset) Selections() core.Selections {
	return core.Selections{
		FirstName: p.FirstName,
		Sex:       p.Sex,
		Country:   p.Country,
		City:      p.City,
		BirthYear: p.BirthYear.toRange(),
		Followers: p.Followers.toRange(),
		Message:   p.Message,
	}
}

func (r *RangeSpec) toRange() *core.Range {
	if r == nil || (r.Min == nil && r.Max == nil) {
		return nil
	}
	out := core.NewRange(r.Min, r.Max)
	return &out
}

// presetFile is either a list of presets or a single unnamed preset at the
// top level.
type presetFile struct {
	Preset  `yaml:",inline"`
	Presets []Preset `yaml:"presets"`
}

var presetName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ErrNoPresets is returned for preset files that define nothing.
var ErrNoPresets = errors.New("preset file defines no selections")

// LoadPresets reads presets from a YAML file. An empty path selects
// everything.
func LoadPresets(path string) ([]Preset, error) {
	if path == "" {
		return []Preset{{}}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open presets: %w", err)
	}
	defer f.Close()
	return DecodePresets(f)
}

// DecodePresets parses a preset document. Unknown keys are rejected so a
// misspelled filter does not silently select everything. Names must be
// unique and usable as directory names.
func DecodePresets(r io.Reader) ([]Preset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrNoPresets
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var file presetFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode presets: %w", err)
	}

	presets := file.Presets
	if len(presets) == 0 {
		presets = []Preset{file.Preset}
	} else if file.Preset != (Preset{}) {
		return nil, errors.New("decode presets: top-level selections cannot be combined with a presets list")
	}

	seen := make(map[string]bool, len(presets))
	for i, p := range presets {
		if len(presets) > 1 && p.Name == "" {
			return nil, fmt.Errorf("preset %d: name is required when several presets are defined", i+1)
		}
		if p.Name == "" {
			continue
		}
		if !presetName.MatchString(p.Name) {
			return nil, fmt.Errorf("preset %q: name may only contain letters, digits, '.', '_' and '-'", p.Name)
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("preset %q: duplicate name", p.Name)
		}
		seen[p.Name] = true
	}
	return presets, nil
}
