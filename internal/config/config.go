// Package config holds the immutable options a validation run is
// constructed with. Options are created once, validated fail-fast, and
// never mutated afterwards; the validator core reads them but does not
// own them.
package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/wharton/dfcv/internal/value"
)

// DefaultMaxOffenders caps how many offending row keys and column names a
// report retains when the caller does not say otherwise. Counts are always
// exact; only the retained identifier samples are bounded.
const DefaultMaxOffenders = 1000

// Options configures a validation run.
type Options struct {
	// PrimaryKey is the column used to align before and after rows.
	// Required; must exist in both tables.
	PrimaryKey string `yaml:"primary_key"`

	// ExpectedTypes maps column name to the kind the conversion should
	// have produced ("string", "number", "bool", "timestamp"). Columns
	// absent from the map skip the type-mismatch check.
	ExpectedTypes map[string]string `yaml:"expected_types,omitempty"`

	// Labels maps column name to the problem-category label it reports
	// under. Columns absent from the map get a derived label
	// (e.g. column "update_time" reports as "ImproperUpdateTime").
	Labels map[string]string `yaml:"labels,omitempty"`

	// TreatEmptyAsNull normalizes the empty string and NaN to null on
	// both sides before a cell is classified. Off by default: an empty
	// string is a value, and losing it to null is a defect.
	TreatEmptyAsNull bool `yaml:"treat_empty_as_null,omitempty"`

	// MaxOffendersRetained bounds the retained samples of offending row
	// keys and column names. Zero means DefaultMaxOffenders.
	MaxOffendersRetained int `yaml:"max_offenders_retained,omitempty"`

	// Parallelism sets how many partitions of aligned rows are compared
	// concurrently. Zero means GOMAXPROCS.
	Parallelism int `yaml:"parallelism,omitempty"`
}

// Load reads and parses an Options YAML file.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML with strict field validation (catches typos like
	// "label:" vs "labels:")
	var opts Options
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&opts); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &opts, nil
}

// Validate checks the options that can be checked without the tables.
// Column-existence checks happen at validator construction, where the
// tables' schemas are known.
func (o *Options) Validate() error {
	if o.PrimaryKey == "" {
		return fmt.Errorf("primary_key is required")
	}
	if o.MaxOffendersRetained < 0 {
		return fmt.Errorf("max_offenders_retained must be >= 0, got %d", o.MaxOffendersRetained)
	}
	if o.Parallelism < 0 {
		return fmt.Errorf("parallelism must be >= 0, got %d", o.Parallelism)
	}
	for col, kind := range o.ExpectedTypes {
		if _, err := value.ParseKind(kind); err != nil {
			return fmt.Errorf("expected_types[%q]: %w", col, err)
		}
	}
	for col, label := range o.Labels {
		if label == "" {
			return fmt.Errorf("labels[%q]: label must not be empty", col)
		}
	}
	return nil
}

// ExpectedKinds returns the parsed form of ExpectedTypes.
// Call Validate first; parse failures here are programming errors.
func (o *Options) ExpectedKinds() map[string]value.Kind {
	if len(o.ExpectedTypes) == 0 {
		return nil
	}
	kinds := make(map[string]value.Kind, len(o.ExpectedTypes))
	for col, s := range o.ExpectedTypes {
		k, err := value.ParseKind(s)
		if err != nil {
			panic(fmt.Sprintf("config: unvalidated expected type for %q: %v", col, err))
		}
		kinds[col] = k
	}
	return kinds
}

// MaxOffenders returns the effective offender-sample cap.
func (o *Options) MaxOffenders() int {
	if o.MaxOffendersRetained == 0 {
		return DefaultMaxOffenders
	}
	return o.MaxOffendersRetained
}
