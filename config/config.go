// Package config holds configuration for the commit intelligence pipeline.
package config

import (
	"fmt"

	"github.com/imdario/mergo"
)

type Config struct {
	Debug                  bool       `json:"debug,omitempty"`
	Quiet                  bool       `json:"quiet,omitempty"`
	InCI                   bool       `json:"ci,omitempty"`
	Types                  []string   `json:"types,omitempty"`
	AllowedScopes          []string   `json:"allowed_scopes,omitempty"`
	CoreModulePatterns     []string   `json:"core_module_patterns,omitempty"`
	LargeRefactorThreshold int        `json:"large_refactor_threshold,omitempty"`
	MaxSubjectLength       int        `json:"max_subject_length,omitempty"`
	Term                   TerminalIO `json:"-"`
}

func New(overrides *Config) Config {
	return NewWithTerminalIO(overrides, nil)
}

func NewWithTerminalIO(overrides *Config, termio *TerminalIO) Config {
	cfg := GetDefault()
	if termio == nil {
		termio = &DefaultTermIO
	}
	cfg.Term = *termio

	if overrides != nil {
		if err := mergo.Merge(&cfg, overrides, mergo.WithOverride); err != nil {
			panic(err)
		}
	}
	return cfg
}

func (c Config) Validate() error {
	if c.LargeRefactorThreshold < 0 {
		return fmt.Errorf("config: large_refactor_threshold must be >= 0, got %d", c.LargeRefactorThreshold)
	}
	if c.MaxSubjectLength < 0 {
		return fmt.Errorf("config: max_subject_length must be >= 0, got %d", c.MaxSubjectLength)
	}
	return nil
}

// KnownType reports whether t is on the configured commit type allow-list.
// The parser is permissive, so this is only consulted by the lint layer.
func (c Config) KnownType(t string) bool {
	return oneOf(t, c.Types)
}

func (c Config) Printf(msg string, args ...interface{}) {
	if c.Quiet {
		return
	}
	fmt.Fprintf(c.Term.Stdout, msg+"\n", args...)
}

func (c Config) Errorf(msg string, args ...interface{}) {
	fmt.Fprintf(c.Term.Stderr, msg+"\n", args...)
}

func (c Config) Debugf(msg string, args ...interface{}) {
	if !c.Debug {
		return
	}
	c.Printf(msg, args...)
}

func oneOf(s string, l []string) bool {
	for _, cand := range l {
		if s == cand {
			return true
		}
	}
	return false
}
