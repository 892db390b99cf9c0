// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "testing"

// =============================================================================
// ARGUMENT PARSER TESTS
// =============================================================================

func TestArgParser_FlagForms(t *testing.T) {
	p := NewArgParser([]string{"--endpoint", "https://x.example", "--debug", "--model=local"})

	if v, ok := p.Flag("endpoint"); !ok || v != "https://x.example" {
		t.Errorf("endpoint = %q, ok=%v", v, ok)
	}
	if v, ok := p.Flag("model"); !ok || v != "local" {
		t.Errorf("model = %q, ok=%v", v, ok)
	}
	if !p.BoolFlag("debug") {
		t.Error("debug flag not seen")
	}
	if p.BoolFlag("verbose") {
		t.Error("absent boolean flag should be false")
	}
}

func TestArgParser_Positionals(t *testing.T) {
	p := NewArgParser([]string{"pourquoi", "le", "ciel", "--debug", "est", "bleu"})

	if got := p.Positional(0); got != "pourquoi" {
		t.Errorf("Positional(0) = %q", got)
	}
	if got := p.Positional(99); got != "" {
		t.Errorf("Out-of-range positional should be empty, got %q", got)
	}
	if got := p.JoinPositionalFrom(0); got != "pourquoi le ciel est bleu" {
		t.Errorf("JoinPositionalFrom(0) = %q", got)
	}
	if got := p.JoinPositionalFrom(3); got != "est bleu" {
		t.Errorf("JoinPositionalFrom(3) = %q", got)
	}
}

func TestArgParser_ValueFlagConsumesNextArg(t *testing.T) {
	p := NewArgParser([]string{"--config", "/tmp/c.toml", "show"})

	if v := p.FlagOrDefault("config", ""); v != "/tmp/c.toml" {
		t.Errorf("config = %q", v)
	}
	if got := p.Positional(0); got != "show" {
		t.Errorf("Positional(0) = %q, value flag leaked into positionals", got)
	}
}

func TestArgParser_FlagOrDefault(t *testing.T) {
	p := NewArgParser(nil)
	if v := p.FlagOrDefault("endpoint", "fallback"); v != "fallback" {
		t.Errorf("FlagOrDefault = %q", v)
	}
}

func TestArgParser_ExplicitFalseBool(t *testing.T) {
	p := NewArgParser([]string{"--debug=false"})
	if p.BoolFlag("debug") {
		t.Error("--debug=false should read as false")
	}
}
