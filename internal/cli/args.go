// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import "strings"

// =============================================================================
// ARGUMENT PARSER
// =============================================================================

// ArgParser separates flags from positional arguments. Flags take the
// forms --name value and --name=value; everything else is positional.
type ArgParser struct {
	flags      map[string]string
	positional []string
}

// flagsWithValue lists flags that consume the following argument. Any
// other --flag is boolean.
var flagsWithValue = map[string]bool{
	"endpoint": true,
	"model":    true,
	"config":   true,
	"mode":     true,
}

// NewArgParser parses raw arguments (without the program name).
func NewArgParser(raw []string) *ArgParser {
	p := &ArgParser{flags: make(map[string]string)}

	for i := 0; i < len(raw); i++ {
		arg := raw[i]
		if !strings.HasPrefix(arg, "--") {
			p.positional = append(p.positional, arg)
			continue
		}

		name := strings.TrimPrefix(arg, "--")
		if eq := strings.Index(name, "="); eq >= 0 {
			p.flags[name[:eq]] = name[eq+1:]
			continue
		}
		if flagsWithValue[name] && i+1 < len(raw) {
			p.flags[name] = raw[i+1]
			i++
			continue
		}
		p.flags[name] = "true"
	}
	return p
}

// Flag returns the value for name and whether it was given.
func (p *ArgParser) Flag(name string) (string, bool) {
	v, ok := p.flags[name]
	return v, ok
}

// FlagOrDefault returns the flag's value, or fallback when absent.
func (p *ArgParser) FlagOrDefault(name, fallback string) string {
	if v, ok := p.flags[name]; ok {
		return v
	}
	return fallback
}

// BoolFlag reports whether a boolean flag was given.
func (p *ArgParser) BoolFlag(name string) bool {
	v, ok := p.flags[name]
	return ok && v != "false"
}

// Positional returns the i-th positional argument, or "".
func (p *ArgParser) Positional(i int) string {
	if i < 0 || i >= len(p.positional) {
		return ""
	}
	return p.positional[i]
}

// JoinPositionalFrom joins positional arguments starting at index i with
// spaces. Used for free-text queries given without quoting.
func (p *ArgParser) JoinPositionalFrom(i int) string {
	if i < 0 || i >= len(p.positional) {
		return ""
	}
	return strings.Join(p.positional[i:], " ")
}
