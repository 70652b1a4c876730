// Package colors provides the terminal styles of the resolver output.
//
// Colors are disabled when stdout is not a terminal. Use Init to override
// the detected setting from the --color flag.
package colors

import "github.com/fatih/color"

// Init overrides the auto-detected color setting when forceColor is non-nil.
func Init(forceColor *bool) {
	if forceColor != nil {
		color.NoColor = !*forceColor
	}
}

// Enabled returns true if colors are currently enabled.
func Enabled() bool {
	return !color.NoColor
}

// Success styles the completion banner.
func Success() *color.Color { return color.New(color.Bold, color.FgHiGreen) }

// Count styles row and member counts.
func Count() *color.Color { return color.New(color.Bold, color.FgHiYellow) }

// Path styles archive entries and written files.
func Path() *color.Color { return color.New(color.FgHiCyan) }

// Label styles the name half of a key/value line.
func Label() *color.Color { return color.New(color.Faint, color.FgWhite) }

// Warning styles skipped or unparsable plists.
func Warning() *color.Color { return color.New(color.Bold, color.FgHiRed) }
