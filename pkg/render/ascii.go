// Package render draws a resolved transmute.Chain as an ASCII diagram,
// adapted from the teacher's workflow tree renderer down to the one shape
// a Chain has: a straight line rather than a branching tree.
package render

import (
	"fmt"
	"os"
	"strings"

	"github.com/nyxwell/transmute/pkg/transmute"
	"golang.org/x/term"
)

// ANSI color codes, matching the teacher's palette.
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

const (
	arrow = "──▶ "
)

// Options controls Chain rendering.
type Options struct {
	// UseColor forces ANSI color on or off. When unset, Render
	// auto-detects by checking whether Writer is a terminal.
	UseColor *bool
}

// DefaultOptions returns the zero Options, which auto-detects color.
func DefaultOptions() Options { return Options{} }

// Chain renders chain as a single-line ASCII diagram:
//
//	[src] ──▶ edge_one ──▶ [mid] ──▶ edge_two ──▶ [dst]
//
// An empty chain renders as a single category box.
func Chain(chain transmute.Chain, opts Options) string {
	useColor := opts.UseColor != nil && *opts.UseColor
	if opts.UseColor == nil {
		useColor = isTerminal()
	}

	var sb strings.Builder
	sb.WriteString(box(chain.CatIn().String(), colorCyan, useColor))

	for _, e := range chain {
		sb.WriteString(" ")
		sb.WriteString(colorize(arrow, colorYellow, useColor))
		sb.WriteString(colorize(e.String(), colorGreen, useColor))
		sb.WriteString(" ")
		sb.WriteString(colorize(arrow, colorYellow, useColor))
		sb.WriteString(box(e.CatOut.String(), colorCyan, useColor))
	}

	return sb.String()
}

func box(label, color string, useColor bool) string {
	return colorize(fmt.Sprintf("[%s]", label), color, useColor)
}

func colorize(text, color string, enabled bool) string {
	if !enabled {
		return text
	}
	return color + text + colorReset
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
