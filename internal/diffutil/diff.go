// Package diffutil generates and applies unified diffs.
//
// Generation is built on github.com/pmezard/go-difflib's sequence matcher
// with a renderer that emits classic unified patches, including the
// "\ No newline at end of file" marker so that files without a trailing
// newline survive a generate/apply round trip byte-exactly.
//
// Application (see apply.go) supports both forward and reverse direction,
// which is how stored patches are reversed against a tree to recover its
// pre-image.
package diffutil

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// noNewlineMarker follows a diff line whose content does not end in a newline.
const noNewlineMarker = "\\ No newline at end of file\n"

// Options controls unified patch rendering.
type Options struct {
	// Context is the number of context lines per hunk. Zero means 3.
	Context int

	// Strip removes the file header lines and the positions from hunk
	// headers, producing location-independent patch text. Stripped patches
	// cannot be applied or reversed.
	Strip bool
}

// Unified renders a unified diff turning content a into content b.
// Returns "" when the contents are identical.
func Unified(fromName, toName string, a, b []byte, opt Options) string {
	ctx := opt.Context
	if ctx <= 0 {
		ctx = 3
	}

	ua := splitLinesKeepNL(string(a))
	ub := splitLinesKeepNL(string(b))

	groups := difflib.NewMatcher(ua, ub).GetGroupedOpCodes(ctx)
	if len(groups) == 0 {
		return ""
	}

	var out strings.Builder
	if !opt.Strip {
		fmt.Fprintf(&out, "--- %s\n", fromName)
		fmt.Fprintf(&out, "+++ %s\n", toName)
	}

	for _, group := range groups {
		first, last := group[0], group[len(group)-1]
		if opt.Strip {
			out.WriteString("@@\n")
		} else {
			fmt.Fprintf(&out, "@@ -%s +%s @@\n",
				formatRange(first.I1, last.I2),
				formatRange(first.J1, last.J2))
		}
		for _, op := range group {
			switch op.Tag {
			case 'e':
				for _, line := range ua[op.I1:op.I2] {
					writeLine(&out, " ", line)
				}
			case 'r', 'd':
				for _, line := range ua[op.I1:op.I2] {
					writeLine(&out, "-", line)
				}
			}
			switch op.Tag {
			case 'r', 'i':
				for _, line := range ub[op.J1:op.J2] {
					writeLine(&out, "+", line)
				}
			}
		}
	}

	return out.String()
}

// formatRange renders one side of a hunk header the way unified diffs do:
// 1-based start, length omitted when it is 1, start decremented for empty
// ranges.
func formatRange(start, stop int) string {
	beginning := start + 1
	length := stop - start
	if length == 1 {
		return fmt.Sprintf("%d", beginning)
	}
	if length == 0 {
		beginning--
	}
	return fmt.Sprintf("%d,%d", beginning, length)
}

// writeLine emits one diff body line, marking missing trailing newlines.
func writeLine(out *strings.Builder, prefix, line string) {
	out.WriteString(prefix)
	out.WriteString(line)
	if !strings.HasSuffix(line, "\n") {
		out.WriteString("\n")
		out.WriteString(noNewlineMarker)
	}
}

// splitLinesKeepNL splits into lines keeping the newline characters, so that
// patch application can reassemble content byte-exactly.
func splitLinesKeepNL(s string) []string {
	if s == "" {
		return []string{}
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
