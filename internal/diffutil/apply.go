package diffutil

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Hunk is one @@ block of a unified patch.
type Hunk struct {
	OldStart, OldLines int
	NewStart, NewLines int

	// Lines carry their diff prefix (' ', '-', '+') followed by the line
	// content including its newline, except for a final line that had none.
	Lines []string
}

// FilePatch is a parsed unified patch for a single file.
type FilePatch struct {
	OldName string
	NewName string
	Hunks   []Hunk
}

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Parse parses unified patch text into a FilePatch. Header lines before the
// first hunk other than ---/+++ are ignored, which allows parsing patch files
// that carry a configured header comment. Stripped patches (hunk headers
// without positions) are rejected.
func Parse(text string) (*FilePatch, error) {
	patch := &FilePatch{}
	var current *Hunk

	raw := strings.SplitAfter(text, "\n")
	for _, line := range raw {
		if line == "" {
			continue
		}
		switch {
		case strings.HasPrefix(line, "--- ") && current == nil:
			patch.OldName = parseFileName(line[4:])
		case strings.HasPrefix(line, "+++ ") && current == nil:
			patch.NewName = parseFileName(line[4:])
		case strings.HasPrefix(line, "@@"):
			m := hunkHeaderRe.FindStringSubmatch(line)
			if m == nil {
				return nil, fmt.Errorf("unsupported hunk header %q (patches without positions cannot be applied)", strings.TrimRight(line, "\n"))
			}
			h := Hunk{
				OldStart: atoiDefault(m[1], 0),
				OldLines: atoiDefault(m[2], 1),
				NewStart: atoiDefault(m[3], 0),
				NewLines: atoiDefault(m[4], 1),
			}
			patch.Hunks = append(patch.Hunks, h)
			current = &patch.Hunks[len(patch.Hunks)-1]
		case strings.HasPrefix(line, "\\"):
			// "\ No newline at end of file": the previous body line has no
			// trailing newline.
			if current == nil || len(current.Lines) == 0 {
				return nil, fmt.Errorf("misplaced no-newline marker")
			}
			last := &current.Lines[len(current.Lines)-1]
			*last = strings.TrimSuffix(*last, "\n")
		case current != nil && (line[0] == ' ' || line[0] == '-' || line[0] == '+'):
			current.Lines = append(current.Lines, line)
		case current != nil:
			return nil, fmt.Errorf("unexpected line in patch body %q", strings.TrimRight(line, "\n"))
		default:
			// Pre-hunk header text (e.g. a configured patch file header).
		}
	}

	if len(patch.Hunks) == 0 {
		return nil, fmt.Errorf("patch contains no hunks")
	}
	patch.OldName, patch.NewName = stripGitPrefixes(patch.OldName, patch.NewName)
	return patch, nil
}

// stripGitPrefixes drops git's a/ and b/ header prefixes, but only when both
// sides carry them consistently. A file that genuinely lives under a
// top-level a/ or b/ directory keeps its name.
func stripGitPrefixes(oldName, newName string) (string, string) {
	oldGit := strings.HasPrefix(oldName, "a/") || oldName == "/dev/null"
	newGit := strings.HasPrefix(newName, "b/") || newName == "/dev/null"
	if !oldGit || !newGit || (oldName == "/dev/null" && newName == "/dev/null") {
		return oldName, newName
	}
	return strings.TrimPrefix(oldName, "a/"), strings.TrimPrefix(newName, "b/")
}

// Apply applies the patch to content. With reverse set, the patch is applied
// backwards, turning post-image content into its pre-image. The patched
// content is returned; the hunks must match exactly or an error is returned.
func (p *FilePatch) Apply(content []byte, reverse bool) ([]byte, error) {
	lines := splitLinesKeepNL(string(content))
	var out strings.Builder

	pos := 0
	for i, h := range p.Hunks {
		start, count := h.OldStart, h.OldLines
		delPrefix, addPrefix := byte('-'), byte('+')
		if reverse {
			start, count = h.NewStart, h.NewLines
			delPrefix, addPrefix = '+', '-'
		}

		idx := start - 1
		if count == 0 {
			// Empty source ranges record the line after which to insert.
			idx = start
		}
		if idx < pos || idx > len(lines) {
			return nil, fmt.Errorf("hunk %d out of range at line %d", i+1, start)
		}

		for ; pos < idx; pos++ {
			out.WriteString(lines[pos])
		}

		for _, l := range h.Lines {
			prefix, body := l[0], l[1:]
			switch prefix {
			case ' ':
				if pos >= len(lines) || lines[pos] != body {
					return nil, mismatch(i, pos, lines)
				}
				out.WriteString(body)
				pos++
			case delPrefix:
				if pos >= len(lines) || lines[pos] != body {
					return nil, mismatch(i, pos, lines)
				}
				pos++
			case addPrefix:
				out.WriteString(body)
			}
		}
	}

	for ; pos < len(lines); pos++ {
		out.WriteString(lines[pos])
	}
	return []byte(out.String()), nil
}

func mismatch(hunk, pos int, lines []string) error {
	got := "<end of file>"
	if pos < len(lines) {
		got = strings.TrimRight(lines[pos], "\n")
	}
	return fmt.Errorf("hunk %d failed to apply at line %d: content was %q", hunk+1, pos+1, got)
}

// parseFileName extracts the file name from a ---/+++ header line, dropping
// a trailing tab-separated timestamp.
func parseFileName(s string) string {
	s = strings.TrimRight(s, "\n")
	if i := strings.IndexByte(s, '\t'); i >= 0 {
		s = s[:i]
	}
	return s
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
