package shell

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnterminatedBlock is returned when a start marker has no matching end
// marker. Such files are left alone.
var ErrUnterminatedBlock = errors.New("start marker without end marker")

// Markers are the literal lines delimiting a generated block
type Markers struct {
	Start string
	End   string
}

// Block is a rendered, versioned fragment ready to be placed into a file.
// Text starts with the start marker line and ends with the end marker line,
// without a trailing line ending.
type Block struct {
	Markers    Markers
	Version    int
	Text       string
	LineEnding string
}

// Kind classifies the presence of a block in a file
type Kind int

const (
	Absent Kind = iota
	Current
	Stale
)

func (k Kind) String() string {
	switch k {
	case Absent:
		return "absent"
	case Current:
		return "current"
	case Stale:
		return "stale"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// State is the detected install state of a block in some content.
// Version is the version found inside the markers, 0 if none.
type State struct {
	Kind    Kind
	Version int
}

func (s State) String() string {
	if s.Kind == Stale {
		return fmt.Sprintf("stale (version %d)", s.Version)
	}
	return s.Kind.String()
}

// region locates a marked block. start is the offset of the first byte of
// the start marker line, end is the offset just past the end marker line's
// content (before its line terminator).
type region struct {
	start, end int
	version    int
}

func findRegion(content string, m Markers) (region, bool, error) {
	offset := 0
	inside := false
	var r region
	for offset <= len(content) {
		lineEnd := strings.IndexByte(content[offset:], '\n')
		next := offset + lineEnd + 1
		if lineEnd < 0 {
			lineEnd = len(content) - offset
			next = len(content) + 1
		}
		line := strings.TrimRight(content[offset:offset+lineEnd], "\r")

		if !inside {
			if strings.Contains(line, m.Start) {
				inside = true
				r.start = offset
			}
		} else if strings.Contains(line, m.End) {
			r.end = offset + len(line)
			return r, true, nil
		} else if r.version == 0 {
			r.version = parseVersion(line)
		}
		offset = next
	}
	if inside {
		return region{}, false, ErrUnterminatedBlock
	}
	return region{}, false, nil
}

// parseVersion extracts N from a "... Version: N" line, 0 otherwise
func parseVersion(line string) int {
	_, rest, ok := strings.Cut(line, "Version:")
	if !ok {
		return 0
	}
	v, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil || v < 0 {
		return 0
	}
	return v
}

// Detect reports whether b is absent, current or stale in content
func Detect(content string, b Block) (State, error) {
	r, found, err := findRegion(content, b.Markers)
	if err != nil {
		return State{}, err
	}
	if !found {
		return State{Kind: Absent}, nil
	}
	if r.version == b.Version {
		return State{Kind: Current, Version: r.version}, nil
	}
	return State{Kind: Stale, Version: r.version}, nil
}

// Apply installs or upgrades b in content. An absent block is appended
// after a blank line, a current block leaves content untouched, and a stale
// block is replaced in place. Bytes outside the markers are preserved.
func Apply(content string, b Block) (string, bool, error) {
	r, found, err := findRegion(content, b.Markers)
	if err != nil {
		return content, false, err
	}
	eol := b.lineEnding()

	if !found {
		if content == "" {
			return b.Text + eol, true, nil
		}
		var sb strings.Builder
		sb.WriteString(content)
		if !strings.HasSuffix(content, "\n") {
			sb.WriteString(eol)
		}
		sb.WriteString(eol)
		sb.WriteString(b.Text)
		sb.WriteString(eol)
		return sb.String(), true, nil
	}

	if r.version == b.Version {
		return content, false, nil
	}
	return content[:r.start] + b.Text + content[r.end:], true, nil
}

// Strip removes the marked block along with the blank line Apply put in
// front of it. Content without a block is returned unchanged.
func Strip(content string, m Markers) (string, bool, error) {
	r, found, err := findRegion(content, m)
	if err != nil {
		return content, false, err
	}
	if !found {
		return content, false, nil
	}

	before := content[:r.start]
	for _, sep := range []string{"\r\n\r\n", "\n\n"} {
		if strings.HasSuffix(before, sep) {
			before = before[:len(before)-len(sep)/2]
			break
		}
	}

	after := content[r.end:]
	if strings.HasPrefix(after, "\r\n") {
		after = after[2:]
	} else if strings.HasPrefix(after, "\n") {
		after = after[1:]
	}
	return before + after, true, nil
}

func (b Block) lineEnding() string {
	if b.LineEnding == "" {
		return "\n"
	}
	return b.LineEnding
}
