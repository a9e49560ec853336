// Package srt parses and formats the SubRip text emitted by the caption decoder.
//
// Parsing is lenient by default: a block missing its index, timing line or text
// is skipped and the remaining blocks still parse. Strict mode fails the whole
// parse on the first malformed block. Empty input yields no entries.
package srt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"captionsearch/types"
)

// ErrMalformedBlock marks a block that is missing a required field.
var ErrMalformedBlock = errors.New("srt: malformed block")

const timingArrow = "-->"

// Parser converts decoder output into caption entries.
type Parser struct {
	// Strict fails the parse on the first malformed block.
	Strict bool
	// OnSkip, if set, is called for every block dropped in lenient mode.
	OnSkip func(block int, err error)
}

// Parse runs a lenient parse.
func Parse(raw string) ([]types.CaptionEntry, error) {
	return Parser{}.Parse(raw)
}

// Parse splits raw into blank-line separated blocks and converts each one.
func (p Parser) Parse(raw string) ([]types.CaptionEntry, error) {
	blocks := splitBlocks(raw)
	entries := make([]types.CaptionEntry, 0, len(blocks))
	for i, block := range blocks {
		entry, err := parseBlock(block)
		if err != nil {
			err = fmt.Errorf("%w %d: %v", ErrMalformedBlock, i+1, err)
			if p.Strict {
				return nil, err
			}
			if p.OnSkip != nil {
				p.OnSkip(i+1, err)
			}
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func splitBlocks(raw string) [][]string {
	raw = strings.TrimPrefix(raw, "\ufeff")
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var blocks [][]string
	var current []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			if len(current) > 0 {
				blocks = append(blocks, current)
				current = nil
			}
			continue
		}
		current = append(current, strings.TrimRight(line, " \t"))
	}
	if len(current) > 0 {
		blocks = append(blocks, current)
	}
	return blocks
}

func parseBlock(lines []string) (types.CaptionEntry, error) {
	var entry types.CaptionEntry
	if len(lines) < 3 {
		return entry, fmt.Errorf("expected index, timing and text lines, got %d line(s)", len(lines))
	}

	index, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return entry, fmt.Errorf("invalid index %q", lines[0])
	}

	start, end, position, err := parseTiming(lines[1])
	if err != nil {
		return entry, err
	}

	entry.Index = index
	entry.StartMS = start
	entry.EndMS = end
	entry.Position = position
	entry.Text = strings.Join(lines[2:], "\n")
	return entry, nil
}

// parseTiming handles "start --> end [position]".
func parseTiming(line string) (start, end int64, position string, err error) {
	left, right, ok := strings.Cut(line, timingArrow)
	if !ok {
		return 0, 0, "", fmt.Errorf("missing %q in timing line %q", timingArrow, line)
	}
	start, err = ParseTimestamp(left)
	if err != nil {
		return 0, 0, "", err
	}

	right = strings.TrimSpace(right)
	endText, rest, _ := strings.Cut(right, " ")
	end, err = ParseTimestamp(endText)
	if err != nil {
		return 0, 0, "", err
	}
	if end < start {
		return 0, 0, "", fmt.Errorf("end %s precedes start %s", types.FormatTimestamp(end), types.FormatTimestamp(start))
	}
	return start, end, strings.TrimSpace(rest), nil
}

// ParseTimestamp converts "HH:MM:SS,mmm" (or with a '.' separator) to milliseconds.
func ParseTimestamp(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	value = strings.ReplaceAll(value, ".", ",")
	clock, frac, ok := strings.Cut(value, ",")
	if !ok || frac == "" || len(frac) > 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hms := strings.Split(clock, ":")
	if len(hms) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	hours, errH := strconv.Atoi(hms[0])
	minutes, errM := strconv.Atoi(hms[1])
	seconds, errS := strconv.Atoi(hms[2])
	millis, errMS := strconv.Atoi(frac)
	if errH != nil || errM != nil || errS != nil || errMS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	if hours < 0 || minutes < 0 || minutes > 59 || seconds < 0 || seconds > 59 || millis < 0 {
		return 0, fmt.Errorf("timestamp out of range %q", value)
	}
	// ",5" is half a second, not five milliseconds
	for i := len(frac); i < 3; i++ {
		millis *= 10
	}
	return int64(hours)*3_600_000 + int64(minutes)*60_000 + int64(seconds)*1000 + int64(millis), nil
}
