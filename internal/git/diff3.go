package git

import (
	"bytes"
	"slices"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

const binarySniffLen = 8000

type mergeSide int

const (
	sideOurs mergeSide = iota
	sideTheirs
)

// hunk replaces base lines [start, end) with lines
type hunk struct {
	start, end int
	lines      []string
	side       mergeSide
}

// mergeText performs a line-based three-way merge. Changes from both sides
// that overlap or touch the same base region conflict unless they are
// identical. ok is false on conflict.
func mergeText(base, ours, theirs []byte) (merged []byte, ok bool) {
	b := splitLines(base)
	o := splitLines(ours)
	t := splitLines(theirs)

	all := append(diffHunks(b, o, sideOurs), diffHunks(b, t, sideTheirs)...)
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].start != all[j].start {
			return all[i].start < all[j].start
		}
		return all[i].end < all[j].end
	})

	var out []string
	pos := 0
	for i := 0; i < len(all); {
		groupStart, groupEnd := all[i].start, all[i].end
		j := i + 1
		for j < len(all) && all[j].start <= groupEnd {
			groupEnd = max(groupEnd, all[j].end)
			j++
		}
		group := all[i:j]

		out = append(out, b[pos:groupStart]...)
		oursRegion, hasOurs := applyHunks(b, groupStart, groupEnd, group, sideOurs)
		theirsRegion, hasTheirs := applyHunks(b, groupStart, groupEnd, group, sideTheirs)
		switch {
		case hasOurs && hasTheirs:
			if !slices.Equal(oursRegion, theirsRegion) {
				return nil, false
			}
			out = append(out, oursRegion...)
		case hasOurs:
			out = append(out, oursRegion...)
		default:
			out = append(out, theirsRegion...)
		}

		pos = groupEnd
		i = j
	}
	out = append(out, b[pos:]...)

	return []byte(strings.Join(out, "")), true
}

func diffHunks(base, other []string, side mergeSide) []hunk {
	matcher := difflib.NewMatcherWithJunk(base, other, false, nil)
	var hunks []hunk
	for _, op := range matcher.GetOpCodes() {
		if op.Tag == 'e' {
			continue
		}
		hunks = append(hunks, hunk{
			start: op.I1,
			end:   op.I2,
			lines: other[op.J1:op.J2],
			side:  side,
		})
	}
	return hunks
}

// applyHunks returns base[start:end] with the given side's hunks applied
func applyHunks(base []string, start, end int, group []hunk, side mergeSide) ([]string, bool) {
	var region []string
	cur := start
	found := false
	for _, h := range group {
		if h.side != side {
			continue
		}
		found = true
		region = append(region, base[cur:h.start]...)
		region = append(region, h.lines...)
		cur = h.end
	}
	region = append(region, base[cur:end]...)
	return region, found
}

func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	lines := strings.SplitAfter(string(data), "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func isBinary(data []byte) bool {
	if len(data) > binarySniffLen {
		data = data[:binarySniffLen]
	}
	return bytes.IndexByte(data, 0) >= 0
}
