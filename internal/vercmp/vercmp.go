// Package vercmp implements a segmented alphanumeric version comparator,
// the same algorithm rpm's rpmvercmp uses to order version and
// release strings, including the tilde pre-release and caret
// post-release markers.
package vercmp

import "strings"

type segKind int

const (
	segEnd segKind = iota
	segTilde
	segCaret
	segNumeric
	segAlpha
)

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
func isAlnum(b byte) bool { return isDigit(b) || isAlpha(b) }

// nextSeg scans forward from i, skipping separator bytes (anything that is
// not alphanumeric and not ~ or ^), and returns the next segment.
func nextSeg(s string, i int) (kind segKind, text string, next int) {
	for i < len(s) && !isAlnum(s[i]) && s[i] != '~' && s[i] != '^' {
		i++
	}
	if i >= len(s) {
		return segEnd, "", i
	}
	switch {
	case s[i] == '~':
		return segTilde, "~", i + 1
	case s[i] == '^':
		return segCaret, "^", i + 1
	case isDigit(s[i]):
		start := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		return segNumeric, s[start:i], i
	default:
		start := i
		for i < len(s) && isAlpha(s[i]) {
			i++
		}
		return segAlpha, s[start:i], i
	}
}

// Compare orders two version (or release) strings segment by segment.
// Segments are maximal runs of digits or letters; non-alphanumeric bytes
// separate segments without otherwise affecting the comparison. A tilde
// sorts strictly below anything, including the end of the string. A caret
// compares equal to an empty segment but sorts above a missing segment
// (the end of the other string). Numeric segments compare by integer value
// (ignoring leading zeros); alphabetic segments compare lexicographically;
// a numeric segment always outranks an alphabetic one at the same
// position. Once the common prefix is exhausted, the longer remainder
// wins. The result is negative, zero, or positive, matching the usual
// three-way comparator convention.
func Compare(a, b string) int {
	ia, ib := 0, 0
	for {
		ka, ta, nia := nextSeg(a, ia)
		kb, tb, nib := nextSeg(b, ib)

		if ka == segEnd && kb == segEnd {
			return 0
		}

		if ka == segTilde || kb == segTilde {
			switch {
			case ka == segTilde && kb == segTilde:
				ia, ib = nia, nib
				continue
			case ka == segTilde:
				return -1
			default:
				return 1
			}
		}

		if ka == segCaret || kb == segCaret {
			switch {
			case ka == segCaret && kb == segCaret:
				ia, ib = nia, nib
				continue
			case ka == segCaret:
				if kb == segEnd {
					return 1
				}
				// Caret stands in for an empty segment, and empty loses to
				// any real segment on the other side.
				return -1
			default: // kb == segCaret
				if ka == segEnd {
					return -1
				}
				return 1
			}
		}

		if ka == segEnd || kb == segEnd {
			if ka == segEnd {
				return -1
			}
			return 1
		}

		if ka != kb {
			if ka == segNumeric {
				return 1
			}
			return -1
		}

		if ka == segNumeric {
			na := strings.TrimLeft(ta, "0")
			nb := strings.TrimLeft(tb, "0")
			switch {
			case len(na) != len(nb):
				if len(na) > len(nb) {
					return 1
				}
				return -1
			case na != nb:
				if na > nb {
					return 1
				}
				return -1
			}
		} else if ta != tb {
			if ta > tb {
				return 1
			}
			return -1
		}

		ia, ib = nia, nib
	}
}
