// Package filterexpr parses and evaluates the search-and-filter
// expressions the UI collaborator passes down to narrow a package list:
// a repeated status-bit prefix followed by an extended POSIX regex
// matched against a package's canonical name.
package filterexpr

import (
	"fmt"
	"regexp"
	"strings"

	"pkgreaper/pkgdb"
)

// Expr is a parsed, ready-to-evaluate filter expression.
type Expr struct {
	required  pkgdb.Status
	forbidden pkgdb.Status
	negateRe  bool
	re        *regexp.Regexp
}

func bitForLetter(c byte) (pkgdb.Status, bool) {
	switch c {
	case 'L':
		return pkgdb.Leaf, true
	case 'l':
		return pkgdb.Partleaf, true
	case 'D':
		return pkgdb.Deleted, true
	case 'd':
		return pkgdb.Delete, true
	case 'B':
		return pkgdb.Broken, true
	case 'b':
		return pkgdb.Tobebroken, true
	case 'o':
		return pkgdb.Inloop, true
	default:
		return 0, false
	}
}

func isStatusLetter(c byte) bool {
	_, ok := bitForLetter(c)
	return ok
}

// Parse reads zero or more whitespace-terminated "[!]~[LlDdBbo]+" tokens
// setting required/forbidden status bits, then an optional leading "!"
// negating the remainder, which is compiled as a POSIX extended regex.
func Parse(expr string) (*Expr, error) {
	e := &Expr{}
	s := expr

	for {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			break
		}
		i := 0
		negate := false
		if s[i] == '!' {
			negate = true
			i++
		}
		if i >= len(s) || s[i] != '~' {
			break
		}
		i++
		start := i
		for i < len(s) && isStatusLetter(s[i]) {
			i++
		}
		if i == start {
			return nil, fmt.Errorf("filterexpr: %q: expected a status letter after '~'", s)
		}
		if i < len(s) && s[i] != ' ' && s[i] != '\t' {
			return nil, fmt.Errorf("filterexpr: %q: status prefix must be whitespace-terminated", s)
		}

		var mask pkgdb.Status
		for _, c := range []byte(s[start:i]) {
			bit, _ := bitForLetter(c)
			mask |= bit
		}
		if negate {
			e.forbidden |= mask
		} else {
			e.required |= mask
		}
		s = s[i:]
	}

	if strings.HasPrefix(s, "!") {
		e.negateRe = true
		s = s[1:]
	}

	re, err := regexp.CompilePOSIX(s)
	if err != nil {
		return nil, fmt.Errorf("filterexpr: %w", err)
	}
	e.re = re
	return e, nil
}

// Match reports whether status carries every required bit, none of the
// forbidden bits, and canonicalName matches (or, if negated, fails to
// match) the expression's regex.
func (e *Expr) Match(status pkgdb.Status, canonicalName string) bool {
	if status&e.required != e.required {
		return false
	}
	if status&e.forbidden != 0 {
		return false
	}
	matched := e.re.MatchString(canonicalName)
	if e.negateRe {
		matched = !matched
	}
	return matched
}
