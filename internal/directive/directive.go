// Package directive parses the %-prefixed annotations that docsmith
// recognizes inside doc comments.
package directive

import (
	"regexp"
	"strconv"
	"strings"
)

// OrderUnset is the Order value of a Record whose doc comment carried no
// %order directive. Unranked symbols sort after ranked ones.
const OrderUnset = -1

// Record holds the directives extracted from a single doc comment.
type Record struct {
	Family  string
	Order   int
	SeeAlso []string
	NoDoc   bool
}

// IsZero reports whether no directive was found.
func (r Record) IsZero() bool {
	return r.Family == "" && r.Order == OrderUnset && len(r.SeeAlso) == 0 && !r.NoDoc
}

var (
	familyRe  = regexp.MustCompile(`(?m)^[ \t]*%family[ \t]+(.+?)[ \t]*$`)
	orderRe   = regexp.MustCompile(`(?m)^[ \t]*%order[ \t]+(\d+)[ \t]*$`)
	seealsoRe = regexp.MustCompile(`(?m)^[ \t]*%seealso[ \t]+(.+?)[ \t]*$`)
	nodocRe   = regexp.MustCompile(`(?mi)^[ \t]*%nodoc(?:[ \t]+(?:true|yes|1))?[ \t]*$`)

	// directiveLineRe matches any whole directive line, valid or not, for
	// stripping. A malformed %order still disappears from rendered output.
	directiveLineRe = regexp.MustCompile(`(?mi)^[ \t]*%(?:family|order|seealso|nodoc)(?:[ \t]+.*)?$\n?`)
	blankRunRe      = regexp.MustCompile(`\n{3,}`)
)

// Extract pulls directives out of a doc comment. Lines that do not match a
// directive grammar are prose and contribute nothing; Extract never fails.
// When a directive appears more than once the first occurrence wins.
func Extract(text string) Record {
	rec := Record{Order: OrderUnset}
	if text == "" {
		return rec
	}
	if m := familyRe.FindStringSubmatch(text); m != nil {
		rec.Family = strings.TrimSpace(m[1])
	}
	if m := orderRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			rec.Order = n
		}
	}
	if m := seealsoRe.FindStringSubmatch(text); m != nil {
		for _, ref := range strings.Split(m[1], ",") {
			if ref = strings.TrimSpace(ref); ref != "" {
				rec.SeeAlso = append(rec.SeeAlso, ref)
			}
		}
	}
	if nodocRe.MatchString(text) {
		rec.NoDoc = true
	}
	return rec
}

// Strip removes every directive line from a doc comment and tidies the
// remainder: runs of three or more newlines collapse to two, and the result
// is trimmed. Prose is otherwise untouched.
func Strip(text string) string {
	if text == "" {
		return ""
	}
	cleaned := directiveLineRe.ReplaceAllString(text, "")
	cleaned = blankRunRe.ReplaceAllString(cleaned, "\n\n")
	return strings.TrimSpace(cleaned)
}

// HasDirectives reports whether text contains at least one directive line.
func HasDirectives(text string) bool {
	return text != "" && directiveLineRe.MatchString(text)
}
