package relay

import (
	"fmt"
	"regexp"
)

// Backlink labels. A "From" link in a derived transaction's notes points at
// the source group it was derived from; a "Proportion" link in a source
// split's notes points at a derived transaction created from that split.
const (
	LabelFrom       = "From"
	LabelProportion = "Proportion"
)

// backlinkPattern matches one backlink line inside a notes field:
// "<label> tx: <base>/transactions/show/<id>".
var backlinkPattern = regexp.MustCompile(`(\w+)\stx:\shttps?://\S*/show/(\d+)`)

// Backlink is one decoded cross-reference line from a notes field.
type Backlink struct {
	Label string
	ID    string
}

// SourceBacklink renders the note placed on a derived transaction, pointing
// back at the source group.
func SourceBacklink(baseURL, groupID string) string {
	return fmt.Sprintf("%s tx: %s/transactions/show/%s", LabelFrom, baseURL, groupID)
}

// AppendBacklink appends a "Proportion tx" line referencing derivedID to a
// source split's notes. Empty notes become just the link line, with no
// leading newline.
func AppendBacklink(notes, baseURL, derivedID string) string {
	line := fmt.Sprintf("%s tx: %s/transactions/show/%s", LabelProportion, baseURL, derivedID)
	if notes == "" {
		return line
	}
	return notes + "\n" + line
}

// ParseBacklinks decodes every backlink line found in a notes field, in
// order of appearance.
func ParseBacklinks(notes string) []Backlink {
	var links []Backlink
	for _, m := range backlinkPattern.FindAllStringSubmatch(notes, -1) {
		links = append(links, Backlink{Label: m[1], ID: m[2]})
	}
	return links
}

// FindBacklink returns the first backlink in notes whose id equals targetID.
func FindBacklink(notes, targetID string) (Backlink, bool) {
	for _, l := range ParseBacklinks(notes) {
		if l.ID == targetID {
			return l, true
		}
	}
	return Backlink{}, false
}

// DerivedRef returns the id of the first derived transaction referenced by a
// source split's notes. Notes written by older relay versions used varying
// labels, so any backlink that is not a "From" link counts.
func DerivedRef(notes string) (string, bool) {
	for _, l := range ParseBacklinks(notes) {
		if l.Label != LabelFrom {
			return l.ID, true
		}
	}
	return "", false
}
