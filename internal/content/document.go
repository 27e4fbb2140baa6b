package content

import "strings"

// BlockKind discriminates the content blocks inside a Section.
type BlockKind string

const (
	BlockProse   BlockKind = "prose"
	BlockCode    BlockKind = "code"
	BlockCallout BlockKind = "callout"
)

type Block struct {
	Kind BlockKind `json:"kind"`
	Text string    `json:"text"`
	// Lang is set for code blocks ("rust", "ts", ...). Empty otherwise.
	Lang string `json:"lang,omitempty"`
	// Style is set for callouts ("note", "caution"). Empty otherwise.
	Style string `json:"style,omitempty"`
}

type Section struct {
	Name   string  `json:"name"`
	Anchor string  `json:"anchor"`
	Level  int     `json:"level"`
	Blocks []Block `json:"blocks"`
}

// RefState tracks the resolution outcome of a cross-document reference.
type RefState string

const (
	RefUnresolved RefState = "unresolved"
	RefResolved   RefState = "resolved"
	RefMissing    RefState = "missing"
)

// Ref is a weak, id-based reference to another document (optionally to a
// section anchor inside it). Refs never hold the target document directly;
// resolution goes through the graph lookup table.
type Ref struct {
	Target     string   `json:"target"`
	DocumentID string   `json:"document_id,omitempty"`
	Anchor     string   `json:"anchor,omitempty"`
	State      RefState `json:"state"`
}

// Document is a single lesson/challenge page's structured content.
// Immutable once loaded; content updates replace it wholesale.
type Document struct {
	ID       string         `json:"id"`
	Locale   string         `json:"locale"`
	Title    string         `json:"title"`
	Sections []Section      `json:"sections"`
	Related  []Ref          `json:"related"`
	Meta     map[string]any `json:"meta,omitempty"`
	Body     string         `json:"-"`
}

// Outline serializes the section structure (level, anchor, name per line).
// Parsing a document and re-parsing its serialized body must produce the
// same outline.
func (d *Document) Outline() string {
	var b strings.Builder
	for _, s := range d.Sections {
		b.WriteString(strings.Repeat("#", s.Level))
		b.WriteString(" ")
		b.WriteString(s.Anchor)
		b.WriteString(" ")
		b.WriteString(s.Name)
		b.WriteString("\n")
	}
	return b.String()
}

// Section returns the section with the given anchor, honoring first-wins
// semantics for duplicate anchors.
func (d *Document) Section(anchor string) (*Section, bool) {
	for i := range d.Sections {
		if d.Sections[i].Anchor == anchor {
			return &d.Sections[i], true
		}
	}
	return nil, false
}
