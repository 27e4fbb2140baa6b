package content

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// RelatedDocSep splits one physical source file into multiple logical
// documents. Parts separated by it are mutually related but otherwise
// independent (separate anchor namespaces).
const RelatedDocSep = "<!-- related -->"

// ParseError reports a malformed document source. It aborts loading of the
// single document it occurred in, never the whole content graph build.
type ParseError struct {
	ID   string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s:%d: %s", e.ID, e.Line, e.Msg)
}

type frontMatter struct {
	Title   string         `yaml:"title"`
	Slug    string         `yaml:"slug"`
	Related []string       `yaml:"related"`
	Rest    map[string]any `yaml:",inline"`
}

// Parse turns a raw document source into one or more Documents. It is a pure
// function over the input bytes: no side effects beyond the returned values.
//
// fileID is the locale-relative identifier of the physical file (path without
// extension); a part's frontmatter slug overrides it. When a part fails to
// parse, the parts that parsed cleanly are still returned together with the
// first *ParseError encountered.
func Parse(fileID, locale string, src []byte) ([]*Document, error) {
	parts := splitParts(string(src))

	docs := make([]*Document, 0, len(parts))
	var firstErr error
	lineOffset := 0
	for i, part := range parts {
		doc, err := parsePart(partID(fileID, i), locale, part, lineOffset)
		lineOffset += strings.Count(part, "\n") + 2
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		docs = append(docs, doc)
	}

	// Parts of one physical file reference each other as related documents.
	if len(docs) > 1 {
		for _, doc := range docs {
			for _, sibling := range docs {
				if sibling.ID == doc.ID {
					continue
				}
				doc.Related = append(doc.Related, Ref{Target: sibling.ID, State: RefUnresolved})
			}
		}
	}
	return docs, firstErr
}

func splitParts(src string) []string {
	var parts []string
	var cur []string
	for _, line := range strings.Split(src, "\n") {
		if strings.TrimSpace(line) == RelatedDocSep {
			parts = append(parts, strings.Join(cur, "\n"))
			cur = cur[:0]
			continue
		}
		cur = append(cur, line)
	}
	parts = append(parts, strings.Join(cur, "\n"))
	return parts
}

func partID(fileID string, idx int) string {
	if idx == 0 {
		return fileID
	}
	return fmt.Sprintf("%s-%d", fileID, idx+1)
}

func parsePart(id, locale, src string, lineOffset int) (*Document, error) {
	fm, body, bodyStart, err := splitFrontMatter(id, src, lineOffset)
	if err != nil {
		return nil, err
	}
	if fm.Slug != "" {
		id = fm.Slug
	}

	doc := &Document{
		ID:     id,
		Locale: locale,
		Title:  fm.Title,
		Body:   body,
	}
	if len(fm.Rest) > 0 {
		doc.Meta = fm.Rest
	}
	for _, target := range fm.Related {
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		doc.Related = append(doc.Related, Ref{Target: target, State: RefUnresolved})
	}

	if err := parseSections(doc, body, lineOffset+bodyStart); err != nil {
		return nil, err
	}
	return doc, nil
}

func splitFrontMatter(id, src string, lineOffset int) (frontMatter, string, int, error) {
	var fm frontMatter
	lines := strings.Split(src, "\n")
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	if start >= len(lines) || strings.TrimSpace(lines[start]) != "---" {
		return fm, src, 0, nil
	}
	for i := start + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			raw := strings.Join(lines[start+1:i], "\n")
			if err := yaml.Unmarshal([]byte(raw), &fm); err != nil {
				return fm, "", 0, &ParseError{ID: id, Line: lineOffset + start + 1, Msg: fmt.Sprintf("invalid frontmatter: %v", err)}
			}
			return fm, strings.Join(lines[i+1:], "\n"), i + 1, nil
		}
	}
	return fm, "", 0, &ParseError{ID: id, Line: lineOffset + start + 1, Msg: "unterminated frontmatter"}
}

func parseSections(doc *Document, body string, lineOffset int) error {
	lines := strings.Split(body, "\n")

	cur := Section{Level: 0, Anchor: ""}
	var prose []string
	prevLevel := 0

	flushProse := func() {
		text := strings.TrimSpace(strings.Join(prose, "\n"))
		prose = prose[:0]
		if text == "" {
			return
		}
		cur.Blocks = append(cur.Blocks, Block{Kind: BlockProse, Text: text})
	}
	flushSection := func() {
		flushProse()
		if cur.Level == 0 && cur.Name == "" && len(cur.Blocks) == 0 {
			return
		}
		doc.Sections = append(doc.Sections, cur)
	}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if level, name, ok := parseHeading(trimmed); ok {
			if prevLevel > 0 && level > prevLevel+1 {
				return &ParseError{
					ID:   doc.ID,
					Line: lineOffset + i + 1,
					Msg:  fmt.Sprintf("malformed heading nesting: level %d under level %d", level, prevLevel),
				}
			}
			flushSection()
			cur = Section{Name: name, Anchor: Slugify(name), Level: level}
			prevLevel = level
			continue
		}

		if lang, ok := parseFenceOpen(trimmed); ok {
			flushProse()
			var code []string
			closed := false
			for i++; i < len(lines); i++ {
				if strings.HasPrefix(strings.TrimSpace(lines[i]), "```") {
					closed = true
					break
				}
				code = append(code, lines[i])
			}
			if !closed {
				return &ParseError{ID: doc.ID, Line: lineOffset + i, Msg: "unterminated code block"}
			}
			cur.Blocks = append(cur.Blocks, Block{Kind: BlockCode, Text: strings.Join(code, "\n"), Lang: lang})
			continue
		}

		if style, ok := parseCalloutOpen(trimmed); ok {
			flushProse()
			var text []string
			for i++; i < len(lines); i++ {
				if strings.TrimSpace(lines[i]) == ":::" {
					break
				}
				text = append(text, lines[i])
			}
			cur.Blocks = append(cur.Blocks, Block{
				Kind:  BlockCallout,
				Text:  strings.TrimSpace(strings.Join(text, "\n")),
				Style: style,
			})
			continue
		}

		prose = append(prose, line)
	}
	flushSection()
	return nil
}

func parseHeading(line string) (int, string, bool) {
	if !strings.HasPrefix(line, "#") {
		return 0, "", false
	}
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level > 6 || level >= len(line) || line[level] != ' ' {
		return 0, "", false
	}
	name := strings.TrimSpace(line[level+1:])
	if name == "" {
		return 0, "", false
	}
	return level, name, true
}

func parseFenceOpen(line string) (string, bool) {
	if !strings.HasPrefix(line, "```") {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(line, "```")), true
}

func parseCalloutOpen(line string) (string, bool) {
	if !strings.HasPrefix(line, ":::") || line == ":::" {
		return "", false
	}
	style := strings.TrimSpace(strings.TrimPrefix(line, ":::"))
	if style == "" {
		return "", false
	}
	return style, true
}

// Slugify produces a stable anchor id from a heading name, matching the
// convention the front end uses for heading anchors.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case r == ' ' || r == '-' || r == '_':
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
