package content

import (
	"fmt"
	"sort"
)

// WarningKind classifies non-fatal problems found while building the graph.
type WarningKind string

const (
	WarnDuplicateAnchor   WarningKind = "duplicate_anchor"
	WarnDuplicateDocument WarningKind = "duplicate_document"
	WarnMissingDocument   WarningKind = "missing_document"
	WarnMissingAnchor     WarningKind = "missing_anchor"
	WarnUnknownLesson     WarningKind = "unknown_lesson"
)

// Warning is a recorded resolution problem. Warnings never abort the build;
// the offending edge is omitted or downgraded instead.
type Warning struct {
	Kind       WarningKind `json:"kind"`
	DocumentID string      `json:"document_id"`
	Detail     string      `json:"detail"`
}

type anchorTarget struct {
	documentID string
	anchor     string
}

// Graph is the resolved, navigable content graph for one locale. It is
// immutable after Build; reloads construct a fresh Graph.
type Graph struct {
	Locale    string
	documents map[string]*Document
	order     []string
	anchors   map[string]anchorTarget
	warnings  []Warning
}

// Build indexes the given documents and resolves every related-document
// reference in place. Cross-locale references never resolve: the graph only
// knows documents of its own locale.
func Build(locale string, docs []*Document) *Graph {
	g := &Graph{
		Locale:    locale,
		documents: make(map[string]*Document, len(docs)),
		anchors:   make(map[string]anchorTarget),
	}
	for _, doc := range docs {
		if _, dup := g.documents[doc.ID]; dup {
			g.warn(WarnDuplicateDocument, doc.ID, fmt.Sprintf("duplicate document id %q, first occurrence wins", doc.ID))
			continue
		}
		g.documents[doc.ID] = doc
		g.order = append(g.order, doc.ID)
	}
	sort.Strings(g.order)

	for _, id := range g.order {
		g.indexAnchors(g.documents[id])
	}
	for _, id := range g.order {
		g.resolveRefs(g.documents[id])
	}
	return g
}

func (g *Graph) indexAnchors(doc *Document) {
	seen := make(map[string]bool, len(doc.Sections))
	for _, sec := range doc.Sections {
		if sec.Anchor == "" {
			continue
		}
		if seen[sec.Anchor] {
			// First occurrence wins.
			g.warn(WarnDuplicateAnchor, doc.ID, fmt.Sprintf("duplicate anchor %q", sec.Anchor))
			continue
		}
		seen[sec.Anchor] = true
		g.anchors[doc.ID+"#"+sec.Anchor] = anchorTarget{documentID: doc.ID, anchor: sec.Anchor}
	}
}

func (g *Graph) resolveRefs(doc *Document) {
	for i := range doc.Related {
		ref := &doc.Related[i]
		docID, anchor := SplitTarget(ref.Target)
		if _, ok := g.documents[docID]; !ok {
			ref.State = RefMissing
			ref.DocumentID = ""
			ref.Anchor = ""
			g.warn(WarnMissingDocument, doc.ID, fmt.Sprintf("related document %q does not exist", docID))
			continue
		}
		if anchor != "" {
			if _, ok := g.anchors[docID+"#"+anchor]; !ok {
				ref.State = RefMissing
				ref.DocumentID = ""
				ref.Anchor = ""
				g.warn(WarnMissingAnchor, doc.ID, fmt.Sprintf("anchor %q not found in document %q", anchor, docID))
				continue
			}
		}
		ref.State = RefResolved
		ref.DocumentID = docID
		ref.Anchor = anchor
	}
}

func (g *Graph) warn(kind WarningKind, docID, detail string) {
	g.warnings = append(g.warnings, Warning{Kind: kind, DocumentID: docID, Detail: detail})
}

// Document looks a document up by id.
func (g *Graph) Document(id string) (*Document, bool) {
	doc, ok := g.documents[id]
	return doc, ok
}

// Documents returns all document ids in stable (sorted) order.
func (g *Graph) Documents() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// ResolveAnchor maps "docID#anchor" (or a bare "docID") to its target.
func (g *Graph) ResolveAnchor(target string) (string, string, bool) {
	docID, anchor := SplitTarget(target)
	if anchor == "" {
		_, ok := g.documents[docID]
		return docID, "", ok
	}
	t, ok := g.anchors[docID+"#"+anchor]
	if !ok {
		return "", "", false
	}
	return t.documentID, t.anchor, true
}

// Warnings returns the problems recorded during the build.
func (g *Graph) Warnings() []Warning {
	out := make([]Warning, len(g.warnings))
	copy(out, g.warnings)
	return out
}

// SplitTarget splits a reference target into document id and optional anchor.
func SplitTarget(target string) (string, string) {
	for i := 0; i < len(target); i++ {
		if target[i] == '#' {
			return target[:i], target[i+1:]
		}
	}
	return target, ""
}
