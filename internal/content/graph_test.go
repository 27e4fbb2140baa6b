package content

import "testing"

func mustParse(t *testing.T, fileID, src string) []*Document {
	t.Helper()
	docs, err := Parse(fileID, "en", []byte(src))
	if err != nil {
		t.Fatalf("Parse(%s): %v", fileID, err)
	}
	return docs
}

func TestBuild_ResolvesRefs(t *testing.T) {
	var docs []*Document
	docs = append(docs, mustParse(t, "accounts", `---
title: Accounts
related:
  - transactions#fees
  - transactions
---
# Rent

a
`)...)
	docs = append(docs, mustParse(t, "transactions", `---
title: Transactions
---
# Fees

b
`)...)

	g := Build("en", docs)
	if len(g.Warnings()) != 0 {
		t.Fatalf("unexpected warnings: %+v", g.Warnings())
	}

	doc, ok := g.Document("accounts")
	if !ok {
		t.Fatal("accounts missing from graph")
	}
	if len(doc.Related) != 2 {
		t.Fatalf("related = %+v", doc.Related)
	}
	for i, ref := range doc.Related {
		if ref.State != RefResolved {
			t.Errorf("ref %d state = %q", i, ref.State)
		}
		if ref.DocumentID != "transactions" {
			t.Errorf("ref %d document = %q", i, ref.DocumentID)
		}
	}
	if doc.Related[0].Anchor != "fees" {
		t.Errorf("anchored ref anchor = %q", doc.Related[0].Anchor)
	}
	if doc.Related[1].Anchor != "" {
		t.Errorf("bare ref anchor = %q", doc.Related[1].Anchor)
	}
}

func TestBuild_MissingTargets(t *testing.T) {
	cases := []struct {
		name     string
		target   string
		wantKind WarningKind
	}{
		{name: "missing_document", target: "no-such-doc", wantKind: WarnMissingDocument},
		{name: "missing_anchor", target: "other#no-such-anchor", wantKind: WarnMissingAnchor},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			docs := mustParse(t, "src", `---
title: Source
related:
  - `+tc.target+`
---
# A

a
`)
			docs = append(docs, mustParse(t, "other", "# B\n\nb\n")...)

			g := Build("en", docs)
			doc, _ := g.Document("src")
			ref := doc.Related[0]
			if ref.State != RefMissing {
				t.Fatalf("state = %q, want missing", ref.State)
			}
			if ref.DocumentID != "" || ref.Anchor != "" {
				t.Errorf("missing ref must carry no target, got %+v", ref)
			}

			warns := g.Warnings()
			if len(warns) != 1 || warns[0].Kind != tc.wantKind {
				t.Fatalf("warnings = %+v, want one %q", warns, tc.wantKind)
			}
			if warns[0].DocumentID != "src" {
				t.Errorf("warning should name the referencing document, got %q", warns[0].DocumentID)
			}
		})
	}
}

func TestBuild_DuplicateAnchorFirstWins(t *testing.T) {
	docs := mustParse(t, "dup", `# Setup

first

## Setup

second
`)
	docs = append(docs, mustParse(t, "pointer", `---
related:
  - dup#setup
---
# P

p
`)...)

	g := Build("en", docs)

	warns := g.Warnings()
	if len(warns) != 1 || warns[0].Kind != WarnDuplicateAnchor {
		t.Fatalf("warnings = %+v", warns)
	}

	// The anchor still resolves, to the first occurrence.
	docID, anchor, ok := g.ResolveAnchor("dup#setup")
	if !ok || docID != "dup" || anchor != "setup" {
		t.Fatalf("ResolveAnchor = %q %q %v", docID, anchor, ok)
	}
	ptr, _ := g.Document("pointer")
	if ptr.Related[0].State != RefResolved {
		t.Errorf("ref through duplicate anchor should resolve, got %+v", ptr.Related[0])
	}

	dup, _ := g.Document("dup")
	sec, ok := dup.Section("setup")
	if !ok || len(sec.Blocks) == 0 || sec.Blocks[0].Text != "first" {
		t.Errorf("first section must win the anchor, got %+v", sec)
	}
}

func TestBuild_DuplicateDocumentFirstWins(t *testing.T) {
	a := mustParse(t, "same-id", "# One\n\none\n")
	b := mustParse(t, "same-id", "# Two\n\ntwo\n")
	g := Build("en", append(a, b...))

	if got := g.Documents(); len(got) != 1 {
		t.Fatalf("documents = %v", got)
	}
	doc, _ := g.Document("same-id")
	if _, ok := doc.Section("one"); !ok {
		t.Error("first document should win")
	}
	warns := g.Warnings()
	if len(warns) != 1 || warns[0].Kind != WarnDuplicateDocument {
		t.Fatalf("warnings = %+v", warns)
	}
}

func TestBuild_RebuildAfterRemoval(t *testing.T) {
	srcA := `---
related:
  - b
---
# A

a
`
	srcB := "# B\n\nb\n"

	both := append(mustParse(t, "a", srcA), mustParse(t, "b", srcB)...)
	g1 := Build("en", both)
	docA, _ := g1.Document("a")
	if docA.Related[0].State != RefResolved {
		t.Fatalf("precondition: ref should resolve, got %+v", docA.Related[0])
	}

	// A later build without b must downgrade the same reference, not keep
	// the stale resolution.
	g2 := Build("en", mustParse(t, "a", srcA))
	docA2, _ := g2.Document("a")
	if docA2.Related[0].State != RefMissing {
		t.Fatalf("ref after removal = %+v, want missing", docA2.Related[0])
	}
	warns := g2.Warnings()
	if len(warns) != 1 || warns[0].Kind != WarnMissingDocument {
		t.Fatalf("warnings = %+v", warns)
	}
}

func TestSplitTarget(t *testing.T) {
	cases := []struct {
		in         string
		doc, frag string
	}{
		{"escrow", "escrow", ""},
		{"escrow#setup", "escrow", "setup"},
		{"escrow#", "escrow", ""},
	}
	for _, tc := range cases {
		doc, frag := SplitTarget(tc.in)
		if doc != tc.doc || frag != tc.frag {
			t.Errorf("SplitTarget(%q) = %q, %q", tc.in, doc, frag)
		}
	}
}
