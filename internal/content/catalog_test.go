package content

import "testing"

const coursesYAML = `
courses:
  - id: solana-core
    title: Solana Core Concepts
    description: Accounts, transactions, programs.
    lessons:
      - accounts
      - transactions
      - ghost-lesson
`

const challengesYAML = `
challenges:
  - id: core-graduate
    title: Core Graduate
    lessons:
      - accounts
      - transactions
    reward:
      badge: core-graduate
  - id: fast-start
    title: Fast Start
    lessons:
      - accounts
      - transactions
    criteria:
      kind: count
      count: 1
`

func TestParseCatalog(t *testing.T) {
	cat, err := ParseCatalog([]byte(coursesYAML), []byte(challengesYAML))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	course, ok := cat.Courses["solana-core"]
	if !ok {
		t.Fatal("course missing")
	}
	if len(course.Lessons) != 3 {
		t.Errorf("lessons = %v", course.Lessons)
	}

	grad := cat.Challenges["core-graduate"]
	if grad == nil {
		t.Fatal("challenge missing")
	}
	if grad.Criteria.Kind != CriteriaAll {
		t.Errorf("criteria kind should default to all, got %q", grad.Criteria.Kind)
	}
	if grad.Reward["badge"] != "core-graduate" {
		t.Errorf("reward = %v", grad.Reward)
	}
	if fast := cat.Challenges["fast-start"]; fast.Criteria.Kind != CriteriaCount || fast.Criteria.Count != 1 {
		t.Errorf("count criteria = %+v", fast.Criteria)
	}
}

func TestParseCatalog_Errors(t *testing.T) {
	if _, err := ParseCatalog([]byte("courses:\n  - title: no id\n"), nil); err == nil {
		t.Error("course without id should fail")
	}
	if _, err := ParseCatalog(nil, []byte("challenges: [\n")); err == nil {
		t.Error("malformed yaml should fail")
	}
	cat, err := ParseCatalog(nil, nil)
	if err != nil || len(cat.Courses) != 0 || len(cat.Challenges) != 0 {
		t.Errorf("empty inputs should give empty catalog, got %+v, %v", cat, err)
	}
}

func TestCatalog_ValidateDropsUnknownLessons(t *testing.T) {
	docs := append(mustParse(t, "accounts", "# A\n\na\n"), mustParse(t, "transactions", "# B\n\nb\n")...)
	g := Build("en", docs)

	cat, err := ParseCatalog([]byte(coursesYAML), []byte(challengesYAML))
	if err != nil {
		t.Fatalf("ParseCatalog: %v", err)
	}
	warns := cat.Validate(g)
	if len(warns) != 1 || warns[0].Kind != WarnUnknownLesson {
		t.Fatalf("warnings = %+v", warns)
	}
	if warns[0].DocumentID != "ghost-lesson" {
		t.Errorf("warning names %q", warns[0].DocumentID)
	}

	course := cat.Courses["solana-core"]
	if len(course.Lessons) != 2 || course.Lessons[0] != "accounts" || course.Lessons[1] != "transactions" {
		t.Errorf("lessons after validate = %v", course.Lessons)
	}
}

func TestChallenge_Met(t *testing.T) {
	all := &Challenge{
		Lessons:  []string{"a", "b", "c"},
		Criteria: Criteria{Kind: CriteriaAll},
	}
	count := &Challenge{
		Lessons:  []string{"a", "b", "c"},
		Criteria: Criteria{Kind: CriteriaCount, Count: 2},
	}

	cases := []struct {
		name      string
		ch        *Challenge
		completed map[string]bool
		want      bool
	}{
		{name: "all_none_done", ch: all, completed: nil, want: false},
		{name: "all_partial", ch: all, completed: map[string]bool{"a": true, "b": true}, want: false},
		{name: "all_done", ch: all, completed: map[string]bool{"a": true, "b": true, "c": true}, want: true},
		{name: "all_extras_ignored", ch: all, completed: map[string]bool{"a": true, "b": true, "c": true, "z": true}, want: true},
		{name: "count_below", ch: count, completed: map[string]bool{"a": true}, want: false},
		{name: "count_exact", ch: count, completed: map[string]bool{"a": true, "c": true}, want: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.ch.Met(tc.completed); got != tc.want {
				t.Errorf("Met = %v, want %v", got, tc.want)
			}
		})
	}
}
