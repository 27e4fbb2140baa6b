package content

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// CriteriaKind selects how challenge completion is judged.
type CriteriaKind string

const (
	// CriteriaAll requires every lesson of the challenge to be complete.
	CriteriaAll CriteriaKind = "all"
	// CriteriaCount requires at least Count lessons to be complete.
	CriteriaCount CriteriaKind = "count"
)

type Criteria struct {
	Kind  CriteriaKind `yaml:"kind" json:"kind"`
	Count int          `yaml:"count" json:"count,omitempty"`
}

// Course groups an ordered sequence of lesson documents. Lessons are weak
// id references into the content graph, not owned documents.
type Course struct {
	ID          string   `yaml:"id" json:"id"`
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description,omitempty"`
	Lessons     []string `yaml:"lessons" json:"lessons"`
}

// Challenge is a claimable course: completing its lessons per Criteria
// entitles the user to the reward metadata.
type Challenge struct {
	ID       string         `yaml:"id" json:"id"`
	Title    string         `yaml:"title" json:"title"`
	Lessons  []string       `yaml:"lessons" json:"lessons"`
	Criteria Criteria       `yaml:"criteria" json:"criteria"`
	Reward   map[string]any `yaml:"reward" json:"reward,omitempty"`
}

// Catalog is the parsed course/challenge metadata for a content snapshot.
type Catalog struct {
	Courses    map[string]*Course
	Challenges map[string]*Challenge
}

type courseFile struct {
	Courses []*Course `yaml:"courses"`
}

type challengeFile struct {
	Challenges []*Challenge `yaml:"challenges"`
}

// ParseCatalog decodes courses.yaml and challenges.yaml. Either input may be
// nil (missing file). Entries without an id are rejected.
func ParseCatalog(coursesRaw, challengesRaw []byte) (*Catalog, error) {
	cat := &Catalog{
		Courses:    make(map[string]*Course),
		Challenges: make(map[string]*Challenge),
	}
	if len(coursesRaw) > 0 {
		var cf courseFile
		if err := yaml.Unmarshal(coursesRaw, &cf); err != nil {
			return nil, fmt.Errorf("parse courses: %w", err)
		}
		for _, c := range cf.Courses {
			if c == nil || c.ID == "" {
				return nil, fmt.Errorf("parse courses: entry without id")
			}
			cat.Courses[c.ID] = c
		}
	}
	if len(challengesRaw) > 0 {
		var cf challengeFile
		if err := yaml.Unmarshal(challengesRaw, &cf); err != nil {
			return nil, fmt.Errorf("parse challenges: %w", err)
		}
		for _, ch := range cf.Challenges {
			if ch == nil || ch.ID == "" {
				return nil, fmt.Errorf("parse challenges: entry without id")
			}
			if ch.Criteria.Kind == "" {
				ch.Criteria.Kind = CriteriaAll
			}
			cat.Challenges[ch.ID] = ch
		}
	}
	return cat, nil
}

// Validate checks every lesson reference against the given graph and drops
// the ones that point at unknown documents, recording a warning per drop.
// The catalog entry itself is kept.
func (c *Catalog) Validate(g *Graph) []Warning {
	var warnings []Warning
	keep := func(owner string, lessons []string) []string {
		out := lessons[:0]
		for _, id := range lessons {
			if _, ok := g.Document(id); !ok {
				warnings = append(warnings, Warning{
					Kind:       WarnUnknownLesson,
					DocumentID: id,
					Detail:     fmt.Sprintf("%s references unknown lesson %q", owner, id),
				})
				continue
			}
			out = append(out, id)
		}
		return out
	}
	for _, course := range c.Courses {
		course.Lessons = keep("course "+course.ID, course.Lessons)
	}
	for _, ch := range c.Challenges {
		ch.Lessons = keep("challenge "+ch.ID, ch.Lessons)
	}
	return warnings
}

// Met reports whether the given completed-document set satisfies the
// challenge's completion criteria.
func (ch *Challenge) Met(completed map[string]bool) bool {
	done := 0
	for _, id := range ch.Lessons {
		if completed[id] {
			done++
		}
	}
	switch ch.Criteria.Kind {
	case CriteriaCount:
		return done >= ch.Criteria.Count
	default:
		return done == len(ch.Lessons)
	}
}
