package domain

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"sort"
)

// TerminalSlug is returned by navigation once the flow has no further step.
// It can never collide with a real slug because slugs are validated.
const TerminalSlug = "$end"

var (
	ErrEmptyFlow     = errors.New("flow has no steps")
	ErrInvalidSlug   = errors.New("invalid step slug")
	ErrDuplicateStep = errors.New("duplicate step slug")
	ErrUnknownStep   = errors.New("unknown step slug")
	ErrUnknownField  = errors.New("unknown form field")
	ErrUnknownGroup  = errors.New("unknown step group")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Branch sends the wizard to Target when the named form field holds one of
// Values.
type Branch struct {
	Field  string   `json:"field"`
	Values []string `json:"values"`
	Target string   `json:"target"`
}

type Step struct {
	Slug         string
	Label        string
	GroupID      string
	Position     int
	Section      string
	Start        bool
	Confirmation bool
	Next         string
	Branches     []Branch
	Required     []string
}

type StepGroup struct {
	ID       string
	Label    string
	Position int
	Steps    []string
}

type Flow struct {
	Steps        []Step
	Groups       []StepGroup
	Restrictions Restrictions

	index map[string]int
	start int
}

// NewFlow orders steps by position and checks that every slug the graph
// refers to exists. Groups without an explicit step list collect their steps
// from Step.GroupID.
func NewFlow(steps []Step, groups []StepGroup, restrictions Restrictions) (*Flow, error) {
	if len(steps) == 0 {
		return nil, ErrEmptyFlow
	}
	if restrictions == nil {
		restrictions = Restrictions{}
	}

	sorted := slices.Clone(steps)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	f := &Flow{
		Steps:        sorted,
		Restrictions: restrictions,
		index:        make(map[string]int, len(sorted)),
	}

	for i := range f.Steps {
		step := &f.Steps[i]
		if !slugPattern.MatchString(step.Slug) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSlug, step.Slug)
		}
		if _, dup := f.index[step.Slug]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateStep, step.Slug)
		}
		if step.Section == "" {
			step.Section = step.Slug
		}
		f.index[step.Slug] = i
	}

	f.start = 0
	for i, step := range f.Steps {
		if step.Start {
			f.start = i
			break
		}
	}

	for _, step := range f.Steps {
		if err := f.validateStep(step); err != nil {
			return nil, err
		}
	}

	ordered, err := f.buildGroups(groups)
	if err != nil {
		return nil, err
	}
	f.Groups = ordered

	return f, nil
}

func (f *Flow) validateStep(step Step) error {
	if step.Next != "" {
		if _, ok := f.index[step.Next]; !ok {
			return fmt.Errorf("%w: %q (next of %q)", ErrUnknownStep, step.Next, step.Slug)
		}
	}
	for _, b := range step.Branches {
		if !IsField(b.Field) {
			return fmt.Errorf("%w: %q (branch of %q)", ErrUnknownField, b.Field, step.Slug)
		}
		if _, ok := f.index[b.Target]; !ok {
			return fmt.Errorf("%w: %q (branch of %q)", ErrUnknownStep, b.Target, step.Slug)
		}
	}
	for _, field := range step.Required {
		if !IsField(field) {
			return fmt.Errorf("%w: %q (required by %q)", ErrUnknownField, field, step.Slug)
		}
	}
	return nil
}

func (f *Flow) buildGroups(groups []StepGroup) ([]StepGroup, error) {
	ordered := slices.Clone(groups)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position < ordered[j].Position
	})

	known := make(map[string]struct{}, len(ordered))
	for i := range ordered {
		g := &ordered[i]
		known[g.ID] = struct{}{}
		if len(g.Steps) == 0 {
			for _, step := range f.Steps {
				if step.GroupID == g.ID {
					g.Steps = append(g.Steps, step.Slug)
				}
			}
			continue
		}
		for _, slug := range g.Steps {
			if _, ok := f.index[slug]; !ok {
				return nil, fmt.Errorf("%w: %q (group %q)", ErrUnknownStep, slug, g.ID)
			}
		}
	}

	if len(ordered) > 0 {
		for _, step := range f.Steps {
			if step.GroupID == "" {
				continue
			}
			if _, ok := known[step.GroupID]; !ok {
				return nil, fmt.Errorf("%w: %q (step %q)", ErrUnknownGroup, step.GroupID, step.Slug)
			}
		}
	}

	return ordered, nil
}

func (f *Flow) Step(slug string) (Step, bool) {
	i, ok := f.index[slug]
	if !ok {
		return Step{}, false
	}
	return f.Steps[i], true
}

// IndexOf returns the position-ordered index of slug, or -1.
func (f *Flow) IndexOf(slug string) int {
	if i, ok := f.index[slug]; ok {
		return i
	}
	return -1
}

func (f *Flow) Start() Step {
	return f.Steps[f.start]
}

func (f *Flow) Confirmation() (Step, bool) {
	for _, step := range f.Steps {
		if step.Confirmation {
			return step, true
		}
	}
	return Step{}, false
}

// GroupOf returns the group a step belongs to and its index in Groups.
func (f *Flow) GroupOf(slug string) (StepGroup, int, bool) {
	for i, g := range f.Groups {
		if slices.Contains(g.Steps, slug) {
			return g, i, true
		}
	}
	return StepGroup{}, -1, false
}
