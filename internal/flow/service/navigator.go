package service

import (
	"errors"
	"fmt"
	"slices"

	"repairflow/internal/domain"
	apperrors "repairflow/internal/errors"
)

var ErrNoPreviousStep = errors.New("no previous step")

type Progress struct {
	GroupID    string `json:"groupId"`
	GroupIndex int    `json:"groupIndex"`
	GroupCount int    `json:"groupCount"`
	StepIndex  int    `json:"stepIndex"`
	StepCount  int    `json:"stepCount"`
}

// Navigator walks a loaded flow. It holds no state of its own; every call
// is decided by the flow and the form state passed in.
type Navigator struct {
	flow *domain.Flow
}

func NewNavigator(flow *domain.Flow) *Navigator {
	return &Navigator{flow: flow}
}

// Next returns the slug that follows current for the given state, or
// domain.TerminalSlug when the flow is finished. Branches are tried in
// order, then the step's explicit successor, then the next step by position.
func (n *Navigator) Next(current string, state domain.FormState) (string, error) {
	idx := n.flow.IndexOf(current)
	if idx < 0 {
		return "", stepNotFound(current)
	}
	step := n.flow.Steps[idx]

	if step.Confirmation {
		return domain.TerminalSlug, nil
	}

	for _, b := range step.Branches {
		if n.matches(b, state) {
			return b.Target, nil
		}
	}

	if step.Next != "" {
		return step.Next, nil
	}

	if idx+1 < len(n.flow.Steps) {
		return n.flow.Steps[idx+1].Slug, nil
	}
	return domain.TerminalSlug, nil
}

// Previous returns the step the user came from. It replays the path from the
// start so branches are honoured; a step the path never visits falls back to
// its positional predecessor.
func (n *Navigator) Previous(current string, state domain.FormState) (string, error) {
	idx := n.flow.IndexOf(current)
	if idx < 0 {
		return "", stepNotFound(current)
	}

	path := n.Path(state)
	if i := slices.Index(path, current); i >= 0 {
		if i == 0 {
			return "", ErrNoPreviousStep
		}
		return path[i-1], nil
	}

	if idx == 0 || n.flow.Steps[idx].Start {
		return "", ErrNoPreviousStep
	}
	return n.flow.Steps[idx-1].Slug, nil
}

// Path lists the steps a user with this state visits from the start step,
// in order. It stops at the terminal value or on a revisit.
func (n *Navigator) Path(state domain.FormState) []string {
	path := make([]string, 0, len(n.flow.Steps))
	seen := make(map[string]struct{}, len(n.flow.Steps))

	slug := n.flow.Start().Slug
	for len(path) < len(n.flow.Steps) {
		if _, ok := seen[slug]; ok {
			break
		}
		seen[slug] = struct{}{}
		path = append(path, slug)

		next, err := n.Next(slug, state)
		if err != nil || next == domain.TerminalSlug {
			break
		}
		slug = next
	}
	return path
}

func (n *Navigator) Progress(current string, state domain.FormState) (Progress, error) {
	if n.flow.IndexOf(current) < 0 {
		return Progress{}, stepNotFound(current)
	}

	p := Progress{GroupIndex: -1, GroupCount: len(n.flow.Groups)}
	if g, i, ok := n.flow.GroupOf(current); ok {
		p.GroupID = g.ID
		p.GroupIndex = i
	}

	path := n.Path(state)
	p.StepCount = len(path)
	p.StepIndex = slices.Index(path, current)
	if p.StepIndex < 0 {
		p.StepIndex = n.flow.IndexOf(current)
		p.StepCount = len(n.flow.Steps)
	}
	return p, nil
}

// Missing lists the required fields of a step that the state leaves empty.
func (n *Navigator) Missing(current string, state domain.FormState) ([]string, error) {
	step, ok := n.flow.Step(current)
	if !ok {
		return nil, stepNotFound(current)
	}

	var missing []string
	for _, field := range step.Required {
		if state.Value(field) == "" {
			missing = append(missing, field)
		}
	}
	return missing, nil
}

// Candidates filters repair type slugs down to those the garment accepts.
func (n *Navigator) Candidates(garment string, all []string) []string {
	return n.flow.Restrictions.Candidates(garment, all)
}

func (n *Navigator) matches(b domain.Branch, state domain.FormState) bool {
	value := state.Value(b.Field)
	if value == "" || !slices.Contains(b.Values, value) {
		return false
	}
	if b.Field == domain.FieldRepairType {
		return n.flow.Restrictions.Allows(state.Garment, value)
	}
	return true
}

func stepNotFound(slug string) error {
	return apperrors.NewNotFoundError(fmt.Sprintf("step %q not found", slug))
}
