package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDecisionRequired is returned when composing a scenario that still
	// waits for an operator decision.
	ErrDecisionRequired = errors.New("scenario needs a decision before composition")

	// ErrInvalidDecision is returned when a decision names a hazard that is not
	// part of the resolved scenario.
	ErrInvalidDecision = errors.New("decision does not match the active hazards")

	// ErrUnsupportedCombination is returned when a combined statement is
	// requested for warning, watch and advisory together.
	ErrUnsupportedCombination = errors.New("combined statement is not supported for three hazards")

	// ErrNoHazardKind is returned for a template that names no hazard.
	ErrNoHazardKind = errors.New("template does not name a tsunami warning, watch or advisory")

	// ErrMultipleHazardKinds is returned for a template naming more than one hazard.
	ErrMultipleHazardKinds = errors.New("template names more than one hazard kind")

	// ErrTemplateKindMismatch is returned when a template names a different
	// hazard than the one being composed.
	ErrTemplateKindMismatch = errors.New("template hazard does not match the composed hazard")

	// ErrNothingToCompose is returned when the resolution carries no hazard to compose.
	ErrNothingToCompose = errors.New("no hazard selected for composition")

	// ErrUnknownCanned is returned for a canned statement kind other than
	// cancel or imminent.
	ErrUnknownCanned = errors.New("unknown canned statement kind")

	// ErrDuplicateBulletin marks a bulletin already composed recently.
	ErrDuplicateBulletin = errors.New("duplicate bulletin")
)

func errBadDate(s string) error {
	return fmt.Errorf("unrecognized month/day %q", s)
}
