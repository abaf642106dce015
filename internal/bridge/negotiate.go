package bridge

import (
	"fmt"
	"strings"

	"reaperbridge/internal/model"
	"reaperbridge/internal/validate"
)

// negotiationState tracks the clarification negotiation for one request.
// The machine never grants a second open-ended clarification: once a target
// was forced, every remaining ambiguity collapses into a terminal outcome.
type negotiationState int

const (
	stateInitial negotiationState = iota
	stateAwaitingTarget
	stateResolved
	stateStillAmbiguous
	stateValidationFailed
)

type negotiation struct {
	state  negotiationState
	target model.Target
}

func newNegotiation(target model.Target) *negotiation {
	n := &negotiation{state: stateInitial, target: target}
	if target != model.TargetNone {
		// The caller already answered a clarification round.
		n.state = stateAwaitingTarget
	}
	return n
}

func (n *negotiation) resolve() {
	n.state = stateResolved
}

// onPlannerClarification handles a needs_clarification plan. On the first
// round it is surfaced as a non-error response; after a forced target it is
// converted into a terminal failure to guarantee termination.
func (n *negotiation) onPlannerClarification(question string) model.Response {
	if n.state != stateAwaitingTarget {
		return clarificationResponse(question)
	}
	n.state = stateStillAmbiguous
	if mentionsBothTargets(question) {
		return errorResponse(noSelectionError(n.target))
	}
	return errorResponse("Could not resolve command after clarification. Try a more specific command.")
}

// onValidationFailure handles a contextual validation error. Without a forced
// target, a cross-target availability failure triggers one locally
// synthesized clarification round; everything else is terminal.
func (n *negotiation) onValidationFailure(message string, planningCtx model.SelectionContext) model.Response {
	if n.state == stateAwaitingTarget {
		n.state = stateValidationFailed
		if validate.IsTargetSelectionError(message, n.target) {
			return errorResponse(noSelectionError(n.target))
		}
		return errorResponse(fmt.Sprintf("Validation error: %s.", message))
	}
	if question := validate.ClarificationForError(message, planningCtx); question != "" {
		n.state = stateAwaitingTarget
		return clarificationResponse(question)
	}
	n.state = stateValidationFailed
	return errorResponse(fmt.Sprintf("Validation error: %s.", message))
}

// mentionsBothTargets detects a question that still straddles the clip and
// track vocabularies after the user already picked one.
func mentionsBothTargets(question string) bool {
	lowered := strings.ToLower(question)
	return strings.Contains(lowered, "clip") && strings.Contains(lowered, "track")
}

func noSelectionError(target model.Target) string {
	if target == model.TargetTracks {
		return "No selected tracks. Select a track in REAPER."
	}
	return "No selected clips. Select a clip in REAPER."
}
