// Package bridge is the request pipeline: normalize the selection context,
// acquire a plan, enforce its schema, validate it against the selection, and
// negotiate clip-versus-track ambiguity within a single extra round.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"reaperbridge/internal/model"
	"reaperbridge/internal/preview"
	"reaperbridge/internal/schema"
	"reaperbridge/internal/validate"
)

const clarificationPreview = "Clarification needed before generating a preview."

func errorResponse(message string) model.Response {
	return model.Response{
		Error:     &message,
		ToolCalls: []model.ToolCall{},
	}
}

func clarificationResponse(question string) model.Response {
	return model.Response{
		OK:                    true,
		NeedsClarification:    true,
		ClarificationQuestion: &question,
		Preview:               clarificationPreview,
		ToolCalls:             []model.ToolCall{},
	}
}

func resolvedResponse(previewText string, calls []model.ToolCall) model.Response {
	if calls == nil {
		calls = []model.ToolCall{}
	}
	return model.Response{
		OK:        true,
		Preview:   previewText,
		ToolCalls: calls,
	}
}

// Process runs one request through the pipeline. It never lets a fault
// escape; every failure becomes the response's error field.
func Process(ctx context.Context, planner model.Planner, req model.Request) (resp model.Response) {
	defer func() {
		if r := recover(); r != nil {
			resp = errorResponse(fmt.Sprintf("Unexpected planning error: %v", r))
		}
	}()

	command := strings.TrimSpace(req.Cmd)
	if command == "" {
		return errorResponse("Input error: cmd must be a non-empty string.")
	}
	sc, err := decodeSelectionContext(req.Ctx)
	if err != nil {
		return errorResponse("Input error: ctx must be an object.")
	}

	// An explicit forced target wins over a clarification answer.
	target := ParseTarget(req.ForcedTarget)
	if target == model.TargetNone {
		target = ParseTarget(req.ClarificationAnswer)
	}

	neg := newNegotiation(target)
	planningCtx := PlanningContext(sc, target, normalizeHint(req.ConversationHint))
	planningCmd := PlanningCommand(command, target)

	raw, err := planner.PlanToolCalls(ctx, planningCmd, model.Summarize(planningCtx))
	if err != nil {
		if errors.Is(err, model.ErrNotConfigured) {
			return errorResponse(err.Error())
		}
		return errorResponse(fmt.Sprintf("Gemini planning error: %v", err))
	}

	plan, err := schema.Enforce(raw)
	if err != nil {
		return errorResponse(fmt.Sprintf("Gemini planning error: %v", err))
	}

	if plan.NeedsClarification {
		return neg.onPlannerClarification(plan.ClarificationQuestion)
	}

	if err := validate.Plan(plan, planningCtx); err != nil {
		return neg.onValidationFailure(err.Error(), planningCtx)
	}

	neg.resolve()
	return resolvedResponse(preview.Render(plan.ToolCalls, planningCtx), plan.ToolCalls)
}

func decodeSelectionContext(raw json.RawMessage) (model.SelectionContext, error) {
	var sc model.SelectionContext
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" || !strings.HasPrefix(trimmed, "{") {
		return sc, errors.New("ctx is not an object")
	}
	if err := json.Unmarshal(raw, &sc); err != nil {
		return sc, err
	}
	return sc, nil
}

func normalizeHint(hint *model.ConversationHint) *model.ConversationHint {
	if hint == nil {
		return nil
	}
	normalized := model.ConversationHint{
		LastIntent:    strings.TrimSpace(hint.LastIntent),
		PendingIntent: strings.TrimSpace(hint.PendingIntent),
	}
	if normalized.LastIntent == "" && normalized.PendingIntent == "" {
		return nil
	}
	return &normalized
}
