// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt builds persona system prompts for practice sessions.
package prompt

import (
	"strings"

	"github.com/jeranaias/drillrun-tui/internal/mode"
	"github.com/jeranaias/drillrun-tui/internal/util"
)

// =============================================================================
// SENTINELS
// =============================================================================

// HeartbeatMarker prefixes the synthetic user turn the controller injects
// when the learner goes quiet. It never survives in persisted history.
const HeartbeatMarker = "[HEARTBEAT]"

// SilenceSentinel is the reserved response a model returns when a nudge is
// not warranted. A heartbeat response consisting solely of this token is
// suppressed entirely.
const SilenceSentinel = "[SILENCE]"

// IsSilence reports whether a response is the bare silence sentinel.
func IsSilence(response string) bool {
	return strings.TrimSpace(response) == SilenceSentinel
}

// =============================================================================
// PERSONA PROMPTS
// =============================================================================

const interviewPrompt = `# INTERVIEWER INSTRUCTIONS

You are a technical interviewer running a timed coding interview.

## RULES
1. NEVER give the solution or write solution code
2. Ask Socratic questions that lead the candidate to insights
3. When asked for a hint, give the SMALLEST useful nudge
4. If the candidate's approach is wrong, ask a question that exposes the flaw
5. Keep responses short - two or three sentences unless asked to clarify

## TONE
Professional and encouraging. The clock is running; do not waste the
candidate's time with filler.`

const coachPrompt = `# COACH INSTRUCTIONS

You are a practice coach helping a learner work through a coding problem.

## RULES
1. Answer questions directly, but nudge toward self-discovery first
2. Explain concepts and trade-offs when asked
3. Prefer guiding questions over full solutions; give solution code only
   when the learner explicitly asks for it
4. Point out complexity issues in the learner's approach

## TONE
Supportive and concrete. Use examples over abstractions.`

const teachPrompt = `# TEACHER INSTRUCTIONS

You are a teacher walking a learner through a problem they could not solve.

## RULES
1. Explain the full solution, step by step
2. Start from the key insight, then build the algorithm
3. Include complete, idiomatic code with complexity analysis
4. Connect the technique to related problems the learner should recognize

## TONE
Patient and thorough. The learner has already given up on solving this
alone; clarity beats brevity.`

// =============================================================================
// PROMPT BUILDER
// =============================================================================

// Context carries the session facts a persona prompt embeds.
type Context struct {
	ProblemTitle string
	Difficulty   string
	Topic        string
	RemainingMin int
	TimerRunning bool
	HintsUsed    int
}

// BuildSystemPrompt assembles the system prompt for an effective persona.
// The caller resolves the persona first; this function does not re-apply
// override rules.
func BuildSystemPrompt(m mode.Mode, ctx Context) string {
	var sb strings.Builder

	switch m {
	case mode.Coach:
		sb.WriteString(coachPrompt)
	case mode.Teach:
		sb.WriteString(teachPrompt)
	default:
		sb.WriteString(interviewPrompt)
	}

	if ctx.ProblemTitle != "" {
		sb.WriteString("\n\n## CURRENT PROBLEM\n\n")
		sb.WriteString(ctx.ProblemTitle)
		if ctx.Difficulty != "" {
			sb.WriteString(" (")
			sb.WriteString(ctx.Difficulty)
			sb.WriteString(")")
		}
		sb.WriteString("\n")
		if ctx.Topic != "" {
			sb.WriteString("Topic: ")
			sb.WriteString(ctx.Topic)
			sb.WriteString("\n")
		}
	}

	if ctx.TimerRunning {
		sb.WriteString("\n## SESSION STATE\n\n")
		sb.WriteString("Timer running, about ")
		sb.WriteString(util.IntToStr(ctx.RemainingMin))
		sb.WriteString(" minutes remain.\n")
		if ctx.HintsUsed > 0 {
			sb.WriteString("Hints used so far: ")
			sb.WriteString(util.IntToStr(ctx.HintsUsed))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// HeartbeatTurn builds the synthetic user turn for an idle learner. The
// marker keeps the turn identifiable; the instructions tell the model it may
// answer with the silence sentinel instead of nudging.
func HeartbeatTurn(elapsedMin int) string {
	var sb strings.Builder
	sb.WriteString(HeartbeatMarker)
	sb.WriteString(" The candidate has been silent for a while (about ")
	sb.WriteString(util.IntToStr(elapsedMin))
	sb.WriteString(" minutes into the session). ")
	sb.WriteString("If a brief check-in would help, offer one. ")
	sb.WriteString("If silence is fine right now, respond with exactly ")
	sb.WriteString(SilenceSentinel)
	sb.WriteString(" and nothing else.")
	return sb.String()
}
