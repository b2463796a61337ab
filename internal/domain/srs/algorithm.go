package srs

import (
	"time"

	"github.com/phrazzld/viva-api/internal/domain"
)

// calculateNewEaseFactor applies the outcome adjustment to the current ease
// factor and clamps the result to [MinEaseFactor, MaxEaseFactor].
func calculateNewEaseFactor(currentEF float64, outcome domain.DrillOutcome, params *Params) float64 {
	newEF := currentEF + params.EaseFactorAdjustment[outcome]
	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}
	if newEF > params.MaxEaseFactor {
		newEF = params.MaxEaseFactor
	}
	return newEF
}

// calculateNewInterval returns the next interval in days.
//
//   - "again" resets the interval to 0 (retry within minutes)
//   - the first success uses FirstIntervals
//   - "good" right after a lapse grows the interval by 1.5
//   - otherwise the interval grows by the ease factor ("good"), the hard
//     modifier ("hard") or the easy modifier times the ease factor ("easy")
func calculateNewInterval(
	currentInterval int,
	consecutiveCorrect int,
	easeFactor float64,
	outcome domain.DrillOutcome,
	params *Params,
) int {
	if outcome == domain.DrillOutcomeAgain {
		return 0
	}

	if currentInterval == 0 {
		return params.FirstIntervals[outcome]
	}

	if consecutiveCorrect == 0 && outcome == domain.DrillOutcomeGood {
		return int(float64(currentInterval) * 1.5)
	}

	modifier := params.IntervalModifier[outcome]
	switch outcome {
	case domain.DrillOutcomeGood:
		modifier = easeFactor
	case domain.DrillOutcomeEasy:
		modifier *= easeFactor
	}

	next := int(float64(currentInterval) * modifier)
	if next <= currentInterval {
		next = currentInterval + 1
	}
	return next
}

// calculateNextDueAt converts an interval into the next due time.
// Failed drills come back after RetryMinutes.
func calculateNextDueAt(interval int, outcome domain.DrillOutcome, now time.Time, params *Params) time.Time {
	if outcome == domain.DrillOutcomeAgain {
		return now.Add(time.Duration(params.RetryMinutes) * time.Minute)
	}
	return now.AddDate(0, 0, interval)
}

// calculateNextSchedule returns a copy of drill with its scheduling fields
// advanced by one attempt. The input is not modified.
func calculateNextSchedule(drill *domain.Drill, outcome domain.DrillOutcome, now time.Time, params *Params) *domain.Drill {
	next := *drill
	next.Keywords = append([]string(nil), drill.Keywords...)

	next.AttemptCount++
	attemptedAt := now
	next.LastAttemptAt = &attemptedAt
	next.EaseFactor = calculateNewEaseFactor(drill.EaseFactor, outcome, params)

	if outcome == domain.DrillOutcomeAgain {
		next.ConsecutiveCorrect = 0
	} else {
		next.ConsecutiveCorrect++
	}

	next.Interval = calculateNewInterval(drill.Interval, drill.ConsecutiveCorrect, next.EaseFactor, outcome, params)
	next.NextDueAt = calculateNextDueAt(next.Interval, outcome, now, params)
	next.UpdatedAt = now

	return &next
}
