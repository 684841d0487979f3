// Package review implements the Leitner-box spaced-repetition scheduler used
// for vocabulary flashcards.
//
// Entries live in boxes 1..5. A correct answer promotes an entry one box up
// (capped at 5), a wrong answer demotes it all the way back to box 1. The
// review interval grows non-uniformly with the box so that new and weak words
// come back quickly while mastered ones are rarely shown.
package review

import "time"

// MinBox and MaxBox bound the Leitner boxes.
const (
	MinBox = 1
	MaxBox = 5
)

// QueueLimit caps the number of entries returned in one review queue so a
// study session stays finite.
const QueueLimit = 100

// intervals maps a Leitner box to the number of days until the next review.
var intervals = map[int]int{
	1: 1,
	2: 2,
	3: 5,
	4: 10,
	5: 20,
}

// ClampBox forces a box into the valid [MinBox, MaxBox] range. Out-of-range
// values can appear in databases written by older versions.
func ClampBox(box int) int {
	if box < MinBox {
		return MinBox
	}
	if box > MaxBox {
		return MaxBox
	}
	return box
}

// Interval returns the review interval for a box.
func Interval(box int) time.Duration {
	days := intervals[ClampBox(box)]
	return time.Duration(days) * 24 * time.Hour
}

// Advance returns the box an entry moves to after an answer. Correct answers
// promote by one box up to MaxBox; wrong answers demote straight to MinBox
// rather than stepping down gradually.
func Advance(box int, correct bool) int {
	if !correct {
		return MinBox
	}
	next := ClampBox(box) + 1
	if next > MaxBox {
		return MaxBox
	}
	return next
}

// NextReview computes when an entry in the given box should reappear.
func NextReview(now time.Time, box int) time.Time {
	return now.Add(Interval(box))
}
