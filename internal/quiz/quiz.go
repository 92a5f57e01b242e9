// Package quiz runs a multiple-choice test: it collects answers, scores the
// run and produces a per-question review.
package quiz

import (
	"math"
	"slices"
	"strings"

	"github.com/abhisek/cifra/internal/content"
)

// AchievementPrefix starts the name of the achievement earned by passing a
// test.
const AchievementPrefix = "Тест: "

// Achievement returns the achievement name for passing the test.
func Achievement(t *content.Test) string {
	return AchievementPrefix + t.Title
}

// Result is the score of a submitted run.
type Result struct {
	Correct    int
	Total      int
	Percentage int
	Passed     bool
}

// Review describes one question after submission.
type Review struct {
	Question content.Question
	Chosen   []int
	Correct  bool
	// Answer is the canonical answer text; options of multi-select
	// questions are joined with ", ".
	Answer string
}

// Run is one attempt at a test.
type Run struct {
	test      *content.Test
	answers   map[int][]int
	result    Result
	submitted bool
}

// New starts an empty run.
func New(t *content.Test) *Run {
	return &Run{test: t, answers: make(map[int][]int)}
}

func (r *Run) Test() *content.Test { return r.test }

// Select records a choice. Single questions replace the previous choice,
// multiple ones toggle the option. Choices are frozen after Submit.
func (r *Run) Select(questionID, option int) bool {
	if r.submitted {
		return false
	}
	q := r.question(questionID)
	if q == nil || option < 0 || option >= len(q.Options) {
		return false
	}
	if q.Type != content.QuestionMultiple {
		r.answers[questionID] = []int{option}
		return true
	}
	cur := r.answers[questionID]
	if i := slices.Index(cur, option); i >= 0 {
		r.answers[questionID] = slices.Delete(slices.Clone(cur), i, i+1)
		return true
	}
	next := append(slices.Clone(cur), option)
	slices.Sort(next)
	r.answers[questionID] = next
	return true
}

// Selected reports whether the option is currently chosen.
func (r *Run) Selected(questionID, option int) bool {
	return slices.Contains(r.answers[questionID], option)
}

// Answered counts questions with a non-empty answer.
func (r *Run) Answered() int {
	n := 0
	for _, q := range r.test.Questions {
		if len(r.answers[q.ID]) > 0 {
			n++
		}
	}
	return n
}

// Complete reports whether every question has an answer.
func (r *Run) Complete() bool {
	return r.Answered() == len(r.test.Questions)
}

// Submit scores the run. A question counts as correct only when the chosen
// set equals the answer key exactly. Submitting twice returns the first
// result.
func (r *Run) Submit() Result {
	if r.submitted {
		return r.result
	}
	total := len(r.test.Questions)
	correct := 0
	for _, q := range r.test.Questions {
		if sameSet(r.answers[q.ID], q.Correct) {
			correct++
		}
	}
	pct := 0
	if total > 0 {
		pct = int(math.Round(100 * float64(correct) / float64(total)))
	}
	r.result = Result{
		Correct:    correct,
		Total:      total,
		Percentage: pct,
		Passed:     pct >= r.test.PassingScore,
	}
	r.submitted = true
	return r.result
}

func (r *Run) Submitted() bool { return r.submitted }

func (r *Run) Result() (Result, bool) { return r.result, r.submitted }

// Review lists every question with its outcome. It is empty before Submit.
func (r *Run) Review() []Review {
	if !r.submitted {
		return nil
	}
	out := make([]Review, 0, len(r.test.Questions))
	for _, q := range r.test.Questions {
		chosen := slices.Clone(r.answers[q.ID])
		out = append(out, Review{
			Question: q,
			Chosen:   chosen,
			Correct:  sameSet(chosen, q.Correct),
			Answer:   AnswerText(q),
		})
	}
	return out
}

// Reset clears answers and the result for another attempt.
func (r *Run) Reset() {
	r.answers = make(map[int][]int)
	r.result = Result{}
	r.submitted = false
}

// AnswerText renders the answer key of q.
func AnswerText(q content.Question) string {
	parts := make([]string, 0, len(q.Correct))
	for _, i := range q.Correct {
		if i >= 0 && i < len(q.Options) {
			parts = append(parts, q.Options[i])
		}
	}
	return strings.Join(parts, ", ")
}

func (r *Run) question(id int) *content.Question {
	for i := range r.test.Questions {
		if r.test.Questions[i].ID == id {
			return &r.test.Questions[i]
		}
	}
	return nil
}

func sameSet(a []int, b content.Answer) bool {
	if len(a) != len(b) {
		return false
	}
	x := slices.Clone(a)
	y := slices.Clone([]int(b))
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}
