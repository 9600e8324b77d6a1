package bank

import (
	"errors"
	"testing"

	"finlit-quiz-service/internal/domain"
)

func TestParseAdmitsValidAndSkipsMalformed(t *testing.T) {
	data := []byte(`[
		{"question": " What does XCD stand for? ", "options": ["Eastern Caribbean Dollar", "Extra Cash Deposit"], "answer": "Eastern Caribbean Dollar", "topic": "currency"},
		{"question": "", "options": ["a", "b"], "answer": "a"},
		{"question": "No options here", "answer": "a"},
		{"question": "Too few", "options": ["only one"], "answer": "only one"},
		{"question": "Answer missing", "options": ["a", "b"], "answer": "c"},
		{"question": "Duplicates", "options": ["a", "a"], "answer": "a"},
		{"question": "Budget first?", "options": ["Needs", "Wants", "Lottery"], "answer": "Needs"}
	]`)

	questions, rejected, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 valid questions, got %d", len(questions))
	}
	if len(rejected) != 5 {
		t.Fatalf("expected 5 rejections, got %d: %v", len(rejected), rejected)
	}
	if questions[0].Prompt != "What does XCD stand for?" {
		t.Fatalf("expected trimmed prompt, got %q", questions[0].Prompt)
	}
	if questions[0].Meta["topic"] != "currency" {
		t.Fatalf("expected passthrough metadata, got %v", questions[0].Meta)
	}
}

func TestParseSkipsNonObjectRecords(t *testing.T) {
	data := []byte(`[
		"just a string",
		42,
		["nested", "array"],
		null,
		{"question": "Budget first?", "options": ["Needs", "Wants"], "answer": "Needs"}
	]`)

	questions, rejected, err := Parse(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(questions) != 1 || questions[0].Prompt != "Budget first?" {
		t.Fatalf("expected the one object record admitted, got %v", questions)
	}
	if len(rejected) != 4 {
		t.Fatalf("expected 4 rejections, got %v", rejected)
	}
	for i, r := range rejected {
		if r.Index != i || r.Reason != "not an object" {
			t.Fatalf("rejection %d: expected index %d reason %q, got %+v", i, i, "not an object", r)
		}
	}
}

func TestParseFailsWhenNothingValid(t *testing.T) {
	_, _, err := Parse([]byte(`[{"question": "x", "options": ["a"], "answer": "a"}]`))
	if !errors.Is(err, domain.ErrNoValidQuestions) {
		t.Fatalf("expected ErrNoValidQuestions, got %v", err)
	}

	_, _, err = Parse([]byte(`[]`))
	if !errors.Is(err, domain.ErrNoValidQuestions) {
		t.Fatalf("expected ErrNoValidQuestions for empty bank, got %v", err)
	}
}

func TestParseFailsOnUnparsablePayload(t *testing.T) {
	if _, _, err := Parse([]byte(`{"not": "an array"`)); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestParseEnforcesOptionBounds(t *testing.T) {
	_, rejected, err := Parse([]byte(`[
		{"question": "nine options", "options": ["1","2","3","4","5","6","7","8","9"], "answer": "1"},
		{"question": "eight options", "options": ["1","2","3","4","5","6","7","8"], "answer": "8"}
	]`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rejected) != 1 || rejected[0].Index != 0 {
		t.Fatalf("expected only the nine-option record rejected, got %v", rejected)
	}
}
