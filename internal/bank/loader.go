package bank

import (
	"encoding/json"
	"fmt"
	"strings"

	"finlit-quiz-service/internal/domain"
)

// Rejection records why a single source record was excluded from the bank.
type Rejection struct {
	Index  int
	Reason string
}

func (r Rejection) String() string {
	return fmt.Sprintf("record %d: %s", r.Index, r.Reason)
}

// Parse decodes a raw JSON array of question records and admits only the
// well-formed ones. A malformed record is rejected and skipped; it never
// aborts the batch. Parse fails only when the payload itself is not a JSON
// array or when validation leaves zero usable questions.
func Parse(data []byte) ([]domain.Question, []Rejection, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("parse question bank: %w", err)
	}

	questions := make([]domain.Question, 0, len(raw))
	var rejected []Rejection
	for i, elem := range raw {
		var record map[string]json.RawMessage
		if err := json.Unmarshal(elem, &record); err != nil {
			rejected = append(rejected, Rejection{Index: i, Reason: "not an object"})
			continue
		}
		q, reason := validate(record)
		if reason != "" {
			rejected = append(rejected, Rejection{Index: i, Reason: reason})
			continue
		}
		questions = append(questions, q)
	}

	if len(questions) == 0 {
		return nil, rejected, domain.ErrNoValidQuestions
	}
	return questions, rejected, nil
}

// validate checks one untyped record against the bank rules and returns
// either a Question or a rejection reason.
func validate(record map[string]json.RawMessage) (domain.Question, string) {
	if record == nil {
		return domain.Question{}, "not an object"
	}

	prompt, ok := stringField(record, "question")
	if !ok || strings.TrimSpace(prompt) == "" {
		return domain.Question{}, "missing or invalid 'question'"
	}

	rawOptions, ok := record["options"]
	if !ok {
		return domain.Question{}, "missing 'options'"
	}
	var options []string
	if err := json.Unmarshal(rawOptions, &options); err != nil {
		return domain.Question{}, "'options' is not an array of strings"
	}
	if len(options) < 2 || len(options) > 8 {
		return domain.Question{}, "options must be between 2 and 8"
	}
	seen := make(map[string]struct{}, len(options))
	trimmed := make([]string, 0, len(options))
	for _, o := range options {
		o = strings.TrimSpace(o)
		if o == "" {
			return domain.Question{}, "empty option"
		}
		if _, dup := seen[o]; dup {
			return domain.Question{}, "duplicate option"
		}
		seen[o] = struct{}{}
		trimmed = append(trimmed, o)
	}

	answer, ok := stringField(record, "answer")
	if !ok {
		return domain.Question{}, "missing or invalid 'answer'"
	}
	answer = strings.TrimSpace(answer)
	if _, ok := seen[answer]; !ok {
		return domain.Question{}, "'answer' not in options"
	}

	return domain.Question{
		Prompt:  strings.TrimSpace(prompt),
		Options: trimmed,
		Answer:  answer,
		Meta:    passthrough(record),
	}, ""
}

func stringField(record map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := record[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// passthrough keeps any extra source fields alongside the question. String
// values are kept as-is; anything else keeps its JSON text.
func passthrough(record map[string]json.RawMessage) map[string]string {
	var meta map[string]string
	for key, raw := range record {
		switch key {
		case "question", "options", "answer":
			continue
		}
		if meta == nil {
			meta = make(map[string]string)
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			meta[key] = s
		} else {
			meta[key] = string(raw)
		}
	}
	return meta
}
