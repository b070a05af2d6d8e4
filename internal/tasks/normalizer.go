package tasks

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the only accepted due-date format.
const DateLayout = "2006-01-02"

const fieldDelimiter = "|"

// ValidationError reports why a single input line was rejected. It carries the
// 1-based line number so the UI can point at the offending row.
type ValidationError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// ParseLine converts one pipe-delimited line (name | minutes | due | tag) into
// a Task. Trailing fields are optional.
func ParseLine(line string) (Task, error) {
	parts := strings.SplitN(line, fieldDelimiter, 4)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	name := parts[0]
	if name == "" {
		return Task{}, fmt.Errorf("empty task name")
	}

	if len(parts) < 2 || parts[1] == "" {
		return Task{}, fmt.Errorf("missing duration")
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return Task{}, fmt.Errorf("non-numeric duration %q", parts[1])
	}
	if minutes <= 0 {
		return Task{}, fmt.Errorf("non-positive duration %d", minutes)
	}

	var due *time.Time
	if len(parts) > 2 && parts[2] != "" {
		d, err := time.Parse(DateLayout, parts[2])
		if err != nil {
			return Task{}, fmt.Errorf("unparsable due date %q", parts[2])
		}
		due = &d
	}

	tag := ""
	if len(parts) > 3 {
		tag = parts[3]
	}

	t := NewTask(name, minutes, due, tag)
	if err := t.Validate(); err != nil {
		return Task{}, err
	}
	return t, nil
}

// ParseBatch parses raw multi-line input. Blank lines are skipped silently.
// Bad lines never abort the batch: the caller gets every task that parsed plus
// one ValidationError per rejected line, both in input order.
func ParseBatch(raw string) ([]Task, []ValidationError) {
	var (
		parsed []Task
		errs   []ValidationError
	)

	for i, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		t, err := ParseLine(line)
		if err != nil {
			errs = append(errs, ValidationError{Line: i + 1, Reason: err.Error()})
			continue
		}
		parsed = append(parsed, t)
	}

	return parsed, errs
}
