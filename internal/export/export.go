package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"taskbrain-backend/internal/planner"
	"taskbrain-backend/internal/tasks"
)

var csvHeader = []string{"name", "duration_minutes", "due_date", "tag", "composite_priority"}

// WriteTasksCSV renders a ranked list as tabular rows. The first four columns
// match the import line format, so an exported file can be re-imported.
func WriteTasksCSV(w io.Writer, ranked []tasks.Task) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range ranked {
		row := []string{
			t.Name,
			strconv.Itoa(t.DurationMinutes),
			t.DueDateString(),
			t.Tag,
			strconv.Itoa(t.CompositePriority),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadTasksCSV re-imports an exported file. Derived scores are dropped; the
// planner recomputes them on the next ranking.
func ReadTasksCSV(r io.Reader) ([]tasks.Task, error) {
	cr := csv.NewReader(r)

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var list []tasks.Task
	for i, row := range rows[1:] { // skip header
		if len(row) < 4 {
			return nil, fmt.Errorf("row %d: expected at least 4 columns, got %d", i+2, len(row))
		}
		minutes, err := strconv.Atoi(row[1])
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("row %d: bad duration %q", i+2, row[1])
		}
		var due *time.Time
		if row[2] != "" {
			d, err := time.Parse(tasks.DateLayout, row[2])
			if err != nil {
				return nil, fmt.Errorf("row %d: bad due date %q", i+2, row[2])
			}
			due = &d
		}
		list = append(list, tasks.NewTask(row[0], minutes, due, row[3]))
	}

	return list, nil
}

// WritePlanJSON renders a daily plan as indented JSON for download.
func WritePlanJSON(w io.Writer, plan planner.DailyPlan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}
