package timetracking

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// Titles resolves ids to display titles for export. Unknown ids export as
// empty titles.
type Titles struct {
	Projects map[string]string
	Tasks    map[string]string
}

type exportRow struct {
	ID           string `json:"id"`
	Date         string `json:"date"`
	ProjectID    string `json:"projectId"`
	ProjectTitle string `json:"projectTitle"`
	TaskID       string `json:"taskId"`
	TaskTitle    string `json:"taskTitle"`
	Description  string `json:"description"`
	Duration     int    `json:"duration"`
}

var csvHeader = []string{"id", "date", "project_id", "project", "task_id", "task", "description", "duration_minutes"}

// Export writes entries to w as "csv" or "json".
func Export(w io.Writer, format string, entries []TimeEntry, titles Titles) error {
	rows := make([]exportRow, 0, len(entries))
	for _, e := range entries {
		r := exportRow{
			ID:          e.ID,
			Date:        e.Date.Format("2006-01-02"),
			Description: e.Description,
			Duration:    e.Duration,
		}
		if e.ProjectID != nil {
			r.ProjectID = *e.ProjectID
			r.ProjectTitle = titles.Projects[r.ProjectID]
		}
		if e.TaskID != nil {
			r.TaskID = *e.TaskID
			r.TaskTitle = titles.Tasks[r.TaskID]
		}
		rows = append(rows, r)
	}

	switch format {
	case "csv":
		return writeCSV(w, rows)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	return fmt.Errorf("%w: %q", ErrUnknownExportFmt, format)
}

func writeCSV(w io.Writer, rows []exportRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{r.ID, r.Date, r.ProjectID, r.ProjectTitle, r.TaskID, r.TaskTitle, r.Description, strconv.Itoa(r.Duration)}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ContentType maps an export format to its MIME type.
func ContentType(format string) string {
	if format == "csv" {
		return "text/csv; charset=utf-8"
	}
	return "application/json; charset=utf-8"
}
