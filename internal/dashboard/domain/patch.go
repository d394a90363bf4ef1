package domain

import "time"

// ProjectPatch carries the fields of a partial update. Nil means "leave as is".
type ProjectPatch struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Category    *Category      `json:"category,omitempty"`
	Deadline    *time.Time     `json:"deadline,omitempty"`
	Priority    *Priority      `json:"priority,omitempty"`
	Status      *ProjectStatus `json:"status,omitempty"`
	Color       *string        `json:"color,omitempty"`
	Tags        *[]string      `json:"tags,omitempty"`
	Progress    *int           `json:"progress,omitempty"`
}

func (p ProjectPatch) Validate() error {
	if p.Title != nil && *p.Title == "" {
		return ErrTitleRequired
	}
	if p.Category != nil && !p.Category.Valid() {
		return invalid("category", *p.Category)
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return invalid("priority", *p.Priority)
	}
	if p.Status != nil && !p.Status.Valid() {
		return invalid("status", *p.Status)
	}
	return nil
}

// Apply shallow-merges the patch into dst.
func (p ProjectPatch) Apply(dst *Project) {
	if p.Title != nil {
		dst.Title = *p.Title
	}
	if p.Description != nil {
		dst.Description = *p.Description
	}
	if p.Category != nil {
		dst.Category = *p.Category
	}
	if p.Deadline != nil {
		dst.Deadline = *p.Deadline
	}
	if p.Priority != nil {
		dst.Priority = *p.Priority
	}
	if p.Status != nil {
		dst.Status = *p.Status
	}
	if p.Color != nil {
		dst.Color = *p.Color
	}
	if p.Tags != nil {
		dst.Tags = CloneTags(*p.Tags)
	}
	if p.Progress != nil {
		dst.Progress = *p.Progress
	}
}

// TaskPatch updates a task. An empty Assignee or ProjectID clears the field.
type TaskPatch struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Priority    *Priority   `json:"priority,omitempty"`
	Status      *TaskStatus `json:"status,omitempty"`
	Assignee    *string     `json:"assignee,omitempty"`
	Deadline    *time.Time  `json:"deadline,omitempty"`
	Tags        *[]string   `json:"tags,omitempty"`
	ProjectID   *string     `json:"projectId,omitempty"`
	TimeSpent   *int        `json:"timeSpent,omitempty"`
}

func (p TaskPatch) Validate() error {
	if p.Title != nil && *p.Title == "" {
		return ErrTitleRequired
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return invalid("priority", *p.Priority)
	}
	if p.Status != nil && !p.Status.Valid() {
		return invalid("status", *p.Status)
	}
	return nil
}

func (p TaskPatch) Apply(dst *Task) {
	if p.Title != nil {
		dst.Title = *p.Title
	}
	if p.Description != nil {
		dst.Description = *p.Description
	}
	if p.Priority != nil {
		dst.Priority = *p.Priority
	}
	if p.Status != nil {
		dst.Status = *p.Status
	}
	if p.Assignee != nil {
		dst.Assignee = optional(*p.Assignee)
	}
	if p.Deadline != nil {
		d := *p.Deadline
		dst.Deadline = &d
	}
	if p.Tags != nil {
		dst.Tags = CloneTags(*p.Tags)
	}
	if p.ProjectID != nil {
		dst.ProjectID = optional(*p.ProjectID)
	}
	if p.TimeSpent != nil {
		dst.TimeSpent = *p.TimeSpent
	}
}

type MilestonePatch struct {
	Title       *string          `json:"title,omitempty"`
	Description *string          `json:"description,omitempty"`
	Deadline    *time.Time       `json:"deadline,omitempty"`
	Status      *MilestoneStatus `json:"status,omitempty"`
	Progress    *int             `json:"progress,omitempty"`
	Order       *int             `json:"order,omitempty"`
}

func (p MilestonePatch) Validate() error {
	if p.Title != nil && *p.Title == "" {
		return ErrTitleRequired
	}
	if p.Status != nil && !p.Status.Valid() {
		return invalid("status", *p.Status)
	}
	return nil
}

func (p MilestonePatch) Apply(dst *Milestone) {
	if p.Title != nil {
		dst.Title = *p.Title
	}
	if p.Description != nil {
		dst.Description = *p.Description
	}
	if p.Deadline != nil {
		dst.Deadline = *p.Deadline
	}
	if p.Status != nil {
		dst.Status = *p.Status
	}
	if p.Progress != nil {
		dst.Progress = *p.Progress
	}
	if p.Order != nil {
		dst.Order = *p.Order
	}
}

// CloneTags copies a tag list, turning nil into an empty list.
func CloneTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
