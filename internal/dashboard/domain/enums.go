package domain

import "fmt"

func (c Category) Valid() bool {
	switch c {
	case CategoryYouTube, CategoryBlog, CategoryPodcast, CategorySocialMedia, CategoryOther:
		return true
	}
	return false
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectInProgress, ProjectReview, ProjectComplete:
		return true
	}
	return false
}

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskToDo, TaskInProgress, TaskReview, TaskDone:
		return true
	}
	return false
}

func (s MilestoneStatus) Valid() bool {
	switch s {
	case MilestoneNotStarted, MilestoneInProgress, MilestoneComplete:
		return true
	}
	return false
}

func invalid(field string, v any) error {
	return fmt.Errorf("%w: %s %q", ErrInvalidEnum, field, v)
}

// Validate checks required fields and enum membership. Progress bounds are
// left to callers.
func (n NewProject) Validate() error {
	if n.Title == "" {
		return ErrTitleRequired
	}
	if !n.Category.Valid() {
		return invalid("category", n.Category)
	}
	if !n.Priority.Valid() {
		return invalid("priority", n.Priority)
	}
	if !n.Status.Valid() {
		return invalid("status", n.Status)
	}
	return nil
}

func (n NewTask) Validate() error {
	if n.Title == "" {
		return ErrTitleRequired
	}
	if !n.Priority.Valid() {
		return invalid("priority", n.Priority)
	}
	if !n.Status.Valid() {
		return invalid("status", n.Status)
	}
	return nil
}

func (n NewMilestone) Validate() error {
	if n.Title == "" {
		return ErrTitleRequired
	}
	if n.ProjectID == "" {
		return ErrProjectIDRequired
	}
	if !n.Status.Valid() {
		return invalid("status", n.Status)
	}
	return nil
}
