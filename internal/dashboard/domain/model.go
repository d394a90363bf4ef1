package domain

import "time"

type Category string

const (
	CategoryYouTube     Category = "YouTube"
	CategoryBlog        Category = "Blog"
	CategoryPodcast     Category = "Podcast"
	CategorySocialMedia Category = "Social Media"
	CategoryOther       Category = "Other"
)

type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "Planning"
	ProjectInProgress ProjectStatus = "In Progress"
	ProjectReview     ProjectStatus = "Review"
	ProjectComplete   ProjectStatus = "Complete"
)

type TaskStatus string

const (
	TaskToDo       TaskStatus = "To Do"
	TaskInProgress TaskStatus = "In Progress"
	TaskReview     TaskStatus = "Review"
	TaskDone       TaskStatus = "Done"
)

type MilestoneStatus string

const (
	MilestoneNotStarted MilestoneStatus = "Not Started"
	MilestoneInProgress MilestoneStatus = "In Progress"
	MilestoneComplete   MilestoneStatus = "Complete"
)

type EventType string

const (
	EventPublish  EventType = "Publish"
	EventDeadline EventType = "Deadline"
	EventMeeting  EventType = "Meeting"
	EventOther    EventType = "Other"
)

// Project is a unit of content work owned by one account.
// Tasks and Milestones are never persisted with the project; they are empty
// on creation and filled only by the single-project view.
type Project struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Category    Category      `json:"category"`
	Deadline    time.Time     `json:"deadline"`
	Priority    Priority      `json:"priority"`
	Status      ProjectStatus `json:"status"`
	Color       string        `json:"color"`
	Tags        []string      `json:"tags"`
	Progress    int           `json:"progress"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	Milestones  []Milestone   `json:"milestones"`
	Tasks       []Task        `json:"tasks"`
}

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	Status      TaskStatus `json:"status"`
	Assignee    *string    `json:"assignee,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	Tags        []string   `json:"tags"`
	ProjectID   *string    `json:"projectId,omitempty"`
	TimeSpent   int        `json:"timeSpent"` // minutes
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// InProject reports whether the task belongs to the given project.
func (t Task) InProject(projectID string) bool {
	return t.ProjectID != nil && *t.ProjectID == projectID
}

type Milestone struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Deadline    time.Time       `json:"deadline"`
	Status      MilestoneStatus `json:"status"`
	Progress    int             `json:"progress"`
	ProjectID   string          `json:"projectId"`
	Order       int             `json:"order"`
}

// CalendarEvent is derived from deadlines held in local state; it is never stored.
type CalendarEvent struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	Type      EventType `json:"type"`
	Source    string    `json:"source"` // project, task or milestone
	SourceID  string    `json:"sourceId"`
	ProjectID string    `json:"projectId,omitempty"`
}

// NewProject is the caller-supplied part of a Project.
type NewProject struct {
	Title       string
	Description string
	Category    Category
	Deadline    time.Time
	Priority    Priority
	Status      ProjectStatus
	Color       string
	Tags        []string
	Progress    int
}

type NewTask struct {
	Title       string
	Description string
	Priority    Priority
	Status      TaskStatus
	Assignee    *string
	Deadline    *time.Time
	Tags        []string
	ProjectID   *string
	TimeSpent   int
}

type NewMilestone struct {
	Title       string
	Description string
	Deadline    time.Time
	Status      MilestoneStatus
	Progress    int
	ProjectID   string
	Order       int
}
