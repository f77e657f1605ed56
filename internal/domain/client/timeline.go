package client

import "time"

// Assignee names who carries out a timeline task.
type Assignee string

const (
	AssigneeTeam   Assignee = "Team"
	AssigneeClient Assignee = "Client"
	AssigneeBoth   Assignee = "Both"
)

// TimelineTask is a single task within a timeline week.
type TimelineTask struct {
	Task     string     `json:"task"`
	Assignee Assignee   `json:"assignee"`
	Status   StepStatus `json:"status"`
}

// TimelineWeek groups three tasks.
type TimelineWeek struct {
	Week  int            `json:"week"`
	Title string         `json:"title"`
	Tasks []TimelineTask `json:"tasks"`
}

// TimelineMonth is one of the three month blocks. Progress is stored as
// entered and is not derived from task statuses.
type TimelineMonth struct {
	Month       int            `json:"month"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      StepStatus     `json:"status"`
	Progress    int            `json:"progress"`
	Weeks       []TimelineWeek `json:"weeks"`
}

type weekTemplate struct {
	title string
	tasks [3]TimelineTask
}

type monthTemplate struct {
	title, description string
	weeks              [4]weekTemplate
}

func task(name string, who Assignee) TimelineTask {
	return TimelineTask{Task: name, Assignee: who, Status: StepPending}
}

var timelineTemplate = [3]monthTemplate{
	{
		title:       "Setup & Orientation",
		description: "Initial setup and client onboarding",
		weeks: [4]weekTemplate{
			{"Account Creation & Orientation", [3]TimelineTask{
				task("Schedule onboarding call", AssigneeTeam),
				task("Website access setup", AssigneeClient),
				task("Initial consultation", AssigneeTeam),
			}},
			{"Tool Access & Training", [3]TimelineTask{
				task("Social media integration", AssigneeTeam),
				task("Recording schedule setup", AssigneeClient),
				task("Platform training session", AssigneeTeam),
			}},
			{"Analytics Implementation", [3]TimelineTask{
				task("Google Analytics 4 setup", AssigneeTeam),
				task("Google Tag Manager configuration", AssigneeTeam),
				task("Tracking verification", AssigneeTeam),
			}},
			{"First Content Recording", [3]TimelineTask{
				task("Recording session preparation", AssigneeClient),
				task("First content recording", AssigneeBoth),
				task("Content review and feedback", AssigneeTeam),
			}},
		},
	},
	{
		title:       "Content & Monitoring",
		description: "Content creation and performance monitoring",
		weeks: [4]weekTemplate{
			{"Content Production", [3]TimelineTask{
				task("Weekly recording sessions", AssigneeBoth),
				task("Content editing and optimization", AssigneeTeam),
				task("Publishing and distribution", AssigneeTeam),
			}},
			{"Performance Monitoring", [3]TimelineTask{
				task("Analytics review and reporting", AssigneeTeam),
				task("Content performance analysis", AssigneeTeam),
				task("Strategy adjustments", AssigneeBoth),
			}},
			{"Optimization", [3]TimelineTask{
				task("SEO optimization", AssigneeTeam),
				task("Social media engagement", AssigneeTeam),
				task("Audience feedback collection", AssigneeBoth),
			}},
			{"Monthly Review", [3]TimelineTask{
				task("Performance report generation", AssigneeTeam),
				task("Client review meeting", AssigneeBoth),
				task("Next month planning", AssigneeBoth),
			}},
		},
	},
	{
		title:       "Analysis & Optimization",
		description: "Traffic analysis and strategy optimization",
		weeks: [4]weekTemplate{
			{"Deep Analytics Review", [3]TimelineTask{
				task("Traffic analysis and insights", AssigneeTeam),
				task("Conversion tracking review", AssigneeTeam),
				task("ROI calculation and reporting", AssigneeTeam),
			}},
			{"Strategy Optimization", [3]TimelineTask{
				task("Content strategy refinement", AssigneeBoth),
				task("Target audience analysis", AssigneeTeam),
				task("Campaign optimization", AssigneeTeam),
			}},
			{"Implementation", [3]TimelineTask{
				task("New strategy implementation", AssigneeTeam),
				task("A/B testing setup", AssigneeTeam),
				task("Performance monitoring", AssigneeTeam),
			}},
			{"Results & Planning", [3]TimelineTask{
				task("Final results analysis", AssigneeTeam),
				task("Success metrics review", AssigneeBoth),
				task("Future planning session", AssigneeBoth),
			}},
		},
	},
}

// DefaultTimeline returns a fresh copy of the 3-month template with every
// month and task pending and progress 0.
func DefaultTimeline() []TimelineMonth {
	months := make([]TimelineMonth, 0, len(timelineTemplate))
	for i, mt := range timelineTemplate {
		month := TimelineMonth{
			Month:       i + 1,
			Title:       mt.title,
			Description: mt.description,
			Status:      StepPending,
			Weeks:       make([]TimelineWeek, 0, len(mt.weeks)),
		}
		for j, wt := range mt.weeks {
			tasks := make([]TimelineTask, len(wt.tasks))
			copy(tasks, wt.tasks[:])
			month.Weeks = append(month.Weeks, TimelineWeek{Week: j + 1, Title: wt.title, Tasks: tasks})
		}
		months = append(months, month)
	}
	return months
}

// OverallProgress is the rounded mean of the months' stored progress.
func OverallProgress(months []TimelineMonth) int {
	values := make([]int, len(months))
	for i, m := range months {
		values[i] = m.Progress
	}
	return RoundedMean(values, 0)
}

// EnsureTimeline instantiates the template if the client has none.
func (c *Client) EnsureTimeline() bool {
	if len(c.Timeline) > 0 {
		return false
	}
	c.Timeline = DefaultTimeline()
	return true
}

func (c *Client) month(month int) (*TimelineMonth, error) {
	for i := range c.Timeline {
		if c.Timeline[i].Month == month {
			return &c.Timeline[i], nil
		}
	}
	return nil, ErrTimelineNotFound
}

// SetMonthProgress stores a month's progress percentage.
func (c *Client) SetMonthProgress(month, progress int, now time.Time) error {
	if progress < 0 || progress > 100 {
		return ErrProgressOutOfRange
	}
	c.EnsureTimeline()
	m, err := c.month(month)
	if err != nil {
		return err
	}
	m.Progress = progress
	c.Touch(now)
	return nil
}

// SetMonthStatus stores a month's status.
func (c *Client) SetMonthStatus(month int, status StepStatus, now time.Time) error {
	if !status.Valid() {
		return ErrInvalidStepStatus
	}
	c.EnsureTimeline()
	m, err := c.month(month)
	if err != nil {
		return err
	}
	m.Status = status
	c.Touch(now)
	return nil
}

// SetTaskStatus sets the status of one task. Week and task are 1-based.
func (c *Client) SetTaskStatus(month, week, taskNo int, status StepStatus, now time.Time) error {
	if !status.Valid() {
		return ErrInvalidStepStatus
	}
	c.EnsureTimeline()
	m, err := c.month(month)
	if err != nil {
		return err
	}
	for i := range m.Weeks {
		w := &m.Weeks[i]
		if w.Week != week {
			continue
		}
		if taskNo < 1 || taskNo > len(w.Tasks) {
			return ErrTimelineNotFound
		}
		w.Tasks[taskNo-1].Status = status
		c.Touch(now)
		return nil
	}
	return ErrTimelineNotFound
}

func cloneTimeline(months []TimelineMonth) []TimelineMonth {
	out := make([]TimelineMonth, len(months))
	for i, m := range months {
		out[i] = m
		out[i].Weeks = make([]TimelineWeek, len(m.Weeks))
		for j, w := range m.Weeks {
			out[i].Weeks[j] = w
			out[i].Weeks[j].Tasks = append([]TimelineTask(nil), w.Tasks...)
		}
	}
	return out
}
