package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Status is the board column of a task. The data layer keeps it as a
// free string; only the three values below are offered by the UI.
type Status string

const (
	StatusToDo       Status = "To Do"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

// Statuses lists the selectable statuses in board order.
var Statuses = []Status{StatusToDo, StatusInProgress, StatusDone}

// Valid reports whether the status is one of the selectable statuses.
func (s Status) Valid() bool {
	for _, v := range Statuses {
		if s == v {
			return true
		}
	}
	return false
}

const dateLayout = "2006-01-02"

// Date is a calendar date without a time component.
type Date struct {
	year  int
	month time.Month
	day   int
}

// DateOf truncates t to its UTC calendar date.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{year: y, month: m, day: d}
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(raw string) (Date, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", raw)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return time.Date(d.year, d.month, d.day, 0, 0, 0, 0, time.UTC).Format(dateLayout)
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d.year == 0 && d.month == 0 && d.day == 0
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// HistoryEntry records one status change of a task.
type HistoryEntry struct {
	Status Status `json:"status"`
	Date   Date   `json:"date"`
}

// Task is a unit of work that belongs to one scrum and one assignee.
type Task struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      Status         `json:"status"`
	ScrumID     int64          `json:"scrumId"`
	AssignedTo  UserID         `json:"assignedTo"`
	History     []HistoryEntry `json:"history"`
}

// NewTask builds a task whose history holds the creation entry.
func NewTask(scrumID int64, title, description string, status Status, assignee UserID, on Date) Task {
	return Task{
		Title:       title,
		Description: description,
		Status:      status,
		ScrumID:     scrumID,
		AssignedTo:  assignee,
		History:     []HistoryEntry{{Status: status, Date: on}},
	}
}

// WithStatus returns a copy of the task moved to status, with exactly one
// history entry appended. The receiver is left untouched.
func (t Task) WithStatus(status Status, on Date) Task {
	history := make([]HistoryEntry, len(t.History), len(t.History)+1)
	copy(history, t.History)
	t.History = append(history, HistoryEntry{Status: status, Date: on})
	t.Status = status
	return t
}

// AssignedToUser compares assignees by canonical id.
func (t Task) AssignedToUser(id UserID) bool {
	return t.AssignedTo == id
}
