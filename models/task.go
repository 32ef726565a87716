package models

import (
	"fmt"
	"slices"
	"time"
	"unicode/utf8"
)

const (
	MaxTitleLength = 255
	MinPriority    = 1
	MaxPriority    = 5
)

// Task is a single to-do item as stored in the task file.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Priority    int       `json:"priority"`
	Category    *string   `json:"category"`
	Tags        []string  `json:"tags"`
	DueDate     Date      `json:"due_date"`
	Status      Status    `json:"status"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Check reports the first broken record invariant, if any.
func (t Task) Check() error {
	switch {
	case t.ID < 1:
		return fmt.Errorf("task id %d is not positive", t.ID)
	case t.Title == "":
		return fmt.Errorf("task %d: empty title", t.ID)
	case utf8.RuneCountInString(t.Title) > MaxTitleLength:
		return fmt.Errorf("task %d: title longer than %d characters", t.ID, MaxTitleLength)
	case t.Priority < MinPriority || t.Priority > MaxPriority:
		return fmt.Errorf("task %d: priority %d out of range", t.ID, t.Priority)
	case t.DueDate.IsZero():
		return fmt.Errorf("task %d: missing due date", t.ID)
	case !t.Status.Valid():
		return fmt.Errorf("task %d: invalid status %q", t.ID, t.Status)
	case t.Completed != (t.Status == StatusCompleted):
		return fmt.Errorf("task %d: completed flag disagrees with status %q", t.ID, t.Status)
	}
	return nil
}

// Equal compares every field. Timestamps are compared with time.Time.Equal.
func (t Task) Equal(o Task) bool {
	return t.ID == o.ID &&
		t.Title == o.Title &&
		equalPtr(t.Description, o.Description) &&
		t.Priority == o.Priority &&
		equalPtr(t.Category, o.Category) &&
		slices.Equal(t.Tags, o.Tags) &&
		t.DueDate == o.DueDate &&
		t.Status == o.Status &&
		t.Completed == o.Completed &&
		t.CreatedAt.Equal(o.CreatedAt) &&
		t.UpdatedAt.Equal(o.UpdatedAt)
}

// Clone returns a deep copy so callers never share slices or pointers with the store.
func (t Task) Clone() Task {
	c := t
	if t.Description != nil {
		d := *t.Description
		c.Description = &d
	}
	if t.Category != nil {
		cat := *t.Category
		c.Category = &cat
	}
	if t.Tags != nil {
		c.Tags = slices.Clone(t.Tags)
	}
	return c
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
