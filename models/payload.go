package models

import "slices"

// Draft is a validated create request. The store turns it into a Task by
// assigning the id and timestamps.
type Draft struct {
	Title       string
	Description *string
	Priority    int
	Category    *string
	Tags        []string
	DueDate     Date
	Status      Status
}

// Patch holds the fields supplied by a partial update. Nil pointers are
// left untouched; the Clear flags record an explicit JSON null.
type Patch struct {
	Title            *string
	Description      *string
	ClearDescription bool
	Priority         *int
	Category         *string
	ClearCategory    bool
	Tags             []string
	SetTags          bool
	DueDate          *Date
	Status           *Status
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Title == nil &&
		p.Description == nil && !p.ClearDescription &&
		p.Priority == nil &&
		p.Category == nil && !p.ClearCategory &&
		!p.SetTags &&
		p.DueDate == nil &&
		p.Status == nil
}

// Apply merges the supplied fields into t. ID and CreatedAt are never touched.
func (p Patch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	switch {
	case p.ClearDescription:
		t.Description = nil
	case p.Description != nil:
		d := *p.Description
		t.Description = &d
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	switch {
	case p.ClearCategory:
		t.Category = nil
	case p.Category != nil:
		c := *p.Category
		t.Category = &c
	}
	if p.SetTags {
		t.Tags = slices.Clone(p.Tags)
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Status != nil {
		t.Status = *p.Status
		t.Completed = t.Status == StatusCompleted
	}
}
