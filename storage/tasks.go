package storage

import (
	"fmt"

	"todo-api/models"
)

// List returns every task in insertion order.
func (s *Store) List() ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return nil, err
	}
	tasks, err := s.load()
	if err != nil {
		return nil, err
	}
	return cloneTasks(tasks), nil
}

// Get returns the first task with the given id, or nil if there is none.
func (s *Store) Get(id int64) (*models.Task, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return nil, err
	}
	tasks, err := s.load()
	if err != nil {
		return nil, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return nil, nil
	}
	task := tasks[i].Clone()
	return &task, nil
}

// Create stores a validated draft under a fresh id and returns the new task.
func (s *Store) Create(d models.Draft) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return nil, err
	}
	tasks, err := s.load()
	if err != nil {
		return nil, err
	}

	status := d.Status
	if status == "" {
		status = models.StatusPending
	}
	now := s.now().UTC()
	task := models.Task{
		ID:          s.nextID(tasks),
		Title:       d.Title,
		Description: d.Description,
		Priority:    d.Priority,
		Category:    d.Category,
		Tags:        d.Tags,
		DueDate:     d.DueDate,
		Status:      status,
		Completed:   status == models.StatusCompleted,
		CreatedAt:   now,
		UpdatedAt:   now,
	}.Clone()
	if err := task.Check(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}

	if err := s.reserveID(task.ID); err != nil {
		return nil, err
	}
	// From here a failed persist leaves the reserved id as a gap.
	next := append(cloneTasks(tasks), task)
	if err := s.persist(next); err != nil {
		return nil, err
	}

	s.logger.Debug("task created", "id", task.ID)
	created := task.Clone()
	return &created, nil
}

// Update merges p into the first task with the given id. It returns nil
// without touching the file when no task matches.
func (s *Store) Update(id int64, p models.Patch) (*models.Task, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return nil, err
	}
	tasks, err := s.load()
	if err != nil {
		return nil, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return nil, nil
	}

	next := cloneTasks(tasks)
	task := &next[i]
	p.Apply(task)
	task.UpdatedAt = s.now().UTC()
	if err := task.Check(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTask, err)
	}

	if err := s.persist(next); err != nil {
		return nil, err
	}

	s.logger.Debug("task updated", "id", id)
	updated := task.Clone()
	return &updated, nil
}

// Delete removes the first task with the given id and reports whether one
// was removed. When nothing matches the file is left untouched.
func (s *Store) Delete(id int64) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ready(); err != nil {
		return false, err
	}
	tasks, err := s.load()
	if err != nil {
		return false, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return false, nil
	}

	next := make([]models.Task, 0, len(tasks)-1)
	next = append(next, cloneTasks(tasks[:i])...)
	next = append(next, cloneTasks(tasks[i+1:])...)
	if err := s.persist(next); err != nil {
		return false, err
	}

	s.logger.Debug("task deleted", "id", id)
	return true, nil
}

// checkID rejects ids that can never be issued. Zero is well-formed and
// simply never matches.
func checkID(id int64) error {
	if id < 0 {
		return fmt.Errorf("%w: task id %d is negative", ErrInvalidArgument, id)
	}
	return nil
}

func indexOf(tasks []models.Task, id int64) int {
	for i := range tasks {
		if tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneTasks(tasks []models.Task) []models.Task {
	out := make([]models.Task, len(tasks))
	for i := range tasks {
		out[i] = tasks[i].Clone()
	}
	return out
}
