package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"todo-api/models"
)

const documentSchemaSource = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "title", "priority", "due_date"],
    "properties": {
      "id": {"type": "integer", "minimum": 1},
      "title": {"type": "string", "minLength": 1, "maxLength": 255},
      "description": {"type": ["string", "null"]},
      "priority": {"type": "integer", "minimum": 1, "maximum": 5},
      "category": {"type": ["string", "null"]},
      "tags": {
        "type": ["array", "null"],
        "items": {"type": "string"}
      },
      "due_date": {"type": "string", "pattern": "^[0-9]{4}-[0-9]{2}-[0-9]{2}$"},
      "status": {"enum": ["pending", "in_progress", "completed"]},
      "completed": {"type": "boolean"},
      "created_at": {"type": "string"},
      "updated_at": {"type": "string"}
    }
  }
}`

var documentSchema = jsonschema.MustCompileString("tasks.schema.json", documentSchemaSource)

// decodeTasks parses a task document. Anything other than a root array of
// task objects is rejected with ErrParse.
func decodeTasks(data []byte) ([]models.Task, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after task list", ErrParse)
	}

	if err := documentSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrParse, describeSchemaError(err))
	}

	tasks := make([]models.Task, 0)
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	for i := range tasks {
		if tasks[i].Status == "" {
			tasks[i].Status = models.StatusFor(tasks[i].Completed)
		}
		tasks[i].Completed = tasks[i].Status == models.StatusCompleted
	}
	return tasks, nil
}

// encodeTasks renders the document with 2-space indentation and a trailing newline.
func encodeTasks(tasks []models.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []models.Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal tasks: %w", err)
	}
	return append(data, '\n'), nil
}

// describeSchemaError reports the first leaf violation as "path: message".
func describeSchemaError(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	path := jsonPointerToPath(ve.InstanceLocation)
	if path == "" {
		return ve.Message
	}
	return path + ": " + ve.Message
}

func jsonPointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(strings.TrimPrefix(ptr, "#"), "/")
	if ptr == "" {
		return ""
	}

	var b strings.Builder
	for _, part := range strings.Split(ptr, "/") {
		part = strings.ReplaceAll(strings.ReplaceAll(part, "~1", "/"), "~0", "~")
		if idx, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", idx)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
