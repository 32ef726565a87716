// Package validation turns raw task payloads into typed drafts and patches.
//
// Nothing here touches storage. Create collects every violation; Update
// stops at the first one.
package validation

import (
	"encoding/json"
	"math"
	"time"
	"unicode/utf8"

	"todo-api/models"
)

const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldPriority    = "priority"
	FieldCategory    = "category"
	FieldTags        = "tags"
	FieldDueDate     = "due_date"
	FieldStatus      = "status"
	FieldCompleted   = "completed"
)

// MaxStatusLength bounds raw status strings before the enum check.
const MaxStatusLength = 64

var requiredFields = []string{FieldTitle, FieldDueDate, FieldPriority}

// Validator checks payloads against the task field rules. Now supplies
// "today" for the due date rule.
type Validator struct {
	Now func() time.Time
}

func New() *Validator {
	return &Validator{Now: time.Now}
}

// Create validates a create payload. On failure the error is an Errors
// value holding every violation, missing fields first, then type and
// format problems, then semantic ones.
func (v *Validator) Create(payload map[string]any) (models.Draft, error) {
	c := v.check(payload, true)
	if len(c.errs) > 0 {
		return models.Draft{}, c.errs
	}

	d := models.Draft{
		Title:       *c.patch.Title,
		Description: c.patch.Description,
		Priority:    *c.patch.Priority,
		Category:    c.patch.Category,
		Tags:        c.patch.Tags,
		DueDate:     *c.patch.DueDate,
		Status:      models.StatusPending,
	}
	if c.patch.Status != nil {
		d.Status = *c.patch.Status
	}
	return d, nil
}

// Update validates a partial update payload and reports only the first
// violation. The past due date rule does not apply to updates.
func (v *Validator) Update(payload map[string]any) (models.Patch, error) {
	c := v.check(payload, false)
	if len(c.errs) > 0 {
		return models.Patch{}, c.errs[:1]
	}
	return c.patch, nil
}

type checker struct {
	payload map[string]any
	create  bool
	failed  map[string]bool
	errs    Errors
	patch   models.Patch

	dueDate models.Date
	status  string
}

func (c *checker) fail(field string, kind Kind, msg string) {
	c.failed[field] = true
	c.errs = append(c.errs, &FieldError{Field: field, Kind: kind, Message: msg})
}

// lookup returns the raw value of field and whether it is worth checking.
func (c *checker) lookup(field string) (any, bool) {
	if c.failed[field] {
		return nil, false
	}
	raw, ok := c.payload[field]
	return raw, ok
}

func (v *Validator) check(payload map[string]any, create bool) *checker {
	c := &checker{payload: payload, create: create, failed: make(map[string]bool)}

	// Missing required fields. On update only an explicit null can "remove" one.
	for _, field := range requiredFields {
		raw, ok := payload[field]
		if (create && !ok) || (ok && raw == nil) {
			c.fail(field, KindMissingField, MsgFieldRequired)
		}
	}

	c.checkTypes()
	c.checkSemantics(v.today())
	return c
}

func (v *Validator) today() models.Date {
	now := time.Now
	if v.Now != nil {
		now = v.Now
	}
	return models.DateOf(now())
}

func (c *checker) checkTypes() {
	if raw, ok := c.lookup(FieldTitle); ok {
		if s, isString := raw.(string); isString {
			c.patch.Title = &s
		} else {
			c.fail(FieldTitle, KindInvalidType, MsgNotString)
		}
	}

	if raw, ok := c.lookup(FieldDescription); ok {
		s, isString, isNull := optionalString(raw)
		switch {
		case isNull:
			c.patch.ClearDescription = !c.create
		case isString:
			c.patch.Description = &s
		default:
			c.fail(FieldDescription, KindInvalidType, MsgNotString)
		}
	}

	if raw, ok := c.lookup(FieldPriority); ok {
		if n, isInt := integral(raw); isInt {
			p := clampPriority(n)
			c.patch.Priority = &p
		} else {
			c.fail(FieldPriority, KindInvalidType, MsgNotInteger)
		}
	}

	if raw, ok := c.lookup(FieldCategory); ok {
		s, isString, isNull := optionalString(raw)
		switch {
		case isNull:
			c.patch.ClearCategory = !c.create
		case isString:
			c.patch.Category = &s
		default:
			c.fail(FieldCategory, KindInvalidType, MsgNotString)
		}
	}

	if raw, ok := c.lookup(FieldTags); ok {
		if raw == nil {
			c.patch.SetTags = true
		} else if tags, isList := stringList(raw); isList {
			c.patch.Tags = tags
			c.patch.SetTags = true
		} else {
			c.fail(FieldTags, KindInvalidType, MsgNotStringList)
		}
	}

	if raw, ok := c.lookup(FieldDueDate); ok {
		s, isString := raw.(string)
		d, err := models.ParseDate(s)
		if !isString || err != nil {
			c.fail(FieldDueDate, KindInvalidDateFormat, MsgInvalidDate)
		} else {
			c.dueDate = d
			c.patch.DueDate = &d
		}
	}

	if raw, ok := c.lookup(FieldStatus); ok && raw != nil {
		if s, isString := raw.(string); isString {
			c.status = s
		} else {
			c.fail(FieldStatus, KindInvalidStatus, MsgStatusInvalid)
		}
	}

	if raw, ok := c.lookup(FieldCompleted); ok {
		if b, isBool := raw.(bool); isBool {
			st := models.StatusFor(b)
			c.patch.Status = &st
		} else {
			c.fail(FieldCompleted, KindInvalidType, MsgNotBoolean)
		}
	}
}

func (c *checker) checkSemantics(today models.Date) {
	if c.patch.Title != nil && !c.failed[FieldTitle] {
		switch n := utf8.RuneCountInString(*c.patch.Title); {
		case n == 0:
			c.fail(FieldTitle, KindEmptyTitle, MsgEmptyTitle)
		case n > models.MaxTitleLength:
			c.fail(FieldTitle, KindTitleTooLong, MsgTitleTooLong)
		}
	}

	if c.patch.Priority != nil && !c.failed[FieldPriority] {
		if p := *c.patch.Priority; p < models.MinPriority || p > models.MaxPriority {
			c.fail(FieldPriority, KindOutOfRange, MsgPriorityRange)
		}
	}

	if c.create && c.patch.DueDate != nil && c.dueDate.Before(today) {
		c.fail(FieldDueDate, KindDateInPast, MsgDateInPast)
	}

	raw, present := c.payload[FieldStatus]
	if !present || c.failed[FieldStatus] {
		return
	}
	switch {
	case raw == nil || c.status == "":
		c.fail(FieldStatus, KindInvalidStatus, MsgStatusNull)
	case utf8.RuneCountInString(c.status) > MaxStatusLength:
		c.fail(FieldStatus, KindInvalidStatus, MsgStatusTooLong)
	case !models.Status(c.status).Valid():
		c.fail(FieldStatus, KindInvalidStatus, MsgStatusInvalid)
	default:
		// An explicit status wins over the completed alias.
		st := models.Status(c.status)
		c.patch.Status = &st
	}
}

func optionalString(raw any) (s string, isString, isNull bool) {
	if raw == nil {
		return "", false, true
	}
	s, isString = raw.(string)
	return s, isString, false
}

func stringList(raw any) ([]string, bool) {
	switch list := raw.(type) {
	case []string:
		return append([]string{}, list...), true
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// integral reports the integer held by raw. Integral floats such as 3.0
// count; fractions, strings and booleans do not.
func integral(raw any) (int64, bool) {
	switch n := raw.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return integralFloat(f)
	case float64:
		return integralFloat(n)
	case float32:
		return integralFloat(float64(n))
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func integralFloat(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64, true
	}
	if f <= math.MinInt64 {
		return math.MinInt64, true
	}
	return int64(f), true
}

// clampPriority narrows n to int while keeping out-of-range values out of range.
func clampPriority(n int64) int {
	switch {
	case n > models.MaxPriority:
		return models.MaxPriority + 1
	case n < models.MinPriority:
		return models.MinPriority - 1
	}
	return int(n)
}
