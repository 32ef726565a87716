package validation

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-api/models"
)

var fixedNow = time.Date(2026, time.October, 19, 15, 30, 0, 0, time.UTC)

func newTestValidator() *Validator {
	return &Validator{Now: func() time.Time { return fixedNow }}
}

func validPayload() map[string]any {
	return map[string]any{
		"title":       "Write report",
		"description": "Quarterly numbers",
		"priority":    json.Number("3"),
		"due_date":    "2026-11-01",
	}
}

func requireErrors(t *testing.T, err error) Errors {
	t.Helper()
	require.Error(t, err)
	errs, ok := AsErrors(err)
	require.True(t, ok, "expected validation.Errors, got %T", err)
	require.NotEmpty(t, errs)
	return errs
}

func TestCreateValidPayload(t *testing.T) {
	d, err := newTestValidator().Create(validPayload())
	require.NoError(t, err)

	assert.Equal(t, "Write report", d.Title)
	require.NotNil(t, d.Description)
	assert.Equal(t, "Quarterly numbers", *d.Description)
	assert.Equal(t, 3, d.Priority)
	assert.Equal(t, models.Date{Year: 2026, Month: time.November, Day: 1}, d.DueDate)
	assert.Equal(t, models.StatusPending, d.Status)
	assert.Nil(t, d.Category)
}

func TestCreateOptionalFields(t *testing.T) {
	p := validPayload()
	delete(p, "description")
	p["category"] = "Work"
	p["tags"] = []any{"meeting", "kickoff"}
	p["status"] = "in_progress"
	p["unexpected"] = "ignored"

	d, err := newTestValidator().Create(p)
	require.NoError(t, err)

	assert.Nil(t, d.Description)
	require.NotNil(t, d.Category)
	assert.Equal(t, "Work", *d.Category)
	assert.Equal(t, []string{"meeting", "kickoff"}, d.Tags)
	assert.Equal(t, models.StatusInProgress, d.Status)
}

func TestCreateNullOptionalFields(t *testing.T) {
	p := validPayload()
	p["description"] = nil
	p["category"] = nil
	p["tags"] = nil

	d, err := newTestValidator().Create(p)
	require.NoError(t, err)
	assert.Nil(t, d.Description)
	assert.Nil(t, d.Category)
	assert.Nil(t, d.Tags)
}

func TestCreateTitleRules(t *testing.T) {
	tests := []struct {
		name  string
		title any
		kind  Kind
	}{
		{name: "empty", title: "", kind: KindEmptyTitle},
		{name: "too long", title: strings.Repeat("A", 256), kind: KindTitleTooLong},
		{name: "not a string", title: json.Number("12"), kind: KindInvalidType},
		{name: "null", title: nil, kind: KindMissingField},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := validPayload()
			p["title"] = tc.title
			_, err := newTestValidator().Create(p)
			errs := requireErrors(t, err)
			assert.Len(t, errs, 1)
			assert.True(t, errs.Has(FieldTitle, tc.kind), "got %v", errs)
		})
	}
}

func TestCreateTitleBoundary(t *testing.T) {
	p := validPayload()
	p["title"] = strings.Repeat("A", 255)
	d, err := newTestValidator().Create(p)
	require.NoError(t, err)
	assert.Len(t, d.Title, 255)

	// Length counts characters, not bytes.
	p["title"] = strings.Repeat("é", 255)
	_, err = newTestValidator().Create(p)
	require.NoError(t, err)
}

func TestCreatePriorityRules(t *testing.T) {
	tests := []struct {
		name     string
		priority any
		kind     Kind
	}{
		{name: "zero", priority: json.Number("0"), kind: KindOutOfRange},
		{name: "six", priority: json.Number("6"), kind: KindOutOfRange},
		{name: "huge", priority: json.Number("1e30"), kind: KindOutOfRange},
		{name: "negative", priority: -4, kind: KindOutOfRange},
		{name: "label", priority: "high", kind: KindInvalidType},
		{name: "numeric string", priority: "3", kind: KindInvalidType},
		{name: "fraction", priority: json.Number("2.5"), kind: KindInvalidType},
		{name: "bool", priority: true, kind: KindInvalidType},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := validPayload()
			p["priority"] = tc.priority
			_, err := newTestValidator().Create(p)
			errs := requireErrors(t, err)
			assert.True(t, errs.Has(FieldPriority, tc.kind), "got %v", errs)
		})
	}
}

func TestCreatePriorityBoundaries(t *testing.T) {
	for _, priority := range []any{json.Number("1"), json.Number("5"), json.Number("4.0"), float64(2), 3} {
		p := validPayload()
		p["priority"] = priority
		_, err := newTestValidator().Create(p)
		assert.NoError(t, err, "priority %v", priority)
	}
}

func TestCreateDueDateRules(t *testing.T) {
	tests := []struct {
		name string
		due  any
		kind Kind
	}{
		{name: "us format", due: "07/01/2024", kind: KindInvalidDateFormat},
		{name: "not a date", due: "2026-02-30", kind: KindInvalidDateFormat},
		{name: "timestamp", due: "2026-11-01T10:00:00Z", kind: KindInvalidDateFormat},
		{name: "number", due: json.Number("20261101"), kind: KindInvalidDateFormat},
		{name: "yesterday", due: "2026-10-18", kind: KindDateInPast},
		{name: "last year", due: "2025-10-19", kind: KindDateInPast},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := validPayload()
			p["due_date"] = tc.due
			_, err := newTestValidator().Create(p)
			errs := requireErrors(t, err)
			assert.True(t, errs.Has(FieldDueDate, tc.kind), "got %v", errs)
		})
	}
}

func TestCreateDueToday(t *testing.T) {
	p := validPayload()
	p["due_date"] = "2026-10-19"
	_, err := newTestValidator().Create(p)
	require.NoError(t, err)
}

func TestCreateUsesCallerClockLocation(t *testing.T) {
	// 01:00 on the 20th in UTC+5 is still the 19th in UTC.
	zone := time.FixedZone("UTC+5", 5*60*60)
	v := &Validator{Now: func() time.Time { return time.Date(2026, time.October, 20, 1, 0, 0, 0, zone) }}

	p := validPayload()
	p["due_date"] = "2026-10-19"
	_, err := v.Create(p)
	errs := requireErrors(t, err)
	assert.True(t, errs.Has(FieldDueDate, KindDateInPast))
}

func TestCreateEmptyPayloadReportsAllMissingInOrder(t *testing.T) {
	_, err := newTestValidator().Create(map[string]any{})
	errs := requireErrors(t, err)

	require.Len(t, errs, 3)
	for i, field := range []string{FieldTitle, FieldDueDate, FieldPriority} {
		assert.Equal(t, field, errs[i].Field)
		assert.Equal(t, KindMissingField, errs[i].Kind)
		assert.Equal(t, MsgFieldRequired, errs[i].Message)
	}
}

func TestCreateCollectsEveryViolationByPhase(t *testing.T) {
	_, err := newTestValidator().Create(map[string]any{
		"title":    "",
		"priority": json.Number("9"),
		"due_date": "07/01/2024",
		"status":   "archived",
		"tags":     "not-a-list",
	})
	errs := requireErrors(t, err)

	got := make([]Kind, len(errs))
	for i, fe := range errs {
		got[i] = fe.Kind
	}
	assert.Equal(t, []Kind{
		KindInvalidType,       // tags
		KindInvalidDateFormat, // due_date
		KindEmptyTitle,
		KindOutOfRange,
		KindInvalidStatus,
	}, got)
}

func TestCreateMissingBeforeTypeErrors(t *testing.T) {
	_, err := newTestValidator().Create(map[string]any{
		"priority": "high",
		"due_date": "2026-11-01",
	})
	errs := requireErrors(t, err)
	require.Len(t, errs, 2)
	assert.Equal(t, FieldTitle, errs[0].Field)
	assert.Equal(t, KindMissingField, errs[0].Kind)
	assert.Equal(t, FieldPriority, errs[1].Field)
	assert.Equal(t, KindInvalidType, errs[1].Kind)
}

func TestStatusRules(t *testing.T) {
	tests := []struct {
		name   string
		status any
		msg    string
		kind   Kind
	}{
		{name: "unknown", status: "archived", msg: MsgStatusInvalid, kind: KindInvalidStatus},
		{name: "empty", status: "", msg: MsgStatusNull, kind: KindInvalidStatus},
		{name: "null", status: nil, msg: MsgStatusNull, kind: KindInvalidStatus},
		{name: "too long", status: strings.Repeat("T", 255), msg: MsgStatusTooLong, kind: KindInvalidStatus},
		{name: "number", status: json.Number("2"), msg: MsgStatusInvalid, kind: KindInvalidStatus},
		{name: "bool", status: true, msg: MsgStatusInvalid, kind: KindInvalidStatus},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := newTestValidator().Update(map[string]any{"status": tc.status})
			errs := requireErrors(t, err)
			require.Len(t, errs, 1)
			assert.Equal(t, FieldStatus, errs[0].Field)
			assert.Equal(t, tc.kind, errs[0].Kind)
			assert.Equal(t, tc.msg, errs[0].Message)
		})
	}
}

func TestUpdatePartialFields(t *testing.T) {
	p, err := newTestValidator().Update(map[string]any{"completed": true, "unexpected": "field"})
	require.NoError(t, err)

	require.NotNil(t, p.Status)
	assert.Equal(t, models.StatusCompleted, *p.Status)
	assert.Nil(t, p.Title)
	assert.Nil(t, p.Priority)
	assert.False(t, p.Empty())
}

func TestUpdateExplicitStatusWinsOverCompleted(t *testing.T) {
	p, err := newTestValidator().Update(map[string]any{"completed": true, "status": "in_progress"})
	require.NoError(t, err)
	require.NotNil(t, p.Status)
	assert.Equal(t, models.StatusInProgress, *p.Status)
}

func TestUpdateEmptyPayload(t *testing.T) {
	p, err := newTestValidator().Update(map[string]any{})
	require.NoError(t, err)
	assert.True(t, p.Empty())
}

func TestUpdateAllowsPastDueDate(t *testing.T) {
	p, err := newTestValidator().Update(map[string]any{"due_date": "2020-01-01"})
	require.NoError(t, err)
	require.NotNil(t, p.DueDate)
	assert.Equal(t, "2020-01-01", p.DueDate.String())
}

func TestUpdateFailsFast(t *testing.T) {
	_, err := newTestValidator().Update(map[string]any{
		"title":    "",
		"priority": json.Number("0"),
		"status":   "archived",
	})
	errs := requireErrors(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, KindEmptyTitle, errs[0].Kind)
}

func TestUpdateNullHandling(t *testing.T) {
	p, err := newTestValidator().Update(map[string]any{"description": nil, "category": nil, "tags": nil})
	require.NoError(t, err)
	assert.True(t, p.ClearDescription)
	assert.True(t, p.ClearCategory)
	assert.True(t, p.SetTags)
	assert.Nil(t, p.Tags)

	_, err = newTestValidator().Update(map[string]any{"priority": nil})
	errs := requireErrors(t, err)
	assert.True(t, errs.Has(FieldPriority, KindMissingField))
}

func TestUpdateCompletedMustBeBool(t *testing.T) {
	_, err := newTestValidator().Update(map[string]any{"completed": "yes"})
	errs := requireErrors(t, err)
	assert.True(t, errs.Has(FieldCompleted, KindInvalidType))
}

func TestErrorsMessage(t *testing.T) {
	errs := Errors{
		{Field: FieldTitle, Kind: KindEmptyTitle, Message: MsgEmptyTitle},
		{Field: FieldPriority, Kind: KindOutOfRange, Message: MsgPriorityRange},
	}
	assert.Equal(t, "title: Title must not be empty; priority: Priority must be between 1 and 5", errs.Error())
}
