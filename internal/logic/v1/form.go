package v1

import (
	"context"
	"strings"

	"github.com/duynhne/backoffice/internal/core/domain"
)

// FieldKind selects the input widget a form field renders as.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindTextArea FieldKind = "textarea"
	KindNumber   FieldKind = "number"
	KindSelect   FieldKind = "select"
)

// Option is one choice of a select field.
type Option struct {
	Value string
	Label string
}

// OptionLoader fetches the choices of a select field.
type OptionLoader func(ctx context.Context) ([]Option, error)

// Field describes one form input.
type Field struct {
	Name     string
	Label    string
	Kind     FieldKind
	Required bool
	// Message replaces the default "<Label> is required" text.
	Message string
	Options OptionLoader
}

func (f Field) requiredMessage() string {
	if f.Message != "" {
		return f.Message
	}
	return f.Label + " is required"
}

// FormValues holds submitted form input keyed by field name.
type FormValues map[string]string

// Get returns the trimmed value of name.
func (v FormValues) Get(name string) string {
	return strings.TrimSpace(v[name])
}

// FieldErrors maps a field name to the message shown next to it.
type FieldErrors map[string]string

// FormMode is either Create or Edit of one record.
type FormMode[T domain.Record] struct {
	editing bool
	id      string
	record  *T
}

// CreateMode is the zero FormMode.
func CreateMode[T domain.Record]() FormMode[T] {
	return FormMode[T]{}
}

// EditMode edits rec.
func EditMode[T domain.Record](rec T) FormMode[T] {
	return FormMode[T]{editing: true, id: rec.GetID(), record: &rec}
}

// EditModeByID edits the record with id when only its identifier survived, as
// across the request that opened the form and the one that submits it.
func EditModeByID[T domain.Record](id string) FormMode[T] {
	return FormMode[T]{editing: true, id: id}
}

// Editing reports whether the form edits an existing record, and which.
func (m FormMode[T]) Editing() (string, bool) {
	return m.id, m.editing
}

// Record returns the record being edited when it is known.
func (m FormMode[T]) Record() (T, bool) {
	if m.record == nil {
		var zero T
		return zero, false
	}
	return *m.record, true
}

// Level is the severity of a Notice.
type Level string

const (
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a transient, non-blocking notification.
type Notice struct {
	Level   Level
	Message string
}

// Confirmation is a pending delete prompt naming one record.
type Confirmation struct {
	ID     string
	Prompt string
}
