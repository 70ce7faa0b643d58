package v1

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/duynhne/backoffice/internal/core/domain"
	"github.com/duynhne/backoffice/internal/report"
	"github.com/duynhne/backoffice/middleware"
)

// ErrNoReport is returned by Export on screens without a report.
var ErrNoReport = errors.New("screen has no report")

var validate = validator.New()

// ReportSpec declares the PDF export of a screen.
type ReportSpec[T any] struct {
	Title   string
	Prefix  string
	Columns []report.Column[T]
}

// Definition instantiates the CRUD screen pattern for one entity.
type Definition[T domain.Record, In any] struct {
	// Name is the singular display name, e.g. "Item".
	Name   string
	Plural string
	Fields []Field
	// Columns render the table; values are shown raw.
	Columns []report.Column[T]
	Values  func(T) FormValues
	Input   func(FormValues) (In, FieldErrors)
	// Label names a record in the delete prompt.
	Label  func(T) string
	Report *ReportSpec[T]
}

type screenOptions struct {
	reload bool
}

// ScreenOption configures a Screen.
type ScreenOption func(*screenOptions)

// WithoutReload skips the Load that normally follows a successful mutation.
// Callers that redirect and load on the next request use it.
func WithoutReload() ScreenOption {
	return func(o *screenOptions) { o.reload = false }
}

// Screen is the list, form and delete state of one entity screen. A Screen is
// not safe for concurrent use; mount one per request.
type Screen[T domain.Record, In any] struct {
	def    Definition[T, In]
	client domain.ResourceClient[T, In]
	logger *zap.Logger
	opts   screenOptions

	Records     []T
	LoadFailed  bool
	FormVisible bool
	Mode        FormMode[T]
	Values      FormValues
	Errors      FieldErrors
	Options     map[string][]Option
	Notices     []Notice
	Confirm     *Confirmation
	// Failure is the error of the last failed Submit or Delete.
	Failure error
}

// NewScreen mounts an empty screen.
func NewScreen[T domain.Record, In any](def Definition[T, In], client domain.ResourceClient[T, In], logger *zap.Logger, opts ...ScreenOption) *Screen[T, In] {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := screenOptions{reload: true}
	for _, opt := range opts {
		opt(&o)
	}
	return &Screen[T, In]{
		def:     def,
		client:  client,
		logger:  logger.With(zap.String("screen", def.Plural)),
		opts:    o,
		Records: []T{},
		Values:  FormValues{},
		Options: map[string][]Option{},
	}
}

// Definition returns the entity definition the screen was mounted with.
func (s *Screen[T, In]) Definition() Definition[T, In] {
	return s.def
}

func (s *Screen[T, In]) entity() string {
	return strings.ToLower(s.def.Name)
}

func (s *Screen[T, In]) notify(level Level, msg string) {
	s.Notices = append(s.Notices, Notice{Level: level, Message: msg})
}

// Load replaces Records with the API's list, in server order, and refreshes the
// options of select fields. Option loaders run independently: a failing loader
// leaves its option list empty and does not fail Load. On list failure Records
// is left unchanged and a warning notice is added.
func (s *Screen[T, In]) Load(ctx context.Context) error {
	ctx, span := middleware.StartSpan(ctx, s.entity()+".load", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	var (
		g       errgroup.Group
		mu      sync.Mutex
		records []T
		options = make(map[string][]Option)
	)

	g.Go(func() error {
		list, err := s.client.List(ctx)
		if err != nil {
			return err
		}
		records = list
		return nil
	})

	for _, f := range s.def.Fields {
		if f.Options == nil {
			continue
		}
		g.Go(func() error {
			opts, err := f.Options(ctx)
			if err != nil {
				s.logger.Warn("Failed to load options", zap.String("field", f.Name), zap.Error(err))
				opts = []Option{}
			}
			mu.Lock()
			options[f.Name] = opts
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	s.Options = options
	if err != nil {
		span.RecordError(err)
		s.LoadFailed = true
		s.logger.Error("Failed to load records", zap.Error(err))
		s.notify(LevelWarning, fmt.Sprintf("Failed to load %s", strings.ToLower(s.def.Plural)))
		return fmt.Errorf("load %s: %w", strings.ToLower(s.def.Plural), err)
	}

	s.Records = records
	s.LoadFailed = false
	middleware.AddSpanAttributes(ctx, attribute.Int("records.count", len(records)))
	return nil
}

// Fetch reads one record from the API, for a prompt or form opened by identifier.
func (s *Screen[T, In]) Fetch(ctx context.Context, id string) (T, error) {
	ctx, span := middleware.StartSpan(ctx, s.entity()+".get", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("record.id", id),
	))
	defer span.End()

	rec, err := s.client.Get(ctx, id)
	if err != nil {
		span.RecordError(err)
		var zero T
		return zero, fmt.Errorf("get %s %q: %w", s.entity(), id, err)
	}
	return *rec, nil
}

// OpenCreate shows an empty form for a new record.
func (s *Screen[T, In]) OpenCreate() {
	s.Mode = CreateMode[T]()
	s.Values = FormValues{}
	s.Errors = nil
	s.FormVisible = true
}

// OpenEdit shows the form pre-filled from rec.
func (s *Screen[T, In]) OpenEdit(rec T) {
	s.Mode = EditMode(rec)
	s.Values = s.def.Values(rec)
	s.Errors = nil
	s.FormVisible = true
}

// ResumeEdit reopens the edit form of the record with id without its values,
// for a submit that arrives after the form was opened elsewhere.
func (s *Screen[T, In]) ResumeEdit(id string) {
	s.Mode = EditModeByID[T](id)
	s.Values = FormValues{}
	s.Errors = nil
	s.FormVisible = true
}

// CloseForm hides the form and returns to create mode.
func (s *Screen[T, In]) CloseForm() {
	s.Mode = CreateMode[T]()
	s.Values = FormValues{}
	s.Errors = nil
	s.FormVisible = false
}

// Submit creates or updates a record from values, depending on Mode. Required
// fields are checked first; when one is empty no request is made. On failure
// the form stays open with values preserved.
func (s *Screen[T, In]) Submit(ctx context.Context, values FormValues) bool {
	id, editing := s.Mode.Editing()
	action, done := "create", "created"
	if editing {
		action, done = "update", "updated"
	}

	ctx, span := middleware.StartSpan(ctx, s.entity()+"."+action, trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("record.id", id),
	))
	defer span.End()

	s.Values = s.normalize(values)
	s.FormVisible = true
	s.Failure = nil

	if errs := s.check(ctx, s.Values); len(errs) > 0 {
		s.Errors = errs
		span.SetAttributes(attribute.Bool("request.valid", false))
		return false
	}
	in, errs := s.def.Input(s.Values)
	if len(errs) > 0 {
		s.Errors = errs
		span.SetAttributes(attribute.Bool("request.valid", false))
		return false
	}
	s.Errors = nil
	span.SetAttributes(attribute.Bool("request.valid", true))

	var err error
	if editing {
		_, err = s.client.Update(ctx, id, in)
	} else {
		_, err = s.client.Create(ctx, in)
	}
	if err != nil {
		span.RecordError(err)
		s.Failure = err
		s.logger.Error("Failed to "+action+" record", zap.String("id", id), zap.Error(err))
		s.notify(LevelError, failureMessage(action, s.entity(), err))
		return false
	}

	s.notify(LevelSuccess, fmt.Sprintf("%s %s successfully", s.def.Name, done))
	s.CloseForm()
	if s.opts.reload {
		_ = s.Load(ctx)
	}
	return true
}

// RequestDelete opens the confirmation prompt for rec.
func (s *Screen[T, In]) RequestDelete(rec T) Confirmation {
	c := Confirmation{
		ID:     rec.GetID(),
		Prompt: fmt.Sprintf("Are you sure you want to delete this %s (%s)?", s.entity(), s.def.Label(rec)),
	}
	s.Confirm = &c
	return c
}

// Delete resolves the prompt c. Nothing is sent unless confirmed.
func (s *Screen[T, In]) Delete(ctx context.Context, c Confirmation, confirmed bool) bool {
	s.Confirm = nil
	s.Failure = nil
	if !confirmed {
		return false
	}

	ctx, span := middleware.StartSpan(ctx, s.entity()+".delete", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("record.id", c.ID),
	))
	defer span.End()

	if err := s.client.Delete(ctx, c.ID); err != nil {
		span.RecordError(err)
		s.Failure = err
		s.logger.Error("Failed to delete record", zap.String("id", c.ID), zap.Error(err))
		s.notify(LevelError, failureMessage("delete", s.entity(), err))
		return false
	}

	s.notify(LevelSuccess, s.def.Name+" deleted successfully")
	if s.opts.reload {
		_ = s.Load(ctx)
	}
	return true
}

// Export builds the report of the loaded records and its download filename.
func (s *Screen[T, In]) Export(now time.Time) (report.Table, string, error) {
	if s.def.Report == nil {
		return report.Table{}, "", fmt.Errorf("export %s: %w", strings.ToLower(s.def.Plural), ErrNoReport)
	}
	r := s.def.Report
	return report.Build(r.Title, s.Records, r.Columns), report.Filename(r.Prefix, now), nil
}

func (s *Screen[T, In]) normalize(values FormValues) FormValues {
	out := make(FormValues, len(s.def.Fields))
	for _, f := range s.def.Fields {
		out[f.Name] = values.Get(f.Name)
	}
	return out
}

// check validates required and numeric fields with the validator's map rules.
func (s *Screen[T, In]) check(ctx context.Context, values FormValues) FieldErrors {
	data := make(map[string]interface{}, len(s.def.Fields))
	rules := make(map[string]interface{}, len(s.def.Fields))
	byName := make(map[string]Field, len(s.def.Fields))
	for _, f := range s.def.Fields {
		byName[f.Name] = f
		data[f.Name] = values.Get(f.Name)
		var tags []string
		if f.Required {
			tags = append(tags, "required")
		} else {
			tags = append(tags, "omitempty")
		}
		if f.Kind == KindNumber {
			tags = append(tags, "numeric")
		}
		rules[f.Name] = strings.Join(tags, ",")
	}

	invalid := validate.ValidateMapCtx(ctx, data, rules)
	if len(invalid) == 0 {
		return nil
	}
	errs := make(FieldErrors, len(invalid))
	for name, res := range invalid {
		f := byName[name]
		var verrs validator.ValidationErrors
		if err, ok := res.(error); ok && errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "numeric" {
			errs[name] = f.Label + " must be a number"
			continue
		}
		errs[name] = f.requiredMessage()
	}
	return errs
}

// failureMessage words a mutation failure after its error kind.
func failureMessage(action, entity string, err error) string {
	base := fmt.Sprintf("Failed to %s %s", action, entity)
	switch domain.Kind(err) {
	case domain.ErrNotFound:
		return base + ": it no longer exists"
	case domain.ErrValidation:
		return base + ": the API rejected the submitted values"
	case domain.ErrNetwork:
		return base + ": the API is unreachable"
	default:
		return base
	}
}
