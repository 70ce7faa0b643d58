package v1

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/duynhne/backoffice/internal/core/domain"
	logicv1 "github.com/duynhne/backoffice/internal/logic/v1"
	"github.com/duynhne/backoffice/middleware"
)

// ScreenHandler serves the pages of one CRUD screen. Each request mounts a fresh
// Screen; form and prompt state travels in the URL and the posted form.
type ScreenHandler[T domain.Record, In any] struct {
	path   string
	def    logicv1.Definition[T, In]
	client domain.ResourceClient[T, In]
	shell  *Shell
	now    func() time.Time
}

func NewScreenHandler[T domain.Record, In any](path string, def logicv1.Definition[T, In], client domain.ResourceClient[T, In], shell *Shell) *ScreenHandler[T, In] {
	return &ScreenHandler[T, In]{
		path:   path,
		def:    def,
		client: client,
		shell:  shell,
		now:    time.Now,
	}
}

func (h *ScreenHandler[T, In]) base() string { return "/" + h.path }

func (h *ScreenHandler[T, In]) mount(c *gin.Context) *logicv1.Screen[T, In] {
	return logicv1.NewScreen(h.def, h.client, middleware.GetLoggerFromGinContext(c), logicv1.WithoutReload())
}

// startSpan opens the request span and carries it on c.Request.
func (h *ScreenHandler[T, In]) startSpan(c *gin.Context) trace.Span {
	ctx, span := middleware.StartSpan(c.Request.Context(), "http.request", trace.WithAttributes(
		attribute.String("layer", "web"),
		attribute.String("method", c.Request.Method),
		attribute.String("path", c.Request.URL.Path),
	))
	c.Request = c.Request.WithContext(ctx)
	return span
}

// fetch reads the record with id and reports a failure on the screen.
func (h *ScreenHandler[T, In]) fetch(c *gin.Context, screen *logicv1.Screen[T, In], id string) (T, int) {
	rec, err := screen.Fetch(c.Request.Context(), id)
	if err == nil {
		return rec, http.StatusOK
	}
	msg := h.def.Name + " not found"
	if !errors.Is(err, domain.ErrNotFound) {
		msg = "Failed to load " + strings.ToLower(h.def.Name)
	}
	screen.Notices = append(screen.Notices, logicv1.Notice{Level: logicv1.LevelWarning, Message: msg})
	return rec, failureStatus(nil, err)
}

// Show handles GET /{path}. ?form=new opens the create form, ?edit={id} the edit form.
func (h *ScreenHandler[T, In]) Show(c *gin.Context) {
	span := h.startSpan(c)
	defer span.End()

	screen := h.mount(c)
	status := http.StatusOK
	_ = screen.Load(c.Request.Context())

	switch {
	case c.Query("form") == "new":
		screen.OpenCreate()
	case c.Query("edit") != "":
		id := c.Query("edit")
		span.SetAttributes(attribute.String("record.id", id))
		var rec T
		if rec, status = h.fetch(c, screen, id); status == http.StatusOK {
			screen.OpenEdit(rec)
		}
	}
	h.render(c, status, screen)
}

// Submit handles POST /{path} (create) and POST /{path}/{id} (update).
func (h *ScreenHandler[T, In]) Submit(c *gin.Context) {
	span := h.startSpan(c)
	defer span.End()

	screen := h.mount(c)
	if id := c.Param("id"); id != "" {
		span.SetAttributes(attribute.String("record.id", id))
		screen.ResumeEdit(id)
	} else {
		screen.OpenCreate()
	}

	if screen.Submit(c.Request.Context(), bindForm(c, h.def.Fields)) {
		middleware.GetLoggerFromGinContext(c).Info("Record saved", zap.String("screen", h.path))
		h.shell.flashes.Add(c, screen.Notices...)
		c.Redirect(http.StatusSeeOther, h.base())
		return
	}

	status := failureStatus(screen.Errors, screen.Failure)
	if screen.Failure != nil {
		span.RecordError(screen.Failure)
	}
	_ = screen.Load(c.Request.Context())
	h.render(c, status, screen)
}

// ConfirmDelete handles GET /{path}/{id}/delete and renders the prompt naming the record.
func (h *ScreenHandler[T, In]) ConfirmDelete(c *gin.Context) {
	span := h.startSpan(c)
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("record.id", id))

	screen := h.mount(c)
	_ = screen.Load(c.Request.Context())
	rec, status := h.fetch(c, screen, id)
	if status == http.StatusOK {
		screen.RequestDelete(rec)
	}
	h.render(c, status, screen)
}

// Delete handles POST /{path}/{id}/delete. Only confirm=yes deletes.
func (h *ScreenHandler[T, In]) Delete(c *gin.Context) {
	span := h.startSpan(c)
	defer span.End()

	id := c.Param("id")
	span.SetAttributes(attribute.String("record.id", id))

	screen := h.mount(c)
	if !confirmed(c) {
		screen.Delete(c.Request.Context(), logicv1.Confirmation{ID: id}, false)
		c.Redirect(http.StatusSeeOther, h.base())
		return
	}

	if screen.Delete(c.Request.Context(), logicv1.Confirmation{ID: id}, true) {
		middleware.GetLoggerFromGinContext(c).Info("Record deleted", zap.String("screen", h.path), zap.String("id", id))
		h.shell.flashes.Add(c, screen.Notices...)
		c.Redirect(http.StatusSeeOther, h.base())
		return
	}

	span.RecordError(screen.Failure)
	status := failureStatus(nil, screen.Failure)
	_ = screen.Load(c.Request.Context())
	h.render(c, status, screen)
}

// Report handles GET /{path}/report and downloads the loaded records as PDF.
func (h *ScreenHandler[T, In]) Report(c *gin.Context) {
	span := h.startSpan(c)
	defer span.End()

	screen := h.mount(c)
	if err := screen.Load(c.Request.Context()); err != nil {
		span.RecordError(err)
		h.render(c, failureStatus(nil, err), screen)
		return
	}

	table, filename, err := screen.Export(h.now())
	if err != nil {
		span.RecordError(err)
		c.String(http.StatusNotFound, "no report for %s", h.path)
		return
	}

	var buf bytes.Buffer
	if err := table.WritePDF(&buf); err != nil {
		span.RecordError(err)
		middleware.GetLoggerFromGinContext(c).Error("Failed to render report", zap.Error(err))
		c.String(http.StatusInternalServerError, "Failed to generate report")
		return
	}

	span.SetAttributes(attribute.Int("report.rows", len(table.Rows)))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func (h *ScreenHandler[T, In]) render(c *gin.Context, status int, screen *logicv1.Screen[T, In]) {
	notices := append(h.shell.flashes.Pop(c), screen.Notices...)
	c.HTML(status, "screen.html", h.page(screen, notices))
}

func (h *ScreenHandler[T, In]) page(screen *logicv1.Screen[T, In], notices []logicv1.Notice) pageView {
	p := pageView{
		Title:      h.def.Plural,
		Singular:   h.def.Name,
		Base:       h.base(),
		Menu:       h.shell.menuFor(h.base()),
		Notices:    notices,
		LoadFailed: screen.LoadFailed,
		HasReport:  h.def.Report != nil,
	}
	for _, col := range h.def.Columns {
		p.Columns = append(p.Columns, col.Title)
	}
	for _, rec := range screen.Records {
		row := rowView{ID: rec.GetID(), Path: h.base() + "/" + url.PathEscape(rec.GetID())}
		for _, col := range h.def.Columns {
			row.Cells = append(row.Cells, col.Value(rec))
		}
		p.Rows = append(p.Rows, row)
	}

	if screen.FormVisible {
		form := &formView{Title: "Add " + h.def.Name, Action: h.base(), Submit: "Create"}
		if id, editing := screen.Mode.Editing(); editing {
			form.Title = "Edit " + h.def.Name
			form.Action = h.base() + "/" + url.PathEscape(id)
			form.Submit = "Update"
		}
		for _, f := range h.def.Fields {
			form.Fields = append(form.Fields, fieldView{
				Name:     f.Name,
				Label:    f.Label,
				Kind:     string(f.Kind),
				Required: f.Required,
				Value:    screen.Values[f.Name],
				Error:    screen.Errors[f.Name],
				Options:  screen.Options[f.Name],
			})
		}
		p.Form = form
	}

	if screen.Confirm != nil {
		p.Confirm = &confirmView{
			Prompt: screen.Confirm.Prompt,
			Action: h.base() + "/" + url.PathEscape(screen.Confirm.ID) + "/delete",
		}
	}
	return p
}

type pageView struct {
	Title      string
	Singular   string
	Base       string
	Menu       []menuView
	Notices    []logicv1.Notice
	LoadFailed bool
	HasReport  bool
	Columns    []string
	Rows       []rowView
	Form       *formView
	Confirm    *confirmView
}

type rowView struct {
	ID    string
	Path  string
	Cells []string
}

type formView struct {
	Title  string
	Action string
	Submit string
	Fields []fieldView
}

type fieldView struct {
	Name     string
	Label    string
	Kind     string
	Required bool
	Value    string
	Error    string
	Options  []logicv1.Option
}

// Selected reports whether opt is the current value of a select field.
func (f fieldView) Selected(opt logicv1.Option) bool {
	return strings.TrimSpace(f.Value) == opt.Value
}

type confirmView struct {
	Prompt string
	Action string
}
