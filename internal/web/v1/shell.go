package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"github.com/duynhne/backoffice/internal/core"
	"github.com/duynhne/backoffice/internal/core/domain"
	logicv1 "github.com/duynhne/backoffice/internal/logic/v1"
)

// MenuEntry is one navigation link of the Shell.
type MenuEntry struct {
	Label string
	Path  string
}

// Menu lists the screens in navigation order. The first entry is the landing screen.
var Menu = []MenuEntry{
	{Label: "Users", Path: "/users"},
	{Label: "Categories", Path: "/categories"},
	{Label: "Orders", Path: "/orders"},
	{Label: "Items", Path: "/items"},
}

type menuView struct {
	Label  string
	Path   string
	Active bool
}

// Shell owns navigation: the selected screen is the current route.
type Shell struct {
	flashes *Flashes
}

func (s *Shell) menuFor(current string) []menuView {
	out := make([]menuView, len(Menu))
	for i, e := range Menu {
		out[i] = menuView{Label: e.Label, Path: e.Path, Active: e.Path == current}
	}
	return out
}

// RegisterRoutes mounts the Shell and the four CRUD screens on r.
func RegisterRoutes(r *gin.Engine, clients *core.Clients, store sessions.Store) error {
	tmpl, err := parseTemplates()
	if err != nil {
		return err
	}
	r.SetHTMLTemplate(tmpl)

	shell := &Shell{flashes: NewFlashes(store)}

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, Menu[0].Path)
	})

	registerScreen(r, NewScreenHandler("users", logicv1.UserDefinition(), clients.Users, shell))
	registerScreen(r, NewScreenHandler("categories", logicv1.CategoryDefinition(), clients.Categories, shell))
	registerScreen(r, NewScreenHandler("orders", logicv1.OrderDefinition(), clients.Orders, shell))
	registerScreen(r, NewScreenHandler("items", logicv1.ItemDefinition(clients.Categories), clients.Items, shell))
	return nil
}

func registerScreen[T domain.Record, In any](r gin.IRouter, h *ScreenHandler[T, In]) {
	g := r.Group(h.base())
	{
		g.GET("", h.Show)
		g.POST("", h.Submit)
		if h.def.Report != nil {
			g.GET("/report", h.Report)
		}
		g.POST("/:id", h.Submit)
		g.GET("/:id/delete", h.ConfirmDelete)
		g.POST("/:id/delete", h.Delete)
	}
}
