package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/goliatone/go-sitepreview/pkg/content"
	"github.com/goliatone/go-sitepreview/pkg/render"
)

func (a *App) handlePage(c echo.Context) error {
	a.mu.Lock()
	view := render.BuildPage(a.store)
	a.mu.Unlock()

	data := map[string]any{
		"site":     view.Site,
		"features": view.Features,
		"sections": view.Sections,
		"editing":  true,
	}
	if a.theme != nil {
		data["theme_style"] = render.CSSVarsStyle(a.theme.CSSVars)
		if a.theme.AssetURL != nil {
			if url := a.theme.AssetURL("stylesheet"); url != "" {
				data["stylesheet"] = url
			}
		}
	}
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	return a.engine.Render(c.Response(), "page", data)
}

// handleServicePage renders the shared page view with the selected service's
// name stamped into {{serviceName}} tokens. The slug must match one of the
// service item names.
func (a *App) handleServicePage(c echo.Context) error {
	a.mu.Lock()
	view := render.BuildPage(a.store)
	a.mu.Unlock()

	name := serviceName(view, c.Param("slug"))
	if name == "" {
		return echo.NewHTTPError(http.StatusNotFound, "service not found")
	}

	vars := map[string]string{"serviceName": name}
	for i, sec := range view.Sections {
		view.Sections[i].Data = render.SubstituteTokensDeep(sec.Data, vars).(map[string]any)
		for j, field := range sec.Fields {
			view.Sections[i].Fields[j].Display = render.SubstituteTokens(field.Display, vars)
		}
	}

	data := map[string]any{
		"site":     view.Site,
		"features": view.Features,
		"sections": view.Sections,
		"service":  name,
		"editing":  true,
	}
	if a.theme != nil {
		data["theme_style"] = render.CSSVarsStyle(a.theme.CSSVars)
		if a.theme.AssetURL != nil {
			if url := a.theme.AssetURL("stylesheet"); url != "" {
				data["stylesheet"] = url
			}
		}
	}
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	return a.engine.Render(c.Response(), "page", data)
}

func serviceName(view *render.PageView, slug string) string {
	for _, sec := range view.Sections {
		items, _ := sec.Data["items"].([]any)
		for _, item := range items {
			entry, _ := item.(map[string]any)
			if name, _ := entry["name"].(string); name != "" && slugify(name) == slug {
				return name
			}
		}
	}
	return ""
}

func slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}

func (a *App) handleBlog(c echo.Context) error {
	if a.posts == nil || !a.blogEnabled() {
		return echo.NewHTTPError(http.StatusNotFound, "blog is not enabled")
	}
	posts, err := a.posts.ListPosts(c.Request().Context(), c.QueryParam("tag"))
	if err != nil {
		return err
	}

	a.mu.Lock()
	site := a.store.SiteValues()
	a.mu.Unlock()

	data := map[string]any{
		"site":  site,
		"posts": posts,
	}
	if a.theme != nil {
		data["theme_style"] = render.CSSVarsStyle(a.theme.CSSVars)
	}
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	return a.engine.Render(c.Response(), "blog", data)
}

func (a *App) handleBlogPost(c echo.Context) error {
	if a.posts == nil || !a.blogEnabled() {
		return echo.NewHTTPError(http.StatusNotFound, "blog is not enabled")
	}
	article, err := a.posts.GetPost(c.Request().Context(), c.Param("slug"))
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "post not found")
		}
		return err
	}
	return c.JSON(http.StatusOK, article)
}

func (a *App) blogEnabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	enabled, _ := a.store.FeatureValues()["blogEnabled"].(bool)
	return enabled
}

func (a *App) handleState(c echo.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return c.JSON(http.StatusOK, map[string]any{
		"hasChanges": a.store.HasChanges(),
		"patch":      a.store.Patch(),
	})
}

func (a *App) handleGetValue(c echo.Context) error {
	path := c.QueryParam("path")
	if path == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "path query parameter is required")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return c.JSON(http.StatusOK, map[string]any{
		"path":     path,
		"value":    a.store.Read(path),
		"editable": a.store.IsEditable(path),
	})
}

type setValueRequest struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

func (a *App) handleSetValue(c echo.Context) error {
	var req setValueRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Path == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "path is required")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.store.IsEditable(req.Path) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "path is not editable")
	}
	a.store.Write(req.Path, req.Value)
	return c.JSON(http.StatusOK, map[string]any{
		"path":  req.Path,
		"value": a.store.Read(req.Path),
	})
}

func (a *App) handleListSections(c echo.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return c.JSON(http.StatusOK, a.store.ListSections())
}

func (a *App) handleSectionTypes(c echo.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return c.JSON(http.StatusOK, a.store.AvailableSectionTypes())
}

type addSectionRequest struct {
	Type     string `json:"type"`
	Position *int   `json:"position,omitempty"`
}

func (a *App) handleAddSection(c echo.Context) error {
	var req addSectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Type == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "type is required")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if req.Position != nil {
		a.store.AddSectionAt(req.Type, *req.Position)
	} else {
		a.store.AddSection(req.Type)
	}
	return c.JSON(http.StatusOK, a.store.ListSections())
}

func (a *App) handleRemoveSection(c echo.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store.RemoveSection(c.Param("id"))
	return c.JSON(http.StatusOK, a.store.ListSections())
}

type itemRequest struct {
	Path  string `json:"path"`
	Index int    `json:"index"`
	From  int    `json:"from"`
	To    int    `json:"to"`
}

func (a *App) handleAddItem(c echo.Context) error {
	var req itemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Path == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "path is required")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.store.AddItem(req.Path)
	return c.JSON(http.StatusOK, map[string]any{
		"path":   req.Path,
		"value":  a.store.Read(req.Path),
		"canAdd": a.store.CanAddItem(req.Path),
	})
}

func (a *App) handleRemoveItem(c echo.Context) error {
	var req itemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Path == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "path is required")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.store.RemoveItem(req.Path, req.Index)
	return c.JSON(http.StatusOK, map[string]any{
		"path":  req.Path,
		"value": a.store.Read(req.Path),
	})
}

func (a *App) handleMoveItem(c echo.Context) error {
	var req itemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Path == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "path is required")
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.store.MoveItem(req.Path, req.From, req.To)
	return c.JSON(http.StatusOK, map[string]any{
		"path":  req.Path,
		"value": a.store.Read(req.Path),
	})
}

func (a *App) handlePublish(c echo.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.store.Publish(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "publish failed, edits preserved")
	}
	return c.JSON(http.StatusOK, map[string]any{"published": true})
}

func (a *App) handleDiscard(c echo.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.store.Discard()
	return c.JSON(http.StatusOK, map[string]any{"hasChanges": a.store.HasChanges()})
}
