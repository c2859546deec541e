package apiv1

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/searchd-io/searchd/pkg/fetch"
	"github.com/searchd-io/searchd/pkg/sessions"
	"github.com/searchd-io/searchd/pkg/sources"
	"github.com/searchd-io/searchd/pkg/types"
)

type SearchGroup struct {
	routerGroup *echo.Group
	source      sources.Source
	manager     *sessions.Manager
}

// SessionInputRequest carries one input revision for a session. Exactly one
// of Q or Page should be set: keystrokes are debounced, page changes fetch
// immediately.
type SessionInputRequest struct {
	Q    *string `json:"q,omitempty"`
	Page *int    `json:"page,omitempty"`
}

// SessionStateEvent is the SSE payload streamed to session clients.
type SessionStateEvent struct {
	Documents []types.SearchDocument `json:"documents"`
	Total     int                    `json:"total"`
	Page      int                    `json:"page"`
	Loading   bool                   `json:"loading"`
	Error     string                 `json:"error,omitempty"`
}

func NewSearchGroup(g *echo.Group, source sources.Source, manager *sessions.Manager) *SearchGroup {
	group := &SearchGroup{
		routerGroup: g,
		source:      source,
		manager:     manager,
	}
	group.registerRoutes()
	return group
}

func (g *SearchGroup) registerRoutes() {
	g.routerGroup.GET("/search", g.Search)
	g.routerGroup.POST("/sessions", g.CreateSession)
	g.routerGroup.POST("/sessions/:id/input", g.SessionInput)
	g.routerGroup.GET("/sessions/:id/state", g.SessionState)
	g.routerGroup.GET("/sessions/:id/events", g.SessionEvents)
	g.routerGroup.DELETE("/sessions/:id", g.DeleteSession)
}

// Search performs a one-shot query against the configured source
func (g *SearchGroup) Search(c echo.Context) error {
	req := types.SearchRequest{
		Query: c.QueryParam("q"),
	}
	if page := c.QueryParam("page"); page != "" {
		p, err := strconv.Atoi(page)
		if err != nil || p < 0 {
			return ErrorResponse(c, http.StatusBadRequest, "invalid page")
		}
		req.Page = p
	}
	if perPage := c.QueryParam("per_page"); perPage != "" {
		pp, err := strconv.Atoi(perPage)
		if err != nil || pp <= 0 {
			return ErrorResponse(c, http.StatusBadRequest, "invalid per_page")
		}
		req.PerPage = pp
	}

	resp, err := g.source.Search(c.Request().Context(), req)
	if err != nil {
		log.Warn().Err(err).Str("query", req.Query).Msg("one-shot search failed")
		return ErrorResponse(c, http.StatusBadGateway, err.Error())
	}

	return c.JSON(http.StatusOK, resp)
}

// CreateSession opens a new interactive session
func (g *SearchGroup) CreateSession(c echo.Context) error {
	s := g.manager.Create()
	return c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    map[string]string{"session_id": s.Id},
	})
}

// SessionInput feeds a query revision or page change into a session
func (g *SearchGroup) SessionInput(c echo.Context) error {
	s, err := g.manager.Get(c.Param("id"))
	if err != nil {
		return ErrorResponse(c, http.StatusNotFound, err.Error())
	}

	var req SessionInputRequest
	if err := c.Bind(&req); err != nil {
		return ErrorResponse(c, http.StatusBadRequest, "invalid request body")
	}

	switch {
	case req.Q != nil:
		s.SetQuery(*req.Q)
	case req.Page != nil:
		if *req.Page < 0 {
			return ErrorResponse(c, http.StatusBadRequest, "invalid page")
		}
		s.SetPage(*req.Page)
	default:
		return ErrorResponse(c, http.StatusBadRequest, "q or page is required")
	}

	return SuccessResponse(c, nil)
}

// SessionState returns the current snapshot, for clients that poll instead
// of streaming
func (g *SearchGroup) SessionState(c echo.Context) error {
	s, err := g.manager.Get(c.Param("id"))
	if err != nil {
		return ErrorResponse(c, http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, stateEvent(s.State()))
}

// SessionEvents streams state snapshots to the client as SSE
func (g *SearchGroup) SessionEvents(c echo.Context) error {
	s, err := g.manager.Get(c.Param("id"))
	if err != nil {
		return ErrorResponse(c, http.StatusNotFound, err.Error())
	}

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache")
	w.Header().Set(echo.HeaderConnection, "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Emit the current state immediately so late subscribers aren't blank.
	if err := writeStateEvent(w, s.State()); err != nil {
		return nil
	}

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-s.Updates():
			if !ok {
				return nil // session torn down
			}
			if err := writeStateEvent(w, snap); err != nil {
				return nil
			}
		}
	}
}

// DeleteSession tears a session down
func (g *SearchGroup) DeleteSession(c echo.Context) error {
	g.manager.Delete(c.Param("id"))
	return SuccessResponse(c, nil)
}

func stateEvent(snap fetch.Snapshot[*types.SearchResponse]) SessionStateEvent {
	event := SessionStateEvent{
		Documents: []types.SearchDocument{},
		Loading:   snap.Loading,
	}
	if snap.Data != nil {
		event.Documents = snap.Data.Documents
		event.Total = snap.Data.Total
		event.Page = snap.Data.Page
	}
	if snap.Err != nil {
		event.Error = snap.Err.Error()
	}
	return event
}

func writeStateEvent(w *echo.Response, snap fetch.Snapshot[*types.SearchResponse]) error {
	payload, err := json.Marshal(stateEvent(snap))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "event: state\ndata: %s\n\n", payload); err != nil {
		return err
	}
	w.Flush()
	return nil
}
