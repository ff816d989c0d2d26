package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/mrjaketay/timeApp-sub001/internal/middleware"
    "github.com/mrjaketay/timeApp-sub001/internal/obs"
    "github.com/mrjaketay/timeApp-sub001/internal/service"
)

// SearchHandler serves the typeahead endpoints.
type SearchHandler struct {
    actors
    Search *service.SearchService
}

func NewSearchHandler(s *service.SearchService, a *service.ActorResolver) *SearchHandler {
    return &SearchHandler{actors: actors{Actors: a}, Search: s}
}

// Suggest handles GET /search/:type?q=.  Callers that cannot be resolved
// are treated as anonymous and get an empty list.
func (h *SearchHandler) Suggest(c echo.Context) error {
    kind := c.Param("type")
    if !service.IsSearchType(kind) {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown search type"})
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    var a *service.Actor
    if middleware.UserID(c) != "" {
        resolved, err := h.actor(ctx, c)
        if err != nil && service.KindOf(err) == service.KindInternal {
            obs.Error("search actor", err, map[string]any{"request_id": c.Response().Header().Get(echo.HeaderXRequestID)})
        }
        a = resolved
    }
    out, err := h.Search.Search(ctx, a, kind, c.QueryParam("q"))
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"suggestions": out})
}
