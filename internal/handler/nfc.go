package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/mrjaketay/timeApp-sub001/internal/service"
)

// NFCHandler serves card registration and kiosk taps.
type NFCHandler struct {
    actors
    Cards *service.NFCService
}

func NewNFCHandler(cards *service.NFCService, a *service.ActorResolver) *NFCHandler {
    return &NFCHandler{actors: actors{Actors: a}, Cards: cards}
}

type registerCardReq struct {
    UID               string `json:"uid"`
    EmployeeProfileID string `json:"employeeProfileId"`
}

// Register handles POST /nfc/register.
func (h *NFCHandler) Register(c echo.Context) error {
    var req registerCardReq
    if err := c.Bind(&req); err != nil {
        return badBody(c)
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    a, err := h.actor(ctx, c)
    if err != nil {
        return respondError(c, err)
    }
    card, err := h.Cards.Register(ctx, a, req.UID, req.EmployeeProfileID)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"success": true, "card": card})
}

// List handles GET /nfc/cards.
func (h *NFCHandler) List(c echo.Context) error {
    ctx, cancel := requestCtx(c)
    defer cancel()

    a, err := h.actor(ctx, c)
    if err != nil {
        return respondError(c, err)
    }
    cards, err := h.Cards.List(ctx, a)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"cards": cards})
}

// Deactivate handles POST /nfc/cards/:id/deactivate.
func (h *NFCHandler) Deactivate(c echo.Context) error {
    ctx, cancel := requestCtx(c)
    defer cancel()

    a, err := h.actor(ctx, c)
    if err != nil {
        return respondError(c, err)
    }
    if err := h.Cards.Deactivate(ctx, a, c.Param("id")); err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true})
}

type tapReq struct {
    UID            string   `json:"uid"`
    LocationLat    *float64 `json:"locationLat"`
    LocationLng    *float64 `json:"locationLng"`
    AccuracyMeters float64  `json:"accuracyMeters"`
    Address        string   `json:"address"`
}

// Tap handles POST /nfc/tap from an employer kiosk.
func (h *NFCHandler) Tap(c echo.Context) error {
    var req tapReq
    if err := c.Bind(&req); err != nil {
        return badBody(c)
    }
    if req.LocationLat == nil || req.LocationLng == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "locationLat and locationLng are required"})
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    a, err := h.actor(ctx, c)
    if err != nil {
        return respondError(c, err)
    }
    ev, err := h.Cards.Tap(ctx, a, service.TapInput{
        UID:            req.UID,
        Lat:            *req.LocationLat,
        Lng:            *req.LocationLng,
        AccuracyMeters: req.AccuracyMeters,
        Address:        req.Address,
    })
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"event": ev})
}
