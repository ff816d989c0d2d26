package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/mrjaketay/timeApp-sub001/internal/service"
)

// InvitationHandler serves the invitation lifecycle endpoints.
type InvitationHandler struct {
    actors
    Invitations *service.InvitationService
}

func NewInvitationHandler(inv *service.InvitationService, a *service.ActorResolver) *InvitationHandler {
    return &InvitationHandler{actors: actors{Actors: a}, Invitations: inv}
}

type createInvitationReq struct {
    Name       string `json:"name"`
    Email      string `json:"email"`
    EmployeeID string `json:"employeeId"`
    Phone      string `json:"phone"`
    Address    string `json:"address"`
}

// Create handles POST /invitations.
func (h *InvitationHandler) Create(c echo.Context) error {
    var req createInvitationReq
    if err := c.Bind(&req); err != nil {
        return badBody(c)
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    a, err := h.actor(ctx, c)
    if err != nil {
        return respondError(c, err)
    }
    inv, err := h.Invitations.Create(ctx, a, service.CreateInvitationInput(req))
    if err != nil {
        return respondError(c, err)
    }
    // The token is not part of the invitation JSON; the creator gets it once.
    return c.JSON(http.StatusCreated, echo.Map{"invitation": inv, "token": inv.Token})
}

// List handles GET /invitations.
func (h *InvitationHandler) List(c echo.Context) error {
    ctx, cancel := requestCtx(c)
    defer cancel()

    a, err := h.actor(ctx, c)
    if err != nil {
        return respondError(c, err)
    }
    out, err := h.Invitations.List(ctx, a)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"invitations": out})
}

// Validate handles GET /invitations/validate?token=.  Expired and accepted
// invitations are reported as errors that still carry the invitation.
func (h *InvitationHandler) Validate(c echo.Context) error {
    ctx, cancel := requestCtx(c)
    defer cancel()

    view, err := h.Invitations.Validate(ctx, c.QueryParam("token"))
    if err != nil {
        status, body := errorBody(c, err)
        if view != nil {
            body["invitation"] = view
        }
        return c.JSON(status, body)
    }
    return c.JSON(http.StatusOK, echo.Map{"invitation": view})
}

type acceptReq struct {
    Token string `json:"token"`
}

// Accept handles POST /invitations/accept.
func (h *InvitationHandler) Accept(c echo.Context) error {
    var req acceptReq
    if err := c.Bind(&req); err != nil {
        return badBody(c)
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    profile, err := h.Invitations.Accept(ctx, req.Token)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "success":           true,
        "message":           "Invitation accepted successfully",
        "employeeProfileId": profile.ID,
    })
}
