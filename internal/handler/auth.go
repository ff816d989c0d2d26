package handler

import (
    "context"
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/mrjaketay/timeApp-sub001/internal/config"
    "github.com/mrjaketay/timeApp-sub001/internal/model"
    "github.com/mrjaketay/timeApp-sub001/internal/obs"
    "github.com/mrjaketay/timeApp-sub001/internal/repository"
    "github.com/mrjaketay/timeApp-sub001/internal/service"
    "github.com/mrjaketay/timeApp-sub001/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
    actors
    Cfg      config.Config
    Users    *repository.UserRepo
    Tokens   *repository.TokenRepo
    Identity *service.IdentityService
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo, id *service.IdentityService, a *service.ActorResolver) *AuthHandler {
    return &AuthHandler{actors: actors{Actors: a}, Cfg: cfg, Users: u, Tokens: t, Identity: id}
}

// ----- DTOs -----

type registerReq struct {
    Name        string `json:"name"`
    Email       string `json:"email"`
    Password    string `json:"password"`
    CompanyName string `json:"companyName"`
    Role        string `json:"role"` // EMPLOYER | EMPLOYEE
}
type loginReq struct {
    Email    string `json:"email"`
    Password string `json:"password"`
}
type refreshReq struct {
    RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}
type userPart struct {
    ID    string     `json:"id"`
    Name  string     `json:"name,omitempty"`
    Email string     `json:"email"`
    Role  model.Role `json:"role"`
}
type authResp struct {
    Success bool      `json:"success"`
    User    userPart  `json:"user"`
    Access  tokenPart `json:"access"`
    Refresh tokenPart `json:"refresh"`
}

// issue signs an access token and stores a fresh refresh token for u.
func (h *AuthHandler) issue(ctx context.Context, u *model.User) (authResp, error) {
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return authResp{}, err
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return authResp{}, err
    }
    if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return authResp{}, err
    }
    return authResp{
        Success: true,
        User:    userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role},
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
    }, nil
}

// Register: create the account (and company for employers) and return tokens.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return badBody(c)
    }
    ctx, cancel := requestCtx(c)
    defer cancel()

    reg, err := h.Identity.Register(ctx, service.RegisterInput{
        Name:        req.Name,
        Email:       req.Email,
        Password:    req.Password,
        CompanyName: req.CompanyName,
        Role:        req.Role,
    })
    if err != nil {
        return respondError(c, err)
    }
    resp, err := h.issue(ctx, reg.User)
    if err != nil {
        obs.Error("issue tokens", err, map[string]any{"user_id": reg.User.ID})
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
    }
    out := echo.Map{"success": true, "user": resp.User, "access": resp.Access, "refresh": resp.Refresh}
    if reg.Company != nil {
        out["company"] = reg.Company
    }
    return c.JSON(http.StatusCreated, out)
}

// Login: verify and return new pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return badBody(c)
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
    }

    ctx, cancel := requestCtx(c)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
        }
        return respondError(c, err)
    }
    if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }
    resp, err := h.issue(ctx, u)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, resp)
}

// Refresh: validate by hash, revoke old, issue new.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
    }
    hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

    ctx, cancel := requestCtx(c)
    defer cancel()

    userID, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        if errors.Is(err, repository.ErrRefreshInvalid) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
        }
        return respondError(c, err)
    }
    if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
        if errors.Is(err, repository.ErrRefreshInvalid) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
        }
        return respondError(c, err)
    }
    u, err := h.Users.GetByID(ctx, userID)
    if err != nil {
        if errors.Is(err, repository.ErrUserNotFound) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
        }
        return respondError(c, err)
    }
    if !u.IsActive {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
    }
    resp, err := h.issue(ctx, u)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, resp)
}

// Logout revokes one session when a refresh_token is posted, or every
// session of the bearer when only an access token is present.
func (h *AuthHandler) Logout(c echo.Context) error {
    var uid string
    if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
        if claims, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer ")); err == nil {
            uid = claims.UserID
        }
    }
    var req refreshReq
    _ = c.Bind(&req) // body is optional
    refreshToken := strings.TrimSpace(req.RefreshToken)

    ctx, cancel := requestCtx(c)
    defer cancel()

    switch {
    case refreshToken != "":
        hash := utils.HashRefreshRaw(refreshToken)
        if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
        }
        if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
            if errors.Is(err, repository.ErrRefreshInvalid) {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
            }
            return respondError(c, err)
        }
        return c.NoContent(http.StatusNoContent)
    case uid != "":
        if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
            return respondError(c, err)
        }
        return c.NoContent(http.StatusNoContent)
    }
    return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh_token"})
}

// Me returns the caller's identity with no-cache headers.
func (h *AuthHandler) Me(c echo.Context) error {
    hdr := c.Response().Header()
    hdr.Set("Cache-Control", "no-store, no-cache, must-revalidate")
    hdr.Set("Pragma", "no-cache")
    hdr.Set("Expires", "0")

    ctx, cancel := requestCtx(c)
    defer cancel()
    a, err := h.actor(ctx, c)
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "id":        a.UserID,
        "email":     a.Email,
        "role":      a.Role,
        "companyId": a.CompanyID,
    })
}
