package handler

import (
    "context"      // token issuing runs under the request deadline
    "database/sql" // sql.ErrNoRows on unknown accounts
    "errors"       // errors.Is
    "fmt"          // error wrapping
    "net/http"     // HTTP status codes
    "net/mail"     // email syntax check
    "strings"      // input normalization
    "time"         // token expirations in responses

    "github.com/labstack/echo/v4" // Echo framework for HTTP routing
    "github.com/sirupsen/logrus"  // failure logging

    "github.com/iliyamo/resort-booking/internal/config"     // app configuration
    "github.com/iliyamo/resort-booking/internal/middleware" // caller principal
    "github.com/iliyamo/resort-booking/internal/model"      // roles
    "github.com/iliyamo/resort-booking/internal/repository" // DB repositories
    "github.com/iliyamo/resort-booking/internal/utils"      // hashing and token issuing
)

// AuthHandler bundles dependencies for account and session endpoints.
type AuthHandler struct {
    Cfg    config.Config
    Users  *repository.UserRepo
    Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
    Name     string `json:"name"`
    Email    string `json:"email"`
    Password string `json:"password"`
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
    ID    uint64 `json:"_id"`
    Name  string `json:"name"`
    Email string `json:"email"`
    Role  string `json:"role"`
}
type authResp struct {
    User    userPart  `json:"user"`
    Access  tokenPart `json:"access"`
    Refresh tokenPart `json:"refresh"`
}

const minPasswordLen = 6

// Register creates a regular user account and returns a token pair.  The
// role is never taken from the request; admins only come from the startup
// seed.
func (h *AuthHandler) Register(c echo.Context) error {
    var req registerReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid body")
    }
    req.Name = strings.TrimSpace(req.Name)
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Name == "" || req.Email == "" || req.Password == "" {
        return fail(c, http.StatusBadRequest, "name, email and password required")
    }
    if _, err := mail.ParseAddress(req.Email); err != nil {
        return fail(c, http.StatusBadRequest, "invalid email")
    }
    if len(req.Password) < minPasswordLen {
        return fail(c, http.StatusBadRequest, "password too short")
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    uid, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, model.RoleUser, h.Cfg.BcryptCost)
    if err != nil {
        if errors.Is(err, repository.ErrEmailExists) {
            return fail(c, http.StatusConflict, "email already exists")
        }
        logrus.WithError(err).Error("register: create user failed")
        return fail(c, http.StatusInternalServerError, "create user failed")
    }
    u := model.User{ID: uid, Name: req.Name, Email: req.Email, Role: model.RoleUser}
    resp, err := h.issue(ctx, u)
    if err != nil {
        logrus.WithError(err).WithField("user_id", u.ID).Error("auth: token issue failed")
        return fail(c, http.StatusInternalServerError, "issue tokens failed")
    }
    return c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and returns a new token pair.
func (h *AuthHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return fail(c, http.StatusBadRequest, "invalid body")
    }
    req.Email = strings.ToLower(strings.TrimSpace(req.Email))
    if req.Email == "" || req.Password == "" {
        return fail(c, http.StatusBadRequest, "email/password required")
    }

    ctx, cancel := reqCtx(c)
    defer cancel()

    u, err := h.Users.GetByEmail(ctx, req.Email)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return fail(c, http.StatusUnauthorized, "invalid credentials")
        }
        logrus.WithError(err).Error("login: query failed")
        return fail(c, http.StatusInternalServerError, "query failed")
    }
    if !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return fail(c, http.StatusUnauthorized, "invalid credentials")
    }
    resp, err := h.issue(ctx, u)
    if err != nil {
        logrus.WithError(err).WithField("user_id", u.ID).Error("auth: token issue failed")
        return fail(c, http.StatusInternalServerError, "issue tokens failed")
    }
    return c.JSON(http.StatusOK, resp)
}

// Refresh exchanges a refresh token for a new pair.  The old refresh token
// is revoked in the same transaction that stores the new one, so each token
// can be used once.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req refreshReq
    if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
        return fail(c, http.StatusBadRequest, "refresh_token required")
    }
    hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

    ctx, cancel := reqCtx(c)
    defer cancel()

    userID, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        return fail(c, http.StatusUnauthorized, "invalid refresh")
    }
    u, err := h.Users.GetByID(ctx, userID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return fail(c, http.StatusUnauthorized, "invalid refresh")
        }
        return fail(c, http.StatusInternalServerError, "load user failed")
    }

    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return fail(c, http.StatusInternalServerError, "issue access failed")
    }
    newRef, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return fail(c, http.StatusInternalServerError, "issue refresh failed")
    }
    if err := h.Tokens.Rotate(ctx, u.ID, hash, utils.HashRefreshRaw(newRef.Raw), newRef.Exp); err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            // lost a race with another refresh of the same token
            return fail(c, http.StatusUnauthorized, "invalid refresh")
        }
        return fail(c, http.StatusInternalServerError, "save refresh failed")
    }
    return c.JSON(http.StatusOK, authResp{
        User:    userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role},
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: newRef.Raw, Expires: newRef.Exp},
    })
}

// Logout revokes a single session when a refresh_token is posted, or every
// session of the caller when only a bearer access token is present.
func (h *AuthHandler) Logout(c echo.Context) error {
    var req refreshReq
    _ = c.Bind(&req) // an empty or invalid body simply means no refresh token
    refreshToken := strings.TrimSpace(req.RefreshToken)
    p := middleware.PrincipalFrom(c)

    ctx, cancel := reqCtx(c)
    defer cancel()

    switch {
    case refreshToken != "":
        hash := utils.HashRefreshRaw(refreshToken)
        if _, err := h.Tokens.ValidateRefresh(ctx, hash); err != nil {
            return fail(c, http.StatusUnauthorized, "invalid refresh token")
        }
        if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
            return fail(c, http.StatusInternalServerError, "logout failed")
        }
        return c.NoContent(http.StatusNoContent)
    case p.Authenticated():
        if err := h.Tokens.RevokeAllForUser(ctx, p.UserID); err != nil {
            return fail(c, http.StatusInternalServerError, "logout failed")
        }
        return c.NoContent(http.StatusNoContent)
    default:
        return fail(c, http.StatusBadRequest, "provide Authorization header or refresh_token")
    }
}

// Me returns the caller's profile.
func (h *AuthHandler) Me(c echo.Context) error {
    p := middleware.PrincipalFrom(c)
    if !p.Authenticated() {
        return fail(c, http.StatusUnauthorized, "Unauthorized")
    }
    ctx, cancel := reqCtx(c)
    defer cancel()
    u, err := h.Users.GetByID(ctx, p.UserID)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return fail(c, http.StatusUnauthorized, "account no longer exists")
        }
        return writeError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"success": true, "user": u})
}

// issue creates a token pair for u and stores the refresh token hash.
func (h *AuthHandler) issue(ctx context.Context, u model.User) (authResp, error) {
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, h.Cfg.AccessTTLMin)
    if err != nil {
        return authResp{}, fmt.Errorf("issue access: %w", err)
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return authResp{}, fmt.Errorf("issue refresh: %w", err)
    }
    if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return authResp{}, fmt.Errorf("save refresh: %w", err)
    }
    return authResp{
        User:    userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role},
        Access:  tokenPart{Token: access.Token, Expires: access.Exp},
        Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
    }, nil
}
