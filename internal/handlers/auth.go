package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dimitrije/portfolio-api/internal/auth"
	"github.com/dimitrije/portfolio-api/internal/middleware"
	"github.com/dimitrije/portfolio-api/internal/provider"
	"github.com/dimitrije/portfolio-api/pkg/dto"
	"github.com/m1z23r/drift/pkg/drift"
)

const msgSessionMissing = "Auth session missing!"

type AuthHandler struct {
	// wait bounds how long a request waits for the visitor's first session check.
	wait time.Duration
}

func NewAuthHandler(wait time.Duration) *AuthHandler {
	return &AuthHandler{wait: wait}
}

func (h *AuthHandler) visitor(c *drift.Context) *auth.Visitor {
	v := middleware.GetVisitor(c)
	if v == nil {
		c.InternalServerError("visitor not initialised")
	}
	return v
}

func (h *AuthHandler) waitReady(c *drift.Context, v *auth.Visitor) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.wait)
	defer cancel()
	_ = v.Store.WaitReady(ctx)
}

// failed reports the visitor's last auth error, as 503 when the provider is
// not configured at all.
func (h *AuthHandler) failed(c *drift.Context, v *auth.Visitor, status int) {
	state := v.Store.State()
	if !state.Configured {
		status = http.StatusServiceUnavailable
	}
	respondError(c, status, state.Error)
}

func sessionResponse(state auth.State) dto.SessionResponse {
	resp := dto.SessionResponse{
		IsAdmin:    state.IsAdmin,
		Loading:    state.Loading,
		Configured: state.Configured,
		Error:      state.Error,
	}
	if state.Identity != nil {
		resp.User = &dto.UserResponse{
			ID:               state.Identity.ID,
			Email:            state.Identity.Email,
			Provider:         state.Identity.Provider,
			EmailConfirmedAt: state.Identity.EmailConfirmedAt,
		}
	}
	if state.Session != nil {
		expires := state.Session.ExpiresAt
		resp.ExpiresAt = &expires
	}
	return resp
}

func (h *AuthHandler) Session(c *drift.Context) {
	v := h.visitor(c)
	if v == nil {
		return
	}
	h.waitReady(c, v)
	respond(c, http.StatusOK, sessionResponse(v.Store.State()))
}

func (h *AuthHandler) SignIn(c *drift.Context) {
	v := h.visitor(c)
	if v == nil {
		return
	}

	var req dto.SignInRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if !validEmail(req.Email) {
		respondError(c, http.StatusBadRequest, msgInvalidEmail)
		return
	}
	if !validPassword(req.Password) {
		respondError(c, http.StatusBadRequest, msgPasswordTooShort)
		return
	}

	h.waitReady(c, v)
	res := v.Ops.SignIn(c.Request.Context(), req.Email, req.Password)
	if !res.Success {
		h.failed(c, v, http.StatusUnauthorized)
		return
	}

	respond(c, http.StatusOK, dto.RedirectResponse{
		Redirect: auth.DestinationAfterSignIn(res.IsAdmin),
		IsAdmin:  res.IsAdmin,
	})
}

func (h *AuthHandler) SignUp(c *drift.Context) {
	v := h.visitor(c)
	if v == nil {
		return
	}

	var req dto.SignUpRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if !validEmail(req.Email) {
		respondError(c, http.StatusBadRequest, msgInvalidEmail)
		return
	}
	if !validPassword(req.Password) {
		respondError(c, http.StatusBadRequest, msgPasswordTooShort)
		return
	}
	if req.Password != req.ConfirmPassword {
		respondError(c, http.StatusBadRequest, msgPasswordMismatch)
		return
	}

	h.waitReady(c, v)
	res := v.Ops.SignUp(c.Request.Context(), req.Email, req.Password)
	if !res.Success {
		h.failed(c, v, http.StatusBadRequest)
		return
	}

	respond(c, http.StatusOK, dto.SignUpResponse{Outcome: string(res.Outcome)})
}

func (h *AuthHandler) ForgotPassword(c *drift.Context) {
	v := h.visitor(c)
	if v == nil {
		return
	}

	var req dto.ForgotPasswordRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if !validEmail(req.Email) {
		respondError(c, http.StatusBadRequest, msgInvalidEmail)
		return
	}

	if !v.Ops.ResetPassword(c.Request.Context(), req.Email) {
		h.failed(c, v, http.StatusBadGateway)
		return
	}
	respond(c, http.StatusOK, nil)
}

// SignOut always leaves the visitor signed out locally, even when the
// provider call fails.
func (h *AuthHandler) SignOut(c *drift.Context) {
	v := h.visitor(c)
	if v == nil {
		return
	}

	if !v.Ops.SignOut(c.Request.Context()) {
		h.failed(c, v, http.StatusBadGateway)
		return
	}
	respond(c, http.StatusOK, dto.RedirectResponse{Redirect: auth.HomePath})
}

// OAuth sends the browser to the provider's consent page.
func (h *AuthHandler) OAuth(c *drift.Context) {
	v := h.visitor(c)
	if v == nil {
		return
	}

	res := v.Ops.SignInWithOAuth(c.Request.Context(), c.Param("provider"))
	if !res.Success {
		h.failed(c, v, http.StatusBadRequest)
		return
	}
	http.Redirect(c.Response, c.Request, res.URL, http.StatusFound)
}

// Callback is where OAuth providers and confirmation emails land.
func (h *AuthHandler) Callback(c *drift.Context) {
	v := h.visitor(c)
	if v == nil {
		return
	}

	if desc := c.QueryParam("error_description"); desc != "" {
		v.Store.SetError(desc)
		respondError(c, http.StatusBadRequest, desc)
		return
	}

	h.waitReady(c, v)
	ctx := c.Request.Context()

	var res auth.SignInResult
	switch {
	case c.QueryParam("code") != "":
		res = v.Ops.CompleteOAuth(ctx, c.QueryParam("state"), c.QueryParam("code"))
	case c.QueryParam("token") != "" && c.QueryParam("type") == provider.OTPRecovery:
		target := "/auth/reset-password?" + url.Values{"token": {c.QueryParam("token")}}.Encode()
		http.Redirect(c.Response, c.Request, target, http.StatusFound)
		return
	case c.QueryParam("token") != "":
		res = v.Ops.ConfirmEmail(ctx, c.QueryParam("token"))
	default:
		// already signed in, e.g. a reloaded callback page
		state := v.Store.State()
		res = auth.SignInResult{Success: state.Authenticated(), IsAdmin: state.IsAdmin}
		if !res.Success {
			respondError(c, http.StatusBadRequest, msgSessionMissing)
			return
		}
	}

	if !res.Success {
		h.failed(c, v, http.StatusBadRequest)
		return
	}
	http.Redirect(c.Response, c.Request, auth.DestinationAfterSignIn(res.IsAdmin), http.StatusFound)
}

// RecoveryLanding redeems the token from a recovery email so that the
// password form can be submitted.
func (h *AuthHandler) RecoveryLanding(c *drift.Context) {
	v := h.visitor(c)
	if v == nil {
		return
	}

	if desc := c.QueryParam("error_description"); desc != "" {
		v.Store.SetError(desc)
		respondError(c, http.StatusBadRequest, desc)
		return
	}

	h.waitReady(c, v)
	if token := c.QueryParam("token"); token != "" {
		if !v.Ops.BeginRecovery(c.Request.Context(), token) {
			h.failed(c, v, http.StatusBadRequest)
			return
		}
	}

	state := v.Store.State()
	if !state.Authenticated() {
		respondError(c, http.StatusUnauthorized, msgSessionMissing)
		return
	}
	respond(c, http.StatusOK, sessionResponse(state))
}

func (h *AuthHandler) ResetPassword(c *drift.Context) {
	v := h.visitor(c)
	if v == nil {
		return
	}

	var req dto.ResetPasswordRequest
	if err := c.BindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if !validPassword(req.Password) {
		respondError(c, http.StatusBadRequest, msgPasswordTooShort)
		return
	}
	if req.Password != req.ConfirmPassword {
		respondError(c, http.StatusBadRequest, msgPasswordMismatch)
		return
	}

	h.waitReady(c, v)
	if !v.Store.State().Authenticated() {
		respondError(c, http.StatusUnauthorized, msgSessionMissing)
		return
	}

	if !v.Ops.UpdatePassword(c.Request.Context(), req.Password) {
		h.failed(c, v, http.StatusBadRequest)
		return
	}
	respond(c, http.StatusOK, dto.RedirectResponse{Redirect: auth.SignInPath})
}
