package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dimitrije/portfolio-api/internal/metrics"
	"github.com/dimitrije/portfolio-api/internal/models"
	"github.com/dimitrije/portfolio-api/internal/provider"
)

// User-visible outcomes
const (
	MsgSignedIn          = "Successfully signed in!"
	MsgVerificationSent  = "Verification email sent! Please check your inbox."
	MsgAccountCreated    = "Account created successfully!"
	MsgResetSent         = "Password reset instructions sent to your email!"
	MsgSignedOut         = "Successfully signed out!"
	MsgPasswordReset     = "Password has been reset successfully!"
	MsgEmailConfirmed    = "Email confirmed! You are now signed in."
	MsgOAuthStartFailed  = "Failed to start OAuth flow"
	MsgUnexpectedFailure = "An unexpected error occurred"
)

type SignInResult struct {
	Success bool
	IsAdmin bool
}

type OAuthResult struct {
	Success bool
	URL     string
}

type SignUpOutcome string

const (
	OutcomeVerificationSent SignUpOutcome = "verification_sent"
	OutcomeAccountCreated   SignUpOutcome = "account_created"
)

type SignUpResult struct {
	Success bool
	Outcome SignUpOutcome
}

// Operations is the visitor-facing auth API. Every operation clears the
// previous error, calls the provider, and reports the outcome both as a
// return value and as a notification. None of them navigate.
type Operations struct {
	client   provider.Client
	store    *Store
	roles    *RoleResolver
	profiles ProfileStore
	notify   Notifier
	recorder metrics.Recorder

	callbackURL string
	resetURL    string
}

type OperationsConfig struct {
	// CallbackURL receives OAuth and email confirmation redirects.
	CallbackURL string
	// ResetURL is linked from recovery emails.
	ResetURL string
}

func NewOperations(
	cfg OperationsConfig,
	client provider.Client,
	store *Store,
	roles *RoleResolver,
	profiles ProfileStore,
	notify Notifier,
	recorder metrics.Recorder,
) *Operations {
	return &Operations{
		client:      client,
		store:       store,
		roles:       roles,
		profiles:    profiles,
		notify:      notify,
		recorder:    recorder,
		callbackURL: cfg.CallbackURL,
		resetURL:    cfg.ResetURL,
	}
}

// begin clears the last error and reports whether the provider is usable.
func (o *Operations) begin() bool {
	o.store.SetError("")
	if o.client == nil {
		msg := o.store.configErr
		if msg == "" {
			msg = provider.ErrNotConfigured.Error()
		}
		o.fail(errors.New(msg))
		return false
	}
	return true
}

func (o *Operations) fail(err error) {
	msg := err.Error()
	var pErr *provider.Error
	if !errors.As(err, &pErr) && !errors.Is(err, provider.ErrNotConfigured) && o.client != nil {
		slog.Error("auth operation failed", "error", err)
		msg = MsgUnexpectedFailure
	}
	if msg == "" {
		msg = MsgUnexpectedFailure
	}
	o.store.SetError(msg)
	o.notify.Error(msg)
}

// settledRole waits for the store to catch up with the sign-in event, then
// resolves the role of identity.
func (o *Operations) settledRole(ctx context.Context, identity *models.Identity) bool {
	if err := o.store.Settle(ctx); err != nil {
		slog.Warn("auth state did not settle", "error", err)
	}
	if identity == nil {
		return false
	}
	return o.roles.IsAdmin(ctx, identity.ID)
}

func (o *Operations) SignIn(ctx context.Context, email, password string) SignInResult {
	if !o.begin() {
		return SignInResult{}
	}

	resp, err := o.client.SignInWithPassword(ctx, email, password)
	if err != nil {
		o.recorder.SignIn("password", "failure")
		o.fail(err)
		return SignInResult{}
	}

	o.recorder.SignIn("password", "success")
	o.notify.Success(MsgSignedIn)
	return SignInResult{Success: true, IsAdmin: o.settledRole(ctx, resp.Identity)}
}

// SignInWithOAuth returns the consent URL the browser has to be sent to.
// An empty URL counts as a failure of its own.
func (o *Operations) SignInWithOAuth(ctx context.Context, providerName string) OAuthResult {
	if !o.begin() {
		return OAuthResult{}
	}

	url, err := o.client.SignInWithOAuth(ctx, providerName, o.callbackURL)
	if err != nil {
		o.recorder.SignIn("oauth", "failure")
		o.fail(err)
		return OAuthResult{}
	}
	if url == "" {
		o.recorder.SignIn("oauth", "failure")
		o.fail(&provider.Error{Code: provider.CodeUnexpected, Message: MsgOAuthStartFailed})
		return OAuthResult{}
	}

	return OAuthResult{Success: true, URL: url}
}

// CompleteOAuth finishes the flow started by SignInWithOAuth.
func (o *Operations) CompleteOAuth(ctx context.Context, state, code string) SignInResult {
	if !o.begin() {
		return SignInResult{}
	}

	resp, err := o.client.ExchangeCodeForSession(ctx, state, code)
	if err != nil {
		o.recorder.SignIn("oauth", "failure")
		o.fail(err)
		return SignInResult{}
	}

	o.recorder.SignIn("oauth", "success")
	o.notify.Success(MsgSignedIn)
	return SignInResult{Success: true, IsAdmin: o.settledRole(ctx, resp.Identity)}
}

// SignUp registers an email identity and inserts its guest profile directly.
func (o *Operations) SignUp(ctx context.Context, email, password string) SignUpResult {
	if !o.begin() {
		return SignUpResult{}
	}

	resp, err := o.client.SignUp(ctx, email, password)
	if err != nil {
		o.fail(err)
		return SignUpResult{}
	}

	if resp.Identity != nil {
		if _, err := o.profiles.Create(ctx, resp.Identity.ID, resp.Identity.Email, models.RoleGuest); err != nil {
			slog.Error("profile insert on sign-up failed", "identity_id", resp.Identity.ID, "error", err)
			o.notify.Error(msgProfileCreateFailed)
		}
	}

	if resp.Session == nil {
		o.notify.Success(MsgVerificationSent)
		return SignUpResult{Success: true, Outcome: OutcomeVerificationSent}
	}

	o.notify.Success(MsgAccountCreated)
	return SignUpResult{Success: true, Outcome: OutcomeAccountCreated}
}

// ConfirmEmail redeems a sign-up confirmation link.
func (o *Operations) ConfirmEmail(ctx context.Context, token string) SignInResult {
	if !o.begin() {
		return SignInResult{}
	}

	resp, err := o.client.VerifyOTP(ctx, token, provider.OTPSignup)
	if err != nil {
		o.fail(err)
		return SignInResult{}
	}

	o.notify.Success(MsgEmailConfirmed)
	return SignInResult{Success: true, IsAdmin: o.settledRole(ctx, resp.Identity)}
}

// ResetPassword always reports the same message for known and unknown emails.
// Only a rejected redirect fails, since it does not depend on the address.
// Delivery failures are logged and reported as sent.
func (o *Operations) ResetPassword(ctx context.Context, email string) bool {
	if !o.begin() {
		return false
	}

	err := o.client.ResetPasswordForEmail(ctx, email, o.resetURL)
	switch code := provider.ErrorCode(err); {
	case err == nil, code == provider.CodeUserNotFound:
	case code == provider.CodeRedirectNotAllowed:
		o.fail(err)
		return false
	default:
		slog.Error("password recovery not delivered", "error", err)
	}

	o.notify.Success(MsgResetSent)
	return true
}

// BeginRecovery redeems a recovery link, signing the visitor in so the
// password can be changed.
func (o *Operations) BeginRecovery(ctx context.Context, token string) bool {
	if !o.begin() {
		return false
	}

	if _, err := o.client.VerifyOTP(ctx, token, provider.OTPRecovery); err != nil {
		o.fail(err)
		return false
	}

	if err := o.store.Settle(ctx); err != nil {
		slog.Warn("auth state did not settle", "error", err)
	}
	return true
}

func (o *Operations) UpdatePassword(ctx context.Context, password string) bool {
	if !o.begin() {
		return false
	}

	if _, err := o.client.UpdatePassword(ctx, password); err != nil {
		o.fail(err)
		return false
	}

	o.notify.Success(MsgPasswordReset)
	return true
}

// SignOut clears local state before the provider is asked, so a failing
// provider call cannot leave the visitor looking signed in.
func (o *Operations) SignOut(ctx context.Context) bool {
	o.store.ClearLocal()
	if !o.begin() {
		return false
	}

	if err := o.client.SignOut(ctx); err != nil {
		o.fail(err)
		return false
	}

	o.notify.Success(MsgSignedOut)
	return true
}

// KeepAlive refreshes the session when it expires within d. Failures are
// only logged; a rejected refresh token signs the visitor out via an event.
func (o *Operations) KeepAlive(ctx context.Context, now time.Time, d time.Duration) {
	if o.client == nil {
		return
	}
	state := o.store.State()
	if state.Session == nil || !state.Session.ExpiresWithin(now, d) {
		return
	}
	if _, err := o.client.RefreshSession(ctx); err != nil {
		slog.Info("session refresh failed", "error", err)
		return
	}
	if err := o.store.Settle(ctx); err != nil {
		slog.Warn("auth state did not settle", "error", err)
	}
}
