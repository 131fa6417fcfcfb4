package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/dimitrije/portfolio-api/internal/models"
	"github.com/dimitrije/portfolio-api/internal/provider"
	"github.com/google/uuid"
)

// FakeClient is a scriptable provider.Client. Successful calls emit the same
// events the local client does.
type FakeClient struct {
	mu      sync.Mutex
	seq     uint64
	session *models.Session
	Events  *provider.Broadcaster

	// GetSession snapshots the current session, closes Fetched, then waits
	// on Gate when it is set.
	Gate       chan struct{}
	Fetched    chan struct{}
	fetchedOne sync.Once
	SessionErr error

	SignInResp *provider.AuthResponse
	SignInErr  error
	OAuthURL   string
	OAuthErr   error
	OAuthTo    string
	SignUpResp *provider.AuthResponse
	SignUpErr  error
	VerifyResp *provider.AuthResponse
	VerifyErr  error
	SignOutErr error
	OnSignOut  func()
	ResetErr   error
	ResetTo    string
	UpdateErr  error
	RefreshErr error
	refreshes  int
}

func NewFakeClient() *FakeClient {
	return &FakeClient{
		Events:  provider.NewBroadcaster(),
		Fetched: make(chan struct{}),
	}
}

// SetSession replaces the current session without emitting an event.
func (f *FakeClient) SetSession(session *models.Session) {
	f.mu.Lock()
	f.session = session
	f.mu.Unlock()
}

func (f *FakeClient) Emit(eventType provider.EventType, session *models.Session) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.session = session
	f.Events.Publish(provider.Event{Type: eventType, Session: session, Seq: f.seq})
}

func (f *FakeClient) GetSession(ctx context.Context) (*models.Session, uint64, error) {
	f.mu.Lock()
	session, seq, gate := f.session, f.seq, f.Gate
	f.mu.Unlock()
	f.fetchedOne.Do(func() { close(f.Fetched) })

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		}
	}
	if f.SessionErr != nil {
		return nil, 0, f.SessionErr
	}
	return session, seq, nil
}

func (f *FakeClient) OnAuthStateChange() *provider.Subscription {
	return f.Events.Subscribe()
}

func (f *FakeClient) LatestSeq() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seq
}

func (f *FakeClient) SignInWithPassword(ctx context.Context, email, password string) (*provider.AuthResponse, error) {
	if f.SignInErr != nil {
		return nil, f.SignInErr
	}
	f.Emit(provider.EventSignedIn, f.SignInResp.Session)
	return f.SignInResp, nil
}

func (f *FakeClient) SignInWithOAuth(ctx context.Context, name, redirectTo string) (string, error) {
	f.OAuthTo = redirectTo
	return f.OAuthURL, f.OAuthErr
}

func (f *FakeClient) ExchangeCodeForSession(ctx context.Context, state, code string) (*provider.AuthResponse, error) {
	return f.SignInWithPassword(ctx, "", "")
}

func (f *FakeClient) SignUp(ctx context.Context, email, password string) (*provider.AuthResponse, error) {
	if f.SignUpErr != nil {
		return nil, f.SignUpErr
	}
	if f.SignUpResp.Session != nil {
		f.Emit(provider.EventSignedIn, f.SignUpResp.Session)
	}
	return f.SignUpResp, nil
}

func (f *FakeClient) VerifyOTP(ctx context.Context, token, otpType string) (*provider.AuthResponse, error) {
	if f.VerifyErr != nil {
		return nil, f.VerifyErr
	}
	eventType := provider.EventSignedIn
	if otpType == provider.OTPRecovery {
		eventType = provider.EventPasswordRecovery
	}
	f.Emit(eventType, f.VerifyResp.Session)
	return f.VerifyResp, nil
}

func (f *FakeClient) SignOut(ctx context.Context) error {
	if f.OnSignOut != nil {
		f.OnSignOut()
	}
	if f.SignOutErr != nil {
		return f.SignOutErr
	}
	f.Emit(provider.EventSignedOut, nil)
	return nil
}

func (f *FakeClient) ResetPasswordForEmail(ctx context.Context, email, redirectTo string) error {
	f.ResetTo = redirectTo
	return f.ResetErr
}

func (f *FakeClient) UpdatePassword(ctx context.Context, password string) (*models.Identity, error) {
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}
	f.mu.Lock()
	session := f.session
	f.mu.Unlock()
	if session == nil {
		return nil, &provider.Error{Code: provider.CodeSessionNotFound, Message: "Auth session missing!"}
	}
	f.Emit(provider.EventUserUpdated, session)
	return &session.Identity, nil
}

func (f *FakeClient) RefreshSession(ctx context.Context) (*models.Session, error) {
	f.mu.Lock()
	f.refreshes++
	current := f.session
	f.mu.Unlock()

	if f.RefreshErr != nil {
		return nil, f.RefreshErr
	}
	if current == nil {
		return nil, &provider.Error{Code: provider.CodeSessionNotFound, Message: "Auth session missing!"}
	}
	refreshed := *current
	refreshed.ExpiresAt = time.Now().Add(time.Hour)
	f.Emit(provider.EventTokenRefreshed, &refreshed)
	return &refreshed, nil
}

// RefreshCount is safe to call while a request is refreshing.
func (f *FakeClient) RefreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes
}

// Session builds a confirmed email session valid for an hour.
func Session(email string) *models.Session {
	now := time.Now()
	return &models.Session{
		AccessToken: "access",
		IssuedAt:    now,
		ExpiresAt:   now.Add(time.Hour),
		Identity:    models.Identity{ID: uuid.New(), Email: email, Provider: models.ProviderEmail, EmailConfirmedAt: &now},
	}
}
