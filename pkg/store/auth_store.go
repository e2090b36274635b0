// Package store holds the client-side state stores: authentication,
// conversation, pet and feed. Each store is a single logical actor; all
// mutations are serialized behind its mutex and surfaced to the UI layer
// through snapshots and subscribe callbacks.
package store

import (
	"context"
	"log/slog"
	"sync"

	"furrykids/pkg/domain"
)

// AuthClient is the slice of the session client the auth store depends on.
type AuthClient interface {
	Register(ctx context.Context, username, password string) (domain.AuthResponse, error)
	Login(ctx context.Context, username, password string) (domain.AuthResponse, error)
	Logout(ctx context.Context) (domain.AuthResponse, error)
	CurrentUser(ctx context.Context) (domain.UserInfoResponse, error)
}

// AuthSnapshot is the auth state consumed by the UI layer.
// Authenticated is true exactly when User is present and the last
// reconciled response reported success.
type AuthSnapshot struct {
	User          *domain.User
	Authenticated bool
	Loading       bool
	ErrorMessage  string
}

// AuthStore reconciles session client responses into authentication state.
// Only the most recently issued operation may commit: results of calls
// overtaken by a newer one are discarded, whatever order they complete in.
type AuthStore struct {
	client AuthClient
	logger *slog.Logger
	obs    observers

	mu            sync.Mutex
	user          *domain.User
	authenticated bool
	loading       bool
	errMsg        string
	issued        uint64
}

// NewAuthStore constructs the store. It does not probe the backend;
// call CheckStatus to reconcile the initial session state.
func NewAuthStore(client AuthClient, logger *slog.Logger) *AuthStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthStore{client: client, logger: logger}
}

// Subscribe registers a callback invoked synchronously after each commit.
func (s *AuthStore) Subscribe(fn func()) {
	s.obs.subscribe(fn)
}

// Snapshot returns a copy of the current auth state.
func (s *AuthStore) Snapshot() AuthSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	var user *domain.User
	if s.user != nil {
		u := *s.user
		user = &u
	}
	return AuthSnapshot{
		User:          user,
		Authenticated: s.authenticated,
		Loading:       s.loading,
		ErrorMessage:  s.errMsg,
	}
}

// CheckStatus reconciles the session cookie against the backend. It never
// surfaces an error message: any failure just resolves to anonymous.
func (s *AuthStore) CheckStatus(ctx context.Context) {
	seq := s.begin(false)
	info, err := s.client.CurrentUser(ctx)
	committed := s.commit(seq, func() {
		if err != nil || info.User == nil {
			s.user = nil
			s.authenticated = false
			return
		}
		s.user = info.User
		s.authenticated = true
	})
	if committed && err != nil {
		s.logger.Debug("auth status check failed", "err", err)
	}
}

// Login authenticates with the backend. A server-side rejection
// (success:false) forces anonymous and surfaces the server message.
func (s *AuthStore) Login(ctx context.Context, username, password string) {
	seq := s.begin(true)
	resp, err := s.client.Login(ctx, username, password)
	s.commit(seq, func() {
		switch {
		case err != nil:
			s.errMsg = "网络错误: " + err.Error()
			s.user = nil
			s.authenticated = false
		case resp.Success && resp.User != nil:
			s.user = resp.User
			s.authenticated = true
			s.errMsg = ""
		default:
			s.errMsg = resp.Message
			s.user = nil
			s.authenticated = false
		}
	})
}

// Register creates an account. Unlike Login, a server-side rejection
// leaves the previous auth state untouched; only the message is surfaced.
func (s *AuthStore) Register(ctx context.Context, username, password string) {
	seq := s.begin(true)
	resp, err := s.client.Register(ctx, username, password)
	s.commit(seq, func() {
		switch {
		case err != nil:
			s.errMsg = "网络错误: " + err.Error()
			s.user = nil
			s.authenticated = false
		case resp.Success && resp.User != nil:
			s.user = resp.User
			s.authenticated = true
			s.errMsg = ""
		default:
			s.errMsg = resp.Message
		}
	})
}

// Logout ends the session. On failure the current state is kept and only
// the error message changes.
func (s *AuthStore) Logout(ctx context.Context) {
	seq := s.begin(false)
	resp, err := s.client.Logout(ctx)
	s.commit(seq, func() {
		switch {
		case err != nil:
			s.errMsg = "登出失败: " + err.Error()
		case resp.Success:
			s.user = nil
			s.authenticated = false
			s.errMsg = ""
		default:
			s.errMsg = resp.Message
		}
	})
}

// ClearError dismisses the current error message.
func (s *AuthStore) ClearError() {
	s.mu.Lock()
	s.errMsg = ""
	s.mu.Unlock()
	s.obs.notify()
}

// begin registers a new operation as the latest issued and flips the
// loading flag. It returns the sequence number the completion must present.
func (s *AuthStore) begin(clearError bool) uint64 {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.loading = true
	if clearError {
		s.errMsg = ""
	}
	s.mu.Unlock()
	s.obs.notify()
	return seq
}

// commit applies fn only if no newer operation has been issued since seq.
// Stale completions mutate nothing, the loading flag included: it belongs
// to the operation that superseded them.
func (s *AuthStore) commit(seq uint64, fn func()) bool {
	s.mu.Lock()
	if seq != s.issued {
		s.mu.Unlock()
		s.logger.Debug("discarding stale auth result", "seq", seq, "latest", s.issued)
		return false
	}
	s.loading = false
	fn()
	s.mu.Unlock()
	s.obs.notify()
	return true
}
