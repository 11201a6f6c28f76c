package realtime

import (
	"errors"
	"log/slog"
	"strings"

	"task-rooms-api/internal/auth"
)

// TokenVerifier resolves a bearer credential to a user id.
type TokenVerifier interface {
	VerifyToken(token string) (uint, error)
}

type AuthReason string

const (
	ReasonMissing   AuthReason = "missing"
	ReasonMalformed AuthReason = "malformed"
	ReasonExpired   AuthReason = "expired"
	ReasonInvalid   AuthReason = "invalid"
)

// AuthError is a classified authentication failure.
type AuthError struct {
	Reason AuthReason
	Err    error
}

func (e *AuthError) Error() string {
	switch e.Reason {
	case ReasonMissing:
		return "Missing token"
	case ReasonMalformed:
		return "Malformed token"
	case ReasonExpired:
		return "Token expired"
	default:
		return "Invalid token"
	}
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

func classify(err error) *AuthError {
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		return &AuthError{Reason: ReasonMissing, Err: err}
	case errors.Is(err, auth.ErrMalformedToken):
		return &AuthError{Reason: ReasonMalformed, Err: err}
	case errors.Is(err, auth.ErrExpiredToken):
		return &AuthError{Reason: ReasonExpired, Err: err}
	default:
		return &AuthError{Reason: ReasonInvalid, Err: err}
	}
}

// Binder attaches a verified user identity to a connection and subscribes it
// to the user's private channel.
type Binder struct {
	registry *Registry
	verifier TokenVerifier
	logger   *slog.Logger
}

func NewBinder(registry *Registry, verifier TokenVerifier, logger *slog.Logger) *Binder {
	return &Binder{
		registry: registry,
		verifier: verifier,
		logger:   logger.With("component", "binder"),
	}
}

// Authenticate verifies credential and binds the result to conn. The outcome
// is acknowledged to the client with an authenticated event. On failure the
// returned error is an *AuthError and any earlier binding is left intact.
func (b *Binder) Authenticate(conn *Conn, credential string) (uint, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return 0, b.reject(conn, &AuthError{Reason: ReasonMissing, Err: auth.ErrMissingToken})
	}

	userID, err := b.verifier.VerifyToken(credential)
	if err != nil {
		return 0, b.reject(conn, classify(err))
	}

	if prev, ok := conn.UserID(); ok && prev != userID {
		// room subscriptions were authorized for prev
		for _, name := range b.registry.ChannelsOf(conn) {
			b.registry.Leave(conn, name)
		}
		b.logger.Info("connection switched user, subscriptions dropped", "conn_id", conn.ID(), "previous_user_id", prev, "user_id", userID)
	}
	if err := b.registry.Join(conn, UserChannel(userID)); err != nil {
		return 0, err
	}
	conn.bind(userID)

	b.logger.Info("connection authenticated", "conn_id", conn.ID(), "user_id", userID)
	b.registry.Send(conn, Envelope{
		Event: EventAuthenticated,
		Data:  Authenticated{Success: true, UserID: &userID},
	})
	return userID, nil
}

func (b *Binder) reject(conn *Conn, authErr *AuthError) error {
	b.logger.Info("authentication rejected", "conn_id", conn.ID(), "reason", authErr.Reason, "error", authErr.Err)
	b.registry.Send(conn, Envelope{
		Event: EventAuthenticated,
		Data:  Authenticated{Success: false, Error: authErr.Error()},
	})
	return authErr
}
