// Package session holds the per-browser authentication and tenant state:
// the pawn-api token and the selected company.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned by stores for unknown or expired session ids.
var ErrNotFound = errors.New("session not found")

// ErrExpired is returned for any 401 from the pawn-api. By the time it is
// returned the token and company have already been cleared.
var ErrExpired = errors.New("session expired, please log in again")

// State is what a browser session remembers between requests.
type State struct {
	Token       string `json:"token,omitempty"`
	CompanyID   string `json:"companyId,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
}

// Authenticated reports whether a token is present
func (s State) Authenticated() bool {
	return s.Token != ""
}

// HasCompany reports whether a company is selected
func (s State) HasCompany() bool {
	return s.CompanyID != ""
}

// CompanyLabel is the company name, or its id when the name was never stored.
func (s State) CompanyLabel() string {
	if s.CompanyName != "" {
		return s.CompanyName
	}
	return s.CompanyID
}

// Store persists session state by id. Save replaces the whole state so the
// company id and name always change together.
type Store interface {
	Load(ctx context.Context, id string) (State, error)
	Save(ctx context.Context, id string, state State) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// Handle is one browser's session, bound to its store. It is passed
// explicitly to the pawn-api client and the route guard.
type Handle struct {
	store    Store
	id       string
	state    State
	onRotate func(id string)
	newID    func() string
}

// NewHandle binds state loaded for id to store.
func NewHandle(store Store, id string, state State) *Handle {
	return &Handle{store: store, id: id, state: state, newID: uuid.NewString}
}

// OnRotate registers fn to be told the new id after SetToken rotates it.
func (h *Handle) OnRotate(fn func(id string)) { h.onRotate = fn }

// ID returns the session id
func (h *Handle) ID() string { return h.id }

// State returns a copy of the current state
func (h *Handle) State() State { return h.state }

// Token returns the bearer token, or "" when logged out
func (h *Handle) Token() string { return h.state.Token }

// CompanyID returns the selected company id
func (h *Handle) CompanyID() string { return h.state.CompanyID }

// SetToken stores the token issued by login under a new session id and
// removes the old record, so an id handed out before login never carries
// a token. Any previous company selection is dropped.
func (h *Handle) SetToken(ctx context.Context, token string) error {
	next := State{Token: token}
	id := h.newID()
	if err := h.store.Save(ctx, id, next); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	if h.id != "" {
		if err := h.store.Delete(ctx, h.id); err != nil && !errors.Is(err, ErrNotFound) {
			_ = h.store.Delete(ctx, id)
			return fmt.Errorf("rotate session: %w", err)
		}
	}
	h.id = id
	h.state = next
	if h.onRotate != nil {
		h.onRotate(id)
	}
	return nil
}

// SelectCompany stores the chosen company
func (h *Handle) SelectCompany(ctx context.Context, id, name string) error {
	next := h.state
	next.CompanyID = id
	next.CompanyName = name
	return h.save(ctx, next)
}

// ClearCompany drops the company id and name in one write.
func (h *Handle) ClearCompany(ctx context.Context) error {
	next := h.state
	next.CompanyID = ""
	next.CompanyName = ""
	return h.save(ctx, next)
}

// Clear logs the session out: token and company are removed together.
func (h *Handle) Clear(ctx context.Context) error {
	h.state = State{}
	if err := h.store.Delete(ctx, h.id); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (h *Handle) save(ctx context.Context, next State) error {
	if err := h.store.Save(ctx, h.id, next); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	h.state = next
	return nil
}
