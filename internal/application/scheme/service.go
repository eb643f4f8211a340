package scheme

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pawnfin/console/internal/domain/scheme"
	"github.com/shopspring/decimal"
)

// Service manages interest scheme definitions
type Service struct {
	repo scheme.Repository
}

// NewService creates a new scheme Service
func NewService(repo scheme.Repository) *Service {
	return &Service{repo: repo}
}

// List returns every stored scheme
func (s *Service) List(ctx context.Context) ([]scheme.Scheme, error) {
	return s.repo.List(ctx)
}

// Editor returns the draft for id, or a fresh draft when id is empty.
func (s *Service) Editor(ctx context.Context, id string) (scheme.Draft, error) {
	if id == "" {
		return scheme.NewDraft(), nil
	}
	sc, err := s.repo.Get(ctx, id)
	if err != nil {
		return scheme.Draft{}, err
	}
	return scheme.DraftOf(sc), nil
}

// Save validates the draft and stores it. New schemes get a fresh UUID; an
// existing id that is no longer stored is saved as new under that id.
func (s *Service) Save(ctx context.Context, draft scheme.Draft) (*scheme.Scheme, error) {
	sc, err := draft.Build()
	if err != nil {
		return nil, err
	}
	if sc.ID == "" {
		sc.ID = uuid.NewString()
	}
	if err := s.repo.Save(ctx, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

// Delete removes the scheme with id. Deleting an unknown id is a no-op.
func (s *Service) Delete(ctx context.Context, id string) error {
	err := s.repo.Delete(ctx, id)
	if errors.Is(err, scheme.ErrNotFound) {
		return nil
	}
	return err
}

// Names lists scheme names for loan forms, with "None" first.
func (s *Service) Names(ctx context.Context) ([]string, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(list)+1)
	names = append(names, scheme.NoneValue)
	for _, sc := range list {
		names = append(names, sc.Name)
	}
	return names, nil
}

// DefaultRate resolves the monthly percentage a loan form should prefill when
// the named scheme is picked. ok is false for "None", unknown names and
// schemes without a usable rate; the form then keeps what was typed.
func (s *Service) DefaultRate(ctx context.Context, name string) (monthly decimal.Decimal, ok bool, err error) {
	if name == "" || name == scheme.NoneValue {
		return decimal.Zero, false, nil
	}
	list, err := s.repo.List(ctx)
	if err != nil {
		return decimal.Zero, false, err
	}
	sc, found := scheme.FindByName(list, name)
	if !found {
		return decimal.Zero, false, nil
	}
	monthly, ok = sc.DefaultMonthlyPct()
	return monthly, ok, nil
}
