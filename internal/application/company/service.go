package company

import (
	"context"

	"github.com/pawnfin/console/internal/domain/company"
	"github.com/pawnfin/console/internal/domain/session"
	"github.com/pawnfin/console/internal/domain/shared"
)

// Gateway is the pawn-api company endpoints
type Gateway interface {
	ListCompanies(ctx context.Context, sess *session.Handle) ([]company.Company, error)
	CreateCompany(ctx context.Context, sess *session.Handle, req company.CreateRequest) (*company.CreateResponse, error)
}

// ErrUnknownCompany is returned when the selected id is not in the list
var ErrUnknownCompany = shared.NewDomainError("COMPANY_NOT_FOUND", "Please select a company")

// Service lists, creates and selects companies for a session
type Service struct {
	gateway Gateway
}

// NewService creates a new company Service
func NewService(gateway Gateway) *Service {
	return &Service{gateway: gateway}
}

// List returns the normalized company list
func (s *Service) List(ctx context.Context, sess *session.Handle) ([]company.Company, error) {
	return s.gateway.ListCompanies(ctx, sess)
}

// Select stores the company with id, looked up in a fresh list so the name
// is stored alongside it.
func (s *Service) Select(ctx context.Context, sess *session.Handle, id string) (company.Company, error) {
	if id == "" {
		return company.Company{}, ErrUnknownCompany
	}
	list, err := s.gateway.ListCompanies(ctx, sess)
	if err != nil {
		return company.Company{}, err
	}
	c, ok := company.Find(list, id)
	if !ok {
		return company.Company{}, ErrUnknownCompany
	}
	if err := sess.SelectCompany(ctx, c.ID, c.DisplayName()); err != nil {
		return company.Company{}, err
	}
	return c, nil
}

// Create adds a company. When the reply carries both id and name the new
// company is selected straight away; selected reports whether it was.
func (s *Service) Create(ctx context.Context, sess *session.Handle, name string) (resp *company.CreateResponse, selected bool, err error) {
	req, err := company.NewCreateRequest(name)
	if err != nil {
		return nil, false, err
	}
	resp, err = s.gateway.CreateCompany(ctx, sess, *req)
	if err != nil {
		return nil, false, err
	}
	if !resp.Selectable() {
		return resp, false, nil
	}
	if err := sess.SelectCompany(ctx, resp.ID, resp.Name); err != nil {
		return resp, false, err
	}
	return resp, true, nil
}

// Switch drops the current selection so the company page is shown again.
func (s *Service) Switch(ctx context.Context, sess *session.Handle) error {
	return sess.ClearCompany(ctx)
}
