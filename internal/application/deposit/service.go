package deposit

import (
	"context"

	"github.com/pawnfin/console/internal/domain/deposit"
	"github.com/pawnfin/console/internal/domain/session"
	"github.com/pawnfin/console/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Gateway is the pawn-api deposit endpoints
type Gateway interface {
	ListDeposits(ctx context.Context, sess *session.Handle, filter deposit.Filter) ([]deposit.Summary, error)
	CreateDeposit(ctx context.Context, sess *session.Handle, req deposit.CreateRequest) (*deposit.CreateResponse, error)
	GetDeposit(ctx context.Context, sess *session.Handle, id string) (*deposit.Detail, error)
	RecordDepositPayment(ctx context.Context, sess *session.Handle, id string, req deposit.PaymentRequest) (*deposit.Detail, error)
}

// ErrCreateRejected is returned when the backend answers a create without an id
var ErrCreateRejected = shared.NewDomainError("DEPOSIT_CREATE_FAILED", "Failed to create deposit")

// Service tracks money borrowed from financiers
type Service struct {
	gateway Gateway
}

// NewService creates a new deposit Service
func NewService(gateway Gateway) *Service {
	return &Service{gateway: gateway}
}

// ListResult is the deposit list with its outstanding total
type ListResult struct {
	Rows             []deposit.Summary
	TotalOutstanding decimal.Decimal
}

// List returns deposits matching filter
func (s *Service) List(ctx context.Context, sess *session.Handle, filter deposit.Filter) (*ListResult, error) {
	rows, err := s.gateway.ListDeposits(ctx, sess, filter)
	if err != nil {
		return nil, err
	}
	return &ListResult{Rows: rows, TotalOutstanding: deposit.TotalOutstanding(rows)}, nil
}

// Create validates the draft and returns the id of the new deposit
func (s *Service) Create(ctx context.Context, sess *session.Handle, draft deposit.Draft) (string, error) {
	req, err := draft.Build()
	if err != nil {
		return "", err
	}
	resp, err := s.gateway.CreateDeposit(ctx, sess, *req)
	if err != nil {
		return "", err
	}
	if !resp.OK || resp.ID == "" {
		if resp.Message != "" {
			return "", shared.NewDomainError(ErrCreateRejected.Code, resp.Message)
		}
		return "", ErrCreateRejected
	}
	return resp.ID, nil
}

// Get returns one deposit with its payments
func (s *Service) Get(ctx context.Context, sess *session.Handle, id string) (*deposit.Detail, error) {
	return s.gateway.GetDeposit(ctx, sess, id)
}

// RecordPayment posts a payment and returns the refreshed deposit. The
// backend decides what an all-zero payment means.
func (s *Service) RecordPayment(ctx context.Context, sess *session.Handle, id string, in deposit.PaymentInput) (*deposit.Detail, error) {
	return s.gateway.RecordDepositPayment(ctx, sess, id, in.Request())
}
