package ledger

import (
	"context"

	"github.com/pawnfin/console/internal/domain/ledger"
	"github.com/pawnfin/console/internal/domain/session"
)

// Gateway is the pawn-api ledger and voucher endpoints
type Gateway interface {
	ListLedger(ctx context.Context, sess *session.Handle, filter ledger.Filter) ([]ledger.Entry, error)
	CreateManualEntry(ctx context.Context, sess *session.Handle, req ledger.ManualEntryRequest) error
	ListVouchers(ctx context.Context, sess *session.Handle, filter ledger.VoucherFilter) ([]ledger.Voucher, error)
	CreateVoucher(ctx context.Context, sess *session.Handle, req ledger.VoucherRequest) error
}

// Service reads the cash book and posts manual entries and vouchers
type Service struct {
	gateway Gateway
}

// NewService creates a new ledger Service
func NewService(gateway Gateway) *Service {
	return &Service{gateway: gateway}
}

// Report is the ledger page: rows, overall totals and per-category totals.
type Report struct {
	Entries    []ledger.Entry
	Totals     ledger.Totals
	ByCategory []ledger.CategoryTotal
}

// Entries lists the ledger for filter and totals it
func (s *Service) Entries(ctx context.Context, sess *session.Handle, filter ledger.Filter) (*Report, error) {
	rows, err := s.gateway.ListLedger(ctx, sess, filter)
	if err != nil {
		return nil, err
	}
	return &Report{
		Entries:    rows,
		Totals:     ledger.Summarize(rows),
		ByCategory: ledger.ByCategory(rows),
	}, nil
}

// AddManualEntry validates and posts a manual entry
func (s *Service) AddManualEntry(ctx context.Context, sess *session.Handle, entry ledger.ManualEntry) error {
	req, err := entry.Build()
	if err != nil {
		return err
	}
	return s.gateway.CreateManualEntry(ctx, sess, *req)
}

// VoucherList is the voucher page rows and their total
type VoucherList struct {
	Rows  []ledger.Voucher
	Total int64
}

// Vouchers lists vouchers for filter
func (s *Service) Vouchers(ctx context.Context, sess *session.Handle, filter ledger.VoucherFilter) (*VoucherList, error) {
	rows, err := s.gateway.ListVouchers(ctx, sess, filter)
	if err != nil {
		return nil, err
	}
	return &VoucherList{Rows: rows, Total: ledger.TotalVouchers(rows)}, nil
}

// AddVoucher validates and posts a voucher
func (s *Service) AddVoucher(ctx context.Context, sess *session.Handle, draft ledger.VoucherDraft) error {
	req, err := draft.Build()
	if err != nil {
		return err
	}
	return s.gateway.CreateVoucher(ctx, sess, *req)
}
