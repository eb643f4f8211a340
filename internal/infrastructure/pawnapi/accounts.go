package pawnapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/pawnfin/console/internal/domain/company"
	"github.com/pawnfin/console/internal/domain/deposit"
	"github.com/pawnfin/console/internal/domain/ledger"
	"github.com/pawnfin/console/internal/domain/session"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token. An empty token means the
// backend answered without one.
func (c *Client) Login(ctx context.Context, sess *session.Handle, username, password string) (string, error) {
	body, err := jsonBody(loginRequest{Username: username, Password: password})
	if err != nil {
		return "", err
	}
	v, err := c.Request(ctx, sess, "auth/login", RequestOptions{Method: http.MethodPost, Body: body})
	if err != nil {
		return "", err
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t), nil
	case map[string]any:
		for _, key := range []string{"token", "accessToken", "access_token"} {
			if s, ok := t[key].(string); ok && s != "" {
				return s, nil
			}
		}
	}
	return "", nil
}

// ListCompanies returns the companies the token may act for, in either of
// the shapes the backend uses.
func (c *Client) ListCompanies(ctx context.Context, sess *session.Handle) ([]company.Company, error) {
	raw, err := c.send(ctx, sess, "companies", RequestOptions{})
	if err != nil {
		return nil, err
	}
	return company.NormalizeList(raw), nil
}

// CreateCompany creates a company
func (c *Client) CreateCompany(ctx context.Context, sess *session.Handle, req company.CreateRequest) (*company.CreateResponse, error) {
	var resp company.CreateResponse
	if err := c.sendJSON(ctx, sess, http.MethodPost, "companies", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListDeposits lists deposits filtered by financier name, phone and status.
func (c *Client) ListDeposits(ctx context.Context, sess *session.Handle, filter deposit.Filter) ([]deposit.Summary, error) {
	q := url.Values{}
	if v := strings.TrimSpace(filter.Name); v != "" {
		q.Set("name", v)
	}
	if v := strings.TrimSpace(filter.Phone); v != "" {
		q.Set("phone", v)
	}
	if filter.Status != "" {
		q.Set("status", string(filter.Status))
	}
	return getList[deposit.Summary](ctx, c, sess, withQuery("deposits", q))
}

// CreateDeposit records a new deposit
func (c *Client) CreateDeposit(ctx context.Context, sess *session.Handle, req deposit.CreateRequest) (*deposit.CreateResponse, error) {
	var resp deposit.CreateResponse
	if err := c.sendJSON(ctx, sess, http.MethodPost, "deposits", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetDeposit loads a deposit with its payments.
func (c *Client) GetDeposit(ctx context.Context, sess *session.Handle, id string) (*deposit.Detail, error) {
	var d deposit.Detail
	if err := c.Do(ctx, sess, "deposits/"+url.PathEscape(id), RequestOptions{}, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// RecordDepositPayment posts a payment and returns the updated deposit,
// reloading it when the backend replies without a body.
func (c *Client) RecordDepositPayment(ctx context.Context, sess *session.Handle, id string, req deposit.PaymentRequest) (*deposit.Detail, error) {
	var d *deposit.Detail
	if err := c.sendJSON(ctx, sess, http.MethodPost, "deposits/"+url.PathEscape(id)+"/payments", req, &d); err != nil {
		return nil, err
	}
	if d == nil || d.ID == "" {
		return c.GetDeposit(ctx, sess, id)
	}
	return d, nil
}

// ListLedger lists ledger entries matching filter.
func (c *Client) ListLedger(ctx context.Context, sess *session.Handle, filter ledger.Filter) ([]ledger.Entry, error) {
	return getList[ledger.Entry](ctx, c, sess, withQuery("ledger", filter.Query()))
}

// CreateManualEntry posts a manual ledger entry
func (c *Client) CreateManualEntry(ctx context.Context, sess *session.Handle, req ledger.ManualEntryRequest) error {
	return c.sendJSON(ctx, sess, http.MethodPost, "ledger/manual", req, nil)
}

// ListVouchers lists expense vouchers matching filter.
func (c *Client) ListVouchers(ctx context.Context, sess *session.Handle, filter ledger.VoucherFilter) ([]ledger.Voucher, error) {
	return getList[ledger.Voucher](ctx, c, sess, withQuery("vouchers", filter.Query()))
}

// CreateVoucher posts an expense voucher
func (c *Client) CreateVoucher(ctx context.Context, sess *session.Handle, req ledger.VoucherRequest) error {
	return c.sendJSON(ctx, sess, http.MethodPost, "vouchers", req, nil)
}
