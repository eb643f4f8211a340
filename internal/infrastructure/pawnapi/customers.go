package pawnapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/pawnfin/console/internal/domain/customer"
	"github.com/pawnfin/console/internal/domain/loan"
	"github.com/pawnfin/console/internal/domain/session"
)

func customerPath(accNo string, rest ...string) string {
	p := "customers/" + url.PathEscape(accNo)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

// withQuery appends q to path when it has values.
func withQuery(path string, q url.Values) string {
	if len(q) == 0 {
		return path
	}
	return path + "?" + q.Encode()
}

// getList fetches path and decodes a JSON array into out. Any other reply
// shape yields an empty list.
func getList[T any](ctx context.Context, c *Client, sess *session.Handle, path string) ([]T, error) {
	raw, err := c.send(ctx, sess, path, RequestOptions{})
	if err != nil {
		return nil, err
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '[' || !json.Valid(raw) {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode pawn-api %s: %w", path, err)
	}
	return out, nil
}

// sendJSON sends v as JSON and decodes the reply into out (may be nil).
func (c *Client) sendJSON(ctx context.Context, sess *session.Handle, method, path string, v, out any) error {
	body, err := jsonBody(v)
	if err != nil {
		return err
	}
	return c.Do(ctx, sess, path, RequestOptions{Method: method, Body: body}, out)
}

// ListCustomers lists customer accounts, filtered server-side by name and phone.
func (c *Client) ListCustomers(ctx context.Context, sess *session.Handle, filter customer.Filter) ([]customer.RawRecord, error) {
	q := url.Values{}
	if v := strings.TrimSpace(filter.Name); v != "" {
		q.Set("name", v)
	}
	if v := strings.TrimSpace(filter.Phone); v != "" {
		q.Set("phone", v)
	}
	return getList[customer.RawRecord](ctx, c, sess, withQuery("customers", q))
}

// GetCustomer loads one account
func (c *Client) GetCustomer(ctx context.Context, sess *session.Handle, accNo string) (*customer.RawRecord, error) {
	var rec customer.RawRecord
	if err := c.Do(ctx, sess, customerPath(accNo), RequestOptions{}, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateCustomer posts a new customer with its first loan.
func (c *Client) CreateCustomer(ctx context.Context, sess *session.Handle, req customer.CreateRequest) error {
	return c.sendJSON(ctx, sess, http.MethodPost, "customers", req, nil)
}

// UpdateCustomer patches the customer profile.
func (c *Client) UpdateCustomer(ctx context.Context, sess *session.Handle, accNo string, req customer.UpdateRequest) error {
	return c.sendJSON(ctx, sess, http.MethodPatch, customerPath(accNo), req, nil)
}

// CustomerHistory returns the audit trail of an account.
func (c *Client) CustomerHistory(ctx context.Context, sess *session.Handle, accNo string) ([]customer.HistoryEntry, error) {
	return getList[customer.HistoryEntry](ctx, c, sess, customerPath(accNo, "history"))
}

// RecordInterestPayment posts the interest part of a payment.
func (c *Client) RecordInterestPayment(ctx context.Context, sess *session.Handle, accNo string, req loan.InterestPaymentRequest) error {
	return c.sendJSON(ctx, sess, http.MethodPost, customerPath(accNo, "payments"), req, nil)
}

// CloseLoan posts a partial principal repayment or a full close.
func (c *Client) CloseLoan(ctx context.Context, sess *session.Handle, accNo string, req loan.CloseRequest) error {
	return c.sendJSON(ctx, sess, http.MethodPost, customerPath(accNo, "close"), req, nil)
}

// CreateNewLoan opens another loan for the customer behind fromAccNo.
func (c *Client) CreateNewLoan(ctx context.Context, sess *session.Handle, fromAccNo string, req customer.NewLoanRequest) (*customer.NewLoanResponse, error) {
	q := url.Values{"accNo": {fromAccNo}}
	var resp customer.NewLoanResponse
	if err := c.sendJSON(ctx, sess, http.MethodPost, withQuery("customers/new-loan", q), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
