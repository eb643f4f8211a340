// Package company models the tenants a console operator works under.
package company

import (
	"encoding/json"
	"strings"

	"github.com/pawnfin/console/internal/domain/shared"
)

// Company is a tenant as listed by GET companies
type Company struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive *bool  `json:"isActive,omitempty"`
}

// Active treats a missing flag as active
func (c Company) Active() bool {
	return c.IsActive == nil || *c.IsActive
}

// DisplayName falls back to the id when the name is unknown
func (c Company) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.ID
}

// NormalizeList accepts either a list of names or a list of objects. A missing
// id falls back to the name. Rows without a name are kept and shown by id;
// rows with neither are dropped.
func NormalizeList(raw json.RawMessage) []Company {
	var names []string
	if err := json.Unmarshal(raw, &names); err == nil {
		out := make([]Company, 0, len(names))
		for _, n := range names {
			if n != "" {
				out = append(out, Company{ID: n, Name: n})
			}
		}
		return out
	}

	var rows []Company
	if err := json.Unmarshal(raw, &rows); err != nil {
		return []Company{}
	}
	out := make([]Company, 0, len(rows))
	for _, c := range rows {
		if c.ID == "" {
			c.ID = c.Name
		}
		if c.ID == "" {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Find returns the company with id
func Find(list []Company, id string) (Company, bool) {
	for _, c := range list {
		if c.ID == id {
			return c, true
		}
	}
	return Company{}, false
}

// CreateRequest is the body of POST companies.
type CreateRequest struct {
	Name string `json:"name"`
}

// CreateResponse is the reply to POST companies
type CreateResponse struct {
	OK   bool   `json:"ok"`
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Selectable reports whether the reply identifies the new company well
// enough to select it straight away.
func (r CreateResponse) Selectable() bool {
	return r.ID != "" && r.Name != ""
}

// NewCreateRequest validates name
func NewCreateRequest(name string) (*CreateRequest, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewValidationError("name", "Company name is required")
	}
	return &CreateRequest{Name: name}, nil
}
