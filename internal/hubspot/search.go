package hubspot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Filter is one property comparison in a search request.
type Filter struct {
	PropertyName string `json:"propertyName"`
	Operator     string `json:"operator"`
	Value        string `json:"value"`
}

// FilterGroup is a conjunction of filters; groups are OR-ed by HubSpot.
type FilterGroup struct {
	Filters []Filter `json:"filters"`
}

type searchRequest struct {
	FilterGroups []FilterGroup `json:"filterGroups"`
	Limit        int           `json:"limit"`
}

// Search runs a CRM search against the given object type.
func (c *Client) Search(ctx context.Context, obj ObjectType, groups []FilterGroup, limit int) (*Page, error) {
	if groups == nil {
		groups = []FilterGroup{}
	}
	data, err := c.do(ctx, http.MethodPost, "/crm/v3/objects/"+string(obj)+"/search", nil, searchRequest{
		FilterGroups: groups,
		Limit:        limit,
	})
	if err != nil {
		return nil, err
	}
	var out Page
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("hubspot: decode search response: %w", err)
	}
	return &out, nil
}

// SearchContactByEmail finds contacts whose email equals the given address.
func (c *Client) SearchContactByEmail(ctx context.Context, email string) (*Page, error) {
	return c.Search(ctx, Contacts, []FilterGroup{{
		Filters: []Filter{{PropertyName: "email", Operator: "EQ", Value: email}},
	}}, 10)
}

// SearchCompanies finds companies by exact domain and/or a name token.
// Empty arguments are skipped; with both empty the search is unfiltered.
func (c *Client) SearchCompanies(ctx context.Context, domain, name string) (*Page, error) {
	var filters []Filter
	if domain != "" {
		filters = append(filters, Filter{PropertyName: "domain", Operator: "EQ", Value: domain})
	}
	if name != "" {
		filters = append(filters, Filter{PropertyName: "name", Operator: "CONTAINS_TOKEN", Value: name})
	}
	var groups []FilterGroup
	if len(filters) > 0 {
		groups = []FilterGroup{{Filters: filters}}
	}
	return c.Search(ctx, Companies, groups, 10)
}

// UpsertResult reports whether an upsert updated an existing record or
// created a new one.
type UpsertResult struct {
	Action string  `json:"action"` // "updated" or "created"
	Result *Object `json:"result"`
}

// UpsertContactByEmail updates the first contact matching email, or creates
// a new one when no match exists. The email is always written back onto the
// record so the property set and the match key cannot drift apart.
func (c *Client) UpsertContactByEmail(ctx context.Context, email string, props map[string]string) (*UpsertResult, error) {
	page, err := c.Search(ctx, Contacts, []FilterGroup{{
		Filters: []Filter{{PropertyName: "email", Operator: "EQ", Value: email}},
	}}, 1)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]string, len(props)+1)
	for k, v := range props {
		merged[k] = v
	}
	merged["email"] = email

	if len(page.Results) > 0 {
		updated, err := c.Update(ctx, Contacts, page.Results[0].ID, merged)
		if err != nil {
			return nil, err
		}
		return &UpsertResult{Action: "updated", Result: updated}, nil
	}
	created, err := c.Create(ctx, Contacts, merged)
	if err != nil {
		return nil, err
	}
	return &UpsertResult{Action: "created", Result: created}, nil
}
