package hubspot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// MaxBatchSize is the hard ceiling HubSpot enforces on batch create calls.
// The client rejects larger batches before any network call is made.
const MaxBatchSize = 100

// ObjectType identifies a CRM object collection.
type ObjectType string

const (
	Contacts  ObjectType = "contacts"
	Companies ObjectType = "companies"
	Deals     ObjectType = "deals"
	Notes     ObjectType = "notes"
	Tasks     ObjectType = "tasks"
)

// Object is one CRM record as returned by the v3 object endpoints.
type Object struct {
	ID         string            `json:"id"`
	Properties map[string]string `json:"properties"`
	CreatedAt  string            `json:"createdAt,omitempty"`
	UpdatedAt  string            `json:"updatedAt,omitempty"`
	Archived   bool              `json:"archived,omitempty"`
}

// Page is one page of records plus the cursor for the next page, if any.
type Page struct {
	Results []Object `json:"results"`
	Paging  *Paging  `json:"paging,omitempty"`
}

// Paging carries the "after" cursor of the next page.
type Paging struct {
	Next struct {
		After string `json:"after"`
	} `json:"next"`
}

type propertiesPayload struct {
	Properties map[string]string `json:"properties"`
}

// Create creates one record of the given type and returns it.
func (c *Client) Create(ctx context.Context, obj ObjectType, props map[string]string) (*Object, error) {
	data, err := c.do(ctx, http.MethodPost, "/crm/v3/objects/"+string(obj), nil, propertiesPayload{Properties: props})
	if err != nil {
		return nil, err
	}
	var out Object
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("hubspot: decode create response: %w", err)
	}
	return &out, nil
}

// BatchCreate creates up to MaxBatchSize records in one call. The call is
// atomic from the caller's perspective: on any error no partial success is
// assumed. Results come back in input order.
func (c *Client) BatchCreate(ctx context.Context, obj ObjectType, inputs []map[string]string) ([]Object, error) {
	if len(inputs) > MaxBatchSize {
		return nil, ErrBatchTooLarge
	}
	if len(inputs) == 0 {
		return nil, nil
	}
	payload := struct {
		Inputs []propertiesPayload `json:"inputs"`
	}{Inputs: make([]propertiesPayload, len(inputs))}
	for i, props := range inputs {
		payload.Inputs[i] = propertiesPayload{Properties: props}
	}

	data, err := c.do(ctx, http.MethodPost, "/crm/v3/objects/"+string(obj)+"/batch/create", nil, payload)
	if err != nil {
		return nil, err
	}
	var out struct {
		Results []Object `json:"results"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("hubspot: decode batch response: %w", err)
	}
	return out.Results, nil
}

// Get fetches one record by ID. properties, when non-empty, selects which
// property values to include.
func (c *Client) Get(ctx context.Context, obj ObjectType, id string, properties []string) (*Object, error) {
	q := url.Values{}
	if len(properties) > 0 {
		q.Set("properties", strings.Join(properties, ","))
	}
	data, err := c.do(ctx, http.MethodGet, "/crm/v3/objects/"+string(obj)+"/"+url.PathEscape(id), q, nil)
	if err != nil {
		return nil, err
	}
	var out Object
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("hubspot: decode get response: %w", err)
	}
	return &out, nil
}

// Update patches property values on an existing record.
func (c *Client) Update(ctx context.Context, obj ObjectType, id string, props map[string]string) (*Object, error) {
	data, err := c.do(ctx, http.MethodPatch, "/crm/v3/objects/"+string(obj)+"/"+url.PathEscape(id), nil, propertiesPayload{Properties: props})
	if err != nil {
		return nil, err
	}
	var out Object
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("hubspot: decode update response: %w", err)
	}
	return &out, nil
}

// List returns one page of records. after is the paging cursor from a
// previous page ("" for the first page).
func (c *Client) List(ctx context.Context, obj ObjectType, limit int, after string) (*Page, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if after != "" {
		q.Set("after", after)
	}
	data, err := c.do(ctx, http.MethodGet, "/crm/v3/objects/"+string(obj), q, nil)
	if err != nil {
		return nil, err
	}
	var out Page
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("hubspot: decode list response: %w", err)
	}
	return &out, nil
}

// HealthCheck verifies credentials and connectivity with the cheapest
// available read (a one-contact page).
func (c *Client) HealthCheck(ctx context.Context) error {
	_, err := c.List(ctx, Contacts, 1, "")
	return err
}
