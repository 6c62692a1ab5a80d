package hubspot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// Owner is one CRM user who can own records.
type Owner struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	UserID    int64  `json:"userId,omitempty"`
	Archived  bool   `json:"archived,omitempty"`
}

// OwnerPage is one page of owners.
type OwnerPage struct {
	Results []Owner `json:"results"`
	Paging  *Paging `json:"paging,omitempty"`
}

// ListOwners returns owners, optionally filtered by email. after pages
// through results; limit defaults server-side when 0.
func (c *Client) ListOwners(ctx context.Context, email, after string, limit int) (*OwnerPage, error) {
	q := url.Values{}
	if email != "" {
		q.Set("email", email)
	}
	if after != "" {
		q.Set("after", after)
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	data, err := c.do(ctx, http.MethodGet, "/crm/v3/owners", q, nil)
	if err != nil {
		return nil, err
	}
	var out OwnerPage
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("hubspot: decode owners response: %w", err)
	}
	return &out, nil
}

// PipelineStage is one stage within a pipeline.
type PipelineStage struct {
	ID           string `json:"id"`
	Label        string `json:"label"`
	DisplayOrder int    `json:"displayOrder"`
}

// Pipeline is a deal pipeline with its ordered stages.
type Pipeline struct {
	ID           string          `json:"id"`
	Label        string          `json:"label"`
	DisplayOrder int             `json:"displayOrder"`
	Stages       []PipelineStage `json:"stages"`
}

// ListDealPipelines returns all deal pipelines.
func (c *Client) ListDealPipelines(ctx context.Context) ([]Pipeline, error) {
	data, err := c.do(ctx, http.MethodGet, "/crm/v3/pipelines/deals", nil, nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Results []Pipeline `json:"results"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("hubspot: decode pipelines response: %w", err)
	}
	return out.Results, nil
}

// ListDealPipelineStages returns the stages of one deal pipeline.
func (c *Client) ListDealPipelineStages(ctx context.Context, pipelineID string) ([]PipelineStage, error) {
	data, err := c.do(ctx, http.MethodGet, "/crm/v3/pipelines/deals/"+url.PathEscape(pipelineID), nil, nil)
	if err != nil {
		return nil, err
	}
	var out Pipeline
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("hubspot: decode pipeline response: %w", err)
	}
	return out.Stages, nil
}

// PropertyDefinition describes one property of an object schema.
type PropertyDefinition struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	Type      string `json:"type"`
	FieldType string `json:"fieldType"`
	GroupName string `json:"groupName,omitempty"`
}

// ListProperties returns the property schema for an object type.
func (c *Client) ListProperties(ctx context.Context, obj ObjectType) ([]PropertyDefinition, error) {
	data, err := c.do(ctx, http.MethodGet, "/crm/v3/properties/"+string(obj), nil, nil)
	if err != nil {
		return nil, err
	}
	var out struct {
		Results []PropertyDefinition `json:"results"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("hubspot: decode properties response: %w", err)
	}
	return out.Results, nil
}

// CreateNote records a note engagement.
func (c *Client) CreateNote(ctx context.Context, props map[string]string) (*Object, error) {
	return c.Create(ctx, Notes, props)
}

// CreateTask records a task engagement.
func (c *Client) CreateTask(ctx context.Context, props map[string]string) (*Object, error) {
	return c.Create(ctx, Tasks, props)
}
