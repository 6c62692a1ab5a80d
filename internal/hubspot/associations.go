package hubspot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// HubSpot-defined association type IDs used as defaults when the caller
// does not specify one.
const (
	ContactToCompanyType = 279
	DealToContactType    = 4
	DealToCompanyType    = 5
)

type associationSpec struct {
	AssociationCategory string `json:"associationCategory"`
	AssociationTypeID   int    `json:"associationTypeId"`
}

// Associate links two records using the v4 associations API.
func (c *Client) Associate(ctx context.Context, from ObjectType, fromID string, to ObjectType, toID string, typeID int) (json.RawMessage, error) {
	path := "/crm/v4/objects/" + string(from) + "/" + url.PathEscape(fromID) +
		"/associations/" + string(to) + "/" + url.PathEscape(toID)
	data, err := c.do(ctx, http.MethodPut, path, nil, []associationSpec{{
		AssociationCategory: "HUBSPOT_DEFINED",
		AssociationTypeID:   typeID,
	}})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// AssociateContactToCompany links a contact to a company. typeID 0 uses the
// HubSpot-defined default.
func (c *Client) AssociateContactToCompany(ctx context.Context, contactID, companyID string, typeID int) (json.RawMessage, error) {
	if typeID == 0 {
		typeID = ContactToCompanyType
	}
	return c.Associate(ctx, Contacts, contactID, Companies, companyID, typeID)
}

// AssociateDealToContact links a deal to a contact.
func (c *Client) AssociateDealToContact(ctx context.Context, dealID, contactID string, typeID int) (json.RawMessage, error) {
	if typeID == 0 {
		typeID = DealToContactType
	}
	return c.Associate(ctx, Deals, dealID, Contacts, contactID, typeID)
}

// AssociateDealToCompany links a deal to a company.
func (c *Client) AssociateDealToCompany(ctx context.Context, dealID, companyID string, typeID int) (json.RawMessage, error) {
	if typeID == 0 {
		typeID = DealToCompanyType
	}
	return c.Associate(ctx, Deals, dealID, Companies, companyID, typeID)
}
