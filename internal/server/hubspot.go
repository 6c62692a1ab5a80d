package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"crmconsole/internal/hubspot"
	"crmconsole/internal/importer"
)

var errInvalidPayload = errors.New("invalid payload")

// splitCSV splits a comma-separated query parameter, trimming blanks.
func splitCSV(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

type propertiesBody struct {
	Properties map[string]string `json:"properties"`
}

func (s *Server) health(c *gin.Context) {
	if err := s.hub.HealthCheck(c.Request.Context()); err != nil {
		respondAPIError(c, "hubspot.health", err)
		return
	}
	respondOK(c, "hubspot.health", gin.H{"status": "ok"})
}

func (s *Server) createObject(obj hubspot.ObjectType) gin.HandlerFunc {
	op := "hubspot." + string(obj) + ".create"
	return func(c *gin.Context) {
		var body propertiesBody
		if err := c.ShouldBindJSON(&body); err != nil || len(body.Properties) == 0 {
			respondError(c, op, http.StatusBadRequest, errInvalidPayload)
			return
		}
		created, err := s.hub.Create(c.Request.Context(), obj, body.Properties)
		if err != nil {
			respondAPIError(c, op, err)
			return
		}
		respondOK(c, op, created)
	}
}

// batchCreateObjects runs the import pipeline's submit semantics server-side:
// one batch call, and on batch failure a per-item fallback with
// property-removal retry, so a single bad record never sinks the batch.
func (s *Server) batchCreateObjects(obj hubspot.ObjectType) gin.HandlerFunc {
	op := "hubspot." + string(obj) + ".batchCreate"
	return func(c *gin.Context) {
		var body struct {
			Inputs []propertiesBody `json:"inputs"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			respondError(c, op, http.StatusBadRequest, errInvalidPayload)
			return
		}
		if len(body.Inputs) > hubspot.MaxBatchSize {
			respondError(c, op, http.StatusBadRequest, hubspot.ErrBatchTooLarge)
			return
		}

		items := make([]map[string]string, len(body.Inputs))
		for i, in := range body.Inputs {
			items[i] = in.Properties
		}

		runner := s.runner(obj, "api_batch_create")
		summary := runner.Run(c.Request.Context(), items)
		respondOK(c, op, summary)
	}
}

// runner builds an import Runner bound to one CRM object type.
func (s *Server) runner(obj hubspot.ObjectType, job string) *importer.Runner {
	return &importer.Runner{
		BatchCreate: func(ctx context.Context, inputs []map[string]string) ([]string, error) {
			results, err := s.hub.BatchCreate(ctx, obj, inputs)
			if err != nil {
				return nil, err
			}
			ids := make([]string, len(results))
			for i, r := range results {
				ids[i] = r.ID
			}
			return ids, nil
		},
		CreateOne: func(ctx context.Context, props map[string]string) (string, error) {
			created, err := s.hub.Create(ctx, obj, props)
			if err != nil {
				return "", err
			}
			return created.ID, nil
		},
		Concurrency: s.cfg.Concurrency,
		BatchSize:   s.cfg.BatchSize,
		Pause:       s.cfg.FallbackPause,
		Job:         job,
	}
}

func (s *Server) getObject(obj hubspot.ObjectType) gin.HandlerFunc {
	op := "hubspot." + string(obj) + ".get"
	return func(c *gin.Context) {
		var props []string
		if raw := c.Query("properties"); raw != "" {
			props = splitCSV(raw)
		}
		found, err := s.hub.Get(c.Request.Context(), obj, c.Param("id"), props)
		if err != nil {
			respondAPIError(c, op, err)
			return
		}
		respondOK(c, op, found)
	}
}

func (s *Server) updateObject(obj hubspot.ObjectType) gin.HandlerFunc {
	op := "hubspot." + string(obj) + ".update"
	return func(c *gin.Context) {
		var body propertiesBody
		if err := c.ShouldBindJSON(&body); err != nil || len(body.Properties) == 0 {
			respondError(c, op, http.StatusBadRequest, errInvalidPayload)
			return
		}
		updated, err := s.hub.Update(c.Request.Context(), obj, c.Param("id"), body.Properties)
		if err != nil {
			respondAPIError(c, op, err)
			return
		}
		respondOK(c, op, updated)
	}
}

func (s *Server) listObjects(obj hubspot.ObjectType) gin.HandlerFunc {
	op := "hubspot." + string(obj) + ".list"
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
		page, err := s.hub.List(c.Request.Context(), obj, limit, c.Query("after"))
		if err != nil {
			respondAPIError(c, op, err)
			return
		}
		respondOK(c, op, page)
	}
}

func (s *Server) searchContacts(c *gin.Context) {
	const op = "hubspot.contacts.search"
	var body struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Email == "" {
		respondError(c, op, http.StatusBadRequest, errInvalidPayload)
		return
	}
	page, err := s.hub.SearchContactByEmail(c.Request.Context(), body.Email)
	if err != nil {
		respondAPIError(c, op, err)
		return
	}
	respondOK(c, op, page)
}

func (s *Server) searchCompanies(c *gin.Context) {
	const op = "hubspot.companies.search"
	var body struct {
		Domain string `json:"domain"`
		Name   string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || (body.Domain == "" && body.Name == "") {
		respondError(c, op, http.StatusBadRequest, errInvalidPayload)
		return
	}
	page, err := s.hub.SearchCompanies(c.Request.Context(), body.Domain, body.Name)
	if err != nil {
		respondAPIError(c, op, err)
		return
	}
	respondOK(c, op, page)
}

func (s *Server) upsertContact(c *gin.Context) {
	const op = "hubspot.contacts.upsert"
	var body struct {
		Email      string            `json:"email"`
		Properties map[string]string `json:"properties"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Email == "" {
		respondError(c, op, http.StatusBadRequest, errInvalidPayload)
		return
	}
	result, err := s.hub.UpsertContactByEmail(c.Request.Context(), body.Email, body.Properties)
	if err != nil {
		respondAPIError(c, op, err)
		return
	}
	respondOK(c, op, result)
}

func (s *Server) associateContactToCompany(c *gin.Context) {
	const op = "hubspot.associations.contactToCompany"
	raw, err := s.hub.AssociateContactToCompany(c.Request.Context(), c.Param("contactId"), c.Param("companyId"), 0)
	if err != nil {
		respondAPIError(c, op, err)
		return
	}
	respondOK(c, op, raw)
}

func (s *Server) associateDealToContact(c *gin.Context) {
	const op = "hubspot.associations.dealToContact"
	raw, err := s.hub.AssociateDealToContact(c.Request.Context(), c.Param("dealId"), c.Param("contactId"), 0)
	if err != nil {
		respondAPIError(c, op, err)
		return
	}
	respondOK(c, op, raw)
}

func (s *Server) associateDealToCompany(c *gin.Context) {
	const op = "hubspot.associations.dealToCompany"
	raw, err := s.hub.AssociateDealToCompany(c.Request.Context(), c.Param("dealId"), c.Param("companyId"), 0)
	if err != nil {
		respondAPIError(c, op, err)
		return
	}
	respondOK(c, op, raw)
}

func (s *Server) listOwners(c *gin.Context) {
	const op = "hubspot.owners.list"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	page, err := s.hub.ListOwners(c.Request.Context(), c.Query("email"), c.Query("after"), limit)
	if err != nil {
		respondAPIError(c, op, err)
		return
	}
	respondOK(c, op, page)
}

func (s *Server) listDealPipelines(c *gin.Context) {
	const op = "hubspot.pipelines.deals.list"
	pipelines, err := s.hub.ListDealPipelines(c.Request.Context())
	if err != nil {
		respondAPIError(c, op, err)
		return
	}
	respondOK(c, op, pipelines)
}

func (s *Server) listDealPipelineStages(c *gin.Context) {
	const op = "hubspot.pipelines.deals.stages"
	stages, err := s.hub.ListDealPipelineStages(c.Request.Context(), c.Param("pipelineId"))
	if err != nil {
		respondAPIError(c, op, err)
		return
	}
	respondOK(c, op, stages)
}

func (s *Server) listProperties(c *gin.Context) {
	const op = "hubspot.properties.list"
	obj := hubspot.ObjectType(c.Param("objectType"))
	switch obj {
	case hubspot.Contacts, hubspot.Companies, hubspot.Deals:
	default:
		respondError(c, op, http.StatusBadRequest, errors.New("unknown object type"))
		return
	}
	props, err := s.hub.ListProperties(c.Request.Context(), obj)
	if err != nil {
		respondAPIError(c, op, err)
		return
	}
	respondOK(c, op, props)
}

func (s *Server) createNote(c *gin.Context) {
	const op = "hubspot.engagements.notes.create"
	var body propertiesBody
	if err := c.ShouldBindJSON(&body); err != nil || len(body.Properties) == 0 {
		respondError(c, op, http.StatusBadRequest, errInvalidPayload)
		return
	}
	if _, ok := body.Properties["hs_timestamp"]; !ok {
		body.Properties["hs_timestamp"] = strconv.FormatInt(time.Now().UnixMilli(), 10)
	}
	created, err := s.hub.CreateNote(c.Request.Context(), body.Properties)
	if err != nil {
		respondAPIError(c, op, err)
		return
	}
	respondOK(c, op, created)
}

func (s *Server) createTask(c *gin.Context) {
	const op = "hubspot.engagements.tasks.create"
	var body propertiesBody
	if err := c.ShouldBindJSON(&body); err != nil || len(body.Properties) == 0 {
		respondError(c, op, http.StatusBadRequest, errInvalidPayload)
		return
	}
	if _, ok := body.Properties["hs_timestamp"]; !ok {
		body.Properties["hs_timestamp"] = strconv.FormatInt(time.Now().UnixMilli(), 10)
	}
	created, err := s.hub.CreateTask(c.Request.Context(), body.Properties)
	if err != nil {
		respondAPIError(c, op, err)
		return
	}
	respondOK(c, op, created)
}
