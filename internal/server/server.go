// Package server implements the HTTP console backend: a thin Gin surface
// over the CRM client, the Google Sheets client, and the import pipeline.
// Every response uses a uniform envelope carrying a correlation ID so a
// frontend can tie log lines to requests.
package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"crmconsole/internal/config"
	"crmconsole/internal/hubspot"
	"crmconsole/internal/sheets"
)

// Server wires the API handlers to their collaborators.
type Server struct {
	hub  *hubspot.Client
	gs   *sheets.Client
	cfg  *config.Config
	jobs *jobRegistry
}

// New builds a Server from a loaded configuration.
func New(cfg *config.Config) *Server {
	return &Server{
		hub:  hubspot.New(hubspot.Config{Token: cfg.HubSpotToken}),
		gs:   sheets.New(sheets.Config{Token: cfg.GoogleToken}),
		cfg:  cfg,
		jobs: newJobRegistry(),
	}
}

// NewWithClients is the testable constructor: callers supply prebuilt
// clients, typically pointed at httptest servers.
func NewWithClients(cfg *config.Config, hub *hubspot.Client, gs *sheets.Client) *Server {
	return &Server{hub: hub, gs: gs, cfg: cfg, jobs: newJobRegistry()}
}

// Router builds the Gin engine with middleware and all API routes.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", correlationHeader},
		MaxAge:          12 * time.Hour,
	}))
	r.Use(withCorrelationID())

	api := r.Group("/api")

	hs := api.Group("/hubspot")
	{
		hs.GET("/health", s.health)

		for _, obj := range []hubspot.ObjectType{hubspot.Contacts, hubspot.Companies, hubspot.Deals} {
			g := hs.Group("/" + string(obj))
			g.POST("", s.createObject(obj))
			g.POST("/batch-create", s.batchCreateObjects(obj))
			g.GET("", s.listObjects(obj))
			g.GET("/:id", s.getObject(obj))
			g.PATCH("/:id", s.updateObject(obj))
		}

		hs.POST("/contacts/search", s.searchContacts)
		hs.POST("/contacts/upsert", s.upsertContact)
		hs.POST("/companies/search", s.searchCompanies)

		hs.PUT("/associations/contact-to-company/:contactId/:companyId", s.associateContactToCompany)
		hs.PUT("/associations/deal-to-contact/:dealId/:contactId", s.associateDealToContact)
		hs.PUT("/associations/deal-to-company/:dealId/:companyId", s.associateDealToCompany)

		hs.GET("/owners", s.listOwners)
		hs.GET("/pipelines/deals", s.listDealPipelines)
		hs.GET("/pipelines/deals/:pipelineId/stages", s.listDealPipelineStages)
		hs.GET("/properties/:objectType", s.listProperties)

		hs.POST("/engagements/notes", s.createNote)
		hs.POST("/engagements/tasks", s.createTask)
	}

	gsr := api.Group("/google-sheets")
	{
		gsr.GET("/list", s.listSpreadsheets)
		gsr.GET("/:id/sheets", s.listTabs)
		gsr.GET("/:id/data", s.readSheetData)
	}

	imp := api.Group("/import")
	{
		imp.POST("", s.startImport)
		imp.GET("/:id", s.importProgress)
	}

	return r
}
