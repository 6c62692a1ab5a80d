package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"crmconsole/internal/sheets"
)

func (s *Server) listSpreadsheets(c *gin.Context) {
	const op = "googleSheets.list"
	files, err := s.gs.ListSpreadsheets(c.Request.Context())
	if err != nil {
		respondError(c, op, http.StatusBadGateway, err)
		return
	}
	respondOK(c, op, files)
}

func (s *Server) listTabs(c *gin.Context) {
	const op = "googleSheets.tabs"
	tabs, err := s.gs.ListTabs(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, op, http.StatusBadGateway, err)
		return
	}
	respondOK(c, op, tabs)
}

func (s *Server) readSheetData(c *gin.Context) {
	const op = "googleSheets.data"
	tab := c.Query("sheet")
	if tab == "" {
		respondError(c, op, http.StatusBadRequest, errors.New("sheet query parameter is required"))
		return
	}
	headers, rows, err := s.gs.ReadRows(c.Request.Context(), c.Param("id"), tab)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, sheets.ErrEmptySheet) {
			status = http.StatusUnprocessableEntity
		}
		respondError(c, op, status, err)
		return
	}
	respondOK(c, op, gin.H{"headers": headers, "rows": rows})
}
