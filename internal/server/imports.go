package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"crmconsole/internal/csvsource"
	"crmconsole/internal/hubspot"
	"crmconsole/internal/importer"
	"crmconsole/internal/rowmap"
)

// startImport accepts a multipart CSV upload and starts an asynchronous
// import run against the given object type. Parsing happens inline so the
// caller learns about an unusable file immediately; uploading continues in
// the background and is observed via importProgress.
func (s *Server) startImport(c *gin.Context) {
	const op = "import.start"

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, op, http.StatusBadRequest, errors.New("a CSV file upload named 'file' is required"))
		return
	}
	defer file.Close()

	obj := hubspot.ObjectType(c.DefaultPostForm("objectType", string(hubspot.Contacts)))
	switch obj {
	case hubspot.Contacts, hubspot.Companies, hubspot.Deals:
	default:
		respondError(c, op, http.StatusBadRequest, errors.New("unknown object type"))
		return
	}
	dedupeColumn := c.DefaultPostForm("dedupeColumn", s.cfg.DedupeColumn)

	job := s.jobs.create()
	s.jobs.update(job.ID, func(j *jobStatus) { j.State = importer.StateParsing })

	parsed, err := csvsource.Parse(file)
	if err != nil {
		s.jobs.update(job.ID, func(j *jobStatus) {
			j.State = importer.StateError
			j.Error = err.Error()
		})
		status := http.StatusBadRequest
		if errors.Is(err, csvsource.ErrEmpty) {
			status = http.StatusUnprocessableEntity
		}
		respondError(c, op, status, err)
		return
	}

	rows, keptIdx, dropped := importer.DedupRows(parsed.Rows, dedupeColumn)
	mapper := rowmap.NewMapper(rowmap.DefaultColumns)
	items := make([]map[string]string, len(rows))
	for i, row := range rows {
		items[i] = mapper.Map(parsed.Headers, row)
	}

	s.jobs.update(job.ID, func(j *jobStatus) {
		j.State = importer.StateUploading
		j.Dropped = dropped
		j.Skipped = parsed.Skipped
		j.Summary = importer.Summary{Total: len(items)}
	})

	runner := s.runner(obj, "api_import")
	runner.SourceIndex = keptIdx
	runner.OnProgress = func(snap importer.Summary) {
		s.jobs.update(job.ID, func(j *jobStatus) { j.Summary = snap })
	}

	// The run outlives the request; progress is polled by job ID.
	go func() {
		summary := runner.Run(context.Background(), items)
		s.jobs.update(job.ID, func(j *jobStatus) {
			j.State = importer.StateDone
			j.Summary = summary
		})
	}()

	respondOK(c, op, gin.H{
		"jobId":             job.ID,
		"total":             len(items),
		"droppedDuplicates": dropped,
		"skippedLines":      parsed.Skipped,
	})
}

func (s *Server) importProgress(c *gin.Context) {
	const op = "import.progress"
	status, ok := s.jobs.get(c.Param("id"))
	if !ok {
		respondError(c, op, http.StatusNotFound, errors.New("import job not found"))
		return
	}
	respondOK(c, op, status)
}
