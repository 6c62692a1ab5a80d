// Package sheets implements a minimal client for the Google Drive and
// Sheets REST APIs, scoped to what the import console needs: listing a
// user's spreadsheets, listing the tabs of one spreadsheet, and reading a
// tab's cells as raw rows.
//
// Authentication is a user-supplied OAuth bearer token attached per request;
// token acquisition and refresh are outside this package's scope.
package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"crmconsole/internal/rowmap"
)

const (
	driveBaseURL  = "https://www.googleapis.com"
	sheetsBaseURL = "https://sheets.googleapis.com"
)

// ErrEmptySheet reports a tab with no data rows (fewer than two rows, since
// the first row is the header), which is fatal to an import run.
var ErrEmptySheet = errors.New("sheets: sheet has no data rows")

// Config configures the client. Zero values default to the public Google
// API origins and a 30s timeout.
type Config struct {
	Token     string
	DriveURL  string // override for tests
	SheetsURL string // override for tests
	Timeout   time.Duration
	Transport http.RoundTripper
}

// Client talks to the Drive v3 and Sheets v4 APIs.
type Client struct {
	httpClient *http.Client
	driveURL   string
	sheetsURL  string
	token      string
}

// New constructs a Client from Config, applying defaults for zero values.
func New(cfg Config) *Client {
	if cfg.DriveURL == "" {
		cfg.DriveURL = driveBaseURL
	}
	if cfg.SheetsURL == "" {
		cfg.SheetsURL = sheetsBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	hc := &http.Client{Timeout: cfg.Timeout}
	if cfg.Transport != nil {
		hc.Transport = cfg.Transport
	}
	return &Client{
		httpClient: hc,
		driveURL:   cfg.DriveURL,
		sheetsURL:  cfg.SheetsURL,
		token:      cfg.Token,
	}
}

func (c *Client) get(ctx context.Context, base, path string, query url.Values) ([]byte, error) {
	u := base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("sheets: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sheets: request: %w", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("sheets: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("sheets: status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}
	return data, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Spreadsheet is one Drive file of the spreadsheet MIME type.
type Spreadsheet struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ModifiedTime string `json:"modifiedTime"`
}

// ListSpreadsheets returns the user's most recently modified spreadsheets
// (up to 25), newest first.
func (c *Client) ListSpreadsheets(ctx context.Context) ([]Spreadsheet, error) {
	q := url.Values{}
	q.Set("q", "mimeType='application/vnd.google-apps.spreadsheet' and trashed=false")
	q.Set("orderBy", "modifiedTime desc")
	q.Set("pageSize", "25")
	q.Set("fields", "files(id,name,modifiedTime)")

	data, err := c.get(ctx, c.driveURL, "/drive/v3/files", q)
	if err != nil {
		return nil, err
	}
	var out struct {
		Files []Spreadsheet `json:"files"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("sheets: decode files response: %w", err)
	}
	return out.Files, nil
}

// Tab is one sheet within a spreadsheet.
type Tab struct {
	SheetID int    `json:"sheetId"`
	Title   string `json:"title"`
	Index   int    `json:"index"`
}

// ListTabs returns a spreadsheet's tabs in sheet order.
func (c *Client) ListTabs(ctx context.Context, spreadsheetID string) ([]Tab, error) {
	q := url.Values{}
	q.Set("fields", "sheets.properties")

	data, err := c.get(ctx, c.sheetsURL, "/v4/spreadsheets/"+url.PathEscape(spreadsheetID), q)
	if err != nil {
		return nil, err
	}
	var out struct {
		Sheets []struct {
			Properties Tab `json:"properties"`
		} `json:"sheets"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("sheets: decode spreadsheet response: %w", err)
	}
	tabs := make([]Tab, len(out.Sheets))
	for i, s := range out.Sheets {
		tabs[i] = s.Properties
	}
	return tabs, nil
}

// ReadRows reads an entire tab with formatted (display) values. The first
// row is treated as headers; every following row becomes a Row keyed by
// header label, with short rows padded by empty strings. Returns
// ErrEmptySheet when the tab has no data rows.
func (c *Client) ReadRows(ctx context.Context, spreadsheetID, tabTitle string) ([]string, []rowmap.Row, error) {
	q := url.Values{}
	q.Set("valueRenderOption", "FORMATTED_VALUE")

	path := "/v4/spreadsheets/" + url.PathEscape(spreadsheetID) + "/values/" + url.PathEscape(tabTitle)
	data, err := c.get(ctx, c.sheetsURL, path, q)
	if err != nil {
		return nil, nil, err
	}
	var out struct {
		Values [][]string `json:"values"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, nil, fmt.Errorf("sheets: decode values response: %w", err)
	}
	if len(out.Values) < 2 {
		return nil, nil, ErrEmptySheet
	}

	headers := rowmap.StripHeaderBOM(out.Values[0])
	rows := make([]rowmap.Row, 0, len(out.Values)-1)
	for _, cells := range out.Values[1:] {
		row := make(rowmap.Row, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(cells) {
				row[h] = cells[i]
			} else {
				row[h] = ""
			}
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}
