package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const (
	sheetsBaseURL = "https://sheets.googleapis.com/v4"
	driveBaseURL  = "https://www.googleapis.com/drive/v3"
)

// ErrSheetNotFound reports a missing worksheet. Callers treat it as
// "no data yet" and create the sheet lazily.
var ErrSheetNotFound = errors.New("worksheet not found")

// Client talks to one Google spreadsheet through the Sheets v4 API.
type Client struct {
	httpClient    *http.Client
	sheetsBase    string
	driveBase     string
	spreadsheetID string
}

// NewClient authenticates with the service-account key at keyPath and
// opens the spreadsheet with the given title (or id: anything that does
// not resolve by title lookup is tried verbatim).
func NewClient(ctx context.Context, keyPath, spreadsheet string) (*Client, error) {
	hc, err := serviceClient(ctx, keyPath)
	if err != nil {
		return nil, err
	}
	c := &Client{
		httpClient: hc,
		sheetsBase: sheetsBaseURL,
		driveBase:  driveBaseURL,
	}
	id, err := c.resolveSpreadsheet(ctx, spreadsheet)
	if err != nil {
		return nil, err
	}
	c.spreadsheetID = id
	return c, nil
}

// NewClientWithHTTP wires a prebuilt HTTP client and base URL; used by
// tests against a stub server.
func NewClientWithHTTP(hc *http.Client, baseURL, spreadsheetID string) *Client {
	return &Client{
		httpClient:    hc,
		sheetsBase:    baseURL,
		driveBase:     baseURL,
		spreadsheetID: spreadsheetID,
	}
}

// resolveSpreadsheet looks the title up in Drive; if nothing matches, the
// given string is assumed to already be a spreadsheet id.
func (c *Client) resolveSpreadsheet(ctx context.Context, spreadsheet string) (string, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = 'application/vnd.google-apps.spreadsheet'",
		strings.ReplaceAll(spreadsheet, "'", "\\'"))
	endpoint := fmt.Sprintf("%s/files?q=%s&fields=files(id,name)&pageSize=1",
		c.driveBase, url.QueryEscape(q))

	var resp struct {
		Files []struct {
			ID string `json:"id"`
		} `json:"files"`
	}
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return "", fmt.Errorf("resolving spreadsheet %q: %w", spreadsheet, err)
	}
	if len(resp.Files) == 0 {
		return spreadsheet, nil
	}
	return resp.Files[0].ID, nil
}

// ReadRows returns every populated row of the worksheet, header included.
// Trailing empty cells are trimmed by the backend.
func (c *Client) ReadRows(ctx context.Context, sheet string) ([][]string, error) {
	endpoint := fmt.Sprintf("%s/spreadsheets/%s/values/%s",
		c.sheetsBase, c.spreadsheetID, url.PathEscape(quoteRange(sheet)))

	var resp struct {
		Values [][]string `json:"values"`
	}
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// UpdateRow overwrites the worksheet row at the 1-based index.
func (c *Client) UpdateRow(ctx context.Context, sheet string, row int, values []string) error {
	rng := fmt.Sprintf("%s!A%d", sheet, row)
	endpoint := fmt.Sprintf("%s/spreadsheets/%s/values/%s?valueInputOption=RAW",
		c.sheetsBase, c.spreadsheetID, url.PathEscape(rng))
	body := map[string]any{"values": [][]string{values}}
	return c.doJSON(ctx, http.MethodPut, endpoint, body, nil)
}

// AppendRow appends a row after the worksheet's last populated row.
func (c *Client) AppendRow(ctx context.Context, sheet string, values []string) error {
	rng := fmt.Sprintf("%s!A1", sheet)
	endpoint := fmt.Sprintf("%s/spreadsheets/%s/values/%s:append?valueInputOption=RAW&insertDataOption=INSERT_ROWS",
		c.sheetsBase, c.spreadsheetID, url.PathEscape(rng))
	body := map[string]any{"values": [][]string{values}}
	return c.doJSON(ctx, http.MethodPost, endpoint, body, nil)
}

// UpdateCell overwrites a single cell. row and col are 1-based.
func (c *Client) UpdateCell(ctx context.Context, sheet string, row, col int, value string) error {
	rng := fmt.Sprintf("%s!%s%d", sheet, columnLetter(col), row)
	endpoint := fmt.Sprintf("%s/spreadsheets/%s/values/%s?valueInputOption=RAW",
		c.sheetsBase, c.spreadsheetID, url.PathEscape(rng))
	body := map[string]any{"values": [][]string{{value}}}
	return c.doJSON(ctx, http.MethodPut, endpoint, body, nil)
}

// Titles lists the worksheet titles of the spreadsheet.
func (c *Client) Titles(ctx context.Context) ([]string, error) {
	endpoint := fmt.Sprintf("%s/spreadsheets/%s?fields=sheets.properties.title",
		c.sheetsBase, c.spreadsheetID)

	var resp struct {
		Sheets []struct {
			Properties struct {
				Title string `json:"title"`
			} `json:"properties"`
		} `json:"sheets"`
	}
	if err := c.doJSON(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(resp.Sheets))
	for _, s := range resp.Sheets {
		titles = append(titles, s.Properties.Title)
	}
	return titles, nil
}

// EnsureSheet adds the worksheet if it does not exist yet and reports
// whether it was created.
func (c *Client) EnsureSheet(ctx context.Context, title string) (bool, error) {
	titles, err := c.Titles(ctx)
	if err != nil {
		return false, err
	}
	for _, t := range titles {
		if t == title {
			return false, nil
		}
	}

	endpoint := fmt.Sprintf("%s/spreadsheets/%s:batchUpdate", c.sheetsBase, c.spreadsheetID)
	body := map[string]any{
		"requests": []map[string]any{
			{"addSheet": map[string]any{"properties": map[string]any{"title": title}}},
		},
	}
	if err := c.doJSON(ctx, http.MethodPost, endpoint, body, nil); err != nil {
		return false, fmt.Errorf("adding worksheet %q: %w", title, err)
	}
	return true, nil
}

// doJSON performs one API call, decoding the response into out when given.
// A 400 on a range read means the worksheet does not exist and maps to
// ErrSheetNotFound.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sheets API request failed: %w", err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode == http.StatusBadRequest && strings.Contains(string(data), "Unable to parse range") {
		return ErrSheetNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("sheets API error %d: %s", resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decoding sheets response: %w", err)
		}
	}
	return nil
}

// quoteRange wraps titles containing spaces or symbols in single quotes,
// A1-notation style.
func quoteRange(sheet string) string {
	if strings.ContainsAny(sheet, " !:'") {
		return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	}
	return sheet
}

// columnLetter converts a 1-based column index to its A1 letter form.
func columnLetter(col int) string {
	var b []byte
	for col > 0 {
		col--
		b = append([]byte{byte('A' + col%26)}, b...)
		col /= 26
	}
	return string(b)
}
