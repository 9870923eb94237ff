package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const docParseURL = "https://api.cloud.llamaindex.ai/api/parsing/parse"

// DocParser implements TableParser against a document-parse service that
// answers with a markdown rendition of the uploaded image.
type DocParser struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	language   string
}

func NewDocParser(apiKey, language string) *DocParser {
	return &DocParser{
		httpClient: &http.Client{Timeout: 120 * time.Second},
		endpoint:   docParseURL,
		apiKey:     apiKey,
		language:   language,
	}
}

// NewDocParserWithHTTP wires a custom client and endpoint for tests.
func NewDocParserWithHTTP(hc *http.Client, endpoint, apiKey, language string) *DocParser {
	return &DocParser{httpClient: hc, endpoint: endpoint, apiKey: apiKey, language: language}
}

func (p *DocParser) Parse(ctx context.Context, image []byte) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("document parse service not configured")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("result_type", "markdown"); err != nil {
		return "", fmt.Errorf("building parse request: %w", err)
	}
	if p.language != "" {
		if err := w.WriteField("language", p.language); err != nil {
			return "", fmt.Errorf("building parse request: %w", err)
		}
	}
	part, err := w.CreateFormFile("file", "scan.jpg")
	if err != nil {
		return "", fmt.Errorf("building parse request: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return "", fmt.Errorf("building parse request: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("building parse request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("creating parse request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("parse request failed: %w", err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return "", fmt.Errorf("reading parse response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("parse error %d: %s", resp.StatusCode, string(data))
	}

	var out struct {
		Markdown string `json:"markdown"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decoding parse response: %w", err)
	}
	return out.Markdown, nil
}
