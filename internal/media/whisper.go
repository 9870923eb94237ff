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

const transcribeURL = "https://api.openai.com/v1/audio/transcriptions"

// WhisperTranscriber implements Transcriber against the OpenAI audio
// transcription endpoint.
type WhisperTranscriber struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
	language   string
}

func NewWhisperTranscriber(apiKey, model, language string) *WhisperTranscriber {
	return &WhisperTranscriber{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		endpoint:   transcribeURL,
		apiKey:     apiKey,
		model:      model,
		language:   language,
	}
}

// NewWhisperTranscriberWithHTTP wires a custom client and endpoint for
// tests.
func NewWhisperTranscriberWithHTTP(hc *http.Client, endpoint, apiKey, model, language string) *WhisperTranscriber {
	return &WhisperTranscriber{httpClient: hc, endpoint: endpoint, apiKey: apiKey, model: model, language: language}
}

func (t *WhisperTranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if t.apiKey == "" {
		return "", fmt.Errorf("transcription service not configured")
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("model", t.model); err != nil {
		return "", fmt.Errorf("building transcription request: %w", err)
	}
	if t.language != "" {
		if err := w.WriteField("language", t.language); err != nil {
			return "", fmt.Errorf("building transcription request: %w", err)
		}
	}
	part, err := w.CreateFormFile("file", "voice.ogg")
	if err != nil {
		return "", fmt.Errorf("building transcription request: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("building transcription request: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("building transcription request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("creating transcription request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	data, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return "", fmt.Errorf("reading transcription response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription error %d: %s", resp.StatusCode, string(data))
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decoding transcription response: %w", err)
	}
	return out.Text, nil
}
