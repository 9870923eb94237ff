package sheets

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2/google"
)

var requiredScopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive.readonly",
}

// serviceClient builds an authenticated HTTP client from a service-account
// JSON key file. The drive.readonly scope is needed to resolve a
// spreadsheet title to its id.
func serviceClient(ctx context.Context, keyPath string) (*http.Client, error) {
	if keyPath == "" {
		return nil, fmt.Errorf("no service-account key path configured")
	}
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("reading service-account key %s: %w", keyPath, err)
	}
	cfg, err := google.JWTConfigFromJSON(data, requiredScopes...)
	if err != nil {
		return nil, fmt.Errorf("parsing service-account key %s: %w", keyPath, err)
	}
	return cfg.Client(ctx), nil
}
