package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"financas/internal/core"
	"financas/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Config selects the spreadsheet and the service account used to reach it.
// CredentialsJSON wins over CredentialsFile.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsJSON string
	CredentialsFile string
}

// values is the slice of the Sheets values API the mirror needs.
type values interface {
	get(ctx context.Context, rng string) ([][]any, error)
	update(ctx context.Context, rng string, rows [][]any) error
	append(ctx context.Context, rng string, rows [][]any) error
	clear(ctx context.Context, rng string) error
}

type Client struct {
	api   values
	sheet string
}

var _ sheets.Mirror = (*Client)(nil)

// New creates a mirror client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(cfg.SheetName) == "" {
		return nil, errors.New("missing sheet name")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &Client{
		api:   &apiValues{svc: svc, spreadsheetID: cfg.SpreadsheetID},
		sheet: cfg.SheetName,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials, falling back to GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	credentialsFile := strings.TrimSpace(cfg.CredentialsFile)
	if cfg.CredentialsJSON == "" && credentialsFile == "" {
		credentialsFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case credentialsFile != "":
		b, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	slog.InfoContext(ctx, "Creating Google Sheets service with Service Account",
		"credentials_size", len(credentialsJSON),
		"scope", gsheet.SpreadsheetsScope)

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
		goption.WithHTTPClient(newHTTPClientWithPooling()))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return svc, nil
}

// newHTTPClientWithPooling returns an HTTP client tuned for the Sheets API.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

// Upsert rewrites the row keyed by tx.ID or appends a new one. An empty
// sheet gets the header first.
func (c *Client) Upsert(ctx context.Context, tx core.Transaction) error {
	ids, err := c.api.get(ctx, c.sheet+"!A:A")
	if err != nil {
		return fmt.Errorf("read ids from %s: %w", c.sheet, err)
	}
	row := sheets.Row(tx)
	if n := rowOf(ids, tx.ID); n > 0 {
		if err := c.api.update(ctx, c.rowRange(n), [][]any{row}); err != nil {
			return fmt.Errorf("update row %d in %s: %w", n, c.sheet, err)
		}
		return nil
	}
	rows := [][]any{row}
	if len(ids) == 0 {
		rows = [][]any{sheets.Header, row}
	}
	if err := c.api.append(ctx, c.sheet+"!A:H", rows); err != nil {
		return fmt.Errorf("append to %s: %w", c.sheet, err)
	}
	return nil
}

func (c *Client) Remove(ctx context.Context, id string) error {
	ids, err := c.api.get(ctx, c.sheet+"!A:A")
	if err != nil {
		return fmt.Errorf("read ids from %s: %w", c.sheet, err)
	}
	n := rowOf(ids, id)
	if n == 0 {
		return nil
	}
	if err := c.api.clear(ctx, c.rowRange(n)); err != nil {
		return fmt.Errorf("clear row %d in %s: %w", n, c.sheet, err)
	}
	return nil
}

func (c *Client) rowRange(n int) string {
	return fmt.Sprintf("%s!A%d:H%d", c.sheet, n, n)
}

// rowOf returns the 1-based row whose first cell equals id, or 0.
func rowOf(col [][]any, id string) int {
	for i, r := range col {
		if len(r) > 0 && strings.TrimSpace(fmt.Sprint(r[0])) == id {
			return i + 1
		}
	}
	return 0
}

// inputOption stores cells exactly as sent. Descriptions are user input and
// must never be parsed as formulas.
const inputOption = "RAW"

type apiValues struct {
	svc           *gsheet.Service
	spreadsheetID string
}

func (a *apiValues) get(ctx context.Context, rng string) ([][]any, error) {
	resp, err := a.svc.Spreadsheets.Values.Get(a.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (a *apiValues) update(ctx context.Context, rng string, rows [][]any) error {
	_, err := a.svc.Spreadsheets.Values.Update(a.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption(inputOption).Context(ctx).Do()
	return err
}

func (a *apiValues) append(ctx context.Context, rng string, rows [][]any) error {
	_, err := a.svc.Spreadsheets.Values.Append(a.spreadsheetID, rng, &gsheet.ValueRange{Values: rows}).
		ValueInputOption(inputOption).InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	return err
}

func (a *apiValues) clear(ctx context.Context, rng string) error {
	_, err := a.svc.Spreadsheets.Values.Clear(a.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	return err
}
