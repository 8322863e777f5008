package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"household/internal/core"

	"golang.org/x/oauth2"
)

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{CredentialsJSON: "{}"})
	if err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "test-id"})
	if err == nil {
		t.Fatal("expected error without credentials")
	}
	if !strings.Contains(err.Error(), "missing service account credentials") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadCredentials(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "sa.json")
	if err := os.WriteFile(file, []byte(`{"type":"service_account"}`), 0o600); err != nil {
		t.Fatalf("write credentials: %v", err)
	}

	tests := []struct {
		name     string
		json     string
		file     string
		want     string
		errMatch string
	}{
		{name: "inline json wins", json: ` {"inline":true} `, file: file, want: `{"inline":true}`},
		{name: "file", file: file, want: `{"type":"service_account"}`},
		{name: "unreadable file", file: filepath.Join(dir, "missing.json"), errMatch: "read service account file"},
		{name: "nothing set", errMatch: "missing service account credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := loadCredentials(tt.json, tt.file)
			if tt.errMatch != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errMatch) {
					t.Fatalf("error = %v, want containing %q", err, tt.errMatch)
				}
				return
			}
			if err != nil {
				t.Fatalf("loadCredentials() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("loadCredentials() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAppendExpense_Uninitialized(t *testing.T) {
	c := &Client{spreadsheetID: "test", sheet: "Expenses"}
	_, err := c.AppendExpense(context.Background(), core.Expense{Description: "x"})
	if err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Errorf("AppendExpense() error = %v", err)
	}
}

func TestExportRow(t *testing.T) {
	created := time.Date(2024, 7, 15, 10, 0, 0, 0, time.Local)
	row := exportRow(core.Expense{
		ID:          9,
		Description: "Groceries",
		Amount:      core.Money{Cents: 1250},
		Category:    "Food",
		CreatedAt:   created,
	})

	if len(row) != 5 {
		t.Fatalf("len(row) = %d, want 5", len(row))
	}
	if row[0] != "2024-07-15" {
		t.Errorf("date = %v", row[0])
	}
	if row[1] != "Groceries" || row[3] != "Food" {
		t.Errorf("text columns = %v", row)
	}
	if row[2] != 12.5 {
		t.Errorf("amount = %v, want 12.5", row[2])
	}
	if row[4] != int64(9) {
		t.Errorf("id = %v, want 9", row[4])
	}
}

const testOAuthClient = `{"installed":{"client_id":"id.apps.googleusercontent.com","client_secret":"secret","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`

func TestOAuthConfig(t *testing.T) {
	cfg, err := OAuthConfig(testOAuthClient, "")
	if err != nil {
		t.Fatalf("OAuthConfig() error = %v", err)
	}
	if cfg.ClientID != "id.apps.googleusercontent.com" {
		t.Errorf("ClientID = %q", cfg.ClientID)
	}
	if len(cfg.Scopes) != 1 || !strings.Contains(cfg.Scopes[0], "spreadsheets") {
		t.Errorf("Scopes = %v", cfg.Scopes)
	}

	if _, err := OAuthConfig("", ""); err == nil || !strings.Contains(err.Error(), "missing OAuth client") {
		t.Errorf("empty client error = %v", err)
	}
}

func TestSaveAndLoadToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	tok := &oauth2.Token{AccessToken: "access", RefreshToken: "refresh", TokenType: "Bearer"}

	if err := SaveToken(path, tok); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("token file mode = %v, want 0600", perm)
	}

	got, err := LoadToken(path)
	if err != nil {
		t.Fatalf("LoadToken() error = %v", err)
	}
	if got.RefreshToken != "refresh" {
		t.Errorf("RefreshToken = %q", got.RefreshToken)
	}
}

func TestLoadToken_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	if err := os.WriteFile(path, []byte(`{}`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadToken(path); err == nil || !strings.Contains(err.Error(), "is empty") {
		t.Errorf("LoadToken() error = %v", err)
	}
}

func TestNew_OAuthMissingToken(t *testing.T) {
	_, err := New(context.Background(), Options{
		SpreadsheetID:   "test-id",
		OAuthClientJSON: testOAuthClient,
		OAuthTokenFile:  filepath.Join(t.TempDir(), "absent.json"),
	})
	if err == nil || !strings.Contains(err.Error(), "read oauth token") {
		t.Errorf("New() error = %v", err)
	}
}
