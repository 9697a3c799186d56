package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// erpEnvKeys are every env var Load() reads for the five required ERP
// credentials plus the base URL, saved and restored around each test so
// tests don't leak state into each other via the process environment.
var erpEnvKeys = []string{
	"ERP_ACCOUNT_ID", "ERP_CONSUMER_KEY", "ERP_CONSUMER_SECRET",
	"ERP_TOKEN_ID", "ERP_TOKEN_SECRET", "ERP_BASE_URL",
	"ALLOWED_ORIGINS", "CREDENTIALS_FILE",
}

func withCleanEnv(t *testing.T) {
	t.Helper()
	saved := map[string]string{}
	for _, k := range erpEnvKeys {
		saved[k] = os.Getenv(k)
		os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for k, v := range saved {
			if v == "" {
				os.Unsetenv(k)
			} else {
				os.Setenv(k, v)
			}
		}
	})
}

func setRequiredCreds(t *testing.T) {
	t.Helper()
	os.Setenv("ERP_ACCOUNT_ID", "123456")
	os.Setenv("ERP_CONSUMER_KEY", "ck")
	os.Setenv("ERP_CONSUMER_SECRET", "cs")
	os.Setenv("ERP_TOKEN_ID", "tid")
	os.Setenv("ERP_TOKEN_SECRET", "ts")
	os.Setenv("ERP_BASE_URL", "https://123456.suitetalk.api.netsuite.com")
	// Point CREDENTIALS_FILE somewhere that can't possibly exist, so
	// fillFromFile's file-fallback path never interferes with env-only tests.
	os.Setenv("CREDENTIALS_FILE", filepath.Join(t.TempDir(), "nonexistent.json"))
}

func TestLoad_AllowedOrigins(t *testing.T) {
	withCleanEnv(t)
	setRequiredCreds(t)

	tests := []struct {
		name            string
		envOrigins      string
		expectedOrigins []string
	}{
		{name: "default origins", envOrigins: "", expectedOrigins: []string{"http://localhost:3000"}},
		{name: "single origin", envOrigins: "https://example.com", expectedOrigins: []string{"https://example.com"}},
		{
			name:            "multiple origins",
			envOrigins:      "https://example.com,https://api.example.com",
			expectedOrigins: []string{"https://example.com", "https://api.example.com"},
		},
		{
			name:            "origins with whitespace",
			envOrigins:      " https://example.com , https://api.example.com ",
			expectedOrigins: []string{"https://example.com", "https://api.example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Setenv("ALLOWED_ORIGINS", tt.envOrigins)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !reflect.DeepEqual(cfg.AllowedOrigins, tt.expectedOrigins) {
				t.Errorf("Load() allowed origins = %v, want %v", cfg.AllowedOrigins, tt.expectedOrigins)
			}
		})
	}
}

func TestLoad_MissingCredentials_CombinedErrorMessage(t *testing.T) {
	withCleanEnv(t)
	os.Setenv("CREDENTIALS_FILE", filepath.Join(t.TempDir(), "nonexistent.json"))

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error when no ERP credentials are set")
	}
	for _, want := range []string{"ERP_ACCOUNT_ID", "ERP_CONSUMER_KEY", "ERP_CONSUMER_SECRET", "ERP_TOKEN_ID", "ERP_TOKEN_SECRET", "ERP_BASE_URL"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected missing-field error to name %s, got: %v", want, err)
		}
	}
}

func TestLoad_MissingCredentialsFile_IsNotAnError(t *testing.T) {
	withCleanEnv(t)
	setRequiredCreds(t)

	if _, err := Load(); err != nil {
		t.Fatalf("Load() with a missing credentials file should not error, got: %v", err)
	}
}

func TestLoad_EnvTakesPrecedenceOverCredentialsFile(t *testing.T) {
	withCleanEnv(t)

	path := filepath.Join(t.TempDir(), "credentials.json")
	if err := os.WriteFile(path, []byte(`{
		"accountId": "file-account",
		"consumerKey": "file-key",
		"consumerSecret": "file-secret",
		"tokenId": "file-token",
		"tokenSecret": "file-token-secret",
		"baseUrl": "https://file.example.com"
	}`), 0o600); err != nil {
		t.Fatalf("write credentials file: %v", err)
	}
	os.Setenv("CREDENTIALS_FILE", path)
	os.Setenv("ERP_ACCOUNT_ID", "env-account")
	// Leave the rest unset so the file fills them in.
	os.Setenv("ERP_CONSUMER_KEY", "")
	os.Setenv("ERP_CONSUMER_SECRET", "")
	os.Setenv("ERP_TOKEN_ID", "")
	os.Setenv("ERP_TOKEN_SECRET", "")
	os.Setenv("ERP_BASE_URL", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.AccountID != "env-account" {
		t.Errorf("AccountID = %q, want env value to win over the file", cfg.AccountID)
	}
	if cfg.ConsumerKey != "file-key" {
		t.Errorf("ConsumerKey = %q, want the file-supplied value since env left it unset", cfg.ConsumerKey)
	}
	if cfg.BaseURL != "https://file.example.com" {
		t.Errorf("BaseURL = %q, want the file-supplied value", cfg.BaseURL)
	}
}

func TestLoad_UnreadableCredentialsFile_ErrorDoesNotLeakPath(t *testing.T) {
	withCleanEnv(t)
	setRequiredCreds(t)

	// An unreadable-but-present path (a directory, not a file) forces
	// fillFromFile past the os.IsNotExist short-circuit and into the
	// generic error path, whose message must never include the path itself.
	dir := t.TempDir()
	os.Setenv("CREDENTIALS_FILE", dir)

	_, err := Load()
	if err == nil {
		t.Fatal("expected an error reading a directory as the credentials file")
	}
	if strings.Contains(err.Error(), dir) {
		t.Errorf("error must not leak the credentials file path, got: %v", err)
	}
}
