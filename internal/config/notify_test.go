package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeNotifyFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "notify.yml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write notify file: %v", err)
	}
	return path
}

func TestLoadNotifyFile_EmptyPath(t *testing.T) {
	settings, err := LoadNotifyFile("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings != nil {
		t.Fatalf("expected nil settings for empty path")
	}
}

func TestLoadNotifyFile_Valid(t *testing.T) {
	path := writeNotifyFile(t, `
dry_run: true
webhook_template: '{"svc":"{{ .Service }}"}'
webhooks:
  - name: pager
    url: https://pager.example.com/hook
  - name: audit
    url: https://audit.example.com/hook
    template: '{"to":"{{ .To }}"}'
`)

	settings, err := LoadNotifyFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !settings.DryRun {
		t.Fatalf("expected dry_run true")
	}
	if len(settings.Webhooks) != 2 {
		t.Fatalf("expected two webhooks, got %d", len(settings.Webhooks))
	}
	if settings.Webhooks[1].Template == "" {
		t.Fatalf("expected per-webhook template to be kept")
	}
}

func TestLoadNotifyFile_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{
			name:    "missing name",
			content: "webhooks:\n  - url: https://example.com/hook\n",
		},
		{
			name:    "missing url",
			content: "webhooks:\n  - name: pager\n",
		},
		{
			name:    "bad url",
			content: "webhooks:\n  - name: pager\n    url: not-a-url\n",
		},
		{
			name:    "duplicate name",
			content: "webhooks:\n  - name: pager\n    url: https://a.example.com\n  - name: pager\n    url: https://b.example.com\n",
		},
		{
			name:    "not yaml",
			content: "{{{",
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			path := writeNotifyFile(t, tc.content)
			if _, err := LoadNotifyFile(path); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadNotifyFile_MissingFile(t *testing.T) {
	if _, err := LoadNotifyFile(filepath.Join(t.TempDir(), "absent.yml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
