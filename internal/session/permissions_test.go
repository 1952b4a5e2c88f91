package session

import (
	"os"
	"path/filepath"
	"testing"
)

// TestLoadPermissions_Default tests the built-in permissions file
func TestLoadPermissions_Default(t *testing.T) {
	perms, err := LoadPermissions("")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	testCases := []struct {
		role       Role
		permission string
		want       bool
	}{
		{RoleDoctor, "encounter:view", true},
		{RoleDoctor, "encounter:finalize", true},
		{RoleDoctor, "queue:register", false},
		{RoleReception, "queue:register", true},
		{RoleReception, "queue:status", true},
		{RoleReception, "encounter:edit", false},
		{RoleNone, "queue:view", false},
	}
	for _, tc := range testCases {
		if got := perms.Allows(tc.role, tc.permission); got != tc.want {
			t.Errorf("Allows(%q, %q): expected %v, got %v", tc.role, tc.permission, tc.want, got)
		}
	}
}

// TestLoadPermissions_File tests loading an override file
func TestLoadPermissions_File(t *testing.T) {
	tmpDir := t.TempDir()
	permFile := filepath.Join(tmpDir, "permissions.yml")

	content := `roles:
  reception:
    - queue:view
`
	if err := os.WriteFile(permFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test permissions file: %v", err)
	}

	perms, err := LoadPermissions(permFile)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if perms.Allows(RoleReception, "queue:view") {
		t.Error("Expected lowercase role key not to match an uppercase role")
	}
	if !perms.Allows(Role("reception"), "queue:view") {
		t.Error("Expected exact role key to match")
	}
}

// TestLoadPermissions_FileNotFound tests loading non-existent file
func TestLoadPermissions_FileNotFound(t *testing.T) {
	perms, err := LoadPermissions("/nonexistent/path/permissions.yml")
	if err == nil {
		t.Error("Expected error for non-existent file, got nil")
	}
	if perms != nil {
		t.Error("Expected nil permissions, got non-nil")
	}
}

// TestParsePermissions_InvalidYAML tests loading invalid YAML
func TestParsePermissions_InvalidYAML(t *testing.T) {
	content := `roles:
  DOCTOR:
    - encounter:view
    invalid yaml structure here
      - no proper indentation
`
	if _, err := ParsePermissions([]byte(content)); err == nil {
		t.Error("Expected error for invalid YAML, got nil")
	}
}
