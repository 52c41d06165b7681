// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

var allIds = []Id{
	EntryNotFoundId,
	ModuleNotFoundId,
	InvalidRequireArgumentId,
	CircularDependencyId,
	InvalidExportPositionId,
	SyntaxErrorId,
	InvalidManifestId,
	ConfigLoadFailedId,
	OutputWriteFailedId,
	PermissionDeniedId,
}

func plainRender(t *testing.T) {
	t.Helper()
	originalRender := render
	t.Cleanup(func() { render = originalRender })
	render = func(in string, stylePath string) (string, error) {
		return in, nil
	}
}

func TestId_Constants(t *testing.T) {
	seen := make(map[Id]bool)
	for _, id := range allIds {
		if seen[id] {
			t.Errorf("duplicate ID: %d", id)
		}
		seen[id] = true
	}

	// Verify IDs start at 1 (iota + 1)
	if EntryNotFoundId != 1 {
		t.Errorf("EntryNotFoundId = %d, want 1", EntryNotFoundId)
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		id       Id
		wantNil  bool
		contains string
	}{
		{EntryNotFoundId, false, "Entry script not found"},
		{ModuleNotFoundId, false, "Module not found"},
		{InvalidRequireArgumentId, false, "Dynamic require"},
		{CircularDependencyId, false, "Circular dependency"},
		{InvalidExportPositionId, false, "Export in the entry script"},
		{SyntaxErrorId, false, "Lua syntax error"},
		{InvalidManifestId, false, "Invalid package manifest"},
		{ConfigLoadFailedId, false, "Failed to load configuration"},
		{OutputWriteFailedId, false, "Failed to write the bundle"},
		{PermissionDeniedId, false, "Permission denied"},
		{Id(9999), true, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			issue := Get(tt.id)

			if tt.wantNil {
				if issue != nil {
					t.Errorf("Get(%d) should return nil", tt.id)
				}
				return
			}

			if issue == nil {
				t.Fatalf("Get(%d) returned nil", tt.id)
			}
			if issue.Id() != tt.id {
				t.Errorf("issue.Id() = %d, want %d", issue.Id(), tt.id)
			}
			if !strings.Contains(string(issue.MarkdownMsg()), tt.contains) {
				t.Errorf("Get(%d).MarkdownMsg() should contain '%s'", tt.id, tt.contains)
			}
		})
	}
}

func TestValues(t *testing.T) {
	issues := Values()

	if len(issues) != len(allIds) {
		t.Fatalf("Values() returned %d issues, want %d", len(issues), len(allIds))
	}
	for i, issue := range issues {
		if issue.Id() != allIds[i] {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, issue.Id(), allIds[i])
		}
		if issue.MarkdownMsg() == "" {
			t.Errorf("Issue %d has empty MarkdownMsg", issue.Id())
		}
	}
}

func TestIssue_ExtLinks(t *testing.T) {
	issue := Get(ModuleNotFoundId)
	links := issue.ExtLinks()
	if len(links) == 0 {
		t.Fatal("ModuleNotFound issue should link the require manual")
	}

	links[0] = "modified"
	if issue.ExtLinks()[0] == "modified" {
		t.Error("ExtLinks() should return a clone")
	}
}

func TestIssue_Render(t *testing.T) {
	plainRender(t)

	tests := []struct {
		name     string
		issue    *Issue
		contains []string
		excludes []string
	}{
		{
			name:     "with links",
			issue:    &Issue{id: Id(9999), mdMsg: "# Test Issue", extLinks: []HttpLink{"https://example.com/a"}},
			contains: []string{"# Test Issue", "## See also", "- <https://example.com/a>"},
		},
		{
			name:     "without links",
			issue:    &Issue{id: Id(9998), mdMsg: "# Test Issue\n\nNo links here."},
			contains: []string{"No links here."},
			excludes: []string{"See also"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rendered, err := tt.issue.Render("")
			if err != nil {
				t.Fatalf("Render() returned error: %v", err)
			}
			for _, s := range tt.contains {
				if !strings.Contains(rendered, s) {
					t.Errorf("Render() missing %q\ngot:\n%s", s, rendered)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(rendered, s) {
					t.Errorf("Render() should not contain %q\ngot:\n%s", s, rendered)
				}
			}
		})
	}
}

func TestAllIssuesAreRenderable(t *testing.T) {
	for _, issue := range Values() {
		rendered, err := issue.Render("notty")
		if err != nil {
			t.Errorf("Issue %d failed to render: %v", issue.Id(), err)
		}
		if strings.TrimSpace(rendered) == "" {
			t.Errorf("Issue %d rendered to empty string", issue.Id())
		}
	}
}
