package git

import (
	"strings"
	"testing"
)

func TestCheckOutsideRepo(t *testing.T) {
	status := Check(t.TempDir(), []string{".pph"})
	if status.IsRepo {
		t.Skip("temp dir is inside a git work tree")
	}
	if Format(status) != "" {
		t.Error("Format should be empty outside a repository")
	}
}

func TestFormat(t *testing.T) {
	status := &Status{
		IsRepo:    true,
		Tracked:   []string{".pph"},
		Unignored: []string{".pph", "recovery.json"},
	}
	out := Format(status)
	if !strings.Contains(out, "error: .pph is tracked") {
		t.Errorf("Missing tracked error in %q", out)
	}
	if strings.Contains(out, "warning: .pph") {
		t.Errorf("Tracked file should not also get a warning: %q", out)
	}
	if !strings.Contains(out, "warning: recovery.json not in .gitignore") {
		t.Errorf("Missing gitignore warning in %q", out)
	}

	ok := Format(&Status{IsRepo: true, Ignored: []string{".pph"}})
	if !strings.Contains(ok, "ok: 1 recovery file(s) ignored") {
		t.Errorf("Unexpected output %q", ok)
	}
}
