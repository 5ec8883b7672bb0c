package git

import (
	"fmt"
	"os/exec"
	"strings"
)

// Status reports how recovery files relate to the enclosing git repository.
// Recovery files carry salts and hints and should stay out of version
// control.
type Status struct {
	IsRepo    bool
	Tracked   []string // committed or staged (bad)
	Unignored []string // not covered by .gitignore (warning)
	Ignored   []string // covered by .gitignore (good)
}

// IsGitRepo checks if the working directory is inside a git repository
func IsGitRepo(workDir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = workDir
	return cmd.Run() == nil
}

// IsTracked checks if a file is tracked by git
func IsTracked(workDir, path string) bool {
	cmd := exec.Command("git", "ls-files", "--", path)
	cmd.Dir = workDir
	output, err := cmd.Output()
	if err != nil {
		return false
	}

	return len(strings.TrimSpace(string(output))) > 0
}

// IsIgnored checks if a file is ignored by git (handles all .gitignore files)
func IsIgnored(workDir, path string) bool {
	cmd := exec.Command("git", "check-ignore", "-q", "--", path)
	cmd.Dir = workDir

	// git check-ignore returns exit code 0 if file is ignored
	return cmd.Run() == nil
}

// Check inspects each recovery file relative to workDir
func Check(workDir string, files []string) *Status {
	status := &Status{}
	if !IsGitRepo(workDir) {
		return status
	}
	status.IsRepo = true

	for _, file := range files {
		if IsTracked(workDir, file) {
			status.Tracked = append(status.Tracked, file)
		}
		if IsIgnored(workDir, file) {
			status.Ignored = append(status.Ignored, file)
		} else {
			status.Unignored = append(status.Unignored, file)
		}
	}

	return status
}

// Format renders the status for display, empty outside a repository
func Format(status *Status) string {
	if status == nil || !status.IsRepo {
		return ""
	}

	var result strings.Builder
	result.WriteString("\nGit:\n")

	tracked := make(map[string]bool, len(status.Tracked))
	for _, file := range status.Tracked {
		tracked[file] = true
		result.WriteString(fmt.Sprintf("   error: %s is tracked by git (run: git rm --cached %s)\n", file, file))
	}

	for _, file := range status.Unignored {
		if !tracked[file] {
			result.WriteString(fmt.Sprintf("   warning: %s not in .gitignore\n", file))
		}
	}

	if len(status.Tracked) == 0 && len(status.Unignored) == 0 {
		result.WriteString(fmt.Sprintf("   ok: %d recovery file(s) ignored by git\n", len(status.Ignored)))
	}

	return result.String()
}
