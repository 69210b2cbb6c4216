package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

const (
	hookMarkerStart = "# >>> leakshield pre-commit hook >>>"
	hookMarkerEnd   = "# <<< leakshield pre-commit hook <<<"
)

var (
	hookFailOn     string
	hookRecognizer string
	hookMask       bool
)

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Manage git pre-commit hook",
}

var hookInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install leakshield as a git pre-commit hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		hookPath, err := getHookPath()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		section := generateHookScript(hookFailOn, hookRecognizer, hookMask)

		existing, err := os.ReadFile(hookPath)
		if err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error reading hook file: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		var content string
		if os.IsNotExist(err) || len(existing) == 0 {
			content = "#!/bin/sh\n" + section
		} else {
			content = replaceHookSection(string(existing), section)
		}

		if err := os.MkdirAll(filepath.Dir(hookPath), 0o755); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error creating hooks directory: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error writing hook file: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		fmt.Fprintf(out, "Installed leakshield pre-commit hook at %s\n", hookPath)
		return nil
	},
}

var hookUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove leakshield pre-commit hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		hookPath, err := getHookPath()
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		existing, err := os.ReadFile(hookPath)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Fprintln(out, "No pre-commit hook found.")
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Error reading hook file: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		content := removeHookSection(string(existing))

		// If only the shebang remains, delete the file entirely
		trimmed := strings.TrimSpace(content)
		if trimmed == "" || trimmed == "#!/bin/sh" || trimmed == "#!/bin/bash" {
			if err := os.Remove(hookPath); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error removing hook file: %v\n", err)
				exitCode = ExitRuntimeError
				return nil
			}
			fmt.Fprintf(out, "Removed leakshield pre-commit hook at %s\n", hookPath)
			return nil
		}

		if err := os.WriteFile(hookPath, []byte(content), 0o755); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error writing hook file: %v\n", err)
			exitCode = ExitRuntimeError
			return nil
		}

		fmt.Fprintf(out, "Removed leakshield section from %s\n", hookPath)
		return nil
	},
}

func getHookPath() (string, error) {
	out, err := exec.Command("git", "rev-parse", "--git-path", "hooks").Output()
	if err != nil {
		return "", fmt.Errorf("not a git repository (git rev-parse --git-path hooks failed)")
	}
	return filepath.Join(strings.TrimSpace(string(out)), "pre-commit"), nil
}

func generateHookScript(failOn, recognizer string, mask bool) string {
	args := fmt.Sprintf("--fail-on %s", failOn)
	if recognizer != "" {
		args += " --recognizer " + recognizer
	}
	if mask {
		args += " --mask"
	}

	var b strings.Builder
	b.WriteString(hookMarkerStart + "\n")
	b.WriteString(fmt.Sprintf("leakshield scan staged %s\n", args))
	b.WriteString("LEAKSHIELD_EXIT=$?\n")
	b.WriteString("if [ $LEAKSHIELD_EXIT -eq 1 ]; then\n")
	b.WriteString("  echo \"leakshield: personal data found in staged files, commit blocked\"\n")
	b.WriteString("  echo \"leakshield: remove it, add it to the rules allowlist, or commit with --no-verify\"\n")
	b.WriteString("  exit 1\n")
	b.WriteString("elif [ $LEAKSHIELD_EXIT -ge 2 ]; then\n")
	b.WriteString("  echo \"leakshield: warning, scan failed (exit $LEAKSHIELD_EXIT), allowing commit\"\n")
	b.WriteString("fi\n")
	b.WriteString(hookMarkerEnd + "\n")
	return b.String()
}

func replaceHookSection(existing, section string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 {
		if !strings.HasSuffix(existing, "\n") {
			existing += "\n"
		}
		return existing + section
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(hookMarkerEnd):]
	after = strings.TrimPrefix(after, "\n")
	return before + section + after
}

func removeHookSection(existing string) string {
	startIdx := strings.Index(existing, hookMarkerStart)
	endIdx := strings.Index(existing, hookMarkerEnd)

	if startIdx == -1 || endIdx == -1 {
		return existing
	}

	before := existing[:startIdx]
	after := existing[endIdx+len(hookMarkerEnd):]
	after = strings.TrimPrefix(after, "\n")

	return before + after
}

func init() {
	hookCmd.AddCommand(hookInstallCmd)
	hookCmd.AddCommand(hookUninstallCmd)
	hookInstallCmd.Flags().StringVar(&hookFailOn, "fail-on", "high", "Block the commit at this severity (low, medium, high)")
	hookInstallCmd.Flags().StringVar(&hookRecognizer, "recognizer", "", "Entity recognizer for the hook (default from config)")
	hookInstallCmd.Flags().BoolVar(&hookMask, "mask", true, "Mask finding values in hook output")
}
