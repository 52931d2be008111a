package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aidanlsb/hangar/internal/workspace"
)

// captureOutput redirects command output for the duration of fn.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	var buf bytes.Buffer
	prev := stdout
	stdout = &buf
	t.Cleanup(func() { stdout = prev })
	fn()
	stdout = prev
	return buf.String()
}

// resetFlags restores every flag variable to its default, since cobra keeps
// parsed values between Execute calls.
func resetFlags() {
	workspaceName = ""
	workspacePathFlag = ""
	configPath = ""
	verbose = false
	jsonOutput = false
	resolvedWorkspacePath = ""
	createKind = ""
	createDisplayName = ""
	createDescription = ""
	renameRetry = retryFlags{}
	historyLimit = 20
	historySince = ""
	watchDebounce = 100 * time.Millisecond
	initRegisterName = ""
	initReserved = nil
}

type envelope struct {
	OK       bool            `json:"ok"`
	Data     json.RawMessage `json:"data"`
	Error    *ErrorInfo      `json:"error"`
	Warnings []Warning       `json:"warnings"`
	Meta     *Meta           `json:"meta"`
}

// runJSON runs the CLI in-process against the workspace at root with --json
// and decodes the response.
func runJSON(t *testing.T, root string, args ...string) envelope {
	t.Helper()
	isolateConfig(t)
	resetFlags()

	full := append([]string{"--workspace-path", root, "--json"}, args...)
	var runErr error
	out := captureOutput(t, func() {
		rootCmd.SetArgs(full)
		runErr = rootCmd.Execute()
	})
	rootCmd.SetArgs(nil)

	var resp envelope
	if err := json.Unmarshal([]byte(out), &resp); err != nil {
		t.Fatalf("hangar %v: invalid JSON output: %v\n%s", args, err, out)
	}
	if resp.OK && runErr != nil {
		t.Fatalf("hangar %v: ok response but error %v", args, runErr)
	}
	if !resp.OK && !errors.Is(runErr, errReported) {
		t.Fatalf("hangar %v: failed response should return errReported, got %v", args, runErr)
	}
	return resp
}

// runText runs the CLI in-process without --json.
func runText(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	isolateConfig(t)
	resetFlags()

	full := append([]string{"--workspace-path", root}, args...)
	var runErr error
	out := captureOutput(t, func() {
		rootCmd.SetArgs(full)
		runErr = rootCmd.Execute()
	})
	rootCmd.SetArgs(nil)
	return out, runErr
}

// isolateConfig points the global config lookup at an empty directory.
func isolateConfig(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HANGAR_DEBUG", "")
	t.Setenv("HANGAR_OTEL_ENABLED", "")
}

func newWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if _, err := workspace.Init(root); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return root
}

func mustOK(t *testing.T, resp envelope) envelope {
	t.Helper()
	if !resp.OK {
		msg := "no error info"
		if resp.Error != nil {
			msg = resp.Error.Code + ": " + resp.Error.Message
		}
		t.Fatalf("expected success, got %s", msg)
	}
	return resp
}

func mustFail(t *testing.T, resp envelope, code string) *ErrorInfo {
	t.Helper()
	if resp.OK {
		t.Fatalf("expected failure with %s, got success: %s", code, resp.Data)
	}
	if resp.Error == nil || resp.Error.Code != code {
		t.Fatalf("expected error code %s, got %+v", code, resp.Error)
	}
	return resp.Error
}

func decodeData(t *testing.T, resp envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(resp.Data, v); err != nil {
		t.Fatalf("decode data: %v\n%s", err, resp.Data)
	}
}
