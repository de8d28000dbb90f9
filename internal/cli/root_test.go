package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lzdw/lzdraw/pkg/errors"
)

// isolate points every per-user directory and credential at t's sandbox.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	for _, key := range []string{"GROQ_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY", "LZDRAW_CACHE_DIR", "LZDRAW_REDIS_ADDR", "LZDRAW_LLM_PROVIDER"} {
		t.Setenv(key, "")
	}
	return dir
}

// run executes one lzdraw invocation and returns its log output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var logs bytes.Buffer
	root := New(&logs, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	err := root.ExecuteContext(context.Background())
	return logs.String(), err
}

func copyTestdata(t *testing.T, name, dir string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	want := []string{"render", "generate", "validate", "serve", "cache", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil || root.PersistentFlags().ShorthandLookup("v") == nil {
		t.Error("persistent --config and -v flags missing")
	}
}

func TestRenderCommand(t *testing.T) {
	dir := isolate(t)
	input := copyTestdata(t, "acme.json", dir)

	logs, err := run(t, "render", input, "-f", "drawio,tf,json", "--no-cache")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(logs, "rendered") {
		t.Errorf("logs %q lack the completion line", logs)
	}

	drawio, err := os.ReadFile(filepath.Join(dir, "acme.drawio"))
	if err != nil {
		t.Fatalf("drawio output: %v", err)
	}
	if !bytes.Contains(drawio, []byte("<mxfile ")) {
		t.Error("drawio output is not an mxfile")
	}
	tf, err := os.ReadFile(filepath.Join(dir, "acme.tf"))
	if err != nil {
		t.Fatalf("terraform output: %v", err)
	}
	if !bytes.Contains(tf, []byte(`"aws_organizations_account"`)) {
		t.Error("terraform output has no account resources")
	}
	// acme.json is the input, so the document goes next to it.
	if _, err := os.Stat(filepath.Join(dir, "acme.diagram.json")); err != nil {
		t.Errorf("json output: %v", err)
	}
	if orig, _ := os.ReadFile(filepath.Join("testdata", "acme.json")); !bytes.Equal(orig, mustRead(t, input)) {
		t.Error("render overwrote its input")
	}
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestRenderCommandExplicitOutput(t *testing.T) {
	dir := isolate(t)
	input := copyTestdata(t, "legacy.yaml", dir)
	out := filepath.Join(dir, "out", "globex.drawio")

	if _, err := run(t, "render", input, "-o", out, "--theme", "aws", "--no-cache"); err != nil {
		t.Fatalf("render: %v", err)
	}
	data := mustRead(t, out)
	if !bytes.Contains(data, []byte("Globex")) {
		t.Error("diagram does not carry the client name")
	}
}

func TestRenderCommandErrors(t *testing.T) {
	dir := isolate(t)
	input := copyTestdata(t, "acme.json", dir)
	broken := filepath.Join(dir, "broken.json")
	if err := os.WriteFile(broken, []byte(`{"account_structure": 7}`), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"missing file", []string{"render", filepath.Join(dir, "nope.json")}, errors.ErrCodeNotFound},
		{"schema violation", []string{"render", broken}, errors.ErrCodeInvalidInput},
		{"unknown format", []string{"render", input, "-f", "pdf"}, errors.ErrCodeInvalidFormat},
		{"unknown theme", []string{"render", input, "--theme", "neon"}, errors.ErrCodeInvalidTheme},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append(tt.args, "--no-cache")...)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestRenderCommandUsesCache(t *testing.T) {
	dir := isolate(t)
	input := copyTestdata(t, "acme.json", dir)
	cacheDir := filepath.Join(dir, "pipeline-cache")
	t.Setenv("LZDRAW_CACHE_DIR", cacheDir)

	for range 2 {
		if _, err := run(t, "render", input); err != nil {
			t.Fatalf("render: %v", err)
		}
	}
	entries, err := os.ReadDir(cacheDir)
	if err != nil || len(entries) == 0 {
		t.Fatalf("cache dir %s is empty (err %v)", cacheDir, err)
	}

	if _, err := run(t, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	entries, err = os.ReadDir(cacheDir)
	if err != nil || len(entries) != 0 {
		t.Errorf("cache dir has %d entries after clear (err %v)", len(entries), err)
	}
}

func TestValidateCommand(t *testing.T) {
	dir := isolate(t)
	input := copyTestdata(t, "legacy.yaml", dir)

	if _, err := run(t, "validate", input); err != nil {
		t.Errorf("validate: %v", err)
	}
	if _, err := run(t, "validate", filepath.Join(dir, "missing.yaml")); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("validate missing file: err = %v, want NOT_FOUND", err)
	}
}

func TestGenerateCommandPreconditions(t *testing.T) {
	dir := isolate(t)
	empty := filepath.Join(dir, "empty.txt")
	questionnaire := filepath.Join(dir, "q.txt")
	if err := os.WriteFile(empty, []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(questionnaire, []byte("Company: Acme\nAccounts: prod, dev"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := run(t, "generate", empty); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("empty questionnaire: err = %v, want INVALID_INPUT", err)
	}
	if _, err := run(t, "generate", questionnaire, "--no-cache"); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("no API key: err = %v, want INVALID_CONFIG", err)
	}
}

func TestExplicitConfigMustExist(t *testing.T) {
	dir := isolate(t)
	input := copyTestdata(t, "acme.json", dir)

	_, err := run(t, "--config", filepath.Join(dir, "missing.toml"), "validate", input)
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}

	cfg := filepath.Join(dir, "lzdraw.toml")
	if err := os.WriteFile(cfg, []byte("[render]\ntheme = \"aws\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := run(t, "--config", cfg, "render", input, "--no-cache"); err != nil {
		t.Errorf("render with config: %v", err)
	}
}

func TestCacheClearNonFileBackend(t *testing.T) {
	isolate(t)
	t.Setenv("LZDRAW_CACHE_BACKEND", "none")
	if _, err := run(t, "cache", "clear"); err != nil {
		t.Errorf("cache clear: %v", err)
	}
}

func TestCompletionCommand(t *testing.T) {
	isolate(t)
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			var out bytes.Buffer
			root := New(&bytes.Buffer{}, LogInfo).RootCommand()
			root.SetArgs([]string{"completion", shell})
			root.SetOut(&out)
			root.SetErr(&bytes.Buffer{})
			if err := root.Execute(); err != nil {
				t.Fatalf("completion %s: %v", shell, err)
			}
			if !strings.Contains(out.String(), "lzdraw") {
				t.Errorf("completion %s output does not mention lzdraw", shell)
			}
		})
	}

	if _, err := run(t, "completion", "tcsh"); err == nil {
		t.Error("completion tcsh should fail")
	}
}
