package cmd

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

// runCLI executes args in an isolated environment and captures both streams.
func runCLI(t *testing.T, args ...string) (stdout, stderr string, code int) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	chdir(t, home)

	var out, errOut bytes.Buffer
	code = run(args, strings.NewReader(""), &out, &errOut)
	return out.String(), errOut.String(), code
}

func touch(t *testing.T, path string, mtime time.Time, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

// scenarioRoot holds files at base+{100,110,300,305,310}s. With a 60s gap
// this is two batches: {c,d,e} (latest) and {a,b}.
func scenarioRoot(t *testing.T) (root string, base time.Time) {
	t.Helper()
	root = t.TempDir()
	base = time.Now().Add(-2 * time.Hour).Truncate(time.Second)
	for name, offset := range map[string]int{"a.txt": 100, "b.txt": 110, "c.txt": 300, "docs/d.md": 305, "e.txt": 310} {
		touch(t, filepath.Join(root, name), base.Add(time.Duration(offset)*time.Second), name)
	}
	return root, base
}

func lines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func TestNoCommandPrintsHelpAndExits2(t *testing.T) {
	out, _, code := runCLI(t)
	if code != 2 {
		t.Fatalf("exit code: got %d, want 2", code)
	}
	if !strings.Contains(out, "Usage:") {
		t.Errorf("expected help on stdout, got %q", out)
	}
}

func TestWithDefaultCommand(t *testing.T) {
	root := newRootCmd()
	tests := []struct {
		args []string
		want []string
	}{
		{nil, nil},
		{[]string{"zip"}, []string{"zip"}},
		{[]string{"ccc", "1"}, []string{"ccc", "1"}},
		{[]string{"help"}, []string{"help"}},
		{[]string{"--help"}, []string{"--help"}},
		{[]string{"1"}, []string{"print", "1"}},
		{[]string{"2025-01-20", "--format", "name"}, []string{"print", "2025-01-20", "--format", "name"}},
	}
	for _, tt := range tests {
		if got := withDefaultCommand(root, tt.args); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("withDefaultCommand(%q) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestPrintScenario(t *testing.T) {
	root, _ := scenarioRoot(t)

	out, _, code := runCLI(t, "print", "--root", root, "--max-gap-seconds", "60")
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if got, want := lines(out), []string{"c.txt", filepath.Join("docs", "d.md"), "e.txt"}; !reflect.DeepEqual(got, want) {
		t.Errorf("latest batch: got %q, want %q", got, want)
	}

	// Bare positional argument goes through print.
	out, _, code = runCLI(t, "1", "--root", root, "--max-gap-seconds", "60")
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if got, want := lines(out), []string{"a.txt", "b.txt"}; !reflect.DeepEqual(got, want) {
		t.Errorf("previous batch: got %q, want %q", got, want)
	}
}

func TestPrintOutOfRange(t *testing.T) {
	root, _ := scenarioRoot(t)
	out, errOut, code := runCLI(t, "print", "--root", root, "--max-gap-seconds", "60", "--index", "2")
	if code != 2 {
		t.Fatalf("exit code: got %d, want 2", code)
	}
	if out != "" {
		t.Errorf("expected no stdout, got %q", out)
	}
	if !strings.Contains(errOut, "Requested batch 2, but only 2 batch(es) found.") {
		t.Errorf("stderr: %q", errOut)
	}
}

func TestPrintByDatetime(t *testing.T) {
	root, base := scenarioRoot(t)
	// Inside the gap between the batches: the older batch is the latest one
	// ending at or before the time.
	at := base.Add(200 * time.Second).Format("2006-01-02T15:04:05")
	out, _, code := runCLI(t, "print", "--root", root, "--max-gap-seconds", "60", "--datetime", at)
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if got, want := lines(out), []string{"a.txt", "b.txt"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrintInvalidInput(t *testing.T) {
	root, _ := scenarioRoot(t)
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"both selectors", []string{"--index", "0", "--datetime", "2025-01-20"}, "Use only one of --index or --datetime."},
		{"negative index", []string{"--index", "-1"}, "Batch index must be >= 0."},
		{"bad datetime", []string{"yesterday"}, "ISO 8601"},
		{"bad filter", []string{"--filter", "images"}, "images"},
		{"bad format", []string{"--format", "url"}, "url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"print", "--root", root}, tt.args...)
			_, errOut, code := runCLI(t, args...)
			if code != 2 {
				t.Fatalf("exit code: got %d, want 2", code)
			}
			if !strings.Contains(errOut, tt.want) {
				t.Errorf("stderr %q does not contain %q", errOut, tt.want)
			}
		})
	}
}

func TestPrintMissingRoot(t *testing.T) {
	_, errOut, code := runCLI(t, "print", "--root", filepath.Join(t.TempDir(), "missing"))
	if code != 2 {
		t.Fatalf("exit code: got %d, want 2", code)
	}
	if errOut == "" {
		t.Error("expected an error message")
	}
}

func TestEmptyRootPrintsNothing(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	for _, cmd := range []string{"print", "zip", "timeline"} {
		out, _, code := runCLI(t, cmd, "--root", root)
		if code != 0 || out != "" {
			t.Errorf("%s: got code %d output %q, want 0 and nothing", cmd, code, out)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "batch.tar.gz")); !os.IsNotExist(err) {
		t.Error("zip created an archive for an empty selection")
	}
}

func TestPrintFilterAndFormats(t *testing.T) {
	root, _ := scenarioRoot(t)

	out, _, _ := runCLI(t, "print", "--root", root, "--max-gap-seconds", "60", "--filter", "docs")
	if got, want := lines(out), []string{filepath.Join("docs", "d.md")}; !reflect.DeepEqual(got, want) {
		t.Errorf("docs filter: got %q, want %q", got, want)
	}

	out, _, _ = runCLI(t, "print", "--root", root, "--max-gap-seconds", "60", "--filter", "code", "--format", "name")
	if got, want := lines(out), []string{"c.txt", "e.txt"}; !reflect.DeepEqual(got, want) {
		t.Errorf("code filter: got %q, want %q", got, want)
	}

	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		t.Fatal(err)
	}
	out, _, _ = runCLI(t, "print", "--root", root, "--max-gap-seconds", "60", "--format", "absolute", "1")
	if got, want := lines(out), []string{filepath.Join(resolved, "a.txt"), filepath.Join(resolved, "b.txt")}; !reflect.DeepEqual(got, want) {
		t.Errorf("absolute: got %q, want %q", got, want)
	}
}

func TestPrintPrettyAndJSON(t *testing.T) {
	root, _ := scenarioRoot(t)

	out, _, code := runCLI(t, "print", "--root", root, "--max-gap-seconds", "60", "--pretty", "1")
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}
	if !strings.Contains(out, "Batch: ") || !strings.Contains(out, "(2 files)") {
		t.Errorf("missing header: %q", out)
	}

	out, _, _ = runCLI(t, "print", "--root", root, "--max-gap-seconds", "60", "--json", "1")
	if !strings.Contains(out, `"count": 2`) || !strings.Contains(out, `"relative": "a.txt"`) {
		t.Errorf("unexpected JSON: %s", out)
	}
}

func TestZipToStdout(t *testing.T) {
	root, _ := scenarioRoot(t)
	out, _, code := runCLI(t, "zip", "--root", root, "--max-gap-seconds", "60", "-o", "-")
	if code != 0 {
		t.Fatalf("exit code %d", code)
	}

	gz, err := gzip.NewReader(strings.NewReader(out))
	if err != nil {
		t.Fatalf("gzip: %v", err)
	}
	tr := tar.NewReader(gz)
	var names []string
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("tar: %v", err)
		}
		names = append(names, hdr.Name)
	}
	if want := []string{"c.txt", "docs/d.md", "e.txt"}; !reflect.DeepEqual(names, want) {
		t.Errorf("archive entries: got %q, want %q", names, want)
	}
}

func TestZipCreatesParentDirectories(t *testing.T) {
	root, _ := scenarioRoot(t)
	dest := filepath.Join(t.TempDir(), "nested", "out.tar.gz")
	if _, errOut, code := runCLI(t, "zip", "1", "--root", root, "--max-gap-seconds", "60", "--output", dest); code != 0 {
		t.Fatalf("exit code %d: %s", code, errOut)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("archive not written: %v", err)
	}
}

func TestCopyPreservesTree(t *testing.T) {
	root, base := scenarioRoot(t)
	dest := filepath.Join(t.TempDir(), "out")
	if _, errOut, code := runCLI(t, "copy", "--root", root, "--max-gap-seconds", "60", dest); code != 0 {
		t.Fatalf("exit code %d: %s", code, errOut)
	}

	info, err := os.Stat(filepath.Join(dest, "docs", "d.md"))
	if err != nil {
		t.Fatalf("copied file missing: %v", err)
	}
	if want := base.Add(305 * time.Second); !info.ModTime().Equal(want) {
		t.Errorf("mtime: got %v, want %v", info.ModTime(), want)
	}
	if _, err := os.Stat(filepath.Join(dest, "a.txt")); !os.IsNotExist(err) {
		t.Error("file from another batch was copied")
	}
}

func TestCopyRequiresDestination(t *testing.T) {
	if _, _, code := runCLI(t, "copy"); code != 2 {
		t.Errorf("exit code: got %d, want 2", code)
	}
}

func TestToolForwardsExitCode(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("needs /bin/sh")
	}
	root := t.TempDir()
	now := time.Now()
	// sh runs the first path as a script and ignores the rest.
	touch(t, filepath.Join(root, "a.sh"), now, "exit 3\n")
	touch(t, filepath.Join(root, "b.txt"), now, "data\n")

	for _, name := range []string{"code2prompt", "ccc"} {
		if _, _, code := runCLI(t, name, "--root", root, "--tool", "sh"); code != 3 {
			t.Errorf("%s: exit code got %d, want 3", name, code)
		}
	}
}

func TestToolSuccessAndMissingTool(t *testing.T) {
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("needs /bin/sh")
	}
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.sh"), time.Now(), "echo ran\n")

	out, _, code := runCLI(t, "ccc", "--root", root, "--tool", "sh")
	if code != 0 || strings.TrimSpace(out) != "ran" {
		t.Errorf("got code %d output %q", code, out)
	}

	_, errOut, code := runCLI(t, "ccc", "--root", root, "--tool", "relapse-no-such-tool")
	if code != 2 {
		t.Errorf("missing tool: exit code %d, want 2", code)
	}
	if !strings.Contains(errOut, "not found") {
		t.Errorf("stderr: %q", errOut)
	}
}

func TestTimelineASCII(t *testing.T) {
	root, _ := scenarioRoot(t)
	out, errOut, code := runCLI(t, "timeline", "--root", root, "--bins", "10")
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, errOut)
	}
	got := lines(out)
	if len(got) != 1 || strings.Count(got[0], "|") != 2 {
		t.Errorf("expected one density line, got %q", out)
	}
	// A buffer is not a terminal, so the chart is unavailable.
	if !strings.Contains(errOut, "ASCII fallback") {
		t.Errorf("expected fallback warning, got %q", errOut)
	}

	_, errOut, _ = runCLI(t, "timeline", "--root", root, "--ascii")
	if strings.Contains(errOut, "ASCII fallback") {
		t.Errorf("--ascii should not warn, got %q", errOut)
	}
}

func TestTimelineRejectsBadDimensions(t *testing.T) {
	root, _ := scenarioRoot(t)
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--bins", "0"}, "Bins must be > 0."},
		{[]string{"--width", "0"}, "Width and height must be > 0."},
		{[]string{"--height", "-1"}, "Width and height must be > 0."},
	}
	for _, tt := range tests {
		_, errOut, code := runCLI(t, append([]string{"timeline", "--root", root}, tt.args...)...)
		if code != 2 || !strings.Contains(errOut, tt.want) {
			t.Errorf("%v: got code %d stderr %q", tt.args, code, errOut)
		}
	}
}

func TestBrowsePlainTable(t *testing.T) {
	root, _ := scenarioRoot(t)
	out, errOut, code := runCLI(t, "browse", "--plain", "--root", root, "--max-gap-seconds", "60")
	if code != 0 {
		t.Fatalf("exit code %d: %s", code, errOut)
	}
	if !strings.Contains(out, "WINDOW") {
		t.Errorf("missing header: %q", out)
	}
	rows := 0
	for _, l := range lines(out) {
		f := strings.Fields(l)
		if len(f) > 0 && (f[0] == "0" || f[0] == "1") {
			rows++
		}
	}
	if rows != 2 {
		t.Errorf("expected 2 batch rows, got %d in %q", rows, out)
	}
}

func TestProjectConfigSetsDefaults(t *testing.T) {
	root, _ := scenarioRoot(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	chdir(t, home)
	if err := os.WriteFile(".relapse.toml", []byte("max_gap_seconds = 60\nformat = \"name\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var out, errOut bytes.Buffer
	if code := run([]string{"1", "--root", root}, strings.NewReader(""), &out, &errOut); code != 0 {
		t.Fatalf("exit code %d: %s", code, errOut.String())
	}
	if got, want := lines(out.String()), []string{"a.txt", "b.txt"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}

	// An explicit flag beats the project file.
	out.Reset()
	run([]string{"0", "--root", root, "--max-gap-seconds", "1000"}, strings.NewReader(""), &out, &errOut)
	if n := len(lines(out.String())); n != 5 {
		t.Errorf("flag override: got %d files, want 5", n)
	}
}

func TestHugeGapMergesAllFiles(t *testing.T) {
	root, _ := scenarioRoot(t)
	for _, gap := range []string{"1e10", "+Inf"} {
		out, errOut, code := runCLI(t, "print", "--root", root, "--max-gap-seconds", gap)
		if code != 0 {
			t.Fatalf("gap %s: exit code %d: %s", gap, code, errOut)
		}
		if n := len(lines(out)); n != 5 {
			t.Errorf("gap %s: got %d files, want all 5", gap, n)
		}
	}
}

func TestNaNGapIsInvalid(t *testing.T) {
	root, _ := scenarioRoot(t)
	_, errOut, code := runCLI(t, "print", "--root", root, "--max-gap-seconds", "NaN")
	if code != 2 {
		t.Fatalf("exit code: got %d, want 2", code)
	}
	if !strings.Contains(errOut, "Max gap seconds must be a number.") {
		t.Errorf("stderr: %q", errOut)
	}
}

func TestFilteredEmptyBatchPrintsNothing(t *testing.T) {
	root, _ := scenarioRoot(t)
	// Batch 1 holds only a.txt and b.txt, so the docs filter empties it.
	out, _, code := runCLI(t, "print", "1", "--root", root, "--max-gap-seconds", "60", "--filter", "docs", "--pretty")
	if code != 0 || out != "" {
		t.Errorf("got code %d output %q, want 0 and nothing", code, out)
	}
}
