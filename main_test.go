package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gitgerby/convertmdinfo/internal/pkg/mderr"
	"github.com/gitgerby/convertmdinfo/internal/pkg/mdinfo"
)

const hdr10Line = "G(8500,39850)B(6550,2300)R(35400,14600)WP(15635,16450)L(10000000,1)\n"

var hdr10Args = []string{
	"-r", "0.708", "0.292",
	"-g", "0.170", "0.797",
	"-b", "0.131", "0.046",
	"-wp", "0.3127", "0.3290",
	"-lmin", "0.0001",
	"-lmax", "1000",
}

type fakeExtractor struct {
	calls int
	path  string
	p     mdinfo.DisplayPrimaries
	l     mdinfo.LuminanceRange
	err   error
}

func (f *fakeExtractor) ExtractMasteringDisplay(_ context.Context, path string, _ int) (mdinfo.DisplayPrimaries, mdinfo.LuminanceRange, error) {
	f.calls++
	f.path = path
	return f.p, f.l, f.err
}

func hdr10Extractor() *fakeExtractor {
	return &fakeExtractor{
		p: mdinfo.DisplayPrimaries{
			R:          &mdinfo.Point{X: 0.708, Y: 0.292},
			G:          &mdinfo.Point{X: 0.170, Y: 0.797},
			B:          &mdinfo.Point{X: 0.131, Y: 0.046},
			WhitePoint: &mdinfo.Point{X: 0.3127, Y: 0.3290},
		},
		l: mdinfo.LuminanceRange{Min: 0.0001, Max: 1000},
	}
}

// useConfig points the run at a config file holding body, or at a missing
// file when body is empty.
func useConfig(t *testing.T, body string) {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if body != "" {
		if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
	}
	t.Setenv("CONVERTMDINFO_CONFIG", p)
}

func useExtractor(t *testing.T, f *fakeExtractor) {
	t.Helper()
	orig := newExtractor
	newExtractor = func(string) extractor { return f }
	t.Cleanup(func() { newExtractor = orig })
}

func runArgs(args ...string) (code int, stdout, stderr string) {
	var o, e bytes.Buffer
	code = run(context.Background(), args, &o, &e)
	return code, o.String(), e.String()
}

func TestRunManual(t *testing.T) {
	useConfig(t, "")
	code, stdout, stderr := runArgs(hdr10Args...)
	if code != 0 {
		t.Fatalf("run exited %d, stderr %q", code, stderr)
	}
	if stdout != hdr10Line {
		t.Errorf("stdout = %q, want %q", stdout, hdr10Line)
	}
	if stderr != "" {
		t.Errorf("stderr = %q, want empty", stderr)
	}
}

func TestRunUsage(t *testing.T) {
	useConfig(t, "")
	testCases := []struct {
		desc string
		args []string
	}{
		{desc: "no arguments", args: nil},
		{desc: "only global switches", args: []string{"-o", "out.txt"}},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			code, stdout, stderr := runArgs(tc.args...)
			if code != 0 {
				t.Errorf("%q: exit code %d, want 0", tc.desc, code)
			}
			if stdout != "" {
				t.Errorf("%q: stdout = %q, want empty", tc.desc, stdout)
			}
			if stderr != usage {
				t.Errorf("%q: stderr = %q, want usage", tc.desc, stderr)
			}
		})
	}
}

func TestRunErrors(t *testing.T) {
	useConfig(t, "")
	testCases := []struct {
		desc string
		args []string
		want string
	}{
		{
			desc: "leading argument",
			args: []string{"0.5", "-r", "1", "2"},
			want: "Command line parser: Expected switch at token 1",
		},
		{
			desc: "duplicate switch",
			args: []string{"-r", "0.7", "0.3", "-r", "0.7", "0.3"},
			want: `Command line parser: Duplicate command line switch "-r"`,
		},
		{
			desc: "unknown switch",
			args: []string{"-x", "1"},
			want: `Unknown command line switch "-x"`,
		},
		{
			desc: "manual and automatic mixed",
			args: []string{"-r", "0.7", "0.3", "-i", "movie.mkv"},
			want: `Class mismatch for switch "-i"`,
		},
		{
			desc: "wrong arity",
			args: []string{"-lmin", "1", "2"},
			want: `Invalid number of arguments for switch "-lmin": got 2, want 1`,
		},
		{
			desc: "bad decimal",
			args: []string{"-r", "0x1p-2", "0.3"},
			want: "Invalid decimal: 0x1p-2",
		},
		{
			desc: "red missing",
			args: []string{"-g", "0.17", "0.797"},
			want: "Red channel not set for master display",
		},
		{
			desc: "luminance inverted",
			args: append(append([]string{}, hdr10Args[:12]...), "-lmin", "1000", "-lmax", "0.0001"),
			want: "Minimum luminance cannot be greater than maximum luminance",
		},
		{
			desc: "automatic without input",
			args: []string{"-dynamic"},
			want: "No input file specified for ffmpeg",
		},
		{
			desc: "dynamic metadata",
			args: []string{"-i", "movie.mkv", "-dynamic"},
			want: "dynamic metadata support is not implemented yet",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			code, stdout, stderr := runArgs(tc.args...)
			if code != 1 {
				t.Errorf("%q: exit code %d, want 1", tc.desc, code)
			}
			if stdout != "" {
				t.Errorf("%q: stdout = %q, want empty", tc.desc, stdout)
			}
			if stderr != tc.want+"\n" {
				t.Errorf("%q: stderr = %q, want %q", tc.desc, stderr, tc.want+"\n")
			}
		})
	}
}

func TestRunOutputFile(t *testing.T) {
	useConfig(t, "")
	dir := t.TempDir()
	out := filepath.Join(dir, "md.txt")

	code, stdout, stderr := runArgs(append([]string{"-o", out}, hdr10Args...)...)
	if code != 0 {
		t.Fatalf("run exited %d, stderr %q", code, stderr)
	}
	if stdout != "" {
		t.Errorf("stdout = %q, want empty", stdout)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if string(got) != hdr10Line {
		t.Errorf("output file = %q, want %q", got, hdr10Line)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to list output dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("output dir holds %d entries, want only the result", len(entries))
	}
}

func TestRunOutputFileUntouchedOnFailure(t *testing.T) {
	useConfig(t, "")
	dir := t.TempDir()
	out := filepath.Join(dir, "md.txt")
	if err := os.WriteFile(out, []byte("previous\n"), 0o644); err != nil {
		t.Fatalf("failed to seed output: %v", err)
	}

	code, _, _ := runArgs("-o", out, "-g", "0.17", "0.797")
	if code != 1 {
		t.Fatalf("run exited %d, want 1", code)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if string(got) != "previous\n" {
		t.Errorf("output file = %q, want it unchanged", got)
	}

	missing := filepath.Join(dir, "absent", "md.txt")
	code, _, stderr := runArgs(append([]string{"-o", missing}, hdr10Args...)...)
	if code != 1 {
		t.Errorf("run into missing dir exited %d, want 1", code)
	}
	if !strings.HasPrefix(stderr, "Failed to open output file "+missing) {
		t.Errorf("stderr = %q, want output file error", stderr)
	}
}

func TestRunAutomatic(t *testing.T) {
	useConfig(t, "")
	f := hdr10Extractor()
	useExtractor(t, f)

	code, stdout, stderr := runArgs("-i", "movie.mkv")
	if code != 0 {
		t.Fatalf("run exited %d, stderr %q", code, stderr)
	}
	if stdout != hdr10Line {
		t.Errorf("stdout = %q, want %q", stdout, hdr10Line)
	}
	if f.calls != 1 || f.path != "movie.mkv" {
		t.Errorf("extractor called %d times with %q, want once with movie.mkv", f.calls, f.path)
	}
}

func TestRunAutomaticFailures(t *testing.T) {
	useConfig(t, "")
	testCases := []struct {
		desc string
		f    *fakeExtractor
		want string
	}{
		{
			desc: "extraction error",
			f:    &fakeExtractor{err: mderr.New(mderr.Extraction, "No mastering display metadata found in movie.mkv")},
			want: "No mastering display metadata found in movie.mkv",
		},
		{
			desc: "extracted luminance out of range",
			f: func() *fakeExtractor {
				f := hdr10Extractor()
				f.l.Max = 500000
				return f
			}(),
			want: "Number out of range: maximum luminance 500000",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			useExtractor(t, tc.f)
			code, stdout, stderr := runArgs("-i", "movie.mkv")
			if code != 1 {
				t.Errorf("%q: exit code %d, want 1", tc.desc, code)
			}
			if stdout != "" {
				t.Errorf("%q: stdout = %q, want empty", tc.desc, stdout)
			}
			if stderr != tc.want+"\n" {
				t.Errorf("%q: stderr = %q, want %q", tc.desc, stderr, tc.want+"\n")
			}
		})
	}
}

func TestRunAutomaticCache(t *testing.T) {
	dir := t.TempDir()
	useConfig(t, "cache_path: "+filepath.Join(dir, "cache.db")+"\n")
	src := filepath.Join(dir, "movie.mkv")
	if err := os.WriteFile(src, []byte("not really a movie"), 0o644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}
	f := hdr10Extractor()
	useExtractor(t, f)

	for i := 0; i < 2; i++ {
		code, stdout, stderr := runArgs("-i", src)
		if code != 0 {
			t.Fatalf("run %d exited %d, stderr %q", i, code, stderr)
		}
		if stdout != hdr10Line {
			t.Errorf("run %d stdout = %q, want %q", i, stdout, hdr10Line)
		}
	}
	if f.calls != 1 {
		t.Errorf("extractor called %d times, want 1 with the second run served from cache", f.calls)
	}
}

func TestRunOutputThroughSymlink(t *testing.T) {
	useConfig(t, "")
	dir := t.TempDir()
	target := filepath.Join(dir, "real.txt")
	link := filepath.Join(dir, "link.txt")
	if err := os.WriteFile(target, []byte("old\n"), 0o600); err != nil {
		t.Fatalf("failed to seed target: %v", err)
	}
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	code, _, stderr := runArgs(append([]string{"-o", link}, hdr10Args...)...)
	if code != 0 {
		t.Fatalf("run exited %d, stderr %q", code, stderr)
	}
	fi, err := os.Lstat(link)
	if err != nil {
		t.Fatalf("failed to stat link: %v", err)
	}
	if fi.Mode()&os.ModeSymlink == 0 {
		t.Errorf("%s is no longer a symlink", link)
	}
	got, err := os.ReadFile(target)
	if err != nil {
		t.Fatalf("failed to read target: %v", err)
	}
	if string(got) != hdr10Line {
		t.Errorf("target = %q, want %q", got, hdr10Line)
	}
}

func TestUsageIsVerbatim(t *testing.T) {
	var b bytes.Buffer
	printUsage(&b)
	want := "Usage:\nconvertmdinfo -r %d %d -g %d %d -b %d %d -wp %d %d -lmin %d -lmax %d\n"
	if b.String() != want {
		t.Errorf("usage = %q, want %q", b.String(), want)
	}
}

func TestRunMalformedConfig(t *testing.T) {
	useConfig(t, "frame_limit: [\n")
	testCases := []struct {
		desc     string
		args     []string
		wantCode int
	}{
		{desc: "no arguments print usage", args: nil, wantCode: 0},
		{desc: "only global switches print usage", args: []string{"-o", "out.txt"}, wantCode: 0},
		{desc: "manual metadata needs the configuration", args: hdr10Args, wantCode: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			code, stdout, stderr := runArgs(tc.args...)
			if code != tc.wantCode {
				t.Errorf("%q: exit code %d, want %d (stderr %q)", tc.desc, code, tc.wantCode, stderr)
			}
			if stdout != "" {
				t.Errorf("%q: stdout = %q, want empty", tc.desc, stdout)
			}
			if tc.wantCode == 0 && stderr != usage {
				t.Errorf("%q: stderr = %q, want usage", tc.desc, stderr)
			}
		})
	}
}
