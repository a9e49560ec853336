package decoder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeScript drops an executable shell script standing in for the decoder.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-decoder")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestNewValidates(t *testing.T) {
	if _, err := New("  ", "-stdout", time.Second); err == nil {
		t.Fatal("expected error for empty binary")
	}
	if _, err := New("ccextractor", "-stdout", 0); err == nil {
		t.Fatal("expected error for zero timeout")
	}
}

func TestInvokeSuccessPassesArgs(t *testing.T) {
	script := writeScript(t, `echo "$1 $2" >&2
printf '1\n00:00:01,000 --> 00:00:02,000\nhello\n'
`)
	inv, err := New(script, "-stdout", 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	out, err := inv.Invoke(context.Background(), "/media/clip.ts")
	if err != nil {
		t.Fatalf("Invoke error: %v", err)
	}
	if !strings.Contains(out.Stdout, "hello") {
		t.Fatalf("stdout = %q", out.Stdout)
	}
	if strings.TrimSpace(out.Stderr) != "/media/clip.ts -stdout" {
		t.Fatalf("decoder saw args %q", out.Stderr)
	}
	if out.ExitCode != 0 {
		t.Fatalf("exit code = %d", out.ExitCode)
	}
}

func TestInvokeFailureWithoutOutput(t *testing.T) {
	script := writeScript(t, "echo 'no caption track' >&2\nexit 3\n")
	inv, _ := New(script, "-stdout", 5*time.Second)

	_, err := inv.Invoke(context.Background(), "clip.ts")
	if !errors.Is(err, ErrFailure) {
		t.Fatalf("expected ErrFailure, got %v", err)
	}
	var derr *Error
	if !errors.As(err, &derr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if derr.ExitCode != 3 || !strings.Contains(derr.Stderr, "no caption track") {
		t.Fatalf("unexpected diagnostics: %+v", derr)
	}
}

func TestInvokeNonzeroExitWithOutputIsTolerated(t *testing.T) {
	script := writeScript(t, `printf '1\n00:00:01,000 --> 00:00:02,000\npartial\n'
echo 'stream damaged' >&2
exit 1
`)
	inv, _ := New(script, "-stdout", 5*time.Second)

	out, err := inv.Invoke(context.Background(), "clip.ts")
	if err != nil {
		t.Fatalf("partial output should not fail: %v", err)
	}
	if out.ExitCode != 1 || !strings.Contains(out.Stdout, "partial") {
		t.Fatalf("unexpected output: %+v", out)
	}
}

func TestInvokeMissingBinary(t *testing.T) {
	inv, _ := New(filepath.Join(t.TempDir(), "nope"), "-stdout", time.Second)
	_, err := inv.Invoke(context.Background(), "clip.ts")
	if !errors.Is(err, ErrFailure) {
		t.Fatalf("expected ErrFailure, got %v", err)
	}
}

func TestInvokeTimeout(t *testing.T) {
	script := writeScript(t, "sleep 30\n")
	inv, _ := New(script, "-stdout", 200*time.Millisecond)

	start := time.Now()
	_, err := inv.Invoke(context.Background(), "clip.ts")
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("Invoke took %v after timeout", elapsed)
	}
}

func TestFFmpegArgs(t *testing.T) {
	args := FFmpegArgs("/media/movie.mkv")
	joined := strings.Join(args, " ")
	for _, want := range []string{"-i /media/movie.mkv", "-map 0:s:0", "-f srt"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args %q missing %q", joined, want)
		}
	}
	if args[len(args)-1] != "pipe:1" {
		t.Fatalf("output target = %q; want pipe:1", args[len(args)-1])
	}
}

func TestFFmpegInvokerPassesBuiltArgs(t *testing.T) {
	script := writeScript(t, `echo "$@" >&2
printf '1\n00:00:01,000 --> 00:00:02,000\nembedded\n'
`)
	inv, err := NewFFmpeg(script, 5*time.Second)
	if err != nil {
		t.Fatal(err)
	}
	out, err := inv.Invoke(context.Background(), "movie.mkv")
	if err != nil {
		t.Fatalf("Invoke error: %v", err)
	}
	if !strings.Contains(out.Stderr, "-i movie.mkv") || !strings.Contains(out.Stdout, "embedded") {
		t.Fatalf("stdout = %q, stderr = %q", out.Stdout, out.Stderr)
	}
}

func TestTailBufferKeepsLastBytes(t *testing.T) {
	cases := []struct {
		name   string
		writes []string
		want   string
	}{
		{"under limit", []string{"ab", "cd"}, "abcd"},
		{"spills over", []string{"abcd", "efg"}, "defg"},
		{"one big write", []string{"abcdefghij"}, "ghij"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf := newTailBuffer(4)
			for _, w := range tc.writes {
				if n, err := buf.Write([]byte(w)); err != nil || n != len(w) {
					t.Fatalf("Write(%q) = %d, %v", w, n, err)
				}
			}
			if got := buf.String(); got != tc.want {
				t.Fatalf("tail = %q; want %q", got, tc.want)
			}
		})
	}
}

func TestInvokeCapsStderr(t *testing.T) {
	script := writeScript(t, "head -c 200000 /dev/zero | tr '\\0' x >&2\necho done >&2\nexit 2\n")
	inv, _ := New(script, "-stdout", 5*time.Second)

	_, err := inv.Invoke(context.Background(), "clip.ts")
	var decErr *Error
	if !errors.As(err, &decErr) {
		t.Fatalf("err = %v; want *Error", err)
	}
	if len(decErr.Stderr) != maxStderrBytes {
		t.Fatalf("kept %d bytes of stderr; want %d", len(decErr.Stderr), maxStderrBytes)
	}
	if !strings.HasSuffix(decErr.Stderr, "done\n") {
		t.Fatalf("stderr tail lost the last line: %q", decErr.Stderr[len(decErr.Stderr)-20:])
	}
}
