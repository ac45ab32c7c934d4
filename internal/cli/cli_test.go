package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReporter(t *testing.T) {
	t.Run("NewReporter", func(t *testing.T) {
		r := NewReporter(false)
		if r == nil {
			t.Fatal("NewReporter returned nil")
		}
		if r.quiet {
			t.Error("quiet should be false")
		}

		r = NewReporter(true)
		if !r.quiet {
			t.Error("quiet should be true")
		}
	})

	t.Run("SetStatus", func(t *testing.T) {
		r := NewReporter(false)
		r.SetStatus("test status")
		if r.status != "test status" {
			t.Errorf("expected 'test status', got %q", r.status)
		}
	})

	t.Run("SetProgress", func(t *testing.T) {
		r := NewReporter(false)
		r.SetProgress(50, 100)
		if r.done != 50 {
			t.Errorf("expected done 50, got %d", r.done)
		}
		if r.total != 100 {
			t.Errorf("expected total 100, got %d", r.total)
		}
		if r.start.IsZero() {
			t.Error("expected start to be set by the first SetProgress call")
		}
	})

	t.Run("Cancel", func(t *testing.T) {
		r := NewReporter(false)
		if r.IsCancelled() {
			t.Error("should not be cancelled initially")
		}
		r.Cancel()
		if !r.IsCancelled() {
			t.Error("should be cancelled after Cancel()")
		}
	})

	t.Run("SetCanCancel", func(t *testing.T) {
		r := NewReporter(false)
		// Should be a no-op, just ensure it doesn't panic
		r.SetCanCancel(true)
		r.SetCanCancel(false)
	})
}

func resetEncryptFlags() {
	encInput = ""
	encOutput = ""
	encPassword = ""
	encPasswordStdin = false
	encQuiet = false
	encYes = false
}

func resetDecryptFlags() {
	decInput = ""
	decOutput = ""
	decPassword = ""
	decPasswordStdin = false
	decQuiet = false
	decYes = false
}

func TestEncryptValidation(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		resetEncryptFlags()

		cmd := encryptCmd
		err := cmd.RunE(cmd, []string{})
		if err == nil {
			t.Error("expected error for missing input")
		}
		if !strings.Contains(err.Error(), "input") {
			t.Errorf("error should mention input: %v", err)
		}
	})

	t.Run("nonexistent input file", func(t *testing.T) {
		resetEncryptFlags()
		encInput = "/nonexistent/file/path.txt"
		encPassword = "test"

		cmd := encryptCmd
		err := cmd.RunE(cmd, []string{})
		if err == nil {
			t.Error("expected error for nonexistent file")
		}
		if !strings.Contains(err.Error(), "not found") {
			t.Errorf("error should mention not found: %v", err)
		}
	})

	t.Run("input is directory", func(t *testing.T) {
		resetEncryptFlags()
		encInput = t.TempDir()
		encPassword = "test"

		cmd := encryptCmd
		err := cmd.RunE(cmd, []string{})
		if err == nil {
			t.Error("expected error for directory input")
		}
		if !strings.Contains(err.Error(), "directory") {
			t.Errorf("error should mention directory: %v", err)
		}
	})
}

func TestDecryptValidation(t *testing.T) {
	t.Run("missing input", func(t *testing.T) {
		resetDecryptFlags()
		decPassword = "test"

		cmd := decryptCmd
		err := cmd.RunE(cmd, []string{})
		if err == nil {
			t.Error("expected error for missing input")
		}
		if !strings.Contains(err.Error(), "input") {
			t.Errorf("error should mention input: %v", err)
		}
	})

	t.Run("nonexistent input file", func(t *testing.T) {
		resetDecryptFlags()
		decInput = "/nonexistent/file.swx"
		decPassword = "test"

		cmd := decryptCmd
		err := cmd.RunE(cmd, []string{})
		if err == nil {
			t.Error("expected error for nonexistent file")
		}
		if !strings.Contains(err.Error(), "not found") {
			t.Errorf("error should mention not found: %v", err)
		}
	})

	t.Run("input is directory", func(t *testing.T) {
		resetDecryptFlags()
		decInput = t.TempDir()
		decPassword = "test"

		cmd := decryptCmd
		err := cmd.RunE(cmd, []string{})
		if err == nil {
			t.Error("expected error for directory input")
		}
		if !strings.Contains(err.Error(), "directory") {
			t.Errorf("error should mention directory: %v", err)
		}
	})
}

func TestOutputAutoGeneration(t *testing.T) {
	t.Run("encrypt appends .swx", func(t *testing.T) {
		input := "/path/to/file.txt"
		expected := "/path/to/file.txt.swx"
		if got := input + ".swx"; got != expected {
			t.Errorf("expected %q, got %q", expected, got)
		}
	})

	t.Run("decrypt strips .swx", func(t *testing.T) {
		input := "/path/to/file.txt.swx"
		expected := "/path/to/file.txt"
		if got := strings.TrimSuffix(input, ".swx"); got != expected {
			t.Errorf("expected %q, got %q", expected, got)
		}
	})

	t.Run("decrypt falls back when input has no .swx suffix", func(t *testing.T) {
		input := "/path/to/file"
		expected := "/path/to/file.decrypted"
		output := strings.TrimSuffix(input, ".swx")
		if output == input {
			output = input + ".decrypted"
		}
		if output != expected {
			t.Errorf("expected %q, got %q", expected, output)
		}
	})
}

func TestReporterOutput(t *testing.T) {
	t.Run("quiet mode suppresses output", func(t *testing.T) {
		r := NewReporter(true)
		r.SetStatus("test")
		r.SetProgress(50, 100)

		old := os.Stderr
		r2, w, _ := os.Pipe()
		os.Stderr = w

		r.Update()
		r.Finish()

		w.Close()
		os.Stderr = old

		var buf bytes.Buffer
		buf.ReadFrom(r2)

		if buf.Len() != 0 {
			t.Errorf("quiet mode should not produce output, got: %q", buf.String())
		}
	})

	t.Run("PrintSuccess respects quiet", func(t *testing.T) {
		r := NewReporter(true)

		old := os.Stderr
		r2, w, _ := os.Pipe()
		os.Stderr = w

		r.PrintSuccess("success message")

		w.Close()
		os.Stderr = old

		var buf bytes.Buffer
		buf.ReadFrom(r2)

		if buf.Len() != 0 {
			t.Errorf("quiet mode should suppress success, got: %q", buf.String())
		}
	})

	t.Run("non-quiet Update renders status and progress", func(t *testing.T) {
		r := NewReporter(false)
		r.SetStatus("Encrypting...")
		r.SetProgress(50, 100)

		old := os.Stderr
		r2, w, _ := os.Pipe()
		os.Stderr = w

		r.Update()

		w.Close()
		os.Stderr = old

		var buf bytes.Buffer
		buf.ReadFrom(r2)
		out := buf.String()

		if !strings.Contains(out, "Encrypting...") {
			t.Errorf("expected status in output, got: %q", out)
		}
		if !strings.Contains(out, "50.0%") {
			t.Errorf("expected a percentage in output, got: %q", out)
		}
	})

	t.Run("PrintError always outputs", func(t *testing.T) {
		r := NewReporter(true) // Even in quiet mode

		old := os.Stderr
		r2, w, _ := os.Pipe()
		os.Stderr = w

		r.PrintError("error message")

		w.Close()
		os.Stderr = old

		var buf bytes.Buffer
		buf.ReadFrom(r2)

		if !strings.Contains(buf.String(), "error message") {
			t.Errorf("PrintError should always output, got: %q", buf.String())
		}
	})
}

func TestVersionFlag(t *testing.T) {
	Version = "v1.0.0"
	rootCmd.Version = Version
	if rootCmd.Version != "v1.0.0" {
		t.Errorf("expected version v1.0.0, got %s", rootCmd.Version)
	}
}

func TestEncryptDecryptEndToEnd(t *testing.T) {
	dir := t.TempDir()
	inputPath := filepath.Join(dir, "plain.txt")
	if err := os.WriteFile(inputPath, []byte("hello, sweetbyte"), 0o644); err != nil {
		t.Fatal(err)
	}
	outputPath := filepath.Join(dir, "plain.txt.swx")

	resetEncryptFlags()
	encInput = inputPath
	encOutput = outputPath
	encPassword = "a reasonably long password"
	encQuiet = true

	if err := encryptCmd.RunE(encryptCmd, []string{}); err != nil {
		t.Fatalf("encrypt failed: %v", err)
	}
	if _, err := os.Stat(outputPath); err != nil {
		t.Fatalf("expected output file at %s: %v", outputPath, err)
	}

	decryptedPath := filepath.Join(dir, "plain_decrypted.txt")
	resetDecryptFlags()
	decInput = outputPath
	decOutput = decryptedPath
	decPassword = "a reasonably long password"
	decQuiet = true

	if err := decryptCmd.RunE(decryptCmd, []string{}); err != nil {
		t.Fatalf("decrypt failed: %v", err)
	}

	got, err := os.ReadFile(decryptedPath)
	if err != nil {
		t.Fatalf("reading decrypted output: %v", err)
	}
	if string(got) != "hello, sweetbyte" {
		t.Errorf("round trip mismatch: got %q", got)
	}
}
