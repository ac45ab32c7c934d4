package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version is set by main.go.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "sweetbyte",
	Short: "Stacked-AEAD file encryption with Reed-Solomon resilience",
	Long: `sweetbyte encrypts a single file into a .swx container using:
  - Argon2id for password-based key derivation
  - AES-256-GCM then XChaCha20-Poly1305, stacked (both keyed from one subkey)
  - HMAC-SHA-256 over the header, verified before any chunk is decrypted
  - Reed-Solomon(4,10) shard resilience on the header and every chunk
  - BLAKE3 over the full plaintext, checked after decryption completes`,
	Version: Version,
}

// globalReporter lets the interrupt handler below cancel whichever
// operation is currently running.
var globalReporter *Reporter

// Execute runs the CLI. It returns false without doing anything when
// invoked with no arguments, so main.go can print its own usage banner.
func Execute(version string) bool {
	Version = version
	rootCmd.Version = version

	if len(os.Args) < 2 {
		return false
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		if globalReporter != nil {
			globalReporter.Cancel()
		} else {
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
	return true
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}
