// sweetbyte encrypts a single file into a .swx container: Argon2id key
// derivation, AES-256-GCM stacked with XChaCha20-Poly1305, Reed-Solomon(4,10)
// resilience on the header and every chunk, and a BLAKE3 content hash
// checked after decryption.
package main

import (
	"fmt"
	"os"

	"github.com/hambosto/sweetbyte/internal/cli"
)

// version is the application version reported by `sweetbyte --version`.
const version = "v0.1.0"

func main() {
	if !cli.Execute(version) {
		fmt.Fprintf(os.Stderr, "sweetbyte %s\n\n", version)
		fmt.Fprintln(os.Stderr, "Usage: sweetbyte <command> [options]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Commands:")
		fmt.Fprintln(os.Stderr, "  encrypt    Encrypt a file into a .swx container")
		fmt.Fprintln(os.Stderr, "  decrypt    Decrypt a .swx container")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Run 'sweetbyte <command> --help' for more information.")
		os.Exit(0)
	}
}
