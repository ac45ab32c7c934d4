package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hambosto/sweetbyte/internal/orchestrator"

	"github.com/spf13/cobra"
)

func init() {
	decryptCmd.SilenceErrors = true
	decryptCmd.SilenceUsage = true
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt a .swx container",
	Long: `Decrypt a SweetByte container (.swx) back to its original file.

If no password is provided, you will be prompted to enter one interactively.
The password is hidden while typing.

Examples:
  # Decrypt interactively (prompts for password)
  sweetbyte decrypt -i secret.txt.swx

  # Decrypt with password on the command line (visible in shell history)
  sweetbyte decrypt -i secret.txt.swx -o secret.txt -p "mypassword"

  # Read password from stdin (for scripts)
  echo "mypassword" | sweetbyte decrypt -i secret.txt.swx -P`,
	RunE: runDecrypt,
}

var (
	decInput         string
	decOutput        string
	decPassword      string
	decPasswordStdin bool
	decQuiet         bool
	decYes           bool
)

func init() {
	rootCmd.AddCommand(decryptCmd)

	decryptCmd.Flags().StringVarP(&decInput, "input", "i", "", "Input .swx file to decrypt")
	decryptCmd.Flags().StringVarP(&decOutput, "output", "o", "", "Output file path (default: <input> with .swx stripped)")
	decryptCmd.Flags().StringVarP(&decPassword, "password", "p", "", "Decryption password")
	decryptCmd.Flags().BoolVarP(&decPasswordStdin, "password-stdin", "P", false, "Read password from stdin")
	decryptCmd.Flags().BoolVarP(&decQuiet, "quiet", "q", false, "Suppress progress output")
	decryptCmd.Flags().BoolVarP(&decYes, "yes", "y", false, "Overwrite output file without prompting")

	_ = decryptCmd.MarkFlagRequired("input")
}

func runDecrypt(cmd *cobra.Command, args []string) error {
	if decInput == "" {
		return fmt.Errorf("input file is required (-i)")
	}
	info, err := os.Stat(decInput)
	if err != nil {
		return fmt.Errorf("input file not found: %s", decInput)
	}
	if info.IsDir() {
		return fmt.Errorf("input must be a file, not a directory: %s", decInput)
	}

	outputFile := decOutput
	if outputFile == "" {
		outputFile = strings.TrimSuffix(decInput, ".swx")
		if outputFile == decInput {
			outputFile = decInput + ".decrypted"
		}
	}

	if _, err := os.Stat(outputFile); err == nil {
		if !decYes {
			fmt.Fprintf(os.Stderr, "Output file %s already exists. Overwrite? [y/N]: ", outputFile)
			reader := bufio.NewReader(os.Stdin)
			response, _ := reader.ReadString('\n')
			response = strings.TrimSpace(strings.ToLower(response))
			if response != "y" && response != "yes" {
				return fmt.Errorf("operation cancelled")
			}
		}
		if err := os.Remove(outputFile); err != nil {
			return fmt.Errorf("removing existing output: %w", err)
		}
	}

	password := decPassword
	if decPasswordStdin {
		password, err = ReadPasswordFromStdin()
		if err != nil {
			return err
		}
	} else if password == "" {
		password, err = ReadPasswordInteractive(false)
		if err != nil {
			return fmt.Errorf("password input: %w", err)
		}
	}

	reporter := NewReporter(decQuiet)
	globalReporter = reporter

	if !decQuiet {
		fmt.Fprintf(os.Stderr, "Decrypting %s\n\n", decInput)
	}

	req := &orchestrator.DecryptRequest{
		InputPath:  decInput,
		OutputPath: outputFile,
		Password:   password,
		Reporter:   reporter,
		Options:    orchestrator.DefaultOptions(),
	}

	err = orchestrator.Decrypt(context.Background(), req)
	reporter.Finish()

	if err != nil {
		reporter.PrintError("%v", err)
		return err
	}

	reporter.PrintSuccess("Decryption completed successfully: %s", outputFile)
	return nil
}
