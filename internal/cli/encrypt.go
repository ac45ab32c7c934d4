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
	encryptCmd.SilenceErrors = true
	encryptCmd.SilenceUsage = true
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt a file into a .swx container",
	Long: `Encrypt a single file into a SweetByte container (.swx).

If no password is provided, you will be prompted to enter one interactively
(with confirmation). The password is hidden while typing.

Examples:
  # Encrypt interactively (prompts for password)
  sweetbyte encrypt -i secret.txt

  # Encrypt with password on the command line (visible in shell history)
  sweetbyte encrypt -i secret.txt -o secret.txt.swx -p "mypassword"

  # Read password from stdin (for scripts)
  echo "mypassword" | sweetbyte encrypt -i secret.txt -P`,
	RunE: runEncrypt,
}

var (
	encInput         string
	encOutput        string
	encPassword      string
	encPasswordStdin bool
	encQuiet         bool
	encYes           bool
)

func init() {
	rootCmd.AddCommand(encryptCmd)

	encryptCmd.Flags().StringVarP(&encInput, "input", "i", "", "Input file to encrypt")
	encryptCmd.Flags().StringVarP(&encOutput, "output", "o", "", "Output .swx file path (default: <input>.swx)")
	encryptCmd.Flags().StringVarP(&encPassword, "password", "p", "", "Encryption password")
	encryptCmd.Flags().BoolVarP(&encPasswordStdin, "password-stdin", "P", false, "Read password from stdin")
	encryptCmd.Flags().BoolVarP(&encQuiet, "quiet", "q", false, "Suppress progress output")
	encryptCmd.Flags().BoolVarP(&encYes, "yes", "y", false, "Overwrite output file without prompting")

	_ = encryptCmd.MarkFlagRequired("input")
}

func runEncrypt(cmd *cobra.Command, args []string) error {
	if encInput == "" {
		return fmt.Errorf("input file is required (-i)")
	}
	info, err := os.Stat(encInput)
	if err != nil {
		return fmt.Errorf("input file not found: %s", encInput)
	}
	if info.IsDir() {
		return fmt.Errorf("input must be a file, not a directory: %s", encInput)
	}

	outputFile := encOutput
	if outputFile == "" {
		outputFile = encInput + ".swx"
	}

	if _, err := os.Stat(outputFile); err == nil {
		if !encYes {
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

	password := encPassword
	if encPasswordStdin {
		password, err = ReadPasswordFromStdin()
		if err != nil {
			return err
		}
	} else if password == "" {
		password, err = ReadPasswordInteractive(true)
		if err != nil {
			return fmt.Errorf("password input: %w", err)
		}
	}

	reporter := NewReporter(encQuiet)
	globalReporter = reporter

	if !encQuiet {
		fmt.Fprintf(os.Stderr, "Encrypting %s to %s\n\n", encInput, outputFile)
	}

	req := &orchestrator.EncryptRequest{
		InputPath:  encInput,
		OutputPath: outputFile,
		Password:   password,
		Reporter:   reporter,
		Options:    orchestrator.DefaultOptions(),
	}

	err = orchestrator.Encrypt(context.Background(), req)
	reporter.Finish()

	if err != nil {
		reporter.PrintError("%v", err)
		return err
	}

	reporter.PrintSuccess("Encryption completed successfully: %s", outputFile)
	return nil
}
