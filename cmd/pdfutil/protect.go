// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/pdiddy/pdfutil/internal/pipeline"
)

var errPasswordMismatch = errors.New("passwords do not match")

var protectCmd = &cobra.Command{
	Use:   "protect [dir]",
	Short: "Write password-protected copies of a folder's PDFs and workbooks",
	Long: `Protect encrypts every PDF (AES-256) and .xlsx workbook in the folder with
the given password and writes the copies to its protected/ subfolder.
Originals are never modified. Legacy .xls workbooks are reported as failures.

The password is prompted for twice without echo, or read from the first line
of standard input with --password-stdin.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProtect,
}

func init() {
	protectCmd.Flags().Bool("password-stdin", false, "read the password from the first line of stdin")
	protectCmd.Flags().String("owner-password", "", "owner password for PDFs (default: same as the password)")

	rootCmd.AddCommand(protectCmd)
}

func runProtect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if owner, _ := cmd.Flags().GetString("owner-password"); owner != "" {
		cfg.Protect.OwnerPassword = owner
	}
	fromStdin, _ := cmd.Flags().GetBool("password-stdin")

	password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr(), fromStdin)
	if err != nil {
		return err
	}

	dir := targetDir(cfg, args)
	out := cmd.OutOrStdout()

	started := time.Now()
	res, err := pipeline.RunProtect(dir, password, cfg, out)
	recordRun(cmd.Context(), cfg.Journal, protectRun(dir, res, err, started), cmd.ErrOrStderr())

	switch {
	case err != nil:
		printStatus(out, "protect", statusError, err.Error())
		return err
	case res.Total == 0:
		printStatus(out, "protect", statusInfo, "no PDF or Excel files found")
	case res.HasFailures():
		printStatus(out, "protect", statusWarn, fmt.Sprintf("%d/%d files protected in %s", res.Succeeded, res.Total, res.OutputDir))
	default:
		printStatus(out, "protect", statusOK, fmt.Sprintf("%d/%d files protected in %s", res.Succeeded, res.Total, res.OutputDir))
	}
	return nil
}

// readPassword reads the password from in. A terminal gets an echo-free
// prompt and a confirmation; anything else, or fromStdin, supplies the first
// line.
func readPassword(in io.Reader, prompt io.Writer, fromStdin bool) (string, error) {
	if f, ok := in.(*os.File); ok && !fromStdin && term.IsTerminal(int(f.Fd())) {
		return promptPassword(int(f.Fd()), prompt)
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func promptPassword(fd int, prompt io.Writer) (string, error) {
	fmt.Fprint(prompt, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	fmt.Fprint(prompt, "Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}

	if string(first) != string(second) {
		return "", errPasswordMismatch
	}
	return string(first), nil
}
