package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newConvertCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert a document to ZPL in one request",
		Long: `Convert uploads a PDF or image file and writes all resulting labels at once.
Best suited to small documents; use stream for large ones.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			if err := checkOutputDir(output); err != nil {
				return err
			}

			client, err := a.newClient()
			if err != nil {
				return err
			}
			defer client.Close()

			zpl, err := client.ConvertFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return writeOutput(cmd, output, zpl)
		},
	}

	cmd.Flags().StringP("output", "o", "", "write ZPL to this file instead of stdout")

	return cmd
}

// writeOutput writes s to path, or to the command's stdout when path is empty.
func writeOutput(cmd *cobra.Command, path, s string) error {
	if path == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), s)
		return err
	}

	if err := os.WriteFile(path, []byte(s), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// checkOutputDir fails when path's parent directory does not exist, so a
// bad --output is reported before anything is sent to the server.
func checkOutputDir(path string) error {
	if path == "" {
		return nil
	}

	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output directory: %s is not a directory", dir)
	}
	return nil
}
