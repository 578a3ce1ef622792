// File: cmd/init.go
package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"repoloader/pkg/ignore"
)

// initCmd writes the bundled default ignore file into a repository so it can be customised.
var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Write the default " + ignore.DefaultToolIgnoreFile + " into a repository",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, err := cmd.Flags().GetBool("force")
		if err != nil {
			return fmt.Errorf("error reading flags: %w", err)
		}

		dir := "."
		if len(args) > 0 {
			dir = args[0]
		}

		path, err := writeIgnoreFile(dir, force)
		if err != nil {
			return err
		}
		logger.Debug("Wrote default ignore file", zap.String("filePath", path))
		color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "Wrote %s.\n", path)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolP("force", "f", false, "overwrite an existing file")
	RootCmd.AddCommand(initCmd)
}

// writeIgnoreFile writes the bundled ignore file into dir and returns its path.
func writeIgnoreFile(dir string, force bool) (string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%s is not a directory", dir)
	}

	path := filepath.Join(dir, ignore.DefaultToolIgnoreFile)
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(path, flags, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("%s already exists, use --force to overwrite", path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if _, err := f.Write(ignore.DefaultIgnoreFile()); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	return path, nil
}
