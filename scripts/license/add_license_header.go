// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// add_license_header.go: Add or check license headers in project files
// Usage: go run ./scripts/license -dir . [-check]

package main

import (
	"bufio"
	"bytes"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

//go:embed license_header.txt
var licenseHeader string

// patterns maps file extensions (starting with a dot) or file names to the
// comment prefix used for the license header in such files.
var patterns = map[string]string{
	".go":    "//",
	".yml":   "#",
	".yaml":  "#",
	"go.mod": "//",
}

// ignored lists path fragments excluded from processing.
var ignored = []string{"/_examples/", "/testdata/", ".pb.go"}

func main() {
	checkOnly := flag.Bool("check", false,
		"Check mode: only verify headers, do not modify files")
	targetDir := flag.String("dir", "",
		"Target directory to start processing files from. This flag is required to run.")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := run(logger, *targetDir, *checkOnly); err != nil {
		logger.Error("license header check failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(logger *zap.Logger, dir string, checkOnly bool) error {
	if dir == "" {
		return errors.New("please provide a directory to look for files, use -dir")
	}
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("invalid target directory: %w", err)
	}
	logger.Info("processing files", zap.String("dir", dir), zap.Bool("check", checkOnly))

	files, err := collectFiles(dir)
	if err != nil {
		return err
	}
	var errs []error
	for _, f := range files {
		prefix := prefixOf(f)
		header := addPrefix(licenseHeader, prefix)
		if err := processFile(f, header, checkOnly); err != nil {
			if !checkOnly {
				return err
			}
			errs = append(errs, err)
		}
		if checkOnly {
			errs = append(errs, checkDoubleHeader(f, prefix))
		}
	}
	logger.Info("processed files", zap.Int("files", len(files)))
	return errors.Join(errs...)
}

// collectFiles lists all files below dir matching one of the patterns.
func collectFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() || shouldIgnore(filepath.ToSlash(path)) {
			return nil
		}
		if prefixOf(path) != "" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dir, err)
	}
	return files, nil
}

// prefixOf returns the comment prefix for the given file, or the empty string
// if the file is not covered by any pattern.
func prefixOf(path string) string {
	if prefix, found := patterns[filepath.Base(path)]; found {
		return prefix
	}
	return patterns[filepath.Ext(path)]
}

func shouldIgnore(path string) bool {
	for _, fragment := range ignored {
		if strings.Contains(path, fragment) {
			return true
		}
	}
	return false
}

// processFile checks whether the given file starts with the license header
// and, unless checkOnly is set, fixes it. An outdated header of the same
// copyright holder is replaced.
func processFile(file, header string, checkOnly bool) error {
	content, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}
	if strings.HasPrefix(string(content), header) {
		return nil
	}
	if checkOnly {
		return fmt.Errorf("missing or incorrect license header: %s", file)
	}

	body := string(content)
	firstLine, _, _ := strings.Cut(body, "\n")
	if strings.Contains(firstLine, "Sonic Operations Ltd") {
		// drop the outdated header up to the first empty line
		if _, rest, found := strings.Cut(body, "\n\n"); found {
			body = rest
		}
	}

	info, err := os.Stat(file)
	if err != nil {
		return err
	}
	return os.WriteFile(file, []byte(header+"\n"+body), info.Mode().Perm())
}

func checkDoubleHeader(path, prefix string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	lines := strings.Split(string(content), "\n")
	if !strings.Contains(lines[0], "Copyright") {
		return nil
	}
	for i, line := range lines[1:] {
		if strings.HasPrefix(line, prefix+" Copyright") {
			return fmt.Errorf("double license header found in %s at line %d", path, i+2)
		}
	}
	return nil
}

// addPrefix turns every line of the license into a comment line.
func addPrefix(license, prefix string) string {
	var buf bytes.Buffer
	s := bufio.NewScanner(strings.NewReader(license))
	for s.Scan() {
		if line := s.Text(); line == "" {
			buf.WriteString(prefix + "\n")
		} else {
			buf.WriteString(prefix + " " + line + "\n")
		}
	}
	return buf.String()
}
