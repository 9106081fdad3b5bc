// Package library lists tutorials previously exported to an output directory.
package library

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Entry describes one exported Markdown tutorial.
type Entry struct {
	Name     string    `json:"name"` // file name, e.g. "linear_regression_tutorial.md"
	Path     string    `json:"path"`
	Title    string    `json:"title"`
	Summary  string    `json:"summary,omitempty"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

const summaryPrefix = "**Summary:**"

// Scan returns the Markdown tutorials in dir sorted by file name. A missing
// directory yields an empty listing. Subdirectories are not descended.
func Scan(dir string) ([]Entry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("library: read %s: %w", dir, err)
	}

	var out []Entry
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".md") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		e, err := readEntry(path)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// readEntry reads the header of one exported file. Files that do not start
// with a "# " heading fall back to their name for the title.
func readEntry(path string) (Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return Entry{}, fmt.Errorf("library: open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Entry{}, fmt.Errorf("library: stat %s: %w", path, err)
	}

	e := Entry{
		Name:     filepath.Base(path),
		Path:     path,
		Size:     info.Size(),
		Modified: info.ModTime(),
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
header:
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case e.Title == "" && strings.HasPrefix(line, "# "):
			e.Title = strings.TrimSpace(strings.TrimPrefix(line, "# "))
			continue
		case strings.HasPrefix(line, summaryPrefix):
			e.Summary = strings.TrimSpace(strings.TrimPrefix(line, summaryPrefix))
		}
		// Only the title line and the summary line belong to the header.
		break header
	}
	if err := scanner.Err(); err != nil {
		return Entry{}, fmt.Errorf("library: read %s: %w", path, err)
	}

	if e.Title == "" {
		e.Title = titleFromName(e.Name)
	}
	return e, nil
}

// titleFromName turns "linear_regression_tutorial.md" into "linear regression".
func titleFromName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	base = strings.TrimSuffix(base, "_tutorial")
	return strings.ReplaceAll(base, "_", " ")
}
