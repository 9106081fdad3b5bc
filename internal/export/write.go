package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dusk-indust/tutorgen/internal/orchestrator"
)

// extensions maps export formats to file extensions.
var extensions = map[string]string{
	"markdown": "md",
	"html":     "html",
	"json":     "json",
}

// Render produces the bytes of res in one format.
func Render(res *orchestrator.Result, format string, now time.Time) ([]byte, error) {
	if res == nil || res.Document == nil {
		return nil, ErrIncomplete
	}
	switch format {
	case "markdown":
		return []byte(Markdown(*res.Document)), nil
	case "html":
		page, err := HTMLPage(*res.Document)
		if err != nil {
			return nil, err
		}
		return []byte(page), nil
	case "json":
		return JSON(res, now)
	default:
		return nil, fmt.Errorf("export: unknown format %q", format)
	}
}

// Write renders res in every format into dir, creating it if needed, and
// returns the written paths in format order.
func Write(dir string, res *orchestrator.Result, formats []string, now time.Time) ([]string, error) {
	if res == nil || res.Document == nil {
		return nil, ErrIncomplete
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: create %s: %w", dir, err)
	}

	var paths []string
	for _, format := range formats {
		ext, ok := extensions[format]
		if !ok {
			return paths, fmt.Errorf("export: unknown format %q", format)
		}
		data, err := Render(res, format, now)
		if err != nil {
			return paths, err
		}
		path := filepath.Join(dir, FileName(res.Topic, ext))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("export: write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
