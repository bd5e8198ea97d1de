package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mkarlsen/sunwheel/pkg/pipeline"
)

// artifactWriteParams bundles the inputs for writeArtifacts.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string // input path, used to derive output names
	output    string // explicit output path or base path
	cacheHit  bool
}

// writeArtifacts writes each rendered format to disk. With a single format
// the output path is used verbatim (or derived from the input); with
// multiple formats the extension of each file follows its format.
func writeArtifacts(p artifactWriteParams) error {
	base := artifactBasePath(p.output, p.input)

	printSuccess("Render complete")
	for _, format := range p.formats {
		data, ok := p.artifacts[format]
		if !ok {
			continue
		}

		path := base + "." + format
		if p.output != "" && len(p.formats) == 1 {
			path = p.output
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}

	status := iconFresh
	statusStyle := styleComputed
	if p.cacheHit {
		status = iconCached
		statusStyle = styleCached
	}
	printDetail("%s", statusStyle.Render(status))
	return nil
}

// artifactBasePath derives the base output path from the output and input
// file paths. If output is empty, it strips the extension from input. If
// output has a format extension (.svg, .pdf, etc.), it strips that extension.
func artifactBasePath(output, input string) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return strings.TrimSuffix(base, ".layout")
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// nopCloser wraps an io.Writer with a no-op Close method.
// It is used to make os.Stdout compatible with io.WriteCloser.
type nopCloser struct{ io.Writer }

// Close implements io.Closer with a no-op.
func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
// Otherwise, it creates the file at path, overwriting if it exists.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}
