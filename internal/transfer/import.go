package transfer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/abhisek/smartstudy/internal/deck"
)

// Format is an import or export file format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatJSON     Format = "json"
)

// ParseFormat accepts a format name, or "" to detect it from path.
func ParseFormat(name, path string) (Format, error) {
	if name == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".csv":
			return FormatCSV, nil
		case ".md", ".markdown":
			return FormatMarkdown, nil
		case ".json":
			return FormatJSON, nil
		}
		return "", fmt.Errorf("cannot detect format of %q; use --format", path)
	}
	switch f := Format(strings.ToLower(name)); f {
	case FormatCSV, FormatMarkdown, FormatJSON:
		return f, nil
	case "markdown":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown format %q (want csv, md or json)", name)
}

// ImportOptions controls Import.
type ImportOptions struct {
	Format Format

	// Name overrides the set name. It defaults to the Markdown title or
	// the file name without extension.
	Name string

	// FileName is the source file's base name.
	FileName string

	Now time.Time
}

// Import reads r into new sets. CSV and Markdown produce one set; a JSON
// document may hold several and keeps their scheduling state.
func Import(r io.Reader, opts ImportOptions) ([]deck.Set, deck.LoadReport, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	name := opts.Name
	if name == "" {
		name = strings.TrimSuffix(opts.FileName, filepath.Ext(opts.FileName))
	}

	switch opts.Format {
	case FormatCSV:
		qs, report, err := ReadCSV(r)
		if err != nil {
			return nil, report, err
		}
		set := deck.NewSet(name, deck.SourceCSV, opts.Now)
		set.Questions = qs
		return []deck.Set{set}, report, nil

	case FormatMarkdown:
		parsed, report, err := ReadMarkdown(r)
		if err != nil {
			return nil, report, err
		}
		if opts.Name == "" && parsed.Name != "" {
			name = parsed.Name
		}
		set := deck.NewSet(name, deck.SourceMarkdown, opts.Now)
		set.Questions = parsed.Questions
		return []deck.Set{set}, report, nil

	case FormatJSON:
		lib, report, err := deck.DecodeDocument(r)
		if err != nil {
			return nil, report, err
		}
		if opts.Name != "" && len(lib.Sets) == 1 {
			lib.Sets[0].Name = opts.Name
		}
		return lib.Sets, report, nil
	}
	return nil, deck.LoadReport{}, fmt.Errorf("unknown format %q", opts.Format)
}
