package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/woozymasta/casas/internal/geo"
	"github.com/woozymasta/casas/internal/storage"

	"github.com/jessevdk/go-flags"
	"github.com/tdewolff/minify/v2"
	jsonmin "github.com/tdewolff/minify/v2/json"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Input   string `short:"i" long:"in"      description:"Input file with a feature collection or a list of features. Use - for stdin, empty for an empty collection"`
	Output  string `short:"o" long:"out"     description:"Markers file to create" default:"casas.json"`
	Format  string `short:"f" long:"format"  description:"Input format, detected from the file extension when empty" choice:"json" choice:"yaml"`
	Force   bool   `long:"force"             description:"Overwrite an existing markers file"`
	Compact bool   `long:"compact"           description:"Write minified JSON instead of the indented form"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if err := run(opts, os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(opts Options, stdin io.Reader) error {
	if !opts.Force {
		if _, err := os.Stat(opts.Output); err == nil {
			return fmt.Errorf("%s already exists, use --force to overwrite", opts.Output)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	fc := geo.NewFeatureCollection()

	if opts.Input != "" {
		var (
			data []byte
			err  error
		)
		if opts.Input == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(opts.Input)
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		format := opts.Format
		if format == "" {
			format = detectFormat(opts.Input)
		}

		fc, err = decode(data, format)
		if err != nil {
			return fmt.Errorf("decode input: %w", err)
		}
	}

	if !opts.Compact {
		if err := storage.NewFile(opts.Output).Save(fc); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %d markers to %s\n", fc.Len(), opts.Output)
		return nil
	}

	data, err := storage.Encode(fc)
	if err != nil {
		return err
	}

	m := minify.New()
	m.AddFunc("application/json", jsonmin.Minify)
	data, err = m.Bytes("application/json", data)
	if err != nil {
		return fmt.Errorf("minify: %w", err)
	}

	if err := storage.WriteFileAtomic(opts.Output, data); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %d markers to %s (compact)\n", fc.Len(), opts.Output)
	return nil
}

func detectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// decode accepts either a document with a "features" array or a bare list
// of features.
func decode(data []byte, format string) (geo.FeatureCollection, error) {
	if format == "yaml" {
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return geo.FeatureCollection{}, err
		}
		converted, err := json.Marshal(v)
		if err != nil {
			return geo.FeatureCollection{}, err
		}
		data = converted
	}

	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var features []json.RawMessage
		if err := json.Unmarshal(data, &features); err != nil {
			return geo.FeatureCollection{}, err
		}
		fc := geo.NewFeatureCollection()
		for _, f := range features {
			fc.Append(f)
		}
		return fc, nil
	}

	var fc geo.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return geo.FeatureCollection{}, err
	}
	return fc, nil
}
