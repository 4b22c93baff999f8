package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"

	"github.com/goccy/go-yaml"
	"github.com/klauspost/readahead"
)

// loadRecord decodes every YAML or JSON document of the record sources in
// ctx. Mapping documents are merged key by key, later documents winning;
// any other document replaces the record. It returns nil without sources.
func loadRecord(ctx context.Context) (any, error) {
	srcs := sourceFilesFrom(ctx)
	if srcs == nil || srcs.IsZero() {
		return nil, nil
	}

	var record any

	err := srcs.Each(func(name string, r io.Reader) error {
		ra := readahead.NewReader(r)
		defer ra.Close()

		dec := yaml.NewDecoder(ra)

		for {
			var doc any
			if err := dec.DecodeContext(ctx, &doc); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}

				return ErrReadRecord.Wrap(err).With(slog.String("source", name))
			}

			record = mergeRecord(record, doc)
		}
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

func mergeRecord(dst, src any) any {
	d, ok := dst.(map[string]any)
	if !ok {
		return src
	}

	s, ok := src.(map[string]any)
	if !ok {
		return src
	}

	merged := maps.Clone(d)
	maps.Copy(merged, s)

	return merged
}
