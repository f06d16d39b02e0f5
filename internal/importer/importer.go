// Package importer parses poster catalog CSV exports into domain records,
// validating row by row so one bad row does not sink the batch.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/posterzone/storefront/internal/domain/poster"
)

// Expected header: id,title,description,price,category,image_thumbnail,image_full,sizes
var expectedHeader = []string{
	"id", "title", "description", "price", "category",
	"image_thumbnail", "image_full", "sizes",
}

// RowError reports a single invalid row; Row is 1-based counting the header.
type RowError struct {
	Row    int
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// Result holds the outcome of a parse: valid posters plus every rejected row.
type Result struct {
	Posters []poster.Poster
	Errors  []RowError
}

// Parse reads the CSV stream and validates each row. It fails outright only
// on a malformed header or unreadable input; bad rows are collected into
// Result.Errors and skipped.
func Parse(r io.Reader) (*Result, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	res := &Result{}
	for row := 2; ; row++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			res.Errors = append(res.Errors, RowError{Row: row, Reason: err.Error()})
			continue
		}

		p, rowErr := parseRow(rec)
		if rowErr != "" {
			res.Errors = append(res.Errors, RowError{Row: row, Reason: rowErr})
			continue
		}
		res.Posters = append(res.Posters, p)
	}
	return res, nil
}

func checkHeader(header []string) error {
	if len(header) != len(expectedHeader) {
		return errors.Errorf("expected %d columns, got %d", len(expectedHeader), len(header))
	}
	for i, want := range expectedHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), want) {
			return errors.Errorf("column %d: expected %q, got %q", i+1, want, header[i])
		}
	}
	return nil
}

func parseRow(rec []string) (poster.Poster, string) {
	if len(rec) != len(expectedHeader) {
		return poster.Poster{}, fmt.Sprintf("expected %d fields, got %d", len(expectedHeader), len(rec))
	}

	id := strings.TrimSpace(rec[0])
	title := strings.TrimSpace(rec[1])
	if id == "" {
		return poster.Poster{}, "missing id"
	}
	if title == "" {
		return poster.Poster{}, "missing title"
	}

	price, err := decimal.NewFromString(strings.TrimSpace(rec[3]))
	if err != nil {
		return poster.Poster{}, fmt.Sprintf("invalid price %q", rec[3])
	}
	if price.IsNegative() {
		return poster.Poster{}, "price must not be negative"
	}

	var sizes []string
	if raw := strings.TrimSpace(rec[7]); raw != "" {
		for _, s := range strings.Split(raw, "|") {
			if s = strings.TrimSpace(s); s != "" {
				sizes = append(sizes, s)
			}
		}
	}

	return poster.Poster{
		ID:          id,
		Title:       title,
		Description: strings.TrimSpace(rec[2]),
		Price:       price,
		Category:    strings.TrimSpace(rec[4]),
		Image: poster.Image{
			Thumbnail: strings.TrimSpace(rec[5]),
			Full:      strings.TrimSpace(rec[6]),
		},
		Sizes:  sizes,
		Active: true,
	}, ""
}
