package table

import (
	"encoding/csv"
	"fmt"
	"io"
	"path"
	"strings"
)

// DelimiterFor picks the field delimiter from a file name suffix: tab for
// .tsv, comma otherwise.
func DelimiterFor(name string) rune {
	if strings.EqualFold(path.Ext(name), ".tsv") {
		return '\t'
	}
	return ','
}

// ReadDelimited parses delimited text with a header line into a Table.
func ReadDelimited(r io.Reader, comma rune) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("table: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("table: read header: %w", err)
	}
	t := New(header)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("table: read row %d: %w", t.Len()+2, err)
		}
		if err := t.Append(rec); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// WriteDelimited renders the table as delimited text including the header.
func WriteDelimited(w io.Writer, t *Table, comma rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma
	if err := cw.Write(t.columns); err != nil {
		return fmt.Errorf("table: write header: %w", err)
	}
	for _, row := range t.rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("table: write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
