package article

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rubiojr/koho/pkg/log"
	"golang.org/x/text/encoding/unicode"
)

// DecodeText decodes raw bytes as UTF-8, dropping a leading byte order mark
// and replacing invalid sequences with U+FFFD.
func DecodeText(data []byte) (string, error) {
	out, err := unicode.UTF8BOM.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decoding utf-8: %w", err)
	}
	return string(out), nil
}

// ExtractField returns column field of the data record at the 1-based
// position row. The first line of text is the header; row 1 is the line
// after it. Missing rows or columns yield "".
func ExtractField(text string, row int, field string) string {
	if row < 1 {
		return ""
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if !errors.Is(err, io.EOF) {
			log.ForService("fetch").Warnf("reading csv header: %v", err)
		}
		return ""
	}

	col := -1
	for i, name := range header {
		if name == field {
			col = i
			break
		}
	}
	if col < 0 {
		return ""
	}

	for n := 1; ; n++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return ""
		}
		if err != nil {
			log.ForService("fetch").Warnf("reading csv record %d: %v", n, err)
			return ""
		}
		if n < row {
			continue
		}
		if col >= len(record) {
			return ""
		}
		return record[col]
	}
}
