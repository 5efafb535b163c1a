package fileio

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"commission-service/internal/commission/model"
)

// csvDecoder: UTF-8 (с BOM или без) или турецкие однобайтовые кодировки.
// BOM всегда побеждает определение по содержимому.
func csvDecoder(b []byte) encoding.Encoding {
	if utf8.Valid(b) {
		return unicode.UTF8
	}
	peek := b
	if len(peek) > 4096 {
		peek = peek[:4096]
	}
	if det, err := chardet.NewTextDetector().DetectBest(peek); err == nil && det != nil {
		if strings.EqualFold(det.Charset, "ISO-8859-9") {
			return charmap.ISO8859_9
		}
	}
	// выгрузки из турецкого Excel чаще всего cp1254
	return charmap.Windows1254
}

// sniffDelimiter угадывает ';', таб или ',' по первой строке.
func sniffDelimiter(b []byte) rune {
	line := b
	if i := bytes.IndexByte(b, '\n'); i >= 0 {
		line = b[:i]
	}
	if bytes.Count(line, []byte{';'}) > bytes.Count(line, []byte{','}) {
		return ';'
	}
	if bytes.Count(line, []byte{'\t'}) > bytes.Count(line, []byte{','}) {
		return '\t'
	}
	return ','
}

// readCSV reads CSV with headerRow (1-based), auto-detecting encoding and converting to UTF-8.
func readCSV(r io.Reader, headerRow int) (model.Table, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return model.Table{}, err
	}
	dec := transform.NewReader(bytes.NewReader(b), unicode.BOMOverride(csvDecoder(b).NewDecoder()))
	utf, err := io.ReadAll(dec)
	if err != nil {
		return model.Table{}, err
	}

	cr := csv.NewReader(bytes.NewReader(utf))
	cr.Comma = sniffDelimiter(utf)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var rows [][]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return model.Table{}, err
		}
		rows = append(rows, rec)
	}
	return rowsToTable(rows, headerRow, textCell), nil
}
