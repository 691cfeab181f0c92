// Package export renders the movement ledger as CSV.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/erazemk/ladak/internal/model"
)

// Header is the column order of the export.
var Header = []string{"date", "partner", "direction", "crateType", "qty", "note", "driver"}

// Charsets accepted by Write.
const (
	CharsetUTF8        = "utf-8"
	CharsetUTF8BOM     = "utf-8-bom"
	CharsetWindows1250 = "windows-1250"
	CharsetISO88592    = "iso-8859-2"
)

// Rows flattens movements into export rows. Unknown partners and crate types
// fall back to their raw id.
func Rows(partners []model.Partner, crateTypes []model.CrateType, movements []model.Movement) [][]string {
	pMap := model.PartnersByID(partners)
	cMap := model.CrateTypesByID(crateTypes)

	rows := make([][]string, 0, len(movements))
	for _, m := range movements {
		partner := m.PartnerID
		if p, ok := pMap[m.PartnerID]; ok && p.Name != "" {
			partner = p.Name
		}
		crateType := m.CrateTypeID
		if c, ok := cMap[m.CrateTypeID]; ok && c.Label != "" {
			crateType = c.Label
		}
		rows = append(rows, []string{
			m.Date,
			partner,
			string(m.Direction),
			crateType,
			formatQty(m.Qty),
			m.Note,
			m.DriverName,
		})
	}
	return rows
}

func formatQty(q float64) string {
	return strconv.FormatFloat(q, 'f', -1, 64)
}

// Escape quotes a single field, doubling embedded quotes.
func Escape(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// CSV renders movements with a header row. Every field is quoted and rows
// are separated by "\n". With no movements the result is empty.
func CSV(partners []model.Partner, crateTypes []model.CrateType, movements []model.Movement) string {
	rows := Rows(partners, crateTypes, movements)
	if len(rows) == 0 {
		return ""
	}

	var b strings.Builder
	writeLine(&b, Header)
	for _, r := range rows {
		b.WriteByte('\n')
		writeLine(&b, r)
	}
	return b.String()
}

func writeLine(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(Escape(f))
	}
}

// ErrUnrepresentable is returned when the export contains a character the
// target charset has no encoding for.
var ErrUnrepresentable = errors.New("character not representable in charset")

// Encode renders the export in the given charset. Nothing is returned
// unless the whole export encodes.
func Encode(charset string, partners []model.Partner, crateTypes []model.CrateType, movements []model.Movement) ([]byte, error) {
	out := CSV(partners, crateTypes, movements)

	switch normalizeCharset(charset) {
	case CharsetUTF8:
		return []byte(out), nil
	case CharsetUTF8BOM:
		return []byte("\ufeff" + out), nil
	case CharsetWindows1250:
		return encode(charmap.Windows1250, charset, out)
	case CharsetISO88592:
		return encode(charmap.ISO8859_2, charset, out)
	default:
		return nil, fmt.Errorf("unsupported charset %q", charset)
	}
}

// Write encodes the export and writes it to w. On an encoding failure
// nothing is written.
func Write(w io.Writer, charset string, partners []model.Partner, crateTypes []model.CrateType, movements []model.Movement) error {
	data, err := Encode(charset, partners, crateTypes, movements)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func encode(enc encoding.Encoding, charset, s string) ([]byte, error) {
	var buf bytes.Buffer
	tw := transform.NewWriter(&buf, enc.NewEncoder())
	if _, err := io.WriteString(tw, s); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrUnrepresentable, charset, err)
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrUnrepresentable, charset, err)
	}
	return buf.Bytes(), nil
}

func normalizeCharset(charset string) string {
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", "utf8", CharsetUTF8:
		return CharsetUTF8
	case "utf8-bom", CharsetUTF8BOM:
		return CharsetUTF8BOM
	case "cp1250", CharsetWindows1250:
		return CharsetWindows1250
	case "latin2", CharsetISO88592:
		return CharsetISO88592
	default:
		return charset
	}
}

// SupportedCharset reports whether Write accepts charset.
func SupportedCharset(charset string) bool {
	switch normalizeCharset(charset) {
	case CharsetUTF8, CharsetUTF8BOM, CharsetWindows1250, CharsetISO88592:
		return true
	}
	return false
}

// ContentType returns the HTTP content type for charset.
func ContentType(charset string) string {
	switch normalizeCharset(charset) {
	case CharsetWindows1250:
		return "text/csv; charset=windows-1250"
	case CharsetISO88592:
		return "text/csv; charset=iso-8859-2"
	default:
		return "text/csv; charset=utf-8"
	}
}

// Filename returns the download name for an export taken on day.
func Filename(day time.Time) string {
	return "ladanyilvantarto_export_" + day.Format(model.DateLayout) + ".csv"
}
