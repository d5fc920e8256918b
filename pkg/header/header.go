// Package header implements the FITS-subset header store: a flat,
// 2880-byte-aligned buffer of fixed-width 80-character records, kept as a
// contiguous byte slice rather than a parsed map so that unknown
// keywords round-trip untouched. Every Get/Put/Del operation re-scans
// the buffer; callers doing many lookups on a hot path should cache the
// values they need rather than repeatedly calling Get*.
package header

import (
	"math"
	"strconv"
	"strings"

	"cubefind/pkg/cubeerr"
)

const (
	// LineSize is the width in bytes of one FITS header record.
	LineSize = 80
	// KeySize is the width in bytes of the keyword field (including the
	// optional "= " value-indicator at bytes 8-9).
	KeySize = 10
	// ValueSize is the width in bytes of the value field that follows KeySize.
	ValueSize = LineSize - KeySize
	// LinesPerBlock is the number of 80-byte records in one 2880-byte block.
	LinesPerBlock = 36
	// BlockSize is the size in bytes of one header block.
	BlockSize = LinesPerBlock * LineSize
	// FixedWidth is the width of the right-justified numeric/boolean value.
	FixedWidth = 20
)

// Header is a FITS-subset header: a flat byte buffer of whole
// 2880-byte blocks, terminated by an END record.
type Header struct {
	buf []byte
}

// New returns a minimal valid header containing SIMPLE, BITPIX, NAXIS and
// END, padded to one block.
func New() *Header {
	h := &Header{buf: make([]byte, BlockSize)}
	for i := range h.buf {
		h.buf[i] = ' '
	}
	h.writeLine(0, "SIMPLE", rightJustifyBool(true))
	h.writeLine(1, "BITPIX", rightJustifyInt(8))
	h.writeLine(2, "NAXIS", rightJustifyInt(0))
	copy(h.buf[3*LineSize:3*LineSize+3], "END")
	return h
}

// FromBytes wraps an existing byte buffer (already block-aligned and
// END-terminated) as a Header, taking ownership of buf.
func FromBytes(buf []byte) *Header {
	return &Header{buf: buf}
}

// Bytes returns the header's raw byte buffer.
func (h *Header) Bytes() []byte { return h.buf }

// Size returns the current size of the header buffer in bytes, always a
// multiple of BlockSize.
func (h *Header) Size() int { return len(h.buf) }

// Check returns the 1-based line number of the first record whose keyword
// matches key, or 0 if none is found. A match requires the byte
// immediately following the keyword to be a space or '=', and ignores
// any line whose byte at offset KeySize-2 (column 9, 0-based 8) is
// neither space nor '='.
func (h *Header) Check(key string) int {
	key = strings.TrimRight(key, " ")
	if key == "" {
		return 0
	}
	n := len(h.buf) / LineSize
	for line := 0; line < n; line++ {
		rec := h.buf[line*LineSize : (line+1)*LineSize]
		sep := rec[8]
		if sep != ' ' && sep != '=' {
			continue
		}
		kw := strings.TrimRight(string(rec[:8]), " ")
		if kw == key {
			return line + 1
		}
	}
	return 0
}

func (h *Header) rawValue(key string) (string, bool) {
	line := h.Check(key)
	if line == 0 {
		return "", false
	}
	rec := h.buf[(line-1)*LineSize : line*LineSize]
	return string(rec[KeySize:]), true
}

// GetInt returns the integer value of key, or 0 if key is missing.
func (h *Header) GetInt(key string) int64 {
	raw, ok := h.rawValue(key)
	if !ok {
		return 0
	}
	v, _ := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	return v
}

// GetFloat returns the float value of key, or NaN if key is missing.
func (h *Header) GetFloat(key string) float64 {
	raw, ok := h.rawValue(key)
	if !ok {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// GetBool returns the boolean value of key, or false if key is missing.
// Preserving the reference's lenient parse: scanning left to right, the
// first non-space byte in the value field is treated as the indicator,
// and any such byte other than exactly 'F' is treated as true (spec.md
// §9(iii)) — so "T", garbage, or a stray non-space character all read as
// true, and only an explicit 'F' or an all-space field reads as false.
func (h *Header) GetBool(key string) bool {
	raw, ok := h.rawValue(key)
	if !ok {
		return false
	}
	for i := 0; i < len(raw); i++ {
		if raw[i] == ' ' {
			continue
		}
		return raw[i] != 'F'
	}
	return false
}

// GetString returns the string value of key with surrounding quotes
// removed and doubled single quotes collapsed to one. Returns
// cubeerr.ErrKeyMissing if key is absent, and cubeerr.ErrFormat if the
// value is not a quoted string or its quotes are unbalanced.
func (h *Header) GetString(key string) (string, error) {
	raw, ok := h.rawValue(key)
	if !ok {
		return "", cubeerr.Wrapf(cubeerr.ErrKeyMissing, "header keyword %q not found", key)
	}
	left := strings.IndexByte(raw, '\'')
	if left < 0 {
		return "", cubeerr.Wrapf(cubeerr.ErrFormat, "header keyword %q is not a quoted string", key)
	}
	right := left + 1
	var sb strings.Builder
	for right < len(raw) {
		idx := strings.IndexByte(raw[right:], '\'')
		if idx < 0 {
			return "", cubeerr.Wrapf(cubeerr.ErrFormat, "unbalanced quotes in header keyword %q", key)
		}
		idx += right
		sb.WriteString(raw[right:idx])
		if idx+1 < len(raw) && raw[idx+1] == '\'' {
			sb.WriteByte('\'')
			right = idx + 2
			continue
		}
		return sb.String(), nil
	}
	return "", cubeerr.Wrapf(cubeerr.ErrFormat, "unbalanced quotes in header keyword %q", key)
}

// PutInt writes value under key, returning true if a new record was
// inserted (as opposed to an existing one being overwritten).
func (h *Header) PutInt(key string, value int64) bool {
	return h.put(key, rightJustifyInt(value))
}

// PutFloat writes value under key in %20.11E form, returning true if a
// new record was inserted.
func (h *Header) PutFloat(key string, value float64) bool {
	return h.put(key, rightJustifyFloat(value))
}

// PutBool writes value under key, returning true if a new record was
// inserted.
func (h *Header) PutBool(key string, value bool) bool {
	return h.put(key, rightJustifyBool(value))
}

// PutString writes value (quoted, with embedded quotes doubled) under
// key, returning true if a new record was inserted. Fails with
// cubeerr.ErrUserInput if the quoted content would exceed the value
// field.
func (h *Header) PutString(key, value string) (bool, error) {
	quoted := "'" + strings.ReplaceAll(value, "'", "''") + "'"
	if len(quoted) > ValueSize {
		return false, cubeerr.Wrapf(cubeerr.ErrUserInput, "string value for %q too long for header field", key)
	}
	field := make([]byte, ValueSize)
	for i := range field {
		field[i] = ' '
	}
	copy(field[0:], quoted)
	return h.put(key, string(field)), nil
}

func (h *Header) put(key, valueField string) bool {
	line := h.Check(key)
	if line > 0 {
		h.writeLine(line-1, key, valueField)
		return false
	}
	end := h.Check("END")
	if end == 0 {
		// Defensive: a well-formed header always carries END.
		end = len(h.buf) / LineSize
	}
	if end%LinesPerBlock == 0 {
		h.growByOneBlock()
	}
	h.writeLine(end-1, key, valueField)
	copy(h.buf[end*LineSize:end*LineSize+3], "END")
	return true
}

func (h *Header) growByOneBlock() {
	old := len(h.buf)
	grown := make([]byte, old+BlockSize)
	copy(grown, h.buf)
	for i := old; i < len(grown); i++ {
		grown[i] = ' '
	}
	h.buf = grown
}

// Del removes every occurrence of key, shifting subsequent records up
// and space-filling the vacated tail. Afterwards, every whole block of
// blank records following END is dropped. Returns true if key was found
// and removed.
func (h *Header) Del(key string) bool {
	line := h.Check(key)
	if line == 0 {
		return false
	}
	found := false
	for line > 0 {
		found = true
		start := (line - 1) * LineSize
		copy(h.buf[start:], h.buf[line*LineSize:])
		for i := len(h.buf) - LineSize; i < len(h.buf); i++ {
			h.buf[i] = ' '
		}
		line = h.Check(key)
	}

	endLine := h.Check("END")
	if endLine == 0 {
		return found
	}
	lastLine := len(h.buf) / LineSize
	emptyBlocks := (lastLine - endLine) / LinesPerBlock
	if emptyBlocks > 0 {
		h.buf = h.buf[:len(h.buf)-emptyBlocks*BlockSize]
	}
	return found
}

func (h *Header) writeLine(lineIdx int, key, valueField string) {
	start := lineIdx * LineSize
	rec := h.buf[start : start+LineSize]
	for i := range rec {
		rec[i] = ' '
	}
	copy(rec[:8], key)
	rec[8] = '='
	rec[9] = ' '
	copy(rec[KeySize:], valueField)
}

func rightJustifyInt(v int64) string {
	s := strconv.FormatInt(v, 10)
	return padLeft(s, FixedWidth)
}

func rightJustifyFloat(v float64) string {
	s := strconv.FormatFloat(v, 'E', 11, 64)
	// Go emits "E+01"-style exponents with at least two digits already,
	// matching FITS's %20.11E convention closely enough for round-tripping.
	return padLeft(s, FixedWidth)
}

func rightJustifyBool(v bool) string {
	field := make([]byte, ValueSize)
	for i := range field {
		field[i] = ' '
	}
	if v {
		field[FixedWidth-1] = 'T'
	} else {
		field[FixedWidth-1] = 'F'
	}
	return string(field)
}

func padLeft(s string, width int) string {
	field := make([]byte, ValueSize)
	for i := range field {
		field[i] = ' '
	}
	if len(s) > width {
		s = s[len(s)-width:]
	}
	copy(field[width-len(s):width], s)
	return string(field)
}
