package eval

// LBufSize is the default output limit, matching TinyMUSH's LBUF_SIZE.
const LBufSize = 8000

// Buffer is the evaluator's output buffer. It grows on demand up to a hard
// limit; anything written past the limit is dropped without error.
type Buffer struct {
	b     []byte
	limit int
}

// NewBuffer returns an empty buffer holding at most limit bytes.
// A non-positive limit selects LBufSize.
func NewBuffer(limit int) *Buffer {
	if limit <= 0 {
		limit = LBufSize
	}
	return &Buffer{b: make([]byte, 0, min(limit, 256)), limit: limit}
}

// Limit returns the hard capacity of the buffer.
func (b *Buffer) Limit() int { return b.limit }

// Len returns the number of bytes written.
func (b *Buffer) Len() int { return len(b.b) }

// Remaining returns how many more bytes fit.
func (b *Buffer) Remaining() int { return b.limit - len(b.b) }

// Full reports whether further writes will be dropped.
func (b *Buffer) Full() bool { return len(b.b) >= b.limit }

// WriteString appends s, truncating at the limit. It never fails; the
// error return exists so Buffer satisfies io.StringWriter.
func (b *Buffer) WriteString(s string) (int, error) {
	n := len(s)
	if r := b.Remaining(); n > r {
		n = r
	}
	if n <= 0 {
		return 0, nil
	}
	b.b = append(b.b, s[:n]...)
	return n, nil
}

// Write appends p, truncating at the limit.
func (b *Buffer) Write(p []byte) (int, error) {
	n := len(p)
	if r := b.Remaining(); n > r {
		n = r
	}
	if n <= 0 {
		return 0, nil
	}
	b.b = append(b.b, p[:n]...)
	return n, nil
}

// WriteByte appends c unless the buffer is full.
func (b *Buffer) WriteByte(c byte) error {
	if len(b.b) < b.limit {
		b.b = append(b.b, c)
	}
	return nil
}

// Truncate discards everything after the first n bytes.
func (b *Buffer) Truncate(n int) {
	if n < 0 {
		n = 0
	}
	if n < len(b.b) {
		b.b = b.b[:n]
	}
}

// Since returns the text written at or after offset start.
func (b *Buffer) Since(start int) string {
	if start >= len(b.b) {
		return ""
	}
	return string(b.b[start:])
}

// LastByte returns the final byte written, or 0 if the buffer is empty.
func (b *Buffer) LastByte() byte {
	if len(b.b) == 0 {
		return 0
	}
	return b.b[len(b.b)-1]
}

// HasSuffix reports whether the buffer currently ends with s.
func (b *Buffer) HasSuffix(s string) bool {
	if len(s) > len(b.b) {
		return false
	}
	return string(b.b[len(b.b)-len(s):]) == s
}

// UpperAt upper-cases the ASCII letter at offset i, if any.
func (b *Buffer) UpperAt(i int) {
	if i >= 0 && i < len(b.b) {
		if c := b.b[i]; c >= 'a' && c <= 'z' {
			b.b[i] = c - 'a' + 'A'
		}
	}
}

// Reset empties the buffer, keeping its limit.
func (b *Buffer) Reset() { b.b = b.b[:0] }

// String returns the buffer contents.
func (b *Buffer) String() string { return string(b.b) }
