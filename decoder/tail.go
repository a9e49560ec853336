package decoder

// maxStderrBytes caps the stderr kept from one decoder run.
const maxStderrBytes = 64 << 10

// tailBuffer is an io.Writer that keeps only the last limit bytes written.
type tailBuffer struct {
	limit int
	buf   []byte
}

func newTailBuffer(limit int) *tailBuffer {
	return &tailBuffer{limit: limit}
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	n := len(p)
	if n >= t.limit {
		t.buf = append(t.buf[:0], p[n-t.limit:]...)
		return n, nil
	}
	t.buf = append(t.buf, p...)
	if over := len(t.buf) - t.limit; over > 0 {
		copy(t.buf, t.buf[over:])
		t.buf = t.buf[:t.limit]
	}
	return n, nil
}

// String returns the kept tail.
func (t *tailBuffer) String() string {
	return string(t.buf)
}
