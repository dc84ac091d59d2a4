package file

import (
	"bufio"
	"bytes"
	"context"
	"io"

	"recordpipe/internal/datasource"
)

// CountLines returns the number of non-blank lines in src. A final line
// without a trailing newline is counted. Lines holding only "\r" count as
// blank.
func CountLines(ctx context.Context, src datasource.Source) (int64, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return 0, err
	}
	defer rc.Close()

	r := bufio.NewReaderSize(rc, 1<<20)
	var n int64
	var carry []byte
	for {
		chunk, err := r.ReadSlice('\n')
		if err == bufio.ErrBufferFull {
			carry = append(carry, chunk...)
			continue
		}
		line := chunk
		if len(carry) > 0 {
			line = append(carry, chunk...)
			carry = carry[:0]
		}
		if len(bytes.TrimRight(line, "\r\n")) > 0 {
			n++
		}
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
	}
}
