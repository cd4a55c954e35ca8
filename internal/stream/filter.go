package stream

import (
	"io"

	"github.com/danmuck/meatpack/internal/protocol"
)

type commentFilter struct {
	r         io.Reader
	inComment bool
}

// NewCommentFilter returns a reader that drops ';' through end of line from
// r. Newlines are kept.
func NewCommentFilter(r io.Reader) io.Reader {
	return &commentFilter{r: r}
}

func (f *commentFilter) Read(p []byte) (int, error) {
	for {
		n, err := f.r.Read(p)
		kept := 0
		for _, c := range p[:n] {
			switch {
			case c == protocol.Linefeed:
				f.inComment = false
			case c == protocol.CommentStart:
				f.inComment = true
			}
			if f.inComment {
				continue
			}
			p[kept] = c
			kept++
		}
		// a chunk that was all comment must not look like EOF
		if kept > 0 || err != nil || n == 0 {
			return kept, err
		}
	}
}
