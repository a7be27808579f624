package runner

import (
	"bufio"
	"context"
	"io"
	"sync"
)

// lineReader reads lines on a background goroutine, so a read abandoned on
// cancellation does not swallow the line typed after it.
type lineReader struct {
	src   *bufio.Reader
	once  sync.Once
	lines chan lineResult
}

type lineResult struct {
	text string
	err  error
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{src: bufio.NewReader(r)}
}

// Next returns the next raw line, including its terminator. A final line
// without one is still returned before io.EOF.
func (l *lineReader) Next(ctx context.Context) (string, error) {
	l.once.Do(func() {
		l.lines = make(chan lineResult)
		go l.pump()
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-l.lines:
		if !ok {
			return "", io.EOF
		}
		return res.text, res.err
	}
}

func (l *lineReader) pump() {
	defer close(l.lines)
	for {
		text, err := l.src.ReadString('\n')
		if text != "" {
			l.lines <- lineResult{text: text}
		}
		if err != nil {
			if err != io.EOF {
				l.lines <- lineResult{err: err}
			}
			return
		}
	}
}
