package voice

import (
	"bufio"
	"context"
	"io"
	"sync"
)

// readerRecognizer treats each line of a stream as one spoken utterance. It backs the
// "stdin" voice backend, where the operator types commands in the terminal.
type readerRecognizer struct {
	r     io.Reader
	once  sync.Once
	lines chan string
	err   error
}

// NewReaderRecognizer creates a Recognizer reading one transcript per line from r.
// A single goroutine owns r; a line typed while no session listens waits for the next session.
//
// Parameters:
//   - r: the line source, usually os.Stdin
//
// Returns:
//   - Recognizer: the recognizer
func NewReaderRecognizer(r io.Reader) Recognizer {
	return &readerRecognizer{r: r, lines: make(chan string)}
}

func (rr *readerRecognizer) Supported() bool {
	return rr.r != nil
}

func (rr *readerRecognizer) pump() {
	sc := bufio.NewScanner(rr.r)
	for sc.Scan() {
		rr.lines <- sc.Text()
	}
	if err := sc.Err(); err != nil {
		rr.err = err
	} else {
		rr.err = io.EOF
	}
	close(rr.lines)
}

func (rr *readerRecognizer) Recognize(ctx context.Context) (string, error) {
	rr.once.Do(func() { go rr.pump() })
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-rr.lines:
		if !ok {
			return "", rr.err
		}
		return line, nil
	}
}
