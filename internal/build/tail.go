package build

import (
	"bufio"
	"io"
)

// MaxLineLength caps a single excerpt line. Longer lines are cut, not dropped.
const MaxLineLength = 64 * 1024

// Tail returns the last n lines of r in order. On a read error it returns the
// lines collected so far together with the error.
func Tail(r io.Reader, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	ring := make([]string, n)
	count := 0

	br := bufio.NewReaderSize(r, 64*1024)
	var line []byte
	var err error
	for {
		var frag []byte
		var isPrefix bool
		frag, isPrefix, err = br.ReadLine()
		if err != nil {
			break
		}
		if room := MaxLineLength - len(line); room > 0 {
			if len(frag) > room {
				frag = frag[:room]
			}
			line = append(line, frag...)
		}
		if isPrefix {
			continue
		}
		ring[count%n] = string(line)
		count++
		line = line[:0]
	}
	if err == io.EOF {
		err = nil
	}

	if count <= n {
		return append([]string(nil), ring[:count]...), err
	}
	start := count % n
	return append(append([]string(nil), ring[start:]...), ring[:start]...), err
}
