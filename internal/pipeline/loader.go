package pipeline

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dvloznov/nutrition-ranker/internal/domain"
	"github.com/dvloznov/nutrition-ranker/internal/logger"
)

// Load reads a dataset from r. The first line is the header and is skipped
// without validation. Lines the parser rejects are counted and dropped; only
// a failure of the reader itself is returned as an error.
func Load(ctx context.Context, r io.Reader) (*Dataset, error) {
	log := logger.FromContext(ctx)

	br := bufio.NewReaderSize(r, 64*1024)
	ds := &Dataset{Records: make([]domain.Record, 0)}

	if _, _, err := readLine(br); err != nil {
		if errors.Is(err, io.EOF) {
			ds.Empty = true
			log.Warn().Msg("Dataset source is empty")
			return ds, nil
		}
		return nil, fmt.Errorf("Load: reading header: %w", err)
	}

	lineNo := 1
	for {
		line, tooLong, err := readLine(br)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("Load: reading line %d: %w", lineNo+1, err)
		}
		lineNo++
		ds.Lines++

		var rec domain.Record
		if tooLong {
			err = fmt.Errorf("Load: %w: more than %d bytes", ErrLineTooLong, MaxLineBytes)
		} else {
			rec, err = ParseLine(string(line))
		}
		if err != nil {
			ds.Rejected++
			if len(ds.Rejections) < MaxRejectionDetails {
				ds.Rejections = append(ds.Rejections, Rejection{Line: lineNo, Reason: err.Error()})
			}
			log.Debug().Err(err).Int("line", lineNo).Msg("Skipping line")
			continue
		}
		ds.Records = append(ds.Records, rec)
	}

	log.Info().
		Int("loaded", ds.Loaded()).
		Int("rejected", ds.Rejected).
		Msg("Dataset loaded")

	return ds, nil
}

// readLine returns the next line without its newline. A line longer than
// MaxLineBytes is consumed to its end and returned empty with tooLong set.
// io.EOF is returned only when no bytes remain.
func readLine(br *bufio.Reader) (line []byte, tooLong bool, err error) {
	read := false
	for {
		chunk, rerr := br.ReadSlice('\n')
		if len(chunk) > 0 {
			read = true
		}
		if !tooLong {
			n := len(line) + len(bytes.TrimSuffix(chunk, []byte("\n")))
			if n > MaxLineBytes {
				tooLong = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}

		switch {
		case rerr == nil:
			return bytes.TrimSuffix(line, []byte("\n")), tooLong, nil
		case errors.Is(rerr, bufio.ErrBufferFull):
			continue
		case errors.Is(rerr, io.EOF) && read:
			return line, tooLong, nil
		default:
			return nil, false, rerr
		}
	}
}
