package journal

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/yanun0323/errors"

	"main/internal/feed"
	"main/internal/schema"
)

// Reader decodes journal records sequentially.
type Reader struct {
	dec *json.Decoder
}

// NewReader wraps an io.Reader with journal decoding.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: json.NewDecoder(bufio.NewReader(r))}
}

// Next returns the next record, or io.EOF when the journal is exhausted.
func (r *Reader) Next() (schema.Record, error) {
	var rec schema.Record
	if err := r.dec.Decode(&rec); err != nil {
		if err == io.EOF {
			return rec, io.EOF
		}
		return rec, errors.Wrap(err, "decode journal record")
	}
	return rec, nil
}

// ReadBars loads the market records of a journal file as replayable bars.
// Non-market records are skipped.
func ReadBars(path string) ([]feed.Bar, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open journal file")
	}
	defer file.Close()

	var bars []feed.Bar
	reader := NewReader(file)
	for {
		rec, err := reader.Next()
		if err == io.EOF {
			return bars, nil
		}
		if err != nil {
			return nil, err
		}
		if rec.Market == nil {
			continue
		}
		bars = append(bars, feed.Bar{
			Time:   time.UnixMilli(rec.TsMs).UTC(),
			Open:   rec.Market.Open,
			High:   rec.Market.High,
			Low:    rec.Market.Low,
			Close:  rec.Market.Close,
			Volume: rec.Market.Volume,
		})
	}
}
