package audio

import (
	"fmt"
	"time"

	"github.com/gopxl/beep/v2"

	"docvoice/pkg/model"
	"docvoice/pkg/splice"
)

// Cut returns a copy of buf with the given intervals removed. Intervals
// must be sorted; see splice.SortIntervals.
func Cut(buf *beep.Buffer, intervals []model.RemovalInterval) *beep.Buffer {
	format := buf.Format()
	sr := format.SampleRate
	out := beep.NewBuffer(format)

	_ = splice.Splice(DurationMs(buf), intervals, func(startMs, endMs int) error {
		from := sr.N(time.Duration(startMs) * time.Millisecond)
		to := sr.N(time.Duration(endMs) * time.Millisecond)
		if to > buf.Len() {
			to = buf.Len()
		}
		if from >= to {
			return nil
		}
		out.Append(buf.Streamer(from, to))
		return nil
	})

	return out
}

// Concat decodes the given files and appends them into one buffer,
// inserting pauseMs of silence between consecutive files. All files are
// resampled to the first file's sample rate.
func Concat(paths []string, pauseMs int) (*beep.Buffer, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no audio files to concatenate")
	}

	var out *beep.Buffer
	for i, p := range paths {
		streamer, format, err := decode(p)
		if err != nil {
			return nil, fmt.Errorf("concat %s: %w", p, err)
		}

		if out == nil {
			out = beep.NewBuffer(format)
		}

		if i > 0 && pauseMs > 0 {
			out.Append(beep.Silence(out.Format().SampleRate.N(time.Duration(pauseMs) * time.Millisecond)))
		}

		if format.SampleRate != out.Format().SampleRate {
			out.Append(beep.Resample(3, format.SampleRate, out.Format().SampleRate, streamer))
		} else {
			out.Append(streamer)
		}
		streamer.Close()
	}

	return out, nil
}
