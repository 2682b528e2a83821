// Package audio loads, edits, and assembles narration audio.
package audio

import (
	"fmt"
	"os"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
)

// Load decodes the audio file at path into a memory buffer.
// WAV and MP3 are supported.
func Load(path string) (*beep.Buffer, error) {
	streamer, format, err := decode(path)
	if err != nil {
		return nil, err
	}
	defer streamer.Close()

	buf := beep.NewBuffer(format)
	buf.Append(streamer)
	return buf, nil
}

// DurationMs returns the buffer length in milliseconds.
func DurationMs(buf *beep.Buffer) int {
	sr := buf.Format().SampleRate
	if sr == 0 {
		return 0
	}
	return int(sr.D(buf.Len()).Milliseconds())
}

// ExportWAV writes the buffer to a .wav file.
func ExportWAV(buf *beep.Buffer, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create wav file: %w", err)
	}

	if err := wav.Encode(f, buf.Streamer(0, buf.Len()), buf.Format()); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode wav: %w", err)
	}
	return f.Close()
}

func decode(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to open audio file: %w", err)
	}

	if strings.HasSuffix(strings.ToLower(path), ".mp3") {
		streamer, format, err := mp3.Decode(f)
		if err != nil {
			f.Close()
			return nil, beep.Format{}, fmt.Errorf("failed to decode mp3: %w", err)
		}
		return streamer, format, nil
	}

	streamer, format, err := wav.Decode(f)
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("failed to decode wav: %w", err)
	}
	return streamer, format, nil
}
