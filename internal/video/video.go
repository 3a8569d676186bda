package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultFrameRate = 10
	DefaultBinary    = "ffmpeg"
	DefaultQuality   = 2
	Extension        = ".mp4"
)

// ErrEncoding indicates the external encoder failed.
var ErrEncoding = errors.New("video: encoding failed")

// EncodingError carries the encoder failure and whatever it printed.
type EncodingError struct {
	Output string
	Err    error
}

func (e *EncodingError) Error() string {
	msg := fmt.Sprintf("video: encoding %s failed: %v", e.Output, e.Err)
	return msg
}

func (e *EncodingError) Unwrap() error { return e.Err }

func (e *EncodingError) Is(target error) bool { return target == ErrEncoding }

// Encoder stitches an ordered image sequence into a video.
type Encoder interface {
	Encode(ctx context.Context, frameRate int, pattern, outputPath string) error
}

// FFmpeg encodes by running the ffmpeg binary.
type FFmpeg struct {
	Binary  string
	Quality int
	Stdout  io.Writer
	Stderr  io.Writer
}

func NewFFmpeg() *FFmpeg {
	return &FFmpeg{Binary: DefaultBinary, Quality: DefaultQuality}
}

// Args returns the encoder's command line, binary excluded.
func (f *FFmpeg) Args(frameRate int, pattern, outputPath string) []string {
	q := f.Quality
	if q <= 0 {
		q = DefaultQuality
	}
	return []string{
		"-y",
		"-r", strconv.Itoa(frameRate),
		"-qscale", strconv.Itoa(q),
		"-i", pattern,
		outputPath,
	}
}

func (f *FFmpeg) Encode(ctx context.Context, frameRate int, pattern, outputPath string) error {
	bin := f.Binary
	if bin == "" {
		bin = DefaultBinary
	}

	cmd := exec.CommandContext(ctx, bin, f.Args(frameRate, pattern, outputPath)...)
	var stderr bytes.Buffer
	cmd.Stdout = f.Stdout
	cmd.Stderr = &stderr
	if f.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, f.Stderr)
	}

	if err := cmd.Run(); err != nil {
		if tail := lastLine(stderr.String()); tail != "" {
			return fmt.Errorf("%w: %s", err, tail)
		}
		return err
	}
	return nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// OutputPath is where Assemble writes the video for title.
func OutputPath(dir, title string) string {
	return filepath.Join(dir, title+Extension)
}

// Assemble encodes the frames matching pattern into <dir>/<title>.mp4 and
// returns the path written. Encoder failures come back as *EncodingError.
func Assemble(ctx context.Context, enc Encoder, frameRate int, pattern, dir, title string) (string, error) {
	out := OutputPath(dir, title)
	if frameRate <= 0 {
		return "", &EncodingError{Output: out, Err: fmt.Errorf("frame rate must be positive, got %d", frameRate)}
	}
	if title == "" {
		return "", &EncodingError{Output: out, Err: errors.New("empty title")}
	}
	if err := enc.Encode(ctx, frameRate, pattern, out); err != nil {
		return "", &EncodingError{Output: out, Err: err}
	}
	return out, nil
}
