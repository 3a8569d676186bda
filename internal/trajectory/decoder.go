package trajectory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// Table layout shared with the integrator that writes the file.
const (
	HeaderRow   = 0
	MetadataRow = 1

	// DataRowOffset is the index of the first data row. The producer writes
	// its per-record column names (x,y,z,t,Ek,Ep) on row 2; the decoder skips
	// every row below the offset without interpreting it.
	DataRowOffset = 3

	minMetadataFields = 5
	recordFields      = 6

	// Metadata is untrusted until the rows arrive, so allocation hints
	// taken from it are capped.
	maxFrameHint  = 1024
	maxRecordHint = 4096
)

// Decoder streams frames out of a trajectory table.
type Decoder struct {
	r    *csv.Reader
	meta Metadata
	row  int
	next int
	err  error
}

// NewDecoder consumes the rows above DataRowOffset and decodes the metadata.
func NewDecoder(r io.Reader) (*Decoder, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	d := &Decoder{r: cr}

	var metaRow []string
	for d.row < DataRowOffset {
		rec, err := d.read()
		if err == io.EOF {
			return nil, malformed(d.row, -1, "table ends before data offset %d", DataRowOffset)
		}
		if err != nil {
			return nil, err
		}
		if d.row-1 == MetadataRow {
			metaRow = rec
		}
	}

	meta, err := parseMetadata(metaRow)
	if err != nil {
		return nil, err
	}
	d.meta = meta
	return d, nil
}

func (d *Decoder) Metadata() Metadata { return d.meta }

// Next returns the next frame in table order, or io.EOF once
// Metadata().FrameCount() frames have been returned. Rows past the last
// complete frame are never read.
func (d *Decoder) Next() (Frame, error) {
	if d.err != nil {
		return Frame{}, d.err
	}
	if d.next >= d.meta.FrameCount() {
		return Frame{}, io.EOF
	}

	want := d.meta.ParticleCount
	f := Frame{Index: d.next, Records: make([]Record, 0, min(want, maxRecordHint))}
	for len(f.Records) < want {
		rec, err := d.read()
		if err == io.EOF {
			d.err = &TruncatedError{Frame: d.next, Want: want, Got: len(f.Records)}
			return Frame{}, d.err
		}
		if err != nil {
			d.err = err
			return Frame{}, err
		}
		r, err := parseRecord(d.row-1, rec)
		if err != nil {
			d.err = err
			return Frame{}, err
		}
		f.Records = append(f.Records, r)
	}

	f.Time = f.Records[want-1].Time
	d.next++
	return f, nil
}

func (d *Decoder) read() ([]string, error) {
	rec, err := d.r.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		var perr *csv.ParseError
		if errors.As(err, &perr) {
			return nil, malformed(d.row, -1, "%v", perr.Err)
		}
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	d.row++
	return rec, nil
}

// Decode reads a complete trajectory.
func Decode(r io.Reader) (Metadata, []Frame, error) {
	d, err := NewDecoder(r)
	if err != nil {
		return Metadata{}, nil, err
	}

	frames := make([]Frame, 0, min(d.meta.FrameCount(), maxFrameHint))
	for {
		f, err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return d.meta, nil, err
		}
		frames = append(frames, f)
	}
	return d.meta, frames, nil
}

func DecodeFile(path string) (Metadata, []Frame, error) {
	file, err := os.Open(path)
	if err != nil {
		return Metadata{}, nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer file.Close()
	return Decode(file)
}

// ReadMetadata decodes only the metadata row of the file at path.
func ReadMetadata(path string) (Metadata, error) {
	file, err := os.Open(path)
	if err != nil {
		return Metadata{}, fmt.Errorf("%w: %w", ErrIO, err)
	}
	defer file.Close()

	d, err := NewDecoder(file)
	if err != nil {
		return Metadata{}, err
	}
	return d.meta, nil
}

func parseMetadata(rec []string) (Metadata, error) {
	fields := trimEmpty(rec)
	if len(fields) < minMetadataFields {
		return Metadata{}, malformed(MetadataRow, -1, "expected at least %d fields, got %d", minMetadataFields, len(fields))
	}

	var (
		m   Metadata
		err error
	)
	if m.ParticleCount, err = parseCount(fields, 0); err != nil {
		return Metadata{}, err
	}
	if m.Timestep, err = parseFloat(MetadataRow, fields, 1); err != nil {
		return Metadata{}, err
	}
	if m.StepCount, err = parseCount(fields, 2); err != nil {
		return Metadata{}, err
	}
	if m.Decimation, err = parseCount(fields, 3); err != nil {
		return Metadata{}, err
	}
	if m.HalfExtent, err = parseFloat(MetadataRow, fields, 4); err != nil {
		return Metadata{}, err
	}
	if len(fields) > 5 {
		if m.Softening, err = parseFloat(MetadataRow, fields, 5); err != nil {
			return Metadata{}, err
		}
	}

	if err := m.Validate(); err != nil {
		return Metadata{}, err
	}
	return m, nil
}

func parseRecord(row int, rec []string) (Record, error) {
	fields := trimEmpty(rec)
	if len(fields) < recordFields {
		return Record{}, malformed(row, -1, "expected %d fields, got %d", recordFields, len(fields))
	}

	var vals [recordFields]float64
	for i := range vals {
		v, err := parseFloat(row, fields, i)
		if err != nil {
			return Record{}, err
		}
		vals[i] = v
	}

	return Record{
		Position:  r3.Vec{X: vals[0], Y: vals[1], Z: vals[2]},
		Time:      vals[3],
		Kinetic:   vals[4],
		Potential: vals[5],
	}, nil
}

func parseFloat(row int, fields []string, i int) (float64, error) {
	s := strings.TrimSpace(fields[i])
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, malformed(row, i, "%q is not a number", s)
	}
	return v, nil
}

// parseCount accepts integral values written in either integer or float form.
func parseCount(fields []string, i int) (int, error) {
	v, err := parseFloat(MetadataRow, fields, i)
	if err != nil {
		return 0, err
	}
	if v != math.Trunc(v) || math.IsInf(v, 0) || v > math.MaxInt32 {
		return 0, malformed(MetadataRow, i, "%q is not a whole count", strings.TrimSpace(fields[i]))
	}
	return int(v), nil
}

// trimEmpty drops the empty cells left by trailing commas.
func trimEmpty(rec []string) []string {
	for len(rec) > 0 && strings.TrimSpace(rec[len(rec)-1]) == "" {
		rec = rec[:len(rec)-1]
	}
	return rec
}
