package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"path"
	"strings"

	"github.com/hupe1980/optics/blobstore"
	"github.com/hupe1980/optics/codec"
)

var (
	// ErrEmpty is returned for a dataset without points.
	ErrEmpty = errors.New("dataset: no points")
	// ErrDimensionMismatch is returned when vectors differ in length.
	ErrDimensionMismatch = errors.New("dataset: dimension mismatch")
	// ErrInvalidValue is returned for NaN or infinite components.
	ErrInvalidValue = errors.New("dataset: invalid value")
	// ErrDuplicateID is returned when two points share an id.
	ErrDuplicateID = errors.New("dataset: duplicate id")
)

// Format is a point-set layout.
type Format int

const (
	// FormatAuto detects the layout from the name or content.
	FormatAuto Format = iota
	// FormatCSV is a CSV table with a header row.
	FormatCSV
	// FormatJSON is a JSON array of points.
	FormatJSON
	// FormatJSONL is one JSON point per line.
	FormatJSONL
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatCSV:
		return "csv"
	case FormatJSON:
		return "json"
	case FormatJSONL:
		return "jsonl"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat parses a layout name.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "jsonl", "ndjson":
		return FormatJSONL, nil
	default:
		return FormatAuto, fmt.Errorf("dataset: unknown format %q", s)
	}
}

// FormatFromName guesses the layout from a file name, ignoring a
// compression suffix. It returns FormatAuto when the extension is unknown.
func FormatFromName(name string) Format {
	for _, c := range []Compression{CompressionGzip, CompressionZstd, CompressionLZ4} {
		name = strings.TrimSuffix(name, c.Ext())
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".csv":
		return FormatCSV
	case ".json":
		return FormatJSON
	case ".jsonl", ".ndjson":
		return FormatJSONL
	default:
		return FormatAuto
	}
}

// Point is one item to cluster.
type Point struct {
	ID     string    `json:"id"`
	Vector []float64 `json:"vector"`
}

// Dataset is a validated point set.
type Dataset struct {
	Name        string
	Format      Format
	Compression Compression
	Dim         int
	Points      []Point
}

// Len returns the number of points.
func (d *Dataset) Len() int { return len(d.Points) }

// Vectors returns the point vectors in input order.
func (d *Dataset) Vectors() [][]float64 {
	out := make([][]float64, len(d.Points))
	for i, p := range d.Points {
		out[i] = p.Vector
	}
	return out
}

// IDs returns the point ids in input order.
func (d *Dataset) IDs() []string {
	out := make([]string, len(d.Points))
	for i, p := range d.Points {
		out[i] = p.ID
	}
	return out
}

// Options configures decoding.
type Options struct {
	Format   Format
	Codec    codec.Codec
	IDColumn string
}

// Option configures decoding.
type Option func(*Options)

// WithFormat forces a layout instead of detecting it.
func WithFormat(f Format) Option {
	return func(o *Options) { o.Format = f }
}

// WithCodec sets the JSON codec. Default: codec.Default.
func WithCodec(c codec.Codec) Option {
	return func(o *Options) { o.Codec = c }
}

// WithIDColumn names the CSV id column. Default: "id".
func WithIDColumn(name string) Option {
	return func(o *Options) { o.IDColumn = name }
}

func applyOptions(optFns []Option) Options {
	opts := Options{IDColumn: "id"}
	for _, fn := range optFns {
		fn(&opts)
	}
	opts.Codec = codec.OrDefault(opts.Codec)
	return opts
}

// Load reads and validates the dataset stored under name.
func Load(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*Dataset, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", name, err)
	}
	defer b.Close()

	opts := applyOptions(optFns)
	if opts.Format == FormatAuto {
		opts.Format = FormatFromName(name)
	}

	d, err := decode(blobstore.NewReader(ctx, b), opts)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", name, err)
	}
	d.Name = name
	return d, nil
}

// Decode reads and validates a dataset from r.
func Decode(r io.Reader, optFns ...Option) (*Dataset, error) {
	return decode(r, applyOptions(optFns))
}

func decode(r io.Reader, opts Options) (*Dataset, error) {
	dr, closer, comp, err := decompress(r)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	data, err := io.ReadAll(dr)
	if err != nil {
		return nil, err
	}

	format := opts.Format
	if format == FormatAuto {
		format = sniff(data)
	}

	var points []Point
	switch format {
	case FormatCSV:
		points, err = decodeCSV(bytes.NewReader(data), opts.IDColumn)
	case FormatJSON:
		err = opts.Codec.Unmarshal(data, &points)
	case FormatJSONL:
		points, err = decodeJSONL(opts.Codec.NewDecoder(bytes.NewReader(data)))
	default:
		err = fmt.Errorf("dataset: unknown format %v", format)
	}
	if err != nil {
		return nil, err
	}

	d := &Dataset{Format: format, Compression: comp, Points: points}
	if err := d.validate(); err != nil {
		return nil, err
	}
	return d, nil
}

func sniff(data []byte) Format {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return FormatCSV
	}
	switch trimmed[0] {
	case '[':
		return FormatJSON
	case '{':
		return FormatJSONL
	default:
		return FormatCSV
	}
}

func decodeJSONL(dec codec.Decoder) ([]Point, error) {
	var points []Point
	for line := 1; ; line++ {
		var p Point
		if err := dec.Decode(&p); err != nil {
			if errors.Is(err, io.EOF) {
				return points, nil
			}
			return nil, fmt.Errorf("record %d: %w", line, err)
		}
		points = append(points, p)
	}
}

// validate fills missing ids with the input position and checks shape.
func (d *Dataset) validate() error {
	if len(d.Points) == 0 {
		return ErrEmpty
	}

	d.Dim = len(d.Points[0].Vector)
	if d.Dim == 0 {
		return fmt.Errorf("%w: point 0 has no components", ErrDimensionMismatch)
	}

	seen := make(map[string]int, len(d.Points))
	for i := range d.Points {
		p := &d.Points[i]
		if p.ID == "" {
			p.ID = fmt.Sprint(i)
		}
		if j, ok := seen[p.ID]; ok {
			return fmt.Errorf("%w: %q at %d and %d", ErrDuplicateID, p.ID, j, i)
		}
		seen[p.ID] = i

		if len(p.Vector) != d.Dim {
			return fmt.Errorf("%w: point %q has %d components, want %d", ErrDimensionMismatch, p.ID, len(p.Vector), d.Dim)
		}
		for k, v := range p.Vector {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: point %q component %d is %v", ErrInvalidValue, p.ID, k, v)
			}
		}
	}
	return nil
}
