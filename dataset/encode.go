package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/optics/blobstore"
	"github.com/hupe1980/optics/codec"
)

// Encode writes points to w in the given layout and compression.
// FormatAuto writes JSON lines.
func Encode(w io.Writer, points []Point, format Format, comp Compression, c codec.Codec) error {
	c = codec.OrDefault(c)

	cw, err := compress(w, comp)
	if err != nil {
		return err
	}

	switch format {
	case FormatCSV:
		err = encodeCSV(cw, points)
	case FormatJSON:
		var b []byte
		if b, err = c.Marshal(points); err == nil {
			_, err = cw.Write(b)
		}
	case FormatJSONL, FormatAuto:
		err = encodeJSONL(cw, points, c)
	default:
		err = fmt.Errorf("dataset: unknown format %v", format)
	}
	if err != nil {
		_ = cw.Close()
		return err
	}
	return cw.Close()
}

func encodeJSONL(w io.Writer, points []Point, c codec.Codec) error {
	for _, p := range points {
		b, err := c.Marshal(p)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(b, '\n')); err != nil {
			return err
		}
	}
	return nil
}

// Save encodes points and stores them under name. The layout is taken from
// the name; the compression is taken from comp.
func Save(ctx context.Context, store blobstore.BlobStore, name string, points []Point, comp Compression, optFns ...Option) error {
	opts := applyOptions(optFns)
	format := opts.Format
	if format == FormatAuto {
		format = FormatFromName(name)
	}

	var buf bytes.Buffer
	if err := Encode(&buf, points, format, comp, opts.Codec); err != nil {
		return fmt.Errorf("encode dataset %s: %w", name, err)
	}
	return store.Put(ctx, name, buf.Bytes())
}
