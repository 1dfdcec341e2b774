package dataset

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/hupe1980/optics/blobstore"
	"github.com/hupe1980/optics/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var samplePoints = []Point{
	{ID: "a", Vector: []float64{0, 0}},
	{ID: "b", Vector: []float64{1.5, -2}},
	{ID: "c", Vector: []float64{100, 0.25}},
}

func TestDecode_CSV(t *testing.T) {
	const in = `# exported points
id, x, y
a, 0, 0
b, 1.5, -2
c, 100, 0.25
`
	d, err := Decode(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, FormatCSV, d.Format)
	assert.Equal(t, CompressionNone, d.Compression)
	assert.Equal(t, 2, d.Dim)
	assert.Equal(t, samplePoints, d.Points)
	assert.Equal(t, []string{"a", "b", "c"}, d.IDs())
	assert.Equal(t, [][]float64{{0, 0}, {1.5, -2}, {100, 0.25}}, d.Vectors())
}

func TestDecode_CSVWithoutIDColumn(t *testing.T) {
	d, err := Decode(strings.NewReader("x,y\n1,2\n3,4\n"), WithFormat(FormatCSV))
	require.NoError(t, err)

	assert.Equal(t, []string{"0", "1"}, d.IDs())
	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, d.Vectors())
}

func TestDecode_CSVCustomIDColumn(t *testing.T) {
	d, err := Decode(strings.NewReader("x,name,y\n1,p,2\n"), WithIDColumn("name"))
	require.NoError(t, err)

	assert.Equal(t, []Point{{ID: "p", Vector: []float64{1, 2}}}, d.Points)
}

func TestDecode_CSVBadNumber(t *testing.T) {
	_, err := Decode(strings.NewReader("id,x\na,1\nb,oops\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `line 3 column "x"`)
}

func TestDecode_JSON(t *testing.T) {
	const in = ` [{"id":"a","vector":[0,0]},{"id":"b","vector":[1.5,-2]},{"id":"c","vector":[100,0.25]}]`

	for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}} {
		d, err := Decode(strings.NewReader(in), WithCodec(c))
		require.NoError(t, err, c.Name())
		assert.Equal(t, FormatJSON, d.Format)
		assert.Equal(t, samplePoints, d.Points)
	}
}

func TestDecode_JSONL(t *testing.T) {
	const in = `{"id":"a","vector":[0,0]}
{"id":"b","vector":[1.5,-2]}

{"id":"c","vector":[100,0.25]}
`
	d, err := Decode(strings.NewReader(in))
	require.NoError(t, err)

	assert.Equal(t, FormatJSONL, d.Format)
	assert.Equal(t, samplePoints, d.Points)
}

func TestDecode_Validation(t *testing.T) {
	tests := []struct {
		name string
		in   string
		err  error
	}{
		{"empty", "", ErrEmpty},
		{"header only", "id,x\n", ErrEmpty},
		{"empty array", "[]", ErrEmpty},
		{"no components", `[{"id":"a","vector":[]}]`, ErrDimensionMismatch},
		{"ragged", `[{"id":"a","vector":[1]},{"id":"b","vector":[1,2]}]`, ErrDimensionMismatch},
		{"duplicate", `[{"id":"a","vector":[1]},{"id":"a","vector":[2]}]`, ErrDuplicateID},
		{"nan", "id,x\na,NaN\n", ErrInvalidValue},
		{"inf", "id,x\na,+Inf\n", ErrInvalidValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.in))
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestEncodeDecode_Compression(t *testing.T) {
	for _, format := range []Format{FormatCSV, FormatJSON, FormatJSONL} {
		for _, comp := range []Compression{CompressionNone, CompressionGzip, CompressionZstd, CompressionLZ4} {
			t.Run(format.String()+"/"+comp.String(), func(t *testing.T) {
				var buf bytes.Buffer
				require.NoError(t, Encode(&buf, samplePoints, format, comp, nil))

				assert.Equal(t, comp, DetectCompression(buf.Bytes()))

				d, err := Decode(&buf)
				require.NoError(t, err)
				assert.Equal(t, format, d.Format)
				assert.Equal(t, comp, d.Compression)
				assert.Equal(t, samplePoints, d.Points)
			})
		}
	}
}

func TestLoadSave(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	require.NoError(t, Save(ctx, store, "points.csv.zst", samplePoints, CompressionZstd))

	d, err := Load(ctx, store, "points.csv.zst")
	require.NoError(t, err)

	assert.Equal(t, "points.csv.zst", d.Name)
	assert.Equal(t, FormatCSV, d.Format)
	assert.Equal(t, CompressionZstd, d.Compression)
	assert.Equal(t, 3, d.Len())
	assert.Equal(t, samplePoints, d.Points)
}

func TestLoad_NotFound(t *testing.T) {
	_, err := Load(context.Background(), blobstore.NewMemoryStore(), "missing.csv")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestFormatFromName(t *testing.T) {
	assert.Equal(t, FormatCSV, FormatFromName("a/b.CSV"))
	assert.Equal(t, FormatJSON, FormatFromName("b.json.gz"))
	assert.Equal(t, FormatJSONL, FormatFromName("b.ndjson.lz4"))
	assert.Equal(t, FormatJSONL, FormatFromName("b.jsonl.zst"))
	assert.Equal(t, FormatAuto, FormatFromName("b.bin"))
}

func TestParse(t *testing.T) {
	f, err := ParseFormat("NDJSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSONL, f)

	_, err = ParseFormat("parquet")
	assert.Error(t, err)

	c, err := ParseCompression("zst")
	require.NoError(t, err)
	assert.Equal(t, CompressionZstd, c)

	_, err = ParseCompression("brotli")
	assert.Error(t, err)
}
