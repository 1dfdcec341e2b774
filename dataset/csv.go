package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

func decodeCSV(r io.Reader, idColumn string) ([]Point, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}

	idCol := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(name), idColumn) {
			idCol = i
			break
		}
	}

	var points []Point
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return points, nil
		}
		if err != nil {
			return nil, err
		}

		p := Point{Vector: make([]float64, 0, len(record))}
		for i, field := range record {
			if i == idCol {
				p.ID = field
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				line, _ := cr.FieldPos(i)
				return nil, fmt.Errorf("line %d column %q: %w", line, header[i], err)
			}
			p.Vector = append(p.Vector, v)
		}
		points = append(points, p)
	}
}

func encodeCSV(w io.Writer, points []Point) error {
	cw := csv.NewWriter(w)

	dim := 0
	if len(points) > 0 {
		dim = len(points[0].Vector)
	}
	header := make([]string, 0, dim+1)
	header = append(header, "id")
	for k := 0; k < dim; k++ {
		header = append(header, fmt.Sprintf("x%d", k))
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, dim+1)
	for _, p := range points {
		record = record[:1]
		record[0] = p.ID
		for _, v := range p.Vector {
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
