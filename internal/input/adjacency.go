package input

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/svi-cli/internal/model"
)

// ReadAdjacency parses a two-column CSV of neighboring GEOID pairs. The
// relation is symmetrized regardless of which order pairs appear in.
func ReadAdjacency(r io.Reader) (model.Adjacency, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	adj := model.Adjacency{}
	var line int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "input: read adjacency row")
		}
		line++
		if line == 1 && looksLikeHeader(record) {
			continue
		}
		if len(record) < 2 {
			return nil, eris.Errorf("input: adjacency row %d needs two GEOIDs", line)
		}
		a := strings.TrimSpace(record[0])
		b := strings.TrimSpace(record[1])
		if a == "" || b == "" {
			return nil, eris.Errorf("input: adjacency row %d has an empty GEOID", line)
		}
		adj.Add(a, b)
	}
	return adj, nil
}

// LoadAdjacency reads an adjacency CSV from disk.
func LoadAdjacency(path string) (model.Adjacency, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "input: open adjacency %s", path)
	}
	defer f.Close()
	return ReadAdjacency(f)
}

// looksLikeHeader reports whether a row is a column header rather than a
// GEOID pair. GEOIDs are all digits.
func looksLikeHeader(record []string) bool {
	for _, cell := range record {
		for _, r := range strings.TrimSpace(cell) {
			if r < '0' || r > '9' {
				return true
			}
		}
	}
	return false
}
