// Package input loads raw survey extracts, variable catalogs, and spatial
// relations from local files.
package input

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/svi-cli/internal/model"
)

// ReadRawTable parses a wide CSV extract: one row per area, a GEOID column
// first, then one column per raw survey field. Blank and non-numeric cells
// are dropped so they surface as unavailable fields downstream.
func ReadRawTable(r io.Reader) (model.RawTable, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrap(err, "input: read header")
	}
	if len(header) < 2 {
		return nil, eris.New("input: extract needs a GEOID column and at least one field column")
	}

	table := model.RawTable{}
	var skipped int
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "input: read row")
		}

		geoid := strings.TrimSpace(record[0])
		if geoid == "" {
			continue
		}
		row := make(map[string]float64, len(header)-1)
		for i := 1; i < len(record) && i < len(header); i++ {
			cell := strings.TrimSpace(record[i])
			if cell == "" {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				skipped++
				continue
			}
			row[header[i]] = v
		}
		table[geoid] = row
	}

	if skipped > 0 {
		zap.L().Debug("input: dropped non-numeric cells", zap.Int("cells", skipped))
	}
	if len(table) == 0 {
		return nil, eris.New("input: extract contains no areas")
	}
	return table, nil
}

// LoadRawTable reads a raw extract CSV from disk.
func LoadRawTable(path string) (model.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "input: open extract %s", path)
	}
	defer f.Close()
	return ReadRawTable(f)
}

// FilterLowPopulation removes areas whose total population is below the
// threshold, returning the dropped IDs. Areas lacking the population field
// entirely are kept; completion decides what to do with their holes.
func FilterLowPopulation(raw model.RawTable, popField string, min float64) []string {
	var dropped []string
	for _, id := range raw.AreaIDs() {
		pop, ok := raw.Field(id, popField)
		if !ok {
			continue
		}
		if pop < min {
			delete(raw, id)
			dropped = append(dropped, id)
		}
	}
	if len(dropped) > 0 {
		zap.L().Info("input: filtered low population areas",
			zap.Int("dropped", len(dropped)),
			zap.Float64("min_population", min),
		)
	}
	return dropped
}

// FilterSpecialUse removes areas whose average household size is effectively
// zero. Populated areas with no households are institutional land: prisons,
// barracks, dormitories. Their ACS profiles distort every ratio variable.
func FilterSpecialUse(raw model.RawTable, householdField string) []string {
	var dropped []string
	for _, id := range raw.AreaIDs() {
		size, ok := raw.Field(id, householdField)
		if !ok {
			continue
		}
		if size < 0.01 {
			delete(raw, id)
			dropped = append(dropped, id)
		}
	}
	if len(dropped) > 0 {
		zap.L().Info("input: filtered special-use areas",
			zap.Int("dropped", len(dropped)),
		)
	}
	return dropped
}
