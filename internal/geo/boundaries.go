package geo

import (
	"sort"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/svi-cli/internal/model"
)

// LoadBoundaries reads area polygons from a TIGER/Line shapefile, keyed by
// the GEOID attribute.
func LoadBoundaries(shpPath, geoidField string) (map[string]*geom.Polygon, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "geo: open shapefile %s", shpPath)
	}
	defer func() { _ = reader.Close() }()

	// Build field name → index map.
	fields := reader.Fields()
	geoidIdx := -1
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		if strings.EqualFold(name, geoidField) {
			geoidIdx = i
			break
		}
	}
	if geoidIdx < 0 {
		return nil, eris.Errorf("geo: shapefile %s has no %s attribute", shpPath, geoidField)
	}

	polys := make(map[string]*geom.Polygon)
	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}
		geoid := strings.TrimSpace(strings.TrimRight(reader.Attribute(geoidIdx), "\x00"))
		if geoid == "" {
			skipped++
			continue
		}
		polys[geoid] = polygonFromShape(poly)
	}

	if skipped > 0 {
		zap.L().Debug("geo: skipped shapefile records",
			zap.String("path", shpPath),
			zap.Int("skipped", skipped),
		)
	}
	if len(polys) == 0 {
		return nil, eris.Errorf("geo: shapefile %s holds no polygons", shpPath)
	}
	return polys, nil
}

func polygonFromShape(p *shp.Polygon) *geom.Polygon {
	flat := make([]float64, 0, len(p.Points)*2)
	for _, pt := range p.Points {
		flat = append(flat, pt.X, pt.Y)
	}
	ends := make([]int, len(p.Parts))
	for i := range p.Parts {
		if i+1 < len(p.Parts) {
			ends[i] = int(p.Parts[i+1]) * 2
		} else {
			ends[i] = len(flat)
		}
	}
	if len(ends) == 0 {
		ends = []int{len(flat)}
	}
	return geom.NewPolygonFlat(geom.XY, flat, ends)
}

// BuildAdjacency derives queen contiguity from area polygons: areas are
// neighbors when their boundaries share at least one vertex. TIGER
// boundaries of touching areas reuse identical coordinates, so exact
// comparison is sufficient.
func BuildAdjacency(polys map[string]*geom.Polygon) model.Adjacency {
	ids := make([]string, 0, len(polys))
	for id := range polys {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	type vertex struct{ x, y float64 }
	byVertex := make(map[vertex][]string)
	for _, id := range ids {
		coords := polys[id].FlatCoords()
		seen := make(map[vertex]struct{}, len(coords)/2)
		for i := 0; i+1 < len(coords); i += 2 {
			v := vertex{coords[i], coords[i+1]}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			byVertex[v] = append(byVertex[v], id)
		}
	}

	adj := model.Adjacency{}
	for _, shared := range byVertex {
		for i := 0; i < len(shared); i++ {
			for j := i + 1; j < len(shared); j++ {
				adj.Add(shared[i], shared[j])
			}
		}
	}
	return adj
}
