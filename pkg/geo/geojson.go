package geo

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/paulmach/orb/geojson"
)

type geoJSON struct {
	ref    *SpatialRef
	fields []string
	geom   string
}

func (g *geoJSON) SpatialRef() *SpatialRef { return g.ref }
func (g *geoJSON) Fields() []string        { return g.fields }
func (g *geoJSON) GeometryType() string    { return g.geom }
func (g *geoJSON) Close() error            { return nil }

// crsMember is the pre-RFC 7946 "crs" object still written by many tools.
type crsMember struct {
	CRS *struct {
		Type       string `json:"type"`
		Properties struct {
			Name string `json:"name"`
		} `json:"properties"`
	} `json:"crs"`
}

// openGeoJSON reads a FeatureCollection. The field list is the union of all
// feature property names; the geometry type is that of the first feature
// with a geometry. Without a "crs" member the data is WGS 84 per RFC 7946.
func openGeoJSON(path string) (*geoJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("decode geojson: %w", err)
	}

	g := &geoJSON{ref: epsgRef(4326)}
	var legacy crsMember
	if err := json.Unmarshal(data, &legacy); err == nil && legacy.CRS != nil {
		name := legacy.CRS.Properties.Name
		switch code, ok := parseCRSName(name); {
		case ok:
			g.ref = epsgRef(code)
		case name != "":
			g.ref = &SpatialRef{Name: name, Unresolved: true}
		default:
			g.ref = nil
		}
	}

	seen := map[string]struct{}{}
	for _, f := range fc.Features {
		for k := range f.Properties {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				g.fields = append(g.fields, k)
			}
		}
		if g.geom == "" && f.Geometry != nil {
			g.geom = f.Geometry.GeoJSONType()
		}
	}
	slices.Sort(g.fields)
	return g, nil
}
