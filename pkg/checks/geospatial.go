package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/ormasoftchile/argspec/pkg/geo"
	"github.com/ormasoftchile/argspec/pkg/spec"
)

type projectionOptions struct {
	Projected      bool   `yaml:"projected"`
	ProjectedUnits string `yaml:"projected_units"`
}

// checkProjection reports a problem with ref for a dataset of the given kind
// ("Raster" or "Vector"). Requesting units implies requesting a projection.
// Only problems the reference proves are reported.
func (p projectionOptions) checkProjection(kind string, ref *geo.SpatialRef) string {
	if !p.Projected && p.ProjectedUnits == "" {
		return ""
	}
	if ref == nil || (!ref.Projected && !ref.Unresolved) {
		return kind + " must be projected in linear units"
	}
	// An unresolved reference or an unnamed unit cannot be compared.
	if p.ProjectedUnits != "" && ref.LinearUnit != "" && !geo.SameLinearUnit(p.ProjectedUnits, ref.LinearUnit) {
		return fmt.Sprintf("%s must be projected in %s units, found %s", kind, p.ProjectedUnits, ref.LinearUnit)
	}
	return ""
}

type rasterOptions struct {
	projectionOptions `yaml:",inline"`
}

// RasterChecker validates a readable raster dataset and its projection.
type RasterChecker struct {
	File    FileChecker
	Backend geo.Backend
}

func (r RasterChecker) Check(_ context.Context, value any, opts spec.Options) (string, error) {
	var o rasterOptions
	if err := decodeOptions(opts, &o); err != nil {
		return "", err
	}
	path, ok := textValue(value)
	if !ok {
		return notText, nil
	}
	if msg, err := r.File.check(path, "r"); msg != "" || err != nil {
		return msg, err
	}

	ds, err := backendOrDefault(r.Backend).OpenRaster(path)
	if err != nil {
		return "File could not be opened as a raster dataset", nil
	}
	defer ds.Close()
	return o.checkProjection("Raster", ds.SpatialRef()), nil
}

type vectorOptions struct {
	projectionOptions `yaml:",inline"`
	RequiredFields    []string `yaml:"required_fields"`
	LayerGeometryType string   `yaml:"layer_geometry_type"`
}

var geometryTypes = map[string]bool{
	"point":      true,
	"linestring": true,
	"polygon":    true,
}

// VectorChecker validates a readable vector dataset: its first layer's
// fields, projection and geometry type.
type VectorChecker struct {
	File    FileChecker
	Backend geo.Backend
}

func (v VectorChecker) Check(_ context.Context, value any, opts spec.Options) (string, error) {
	var o vectorOptions
	if err := decodeOptions(opts, &o); err != nil {
		return "", err
	}
	want := strings.ToLower(o.LayerGeometryType)
	if want != "" && !geometryTypes[want] {
		return "", spec.ConfigErrorf("", "layer_geometry_type %q must be point, linestring or polygon", o.LayerGeometryType)
	}
	path, ok := textValue(value)
	if !ok {
		return notText, nil
	}
	if msg, err := v.File.check(path, "r"); msg != "" || err != nil {
		return msg, err
	}

	ds, err := backendOrDefault(v.Backend).OpenVector(path)
	if err != nil {
		return "File could not be opened as a vector dataset", nil
	}
	defer ds.Close()

	if missing := missingFields(ds.Fields(), o.RequiredFields); len(missing) > 0 {
		return "Fields are missing from the first layer: " + strings.Join(missing, ", "), nil
	}
	if msg := o.checkProjection("Vector", ds.SpatialRef()); msg != "" {
		return msg, nil
	}
	if want != "" {
		got := strings.ToLower(ds.GeometryType())
		if got != want && got != "multi"+want {
			found := ds.GeometryType()
			if found == "" {
				found = "none"
			}
			return fmt.Sprintf("Layer geometry type must be %s, found %s", want, found), nil
		}
	}
	return "", nil
}

func backendOrDefault(b geo.Backend) geo.Backend {
	if b == nil {
		return geo.NewFileBackend()
	}
	return b
}
