package geo

import (
	"encoding/binary"
	"fmt"
	"os"

	shp "github.com/jonas-p/go-shp"
)

type shapefile struct {
	r      shp.SequentialReader
	ref    *SpatialRef
	fields []string
	geom   string
}

func (s *shapefile) SpatialRef() *SpatialRef { return s.ref }
func (s *shapefile) Fields() []string        { return s.fields }
func (s *shapefile) GeometryType() string    { return s.geom }

func (s *shapefile) Close() error {
	if s.r == nil {
		return nil
	}
	err := s.r.Close()
	s.r = nil
	return err
}

// openShapefile reads the shape type from the .shp header and the attribute
// fields from the .dbf. Sidecar files are matched regardless of extension
// case, so AOI.SHP finds AOI.DBF and AOI.PRJ.
func openShapefile(path string) (*shapefile, error) {
	head, err := sniff(path)
	if err != nil {
		return nil, err
	}
	if !isShapefile(head) || len(head) < 36 {
		return nil, fmt.Errorf("not a shapefile: %w", ErrUnsupportedFormat)
	}

	ref, err := sidecarRef(path)
	if err != nil {
		return nil, err
	}
	s := &shapefile{
		ref:  ref,
		geom: shapeTypeName(shp.ShapeType(int32(binary.LittleEndian.Uint32(head[32:36])))),
	}

	dbfPath, err := sidecar(path, ".dbf")
	if err != nil {
		return nil, err
	}
	if dbfPath == "" {
		return s, nil
	}
	shpFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open shapefile: %w", err)
	}
	dbfFile, err := os.Open(dbfPath)
	if err != nil {
		shpFile.Close()
		return nil, fmt.Errorf("open shapefile attributes: %w", err)
	}
	r := shp.SequentialReaderFromExt(shpFile, dbfFile)
	if err := r.Err(); err != nil {
		r.Close()
		return nil, fmt.Errorf("read shapefile: %w", err)
	}
	for _, f := range r.Fields() {
		s.fields = append(s.fields, f.String())
	}
	s.r = r
	return s, nil
}

func shapeTypeName(t shp.ShapeType) string {
	switch t {
	case shp.POINT, shp.POINTZ, shp.POINTM:
		return "Point"
	case shp.MULTIPOINT, shp.MULTIPOINTZ, shp.MULTIPOINTM:
		return "MultiPoint"
	case shp.POLYLINE, shp.POLYLINEZ, shp.POLYLINEM:
		return "LineString"
	case shp.POLYGON, shp.POLYGONZ, shp.POLYGONM:
		return "Polygon"
	case shp.MULTIPATCH:
		return "MultiPatch"
	}
	return ""
}
