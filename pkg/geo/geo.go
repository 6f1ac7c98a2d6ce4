// Package geo opens raster and vector datasets read-only and exposes the
// little metadata argument checks need: the spatial reference, a vector
// layer's attribute field names and its geometry type.
package geo

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnsupportedFormat is returned when no driver recognises a file.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// SpatialRef is the subset of a coordinate reference system checks look at.
type SpatialRef struct {
	Name       string
	Projected  bool
	LinearUnit string
	// Unresolved marks a reference that is named, for example by an EPSG
	// code, but whose projection and unit are not known.
	Unresolved bool
}

// Raster is an open raster dataset.
type Raster interface {
	// SpatialRef returns nil when the dataset carries no reference.
	SpatialRef() *SpatialRef
	Close() error
}

// Vector is an open vector dataset. Only the first layer is exposed.
type Vector interface {
	// SpatialRef returns nil when the layer carries no reference.
	SpatialRef() *SpatialRef
	// Fields returns the layer's attribute field names.
	Fields() []string
	// GeometryType returns a GeoJSON-style name such as "Polygon", or "" when
	// the layer has no geometries.
	GeometryType() string
	Close() error
}

// Backend opens datasets. Implementations must not modify files.
type Backend interface {
	OpenRaster(path string) (Raster, error)
	OpenVector(path string) (Vector, error)
}

// FileBackend reads GeoTIFF and ESRI ASCII grid rasters, and ESRI Shapefile
// and GeoJSON vectors, picking a driver by extension and falling back to
// sniffing the file header.
type FileBackend struct{}

// NewFileBackend returns the default pure-Go backend.
func NewFileBackend() *FileBackend { return &FileBackend{} }

// OpenRaster opens path as a raster dataset.
func (FileBackend) OpenRaster(path string) (Raster, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tif", ".tiff", ".gtif":
		return openGeoTIFF(path)
	case ".asc":
		return openASCIIGrid(path)
	}
	head, err := sniff(path)
	if err != nil {
		return nil, err
	}
	if isTIFF(head) {
		return openGeoTIFF(path)
	}
	if bytes.HasPrefix(bytes.ToLower(bytes.TrimSpace(head)), []byte("ncols")) {
		return openASCIIGrid(path)
	}
	return nil, fmt.Errorf("open raster %s: %w", path, ErrUnsupportedFormat)
}

// OpenVector opens path as a vector dataset.
func (FileBackend) OpenVector(path string) (Vector, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return openShapefile(path)
	case ".geojson", ".json":
		return openGeoJSON(path)
	}
	head, err := sniff(path)
	if err != nil {
		return nil, err
	}
	if isShapefile(head) {
		return openShapefile(path)
	}
	if t := bytes.TrimSpace(head); len(t) > 0 && t[0] == '{' {
		return openGeoJSON(path)
	}
	return nil, fmt.Errorf("open vector %s: %w", path, ErrUnsupportedFormat)
}

func sniff(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf := make([]byte, 256)
	n, err := io.ReadFull(f, buf)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return buf[:n], nil
}

func isTIFF(head []byte) bool {
	return bytes.HasPrefix(head, []byte("II*\x00")) || bytes.HasPrefix(head, []byte("MM\x00*"))
}

const shapefileCode = 9994

func isShapefile(head []byte) bool {
	return len(head) >= 4 && binary.BigEndian.Uint32(head) == shapefileCode
}

// sidecar returns the file next to path that shares its base name and has
// extension ext, compared case-insensitively. It returns "" when there is none.
func sidecar(path, ext string) (string, error) {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	if _, err := os.Stat(base + ext); err == nil {
		return base + ext, nil
	}
	dir := filepath.Dir(path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	want := filepath.Base(base) + ext
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(e.Name(), want) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", nil
}

// sidecarRef reads the .prj file next to path, if there is one.
func sidecarRef(path string) (*SpatialRef, error) {
	prj, err := sidecar(path, ".prj")
	if err != nil || prj == "" {
		return nil, err
	}
	data, err := os.ReadFile(prj)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", prj, err)
	}
	ref, err := ParseWKT(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", prj, err)
	}
	return ref, nil
}
