package geo

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

const (
	tagImageWidth      = 256
	tagImageLength     = 257
	tagGeoKeyDirectory = 34735

	keyModelType      = 1024
	keyProjectedCS    = 3072
	keyProjLinearUnit = 3076

	modelTypeProjected  = 1
	modelTypeGeographic = 2
	userDefined         = 32767

	tiffTypeShort = 3
	tiffTypeLong  = 4
)

type geoTIFF struct {
	ref *SpatialRef
}

func (g *geoTIFF) SpatialRef() *SpatialRef { return g.ref }
func (g *geoTIFF) Close() error            { return nil }

type ifdEntry struct {
	typ   uint16
	count uint32
	value uint32 // inline value or offset
	raw   [4]byte
}

// openGeoTIFF reads the first IFD of a classic TIFF and, when present, its
// GeoKey directory. Pixel data is never read.
func openGeoTIFF(path string) (*geoTIFF, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var hdr [8]byte
	if _, err := io.ReadFull(f, hdr[:]); err != nil {
		return nil, fmt.Errorf("read tiff header: %w", err)
	}
	var order binary.ByteOrder
	switch string(hdr[:2]) {
	case "II":
		order = binary.LittleEndian
	case "MM":
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("not a tiff file: %w", ErrUnsupportedFormat)
	}
	switch order.Uint16(hdr[2:4]) {
	case 42:
	case 43:
		return nil, fmt.Errorf("bigtiff: %w", ErrUnsupportedFormat)
	default:
		return nil, fmt.Errorf("bad tiff magic: %w", ErrUnsupportedFormat)
	}

	entries, err := readIFD(f, order, int64(order.Uint32(hdr[4:8])))
	if err != nil {
		return nil, err
	}
	if _, ok := entries[tagImageWidth]; !ok {
		return nil, errors.New("tiff has no ImageWidth")
	}
	if _, ok := entries[tagImageLength]; !ok {
		return nil, errors.New("tiff has no ImageLength")
	}

	g := &geoTIFF{}
	dir, ok := entries[tagGeoKeyDirectory]
	if !ok {
		return g, nil
	}
	keys, err := readShorts(f, order, dir)
	if err != nil {
		return nil, fmt.Errorf("read geokeys: %w", err)
	}
	g.ref = refFromGeoKeys(parseGeoKeys(keys))
	return g, nil
}

func readIFD(r io.ReadSeeker, order binary.ByteOrder, offset int64) (map[uint16]ifdEntry, error) {
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek ifd: %w", err)
	}
	var cnt [2]byte
	if _, err := io.ReadFull(r, cnt[:]); err != nil {
		return nil, fmt.Errorf("read ifd: %w", err)
	}
	n := int(order.Uint16(cnt[:]))
	buf := make([]byte, 12*n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("read ifd entries: %w", err)
	}
	entries := make(map[uint16]ifdEntry, n)
	for i := 0; i < n; i++ {
		e := buf[i*12 : (i+1)*12]
		var ent ifdEntry
		ent.typ = order.Uint16(e[2:4])
		ent.count = order.Uint32(e[4:8])
		ent.value = order.Uint32(e[8:12])
		copy(ent.raw[:], e[8:12])
		entries[order.Uint16(e[0:2])] = ent
	}
	return entries, nil
}

func readShorts(r io.ReadSeeker, order binary.ByteOrder, e ifdEntry) ([]uint16, error) {
	if e.typ != tiffTypeShort {
		return nil, fmt.Errorf("expected SHORT values, got type %d", e.typ)
	}
	var data []byte
	if e.count <= 2 {
		data = e.raw[:2*e.count]
	} else {
		data = make([]byte, 2*int(e.count))
		if _, err := r.Seek(int64(e.value), io.SeekStart); err != nil {
			return nil, err
		}
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, err
		}
	}
	out := make([]uint16, e.count)
	for i := range out {
		out[i] = order.Uint16(data[2*i:])
	}
	return out, nil
}

// parseGeoKeys returns the keys whose values are stored inline in the
// directory. Keys pointing at other tags (doubles, ASCII) are skipped.
func parseGeoKeys(dir []uint16) map[uint16]uint16 {
	keys := map[uint16]uint16{}
	if len(dir) < 4 {
		return keys
	}
	n := int(dir[3])
	for i := 0; i < n && 4+4*i+3 < len(dir); i++ {
		k := dir[4+4*i:]
		if k[1] != 0 {
			continue
		}
		keys[k[0]] = k[3]
	}
	return keys
}

func refFromGeoKeys(keys map[uint16]uint16) *SpatialRef {
	model, ok := keys[keyModelType]
	if !ok {
		return nil
	}
	switch model {
	case modelTypeGeographic:
		return &SpatialRef{Name: "geographic"}
	case modelTypeProjected:
		ref := &SpatialRef{Name: "projected", Projected: true}
		if code, ok := keys[keyProjectedCS]; ok {
			if known := knownEPSG(int(code)); known != nil {
				ref = known
			} else if code != userDefined {
				ref.Name = "EPSG:" + strconv.Itoa(int(code))
			}
		}
		if unit, ok := keys[keyProjLinearUnit]; ok {
			if name := linearUnitName(int(unit)); name != "" {
				ref.LinearUnit = name
			}
		}
		return ref
	}
	return nil
}
