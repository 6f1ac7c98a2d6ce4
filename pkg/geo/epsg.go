package geo

import (
	"strconv"
	"strings"
)

// epsgRef resolves an EPSG code. Codes outside the table give an
// Unresolved reference, since a dataset naming one may well be projected.
func epsgRef(code int) *SpatialRef {
	if ref := knownEPSG(code); ref != nil {
		return ref
	}
	return &SpatialRef{Name: "EPSG:" + strconv.Itoa(code), Unresolved: true}
}

// knownEPSG covers the codes common in model inputs.
func knownEPSG(code int) *SpatialRef {
	switch {
	case code == 4326:
		return &SpatialRef{Name: "WGS 84"}
	case code == 4269:
		return &SpatialRef{Name: "NAD83"}
	case code == 4258:
		return &SpatialRef{Name: "ETRS89"}
	case code == 3857:
		return &SpatialRef{Name: "WGS 84 / Pseudo-Mercator", Projected: true, LinearUnit: "metre"}
	case code >= 32601 && code <= 32660:
		return &SpatialRef{Name: "WGS 84 / UTM zone " + strconv.Itoa(code-32600) + "N", Projected: true, LinearUnit: "metre"}
	case code >= 32701 && code <= 32760:
		return &SpatialRef{Name: "WGS 84 / UTM zone " + strconv.Itoa(code-32700) + "S", Projected: true, LinearUnit: "metre"}
	case code >= 26901 && code <= 26923:
		return &SpatialRef{Name: "NAD83 / UTM zone " + strconv.Itoa(code-26900) + "N", Projected: true, LinearUnit: "metre"}
	case code >= 25828 && code <= 25838:
		return &SpatialRef{Name: "ETRS89 / UTM zone " + strconv.Itoa(code-25800) + "N", Projected: true, LinearUnit: "metre"}
	case code >= 28348 && code <= 28358:
		return &SpatialRef{Name: "GDA94 / MGA zone " + strconv.Itoa(code-28300), Projected: true, LinearUnit: "metre"}
	case code >= 26929 && code <= 26998:
		return &SpatialRef{Name: "NAD83 / State Plane (EPSG:" + strconv.Itoa(code) + ")", Projected: true, LinearUnit: "metre"}
	case code == 2154:
		return &SpatialRef{Name: "RGF93 v1 / Lambert-93", Projected: true, LinearUnit: "metre"}
	case code == 2193:
		return &SpatialRef{Name: "NZGD2000 / New Zealand Transverse Mercator 2000", Projected: true, LinearUnit: "metre"}
	case code == 3310:
		return &SpatialRef{Name: "NAD83 / California Albers", Projected: true, LinearUnit: "metre"}
	case code == 3395:
		return &SpatialRef{Name: "WGS 84 / World Mercator", Projected: true, LinearUnit: "metre"}
	case code == 3577:
		return &SpatialRef{Name: "GDA94 / Australian Albers", Projected: true, LinearUnit: "metre"}
	case code == 3035:
		return &SpatialRef{Name: "ETRS89-extended / LAEA Europe", Projected: true, LinearUnit: "metre"}
	case code == 5070:
		return &SpatialRef{Name: "NAD83 / Conus Albers", Projected: true, LinearUnit: "metre"}
	case code == 27700:
		return &SpatialRef{Name: "OSGB36 / British National Grid", Projected: true, LinearUnit: "metre"}
	case code == 2227:
		return &SpatialRef{Name: "NAD83 / California zone 3 (ftUS)", Projected: true, LinearUnit: "US survey foot"}
	}
	return nil
}

// parseCRSName extracts an EPSG code from names such as "EPSG:32610" or
// "urn:ogc:def:crs:EPSG::32610". CRS84 maps to 4326.
func parseCRSName(name string) (int, bool) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if strings.HasSuffix(upper, "CRS84") {
		return 4326, true
	}
	i := strings.LastIndex(upper, "EPSG")
	if i < 0 {
		return 0, false
	}
	rest := strings.TrimLeft(upper[i+len("EPSG"):], ":")
	if j := strings.LastIndex(rest, ":"); j >= 0 {
		rest = rest[j+1:]
	}
	code, err := strconv.Atoi(rest)
	if err != nil {
		return 0, false
	}
	return code, true
}

// linearUnitName maps GeoTIFF ProjLinearUnitsGeoKey codes to unit names.
func linearUnitName(code int) string {
	switch code {
	case 9001:
		return "metre"
	case 9002:
		return "foot"
	case 9003:
		return "US survey foot"
	case 9030:
		return "nautical mile"
	case 9036:
		return "kilometre"
	}
	return ""
}
