package geo

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

type asciiGrid struct {
	ref *SpatialRef
}

func (a *asciiGrid) SpatialRef() *SpatialRef { return a.ref }
func (a *asciiGrid) Close() error            { return nil }

// openASCIIGrid reads an ESRI ASCII grid header. The reference comes from a
// sidecar .prj file.
func openASCIIGrid(path string) (*asciiGrid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	header := map[string]string{}
	sc := bufio.NewScanner(f)
	for len(header) < 6 && sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) != 2 {
			break
		}
		key := strings.ToLower(fields[0])
		if _, err := strconv.ParseFloat(fields[1], 64); err != nil {
			break
		}
		header[key] = fields[1]
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read ascii grid: %w", err)
	}
	for _, k := range []string{"ncols", "nrows", "cellsize"} {
		v, ok := header[k]
		if !ok {
			return nil, fmt.Errorf("ascii grid header missing %s: %w", k, ErrUnsupportedFormat)
		}
		if n, _ := strconv.ParseFloat(v, 64); n <= 0 {
			return nil, fmt.Errorf("ascii grid %s must be positive", k)
		}
	}

	ref, err := sidecarRef(path)
	if err != nil {
		return nil, err
	}
	return &asciiGrid{ref: ref}, nil
}
