package checks

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ormasoftchile/argspec/pkg/spec"
)

type csvOptions struct {
	RequiredFields []string `yaml:"required_fields"`
}

// CSVChecker validates a readable CSV table, optionally requiring header
// columns (compared case-insensitively).
type CSVChecker struct {
	File FileChecker
}

func (c CSVChecker) Check(_ context.Context, value any, opts spec.Options) (string, error) {
	var o csvOptions
	if err := decodeOptions(opts, &o); err != nil {
		return "", err
	}
	path, ok := textValue(value)
	if !ok {
		return notText, nil
	}
	if msg, err := c.File.check(path, "r"); msg != "" || err != nil {
		return msg, err
	}

	header, err := readCSVHeader(path)
	if err != nil {
		return fmt.Sprintf("File could not be opened as a CSV: %v", err), nil
	}
	if missing := missingFields(header, o.RequiredFields); len(missing) > 0 {
		return "Fields are missing from the first line: " + strings.Join(missing, ", "), nil
	}
	return "", nil
}

// readCSVHeader returns the first record and parses the rest of the file to
// surface malformed rows.
func readCSVHeader(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("file is empty")
	}
	if err != nil {
		return nil, err
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for {
		if _, err := r.Read(); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
	}
	return header, nil
}

// missingFields returns the required names, upper-cased and sorted, that do
// not appear in have.
func missingFields(have, required []string) []string {
	if len(required) == 0 {
		return nil
	}
	upper := cases.Upper(language.Und)
	present := make(map[string]struct{}, len(have))
	for _, h := range have {
		present[upper.String(strings.TrimSpace(h))] = struct{}{}
	}
	var missing []string
	for _, r := range required {
		u := upper.String(strings.TrimSpace(r))
		if _, ok := present[u]; !ok {
			missing = append(missing, u)
		}
	}
	slices.Sort(missing)
	return slices.Compact(missing)
}
