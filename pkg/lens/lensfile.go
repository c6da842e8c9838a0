package lens

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/golang/glog"
)

// ParseLensData reads a lens description: whitespace-separated floating point
// values, four per surface (curvature radius, thickness, refractive index,
// aperture diameter), all in millimeters, front element first. Lines starting
// with '#' are comments.
//
// A legacy variant carries one extra leading value (a focal length header);
// it is tolerated by discarding that value with a warning. Any other value
// count not a multiple of four is an error.
func ParseLensData(reader io.Reader) ([]float64, error) {
	var values []float64

	scanner := bufio.NewScanner(reader)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, field := range strings.Fields(line) {
			value, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid value %q: %w", lineNum, field, err)
			}
			values = append(values, value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading lens description: %w", err)
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("lens description contains no values")
	}
	if len(values)%4 == 1 {
		glog.Warning("Extra leading value in lens description; dropping it for compatibility with legacy lens files.")
		values = values[1:]
	}
	if len(values)%4 != 0 {
		return nil, fmt.Errorf("lens description must hold multiple-of-four values, got %d", len(values))
	}
	return values, nil
}

// LoadLensFile reads a lens description from a file
func LoadLensFile(path string) ([]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening lens description %q: %w", path, err)
	}
	defer file.Close()

	values, err := ParseLensData(file)
	if err != nil {
		return nil, fmt.Errorf("parsing lens description %q: %w", path, err)
	}
	return values, nil
}
