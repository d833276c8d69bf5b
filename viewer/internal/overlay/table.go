package overlay

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"

	"github.com/Krimson/eeg-explorer/viewer/assets"
	"github.com/Krimson/eeg-explorer/viewer/internal/config"
)

// DefaultMarkerRadius is the highlight radius in reference-image pixels.
const DefaultMarkerRadius = 15

// markerAlpha is the opacity of a highlight (about 50%).
const markerAlpha = 0x80

// ImageSize is the size of the image the coordinates were calibrated on.
type ImageSize struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Table is the electrode catalog (label → colour) and the coordinate table
// (label → pixel). Both must list the same labels.
type Table struct {
	Image        ImageSize         `yaml:"image"`
	MarkerRadius int               `yaml:"marker_radius"`
	Electrodes   map[string]string `yaml:"electrodes"`
	Coordinates  map[string][2]int `yaml:"coordinates"`
}

// ParseTable decodes an electrode table from YAML.
func ParseTable(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse electrode table: %w", err)
	}
	if t.MarkerRadius == 0 {
		t.MarkerRadius = DefaultMarkerRadius
	}
	return &t, nil
}

// LoadTable reads the electrode table from path, or the embedded default
// when path is empty.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		t, err := ParseTable(assets.Electrodes)
		if err != nil {
			return nil, &config.ConfigurationError{Setting: "ELECTRODES_FILE", Err: err}
		}
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &config.ConfigurationError{Setting: "ELECTRODES_FILE", Err: err}
	}
	t, err := ParseTable(data)
	if err != nil {
		return nil, &config.ConfigurationError{Setting: "ELECTRODES_FILE", Err: err}
	}
	return t, nil
}

// LoadBaseImage decodes the reference brain image. A missing or unreadable
// file is a configuration error.
func LoadBaseImage(path string) (image.Image, error) {
	if path == "" {
		return nil, config.Errorf("BRAIN_IMAGE_PATH", "not set")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &config.ConfigurationError{Setting: "BRAIN_IMAGE_PATH", Err: err}
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, config.Errorf("BRAIN_IMAGE_PATH", "failed to decode %s: %v", path, err)
	}
	return img, nil
}

// parseColor accepts an SVG colour name or #rrggbb.
func parseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	if hex, ok := strings.CutPrefix(s, "#"); ok && len(hex) == 6 {
		v, err := strconv.ParseUint(hex, 16, 32)
		if err == nil {
			return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
		}
	}
	return color.RGBA{}, fmt.Errorf("unknown colour %q", s)
}
