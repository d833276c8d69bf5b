package overlay

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"slices"

	"golang.org/x/image/draw"

	"github.com/Krimson/eeg-explorer/viewer/internal/config"
)

var ErrUnknownElectrode = errors.New("unknown electrode")

// Electrode is one highlightable sensor position.
type Electrode struct {
	Label string `json:"label"`
	Color string `json:"color"`
	X     int    `json:"x"`
	Y     int    `json:"y"`

	rgba color.RGBA
}

// Layout is a validated electrode table bound to its base image. It is
// read-only after construction and safe for concurrent use.
type Layout struct {
	base       image.Image
	radius     int
	electrodes map[string]Electrode
	labels     []string
}

// NewLayout validates the table against the base image. The electrode
// catalog and coordinate table must list exactly the same labels, every
// colour must be known and every marker centre must lie inside the image.
func NewLayout(t *Table, base image.Image) (*Layout, error) {
	if base == nil {
		return nil, config.Errorf("BRAIN_IMAGE_PATH", "no base image")
	}
	if t.MarkerRadius <= 0 {
		return nil, config.Errorf("ELECTRODES_FILE", "marker radius must be positive, got %d", t.MarkerRadius)
	}

	b := base.Bounds()
	if t.Image.Width != 0 || t.Image.Height != 0 {
		if t.Image.Width != b.Dx() || t.Image.Height != b.Dy() {
			return nil, config.Errorf("BRAIN_IMAGE_PATH",
				"image is %dx%d but electrode coordinates are calibrated for %dx%d",
				b.Dx(), b.Dy(), t.Image.Width, t.Image.Height)
		}
	}

	for label := range t.Coordinates {
		if _, ok := t.Electrodes[label]; !ok {
			return nil, config.Errorf("ELECTRODES_FILE", "coordinate for %s has no catalog entry", label)
		}
	}

	l := &Layout{
		base:       base,
		radius:     t.MarkerRadius,
		electrodes: make(map[string]Electrode, len(t.Electrodes)),
	}
	for label, colorName := range t.Electrodes {
		xy, ok := t.Coordinates[label]
		if !ok {
			return nil, config.Errorf("ELECTRODES_FILE", "electrode %s has no coordinate", label)
		}
		rgba, err := parseColor(colorName)
		if err != nil {
			return nil, config.Errorf("ELECTRODES_FILE", "electrode %s: %v", label, err)
		}
		p := image.Pt(b.Min.X+xy[0], b.Min.Y+xy[1])
		if !p.In(b) {
			return nil, config.Errorf("ELECTRODES_FILE", "electrode %s at %v is outside the image %v", label, xy, b.Size())
		}

		l.electrodes[label] = Electrode{Label: label, Color: colorName, X: xy[0], Y: xy[1], rgba: rgba}
		l.labels = append(l.labels, label)
	}
	slices.Sort(l.labels)

	return l, nil
}

// Electrodes returns the accepted electrode set, sorted by label.
func (l *Layout) Electrodes() []Electrode {
	out := make([]Electrode, 0, len(l.labels))
	for _, label := range l.labels {
		out = append(out, l.electrodes[label])
	}
	return out
}

// Annotate highlights the selected electrodes with semi-transparent discs.
// An empty selection returns the base image itself. Otherwise the base is
// copied, the discs are painted on a transparent overlay and the overlay is
// composited over the copy; pixels outside the discs keep their values.
func (l *Layout) Annotate(selected []string) (image.Image, error) {
	if len(selected) == 0 {
		return l.base, nil
	}

	markers := make([]Electrode, 0, len(selected))
	for _, label := range selected {
		e, ok := l.electrodes[label]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownElectrode, label)
		}
		markers = append(markers, e)
	}

	b := l.base.Bounds()
	out := cloneImage(l.base)

	layer := image.NewNRGBA(b)
	mask := image.NewAlpha(b)
	for _, e := range markers {
		fill := color.NRGBA{R: e.rgba.R, G: e.rgba.G, B: e.rgba.B, A: markerAlpha}
		l.paintDisc(layer, mask, image.Pt(b.Min.X+e.X, b.Min.Y+e.Y), fill)
	}

	draw.DrawMask(out, b, layer, b.Min, mask, b.Min, draw.Over)
	return out, nil
}

// paintDisc replaces the pixels of a filled circle on the overlay layer, so
// overlapping markers do not stack.
func (l *Layout) paintDisc(layer *image.NRGBA, mask *image.Alpha, c image.Point, fill color.NRGBA) {
	r := l.radius
	clip := image.Rect(c.X-r, c.Y-r, c.X+r+1, c.Y+r+1).Intersect(layer.Bounds())
	for y := clip.Min.Y; y < clip.Max.Y; y++ {
		for x := clip.Min.X; x < clip.Max.X; x++ {
			dx, dy := x-c.X, y-c.Y
			if dx*dx+dy*dy > r*r {
				continue
			}
			layer.SetNRGBA(x, y, fill)
			mask.SetAlpha(x, y, color.Alpha{A: 0xff})
		}
	}
}

// cloneImage copies img without converting its pixels, so straight-alpha
// colours of partly transparent regions survive exactly. Other image types
// are copied into NRGBA.
func cloneImage(img image.Image) draw.Image {
	b := img.Bounds()
	switch src := img.(type) {
	case *image.NRGBA:
		out := image.NewNRGBA(b)
		copyRows(out.Pix, out.Stride, src.Pix[src.PixOffset(b.Min.X, b.Min.Y):], src.Stride, 4*b.Dx(), b.Dy())
		return out
	case *image.RGBA:
		out := image.NewRGBA(b)
		copyRows(out.Pix, out.Stride, src.Pix[src.PixOffset(b.Min.X, b.Min.Y):], src.Stride, 4*b.Dx(), b.Dy())
		return out
	}

	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			out.Set(x, y, img.At(x, y))
		}
	}
	return out
}

func copyRows(dst []byte, dstStride int, src []byte, srcStride, rowBytes, rows int) {
	for y := 0; y < rows; y++ {
		copy(dst[y*dstStride:y*dstStride+rowBytes], src[y*srcStride:y*srcStride+rowBytes])
	}
}
