package channel

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/Krimson/eeg-explorer/viewer/internal/dataset"
	"github.com/Krimson/eeg-explorer/viewer/internal/recording"
)

// DefaultCount is how many channels are preselected before the user chooses.
const DefaultCount = 5

const (
	XAxisTitle = "Time (s)"
	YAxisTitle = "Amplitude (µV)"
)

var ErrUnknownChannel = errors.New("channel not in table")

// State tells a plotted result apart from "nothing selected yet".
type State string

const (
	StateEmptySelection State = "empty_selection"
	StatePlotted        State = "plotted"
)

// Samples is a series of values; missing samples (NaN) encode as null.
type Samples []float64

func (s Samples) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	buf := make([]byte, 0, len(s)*8+2)
	buf = append(buf, '[')
	for i, v := range s {
		if i > 0 {
			buf = append(buf, ',')
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			buf = append(buf, "null"...)
			continue
		}
		buf = strconv.AppendFloat(buf, v, 'g', -1, 64)
	}
	return append(buf, ']'), nil
}

func (s *Samples) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Samples, len(raw))
	for i, v := range raw {
		if v == nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = *v
	}
	*s = out
	return nil
}

// Trace is one channel's series. X is the Time column.
type Trace struct {
	Name string  `json:"name"`
	X    Samples `json:"x"`
	Y    Samples `json:"y"`
}

// PlotSpec is a single chart with every trace on a shared time axis.
type PlotSpec struct {
	Title      string  `json:"title"`
	XAxisTitle string  `json:"x_axis_title"`
	YAxisTitle string  `json:"y_axis_title"`
	Traces     []Trace `json:"traces"`
}

// Result is the renderer output. Plot is nil in the empty-selection state.
type Result struct {
	State State     `json:"state"`
	Plot  *PlotSpec `json:"plot,omitempty"`
}

// DefaultSelection returns the first DefaultCount channels in file order.
func DefaultSelection(table *dataset.Table) []string {
	n := min(DefaultCount, len(table.Channels))
	out := make([]string, n)
	copy(out, table.Channels[:n])
	return out
}

// Title builds the chart title for a session.
func Title(s recording.Session) string {
	return fmt.Sprintf("EEG Signal – sub-%s, %s, %s", s.SubjectID, s.Condition.SessionCode(), s.Task.Code())
}

// Render builds one trace per requested channel. Duplicates are dropped and
// request order is kept. Every channel must be a column of the table; whether
// it has a catalog description does not matter here.
func Render(table *dataset.Table, channels []string, title string) (Result, error) {
	channels = dedupe(channels)
	if len(channels) == 0 {
		return Result{State: StateEmptySelection}, nil
	}

	plot := &PlotSpec{
		Title:      title,
		XAxisTitle: XAxisTitle,
		YAxisTitle: YAxisTitle,
		Traces:     make([]Trace, 0, len(channels)),
	}
	for _, ch := range channels {
		values, ok := table.Column(ch)
		if !ok {
			return Result{}, fmt.Errorf("%w: %q", ErrUnknownChannel, ch)
		}
		plot.Traces = append(plot.Traces, Trace{Name: ch, X: table.Time, Y: values})
	}

	return Result{State: StatePlotted, Plot: plot}, nil
}

func dedupe(channels []string) []string {
	seen := make(map[string]struct{}, len(channels))
	out := make([]string, 0, len(channels))
	for _, ch := range channels {
		if _, ok := seen[ch]; ok {
			continue
		}
		seen[ch] = struct{}{}
		out = append(out, ch)
	}
	return out
}
