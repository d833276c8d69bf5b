package explorer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/rs/zerolog"

	"github.com/Krimson/eeg-explorer/viewer/internal/channel"
	"github.com/Krimson/eeg-explorer/viewer/internal/dataset"
	"github.com/Krimson/eeg-explorer/viewer/internal/overlay"
	"github.com/Krimson/eeg-explorer/viewer/internal/recording"
)

// ErrEmptySelection возвращается, когда график запрошен без каналов
var ErrEmptySelection = errors.New("no channels selected")

// Request - один выбор пользователя. Содержит все, что нужно конвейеру;
// между запросами ничего не хранится.
type Request struct {
	Subject   string   `json:"subject"`
	Condition string   `json:"condition"`
	Task      string   `json:"task"`
	Channels  []string `json:"channels,omitempty"`
	// ChannelsChosen = false, пока пользователь не трогал выбор каналов;
	// до этого действует выбор по умолчанию
	ChannelsChosen bool `json:"channels_chosen"`
}

// View - результат просмотра одной записи
type View struct {
	Key               recording.Key         `json:"key"`
	Subject           string                `json:"subject"`
	Condition         string                `json:"condition"`
	Task              string                `json:"task"`
	Rows              int                   `json:"rows"`
	AvailableChannels []string              `json:"available_channels"`
	SelectedChannels  []string              `json:"selected_channels"`
	Descriptions      []channel.Description `json:"descriptions"`
	Result            channel.Result        `json:"result"`
}

// Choice - один вариант выбора
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Options - фиксированные варианты выбора
type Options struct {
	Conditions []Choice            `json:"conditions"`
	Tasks      []Choice            `json:"tasks"`
	Electrodes []overlay.Electrode `json:"electrodes"`
}

// Service связывает селектор, резолвер и рендереры (Application Layer)
type Service struct {
	resolver   *dataset.Resolver
	layout     *overlay.Layout
	plotWidth  int
	plotHeight int
	log        zerolog.Logger
}

// NewService создает конвейер
func NewService(resolver *dataset.Resolver, layout *overlay.Layout, plotWidth, plotHeight int, log zerolog.Logger) *Service {
	return &Service{
		resolver:   resolver,
		layout:     layout,
		plotWidth:  plotWidth,
		plotHeight: plotHeight,
		log:        log,
	}
}

// Resolver возвращает резолвер датасетов для статистики
func (s *Service) Resolver() *dataset.Resolver {
	return s.resolver
}

// Subjects возвращает каталог субъектов или ErrNoDatasetsFound
func (s *Service) Subjects(ctx context.Context) ([]string, error) {
	subjects, err := s.resolver.Subjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list subjects: %w", err)
	}
	if len(subjects) == 0 {
		return nil, recording.ErrNoDatasetsFound
	}
	return subjects, nil
}

// Explore разрешает выбор, загружает таблицу и строит выбранные каналы
func (s *Service) Explore(ctx context.Context, req Request) (*View, error) {
	subjects, err := s.Subjects(ctx)
	if err != nil {
		return nil, err
	}

	condition, err := recording.ParseCondition(req.Condition)
	if err != nil {
		return nil, err
	}
	task, err := recording.ParseTask(req.Task)
	if err != nil {
		return nil, err
	}
	key, err := recording.Resolve(subjects, req.Subject, condition, task)
	if err != nil {
		return nil, err
	}

	table, err := s.resolver.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}

	selected := req.Channels
	if !req.ChannelsChosen {
		selected = channel.DefaultSelection(table)
	}

	session := recording.Session{SubjectID: req.Subject, Condition: condition, Task: task}
	result, err := channel.Render(table, selected, channel.Title(session))
	if err != nil {
		return nil, err
	}

	var plotted []string
	if result.Plot != nil {
		plotted = make([]string, 0, len(result.Plot.Traces))
		for _, tr := range result.Plot.Traces {
			plotted = append(plotted, tr.Name)
		}
	}

	s.log.Debug().
		Str("key", key.String()).
		Int("rows", table.Len()).
		Strs("channels", plotted).
		Msg("recording explored")

	return &View{
		Key:               key,
		Subject:           req.Subject,
		Condition:         condition.String(),
		Task:              task.String(),
		Rows:              table.Len(),
		AvailableChannels: table.Channels,
		SelectedChannels:  plotted,
		Descriptions:      channel.Describe(plotted),
		Result:            result,
	}, nil
}

// Plot строит график выбора и пишет его в PNG
func (s *Service) Plot(ctx context.Context, req Request, w io.Writer) (*View, error) {
	view, err := s.Explore(ctx, req)
	if err != nil {
		return nil, err
	}
	if view.Result.State == channel.StateEmptySelection {
		return view, ErrEmptySelection
	}
	if err := channel.RenderPNG(view.Result.Plot, s.plotWidth, s.plotHeight, w); err != nil {
		return view, err
	}
	return view, nil
}

// Electrodes возвращает электроды, доступные для подсветки
func (s *Service) Electrodes() []overlay.Electrode {
	return s.layout.Electrodes()
}

// Overlay возвращает изображение мозга с подсвеченными электродами
func (s *Service) Overlay(electrodes []string) (image.Image, error) {
	return s.layout.Annotate(electrodes)
}

// OverlayPNG пишет изображение с подсветкой в PNG
func (s *Service) OverlayPNG(electrodes []string, w io.Writer) error {
	img, err := s.Overlay(electrodes)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("failed to encode overlay: %w", err)
	}
	return nil
}

// Options возвращает варианты выбора
func (s *Service) Options() Options {
	opts := Options{Electrodes: s.layout.Electrodes()}
	for _, c := range recording.Conditions {
		opts.Conditions = append(opts.Conditions, Choice{Value: c.SessionCode(), Label: c.String()})
	}
	for _, t := range recording.Tasks {
		opts.Tasks = append(opts.Tasks, Choice{Value: t.Code(), Label: t.String()})
	}
	return opts
}
