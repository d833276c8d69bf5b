package explorer

import (
	"errors"
	"fmt"

	"github.com/Krimson/eeg-explorer/viewer/internal/channel"
	"github.com/Krimson/eeg-explorer/viewer/internal/dataset"
	"github.com/Krimson/eeg-explorer/viewer/internal/overlay"
	"github.com/Krimson/eeg-explorer/viewer/internal/recording"
)

// Kind - тип уведомления для пользователя
type Kind string

const (
	KindNoDatasets         Kind = "no_datasets_found"
	KindDatasetUnavailable Kind = "dataset_unavailable"
	KindUnknownSubject     Kind = "unknown_subject"
	KindInvalidSelection   Kind = "invalid_selection"
	KindEmptySelection     Kind = "empty_selection"
	KindInternal           Kind = "internal"
)

// Notice - то, что видит пользователь вместо ошибки
type Notice struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	// Reason заполняется для dataset_unavailable
	Reason dataset.Reason `json:"reason,omitempty"`
}

// NoticeFor превращает ошибку конвейера в уведомление. Внутренние причины
// в сообщение не попадают, err логирует вызывающий код.
func NoticeFor(err error) Notice {
	var unavailable *dataset.UnavailableError

	switch {
	case errors.Is(err, recording.ErrNoDatasetsFound):
		return Notice{
			Kind:    KindNoDatasets,
			Message: "No EEG datasets found. Add sub-*.csv files to the data directory or configure a content store.",
		}
	case errors.As(err, &unavailable):
		return Notice{
			Kind:    KindDatasetUnavailable,
			Message: unavailableMessage(unavailable),
			Reason:  unavailable.Reason,
		}
	case errors.Is(err, recording.ErrUnknownSubject):
		return Notice{Kind: KindUnknownSubject, Message: "Unknown subject. Pick one from the subject list."}
	case errors.Is(err, ErrEmptySelection), errors.Is(err, channel.ErrNothingToDraw):
		return Notice{Kind: KindEmptySelection, Message: "Select at least one channel to plot."}
	case errors.Is(err, recording.ErrInvalidCondition):
		return Notice{Kind: KindInvalidSelection, Message: "Unknown condition. Use Normal Sleep (NS) or Sleep Deprived (SD)."}
	case errors.Is(err, recording.ErrInvalidTask):
		return Notice{Kind: KindInvalidSelection, Message: "Unknown task. Use Eyes Open or Eyes Closed."}
	case errors.Is(err, channel.ErrUnknownChannel):
		return Notice{Kind: KindInvalidSelection, Message: "A selected channel is not part of this recording."}
	case errors.Is(err, overlay.ErrUnknownElectrode):
		return Notice{Kind: KindInvalidSelection, Message: "A selected electrode has no position on the brain image."}
	default:
		return Notice{Kind: KindInternal, Message: "Something went wrong. Please try again."}
	}
}

func unavailableMessage(e *dataset.UnavailableError) string {
	store := e.Store
	if store == "" || store == "none" {
		store = "the content store"
	}

	switch e.Reason {
	case dataset.ReasonNotFound:
		return fmt.Sprintf("Dataset %s was not found locally or in %s.", e.Key.Filename(), store)
	case dataset.ReasonTimeout:
		return fmt.Sprintf("Dataset %s could not be downloaded from %s in time. Please try again.", e.Key.Filename(), store)
	case dataset.ReasonMalformed:
		return fmt.Sprintf("Dataset %s could not be read: the file is not a valid EEG table.", e.Key.Filename())
	default:
		return fmt.Sprintf("Dataset %s could not be downloaded from %s.", e.Key.Filename(), store)
	}
}
