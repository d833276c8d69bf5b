package dataset

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/Krimson/eeg-explorer/viewer/internal/recording"
)

// Stats считает результаты резолвера с момента запуска
type Stats struct {
	LocalHits      atomic.Int64
	RemoteFetches  atomic.Int64
	RemoteFailures atomic.Int64
	CacheWrites    atomic.Int64
}

// Snapshot возвращает счетчики для debug-эндпоинта
func (s *Stats) Snapshot() map[string]int64 {
	return map[string]int64{
		"local_hits":      s.LocalHits.Load(),
		"remote_fetches":  s.RemoteFetches.Load(),
		"remote_failures": s.RemoteFailures.Load(),
		"cache_writes":    s.CacheWrites.Load(),
	}
}

// Resolver выдает EEG-таблицы: сначала локальный кэш, затем удаленное хранилище.
// Блокировок нет: параллельные промахи по одному ключу могут скачать файл дважды.
type Resolver struct {
	cache   *LocalCache
	remote  RemoteStore
	timeout time.Duration
	log     zerolog.Logger
	stats   Stats
}

// NewResolver создает резолвер. remote может быть nil (только локальные файлы).
func NewResolver(cache *LocalCache, remote RemoteStore, timeout time.Duration, log zerolog.Logger) *Resolver {
	return &Resolver{
		cache:   cache,
		remote:  remote,
		timeout: timeout,
		log:     log,
	}
}

// Stats возвращает счетчики резолвера
func (r *Resolver) Stats() *Stats {
	return &r.stats
}

// StoreName возвращает имя удаленного хранилища или "none"
func (r *Resolver) StoreName() string {
	if r.remote == nil {
		return "none"
	}
	return r.remote.Name()
}

// Fetch возвращает таблицу по ключу. Локальным файлам доверяем как есть.
// При промахе делается ровно одна загрузка из хранилища; байты парсятся
// до записи в кэш, поэтому битый объект не сохраняется и не возвращается.
func (r *Resolver) Fetch(ctx context.Context, key recording.Key) (*Table, error) {
	table, ok, err := r.loadLocal(key)
	if err != nil {
		return nil, err
	}
	if ok {
		r.stats.LocalHits.Add(1)
		r.log.Debug().Str("key", key.String()).Msg("local cache hit")
		return table, nil
	}

	if r.remote == nil {
		return nil, &UnavailableError{
			Key:    key,
			Store:  r.StoreName(),
			Reason: ReasonNotFound,
			Err:    fmt.Errorf("no local file at %s and no remote store configured", r.cache.Path(key)),
		}
	}

	data, err := r.fetchRemote(ctx, key)
	if err != nil {
		r.stats.RemoteFailures.Add(1)
		return nil, err
	}
	r.stats.RemoteFetches.Add(1)

	table, err = ParseTable(bytes.NewReader(data))
	if err != nil {
		r.stats.RemoteFailures.Add(1)
		return nil, &UnavailableError{Key: key, Store: r.remote.Name(), Reason: ReasonMalformed, Err: err}
	}

	if err := r.cache.Write(key, data); err != nil {
		// Таблица валидна, запрос все равно успешен;
		// следующий запрос просто скачает файл снова
		r.log.Warn().Err(err).Str("key", key.String()).Msg("failed to cache dataset")
	} else {
		r.stats.CacheWrites.Add(1)
	}

	r.log.Info().
		Str("key", key.String()).
		Str("store", r.remote.Name()).
		Int("bytes", len(data)).
		Int("rows", table.Len()).
		Msg("dataset downloaded")
	return table, nil
}

func (r *Resolver) loadLocal(key recording.Key) (*Table, bool, error) {
	f, ok, err := r.cache.Open(key)
	if err != nil {
		return nil, false, &UnavailableError{Key: key, Store: "local", Reason: ReasonTransfer, Err: err}
	}
	if !ok {
		return nil, false, nil
	}
	defer f.Close()

	table, err := ParseTable(f)
	if err != nil {
		return nil, false, &UnavailableError{Key: key, Store: "local", Reason: ReasonMalformed, Err: err}
	}
	return table, true, nil
}

func (r *Resolver) fetchRemote(ctx context.Context, key recording.Key) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	data, err := r.remote.Fetch(ctx, key.Filename())
	if err == nil {
		return data, nil
	}

	reason := ReasonTransfer
	switch {
	case errors.Is(err, ErrObjectNotFound):
		reason = ReasonNotFound
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		reason = ReasonTimeout
	}

	r.log.Warn().
		Err(err).
		Str("key", key.String()).
		Str("store", r.remote.Name()).
		Str("reason", string(reason)).
		Msg("remote fetch failed")

	return nil, &UnavailableError{Key: key, Store: r.remote.Name(), Reason: reason, Err: err}
}

// Subjects возвращает каталог субъектов. Сначала сканируется локальная
// директория, удаленный список запрашивается только если она пуста.
// Ошибка получения списка логируется и считается пустым списком.
func (r *Resolver) Subjects(ctx context.Context) ([]string, error) {
	names, err := r.cache.List()
	if err != nil {
		return nil, err
	}
	if subjects := recording.SubjectsFromNames(names); len(subjects) > 0 {
		return subjects, nil
	}

	lister, ok := r.remote.(Lister)
	if !ok {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	names, err = lister.List(ctx)
	if err != nil {
		r.log.Warn().Err(err).Str("store", r.remote.Name()).Msg("remote catalog unavailable")
		return nil, nil
	}
	return recording.SubjectsFromNames(names), nil
}
