package dataset

import (
	"context"
	"errors"
	"fmt"
)

// ErrObjectNotFound возвращается (обернутой) из RemoteStore, когда объекта
// нет в хранилище.
var ErrObjectNotFound = errors.New("object not found")

// RemoteStore - хранилище объектов только для чтения, ключ - имя файла.
// Используется только при промахе локального кэша.
type RemoteStore interface {
	// Name - имя хранилища для логов и уведомлений
	Name() string
	Fetch(ctx context.Context, name string) ([]byte, error)
}

// Lister реализуют хранилища, умеющие перечислять объекты.
// Используется для каталога субъектов при пустой локальной директории.
type Lister interface {
	List(ctx context.Context) ([]string, error)
}

// Writer реализуют хранилища, которые заполняет команда seed
type Writer interface {
	Put(ctx context.Context, name string, data []byte) error
}

// ObjectTooLargeError возвращается, когда объект больше лимита размера
type ObjectTooLargeError struct {
	Name  string
	Limit int64
}

func (e *ObjectTooLargeError) Error() string {
	return fmt.Sprintf("object %s exceeds %d bytes", e.Name, e.Limit)
}
