package utils

// ResourceSource describes the file a loader is decoding.
type ResourceSource interface {
	Name() string
	Size() int64
}
