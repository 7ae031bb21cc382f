package storage

import "io"

// BlobStore holds course materials. Keys are slash-separated paths scoped
// by course, e.g. "courses/<id>/syllabus.pdf".
type BlobStore interface {
	Put(key string, r io.Reader) (string, error) // returns canonical key
	Get(key string) (io.ReadCloser, error)
	List(prefix string) ([]string, error)
	Delete(key string) error
}
