package kv

import (
	"github.com/jrife/kaeru/utils/stream"
)

// Stream wraps the iterator in a stream
// whose values are KV instances
func Stream(iter Iterator) stream.Stream {
	return &kvStream{iter}
}

type kvStream struct {
	iter Iterator
}

func (stream *kvStream) Next() bool {
	return stream.iter.Next()
}

func (stream *kvStream) Value() interface{} {
	return stream.iter.KV()
}

func (stream *kvStream) Error() error {
	return stream.iter.Error()
}

// Drain reads every remaining pair from the iterator
// and closes it
func Drain(iter Iterator) ([]KV, error) {
	defer iter.Close()

	kvs := []KV{}

	for iter.Next() {
		kvs = append(kvs, iter.KV())
	}

	return kvs, iter.Error()
}
