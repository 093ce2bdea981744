package db

import (
	"github.com/jrife/kaeru/storage/document"
	"github.com/jrife/kaeru/storage/kv"
	"github.com/jrife/kaeru/storage/kv/keys/composite"
	"github.com/jrife/kaeru/utils/stream"
	"go.uber.org/zap"
)

// Record is a record key and its value
type Record struct {
	Key   string
	Value document.Document
}

// Records iterates over the records of a table.
// It must only be used by one goroutine at a time.
type Records struct {
	table  *Table
	iter   kv.Iterator
	stream stream.Stream
	record Record
	err    error
}

// Next advances to the next record. It must be called
// once to advance to the first record. It returns false when
// there are no more records or if an error occurred.
func (records *Records) Next() bool {
	if records.err != nil {
		return false
	}

	if !records.stream.Next() {
		records.record = Record{}
		records.err = records.stream.Error()

		return false
	}

	pair := records.stream.Value().(kv.KV)
	key, err := composite.RecordKey(pair.Key)

	if err != nil {
		records.err = err

		return false
	}

	value, err := records.table.decode(key, pair.Value)

	if err != nil {
		records.err = err

		return false
	}

	records.record = Record{Key: key, Value: value}

	return true
}

// Record returns the current record
func (records *Records) Record() Record {
	return records.record
}

// Error returns the error that stopped iteration, if any
func (records *Records) Error() error {
	return records.err
}

// Close releases the underlying store iterator
func (records *Records) Close() error {
	return records.iter.Close()
}

// All reads every remaining record and closes the iterator
func (records *Records) All() ([]Record, error) {
	defer records.Close()

	all := []Record{}

	for records.Next() {
		all = append(all, records.Record())
	}

	return all, records.Error()
}

// pin registers a check for every pair passing through
// the stream. It returns nil if t is nil.
func pin(t *txn) stream.Processor {
	if t == nil {
		return nil
	}

	return func(s stream.Stream) stream.Stream {
		return &pinnedStream{Stream: s, txn: t}
	}
}

type pinnedStream struct {
	stream.Stream
	txn *txn
}

func (s *pinnedStream) Next() bool {
	if !s.Stream.Next() {
		return false
	}

	pair := s.Value().(kv.KV)
	s.txn.check(pair.Key, pair.Version)

	return true
}

func describeKV(value interface{}) []zap.Field {
	pair := value.(kv.KV)

	return []zap.Field{zap.ByteString("key", pair.Key)}
}
