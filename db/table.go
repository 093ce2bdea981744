package db

import (
	"context"
	"fmt"

	"github.com/jrife/kaeru/schema"
	"github.com/jrife/kaeru/storage/document"
	"github.com/jrife/kaeru/storage/kv"
	"github.com/jrife/kaeru/storage/kv/keys"
	"github.com/jrife/kaeru/storage/kv/keys/composite"
	"github.com/jrife/kaeru/utils/log"
	"github.com/jrife/kaeru/utils/stream"
	"go.uber.org/zap"
)

// Table is the handle for one table. Every operation
// takes effect immediately unless ctx carries an active
// transaction started by Atomic on the same DB, in which
// case it is staged into that transaction.
type Table struct {
	db     *DB
	schema schema.Table
	prefix keys.Key
}

// Name returns the table name
func (table *Table) Name() string {
	return table.schema.Name
}

// Schema returns the table schema
func (table *Table) Schema() schema.Table {
	return table.schema
}

func (table *Table) key(key string) keys.Key {
	return composite.Compose(table.schema.Name, key)
}

func (table *Table) notFound(key string) error {
	return fmt.Errorf("%w: %q in table %q", ErrNotFound, key, table.schema.Name)
}

// Get reads a record. It returns ErrNotFound if there is
// no record with this key. Inside a transaction the record's
// version is pinned, so the transaction fails to commit and
// is retried if the record changes before then. A missing
// record is pinned as absent.
func (table *Table) Get(ctx context.Context, key string) (document.Document, error) {
	t := table.db.txn(ctx)
	result, err := table.db.store.Get(table.key(key))

	if err != nil {
		return nil, fmt.Errorf("could not read %q in table %q: %w", key, table.schema.Name, err)
	}

	if t != nil {
		t.check(result.Key, result.Version)
	}

	if !result.Exists() {
		return nil, table.notFound(key)
	}

	return table.decode(key, result.Value)
}

// List returns an iterator over every record in the table in
// store order. Records are read lazily as the iterator
// advances. Each call to List starts a new scan. Inside a
// transaction every record yielded is pinned like a Get.
func (table *Table) List(ctx context.Context) (*Records, error) {
	t := table.db.txn(ctx)
	iter, err := table.db.store.Scan(table.prefix)

	if err != nil {
		return nil, fmt.Errorf("could not scan table %q: %w", table.schema.Name, err)
	}

	logger := log.LoggerFromContext(ctx, table.db.logger).With(zap.String("table", table.schema.Name))

	return &Records{
		table: table,
		iter:  iter,
		stream: stream.Pipeline(
			kv.Stream(iter),
			pin(t),
			stream.Log(logger, "listed record", describeKV),
		),
	}, nil
}

// Set writes a record, replacing any existing record with the
// same key. value is not checked against the table schema.
func (table *Table) Set(ctx context.Context, key string, value document.Document) error {
	data, err := document.Marshal(value)

	if err != nil {
		return fmt.Errorf("could not encode %q in table %q: %w", key, table.schema.Name, err)
	}

	if t := table.db.txn(ctx); t != nil {
		t.set(table.key(key), data)

		return nil
	}

	if err := table.db.store.Set(table.key(key), data); err != nil {
		return fmt.Errorf("could not write %q in table %q: %w", key, table.schema.Name, err)
	}

	return nil
}

// Update merges partial into an existing record. Fields present
// in partial replace those of the record and all other fields
// are kept. Nested documents are replaced, not merged. Update
// returns ErrNotFound if the record does not exist.
//
// Outside a transaction Update retries the read-merge-write
// cycle until it commits without a concurrent write in between,
// or returns ctx.Err() once ctx is done.
func (table *Table) Update(ctx context.Context, key string, partial document.Document) error {
	if t := table.db.txn(ctx); t != nil {
		return table.merge(key, partial, func(k keys.Key, version kv.Version, value []byte) {
			t.check(k, version)
			t.set(k, value)
		})
	}

	logger := log.LoggerFromContext(ctx, table.db.logger).With(zap.String("table", table.schema.Name), zap.String("key", key))

	return table.db.retry(ctx, logger, func(attempt int) (kv.Batch, error) {
		var batch kv.Batch

		err := table.merge(key, partial, func(k keys.Key, version kv.Version, value []byte) {
			batch = table.db.store.Atomic().Check(k, version).Set(k, value)
		})

		return batch, err
	})
}

type stageFunc func(key keys.Key, version kv.Version, value []byte)

// merge reads the current record, merges partial into it and
// hands the result to stage along with the version it was
// based on
func (table *Table) merge(key string, partial document.Document, stage stageFunc) error {
	result, err := table.db.store.Get(table.key(key))

	if err != nil {
		return fmt.Errorf("could not read %q in table %q: %w", key, table.schema.Name, err)
	}

	if !result.Exists() {
		return table.notFound(key)
	}

	existing, err := table.decode(key, result.Value)

	if err != nil {
		return err
	}

	data, err := document.Marshal(document.Merge(existing, partial))

	if err != nil {
		return fmt.Errorf("could not encode %q in table %q: %w", key, table.schema.Name, err)
	}

	stage(result.Key, result.Version, data)

	return nil
}

// Delete deletes a record. Deleting a record that does not
// exist is not an error.
func (table *Table) Delete(ctx context.Context, key string) error {
	if t := table.db.txn(ctx); t != nil {
		t.delete(table.key(key))

		return nil
	}

	if err := table.db.store.Delete(table.key(key)); err != nil {
		return fmt.Errorf("could not delete %q in table %q: %w", key, table.schema.Name, err)
	}

	return nil
}

func (table *Table) decode(key string, data []byte) (document.Document, error) {
	doc, err := document.Unmarshal(data)

	if err != nil {
		return nil, fmt.Errorf("could not decode %q in table %q: %w", key, table.schema.Name, err)
	}

	return doc, nil
}
