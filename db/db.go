package db

import (
	"context"
	"fmt"

	"github.com/jrife/kaeru/schema"
	"github.com/jrife/kaeru/storage/kv"
	"github.com/jrife/kaeru/storage/kv/keys/composite"
	"github.com/jrife/kaeru/utils/log"
	"github.com/jrife/kaeru/utils/uuid"
	"go.uber.org/zap"
)

// Options configures a DB
type Options struct {
	// Tables declares every table of the database
	Tables schema.Declaration
	// Logger is used for debug logging. Defaults to a
	// no-op logger.
	Logger *zap.Logger
}

// DB is a set of tables stored in one kv.Store
type DB struct {
	store  kv.Store
	schema *schema.Schema
	tables map[string]*Table
	logger *zap.Logger
}

// Open builds a DB on top of store. It creates one Table
// handle per declared table. Open fails if the declaration
// is invalid.
func Open(store kv.Store, options Options) (*DB, error) {
	s, err := schema.Parse(options.Tables)

	if err != nil {
		return nil, fmt.Errorf("could not parse schema: %w", err)
	}

	logger := options.Logger

	if logger == nil {
		logger = zap.NewNop()
	}

	db := &DB{
		store:  store,
		schema: s,
		tables: make(map[string]*Table, len(options.Tables)),
		logger: logger,
	}

	for _, name := range s.Tables() {
		tableSchema, _ := s.Table(name)

		db.tables[name] = &Table{
			db:     db,
			schema: tableSchema,
			prefix: composite.TablePrefix(name),
		}
	}

	logger.Debug("opened database", zap.Strings("tables", s.Tables()))

	return db, nil
}

// Table returns the handle for the named table
func (db *DB) Table(name string) (*Table, error) {
	table, ok := db.tables[name]

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchTable, name)
	}

	return table, nil
}

// MustTable is like Table but panics if the table
// was not declared
func (db *DB) MustTable(name string) *Table {
	table, err := db.Table(name)

	if err != nil {
		panic(err)
	}

	return table
}

// Tables returns the names of all tables in ascending order
func (db *DB) Tables() []string {
	return db.schema.Tables()
}

// Schema returns the parsed schema
func (db *DB) Schema() *schema.Schema {
	return db.schema
}

// Store returns the underlying store. Writes made through
// it bypass any active transaction.
func (db *DB) Store() kv.Store {
	return db.store
}

// Close closes the underlying store
func (db *DB) Close() error {
	return db.store.Close()
}

// Atomic runs body as a single all-or-nothing transaction.
// Table operations called with the context passed to body are
// staged and committed together once body returns nil. If the
// commit is rejected because a record read by body has since
// changed, body runs again with a fresh transaction. An error
// returned by body aborts the transaction: nothing is written
// and the error is returned as is.
//
// Atomic returns ErrNestedTransaction if ctx already carries
// an active transaction for this DB. Conflicts are retried
// without limit, so Atomic returns ctx.Err() if ctx is done
// before an attempt starts.
func (db *DB) Atomic(ctx context.Context, body func(ctx context.Context) error) error {
	if active := db.txn(ctx); active != nil {
		return ErrNestedTransaction
	}

	ctx = log.WithFields(ctx, zap.String("txn", uuid.MustUUID()))
	logger := log.LoggerFromContext(ctx, db.logger)

	return db.retry(ctx, logger, func(attempt int) (kv.Batch, error) {
		t := newTxn(db)
		err := runBody(withTxn(ctx, t), t, body)

		if err != nil {
			return nil, err
		}

		return t.batch(db.store), nil
	})
}

// runBody closes the transaction once body returns or panics
func runBody(ctx context.Context, t *txn, body func(ctx context.Context) error) error {
	defer t.close()

	return body(ctx)
}
