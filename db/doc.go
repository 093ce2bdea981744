// Package db organizes records of a sorted key-value store
// into named tables and runs atomic multi-record transactions
// over them using optimistic concurrency control.
//
// Each declared table gets a Table handle offering Get, List,
// Set, Update and Delete. Called with a plain context these
// operations take effect immediately. Called with the context
// handed to the body of DB.Atomic they are staged instead:
// reads pin the version of every record they observe and
// writes are buffered. When the body returns, the staged batch
// is committed all at once. If any pinned record changed in
// the meantime the commit is rejected, the batch is thrown away
// and the body runs again from scratch against fresh data.
//
//   err := database.Atomic(ctx, func(ctx context.Context) error {
//     server, err := servers.Get(ctx, "demo")
//
//     if err != nil {
//       return err
//     }
//
//     return servers.Update(ctx, "demo", document.Document{
//       "user_count": server["user_count"].(float64) + 1,
//     })
//   })
//
// Because the body may run more than once it must not have
// side effects outside the database. There is no retry limit.
// A body that keeps losing to concurrent writers keeps running
// until it wins or its context is canceled.
//
// Transactions are bound to contexts rather than to the DB,
// so one DB may be shared by many goroutines as long as each
// flow passes its own context. A context must not be shared by
// goroutines while a transaction is active on it.
package db
