// Package postgres contains the PostgreSQL implementations of the store
// interfaces. All implementations work against store.DBTX so they run
// unchanged inside or outside a transaction.
package postgres
