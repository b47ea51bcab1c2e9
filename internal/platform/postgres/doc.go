// Package postgres contains the PostgreSQL implementations of the store
// interfaces. Each store accepts a store.DBTX so the same implementation can
// run against a plain connection or inside a transaction, and a WithTx method
// that rebinds it to a caller-managed transaction.
package postgres
