// Package buncache provides a cache.Store backed by SQLite through the
// Bun ORM. It is the default durable local store for desktop and
// single-node deployments: one row per collection holding its JSON
// array, plus a meta table for the initialized gate and last-sync
// metadata.
//
// Open a database with the sqliteshim driver and pass it in:
//
//	sqldb, _ := sql.Open(sqliteshim.ShimName, "file:syncline.db")
//	db := bun.NewDB(sqldb, sqlitedialect.New())
//	store := buncache.New(db)
package buncache
