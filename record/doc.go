// Package record defines the typed business entities managed by the sync
// engine, one struct per collection, all sharing the id and organization
// trait through the Record interface.
package record
