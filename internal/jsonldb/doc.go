// Package jsonldb stores rows in local JSON files.
//
// # Documents
//
// [Document] keeps every row in one indented JSON array. Each write replaces
// the whole file through a temporary file and a rename, so a reader sees
// either the old or the new content.
//
// # Tables
//
// [Table] is an append-only JSONL (JSON Lines) file, one row per line, fully
// cached in memory. Tables are safe for concurrent use by multiple goroutines.
package jsonldb
