// Package database owns the local sqlite file.
//
//	database/
//	├── database.go   # connection setup and migrations
//	└── activity/     # activity log repository
//
// The sessions table is created by the auth package on the same connection
// because scs expects its own schema.
package database
