package db

import _ "embed"

// Schema is the full DDL applied by cmd/migrate. Statements are idempotent
// (create ... if not exists) so re-running a deploy is safe.
//
//go:embed schema.sql
var Schema string
