// Package database ships the Postgres schema as golang-migrate migrations.
package database

import "embed"

// Migrations holds NNNNNN_name.up.sql / .down.sql pairs.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations that holds the files.
const MigrationsDir = "migrations"
