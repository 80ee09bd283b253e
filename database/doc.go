// Package database opens the Bun handle behind the repositories: it builds
// SQLite, PostgreSQL and MySQL connections from Config, creates the member,
// team and item tables with their foreign keys, classifies driver errors and
// installs the query logging, slow query and metrics hooks.
package database
