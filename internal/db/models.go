// Package db persists the exchange log to SQLite so a conversation survives
// restarts.
package db

// createdAt holds Unix nanoseconds so timestamps round-trip exactly.
const schema = `
	CREATE TABLE IF NOT EXISTS exchanges (
		id INTEGER PRIMARY KEY,
		origin TEXT NOT NULL,
		channel TEXT NOT NULL,
		content TEXT NOT NULL,
		insights TEXT NOT NULL DEFAULT '[]',
		createdAt INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS exchanges_createdAt ON exchanges(createdAt);
`
