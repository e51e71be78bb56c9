package sqlite

// Schema creates every table used by the relay. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	username      TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	room          TEXT,
	conn_id       TEXT,
	joined_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_login    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_users_conn ON users(conn_id);

CREATE TABLE IF NOT EXISTS messages (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	message_type TEXT NOT NULL CHECK (message_type IN ('group', 'private')),
	username     TEXT NOT NULL,
	room         TEXT,
	recipient    TEXT,
	text         TEXT NOT NULL,
	created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(username, recipient, created_at DESC);
`
