package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	user_name            TEXT PRIMARY KEY,
	email_address        TEXT NOT NULL,
	summary_pref         TEXT NOT NULL DEFAULT 'none',
	trigger_pref         TEXT NOT NULL DEFAULT 'none',
	closed_display_count INTEGER NOT NULL DEFAULT 10 CHECK(closed_display_count > 0),
	password_hash        TEXT NOT NULL DEFAULT '',
	created_at           DATETIME NOT NULL,
	updated_at           DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS tasks (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	owner        TEXT NOT NULL REFERENCES users(user_name) ON DELETE CASCADE,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	trigger_date DATETIME,
	status       TEXT NOT NULL DEFAULT 'open' CHECK(status IN ('open', 'scheduled', 'closed')),
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_owner ON tasks(owner);
CREATE INDEX IF NOT EXISTS idx_tasks_owner_status ON tasks(owner, status);
CREATE INDEX IF NOT EXISTS idx_tasks_trigger_date ON tasks(trigger_date);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
	{
		version: 2,
		sql: `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	user_name  TEXT NOT NULL REFERENCES users(user_name) ON DELETE CASCADE,
	token_hash TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL,
	expires_at DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_name);
CREATE INDEX IF NOT EXISTS idx_sessions_expires ON sessions(expires_at);

INSERT INTO schema_version (version) VALUES (2);
`,
	},
	{
		version: 3,
		sql: `
CREATE TABLE IF NOT EXISTS notifications (
	id        TEXT PRIMARY KEY,
	user_name TEXT NOT NULL REFERENCES users(user_name) ON DELETE CASCADE,
	task_id   INTEGER,
	kind      TEXT NOT NULL CHECK(kind IN ('weekly_summary', 'task_trigger')),
	subject   TEXT NOT NULL,
	sent_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_name);
CREATE INDEX IF NOT EXISTS idx_notifications_task ON notifications(task_id);

INSERT INTO schema_version (version) VALUES (3);
`,
	},
}
