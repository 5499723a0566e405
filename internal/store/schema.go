package store

// schemaSQL defines the relational schema. Statements are idempotent so
// initialization can run on every open.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS companies (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	name       TEXT NOT NULL UNIQUE,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
	id          TEXT PRIMARY KEY,
	user_id     TEXT NOT NULL,
	company_id  TEXT NOT NULL REFERENCES companies(id),
	name        TEXT NOT NULL,
	description TEXT,
	created_at  DATETIME NOT NULL,
	updated_at  DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS logs (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	project_id TEXT NOT NULL REFERENCES projects(id),
	content    TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS tags (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	name       TEXT NOT NULL,
	created_at DATETIME NOT NULL,
	UNIQUE (user_id, name)
);

CREATE TABLE IF NOT EXISTS log_tags (
	id         TEXT PRIMARY KEY,
	log_id     TEXT NOT NULL REFERENCES logs(id) ON DELETE CASCADE,
	tag_id     TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	created_at DATETIME NOT NULL,
	UNIQUE (log_id, tag_id)
);

CREATE TABLE IF NOT EXISTS episodes (
	id           TEXT PRIMARY KEY,
	user_id      TEXT NOT NULL,
	log_id       TEXT NOT NULL UNIQUE REFERENCES logs(id) ON DELETE CASCADE,
	title        TEXT NOT NULL,
	impact_level TEXT NOT NULL CHECK (impact_level IN ('low', 'medium', 'high')),
	situation    TEXT NOT NULL,
	task         TEXT NOT NULL,
	action       TEXT NOT NULL,
	result       TEXT NOT NULL,
	docs_path    TEXT,
	created_at   DATETIME NOT NULL,
	updated_at   DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS episode_tags (
	id         TEXT PRIMARY KEY,
	episode_id TEXT NOT NULL REFERENCES episodes(id) ON DELETE CASCADE,
	tag_id     TEXT NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
	created_at DATETIME NOT NULL,
	UNIQUE (episode_id, tag_id)
);

CREATE INDEX IF NOT EXISTS idx_projects_user ON projects(user_id);
CREATE INDEX IF NOT EXISTS idx_logs_project ON logs(project_id);
CREATE INDEX IF NOT EXISTS idx_logs_user ON logs(user_id);
CREATE INDEX IF NOT EXISTS idx_episodes_user ON episodes(user_id);
`
