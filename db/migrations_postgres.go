package db

// postgresMigrations is the ordered schema history. Append new
// migrations with the next version; never edit an applied one.
var postgresMigrations = []Migration{
	{
		Version: 1,
		Name:    "create_contents_table",
		Up: `
			CREATE TABLE IF NOT EXISTS contents (
				id UUID PRIMARY KEY,
				user_phone TEXT NOT NULL,
				url TEXT NOT NULL,
				platform TEXT NOT NULL,
				title TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				category TEXT NOT NULL DEFAULT 'other',
				tags JSONB NOT NULL DEFAULT '[]',
				ai_summary TEXT NOT NULL DEFAULT '',
				media_url TEXT,
				thumbnail_url TEXT,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
				updated_at TIMESTAMP
			);
		`,
		Down: `DROP TABLE IF EXISTS contents;`,
	},
	{
		Version: 2,
		Name:    "create_contents_indexes",
		Up: `
			CREATE INDEX IF NOT EXISTS idx_contents_user_phone ON contents(user_phone);
			CREATE INDEX IF NOT EXISTS idx_contents_category ON contents(category);
			CREATE INDEX IF NOT EXISTS idx_contents_created_at ON contents(created_at DESC);
		`,
		Down: `
			DROP INDEX IF EXISTS idx_contents_user_phone;
			DROP INDEX IF EXISTS idx_contents_category;
			DROP INDEX IF EXISTS idx_contents_created_at;
		`,
	},
	{
		Version: 3,
		Name:    "add_snapshot_path",
		Up:      `ALTER TABLE contents ADD COLUMN IF NOT EXISTS snapshot_path TEXT NOT NULL DEFAULT '';`,
		Down:    `ALTER TABLE contents DROP COLUMN IF EXISTS snapshot_path;`,
	},
}
