package database

const schema = `
-- String key-value pairs standing in for browser storage
CREATE TABLE preferences (
	pref_key TEXT PRIMARY KEY,
	pref_value TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
);
`

// migrations contains incremental schema changes
// Each migration is applied in order based on the current user_version
// migrations[0] is empty because version 0 uses the base schema
var migrations = []string{
	"",
}
