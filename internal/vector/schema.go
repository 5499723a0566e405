package vector

import "fmt"

// schemaSQL returns the vector index schema for the configured
// embedding dimension.
func schemaSQL(dimension int) string {
	return fmt.Sprintf(`
    DEFINE TABLE IF NOT EXISTS episode_doc SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS content ON episode_doc TYPE string;
    DEFINE FIELD IF NOT EXISTS embedding ON episode_doc TYPE array<float>;
    DEFINE FIELD IF NOT EXISTS user_id ON episode_doc TYPE string;
    DEFINE FIELD IF NOT EXISTS log_id ON episode_doc TYPE string;
    DEFINE FIELD IF NOT EXISTS impact_level ON episode_doc TYPE string;
    DEFINE FIELD IF NOT EXISTS title ON episode_doc TYPE string;
    DEFINE FIELD IF NOT EXISTS updated ON episode_doc TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS episode_doc_user ON episode_doc FIELDS user_id;
    DEFINE INDEX IF NOT EXISTS episode_doc_embedding ON episode_doc FIELDS embedding HNSW DIMENSION %d DIST COSINE TYPE F32;
`, dimension)
}
