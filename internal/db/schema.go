package db

import "fmt"

// schemaTemplate is the database schema initialization SQL. The HNSW
// index dimension is a deployment constant injected at init time; it
// must match the configured embedding dimension exactly.
const schemaTemplate = `
    -- ==========================================================================
    -- DREAM TABLE (indexed dream-analysis sessions)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS dream SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS title ON dream TYPE string;
    DEFINE FIELD IF NOT EXISTS project ON dream TYPE string;
    DEFINE FIELD IF NOT EXISTS summary ON dream TYPE string;
    -- TODO: Use set<string> when Go SDK supports CBOR tag 56 (v3.0 set type)
    DEFINE FIELD IF NOT EXISTS tags ON dream TYPE array<string>;
    DEFINE FIELD IF NOT EXISTS key_entities ON dream TYPE array<string>;
    -- Absent until the entry is backfilled; search treats that as "not a candidate"
    DEFINE FIELD IF NOT EXISTS embedding ON dream TYPE option<array<float>>;
    DEFINE FIELD IF NOT EXISTS indexed_at ON dream TYPE datetime DEFAULT time::now();

    DEFINE INDEX IF NOT EXISTS dream_project ON dream FIELDS project;
    DEFINE INDEX IF NOT EXISTS dream_title ON dream FIELDS project, title;
    DEFINE INDEX IF NOT EXISTS dream_embedding ON dream FIELDS embedding HNSW DIMENSION %d DIST COSINE TYPE F32;
    DEFINE ANALYZER IF NOT EXISTS dream_analyzer TOKENIZERS class FILTERS lowercase, ascii, snowball(english);
    DEFINE INDEX IF NOT EXISTS dream_summary_ft ON dream FIELDS summary FULLTEXT ANALYZER dream_analyzer BM25;

    -- ==========================================================================
    -- CONVERSATION / MESSAGE TABLES
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS conversation SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS title ON conversation TYPE string;
    DEFINE FIELD IF NOT EXISTS project ON conversation TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created_at ON conversation TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS updated_at ON conversation TYPE datetime DEFAULT time::now();

    DEFINE TABLE IF NOT EXISTS message SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS conversation ON message TYPE record<conversation>;
    DEFINE FIELD IF NOT EXISTS role ON message TYPE string;
    DEFINE FIELD IF NOT EXISTS content ON message TYPE string;
    DEFINE FIELD IF NOT EXISTS created_at ON message TYPE datetime DEFAULT time::now();
    DEFINE INDEX IF NOT EXISTS message_conversation ON message FIELDS conversation;

    -- ==========================================================================
    -- RESPONSE TABLE (streamed output, including partial saves)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS response SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS conversation ON response TYPE option<record<conversation>>;
    DEFINE FIELD IF NOT EXISTS content ON response TYPE string;
    DEFINE FIELD IF NOT EXISTS partial ON response TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS char_count ON response TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS model_id ON response TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS created_at ON response TYPE datetime DEFAULT time::now();

    -- ==========================================================================
    -- TOKEN_USAGE TABLE (per-turn accounting rows)
    -- ==========================================================================
    DEFINE TABLE IF NOT EXISTS token_usage SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS model_id ON token_usage TYPE string;
    DEFINE FIELD IF NOT EXISTS prompt_tokens ON token_usage TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS completion_tokens ON token_usage TYPE int DEFAULT 0;
    DEFINE FIELD IF NOT EXISTS interrupted ON token_usage TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS created_at ON token_usage TYPE datetime DEFAULT time::now();
    DEFINE INDEX IF NOT EXISTS token_usage_created ON token_usage FIELDS created_at;
`

// SchemaSQL renders the schema for the given embedding dimension.
func SchemaSQL(dimension int) string {
	return fmt.Sprintf(schemaTemplate, dimension)
}
