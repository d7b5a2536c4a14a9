package store

import (
	"context"
	"database/sql"
	"fmt"
)

const llmEventsTable = "llm_request_events"

// LLM event columns, in scan order.
const (
	colID           = "id"
	colTimestamp    = "timestamp"
	colRunID        = "run_id"
	colProvider     = "provider"
	colModel        = "model"
	colPurpose      = "purpose"
	colInputTokens  = "input_tokens"
	colOutputTokens = "output_tokens"
	colLatencyMs    = "latency_ms"
	colSuccess      = "success"
	colErrorMessage = "error_message"
	colRequestBody  = "request_body"
	colResponseBody = "response_body"
)

var llmEventColumns = []string{
	colID, colTimestamp, colRunID, colProvider, colModel, colPurpose,
	colInputTokens, colOutputTokens, colLatencyMs, colSuccess,
	colErrorMessage, colRequestBody, colResponseBody,
}

// schema is applied in order on every open; each statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS ` + llmEventsTable + ` (
	` + colID + ` INTEGER PRIMARY KEY AUTOINCREMENT,
	` + colTimestamp + ` INTEGER NOT NULL,
	` + colRunID + ` TEXT NOT NULL DEFAULT '',
	` + colProvider + ` TEXT NOT NULL,
	` + colModel + ` TEXT NOT NULL,
	` + colPurpose + ` TEXT NOT NULL,
	` + colInputTokens + ` INTEGER NOT NULL DEFAULT 0,
	` + colOutputTokens + ` INTEGER NOT NULL DEFAULT 0,
	` + colLatencyMs + ` INTEGER NOT NULL DEFAULT 0,
	` + colSuccess + ` BOOLEAN NOT NULL,
	` + colErrorMessage + ` TEXT NOT NULL DEFAULT '',
	` + colRequestBody + ` TEXT NOT NULL DEFAULT '',
	` + colResponseBody + ` TEXT NOT NULL DEFAULT ''
)`,
	`CREATE INDEX IF NOT EXISTS llm_request_events_run_id ON ` + llmEventsTable + ` (` + colRunID + `)`,
	`CREATE INDEX IF NOT EXISTS llm_request_events_purpose ON ` + llmEventsTable + ` (` + colPurpose + `)`,
}

// migrate creates the event table and its indexes when missing.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt, err)
		}
	}
	return nil
}
