// Package core provides the business logic for academic data ingestion.
//
// This package is the heart of the ingestion service, containing all domain
// logic independent of any transport. It is used by the HTTP handlers, the
// ingestctl CLI and tests without modification.
//
// # Pipeline
//
// [Service.Ingest] takes one uploaded file, a declared entity type and an
// async flag. Each call is tracked as a [Run]:
//
//	PENDING -> PROCESSING -> COMPLETED | PARTIALLY_COMPLETED | FAILED
//
// Every transition is a single [RunStore] write. In order the service:
//
//  1. Creates the run PENDING and moves it to PROCESSING.
//  2. Validates the upload with [Validator]. Invalid uploads fail the run.
//  3. Parses the file with the parser for its extension (see package
//     parser). A parse error or a file without records fails the run.
//  4. Dispatches every record to the graph through [Dispatcher], counting
//     failures. A failing record never stops the run.
//  5. Picks the terminal status, persists it and notifies.
//
// # Async Runs
//
// Async requests hold a [RunLimiter] slot for the lifetime of the run and
// return the PROCESSING snapshot immediately. Runs cannot be cancelled;
// [Service.WaitForRuns] drains them on shutdown.
//
// # Error Handling
//
// Callers always receive a run snapshot. The only errors [Service.Ingest]
// returns are failures to create the run record and [ErrTooManyRuns].
// Technical errors are mapped to coded user messages using [MapError].
package core
