// Package core cleans and validates tabular species datasets.
//
// The package holds all domain logic independent of files, HTTP or storage.
// It can be driven by the CLI, the web transport, or tests without
// modification.
//
// # Pipeline
//
// A [Pipeline] runs one [Table] through a fixed sequence of stages:
//
//  1. [NormalizeColumns] maps display headers such as "Scientific name" onto
//     canonical names such as scientific_name.
//  2. A [Cleaner] drops empty rows, parses media lists, generates missing
//     sr_no values, fills defaults and removes duplicate species.
//  3. [AssignIDs] gives every record a UUID.
//  4. [CheckColumns] and a [Validator] check the batch against a
//     schema.Schema and the registered cross-field [Rule] set.
//  5. [NewResult] and [RenderAudit] produce the structured result and the
//     text audit report.
//
// The stages are strictly sequential. Nothing loops back and no state is
// shared between runs.
//
// # Fail-closed output
//
// A batch with any validation error produces a "fail" [Result] whose
// cleaned_data is empty. The audit report is rendered for every run.
//
// # Cross-field rules
//
// Media items are checked by rules registered at init time with
// [RegisterRule]:
//
//	core.RegisterRule(core.Rule{
//	    Key:         "available-needs-file",
//	    Description: `Items marked "Available" must reference a real file`,
//	    Check: func(item core.MediaItem) (string, bool) { ... },
//	})
//
// # Error Handling
//
// Fatal errors are mapped to user-friendly messages using [MapError]:
//
//   - FILE001-FILE007: Input problems (not found, format, size)
//   - SCH001-SCH002: Schema problems
//   - CAP001: sr_no range exhausted
//   - RUN001-RUN003: Concurrency limits, cancellation and timeouts
package core
