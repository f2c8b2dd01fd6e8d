// Package core loads CSV exports and filters them.
//
// This package holds all domain logic independent of any transport. The web
// server and the batch CLI both call into it.
//
// # Pipeline
//
// A request is a pure recomputation from the immutable source table:
//
//	t, err := core.Load(data)         // encoding fallback, type inference
//	t = core.ParseDates(t)            // last_seen, bdate -> dates
//	res := core.Run(t, sel, display)  // filter steps, summary, display columns
//	exp, err := core.ExportTable(res.Table, core.FormatCSV)
//
// Filter steps are declared in [Steps]. Every step is skipped when its column
// is missing or its selection is unset, so the zero [Selections] returns the
// source table unchanged.
//
// # Datasets
//
// [Service] keeps the source table of each upload in a bounded, expiring
// [Store] so the browser can re-run the pipeline on every interaction.
// Nothing is persisted.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - FILE001-FILE006: File errors (size, format, encoding, compression)
//   - DS001-DS002: Dataset errors (expired, unknown export format)
//   - UPL002-UPL005: Upload errors (busy, cancelled, timeout)
package core
