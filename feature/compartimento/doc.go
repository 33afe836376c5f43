// Package compartimento implements the Cobalto room synchronization.
//
// A run pulls the full compartimento list from the source API and materializes it
// under the campus -> predio -> compartimento hierarchy, with unidade as an
// independent parent of each room.
//
// # Components
//
//   - ParseRecord: normalizes names and parses pavimento, capacidade and area.
//   - Resolver: get-or-create for campus, unidade and predio with per-run caches
//     preloaded from storage. A duplicate key on insert is recovered by re-reading.
//   - Upserter: drops rooms already written in the run (predio + lower-cased name)
//     and upserts the rest on (predioid, nome).
//   - Pipeline: fetch, optional archive, then everything else in one transaction.
//   - Archiver: stores the raw payload in object storage.
//
// # Case Sensitivity
//
// Parent keys compare exact normalized names, so "Central" and "central" are two
// campuses. The in-run room dedup key folds case. Both behaviors are kept as found
// in the data that feeds this sync. On MySQL lookups compare with BINARY, and the
// nome columns need a binary collation (utf8mb4_bin) for the unique indexes to agree.
//
// # Usage
//
//	p := compartimento.NewPipeline(client, db, logger, compartimento.Options{})
//	summary, err := p.Run(ctx)
package compartimento
