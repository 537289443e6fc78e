// Package notekeeper is the Composition Root for the notekeeper application.
//
// It connects the core business logic (the Notes Repository in pkg/core)
// with the storage adapters (pkg/adapters) using the Hexagonal Architecture
// pattern.
//
// Features:
//
//   - **One Store contract, three bindings**: process memory, a single-key
//     key-value blob (the browser localStorage shape) and a JSON or YAML file.
//   - **Safe file writes**: full rewrite through temp file + rename, guarded
//     by an in-process mutex and a cross-process lock file.
//   - **Self-healing loads**: corrupt data is quarantined and read as empty.
//   - **Optional history**: every write of the notes file committed to git.
//   - **Reactive**: external edits to the notes file surface as events.
//
// Usage:
//
//	svc, err := notekeeper.New("./notes.json",
//		notekeeper.WithLogger(logger),
//	)
//
//	note, err := svc.Create(ctx, notekeeper.NoteInput{Title: "Graphs", Category: "DSA"})
//	hits, err := svc.Search(ctx, notekeeper.Query{Text: "graph"})
package notekeeper
