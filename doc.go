// Package sightline coordinates an interactive editing surface with an
// incremental source-analysis engine. Given a cursor position, a buffer
// snapshot, and project descriptors, it answers: what symbol is this,
// where else is it used (this file, this project, or this project plus a
// set of dependents), and what are all symbol occurrences in this file.
// Analysis results stay consistent with unsaved in-memory edits.
//
// # Three sources of truth
//
// The layer reconciles on-disk project configuration, in-memory edit
// buffers that have not been persisted, and the engine's configuration-
// keyed caches. The reconciliation mechanism is deliberately narrow:
// [Workspace.ResolveOptions] derives a fresh configuration per call and
// bumps its load time forward to the newest change time of any dirty
// buffer in the project's file set. Load time is part of the engine's
// cache key, so the bump invalidates exactly the affected project and
// nothing else, without any disk access.
//
// # Operations
//
//   - [Workspace.SymbolAt] — position to lexical symbol and span.
//   - [Workspace.FindUsagesAcrossProjects] — usages in the current
//     project and a supplied list of dependent projects, deduplicated.
//   - [Workspace.FindUsagesInFile] — usages scoped to one file.
//   - [Workspace.AllSymbolUsesInFile] — every occurrence in a file,
//     plus a lexer adapter bound to the file's text and flags.
//   - [Workspace.EachNavigableItemInProject] — cancellable bulk scan of
//     declarations across a project.
//   - [Workspace.InvalidateProject], [Workspace.ClearAllCaches] —
//     explicit cache control; the layer's only writes to engine state.
//
// # Error contract
//
// Code-intelligence features degrade to "no answer" rather than fail
// the host: engine errors are logged and collapsed to absent results at
// every public boundary. An absent result means "nothing found here".
package sightline
