// Package diag defines the diagnostic model shared by the code generator,
// the build pipeline and the CLI.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity – Info, Warning or Error (severity.go).
//   - Code – numeric identifier with a stable string form such as CGN3001
//     (codes.go). Code generation owns the 3000 range, unit loading the 4000
//     range and project configuration the 5000 range.
//   - Message – short, actionable text.
//   - Primary – the source.Span the finding points at; HasSpan is false when
//     the AST carried no position.
//   - Notes – optional secondary spans.
//
// # Emitting diagnostics
//
// Producers talk to a Reporter. ReportError / ReportWarning return a
// ReportBuilder that can collect notes before Emit. BagReporter stores into a
// Bag, DedupReporter filters repeats.
//
// Rendering lives in internal/diagfmt; this package performs no IO.
package diag
