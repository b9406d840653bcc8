// Package diag produces on-demand sync health reports. For each
// configured table it compares the local collection size against a
// count-only remote query and classifies the pair as synced, diff, or
// error. Table checks run in parallel and are fully independent, so
// one unreachable table never blanks the report for the rest.
package diag
