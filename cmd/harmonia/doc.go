// Command harmonia is the CLI for the library reconciler: it runs matching
// passes, reports match statistics, and manages configuration.
package main
