// Package main hosts the mediaorg CLI entrypoint and command graph.
//
// The root command organizes a source tree into a dated target tree; history
// and config subcommands inspect the run journal and scaffold configuration.
// Configuration resolution, logger setup, and report rendering live here so
// the internal packages stay free of terminal concerns.
package main
