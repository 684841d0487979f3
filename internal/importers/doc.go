// Package importers parses reading-history files and Goodreads exports into
// normalized records.
//
// Two shapes come through here:
//
//   - Record: one row of a generic reading-history file (CSV or JSON),
//     produced by ReadCSV/ReadJSON with loose column-name matching. Used by
//     the import-books CLI command.
//   - GoodreadsRow: one row of a Goodreads library export, posted as JSON to
//     the import endpoints after the client parsed the CSV.
//
// Both keep dates as strings; source files carry them in assorted formats
// and the catalog does not interpret them.
package importers
