// Package domain holds the pipeline's pure data model: search queries and
// date ranges, issue and repository records, mined signals, and the merged
// output row. Domain types have no dependencies on adapters or I/O.
package domain
