// Package artifacts reads and writes the pipeline's durable intermediate
// files. Each stage is the sole writer of its artifact; downstream stages
// open artifacts read-only. Column order is part of each schema's
// contract.
package artifacts
