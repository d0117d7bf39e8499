// Package github implements the forge-side driven ports on top of the
// GitHub REST API: issue search, repository metadata lookup, and the
// rate-limited retry wrapper every remote call goes through.
package github
