// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Pipeline stages depend on these interfaces, and the github and gitrepo
// adapters implement them.
//
// # Required Interfaces
//
//   - IssueSearcher: date-bounded issue search against the forge API
//   - RepositoryFetcher: per-repository metadata lookup
//   - Cloner: materializes a remote repository as a local working copy
//   - HistoryOpener: opens a local repository for commit iteration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
