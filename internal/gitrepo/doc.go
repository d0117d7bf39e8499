// Package gitrepo implements the local version-control ports on top of
// libgit2: cloning remote repositories and walking commit history in
// oldest-first time order.
package gitrepo
