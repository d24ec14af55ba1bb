// Package aggregates owns transaction boundaries for invariant-critical writes.
//
// Implementations compose table-level repos from internal/data/repos. The store must
// serialize concurrent writers of one document; TxRunner callers take the row lock
// through DocumentRepo.LockByID before touching chunks or versions.
package aggregates
