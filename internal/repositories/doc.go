// Package repositories implements SQLite persistence for dashboard state.
//
// Key Implementations:
//   - [SessionRepository] : key/value session state, including the persisted dashboard location
//   - [ResolutionRepository] : cache of assist candidates resolved to catalog entities
//   - [MutationLogRepository] : audit trail of bulk playlist mutations
//
// Each repository wraps a *sql.DB migrated by shared.RunMigrations.
package repositories
