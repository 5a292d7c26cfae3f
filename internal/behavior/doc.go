// Package behavior provides reusable record behaviors. Each behavior only
// registers hooks in Setup; the hooks do the work when a mapper fires the
// matching lifecycle event.
//
//   - Authored stamps creation and update times and the acting identity.
//   - SeoURL keeps a "<id>-<slug>" column in step with a source column.
//   - UUIDKey assigns a UUID v7 primary key before insert.
package behavior
