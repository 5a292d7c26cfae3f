// Package types defines the public contracts of rowkeeper: the Record with
// its dirty tracking and event hooks, the cached table Schema, the Behavior
// and Mapper interfaces, the Database lifecycle, and the error taxonomy.
//
// Implementations live in internal packages; callers obtain a Database from
// pkg/sqlite and work with Records through a Mapper.
package types
