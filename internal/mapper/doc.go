// Package mapper implements types.Mapper: CRUD between Records and the rows
// of one table, with lifecycle events fired around every write.
//
// Every write follows the same sequence: fire the before event, compute the
// column values from the schema and the record, run the statement, update
// the record state, fire the after event. Hooks run inside the operation, so
// a before hook may still assign columns that the write then includes, and
// an after hook may issue follow-up writes through Record.Save.
package mapper
