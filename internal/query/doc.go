// Package query is the fluent SQL builder and executor the mapper delegates
// to. Statements are parameterized; values are never interpolated, and map
// keys are emitted in sorted order so the same input always renders the
// same SQL.
//
//	b := query.New(db)
//	row, err := b.Select().From("articles").Where(query.Predicate{"id": 42}).Limit(1).Fetch()
//	res, err := b.Update("articles", values).Where(key).Execute()
//
// Updates and deletes without a predicate are refused with ErrUnrestricted.
package query
