package types

import "strings"

// Column describes one column of a mapped table.
type Column struct {
	Name          string `json:"name" yaml:"name" mapstructure:"name"`
	Type          string `json:"type" yaml:"type" mapstructure:"type"`
	Primary       bool   `json:"primary" yaml:"primary" mapstructure:"primary"`
	AutoIncrement bool   `json:"auto_increment" yaml:"auto_increment" mapstructure:"auto_increment"`
}

// Schema is the resolved column metadata for one table. Once resolved it is
// treated as immutable and shared by every record of the table.
type Schema struct {
	Table   string   `json:"table" yaml:"table" mapstructure:"table"`
	Columns []Column `json:"columns" yaml:"columns" mapstructure:"columns"`
}

// ColumnNames returns the column names in table order.
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the descriptor for name.
func (s *Schema) Column(name string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Has reports whether name is a column of the table.
func (s *Schema) Has(name string) bool {
	_, ok := s.Column(name)
	return ok
}

// Type returns the declared SQL type of a column, or "" for unknown columns.
func (s *Schema) Type(name string) string {
	c, _ := s.Column(name)
	return c.Type
}

// PrimaryColumns returns the primary key columns in table order.
func (s *Schema) PrimaryColumns() []string {
	var pk []string
	for _, c := range s.Columns {
		if c.Primary {
			pk = append(pk, c.Name)
		}
	}
	return pk
}

// PrimaryColumn returns the single primary key column.
// Returns ErrNoPrimaryKey when the table has none and ErrCompositeKey when
// the key spans several columns.
func (s *Schema) PrimaryColumn() (string, error) {
	pk := s.PrimaryColumns()
	switch len(pk) {
	case 0:
		return "", ErrNoPrimaryKey
	case 1:
		return pk[0], nil
	default:
		return "", ErrCompositeKey
	}
}

// IsPrimaryAutoIncrement reports whether the table has a single
// auto-increment primary key whose value the database generates on insert.
func (s *Schema) IsPrimaryAutoIncrement() bool {
	pk, err := s.PrimaryColumn()
	if err != nil {
		return false
	}
	c, _ := s.Column(pk)
	return c.AutoIncrement
}

// Affinity is the SQLite type affinity derived from a declared column type.
type Affinity string

const (
	AffinityInteger Affinity = "INTEGER"
	AffinityText    Affinity = "TEXT"
	AffinityBlob    Affinity = "BLOB"
	AffinityReal    Affinity = "REAL"
	AffinityNumeric Affinity = "NUMERIC"
)

// AffinityOf applies the SQLite affinity rules to a declared type, in order:
// INT, then CHAR/CLOB/TEXT, then BLOB or empty, then REAL/FLOA/DOUB,
// otherwise NUMERIC.
func AffinityOf(sqlType string) Affinity {
	t := strings.ToUpper(sqlType)
	switch {
	case strings.Contains(t, "INT"):
		return AffinityInteger
	case strings.Contains(t, "CHAR"), strings.Contains(t, "CLOB"), strings.Contains(t, "TEXT"):
		return AffinityText
	case t == "", strings.Contains(t, "BLOB"):
		return AffinityBlob
	case strings.Contains(t, "REAL"), strings.Contains(t, "FLOA"), strings.Contains(t, "DOUB"):
		return AffinityReal
	default:
		return AffinityNumeric
	}
}
