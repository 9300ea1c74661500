package core

// Column describes one table column as reported by introspection and as
// accepted by the DDL operations. Recomputed on every introspection call,
// never cached.
type Column struct {
	// Name is the column name.
	Name string `json:"name"`

	// Type is the full column type string, e.g. "varchar(255)" or
	// "int unsigned".
	Type string `json:"type"`

	// Nullable reports whether the column accepts NULL.
	Nullable bool `json:"nullable"`

	// Default is the declared default value, nil when none.
	Default *string `json:"default"`

	// Key is the key role reported by the engine: "PRI", "UNI", "MUL"
	// or empty.
	Key string `json:"key,omitempty"`

	// Extra carries engine flags such as "auto_increment".
	Extra string `json:"extra,omitempty"`

	// Comment is the column comment.
	Comment string `json:"comment,omitempty"`

	// CharacterSet is the column character set, empty for non-text types.
	CharacterSet string `json:"characterSet,omitempty"`
}

// ColumnDefinition is the caller-supplied descriptor consumed by the
// table/column DDL builders. The registry trusts it as given; form-level
// policy (primary keys forced non-nullable, auto-increment forced primary)
// is enforced by the caller, not re-validated here.
type ColumnDefinition struct {
	Name          string `json:"name"`
	Type          string `json:"type"`
	Length        string `json:"length,omitempty"`
	Nullable      bool   `json:"nullable"`
	Default       string `json:"default,omitempty"`
	HasDefault    bool   `json:"hasDefault,omitempty"`
	PrimaryKey    bool   `json:"primaryKey,omitempty"`
	AutoIncrement bool   `json:"autoIncrement,omitempty"`
	Unique        bool   `json:"unique,omitempty"`
	Unsigned      bool   `json:"unsigned,omitempty"`
	Comment       string `json:"comment,omitempty"`
}

// Index describes one table index: its name, kind, and ordered column
// list.
type Index struct {
	// Name is the index name; "PRIMARY" for the primary key.
	Name string `json:"name"`

	// Type is the index kind: "PRIMARY", "UNIQUE", "FULLTEXT" or "INDEX".
	Type string `json:"type"`

	// Columns is the ordered column list.
	Columns []string `json:"columns"`
}

// IndexDefinition is the caller-supplied descriptor for index DDL.
type IndexDefinition struct {
	Name    string   `json:"name"`
	Type    string   `json:"type,omitempty"`
	Columns []string `json:"columns"`
}

// ForeignKey describes one referential constraint.
type ForeignKey struct {
	// Name is the constraint name.
	Name string `json:"name"`

	// Column is the local column.
	Column string `json:"column"`

	// ReferencedTable and ReferencedColumn identify the target.
	ReferencedTable  string `json:"referencedTable"`
	ReferencedColumn string `json:"referencedColumn"`

	// OnUpdate and OnDelete are the referential actions, e.g. "CASCADE".
	OnUpdate string `json:"onUpdate,omitempty"`
	OnDelete string `json:"onDelete,omitempty"`
}

// PrimaryKeyRef identifies one row through a single-column equality
// predicate, or a row set when Values is used instead of Value.
type PrimaryKeyRef struct {
	Column string `json:"column"`
	Value  any    `json:"value,omitempty"`
	Values []any  `json:"values,omitempty"`
}
