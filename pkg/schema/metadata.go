package schema

// ColumnMetadata describes one discovered column. Immutable after
// schema load; owned by the Cache.
type ColumnMetadata struct {
	Name         string
	DataType     string
	MaxLength    *int // nil when not applicable or not parseable
	Nullable     bool
	IsPrimaryKey bool
}
