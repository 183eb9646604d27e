package models

// Optional is one field of a partial update. Set marks the field as present
// in the request; Null means the column is cleared.
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func Some[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

// Arg is the database argument for the field: nil for a cleared column.
func (o Optional[T]) Arg() any {
	if o.Null {
		return nil
	}
	return o.Value
}
