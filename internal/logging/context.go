package logging

import "context"

type fieldsKey struct{}

// ContextWith returns a copy of ctx carrying extra key-value pairs. Loggers
// append them to every line logged with that context.
func ContextWith(ctx context.Context, args ...any) context.Context {
	prev := FieldsFrom(ctx)
	fields := make([]any, 0, len(prev)+len(args))
	fields = append(fields, prev...)
	fields = append(fields, args...)
	return context.WithValue(ctx, fieldsKey{}, fields)
}

// FieldsFrom returns the pairs added by ContextWith, oldest first.
func FieldsFrom(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(fieldsKey{}).([]any)
	return fields
}

func withContextFields(ctx context.Context, args []any) []any {
	fields := FieldsFrom(ctx)
	if len(fields) == 0 {
		return args
	}
	out := make([]any, 0, len(fields)+len(args))
	out = append(out, fields...)
	return append(out, args...)
}
