// Package errors provides structured error types for the bitreg module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes rich context: field path, Go/field type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDefine, errors.KindTypeMismatch).
//		Path("ctrl", "mode").
//		FieldType("u8").
//		Detail("span needs %d bytes", 2).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeMismatch(errors.PhaseEncode, path, "string", "u32")
//	err := errors.OutOfBounds(errors.PhaseMemory, path, 16, 4, 18)
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
