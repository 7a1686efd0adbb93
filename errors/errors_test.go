package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:     PhaseEncode,
				Kind:      KindTypeMismatch,
				Path:      []string{"ctrl", "mode"},
				GoType:    "string",
				FieldType: "u8",
				Detail:    "cannot convert",
			},
			contains: []string{"[encode]", "type_mismatch", "ctrl.mode", "string", "u8", "cannot convert"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseDecode,
				Kind:  KindOutOfBounds,
			},
			contains: []string{"[decode]", "out_of_bounds"},
		},
		{
			name: "field type only",
			err: &Error{
				Phase:     PhaseDefine,
				Kind:      KindTypeMismatch,
				FieldType: "u16",
				Detail:    "span needs 3 bytes",
			},
			contains: []string{"field type u16", " - span needs 3 bytes"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseMemory,
				Kind:   KindOutOfBounds,
				Detail: "read past end",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[memory]", "out_of_bounds", "read past end", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseLoad,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseDefine,
		Kind:  KindInvalidSpan,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseDefine, Kind: KindInvalidSpan}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseBind, Kind: KindInvalidSpan}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseDefine, Kind: KindOutOfBounds}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseDefine, Kind: KindInvalidSpan}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseEncode, KindTypeMismatch).
		Path("ctrl", "enable").
		GoType("string").
		FieldType("bool").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "bool", "string").
		Build()

	if err.Phase != PhaseEncode {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseEncode)
	}
	if err.Kind != KindTypeMismatch {
		t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
	}
	if len(err.Path) != 2 || err.Path[0] != "ctrl" || err.Path[1] != "enable" {
		t.Errorf("Path = %v, want [ctrl enable]", err.Path)
	}
	if err.GoType != "string" {
		t.Errorf("GoType = %v, want 'string'", err.GoType)
	}
	if err.FieldType != "bool" {
		t.Errorf("FieldType = %v, want 'bool'", err.FieldType)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected bool, got string" {
		t.Errorf("Detail = %v, want 'expected bool, got string'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("TypeMismatch", func(t *testing.T) {
		err := TypeMismatch(PhaseEncode, []string{"field"}, "int", "bool")
		if err.Kind != KindTypeMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindTypeMismatch)
		}
		if err.GoType != "int" || err.FieldType != "bool" {
			t.Errorf("GoType=%v FieldType=%v", err.GoType, err.FieldType)
		}
	})

	t.Run("InvalidSpan", func(t *testing.T) {
		err := InvalidSpan(PhaseDefine, []string{"mode"}, "start 5 not before end 5")
		if err.Kind != KindInvalidSpan {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidSpan)
		}
	})

	t.Run("SizeMismatch", func(t *testing.T) {
		err := SizeMismatch(PhaseDefine, nil, 3, 2)
		if err.Kind != KindSizeMismatch {
			t.Errorf("Kind = %v, want %v", err.Kind, KindSizeMismatch)
		}
		if !strings.Contains(err.Detail, "3 bytes") || !strings.Contains(err.Detail, "needs 2") {
			t.Errorf("Detail = %v, should contain both sizes", err.Detail)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseMemory, []string{"ctrl"}, 10, 4, 12)
		if err.Kind != KindOutOfBounds {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOutOfBounds)
		}
		if err.Value != uint64(10) {
			t.Errorf("Value = %v, want 10", err.Value)
		}
		if !strings.Contains(err.Detail, "[10, 14)") {
			t.Errorf("Detail = %v, should contain range", err.Detail)
		}
	})

	t.Run("NilPointer", func(t *testing.T) {
		err := NilPointer(PhaseBind, []string{"ptr"}, "*Status")
		if err.Kind != KindNilPointer {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNilPointer)
		}
		if err.GoType != "*Status" {
			t.Errorf("GoType = %v, want '*Status'", err.GoType)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseEncode, []string{"val"}, uint64(300), 8)
		if err.Kind != KindOverflow {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOverflow)
		}
		if err.Value != uint64(300) {
			t.Errorf("Value = %v, want 300", err.Value)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		err := NotFound(PhaseDecode, "field", "speed")
		if err.Kind != KindNotFound {
			t.Errorf("Kind = %v, want %v", err.Kind, KindNotFound)
		}
		if !strings.Contains(err.Detail, `"speed"`) {
			t.Errorf("Detail = %v, should quote name", err.Detail)
		}
	})

	t.Run("Duplicate", func(t *testing.T) {
		err := Duplicate(PhaseDefine, "field", "mode")
		if err.Kind != KindDuplicate {
			t.Errorf("Kind = %v, want %v", err.Kind, KindDuplicate)
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		cause := errors.New("disk")
		err := Wrap(PhaseLoad, KindInvalidData, cause, "read definitions")
		if !errors.Is(err, cause) {
			t.Error("Wrap should keep cause in chain")
		}
	})
}
