package apierr

import (
	"fmt"
	"testing"
)

func TestClassifyKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"invalid input", fmt.Errorf("wrap: %w", ErrInvalidInput), KindInvalidInput},
		{"not found", fmt.Errorf("wrap: %w", ErrNotFound), KindNotFound},
		{"transient", fmt.Errorf("wrap: %w", ErrTransient), KindTransient},
		{"unknown", fmt.Errorf("some other failure"), KindInternal},
	}
	for _, tt := range tests {
		if got := ClassifyKind(tt.err); got != tt.want {
			t.Errorf("%s: ClassifyKind() = %v, want %v", tt.name, got, tt.want)
		}
	}
}
