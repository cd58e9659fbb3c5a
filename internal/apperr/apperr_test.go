package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"validation", Validation("bad"), KindValidation},
		{"wrapped_not_found", fmt.Errorf("load: %w", NotFound("нет")), KindNotFound},
		{"forbidden", Forbidden("нельзя"), KindForbidden},
		{"plain_error", errors.New("boom"), KindInternal},
		{"nil", nil, KindInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := KindOf(tc.err); got != tc.want {
				t.Fatalf("KindOf=%v, ожидали %v", got, tc.want)
			}
		})
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("db down")
	err := Wrap(KindUnauthenticated, "token", cause)
	if !errors.Is(err, cause) {
		t.Fatal("ожидали, что errors.Is найдёт причину")
	}
	if !Is(err, KindUnauthenticated) {
		t.Fatal("ожидали KindUnauthenticated")
	}
}
