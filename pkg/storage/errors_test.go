package storage

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestErrorMatchesKindAndCause(t *testing.T) {
	err := AccessError("open", "/x", "", fs.ErrNotExist)
	if !errors.Is(err, ErrAccess) {
		t.Error("kind not matched")
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("cause not matched")
	}
	if errors.Is(err, ErrConflict) || errors.Is(err, ErrPermission) {
		t.Error("matched a foreign kind")
	}
	var se *Error
	if !errors.As(err, &se) || se.Op != "open" || se.Path != "/x" {
		t.Errorf("As = %+v", se)
	}
}

func TestErrorMessage(t *testing.T) {
	err := ConflictError("create folder", "/tmp/a", "already exists")
	if got := err.Error(); got != "storage: create folder /tmp/a: already exists" {
		t.Errorf("message = %q", got)
	}
	err = AccessError("read", "", "", errors.New("boom"))
	if !strings.HasSuffix(err.Error(), ": boom") {
		t.Errorf("message = %q", err.Error())
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		want error
	}{
		{AccessError("a", "", "", nil), ErrAccess},
		{PermissionError("w", "", ""), ErrPermission},
		{ConflictError("c", "", ""), ErrConflict},
		{errors.New("plain"), nil},
		{nil, nil},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.want {
			t.Errorf("KindOf(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
