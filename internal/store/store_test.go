package store

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func testRoundTrip(t *testing.T, st Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := st.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get missing key: err = %v, want ErrNotFound", err)
	}

	if err := st.Set(ctx, "k", []byte(`{"a":1}`)); err != nil {
		t.Fatal(err)
	}
	got, err := st.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte(`{"a":1}`)) {
		t.Errorf("got %q, want %q", got, `{"a":1}`)
	}

	// Overwrite replaces the previous value.
	if err := st.Set(ctx, "k", []byte("v2")); err != nil {
		t.Fatal(err)
	}
	got, err = st.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v2" {
		t.Errorf("after overwrite got %q, want v2", got)
	}

	if err := st.Remove(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, err := st.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
		t.Errorf("get removed key: err = %v, want ErrNotFound", err)
	}

	// Removing an absent key is not an error.
	if err := st.Remove(ctx, "k"); err != nil {
		t.Errorf("remove absent key: %v", err)
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	testRoundTrip(t, NewMemory())
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	st := NewMemory()

	src := []byte("original")
	if err := st.Set(ctx, "k", src); err != nil {
		t.Fatal(err)
	}
	src[0] = 'X'

	got, err := st.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "original" {
		t.Errorf("stored value aliased caller's slice: %q", got)
	}

	got[0] = 'Y'
	again, err := st.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(again) != "original" {
		t.Errorf("returned value aliased stored slice: %q", again)
	}
}

func TestSQLiteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kv.db")
	st, err := OpenSQLite(path, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	testRoundTrip(t, st)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	st, err := OpenSQLite(path, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := st.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	if err := st.Close(); err != nil {
		t.Fatal(err)
	}

	st, err = OpenSQLite(path, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	got, err := st.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v" {
		t.Errorf("after reopen got %q, want v", got)
	}
}
