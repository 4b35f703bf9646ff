package cjson

import (
	"bytes"
	"errors"
	"testing"
)

func TestMarshal(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, `null`},
		{"bool", true, `true`},
		{"int", int(42), `42`},
		{"negative", int64(-7), `-7`},
		{"uint", uint32(9), `9`},
		{"string", "hello", `"hello"`},
		{"escape quote", `say "hi"`, `"say \"hi\""`},
		{"escape backslash", `a\b`, `"a\\b"`},
		{"unicode passthrough", "日本語", `"日本語"`},
		{"empty map", map[string]any{}, `{}`},
		{"empty slice", []any{}, `[]`},
		{"slice", []any{1, "two", true}, `[1,"two",true]`},
		{
			"sorted keys",
			map[string]any{"zebra": 1, "alpha": 2, "mid": 3},
			`{"alpha":2,"mid":3,"zebra":1}`,
		},
		{
			"nested",
			map[string]any{"keyval": map[string]string{"public": "abc"}, "keytype": "ed25519"},
			`{"keytype":"ed25519","keyval":{"public":"abc"}}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Marshal(tc.in)
			if err != nil {
				t.Fatalf("Marshal(%v) error: %v", tc.in, err)
			}
			if string(got) != tc.want {
				t.Errorf("Marshal(%v) = %s, want %s", tc.in, got, tc.want)
			}
		})
	}
}

func TestMarshalDeterminism(t *testing.T) {
	// map 迭代顺序随机，重复编码必须得到同一字节序列
	in := map[string]any{
		"keytype": "rsa",
		"scheme":  "rsassa-pss-sha256",
		"keyval":  map[string]any{"public": "PEM data", "extra": []any{1, 2, 3}},
	}

	first, err := Marshal(in)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 50; i++ {
		got, err := Marshal(in)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(got, first) {
			t.Fatalf("run %d produced %s, first run produced %s", i, got, first)
		}
	}
}

func TestMarshalRejects(t *testing.T) {
	cases := []struct {
		name string
		in   any
	}{
		{"float", 3.14},
		{"float32", float32(1.5)},
		{"nested float", map[string]any{"x": 1.0}},
		{"channel", make(chan int)},
		{"func", func() {}},
		{"non-string map key", map[int]string{1: "a"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Marshal(tc.in)
			var serr *SerializationError
			if !errors.As(err, &serr) {
				t.Fatalf("Marshal(%v) error = %v, want *SerializationError", tc.in, err)
			}
		})
	}
}

func TestMarshalCycle(t *testing.T) {
	cyclic := map[string]any{}
	cyclic["self"] = cyclic

	_, err := Marshal(cyclic)
	var serr *SerializationError
	if !errors.As(err, &serr) {
		t.Fatalf("cyclic structure error = %v, want *SerializationError", err)
	}
}

func TestDigestHex(t *testing.T) {
	a, err := DigestHex(map[string]any{"b": 2, "a": 1})
	if err != nil {
		t.Fatal(err)
	}
	b, err := DigestHex(map[string]any{"a": 1, "b": 2})
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("digest depends on construction order: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(a))
	}
}

func BenchmarkMarshal(b *testing.B) {
	in := map[string]any{
		"keyid":   "deadbeef",
		"keytype": "ed25519",
		"scheme":  "ed25519",
		"keyval":  map[string]any{"public": "9d3c4a58f6e0b2c1"},
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Marshal(in); err != nil {
			b.Fatal(err)
		}
	}
}
