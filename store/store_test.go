package store

import (
	"reflect"
	"testing"
)

func TestFirstSourceWinsScalars(t *testing.T) {
	l := NewLayered()
	if err := l.Register(NewMemory("s1").Set("x", "one").Set("only1", "a")); err != nil {
		t.Fatal(err)
	}
	if err := l.Register(NewMemory("s2").Set("x", "two").Set("only2", "b")); err != nil {
		t.Fatal(err)
	}

	v, ok := l.Get("x")
	if !ok || v.Str() != "one" {
		t.Fatalf("Get(x) = %v %v, want one", v, ok)
	}
	if v, ok := l.Get("only2"); !ok || v.Str() != "b" {
		t.Fatalf("later source keys must remain visible, got %v %v", v, ok)
	}
}

func TestShadowedRecordsDroppedWrites(t *testing.T) {
	l := NewLayered()
	_ = l.Register(NewMemory("s1").Set("x", "one"))
	_ = l.Register(NewMemory("s2").Set("x", "two"))
	_ = l.Register(NewMemory("s3").Set("x", "three"))

	if got := l.Shadowed("x"); !reflect.DeepEqual(got, []string{"s2", "s3"}) {
		t.Fatalf("Shadowed(x) = %v", got)
	}
	if got := l.Shadowed("missing"); got != nil {
		t.Fatalf("Shadowed(missing) = %v", got)
	}
}

func TestChildrenUnionAcrossSources(t *testing.T) {
	l := NewLayered()
	_ = l.Register(NewMemory("s1").Set("svc.hosts[0]", "a").Set("svc.opts.alpha", "1"))
	_ = l.Register(NewMemory("s2").Set("svc.hosts[3]", "b").Set("svc.opts.beta", "2"))

	names, maxIdx := l.Children("svc.opts")
	if !reflect.DeepEqual(names, []string{"alpha", "beta"}) {
		t.Fatalf("names = %v", names)
	}
	if maxIdx != 0 {
		t.Fatalf("maxIdx = %d, want 0", maxIdx)
	}

	names, maxIdx = l.Children("svc.hosts")
	if len(names) != 0 {
		t.Fatalf("names = %v, want none", names)
	}
	if maxIdx != 4 {
		t.Fatalf("maxIdx = %d, want 4", maxIdx)
	}
}

func TestIntermediateNodesExistWithoutScalar(t *testing.T) {
	l := NewLayered()
	_ = l.Register(NewMemory("s").Set("a.b.c", "v"))

	if _, ok := l.Get("a.b"); ok {
		t.Fatalf("a.b must not hold a scalar")
	}
	names, _ := l.Children("a.b")
	if !reflect.DeepEqual(names, []string{"c"}) {
		t.Fatalf("Children(a.b) = %v", names)
	}
	names, _ = l.Children("")
	if !reflect.DeepEqual(names, []string{"a"}) {
		t.Fatalf("root children = %v", names)
	}
}

func TestNumericSubkeysBecomeIndexChildren(t *testing.T) {
	l := NewLayered()
	_ = l.Register(NewMemory("s").Set("arr.0", "a").Set("arr[2]", "c"))

	names, maxIdx := l.Children("arr")
	if len(names) != 0 || maxIdx != 3 {
		t.Fatalf("Children(arr) = %v, %d", names, maxIdx)
	}
	if v, ok := l.Get("arr[0]"); !ok || v.Str() != "a" {
		t.Fatalf("Get(arr[0]) = %v %v", v, ok)
	}
}

func TestSinkCursor(t *testing.T) {
	l := NewLayered()
	s := l.Sink("test")
	s.Push("outer")
	s.Push("inner")
	if s.Key() != "outer.inner" {
		t.Fatalf("cursor = %q", s.Key())
	}
	s.Set(Int(7))
	s.Pop()
	s.PushIndex(0)
	s.Set(Bool(true))
	s.Pop()
	s.Pop()
	if s.Key() != "" {
		t.Fatalf("cursor after unwind = %q", s.Key())
	}

	if v, ok := l.Get("outer.inner"); !ok || v.IntVal() != 7 {
		t.Fatalf("outer.inner = %v %v", v, ok)
	}
	if v, ok := l.Get("outer[0]"); !ok || !v.BoolVal() {
		t.Fatalf("outer[0] = %v %v", v, ok)
	}
}

func TestSinkSetMapAndArray(t *testing.T) {
	l := NewLayered()
	s := l.Sink("test")
	s.Push("opts")
	s.SetMap(map[string]Value{"a": Int(1), "b": Int(2)})
	s.Pop()
	s.Push("tags")
	s.SetArray([]Value{String("x"), String("y")})
	s.Pop()

	if v, _ := l.Get("opts.b"); v.IntVal() != 2 {
		t.Fatalf("opts.b = %v", v)
	}
	names, _ := l.Children("opts")
	if !reflect.DeepEqual(names, []string{"a", "b"}) {
		t.Fatalf("opts children = %v", names)
	}
	if v, _ := l.Get("tags[1]"); v.Str() != "y" {
		t.Fatalf("tags[1] = %v", v)
	}
	if _, bound := l.Children("tags"); bound != 2 {
		t.Fatalf("tags bound = %d", bound)
	}
}

func TestMemoryLastSetWinsWithinSource(t *testing.T) {
	l := NewLayered()
	_ = l.Register(NewMemory("s").Set("k", "first").Set("k", "second"))
	if v, _ := l.Get("k"); v.Str() != "second" {
		t.Fatalf("Get(k) = %q, want second", v.Str())
	}
}

func TestValueOf(t *testing.T) {
	if v := Of(42); v.Kind() != KindInt || v.IntVal() != 42 {
		t.Fatalf("Of(42) = %v", v)
	}
	if v := Of(true); v.Kind() != KindBool || !v.BoolVal() {
		t.Fatalf("Of(true) = %v", v)
	}
	if v := Of(1.5); v.Kind() != KindFloat || v.FloatVal() != 1.5 {
		t.Fatalf("Of(1.5) = %v", v)
	}
	if v := Of(uint64(1 << 63)); v.Kind() != KindString {
		t.Fatalf("large uint64 should degrade to string, got %v", v)
	}
	if v := Of("s"); v.Kind() != KindString || v.Str() != "s" {
		t.Fatalf("Of(s) = %v", v)
	}
}

func BenchmarkRegisterAndGet(b *testing.B) {
	m := NewMemory("bench")
	m.Set("app.name", "bench").Set("app.hosts[0]", "h0").Set("app.hosts[1]", "h1")
	for i := 0; i < b.N; i++ {
		l := NewLayered()
		_ = l.Register(m)
		if _, ok := l.Get("app.hosts[1]"); !ok {
			b.Fatal("missing key")
		}
	}
}
