//go:build !pprof

package profile

import "testing"

func TestDisabled(t *testing.T) {
	if m := Modes(); len(m) != 0 {
		t.Errorf("Modes() = %v, want none without the pprof tag", m)
	}

	s := Profiler{Mode: "cpu", Path: t.TempDir()}.Start()
	if _, ok := s.(ignore); !ok {
		t.Fatalf("Start() = %T, want no-op without the pprof tag", s)
	}

	s.Stop()
}
