package store

import (
	"math"
	"testing"

	"github.com/roach88/jqcty/internal/native"
)

func TestResultKey_IgnoresKeyOrder(t *testing.T) {
	a := native.NewMap(native.E("x", native.Int(1)), native.E("y", native.String("b")))
	b := native.NewMap(native.E("y", native.String("b")), native.E("x", native.Int(1)))

	ka, err := ResultKey("jq", ".x", a)
	if err != nil {
		t.Fatalf("ResultKey() failed: %v", err)
	}
	kb, err := ResultKey("jq", ".x", b)
	if err != nil {
		t.Fatalf("ResultKey() failed: %v", err)
	}
	if ka != kb {
		t.Errorf("keys differ for reordered maps: %s vs %s", ka, kb)
	}
	if len(ka) != 64 {
		t.Errorf("len(key) = %d, want 64 hex chars", len(ka))
	}
}

func TestResultKey_Distinguishes(t *testing.T) {
	input := native.NewMap(native.E("x", native.Int(1)))
	base, _ := ResultKey("jq", ".x", input)

	cases := map[string]func() (string, error){
		"language": func() (string, error) { return ResultKey("jsonpath", ".x", input) },
		"program":  func() (string, error) { return ResultKey("jq", ".y", input) },
		"input":    func() (string, error) { return ResultKey("jq", ".x", native.NewMap(native.E("x", native.Int(2)))) },
		"kind":     func() (string, error) { return ResultKey("jq", ".x", native.NewMap(native.E("x", native.Float(1)))) },
	}
	for name, fn := range cases {
		got, err := fn()
		if err != nil {
			t.Fatalf("%s: ResultKey() failed: %v", name, err)
		}
		if got == base {
			t.Errorf("%s: key did not change", name)
		}
	}
}

func TestHashDomainsSeparate(t *testing.T) {
	data := []byte(`"same"`)
	if hashWithDomain(DomainInput, data) == hashWithDomain(DomainResult, data) {
		t.Error("domains must produce different hashes for the same data")
	}
}

func TestResultKey_RejectsNonFinite(t *testing.T) {
	if _, err := ResultKey("jq", ".", native.Float(math.NaN())); err == nil {
		t.Error("expected error for NaN input")
	}
	if _, err := InputHash(native.Float(math.Inf(1))); err == nil {
		t.Error("expected error for infinite input")
	}
}
