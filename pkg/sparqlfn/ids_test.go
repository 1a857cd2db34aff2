package sparqlfn

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

type fakeChecker struct {
	taken map[string]bool
}

func (f fakeChecker) URIExists(uri string) (bool, error) {
	return f.taken[uri], nil
}

func TestUuidHasPrefixAndIsWellFormed(t *testing.T) {
	got, err := Uuid("ex", fakeChecker{taken: map[string]bool{}})
	if err != nil {
		t.Fatalf("Uuid: %v", err)
	}
	if !strings.HasPrefix(got, "ex:") {
		t.Errorf("Uuid() = %q, want ex: prefix", got)
	}
	if _, err := uuid.Parse(strings.TrimPrefix(got, "ex:")); err != nil {
		t.Errorf("Uuid() = %q, suffix is not a well-formed UUID: %v", got, err)
	}
}

func TestBnodePrefix(t *testing.T) {
	got, err := Bnode(fakeChecker{taken: map[string]bool{}})
	if err != nil {
		t.Fatalf("Bnode: %v", err)
	}
	if !strings.HasPrefix(got, "urn:bnode:") {
		t.Errorf("Bnode() = %q, want urn:bnode: prefix", got)
	}
}

type alwaysTakenThenFreeChecker struct {
	remaining int
}

func (c *alwaysTakenThenFreeChecker) URIExists(uri string) (bool, error) {
	if c.remaining > 0 {
		c.remaining--
		return true, nil
	}
	return false, nil
}

func TestUuidRegeneratesOnCollision(t *testing.T) {
	checker := &alwaysTakenThenFreeChecker{remaining: 2}
	got, err := Uuid("ex", checker)
	if err != nil {
		t.Fatalf("Uuid: %v", err)
	}
	if !strings.HasPrefix(got, "ex:") {
		t.Errorf("Uuid() after collisions = %q", got)
	}
}
