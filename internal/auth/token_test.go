package auth

import (
	"testing"
	"time"

	"studysync/internal/domain"
)

func TestIssueAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	token, err := m.Issue("user-1", domain.RoleTeacher)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != domain.RoleTeacher {
		t.Fatalf("unexpected claims %+v", claims)
	}

	// The Authorization header value parses unchanged.
	claims, err = m.Parse("Bearer " + token)
	if err != nil {
		t.Fatalf("parse with prefix: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestParseRejectsBadTokens(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	if _, err := m.Parse("not-a-token"); err == nil {
		t.Fatalf("garbage must not parse")
	}

	other := NewManager("different-secret", time.Hour)
	token, _ := other.Issue("user-1", domain.RoleStudent)
	if _, err := m.Parse(token); err == nil {
		t.Fatalf("token signed with another secret must not parse")
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.Issue("user-1", domain.RoleStudent)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	m.now = time.Now
	if _, err := m.Parse(token); err == nil {
		t.Fatalf("expired token must not parse")
	}
}
