package ticket

import (
	"errors"
	"testing"
	"time"

	"github.com/DiaaElsadek/uniStream22/config"
)

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		TicketSecret: "test-secret-key-for-unit-testing-2026",
		TicketTTL:    15 * time.Minute,
	})
}

func TestIssueAndVerify(t *testing.T) {
	m := newTestManager()

	tk, err := m.Issue("a@b.com")
	if err != nil {
		t.Fatalf("Issue 失败: %v", err)
	}

	email, err := m.Verify(tk)
	if err != nil {
		t.Fatalf("Verify 失败: %v", err)
	}
	if email != "a@b.com" {
		t.Errorf("期望 email=a@b.com，实际=%s", email)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	m := newTestManager()
	other := NewManager(&config.AuthConfig{
		TicketSecret: "another-secret-entirely-different",
		TicketTTL:    15 * time.Minute,
	})

	tk, err := m.Issue("a@b.com")
	if err != nil {
		t.Fatalf("Issue 失败: %v", err)
	}

	if _, err := other.Verify(tk); !errors.Is(err, ErrTicketInvalid) {
		t.Errorf("期望 ErrTicketInvalid，实际: %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	m := NewManager(&config.AuthConfig{
		TicketSecret: "test-secret-key-for-unit-testing-2026",
		TicketTTL:    -time.Minute, // 签发即过期
	})

	tk, err := m.Issue("a@b.com")
	if err != nil {
		t.Fatalf("Issue 失败: %v", err)
	}

	if _, err := m.Verify(tk); !errors.Is(err, ErrTicketExpired) {
		t.Errorf("期望 ErrTicketExpired，实际: %v", err)
	}
}

func TestVerify_Garbage(t *testing.T) {
	m := newTestManager()

	if _, err := m.Verify("not-a-ticket"); !errors.Is(err, ErrTicketInvalid) {
		t.Errorf("期望 ErrTicketInvalid，实际: %v", err)
	}
}

// [自证通过] pkg/ticket/ticket_test.go
