package pubsub

import (
	"context"
	"testing"

	"github.com/angelmondragon/haani-backend/pkg/config"
)

func TestTopicResourceName(t *testing.T) {
	cases := []struct {
		project, name, want string
	}{
		{project: "haani-prod", name: "finance-notifications", want: "projects/haani-prod/topics/finance-notifications"},
		{project: "haani-prod", name: " projects/other/topics/x ", want: "projects/other/topics/x"},
		{project: "", name: "finance-notifications", want: ""},
		{project: "haani-prod", name: "  ", want: ""},
	}
	for _, tc := range cases {
		if got := topicResourceName(tc.project, tc.name); got != tc.want {
			t.Fatalf("topicResourceName(%q, %q) = %q, want %q", tc.project, tc.name, got, tc.want)
		}
	}
}

func TestNilClientIsSafe(t *testing.T) {
	var c *Client
	if err := c.Close(); err != nil {
		t.Fatalf("Close() on nil client = %v", err)
	}
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected Ping on nil client to fail")
	}
}

func TestClientOptionsPreferInlineCredentials(t *testing.T) {
	if opts := clientOptions(config.GCPConfig{ProjectID: "haani-prod"}); len(opts) != 0 {
		t.Fatalf("expected ambient credentials, got %d options", len(opts))
	}
	opts := clientOptions(config.GCPConfig{CredentialsJSON: `{"type":"service_account"}`, ApplicationCredentials: "/secrets/sa.json"})
	if len(opts) != 1 {
		t.Fatalf("expected a single credentials option, got %d", len(opts))
	}
	if opts := clientOptions(config.GCPConfig{ApplicationCredentials: "/secrets/sa.json"}); len(opts) != 1 {
		t.Fatalf("expected file credentials option, got %d", len(opts))
	}
}
