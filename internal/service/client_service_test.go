package service

import (
	"context"
	"testing"

	"github.com/spec-kit/crm-service/internal/domain"
	apperrors "github.com/spec-kit/crm-service/pkg/util"
)

func TestAddClient_DefaultsAndOwnerOnly(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, domain.RoleOwner, "owner", "o")
	manager := env.seedUser(t, domain.RoleManager, "maria", "s")

	client, err := env.clients.AddClient(ctx, owner, ClientDraft{
		FullName: "John Doe",
		Email:    "john@example.com",
	})
	if err != nil {
		t.Fatalf("AddClient: %v", err)
	}
	if client.Source != domain.ClientSourceManual {
		t.Errorf("source = %s, want %s", client.Source, domain.ClientSourceManual)
	}
	if client.Status != domain.ClientStatusValid {
		t.Errorf("status = %s, want %s", client.Status, domain.ClientStatusValid)
	}
	if !client.Active {
		t.Error("new lead should be active")
	}

	_, err = env.clients.AddClient(ctx, manager, ClientDraft{FullName: "X", Email: "x@example.com"})
	if !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Errorf("manager intake: err = %v, want %s", err, apperrors.CodeForbidden)
	}
}

func TestSetClientStatus_SpamVerdict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.seedUser(t, domain.RoleOwner, "owner", "o")
	client := env.seedClient(t, "John", "john@example.com")

	if err := env.clients.SetClientStatus(ctx, owner, client.ID, domain.ClientStatusSpam); err != nil {
		t.Fatalf("SetClientStatus: %v", err)
	}
	stored, err := env.repos.ClientByID(ctx, client.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != domain.ClientStatusSpam {
		t.Errorf("status = %s, want %s", stored.Status, domain.ClientStatusSpam)
	}

	if err := env.clients.SetClientStatus(ctx, owner, "missing", domain.ClientStatusSpam); !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("missing client: err = %v, want %s", err, apperrors.CodeNotFound)
	}
}

func TestMessages_SendInboxMarkRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	maria := env.seedUser(t, domain.RoleManager, "maria", "s")
	dana := env.seedUser(t, domain.RoleDeveloper, "dana", "s")

	first, err := env.messages.Send(ctx, maria, dana.ID, "", "standup", "please join at 10")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if _, err := env.messages.Send(ctx, dana, maria.ID, "", "re: standup", "will do"); err != nil {
		t.Fatalf("Send reply: %v", err)
	}

	inbox, err := env.messages.Inbox(ctx, dana)
	if err != nil {
		t.Fatalf("Inbox: %v", err)
	}
	if len(inbox) != 2 {
		t.Fatalf("len(inbox) = %d, want 2", len(inbox))
	}
	// Newest first.
	if inbox[0].Subject != "re: standup" {
		t.Errorf("first message = %q, want newest", inbox[0].Subject)
	}

	// Only the recipient marks a message read.
	if err := env.messages.MarkRead(ctx, maria, first.ID); !apperrors.HasCode(err, apperrors.CodeForbidden) {
		t.Errorf("sender mark read: err = %v, want %s", err, apperrors.CodeForbidden)
	}
	if err := env.messages.MarkRead(ctx, dana, first.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	inbox, _ = env.messages.Inbox(ctx, dana)
	for _, m := range inbox {
		if m.ID == first.ID && !m.Read {
			t.Error("message not flagged read")
		}
	}
}
