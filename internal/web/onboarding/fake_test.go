package onboarding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tripnest/tripnest/internal/identity"
	"github.com/tripnest/tripnest/pkg/travelsdk"
)

// fakeBackend keeps invitations in memory and counts every call.
type fakeBackend struct {
	mu    sync.Mutex
	now   time.Time
	calls int
	fail  error

	invites map[string]*travelsdk.Invitation // by id
	tokens  map[string]string                // token -> id
	seq     int
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		now:     time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		invites: map[string]*travelsdk.Invitation{},
		tokens:  map[string]string{},
	}
}

func (f *fakeBackend) begin() error {
	f.calls++
	return f.fail
}

func (f *fakeBackend) mint(id string) string {
	f.seq++
	for tok, owner := range f.tokens {
		if owner == id {
			delete(f.tokens, tok)
		}
	}
	tok := fmt.Sprintf("tok-%d", f.seq)
	f.tokens[tok] = id
	return tok
}

func (f *fakeBackend) SendInvite(_ context.Context, req travelsdk.SendInviteRequest) (*travelsdk.InviteIssued, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	for _, inv := range f.invites {
		if inv.Email == req.Email && inv.Status == "PENDING" {
			return nil, travelsdk.ErrDuplicateInvite
		}
	}

	id := fmt.Sprintf("inv_%d", len(f.invites)+1)
	inv := &travelsdk.Invitation{
		ID: id, Email: req.Email, Role: req.Role, AgencyID: req.AgencyID,
		Status: "PENDING", InvitedBy: "usr_admin", InvitedAt: f.now, ExpiresAt: f.now.Add(identity.DefaultInvitationTTL),
	}
	f.invites[id] = inv
	return &travelsdk.InviteIssued{Invitation: *inv, Token: f.mint(id)}, nil
}

func (f *fakeBackend) ListInvites(_ context.Context, status string) ([]travelsdk.Invitation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	var out []travelsdk.Invitation
	for _, inv := range f.invites {
		if status == "" || inv.Status == status {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeBackend) ResendInvite(_ context.Context, id string) (*travelsdk.InviteIssued, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	inv, ok := f.invites[id]
	if !ok || inv.Status != "PENDING" {
		return nil, travelsdk.ErrNotFound
	}
	inv.ExpiresAt = f.now.Add(identity.DefaultInvitationTTL)
	inv.ResendCount++
	return &travelsdk.InviteIssued{Invitation: *inv, Token: f.mint(id)}, nil
}

func (f *fakeBackend) RevokeInvite(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return err
	}
	inv, ok := f.invites[id]
	if !ok || inv.Status != "PENDING" {
		return travelsdk.ErrNotFound
	}
	inv.Status = "REVOKED"
	return nil
}

func (f *fakeBackend) lookup(token string) (*travelsdk.Invitation, error) {
	id, ok := f.tokens[token]
	if !ok {
		return nil, travelsdk.ErrTokenInvalid
	}
	inv := f.invites[id]
	if inv.Status != "PENDING" {
		return nil, travelsdk.ErrTokenInvalid
	}
	if !f.now.Before(inv.ExpiresAt) {
		return nil, travelsdk.ErrTokenExpired
	}
	return inv, nil
}

func (f *fakeBackend) VerifyInvite(_ context.Context, token string) (*travelsdk.InviteDetails, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return nil, err
	}
	inv, err := f.lookup(token)
	if err != nil {
		return nil, err
	}
	return &travelsdk.InviteDetails{
		Email: inv.Email, Role: inv.Role, AgencyID: inv.AgencyID, Status: inv.Status, ExpiresAt: inv.ExpiresAt,
	}, nil
}

func (f *fakeBackend) CompleteOnboarding(_ context.Context, req travelsdk.CompleteOnboardingRequest) (identity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(); err != nil {
		return identity.User{}, err
	}
	inv, err := f.lookup(req.Token)
	if err != nil {
		return identity.User{}, err
	}
	inv.Status = "COMPLETED"
	return identity.User{
		ID: "usr_" + inv.ID, Name: req.Name, Email: inv.Email, Phone: req.Phone,
		Role: identity.MustParseRole(inv.Role), Status: identity.StatusActive, AgencyID: inv.AgencyID,
	}, nil
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
