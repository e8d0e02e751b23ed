// Package memory is an in-process twin of the DynamoDB store. It applies the
// same conditional-write rules so services behave identically against it.
package memory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chris/escrow-marketplace/pkg/models"
	"github.com/chris/escrow-marketplace/pkg/storage"
	"gopkg.in/yaml.v3"
)

// Store keeps every record in maps guarded by a single mutex.
type Store struct {
	mu          sync.Mutex
	escrows     map[string]*models.Escrow
	references  map[string]string
	disputes    map[string]*models.Dispute
	users       map[string]*models.User
	connections map[string]string
}

var _ storage.Storage = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{
		escrows:     make(map[string]*models.Escrow),
		references:  make(map[string]string),
		disputes:    make(map[string]*models.Dispute),
		users:       make(map[string]*models.User),
		connections: make(map[string]string),
	}
}

// PutUser inserts or replaces a user record.
func (s *Store) PutUser(u *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *u
	c.Email = strings.ToLower(c.Email)
	s.users[u.ID] = &c
}

type seedUser struct {
	ID              string   `yaml:"id"`
	Email           string   `yaml:"email"`
	Name            string   `yaml:"name"`
	EmailVerified   bool     `yaml:"email_verified"`
	KYCStatus       string   `yaml:"kyc_status"`
	AccountStatus   string   `yaml:"account_status"`
	Tier            string   `yaml:"tier"`
	CanCreateEscrow *bool    `yaml:"can_create_escrow"`
	Role            string   `yaml:"role"`
	Capabilities    []string `yaml:"capabilities"`
	PayoutAccounts  []struct {
		ID            string `yaml:"id"`
		Type          string `yaml:"type"`
		AccountName   string `yaml:"account_name"`
		AccountNumber string `yaml:"account_number"`
		BankCode      string `yaml:"bank_code"`
		Verified      bool   `yaml:"verified"`
		IsDefault     bool   `yaml:"is_default"`
	} `yaml:"payout_accounts"`
}

// LoadUsers seeds users from a YAML list, for local runs without DynamoDB.
func (s *Store) LoadUsers(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed users: %w", err)
	}
	var seeds []seedUser
	if err := yaml.Unmarshal(raw, &seeds); err != nil {
		return fmt.Errorf("failed to parse seed users: %w", err)
	}
	for _, su := range seeds {
		u := &models.User{
			ID:              su.ID,
			Email:           su.Email,
			Name:            su.Name,
			EmailVerified:   su.EmailVerified,
			KYCStatus:       models.KYCStatus(su.KYCStatus),
			AccountStatus:   models.AccountStatus(su.AccountStatus),
			Tier:            models.TierID(su.Tier),
			CanCreateEscrow: su.CanCreateEscrow,
			Role:            models.Role(su.Role),
			Capabilities:    su.Capabilities,
		}
		for _, pa := range su.PayoutAccounts {
			u.PayoutAccounts = append(u.PayoutAccounts, models.PayoutAccount(pa))
		}
		s.PutUser(u)
	}
	return nil
}

func (s *Store) GetEscrow(_ context.Context, escrowID string) (*models.Escrow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.escrows[escrowID]
	if !ok {
		return nil, fmt.Errorf("escrow with ID %s: %w", escrowID, storage.ErrNotFound)
	}
	return e.Clone(), nil
}

func (s *Store) ListEscrowsByUser(_ context.Context, userID string) ([]models.Escrow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Escrow
	for _, e := range s.escrows {
		if e.IsParticipant(userID) {
			out = append(out, *e.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListOverdueDeliveries(_ context.Context, now time.Time, limit int32) ([]models.Escrow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Escrow
	for _, e := range s.escrows {
		at := e.Delivery.AutoReleaseAt
		if e.Status == models.StatusDelivered && at != nil && !at.After(now) {
			out = append(out, *e.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Delivery.AutoReleaseAt.Before(*out[j].Delivery.AutoReleaseAt) })
	if limit > 0 && len(out) > int(limit) {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) CreateEscrow(_ context.Context, e *models.Escrow, usage storage.UsageUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.escrows[e.ID]; ok {
		return fmt.Errorf("escrow %s: %w", e.ID, storage.ErrConcurrentModification)
	}
	if _, ok := s.references[e.EscrowRef]; ok {
		return fmt.Errorf("escrow reference %s: %w", e.EscrowRef, storage.ErrDuplicateReference)
	}
	u, ok := s.users[usage.UserID]
	if !ok || u.MonthlyUsage != usage.Previous {
		return fmt.Errorf("user usage for %s: %w", usage.UserID, storage.ErrConcurrentModification)
	}

	s.escrows[e.ID] = e.Clone()
	s.references[e.EscrowRef] = e.ID
	u.MonthlyUsage = usage.Next
	return nil
}

// checkTransition applies the same condition as the DynamoDB update.
func (s *Store) checkTransition(t *models.Transition) (*models.Escrow, error) {
	cur, ok := s.escrows[t.Escrow.ID]
	if !ok {
		return nil, fmt.Errorf("escrow %s: %w", t.Escrow.ID, storage.ErrConcurrentModification)
	}
	if cur.Status != t.From || cur.Version != t.FromVersion {
		return nil, fmt.Errorf("escrow %s: %w", t.Escrow.ID, storage.ErrConcurrentModification)
	}
	if t.SetsPayment && cur.Payment != nil {
		return nil, fmt.Errorf("escrow %s: %w", t.Escrow.ID, storage.ErrConcurrentModification)
	}
	return cur, nil
}

// commit appends the entry to the stored timeline rather than copying the caller's.
func (s *Store) commit(cur *models.Escrow, t *models.Transition) {
	next := t.Escrow.Clone()
	next.Timeline = append(cur.Clone().Timeline, t.Entry)
	if !t.SetsPayment {
		next.Payment = cur.Clone().Payment
	}
	s.escrows[next.ID] = next
}

func (s *Store) ApplyTransition(_ context.Context, t *models.Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, err := s.checkTransition(t)
	if err != nil {
		return err
	}
	s.commit(cur, t)
	return nil
}

func (s *Store) GetDispute(_ context.Context, disputeID string) (*models.Dispute, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.disputes[disputeID]
	if !ok {
		return nil, fmt.Errorf("dispute with ID %s: %w", disputeID, storage.ErrNotFound)
	}
	return d.Clone(), nil
}

func (s *Store) OpenDispute(_ context.Context, d *models.Dispute, t *models.Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.disputes[d.ID]; ok {
		return fmt.Errorf("dispute %s: %w", d.ID, storage.ErrConcurrentModification)
	}
	cur, err := s.checkTransition(t)
	if err != nil {
		return err
	}
	s.disputes[d.ID] = d.Clone()
	s.commit(cur, t)
	return nil
}

func (s *Store) checkDispute(d *models.Dispute, expectedVersion int64) error {
	cur, ok := s.disputes[d.ID]
	if !ok || cur.Version != expectedVersion || cur.Status == models.DisputeResolved {
		return fmt.Errorf("dispute %s: %w", d.ID, storage.ErrConcurrentModification)
	}
	return nil
}

func (s *Store) AssignDispute(_ context.Context, d *models.Dispute, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkDispute(d, expectedVersion); err != nil {
		return err
	}
	s.disputes[d.ID] = d.Clone()
	return nil
}

func (s *Store) ResolveDispute(_ context.Context, d *models.Dispute, expectedVersion int64, t *models.Transition) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkDispute(d, expectedVersion); err != nil {
		return err
	}
	cur, err := s.checkTransition(t)
	if err != nil {
		return err
	}
	s.disputes[d.ID] = d.Clone()
	s.commit(cur, t)
	return nil
}

func (s *Store) GetUser(_ context.Context, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user with ID %s: %w", userID, storage.ErrNotFound)
	}
	c := *u
	return &c, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, fmt.Errorf("user with email %s: %w", email, storage.ErrNotFound)
}

func (s *Store) AddConnection(_ context.Context, connectionID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connections[connectionID] = userID
	return nil
}

func (s *Store) RemoveConnection(_ context.Context, connectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.connections, connectionID)
	return nil
}

func (s *Store) GetConnectionsByUser(_ context.Context, userID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, uid := range s.connections {
		if uid == userID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
