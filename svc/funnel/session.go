package funnel

import (
	"slices"
	"sync"
	"time"

	"github.com/dmitrymomot/funnel/pkg/checkout"
	"github.com/dmitrymomot/funnel/pkg/downsell"
	"github.com/dmitrymomot/funnel/pkg/environment"
	"github.com/dmitrymomot/funnel/pkg/lead"
	"github.com/dmitrymomot/funnel/pkg/plan"
)

// Entry is what a visitor lands with.
type Entry struct {
	Params    plan.EntryParams
	Language  string
	Referral  string
	ClientIP  string
	UserAgent string
	PageURL   string
}

// Session is the state of one visitor's funnel. All fields are guarded by mu.
type Session struct {
	mu sync.Mutex

	id         string
	env        environment.Environment
	lang       string
	catalog    *plan.Catalog
	resolution plan.Resolution
	lead       lead.Lead
	referral   string
	clientIP   string
	userAgent  string
	pageURL    string

	policy     *downsell.Policy
	submitting bool
	checkout   *checkout.Session

	createdAt time.Time
	touchedAt time.Time
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Snapshot is a read-only copy of a session.
type Snapshot struct {
	ID          string                  `json:"id"`
	Environment environment.Environment `json:"environment"`
	Language    string                  `json:"language"`
	PlanKey     plan.Key                `json:"plan_key,omitempty"`
	Plan        *plan.Definition        `json:"plan,omitempty"`
	PriceID     string                  `json:"price_id"`
	HasTrial    bool                    `json:"has_trial"`
	Source      plan.Source             `json:"source"`
	State       downsell.State          `json:"state"`
	Submitting  bool                    `json:"submitting"`
	Completed   bool                    `json:"completed"`
	OfferShown  bool                    `json:"offer_shown"`
	Offer       *downsell.Offer         `json:"offer,omitempty"`
	Checkout    *checkout.Session       `json:"checkout,omitempty"`
	Email       string                  `json:"email,omitempty"`
	FirstName   string                  `json:"first_name,omitempty"`
	UseCases    []string                `json:"use_cases,omitempty"`
	CreatedAt   time.Time               `json:"created_at"`
}

// Snapshot copies the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		ID:          s.id,
		Environment: s.env,
		Language:    s.lang,
		PlanKey:     s.resolution.Key,
		PriceID:     s.resolution.PriceID,
		HasTrial:    s.resolution.HasTrial,
		Source:      s.resolution.Source,
		State:       s.policy.State(),
		Submitting:  s.submitting,
		Completed:   s.policy.Completed(),
		OfferShown:  s.policy.Shown(),
		Email:       s.lead.Email,
		FirstName:   s.lead.FirstName,
		UseCases:    slices.Clone(s.lead.UseCases),
		CreatedAt:   s.createdAt,
	}
	if s.resolution.Plan != nil {
		def := *s.resolution.Plan
		snap.Plan = &def
	}
	if offer := s.policy.Offer(); offer != nil {
		o := *offer
		snap.Offer = &o
	}
	if s.checkout != nil {
		cs := *s.checkout
		snap.Checkout = &cs
	}
	return snap
}

func (s *Session) setSubmitting(v bool) {
	s.mu.Lock()
	s.submitting = v
	s.mu.Unlock()
}
