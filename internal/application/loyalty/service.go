package loyalty

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/travelcrm/backend/internal/domain/catalog"
	"github.com/travelcrm/backend/internal/domain/enquiry"
	"github.com/travelcrm/backend/internal/domain/identity"
	"github.com/travelcrm/backend/internal/domain/loyalty"
	"github.com/travelcrm/backend/internal/domain/shared"
	"github.com/travelcrm/backend/internal/infrastructure/telemetry"
)

// Service exposes the loyalty ledger: rolling-window balance reads, point
// posting, redemption with a balance guard, history and referral views. The
// ledger is the source of truth; the cache only shortcuts repeat reads.
type Service struct {
	ledgerRepo  loyalty.LedgerRepository
	userRepo    identity.UserRepository
	enquiryRepo enquiry.Repository
	tourRepo    catalog.TourRepository
	cache       BalanceCache
}

// NewService creates a new loyalty service
func NewService(
	ledgerRepo loyalty.LedgerRepository,
	userRepo identity.UserRepository,
	enquiryRepo enquiry.Repository,
	tourRepo catalog.TourRepository,
	cache BalanceCache,
) *Service {
	return &Service{
		ledgerRepo:  ledgerRepo,
		userRepo:    userRepo,
		enquiryRepo: enquiryRepo,
		tourRepo:    tourRepo,
		cache:       cache,
	}
}

// Balance returns the signed sum of the user's entries inside the trailing
// 365-day window ending at asOf. The value is recomputed from the ledger on
// every miss; only "now" balances are cached.
func (s *Service) Balance(ctx context.Context, tenantID, userID uuid.UUID, asOf time.Time) (int64, error) {
	cacheable := time.Since(asOf) < time.Minute

	if cacheable {
		if balance, ok, err := s.cache.Get(ctx, tenantID, userID); err == nil && ok {
			return balance, nil
		}
	}

	balance, err := s.ledgerRepo.SumWindow(ctx, tenantID, userID, asOf)
	if err != nil {
		return 0, fmt.Errorf("failed to compute balance: %w", err)
	}

	if cacheable {
		if err := s.cache.Set(ctx, tenantID, userID, balance); err != nil {
			// cache set failures never fail the read
			_ = err
		}
	}
	return balance, nil
}

// PostCredit appends a credit entry and invalidates the cached balance.
func (s *Service) PostCredit(ctx context.Context, tenantID, userID uuid.UUID, points int64, reason loyalty.Reason, enquiryID *uuid.UUID, description string) (*loyalty.LedgerEntry, error) {
	entry, err := loyalty.NewCreditEntry(tenantID, userID, points, reason, description)
	if err != nil {
		return nil, err
	}
	if enquiryID != nil {
		entry.WithEnquiry(*enquiryID)
	}
	if err := s.ledgerRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to post credit: %w", err)
	}
	_ = s.cache.Invalidate(ctx, tenantID, userID)
	return entry, nil
}

// PostDebit appends a debit entry and invalidates the cached balance.
func (s *Service) PostDebit(ctx context.Context, tenantID, userID uuid.UUID, points int64, reason loyalty.Reason, enquiryID *uuid.UUID, description string) (*loyalty.LedgerEntry, error) {
	entry, err := loyalty.NewDebitEntry(tenantID, userID, points, reason, description)
	if err != nil {
		return nil, err
	}
	if enquiryID != nil {
		entry.WithEnquiry(*enquiryID)
	}
	if err := s.ledgerRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to post debit: %w", err)
	}
	_ = s.cache.Invalidate(ctx, tenantID, userID)
	return entry, nil
}

// Redeem debits points for a reward, guarded against the rolling-window
// balance: a redemption larger than the current balance is rejected.
func (s *Service) Redeem(ctx context.Context, tenantID, userID uuid.UUID, points int64, description string) (*loyalty.LedgerEntry, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "loyalty", "redeem")
	defer span.End()

	if _, err := s.userRepo.FindByIDForTenant(ctx, tenantID, userID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	balance, err := s.ledgerRepo.SumWindow(ctx, tenantID, userID, time.Now())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to compute balance: %w", err)
	}
	if points > balance {
		err := shared.NewDomainError("INSUFFICIENT_POINTS",
			fmt.Sprintf("Redemption of %d points exceeds balance %d", points, balance))
		telemetry.RecordError(span, err)
		return nil, err
	}

	entry, err := s.PostDebit(ctx, tenantID, userID, points, loyalty.ReasonRedemption, nil, description)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return entry, nil
}

// HistoryEntry is one ledger row decorated for display
type HistoryEntry struct {
	loyalty.LedgerEntry
	TourName string `json:"tour_name,omitempty"`
}

// History returns the user's paginated ledger history, newest first, with
// tour names resolved for entries attributed to an enquiry.
func (s *Service) History(ctx context.Context, tenantID, userID uuid.UUID, page, pageSize int) (shared.Paginated[HistoryEntry], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	entries, total, err := s.ledgerRepo.FindByUser(ctx, tenantID, userID, page, pageSize)
	if err != nil {
		return shared.Paginated[HistoryEntry]{}, err
	}

	names, err := s.resolveTourNames(ctx, tenantID, entries)
	if err != nil {
		return shared.Paginated[HistoryEntry]{}, err
	}

	decorated := make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		h := HistoryEntry{LedgerEntry: entry}
		if entry.EnquiryID != nil {
			h.TourName = names[*entry.EnquiryID]
		}
		decorated = append(decorated, h)
	}
	return shared.NewPaginated(decorated, total, page, pageSize), nil
}

// resolveTourNames maps the entries' enquiry references to tour display names.
func (s *Service) resolveTourNames(ctx context.Context, tenantID uuid.UUID, entries []loyalty.LedgerEntry) (map[uuid.UUID]string, error) {
	tourByEnquiry := make(map[uuid.UUID]uuid.UUID)
	for _, entry := range entries {
		if entry.EnquiryID == nil {
			continue
		}
		if _, seen := tourByEnquiry[*entry.EnquiryID]; seen {
			continue
		}
		e, err := s.enquiryRepo.FindByID(ctx, *entry.EnquiryID)
		if err != nil {
			// dangling reference; leave the name blank rather than fail the page
			continue
		}
		tourByEnquiry[*entry.EnquiryID] = e.TourID
	}

	tourIDs := make([]uuid.UUID, 0, len(tourByEnquiry))
	for _, tourID := range tourByEnquiry {
		tourIDs = append(tourIDs, tourID)
	}
	if len(tourIDs) == 0 {
		return map[uuid.UUID]string{}, nil
	}

	tourNames, err := s.tourRepo.ResolveNames(ctx, tenantID, tourIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tour names: %w", err)
	}

	names := make(map[uuid.UUID]string, len(tourByEnquiry))
	for enquiryID, tourID := range tourByEnquiry {
		names[enquiryID] = tourNames[tourID]
	}
	return names, nil
}

// ReferralCount returns the number of distinct bookings that credited
// this referrer and still stand. Derived from the ledger, never stored.
func (s *Service) ReferralCount(ctx context.Context, tenantID, referrerID uuid.UUID) (int64, error) {
	return s.ledgerRepo.CountActiveReferrals(ctx, tenantID, referrerID)
}
