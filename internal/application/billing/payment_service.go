package billing

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/travelcrm/backend/internal/domain/payment"
	"github.com/travelcrm/backend/internal/domain/shared"
	"github.com/travelcrm/backend/internal/domain/shared/valueobject"
	"github.com/travelcrm/backend/internal/infrastructure/telemetry"
)

// PaymentService maintains the append-only installment ledger for each
// family head. The balance chain is serialized by a write lock on the
// family-head row, which exists before the first installment does;
// concurrent submissions for the same family head queue up instead of
// racing the read-then-insert sequence.
type PaymentService struct {
	scope   TransactionScope
	storage ProofStorage
}

// NewPaymentService creates a new payment ledger service
func NewPaymentService(scope TransactionScope, storage ProofStorage) *PaymentService {
	return &PaymentService{scope: scope, storage: storage}
}

// ProofUpload carries an optional payment-proof file
type ProofUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// RecordPaymentRequest represents an installment submission
type RecordPaymentRequest struct {
	TenantID     uuid.UUID
	FamilyHeadID uuid.UUID
	Advance      decimal.Decimal
	Mode         payment.PaymentMode
	Remark       string
	Proof        *ProofUpload
}

// RecordPayment appends an installment. The proof file is uploaded first;
// inside the transaction the family-head row is locked, the prior balance
// is read (the grand total when no installment exists yet) and an advance
// that would drive the balance negative is rejected with no state change.
func (s *PaymentService) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*payment.Installment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "record_payment")
	defer span.End()
	telemetry.SetAttribute(span, "advance", req.Advance.String())

	proofPath := ""
	if req.Proof != nil {
		key := fmt.Sprintf("proofs/%s/%s/%s%s",
			req.TenantID, req.FamilyHeadID, uuid.New(), path.Ext(req.Proof.FileName))
		if err := s.storage.Upload(ctx, key, req.Proof.Data, req.Proof.ContentType); err != nil {
			telemetry.RecordError(span, err)
			return nil, fmt.Errorf("failed to upload payment proof: %w", err)
		}
		proofPath = key
	}

	var installment *payment.Installment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		head, err := repos.FamilyHeadRepo().FindByIDForTenantForUpdate(ctx, req.TenantID, req.FamilyHeadID)
		if err != nil {
			return err
		}

		priorBalance, err := s.priorBalance(ctx, repos, req.TenantID, req.FamilyHeadID)
		if err != nil {
			return err
		}

		inst, err := payment.NewInstallment(
			req.TenantID, head.EnquiryID, req.FamilyHeadID,
			valueobject.NewMoneyINR(priorBalance),
			valueobject.NewMoneyINR(req.Advance),
			req.Mode, proofPath, req.Remark,
		)
		if err != nil {
			return err
		}

		if err := repos.InstallmentRepo().Create(ctx, inst); err != nil {
			return fmt.Errorf("failed to save installment: %w", err)
		}
		installment = inst
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, "balance", installment.Balance.String())
	return installment, nil
}

// priorBalance reads the latest installment's balance, falling back to the
// pricing grand total for the first installment. The caller holds the
// family-head row lock, so the read cannot go stale.
func (s *PaymentService) priorBalance(
	ctx context.Context,
	repos TransactionalRepositories,
	tenantID, familyHeadID uuid.UUID,
) (decimal.Decimal, error) {
	latest, err := repos.InstallmentRepo().FindLatest(ctx, tenantID, familyHeadID)
	if err == nil {
		return latest.Balance, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return decimal.Zero, fmt.Errorf("failed to read latest installment: %w", err)
	}

	pricing, err := repos.PricingRepo().FindByFamilyHead(ctx, tenantID, familyHeadID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, shared.NewDomainError("PRICING_REQUIRED",
				"Pricing must be set before payments can be recorded")
		}
		return decimal.Zero, fmt.Errorf("failed to read pricing: %w", err)
	}
	return pricing.GrandTotal, nil
}

// ConfirmPayment advances a pending installment to confirmed.
func (s *PaymentService) ConfirmPayment(ctx context.Context, tenantID, installmentID uuid.UUID) (*payment.Installment, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "billing", "confirm_payment")
	defer span.End()

	var confirmed *payment.Installment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inst, err := repos.InstallmentRepo().FindByIDForTenant(ctx, tenantID, installmentID)
		if err != nil {
			return err
		}
		if err := inst.Confirm(); err != nil {
			return err
		}
		if err := repos.InstallmentRepo().Save(ctx, inst); err != nil {
			return fmt.Errorf("failed to save installment: %w", err)
		}
		confirmed = inst
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	return confirmed, nil
}

// PaymentSummary is the reconciliation view for a family head
type PaymentSummary struct {
	GrandTotal   decimal.Decimal `json:"grand_total"`
	TotalAdvance decimal.Decimal `json:"total_advance"`
	Balance      decimal.Decimal `json:"balance"`
}

// GetPaymentSummary reconciles the ledger: balance is always the grand
// total minus the sum of advances, recomputed from the rows.
func (s *PaymentService) GetPaymentSummary(ctx context.Context, tenantID, familyHeadID uuid.UUID) (*PaymentSummary, error) {
	var summary *PaymentSummary
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		pricing, err := repos.PricingRepo().FindByFamilyHead(ctx, tenantID, familyHeadID)
		if err != nil {
			return err
		}
		total, err := repos.InstallmentRepo().SumAdvances(ctx, tenantID, familyHeadID)
		if err != nil {
			return fmt.Errorf("failed to sum advances: %w", err)
		}
		summary = &PaymentSummary{
			GrandTotal:   pricing.GrandTotal,
			TotalAdvance: total,
			Balance:      pricing.GrandTotal.Sub(total),
		}
		return nil
	})
	return summary, err
}

// ListPayments returns the installment history for a family head.
func (s *PaymentService) ListPayments(ctx context.Context, tenantID, familyHeadID uuid.UUID) ([]payment.Installment, error) {
	var installments []payment.Installment
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		installments, err = repos.InstallmentRepo().FindByFamilyHead(ctx, tenantID, familyHeadID)
		return err
	})
	return installments, err
}

// ProofDownloadURL returns a time-limited URL for an installment's proof file.
func (s *PaymentService) ProofDownloadURL(ctx context.Context, tenantID, installmentID uuid.UUID) (string, error) {
	var proofPath string
	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		inst, err := repos.InstallmentRepo().FindByIDForTenant(ctx, tenantID, installmentID)
		if err != nil {
			return err
		}
		proofPath = inst.ProofPath
		return nil
	})
	if err != nil {
		return "", err
	}
	if proofPath == "" {
		return "", shared.NewDomainError("NO_PROOF", "Installment has no proof file")
	}
	return s.storage.GenerateDownloadURL(ctx, proofPath)
}
