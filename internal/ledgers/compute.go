package ledgers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/splitwallet-backend/internal/reporting"
	"github.com/angelmondragon/splitwallet-backend/internal/settlement"
	"github.com/angelmondragon/splitwallet-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/splitwallet-backend/pkg/errors"
	"github.com/angelmondragon/splitwallet-backend/pkg/money"
)

const (
	opBalances     = "balances"
	opPlan         = "plan"
	opRecordPlan   = "record_plan"
	opCategories   = "report_categories"
	opTimeline     = "report_timeline"
	opMemberReport = "report_member"
	opAudit        = "report_audit"
	opSummary      = "summary"
)

// snapshot is everything a computation reads, loaded in a single transaction.
type snapshot struct {
	event  models.Event
	ledger settlement.Ledger
}

func (s *service) loadSnapshot(ctx context.Context, repo Repository, ownerID, eventID uuid.UUID) (*snapshot, error) {
	event, err := s.ownedEvent(ctx, repo, ownerID, eventID)
	if err != nil {
		return nil, err
	}
	members, err := repo.ListMembers(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	expenses, err := repo.ListExpenses(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expenses")
	}

	ledger := settlement.Ledger{
		EventID:  eventID,
		Members:  make([]settlement.Member, 0, len(members)),
		Expenses: make([]settlement.Expense, 0, len(expenses)),
	}
	for _, member := range members {
		ledger.Members = append(ledger.Members, toLedgerMember(member))
	}
	for _, expense := range expenses {
		ledger.Expenses = append(ledger.Expenses, toLedgerExpense(expense))
	}
	return &snapshot{event: *event, ledger: ledger}, nil
}

// readSnapshot loads a consistent snapshot and applies the view options.
func (s *service) readSnapshot(ctx context.Context, ownerID, eventID uuid.UUID, opts ViewOptions) (*snapshot, error) {
	var snap *snapshot
	err := s.tx.WithReadTx(ctx, func(tx *gorm.DB) error {
		loaded, err := s.loadSnapshot(ctx, s.repo.WithTx(tx), ownerID, eventID)
		if err != nil {
			return err
		}
		snap = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	if opts.ApprovedOnly {
		snap.ledger = snap.ledger.Filter(settlement.ApprovedOnly)
	}
	return snap, nil
}

// observe records duration and outcome of one computation.
func (s *service) observe(ctx context.Context, op string, started time.Time, err error) {
	s.metrics.ObserveDuration(op, time.Since(started))
	if err == nil {
		s.metrics.IncSuccess(op)
		return
	}
	code := errorCode(err)
	s.metrics.IncFailure(op, code)
	if code == string(pkgerrors.CodeUnbalancedLedger) {
		s.logg.Error(s.logg.WithField(ctx, "operation", op), "ledger integrity failure", err)
	}
}

func (s *service) Balances(ctx context.Context, ownerID, eventID uuid.UUID, opts ViewOptions) (sheet *settlement.BalanceSheet, err error) {
	started := time.Now()
	defer func() { s.observe(ctx, opBalances, started, err) }()

	sheet = &settlement.BalanceSheet{}
	err = s.cached(ctx, opBalances, ownerID, eventID, opts, sheet, func(snap *snapshot) error {
		computed, err := s.engine.Aggregate(snap.ledger)
		if err != nil {
			return mapEngineError(err)
		}
		*sheet = *computed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sheet, nil
}

func (s *service) Plan(ctx context.Context, ownerID, eventID uuid.UUID, opts ViewOptions) (result *settlement.Result, err error) {
	started := time.Now()
	defer func() { s.observe(ctx, opPlan, started, err) }()

	result = &settlement.Result{}
	err = s.cached(ctx, opPlan, ownerID, eventID, opts, result, func(snap *snapshot) error {
		computed, err := s.engine.Settle(snap.ledger)
		if err != nil {
			return mapEngineError(err)
		}
		*result = *computed
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.ObservePlan(len(result.Transactions))
	return result, nil
}

// RecordPlan computes the plan and stores every planned transfer as a recorded transaction, all
// inside one transaction so the stored plan matches the snapshot it came from.
func (s *service) RecordPlan(ctx context.Context, ownerID, eventID uuid.UUID, opts ViewOptions) (out []TransactionDTO, err error) {
	started := time.Now()
	defer func() { s.observe(ctx, opRecordPlan, started, err) }()

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		snap, err := s.loadSnapshot(ctx, repo, ownerID, eventID)
		if err != nil {
			return err
		}
		ledger := snap.ledger
		if opts.ApprovedOnly {
			ledger = ledger.Filter(settlement.ApprovedOnly)
		}
		result, err := s.engine.Settle(ledger)
		if err != nil {
			return mapEngineError(err)
		}

		settledAt := s.now()
		rows := make([]models.Transaction, 0, len(result.Transactions))
		for _, planned := range result.Transactions {
			rows = append(rows, models.Transaction{
				EventID:   eventID,
				PayerID:   planned.PayerID,
				PayeeID:   planned.PayeeID,
				Amount:    planned.Amount,
				ExpenseID: planned.ExpenseID,
				Note:      "settlement plan",
				SettledAt: settledAt,
			})
		}
		if err := repo.CreateTransactions(ctx, rows); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record transactions")
		}

		names := memberNames(ledger)
		out = make([]TransactionDTO, 0, len(rows))
		for _, row := range rows {
			out = append(out, toTransactionDTO(row, names))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{"event_id": eventID.String(), "transactions": len(out)}), "settlement plan recorded")
	return out, nil
}

func (s *service) RecordTransaction(ctx context.Context, ownerID, eventID uuid.UUID, input TransactionInput) (*TransactionDTO, error) {
	if input.PayerID == uuid.Nil || input.PayeeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payer and payee are required")
	}
	if input.PayerID == input.PayeeID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payer and payee must differ")
	}
	if err := money.Validate(input.Amount); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount")
	}
	if !input.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	settledAt := input.SettledAt
	if settledAt.IsZero() {
		settledAt = s.now()
	}

	var out TransactionDTO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.ownedEvent(ctx, repo, ownerID, eventID); err != nil {
			return err
		}
		payer, err := repo.FindMember(ctx, eventID, input.PayerID)
		if err != nil {
			return notFoundOr(err, "payer")
		}
		payee, err := repo.FindMember(ctx, eventID, input.PayeeID)
		if err != nil {
			return notFoundOr(err, "payee")
		}
		if input.ExpenseID != nil {
			if _, err := repo.FindExpense(ctx, eventID, *input.ExpenseID); err != nil {
				return notFoundOr(err, "expense")
			}
		}

		row := models.Transaction{
			EventID:   eventID,
			PayerID:   payer.ID,
			PayeeID:   payee.ID,
			Amount:    input.Amount,
			ExpenseID: input.ExpenseID,
			Note:      input.Note,
			SettledAt: settledAt,
		}
		if err := repo.CreateTransactions(ctx, []models.Transaction{row}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record transaction")
		}
		out = toTransactionDTO(row, map[uuid.UUID]string{payer.ID: payer.Name, payee.ID: payee.Name})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *service) ListTransactions(ctx context.Context, ownerID, eventID uuid.UUID) ([]TransactionDTO, error) {
	snap, err := s.readSnapshot(ctx, ownerID, eventID, ViewOptions{})
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListTransactions(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}
	names := memberNames(snap.ledger)
	out := make([]TransactionDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toTransactionDTO(row, names))
	}
	return out, nil
}

func (s *service) CategoryReport(ctx context.Context, ownerID, eventID uuid.UUID, opts ViewOptions) (report reporting.CategoryReport, err error) {
	started := time.Now()
	defer func() { s.observe(ctx, opCategories, started, err) }()

	snap, err := s.readSnapshot(ctx, ownerID, eventID, opts)
	if err != nil {
		return reporting.CategoryReport{}, err
	}
	return reporting.ByCategory(snap.ledger.Expenses), nil
}

func (s *service) TimeReport(ctx context.Context, ownerID, eventID uuid.UUID, granularity reporting.Granularity, opts ViewOptions) (report reporting.TimeReport, err error) {
	started := time.Now()
	defer func() { s.observe(ctx, opTimeline, started, err) }()

	if !granularity.IsValid() {
		return reporting.TimeReport{}, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid granularity %q", granularity)
	}
	snap, err := s.readSnapshot(ctx, ownerID, eventID, opts)
	if err != nil {
		return reporting.TimeReport{}, err
	}
	return reporting.ByPeriod(snap.ledger.Expenses, granularity), nil
}

func (s *service) MemberReport(ctx context.Context, ownerID, eventID, memberID uuid.UUID, opts ViewOptions) (report reporting.MemberSummary, err error) {
	started := time.Now()
	defer func() { s.observe(ctx, opMemberReport, started, err) }()

	snap, err := s.readSnapshot(ctx, ownerID, eventID, opts)
	if err != nil {
		return reporting.MemberSummary{}, err
	}
	sheet, err := s.engine.Aggregate(snap.ledger)
	if err != nil {
		return reporting.MemberSummary{}, mapEngineError(err)
	}
	report, err = reporting.MemberReport(sheet, snap.ledger.Expenses, memberID)
	if err != nil {
		return reporting.MemberSummary{}, mapEngineError(err)
	}
	return report, nil
}

func (s *service) MemberCategories(ctx context.Context, ownerID, eventID, memberID uuid.UUID, opts ViewOptions) (reporting.CategoryReport, error) {
	snap, err := s.readSnapshot(ctx, ownerID, eventID, opts)
	if err != nil {
		return reporting.CategoryReport{}, err
	}
	if _, ok := snap.ledger.Member(memberID); !ok {
		return reporting.CategoryReport{}, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
	}
	return reporting.ForMember(snap.ledger.Expenses, memberID), nil
}

func (s *service) AuditTrail(ctx context.Context, ownerID, eventID uuid.UUID, opts ViewOptions) (entries []reporting.AuditEntry, err error) {
	started := time.Now()
	defer func() { s.observe(ctx, opAudit, started, err) }()

	snap, err := s.readSnapshot(ctx, ownerID, eventID, opts)
	if err != nil {
		return nil, err
	}
	entries, err = reporting.AuditTrail(snap.ledger, s.engine.Allocator)
	if err != nil {
		return nil, mapEngineError(err)
	}
	return entries, nil
}

func (s *service) Summary(ctx context.Context, ownerID, eventID uuid.UUID, opts ViewOptions) (summary reporting.Summary, err error) {
	started := time.Now()
	defer func() { s.observe(ctx, opSummary, started, err) }()

	snap, err := s.readSnapshot(ctx, ownerID, eventID, opts)
	if err != nil {
		return reporting.Summary{}, err
	}
	return reporting.Summarize(snap.ledger, snap.event.StartDate, snap.event.EndDate), nil
}

func memberNames(ledger settlement.Ledger) map[uuid.UUID]string {
	names := make(map[uuid.UUID]string, len(ledger.Members))
	for _, member := range ledger.Members {
		names[member.ID] = member.Name
	}
	return names
}
