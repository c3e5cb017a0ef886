// Package ledgers persists events, members, expenses and recorded transactions, and runs the
// settlement engine over consistent snapshots of them.
package ledgers

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/splitwallet-backend/internal/reporting"
	"github.com/angelmondragon/splitwallet-backend/internal/settlement"
	"github.com/angelmondragon/splitwallet-backend/pkg/db"
	"github.com/angelmondragon/splitwallet-backend/pkg/db/models"
	"github.com/angelmondragon/splitwallet-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/splitwallet-backend/pkg/errors"
	"github.com/angelmondragon/splitwallet-backend/pkg/logger"
	"github.com/angelmondragon/splitwallet-backend/pkg/metrics"
	"github.com/angelmondragon/splitwallet-backend/pkg/money"
	"github.com/angelmondragon/splitwallet-backend/pkg/redis"
)

const (
	maxTitleLength         = 255
	maxEventLocationLength = 255
	maxNameLength          = 50
	maxDescriptionLength   = 255
	maxLocationLength      = 50
)

// Service exposes event bookkeeping and the computations built on it. Every call is scoped to the
// owner passed in; events of other owners behave as if they did not exist.
type Service interface {
	CreateEvent(ctx context.Context, ownerID uuid.UUID, input CreateEventInput) (*EventDTO, error)
	GetEvent(ctx context.Context, ownerID, eventID uuid.UUID) (*EventDTO, error)
	ListEvents(ctx context.Context, ownerID uuid.UUID) ([]EventDTO, error)
	UpdateEvent(ctx context.Context, ownerID, eventID uuid.UUID, input CreateEventInput) (*EventDTO, error)
	DeleteEvent(ctx context.Context, ownerID, eventID uuid.UUID) error
	EventsByYear(ctx context.Context, ownerID uuid.UUID) ([]reporting.YearCount, error)
	OwnerAnalytics(ctx context.Context, ownerID uuid.UUID, opts ViewOptions) (reporting.OwnerAnalytics, error)

	AddMember(ctx context.Context, ownerID, eventID uuid.UUID, name string) (*MemberDTO, error)
	ListMembers(ctx context.Context, ownerID, eventID uuid.UUID) ([]MemberDTO, error)
	RenameMember(ctx context.Context, ownerID, eventID, memberID uuid.UUID, name string) (*MemberDTO, error)
	DeleteMember(ctx context.Context, ownerID, eventID, memberID uuid.UUID) error

	CreateExpense(ctx context.Context, ownerID, eventID uuid.UUID, input ExpenseInput) (*settlement.Expense, error)
	UpdateExpense(ctx context.Context, ownerID, eventID, expenseID uuid.UUID, input ExpenseInput) (*settlement.Expense, error)
	DeleteExpense(ctx context.Context, ownerID, eventID, expenseID uuid.UUID) error
	ListExpenses(ctx context.Context, ownerID, eventID uuid.UUID) ([]settlement.Expense, error)

	Balances(ctx context.Context, ownerID, eventID uuid.UUID, opts ViewOptions) (*settlement.BalanceSheet, error)
	Plan(ctx context.Context, ownerID, eventID uuid.UUID, opts ViewOptions) (*settlement.Result, error)
	RecordPlan(ctx context.Context, ownerID, eventID uuid.UUID, opts ViewOptions) ([]TransactionDTO, error)
	RecordTransaction(ctx context.Context, ownerID, eventID uuid.UUID, input TransactionInput) (*TransactionDTO, error)
	ListTransactions(ctx context.Context, ownerID, eventID uuid.UUID) ([]TransactionDTO, error)

	CategoryReport(ctx context.Context, ownerID, eventID uuid.UUID, opts ViewOptions) (reporting.CategoryReport, error)
	TimeReport(ctx context.Context, ownerID, eventID uuid.UUID, granularity reporting.Granularity, opts ViewOptions) (reporting.TimeReport, error)
	MemberReport(ctx context.Context, ownerID, eventID, memberID uuid.UUID, opts ViewOptions) (reporting.MemberSummary, error)
	MemberCategories(ctx context.Context, ownerID, eventID, memberID uuid.UUID, opts ViewOptions) (reporting.CategoryReport, error)
	AuditTrail(ctx context.Context, ownerID, eventID uuid.UUID, opts ViewOptions) ([]reporting.AuditEntry, error)
	Summary(ctx context.Context, ownerID, eventID uuid.UUID, opts ViewOptions) (reporting.Summary, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	WithReadTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams groups the service dependencies. Cache, Metrics and Logger are optional.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Engine   settlement.Engine
	Cache    redis.ResultStore
	CacheTTL time.Duration
	Metrics  *metrics.EngineMetrics
	Logger   *logger.Logger
	Clock    func() time.Time
}

type service struct {
	repo     Repository
	tx       txRunner
	engine   settlement.Engine
	cache    redis.ResultStore
	cacheTTL time.Duration
	metrics  *metrics.EngineMetrics
	logg     *logger.Logger
	now      func() time.Time
}

// NewService wires the ledger service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Clock
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		engine:   params.Engine,
		cache:    params.Cache,
		cacheTTL: ttl,
		metrics:  params.Metrics,
		logg:     logg,
		now:      now,
	}, nil
}

func (s *service) CreateEvent(ctx context.Context, ownerID uuid.UUID, input CreateEventInput) (*EventDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	input, err := normalizeEvent(input)
	if err != nil {
		return nil, err
	}

	event := &models.Event{OwnerID: ownerID}
	applyEventInput(event, input)
	if err := s.repo.CreateEvent(ctx, event); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "an event with this title already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create event")
	}

	s.logg.Info(s.logg.WithEventID(ctx, event.ID.String()), "event created")
	dto := toEventDTO(*event)
	return &dto, nil
}

func (s *service) GetEvent(ctx context.Context, ownerID, eventID uuid.UUID) (*EventDTO, error) {
	event, err := s.ownedEvent(ctx, s.repo, ownerID, eventID)
	if err != nil {
		return nil, err
	}
	dto := toEventDTO(*event)
	return &dto, nil
}

func (s *service) ListEvents(ctx context.Context, ownerID uuid.UUID) ([]EventDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	events, err := s.repo.ListEventsByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list events")
	}
	out := make([]EventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, toEventDTO(event))
	}
	return out, nil
}

// UpdateEvent replaces the editable fields of an event. Cached computations of the event expire
// with the bumped updated_at.
func (s *service) UpdateEvent(ctx context.Context, ownerID, eventID uuid.UUID, input CreateEventInput) (*EventDTO, error) {
	input, err := normalizeEvent(input)
	if err != nil {
		return nil, err
	}
	var event *models.Event
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		found, err := s.ownedEvent(ctx, repo, ownerID, eventID)
		if err != nil {
			return err
		}
		applyEventInput(found, input)
		found.UpdatedAt = s.now()
		if err := repo.UpdateEvent(ctx, found); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "an event with this title already exists")
			}
			return notFoundOr(err, "event")
		}
		event = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logg.Info(s.logg.WithEventID(ctx, eventID.String()), "event updated")
	dto := toEventDTO(*event)
	return &dto, nil
}

func (s *service) DeleteEvent(ctx context.Context, ownerID, eventID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.ownedEvent(ctx, repo, ownerID, eventID); err != nil {
			return err
		}
		if err := repo.DeleteEvent(ctx, eventID); err != nil {
			return notFoundOr(err, "event")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logg.Info(s.logg.WithEventID(ctx, eventID.String()), "event deleted")
	return nil
}

func (s *service) EventsByYear(ctx context.Context, ownerID uuid.UUID) ([]reporting.YearCount, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	events, err := s.repo.ListEventsByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list events")
	}
	starts := make([]time.Time, 0, len(events))
	for _, event := range events {
		starts = append(starts, event.StartDate)
	}
	return reporting.EventsByYear(starts), nil
}

// OwnerAnalytics aggregates every event of the owner: totals, per start year activity, category
// shares and expenses per day.
func (s *service) OwnerAnalytics(ctx context.Context, ownerID uuid.UUID, opts ViewOptions) (reporting.OwnerAnalytics, error) {
	if ownerID == uuid.Nil {
		return reporting.OwnerAnalytics{}, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	var (
		events   []models.Event
		expenses []models.Expense
	)
	err := s.tx.WithReadTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		var err error
		if events, err = repo.ListEventsByOwner(ctx, ownerID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list events")
		}
		if expenses, err = repo.ListExpensesByOwner(ctx, ownerID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expenses")
		}
		return nil
	})
	if err != nil {
		return reporting.OwnerAnalytics{}, err
	}

	spans := make([]reporting.EventSpan, 0, len(events))
	for _, event := range events {
		spans = append(spans, reporting.EventSpan{ID: event.ID, Start: event.StartDate, End: event.EndDate})
	}
	ledgerExpenses := make([]settlement.Expense, 0, len(expenses))
	for _, expense := range expenses {
		converted := toLedgerExpense(expense)
		if opts.ApprovedOnly && !settlement.ApprovedOnly(converted) {
			continue
		}
		ledgerExpenses = append(ledgerExpenses, converted)
	}
	return reporting.Analyze(spans, ledgerExpenses), nil
}

func (s *service) AddMember(ctx context.Context, ownerID, eventID uuid.UUID, name string) (*MemberDTO, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	member := &models.Member{EventID: eventID, Name: name}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.ownedEvent(ctx, repo, ownerID, eventID); err != nil {
			return err
		}
		if err := repo.CreateMember(ctx, member); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "a member with this name already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create member")
		}
		return s.touch(ctx, repo, eventID)
	})
	if err != nil {
		return nil, err
	}
	dto := toMemberDTO(*member)
	return &dto, nil
}

func (s *service) ListMembers(ctx context.Context, ownerID, eventID uuid.UUID) ([]MemberDTO, error) {
	if _, err := s.ownedEvent(ctx, s.repo, ownerID, eventID); err != nil {
		return nil, err
	}
	members, err := s.repo.ListMembers(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	out := make([]MemberDTO, 0, len(members))
	for _, member := range members {
		out = append(out, toMemberDTO(member))
	}
	return out, nil
}

func (s *service) RenameMember(ctx context.Context, ownerID, eventID, memberID uuid.UUID, name string) (*MemberDTO, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	var member *models.Member
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.ownedEvent(ctx, repo, ownerID, eventID); err != nil {
			return err
		}
		found, err := repo.FindMember(ctx, eventID, memberID)
		if err != nil {
			return notFoundOr(err, "member")
		}
		if err := repo.RenameMember(ctx, memberID, name); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "a member with this name already exists")
			}
			return notFoundOr(err, "member")
		}
		found.Name = name
		member = found
		return s.touch(ctx, repo, eventID)
	})
	if err != nil {
		return nil, err
	}
	dto := toMemberDTO(*member)
	return &dto, nil
}

// DeleteMember removes a member who is neither payer nor contributor of any expense. Recorded
// transactions involving the member go with it.
func (s *service) DeleteMember(ctx context.Context, ownerID, eventID, memberID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.ownedEvent(ctx, repo, ownerID, eventID); err != nil {
			return err
		}
		if _, err := repo.FindMember(ctx, eventID, memberID); err != nil {
			return notFoundOr(err, "member")
		}
		inUse, err := repo.MemberInUse(ctx, memberID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check member usage")
		}
		if inUse {
			return pkgerrors.New(pkgerrors.CodeConflict, "member is referenced by expenses").
				WithDetails(map[string]any{"member_id": memberID})
		}
		if err := repo.DeleteMember(ctx, memberID); err != nil {
			return notFoundOr(err, "member")
		}
		return s.touch(ctx, repo, eventID)
	})
}

func (s *service) CreateExpense(ctx context.Context, ownerID, eventID uuid.UUID, input ExpenseInput) (*settlement.Expense, error) {
	expense := &models.Expense{EventID: eventID, ID: uuid.New()}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		event, err := s.ownedEvent(ctx, repo, ownerID, eventID)
		if err != nil {
			return err
		}
		normalized, err := s.normalizeExpense(ctx, repo, event, input)
		if err != nil {
			return err
		}
		applyExpenseInput(expense, normalized)
		if err := repo.CreateExpense(ctx, expense); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create expense")
		}
		return s.touch(ctx, repo, eventID)
	})
	if err != nil {
		return nil, err
	}
	out := toLedgerExpense(*expense)
	return &out, nil
}

func (s *service) UpdateExpense(ctx context.Context, ownerID, eventID, expenseID uuid.UUID, input ExpenseInput) (*settlement.Expense, error) {
	var expense *models.Expense
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		event, err := s.ownedEvent(ctx, repo, ownerID, eventID)
		if err != nil {
			return err
		}
		found, err := repo.FindExpense(ctx, eventID, expenseID)
		if err != nil {
			return notFoundOr(err, "expense")
		}
		normalized, err := s.normalizeExpense(ctx, repo, event, input)
		if err != nil {
			return err
		}
		applyExpenseInput(found, normalized)
		if err := repo.UpdateExpense(ctx, found); err != nil {
			return notFoundOr(err, "expense")
		}
		expense = found
		return s.touch(ctx, repo, eventID)
	})
	if err != nil {
		return nil, err
	}
	out := toLedgerExpense(*expense)
	return &out, nil
}

func (s *service) DeleteExpense(ctx context.Context, ownerID, eventID, expenseID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.ownedEvent(ctx, repo, ownerID, eventID); err != nil {
			return err
		}
		if _, err := repo.FindExpense(ctx, eventID, expenseID); err != nil {
			return notFoundOr(err, "expense")
		}
		if err := repo.DeleteExpense(ctx, expenseID); err != nil {
			return notFoundOr(err, "expense")
		}
		return s.touch(ctx, repo, eventID)
	})
}

func (s *service) ListExpenses(ctx context.Context, ownerID, eventID uuid.UUID) ([]settlement.Expense, error) {
	if _, err := s.ownedEvent(ctx, s.repo, ownerID, eventID); err != nil {
		return nil, err
	}
	expenses, err := s.repo.ListExpenses(ctx, eventID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expenses")
	}
	out := make([]settlement.Expense, 0, len(expenses))
	for _, expense := range expenses {
		out = append(out, toLedgerExpense(expense))
	}
	return out, nil
}

// normalizeExpense validates input against the event and fills defaults.
func (s *service) normalizeExpense(ctx context.Context, repo Repository, event *models.Event, input ExpenseInput) (ExpenseInput, error) {
	input.Description = strings.TrimSpace(input.Description)
	if input.Description == "" || utf8.RuneCountInString(input.Description) > maxDescriptionLength {
		return input, pkgerrors.Newf(pkgerrors.CodeValidation, "description must be between 1 and %d characters", maxDescriptionLength)
	}
	if input.Date.IsZero() {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}
	input.Date = truncateDay(input.Date)
	if err := money.Validate(input.Amount); err != nil {
		return input, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid amount")
	}
	input.Location = strings.TrimSpace(input.Location)
	if utf8.RuneCountInString(input.Location) > maxLocationLength {
		return input, pkgerrors.Newf(pkgerrors.CodeValidation, "location must be at most %d characters", maxLocationLength)
	}
	if input.Category != "" && !input.Category.IsValid() {
		return input, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid category %q", input.Category)
	}
	if input.PaymentMethod != "" && !input.PaymentMethod.IsValid() {
		return input, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid payment method %q", input.PaymentMethod)
	}
	if input.Currency == "" {
		input.Currency = event.Currency
	}
	if !input.Currency.IsValid() {
		return input, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid currency %q", input.Currency)
	}
	if input.ApprovalStatus == "" {
		input.ApprovalStatus = enums.ApprovalStatusPending
	}
	if !input.ApprovalStatus.IsValid() {
		return input, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid approval status %q", input.ApprovalStatus)
	}
	if len(input.ContributorIDs) == 0 {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "at least one contributor is required")
	}

	members, err := repo.ListMembers(ctx, event.ID)
	if err != nil {
		return input, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	known := make(map[uuid.UUID]struct{}, len(members))
	for _, member := range members {
		known[member.ID] = struct{}{}
	}
	if _, ok := known[input.PayerID]; !ok {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "payer is not a member of this event").
			WithDetails(map[string]any{"payer_id": input.PayerID})
	}
	seen := make(map[uuid.UUID]struct{}, len(input.ContributorIDs))
	for _, id := range input.ContributorIDs {
		if _, ok := known[id]; !ok {
			return input, pkgerrors.New(pkgerrors.CodeValidation, "contributor is not a member of this event").
				WithDetails(map[string]any{"member_id": id})
		}
		if _, dup := seen[id]; dup {
			return input, pkgerrors.New(pkgerrors.CodeValidation, "duplicate contributor").
				WithDetails(map[string]any{"member_id": id})
		}
		seen[id] = struct{}{}
	}
	return input, nil
}

// ownedEvent loads the event and hides it from anyone but its owner.
func (s *service) ownedEvent(ctx context.Context, repo Repository, ownerID, eventID uuid.UUID) (*models.Event, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	if eventID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event id is required")
	}
	event, err := repo.FindEvent(ctx, eventID)
	if err != nil {
		return nil, notFoundOr(err, "event")
	}
	if event.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
	}
	return event, nil
}

func (s *service) touch(ctx context.Context, repo Repository, eventID uuid.UUID) error {
	if err := repo.TouchEvent(ctx, eventID, s.now()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch event")
	}
	return nil
}

// normalizeEvent trims and validates event fields and fills the default currency.
func normalizeEvent(input CreateEventInput) (CreateEventInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" || utf8.RuneCountInString(input.Title) > maxTitleLength {
		return input, pkgerrors.Newf(pkgerrors.CodeValidation, "title must be between 1 and %d characters", maxTitleLength)
	}
	input.Description = strings.TrimSpace(input.Description)
	input.Location = strings.TrimSpace(input.Location)
	if utf8.RuneCountInString(input.Location) > maxEventLocationLength {
		return input, pkgerrors.Newf(pkgerrors.CodeValidation, "location must be at most %d characters", maxEventLocationLength)
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "start and end dates are required")
	}
	if input.EndDate.Before(input.StartDate) {
		return input, pkgerrors.New(pkgerrors.CodeValidation, "end date must not be before start date")
	}
	if input.Currency == "" {
		input.Currency = enums.DefaultCurrency
	}
	if !input.Currency.IsValid() {
		return input, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid currency %q", input.Currency)
	}
	return input, nil
}

func applyEventInput(event *models.Event, input CreateEventInput) {
	event.Title = input.Title
	event.Description = input.Description
	event.Location = input.Location
	event.StartDate = truncateDay(input.StartDate)
	event.EndDate = truncateDay(input.EndDate)
	event.Currency = input.Currency
}

func cleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > maxNameLength {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "name must be between 1 and %d characters", maxNameLength)
	}
	return name, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
