package ledgers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/angelmondragon/splitwallet-backend/internal/reporting"
	"github.com/angelmondragon/splitwallet-backend/internal/settlement"
	"github.com/angelmondragon/splitwallet-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/splitwallet-backend/pkg/errors"
	"github.com/angelmondragon/splitwallet-backend/pkg/metrics"
)

type fakeResultStore struct {
	values map[string]string
	getErr error
	sets   int
}

func newFakeResultStore() *fakeResultStore {
	return &fakeResultStore{values: map[string]string{}}
}

func (f *fakeResultStore) Get(_ context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	value, ok := f.values[key]
	if !ok {
		return "", goredis.Nil
	}
	return value, nil
}

func (f *fakeResultStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	f.sets++
	switch v := value.(type) {
	case []byte:
		f.values[key] = string(v)
	case string:
		f.values[key] = v
	default:
		return fmt.Errorf("unexpected value %T", value)
	}
	return nil
}

func (f *fakeResultStore) ResultKey(kind string, parts ...string) string {
	return strings.Join(append([]string{"result", kind}, parts...), ":")
}

type steppingClock struct {
	now time.Time
}

func (c *steppingClock) Now() time.Time {
	c.now = c.now.Add(time.Second)
	return c.now
}

type testEnv struct {
	svc   Service
	owner uuid.UUID
	cache *fakeResultStore
	reg   *prometheus.Registry
}

func newTestService(t *testing.T, withCache bool) testEnv {
	t.Helper()
	client := setupLedgerTestDB(t)
	clock := &steppingClock{now: time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)}
	reg := prometheus.NewRegistry()

	params := ServiceParams{
		Repo:    NewRepository(client.DB()),
		Tx:      client,
		Engine:  settlement.NewEngine(enums.RemainderPolicyMemberOrder, settlement.DefaultTolerance),
		Metrics: metrics.NewEngineMetrics(reg),
		Clock:   clock.Now,
	}
	env := testEnv{owner: uuid.New(), reg: reg}
	if withCache {
		env.cache = newFakeResultStore()
		params.Cache = env.cache
	}

	svc, err := NewService(params)
	if err != nil {
		t.Fatalf("NewService error: %v", err)
	}
	env.svc = svc
	return env
}

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

// seedTrip creates an event with Asha, Bilal and Chen and a 30.00 dinner paid by Asha for all three.
func seedTrip(t *testing.T, env testEnv) (*EventDTO, []MemberDTO) {
	t.Helper()
	ctx := context.Background()

	event, err := env.svc.CreateEvent(ctx, env.owner, CreateEventInput{Title: "Goa trip", StartDate: day(1), EndDate: day(3)})
	if err != nil {
		t.Fatalf("CreateEvent error: %v", err)
	}
	var members []MemberDTO
	for _, name := range []string{"Asha", "Bilal", "Chen"} {
		member, err := env.svc.AddMember(ctx, env.owner, event.ID, name)
		if err != nil {
			t.Fatalf("AddMember %s error: %v", name, err)
		}
		members = append(members, *member)
	}

	_, err = env.svc.CreateExpense(ctx, env.owner, event.ID, ExpenseInput{
		Description:    "Dinner",
		Date:           day(1),
		Amount:         decimal.RequireFromString("30"),
		PayerID:        members[0].ID,
		ContributorIDs: []uuid.UUID{members[0].ID, members[1].ID, members[2].ID},
		Category:       enums.ExpenseCategoryFood,
		ApprovalStatus: enums.ApprovalStatusApproved,
	})
	if err != nil {
		t.Fatalf("CreateExpense error: %v", err)
	}
	return event, members
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if !pkgerrors.IsCode(err, code) {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatal("expected error without repository")
	}
	client := setupLedgerTestDB(t)
	if _, err := NewService(ServiceParams{Repo: NewRepository(client.DB())}); err == nil {
		t.Fatal("expected error without transaction runner")
	}
}

func TestCreateEventValidation(t *testing.T) {
	env := newTestService(t, false)
	ctx := context.Background()

	tests := []struct {
		name  string
		owner uuid.UUID
		input CreateEventInput
		code  pkgerrors.Code
	}{
		{name: "missing owner", owner: uuid.Nil, input: CreateEventInput{Title: "x", StartDate: day(1), EndDate: day(1)}, code: pkgerrors.CodeValidation},
		{name: "blank title", owner: env.owner, input: CreateEventInput{Title: "  ", StartDate: day(1), EndDate: day(1)}, code: pkgerrors.CodeValidation},
		{name: "missing dates", owner: env.owner, input: CreateEventInput{Title: "x"}, code: pkgerrors.CodeValidation},
		{name: "end before start", owner: env.owner, input: CreateEventInput{Title: "x", StartDate: day(5), EndDate: day(4)}, code: pkgerrors.CodeValidation},
		{name: "bad currency", owner: env.owner, input: CreateEventInput{Title: "x", StartDate: day(1), EndDate: day(1), Currency: "GBP"}, code: pkgerrors.CodeValidation},
		{name: "title too long", owner: env.owner, input: CreateEventInput{Title: strings.Repeat("t", 256), StartDate: day(1), EndDate: day(1)}, code: pkgerrors.CodeValidation},
		{name: "location too long", owner: env.owner, input: CreateEventInput{Title: "x", Location: strings.Repeat("l", 256), StartDate: day(1), EndDate: day(1)}, code: pkgerrors.CodeValidation},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.svc.CreateEvent(ctx, tc.owner, tc.input)
			expectCode(t, err, tc.code)
		})
	}

	event, err := env.svc.CreateEvent(ctx, env.owner, CreateEventInput{Title: " Weekend ", Location: " Pune ", StartDate: day(1), EndDate: day(1)})
	if err != nil {
		t.Fatalf("CreateEvent error: %v", err)
	}
	if event.Title != "Weekend" || event.Location != "Pune" || event.Currency != enums.DefaultCurrency || event.StartDate != "2024-03-01" {
		t.Fatalf("unexpected event %+v", event)
	}

	_, err = env.svc.CreateEvent(ctx, env.owner, CreateEventInput{Title: "Weekend", StartDate: day(2), EndDate: day(2)})
	expectCode(t, err, pkgerrors.CodeConflict)
}

func TestEventsAreScopedToOwner(t *testing.T) {
	env := newTestService(t, false)
	ctx := context.Background()
	event, _ := seedTrip(t, env)

	stranger := uuid.New()
	if _, err := env.svc.GetEvent(ctx, stranger, event.ID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for another owner, got %v", err)
	}
	if _, err := env.svc.Balances(ctx, stranger, event.ID, ViewOptions{}); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for another owner's balances, got %v", err)
	}
	expectCode(t, env.svc.DeleteEvent(ctx, stranger, event.ID), pkgerrors.CodeNotFound)

	events, err := env.svc.ListEvents(ctx, stranger)
	if err != nil || len(events) != 0 {
		t.Fatalf("expected no events for stranger, got %v %v", events, err)
	}
}

func TestUpdateEvent(t *testing.T) {
	env := newTestService(t, true)
	ctx := context.Background()
	event, _ := seedTrip(t, env)
	if _, err := env.svc.CreateEvent(ctx, env.owner, CreateEventInput{Title: "Weekend", StartDate: day(8), EndDate: day(9)}); err != nil {
		t.Fatalf("CreateEvent error: %v", err)
	}

	if _, err := env.svc.Balances(ctx, env.owner, event.ID, ViewOptions{}); err != nil {
		t.Fatalf("Balances error: %v", err)
	}
	before, err := env.svc.GetEvent(ctx, env.owner, event.ID)
	if err != nil {
		t.Fatalf("GetEvent error: %v", err)
	}

	updated, err := env.svc.UpdateEvent(ctx, env.owner, event.ID, CreateEventInput{
		Title:     " Goa trip 2024 ",
		Location:  "Goa, India",
		StartDate: day(1),
		EndDate:   day(5),
		Currency:  enums.CurrencyEUR,
	})
	if err != nil {
		t.Fatalf("UpdateEvent error: %v", err)
	}
	if updated.Title != "Goa trip 2024" || updated.Location != "Goa, India" || updated.EndDate != "2024-03-05" || updated.Currency != "EUR" {
		t.Fatalf("unexpected event %+v", updated)
	}
	if !updated.UpdatedAt.After(before.UpdatedAt) {
		t.Fatalf("expected updated_at to move forward, got %v then %v", before.UpdatedAt, updated.UpdatedAt)
	}

	fetched, err := env.svc.GetEvent(ctx, env.owner, event.ID)
	if err != nil || fetched.Location != "Goa, India" || fetched.Title != "Goa trip 2024" {
		t.Fatalf("update not persisted: %+v %v", fetched, err)
	}

	// the earlier balances were keyed on the old updated_at
	if _, err := env.svc.Balances(ctx, env.owner, event.ID, ViewOptions{}); err != nil {
		t.Fatalf("Balances error: %v", err)
	}
	if env.cache.sets != 2 {
		t.Fatalf("expected a fresh cache write after the update, got %d writes", env.cache.sets)
	}

	_, err = env.svc.UpdateEvent(ctx, env.owner, event.ID, CreateEventInput{Title: "Weekend", StartDate: day(1), EndDate: day(1)})
	expectCode(t, err, pkgerrors.CodeConflict)
	_, err = env.svc.UpdateEvent(ctx, env.owner, event.ID, CreateEventInput{Title: "Goa", StartDate: day(5), EndDate: day(4)})
	expectCode(t, err, pkgerrors.CodeValidation)
	_, err = env.svc.UpdateEvent(ctx, uuid.New(), event.ID, CreateEventInput{Title: "Mine now", StartDate: day(1), EndDate: day(1)})
	expectCode(t, err, pkgerrors.CodeNotFound)
	_, err = env.svc.UpdateEvent(ctx, env.owner, uuid.New(), CreateEventInput{Title: "Ghost", StartDate: day(1), EndDate: day(1)})
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestOwnerAnalytics(t *testing.T) {
	env := newTestService(t, false)
	ctx := context.Background()
	event, members := seedTrip(t, env)

	_, err := env.svc.CreateExpense(ctx, env.owner, event.ID, ExpenseInput{
		Description:    "Ferry",
		Date:           day(9), // outside the trip's dates
		Amount:         decimal.RequireFromString("12.50"),
		PayerID:        members[1].ID,
		ContributorIDs: []uuid.UUID{members[1].ID},
		Category:       enums.ExpenseCategoryTravel,
	})
	if err != nil {
		t.Fatalf("CreateExpense error: %v", err)
	}
	if _, err := env.svc.CreateEvent(ctx, env.owner, CreateEventInput{Title: "New year", StartDate: time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC), EndDate: day(1)}); err != nil {
		t.Fatalf("CreateEvent error: %v", err)
	}

	stranger := uuid.New()
	other, err := env.svc.CreateEvent(ctx, stranger, CreateEventInput{Title: "Elsewhere", StartDate: day(1), EndDate: day(1)})
	if err != nil {
		t.Fatalf("CreateEvent error: %v", err)
	}
	dana, err := env.svc.AddMember(ctx, stranger, other.ID, "Dana")
	if err != nil {
		t.Fatalf("AddMember error: %v", err)
	}
	if _, err := env.svc.CreateExpense(ctx, stranger, other.ID, ExpenseInput{
		Description: "Hotel", Date: day(1), Amount: decimal.RequireFromString("500"),
		PayerID: dana.ID, ContributorIDs: []uuid.UUID{dana.ID},
	}); err != nil {
		t.Fatalf("CreateExpense error: %v", err)
	}

	got, err := env.svc.OwnerAnalytics(ctx, env.owner, ViewOptions{})
	if err != nil {
		t.Fatalf("OwnerAnalytics error: %v", err)
	}
	if got.EventCount != 2 || got.ExpenseCount != 2 || !got.Total.Equal(decimal.RequireFromString("42.50")) {
		t.Fatalf("unexpected totals %+v", got)
	}
	if len(got.Years) != 2 || got.Years[0].Year != 2023 || got.Years[1].ExpenseCount != 2 {
		t.Fatalf("unexpected years %+v", got.Years)
	}
	food, ok := got.Categories.Row(enums.ExpenseCategoryFood)
	if !ok || food.Percent != 70.59 {
		t.Fatalf("unexpected food share %+v", food)
	}
	if got.ExpensesByDay.Count != 1 || got.ExpensesByDay.Rows[0].Period != "2024-03-01" {
		t.Fatalf("expected only the in-range dinner per day, got %+v", got.ExpensesByDay)
	}

	approved, err := env.svc.OwnerAnalytics(ctx, env.owner, ViewOptions{ApprovedOnly: true})
	if err != nil || approved.ExpenseCount != 1 || !approved.Total.Equal(decimal.RequireFromString("30")) {
		t.Fatalf("unexpected approved-only analytics %+v %v", approved, err)
	}

	_, err = env.svc.OwnerAnalytics(ctx, uuid.Nil, ViewOptions{})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestMemberLifecycle(t *testing.T) {
	env := newTestService(t, false)
	ctx := context.Background()
	event, members := seedTrip(t, env)

	if _, err := env.svc.AddMember(ctx, env.owner, event.ID, "Asha"); !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict for duplicate name, got %v", err)
	}
	if _, err := env.svc.AddMember(ctx, env.owner, event.ID, ""); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}
	if _, err := env.svc.AddMember(ctx, env.owner, event.ID, strings.Repeat("n", 51)); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for long name, got %v", err)
	}
	if _, err := env.svc.AddMember(ctx, env.owner, event.ID, strings.Repeat("é", 50)); err != nil {
		t.Fatalf("expected 50 characters to be accepted, got %v", err)
	}

	renamed, err := env.svc.RenameMember(ctx, env.owner, event.ID, members[1].ID, "Bilal Khan")
	if err != nil || renamed.Name != "Bilal Khan" {
		t.Fatalf("RenameMember: %+v %v", renamed, err)
	}

	expectCode(t, env.svc.DeleteMember(ctx, env.owner, event.ID, members[1].ID), pkgerrors.CodeConflict)

	idle, err := env.svc.AddMember(ctx, env.owner, event.ID, "Dana")
	if err != nil {
		t.Fatalf("AddMember error: %v", err)
	}
	if err := env.svc.DeleteMember(ctx, env.owner, event.ID, idle.ID); err != nil {
		t.Fatalf("DeleteMember error: %v", err)
	}
	expectCode(t, env.svc.DeleteMember(ctx, env.owner, event.ID, idle.ID), pkgerrors.CodeNotFound)

	list, err := env.svc.ListMembers(ctx, env.owner, event.ID)
	if err != nil || len(list) != 3 {
		t.Fatalf("expected 3 members, got %v %v", list, err)
	}
}

func TestExpenseValidation(t *testing.T) {
	env := newTestService(t, false)
	ctx := context.Background()
	event, members := seedTrip(t, env)

	valid := func() ExpenseInput {
		return ExpenseInput{
			Description:    "Taxi",
			Date:           day(2),
			Amount:         decimal.RequireFromString("12.50"),
			PayerID:        members[1].ID,
			ContributorIDs: []uuid.UUID{members[0].ID, members[1].ID},
		}
	}

	tests := []struct {
		name   string
		mutate func(*ExpenseInput)
	}{
		{name: "blank description", mutate: func(in *ExpenseInput) { in.Description = " " }},
		{name: "missing date", mutate: func(in *ExpenseInput) { in.Date = time.Time{} }},
		{name: "negative amount", mutate: func(in *ExpenseInput) { in.Amount = decimal.RequireFromString("-1") }},
		{name: "too precise", mutate: func(in *ExpenseInput) { in.Amount = decimal.RequireFromString("1.005") }},
		{name: "no contributors", mutate: func(in *ExpenseInput) { in.ContributorIDs = nil }},
		{name: "duplicate contributor", mutate: func(in *ExpenseInput) { in.ContributorIDs = []uuid.UUID{members[0].ID, members[0].ID} }},
		{name: "foreign payer", mutate: func(in *ExpenseInput) { in.PayerID = uuid.New() }},
		{name: "foreign contributor", mutate: func(in *ExpenseInput) { in.ContributorIDs = []uuid.UUID{uuid.New()} }},
		{name: "bad category", mutate: func(in *ExpenseInput) { in.Category = "spaceships" }},
		{name: "bad approval status", mutate: func(in *ExpenseInput) { in.ApprovalStatus = "maybe" }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			input := valid()
			tc.mutate(&input)
			_, err := env.svc.CreateExpense(ctx, env.owner, event.ID, input)
			expectCode(t, err, pkgerrors.CodeValidation)
		})
	}

	created, err := env.svc.CreateExpense(ctx, env.owner, event.ID, valid())
	if err != nil {
		t.Fatalf("CreateExpense error: %v", err)
	}
	if created.Currency != enums.CurrencyINR || created.ApprovalStatus != enums.ApprovalStatusPending {
		t.Fatalf("expected defaults to be applied, got %+v", created)
	}

	update := valid()
	update.Amount = decimal.RequireFromString("20")
	update.ContributorIDs = []uuid.UUID{members[2].ID}
	updated, err := env.svc.UpdateExpense(ctx, env.owner, event.ID, created.ID, update)
	if err != nil {
		t.Fatalf("UpdateExpense error: %v", err)
	}
	if !updated.Amount.Equal(decimal.RequireFromString("20")) || len(updated.ContributorIDs) != 1 {
		t.Fatalf("unexpected update %+v", updated)
	}

	if err := env.svc.DeleteExpense(ctx, env.owner, event.ID, created.ID); err != nil {
		t.Fatalf("DeleteExpense error: %v", err)
	}
	expectCode(t, env.svc.DeleteExpense(ctx, env.owner, event.ID, created.ID), pkgerrors.CodeNotFound)

	expenses, err := env.svc.ListExpenses(ctx, env.owner, event.ID)
	if err != nil || len(expenses) != 1 {
		t.Fatalf("expected only the dinner to remain, got %v %v", expenses, err)
	}
}

func TestBalancesAndPlan(t *testing.T) {
	env := newTestService(t, false)
	ctx := context.Background()
	event, members := seedTrip(t, env)

	sheet, err := env.svc.Balances(ctx, env.owner, event.ID, ViewOptions{})
	if err != nil {
		t.Fatalf("Balances error: %v", err)
	}
	asha, _ := sheet.Member(members[0].ID)
	if !asha.Net.Equal(decimal.RequireFromString("20")) || !sheet.Total.Equal(decimal.RequireFromString("30")) {
		t.Fatalf("unexpected sheet %+v", sheet)
	}

	result, err := env.svc.Plan(ctx, env.owner, event.ID, ViewOptions{})
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if len(result.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %+v", result.Transactions)
	}
	for _, txn := range result.Transactions {
		if txn.PayeeID != members[0].ID || !txn.Amount.Equal(decimal.RequireFromString("10")) {
			t.Fatalf("unexpected transaction %+v", txn)
		}
	}
}

func TestApprovedOnlyView(t *testing.T) {
	env := newTestService(t, false)
	ctx := context.Background()
	event, members := seedTrip(t, env)

	_, err := env.svc.CreateExpense(ctx, env.owner, event.ID, ExpenseInput{
		Description:    "Museum",
		Date:           day(2),
		Amount:         decimal.RequireFromString("60"),
		PayerID:        members[1].ID,
		ContributorIDs: []uuid.UUID{members[0].ID, members[1].ID},
	})
	if err != nil {
		t.Fatalf("CreateExpense error: %v", err)
	}

	all, err := env.svc.Balances(ctx, env.owner, event.ID, ViewOptions{})
	if err != nil {
		t.Fatalf("Balances error: %v", err)
	}
	approved, err := env.svc.Balances(ctx, env.owner, event.ID, ViewOptions{ApprovedOnly: true})
	if err != nil {
		t.Fatalf("Balances error: %v", err)
	}
	if !all.Total.Equal(decimal.RequireFromString("90")) || !approved.Total.Equal(decimal.RequireFromString("30")) {
		t.Fatalf("unexpected totals all=%s approved=%s", all.Total, approved.Total)
	}
}

func TestRecordPlanAndTransactions(t *testing.T) {
	env := newTestService(t, false)
	ctx := context.Background()
	event, members := seedTrip(t, env)

	recorded, err := env.svc.RecordPlan(ctx, env.owner, event.ID, ViewOptions{})
	if err != nil {
		t.Fatalf("RecordPlan error: %v", err)
	}
	if len(recorded) != 2 || recorded[0].ID == uuid.Nil || recorded[0].PayeeName != "Asha" {
		t.Fatalf("unexpected recorded plan %+v", recorded)
	}

	// recorded transactions never feed back into balances
	sheet, err := env.svc.Balances(ctx, env.owner, event.ID, ViewOptions{})
	if err != nil {
		t.Fatalf("Balances error: %v", err)
	}
	asha, _ := sheet.Member(members[0].ID)
	if !asha.Net.Equal(decimal.RequireFromString("20")) {
		t.Fatalf("balances changed after recording, net=%s", asha.Net)
	}

	manual, err := env.svc.RecordTransaction(ctx, env.owner, event.ID, TransactionInput{
		PayerID: members[2].ID,
		PayeeID: members[1].ID,
		Amount:  decimal.RequireFromString("4.25"),
		Note:    "cab",
	})
	if err != nil {
		t.Fatalf("RecordTransaction error: %v", err)
	}
	if manual.PayerName != "Chen" || manual.PayeeName != "Bilal" {
		t.Fatalf("unexpected names %+v", manual)
	}

	invalid := []TransactionInput{
		{PayerID: members[0].ID, PayeeID: members[0].ID, Amount: decimal.RequireFromString("1")},
		{PayerID: members[0].ID, PayeeID: members[1].ID, Amount: decimal.Zero},
		{PayerID: members[0].ID, PayeeID: members[1].ID, Amount: decimal.RequireFromString("0.001")},
	}
	for i, input := range invalid {
		if _, err := env.svc.RecordTransaction(ctx, env.owner, event.ID, input); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
	if _, err := env.svc.RecordTransaction(ctx, env.owner, event.ID, TransactionInput{PayerID: uuid.New(), PayeeID: members[1].ID, Amount: decimal.RequireFromString("1")}); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for unknown payer, got %v", err)
	}

	txns, err := env.svc.ListTransactions(ctx, env.owner, event.ID)
	if err != nil || len(txns) != 3 {
		t.Fatalf("expected 3 transactions, got %v %v", txns, err)
	}
}

func TestReports(t *testing.T) {
	env := newTestService(t, false)
	ctx := context.Background()
	event, members := seedTrip(t, env)

	categories, err := env.svc.CategoryReport(ctx, env.owner, event.ID, ViewOptions{})
	if err != nil || len(categories.Rows) != 1 || categories.Rows[0].Category != enums.ExpenseCategoryFood {
		t.Fatalf("unexpected categories %+v %v", categories, err)
	}

	monthly, err := env.svc.TimeReport(ctx, env.owner, event.ID, reporting.GranularityMonth, ViewOptions{})
	if err != nil || len(monthly.Rows) != 1 || monthly.Rows[0].Period != "2024-03" {
		t.Fatalf("unexpected monthly report %+v %v", monthly, err)
	}
	if _, err := env.svc.TimeReport(ctx, env.owner, event.ID, "week", ViewOptions{}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for bad granularity, got %v", err)
	}

	report, err := env.svc.MemberReport(ctx, env.owner, event.ID, members[0].ID, ViewOptions{})
	if err != nil || len(report.Counterparts) != 2 {
		t.Fatalf("unexpected member report %+v %v", report, err)
	}
	if _, err := env.svc.MemberReport(ctx, env.owner, event.ID, uuid.New(), ViewOptions{}); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for unknown member, got %v", err)
	}

	paid, err := env.svc.MemberCategories(ctx, env.owner, event.ID, members[1].ID, ViewOptions{})
	if err != nil || paid.Count != 0 {
		t.Fatalf("bilal paid nothing, got %+v %v", paid, err)
	}

	audit, err := env.svc.AuditTrail(ctx, env.owner, event.ID, ViewOptions{})
	if err != nil || len(audit) != 1 || audit[0].Contributors != "Asha, Bilal, Chen" {
		t.Fatalf("unexpected audit %+v %v", audit, err)
	}

	summary, err := env.svc.Summary(ctx, env.owner, event.ID, ViewOptions{})
	if err != nil {
		t.Fatalf("Summary error: %v", err)
	}
	if summary.DurationDays != 3 || !summary.AveragePerDay.Equal(decimal.RequireFromString("10")) || !summary.AllApproved {
		t.Fatalf("unexpected summary %+v", summary)
	}

	byYear, err := env.svc.EventsByYear(ctx, env.owner)
	if err != nil || len(byYear) != 1 || byYear[0] != (reporting.YearCount{Year: 2024, Count: 1}) {
		t.Fatalf("unexpected events by year %+v %v", byYear, err)
	}
}

func TestDeleteEventRemovesEverything(t *testing.T) {
	env := newTestService(t, false)
	ctx := context.Background()
	event, _ := seedTrip(t, env)

	if _, err := env.svc.RecordPlan(ctx, env.owner, event.ID, ViewOptions{}); err != nil {
		t.Fatalf("RecordPlan error: %v", err)
	}
	if err := env.svc.DeleteEvent(ctx, env.owner, event.ID); err != nil {
		t.Fatalf("DeleteEvent error: %v", err)
	}
	if _, err := env.svc.GetEvent(ctx, env.owner, event.ID); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected event to be gone, got %v", err)
	}
}

func TestBalancesAreCachedUntilTheEventChanges(t *testing.T) {
	env := newTestService(t, true)
	ctx := context.Background()
	event, members := seedTrip(t, env)

	first, err := env.svc.Balances(ctx, env.owner, event.ID, ViewOptions{})
	if err != nil {
		t.Fatalf("Balances error: %v", err)
	}
	second, err := env.svc.Balances(ctx, env.owner, event.ID, ViewOptions{})
	if err != nil {
		t.Fatalf("Balances error: %v", err)
	}
	if env.cache.sets != 1 {
		t.Fatalf("expected one cache write, got %d", env.cache.sets)
	}
	if !first.Total.Equal(second.Total) {
		t.Fatalf("cached sheet differs: %s vs %s", first.Total, second.Total)
	}
	if _, ok := second.Member(members[0].ID); !ok {
		t.Fatal("cached sheet must be indexed after decoding")
	}
	if got := counterValue(t, env.reg, "splitwallet_result_cache_requests_total", map[string]string{"result": metrics.CacheHit}); got != 1 {
		t.Fatalf("expected one cache hit, got %v", got)
	}

	if _, err := env.svc.AddMember(ctx, env.owner, event.ID, "Dana"); err != nil {
		t.Fatalf("AddMember error: %v", err)
	}
	third, err := env.svc.Balances(ctx, env.owner, event.ID, ViewOptions{})
	if err != nil {
		t.Fatalf("Balances error: %v", err)
	}
	if len(third.Members) != 4 || env.cache.sets != 2 {
		t.Fatalf("expected a fresh computation after the event changed, members=%d sets=%d", len(third.Members), env.cache.sets)
	}
}

func TestCacheErrorsFallBackToComputation(t *testing.T) {
	env := newTestService(t, true)
	ctx := context.Background()
	event, _ := seedTrip(t, env)
	env.cache.getErr = errors.New("connection refused")

	result, err := env.svc.Plan(ctx, env.owner, event.ID, ViewOptions{})
	if err != nil || len(result.Transactions) != 2 {
		t.Fatalf("expected plan despite cache failure, got %+v %v", result, err)
	}
	if got := counterValue(t, env.reg, "splitwallet_result_cache_requests_total", map[string]string{"result": metrics.CacheError}); got != 1 {
		t.Fatalf("expected one cache error, got %v", got)
	}
	if got := counterValue(t, env.reg, "splitwallet_computation_success_total", map[string]string{"operation": opPlan}); got != 1 {
		t.Fatalf("expected one successful plan, got %v", got)
	}
}

func TestMapEngineError(t *testing.T) {
	invalid := multierr.Combine(
		fmt.Errorf("first: %w", settlement.ErrInvalidExpense),
		fmt.Errorf("second: %w", settlement.ErrInvalidExpense),
	)

	tests := []struct {
		name string
		err  error
		code pkgerrors.Code
	}{
		{name: "invalid expense", err: invalid, code: pkgerrors.CodeInvalidExpense},
		{name: "empty ledger", err: settlement.ErrEmptyLedger, code: pkgerrors.CodeEmptyLedger},
		{name: "unbalanced", err: settlement.ErrUnbalancedLedger, code: pkgerrors.CodeUnbalancedLedger},
		{name: "member", err: reporting.ErrMemberNotFound, code: pkgerrors.CodeNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mapped := mapEngineError(tc.err)
			expectCode(t, mapped, tc.code)
			if !errors.Is(mapped, tc.err) {
				t.Fatalf("mapped error must keep the cause")
			}
		})
	}

	details, ok := pkgerrors.As(mapEngineError(invalid)).Details().(map[string]any)
	if !ok || len(details["errors"].([]string)) != 2 {
		t.Fatalf("expected both problems in details, got %#v", details)
	}

	plain := errors.New("boom")
	if mapEngineError(plain) != plain || mapEngineError(nil) != nil {
		t.Fatal("unknown errors must pass through")
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	total := 0.0
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			if matchLabels(metric, labels) {
				total += metric.GetCounter().GetValue()
			}
		}
	}
	return total
}

func matchLabels(metric *dto.Metric, labels map[string]string) bool {
	for key, want := range labels {
		found := false
		for _, pair := range metric.GetLabel() {
			if pair.GetName() == key && pair.GetValue() == want {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
