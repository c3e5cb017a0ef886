package ledgers

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/splitwallet-backend/pkg/db/models"
)

// Repository manages persistence for events and everything recorded against them.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateEvent(ctx context.Context, event *models.Event) error
	FindEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListEventsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Event, error)
	UpdateEvent(ctx context.Context, event *models.Event) error
	DeleteEvent(ctx context.Context, id uuid.UUID) error
	TouchEvent(ctx context.Context, id uuid.UUID, at time.Time) error

	CreateMember(ctx context.Context, member *models.Member) error
	FindMember(ctx context.Context, eventID, memberID uuid.UUID) (*models.Member, error)
	ListMembers(ctx context.Context, eventID uuid.UUID) ([]models.Member, error)
	RenameMember(ctx context.Context, memberID uuid.UUID, name string) error
	DeleteMember(ctx context.Context, memberID uuid.UUID) error
	MemberInUse(ctx context.Context, memberID uuid.UUID) (bool, error)

	CreateExpense(ctx context.Context, expense *models.Expense) error
	FindExpense(ctx context.Context, eventID, expenseID uuid.UUID) (*models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, expenseID uuid.UUID) error
	ListExpenses(ctx context.Context, eventID uuid.UUID) ([]models.Expense, error)
	ListExpensesByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Expense, error)

	CreateTransactions(ctx context.Context, txns []models.Transaction) error
	ListTransactions(ctx context.Context, eventID uuid.UUID) ([]models.Transaction, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateEvent(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) FindEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	var event models.Event
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&event).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *repository) ListEventsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Event, error) {
	var events []models.Event
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("start_date DESC").
		Order("title ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// UpdateEvent overwrites the editable columns of the event.
func (r *repository) UpdateEvent(ctx context.Context, event *models.Event) error {
	res := r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", event.ID).
		Updates(map[string]any{
			"title":       event.Title,
			"description": event.Description,
			"location":    event.Location,
			"start_date":  event.StartDate,
			"end_date":    event.EndDate,
			"currency":    event.Currency,
			"updated_at":  event.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteEvent removes the event with its transactions, contributor links, expenses and members.
// Callers run it inside a transaction.
func (r *repository) DeleteEvent(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("event_id = ?", id).Delete(&models.Transaction{}).Error; err != nil {
		return err
	}
	if err := db.Where("expense_id IN (?)", db.Model(&models.Expense{}).Select("id").Where("event_id = ?", id)).
		Delete(&models.ExpenseContributor{}).Error; err != nil {
		return err
	}
	if err := db.Where("event_id = ?", id).Delete(&models.Expense{}).Error; err != nil {
		return err
	}
	if err := db.Where("event_id = ?", id).Delete(&models.Member{}).Error; err != nil {
		return err
	}
	res := db.Where("id = ?", id).Delete(&models.Event{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// TouchEvent bumps updated_at so cached computations keyed on it are no longer used.
func (r *repository) TouchEvent(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Event{}).
		Where("id = ?", id).
		Update("updated_at", at).Error
}

func (r *repository) CreateMember(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *repository) FindMember(ctx context.Context, eventID, memberID uuid.UUID) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).
		Where("event_id = ? AND id = ?", eventID, memberID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *repository) ListMembers(ctx context.Context, eventID uuid.UUID) ([]models.Member, error) {
	var members []models.Member
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("name ASC").
		Order("id ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repository) RenameMember(ctx context.Context, memberID uuid.UUID, name string) error {
	res := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ?", memberID).
		Updates(map[string]any{"name": name, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DeleteMember(ctx context.Context, memberID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("payer_id = ? OR payee_id = ?", memberID, memberID).Delete(&models.Transaction{}).Error; err != nil {
		return err
	}
	res := db.Where("id = ?", memberID).Delete(&models.Member{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MemberInUse reports whether the member paid for or shares any expense.
func (r *repository) MemberInUse(ctx context.Context, memberID uuid.UUID) (bool, error) {
	db := r.db.WithContext(ctx)

	var paid int64
	if err := db.Model(&models.Expense{}).Where("payer_id = ?", memberID).Count(&paid).Error; err != nil {
		return false, err
	}
	if paid > 0 {
		return true, nil
	}

	var shared int64
	if err := db.Model(&models.ExpenseContributor{}).Where("member_id = ?", memberID).Count(&shared).Error; err != nil {
		return false, err
	}
	return shared > 0, nil
}

func (r *repository) CreateExpense(ctx context.Context, expense *models.Expense) error {
	db := r.db.WithContext(ctx)
	if err := db.Omit("Contributors").Create(expense).Error; err != nil {
		return err
	}
	return r.insertContributors(db, expense)
}

func (r *repository) FindExpense(ctx context.Context, eventID, expenseID uuid.UUID) (*models.Expense, error) {
	var expense models.Expense
	if err := r.db.WithContext(ctx).
		Preload("Contributors").
		Where("event_id = ? AND id = ?", eventID, expenseID).
		First(&expense).Error; err != nil {
		return nil, err
	}
	return &expense, nil
}

// UpdateExpense overwrites every mutable column and replaces the contributor set.
func (r *repository) UpdateExpense(ctx context.Context, expense *models.Expense) error {
	db := r.db.WithContext(ctx)
	expense.UpdatedAt = time.Now().UTC()
	res := db.Model(&models.Expense{}).
		Where("id = ?", expense.ID).
		Updates(map[string]any{
			"description":     expense.Description,
			"expense_date":    expense.Date,
			"amount":          expense.Amount,
			"payer_id":        expense.PayerID,
			"category":        expense.Category,
			"payment_method":  expense.PaymentMethod,
			"currency":        expense.Currency,
			"location":        expense.Location,
			"notes":           expense.Notes,
			"approval_status": expense.ApprovalStatus,
			"document_ref":    expense.DocumentRef,
			"settled":         expense.Settled,
			"updated_at":      expense.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	if err := db.Where("expense_id = ?", expense.ID).Delete(&models.ExpenseContributor{}).Error; err != nil {
		return err
	}
	return r.insertContributors(db, expense)
}

func (r *repository) insertContributors(db *gorm.DB, expense *models.Expense) error {
	if len(expense.Contributors) == 0 {
		return nil
	}
	for i := range expense.Contributors {
		expense.Contributors[i].ExpenseID = expense.ID
	}
	return db.Create(&expense.Contributors).Error
}

func (r *repository) DeleteExpense(ctx context.Context, expenseID uuid.UUID) error {
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Transaction{}).Where("expense_id = ?", expenseID).Update("expense_id", nil).Error; err != nil {
		return err
	}
	if err := db.Where("expense_id = ?", expenseID).Delete(&models.ExpenseContributor{}).Error; err != nil {
		return err
	}
	res := db.Where("id = ?", expenseID).Delete(&models.Expense{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) ListExpenses(ctx context.Context, eventID uuid.UUID) ([]models.Expense, error) {
	var expenses []models.Expense
	if err := r.db.WithContext(ctx).
		Preload("Contributors").
		Where("event_id = ?", eventID).
		Order("expense_date ASC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

// ListExpensesByOwner returns the expenses of every event the owner holds.
func (r *repository) ListExpensesByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Expense, error) {
	db := r.db.WithContext(ctx)
	var expenses []models.Expense
	if err := db.
		Preload("Contributors").
		Where("event_id IN (?)", db.Model(&models.Event{}).Select("id").Where("owner_id = ?", ownerID)).
		Order("expense_date ASC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

func (r *repository) CreateTransactions(ctx context.Context, txns []models.Transaction) error {
	if len(txns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&txns).Error
}

func (r *repository) ListTransactions(ctx context.Context, eventID uuid.UUID) ([]models.Transaction, error) {
	var txns []models.Transaction
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("settled_at ASC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&txns).Error; err != nil {
		return nil, err
	}
	return txns, nil
}
