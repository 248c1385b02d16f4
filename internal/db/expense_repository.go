package db

import (
	"time"

	"github.com/terraincognita07/forgeboard/internal/models"
	"gorm.io/gorm"
)

type ExpenseRepository struct {
	database *gorm.DB
	feed     *ChangeFeed
}

func NewExpenseRepository(database *gorm.DB, feed *ChangeFeed) *ExpenseRepository {
	return &ExpenseRepository{database: database, feed: feed}
}

func (repo *ExpenseRepository) Create(expense *models.Expense) error {
	if err := repo.database.Create(expense).Error; err != nil {
		return err
	}
	repo.publish(ActionInsert, *expense)
	return nil
}

func (repo *ExpenseRepository) FindByUser(userID uint, expenseID uint) (models.Expense, error) {
	var expense models.Expense
	if err := repo.database.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
		return models.Expense{}, err
	}
	return expense, nil
}

func (repo *ExpenseRepository) ListByUserRange(userID uint, fromStart *time.Time, toEnd *time.Time) ([]models.Expense, error) {
	query := repo.database.Where("user_id = ?", userID)
	if fromStart != nil {
		query = query.Where("date >= ?", *fromStart)
	}
	if toEnd != nil {
		query = query.Where("date < ?", *toEnd)
	}
	expenses := make([]models.Expense, 0)
	if err := query.Order("date DESC, id DESC").Find(&expenses).Error; err != nil {
		return nil, err
	}
	return expenses, nil
}

func (repo *ExpenseRepository) Delete(expense models.Expense) error {
	if err := repo.database.Delete(&models.Expense{}, expense.ID).Error; err != nil {
		return err
	}
	repo.publish(ActionDelete, expense)
	return nil
}

func (repo *ExpenseRepository) publish(action ChangeAction, expense models.Expense) {
	event := ChangeEvent{
		Table:  TableExpenses,
		Action: action,
		UserID: expense.UserID,
		RowID:  expense.ID,
	}
	if expense.ProjectID != nil {
		event.ProjectID = *expense.ProjectID
	}
	repo.feed.Publish(event)
}
