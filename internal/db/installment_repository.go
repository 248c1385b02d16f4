package db

import (
	"time"

	"github.com/terraincognita07/forgeboard/internal/models"
	"gorm.io/gorm"
)

type InstallmentRepository struct {
	database *gorm.DB
	feed     *ChangeFeed
}

func NewInstallmentRepository(database *gorm.DB, feed *ChangeFeed) *InstallmentRepository {
	return &InstallmentRepository{database: database, feed: feed}
}

func (repo *InstallmentRepository) Create(installment *models.Installment) error {
	if err := repo.database.Create(installment).Error; err != nil {
		return err
	}
	repo.publish(ActionInsert, *installment)
	return nil
}

func (repo *InstallmentRepository) FindByUser(userID uint, installmentID uint) (models.Installment, error) {
	var installment models.Installment
	if err := repo.database.Where("id = ? AND user_id = ?", installmentID, userID).First(&installment).Error; err != nil {
		return models.Installment{}, err
	}
	return installment, nil
}

func (repo *InstallmentRepository) ListByProject(projectID uint) ([]models.Installment, error) {
	installments := make([]models.Installment, 0)
	if err := repo.database.
		Where("project_id = ?", projectID).
		Order("due_date IS NULL, due_date ASC, id ASC").
		Find(&installments).Error; err != nil {
		return nil, err
	}
	return installments, nil
}

func (repo *InstallmentRepository) ListByUser(userID uint) ([]models.Installment, error) {
	installments := make([]models.Installment, 0)
	if err := repo.database.Where("user_id = ?", userID).Order("id ASC").Find(&installments).Error; err != nil {
		return nil, err
	}
	return installments, nil
}

// MarkPaid flips a pending installment to paid. It reports false when the
// row was already paid, which makes retries safe.
func (repo *InstallmentRepository) MarkPaid(installment models.Installment, paidDate time.Time) (bool, error) {
	result := repo.database.Model(&models.Installment{}).
		Where("id = ? AND status <> ?", installment.ID, models.InstallmentPaid).
		Updates(map[string]any{
			"status":     models.InstallmentPaid,
			"paid_date":  paidDate,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	repo.publish(ActionUpdate, installment)
	return true, nil
}

func (repo *InstallmentRepository) MarkPending(installment models.Installment) (bool, error) {
	result := repo.database.Model(&models.Installment{}).
		Where("id = ? AND status = ?", installment.ID, models.InstallmentPaid).
		Updates(map[string]any{
			"status":     models.InstallmentPending,
			"paid_date":  nil,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	repo.publish(ActionUpdate, installment)
	return true, nil
}

func (repo *InstallmentRepository) Delete(installment models.Installment) error {
	if err := repo.database.Delete(&models.Installment{}, installment.ID).Error; err != nil {
		return err
	}
	repo.publish(ActionDelete, installment)
	return nil
}

func (repo *InstallmentRepository) publish(action ChangeAction, installment models.Installment) {
	repo.feed.Publish(ChangeEvent{
		Table:     TableInstallments,
		Action:    action,
		UserID:    installment.UserID,
		ProjectID: installment.ProjectID,
		RowID:     installment.ID,
	})
}
