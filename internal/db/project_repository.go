package db

import (
	"github.com/shopspring/decimal"
	"github.com/terraincognita07/forgeboard/internal/models"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	database *gorm.DB
	feed     *ChangeFeed
}

func NewProjectRepository(database *gorm.DB, feed *ChangeFeed) *ProjectRepository {
	return &ProjectRepository{database: database, feed: feed}
}

func (repo *ProjectRepository) Create(project *models.Project) error {
	if err := repo.database.Create(project).Error; err != nil {
		return err
	}
	repo.publish(ActionInsert, project.UserID, project.ID)
	return nil
}

func (repo *ProjectRepository) FindByUser(userID uint, projectID uint) (models.Project, error) {
	var project models.Project
	if err := repo.database.Where("id = ? AND user_id = ?", projectID, userID).First(&project).Error; err != nil {
		return models.Project{}, err
	}
	return project, nil
}

func (repo *ProjectRepository) ListByUser(userID uint, status string) ([]models.Project, error) {
	query := repo.database.Where("user_id = ?", userID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	projects := make([]models.Project, 0)
	if err := query.Order("created_at DESC, id DESC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (repo *ProjectRepository) ListAll() ([]models.Project, error) {
	projects := make([]models.Project, 0)
	if err := repo.database.Order("id ASC").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Save writes every editable column. amount_received is owned by the ledger
// and is never written here.
func (repo *ProjectRepository) Save(project *models.Project) error {
	if err := repo.database.Model(project).Select("*").Omit("id", "user_id", "amount_received", "created_at").Updates(project).Error; err != nil {
		return err
	}
	repo.publish(ActionUpdate, project.UserID, project.ID)
	return nil
}

// UpdateAmountReceived reads the stored amount and writes next(current) in
// one transaction, so the delta always applies to the freshest value.
func (repo *ProjectRepository) UpdateAmountReceived(projectID uint, next func(current decimal.Decimal) decimal.Decimal) (decimal.Decimal, error) {
	var (
		updated decimal.Decimal
		userID  uint
	)
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.Select("id", "user_id", "amount_received").First(&project, projectID).Error; err != nil {
			return err
		}
		updated = next(project.AmountReceived)
		userID = project.UserID
		return tx.Model(&models.Project{}).Where("id = ?", projectID).Update("amount_received", updated).Error
	})
	if err != nil {
		return decimal.Zero, err
	}
	repo.publish(ActionUpdate, userID, projectID)
	return updated, nil
}

func (repo *ProjectRepository) DeleteWithInstallments(userID uint, projectID uint) error {
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ? AND user_id = ?", projectID, userID).Delete(&models.Installment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Expense{}).Where("project_id = ? AND user_id = ?", projectID, userID).Update("project_id", nil).Error; err != nil {
			return err
		}
		result := tx.Where("id = ? AND user_id = ?", projectID, userID).Delete(&models.Project{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	repo.feed.Publish(ChangeEvent{Table: TableInstallments, Action: ActionDelete, UserID: userID, ProjectID: projectID})
	repo.publish(ActionDelete, userID, projectID)
	return nil
}

func (repo *ProjectRepository) publish(action ChangeAction, userID uint, projectID uint) {
	repo.feed.Publish(ChangeEvent{
		Table:     TableProjects,
		Action:    action,
		UserID:    userID,
		ProjectID: projectID,
		RowID:     projectID,
	})
}
