package db

import (
	"time"

	"github.com/terraincognita07/forgeboard/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DailyLogRepository struct {
	database *gorm.DB
	feed     *ChangeFeed
}

func NewDailyLogRepository(database *gorm.DB, feed *ChangeFeed) *DailyLogRepository {
	return &DailyLogRepository{database: database, feed: feed}
}

func (repo *DailyLogRepository) ListByUser(userID uint) ([]models.DailyLog, error) {
	logs := make([]models.DailyLog, 0)
	if err := repo.database.Where("user_id = ?", userID).Order("date ASC, id ASC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (repo *DailyLogRepository) ListByUserRange(userID uint, fromStart *time.Time, toEnd *time.Time) ([]models.DailyLog, error) {
	query := repo.database.Model(&models.DailyLog{}).Where("user_id = ?", userID)
	if fromStart != nil {
		query = query.Where("date >= ?", *fromStart)
	}
	if toEnd != nil {
		query = query.Where("date < ?", *toEnd)
	}

	logs := make([]models.DailyLog, 0)
	if err := query.Order("date ASC, id ASC").Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (repo *DailyLogRepository) FindByUserAndDayRange(userID uint, dayStart time.Time, dayEnd time.Time) (models.DailyLog, bool, error) {
	entry := models.DailyLog{}
	result := repo.database.
		Where("user_id = ? AND date >= ? AND date < ?", userID, dayStart, dayEnd).
		Order("date DESC, id DESC").
		Limit(1).
		Find(&entry)
	if result.Error != nil {
		return models.DailyLog{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.DailyLog{}, false, nil
	}
	return entry, true, nil
}

// UpsertCheckIn inserts or overwrites the row keyed on (user_id, date).
func (repo *DailyLogRepository) UpsertCheckIn(entry *models.DailyLog) error {
	err := repo.database.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"hours_worked",
			"what_shipped",
			"learned",
			"wrote_code",
			"committed",
			"deployed",
			"is_completed",
			"is_missed",
			"updated_at",
		}),
	}).Create(entry).Error
	if err != nil {
		return err
	}
	repo.publish(ActionInsert|ActionUpdate, entry.UserID, entry.ID)
	return nil
}

// InsertMissed records a missed day unless a row already exists for it.
func (repo *DailyLogRepository) InsertMissed(userID uint, day time.Time) (bool, error) {
	entry := models.DailyLog{
		UserID:   userID,
		Date:     day,
		IsMissed: true,
	}
	result := repo.database.Clauses(clause.OnConflict{DoNothing: true}).Create(&entry)
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}
	repo.publish(ActionInsert, userID, entry.ID)
	return true, nil
}

// Recommit deletes the given rows and advances the user's recommit marker to
// through in one transaction. The marker only moves forward.
func (repo *DailyLogRepository) Recommit(userID uint, ids []uint, through time.Time) (int64, error) {
	var deleted int64
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		if len(ids) > 0 {
			result := tx.Where("user_id = ? AND id IN ?", userID, ids).Delete(&models.DailyLog{})
			if result.Error != nil {
				return result.Error
			}
			deleted = result.RowsAffected
		}

		user := models.User{}
		if err := tx.Select("id", "recommitted_through").First(&user, userID).Error; err != nil {
			return err
		}
		if user.RecommittedThrough != nil && !user.RecommittedThrough.Before(through) {
			return nil
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).Update("recommitted_through", through).Error
	})
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		repo.publish(ActionDelete, userID, id)
	}
	repo.feed.Publish(ChangeEvent{Table: TableUsers, Action: ActionUpdate, UserID: userID, RowID: userID})
	return deleted, nil
}

// RecommittedThrough returns the user's recommit marker, nil when the user
// never recommitted.
func (repo *DailyLogRepository) RecommittedThrough(userID uint) (*time.Time, error) {
	user := models.User{}
	if err := repo.database.Select("id", "recommitted_through").First(&user, userID).Error; err != nil {
		return nil, err
	}
	return user.RecommittedThrough, nil
}

func (repo *DailyLogRepository) publish(action ChangeAction, userID uint, rowID uint) {
	repo.feed.Publish(ChangeEvent{
		Table:  TableDailyLogs,
		Action: action,
		UserID: userID,
		RowID:  rowID,
	})
}
