package db

import "gorm.io/gorm"

type Repositories struct {
	Users        *UserRepository
	Projects     *ProjectRepository
	Installments *InstallmentRepository
	Expenses     *ExpenseRepository
	DailyLogs    *DailyLogRepository
}

// NewRepositories wires every table repository to the same database and
// change feed. A nil feed disables change notifications.
func NewRepositories(database *gorm.DB, feed *ChangeFeed) *Repositories {
	return &Repositories{
		Users:        NewUserRepository(database),
		Projects:     NewProjectRepository(database, feed),
		Installments: NewInstallmentRepository(database, feed),
		Expenses:     NewExpenseRepository(database, feed),
		DailyLogs:    NewDailyLogRepository(database, feed),
	}
}
