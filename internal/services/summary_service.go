package services

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/terraincognita07/forgeboard/internal/models"
)

type SummaryProjectRepository interface {
	ListByUser(userID uint, status string) ([]models.Project, error)
}

type SummaryInstallmentRepository interface {
	ListByUser(userID uint) ([]models.Installment, error)
}

type SummaryExpenseRepository interface {
	ListByUserRange(userID uint, fromStart *time.Time, toEnd *time.Time) ([]models.Expense, error)
}

type StreakStatsProvider interface {
	Stats(userID uint, now time.Time) (StreakStats, error)
}

type FinanceSummary struct {
	TotalFinalized      decimal.Decimal            `json:"total_finalized"`
	TotalReceived       decimal.Decimal            `json:"total_received"`
	Outstanding         decimal.Decimal            `json:"outstanding"`
	TotalExpenses       decimal.Decimal            `json:"total_expenses"`
	ExpensesByCategory  map[string]decimal.Decimal `json:"expenses_by_category"`
	Net                 decimal.Decimal            `json:"net"`
	ProjectsByStatus    map[string]int             `json:"projects_by_status"`
	FullyPaidProjects   int                        `json:"fully_paid_projects"`
	PendingInstallments int                        `json:"pending_installments"`
	OverdueInstallments int                        `json:"overdue_installments"`
	Streak              StreakStats                `json:"streak"`
}

type SummaryService struct {
	projects     SummaryProjectRepository
	installments SummaryInstallmentRepository
	expenses     SummaryExpenseRepository
	streaks      StreakStatsProvider
	location     *time.Location
}

func NewSummaryService(
	projects SummaryProjectRepository,
	installments SummaryInstallmentRepository,
	expenses SummaryExpenseRepository,
	streaks StreakStatsProvider,
	location *time.Location,
) *SummaryService {
	if location == nil {
		location = time.UTC
	}
	return &SummaryService{
		projects:     projects,
		installments: installments,
		expenses:     expenses,
		streaks:      streaks,
		location:     location,
	}
}

func (service *SummaryService) Build(userID uint, now time.Time) (FinanceSummary, error) {
	projects, err := service.projects.ListByUser(userID, "")
	if err != nil {
		return FinanceSummary{}, classifyStoreError("list projects", err)
	}
	installments, err := service.installments.ListByUser(userID)
	if err != nil {
		return FinanceSummary{}, classifyStoreError("list installments", err)
	}
	expenses, err := service.expenses.ListByUserRange(userID, nil, nil)
	if err != nil {
		return FinanceSummary{}, classifyStoreError("list expenses", err)
	}
	streak, err := service.streaks.Stats(userID, now)
	if err != nil {
		return FinanceSummary{}, err
	}

	summary := BuildFinanceSummary(projects, installments, expenses, DateAtLocation(now, service.location))
	summary.Streak = streak
	return summary, nil
}

// BuildFinanceSummary aggregates the dashboard totals. Archived projects
// still count toward received money but not toward outstanding balances.
func BuildFinanceSummary(projects []models.Project, installments []models.Installment, expenses []models.Expense, today time.Time) FinanceSummary {
	summary := FinanceSummary{
		TotalFinalized:     decimal.Zero,
		TotalReceived:      decimal.Zero,
		Outstanding:        decimal.Zero,
		ExpensesByCategory: TotalsByCategory(expenses),
		ProjectsByStatus:   make(map[string]int, len(models.ProjectStatuses)),
	}
	for _, status := range models.ProjectStatuses {
		summary.ProjectsByStatus[status] = 0
	}

	for _, project := range projects {
		summary.ProjectsByStatus[project.Status]++
		summary.TotalFinalized = summary.TotalFinalized.Add(project.FinalizedAmount)
		summary.TotalReceived = summary.TotalReceived.Add(project.AmountReceived)
		if IsFullyPaid(project) {
			summary.FullyPaidProjects++
			continue
		}
		if project.Status != models.ProjectStatusArchived {
			summary.Outstanding = summary.Outstanding.Add(project.FinalizedAmount.Sub(project.AmountReceived))
		}
	}

	for _, installment := range installments {
		switch InstallmentDisplayStatus(installment, today) {
		case models.InstallmentPending:
			summary.PendingInstallments++
		case models.InstallmentOverdue:
			summary.OverdueInstallments++
		}
	}

	summary.TotalExpenses = decimal.Zero
	for _, expense := range expenses {
		summary.TotalExpenses = summary.TotalExpenses.Add(expense.Amount)
	}
	summary.Net = summary.TotalReceived.Sub(summary.TotalExpenses)
	return summary
}
