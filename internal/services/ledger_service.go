package services

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/terraincognita07/forgeboard/internal/models"
)

var ErrInstallmentNotPaid = errors.New("installment not paid")

const MaxInstallmentDescriptionLength = 500

type LedgerProjectRepository interface {
	FindByUser(userID uint, projectID uint) (models.Project, error)
	ListAll() ([]models.Project, error)
	UpdateAmountReceived(projectID uint, next func(current decimal.Decimal) decimal.Decimal) (decimal.Decimal, error)
}

type LedgerInstallmentRepository interface {
	Create(installment *models.Installment) error
	FindByUser(userID uint, installmentID uint) (models.Installment, error)
	ListByProject(projectID uint) ([]models.Installment, error)
	MarkPaid(installment models.Installment, paidDate time.Time) (bool, error)
	MarkPending(installment models.Installment) (bool, error)
	Delete(installment models.Installment) error
}

type InstallmentInput struct {
	Amount      decimal.Decimal
	DueDate     *time.Time
	Description string
}

// LedgerOutcome is the state of one installment and its project's received
// total after a ledger operation. Healed reports that the total was rebuilt
// from the installments table instead of adjusted by delta.
type LedgerOutcome struct {
	Installment    models.Installment `json:"installment"`
	AmountReceived decimal.Decimal    `json:"amount_received"`
	Healed         bool               `json:"healed"`
}

type InstallmentView struct {
	models.Installment
	DisplayStatus string `json:"display_status"`
}

type ProjectDrift struct {
	ProjectID uint            `json:"project_id"`
	Stored    decimal.Decimal `json:"stored"`
	Expected  decimal.Decimal `json:"expected"`
}

type LedgerService struct {
	projects     LedgerProjectRepository
	installments LedgerInstallmentRepository
	location     *time.Location
	logger       *slog.Logger
}

func NewLedgerService(projects LedgerProjectRepository, installments LedgerInstallmentRepository, location *time.Location) *LedgerService {
	if location == nil {
		location = time.UTC
	}
	return &LedgerService{
		projects:     projects,
		installments: installments,
		location:     location,
		logger:       slog.Default().With("component", "ledger"),
	}
}

func (service *LedgerService) AddInstallment(userID uint, projectID uint, input InstallmentInput) (models.Installment, error) {
	amount, err := RequirePositiveMoney("amount", input.Amount)
	if err != nil {
		return models.Installment{}, err
	}
	description := strings.TrimSpace(input.Description)
	if len(description) > MaxInstallmentDescriptionLength {
		return models.Installment{}, invalid("description", "too long")
	}

	if _, err := service.projects.FindByUser(userID, projectID); err != nil {
		return models.Installment{}, classifyStoreError("load project", err)
	}

	installment := models.Installment{
		UserID:      userID,
		ProjectID:   projectID,
		Amount:      amount,
		Status:      models.InstallmentPending,
		Description: description,
	}
	if input.DueDate != nil {
		due := DateAtLocation(*input.DueDate, service.location)
		installment.DueDate = &due
	}
	if err := service.installments.Create(&installment); err != nil {
		return models.Installment{}, classifyStoreError("create installment", err)
	}
	return installment, nil
}

// MarkPaid writes the paid status first and credits the project second. A
// second call finds the paid status, credits nothing and returns
// ErrAlreadyPaid after rebuilding the total, which also repairs a credit
// lost between the two writes.
func (service *LedgerService) MarkPaid(userID uint, installmentID uint, now time.Time) (LedgerOutcome, error) {
	installment, err := service.installments.FindByUser(userID, installmentID)
	if err != nil {
		return LedgerOutcome{}, classifyStoreError("load installment", err)
	}
	if installment.IsPaid() {
		return service.alreadyPaid(installment)
	}

	today := DateAtLocation(now, service.location)
	changed, err := service.installments.MarkPaid(installment, today)
	if err != nil {
		return LedgerOutcome{}, classifyStoreError("mark installment paid", err)
	}
	if !changed {
		return service.alreadyPaid(installment)
	}
	installment.Status = models.InstallmentPaid
	installment.PaidDate = &today

	received, healed, err := service.adjust(installment.ProjectID, installment.Amount)
	if err != nil {
		return LedgerOutcome{Installment: installment}, err
	}
	service.logger.Info("installment marked paid",
		"installment_id", installment.ID,
		"project_id", installment.ProjectID,
		"amount", installment.Amount.StringFixed(moneyScale),
		"amount_received", received.StringFixed(moneyScale),
	)
	return LedgerOutcome{Installment: installment, AmountReceived: received, Healed: healed}, nil
}

// MarkUnpaid reverses a payment. The project is debited before the status
// write so a failure in between under-counts rather than over-counts.
func (service *LedgerService) MarkUnpaid(userID uint, installmentID uint) (LedgerOutcome, error) {
	installment, err := service.installments.FindByUser(userID, installmentID)
	if err != nil {
		return LedgerOutcome{}, classifyStoreError("load installment", err)
	}
	if !installment.IsPaid() {
		return LedgerOutcome{Installment: installment}, ErrInstallmentNotPaid
	}

	received, healed, err := service.adjust(installment.ProjectID, installment.Amount.Neg())
	if err != nil {
		return LedgerOutcome{Installment: installment}, err
	}

	changed, err := service.installments.MarkPending(installment)
	if err != nil || !changed {
		if err != nil {
			service.logger.Warn("status write failed after debit, rebuilding total", "installment_id", installment.ID, "error", err)
		}
		rebuilt, healErr := service.recompute(installment.ProjectID)
		if healErr != nil {
			return LedgerOutcome{Installment: installment}, healErr
		}
		if err != nil {
			return LedgerOutcome{Installment: installment, AmountReceived: rebuilt, Healed: true}, classifyStoreError("mark installment pending", err)
		}
		received, healed = rebuilt, true
	}

	installment.Status = models.InstallmentPending
	installment.PaidDate = nil
	service.logger.Info("installment payment reversed",
		"installment_id", installment.ID,
		"project_id", installment.ProjectID,
		"amount_received", received.StringFixed(moneyScale),
	)
	return LedgerOutcome{Installment: installment, AmountReceived: received, Healed: healed}, nil
}

// DeleteInstallment debits a paid installment's amount (floored at zero)
// before removing the row.
func (service *LedgerService) DeleteInstallment(userID uint, installmentID uint) (LedgerOutcome, error) {
	installment, err := service.installments.FindByUser(userID, installmentID)
	if err != nil {
		return LedgerOutcome{}, classifyStoreError("load installment", err)
	}

	outcome := LedgerOutcome{Installment: installment}
	if installment.IsPaid() {
		received, healed, err := service.adjust(installment.ProjectID, installment.Amount.Neg())
		if err != nil {
			return outcome, err
		}
		outcome.AmountReceived = received
		outcome.Healed = healed
	}

	if err := service.installments.Delete(installment); err != nil {
		if installment.IsPaid() {
			if rebuilt, healErr := service.recompute(installment.ProjectID); healErr == nil {
				outcome.AmountReceived = rebuilt
				outcome.Healed = true
			}
		}
		return outcome, classifyStoreError("delete installment", err)
	}

	if !installment.IsPaid() {
		project, err := service.projects.FindByUser(userID, installment.ProjectID)
		if err == nil {
			outcome.AmountReceived = project.AmountReceived
		}
	}
	service.logger.Info("installment deleted",
		"installment_id", installment.ID,
		"project_id", installment.ProjectID,
		"was_paid", installment.IsPaid(),
	)
	return outcome, nil
}

// RecomputeProjectReceived overwrites amount_received with the sum of the
// project's paid installments.
func (service *LedgerService) RecomputeProjectReceived(userID uint, projectID uint) (decimal.Decimal, error) {
	if _, err := service.projects.FindByUser(userID, projectID); err != nil {
		return decimal.Zero, classifyStoreError("load project", err)
	}
	return service.recompute(projectID)
}

// RecomputeAll rebuilds every project's received total and reports the
// projects whose stored value had drifted.
func (service *LedgerService) RecomputeAll() ([]ProjectDrift, error) {
	projects, err := service.projects.ListAll()
	if err != nil {
		return nil, classifyStoreError("list projects", err)
	}

	drifts := make([]ProjectDrift, 0)
	for _, project := range projects {
		expected, err := service.recompute(project.ID)
		if err != nil {
			return drifts, err
		}
		if !project.AmountReceived.Equal(expected) {
			drifts = append(drifts, ProjectDrift{
				ProjectID: project.ID,
				Stored:    project.AmountReceived,
				Expected:  expected,
			})
			service.logger.Warn("ledger drift repaired",
				"project_id", project.ID,
				"stored", project.AmountReceived.StringFixed(moneyScale),
				"expected", expected.StringFixed(moneyScale),
			)
		}
	}
	return drifts, nil
}

func (service *LedgerService) ListInstallments(userID uint, projectID uint, now time.Time) ([]InstallmentView, error) {
	if _, err := service.projects.FindByUser(userID, projectID); err != nil {
		return nil, classifyStoreError("load project", err)
	}
	installments, err := service.installments.ListByProject(projectID)
	if err != nil {
		return nil, classifyStoreError("list installments", err)
	}

	today := DateAtLocation(now, service.location)
	views := make([]InstallmentView, 0, len(installments))
	for _, installment := range installments {
		views = append(views, InstallmentView{
			Installment:   installment,
			DisplayStatus: InstallmentDisplayStatus(installment, today),
		})
	}
	return views, nil
}

func (service *LedgerService) alreadyPaid(installment models.Installment) (LedgerOutcome, error) {
	received, err := service.recompute(installment.ProjectID)
	if err != nil {
		return LedgerOutcome{Installment: installment}, err
	}
	return LedgerOutcome{Installment: installment, AmountReceived: received, Healed: true}, ErrAlreadyPaid
}

// adjust applies a delta against the freshest stored total. When the write
// fails the total is rebuilt from source.
func (service *LedgerService) adjust(projectID uint, delta decimal.Decimal) (decimal.Decimal, bool, error) {
	received, err := service.projects.UpdateAmountReceived(projectID, func(current decimal.Decimal) decimal.Decimal {
		return floorAtZero(current, delta)
	})
	if err == nil {
		return received, false, nil
	}

	service.logger.Warn("amount adjustment failed, rebuilding total", "project_id", projectID, "error", err)
	rebuilt, healErr := service.recompute(projectID)
	if healErr != nil {
		return decimal.Zero, false, fmt.Errorf("adjust project %d: %w", projectID, healErr)
	}
	return rebuilt, true, nil
}

func (service *LedgerService) recompute(projectID uint) (decimal.Decimal, error) {
	installments, err := service.installments.ListByProject(projectID)
	if err != nil {
		return decimal.Zero, classifyStoreError("list installments", err)
	}
	total := SumPaidInstallments(installments)
	stored, err := service.projects.UpdateAmountReceived(projectID, func(decimal.Decimal) decimal.Decimal {
		return total
	})
	if err != nil {
		return decimal.Zero, classifyStoreError("overwrite amount received", err)
	}
	return stored, nil
}

func SumPaidInstallments(installments []models.Installment) decimal.Decimal {
	total := decimal.Zero
	for _, installment := range installments {
		if installment.IsPaid() {
			total = total.Add(installment.Amount)
		}
	}
	return total.Round(moneyScale)
}

func InstallmentDisplayStatus(installment models.Installment, today time.Time) string {
	if installment.IsPaid() {
		return models.InstallmentPaid
	}
	if installment.DueDate != nil && dayKey(*installment.DueDate) < dayKey(today) {
		return models.InstallmentOverdue
	}
	return models.InstallmentPending
}

func IsFullyPaid(project models.Project) bool {
	return project.AmountReceived.GreaterThanOrEqual(project.FinalizedAmount)
}

// PaymentProgress is a display percentage in [0, 100].
func PaymentProgress(project models.Project) float64 {
	if !project.FinalizedAmount.IsPositive() {
		return 0
	}
	if IsFullyPaid(project) {
		return 100
	}
	ratio, _ := project.AmountReceived.Div(project.FinalizedAmount).Mul(decimal.NewFromInt(100)).Round(1).Float64()
	return ratio
}
