package services

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/forgeboard/internal/db"
	"github.com/terraincognita07/forgeboard/internal/models"
)

var ledgerNow = time.Date(2026, time.March, 10, 15, 0, 0, 0, time.UTC)

type ledgerFixture struct {
	repos   *db.Repositories
	service *LedgerService
	user    models.User
	project models.Project
}

func newLedgerFixture(t *testing.T) ledgerFixture {
	t.Helper()
	repos := openTestRepositories(t)
	user := createOwner(t, repos, "owner@forge.local")
	project := createProject(t, repos, user.ID, "1000")
	return ledgerFixture{
		repos:   repos,
		service: NewLedgerService(repos.Projects, repos.Installments, time.UTC),
		user:    user,
		project: project,
	}
}

func (fixture ledgerFixture) add(t *testing.T, amount string) models.Installment {
	t.Helper()
	installment, err := fixture.service.AddInstallment(fixture.user.ID, fixture.project.ID, InstallmentInput{Amount: money(amount)})
	require.NoError(t, err)
	return installment
}

func (fixture ledgerFixture) received(t *testing.T) decimal.Decimal {
	t.Helper()
	project, err := fixture.repos.Projects.FindByUser(fixture.user.ID, fixture.project.ID)
	require.NoError(t, err)
	return project.AmountReceived
}

func (fixture ledgerFixture) requireInvariant(t *testing.T) {
	t.Helper()
	installments, err := fixture.repos.Installments.ListByProject(fixture.project.ID)
	require.NoError(t, err)
	expected := SumPaidInstallments(installments)
	got := fixture.received(t)
	require.True(t, got.Equal(expected), "amount_received %s, paid sum %s", got, expected)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, got.Equal(money(want)), "want %s, got %s", want, got)
}

func TestLedgerInvariantHoldsAcrossOperations(t *testing.T) {
	fixture := newLedgerFixture(t)
	first := fixture.add(t, "200")
	second := fixture.add(t, "300.50")
	third := fixture.add(t, "499.50")
	fixture.requireInvariant(t)
	assertMoney(t, "0", fixture.received(t))

	_, err := fixture.service.MarkPaid(fixture.user.ID, first.ID, ledgerNow)
	require.NoError(t, err)
	fixture.requireInvariant(t)

	outcome, err := fixture.service.MarkPaid(fixture.user.ID, second.ID, ledgerNow)
	require.NoError(t, err)
	assertMoney(t, "500.50", outcome.AmountReceived)
	fixture.requireInvariant(t)

	_, err = fixture.service.DeleteInstallment(fixture.user.ID, first.ID)
	require.NoError(t, err)
	fixture.requireInvariant(t)
	assertMoney(t, "300.50", fixture.received(t))

	_, err = fixture.service.MarkUnpaid(fixture.user.ID, second.ID)
	require.NoError(t, err)
	fixture.requireInvariant(t)
	assertMoney(t, "0", fixture.received(t))

	_, err = fixture.service.MarkPaid(fixture.user.ID, third.ID, ledgerNow)
	require.NoError(t, err)
	fixture.requireInvariant(t)
	assertMoney(t, "499.50", fixture.received(t))
}

func TestAddInstallmentLeavesProjectUntouched(t *testing.T) {
	fixture := newLedgerFixture(t)
	due := time.Date(2026, time.April, 1, 18, 30, 0, 0, time.UTC)

	installment, err := fixture.service.AddInstallment(fixture.user.ID, fixture.project.ID, InstallmentInput{
		Amount:      money("250"),
		DueDate:     &due,
		Description: "  second milestone  ",
	})
	require.NoError(t, err)

	assert.Equal(t, models.InstallmentPending, installment.Status)
	assert.Nil(t, installment.PaidDate)
	assert.Equal(t, "second milestone", installment.Description)
	require.NotNil(t, installment.DueDate)
	assert.Equal(t, "2026-04-01", installment.DueDate.Format("2006-01-02"))
	assertMoney(t, "0", fixture.received(t))
}

func TestAddInstallmentValidation(t *testing.T) {
	fixture := newLedgerFixture(t)
	other := createOwner(t, fixture.repos, "other@forge.local")

	for _, raw := range []string{"0", "-5", "10.005"} {
		_, err := fixture.service.AddInstallment(fixture.user.ID, fixture.project.ID, InstallmentInput{Amount: money(raw)})
		assert.ErrorIs(t, err, ErrValidation, "amount %s", raw)

		var validationErr *ValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Equal(t, "amount", validationErr.Field)
	}

	_, err := fixture.service.AddInstallment(fixture.user.ID, 9999, InstallmentInput{Amount: money("10")})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = fixture.service.AddInstallment(other.ID, fixture.project.ID, InstallmentInput{Amount: money("10")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkPaidTwiceCreditsOnce(t *testing.T) {
	fixture := newLedgerFixture(t)
	installment := fixture.add(t, "500")

	outcome, err := fixture.service.MarkPaid(fixture.user.ID, installment.ID, ledgerNow)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentPaid, outcome.Installment.Status)
	require.NotNil(t, outcome.Installment.PaidDate)
	assert.Equal(t, "2026-03-10", outcome.Installment.PaidDate.Format("2006-01-02"))
	assertMoney(t, "500", outcome.AmountReceived)

	_, err = fixture.service.MarkPaid(fixture.user.ID, installment.ID, ledgerNow.Add(time.Hour))
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	assertMoney(t, "500", fixture.received(t))
}

func TestDeletePaidInstallmentDebitsProject(t *testing.T) {
	fixture := newLedgerFixture(t)
	installment := fixture.add(t, "500")
	_, err := fixture.service.MarkPaid(fixture.user.ID, installment.ID, ledgerNow)
	require.NoError(t, err)

	outcome, err := fixture.service.DeleteInstallment(fixture.user.ID, installment.ID)
	require.NoError(t, err)
	assertMoney(t, "0", outcome.AmountReceived)
	assertMoney(t, "0", fixture.received(t))

	_, err = fixture.repos.Installments.FindByUser(fixture.user.ID, installment.ID)
	assert.Error(t, err)
}

func TestDeletePendingInstallmentKeepsTotal(t *testing.T) {
	fixture := newLedgerFixture(t)
	paid := fixture.add(t, "300")
	pending := fixture.add(t, "200")
	_, err := fixture.service.MarkPaid(fixture.user.ID, paid.ID, ledgerNow)
	require.NoError(t, err)

	outcome, err := fixture.service.DeleteInstallment(fixture.user.ID, pending.ID)
	require.NoError(t, err)
	assertMoney(t, "300", outcome.AmountReceived)
	assertMoney(t, "300", fixture.received(t))
}

func TestDeleteFloorsReceivedAtZero(t *testing.T) {
	fixture := newLedgerFixture(t)
	installment := fixture.add(t, "300")
	_, err := fixture.service.MarkPaid(fixture.user.ID, installment.ID, ledgerNow)
	require.NoError(t, err)

	_, err = fixture.repos.Projects.UpdateAmountReceived(fixture.project.ID, func(decimal.Decimal) decimal.Decimal {
		return money("100")
	})
	require.NoError(t, err)

	outcome, err := fixture.service.DeleteInstallment(fixture.user.ID, installment.ID)
	require.NoError(t, err)
	assertMoney(t, "0", outcome.AmountReceived)
	assertMoney(t, "0", fixture.received(t))
}

func TestRecomputeIsIdempotentAndRepairsDrift(t *testing.T) {
	fixture := newLedgerFixture(t)
	for _, amount := range []string{"120.25", "79.75"} {
		installment := fixture.add(t, amount)
		_, err := fixture.service.MarkPaid(fixture.user.ID, installment.ID, ledgerNow)
		require.NoError(t, err)
	}
	fixture.add(t, "600")

	_, err := fixture.repos.Projects.UpdateAmountReceived(fixture.project.ID, func(decimal.Decimal) decimal.Decimal {
		return money("12345")
	})
	require.NoError(t, err)

	first, err := fixture.service.RecomputeProjectReceived(fixture.user.ID, fixture.project.ID)
	require.NoError(t, err)
	second, err := fixture.service.RecomputeProjectReceived(fixture.user.ID, fixture.project.ID)
	require.NoError(t, err)

	assertMoney(t, "200", first)
	assertMoney(t, "200", second)
	fixture.requireInvariant(t)
}

func TestRecomputeAllReportsDriftedProjects(t *testing.T) {
	fixture := newLedgerFixture(t)
	clean := createProject(t, fixture.repos, fixture.user.ID, "50")
	installment := fixture.add(t, "80")
	_, err := fixture.service.MarkPaid(fixture.user.ID, installment.ID, ledgerNow)
	require.NoError(t, err)

	_, err = fixture.repos.Projects.UpdateAmountReceived(fixture.project.ID, func(decimal.Decimal) decimal.Decimal {
		return money("10")
	})
	require.NoError(t, err)

	drifts, err := fixture.service.RecomputeAll()
	require.NoError(t, err)
	require.Len(t, drifts, 1)
	assert.Equal(t, fixture.project.ID, drifts[0].ProjectID)
	assertMoney(t, "10", drifts[0].Stored)
	assertMoney(t, "80", drifts[0].Expected)
	assert.NotEqual(t, clean.ID, drifts[0].ProjectID)
	fixture.requireInvariant(t)
}

func TestMarkUnpaidReturnsInstallmentToPending(t *testing.T) {
	fixture := newLedgerFixture(t)
	installment := fixture.add(t, "400")

	_, err := fixture.service.MarkUnpaid(fixture.user.ID, installment.ID)
	assert.ErrorIs(t, err, ErrInstallmentNotPaid)

	_, err = fixture.service.MarkPaid(fixture.user.ID, installment.ID, ledgerNow)
	require.NoError(t, err)

	outcome, err := fixture.service.MarkUnpaid(fixture.user.ID, installment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentPending, outcome.Installment.Status)
	assert.Nil(t, outcome.Installment.PaidDate)
	assertMoney(t, "0", outcome.AmountReceived)

	stored, err := fixture.repos.Installments.FindByUser(fixture.user.ID, installment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentPending, stored.Status)
	assert.Nil(t, stored.PaidDate)
}

func TestLedgerOperationsAreOwnerScoped(t *testing.T) {
	fixture := newLedgerFixture(t)
	other := createOwner(t, fixture.repos, "other@forge.local")
	installment := fixture.add(t, "100")

	_, err := fixture.service.MarkPaid(other.ID, installment.ID, ledgerNow)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = fixture.service.DeleteInstallment(other.ID, installment.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = fixture.service.RecomputeProjectReceived(other.ID, fixture.project.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

type flakyProjectRepository struct {
	*db.ProjectRepository
	failures int
}

func (repo *flakyProjectRepository) UpdateAmountReceived(projectID uint, next func(decimal.Decimal) decimal.Decimal) (decimal.Decimal, error) {
	if repo.failures > 0 {
		repo.failures--
		return decimal.Zero, errors.New("disk I/O error")
	}
	return repo.ProjectRepository.UpdateAmountReceived(projectID, next)
}

func TestMarkPaidHealsWhenCreditWriteFails(t *testing.T) {
	fixture := newLedgerFixture(t)
	projects := &flakyProjectRepository{ProjectRepository: fixture.repos.Projects, failures: 1}
	service := NewLedgerService(projects, fixture.repos.Installments, time.UTC)
	installment := fixture.add(t, "500")

	outcome, err := service.MarkPaid(fixture.user.ID, installment.ID, ledgerNow)
	require.NoError(t, err)
	assert.True(t, outcome.Healed)
	assertMoney(t, "500", outcome.AmountReceived)
	fixture.requireInvariant(t)
}

func TestMarkPaidRetryAfterLostCreditNeverDoubleCounts(t *testing.T) {
	fixture := newLedgerFixture(t)
	projects := &flakyProjectRepository{ProjectRepository: fixture.repos.Projects, failures: 2}
	service := NewLedgerService(projects, fixture.repos.Installments, time.UTC)
	installment := fixture.add(t, "500")

	_, err := service.MarkPaid(fixture.user.ID, installment.ID, ledgerNow)
	require.ErrorIs(t, err, ErrTransientStore)
	assertMoney(t, "0", fixture.received(t))

	outcome, err := service.MarkPaid(fixture.user.ID, installment.ID, ledgerNow)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	assert.True(t, outcome.Healed)
	assertMoney(t, "500", outcome.AmountReceived)

	_, err = service.MarkPaid(fixture.user.ID, installment.ID, ledgerNow)
	assert.ErrorIs(t, err, ErrAlreadyPaid)
	assertMoney(t, "500", fixture.received(t))
}

func TestListInstallmentsDerivesOverdue(t *testing.T) {
	fixture := newLedgerFixture(t)
	past := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	future := time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)

	_, err := fixture.service.AddInstallment(fixture.user.ID, fixture.project.ID, InstallmentInput{Amount: money("10"), DueDate: &past})
	require.NoError(t, err)
	_, err = fixture.service.AddInstallment(fixture.user.ID, fixture.project.ID, InstallmentInput{Amount: money("20"), DueDate: &future})
	require.NoError(t, err)

	views, err := fixture.service.ListInstallments(fixture.user.ID, fixture.project.ID, ledgerNow)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, models.InstallmentOverdue, views[0].DisplayStatus)
	assert.Equal(t, models.InstallmentPending, views[0].Status)
	assert.Equal(t, models.InstallmentPending, views[1].DisplayStatus)
}

func TestPaymentProgressAndFullyPaid(t *testing.T) {
	tests := []struct {
		name      string
		finalized string
		received  string
		progress  float64
		fullyPaid bool
	}{
		{name: "nothing finalized", finalized: "0", received: "0", progress: 0, fullyPaid: true},
		{name: "partial", finalized: "1000", received: "333", progress: 33.3, fullyPaid: false},
		{name: "exact", finalized: "999.99", received: "999.99", progress: 100, fullyPaid: true},
		{name: "over", finalized: "100", received: "150", progress: 100, fullyPaid: true},
		{name: "one cent short", finalized: "100.00", received: "99.99", progress: 100, fullyPaid: false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			project := models.Project{FinalizedAmount: money(testCase.finalized), AmountReceived: money(testCase.received)}
			assert.Equal(t, testCase.fullyPaid, IsFullyPaid(project))
			assert.InDelta(t, testCase.progress, PaymentProgress(project), 0.001)
		})
	}
}
