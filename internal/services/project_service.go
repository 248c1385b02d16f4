package services

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/terraincognita07/forgeboard/internal/models"
)

const (
	MaxProjectTitleLength = 200
	MaxProjectListItems   = 50
)

type ProjectRepository interface {
	Create(project *models.Project) error
	FindByUser(userID uint, projectID uint) (models.Project, error)
	ListByUser(userID uint, status string) ([]models.Project, error)
	Save(project *models.Project) error
	DeleteWithInstallments(userID uint, projectID uint) error
}

// ProjectInput carries editable project fields. Nil pointers leave the stored
// value untouched on update.
type ProjectInput struct {
	Title           *string
	Leader          *string
	Status          *string
	Priority        *string
	Progress        *int
	FinalizedAmount *decimal.Decimal
	EstimatedHours  *float64
	ActualHours     *float64
	BookingDate     *time.Time
	Deadline        *time.Time
	Tags            []string
	TechStack       []string
	Resources       []string
	Images          []string
}

type ProjectService struct {
	projects ProjectRepository
	location *time.Location
}

func NewProjectService(projects ProjectRepository, location *time.Location) *ProjectService {
	if location == nil {
		location = time.UTC
	}
	return &ProjectService{projects: projects, location: location}
}

func (service *ProjectService) Create(userID uint, input ProjectInput) (models.Project, error) {
	if input.Title == nil || strings.TrimSpace(*input.Title) == "" {
		return models.Project{}, invalid("title", "required")
	}
	if input.Leader == nil || strings.TrimSpace(*input.Leader) == "" {
		return models.Project{}, invalid("leader", "required")
	}

	project := models.Project{
		UserID:          userID,
		Status:          models.ProjectStatusEnquiry,
		Priority:        models.PriorityMedium,
		FinalizedAmount: decimal.Zero,
		AmountReceived:  decimal.Zero,
	}
	if err := service.apply(&project, input); err != nil {
		return models.Project{}, err
	}
	if err := service.projects.Create(&project); err != nil {
		return models.Project{}, classifyStoreError("create project", err)
	}
	return project, nil
}

func (service *ProjectService) Update(userID uint, projectID uint, input ProjectInput) (models.Project, error) {
	project, err := service.projects.FindByUser(userID, projectID)
	if err != nil {
		return models.Project{}, classifyStoreError("load project", err)
	}
	if err := service.apply(&project, input); err != nil {
		return models.Project{}, err
	}
	if err := service.projects.Save(&project); err != nil {
		return models.Project{}, classifyStoreError("save project", err)
	}
	return project, nil
}

func (service *ProjectService) Get(userID uint, projectID uint) (models.Project, error) {
	project, err := service.projects.FindByUser(userID, projectID)
	if err != nil {
		return models.Project{}, classifyStoreError("load project", err)
	}
	return project, nil
}

func (service *ProjectService) List(userID uint, status string) ([]models.Project, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != "" && !slices.Contains(models.ProjectStatuses, status) {
		return nil, invalid("status", "unknown status")
	}
	projects, err := service.projects.ListByUser(userID, status)
	if err != nil {
		return nil, classifyStoreError("list projects", err)
	}
	return projects, nil
}

// Delete removes the project together with its installments.
func (service *ProjectService) Delete(userID uint, projectID uint) error {
	return classifyStoreError("delete project", service.projects.DeleteWithInstallments(userID, projectID))
}

func (service *ProjectService) apply(project *models.Project, input ProjectInput) error {
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return invalid("title", "required")
		}
		if len(title) > MaxProjectTitleLength {
			return invalid("title", "too long")
		}
		project.Title = title
	}
	if input.Leader != nil {
		leader := strings.TrimSpace(*input.Leader)
		if leader == "" {
			return invalid("leader", "required")
		}
		project.Leader = leader
	}
	if input.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*input.Status))
		if !slices.Contains(models.ProjectStatuses, status) {
			return invalid("status", "unknown status")
		}
		project.Status = status
	}
	if input.Priority != nil {
		priority := strings.ToLower(strings.TrimSpace(*input.Priority))
		if !slices.Contains(models.ProjectPriorities, priority) {
			return invalid("priority", "unknown priority")
		}
		project.Priority = priority
	}
	if input.Progress != nil {
		if *input.Progress < 0 || *input.Progress > 100 {
			return invalid("progress", "must be between 0 and 100")
		}
		project.Progress = *input.Progress
	}
	if input.FinalizedAmount != nil {
		amount, err := RequireNonNegativeMoney("finalized_amount", *input.FinalizedAmount)
		if err != nil {
			return err
		}
		project.FinalizedAmount = amount
	}
	if input.EstimatedHours != nil {
		if *input.EstimatedHours < 0 {
			return invalid("estimated_hours", "must not be negative")
		}
		project.EstimatedHours = *input.EstimatedHours
	}
	if input.ActualHours != nil {
		if *input.ActualHours < 0 {
			return invalid("actual_hours", "must not be negative")
		}
		project.ActualHours = *input.ActualHours
	}
	if input.BookingDate != nil {
		booking := DateAtLocation(*input.BookingDate, service.location)
		project.BookingDate = &booking
	}
	if input.Deadline != nil {
		deadline := DateAtLocation(*input.Deadline, service.location)
		project.Deadline = &deadline
	}
	if input.Tags != nil {
		project.Tags = cleanStringList(input.Tags)
	}
	if input.TechStack != nil {
		project.TechStack = cleanStringList(input.TechStack)
	}
	if input.Resources != nil {
		project.Resources = cleanStringList(input.Resources)
	}
	if input.Images != nil {
		project.Images = cleanStringList(input.Images)
	}
	return nil
}

func cleanStringList(values []string) []string {
	cleaned := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		trimmed := strings.TrimSpace(value)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		cleaned = append(cleaned, trimmed)
		if len(cleaned) == MaxProjectListItems {
			break
		}
	}
	return cleaned
}
