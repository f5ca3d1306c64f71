package validation

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/14harshaldhote/trackpro/internal/models"
)

var (
	// Validate is a shared validator instance
	Validate *validator.Validate
)

func init() {
	Validate = validator.New()

	// Register custom validators for enums
	// These should never fail in normal operation, but panic loudly if they do
	if err := Validate.RegisterValidation("time_mode", validateTimeMode); err != nil {
		panic(fmt.Sprintf("failed to register time_mode validator: %v", err))
	}
	if err := Validate.RegisterValidation("goal_period", validateGoalPeriod); err != nil {
		panic(fmt.Sprintf("failed to register goal_period validator: %v", err))
	}
	if err := Validate.RegisterValidation("task_status", validateTaskStatus); err != nil {
		panic(fmt.Sprintf("failed to register task_status validator: %v", err))
	}
	if err := Validate.RegisterValidation("time_of_day", validateTimeOfDay); err != nil {
		panic(fmt.Sprintf("failed to register time_of_day validator: %v", err))
	}
}

// validateTimeMode validates that a string is a valid TimeMode enum value.
// Unknown modes are tolerated at calculation time (they degrade to daily),
// but never accepted on write.
func validateTimeMode(fl validator.FieldLevel) bool {
	switch models.TimeMode(fl.Field().String()) {
	case models.TimeModeDaily, models.TimeModeWeekly, models.TimeModeMonthly:
		return true
	default:
		return false
	}
}

// validateGoalPeriod validates that a string is a valid GoalPeriod enum value
func validateGoalPeriod(fl validator.FieldLevel) bool {
	switch models.GoalPeriod(fl.Field().String()) {
	case models.GoalPeriodDaily, models.GoalPeriodWeekly:
		return true
	default:
		return false
	}
}

// validateTaskStatus validates that a string is a valid TaskStatus enum value
func validateTaskStatus(fl validator.FieldLevel) bool {
	switch models.TaskStatus(fl.Field().String()) {
	case models.TaskStatusTodo, models.TaskStatusInProgress, models.TaskStatusDone,
		models.TaskStatusMissed, models.TaskStatusBlocked:
		return true
	default:
		return false
	}
}

// validateTimeOfDay validates that a string is a valid TimeOfDay enum value
func validateTimeOfDay(fl validator.FieldLevel) bool {
	switch models.TimeOfDay(fl.Field().String()) {
	case models.TimeOfDayAny, models.TimeOfDayMorning, models.TimeOfDayAfternoon, models.TimeOfDayEvening:
		return true
	default:
		return false
	}
}

// ValidateTaskStatus validates a TaskStatus value for transition targets
func ValidateTaskStatus(value models.TaskStatus) error {
	switch value {
	case models.TaskStatusTodo, models.TaskStatusInProgress, models.TaskStatusDone,
		models.TaskStatusMissed, models.TaskStatusBlocked:
		return nil
	default:
		return fmt.Errorf("invalid task status %q: %w", value, models.ErrValidation)
	}
}

// ValidateTemplate checks a template before persistence, folding validator
// errors into the engine's validation error kind
func ValidateTemplate(tmpl *models.TaskTemplate) error {
	if tmpl.Points < 0 {
		return fmt.Errorf("points must not be negative: %w", models.ErrValidation)
	}
	if err := Validate.Struct(tmpl); err != nil {
		return fmt.Errorf("invalid template: %v: %w", err, models.ErrValidation)
	}
	return nil
}
