package validation

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/curiohub/curiohub/internal/logger"
	"go.uber.org/zap"
)

// CheckTimeout bounds each service check.
const CheckTimeout = 10 * time.Second

// Check tests one backing service.
type Check func(ctx context.Context) error

// ServiceValidator fails startup when a required optional service is down.
type ServiceValidator struct {
	required []string
	checks   map[string]Check
}

// NewServiceValidator requires the services switched on through the
// CURIOHUB_REQUIRE_<NAME> environment variables.
func NewServiceValidator(known ...string) *ServiceValidator {
	return &ServiceValidator{
		required: parseRequiredServices(known),
		checks:   map[string]Check{},
	}
}

// Require marks name as required regardless of the environment.
func (sv *ServiceValidator) Require(name string) *ServiceValidator {
	for _, r := range sv.required {
		if r == name {
			return sv
		}
	}
	sv.required = append(sv.required, name)
	return sv
}

// Register sets the check for name. A required service without a check
// fails validation as not configured.
func (sv *ServiceValidator) Register(name string, check Check) *ServiceValidator {
	sv.checks[name] = check
	return sv
}

// Required lists the required services in order.
func (sv *ServiceValidator) Required() []string {
	out := append([]string(nil), sv.required...)
	sort.Strings(out)
	return out
}

// ValidateServices runs the check of every required service and returns the
// first failure.
func (sv *ServiceValidator) ValidateServices(ctx context.Context) error {
	if len(sv.required) == 0 {
		logger.Log.Info("No required services configured for validation")
		return nil
	}

	logger.Log.Info("Validating required services", zap.Strings("services", sv.Required()))

	for _, name := range sv.Required() {
		check, ok := sv.checks[name]
		if !ok {
			return fmt.Errorf("required service %q is not configured", name)
		}

		timeoutCtx, cancel := context.WithTimeout(ctx, CheckTimeout)
		err := check(timeoutCtx)
		cancel()
		if err != nil {
			logger.Log.Error("Required service validation failed", zap.String("service", name), zap.Error(err))
			return fmt.Errorf("required service %q validation failed: %w", name, err)
		}

		logger.Log.Info("Service validated", zap.String("service", name))
	}
	return nil
}

func parseRequiredServices(known []string) []string {
	var required []string
	for _, service := range known {
		if isTruthy(os.Getenv("CURIOHUB_REQUIRE_" + strings.ToUpper(service))) {
			required = append(required, service)
		}
	}
	return required
}

func isTruthy(value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}
