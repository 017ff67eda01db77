package application

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"

	"github.com/ahrav/go-verdict/internal/domain"
)

// identifierPattern matches sweep IDs: lowercase letters, digits,
// underscores and hyphens, starting with a letter or digit.
var identifierPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// normalizeName case-folds and trims a parameter or distribution name so
// that "Prob" and " prob " resolve to the same parameter.
func normalizeName(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// NewValidator creates a validator with every study-specific validation
// registered. NewValidator returns an error if registration fails.
func NewValidator() (*validator.Validate, error) {
	v := validator.New()
	if err := RegisterStudyValidators(v); err != nil {
		return nil, err
	}
	return v, nil
}

// RegisterStudyValidators registers custom validators with the validator
// instance for use in study configuration struct tags.
// RegisterStudyValidators adds semver, identifier, sweepparam, and distkind
// validators.
// RegisterStudyValidators returns an error if any validator registration
// fails.
func RegisterStudyValidators(v *validator.Validate) error {
	validators := map[string]validator.Func{
		"semver":     validateSemver,
		"identifier": validateIdentifier,
		"sweepparam": validateSweepParameter,
		"distkind":   validateDistributionKind,
	}
	for tag, fn := range validators {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s validator: %w", tag, err)
		}
	}
	return nil
}

// validateSemver validates that a string follows semantic versioning
// format (X.Y.Z where X, Y, Z are non-negative integers).
func validateSemver(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	var major, minor, patch int
	n, err := fmt.Sscanf(value, "%d.%d.%d", &major, &minor, &patch)
	return err == nil && n == 3 && major >= 0 && minor >= 0 && patch >= 0
}

// validateIdentifier validates sweep IDs against identifierPattern.
func validateIdentifier(fl validator.FieldLevel) bool {
	return identifierPattern.MatchString(fl.Field().String())
}

// validateSweepParameter accepts any known sweep parameter, ignoring case.
func validateSweepParameter(fl validator.FieldLevel) bool {
	_, err := domain.ParseSweepParameter(normalizeName(fl.Field().String()))
	return err == nil
}

// validateDistributionKind accepts any known distribution kind, ignoring
// case.
func validateDistributionKind(fl validator.FieldLevel) bool {
	_, err := domain.ParseDistributionKind(normalizeName(fl.Field().String()))
	return err == nil
}

// validateSweepSemantics applies the rules struct tags cannot express:
// unique sweep IDs, and whole-number values for integral parameters.
func validateSweepSemantics(config *StudyConfig) error {
	verr := domain.NewValidationError("study " + config.Metadata.Name)

	seen := make(map[string]struct{}, len(config.Sweeps))
	for i, sweep := range config.Sweeps {
		if _, dup := seen[sweep.ID]; dup {
			verr.AddError(fmt.Sprintf("duplicate sweep ID %q", sweep.ID))
		}
		seen[sweep.ID] = struct{}{}

		param, err := domain.ParseSweepParameter(normalizeName(sweep.Parameter))
		if err != nil {
			verr.AddError(fmt.Sprintf("sweeps[%d]: %v", i, err))
			continue
		}
		if param.Integral() {
			for _, v := range sweep.Values {
				if v != float64(int64(v)) {
					verr.AddError(fmt.Sprintf("sweeps[%d]: %s value %g is not a whole number", i, param, v))
				}
			}
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}
