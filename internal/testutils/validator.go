package testutils

import (
	"errors"
	"sort"

	"github.com/go-playground/validator/v10"
)

// FailedFields returns "Namespace:tag" pairs for every struct validation
// failure wrapped in err, sorted for stable assertions. It returns nil when
// err carries no validator.ValidationErrors.
func FailedFields(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fe.Namespace()+":"+fe.Tag())
	}
	sort.Strings(out)
	return out
}
