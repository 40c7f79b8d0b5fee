package util

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Permissive email shape check: anything of the form local@domain.tld with no
// whitespace. Deliverability is the mail provider's problem, not ours.
var emailRegex = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// ValidEmail returns true if the given string looks like an email address.
func ValidEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// Errors is a list of errors that can be accumulated and reported as one.
type Errors []error

func (e Errors) Error() string {
	messages := []string{}
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return strings.Join(messages, ", ")
}

// RequireEnv retrieves the environment variable varName. If it is not set,
// an error is added to errs.
func RequireEnv(varName string, errs *Errors) string {
	envVar := os.Getenv(varName)
	if len(envVar) == 0 {
		*errs = append(*errs, fmt.Errorf("environment variable %s must be set", varName))
	}
	return envVar
}
