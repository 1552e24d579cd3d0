package rules

import (
	"errors"
	"time"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
)

const passwordRegexPattern = `^(?=.*[A-Za-z])(?=.*\d).{8,}$`

var ErrInvalidPassword = errors.New("the password must be at least 8 characters and contain 1 letter and 1 number")

var passwordExp = func() *regexp2.Regexp {
	re := regexp2.MustCompile(passwordRegexPattern, regexp2.None)
	re.MatchTimeout = 50 * time.Millisecond
	return re
}()

// Password enforces the account password policy. Empty values pass; pair it
// with validation.Required.
var Password = validation.By(func(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	ok, err := passwordExp.MatchString(s)
	if err != nil || !ok {
		return ErrInvalidPassword
	}
	return nil
})
