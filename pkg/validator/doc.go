// Package validator composes small validation rules into a single error.
//
// Each rule pairs a check with the ValidationError reported when the check
// fails. Apply runs every rule and returns ValidationErrors listing all
// failures, so a form can highlight every bad field at once:
//
//	err := validator.Apply(
//		validator.Required("username", in.Username),
//		validator.Matches("username", in.Username, usernamePattern, "letters, digits, - and _"),
//		validator.MinLen("password", in.Password, 8),
//		validator.Email("email", in.Email),
//	)
//	if validator.IsValidationError(err) {
//		fields := validator.ExtractValidationErrors(err).Fields()
//	}
package validator
