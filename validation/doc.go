// Package validation validates configuration structs using
// go-playground/validator struct tags and reports failures as
// *errors.AppError with per-field details.
//
//	type Config struct {
//	    Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
//	}
//
//	if err := validation.Validate(cfg); err != nil { ... }
package validation
