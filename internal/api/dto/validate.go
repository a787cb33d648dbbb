package dto

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

// RegisterValidators 注册自定义校验规则
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("date_ymd", validateDateYMD)
}

// validateDateYMD 校验 YYYY-MM-DD
func validateDateYMD(fl validator.FieldLevel) bool {
	_, err := time.Parse(dateLayout, fl.Field().String())
	return err == nil
}
