package handler

import (
	"reflect"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/segyhp/loan-tracker/pkg/utils"
)

// NewValidator returns a validator that understands decimal.Decimal fields through
// the decimal_gt, decimal_gte and decimal_lte tags. decimal_places=N caps the number
// of digits after the point.
func NewValidator() *validator.Validate {
	v := validator.New()

	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("decimal_gt", decimalCompare(decimal.Decimal.GreaterThan))
	_ = v.RegisterValidation("decimal_gte", decimalCompare(decimal.Decimal.GreaterThanOrEqual))
	_ = v.RegisterValidation("decimal_lte", decimalCompare(decimal.Decimal.LessThanOrEqual))
	_ = v.RegisterValidation("decimal_places", decimalPlaces)

	return v
}

func decimalCompare(cmp func(decimal.Decimal, decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		param, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return cmp(value, param)
	}
}

func decimalPlaces(fl validator.FieldLevel) bool {
	value, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return false
	}
	places, err := strconv.ParseInt(fl.Param(), 10, 32)
	if err != nil {
		return false
	}
	return utils.HasAtMostPlaces(value, int32(places))
}
