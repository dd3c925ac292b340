package handler

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"shopbill/internal/domain"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterValidators installs the billing binding tags on gin's validator engine.
// Safe to call more than once.
func RegisterValidators() error {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			registerErr = errors.New("gin validator engine is not go-playground/validator")
			return
		}
		v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})

		rules := map[string]validator.Func{
			"money_positive":    moneyPositive,
			"money_nonnegative": moneyNonNegative,
			"gst_rate":          gstRate,
			"shop_type":         shopType,
			"payment_method":    paymentMethod,
		}
		for tag, fn := range rules {
			if err := v.RegisterValidation(tag, fn); err != nil {
				registerErr = fmt.Errorf("registering %s: %w", tag, err)
				return
			}
		}
	})
	return registerErr
}

// decimalValue exposes decimals to tags as their canonical string.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.String()
	}
	return nil
}

func fieldDecimal(fl validator.FieldLevel) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(fl.Field().String())
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func moneyPositive(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	return ok && d.IsPositive() && d.Equal(domain.RoundMoney(d))
}

func moneyNonNegative(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	return ok && !d.IsNegative() && d.Equal(domain.RoundMoney(d))
}

func gstRate(fl validator.FieldLevel) bool {
	d, ok := fieldDecimal(fl)
	return ok && domain.IsAllowedGSTRate(d)
}

func shopType(fl validator.FieldLevel) bool {
	return domain.ShopType(fl.Field().String()).Valid()
}

func paymentMethod(fl validator.FieldLevel) bool {
	return domain.PaymentMethod(fl.Field().String()).Valid()
}
