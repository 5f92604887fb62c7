package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/andresuchdata/promolift/backend-go/internal/domain"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateForecastRequest checks request shape, date order and the promotion
// pricing inputs. It runs before any catalog or prediction call.
func ValidateForecastRequest(req domain.ForecastRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %s", domain.ErrInvalidRequest, describeValidation(err))
	}

	if req.DateEnd < req.DateStart {
		return fmt.Errorf("%w: date_end must not be before date_start", domain.ErrInvalidRequest)
	}
	if start, end := req.PromotionPeriod(); end < start {
		return fmt.Errorf("%w: period_end must not be before period_start", domain.ErrInvalidRequest)
	}

	inputs := 0
	for _, v := range []*float64{req.DiscountPercent, req.TargetMargin, req.TargetPrice} {
		if v != nil {
			inputs++
		}
	}
	if req.HasPromotion() && inputs != 1 {
		return domain.ErrInvalidPromotionInput
	}
	if !req.HasPromotion() && inputs != 0 {
		return domain.ErrInvalidPromotionInput
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "datetime":
			msgs = append(msgs, fe.Field()+" must be a YYYY-MM-DD date")
		case "unique":
			msgs = append(msgs, fe.Field()+" must not contain duplicates")
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		}
	}
	return strings.Join(msgs, "; ")
}
