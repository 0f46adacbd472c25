package service

import (
	"context"
	"errors"
	"regexp"

	"oms-customers/internal/models"

	"github.com/go-playground/validator/v10"
)

// Sri Lankan mobile/landline: optional 0, 94 or +94 prefix, then 9 digits.
var lkPhonePattern = regexp.MustCompile(`^(?:0|94|\+94)?[0-9]{9}$`)

// IsValidPhone reports whether s has the accepted phone number shape.
func IsValidPhone(s string) bool {
	return lkPhonePattern.MatchString(s)
}

const (
	msgNameRequired    = "Customer name is required"
	msgPhoneRequired   = "Phone number is required"
	msgPhoneFormat     = "Invalid primary phone number format. Use 9 digits, optionally prefixed with 0, 94 or +94."
	msgPhone2Format    = "Invalid secondary phone number format. Use 9 digits, optionally prefixed with 0, 94 or +94."
	msgAddressRequired = "Address Line 1 is required"
	msgCityRequired    = "City selection is required"
	msgEmailTaken      = "Email address already exists. Please use a different email."
	msgPhoneTaken      = "Primary phone number already exists. Please use a different phone number."
	msgPhone2Taken     = "Secondary phone number already exists. Please use a different phone number."
	msgPhonesSame      = "Primary and secondary phone numbers cannot be the same."
	msgCityInvalid     = "Selected city is not valid"
)

// Form field names used as keys in the error map.
const (
	fieldName         = "name"
	fieldEmail        = "email"
	fieldPhone        = "phone"
	fieldPhone2       = "phone2"
	fieldAddressLine1 = "address_line1"
	fieldCityID       = "city_id"
)

const phoneTag = "lkphone"

// shapeMessages maps a failed struct field/tag pair to its form field and message.
var shapeMessages = map[string]struct{ field, msg string }{
	"Name.required":         {fieldName, msgNameRequired},
	"Phone.required":        {fieldPhone, msgPhoneRequired},
	"Phone.lkphone":         {fieldPhone, msgPhoneFormat},
	"Phone2.lkphone":        {fieldPhone2, msgPhone2Format},
	"AddressLine1.required": {fieldAddressLine1, msgAddressRequired},
	"CityID.gt":             {fieldCityID, msgCityRequired},
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// registration only fails for an empty tag or nil func
	_ = v.RegisterValidation(phoneTag, func(fl validator.FieldLevel) bool {
		return IsValidPhone(fl.Field().String())
	})
	return v
}

// checkShape runs the store-independent field checks and returns every failure.
func (s *CustomerService) checkShape(in *models.CustomerInput) (map[string]string, error) {
	errs := map[string]string{}

	err := s.validate.Struct(in)
	if err == nil {
		return errs, nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return nil, err
	}
	for _, fe := range fieldErrs {
		if m, ok := shapeMessages[fe.StructField()+"."+fe.Tag()]; ok {
			errs[m.field] = m.msg
		}
	}
	return errs, nil
}

// checkStore runs the uniqueness and reference checks against the store.
// Later checks overwrite earlier messages for the same field.
func (s *CustomerService) checkStore(ctx context.Context, existing *models.Customer, in *models.CustomerInput, errs map[string]string) error {
	id := existing.ID

	if in.Email != nil && !equalOptional(in.Email, existing.Email) {
		taken, err := s.store.EmailInUse(ctx, *in.Email, id)
		if err != nil {
			return err
		}
		if taken {
			errs[fieldEmail] = msgEmailTaken
		}
	}

	if in.Phone != "" && in.Phone != existing.Phone {
		taken, err := s.store.PhoneInUse(ctx, in.Phone, id)
		if err != nil {
			return err
		}
		if taken {
			errs[fieldPhone] = msgPhoneTaken
		}

		taken, err = s.store.Phone2InUse(ctx, in.Phone, id)
		if err != nil {
			return err
		}
		if taken {
			errs[fieldPhone] = msgPhoneTaken
		}
	}

	if in.Phone2 != nil && !equalOptional(in.Phone2, existing.Phone2) {
		taken, err := s.store.AnyPhoneInUse(ctx, *in.Phone2, id)
		if err != nil {
			return err
		}
		if taken {
			errs[fieldPhone2] = msgPhone2Taken
		}
	}

	if in.Phone != "" && in.Phone2 != nil && in.Phone == *in.Phone2 {
		errs[fieldPhone2] = msgPhonesSame
	}

	if in.CityID > 0 {
		ok, err := s.store.ActiveCityExists(ctx, uint(in.CityID))
		if err != nil {
			return err
		}
		if !ok {
			errs[fieldCityID] = msgCityInvalid
		}
	}

	return nil
}
