package address

import (
	"fmt"
	"strings"
)

// Field names accepted by SetField.
const (
	FieldName        = "name"
	FieldPincode     = "pincode"
	FieldFullAddress = "full_address"
)

// Address is the shipping address form state for one checkout session.
type Address struct {
	Name        string `json:"name"`
	Pincode     string `json:"pincode"`
	FullAddress string `json:"full_address"`
}

// SetField replaces a single field, leaving the others untouched.
func (a *Address) SetField(field, value string) error {
	switch field {
	case FieldName:
		a.Name = value
	case FieldPincode:
		a.Pincode = value
	case FieldFullAddress:
		a.FullAddress = value
	default:
		return fmt.Errorf("unknown address field %q", field)
	}
	return nil
}

// IsValid reports whether every field is non-empty after trimming
// surrounding whitespace. This predicate alone gates the pay action.
func (a Address) IsValid() bool {
	return strings.TrimSpace(a.Name) != "" &&
		strings.TrimSpace(a.Pincode) != "" &&
		strings.TrimSpace(a.FullAddress) != ""
}
