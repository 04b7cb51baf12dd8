package domain

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

var ErrInvalidCheckout = errors.New("invalid checkout details")

type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

func (a Address) String() string {
	return fmt.Sprintf("%s, %s, %s %s", a.Street, a.City, a.State, a.PostalCode)
}

type Checkout struct {
	FullName      string        `json:"full_name"`
	Email         string        `json:"email"`
	Phone         string        `json:"phone"`
	Address       Address       `json:"address"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	UPIID         string        `json:"upi_id,omitempty"`
}

// Profile is the shipping contact remembered for the next checkout.
type Profile struct {
	UserID   string  `json:"user_id"`
	FullName string  `json:"full_name"`
	Phone    string  `json:"phone"`
	Address  Address `json:"address"`
}

func (c Checkout) Profile(userID string) Profile {
	return Profile{UserID: userID, FullName: c.FullName, Phone: c.Phone, Address: c.Address}
}

func minLen(field, v string, n int) error {
	if utf8.RuneCountInString(strings.TrimSpace(v)) < n {
		return fmt.Errorf("%s must be at least %d characters", field, n)
	}
	return nil
}

// Validate reports every problem at once, wrapped in ErrInvalidCheckout.
func (c Checkout) Validate() error {
	errs := []error{
		minLen("full_name", c.FullName, 2),
		minLen("address.street", c.Address.Street, 5),
		minLen("address.city", c.Address.City, 2),
		minLen("address.state", c.Address.State, 2),
		minLen("address.postal_code", c.Address.PostalCode, 6),
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		errs = append(errs, errors.New("email is invalid"))
	}
	digits := 0
	for _, r := range c.Phone {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	if digits < 10 {
		errs = append(errs, errors.New("phone must have at least 10 digits"))
	}
	if !c.PaymentMethod.Valid() {
		errs = append(errs, fmt.Errorf("payment_method %q is not supported", c.PaymentMethod))
	}
	if c.PaymentMethod == PaymentUPI && strings.TrimSpace(c.UPIID) == "" {
		errs = append(errs, errors.New("upi_id is required for upi payments"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCheckout, err)
	}
	return nil
}
