// Package district holds the fixed enumeration of Sri Lankan administrative
// districts and the classifier that maps a coordinate onto one of them.
package district

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDistrict is returned by Parse for names outside the enumeration.
var ErrInvalidDistrict = errors.New("not a known district")

// District is one of the 25 administrative districts. The zero value is
// Unknown and is never a valid member.
type District string

// Unknown is the result of a classification that matched nothing.
const Unknown District = ""

const (
	Colombo      District = "Colombo"
	Gampaha      District = "Gampaha"
	Kalutara     District = "Kalutara"
	Galle        District = "Galle"
	Matara       District = "Matara"
	Hambantota   District = "Hambantota"
	Jaffna       District = "Jaffna"
	Kilinochchi  District = "Kilinochchi"
	Mannar       District = "Mannar"
	Vavuniya     District = "Vavuniya"
	Mullaitivu   District = "Mullaitivu"
	Batticaloa   District = "Batticaloa"
	Ampara       District = "Ampara"
	Trincomalee  District = "Trincomalee"
	Kurunegala   District = "Kurunegala"
	Puttalam     District = "Puttalam"
	Anuradhapura District = "Anuradhapura"
	Polonnaruwa  District = "Polonnaruwa"
	Matale       District = "Matale"
	Kandy        District = "Kandy"
	NuwaraEliya  District = "Nuwara Eliya"
	Kegalle      District = "Kegalle"
	Ratnapura    District = "Ratnapura"
	Badulla      District = "Badulla"
	Monaragala   District = "Monaragala"
)

// all is the enumeration in match order. Classification walks it front to
// back and the first hit wins, so the order is part of the contract.
var all = [...]District{
	Colombo, Gampaha, Kalutara, Galle, Matara, Hambantota,
	Jaffna, Kilinochchi, Mannar, Vavuniya, Mullaitivu,
	Batticaloa, Ampara, Trincomalee, Kurunegala, Puttalam,
	Anuradhapura, Polonnaruwa, Matale, Kandy, NuwaraEliya,
	Kegalle, Ratnapura, Badulla, Monaragala,
}

// All returns the districts in their stable order.
func All() []District {
	out := make([]District, len(all))
	copy(out, all[:])
	return out
}

// Valid reports whether d is a member of the enumeration.
func (d District) Valid() bool {
	for _, x := range all {
		if x == d {
			return true
		}
	}
	return false
}

func (d District) String() string {
	if d == Unknown {
		return "Unknown"
	}
	return string(d)
}

// Parse maps a canonical name (case-insensitive, surrounding space ignored)
// to its District.
func Parse(s string) (District, error) {
	s = strings.TrimSpace(s)
	for _, d := range all {
		if strings.EqualFold(string(d), s) {
			return d, nil
		}
	}
	return Unknown, fmt.Errorf("%w: %q", ErrInvalidDistrict, s)
}
