package company

import (
	"errors"
	"strings"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// ErrCompanyIsNotConstructed is returned when a Company was not created through NewCompany or RestoreCompany.
var ErrCompanyIsNotConstructed = errors.New("Company must be created via NewCompany constructor")

// Company is the aggregate that owns a rider roster.
//
// Example:
//
//	c, err := company.NewCompany("C1", "Swift Logistics", []string{"+2348000000001", "+2348000000002"})
//	if err != nil {
//	    return err
//	}
//	for _, number := range c.RiderNumbers() {
//	    fmt.Println(number)
//	}
type Company struct {
	id           string
	name         string
	riderNumbers []string
	guard        guard.ConstructorGuard
}

// NewCompany creates a Company. Rider numbers are trimmed, blanks are dropped and
// duplicates are removed keeping the first occurrence, so roster order is preserved.
// An empty roster is allowed; dispatching against it reports that the company has no riders.
//
// Parameters:
//   - id: company identifier (required)
//   - name: display name (optional)
//   - riderNumbers: ordered roster
//
// Returns:
//   - *Company: the aggregate
//   - error: ValueIsRequiredError when id is blank
func NewCompany(id, name string, riderNumbers []string) (*Company, error) {
	c := &Company{
		name:  strings.TrimSpace(name),
		guard: guard.NewConstructorGuard(),
	}

	if err := c.setID(id); err != nil {
		return nil, err
	}
	c.setRiderNumbers(riderNumbers)

	return c, nil
}

// RestoreCompany rebuilds a Company from persistence. It applies the same rules as NewCompany.
func RestoreCompany(id, name string, riderNumbers []string) (*Company, error) {
	return NewCompany(id, name, riderNumbers)
}

// Validate reports ErrCompanyIsNotConstructed for a zero-value Company.
func (c *Company) Validate() error {
	if c == nil {
		return ErrCompanyIsNotConstructed
	}
	return c.guard.Validate(ErrCompanyIsNotConstructed)
}

// ID returns the company identifier.
func (c *Company) ID() string {
	return c.id
}

// Name returns the display name.
func (c *Company) Name() string {
	return c.name
}

// RiderNumbers returns a copy of the roster in its original order.
func (c *Company) RiderNumbers() []string {
	out := make([]string, len(c.riderNumbers))
	copy(out, c.riderNumbers)
	return out
}

// HasRider reports whether number belongs to the roster.
func (c *Company) HasRider(number string) bool {
	number = strings.TrimSpace(number)
	for _, n := range c.riderNumbers {
		if n == number {
			return true
		}
	}
	return false
}

func (c *Company) setID(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errs.NewValueIsRequiredError("companyId")
	}
	c.id = id
	return nil
}

func (c *Company) setRiderNumbers(numbers []string) {
	seen := make(map[string]struct{}, len(numbers))
	roster := make([]string, 0, len(numbers))
	for _, n := range numbers {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		roster = append(roster, n)
	}
	c.riderNumbers = roster
}
