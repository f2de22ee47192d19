package core

import "fmt"

// ValidateCase validates a Case according to domain rules.
//
// Validation rules:
//   - CaseKey must not be empty
//   - Status must not be empty
//
// NOT validated (optional in the source data):
//   - Subject, location and petitioner fields (may all be blank; such a
//     case is simply not indexable)
//   - Timestamps (zero means unknown)
func ValidateCase(c *Case) error {
	if c == nil {
		return fmt.Errorf("%w: case is nil", ErrInvalidCase)
	}

	if c.CaseKey == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCase, ErrEmptyCaseKey)
	}

	if c.Status == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCase, ErrEmptyStatus)
	}

	return nil
}

// ValidatePersonnel validates a Personnel record according to domain rules.
func ValidatePersonnel(p *Personnel) error {
	if p == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidPersonnel)
	}

	if p.EmployeeID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPersonnel, ErrEmptyEmployeeID)
	}

	return nil
}

// ValidateVehicle validates a Vehicle record according to domain rules.
func ValidateVehicle(v *Vehicle) error {
	if v == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidVehicle)
	}

	if v.LicensePlate == "" {
		return fmt.Errorf("%w: %w", ErrInvalidVehicle, ErrEmptyLicensePlate)
	}

	return nil
}
