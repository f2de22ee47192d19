// Copyright 2026 Civita Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidCase indicates a Case failed validation.
	ErrInvalidCase = errors.New("invalid case")

	// ErrInvalidPersonnel indicates a Personnel record failed validation.
	ErrInvalidPersonnel = errors.New("invalid personnel record")

	// ErrInvalidVehicle indicates a Vehicle record failed validation.
	ErrInvalidVehicle = errors.New("invalid vehicle record")

	// ErrEmptyCaseKey indicates the CaseKey field is empty.
	ErrEmptyCaseKey = errors.New("case key cannot be empty")

	// ErrEmptyStatus indicates the Status field is empty.
	ErrEmptyStatus = errors.New("status cannot be empty")

	// ErrEmptyEmployeeID indicates the EmployeeID field is empty.
	ErrEmptyEmployeeID = errors.New("employee id cannot be empty")

	// ErrEmptyLicensePlate indicates the LicensePlate field is empty.
	ErrEmptyLicensePlate = errors.New("license plate cannot be empty")
)
