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


package assign

import (
	"fmt"
	"strings"

	"github.com/civita/caseflow/core"
)

// Resource lists shown to the oracle are bounded so the prompt stays
// small regardless of zone size.
const (
	maxPromptPersonnel = 5
	maxPromptVehicles  = 3
)

const assignmentPromptTemplate = `You are an assignment system for a municipal service agency.
Your task is to assign personnel and vehicles to citizen service requests based on:

Case details:
- Case key: %s
- Subject: %s
- Type: %s
- Location: %s
- Priority: %s
- Days elapsed: %d

Available resources:
Personnel:
%s
Vehicles:
%s

Consider:
1. Personnel skills and certifications matching the request type
2. Geographic proximity (zone matching)
3. Current workload balance
4. Vehicle capabilities for the task
5. Urgency based on days elapsed and priority

Return a JSON object:
{
    "assigned_personnel": ["personnel_id"],
    "assigned_vehicles": ["vehicle_id"],
    "estimated_duration_hours": number,
    "confidence_score": 0.0-1.0,
    "reasoning": "brief explanation"
}`

// buildPrompt renders the oracle prompt for one case and its zone's
// available resources.
func buildPrompt(c *core.Case, zone string, personnel []*core.Personnel, vehicles []*core.Vehicle) string {
	return fmt.Sprintf(assignmentPromptTemplate,
		c.CaseKey,
		orDefault(c.Subject, "Not specified"),
		orDefault(c.RequestType, "General"),
		fmt.Sprintf("%s, %s, %s", orDefault(c.Address, "Unknown"), orDefault(c.Neighborhood, "Unknown"), zone),
		core.PriorityFor(c),
		c.ElapsedDays,
		formatPersonnel(personnel),
		formatVehicles(vehicles),
	)
}

// formatPersonnel lists at most maxPromptPersonnel entries in source order.
func formatPersonnel(personnel []*core.Personnel) string {
	if len(personnel) > maxPromptPersonnel {
		personnel = personnel[:maxPromptPersonnel]
	}
	lines := make([]string, len(personnel))
	for i, p := range personnel {
		lines[i] = fmt.Sprintf("- %s: %s (%s) - %s", p.EmployeeID, p.FullName(), p.Role, p.Status)
	}
	return strings.Join(lines, "\n")
}

// formatVehicles lists at most maxPromptVehicles entries in source order.
func formatVehicles(vehicles []*core.Vehicle) string {
	if len(vehicles) > maxPromptVehicles {
		vehicles = vehicles[:maxPromptVehicles]
	}
	lines := make([]string, len(vehicles))
	for i, v := range vehicles {
		lines[i] = fmt.Sprintf("- %s: %s - %s", v.LicensePlate, v.Type, v.Status)
	}
	return strings.Join(lines, "\n")
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
