package apiclient

import (
	"defectboard/domain"
	"encoding/json"
	"fmt"
	"strings"
)

// RejectedAllocation reports a record that matched no known wire shape, or more than one.
type RejectedAllocation struct {
	Index  int             `json:"index"`
	Reason string          `json:"reason"`
	Raw    json.RawMessage `json:"raw,omitempty"`
}

type allocationShape int

const (
	shapeCamel allocationShape = iota
	shapeSnake
	shapeNested
)

type camelAllocation struct {
	ID                   int64   `json:"id"`
	ProjectID            int64   `json:"projectId"`
	EmployeeID           int64   `json:"employeeId"`
	EmployeeName         string  `json:"employeeName"`
	Role                 string  `json:"role"`
	AllocationPercentage float64 `json:"allocationPercentage"`
	StartDate            string  `json:"startDate"`
	EndDate              string  `json:"endDate"`
}

type snakeAllocation struct {
	ID                   int64   `json:"id"`
	ProjectID            int64   `json:"project_id"`
	EmployeeID           int64   `json:"employee_id"`
	EmployeeName         string  `json:"employee_name"`
	Role                 string  `json:"role"`
	AllocationPercentage float64 `json:"allocation_percentage"`
	StartDate            string  `json:"start_date"`
	EndDate              string  `json:"end_date"`
}

type nestedAllocation struct {
	ID        int64 `json:"id"`
	ProjectID int64 `json:"projectId"`
	Employee  struct {
		ID        int64  `json:"id"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	} `json:"employee"`
	Role                 string  `json:"role"`
	AllocationPercentage float64 `json:"allocationPercentage"`
	StartDate            string  `json:"startDate"`
	EndDate              string  `json:"endDate"`
}

// NormalizeAllocations maps each record to the canonical Allocation. A record must match
// exactly one of the camelCase, snake_case or nested-employee shapes. Records without a
// project id take projectID.
func NormalizeAllocations(projectID int64, records []json.RawMessage) ([]domain.Allocation, []RejectedAllocation) {
	allocations := []domain.Allocation{}
	rejected := []RejectedAllocation{}
	for i, record := range records {
		allocation, err := normalizeAllocation(record)
		if err != nil {
			rejected = append(rejected, RejectedAllocation{Index: i, Reason: err.Error(), Raw: record})
			continue
		}
		if allocation.ProjectID == 0 {
			allocation.ProjectID = projectID
		}
		allocations = append(allocations, allocation)
	}
	return allocations, rejected
}

func normalizeAllocation(record json.RawMessage) (domain.Allocation, error) {
	fields := objectFields(record)
	if fields == nil {
		return domain.Allocation{}, fmt.Errorf("allocation is not an object")
	}

	shapes := []allocationShape{}
	if _, found := fields["employeeId"]; found {
		shapes = append(shapes, shapeCamel)
	}
	if _, found := fields["employee_id"]; found {
		shapes = append(shapes, shapeSnake)
	}
	if nested, found := fields["employee"]; found && objectFields(nested) != nil {
		shapes = append(shapes, shapeNested)
	}
	if len(shapes) == 0 {
		return domain.Allocation{}, fmt.Errorf("unrecognized allocation shape")
	}
	if len(shapes) > 1 {
		return domain.Allocation{}, fmt.Errorf("ambiguous allocation shape")
	}

	var a domain.Allocation
	switch shapes[0] {
	case shapeCamel:
		var v camelAllocation
		if err := json.Unmarshal(record, &v); err != nil {
			return a, fmt.Errorf("invalid camelCase allocation: %w", err)
		}
		a = domain.Allocation(v)
	case shapeSnake:
		var v snakeAllocation
		if err := json.Unmarshal(record, &v); err != nil {
			return a, fmt.Errorf("invalid snake_case allocation: %w", err)
		}
		a = domain.Allocation(v)
	case shapeNested:
		var v nestedAllocation
		if err := json.Unmarshal(record, &v); err != nil {
			return a, fmt.Errorf("invalid nested allocation: %w", err)
		}
		a = domain.Allocation{
			ID:                   v.ID,
			ProjectID:            v.ProjectID,
			EmployeeID:           v.Employee.ID,
			EmployeeName:         strings.TrimSpace(v.Employee.FirstName + " " + v.Employee.LastName),
			Role:                 v.Role,
			AllocationPercentage: v.AllocationPercentage,
			StartDate:            v.StartDate,
			EndDate:              v.EndDate,
		}
	}

	if a.EmployeeID == 0 {
		return domain.Allocation{}, fmt.Errorf("allocation has no employee id")
	}
	return a, nil
}
