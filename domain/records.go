package domain

// Records mirror the backend payloads. Dates stay in the backend's string form.

type Project struct {
	ID          int64  `json:"id"`
	ProjectName string `json:"projectName" binding:"required,lte=120"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
	EndDate     string `json:"endDate,omitempty"`
}

type Employee struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName"`
	Email       string `json:"email,omitempty" binding:"omitempty,email"`
	Designation string `json:"designation,omitempty"`
}

func (e Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

type Defect struct {
	ID          int64  `json:"id"`
	ProjectID   int64  `json:"projectId"`
	ReleaseID   int64  `json:"releaseId,omitempty"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description,omitempty"`
	Severity    string `json:"severity,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Status      string `json:"status,omitempty"`
	AssignedTo  string `json:"assignedTo,omitempty"`
}

type TestCase struct {
	ID             int64  `json:"id"`
	ProjectID      int64  `json:"projectId"`
	Title          string `json:"title" binding:"required"`
	Steps          string `json:"steps,omitempty"`
	ExpectedResult string `json:"expectedResult,omitempty"`
	Status         string `json:"status,omitempty"`
}

type Release struct {
	ID          int64  `json:"id"`
	ProjectID   int64  `json:"projectId"`
	ReleaseName string `json:"releaseName" binding:"required"`
	ReleaseType string `json:"releaseType,omitempty"`
	ReleaseDate string `json:"releaseDate,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Configuration lookups.

type DefectStatus struct {
	ID    int64  `json:"id"`
	Name  string `json:"name" binding:"required"`
	Color string `json:"color,omitempty"`
}

type ReleaseType struct {
	ID   int64  `json:"id"`
	Name string `json:"name" binding:"required"`
}

type Designation struct {
	ID   int64  `json:"id"`
	Name string `json:"name" binding:"required"`
}

// Allocation is the canonical form of an employee assignment to a project.
type Allocation struct {
	ID                   int64   `json:"id"`
	ProjectID            int64   `json:"projectId"`
	EmployeeID           int64   `json:"employeeId"`
	EmployeeName         string  `json:"employeeName"`
	Role                 string  `json:"role,omitempty"`
	AllocationPercentage float64 `json:"allocationPercentage"`
	StartDate            string  `json:"startDate,omitempty"`
	EndDate              string  `json:"endDate,omitempty"`
}

// Dashboard aggregates.

type SeverityCount struct {
	Severity string `json:"severity"`
	Count    int    `json:"count"`
}

type DefectDensity struct {
	ProjectID   int64   `json:"projectId"`
	DefectCount int     `json:"defectCount"`
	KLOC        float64 `json:"kloc"`
	Density     float64 `json:"density"`
}

type ReopenSummary struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}
