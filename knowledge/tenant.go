package knowledge

import "time"

// University is a tenant: the top-level isolation boundary for knowledge
// content. Universities are soft-deactivated, never hard-deleted while
// referenced.
type University struct {
	ID          int64
	Name        string
	NameAr      string
	Code        string
	City        string
	Province    string
	Website     string
	Email       string
	Phone       string
	Address     string
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Department is a sub-tenant nested under exactly one university.
type Department struct {
	ID               int64
	UniversityID     int64
	Name             string
	NameAr           string
	NameFr           string
	Code             string
	OfficialWebsite  string
	Email            string
	Phone            string
	Building         string
	Description      string
	HeadOfDepartment string
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
