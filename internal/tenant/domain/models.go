package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

type Organization struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgCode          string       `gorm:"type:text;not null;uniqueIndex" json:"org_code"`
	Name             string       `gorm:"type:text;not null" json:"name"`
	SubscriptionPlan string       `gorm:"type:text;not null;default:'FREE'" json:"subscription_plan"`
	CreatedAt        time.Time    `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time    `gorm:"not null" json:"updated_at"`
}

func (Organization) TableName() string { return "organizations" }

// Campus belongs to one organization for its whole life.
type Campus struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID        snowflake.ID `gorm:"not null;index" json:"organization_id"`
	CampusCode   string       `gorm:"type:text;not null;uniqueIndex" json:"campus_code"`
	CampusSlug   string       `gorm:"type:text;not null;uniqueIndex" json:"campus_slug"`
	Name         string       `gorm:"type:text;not null" json:"name"`
	City         string       `gorm:"type:text;not null" json:"city"`
	IsMainCampus bool         `gorm:"not null;default:false" json:"is_main_campus"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
}

func (Campus) TableName() string { return "campuses" }

// Student.OrgID always equals the owning campus' OrgID.
type Student struct {
	ID            snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID         snowflake.ID `gorm:"not null;uniqueIndex:ux_students_org_admission,priority:1" json:"organization_id"`
	CampusID      snowflake.ID `gorm:"not null;index" json:"campus_id"`
	AdmissionNo   string       `gorm:"type:text;not null;uniqueIndex:ux_students_org_admission,priority:2" json:"admission_no"`
	FullName      string       `gorm:"type:text;not null" json:"full_name"`
	Grade         string       `gorm:"type:text;not null" json:"grade"`
	GuardianPhone string       `gorm:"type:text" json:"guardian_phone,omitempty"`
	CreatedAt     time.Time    `gorm:"not null" json:"created_at"`
}

func (Student) TableName() string { return "students" }
