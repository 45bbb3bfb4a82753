package models

// Instance statuses.
const (
	StatusIncomplete       = "incomplete"
	StatusComplete         = "complete"
	StatusSubmitted        = "submitted"
	StatusSubmissionFailed = "submission_failed"
)

// Instance is a filled-in submission of a form version.
type Instance struct {
	ID                   int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	InstanceID           string  `json:"instanceId" gorm:"uniqueIndex;not null"`
	FormID               string  `json:"formId" gorm:"column:jr_form_id;index:idx_instance_form;not null" validate:"required"`
	FormVersion          *string `json:"formVersion" gorm:"column:jr_version;index:idx_instance_form"`
	DisplayName          string  `json:"displayName"`
	Status               string  `json:"status" gorm:"not null" validate:"oneof=incomplete complete submitted submission_failed"`
	InstanceFilePath     string  `json:"instanceFilePath" gorm:"not null" validate:"required"`
	LastStatusChangeDate int64   `json:"lastStatusChangeDate"`
	DeletedDate          *int64  `json:"deletedDate" gorm:"index"`
}
