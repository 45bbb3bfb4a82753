package models

import "time"

// Form is one downloaded form definition. Paths are stored relative to the
// storage root.
type Form struct {
	ID              int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	DisplayName     string  `json:"displayName" gorm:"not null"`
	Description     *string `json:"description"`
	FormID          string  `json:"formId" gorm:"column:jr_form_id;index;not null" validate:"required"`
	Version         *string `json:"version" gorm:"column:jr_version;index"`
	SubmissionURI   *string `json:"submissionUri" gorm:"column:submission_uri" validate:"omitempty,url"`
	PublicKey       *string `json:"publicKey" gorm:"column:base64_rsa_public_key"`
	MD5Hash         string  `json:"md5Hash" gorm:"column:md5_hash;not null"`
	Date            int64   `json:"date" gorm:"index;not null"` // epoch milliseconds
	FormMediaPath   string  `json:"formMediaPath" gorm:"column:form_media_path"`
	FormFilePath    string  `json:"formFilePath" gorm:"column:form_file_path;not null" validate:"required"`
	JrCacheFilePath string  `json:"jrcacheFilePath" gorm:"column:jr_cache_file_path"`
	Language        *string `json:"language"`
	AutoDelete      *bool   `json:"autoDelete"`
	AutoSend        *bool   `json:"autoSend"`
	GeometryXPath   *string `json:"geometryXpath" gorm:"column:geometry_xpath"`
	DeletedDate     *int64  `json:"deletedDate" gorm:"index"`
}

// Column names of the forms table.
const (
	ColumnID              = "id"
	ColumnDisplayName     = "display_name"
	ColumnDescription     = "description"
	ColumnFormID          = "jr_form_id"
	ColumnVersion         = "jr_version"
	ColumnSubmissionURI   = "submission_uri"
	ColumnPublicKey       = "base64_rsa_public_key"
	ColumnMD5Hash         = "md5_hash"
	ColumnDate            = "date"
	ColumnFormMediaPath   = "form_media_path"
	ColumnFormFilePath    = "form_file_path"
	ColumnJrCacheFilePath = "jr_cache_file_path"
	ColumnLanguage        = "language"
	ColumnAutoDelete      = "auto_delete"
	ColumnAutoSend        = "auto_send"
	ColumnGeometryXPath   = "geometry_xpath"
	ColumnDeletedDate     = "deleted_date"
)

// FormColumns lists every column a caller may project or sort on.
var FormColumns = map[string]bool{
	ColumnID:              true,
	ColumnDisplayName:     true,
	ColumnDescription:     true,
	ColumnFormID:          true,
	ColumnVersion:         true,
	ColumnSubmissionURI:   true,
	ColumnPublicKey:       true,
	ColumnMD5Hash:         true,
	ColumnDate:            true,
	ColumnFormMediaPath:   true,
	ColumnFormFilePath:    true,
	ColumnJrCacheFilePath: true,
	ColumnLanguage:        true,
	ColumnAutoDelete:      true,
	ColumnAutoSend:        true,
	ColumnGeometryXPath:   true,
	ColumnDeletedDate:     true,
}

// DownloadedAt returns Date as a time.
func (f *Form) DownloadedAt() time.Time {
	return time.UnixMilli(f.Date).UTC()
}

// IsDeleted reports whether the form has been soft deleted.
func (f *Form) IsDeleted() bool {
	return f.DeletedDate != nil
}

// VersionString returns the version or "" when unset.
func (f *Form) VersionString() string {
	if f.Version == nil {
		return ""
	}
	return *f.Version
}

// Clone returns a deep copy so callers can mutate pointer fields freely.
func (f Form) Clone() Form {
	out := f
	out.Description = cloneString(f.Description)
	out.Version = cloneString(f.Version)
	out.SubmissionURI = cloneString(f.SubmissionURI)
	out.PublicKey = cloneString(f.PublicKey)
	out.Language = cloneString(f.Language)
	out.GeometryXPath = cloneString(f.GeometryXPath)
	if f.AutoDelete != nil {
		v := *f.AutoDelete
		out.AutoDelete = &v
	}
	if f.AutoSend != nil {
		v := *f.AutoSend
		out.AutoSend = &v
	}
	if f.DeletedDate != nil {
		v := *f.DeletedDate
		out.DeletedDate = &v
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
