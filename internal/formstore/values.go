package formstore

import (
	"encoding/json"

	"github.com/rohits-web03/formstore/internal/models"
)

// Optional is a field of a partial update. The zero value is absent; Set
// marks it present, and for pointer types Set(nil) clears the column.
type Optional[T any] struct {
	value T
	set   bool
}

func Set[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

func (o Optional[T]) Get() (T, bool) { return o.value, o.set }
func (o Optional[T]) IsSet() bool    { return o.set }

// IsZero lets encoding/json omit absent fields with omitzero.
func (o Optional[T]) IsZero() bool { return !o.set }

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.value)
}

// UnmarshalJSON marks the field present even when the payload is null.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	return json.Unmarshal(data, &o.value)
}

// Values is the typed payload of insert and update. Only fields that are
// set take part in the merge.
type Values struct {
	DisplayName     Optional[string]  `json:"displayName,omitzero"`
	Description     Optional[*string] `json:"description,omitzero"`
	FormID          Optional[string]  `json:"formId,omitzero"`
	Version         Optional[*string] `json:"version,omitzero"`
	SubmissionURI   Optional[*string] `json:"submissionUri,omitzero"`
	PublicKey       Optional[*string] `json:"publicKey,omitzero"`
	MD5Hash         Optional[string]  `json:"md5Hash,omitzero"`
	Date            Optional[int64]   `json:"date,omitzero"`
	FormMediaPath   Optional[string]  `json:"formMediaPath,omitzero"`
	FormFilePath    Optional[string]  `json:"formFilePath,omitzero"`
	JrCacheFilePath Optional[string]  `json:"jrcacheFilePath,omitzero"`
	Language        Optional[*string] `json:"language,omitzero"`
	AutoDelete      Optional[*bool]   `json:"autoDelete,omitzero"`
	AutoSend        Optional[*bool]   `json:"autoSend,omitzero"`
	GeometryXPath   Optional[*string] `json:"geometryXpath,omitzero"`
	DeletedDate     Optional[*int64]  `json:"deletedDate,omitzero"`
}

// ApplyTo overwrites the fields of f that are set in v.
func (v Values) ApplyTo(f *models.Form) {
	apply(v.DisplayName, &f.DisplayName)
	applyPtr(v.Description, &f.Description)
	apply(v.FormID, &f.FormID)
	applyPtr(v.Version, &f.Version)
	applyPtr(v.SubmissionURI, &f.SubmissionURI)
	applyPtr(v.PublicKey, &f.PublicKey)
	apply(v.MD5Hash, &f.MD5Hash)
	apply(v.Date, &f.Date)
	apply(v.FormMediaPath, &f.FormMediaPath)
	apply(v.FormFilePath, &f.FormFilePath)
	apply(v.JrCacheFilePath, &f.JrCacheFilePath)
	applyPtr(v.Language, &f.Language)
	applyPtr(v.AutoDelete, &f.AutoDelete)
	applyPtr(v.AutoSend, &f.AutoSend)
	applyPtr(v.GeometryXPath, &f.GeometryXPath)
	applyPtr(v.DeletedDate, &f.DeletedDate)
}

// ValuesFromForm sets every field of f.
func ValuesFromForm(f models.Form) Values {
	c := f.Clone()
	return Values{
		DisplayName:     Set(c.DisplayName),
		Description:     Set(c.Description),
		FormID:          Set(c.FormID),
		Version:         Set(c.Version),
		SubmissionURI:   Set(c.SubmissionURI),
		PublicKey:       Set(c.PublicKey),
		MD5Hash:         Set(c.MD5Hash),
		Date:            Set(c.Date),
		FormMediaPath:   Set(c.FormMediaPath),
		FormFilePath:    Set(c.FormFilePath),
		JrCacheFilePath: Set(c.JrCacheFilePath),
		Language:        Set(c.Language),
		AutoDelete:      Set(c.AutoDelete),
		AutoSend:        Set(c.AutoSend),
		GeometryXPath:   Set(c.GeometryXPath),
		DeletedDate:     Set(c.DeletedDate),
	}
}

func apply[T any](o Optional[T], dst *T) {
	if v, ok := o.Get(); ok {
		*dst = v
	}
}

// applyPtr copies the pointee so the form never aliases caller memory.
func applyPtr[T any](o Optional[*T], dst **T) {
	v, ok := o.Get()
	if !ok {
		return
	}
	if v == nil {
		*dst = nil
		return
	}
	c := *v
	*dst = &c
}
