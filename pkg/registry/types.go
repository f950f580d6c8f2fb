package registry

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/Sridhar-Quarlets/model-registry/pkg/model"
)

// Draft holds the caller-supplied fields of a new entry. Identity, lifecycle
// and usage fields are assigned by Register.
type Draft struct {
	ModelName     string     `json:"model_name"`
	DisplayName   string     `json:"display_name"`
	Version       string     `json:"version"`
	ParentModelID *uuid.UUID `json:"parent_model_id"`
	SourceRepo    *string    `json:"source_repo"`

	ModelType *model.ModelType `json:"model_type"`
	Domain    string           `json:"domain"`
	Tags      *string          `json:"tags"`

	ArtifactPath string         `json:"artifact_path"`
	ModelFormat  string         `json:"model_format"`
	InputSchema  datatypes.JSON `json:"input_schema"`
	OutputSchema datatypes.JSON `json:"output_schema"`
	Dependencies datatypes.JSON `json:"dependencies"`

	DatasetName        *string        `json:"dataset_name"`
	DatasetVersion     *string        `json:"dataset_version"`
	TrainingParameters datatypes.JSON `json:"training_parameters"`
	Framework          *string        `json:"framework"`
	HardwareUsed       *string        `json:"hardware_used"`

	Metrics          datatypes.JSON `json:"metrics"`
	BenchmarkDataset *string        `json:"benchmark_dataset"`

	Checksum         string     `json:"checksum"`
	EncryptionStatus bool       `json:"encryption_status"`
	SignedBy         *string    `json:"signed_by"`
	AccessPolicyID   *uuid.UUID `json:"access_policy_id"`

	InferenceEndpoint    *string        `json:"inference_endpoint"`
	ResourceRequirements datatypes.JSON `json:"resource_requirements"`

	EnvType *string `json:"env_type"`
}

// Patch is a partial update. Absent fields are left untouched. An explicit
// null clears the nullable text fields and the documents.
type Patch struct {
	DisplayName          *string        `json:"display_name"`
	Tags                 NullableString `json:"tags"`
	Status               *model.Status  `json:"status"`
	Metrics              datatypes.JSON `json:"metrics"`
	InferenceEndpoint    NullableString `json:"inference_endpoint"`
	ResourceRequirements datatypes.JSON `json:"resource_requirements"`
	Reviewer             NullableString `json:"reviewer"`
	ApprovalNotes        NullableString `json:"approval_notes"`
}

// NullableString tells an absent field (Set false) from an explicit null
// (Set true, Value nil).
type NullableString struct {
	Set   bool
	Value *string
}

// SetString returns a NullableString carrying v.
func SetString(v string) NullableString {
	return NullableString{Set: true, Value: &v}
}

// SetNull returns a NullableString that clears the field.
func SetNull() NullableString {
	return NullableString{Set: true}
}

// UnmarshalJSON is only called when the key is present, null included.
func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	n.Value = nil
	if string(data) == "null" {
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

// apply writes the value into dst when the field was present.
func (n NullableString) apply(dst **string) {
	if n.Set {
		*dst = n.Value
	}
}

// ListQuery filters List. Nil filters do not constrain the result.
type ListQuery struct {
	ModelType *model.ModelType
	Domain    *string
	Status    *model.Status
	Tags      *string
	Page      int
	Size      int
}

// SearchQuery is a free-text search over name, display name and tags.
type SearchQuery struct {
	Query     string
	Domain    *string
	ModelType *model.ModelType
	Page      int
	Size      int
}

// Page is one page of a List or Search result. Total counts every match
// before paging.
type Page struct {
	Entries []model.RegistryEntry `json:"models"`
	Total   int64                 `json:"total"`
	Page    int                   `json:"page"`
	Size    int                   `json:"size"`
}

// MetricsSnapshot projects the evaluation and usage fields of an entry.
type MetricsSnapshot struct {
	ModelID      uuid.UUID      `json:"model_id"`
	Metrics      datatypes.JSON `json:"metrics"`
	UsageStats   datatypes.JSON `json:"usage_stats"`
	AccessCount  int64          `json:"access_count"`
	LastAccessed *time.Time     `json:"last_accessed"`
}
