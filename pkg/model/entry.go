package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// RegistryEntry is one versioned model-artifact metadata record.
//
// JSON-valued fields (schemas, dependencies, parameters, metrics, resource
// requirements, usage stats) are opaque documents: they are stored and
// returned byte for byte and never interpreted.
type RegistryEntry struct {
	ModelID       uuid.UUID  `gorm:"column:model_id;type:uuid;primaryKey" json:"model_id"`
	ModelName     string     `gorm:"column:model_name" json:"model_name"`
	DisplayName   string     `gorm:"column:display_name" json:"display_name"`
	Version       string     `gorm:"column:version" json:"version"`
	ParentModelID *uuid.UUID `gorm:"column:parent_model_id;type:uuid" json:"parent_model_id"`
	SourceRepo    *string    `gorm:"column:source_repo" json:"source_repo"`

	ModelType ModelType `gorm:"column:model_type;type:varchar(20)" json:"model_type"`
	Domain    string    `gorm:"column:domain" json:"domain"`
	Tags      *string   `gorm:"column:tags" json:"tags"`

	ArtifactPath string         `gorm:"column:artifact_path" json:"artifact_path"`
	ModelFormat  string         `gorm:"column:model_format" json:"model_format"`
	InputSchema  datatypes.JSON `gorm:"column:input_schema" json:"input_schema"`
	OutputSchema datatypes.JSON `gorm:"column:output_schema" json:"output_schema"`
	Dependencies datatypes.JSON `gorm:"column:dependencies" json:"dependencies"`

	DatasetName        *string        `gorm:"column:dataset_name" json:"dataset_name"`
	DatasetVersion     *string        `gorm:"column:dataset_version" json:"dataset_version"`
	TrainingParameters datatypes.JSON `gorm:"column:training_parameters" json:"training_parameters"`
	Framework          *string        `gorm:"column:framework" json:"framework"`
	HardwareUsed       *string        `gorm:"column:hardware_used" json:"hardware_used"`

	Metrics          datatypes.JSON `gorm:"column:metrics" json:"metrics"`
	BenchmarkDataset *string        `gorm:"column:benchmark_dataset" json:"benchmark_dataset"`

	Status        Status     `gorm:"column:status;type:varchar(20)" json:"status"`
	CreatedBy     string     `gorm:"column:created_by" json:"created_by"`
	CreatedAt     time.Time  `gorm:"column:created_at" json:"created_at"`
	LastUpdatedAt *time.Time `gorm:"column:last_updated_at" json:"last_updated_at"`
	Reviewer      *string    `gorm:"column:reviewer" json:"reviewer"`
	ApprovalNotes *string    `gorm:"column:approval_notes" json:"approval_notes"`

	Checksum         string     `gorm:"column:checksum" json:"checksum"`
	EncryptionStatus bool       `gorm:"column:encryption_status" json:"encryption_status"`
	SignedBy         *string    `gorm:"column:signed_by" json:"signed_by"`
	AccessPolicyID   *uuid.UUID `gorm:"column:access_policy_id;type:uuid" json:"access_policy_id"`

	InferenceEndpoint    *string        `gorm:"column:inference_endpoint" json:"inference_endpoint"`
	ResourceRequirements datatypes.JSON `gorm:"column:resource_requirements" json:"resource_requirements"`

	LastAccessed *time.Time     `gorm:"column:last_accessed" json:"last_accessed"`
	AccessCount  int64          `gorm:"column:access_count" json:"access_count"`
	UsageStats   datatypes.JSON `gorm:"column:usage_stats" json:"usage_stats"`

	EnvType *string `gorm:"column:env_type" json:"env_type"`
}

func (RegistryEntry) TableName() string {
	return "model_registry"
}

// Clone returns a copy of the entry that shares no memory with the receiver.
func (e RegistryEntry) Clone() RegistryEntry {
	c := e
	c.ParentModelID = cloneUUID(e.ParentModelID)
	c.AccessPolicyID = cloneUUID(e.AccessPolicyID)
	c.SourceRepo = cloneString(e.SourceRepo)
	c.Tags = cloneString(e.Tags)
	c.DatasetName = cloneString(e.DatasetName)
	c.DatasetVersion = cloneString(e.DatasetVersion)
	c.Framework = cloneString(e.Framework)
	c.HardwareUsed = cloneString(e.HardwareUsed)
	c.BenchmarkDataset = cloneString(e.BenchmarkDataset)
	c.Reviewer = cloneString(e.Reviewer)
	c.ApprovalNotes = cloneString(e.ApprovalNotes)
	c.SignedBy = cloneString(e.SignedBy)
	c.InferenceEndpoint = cloneString(e.InferenceEndpoint)
	c.EnvType = cloneString(e.EnvType)
	c.LastUpdatedAt = cloneTime(e.LastUpdatedAt)
	c.LastAccessed = cloneTime(e.LastAccessed)
	c.InputSchema = cloneJSON(e.InputSchema)
	c.OutputSchema = cloneJSON(e.OutputSchema)
	c.Dependencies = cloneJSON(e.Dependencies)
	c.TrainingParameters = cloneJSON(e.TrainingParameters)
	c.Metrics = cloneJSON(e.Metrics)
	c.ResourceRequirements = cloneJSON(e.ResourceRequirements)
	c.UsageStats = cloneJSON(e.UsageStats)
	return c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneUUID(u *uuid.UUID) *uuid.UUID {
	if u == nil {
		return nil
	}
	v := *u
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneJSON(j datatypes.JSON) datatypes.JSON {
	if j == nil {
		return nil
	}
	c := make(datatypes.JSON, len(j))
	copy(c, j)
	return c
}
