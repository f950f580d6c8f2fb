package registry

import (
	"encoding/json"
	"math"
	"unicode/utf8"

	"gorm.io/datatypes"
)

// Column widths of the model_registry table.
const (
	maxModelName         = 150
	maxDisplayName       = 200
	maxVersion           = 20
	maxDomain            = 50
	maxArtifactPath      = 255
	maxModelFormat       = 50
	maxChecksum          = 64
	maxSourceRepo        = 255
	maxDatasetName       = 150
	maxDatasetVersion    = 50
	maxFramework         = 50
	maxHardwareUsed      = 100
	maxBenchmarkDataset  = 150
	maxIdentity          = 100
	maxInferenceEndpoint = 255
	maxEnvType           = 20

	// MaxPageSize bounds the size of a List or Search page.
	MaxPageSize = 100
)

func required(field, value string, max int) error {
	if value == "" {
		return invalid(field, "is required")
	}
	return maxLength(field, value, max)
}

func maxLength(field, value string, max int) error {
	if n := utf8.RuneCountInString(value); n > max {
		return invalid(field, "must be at most %d characters, got %d", max, n)
	}
	return nil
}

func optional(field string, value *string, max int) error {
	if value == nil {
		return nil
	}
	return maxLength(field, *value, max)
}

func document(field string, doc datatypes.JSON) error {
	if doc != nil && !json.Valid(doc) {
		return invalid(field, "must be a JSON document")
	}
	return nil
}

// firstError returns the first non-nil error in errs.
func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (d *Draft) validate() error {
	if err := firstError(
		required("model_name", d.ModelName, maxModelName),
		required("display_name", d.DisplayName, maxDisplayName),
		required("version", d.Version, maxVersion),
		required("domain", d.Domain, maxDomain),
		required("artifact_path", d.ArtifactPath, maxArtifactPath),
		required("model_format", d.ModelFormat, maxModelFormat),
		required("checksum", d.Checksum, maxChecksum),
	); err != nil {
		return err
	}
	if d.ModelType == nil {
		return invalid("model_type", "is required")
	}
	if !d.ModelType.IsAModelType() {
		return invalid("model_type", "unknown model type %d", int(*d.ModelType))
	}
	return firstError(
		optional("source_repo", d.SourceRepo, maxSourceRepo),
		optional("dataset_name", d.DatasetName, maxDatasetName),
		optional("dataset_version", d.DatasetVersion, maxDatasetVersion),
		optional("framework", d.Framework, maxFramework),
		optional("hardware_used", d.HardwareUsed, maxHardwareUsed),
		optional("benchmark_dataset", d.BenchmarkDataset, maxBenchmarkDataset),
		optional("signed_by", d.SignedBy, maxIdentity),
		optional("inference_endpoint", d.InferenceEndpoint, maxInferenceEndpoint),
		optional("env_type", d.EnvType, maxEnvType),
		document("input_schema", d.InputSchema),
		document("output_schema", d.OutputSchema),
		document("dependencies", d.Dependencies),
		document("training_parameters", d.TrainingParameters),
		document("metrics", d.Metrics),
		document("resource_requirements", d.ResourceRequirements),
	)
}

func (p *Patch) validate() error {
	if p.DisplayName != nil && *p.DisplayName == "" {
		return invalid("display_name", "must not be empty")
	}
	if p.Status != nil && !p.Status.IsAStatus() {
		return invalid("status", "unknown status %d", int(*p.Status))
	}
	return firstError(
		optional("display_name", p.DisplayName, maxDisplayName),
		optional("inference_endpoint", p.InferenceEndpoint.Value, maxInferenceEndpoint),
		optional("reviewer", p.Reviewer.Value, maxIdentity),
		document("metrics", p.Metrics),
		document("resource_requirements", p.ResourceRequirements),
	)
}

func validatePaging(page, size int) error {
	if page < 1 {
		return invalid("page", "must be at least 1, got %d", page)
	}
	if size < 1 || size > MaxPageSize {
		return invalid("size", "must be between 1 and %d, got %d", MaxPageSize, size)
	}
	// (page-1)*size must fit in an int.
	if page-1 > math.MaxInt/size {
		return invalid("page", "must be at most %d for size %d, got %d", math.MaxInt/size+1, size, page)
	}
	return nil
}

func validateIdentity(field, identity string) error {
	return required(field, identity, maxIdentity)
}
