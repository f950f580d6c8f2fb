package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestRegistryEntry_Clone(t *testing.T) {
	tags := "fraud,finance"
	parent := uuid.New()
	now := time.Now()
	orig := RegistryEntry{
		ModelID:       uuid.New(),
		ModelName:     "fraud-detector",
		Tags:          &tags,
		ParentModelID: &parent,
		LastAccessed:  &now,
		Metrics:       datatypes.JSON(`{"auc":0.91}`),
	}

	c := orig.Clone()
	assert.Equal(t, orig, c)

	*c.Tags = "changed"
	c.Metrics[2] = 'X'
	*c.ParentModelID = uuid.Nil

	assert.Equal(t, "fraud,finance", *orig.Tags)
	assert.Equal(t, `{"auc":0.91}`, string(orig.Metrics))
	assert.Equal(t, parent, *orig.ParentModelID)
}

func TestRegistryEntry_CloneNilDocuments(t *testing.T) {
	c := RegistryEntry{}.Clone()
	assert.Nil(t, c.Metrics)
	assert.Nil(t, c.Tags)
	assert.Nil(t, c.LastUpdatedAt)
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "model_registry", RegistryEntry{}.TableName())
	assert.Equal(t, "users", User{}.TableName())
	assert.Equal(t, "access_policies", AccessPolicy{}.TableName())
}
