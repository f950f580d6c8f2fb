// Package model defines the persisted value types of the model registry.
//
// The structs here carry gorm column tags so that the gorm store can read and
// write them directly, but they hold no session state: every read returns a
// fresh value and every write goes through an explicit store method.
//
// # Tables
//
//   - model_registry: RegistryEntry, one row per registered model version
//   - users: User accounts used to obtain bearer tokens
//   - access_policies: AccessPolicy rule documents referenced by entries
//
// Status and ModelType are closed enumerations. Their string, JSON, YAML and
// SQL codecs are generated by enumer.
package model
