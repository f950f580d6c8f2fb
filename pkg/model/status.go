package model

//go:generate go run github.com/dmarkham/enumer -type Status -trimprefix Status -transform lower -json -sql -yaml -output status.gen.go

// Status is the lifecycle label of a registry entry. The zero value is
// StatusDevelopment, the state every entry starts in.
type Status int

const (
	StatusDevelopment Status = iota
	StatusStaging
	StatusProduction
	StatusDeprecated
)
