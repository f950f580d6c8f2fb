package model

//go:generate go run github.com/dmarkham/enumer -type ModelType -trimprefix ModelType -json -sql -yaml -output model_type.gen.go

// ModelType classifies the architecture of a registered model. The string
// forms ("Transformer", "GNN", ...) are the values stored and exchanged on the
// wire; parsing is case-insensitive.
type ModelType int

const (
	ModelTypeTransformer ModelType = iota
	ModelTypeGNN
	ModelTypeSLM
	ModelTypeRegression
	ModelTypeEnsemble
)
