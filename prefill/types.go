package prefill

import (
	"context"

	"github.com/tbxark/briefpay/types"
)

const (
	OperationAdd     = "add"
	OperationReplace = "replace"
	OperationRemove  = "remove"
)

type Operation struct {
	Op    string `json:"op" jsonschema:"required,enum=add,enum=replace,enum=remove,description=RFC6902 operation"`
	Path  string `json:"path" jsonschema:"required,description=JSON pointer of the brief field, e.g. /topic"`
	Value string `json:"value" jsonschema:"description=New field value, ignored for remove"`
}

type UpdateArgs struct {
	Ops []Operation `json:"ops" jsonschema:"required,description=Operations that update the brief form"`
}

// Prefiller turns one user message into updates of the brief form.
type Prefiller interface {
	Prefill(ctx context.Context, req *types.ToolRequest) (*UpdateArgs, error)
}
