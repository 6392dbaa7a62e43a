package prefill

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/bytedance/sonic"
	jsonpatch "github.com/evanphx/json-patch/v5"
)

// ApplyRFC6902 applies ops to current, rejecting any path outside allowed.
func ApplyRFC6902[T any](current T, ops []Operation, allowed map[string]bool) (T, error) {
	var zero T

	if len(ops) == 0 {
		return current, nil
	}
	if err := ValidateOperations(ops, allowed); err != nil {
		return zero, err
	}

	currentJSON, err := sonic.Marshal(current)
	if err != nil {
		return zero, fmt.Errorf("failed to marshal current state: %w", err)
	}

	ops = FixOperations(currentJSON, ops)
	if len(ops) == 0 {
		return current, nil
	}

	patchJSON, err := sonic.Marshal(ops)
	if err != nil {
		return zero, fmt.Errorf("failed to marshal patch operations: %w", err)
	}

	patch, err := jsonpatch.DecodePatch(patchJSON)
	if err != nil {
		return zero, fmt.Errorf("failed to decode patch: %w", err)
	}

	modifiedJSON, err := patch.Apply(currentJSON)
	if err != nil {
		return zero, fmt.Errorf("failed to apply patch: %w", err)
	}

	var result T
	if err := sonic.Unmarshal(modifiedJSON, &result); err != nil {
		return zero, fmt.Errorf("type mismatch: patch would produce an invalid form: %w", err)
	}
	return result, nil
}

// FixOperations turns replaces of absent paths into adds and drops removes of absent paths.
func FixOperations(currentJSON []byte, ops []Operation) []Operation {
	var doc map[string]any
	if err := sonic.Unmarshal(currentJSON, &doc); err != nil {
		return ops
	}

	fixed := make([]Operation, 0, len(ops))
	for _, op := range ops {
		_, exists := doc[pointerKey(op.Path)]
		switch op.Op {
		case OperationReplace:
			if !exists {
				op.Op = OperationAdd
			}
			fixed = append(fixed, op)
		case OperationRemove:
			if exists {
				fixed = append(fixed, op)
			}
		default:
			fixed = append(fixed, op)
		}
	}
	return fixed
}

func ValidateOperations(ops []Operation, allowed map[string]bool) error {
	for i, op := range ops {
		switch op.Op {
		case OperationAdd, OperationReplace, OperationRemove:
		default:
			return fmt.Errorf("operation %d: unsupported op %q", i, op.Op)
		}
		if len(allowed) > 0 && !allowed[op.Path] {
			return fmt.Errorf("operation %d: path %q is not in the allowed paths set", i, op.Path)
		}
	}
	return nil
}

// AllowedPaths lists the top-level JSON pointers of struct T.
func AllowedPaths[T any]() []string {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	for typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return []string{}
	}

	paths := make([]string, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		name := jsonFieldName(field)
		if name == "-" {
			continue
		}
		paths = append(paths, "/"+name)
	}
	return paths
}

func AllowedSet(paths []string) map[string]bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return set
}

func jsonFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return field.Name
	}
	return name
}

func pointerKey(path string) string {
	key := strings.TrimPrefix(path, "/")
	key = strings.ReplaceAll(key, "~1", "/")
	return strings.ReplaceAll(key, "~0", "~")
}
