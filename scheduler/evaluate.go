package scheduler

import (
	"fmt"

	"github.com/canzero/sigdag/eval"
	"github.com/canzero/sigdag/kdag"
	"github.com/canzero/sigdag/mapping"
	"github.com/canzero/sigdag/value"
)

// evaluate computes a derived node's new value from its parents' current
// state (§4.5). Struct assembly takes precedence over the declared
// transform kind: a struct node's fields are its dependencies, named by
// node name or alias, in declaration order.
func (p *Processor) evaluate(n *kdag.Node) (value.Value, error) {
	if n.Mapping.IsStruct {
		return p.evalStruct(n), nil
	}
	switch n.Mapping.Transform.Kind {
	case mapping.Direct:
		return p.evalDirect(n)
	case mapping.Code:
		return p.evalCode(n)
	case mapping.ValueMap:
		return p.evalValueMap(n)
	default:
		return value.Invalid(), fmt.Errorf("scheduler: node %s has unknown transform kind %d", n.ID, n.Mapping.Transform.Kind)
	}
}

// evalDirect passes the sole dependency's value through unchanged;
// coercion to the declared datatype happens uniformly at emission (§4.6).
func (p *Processor) evalDirect(n *kdag.Node) (value.Value, error) {
	if len(n.Parents) != 1 {
		return value.Invalid(), fmt.Errorf("scheduler: direct node %s must have exactly one dependency, has %d", n.ID, len(n.Parents))
	}
	return p.store.Get(n.Parents[0]).LastValue, nil
}

// evalCode runs the node's precompiled expression against an environment
// built from its parents' current values, keyed by node name (§4.2, §4.4).
func (p *Processor) evalCode(n *kdag.Node) (value.Value, error) {
	ast, ok := p.compiled[n.ID]
	if !ok {
		return value.Invalid(), fmt.Errorf("scheduler: node %s has no compiled expression", n.ID)
	}
	env := make(eval.Env, len(n.Parents))
	for _, parent := range n.Parents {
		env[string(parent)] = p.store.Get(parent).LastValue
	}
	return eval.Eval(ast, env)
}

// evalValueMap stringifies the sole dependency's value by the canonical
// rule and looks it up in the static table; a miss is invalid, not a
// fault (§4.5, Open Questions).
func (p *Processor) evalValueMap(n *kdag.Node) (value.Value, error) {
	if len(n.Parents) != 1 {
		return value.Invalid(), fmt.Errorf("scheduler: value-map node %s must have exactly one dependency, has %d", n.ID, len(n.Parents))
	}
	dep := p.store.Get(n.Parents[0]).LastValue
	if !dep.Valid {
		return value.Invalid(), nil
	}
	key, err := dep.Canonical()
	if err != nil {
		return value.Invalid(), nil
	}
	to, ok := n.Mapping.Transform.Table[key]
	if !ok {
		return value.Invalid(), nil
	}
	return value.StringValue(to), nil
}

// evalStruct assembles a struct value from every dependency's current
// value, in declaration order, using StructFieldAlias to rename a field
// when present (§4.5).
func (p *Processor) evalStruct(n *kdag.Node) value.Value {
	fields := make([]value.Field, 0, len(n.Parents))
	for _, parent := range n.Parents {
		name := string(parent)
		if alias, ok := n.Mapping.StructFieldAlias[name]; ok {
			name = alias
		}
		fields = append(fields, value.Field{Name: name, Value: p.store.Get(parent).LastValue})
	}
	return value.StructValue(fields)
}
