package sym

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// ============================================================
// JSON Serialization
// ============================================================

func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// ToJSONMap returns the JSON tree of e as nested maps.
func ToJSONMap(e Expr) map[string]interface{} { return e.toJSON() }

// ParseJSON decodes a JSON document into an expression.
func ParseJSON(data []byte) (Expr, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("expression: %w", err)
	}
	return FromJSON(m)
}

func FromJSON(data map[string]interface{}) (Expr, error) { return FromJSONAssuming(data, nil) }

// FromJSONAssuming decodes an expression tree, giving symbols listed in
// assume the matching assumption unless the tree names one itself.
func FromJSONAssuming(data map[string]interface{}, assume map[string]Assumption) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	subObj := func(field string) (map[string]interface{}, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		return m, nil
	}

	subExpr := func(field string) (Expr, error) {
		m, err := subObj(field)
		if err != nil {
			return nil, err
		}
		e, err := FromJSONAssuming(m, assume)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", typ, field, err)
		}
		return e, nil
	}

	subObjArray := func(field string) ([]map[string]interface{}, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		// ToJSONMap builds typed slices; decoded wire JSON has []interface{}.
		if objs, ok := v.([]map[string]interface{}); ok {
			return objs, nil
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an array", typ, field)
		}
		out := make([]map[string]interface{}, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: %q[%d] must be an object", typ, field, i)
			}
			out[i] = m
		}
		return out, nil
	}

	subExprArray := func(field string) ([]Expr, error) {
		objs, err := subObjArray(field)
		if err != nil {
			return nil, err
		}
		out := make([]Expr, len(objs))
		for i, o := range objs {
			e, err := FromJSONAssuming(o, assume)
			if err != nil {
				return nil, fmt.Errorf("%s: %s[%d]: %w", typ, field, i, err)
			}
			out[i] = e
		}
		return out, nil
	}

	subString := func(field string) (string, error) {
		v, ok := data[field]
		if !ok {
			return "", fmt.Errorf("%s: missing %q", typ, field)
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	subNumberAsInt := func(field string) (int, error) {
		v, ok := data[field]
		if !ok {
			return 0, fmt.Errorf("%s: missing %q", typ, field)
		}
		n, ok := v.(float64)
		if !ok {
			return 0, fmt.Errorf("%s: %q must be a number", typ, field)
		}
		return int(n), nil
	}

	switch typ {
	case "num":
		valAny, ok := data["value"]
		if !ok {
			return nil, fmt.Errorf("num: missing 'value'")
		}
		var val string
		switch v := valAny.(type) {
		case string:
			val = v
		case float64:
			return NFloat(v), nil
		}
		if val == "" {
			return nil, fmt.Errorf("num: 'value' must be a non-empty string")
		}
		r := new(big.Rat)
		if _, ok := r.SetString(val); !ok {
			return nil, fmt.Errorf("invalid num value: %s", val)
		}
		return &Num{val: r}, nil

	case "sym":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		a, ok := assume[name]
		if !ok {
			a = AssumePositive
		}
		if tag, ok := data["assume"].(string); ok {
			a = parseAssumption(tag)
		}
		return NewSym(name, a), nil

	case "const":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		c, ok := constByName(name)
		if !ok {
			return nil, fmt.Errorf("const: unknown constant %q", name)
		}
		return c, nil

	case "add":
		terms, err := subExprArray("terms")
		if err != nil {
			return nil, err
		}
		return AddOf(terms...), nil

	case "mul":
		factors, err := subExprArray("factors")
		if err != nil {
			return nil, err
		}
		return MulOf(factors...), nil

	case "pow":
		base, err := subExpr("base")
		if err != nil {
			return nil, err
		}
		exp, err := subExpr("exp")
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil

	case "func":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		arg, err := subExpr("arg")
		if err != nil {
			return nil, err
		}
		if name == "sqrt" {
			return SqrtOf(arg), nil
		}
		return funcOf(name, arg).Simplify(), nil

	case "step":
		arg, err := subExpr("arg")
		if err != nil {
			return nil, err
		}
		return StepOf(arg), nil

	case "delta":
		arg, err := subExpr("arg")
		if err != nil {
			return nil, err
		}
		order := Expr(N(0))
		if _, ok := data["order"]; ok {
			if order, err = subExpr("order"); err != nil {
				return nil, err
			}
		}
		return DeltaN(arg, order), nil

	case "applied":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		arg, err := subExpr("arg")
		if err != nil {
			return nil, err
		}
		return Fn(name, arg), nil

	case "derivative":
		e, err := subExpr("expr")
		if err != nil {
			return nil, err
		}
		v, err := subString("var")
		if err != nil {
			return nil, err
		}
		order, err := subNumberAsInt("order")
		if err != nil {
			return nil, err
		}
		if order < 0 {
			return nil, fmt.Errorf("derivative: negative order %d", order)
		}
		return DerivativeOf(e, v, order), nil

	case "integral":
		integrand, err := subExpr("integrand")
		if err != nil {
			return nil, err
		}
		v, err := subString("var")
		if err != nil {
			return nil, err
		}
		lower, err := subExpr("lower")
		if err != nil {
			return nil, err
		}
		upper, err := subExpr("upper")
		if err != nil {
			return nil, err
		}
		return IntegralOf(integrand, v, lower, upper), nil

	case "limit":
		e, err := subExpr("expr")
		if err != nil {
			return nil, err
		}
		v, err := subString("var")
		if err != nil {
			return nil, err
		}
		point, err := subExpr("point")
		if err != nil {
			return nil, err
		}
		dir, _ := data["dir"].(string)
		return LimOf(e, v, point, dir), nil

	case "piecewise":
		objs, err := subObjArray("pieces")
		if err != nil {
			return nil, err
		}
		pieces := make([]Piece, len(objs))
		for i, o := range objs {
			pc, err := pieceFromJSON(o, assume)
			if err != nil {
				return nil, fmt.Errorf("piecewise: pieces[%d]: %w", i, err)
			}
			pieces[i] = pc
		}
		return PiecewiseOf(pieces...), nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}

func pieceFromJSON(o map[string]interface{}, assume map[string]Assumption) (Piece, error) {
	vm, ok := o["value"].(map[string]interface{})
	if !ok {
		return Piece{}, fmt.Errorf("'value' must be an object")
	}
	value, err := FromJSONAssuming(vm, assume)
	if err != nil {
		return Piece{}, err
	}
	cm, ok := o["cond"].(map[string]interface{})
	if !ok {
		return Piece{}, fmt.Errorf("'cond' must be an object")
	}
	op, _ := cm["op"].(string)
	switch op {
	case "true":
		return Piece{Value: value, Cond: True}, nil
	case ">=", ">", "<=", "<", "==":
	default:
		return Piece{}, fmt.Errorf("unknown condition %q", op)
	}
	lm, ok1 := cm["lhs"].(map[string]interface{})
	rm, ok2 := cm["rhs"].(map[string]interface{})
	if !ok1 || !ok2 {
		return Piece{}, fmt.Errorf("condition needs 'lhs' and 'rhs'")
	}
	lhs, err := FromJSONAssuming(lm, assume)
	if err != nil {
		return Piece{}, err
	}
	rhs, err := FromJSONAssuming(rm, assume)
	if err != nil {
		return Piece{}, err
	}
	return Piece{Value: value, Cond: Cond{Lhs: lhs, Op: op, Rhs: rhs}}, nil
}
