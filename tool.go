package laplace

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/njchilds90/golaplace/sym"
)

// ============================================================
// Tool interface
// ============================================================

// ToolRequest is a JSON tool call. Expressions are passed in the sym JSON
// format.
type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

// ToolResponse is the reply to a ToolRequest.
type ToolResponse struct {
	Result      interface{}  `json:"result,omitempty"`
	LaTeX       string       `json:"latex,omitempty"`
	String      string       `json:"string,omitempty"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
	Error       string       `json:"error,omitempty"`
	ErrorKind   string       `json:"error_kind,omitempty"`
	RequestID   string       `json:"request_id,omitempty"`
}

// PoleInfo is the JSON form of a Pole.
type PoleInfo struct {
	Value        string `json:"value"`
	Re           string `json:"re,omitempty"`
	Im           string `json:"im,omitempty"`
	Multiplicity int    `json:"multiplicity"`
	Ambiguous    bool   `json:"ambiguous,omitempty"`
}

// HandleToolCall runs one tool call. Failures are reported in the
// response, never returned.
func (tr *Transformer) HandleToolCall(ctx context.Context, req ToolRequest) ToolResponse {
	getString := func(key, def string) (string, error) {
		v, ok := req.Params[key]
		if !ok {
			if def == "" {
				return "", fmt.Errorf("missing param: %s", key)
			}
			return def, nil
		}
		s, ok := v.(string)
		if !ok || s == "" {
			return "", fmt.Errorf("param %s must be a non-empty string", key)
		}
		return s, nil
	}
	getBool := func(key string) (bool, error) {
		v, ok := req.Params[key]
		if !ok {
			return false, nil
		}
		b, ok := v.(bool)
		if !ok {
			return false, fmt.Errorf("param %s must be a boolean", key)
		}
		return b, nil
	}
	vars := func() (*sym.Sym, *sym.Sym, error) {
		tn, err := getString("t", "t")
		if err != nil {
			return nil, nil, err
		}
		sn, err := getString("s", "s")
		if err != nil {
			return nil, nil, err
		}
		if tn == sn {
			return nil, nil, fmt.Errorf("params t and s must differ")
		}
		return sym.RealSym(tn), sym.ComplexSym(sn), nil
	}
	getExpr := func(key string, t, s *sym.Sym) (sym.Expr, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		val, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid type for param %s", key)
		}
		return sym.FromJSONAssuming(val, map[string]sym.Assumption{
			t.Name(): sym.AssumeReal,
			s.Name(): sym.AssumeComplex,
		})
	}
	getDamping := func() (sym.Damping, error) {
		v, ok := req.Params["damping"]
		if !ok {
			return sym.DampingUnknown, nil
		}
		s, ok := v.(string)
		if !ok {
			return sym.DampingUnknown, fmt.Errorf("param damping must be a string")
		}
		return sym.ParseDamping(s)
	}
	callOpts := func() ([]CallOption, error) {
		var opts []CallOption
		flags := []struct {
			key string
			opt CallOption
		}{
			{"causal", Causal()},
			{"damped_sin", DampedSin()},
			{"dc", DC()},
			{"ac", AC()},
			{"unevaluated", Unevaluated()},
		}
		for _, f := range flags {
			on, err := getBool(f.key)
			if err != nil {
				return nil, err
			}
			if on {
				opts = append(opts, f.opt)
			}
		}
		d, err := getDamping()
		if err != nil {
			return nil, err
		}
		if d != sym.DampingUnknown {
			opts = append(opts, WithDamping(d))
		}
		return opts, nil
	}
	respond := func(e sym.Expr) ToolResponse {
		return ToolResponse{Result: sym.ToJSONMap(e), LaTeX: sym.LaTeX(e), String: sym.String(e)}
	}
	fail := func(err error) ToolResponse {
		resp := ToolResponse{Error: err.Error()}
		if k, ok := KindOf(err); ok {
			resp.ErrorKind = k.String()
		}
		return resp
	}
	transform := func(dir Direction) ToolResponse {
		t, s, err := vars()
		if err != nil {
			return fail(err)
		}
		e, err := getExpr("expr", t, s)
		if err != nil {
			return fail(err)
		}
		opts, err := callOpts()
		if err != nil {
			return fail(err)
		}
		var out Output
		if dir == Inverse {
			out, err = tr.ILT(ctx, e, s, t, opts...)
		} else {
			out, err = tr.LT(ctx, e, t, s, opts...)
		}
		if err != nil {
			return fail(err)
		}
		resp := respond(out.Expr)
		resp.Diagnostics = out.Diagnostics
		return resp
	}

	switch req.Tool {
	case "laplace":
		return transform(Forward)

	case "inverse_laplace":
		return transform(Inverse)

	case "simplify":
		t, s, err := vars()
		if err != nil {
			return fail(err)
		}
		e, err := getExpr("expr", t, s)
		if err != nil {
			return fail(err)
		}
		return respond(sym.Simplify(e))

	case "poles":
		t, s, err := vars()
		if err != nil {
			return fail(err)
		}
		e, err := getExpr("expr", t, s)
		if err != nil {
			return fail(err)
		}
		d, err := getDamping()
		if err != nil {
			return fail(err)
		}
		poles, err := Poles(e, s, d)
		if err != nil {
			return fail(err)
		}
		infos := make([]PoleInfo, len(poles))
		strs := make([]string, len(poles))
		for i, p := range poles {
			infos[i] = PoleInfo{Value: p.Value.String(), Multiplicity: p.Multiplicity, Ambiguous: p.Ambiguous}
			if p.Re != nil {
				infos[i].Re = p.Re.String()
			}
			if p.Im != nil {
				infos[i].Im = p.Im.String()
			}
			strs[i] = fmt.Sprintf("%s (x%d)", p.Value, p.Multiplicity)
		}
		resp := ToolResponse{Result: infos}
		if b, err := json.Marshal(strs); err == nil {
			resp.String = string(b)
		}
		return resp

	case "tool_spec":
		return ToolResponse{Result: ToolSpec()}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

// ToolSpec returns the JSON schema of the supported tools.
func ToolSpec() map[string]interface{} {
	transformProps := map[string]string{
		"expr": "object", "t": "string", "s": "string",
		"causal": "boolean", "damped_sin": "boolean", "damping": "string",
		"dc": "boolean", "ac": "boolean",
	}
	forwardProps := map[string]string{"unevaluated": "boolean"}
	for k, v := range transformProps {
		forwardProps[k] = v
	}
	tools := []map[string]interface{}{
		ts("laplace", "Unilateral Laplace transform of expr(t) with lower limit 0-", []string{"expr"}, forwardProps),
		ts("inverse_laplace", "Inverse unilateral Laplace transform of expr(s)", []string{"expr"}, transformProps),
		ts("simplify", "Simplify a symbolic expression", []string{"expr"}, map[string]string{"expr": "object", "t": "string", "s": "string"}),
		ts("poles", "Poles of a rational function of s with multiplicities", []string{"expr"}, map[string]string{"expr": "object", "s": "string", "damping": "string"}),
		ts("tool_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	return map[string]interface{}{"tools": tools}
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
