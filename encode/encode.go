package encode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/signadot/yay/format"
	"github.com/signadot/yay/ir"
)

type EncState struct {
	indent  int
	literal bool
	format  format.Format
	colors  *Colors
}

func Encode(node *ir.Node, w io.Writer, opts ...EncodeOption) error {
	es := &EncState{indent: 2, literal: true}
	for _, opt := range opts {
		opt(es)
	}
	var (
		d   []byte
		err error
	)
	if es.format.IsJSON() {
		d, err = encodeJSON(node, es)
	} else {
		d, err = encodeYAML(node, es)
	}
	if err != nil {
		return err
	}
	if es.colors != nil {
		d = []byte(Colorize(string(d), es.colors))
	}
	_, err = w.Write(d)
	return err
}

func encodeJSON(node *ir.Node, es *EncState) ([]byte, error) {
	d, err := ir.MarshalJSON(node)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	buf := &bytes.Buffer{}
	if err := json.Indent(buf, d, "", strings.Repeat(" ", es.indent)); err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func encodeYAML(node *ir.Node, es *EncState) ([]byte, error) {
	d, err := yaml.MarshalWithOptions(toYAML(node),
		yaml.Indent(es.indent),
		yaml.IndentSequence(true),
		yaml.UseLiteralStyleIfMultiline(es.literal))
	if err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return d, nil
}

// toYAML converts node keeping the order of object fields.
func toYAML(node *ir.Node) any {
	switch node.Type {
	case ir.ObjectType:
		res := make(yaml.MapSlice, len(node.Fields))
		for i, f := range node.Fields {
			res[i] = yaml.MapItem{Key: f, Value: toYAML(node.Values[i])}
		}
		return res
	case ir.ArrayType:
		res := make([]any, len(node.Values))
		for i, v := range node.Values {
			res[i] = toYAML(v)
		}
		return res
	}
	return ir.ToAny(node)
}

// String encodes node, dropping the trailing newline.
func String(node *ir.Node, opts ...EncodeOption) (string, error) {
	buf := &bytes.Buffer{}
	if err := Encode(node, buf, opts...); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

func MustString(node *ir.Node, opts ...EncodeOption) string {
	s, err := String(node, opts...)
	if err != nil {
		panic(err)
	}
	return s
}
