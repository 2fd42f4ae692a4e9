package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"epscript/internal/codegen"
)

// EmitFormat selects the serialization of a compiled program.
type EmitFormat uint8

const (
	EmitText EmitFormat = iota
	EmitJSON
	EmitMsgpack
)

func (f EmitFormat) String() string {
	switch f {
	case EmitJSON:
		return "json"
	case EmitMsgpack:
		return "msgpack"
	}
	return "text"
}

// Ext returns the file extension used for build outputs.
func (f EmitFormat) Ext() string {
	switch f {
	case EmitJSON:
		return ".json"
	case EmitMsgpack:
		return ".epc"
	}
	return ".eps.txt"
}

func ParseEmitFormat(s string) (EmitFormat, error) {
	switch strings.ToLower(s) {
	case "", "text", "txt":
		return EmitText, nil
	case "json":
		return EmitJSON, nil
	case "msgpack", "bin":
		return EmitMsgpack, nil
	}
	return EmitText, fmt.Errorf("unknown emit format %q (expected: text|json|msgpack)", s)
}

// EncodeProgram serializes p in the requested format.
func EncodeProgram(p *codegen.Program, format EmitFormat) ([]byte, error) {
	switch format {
	case EmitJSON:
		return p.JSON()
	case EmitMsgpack:
		return p.Msgpack()
	}
	return []byte(p.Text()), nil
}

// WriteProgram writes p to w in the requested format.
func WriteProgram(w io.Writer, p *codegen.Program, format EmitFormat) error {
	data, err := EncodeProgram(p, format)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
