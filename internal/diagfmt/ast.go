package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"epscript/internal/ast"
	"epscript/internal/source"
)

// ASTNodeOutput is one node of the dumped tree. Pretty and JSON output share it.
type ASTNodeOutput struct {
	Type     string          `json:"type"`
	Kind     string          `json:"kind,omitempty"`
	Span     source.Span     `json:"span"`
	Text     string          `json:"text,omitempty"`
	Children []ASTNodeOutput `json:"children,omitempty"`
}

type astDumper struct {
	b *ast.Builder
}

// BuildAST converts the file into a tree of ASTNodeOutput.
func BuildAST(builder *ast.Builder, fileID ast.FileID) (ASTNodeOutput, error) {
	if builder == nil {
		return ASTNodeOutput{}, fmt.Errorf("no syntax tree")
	}
	file := builder.File(fileID)
	if file == nil {
		return ASTNodeOutput{}, fmt.Errorf("file not found")
	}
	d := astDumper{b: builder}
	root := ASTNodeOutput{Type: "File", Span: file.Span}
	for _, itemID := range file.Items {
		root.Children = append(root.Children, d.item(itemID))
	}
	return root, nil
}

func (d astDumper) item(id ast.ItemID) ASTNodeOutput {
	item := d.b.Items.Get(id)
	if item == nil {
		return ASTNodeOutput{Type: "Item", Kind: "<nil>"}
	}
	if stmt, ok := d.b.Items.Stmt(id); ok {
		return d.stmt(stmt)
	}
	fn, _ := d.b.Items.Fn(id)
	node := ASTNodeOutput{Type: "Function", Span: item.Span, Text: d.b.Name(fn.Name)}
	params := make([]string, 0, len(fn.Params))
	for _, p := range fn.Params {
		params = append(params, d.b.Name(p.Name))
	}
	node.Children = append(node.Children,
		ASTNodeOutput{Type: "Params", Span: fn.NameSpan, Text: strings.Join(params, ", ")},
		d.stmt(fn.Body))
	return node
}

func (d astDumper) stmt(id ast.StmtID) ASTNodeOutput {
	stmt := d.b.Stmts.Get(id)
	if !id.IsValid() || stmt == nil {
		return ASTNodeOutput{Type: "Stmt", Kind: "<none>"}
	}
	node := ASTNodeOutput{Type: "Stmt", Kind: stmt.Kind.String(), Span: stmt.Span}
	switch stmt.Kind {
	case ast.StmtBlock:
		data, _ := d.b.Stmts.Block(id)
		for _, inner := range data.Stmts {
			node.Children = append(node.Children, d.stmt(inner))
		}
	case ast.StmtVar:
		data, _ := d.b.Stmts.Var(id)
		if data.Static {
			node.Text = "static"
		}
		for _, decl := range data.Decls {
			child := ASTNodeOutput{Type: "Decl", Span: decl.NameSpan, Text: d.b.Name(decl.Name)}
			if decl.Init.IsValid() {
				child.Children = []ASTNodeOutput{d.expr(decl.Init)}
			}
			node.Children = append(node.Children, child)
		}
	case ast.StmtConst:
		data, _ := d.b.Stmts.Const(id)
		node.Text = d.b.Name(data.Name)
		node.Children = []ASTNodeOutput{d.expr(data.Value)}
	case ast.StmtAssign:
		data, _ := d.b.Stmts.Assign(id)
		node.Text = data.Op.String()
		node.Children = []ASTNodeOutput{d.expr(data.Target), d.expr(data.Value)}
	case ast.StmtIncDec:
		data, _ := d.b.Stmts.IncDec(id)
		node.Text = "--"
		if data.Inc {
			node.Text = "++"
		}
		node.Children = []ASTNodeOutput{d.expr(data.Target)}
	case ast.StmtExpr:
		data, _ := d.b.Stmts.Expr(id)
		node.Children = []ASTNodeOutput{d.expr(data.Expr)}
	case ast.StmtIf:
		data, _ := d.b.Stmts.If(id)
		node.Children = []ASTNodeOutput{d.expr(data.Cond), d.stmt(data.Then)}
		if data.Else.IsValid() {
			node.Children = append(node.Children, d.stmt(data.Else))
		}
	case ast.StmtWhile:
		data, _ := d.b.Stmts.Loop(id)
		node.Children = []ASTNodeOutput{d.expr(data.Cond), d.stmt(data.Body)}
	case ast.StmtDoWhile:
		data, _ := d.b.Stmts.Loop(id)
		node.Children = []ASTNodeOutput{d.stmt(data.Body), d.expr(data.Cond)}
	case ast.StmtFor:
		data, _ := d.b.Stmts.For(id)
		node.Children = []ASTNodeOutput{d.stmt(data.Init), d.expr(data.Cond), d.stmt(data.Post), d.stmt(data.Body)}
	case ast.StmtReturn:
		data, _ := d.b.Stmts.Return(id)
		if data.Value.IsValid() {
			node.Children = []ASTNodeOutput{d.expr(data.Value)}
		}
	}
	return node
}

func (d astDumper) expr(id ast.ExprID) ASTNodeOutput {
	expr := d.b.Exprs.Get(id)
	if !id.IsValid() || expr == nil {
		return ASTNodeOutput{Type: "Expr", Kind: "<none>"}
	}
	node := ASTNodeOutput{Type: "Expr", Kind: expr.Kind.String(), Span: expr.Span}
	switch expr.Kind {
	case ast.ExprIdent:
		data, _ := d.b.Exprs.Ident(id)
		node.Text = d.b.Name(data.Name)
	case ast.ExprLit:
		data, _ := d.b.Exprs.Literal(id)
		switch data.Kind {
		case ast.ExprLitString:
			node.Text = strconv.Quote(d.b.Name(data.Str))
		case ast.ExprLitTrue:
			node.Text = "true"
		case ast.ExprLitFalse:
			node.Text = "false"
		default:
			node.Text = strconv.FormatUint(uint64(data.Int), 10)
		}
	case ast.ExprBinary:
		data, _ := d.b.Exprs.Binary(id)
		node.Text = data.Op.String()
		node.Children = []ASTNodeOutput{d.expr(data.Left), d.expr(data.Right)}
	case ast.ExprUnary:
		data, _ := d.b.Exprs.Unary(id)
		node.Text = data.Op.String()
		node.Children = []ASTNodeOutput{d.expr(data.Operand)}
	case ast.ExprGroup:
		data, _ := d.b.Exprs.Group(id)
		node.Children = []ASTNodeOutput{d.expr(data.Inner)}
	case ast.ExprCall:
		data, _ := d.b.Exprs.Call(id)
		node.Children = append(node.Children, d.expr(data.Target))
		for _, arg := range data.Args {
			node.Children = append(node.Children, d.expr(arg))
		}
	case ast.ExprIndex:
		data, _ := d.b.Exprs.Index(id)
		node.Children = []ASTNodeOutput{d.expr(data.Target), d.expr(data.Index)}
	}
	return node
}

func (n ASTNodeOutput) label(fs *source.FileSet) string {
	var sb strings.Builder
	sb.WriteString(n.Type)
	if n.Kind != "" {
		sb.WriteString(": ")
		sb.WriteString(n.Kind)
	}
	if n.Text != "" {
		sb.WriteByte(' ')
		sb.WriteString(n.Text)
	}
	if n.Kind != "<none>" {
		fmt.Fprintf(&sb, " (span: %s)", formatSpan(n.Span, fs))
	}
	return sb.String()
}

// FormatASTPretty prints the tree with ├─ / └─ connectors.
func FormatASTPretty(w io.Writer, builder *ast.Builder, fileID ast.FileID, fs *source.FileSet) error {
	root, err := BuildAST(builder, fileID)
	if err != nil {
		return err
	}
	var sb strings.Builder
	if fs != nil && int(root.Span.File) < fs.Len() {
		root.Text = fs.Get(root.Span.File).DisplayPath(fs.BaseDir())
	}
	sb.WriteString(root.label(fs))
	sb.WriteByte('\n')
	writeTree(&sb, root.Children, "", fs)
	_, err = io.WriteString(w, sb.String())
	return err
}

func writeTree(sb *strings.Builder, nodes []ASTNodeOutput, prefix string, fs *source.FileSet) {
	for i, n := range nodes {
		last := i == len(nodes)-1
		branch, next := "├─ ", "│  "
		if last {
			branch, next = "└─ ", "   "
		}
		sb.WriteString(prefix)
		sb.WriteString(branch)
		sb.WriteString(n.label(fs))
		sb.WriteByte('\n')
		writeTree(sb, n.Children, prefix+next, fs)
	}
}

// FormatASTJSON writes the tree as indented JSON.
func FormatASTJSON(w io.Writer, builder *ast.Builder, fileID ast.FileID) error {
	root, err := BuildAST(builder, fileID)
	if err != nil {
		return err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(root)
}
