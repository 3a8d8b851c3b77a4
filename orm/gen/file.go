package gen

import (
	"go/ast"
	"go/types"
	"path"
	"reflect"
	"strconv"
	"strings"
)

const ormImportPath = "github.com/startdusk/go-orm/orm"

type SingleFileVisitor struct {
	file *FileVisitor
}

func (spv *SingleFileVisitor) Get() *File {
	if spv.file == nil {
		return &File{}
	}
	used := make(map[string]struct{}, 8)
	res := make([]Type, 0, len(spv.file.types))
	for _, typ := range spv.file.types {
		if len(typ.fields) == 0 {
			continue
		}
		for _, pkg := range typ.pkgs {
			used[pkg] = struct{}{}
		}
		res = append(res, Type{
			Name:   typ.name,
			Fields: typ.fields,
		})
	}

	// 只保留字段类型用到的导入, 否则生成的文件编译不过
	imports := make([]string, 0, len(spv.file.imports))
	for _, imp := range spv.file.imports {
		if imp.path == ormImportPath {
			continue
		}
		if _, ok := used[imp.name]; ok {
			imports = append(imports, imp.String())
		}
	}
	return &File{
		Package: spv.file.Package,
		Imports: imports,
		Types:   res,
	}
}

var _ ast.Visitor = &SingleFileVisitor{}

func (spv *SingleFileVisitor) Visit(node ast.Node) ast.Visitor {
	fn, ok := node.(*ast.File)
	if !ok {
		// 不是我们要的文件节点
		return spv
	}
	fv := &FileVisitor{
		Package: fn.Name.String(),
	}
	spv.file = fv
	return fv
}

type importSpec struct {
	// name 代码里面引用这个包的名字, 有别名就是别名
	name  string
	alias string
	path  string
}

func (i importSpec) String() string {
	if i.alias != "" {
		return i.alias + " " + strconv.Quote(i.path)
	}
	return strconv.Quote(i.path)
}

type FileVisitor struct {
	Package string
	imports []importSpec
	types   []*TypeVisitor
}

var _ ast.Visitor = &FileVisitor{}

func (fv *FileVisitor) Visit(node ast.Node) ast.Visitor {
	switch n := node.(type) {
	case *ast.TypeSpec:
		// 只处理结构体, 泛型结构体没办法生成谓词
		st, ok := n.Type.(*ast.StructType)
		if !ok || n.TypeParams != nil {
			return nil
		}
		v := &TypeVisitor{name: n.Name.String()}
		fv.types = append(fv.types, v)
		v.visitStruct(st)
		return nil
	case *ast.ImportSpec:
		p, err := strconv.Unquote(n.Path.Value)
		if err != nil {
			return fv
		}
		spec := importSpec{path: p, name: packageName(p)}
		if n.Name != nil && n.Name.String() != "" {
			// 处理导入包有别名的情况, 如 a "import/bbb"
			spec.alias = n.Name.String()
			spec.name = spec.alias
		}
		fv.imports = append(fv.imports, spec)
	}
	return fv
}

// packageName 没有别名的时候按惯例从路径推断包名
// 去掉 /v2 这种版本后缀, 以及 go-, golang-, -go 这样的修饰
func packageName(p string) string {
	name := path.Base(p)
	if strings.HasPrefix(name, "v") {
		if _, err := strconv.Atoi(name[1:]); err == nil {
			name = path.Base(path.Dir(p))
		}
	}
	// gopkg.in/yaml.v3
	if idx := strings.LastIndex(name, ".v"); idx > 0 {
		if _, err := strconv.Atoi(name[idx+2:]); err == nil {
			name = name[:idx]
		}
	}
	for _, prefix := range []string{"golang-", "go-"} {
		name = strings.TrimPrefix(name, prefix)
	}
	name = strings.TrimSuffix(name, "-go")
	name = strings.TrimSuffix(name, ".go")
	return strings.ReplaceAll(name, "-", "")
}

type TypeVisitor struct {
	name   string
	fields []Field
	// pkgs 字段类型引用到的包名
	pkgs []string
}

func (tv *TypeVisitor) visitStruct(st *ast.StructType) {
	for _, n := range st.Fields.List {
		if !supportedType(n.Type) || ignored(n) {
			continue
		}
		typ := types.ExprString(n.Type)
		var exported bool
		for _, name := range n.Names {
			if !name.IsExported() {
				continue
			}
			exported = true
			tv.fields = append(tv.fields, Field{
				Name: name.String(),
				Type: typ,
			})
		}
		if exported {
			tv.pkgs = append(tv.pkgs, referencedPackages(n.Type)...)
		}
	}
}

// supportedType map, channel, 函数之类的类型不能映射成列
func supportedType(expr ast.Expr) bool {
	switch t := expr.(type) {
	case *ast.Ident, *ast.SelectorExpr, *ast.IndexExpr, *ast.IndexListExpr:
		return true
	case *ast.StarExpr:
		return supportedType(t.X)
	case *ast.ArrayType:
		// 只有 []byte
		ident, ok := t.Elt.(*ast.Ident)
		return t.Len == nil && ok && (ident.Name == "byte" || ident.Name == "uint8")
	}
	return false
}

func ignored(f *ast.Field) bool {
	if f.Tag == nil {
		return false
	}
	tag, err := strconv.Unquote(f.Tag.Value)
	if err != nil {
		return false
	}
	for _, pair := range strings.Split(reflect.StructTag(tag).Get("orm"), ",") {
		if strings.TrimSpace(pair) == "-" {
			return true
		}
	}
	return false
}

func referencedPackages(expr ast.Expr) []string {
	var res []string
	ast.Inspect(expr, func(node ast.Node) bool {
		if sel, ok := node.(*ast.SelectorExpr); ok {
			if ident, ok := sel.X.(*ast.Ident); ok {
				res = append(res, ident.Name)
			}
		}
		return true
	})
	return res
}

type File struct {
	Package string
	Imports []string
	Types   []Type
}

type Type struct {
	Name   string
	Fields []Field
}

type Field struct {
	Name string
	Type string
}
