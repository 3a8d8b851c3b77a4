package gen

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"io"
	"text/template"
)

//go:embed tpl.gohtml
var genOrm string

var tpl = template.Must(template.New("gen-orm").Parse(genOrm))

var ErrNoStruct = errors.New("gen: 源文件里面没有结构体")

type Data struct {
	*File
	Ops []string
}

// Gen 读取 srcFile 里面的结构体, 给每个可以映射成列的字段生成列名常量和谓词函数
// 生成的代码和源文件在同一个包里面
func Gen(w io.Writer, srcFile string) error {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, srcFile, nil, parser.ParseComments)
	if err != nil {
		return fmt.Errorf("gen: 解析 %s 失败: %w", srcFile, err)
	}
	v := &SingleFileVisitor{}
	ast.Walk(v, f)
	file := v.Get()
	if len(file.Types) == 0 {
		return ErrNoStruct
	}

	buf := &bytes.Buffer{}
	if err = tpl.Execute(buf, Data{
		File: file,
		Ops:  []string{"Eq", "Gt", "Lt"},
	}); err != nil {
		return err
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("gen: 生成的代码格式化失败: %w", err)
	}
	_, err = w.Write(src)
	return err
}
