package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/startdusk/go-orm/orm/gen"
)

// ormgen 给模型生成列名常量和谓词函数, 生成的文件和源文件放在同一个目录
//
//	//go:generate ormgen -src $GOFILE
func main() {
	src := flag.String("src", "", "模型所在的 go 文件")
	flag.Parse()
	if *src == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := genFile(*src); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func genFile(src string) error {
	dstDir := filepath.Dir(src)
	fileName := filepath.Base(src)
	dst := filepath.Join(dstDir, strings.TrimSuffix(fileName, filepath.Ext(fileName))+".gen.go")

	f, err := os.Create(dst)
	if err != nil {
		return err
	}
	if err = gen.Gen(f, src); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	fmt.Println("生成成功:", dst)
	return nil
}
