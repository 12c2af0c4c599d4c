package main

import "fmt"

import (
	_ "github.com/ppphp/entropago/config"
	_ "github.com/ppphp/entropago/pkg/checksum"
	_ "github.com/ppphp/entropago/pkg/dep"
	_ "github.com/ppphp/entropago/pkg/env"
	_ "github.com/ppphp/entropago/pkg/output"
	_ "github.com/ppphp/entropago/pkg/pkgname"
	_ "github.com/ppphp/entropago/pkg/repository"
	_ "github.com/ppphp/entropago/pkg/versions"
)

func main() {
	fmt.Println("ok")
}
