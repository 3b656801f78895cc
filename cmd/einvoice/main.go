package main

import (
	"os"

	"github.com/yijian0905/erp-einvoice/cmd/einvoice/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
