package main

import (
	"fmt"
	"os"

	"k8s.io/klog/v2"

	"github.com/viant/sqlite-kd/internal/cli"
)

func main() {
	defer klog.Flush()
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		klog.Flush()
		os.Exit(1)
	}
}
