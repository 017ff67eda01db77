// verdict compares preference aggregation with belief aggregation by Monte
// Carlo simulation.
//
// Usage:
//
//	verdict trial  --agents=5 --criteria=3 --threshold=0.5 --dist=uniform --range=0.3 [--trials=1000]
//	verdict sweep  --config=plan.yaml [--sweep=id] [--format=table|markdown|json|csv] [--out=path]
//	verdict sweep  --param=prob --values=0.1,0.3,0.5 --dist=binomial [fixed trial flags]
//	verdict version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
