// Package main is the entry point for the uniqorn CLI, which keeps a bucket
// index of basketball statlines and reports on the rarest ones.
package main

import "github.com/pable/uniqorn/cmd"

func main() {
	cmd.Execute()
}
