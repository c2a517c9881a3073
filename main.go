package main

import "github.com/GPUOpen-Tools/GPU-Reshape/cmd"

func main() {
	cmd.Execute()
}
